// Package pipeline turns page images into ordered text: it detects regions,
// orders them for reading, runs OCR on each crop and reconciles the digit pass.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/MeKo-Tech/laytext/internal/debug"
	"github.com/MeKo-Tech/laytext/internal/detector"
	"github.com/MeKo-Tech/laytext/internal/layout"
	"github.com/MeKo-Tech/laytext/internal/metrics"
	"github.com/MeKo-Tech/laytext/internal/ocr"
)

// ErrAllRegionsFailed is returned when every primary OCR call of a document failed.
var ErrAllRegionsFailed = errors.New("ocr failed for every region")

// DigitsScope selects the regions that get a digit pass.
type DigitsScope string

const (
	ScopeNone  DigitsScope = "none"
	ScopeAll   DigitsScope = "all"
	ScopeShort DigitsScope = "short" // regions no taller than DigitsHeightRatio of the page
)

// ParseDigitsScope validates a scope name. The empty string means short.
func ParseDigitsScope(s string) (DigitsScope, error) {
	switch DigitsScope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeNone:
		return ScopeNone, nil
	case ScopeAll:
		return ScopeAll, nil
	case ScopeShort, "":
		return ScopeShort, nil
	default:
		return "", fmt.Errorf("unknown digits scope %q (want none, all or short)", s)
	}
}

// OrderConfig controls reading order.
type OrderConfig struct {
	RTL          bool
	OverlapRatio float64
}

// OCRConfig controls the per-region recognition passes.
type OCRConfig struct {
	Language    string
	PSM         int
	OEM         int
	Whitelist   string
	ExtraConfig string
	Preprocess  ocr.PreprocessOptions

	CropPadding int

	// LinePSM replaces PSM for regions no taller than LinePSMHeightRatio of
	// the page. ocr.Unset disables it.
	LinePSM            int
	LinePSMHeightRatio float64

	DigitsPass        bool
	DigitsScope       DigitsScope
	DigitsHeightRatio float64
	DigitsPSM         int
	DigitsWhitelist   string
	DigitsExtraConfig string
	DigitsMinChars    int
	DigitsReplace     bool

	// Timeout bounds each engine call; zero means no deadline.
	Timeout time.Duration
}

// DefaultOCRConfig returns the recognition defaults for mixed English/Arabic pages.
func DefaultOCRConfig() OCRConfig {
	return OCRConfig{
		Language:           "eng+ara",
		PSM:                6,
		OEM:                1,
		Preprocess:         ocr.DefaultPreprocessOptions(),
		CropPadding:        4,
		LinePSM:            7,
		LinePSMHeightRatio: 0.07,
		DigitsPass:         false,
		DigitsScope:        ScopeShort,
		DigitsHeightRatio:  0.08,
		DigitsPSM:          7,
		DigitsWhitelist:    "0123456789-/:.," + ocr.PlaceholderArabicIndic + ocr.PlaceholderEasternArabicIndic,
		DigitsMinChars:     2,
		DigitsReplace:      false,
	}
}

// Config holds configuration for the page pipeline and its components.
type Config struct {
	Detector          detector.Config
	Order             OrderConfig
	OCR               OCRConfig
	FallbackFullPage  bool
	IncludePageBreaks bool
	Workers           int // pages processed concurrently per document (0 = runtime.NumCPU())
	Overlay           debug.OverlayOptions
	Logger            *slog.Logger
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Detector:         detector.DefaultConfig(),
		Order:            OrderConfig{OverlapRatio: layout.DefaultOverlapRatio},
		OCR:              DefaultOCRConfig(),
		FallbackFullPage: true,
		Workers:          runtime.NumCPU(),
		Overlay:          debug.DefaultOverlayOptions(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg      Config
	engine   ocr.Engine
	sink     debug.Sink
	metrics  *metrics.Metrics
	progress ProgressCallback
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithEngine sets the OCR engine. It is required.
func (b *Builder) WithEngine(e ocr.Engine) *Builder {
	b.engine = e
	return b
}

// WithDebugSink enables debug artifacts.
func (b *Builder) WithDebugSink(s debug.Sink) *Builder {
	b.sink = s
	return b
}

// WithMetrics records page and OCR statistics into m.
func (b *Builder) WithMetrics(m *metrics.Metrics) *Builder {
	b.metrics = m
	return b
}

// WithProgress reports page progress of each document.
func (b *Builder) WithProgress(p ProgressCallback) *Builder {
	b.progress = p
	return b
}

// WithLogger sets the logger for the pipeline and the detector.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.cfg.Logger = l
	b.cfg.Detector.Logger = l
	return b
}

// WithWorkers sets page concurrency (if >0).
func (b *Builder) WithWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.Workers = n
	}
	return b
}

// WithRTL switches reading order to right-to-left.
func (b *Builder) WithRTL(rtl bool) *Builder {
	b.cfg.Order.RTL = rtl
	return b
}

// WithDigitsPass enables the digit pass with the given scope and merge mode.
func (b *Builder) WithDigitsPass(scope DigitsScope, replace bool) *Builder {
	b.cfg.OCR.DigitsPass = true
	b.cfg.OCR.DigitsScope = scope
	b.cfg.OCR.DigitsReplace = replace
	return b
}

// Validate checks the configuration for values that cannot be clamped.
func (b *Builder) Validate() error {
	if b.engine == nil {
		return fmt.Errorf("pipeline: %w", ocr.ErrEngineUnavailable)
	}
	if _, err := ParseDigitsScope(string(b.cfg.OCR.DigitsScope)); err != nil {
		return err
	}
	if _, err := detector.ParseKind(string(b.cfg.Detector.Kind)); err != nil {
		return err
	}
	if b.cfg.OCR.Language == "" {
		return errors.New("pipeline: ocr language must not be empty")
	}
	return nil
}

// Pipeline runs detection, ordering and recognition for pages.
type Pipeline struct {
	cfg      Config
	Detector detector.Detector
	Engine   ocr.Engine
	sink     debug.Sink
	metrics  *metrics.Metrics
	progress ProgressCallback
	logger   *slog.Logger
}

// Build initializes the pipeline components.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	cfg := b.cfg
	cfg.Detector = cfg.Detector.Normalize()
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Detector.Logger == nil {
		cfg.Detector.Logger = cfg.Logger
	}
	cfg.OCR.DigitsScope, _ = ParseDigitsScope(string(cfg.OCR.DigitsScope))

	boxer, _ := b.engine.(ocr.WordBoxer)
	det, err := detector.New(cfg.Detector, boxer)
	if err != nil {
		return nil, fmt.Errorf("init detector: %w", err)
	}

	sink := b.sink
	if sink == nil {
		sink = debug.NopSink{}
	}
	progress := b.progress
	if progress == nil {
		progress = NoOpProgressCallback{}
	}
	return &Pipeline{
		cfg:      cfg,
		Detector: det,
		Engine:   b.engine,
		sink:     sink,
		metrics:  b.metrics,
		progress: progress,
		logger:   cfg.Logger,
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Info returns a map with key pipeline properties.
func (p *Pipeline) Info() map[string]any {
	return map[string]any{
		"detector":           string(p.cfg.Detector.Kind),
		"engine":             p.Engine.Name(),
		"language":           p.cfg.OCR.Language,
		"rtl":                p.cfg.Order.RTL,
		"overlap_ratio":      p.cfg.Order.OverlapRatio,
		"digits_pass":        p.cfg.OCR.DigitsPass,
		"digits_scope":       string(p.cfg.OCR.DigitsScope),
		"digits_replace":     p.cfg.OCR.DigitsReplace,
		"fallback_full_page": p.cfg.FallbackFullPage,
		"workers":            p.cfg.Workers,
	}
}
