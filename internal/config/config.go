// Package config loads and validates laytext settings from files, the
// environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/MeKo-Tech/laytext/internal/debug"
	"github.com/MeKo-Tech/laytext/internal/detector"
	"github.com/MeKo-Tech/laytext/internal/ocr"
	"github.com/MeKo-Tech/laytext/internal/pipeline"
	"github.com/MeKo-Tech/laytext/internal/render"
)

const (
	ProfileDefault = "default"
	ProfileArabic  = "arabic"

	EngineCLI       = "cli"
	EngineGosseract = "gosseract"
)

// Profiles lists the names accepted by Profile.
var Profiles = []string{ProfileDefault, ProfileArabic}

// DefaultConfig returns the default profile.
func DefaultConfig() Config {
	cfg, _ := Profile(ProfileDefault)
	return cfg
}

// Profile returns a fresh configuration for the named profile. The empty
// name selects the default profile.
func Profile(name string) (Config, error) {
	cfg := baseConfig()
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProfileDefault, "":
		return cfg, nil
	case ProfileArabic:
		applyArabic(&cfg)
		return cfg, nil
	default:
		return Config{}, fmt.Errorf("unknown profile %q (must be one of: %s)", name, strings.Join(Profiles, ", "))
	}
}

func baseConfig() Config {
	det := detector.DefaultConfig()
	pl := pipeline.DefaultOCRConfig()
	return Config{
		Profile:  ProfileDefault,
		LogLevel: "info",
		General: GeneralConfig{
			DPI:              500,
			OutputDir:        "output",
			FallbackFullPage: true,
			Workers:          runtime.NumCPU(),
			PageWorkers:      1,
		},
		Render: RenderConfig{
			Backend:     string(render.BackendAuto),
			PdftoppmCmd: render.DefaultPdftoppmCmd,
		},
		OCR: OCRConfig{
			Engine:             EngineCLI,
			TesseractCmd:       ocr.DefaultTesseractCmd,
			Lang:               pl.Language,
			PSM:                pl.PSM,
			OEM:                pl.OEM,
			Scale:              pl.Preprocess.Scale,
			Binarize:           pl.Preprocess.Binarize,
			Denoise:            pl.Preprocess.Denoise,
			Sharpen:            pl.Preprocess.Sharpen,
			CropPadding:        pl.CropPadding,
			LinePSM:            pl.LinePSM,
			LinePSMHeightRatio: pl.LinePSMHeightRatio,
			DigitsPass:         pl.DigitsPass,
			DigitsPassScope:    string(pl.DigitsScope),
			DigitsHeightRatio:  pl.DigitsHeightRatio,
			DigitsPSM:          pl.DigitsPSM,
			DigitsWhitelist:    pl.DigitsWhitelist,
			DigitsMinChars:     pl.DigitsMinChars,
			DigitsReplace:      pl.DigitsReplace,
		},
		Order: OrderConfig{ColumnOverlapRatio: 0.3},
		CV: CVConfig{
			Detector:          string(det.Kind),
			MinArea:           det.MinArea,
			KernelWidth:       det.KernelWidth,
			KernelHeight:      det.KernelHeight,
			AdaptiveBlockSize: det.AdaptiveBlockSize,
			AdaptiveC:         det.AdaptiveC,
			RemoveLines:       det.RemoveLines,
			LineLengthRatio:   det.LineLengthRatio,
			LineThickness:     det.LineThickness,
			BorderMargin:      det.BorderMargin,
			MaxAreaRatio:      det.MaxAreaRatio,
			MergeLineFree:     det.MergeLineFree,
			MergeIoU:          det.MergeIoUThreshold,
			MergeAreaRatio:    det.MergeAreaRatio,
			MinConfidence:     det.MinConfidence,
		},
		Output: OutputConfig{
			SummaryFormat:   "text",
			OverlayBoxColor: "red",
			OverlayBoxWidth: 2,
		},
	}
}

// applyArabic tunes detection and ordering for right-to-left scans with
// Arabic-Indic numerals.
func applyArabic(cfg *Config) {
	cfg.Profile = ProfileArabic
	cfg.Order.RTL = true
	cfg.Order.ColumnOverlapRatio = 0.4

	cfg.CV.MinArea = 50
	cfg.CV.KernelWidth = 8
	cfg.CV.AdaptiveC = 12
	cfg.CV.LineLengthRatio = 0.10
	cfg.CV.LineThickness = 2
	cfg.CV.BorderMargin = 3
	cfg.CV.MaxAreaRatio = 0.75
	cfg.CV.MergeLineFree = true
	cfg.CV.MergeAreaRatio = 0.2

	cfg.OCR.DigitsPass = true
	cfg.OCR.DigitsHeightRatio = 0.10
	cfg.OCR.DigitsPassScope = string(pipeline.ScopeAll)
	cfg.OCR.DigitsReplace = true
}

// Validate validates the configuration and returns any errors. Ratios are
// not range-checked; numeric settings the detector can clamp are left alone.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if c.Profile != "" && !slices.Contains(Profiles, c.Profile) {
		return fmt.Errorf("invalid profile: %s (must be one of: %s)", c.Profile, strings.Join(Profiles, ", "))
	}

	validFormats := []string{"text", "json", "csv"}
	if c.Output.SummaryFormat != "" && !slices.Contains(validFormats, c.Output.SummaryFormat) {
		return fmt.Errorf("invalid summary format: %s (must be one of: %s)", c.Output.SummaryFormat, strings.Join(validFormats, ", "))
	}
	if c.Output.OverlayBoxColor != "" {
		if _, err := debug.ParseColor(c.Output.OverlayBoxColor); err != nil {
			return fmt.Errorf("invalid output.overlay_box_color: %w", err)
		}
	}

	if c.General.DPI <= 0 {
		return fmt.Errorf("invalid general.dpi: %d (must be positive)", c.General.DPI)
	}
	if c.General.Workers < 0 || c.General.PageWorkers < 0 {
		return errors.New("invalid workers: must not be negative")
	}

	switch render.Backend(c.Render.Backend) {
	case render.BackendAuto, render.BackendPDFCPU, render.BackendPoppler, "":
	default:
		return fmt.Errorf("invalid render.backend: %s (must be one of: auto, pdfcpu, poppler)", c.Render.Backend)
	}
	if _, err := render.ParsePageRange(c.Render.Pages); err != nil {
		return fmt.Errorf("invalid render.pages: %w", err)
	}

	if c.OCR.Engine != EngineCLI && c.OCR.Engine != EngineGosseract {
		return fmt.Errorf("invalid ocr.engine: %s (must be one of: %s, %s)", c.OCR.Engine, EngineCLI, EngineGosseract)
	}
	if err := ValidateLanguage(c.OCR.Lang); err != nil {
		return err
	}
	if err := validateRange("ocr.psm", c.OCR.PSM, 0, 13); err != nil {
		return err
	}
	if err := validateRange("ocr.digits_psm", c.OCR.DigitsPSM, 0, 13); err != nil {
		return err
	}
	if c.OCR.LinePSM != ocr.Unset {
		if err := validateRange("ocr.line_psm", c.OCR.LinePSM, 0, 13); err != nil {
			return err
		}
	}
	if c.OCR.OEM != ocr.Unset {
		if err := validateRange("ocr.oem", c.OCR.OEM, 0, 3); err != nil {
			return err
		}
	}
	if c.OCR.Timeout < 0 {
		return fmt.Errorf("invalid ocr.timeout: %v (must not be negative)", c.OCR.Timeout)
	}
	if _, err := pipeline.ParseDigitsScope(c.OCR.DigitsPassScope); err != nil {
		return fmt.Errorf("invalid ocr.digits_pass_scope: %w", err)
	}

	if _, err := detector.ParseKind(c.CV.Detector); err != nil {
		return fmt.Errorf("invalid cv.detector: %w", err)
	}
	return nil
}

// ValidateLanguage checks a Tesseract language spec such as "eng+ara".
// Each component must start with an ISO 639 code; "osd", "equ" and
// script models ("script/Arabic") are accepted as is.
func ValidateLanguage(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return errors.New("invalid ocr.lang: empty")
	}
	for _, part := range strings.Split(spec, "+") {
		switch {
		case part == "osd" || part == "equ":
			continue
		case strings.HasPrefix(part, "script/") && len(part) > len("script/"):
			continue
		}
		base, _, _ := strings.Cut(part, "_") // deu_latf
		if _, err := language.ParseBase(base); err != nil {
			return fmt.Errorf("invalid ocr.lang component %q: %w", part, err)
		}
	}
	return nil
}

func validateRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("invalid %s: %d (must be between %d and %d)", name, v, lo, hi)
	}
	return nil
}

// ToDetectorConfig converts to detector.Config.
func (c *Config) ToDetectorConfig() detector.Config {
	cfg := detector.DefaultConfig()
	cfg.Kind = detector.Kind(c.CV.Detector)
	cfg.MinArea = c.CV.MinArea
	cfg.KernelWidth = c.CV.KernelWidth
	cfg.KernelHeight = c.CV.KernelHeight
	cfg.AdaptiveBlockSize = c.CV.AdaptiveBlockSize
	cfg.AdaptiveC = c.CV.AdaptiveC
	cfg.RemoveLines = c.CV.RemoveLines
	cfg.LineLengthRatio = c.CV.LineLengthRatio
	cfg.LineThickness = c.CV.LineThickness
	cfg.BorderMargin = c.CV.BorderMargin
	cfg.MaxAreaRatio = c.CV.MaxAreaRatio
	cfg.MergeLineFree = c.CV.MergeLineFree
	cfg.MergeIoUThreshold = c.CV.MergeIoU
	cfg.MergeAreaRatio = c.CV.MergeAreaRatio
	cfg.Language = c.OCR.Lang
	cfg.MinConfidence = c.CV.MinConfidence
	return cfg
}

// ToPipelineConfig converts the config to the internal pipeline configuration format.
func (c *Config) ToPipelineConfig() (pipeline.Config, error) {
	scope, err := pipeline.ParseDigitsScope(c.OCR.DigitsPassScope)
	if err != nil {
		return pipeline.Config{}, err
	}
	overlay := debug.DefaultOverlayOptions()
	if c.Output.OverlayBoxColor != "" {
		col, err := debug.ParseColor(c.Output.OverlayBoxColor)
		if err != nil {
			return pipeline.Config{}, err
		}
		overlay.Color = col
	}
	if c.Output.OverlayBoxWidth > 0 {
		overlay.Width = c.Output.OverlayBoxWidth
	}

	cfg := pipeline.DefaultConfig()
	cfg.Detector = c.ToDetectorConfig()
	cfg.Order = pipeline.OrderConfig{RTL: c.Order.RTL, OverlapRatio: c.Order.ColumnOverlapRatio}
	cfg.OCR = pipeline.OCRConfig{
		Language:    c.OCR.Lang,
		PSM:         c.OCR.PSM,
		OEM:         c.OCR.OEM,
		Whitelist:   c.OCR.Whitelist,
		ExtraConfig: c.OCR.ExtraConfig,
		Preprocess: ocr.PreprocessOptions{
			Scale:    c.OCR.Scale,
			Binarize: c.OCR.Binarize,
			Denoise:  c.OCR.Denoise,
			Sharpen:  c.OCR.Sharpen,
		},
		CropPadding:        c.OCR.CropPadding,
		LinePSM:            c.OCR.LinePSM,
		LinePSMHeightRatio: c.OCR.LinePSMHeightRatio,
		DigitsPass:         c.OCR.DigitsPass,
		DigitsScope:        scope,
		DigitsHeightRatio:  c.OCR.DigitsHeightRatio,
		DigitsPSM:          c.OCR.DigitsPSM,
		DigitsWhitelist:    c.OCR.DigitsWhitelist,
		DigitsExtraConfig:  c.OCR.DigitsExtraConfig,
		DigitsMinChars:     c.OCR.DigitsMinChars,
		DigitsReplace:      c.OCR.DigitsReplace,
		Timeout:            c.OCR.Timeout,
	}
	cfg.FallbackFullPage = c.General.FallbackFullPage
	cfg.IncludePageBreaks = c.General.IncludePageBreaks
	if c.General.PageWorkers > 0 {
		cfg.Workers = c.General.PageWorkers
	}
	cfg.Overlay = overlay
	return cfg, nil
}

// ToRenderOptions converts to render.Options.
func (c *Config) ToRenderOptions() render.Options {
	return render.Options{
		Backend:     render.Backend(c.Render.Backend),
		Pages:       c.Render.Pages,
		Password:    c.Render.Password,
		PdftoppmCmd: c.Render.PdftoppmCmd,
	}
}
