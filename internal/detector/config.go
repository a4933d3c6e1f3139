package detector

import (
	"fmt"
	"log/slog"
)

// Kind selects a Detector implementation.
type Kind string

const (
	// KindMorphology finds regions with adaptive thresholding and morphology.
	KindMorphology Kind = "morphology"
	// KindOCRBoxes uses word boxes reported by the OCR engine.
	KindOCRBoxes Kind = "ocr-boxes"
)

// Config holds detector parameters. Zero values are replaced with defaults
// only where noted in Normalize.
type Config struct {
	Kind Kind

	MinArea           int
	KernelWidth       int
	KernelHeight      int
	AdaptiveBlockSize int
	AdaptiveC         float64
	RemoveLines       bool
	LineLengthRatio   float64
	LineThickness     int
	BorderMargin      int
	MaxAreaRatio      float64
	MergeLineFree     bool
	MergeIoUThreshold float64
	MergeAreaRatio    float64

	// OCR-box detector settings.
	Language      string
	MinConfidence float64

	Logger *slog.Logger
}

// DefaultConfig returns the detector defaults used for Latin-script pages.
func DefaultConfig() Config {
	return Config{
		Kind:              KindMorphology,
		MinArea:           50,
		KernelWidth:       10,
		KernelHeight:      3,
		AdaptiveBlockSize: 25,
		AdaptiveC:         15,
		RemoveLines:       true,
		LineLengthRatio:   0.15,
		LineThickness:     1,
		BorderMargin:      2,
		MaxAreaRatio:      0.85,
		MergeLineFree:     false,
		MergeIoUThreshold: 0.7,
		MergeAreaRatio:    0.25,
		Language:          "eng+ara",
		MinConfidence:     50,
	}
}

// Normalize clamps out-of-range values instead of rejecting them so a bad
// setting degrades detection rather than aborting a batch.
func (c Config) Normalize() Config {
	if c.Kind == "" {
		c.Kind = KindMorphology
	}
	c.AdaptiveBlockSize = normalizeBlockSize(c.AdaptiveBlockSize)
	c.KernelWidth = max(1, c.KernelWidth)
	c.KernelHeight = max(1, c.KernelHeight)
	c.MinArea = max(0, c.MinArea)
	c.LineThickness = max(1, c.LineThickness)
	c.BorderMargin = max(0, c.BorderMargin)
	if c.LineLengthRatio < 0 {
		c.LineLengthRatio = 0
	}
	if c.MaxAreaRatio < 0 {
		c.MaxAreaRatio = 0
	}
	return c
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// ParseKind validates a detector kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMorphology, KindOCRBoxes:
		return Kind(s), nil
	case "":
		return KindMorphology, nil
	default:
		return "", fmt.Errorf("unknown detector kind %q (want %s or %s)", s, KindMorphology, KindOCRBoxes)
	}
}
