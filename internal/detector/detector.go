// Package detector locates text-bearing rectangles on a page image.
package detector

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/MeKo-Tech/laytext/internal/geometry"
	"github.com/MeKo-Tech/laytext/internal/ocr"
)

// ErrNilImage is returned when Detect is called without an image.
var ErrNilImage = errors.New("detector: nil image")

// Detector finds candidate text regions. A page without text yields an empty
// slice and no error.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]geometry.Rect, error)
}

// New builds the detector selected by cfg.Kind. boxer is only required for
// KindOCRBoxes.
func New(cfg Config, boxer ocr.WordBoxer) (Detector, error) {
	cfg = cfg.Normalize()
	switch cfg.Kind {
	case KindMorphology:
		return NewMorphologyDetector(cfg), nil
	case KindOCRBoxes:
		if boxer == nil {
			return nil, fmt.Errorf("detector %s: %w", cfg.Kind, ocr.ErrEngineUnavailable)
		}
		return NewOCRBoxDetector(cfg, boxer), nil
	default:
		return nil, fmt.Errorf("unknown detector kind %q", cfg.Kind)
	}
}

// MorphologyDetector merges glyphs into blocks with a closing kernel and takes
// the bounding boxes of the resulting outer contours.
type MorphologyDetector struct {
	config Config
}

// NewMorphologyDetector creates a detector with a normalized copy of cfg.
func NewMorphologyDetector(cfg Config) *MorphologyDetector {
	return &MorphologyDetector{config: cfg.Normalize()}
}

// GetConfig returns the detector's configuration.
func (d *MorphologyDetector) GetConfig() Config { return d.config }

// Detect implements Detector.
func (d *MorphologyDetector) Detect(ctx context.Context, img image.Image) ([]geometry.Rect, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	start := time.Now()
	cfg := d.config
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}

	raw := Binarize(img, cfg.AdaptiveBlockSize, cfg.AdaptiveC)
	raw.ClearBorder(cfg.BorderMargin)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lineFree := raw
	if cfg.RemoveLines {
		lineFree = RemoveLines(raw, cfg.LineLengthRatio, cfg.LineThickness)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	maxArea := int(cfg.MaxAreaRatio * float64(w) * float64(h))
	boxes := d.extract(Close(lineFree, cfg.KernelWidth, cfg.KernelHeight), maxArea)
	if cfg.MergeLineFree {
		extra := d.extract(Close(raw, cfg.KernelWidth, cfg.KernelHeight), maxArea)
		boxes = MergeCandidates(boxes, extra, cfg.MergeIoUThreshold, cfg.MergeAreaRatio)
	}
	if len(boxes) == 0 {
		boxes = d.extract(lineFree, maxArea)
	}

	out := ClipAll(boxes, w, h)
	cfg.logger().Debug("regions detected",
		"detector", string(KindMorphology),
		"regions", len(out),
		"width", w, "height", h,
		"duration", time.Since(start))
	return out, nil
}

func (d *MorphologyDetector) extract(m *Mask, maxArea int) []geometry.Rect {
	return filterByArea(ExternalBoxes(m), d.config.MinArea, maxArea)
}

// ClipAll clips rectangles to a w×h page and drops degenerate results.
func ClipAll(rects []geometry.Rect, w, h int) []geometry.Rect {
	out := make([]geometry.Rect, 0, len(rects))
	for _, r := range rects {
		if c, ok := r.Clip(w, h); ok {
			out = append(out, c)
		}
	}
	return out
}
