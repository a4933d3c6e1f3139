package detector

import (
	"context"
	"fmt"
	"image"

	"github.com/MeKo-Tech/laytext/internal/geometry"
	"github.com/MeKo-Tech/laytext/internal/ocr"
)

// OCRBoxDetector uses the word boxes reported by the OCR engine as regions.
type OCRBoxDetector struct {
	config Config
	boxer  ocr.WordBoxer
}

// NewOCRBoxDetector creates a detector backed by boxer.
func NewOCRBoxDetector(cfg Config, boxer ocr.WordBoxer) *OCRBoxDetector {
	return &OCRBoxDetector{config: cfg.Normalize(), boxer: boxer}
}

// Detect implements Detector. Words below MinConfidence or with blank text
// are dropped.
func (d *OCRBoxDetector) Detect(ctx context.Context, img image.Image) ([]geometry.Rect, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	words, err := d.boxer.WordBoxes(ctx, img, d.config.Language)
	if err != nil {
		return nil, fmt.Errorf("word boxes: %w", err)
	}
	rects := make([]geometry.Rect, 0, len(words))
	for _, wb := range words {
		if wb.Confidence < d.config.MinConfidence || wb.Text == "" {
			continue
		}
		rects = append(rects, wb.Rect)
	}
	b := img.Bounds()
	out := ClipAll(rects, b.Dx(), b.Dy())
	d.config.logger().Debug("regions detected",
		"detector", string(KindOCRBoxes),
		"words", len(words),
		"regions", len(out))
	return out, nil
}
