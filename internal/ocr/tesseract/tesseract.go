//go:build ocr

// Package tesseract provides an in-process Tesseract engine via gosseract.
// It requires libtesseract and the "ocr" build tag:
//
//	go build -tags ocr ./...
//
// Without the tag, New returns ocr.ErrEngineUnavailable.
package tesseract

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/MeKo-Tech/laytext/internal/geometry"
	"github.com/MeKo-Tech/laytext/internal/ocr"
)

// Enabled reports whether the in-process engine was compiled in.
const Enabled = true

// Engine implements ocr.Engine and ocr.WordBoxer with a fresh gosseract
// client per call, so it is safe for concurrent use.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// New creates a gosseract-backed engine.
func New() (*Engine, error) {
	return &Engine{clientFactory: gosseract.NewClient}, nil
}

// Name implements ocr.Engine.
func (e *Engine) Name() string { return "tesseract-lib" }

// Recognize implements ocr.Engine. The engine mode is fixed when the
// library is initialized and opts.OEM is not applied.
func (e *Engine) Recognize(ctx context.Context, img image.Image, opts ocr.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := e.clientFactory()
	defer func() { _ = c.Close() }()

	if err := configure(c, img, opts); err != nil {
		return "", err
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, ctx.Err()
}

// WordBoxes implements ocr.WordBoxer.
func (e *Engine) WordBoxes(ctx context.Context, img image.Image, language string) ([]ocr.WordBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := e.clientFactory()
	defer func() { _ = c.Close() }()

	if err := configure(c, img, ocr.Options{Language: language, PSM: ocr.Unset, OEM: ocr.Unset}); err != nil {
		return nil, err
	}
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("bounding boxes: %w", err)
	}
	out := make([]ocr.WordBox, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, ocr.WordBox{
			Rect:       geometry.FromImageRect(b.Box),
			Text:       strings.TrimSpace(b.Word),
			Confidence: b.Confidence,
		})
	}
	return out, nil
}

func configure(c *gosseract.Client, img image.Image, opts ocr.Options) error {
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	if opts.Language != "" {
		if err := c.SetLanguage(strings.Split(opts.Language, "+")...); err != nil {
			return fmt.Errorf("set languages: %w", err)
		}
	}
	if opts.PSM >= 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(opts.PSM)); err != nil {
			return fmt.Errorf("set page seg mode: %w", err)
		}
	}
	if wl := ocr.ExpandWhitelist(opts.Whitelist); wl != "" {
		if err := c.SetWhitelist(wl); err != nil {
			return fmt.Errorf("set whitelist: %w", err)
		}
	}
	vars, _ := ocr.ParseExtraConfig(opts.ExtraConfig)
	for k, v := range vars {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	return nil
}
