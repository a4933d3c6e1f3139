//go:build !ocr

// Package tesseract provides an in-process Tesseract engine via gosseract.
// This is the stub used when the "ocr" build tag is not set; rebuild with
// -tags ocr to link libtesseract.
package tesseract

import (
	"context"
	"image"

	"github.com/MeKo-Tech/laytext/internal/ocr"
)

// Enabled reports whether the in-process engine was compiled in.
const Enabled = false

// Engine is a stub that always fails.
type Engine struct{}

// New returns ocr.ErrEngineUnavailable.
func New() (*Engine, error) {
	return nil, ocr.ErrEngineUnavailable
}

// Name implements ocr.Engine.
func (e *Engine) Name() string { return "tesseract-lib" }

// Recognize implements ocr.Engine.
func (e *Engine) Recognize(context.Context, image.Image, ocr.Options) (string, error) {
	return "", ocr.ErrEngineUnavailable
}

// WordBoxes implements ocr.WordBoxer.
func (e *Engine) WordBoxes(context.Context, image.Image, string) ([]ocr.WordBox, error) {
	return nil, ocr.ErrEngineUnavailable
}
