package support

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/MeKo-Tech/laytext/internal/ocr"
)

// StubEngine stands in for tesseract. Primary calls return Text; digit
// calls (those with a whitelist) return Digits.
type StubEngine struct {
	mu     sync.Mutex
	Text   string
	Digits string
	Fail   bool
	calls  []ocr.Options
}

// NewStubEngine returns an engine answering text for every region.
func NewStubEngine(text string) *StubEngine {
	return &StubEngine{Text: text}
}

// Name implements ocr.Engine.
func (e *StubEngine) Name() string { return "stub" }

// Recognize implements ocr.Engine.
func (e *StubEngine) Recognize(_ context.Context, _ image.Image, opts ocr.Options) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, opts)
	if e.Fail {
		return "", errors.New("stub engine failure")
	}
	if opts.Whitelist != "" {
		return e.Digits, nil
	}
	return e.Text, nil
}

// Calls returns the options of every call so far.
func (e *StubEngine) Calls() []ocr.Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ocr.Options(nil), e.calls...)
}
