// Package ocr wraps text recognition engines behind a small interface and
// provides the image preprocessing applied before recognition.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/MeKo-Tech/laytext/internal/geometry"
)

// ErrEngineUnavailable is returned when no usable recognition engine exists.
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// Unset marks PSM or OEM as "let the engine decide".
const Unset = -1

// Options configures a single recognition call.
type Options struct {
	Language    string            // tesseract language spec, e.g. "eng+ara"
	PSM         int               // page segmentation mode, Unset for engine default
	OEM         int               // engine mode, Unset for engine default
	Whitelist   string            // allowed characters; placeholders are expanded
	ExtraConfig string            // extra engine flags, e.g. "-c preserve_interword_spaces=1"
	Preprocess  PreprocessOptions // applied by Recognize before the engine runs
}

// Engine recognizes text in an already preprocessed image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image, opts Options) (string, error)
}

// WordBox is one recognized word with its bounding box and confidence in [0,100].
type WordBox struct {
	Rect       geometry.Rect
	Text       string
	Confidence float64
}

// WordBoxer reports word-level boxes for a page.
type WordBoxer interface {
	WordBoxes(ctx context.Context, img image.Image, language string) ([]WordBox, error)
}

// Recognize preprocesses img per opts, runs the engine and normalizes the
// result to NFC so Arabic presentation sequences compare consistently.
func Recognize(ctx context.Context, eng Engine, img image.Image, opts Options) (string, error) {
	if eng == nil {
		return "", ErrEngineUnavailable
	}
	if img == nil || img.Bounds().Empty() {
		return "", errors.New("ocr: empty image")
	}
	prepared := Preprocess(img, opts.Preprocess)
	opts.Whitelist = ExpandWhitelist(opts.Whitelist)
	text, err := eng.Recognize(ctx, prepared, opts)
	if err != nil {
		return "", fmt.Errorf("%s: %w", eng.Name(), err)
	}
	return CleanText(text), nil
}

// CleanText normalizes to NFC and drops form feeds emitted at page ends.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\f", "")
	return norm.NFC.String(s)
}

// ParseExtraConfig splits an extra-config string into "-c key=value"
// variables and remaining flags.
func ParseExtraConfig(s string) (map[string]string, []string) {
	vars := map[string]string{}
	var rest []string
	fields := strings.Fields(s)
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		switch {
		case f == "-c" && i+1 < len(fields):
			i++
			if k, v, ok := strings.Cut(fields[i], "="); ok {
				vars[k] = v
			}
		case strings.HasPrefix(f, "-c") && strings.Contains(f, "="):
			if k, v, ok := strings.Cut(strings.TrimPrefix(f, "-c"), "="); ok {
				vars[k] = v
			}
		default:
			rest = append(rest, f)
		}
	}
	return vars, rest
}
