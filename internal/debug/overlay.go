// Package debug writes diagnostic images: the reading-order overlay of each
// page and the crops sent to the OCR engine.
package debug

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/laytext/internal/geometry"
	"github.com/MeKo-Tech/laytext/internal/utils"
)

// OverlayOptions controls box color and outline width.
type OverlayOptions struct {
	Color color.Color
	Width int
}

// DefaultOverlayOptions draws 2px red outlines.
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{Color: colornames.Red, Width: 2}
}

// ParseColor accepts an SVG color name ("red") or a hex triplet ("#ff8800").
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return nil, fmt.Errorf("unknown color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("unknown color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// RenderOverlay returns an RGBA copy of img with every rect outlined and
// labelled by its 1-based position in rects.
func RenderOverlay(img image.Image, rects []geometry.Rect, opts OverlayOptions) *image.RGBA {
	if img == nil {
		return nil
	}
	if opts.Color == nil {
		opts.Color = colornames.Red
	}
	dst := utils.ToRGBA(img)
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(opts.Color),
		Face: basicfont.Face7x13,
	}
	ascent := basicfont.Face7x13.Metrics().Ascent
	for i, r := range rects {
		utils.DrawRect(dst, r.ImageRect(), opts.Color, opts.Width)
		drawer.Dot = fixed.Point26_6{
			X: fixed.I(r.Left + 2 + opts.Width),
			Y: fixed.I(r.Top+2+opts.Width) + ascent,
		}
		drawer.DrawString(strconv.Itoa(i + 1))
	}
	return dst
}
