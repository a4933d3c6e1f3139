package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/laytext/internal/geometry"
)

// ImageSize represents common image dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	// Common test page sizes.
	SmallSize  = ImageSize{320, 240}
	MediumSize = ImageSize{600, 400}
	LargeSize  = ImageSize{1024, 768}
)

// PageStyle controls how synthetic text blocks are painted.
type PageStyle struct {
	Background color.Color
	Foreground color.Color
	WordWidth  int // width of one word bar
	WordGap    int // horizontal gap between words
	LineHeight int // height of one text line
	LineGap    int // vertical gap between lines
}

// DefaultPageStyle returns a style whose gaps are closed by a 10x3 kernel.
func DefaultPageStyle() PageStyle {
	return PageStyle{
		Background: color.White,
		Foreground: color.Black,
		WordWidth:  30,
		WordGap:    6,
		LineHeight: 6,
		LineGap:    2,
	}
}

// NewPage returns a w×h page filled with the background color.
func NewPage(w, h int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	return img
}

// FillRect paints r with c.
func FillRect(img *image.RGBA, r geometry.Rect, c color.Color) {
	draw.Draw(img, r.ImageRect(), &image.Uniform{c}, image.Point{}, draw.Src)
}

// DrawWordBlock paints rows of word bars inside area and returns the
// bounding rectangle of the painted ink.
func DrawWordBlock(img *image.RGBA, area geometry.Rect, style PageStyle) geometry.Rect {
	ink := geometry.Rect{Left: area.Right, Top: area.Bottom}
	for y := area.Top; y+style.LineHeight <= area.Bottom; y += style.LineHeight + style.LineGap {
		for x := area.Left; x < area.Right; x += style.WordWidth + style.WordGap {
			word := geometry.Rect{Left: x, Top: y, Right: min(x+style.WordWidth, area.Right), Bottom: y + style.LineHeight}
			FillRect(img, word, style.Foreground)
			ink.Left = min(ink.Left, word.Left)
			ink.Top = min(ink.Top, word.Top)
			ink.Right = max(ink.Right, word.Right)
			ink.Bottom = max(ink.Bottom, word.Bottom)
		}
	}
	return ink
}

// DrawText renders lines with basicfont starting at (x, y) as the top-left.
func DrawText(img *image.RGBA, x, y int, fg color.Color, lines ...string) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: &image.Uniform{fg}, Face: face}
	lh := face.Metrics().Height.Ceil()
	for i, line := range lines {
		d.Dot = fixed.P(x, y+(i+1)*lh)
		d.DrawString(line)
	}
}

// TwoColumnPage paints four blocks in two well separated columns and returns
// the page plus the ink rectangles in left-to-right reading order: left top,
// left bottom, right top, right bottom.
func TwoColumnPage() (*image.RGBA, []geometry.Rect) {
	style := DefaultPageStyle()
	img := NewPage(MediumSize.Width, MediumSize.Height, style.Background)
	areas := []geometry.Rect{
		{Left: 40, Top: 40, Right: 246, Bottom: 118},
		{Left: 40, Top: 200, Right: 246, Bottom: 278},
		{Left: 340, Top: 40, Right: 546, Bottom: 118},
		{Left: 340, Top: 200, Right: 546, Bottom: 278},
	}
	out := make([]geometry.Rect, 0, len(areas))
	for _, a := range areas {
		out = append(out, DrawWordBlock(img, a, style))
	}
	return img, out
}

// BlankPage returns an all-white page.
func BlankPage(w, h int) *image.RGBA { return NewPage(w, h, color.White) }

// SaveImage saves an image to the specified path.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()

	dir := filepath.Dir(path)
	require.NoError(t, EnsureDir(dir), "Failed to create directory %s", dir)

	file, err := os.Create(path) //nolint:gosec // G304: Test file creation with controlled path
	require.NoError(t, err, "Failed to create file %s", path)
	defer func() {
		require.NoError(t, file.Close())
	}()

	require.NoError(t, png.Encode(file, img), "Failed to encode PNG image")
}

// LoadImage loads an image from the specified path.
func LoadImage(t *testing.T, path string) image.Image {
	t.Helper()

	file, err := os.Open(path) //nolint:gosec // G304: Test file reading with controlled path
	require.NoError(t, err, "Failed to open image file %s", path)
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	require.NoError(t, err, "Failed to decode image")
	return img
}
