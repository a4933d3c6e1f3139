package debug

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/laytext/internal/geometry"
	"github.com/MeKo-Tech/laytext/internal/testutil"
	"github.com/MeKo-Tech/laytext/internal/utils"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("Red")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, c)

	c, err = ParseColor("#00ff80")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 255, B: 128, A: 255}, c)

	for _, bad := range []string{"", "notacolor", "#12", "#zzzzzz"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestRenderOverlay(t *testing.T) {
	page := testutil.NewPage(120, 80, color.White)
	rects := []geometry.Rect{
		{Left: 10, Top: 10, Right: 60, Bottom: 40},
		{Left: 70, Top: 10, Right: 110, Bottom: 70},
	}
	blue := color.RGBA{B: 255, A: 255}
	out := RenderOverlay(page, rects, OverlayOptions{Color: blue, Width: 2})
	require.NotNil(t, out)
	assert.Equal(t, page.Bounds(), out.Bounds())

	assert.Equal(t, blue, out.RGBAAt(10, 10))
	assert.Equal(t, blue, out.RGBAAt(11, 25))
	assert.Equal(t, blue, out.RGBAAt(109, 69))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(5, 70))

	// the label is drawn inside the first box
	labelled := false
	for y := 14; y < 30; y++ {
		for x := 14; x < 22; x++ {
			if out.RGBAAt(x, y) != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
				labelled = true
			}
		}
	}
	assert.True(t, labelled)

	assert.Nil(t, RenderOverlay(nil, rects, DefaultOverlayOptions()))
}

func TestDirSink(t *testing.T) {
	dir := t.TempDir()
	sink := NewDirSink(dir)
	require.IsType(t, DirSink{}, sink)

	img := image.NewGray(image.Rect(0, 0, 4, 4))
	require.NoError(t, sink.WriteOverlay("invoice", 2, img))
	require.NoError(t, sink.WriteCrop("invoice", 2, 3, img))
	require.NoError(t, sink.WriteCrop("invoice", 2, 4, image.NewGray(image.Rect(0, 0, 0, 0))))

	assert.True(t, testutil.FileExists(filepath.Join(dir, "invoice_page_2_order.png")))
	assert.True(t, testutil.FileExists(filepath.Join(dir, "invoice_page_2_crop_3.png")))
	assert.False(t, testutil.FileExists(filepath.Join(dir, "invoice_page_2_crop_4.png")))

	_, _, err := utils.LoadImage(filepath.Join(dir, "invoice_page_2_order.png"))
	assert.NoError(t, err)
}

func TestNopSink(t *testing.T) {
	sink := NewDirSink("")
	assert.NoError(t, sink.WriteOverlay("a", 1, nil))
	assert.NoError(t, sink.WriteCrop("a", 1, 1, nil))
}
