package testutil

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/laytext/internal/geometry"
)

func TestDrawWordBlockInkBounds(t *testing.T) {
	style := DefaultPageStyle()
	img := NewPage(200, 100, style.Background)
	ink := DrawWordBlock(img, geometry.Rect{Left: 10, Top: 10, Right: 110, Bottom: 40}, style)

	assert.Equal(t, 10, ink.Left)
	assert.Equal(t, 10, ink.Top)
	assert.LessOrEqual(t, ink.Right, 110)
	assert.LessOrEqual(t, ink.Bottom, 40)
	assert.Equal(t, color.RGBAModel.Convert(color.Black), img.At(10, 10))
	assert.Equal(t, color.RGBAModel.Convert(color.White), img.At(5, 5))
}

func TestTwoColumnPage(t *testing.T) {
	img, blocks := TwoColumnPage()
	require.Len(t, blocks, 4)
	assert.Equal(t, MediumSize.Width, img.Bounds().Dx())
	assert.Less(t, blocks[0].Right, blocks[2].Left)
	assert.Less(t, blocks[0].Bottom, blocks[1].Top)
}

func TestSaveAndLoadImage(t *testing.T) {
	img := BlankPage(32, 16)
	DrawText(img, 2, 0, color.Black, "12")
	path := filepath.Join(t.TempDir(), "out", "text.png")
	SaveImage(t, img, path)
	loaded := LoadImage(t, path)
	assert.Equal(t, img.Bounds(), loaded.Bounds())
}
