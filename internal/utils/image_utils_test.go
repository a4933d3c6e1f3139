package utils

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func TestIsSupportedImage(t *testing.T) {
	cases := []struct {
		path string
		ok   bool
	}{
		{"a.jpg", true},
		{"b.jpeg", true},
		{"c.png", true},
		{"d.bmp", true},
		{"e.tiff", true},
		{"e.TIF", true},
		{"f.gif", false},
		{"g.pdf", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, IsSupportedImage(c.path), c.path)
	}
}

func solid(w, h int, col color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	FillRect(img, img.Bounds(), col)
	return img
}

func TestSavePNGAndLoadImage(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "test.png")
	require.NoError(t, SavePNG(p, solid(10, 20, color.RGBA{R: 10, G: 20, B: 30, A: 255})))

	img, meta, err := LoadImage(p)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, 10, meta.Width)
	assert.Equal(t, 20, meta.Height)
	assert.Positive(t, meta.SizeBytes)
}

func TestLoadImageTIFFAndBMP(t *testing.T) {
	dir := t.TempDir()
	src := solid(7, 5, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	tifPath := filepath.Join(dir, "scan.tif")
	f, err := os.Create(tifPath)
	require.NoError(t, err)
	require.NoError(t, tiff.Encode(f, src, nil))
	require.NoError(t, f.Close())

	bmpPath := filepath.Join(dir, "scan.bmp")
	f, err = os.Create(bmpPath)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, src))
	require.NoError(t, f.Close())

	for _, p := range []string{tifPath, bmpPath} {
		img, meta, err := LoadImage(p)
		require.NoError(t, err, p)
		assert.Equal(t, image.Rect(0, 0, 7, 5), img.Bounds())
		assert.Equal(t, 7, meta.Width)
	}
}

func TestLoadImageErrors(t *testing.T) {
	_, _, err := LoadImage("")
	require.Error(t, err)

	_, _, err = LoadImage("doc.gif")
	var ipe *ImageProcessingError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "load", ipe.Operation)

	_, _, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	corrupt := filepath.Join(t.TempDir(), "corrupt.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("not a png"), 0o600))
	_, _, err = LoadImage(corrupt)
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "decode", ipe.Operation)
}

func TestSavePNGNil(t *testing.T) {
	assert.Error(t, SavePNG(filepath.Join(t.TempDir(), "x.png"), nil))
}

func TestCropImageRect(t *testing.T) {
	img := solid(20, 10, color.White)
	out := CropImageRect(img, image.Rect(5, 2, 15, 8))
	assert.Equal(t, image.Rect(0, 0, 10, 6), out.Bounds())

	out = CropImageRect(img, image.Rect(15, 5, 40, 40))
	assert.Equal(t, image.Rect(0, 0, 5, 5), out.Bounds())

	out = CropImageRect(img, image.Rect(30, 30, 40, 40))
	assert.True(t, out.Bounds().Empty())
}

func TestToRGBAShiftsOrigin(t *testing.T) {
	src := image.NewGray(image.Rect(3, 4, 8, 9))
	src.SetGray(3, 4, color.Gray{Y: 77})
	out := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 5, 5), out.Bounds())
	r, _, _, _ := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(77)<<8|77, r)
}

func TestDrawRect(t *testing.T) {
	img := solid(10, 10, color.White)
	red := color.RGBA{R: 255, A: 255}
	DrawRect(img, image.Rect(2, 2, 8, 8), red, 1)

	assert.Equal(t, red, img.RGBAAt(2, 2))
	assert.Equal(t, red, img.RGBAAt(7, 7))
	assert.Equal(t, red, img.RGBAAt(5, 2))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(5, 5))

	// outside the image is a no-op
	DrawRect(img, image.Rect(20, 20, 30, 30), red, 2)
}
