package detector

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/laytext/internal/mempool"
)

// grayPlane converts img to 8-bit luminance using imaging's Rec. 601 weights.
func grayPlane(img image.Image) ([]uint8, int, int) {
	g := imaging.Grayscale(img)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	out := make([]uint8, w*h)
	for y := range h {
		row := g.Pix[y*g.Stride:]
		for x := range w {
			out[y*w+x] = row[x*4]
		}
	}
	return out, w, h
}

// normalizeBlockSize forces the adaptive window to an odd size of at least 3.
func normalizeBlockSize(block int) int {
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	return block
}

// boxMean computes the rounded mean of every block×block window with
// replicated borders. The filter is separable so each pass is a running sum.
func boxMean(gray []uint8, w, h, block int) []uint8 {
	r := block / 2
	clamp := func(v, hi int) int {
		if v < 0 {
			return 0
		}
		if v > hi {
			return hi
		}
		return v
	}

	rows := mempool.Ints.Get(w * h)
	defer mempool.Ints.Put(rows)
	for y := range h {
		base := y * w
		sum := 0
		for k := -r; k <= r; k++ {
			sum += int(gray[base+clamp(k, w-1)])
		}
		rows[base] = sum
		for x := 1; x < w; x++ {
			sum += int(gray[base+clamp(x+r, w-1)]) - int(gray[base+clamp(x-r-1, w-1)])
			rows[base+x] = sum
		}
	}

	count := block * block
	out := make([]uint8, w*h)
	for x := range w {
		sum := 0
		for k := -r; k <= r; k++ {
			sum += rows[clamp(k, h-1)*w+x]
		}
		out[x] = uint8((sum + count/2) / count)
		for y := 1; y < h; y++ {
			sum += rows[clamp(y+r, h-1)*w+x] - rows[clamp(y-r-1, h-1)*w+x]
			out[y*w+x] = uint8((sum + count/2) / count)
		}
	}
	return out
}

// AdaptiveThreshold marks a pixel as ink when it is darker than its local
// mean by at least floor(c). This is mean-C thresholding with an inverted
// output, so dark text on a light page becomes foreground.
func AdaptiveThreshold(gray []uint8, w, h, block int, c float64) *Mask {
	m := NewMask(w, h)
	if w == 0 || h == 0 {
		return m
	}
	block = normalizeBlockSize(block)
	mean := boxMean(gray, w, h, block)
	delta := int(math.Floor(c))
	for i, g := range gray {
		if int(g)-int(mean[i]) <= -delta {
			m.Pix[i] = true
		}
	}
	return m
}

// Binarize grayscales img and applies AdaptiveThreshold.
func Binarize(img image.Image, block int, c float64) *Mask {
	gray, w, h := grayPlane(img)
	return AdaptiveThreshold(gray, w, h, block, c)
}
