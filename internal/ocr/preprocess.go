package ocr

import (
	"image"
	"math"
	"slices"

	"github.com/disintegration/imaging"
)

// PreprocessOptions controls the image cleanup done before recognition.
type PreprocessOptions struct {
	Scale    float64 // resize factor; values <= 0 or 1 leave size unchanged
	Binarize bool    // Otsu threshold to black/white
	Denoise  bool    // 3x3 median filter
	Sharpen  bool    // unsharp mask, 1.5*img - 0.5*gaussian(sigma=1)
}

// DefaultPreprocessOptions returns the settings used for scanned pages.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{Scale: 2.0, Binarize: true, Denoise: true, Sharpen: true}
}

// Preprocess converts img to grayscale and applies the configured steps in
// the order resize, denoise, sharpen, binarize.
func Preprocess(img image.Image, opts PreprocessOptions) *image.Gray {
	gray := imaging.Grayscale(img)
	if opts.Scale > 0 && opts.Scale != 1.0 {
		b := gray.Bounds()
		nw := max(1, int(math.Round(float64(b.Dx())*opts.Scale)))
		nh := max(1, int(math.Round(float64(b.Dy())*opts.Scale)))
		gray = imaging.Resize(gray, nw, nh, imaging.CatmullRom)
	}

	plane := toGray(gray)
	if opts.Denoise {
		plane = medianFilter3(plane)
	}
	if opts.Sharpen {
		plane = unsharp(plane)
	}
	if opts.Binarize {
		t := otsuThreshold(plane.Pix)
		for i, v := range plane.Pix {
			if v > t {
				plane.Pix[i] = 255
			} else {
				plane.Pix[i] = 0
			}
		}
	}
	return plane
}

// toGray extracts the luminance channel of an already grayscale NRGBA image.
func toGray(src *image.NRGBA) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		row := src.Pix[y*src.Stride:]
		for x := range w {
			out.Pix[y*out.Stride+x] = row[x*4]
		}
	}
	return out
}

// medianFilter3 applies a 3x3 median with replicated borders.
func medianFilter3(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(src.Rect)
	var win [9]uint8
	for y := range h {
		for x := range w {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				yy := min(max(y+dy, 0), h-1)
				for dx := -1; dx <= 1; dx++ {
					xx := min(max(x+dx, 0), w-1)
					win[n] = src.Pix[yy*src.Stride+xx]
					n++
				}
			}
			s := win
			slices.Sort(s[:])
			out.Pix[y*out.Stride+x] = s[4]
		}
	}
	return out
}

// unsharp computes 1.5*src - 0.5*blur(src) with a sigma 1 Gaussian.
func unsharp(src *image.Gray) *image.Gray {
	blurred := imaging.Blur(src, 1.0)
	out := image.NewGray(src.Rect)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := range h {
		brow := blurred.Pix[y*blurred.Stride:]
		for x := range w {
			v := 1.5*float64(src.Pix[y*src.Stride+x]) - 0.5*float64(brow[x*4])
			out.Pix[y*out.Stride+x] = uint8(math.Max(0, math.Min(255, math.Round(v))))
		}
	}
	return out
}

// otsuThreshold returns the level maximizing between-class variance.
// Pixels strictly above it are background.
func otsuThreshold(pix []uint8) uint8 {
	if len(pix) == 0 {
		return 0
	}
	var histogram [256]int
	for _, v := range pix {
		histogram[v]++
	}
	total := len(pix)
	var sumAll float64
	for i, c := range histogram {
		sumAll += float64(i) * float64(c)
	}

	var sumB, maxVariance float64
	best, wB := 0, 0
	for t := range 256 {
		wB += histogram[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(histogram[t])
		meanB := sumB / float64(wB)
		meanF := (sumAll - sumB) / float64(wF)
		variance := float64(wB) * float64(wF) * (meanB - meanF) * (meanB - meanF)
		if variance > maxVariance {
			maxVariance = variance
			best = t
		}
	}
	return uint8(best)
}
