package detector

// MorphologicalOp represents the type of morphological operation to perform.
type MorphologicalOp int

// Operations understood by Apply.
const (
	MorphNone    MorphologicalOp = iota // copy the mask unchanged
	MorphDilate                         // grow ink by the kernel
	MorphErode                          // keep pixels whose whole kernel is ink
	MorphOpening                        // erode then dilate, removes thin structures
	MorphClosing                        // dilate then erode, fills gaps
)

// Kernel is a rectangular structuring element anchored at its center
// (Width/2, Height/2).
type Kernel struct {
	Width  int
	Height int
}

func (k Kernel) normalized() Kernel {
	if k.Width < 1 {
		k.Width = 1
	}
	if k.Height < 1 {
		k.Height = 1
	}
	return k
}

// Apply runs op on m with kernel k and returns a new mask.
func Apply(m *Mask, op MorphologicalOp, k Kernel) *Mask {
	k = k.normalized()
	switch op {
	case MorphDilate:
		return dilate(m, k)
	case MorphErode:
		return erode(m, k)
	case MorphOpening:
		return dilate(erode(m, k), k)
	case MorphClosing:
		return erode(dilate(m, k), k)
	default:
		return m.Clone()
	}
}

// dilate sets a pixel when any pixel under the kernel is set. Pixels outside
// the image count as background.
func dilate(m *Mask, k Kernel) *Mask {
	hit := func(n, _ int) bool { return n > 0 }
	tmp := runPass(m, k.Width, true, false, hit)
	return runPass(tmp, k.Height, false, false, hit)
}

// erode keeps a pixel only when every in-image pixel under the reflected
// kernel is set. Pixels outside the image count as foreground, so erosion does
// not eat into shapes touching the page edge. Reflecting the window keeps
// opening and closing aligned for even kernel sizes.
func erode(m *Mask, k Kernel) *Mask {
	all := func(n, span int) bool { return n == span }
	tmp := runPass(m, k.Width, true, true, all)
	return runPass(tmp, k.Height, false, true, all)
}

// runPass applies a 1-D window of the given size along rows (horizontal) or
// columns. keep receives the foreground count in the clipped window and the
// clipped window length.
func runPass(m *Mask, size int, horizontal, reflect bool, keep func(n, span int) bool) *Mask {
	out := NewMask(m.W, m.H)
	if size <= 1 {
		copy(out.Pix, m.Pix)
		return out
	}
	before := size / 2
	if reflect {
		before = size - 1 - size/2
	}

	lines, length := m.H, m.W
	at := func(line, i int) int { return line*m.W + i }
	if !horizontal {
		lines, length = m.W, m.H
		at = func(line, i int) int { return i*m.W + line }
	}

	prefix := make([]int, length+1)
	for line := range lines {
		for i := range length {
			prefix[i+1] = prefix[i]
			if m.Pix[at(line, i)] {
				prefix[i+1]++
			}
		}
		for i := range length {
			lo := max(0, i-before)
			hi := min(length-1, i-before+size-1)
			n := prefix[hi+1] - prefix[lo]
			out.Pix[at(line, i)] = keep(n, hi-lo+1)
		}
	}
	return out
}

// Open erodes then dilates with a w×h rectangle.
func Open(m *Mask, w, h int) *Mask { return Apply(m, MorphOpening, Kernel{Width: w, Height: h}) }

// Close dilates then erodes with a w×h rectangle.
func Close(m *Mask, w, h int) *Mask { return Apply(m, MorphClosing, Kernel{Width: w, Height: h}) }

// lineLength returns the minimum run length treated as a ruling line.
func lineLength(w, h int, ratio float64) int {
	return max(10, int(float64(max(w, h))*ratio))
}

// RemoveLines subtracts long horizontal and vertical runs from m. Runs are
// found by opening with (length × thickness) and (thickness × length)
// rectangles.
func RemoveLines(m *Mask, ratio float64, thickness int) *Mask {
	length := lineLength(m.W, m.H, ratio)
	thickness = max(1, thickness)
	horiz := Open(m, length, thickness)
	vert := Open(m, thickness, length)
	return m.Subtract(horiz.Union(vert))
}
