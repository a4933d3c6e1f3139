package detector

// Mask is a binary image in row-major order. True marks foreground (ink).
type Mask struct {
	W   int
	H   int
	Pix []bool
}

// NewMask allocates an all-background mask.
func NewMask(w, h int) *Mask {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Mask{W: w, H: h, Pix: make([]bool, w*h)}
}

// At reports the value at (x, y); out-of-range reads are background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return false
	}
	return m.Pix[y*m.W+x]
}

// Set writes the value at (x, y), ignoring out-of-range writes.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return
	}
	m.Pix[y*m.W+x] = v
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	out := &Mask{W: m.W, H: m.H, Pix: make([]bool, len(m.Pix))}
	copy(out.Pix, m.Pix)
	return out
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v {
			n++
		}
	}
	return n
}

// Union returns m OR o. Both masks must share dimensions.
func (m *Mask) Union(o *Mask) *Mask {
	out := m.Clone()
	for i, v := range o.Pix {
		if v {
			out.Pix[i] = true
		}
	}
	return out
}

// Subtract returns m AND NOT o. Both masks must share dimensions.
func (m *Mask) Subtract(o *Mask) *Mask {
	out := m.Clone()
	for i, v := range o.Pix {
		if v {
			out.Pix[i] = false
		}
	}
	return out
}

// ClearBorder zeroes a strip of the given width along every edge.
func (m *Mask) ClearBorder(margin int) {
	if margin <= 0 {
		return
	}
	for y := range m.H {
		for x := range m.W {
			if x < margin || y < margin || x >= m.W-margin || y >= m.H-margin {
				m.Pix[y*m.W+x] = false
			}
		}
	}
}
