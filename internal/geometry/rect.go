// Package geometry provides the integer rectangle used across detection,
// ordering and cropping.
package geometry

import "image"

// Rect is an axis-aligned rectangle in pixel coordinates. Right and Bottom are
// exclusive, so Width = Right-Left.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// NewRect constructs a Rect ensuring min/max ordering.
func NewRect(x1, y1, x2, y2 int) Rect {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Rect{Left: x1, Top: y1, Right: x2, Bottom: y2}
}

// FromImageRect converts an image.Rectangle.
func FromImageRect(r image.Rectangle) Rect {
	r = r.Canon()
	return Rect{Left: r.Min.X, Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y}
}

// FullPage returns the rectangle covering a w×h page.
func FullPage(w, h int) Rect { return Rect{Right: w, Bottom: h} }

// Width returns the rectangle width.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the rectangle height.
func (r Rect) Height() int { return r.Bottom - r.Top }

// CenterX returns the horizontal center.
func (r Rect) CenterX() float64 { return float64(r.Left+r.Right) / 2 }

// CenterY returns the vertical center.
func (r Rect) CenterY() float64 { return float64(r.Top+r.Bottom) / 2 }

// Area returns width*height, or 0 for degenerate rectangles.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Empty reports whether the rectangle has no positive extent.
func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// Clip intersects r with [0,w)×[0,h). The boolean is false when nothing with a
// positive area remains.
func (r Rect) Clip(w, h int) (Rect, bool) {
	c := Rect{
		Left:   clampInt(r.Left, 0, w),
		Top:    clampInt(r.Top, 0, h),
		Right:  clampInt(r.Right, 0, w),
		Bottom: clampInt(r.Bottom, 0, h),
	}
	if c.Empty() {
		return Rect{}, false
	}
	return c, true
}

// Pad grows the rectangle by p on every side and clips it to a w×h page.
// Non-positive padding returns the clipped input.
func (r Rect) Pad(p, w, h int) Rect {
	if p < 0 {
		p = 0
	}
	out, _ := Rect{Left: r.Left - p, Top: r.Top - p, Right: r.Right + p, Bottom: r.Bottom + p}.Clip(w, h)
	return out
}

// Intersect returns the overlapping part of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Left:   max(r.Left, o.Left),
		Top:    max(r.Top, o.Top),
		Right:  min(r.Right, o.Right),
		Bottom: min(r.Bottom, o.Bottom),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// IoU returns intersection over union of two rectangles.
func (r Rect) IoU(o Rect) float64 {
	inter := r.Intersect(o).Area()
	if inter == 0 {
		return 0
	}
	union := r.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// HorizontalOverlap returns the length of the shared x-extent with [left,right).
func (r Rect) HorizontalOverlap(left, right int) int {
	ov := min(r.Right, right) - max(r.Left, left)
	if ov < 0 {
		return 0
	}
	return ov
}

// MirrorX reflects the rectangle across the vertical axis of a page of width w.
func (r Rect) MirrorX(w int) Rect {
	return Rect{Left: w - r.Right, Top: r.Top, Right: w - r.Left, Bottom: r.Bottom}
}

// ImageRect converts to an image.Rectangle.
func (r Rect) ImageRect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
