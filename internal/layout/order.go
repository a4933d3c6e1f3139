// Package layout linearizes detected regions into reading order by clustering
// them into columns of horizontally overlapping rectangles.
package layout

import (
	"sort"

	"github.com/MeKo-Tech/laytext/internal/geometry"
)

// DefaultOverlapRatio is the column overlap used when none is configured.
const DefaultOverlapRatio = 0.3

// column holds indices into the working slice plus the running x-extent.
type column struct {
	left, right int
	members     []int
}

func (c *column) add(idx int, r geometry.Rect) {
	c.members = append(c.members, idx)
	c.left = min(c.left, r.Left)
	c.right = max(c.right, r.Right)
}

// accepts reports whether r overlaps the column by at least ratio of the
// narrower of the two widths. Touching is not overlapping.
func (c *column) accepts(r geometry.Rect, ratio float64) bool {
	overlap := r.HorizontalOverlap(c.left, c.right)
	if overlap <= 0 {
		return false
	}
	narrower := min(r.Width(), c.right-c.left)
	return float64(overlap)/float64(max(1, narrower)) >= ratio
}

// Order returns rects in reading order. Columns are read left to right and
// each column top to bottom; with rtl the page is read right to left.
//
// Right-to-left ordering runs the left-to-right algorithm on the page
// mirrored across pageWidth, so a layout and its mirror always produce
// mirrored sequences. Ties keep their input order.
func Order(rects []geometry.Rect, pageWidth int, rtl bool, overlapRatio float64) []geometry.Rect {
	if len(rects) == 0 {
		return []geometry.Rect{}
	}
	work := make([]geometry.Rect, len(rects))
	for i, r := range rects {
		if rtl {
			r = r.MirrorX(pageWidth)
		}
		work[i] = r
	}

	ordered := orderLTR(work, overlapRatio)
	if rtl {
		for i, r := range ordered {
			ordered[i] = r.MirrorX(pageWidth)
		}
	}
	return ordered
}

func orderLTR(rects []geometry.Rect, overlapRatio float64) []geometry.Rect {
	byCenter := make([]int, len(rects))
	for i := range byCenter {
		byCenter[i] = i
	}
	sort.SliceStable(byCenter, func(a, b int) bool {
		return rects[byCenter[a]].CenterX() < rects[byCenter[b]].CenterX()
	})

	columns := clusterColumns(rects, byCenter, overlapRatio)
	sort.SliceStable(columns, func(a, b int) bool {
		return columns[a].left < columns[b].left
	})

	out := make([]geometry.Rect, 0, len(rects))
	for _, col := range columns {
		sort.SliceStable(col.members, func(a, b int) bool {
			ra, rb := rects[col.members[a]], rects[col.members[b]]
			if ra.Top != rb.Top {
				return ra.Top < rb.Top
			}
			return ra.Left < rb.Left
		})
		for _, idx := range col.members {
			out = append(out, rects[idx])
		}
	}
	return out
}

// clusterColumns clusters rects, visited in the given index order, into columns.
// Each rect joins the first column that accepts it, else starts a new one.
// Every index appears in exactly one column.
func clusterColumns(rects []geometry.Rect, visit []int, overlapRatio float64) []*column {
	var columns []*column
	for _, idx := range visit {
		r := rects[idx]
		placed := false
		for _, col := range columns {
			if col.accepts(r, overlapRatio) {
				col.add(idx, r)
				placed = true
				break
			}
		}
		if !placed {
			columns = append(columns, &column{left: r.Left, right: r.Right, members: []int{idx}})
		}
	}
	return columns
}
