package detector

import (
	"github.com/MeKo-Tech/laytext/internal/geometry"
	"github.com/MeKo-Tech/laytext/internal/mempool"
)

// compStats represents statistics for a connected component.
type compStats struct {
	count    int
	minX     int
	minY     int
	maxX     int
	maxY     int
	external bool
}

func (c compStats) rect() geometry.Rect {
	return geometry.Rect{Left: c.minX, Top: c.minY, Right: c.maxX + 1, Bottom: c.maxY + 1}
}

var (
	dirs4 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	dirs8 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// outsideBackground marks background pixels 4-connected to the image frame.
// Background enclosed by foreground (holes) stays unmarked. The result comes
// from mempool.Bools.
func outsideBackground(m *Mask) []bool {
	w, h := m.W, m.H
	outside := mempool.Bools.Get(w * h)
	queue := make([]int, 0, 2*(w+h))
	seed := func(x, y int) {
		i := y*w + x
		if !m.Pix[i] && !outside[i] {
			outside[i] = true
			queue = append(queue, i)
		}
	}
	for x := range w {
		seed(x, 0)
		seed(x, h-1)
	}
	for y := range h {
		seed(0, y)
		seed(w-1, y)
	}
	for len(queue) > 0 {
		ci := queue[0]
		queue = queue[1:]
		cx, cy := ci%w, ci/w
		for _, d := range dirs4 {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			ni := ny*w + nx
			if !m.Pix[ni] && !outside[ni] {
				outside[ni] = true
				queue = append(queue, ni)
			}
		}
	}
	return outside
}

// connectedComponents finds 8-connected foreground components in raster order
// of their first pixel. A component is external when it touches the frame or
// borders the outside background.
func connectedComponents(m *Mask) []compStats {
	w, h := m.W, m.H
	if w == 0 || h == 0 {
		return nil
	}
	outside := outsideBackground(m)
	defer mempool.Bools.Put(outside)
	visited := mempool.Bools.Get(w * h)
	defer mempool.Bools.Put(visited)
	var comps []compStats
	queue := make([]int, 0, 64)

	for y := range h {
		for x := range w {
			idx := y*w + x
			if !m.Pix[idx] || visited[idx] {
				continue
			}
			st := compStats{minX: x, minY: y, maxX: x, maxY: y}
			visited[idx] = true
			queue = append(queue[:0], idx)
			for len(queue) > 0 {
				ci := queue[0]
				queue = queue[1:]
				cx, cy := ci%w, ci/w
				updateComponentStats(&st, cx, cy)
				if cx == 0 || cy == 0 || cx == w-1 || cy == h-1 {
					st.external = true
				}
				for _, d := range dirs4 {
					nx, ny := cx+d[0], cy+d[1]
					if nx >= 0 && ny >= 0 && nx < w && ny < h && outside[ny*w+nx] {
						st.external = true
					}
				}
				for _, d := range dirs8 {
					nx, ny := cx+d[0], cy+d[1]
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					ni := ny*w + nx
					if m.Pix[ni] && !visited[ni] {
						visited[ni] = true
						queue = append(queue, ni)
					}
				}
			}
			comps = append(comps, st)
		}
	}
	return comps
}

// updateComponentStats updates the component statistics with a new pixel.
func updateComponentStats(st *compStats, cx, cy int) {
	st.count++
	if cx < st.minX {
		st.minX = cx
	}
	if cy < st.minY {
		st.minY = cy
	}
	if cx > st.maxX {
		st.maxX = cx
	}
	if cy > st.maxY {
		st.maxY = cy
	}
}

// ExternalBoxes returns the bounding rectangle of every outermost component.
// Components nested inside another component's hole are skipped.
func ExternalBoxes(m *Mask) []geometry.Rect {
	comps := connectedComponents(m)
	out := make([]geometry.Rect, 0, len(comps))
	for _, c := range comps {
		if c.external {
			out = append(out, c.rect())
		}
	}
	return out
}

// filterByArea drops boxes below minArea and, when maxArea > 0, above maxArea.
func filterByArea(boxes []geometry.Rect, minArea, maxArea int) []geometry.Rect {
	out := boxes[:0:0]
	for _, b := range boxes {
		a := b.Area()
		if a < minArea {
			continue
		}
		if maxArea > 0 && a > maxArea {
			continue
		}
		out = append(out, b)
	}
	return out
}
