package detector

import (
	"sort"

	"github.com/MeKo-Tech/laytext/internal/geometry"
)

// MergeCandidates reconciles two candidate sets. Candidates are visited by area
// descending. One is dropped when a kept box overlaps it with
// IoU >= iouThreshold and the two areas are comparable, meaning
// smaller/larger >= areaRatio.
func MergeCandidates(primary, secondary []geometry.Rect, iouThreshold, areaRatio float64) []geometry.Rect {
	combined := make([]geometry.Rect, 0, len(primary)+len(secondary))
	combined = append(combined, primary...)
	combined = append(combined, secondary...)
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Area() > combined[j].Area()
	})

	kept := make([]geometry.Rect, 0, len(combined))
	for _, cand := range combined {
		if !suppressed(cand, kept, iouThreshold, areaRatio) {
			kept = append(kept, cand)
		}
	}
	return kept
}

func suppressed(cand geometry.Rect, kept []geometry.Rect, iouThreshold, areaRatio float64) bool {
	for _, k := range kept {
		if cand.IoU(k) < iouThreshold {
			continue
		}
		a, b := cand.Area(), k.Area()
		if float64(min(a, b))/float64(max(1, max(a, b))) >= areaRatio {
			return true
		}
	}
	return false
}
