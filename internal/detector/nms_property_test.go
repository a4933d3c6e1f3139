package detector

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/MeKo-Tech/laytext/internal/geometry"
)

func genCandidate() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 300),
		gen.IntRange(0, 300),
		gen.IntRange(1, 120),
		gen.IntRange(1, 120),
	).Map(func(vals []interface{}) geometry.Rect {
		x, y := vals[0].(int), vals[1].(int)
		return geometry.Rect{Left: x, Top: y, Right: x + vals[2].(int), Bottom: y + vals[3].(int)}
	})
}

// TestMergeCandidates_SelfMergeIdempotent verifies merging a set with itself
// gives the same result as merging it alone: no duplicate survives.
func TestMergeCandidates_SelfMergeIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("merge(L, L) == merge(L, nil)", prop.ForAll(
		func(boxes []geometry.Rect, iou, ratio float64) bool {
			self := MergeCandidates(boxes, boxes, iou, ratio)
			alone := MergeCandidates(boxes, nil, iou, ratio)
			return reflect.DeepEqual(self, alone)
		},
		gen.SliceOfN(12, genCandidate()),
		gen.Float64Range(0.05, 1.0),
		gen.Float64Range(0.0, 1.0),
	))

	properties.TestingRun(t)
}

// TestMergeCandidates_DisjointUnchanged verifies non-overlapping candidates all survive.
func TestMergeCandidates_DisjointUnchanged(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("grid cells survive a self merge", prop.ForAll(
		func(n int, cell int) bool {
			var boxes []geometry.Rect
			for i := range n {
				x := (i % 5) * (cell + 3)
				y := (i / 5) * (cell + 3)
				boxes = append(boxes, geometry.Rect{Left: x, Top: y, Right: x + cell, Bottom: y + cell})
			}
			got := MergeCandidates(boxes, boxes, 0.7, 0.25)
			return reflect.DeepEqual(got, MergeCandidates(boxes, nil, 0.7, 0.25)) && len(got) == n
		},
		gen.IntRange(0, 20),
		gen.IntRange(1, 40),
	))

	properties.TestingRun(t)
}

// TestMergeCandidates_NeverGrows verifies the output is a subset of the input.
func TestMergeCandidates_NeverGrows(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("output drawn from inputs", prop.ForAll(
		func(a, b []geometry.Rect) bool {
			got := MergeCandidates(a, b, 0.5, 0.25)
			if len(got) > len(a)+len(b) {
				return false
			}
			seen := map[geometry.Rect]bool{}
			for _, r := range append(append([]geometry.Rect{}, a...), b...) {
				seen[r] = true
			}
			for _, r := range got {
				if !seen[r] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(8, genCandidate()),
		gen.SliceOfN(8, genCandidate()),
	))

	properties.TestingRun(t)
}
