package detector

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genMask generates a random 24x16 mask.
func genMask() gopter.Gen {
	const w, h = 24, 16
	return gen.SliceOfN(w*h, gen.Bool()).Map(func(pix []bool) *Mask {
		return &Mask{W: w, H: h, Pix: pix}
	})
}

func subset(a, b *Mask) bool {
	for i, v := range a.Pix {
		if v && !b.Pix[i] {
			return false
		}
	}
	return true
}

// TestClose_Extensive verifies closing never removes foreground.
func TestClose_Extensive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("m ⊆ close(m)", prop.ForAll(
		func(m *Mask, kw, kh int) bool {
			return subset(m, Close(m, kw, kh))
		},
		genMask(),
		gen.IntRange(1, 12),
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t)
}

// TestOpen_AntiExtensive verifies opening never adds foreground.
func TestOpen_AntiExtensive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("open(m) ⊆ m", prop.ForAll(
		func(m *Mask, kw, kh int) bool {
			return subset(Open(m, kw, kh), m)
		},
		genMask(),
		gen.IntRange(1, 12),
		gen.IntRange(1, 6),
	))

	properties.TestingRun(t)
}

// TestRemoveLines_Subset verifies line removal only removes pixels.
func TestRemoveLines_Subset(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("removeLines(m) ⊆ m", prop.ForAll(
		func(m *Mask, ratio float64, thickness int) bool {
			return subset(RemoveLines(m, ratio, thickness), m)
		},
		genMask(),
		gen.Float64Range(0, 1),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}

// TestExternalBoxes_CoverForeground verifies every foreground pixel that lies
// on the outer frame is covered by some external box.
func TestExternalBoxes_CoverForeground(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("frame pixels are covered", prop.ForAll(
		func(m *Mask) bool {
			boxes := ExternalBoxes(m)
			for y := range m.H {
				for x := range m.W {
					if !m.At(x, y) || (x != 0 && y != 0 && x != m.W-1 && y != m.H-1) {
						continue
					}
					covered := false
					for _, b := range boxes {
						if x >= b.Left && x < b.Right && y >= b.Top && y < b.Bottom {
							covered = true
							break
						}
					}
					if !covered {
						return false
					}
				}
			}
			return true
		},
		genMask(),
	))

	properties.TestingRun(t)
}
