package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// maskFromRows builds a mask from rows where '#' is foreground.
func maskFromRows(rows ...string) *Mask {
	h := len(rows)
	w := 0
	if h > 0 {
		w = len(rows[0])
	}
	m := NewMask(w, h)
	for y, row := range rows {
		for x, c := range row {
			m.Set(x, y, c == '#')
		}
	}
	return m
}

func maskRows(m *Mask) []string {
	out := make([]string, m.H)
	for y := range m.H {
		var b strings.Builder
		for x := range m.W {
			if m.At(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		out[y] = b.String()
	}
	return out
}

func TestMaskBasics(t *testing.T) {
	m := maskFromRows(
		"##..",
		"..#.",
	)
	assert.Equal(t, 3, m.Count())
	assert.True(t, m.At(0, 0))
	assert.False(t, m.At(-1, 0))
	assert.False(t, m.At(4, 0))

	o := maskFromRows(
		"#...",
		"...#",
	)
	assert.Equal(t, []string{"##..", "..##"}, maskRows(m.Union(o)))
	assert.Equal(t, []string{".#..", "..#."}, maskRows(m.Subtract(o)))
	// inputs are untouched
	assert.Equal(t, 3, m.Count())
}

func TestClearBorder(t *testing.T) {
	m := maskFromRows(
		"#####",
		"#####",
		"#####",
		"#####",
	)
	m.ClearBorder(1)
	assert.Equal(t, []string{".....", ".###.", ".###.", "....."}, maskRows(m))

	m.ClearBorder(10)
	assert.Zero(t, m.Count())
}

func TestDilateErodeRow(t *testing.T) {
	m := maskFromRows("....#....")
	assert.Equal(t, []string{"...###..."}, maskRows(Apply(m, MorphDilate, Kernel{Width: 3, Height: 1})))
	assert.Equal(t, []string{"........."}, maskRows(Apply(m, MorphErode, Kernel{Width: 3, Height: 1})))
}

func TestErodeTreatsOutsideAsForeground(t *testing.T) {
	m := maskFromRows("###......")
	assert.Equal(t, []string{"##......."}, maskRows(Apply(m, MorphErode, Kernel{Width: 3, Height: 1})))
}

func TestCloseFillsGaps(t *testing.T) {
	m := maskFromRows(
		"............",
		"............",
		"..###..###..",
		"............",
		"..###..###..",
		"............",
		"............",
	)
	closed := Close(m, 3, 3)
	assert.Equal(t, []string{
		"............",
		"............",
		"..########..",
		"..########..",
		"..########..",
		"............",
		"............",
	}, maskRows(closed))
}

func TestCloseEvenKernelDoesNotShift(t *testing.T) {
	row := strings.Repeat(".", 15) + "###" + strings.Repeat(".", 6) + "###" + strings.Repeat(".", 13)
	closed := Close(maskFromRows(row), 10, 1)
	want := strings.Repeat(".", 15) + strings.Repeat("#", 12) + strings.Repeat(".", 13)
	assert.Equal(t, []string{want}, maskRows(closed))
}

func TestOpenRemovesThinNoise(t *testing.T) {
	m := maskFromRows(
		"#.......",
		"..####..",
		"..####..",
		"........",
	)
	opened := Open(m, 2, 2)
	assert.Equal(t, []string{
		"........",
		"..####..",
		"..####..",
		"........",
	}, maskRows(opened))
}

func TestApplyNoneAndDegenerateKernel(t *testing.T) {
	m := maskFromRows(".#.")
	assert.Equal(t, maskRows(m), maskRows(Apply(m, MorphNone, Kernel{Width: 5, Height: 5})))
	assert.Equal(t, maskRows(m), maskRows(Apply(m, MorphDilate, Kernel{})))
}

func TestRemoveLines(t *testing.T) {
	rows := make([]string, 20)
	for y := range rows {
		rows[y] = strings.Repeat(".", 40)
	}
	// a 30px horizontal rule and a small glyph
	rows[10] = "....." + strings.Repeat("#", 30) + "....."
	rows[3] = "...##..................................."
	rows[4] = "...##..................................."
	m := maskFromRows(rows...)

	out := RemoveLines(m, 0.1, 1)
	require.Equal(t, 4, out.Count(), "only the glyph survives")
	assert.True(t, out.At(3, 3))
	assert.False(t, out.At(20, 10))
}

func TestLineLengthFloor(t *testing.T) {
	assert.Equal(t, 10, lineLength(20, 30, 0.1))
	assert.Equal(t, 150, lineLength(1000, 600, 0.15))
}
