package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/laytext/internal/batch"
	"github.com/MeKo-Tech/laytext/internal/testutil"
)

func readLayout(t *testing.T, path string) LayoutDocument {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc LayoutDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestLayoutWritesOverlayAndJSON(t *testing.T) {
	in := t.TempDir()
	page := writeTwoColumnPage(t, in, "scan.png")
	_, blocks := testutil.TwoColumnPage()
	out := t.TempDir()
	eng := &stubEngine{}

	res := runCLI(t, eng, "layout", page, "-o", out)
	require.NoError(t, res.err, res.stderr)
	assert.Empty(t, eng.recorded(), "layout must not run OCR")

	jsonPath := filepath.Join(out, "scan_layout.json")
	assert.Contains(t, res.stdout, page+" -> "+jsonPath)
	assert.FileExists(t, filepath.Join(out, "scan_page_1_order.png"))

	doc := readLayout(t, jsonPath)
	assert.Equal(t, page, doc.Document)
	require.Len(t, doc.Pages, 1)
	pg := doc.Pages[0]
	assert.Equal(t, 1, pg.Page)
	assert.False(t, pg.Fallback)
	require.Len(t, pg.Regions, len(blocks))
	for i, r := range pg.Regions {
		assert.Equal(t, i+1, r.Index)
		assert.Equal(t, blocks[i].Left, r.Left)
		assert.Equal(t, blocks[i].Top, r.Top)
		assert.Equal(t, blocks[i].Right, r.Right)
		assert.Equal(t, blocks[i].Bottom, r.Bottom)
	}
}

func TestLayoutRTL(t *testing.T) {
	in := t.TempDir()
	page := writeTwoColumnPage(t, in, "scan.png")
	_, blocks := testutil.TwoColumnPage()
	out := t.TempDir()

	res := runCLI(t, &stubEngine{}, "layout", page, "-o", out, "--rtl", "-q")
	require.NoError(t, res.err, res.stderr)
	assert.Empty(t, res.stdout)

	doc := readLayout(t, filepath.Join(out, "scan_layout.json"))
	require.Len(t, doc.Pages[0].Regions, 4)
	first := doc.Pages[0].Regions[0]
	assert.Equal(t, blocks[2].Left, first.Left)
	assert.Equal(t, blocks[2].Top, first.Top)
}

func TestLayoutBlankPageFallback(t *testing.T) {
	in := t.TempDir()
	page := filepath.Join(in, "blank.png")
	require.NoError(t, testutil.WritePNG(page, testutil.BlankPage(120, 80)))
	out := t.TempDir()

	res := runCLI(t, &stubEngine{}, "layout", page, "-o", out)
	require.NoError(t, res.err, res.stderr)

	doc := readLayout(t, filepath.Join(out, "blank_layout.json"))
	require.Len(t, doc.Pages, 1)
	assert.True(t, doc.Pages[0].Fallback)
	assert.Equal(t, []LayoutRegion{{Index: 1, Left: 0, Top: 0, Right: 120, Bottom: 80}}, doc.Pages[0].Regions)
}

func TestLayoutAllFailed(t *testing.T) {
	in := t.TempDir()
	bad := filepath.Join(in, "broken.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o600))

	res := runCLI(t, &stubEngine{}, "layout", bad, "-o", t.TempDir())
	require.ErrorIs(t, res.err, batch.ErrAllFailed)
	assert.Contains(t, res.stderr, "layout failed")
}
