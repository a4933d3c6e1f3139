package detector

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/laytext/internal/geometry"
	"github.com/MeKo-Tech/laytext/internal/ocr"
	"github.com/MeKo-Tech/laytext/internal/testutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, KindMorphology, cfg.Kind)
	assert.Equal(t, 50, cfg.MinArea)
	assert.Equal(t, 10, cfg.KernelWidth)
	assert.Equal(t, 3, cfg.KernelHeight)
	assert.Equal(t, 25, cfg.AdaptiveBlockSize)
	assert.InDelta(t, 15.0, cfg.AdaptiveC, 1e-9)
	assert.True(t, cfg.RemoveLines)
	assert.InDelta(t, 0.85, cfg.MaxAreaRatio, 1e-9)
	assert.False(t, cfg.MergeLineFree)
}

func TestConfigNormalizeClamps(t *testing.T) {
	cfg := Config{AdaptiveBlockSize: 10, KernelWidth: 0, KernelHeight: -2, MinArea: -1, LineThickness: 0, BorderMargin: -3, LineLengthRatio: -1, MaxAreaRatio: -0.5}
	n := cfg.Normalize()
	assert.Equal(t, KindMorphology, n.Kind)
	assert.Equal(t, 11, n.AdaptiveBlockSize)
	assert.Equal(t, 1, n.KernelWidth)
	assert.Equal(t, 1, n.KernelHeight)
	assert.Equal(t, 0, n.MinArea)
	assert.Equal(t, 1, n.LineThickness)
	assert.Equal(t, 0, n.BorderMargin)
	assert.Zero(t, n.LineLengthRatio)
	assert.Zero(t, n.MaxAreaRatio)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("ocr-boxes")
	require.NoError(t, err)
	assert.Equal(t, KindOCRBoxes, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindMorphology, k)

	_, err = ParseKind("simple_cv")
	assert.Error(t, err)
}

func TestMorphologyDetectorTwoColumns(t *testing.T) {
	img, blocks := testutil.TwoColumnPage()
	d := NewMorphologyDetector(DefaultConfig())

	got, err := d.Detect(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, got, 4)
	// raster order of first pixel: both top blocks, then both bottom blocks
	assert.Equal(t, []geometry.Rect{blocks[0], blocks[2], blocks[1], blocks[3]}, got)
}

func TestMorphologyDetectorBlankPage(t *testing.T) {
	d := NewMorphologyDetector(DefaultConfig())
	got, err := d.Detect(context.Background(), testutil.BlankPage(200, 150))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMorphologyDetectorNilImage(t *testing.T) {
	d := NewMorphologyDetector(DefaultConfig())
	_, err := d.Detect(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilImage)
}

func TestMorphologyDetectorCancelled(t *testing.T) {
	img, _ := testutil.TwoColumnPage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMorphologyDetector(DefaultConfig()).Detect(ctx, img)
	assert.True(t, errors.Is(err, context.Canceled))
}

func ruledPage() (*image.RGBA, geometry.Rect, geometry.Rect) {
	style := testutil.DefaultPageStyle()
	img := testutil.NewPage(600, 400, color.White)
	block := testutil.DrawWordBlock(img, geometry.Rect{Left: 40, Top: 40, Right: 246, Bottom: 118}, style)
	rule := geometry.Rect{Left: 50, Top: 320, Right: 550, Bottom: 322}
	testutil.FillRect(img, rule, color.Black)
	return img, block, rule
}

func TestMorphologyDetectorRemovesRulingLines(t *testing.T) {
	img, block, rule := ruledPage()

	cfg := DefaultConfig()
	got, err := NewMorphologyDetector(cfg).Detect(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, []geometry.Rect{block}, got)

	cfg.RemoveLines = false
	got, err = NewMorphologyDetector(cfg).Detect(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, []geometry.Rect{block, rule}, got)
}

func TestMorphologyDetectorMergeLineFree(t *testing.T) {
	img, block, rule := ruledPage()

	cfg := DefaultConfig()
	cfg.MergeLineFree = true
	got, err := NewMorphologyDetector(cfg).Detect(context.Background(), img)
	require.NoError(t, err)
	// the duplicate block collapses, the rule found without line removal is added
	assert.Equal(t, []geometry.Rect{block, rule}, got)
}

func TestMorphologyDetectorMaxAreaFallsBackToUnclosedMask(t *testing.T) {
	style := testutil.DefaultPageStyle()
	img := testutil.NewPage(120, 100, color.White)
	testutil.DrawWordBlock(img, geometry.Rect{Left: 10, Top: 10, Right: 110, Bottom: 90}, style)

	cfg := DefaultConfig()
	cfg.RemoveLines = false
	cfg.MaxAreaRatio = 0.5
	got, err := NewMorphologyDetector(cfg).Detect(context.Background(), img)
	require.NoError(t, err)

	// closing merges the block into one box above the cap, so individual
	// words from the unclosed mask are returned instead
	require.Len(t, got, 30)
	for _, r := range got {
		assert.LessOrEqual(t, r.Area(), 6000)
		assert.Equal(t, style.LineHeight, r.Height())
	}
}

func TestMorphologyDetectorMinArea(t *testing.T) {
	img, _ := testutil.TwoColumnPage()
	cfg := DefaultConfig()
	cfg.MinArea = 1 << 20
	got, err := NewMorphologyDetector(cfg).Detect(context.Background(), img)
	require.NoError(t, err)
	assert.Empty(t, got)
}

type fakeBoxer struct {
	words []ocr.WordBox
	err   error
	lang  string
}

func (f *fakeBoxer) WordBoxes(_ context.Context, _ image.Image, lang string) ([]ocr.WordBox, error) {
	f.lang = lang
	return f.words, f.err
}

func TestOCRBoxDetector(t *testing.T) {
	boxer := &fakeBoxer{words: []ocr.WordBox{
		{Rect: geometry.Rect{Left: 1, Top: 1, Right: 20, Bottom: 10}, Text: "Total", Confidence: 91},
		{Rect: geometry.Rect{Left: 30, Top: 1, Right: 40, Bottom: 10}, Text: "x", Confidence: 12},
		{Rect: geometry.Rect{Left: 50, Top: 1, Right: 60, Bottom: 10}, Text: "", Confidence: 95},
		{Rect: geometry.Rect{Left: 90, Top: 40, Right: 140, Bottom: 70}, Text: "42", Confidence: 50},
	}}
	cfg := DefaultConfig()
	cfg.Kind = KindOCRBoxes
	d, err := New(cfg, boxer)
	require.NoError(t, err)

	got, err := d.Detect(context.Background(), testutil.BlankPage(100, 60))
	require.NoError(t, err)
	assert.Equal(t, []geometry.Rect{
		{Left: 1, Top: 1, Right: 20, Bottom: 10},
		{Left: 90, Top: 40, Right: 100, Bottom: 60},
	}, got)
	assert.Equal(t, "eng+ara", boxer.lang)
}

func TestOCRBoxDetectorPropagatesEngineError(t *testing.T) {
	boxer := &fakeBoxer{err: errors.New("engine down")}
	d := NewOCRBoxDetector(DefaultConfig(), boxer)
	_, err := d.Detect(context.Background(), testutil.BlankPage(10, 10))
	assert.ErrorContains(t, err, "engine down")
}

func TestNewSelectsByKind(t *testing.T) {
	d, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	assert.IsType(t, &MorphologyDetector{}, d)

	cfg := DefaultConfig()
	cfg.Kind = KindOCRBoxes
	_, err = New(cfg, nil)
	assert.ErrorIs(t, err, ocr.ErrEngineUnavailable)

	cfg.Kind = "neural"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}
