package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/laytext/internal/batch"
)

func TestExtractWritesTextAndSummary(t *testing.T) {
	in := t.TempDir()
	writeTwoColumnPage(t, in, "page.png")
	out := filepath.Join(t.TempDir(), "text")
	eng := &stubEngine{}

	res := runCLI(t, eng, "extract", in, "-o", out, "--summary-format", "json")
	require.NoError(t, res.err, res.stderr)

	data, err := os.ReadFile(filepath.Join(out, "page.txt"))
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.Len(t, lines, len(eng.recorded()))
	for _, l := range lines {
		assert.Equal(t, "word", l)
	}

	var summary struct {
		RunID     string `json:"run_id"`
		Succeeded int    `json:"succeeded"`
		Failed    int    `json:"failed"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summary))
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Contains(t, res.stderr, `"msg":"document written"`)
}

func TestExtractFlagsOverrideConfigFile(t *testing.T) {
	in := t.TempDir()
	page := writeTwoColumnPage(t, in, "page.png")
	cfgFile := filepath.Join(t.TempDir(), "laytext.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("ocr:\n  lang: ara\n  psm: 4\n  oem: 3\n"), 0o600))
	eng := &stubEngine{}

	res := runCLI(t, eng, "extract", page, "--config", cfgFile, "-o", t.TempDir(),
		"--lang", "eng", "--psm", "11", "-q")
	require.NoError(t, res.err, res.stderr)

	calls := eng.recorded()
	require.NotEmpty(t, calls)
	for _, c := range calls {
		assert.Equal(t, "eng", c.Language)
		assert.Equal(t, 3, c.OEM)
		assert.NotEqual(t, 4, c.PSM)
	}
	assert.Empty(t, res.stdout)
}

func TestExtractDigitsPass(t *testing.T) {
	in := t.TempDir()
	page := writeTwoColumnPage(t, in, "page.png")
	eng := &stubEngine{}

	res := runCLI(t, eng, "extract", page, "-o", t.TempDir(), "-q", "--digits-pass", "--digits-scope", "all")
	require.NoError(t, res.err, res.stderr)

	digits := 0
	for _, c := range eng.recorded() {
		if c.Whitelist != "" {
			digits++
			assert.Contains(t, c.Whitelist, "0123456789")
			assert.Contains(t, c.Whitelist, "٠")
		}
	}
	assert.Equal(t, len(eng.recorded())/2, digits)
}

func TestExtractArabicProfile(t *testing.T) {
	in := t.TempDir()
	page := writeTwoColumnPage(t, in, "page.png")
	eng := &stubEngine{}

	res := runCLI(t, eng, "extract", page, "-o", t.TempDir(), "-q", "--profile", "arabic", "--digits-pass=false")
	require.NoError(t, res.err, res.stderr)
	for _, c := range eng.recorded() {
		assert.Empty(t, c.Whitelist, "explicit --digits-pass=false must win over the profile")
	}
}

func TestExtractAllFailed(t *testing.T) {
	in := t.TempDir()
	writeTwoColumnPage(t, in, "a.png")
	writeTwoColumnPage(t, in, "b.png")
	out := t.TempDir()

	res := runCLI(t, &stubEngine{err: errors.New("engine crashed")}, "extract", in, "-o", out)
	require.ErrorIs(t, res.err, batch.ErrAllFailed)
	assert.Equal(t, ExitAllFailed, ExitCode(res.err))
	assert.Contains(t, res.stdout, "Documents: 2 (succeeded 0, failed 2)")
	assert.NoFileExists(t, filepath.Join(out, "a.txt"))
}

func TestExtractNoDocuments(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0o600))

	res := runCLI(t, &stubEngine{}, "extract", in)
	require.ErrorIs(t, res.err, batch.ErrNoDocuments)
	assert.Equal(t, ExitInvalid, ExitCode(res.err))
}

func TestExtractInvalidConfiguration(t *testing.T) {
	tests := [][]string{
		{"--log-level", "trace"},
		{"--dpi", "0"},
		{"--digits-scope", "sometimes"},
		{"--profile", "cyrillic"},
		{"--lang", "eng+1"},
	}
	for _, flags := range tests {
		t.Run(strings.Join(flags, " "), func(t *testing.T) {
			in := t.TempDir()
			page := writeTwoColumnPage(t, in, "page.png")
			eng := &stubEngine{}

			res := runCLI(t, eng, append([]string{"extract", page}, flags...)...)
			require.Error(t, res.err)
			assert.Contains(t, res.err.Error(), "loading configuration")
			assert.Equal(t, ExitInvalid, ExitCode(res.err))
			assert.Empty(t, eng.recorded())
		})
	}
}

func TestExtractEnvironmentOverride(t *testing.T) {
	in := t.TempDir()
	page := writeTwoColumnPage(t, in, "page.png")
	t.Setenv("LAYTEXT_OCR_LANG", "deu")
	eng := &stubEngine{}

	res := runCLI(t, eng, "extract", page, "-o", t.TempDir(), "-q")
	require.NoError(t, res.err, res.stderr)
	require.NotEmpty(t, eng.recorded())
	assert.Equal(t, "deu", eng.recorded()[0].Language)
}

func TestExtractMetricsAndSummaryFiles(t *testing.T) {
	in := t.TempDir()
	page := writeTwoColumnPage(t, in, "page.png")
	dir := t.TempDir()
	metricsFile := filepath.Join(dir, "laytext.prom")
	summaryFile := filepath.Join(dir, "summary.csv")

	res := runCLI(t, &stubEngine{}, "extract", page, "-o", dir, "-q",
		"--metrics-file", metricsFile, "--summary-file", summaryFile, "--summary-format", "csv")
	require.NoError(t, res.err, res.stderr)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `laytext_documents_total{status="success"} 1`)
	assert.Contains(t, string(prom), "laytext_pages_total 1")

	csv, err := os.ReadFile(summaryFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csv), "input,output,pages,regions,chars,duration_ms,error\n"))
	assert.Empty(t, res.stdout)
}

func TestExtractDebugDir(t *testing.T) {
	in := t.TempDir()
	page := writeTwoColumnPage(t, in, "scan.png")
	debugDir := filepath.Join(t.TempDir(), "debug")
	require.NoError(t, os.MkdirAll(debugDir, 0o750))

	res := runCLI(t, &stubEngine{}, "extract", page, "-o", t.TempDir(), "-q", "--debug-dir", debugDir)
	require.NoError(t, res.err, res.stderr)
	assert.FileExists(t, filepath.Join(debugDir, "scan_page_1_order.png"))
	assert.FileExists(t, filepath.Join(debugDir, "scan_page_1_crop_1.png"))
}

func TestExtractProgress(t *testing.T) {
	in := t.TempDir()
	page := writeTwoColumnPage(t, in, "page.png")

	res := runCLI(t, &stubEngine{}, "extract", page, "-o", t.TempDir(), "--progress",
		"--progress-interval", time.Millisecond.String())
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "Documents: 0/1 (0.0%)")
}
