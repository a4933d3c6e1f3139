package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/MeKo-Tech/laytext/internal/metrics"
	"github.com/MeKo-Tech/laytext/internal/pipeline"
)

// Config holds all configuration for batch processing.
type Config struct {
	OutputDir string
	DPI       int
	Workers   int // documents processed concurrently (0 = 1)

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ProgressInterval time.Duration
	ProgressWriter   io.Writer // defaults to stderr

	RunID   string
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Config) progress() pipeline.ProgressCallback {
	if !c.ShowProgress || c.Quiet {
		return pipeline.NoOpProgressCallback{}
	}
	cb := pipeline.NewConsoleProgressCallback(c.ProgressWriter, "Documents: ")
	if c.ProgressInterval > 0 {
		cb = cb.WithUpdateInterval(c.ProgressInterval)
	}
	return cb
}

// DocumentOutcome is the result of one input document.
type DocumentOutcome struct {
	Input    string                   `json:"input"`
	Output   string                   `json:"output,omitempty"`
	Pages    int                      `json:"pages"`
	Regions  int                      `json:"regions"`
	Chars    int                      `json:"chars"`
	Duration time.Duration            `json:"duration_ns"`
	Error    string                   `json:"error,omitempty"`
	Document *pipeline.DocumentResult `json:"-"`
}

// Succeeded reports whether the document produced an output file.
func (o DocumentOutcome) Succeeded() bool { return o.Error == "" }

// Result holds the result of batch processing, in input order.
type Result struct {
	RunID       string            `json:"run_id"`
	Documents   []DocumentOutcome `json:"documents"`
	Duration    time.Duration     `json:"duration_ns"`
	WorkerCount int               `json:"workers"`
}

// Succeeded counts documents without error.
func (r *Result) Succeeded() int {
	n := 0
	for _, d := range r.Documents {
		if d.Succeeded() {
			n++
		}
	}
	return n
}

// Failed counts documents with an error.
func (r *Result) Failed() int { return len(r.Documents) - r.Succeeded() }

// Pages sums the pages of all documents.
func (r *Result) Pages() int {
	n := 0
	for _, d := range r.Documents {
		n += d.Pages
	}
	return n
}

// Regions sums the regions of all documents.
func (r *Result) Regions() int {
	n := 0
	for _, d := range r.Documents {
		n += d.Regions
	}
	return n
}

// FormatResults formats the batch summary in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatSummary(r, format)
}

// SaveResults writes the formatted summary to outputFile, or to w when
// outputFile is empty.
func (r *Result) SaveResults(w io.Writer, format, outputFile string) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write summary file: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprint(w, output)
	return err
}
