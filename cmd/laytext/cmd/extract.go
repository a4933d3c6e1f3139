package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/laytext/internal/batch"
	"github.com/MeKo-Tech/laytext/internal/config"
	"github.com/MeKo-Tech/laytext/internal/debug"
	"github.com/MeKo-Tech/laytext/internal/metrics"
	"github.com/MeKo-Tech/laytext/internal/pipeline"
	"github.com/MeKo-Tech/laytext/internal/render"
)

func newExtractCommand(a *app) *cobra.Command {
	extractCmd := &cobra.Command{
		Use:   "extract [files or directories...]",
		Short: "Extract text from scanned PDFs and images in reading order",
		Long: `Extract text from scanned documents. Each page is split into text blocks,
the blocks are put into reading order and recognized one by one. Every input
document produces <output-dir>/<name>.txt.

Supported formats: PDF, PNG, JPEG, TIFF, BMP

Examples:
  laytext extract scan.pdf
  laytext extract scans/ --recursive --workers 4 -o text/
  laytext extract invoice.pdf --profile arabic --digits-pass --page-breaks
  laytext extract scans/ --summary-format json --summary-file summary.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runExtract,
	}

	d := config.DefaultConfig()
	fs := extractCmd.Flags()
	addPageFlags(extractCmd, d)

	fs.Bool("page-breaks", d.General.IncludePageBreaks, "prefix PDF pages with '--- Page N ---' and separate them with a blank line")
	fs.Bool("fallback-full-page", d.General.FallbackFullPage, "recognize the whole page when no region is found")
	fs.IntP("workers", "w", d.General.Workers, "number of documents processed in parallel")
	fs.Int("page-workers", d.General.PageWorkers, "number of pages of one document processed in parallel")
	fs.String("debug-dir", "", "directory for overlay and crop images")
	bindFlag(fs, "page-breaks", "general.include_page_breaks")
	bindFlag(fs, "fallback-full-page", "general.fallback_full_page")
	bindFlag(fs, "workers", "general.workers")
	bindFlag(fs, "page-workers", "general.page_workers")
	bindFlag(fs, "debug-dir", "general.debug_dir")

	fs.Int("psm", d.OCR.PSM, "tesseract page segmentation mode")
	fs.Int("oem", d.OCR.OEM, "tesseract engine mode")
	fs.String("whitelist", "", "characters tesseract may output")
	fs.Duration("timeout", d.OCR.Timeout, "deadline for each OCR call (0 = none)")
	fs.Bool("digits-pass", d.OCR.DigitsPass, "run a second digits-only OCR pass")
	fs.String("digits-scope", d.OCR.DigitsPassScope, "regions that get the digits pass: none, all, short")
	fs.Bool("digits-replace", d.OCR.DigitsReplace, "replace the primary text with the digits result when it qualifies")
	bindFlag(fs, "psm", "ocr.psm")
	bindFlag(fs, "oem", "ocr.oem")
	bindFlag(fs, "whitelist", "ocr.whitelist")
	bindFlag(fs, "timeout", "ocr.timeout")
	bindFlag(fs, "digits-pass", "ocr.digits_pass")
	bindFlag(fs, "digits-scope", "ocr.digits_pass_scope")
	bindFlag(fs, "digits-replace", "ocr.digits_replace")

	fs.String("summary-format", d.Output.SummaryFormat, "summary format: text, json, csv")
	fs.String("summary-file", "", "write the summary to a file instead of stdout")
	fs.String("metrics-file", "", "write Prometheus metrics in textfile format")
	bindFlag(fs, "summary-format", "output.summary_format")
	bindFlag(fs, "summary-file", "output.summary_file")
	bindFlag(fs, "metrics-file", "output.metrics_file")

	fs.Bool("progress", false, "show a progress bar on stderr")
	fs.BoolP("quiet", "q", false, "suppress progress and the summary on stdout")
	fs.Duration("progress-interval", 100*time.Millisecond, "progress update interval")
	return extractCmd
}

// addPageFlags registers the flags shared by extract and layout: input
// discovery, rendering, detection and ordering.
func addPageFlags(c *cobra.Command, d config.Config) {
	fs := c.Flags()
	fs.StringP("output-dir", "o", d.General.OutputDir, "output directory")
	fs.Int("dpi", d.General.DPI, "rendering resolution for PDF pages")
	fs.String("pages", "", "PDF pages to process, e.g. 1-3,5 (default: all)")
	fs.String("password", "", "password for encrypted PDFs")
	fs.String("backend", d.Render.Backend, "PDF backend: auto, pdfcpu, poppler")
	bindFlag(fs, "output-dir", "general.output_dir")
	bindFlag(fs, "dpi", "general.dpi")
	bindFlag(fs, "pages", "render.pages")
	bindFlag(fs, "password", "render.password")
	bindFlag(fs, "backend", "render.backend")

	fs.String("engine", d.OCR.Engine, "OCR engine: cli, gosseract")
	fs.String("tesseract-cmd", d.OCR.TesseractCmd, "tesseract binary for the cli engine")
	fs.StringP("lang", "l", d.OCR.Lang, "tesseract languages, e.g. eng+ara")
	fs.String("detector", d.CV.Detector, "region detector: morphology, ocr-boxes")
	fs.Bool("rtl", d.Order.RTL, "order columns right to left")
	fs.Float64("column-overlap", d.Order.ColumnOverlapRatio, "horizontal overlap ratio that puts two regions in one column")
	bindFlag(fs, "engine", "ocr.engine")
	bindFlag(fs, "tesseract-cmd", "ocr.tesseract_cmd")
	bindFlag(fs, "lang", "ocr.lang")
	bindFlag(fs, "detector", "cv.detector")
	bindFlag(fs, "rtl", "order.rtl")
	bindFlag(fs, "column-overlap", "order.column_overlap_ratio")

	fs.BoolP("recursive", "r", false, "recursively scan directories")
	fs.StringSlice("include", nil, "file name patterns to include")
	fs.StringSlice("exclude", nil, "file name patterns to exclude")
}

// buildPipeline wires the engine, detector, debug sink and metrics from cfg.
func (a *app) buildPipeline(cfg *config.Config, sink debug.Sink, m *metrics.Metrics) (*pipeline.Pipeline, error) {
	eng, err := a.newEngine(cfg)
	if err != nil {
		return nil, fmt.Errorf("ocr engine: %w", err)
	}
	pcfg, err := cfg.ToPipelineConfig()
	if err != nil {
		return nil, err
	}
	p, err := pipeline.NewBuilder().
		WithConfig(pcfg).
		WithEngine(eng).
		WithLogger(a.logger).
		WithDebugSink(sink).
		WithMetrics(m).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	a.logger.Debug("pipeline ready", "info", p.Info())
	return p, nil
}

func (a *app) runExtract(cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	m := metrics.New()

	p, err := a.buildPipeline(cfg, debug.NewDirSink(cfg.General.DebugDir), m)
	if err != nil {
		return err
	}
	if err := checkEngine(p.Engine); err != nil {
		return err
	}
	renderer, err := render.New(cfg.ToRenderOptions())
	if err != nil {
		return err
	}

	bcfg := &batch.Config{
		OutputDir:      cfg.General.OutputDir,
		DPI:            cfg.General.DPI,
		Workers:        cfg.General.Workers,
		ProgressWriter: cmd.ErrOrStderr(),
		Logger:         a.logger,
		Metrics:        m,
	}
	fs := cmd.Flags()
	bcfg.Recursive, _ = fs.GetBool("recursive")
	bcfg.IncludePatterns, _ = fs.GetStringSlice("include")
	bcfg.ExcludePatterns, _ = fs.GetStringSlice("exclude")
	bcfg.ShowProgress, _ = fs.GetBool("progress")
	bcfg.Quiet, _ = fs.GetBool("quiet")
	bcfg.ProgressInterval, _ = fs.GetDuration("progress-interval")

	result, runErr := batch.ProcessBatch(cmd.Context(), args, bcfg, p, renderer)
	if result == nil {
		return runErr
	}

	var errs []error
	if !bcfg.Quiet || cfg.Output.SummaryFile != "" {
		if err := result.SaveResults(cmd.OutOrStdout(), cfg.Output.SummaryFormat, cfg.Output.SummaryFile); err != nil {
			errs = append(errs, fmt.Errorf("failed to save summary: %w", err))
		}
	}
	if cfg.Output.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics: %w", err))
		}
	}
	return errors.Join(append([]error{runErr}, errs...)...)
}
