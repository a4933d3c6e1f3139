package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/laytext/internal/batch"
	"github.com/MeKo-Tech/laytext/internal/config"
	"github.com/MeKo-Tech/laytext/internal/debug"
	"github.com/MeKo-Tech/laytext/internal/pipeline"
	"github.com/MeKo-Tech/laytext/internal/render"
)

// LayoutRegion is one ordered region in the layout JSON.
type LayoutRegion struct {
	Index  int `json:"index"`
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// LayoutPage is the layout of one page.
type LayoutPage struct {
	Page     int            `json:"page"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Fallback bool           `json:"fallback"`
	Regions  []LayoutRegion `json:"regions"`
}

// LayoutDocument is written to <output-dir>/<name>_layout.json.
type LayoutDocument struct {
	Document string       `json:"document"`
	Pages    []LayoutPage `json:"pages"`
}

func newLayoutCommand(a *app) *cobra.Command {
	layoutCmd := &cobra.Command{
		Use:   "layout [files or directories...]",
		Short: "Detect text regions and reading order without OCR",
		Long: `Detect the text regions of each page and put them into reading order.
For every page an overlay image <name>_page_<n>_order.png is written, and
for every document a <name>_layout.json listing the ordered regions.

Examples:
  laytext layout page.png -o layout/
  laytext layout scans/ --rtl --recursive`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runLayout,
	}
	addPageFlags(layoutCmd, config.DefaultConfig())
	layoutCmd.Flags().BoolP("quiet", "q", false, "do not list written files")
	return layoutCmd
}

func (a *app) runLayout(cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	fs := cmd.Flags()
	recursive, _ := fs.GetBool("recursive")
	include, _ := fs.GetStringSlice("include")
	exclude, _ := fs.GetStringSlice("exclude")
	quiet, _ := fs.GetBool("quiet")

	files, stems, err := batch.Discover(args, recursive, include, exclude)
	if err != nil {
		return err
	}
	outDir := cfg.General.OutputDir
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p, err := a.buildPipeline(cfg, debug.DirSink{Dir: outDir}, nil)
	if err != nil {
		return err
	}
	renderer, err := render.New(cfg.ToRenderOptions())
	if err != nil {
		return err
	}

	failed := 0
	for i, file := range files {
		if err := cmd.Context().Err(); err != nil {
			return err
		}
		doc, err := layoutDocument(cmd.Context(), p, renderer, file, stems[i], cfg.General.DPI)
		if err == nil {
			var out string
			out, err = writeLayout(outDir, stems[i], doc)
			if err == nil && !quiet {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", file, out)
			}
		}
		if err != nil {
			failed++
			a.logger.Error("layout failed", "document", file, "error", err)
		}
	}
	if failed == len(files) {
		return batch.ErrAllFailed
	}
	return nil
}

func layoutDocument(ctx context.Context, p *pipeline.Pipeline, renderer render.Renderer, path, stem string, dpi int) (*LayoutDocument, error) {
	pages, err := renderer.Render(ctx, path, dpi)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	doc := &LayoutDocument{Document: path, Pages: make([]LayoutPage, 0, len(pages))}
	for _, pg := range pages {
		res, err := p.LayoutPage(ctx, stem, pg.Number, pg.Image)
		if err != nil {
			return nil, err
		}
		lp := LayoutPage{
			Page:     res.Number,
			Width:    res.Width,
			Height:   res.Height,
			Fallback: res.Fallback,
			Regions:  make([]LayoutRegion, 0, len(res.Regions)),
		}
		for _, r := range res.Regions {
			lp.Regions = append(lp.Regions, LayoutRegion{
				Index: r.Index, Left: r.Rect.Left, Top: r.Rect.Top, Right: r.Rect.Right, Bottom: r.Rect.Bottom,
			})
		}
		doc.Pages = append(doc.Pages, lp)
	}
	return doc, nil
}

func writeLayout(dir, stem string, doc *LayoutDocument) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode layout: %w", err)
	}
	path := filepath.Join(dir, stem+"_layout.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil { //nolint:gosec // G306: output is meant to be readable
		return "", fmt.Errorf("write layout: %w", err)
	}
	return path, nil
}
