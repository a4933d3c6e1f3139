package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/laytext/internal/utils"
)

// DefaultPdftoppmCmd is the poppler rasterizer looked up on PATH.
const DefaultPdftoppmCmd = "pdftoppm"

// DefaultDPI is used when a non-positive dpi is requested.
const DefaultDPI = 300

type commandRunner func(ctx context.Context, name string, args []string) error

func execRunner(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s failed: %w (stderr: %s)", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// PopplerRenderer rasterizes PDFs with pdftoppm into PNG pages.
type PopplerRenderer struct {
	cmd      string
	pages    []int
	password string
	run      commandRunner
}

// NewPopplerRenderer creates a renderer; an empty cmd means "pdftoppm".
func NewPopplerRenderer(cmd string, pages []int, password string) *PopplerRenderer {
	if cmd == "" {
		cmd = DefaultPdftoppmCmd
	}
	return &PopplerRenderer{cmd: cmd, pages: pages, password: password, run: execRunner}
}

// Args returns the pdftoppm command line writing <prefix>-<n>.png files.
func (r *PopplerRenderer) Args(path, prefix string, dpi int) []string {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	args := []string{"-r", strconv.Itoa(dpi), "-png"}
	if len(r.pages) > 0 {
		args = append(args, "-f", strconv.Itoa(slices.Min(r.pages)), "-l", strconv.Itoa(slices.Max(r.pages)))
	}
	if r.password != "" {
		args = append(args, "-upw", r.password)
	}
	return append(args, path, prefix)
}

// Render implements Renderer.
func (r *PopplerRenderer) Render(ctx context.Context, path string, dpi int) ([]Page, error) {
	tempDir, err := os.MkdirTemp("", "laytext-render-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	if err := r.run(ctx, r.cmd, r.Args(path, filepath.Join(tempDir, "page"), dpi)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &DocumentError{Path: path, Op: "rasterize", Err: err}
	}

	pages, err := collectPages(tempDir)
	if err != nil {
		return nil, &DocumentError{Path: path, Op: "rasterize", Err: err}
	}
	pages = selectPages(pages, r.pages)
	if len(pages) == 0 {
		return nil, &DocumentError{Path: path, Op: "rasterize", Err: fmt.Errorf("no pages rendered")}
	}
	return pages, nil
}

// collectPages loads every page PNG in dir ordered by page number.
func collectPages(dir string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var pages []Page
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		n, err := pageNumberFromFilename(e.Name())
		if err != nil {
			continue
		}
		img, _, err := utils.LoadImage(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		pages = append(pages, Page{Number: n, Image: img})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}
