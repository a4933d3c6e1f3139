package render

import (
	"context"
	"fmt"
	"image"
	"os"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFCPURenderer extracts the embedded page images of scanned PDFs. It does
// not rasterize vector content, so dpi has no effect: each page yields its
// largest embedded image at native resolution.
type PDFCPURenderer struct {
	pages    []int
	password string
}

// NewPDFCPURenderer creates a renderer limited to pages (nil for all).
func NewPDFCPURenderer(pages []int, password string) *PDFCPURenderer {
	return &PDFCPURenderer{pages: pages, password: password}
}

// Render implements Renderer.
func (r *PDFCPURenderer) Render(ctx context.Context, path string, _ int) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	readable, cleanup, err := decryptIfNeeded(path, r.password)
	if err != nil {
		return nil, &DocumentError{Path: path, Op: "decrypt", Err: err}
	}
	defer cleanup()

	f, err := os.Open(readable) //nolint:gosec // G304: Reading user-provided PDF file path is expected
	if err != nil {
		return nil, &DocumentError{Path: path, Op: "open", Err: err}
	}
	defer func() { _ = f.Close() }()

	var selected []string
	for _, n := range r.pages {
		selected = append(selected, strconv.Itoa(n))
	}

	largest := map[int]image.Image{}
	digest := func(img model.Image, _ bool, _ int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if img.Reader == nil || img.Thumb {
			return nil
		}
		decoded, _, decErr := image.Decode(img)
		if decErr != nil {
			// formats without a Go decoder (e.g. JPX) are skipped
			return nil
		}
		if cur, ok := largest[img.PageNr]; !ok || area(decoded) > area(cur) {
			largest[img.PageNr] = decoded
		}
		return nil
	}

	if err := api.ExtractImages(f, selected, digest, model.NewDefaultConfiguration()); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &DocumentError{Path: path, Op: "extract", Err: err}
	}
	if len(largest) == 0 {
		return nil, &DocumentError{Path: path, Op: "extract", Err: fmt.Errorf("no page images found")}
	}

	pages := make([]Page, 0, len(largest))
	for n, img := range largest {
		pages = append(pages, Page{Number: n, Image: img})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}

func area(img image.Image) int {
	b := img.Bounds()
	return b.Dx() * b.Dy()
}
