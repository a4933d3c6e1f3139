// Package render turns input documents into page images. Scanned PDFs are
// rasterized by poppler's pdftoppm or have their page images extracted with
// pdfcpu; image files are decoded directly.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/laytext/internal/utils"
)

// ErrUnsupportedFormat is returned for files that are neither PDFs nor supported images.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// DocumentError reports a failure to read one input document.
type DocumentError struct {
	Path string
	Op   string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("render %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }

// Page is one rendered page. Number is 1-based and follows the source document.
type Page struct {
	Number int
	Image  image.Image
}

// Renderer produces the page images of a document.
type Renderer interface {
	Render(ctx context.Context, path string, dpi int) ([]Page, error)
}

// Backend names a PDF rasterizer.
type Backend string

const (
	BackendAuto    Backend = "auto"
	BackendPDFCPU  Backend = "pdfcpu"
	BackendPoppler Backend = "poppler"
)

// Options configures document rendering.
type Options struct {
	Backend     Backend
	Pages       string // e.g. "1-3,5"; empty selects every page
	Password    string // user password for encrypted PDFs
	PdftoppmCmd string
}

// SupportedExtensions lists every input extension the dispatcher accepts.
func SupportedExtensions() []string {
	return append([]string{".pdf"}, utils.SupportedImageExtensions...)
}

// IsSupported reports whether path has an extension the dispatcher accepts.
func IsSupported(path string) bool {
	return IsPDF(path) || utils.IsSupportedImage(path)
}

// IsPDF reports whether path has a .pdf extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Dispatcher routes documents to the image or PDF renderer by extension.
type Dispatcher struct {
	pdf    Renderer
	images Renderer
}

// New builds a Dispatcher. With BackendAuto poppler is used when pdftoppm is
// on PATH and pdfcpu otherwise.
func New(opts Options) (*Dispatcher, error) {
	pages, err := ParsePageRange(opts.Pages)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", opts.Pages, err)
	}
	poppler := NewPopplerRenderer(opts.PdftoppmCmd, pages, opts.Password)

	var pdf Renderer
	switch opts.Backend {
	case BackendPDFCPU:
		pdf = NewPDFCPURenderer(pages, opts.Password)
	case BackendPoppler:
		pdf = poppler
	case BackendAuto, "":
		if _, lookErr := exec.LookPath(poppler.cmd); lookErr == nil {
			pdf = poppler
		} else {
			pdf = NewPDFCPURenderer(pages, opts.Password)
		}
	default:
		return nil, fmt.Errorf("unknown render backend %q (want auto, pdfcpu or poppler)", opts.Backend)
	}
	return &Dispatcher{pdf: pdf, images: ImageRenderer{}}, nil
}

// Render implements Renderer.
func (d *Dispatcher) Render(ctx context.Context, path string, dpi int) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case IsPDF(path):
		return d.pdf.Render(ctx, path, dpi)
	case utils.IsSupportedImage(path):
		return d.images.Render(ctx, path, dpi)
	default:
		return nil, &DocumentError{Path: path, Op: "open", Err: ErrUnsupportedFormat}
	}
}

// ImageRenderer decodes a single image file as a one-page document.
type ImageRenderer struct{}

// Render implements Renderer. dpi is ignored; images keep their pixel size.
func (ImageRenderer) Render(ctx context.Context, path string, _ int) ([]Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := utils.LoadImage(path)
	if err != nil {
		return nil, &DocumentError{Path: path, Op: "decode", Err: err}
	}
	return []Page{{Number: 1, Image: img}}, nil
}

// selectPages keeps the pages listed in want, or all when want is empty.
func selectPages(pages []Page, want []int) []Page {
	if len(want) == 0 {
		return pages
	}
	keep := make(map[int]bool, len(want))
	for _, n := range want {
		keep[n] = true
	}
	out := pages[:0]
	for _, p := range pages {
		if keep[p.Number] {
			out = append(out, p)
		}
	}
	return out
}
