package debug

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/MeKo-Tech/laytext/internal/utils"
)

// Sink receives diagnostic images. Pages and crops are numbered from 1.
type Sink interface {
	WriteOverlay(doc string, page int, img image.Image) error
	WriteCrop(doc string, page, index int, img image.Image) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) WriteOverlay(string, int, image.Image) error    { return nil }
func (NopSink) WriteCrop(string, int, int, image.Image) error { return nil }

// DirSink writes PNG files into a directory.
type DirSink struct {
	Dir string
}

// NewDirSink returns a Sink writing into dir, or a NopSink when dir is empty.
func NewDirSink(dir string) Sink {
	if dir == "" {
		return NopSink{}
	}
	return DirSink{Dir: dir}
}

// OverlayPath returns <dir>/<doc>_page_<n>_order.png.
func (s DirSink) OverlayPath(doc string, page int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s_page_%d_order.png", doc, page))
}

// CropPath returns <dir>/<doc>_page_<n>_crop_<i>.png.
func (s DirSink) CropPath(doc string, page, index int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s_page_%d_crop_%d.png", doc, page, index))
}

// WriteOverlay implements Sink.
func (s DirSink) WriteOverlay(doc string, page int, img image.Image) error {
	return utils.SavePNG(s.OverlayPath(doc, page), img)
}

// WriteCrop implements Sink.
func (s DirSink) WriteCrop(doc string, page, index int, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return nil
	}
	return utils.SavePNG(s.CropPath(doc, page, index), img)
}
