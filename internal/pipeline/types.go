package pipeline

import (
	"time"

	"github.com/MeKo-Tech/laytext/internal/geometry"
)

// RegionResult is the OCR outcome of one region in reading order.
type RegionResult struct {
	Index       int           `json:"index"` // 1-based reading-order position
	Rect        geometry.Rect `json:"rect"`
	Crop        geometry.Rect `json:"crop"` // padded rect actually sent to the engine
	HeightRatio float64       `json:"height_ratio"`
	PSM         int           `json:"psm"`
	Primary     string        `json:"primary"`
	Digits      string        `json:"digits,omitempty"`
	DigitsPass  bool          `json:"digits_pass"`
	Text        string        `json:"text"`
	Err         string        `json:"error,omitempty"`
}

// Failed reports whether the primary pass failed for this region.
func (r RegionResult) Failed() bool { return r.Err != "" }

// PageResult holds the ordered regions and joined text of one page.
type PageResult struct {
	Number   int            `json:"page"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Regions  []RegionResult `json:"regions"`
	Fallback bool           `json:"fallback"` // no region detected, full page used
	Text     string         `json:"text"`
	Duration time.Duration  `json:"duration_ns"`
}

// Rects returns the region rectangles in reading order.
func (p *PageResult) Rects() []geometry.Rect {
	out := make([]geometry.Rect, len(p.Regions))
	for i, r := range p.Regions {
		out[i] = r.Rect
	}
	return out
}

// failedRegions counts regions whose primary pass failed.
func (p *PageResult) failedRegions() int {
	n := 0
	for _, r := range p.Regions {
		if r.Failed() {
			n++
		}
	}
	return n
}

// DocumentResult aggregates the pages of one input document.
type DocumentResult struct {
	Name     string        `json:"name"`
	Pages    []*PageResult `json:"pages"`
	Text     string        `json:"text"`
	Duration time.Duration `json:"duration_ns"`
}

// RegionCount returns the number of regions across all pages.
func (d *DocumentResult) RegionCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Regions)
	}
	return n
}
