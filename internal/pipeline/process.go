package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/MeKo-Tech/laytext/internal/debug"
	"github.com/MeKo-Tech/laytext/internal/geometry"
	"github.com/MeKo-Tech/laytext/internal/layout"
	"github.com/MeKo-Tech/laytext/internal/ocr"
	"github.com/MeKo-Tech/laytext/internal/reconcile"
	"github.com/MeKo-Tech/laytext/internal/utils"
)

const (
	passPrimary = "primary"
	passDigits  = "digits"
)

// DetectAndOrder finds the regions of a page and returns them in reading
// order. The second result is true when the full-page fallback was used.
func (p *Pipeline) DetectAndOrder(ctx context.Context, page image.Image) ([]geometry.Rect, bool, error) {
	if page == nil {
		return nil, false, errors.New("pipeline: nil page image")
	}
	w, h := page.Bounds().Dx(), page.Bounds().Dy()
	rects, err := p.Detector.Detect(ctx, page)
	if err != nil {
		return nil, false, fmt.Errorf("detect regions: %w", err)
	}
	fallback := false
	if len(rects) == 0 && p.cfg.FallbackFullPage && w > 0 && h > 0 {
		rects = []geometry.Rect{geometry.FullPage(w, h)}
		fallback = true
	}
	return layout.Order(rects, w, p.cfg.Order.RTL, p.cfg.Order.OverlapRatio), fallback, nil
}

// layoutPage detects and orders the regions of img and writes the overlay
// to the debug sink. It returns the origin-based page image, the ordered
// rects and a PageResult without regions.
func (p *Pipeline) layoutPage(ctx context.Context, doc string, pageNum int, img image.Image) (image.Image, []geometry.Rect, *PageResult, error) {
	if img == nil {
		return nil, nil, nil, errors.New("pipeline: nil page image")
	}

	// Detector rects are relative to the origin.
	var page image.Image = img
	if img.Bounds().Min != (image.Point{}) {
		page = utils.ToRGBA(img)
	}
	w, h := page.Bounds().Dx(), page.Bounds().Dy()

	ordered, fallback, err := p.DetectAndOrder(ctx, page)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("page %d: %w", pageNum, err)
	}

	if _, nop := p.sink.(debug.NopSink); !nop {
		overlay := debug.RenderOverlay(page, ordered, p.cfg.Overlay)
		if err := p.sink.WriteOverlay(doc, pageNum, overlay); err != nil {
			p.logger.Warn("write overlay failed", "document", doc, "page", pageNum, "error", err)
		}
	}

	res := &PageResult{
		Number:   pageNum,
		Width:    w,
		Height:   h,
		Regions:  make([]RegionResult, 0, len(ordered)),
		Fallback: fallback,
	}
	return page, ordered, res, nil
}

// LayoutPage detects and orders the regions of one page without running
// OCR. Regions carry only their index and rect.
func (p *Pipeline) LayoutPage(ctx context.Context, doc string, pageNum int, img image.Image) (*PageResult, error) {
	start := time.Now()
	_, ordered, res, err := p.layoutPage(ctx, doc, pageNum, img)
	if err != nil {
		return nil, err
	}
	for i, rect := range ordered {
		res.Regions = append(res.Regions, RegionResult{Index: i + 1, Rect: rect})
	}
	res.Duration = time.Since(start)
	return res, nil
}

// ProcessPage runs detection, ordering and OCR for one page. doc and pageNum
// only name debug artifacts and log lines. A failed OCR call never fails the
// page; it is recorded on the region instead.
func (p *Pipeline) ProcessPage(ctx context.Context, doc string, pageNum int, img image.Image) (*PageResult, error) {
	start := time.Now()
	page, ordered, res, err := p.layoutPage(ctx, doc, pageNum, img)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(ordered))
	for i, rect := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		region := p.processRegion(ctx, doc, pageNum, i+1, page, rect)
		res.Regions = append(res.Regions, region)
		if region.Text != "" {
			texts = append(texts, region.Text)
		}
	}
	res.Text = strings.Join(texts, "\n")
	res.Duration = time.Since(start)

	p.metrics.ObservePage(len(ordered), res.Duration)
	p.logger.Debug("page processed",
		"document", doc,
		"page", pageNum,
		"regions", len(ordered),
		"fallback", res.Fallback,
		"failed_regions", res.failedRegions(),
		"duration", res.Duration)
	return res, nil
}

func (p *Pipeline) processRegion(ctx context.Context, doc string, pageNum, index int, page image.Image, rect geometry.Rect) RegionResult {
	cfg := p.cfg.OCR
	w, h := page.Bounds().Dx(), page.Bounds().Dy()

	crop := rect.Pad(cfg.CropPadding, w, h)
	cropImg := utils.CropImageRect(page, crop.ImageRect())
	if err := p.sink.WriteCrop(doc, pageNum, index, cropImg); err != nil {
		p.logger.Warn("write crop failed", "document", doc, "page", pageNum, "region", index, "error", err)
	}

	ratio := float64(rect.Height()) / float64(max(1, h))
	region := RegionResult{
		Index:       index,
		Rect:        rect,
		Crop:        crop,
		HeightRatio: ratio,
		PSM:         p.primaryPSM(ratio),
	}

	primary, err := p.recognize(ctx, cropImg, ocr.Options{
		Language:    cfg.Language,
		PSM:         region.PSM,
		OEM:         cfg.OEM,
		Whitelist:   cfg.Whitelist,
		ExtraConfig: cfg.ExtraConfig,
		Preprocess:  cfg.Preprocess,
	})
	p.metrics.ObserveOCR(passPrimary, err)
	if err != nil {
		region.Err = err.Error()
		p.logger.Warn("primary ocr failed", "document", doc, "page", pageNum, "region", index, "error", err)
	}
	region.Primary = primary

	if p.digitsPassApplies(ratio) {
		region.DigitsPass = true
		digits, err := p.recognize(ctx, cropImg, ocr.Options{
			Language:    cfg.Language,
			PSM:         cfg.DigitsPSM,
			OEM:         cfg.OEM,
			Whitelist:   cfg.DigitsWhitelist,
			ExtraConfig: cfg.DigitsExtraConfig,
			Preprocess:  cfg.Preprocess,
		})
		p.metrics.ObserveOCR(passDigits, err)
		if err != nil {
			// Treated as absent.
			p.logger.Debug("digit ocr failed", "document", doc, "page", pageNum, "region", index, "error", err)
			digits = ""
		}
		region.Digits = digits
	}

	mode := reconcile.ModePrefer
	if cfg.DigitsReplace {
		mode = reconcile.ModeReplace
	}
	region.Text = strings.TrimSpace(reconcile.Reconcile(region.Primary, region.Digits, mode, cfg.DigitsMinChars))
	return region
}

// primaryPSM picks the line PSM for short regions.
func (p *Pipeline) primaryPSM(heightRatio float64) int {
	cfg := p.cfg.OCR
	if cfg.LinePSM != ocr.Unset && heightRatio <= cfg.LinePSMHeightRatio {
		return cfg.LinePSM
	}
	return cfg.PSM
}

func (p *Pipeline) digitsPassApplies(heightRatio float64) bool {
	cfg := p.cfg.OCR
	if !cfg.DigitsPass {
		return false
	}
	switch cfg.DigitsScope {
	case ScopeAll:
		return true
	case ScopeShort:
		return heightRatio <= cfg.DigitsHeightRatio
	default:
		return false
	}
}

// recognize runs one engine call, bounded by the configured timeout.
func (p *Pipeline) recognize(ctx context.Context, img image.Image, opts ocr.Options) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", errors.New("empty crop")
	}
	if p.cfg.OCR.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.OCR.Timeout)
		defer cancel()
	}
	text, err := ocr.Recognize(ctx, p.Engine, img, opts)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return text, nil
}
