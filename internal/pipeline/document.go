package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MeKo-Tech/laytext/internal/render"
)

// ProcessDocument processes the pages of one document concurrently, bounded by
// Config.Workers, and joins their text in page order. Page breaks are only
// written for PDFs.
func (p *Pipeline) ProcessDocument(ctx context.Context, name string, pages []render.Page, isPDF bool) (*DocumentResult, error) {
	start := time.Now()
	results := make([]*PageResult, len(pages))

	p.progress.OnStart(len(pages))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, pg := range pages {
		g.Go(func() error {
			res, err := p.ProcessPage(gctx, name, pg.Number, pg.Image)
			if err != nil {
				p.progress.OnError(pg.Number, err)
				return err
			}
			results[i] = res
			p.progress.OnProgress(int(done.Add(1)), len(pages))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	p.progress.OnComplete()

	doc := &DocumentResult{
		Name:  name,
		Pages: results,
		Text:  JoinPages(results, p.cfg.IncludePageBreaks, isPDF),
	}
	doc.Duration = time.Since(start)

	regions, failed := 0, 0
	for _, r := range results {
		regions += len(r.Regions)
		failed += r.failedRegions()
	}
	if regions > 0 && failed == regions {
		return doc, fmt.Errorf("%s: %w", name, ErrAllRegionsFailed)
	}

	p.logger.Info("document processed",
		"document", name,
		"pages", len(results),
		"regions", regions,
		"failed_regions", failed,
		"duration", doc.Duration)
	return doc, nil
}

// JoinPages combines page texts. With page breaks each PDF page is prefixed
// by "--- Page N ---" and pages are separated by a blank line; otherwise by a
// single newline. Pages whose text is empty are dropped.
func JoinPages(pages []*PageResult, includeBreaks, isPDF bool) string {
	sections := make([]string, 0, len(pages))
	for _, pg := range pages {
		text := pg.Text
		if includeBreaks && isPDF {
			text = fmt.Sprintf("--- Page %d ---\n%s", pg.Number, text)
		}
		if text = strings.TrimSpace(text); text != "" {
			sections = append(sections, text)
		}
	}
	sep := "\n"
	if includeBreaks {
		sep = "\n\n"
	}
	return strings.Join(sections, sep)
}
