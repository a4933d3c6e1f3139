package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/MeKo-Tech/laytext/internal/pipeline"
	"github.com/MeKo-Tech/laytext/internal/render"
)

// DocumentProcessor turns rendered pages into text. *pipeline.Pipeline
// implements it.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, name string, pages []render.Page, isPDF bool) (*pipeline.DocumentResult, error)
}

type documentJob struct {
	index  int
	input  string
	stem   string
	output string
}

type documentResult struct {
	index   int
	outcome DocumentOutcome
}

// processDocumentsParallel runs jobs on a pool of workers and returns the
// outcomes in job order.
func processDocumentsParallel(ctx context.Context, proc DocumentProcessor, renderer render.Renderer,
	jobs []documentJob, config *Config,
) []DocumentOutcome {
	workers := max(1, min(config.Workers, len(jobs)))
	progress := config.progress()
	progress.OnStart(len(jobs))

	jobCh := make(chan documentJob)
	resCh := make(chan documentResult, len(jobs))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				resCh <- documentResult{index: job.index, outcome: processOne(ctx, proc, renderer, job, config)}
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resCh)
	}()

	outcomes := make([]DocumentOutcome, len(jobs))
	received := make([]bool, len(jobs))
	done := 0
	for res := range resCh {
		outcomes[res.index] = res.outcome
		received[res.index] = true
		done++
		if !res.outcome.Succeeded() {
			progress.OnError(res.index+1, fmt.Errorf("%s: %s", res.outcome.Input, res.outcome.Error))
		}
		progress.OnProgress(done, len(jobs))
	}
	progress.OnComplete()

	// Jobs never dispatched because of cancellation.
	for i, ok := range received {
		if ok {
			continue
		}
		cause := context.Cause(ctx)
		if cause == nil {
			cause = errors.New("not processed")
		}
		outcomes[i] = DocumentOutcome{Input: jobs[i].input, Error: cause.Error()}
	}
	return outcomes
}

// processOne renders, recognizes and writes a single document. Failures are
// reported in the outcome and never abort the batch.
func processOne(ctx context.Context, proc DocumentProcessor, renderer render.Renderer,
	job documentJob, config *Config,
) DocumentOutcome {
	start := time.Now()
	log := config.logger().With("run_id", config.RunID, "document", job.input)
	out := DocumentOutcome{Input: job.input}

	fail := func(err error) DocumentOutcome {
		out.Error = err.Error()
		out.Duration = time.Since(start)
		config.Metrics.ObserveDocument(err, 0, out.Duration)
		log.Error("document failed", "error", err, "duration", out.Duration)
		return out
	}

	pages, err := renderer.Render(ctx, job.input, config.DPI)
	if err != nil {
		return fail(fmt.Errorf("render: %w", err))
	}
	out.Pages = len(pages)

	doc, err := proc.ProcessDocument(ctx, job.stem, pages, render.IsPDF(job.input))
	if doc != nil {
		out.Document = doc
		out.Regions = doc.RegionCount()
	}
	if err != nil {
		return fail(err)
	}

	if err := os.WriteFile(job.output, []byte(doc.Text), 0o644); err != nil { //nolint:gosec // G306: text output is meant to be readable
		return fail(fmt.Errorf("write output: %w", err))
	}
	out.Output = job.output
	out.Chars = utf8.RuneCountInString(doc.Text)
	out.Duration = time.Since(start)
	config.Metrics.ObserveDocument(nil, out.Chars, out.Duration)
	log.Info("document written",
		"output", job.output,
		"pages", out.Pages,
		"regions", out.Regions,
		"duration", out.Duration)
	return out
}
