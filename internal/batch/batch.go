// Package batch discovers input documents and runs them through the page
// pipeline on a pool of workers, writing one text file per document.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/MeKo-Tech/laytext/internal/render"
)

var (
	// ErrNoDocuments is returned when discovery finds no supported input.
	ErrNoDocuments = errors.New("no supported documents found")
	// ErrAllFailed is returned together with the result when no document succeeded.
	ErrAllFailed = errors.New("all documents failed")
)

// ProcessBatch discovers the documents named by paths and processes them.
// Individual document failures are recorded in the result; the returned error
// is non-nil only for input errors, cancellation, or when every document failed.
func ProcessBatch(ctx context.Context, paths []string, config *Config, proc DocumentProcessor, renderer render.Renderer) (*Result, error) {
	files, err := discoverDocuments(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover documents: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoDocuments
	}

	if config.RunID == "" {
		config.RunID = uuid.NewString()
	}
	if config.OutputDir == "" {
		config.OutputDir = "."
	}
	if err := os.MkdirAll(config.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	stems := uniqueStems(files)
	jobs := make([]documentJob, len(files))
	for i, f := range files {
		jobs[i] = documentJob{index: i, input: f, stem: stems[i], output: OutputPath(config.OutputDir, stems[i])}
	}

	log := config.logger().With("run_id", config.RunID)
	log.Info("batch started", "documents", len(files), "workers", max(1, config.Workers))

	start := time.Now()
	outcomes := processDocumentsParallel(ctx, proc, renderer, jobs, config)
	result := &Result{
		RunID:       config.RunID,
		Documents:   outcomes,
		Duration:    time.Since(start),
		WorkerCount: max(1, min(config.Workers, len(jobs))),
	}
	log.Info("batch finished",
		"succeeded", result.Succeeded(),
		"failed", result.Failed(),
		"pages", result.Pages(),
		"duration", result.Duration)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if result.Succeeded() == 0 {
		return result, ErrAllFailed
	}
	return result, nil
}
