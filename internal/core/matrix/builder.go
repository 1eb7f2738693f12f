// Package matrix assembles a square symmetric similarity matrix by querying a
// similarity source for every label pair. The pairwise lookups are
// independent, so they are fanned out over a worker pool; every result lands
// in its own (row, column) cell, which keeps the assembled matrix identical
// regardless of completion order.
package matrix

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
)

// DefaultWorkers is the default number of lookup workers. 0 means use
// runtime.NumCPU().
const DefaultWorkers = 0

// Config holds configuration for the matrix builder.
type Config struct {
	Workers int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{Workers: DefaultWorkers}
}

// Builder assembles similarity matrices from a similarity source. The source
// boundary is the only place a failure can originate; the builder performs no
// retries of its own.
type Builder struct {
	config Config
	source ports.SimilaritySource
	logger ports.Logger
}

// NewBuilder creates a new matrix builder.
func NewBuilder(config Config, source ports.SimilaritySource, logger ports.Logger) (*Builder, error) {
	if source == nil {
		return nil, errors.New("similarity source is required")
	}
	if config.Workers < 0 {
		return nil, fmt.Errorf("workers must be >= 0, got %d", config.Workers)
	}
	return &Builder{config: config, source: source, logger: logger}, nil
}

type pairJob struct {
	i, j int
	a, b domain.Label
}

type pairResult struct {
	i, j int
	sim  float64
	err  error
}

// Build assembles the similarity matrix for the given labels. Duplicates are
// collapsed; labels are sorted so the result is independent of input order.
// Any lookup failure aborts the build with a LookupError.
func (b *Builder) Build(ctx context.Context, labels []domain.Label, ontology string) (*domain.SimilarityMatrix, error) {
	unique := dedupe(labels)
	n := len(unique)
	if n == 0 {
		return nil, &domain.DimensionMismatchError{Reason: "no labels to build a matrix from"}
	}

	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, n)
		data[i][i] = 1.0
	}
	if n == 1 {
		return domain.NewSimilarityMatrixFromDense(unique, data)
	}

	workers := b.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pairs := n * (n - 1) / 2
	if workers > pairs {
		workers = pairs
	}

	b.logger.Debug("Building similarity matrix",
		"labels", n,
		"pairs", pairs,
		"workers", workers,
		"ontology", ontology,
	)

	lookupCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan pairJob, workers)
	results := make(chan pairResult, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				sim, err := b.source.Similarity(lookupCtx, job.a, job.b, ontology)
				if err == nil && (sim < 0 || sim > 1) {
					err = fmt.Errorf("similarity %v outside [0,1]", sim)
				}
				select {
				case results <- pairResult{i: job.i, j: job.j, sim: sim, err: err}:
				case <-lookupCtx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				select {
				case jobs <- pairJob{i: i, j: j, a: unique[i], b: unique[j]}:
				case <-lookupCtx.Done():
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	received := 0
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				var lookupErr *domain.LookupError
				if errors.As(res.err, &lookupErr) {
					firstErr = res.err
				} else {
					firstErr = &domain.LookupError{
						Op:    "similarity",
						Label: unique[res.i],
						Other: unique[res.j],
						Err:   res.err,
					}
				}
				cancel()
			}
			continue
		}
		data[res.i][res.j] = res.sim
		data[res.j][res.i] = res.sim
		received++
		if received == pairs {
			break
		}
	}
	if firstErr != nil {
		b.logger.Error("Similarity matrix build failed", "error", firstErr)
		return nil, firstErr
	}
	if received < pairs {
		// Workers exited early; the context must have been cancelled.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("similarity lookups incomplete: %d of %d pairs", received, pairs)
	}

	return domain.NewSimilarityMatrixFromDense(unique, data)
}

// dedupe returns the unique labels sorted lexically.
func dedupe(labels []domain.Label) []domain.Label {
	seen := make(map[domain.Label]struct{}, len(labels))
	out := make([]domain.Label, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
