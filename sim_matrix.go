// sim_matrix.go
// Package termreduction: assembly of similarity matrices from an external
// similarity source. The builder is a thin orchestrator; all similarity
// values come from the configured source, fanned out over a worker pool and
// assembled into fixed (row, column) cells for deterministic output.
package termreduction

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/baditaflorin/go_term_reduction/internal/adapters/logger"
	"github.com/baditaflorin/go_term_reduction/internal/adapters/simsource"
	"github.com/baditaflorin/go_term_reduction/internal/core/matrix"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
	"github.com/baditaflorin/l"
)

// MatrixBuilder assembles similarity matrices from a similarity source.
type MatrixBuilder struct {
	builder *matrix.Builder
	logger  ports.Logger
}

// MatrixOption defines a functional option for configuring a MatrixBuilder.
type MatrixOption func(*matrixConfig)

type matrixConfig struct {
	Workers int
	Logger  ports.Logger
	Cache   *lru.Cache[string, float64]
}

// WithWorkers sets the number of concurrent lookup workers. 0 uses the number
// of CPUs.
func WithWorkers(n int) MatrixOption {
	return func(cfg *matrixConfig) {
		cfg.Workers = n
	}
}

// WithMatrixLogger sets a custom logger for the builder.
func WithMatrixLogger(log l.Logger) MatrixOption {
	return func(cfg *matrixConfig) {
		cfg.Logger = logger.FromExisting(log)
	}
}

// WithSimilarityCache wraps the source in a caller-owned LRU cache so that
// repeated builds can share lookups. The cache is never mutated beyond
// Get/Add and remains owned by the caller.
func WithSimilarityCache(cache *lru.Cache[string, float64]) MatrixOption {
	return func(cfg *matrixConfig) {
		cfg.Cache = cache
	}
}

// NewMatrixBuilder creates a new MatrixBuilder over the given source.
func NewMatrixBuilder(source ports.SimilaritySource, opts ...MatrixOption) (*MatrixBuilder, error) {
	cfg := &matrixConfig{Workers: matrix.DefaultWorkers}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		log, err := createDefaultLogger()
		if err != nil {
			return nil, err
		}
		cfg.Logger = logger.FromExisting(log)
	}
	if cfg.Cache != nil {
		source = simsource.NewCached(source, cfg.Cache)
	}

	core, err := matrix.NewBuilder(matrix.Config{Workers: cfg.Workers}, source, cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &MatrixBuilder{builder: core, logger: cfg.Logger}, nil
}

// Build assembles the similarity matrix for the given labels within an
// ontology. Duplicate labels are collapsed and the result is independent of
// input ordering.
func (b *MatrixBuilder) Build(ctx context.Context, labels []Label, ontology string) (*SimilarityMatrix, error) {
	return b.builder.Build(ctx, labels, ontology)
}

// CalculateSimMatrix assembles a similarity matrix in one call.
func CalculateSimMatrix(ctx context.Context, labels []Label, ontology string, source ports.SimilaritySource, opts ...MatrixOption) (*SimilarityMatrix, error) {
	b, err := NewMatrixBuilder(source, opts...)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, labels, ontology)
}
