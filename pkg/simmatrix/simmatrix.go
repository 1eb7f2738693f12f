// Package simmatrix provides the stable facade over similarity matrix
// assembly from an external similarity source.
package simmatrix

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/baditaflorin/go_term_reduction/internal/adapters/logger"
	"github.com/baditaflorin/go_term_reduction/internal/adapters/simsource"
	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/core/matrix"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
	"github.com/baditaflorin/l"
)

// Builder assembles similarity matrices from a similarity source.
type Builder struct {
	builder *matrix.Builder
	logger  ports.Logger
}

// BuilderOption defines a functional option for configuring a Builder.
type BuilderOption func(*builderConfig)

type builderConfig struct {
	Workers int
	Logger  ports.Logger
	Cache   *lru.Cache[string, float64]
}

// WithWorkers sets the number of concurrent lookup workers.
func WithWorkers(n int) BuilderOption {
	return func(cfg *builderConfig) {
		cfg.Workers = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(log l.Logger) BuilderOption {
	return func(cfg *builderConfig) {
		cfg.Logger = logger.FromExisting(log)
	}
}

// WithCache wraps the source in a caller-owned LRU lookup cache.
func WithCache(cache *lru.Cache[string, float64]) BuilderOption {
	return func(cfg *builderConfig) {
		cfg.Cache = cache
	}
}

// New creates a new Builder over the given source.
func New(source ports.SimilaritySource, opts ...BuilderOption) (*Builder, error) {
	cfg := &builderConfig{Workers: matrix.DefaultWorkers}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		var err error
		cfg.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
	}
	if cfg.Cache != nil {
		source = simsource.NewCached(source, cfg.Cache)
	}

	core, err := matrix.NewBuilder(matrix.Config{Workers: cfg.Workers}, source, cfg.Logger)
	if err != nil {
		return nil, err
	}
	return &Builder{builder: core, logger: cfg.Logger}, nil
}

// Build assembles the similarity matrix for the given labels.
func (b *Builder) Build(ctx context.Context, labels []domain.Label, ontology string) (*domain.SimilarityMatrix, error) {
	return b.builder.Build(ctx, labels, ontology)
}
