// Package reduce provides the stable facade over the term reduction core,
// with performance options such as startup warm-up for long-running servers.
package reduce

import (
	"context"

	"github.com/baditaflorin/go_term_reduction/internal/adapters/logger"
	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	corereduce "github.com/baditaflorin/go_term_reduction/internal/core/reduce"
	"github.com/baditaflorin/go_term_reduction/internal/core/score"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
	"github.com/baditaflorin/go_term_reduction/internal/warmup"
	"github.com/baditaflorin/l"
)

// Reducer provides methods to reduce similarity matrices into representative
// clusters.
type Reducer struct {
	reducer ports.MatrixReducer
	logger  ports.Logger
	warmed  bool
}

// ReducerOption defines a functional option for configuring a Reducer.
type ReducerOption func(*reducerConfig)

type reducerConfig struct {
	Threshold          float64
	SecondaryThreshold float64
	ScoreMode          score.Mode
	Linkage            ports.Linkage
	Annotations        ports.AnnotationSource
	Logger             ports.Logger
	WarmUp             bool
	WarmUpConfig       warmup.WarmupConfig
}

// WithThreshold sets the similarity threshold the dendrogram is cut at.
func WithThreshold(th float64) ReducerOption {
	return func(cfg *reducerConfig) {
		cfg.Threshold = th
	}
}

// WithSecondaryThreshold enables the parent-of-parents pass at the given
// looser threshold.
func WithSecondaryThreshold(th float64) ReducerOption {
	return func(cfg *reducerConfig) {
		cfg.SecondaryThreshold = th
	}
}

// WithLinkage sets a custom linkage strategy.
func WithLinkage(link ports.Linkage) ReducerOption {
	return func(cfg *reducerConfig) {
		cfg.Linkage = link
	}
}

// WithSizeScoring scores unscored labels by annotation set size.
func WithSizeScoring() ReducerOption {
	return func(cfg *reducerConfig) {
		cfg.ScoreMode = score.ModeTermSize
	}
}

// WithAnnotations sets the annotation source.
func WithAnnotations(source ports.AnnotationSource) ReducerOption {
	return func(cfg *reducerConfig) {
		cfg.Annotations = source
	}
}

// WithLogger sets a custom logger.
func WithLogger(log l.Logger) ReducerOption {
	return func(cfg *reducerConfig) {
		cfg.Logger = logger.FromExisting(log)
	}
}

// WithWarmUp enables system warm-up on initialization.
func WithWarmUp(enable bool) ReducerOption {
	return func(cfg *reducerConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config warmup.WarmupConfig) ReducerOption {
	return func(cfg *reducerConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a new Reducer instance.
func New(opts ...ReducerOption) (*Reducer, error) {
	defaults := corereduce.DefaultConfig()

	cfg := &reducerConfig{
		Threshold:    defaults.Threshold,
		ScoreMode:    defaults.ScoreMode,
		WarmUpConfig: warmup.DefaultWarmupConfig(),
	}
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

	core, err := corereduce.NewReducer(corereduce.Config{
		Threshold:          cfg.Threshold,
		SecondaryThreshold: cfg.SecondaryThreshold,
		ScoreMode:          cfg.ScoreMode,
	}, cfg.Logger, cfg.Linkage, cfg.Annotations)
	if err != nil {
		return nil, err
	}

	r := &Reducer{reducer: core, logger: cfg.Logger}

	if cfg.WarmUp {
		r.WarmUp(context.Background(), cfg.WarmUpConfig)
	}
	return r, nil
}

// Reduce partitions the matrix labels at the configured threshold.
func (r *Reducer) Reduce(ctx context.Context, m *domain.SimilarityMatrix, scores domain.ScoreMap) (*domain.ReducedAssignment, error) {
	return r.reducer.Reduce(ctx, m, scores)
}

// WarmUp runs the reducer against synthetic matrices to prime pools before
// serving real traffic.
func (r *Reducer) WarmUp(ctx context.Context, config warmup.WarmupConfig) {
	if r.warmed {
		r.logger.Debug("System already warmed up, skipping")
		return
	}
	mgr := warmup.NewManager(r.logger, config)
	mgr.RegisterReducer(r.reducer)
	mgr.WarmUp(ctx)
	r.warmed = true
}
