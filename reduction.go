// reduction.go
// Package termreduction reduces a redundant set of hierarchically-related
// ontology terms into a smaller set of representative groups. Given a square,
// symmetric pairwise similarity matrix and an optional importance score per
// term, it performs complete-linkage agglomerative clustering on 1 - sim
// distances, cuts the dendrogram at a similarity threshold, and picks the
// highest-scoring term of every cluster as its representative.
//
// The package uses the functional options pattern to configure the threshold,
// the linkage strategy, the scoring fallback and logging.
package termreduction

import (
	"context"

	"github.com/baditaflorin/go_term_reduction/internal/adapters/logger"
	"github.com/baditaflorin/go_term_reduction/internal/core/cluster"
	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/core/reduce"
	"github.com/baditaflorin/go_term_reduction/internal/core/score"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
	"github.com/baditaflorin/l"
)

// Re-exported domain types. The core lives under internal/; these aliases are
// the public names callers build inputs with and read results through.
type (
	// Label is an opaque identifier naming one category/term.
	Label = domain.Label
	// ScoreMap maps a label to an importance score, higher is better.
	ScoreMap = domain.ScoreMap
	// ClusterID identifies one cluster in a partition.
	ClusterID = domain.ClusterID
	// SimilarityMatrix is a square symmetric matrix of similarities in [0,1].
	SimilarityMatrix = domain.SimilarityMatrix
	// AssignmentRow is the per-label output of a reduction.
	AssignmentRow = domain.AssignmentRow
	// ReducedAssignment is the complete result of one reduction.
	ReducedAssignment = domain.ReducedAssignment

	// DimensionMismatchError reports a malformed similarity matrix.
	DimensionMismatchError = domain.DimensionMismatchError
	// MissingScoreError reports labels without a provided score.
	MissingScoreError = domain.MissingScoreError
	// InvalidThresholdError reports a threshold outside (0,1].
	InvalidThresholdError = domain.InvalidThresholdError
	// LookupError reports a failure of an external collaborator.
	LookupError = domain.LookupError
)

// NewSimilarityMatrix builds a matrix from nested map entries; every pair of
// labels must be covered.
func NewSimilarityMatrix(entries map[Label]map[Label]float64) (*SimilarityMatrix, error) {
	return domain.NewSimilarityMatrix(entries)
}

// NewSimilarityMatrixFromDense builds a matrix from a label slice and dense
// rows aligned with it.
func NewSimilarityMatrixFromDense(labels []Label, data [][]float64) (*SimilarityMatrix, error) {
	return domain.NewSimilarityMatrixFromDense(labels, data)
}

// DefaultThreshold is the similarity threshold used when none is configured.
const DefaultThreshold = 0.7

// CompleteLinkage returns the default linkage strategy: clusters merge by
// their maximum pairwise distance.
func CompleteLinkage() ports.Linkage { return cluster.CompleteLinkage{} }

// SingleLinkage returns the minimum-distance linkage strategy.
func SingleLinkage() ports.Linkage { return cluster.SingleLinkage{} }

// AverageLinkage returns the size-weighted mean linkage strategy (UPGMA).
func AverageLinkage() ports.Linkage { return cluster.AverageLinkage{} }

// Reducer provides methods to reduce similarity matrices with configurable
// parameters. It is safe for reuse across calls.
type Reducer struct {
	reducer ports.MatrixReducer
	logger  ports.Logger
}

// Option defines a functional option for configuring a Reducer.
type Option func(*reducerConfig)

type reducerConfig struct {
	Threshold          float64
	SecondaryThreshold float64
	ScoreMode          score.Mode
	Linkage            ports.Linkage
	Annotations        ports.AnnotationSource
	Logger             ports.Logger
}

// WithThreshold sets the similarity threshold the dendrogram is cut at.
// Must lie in (0,1]; 1.0 keeps every label in its own cluster.
func WithThreshold(th float64) Option {
	return func(cfg *reducerConfig) {
		cfg.Threshold = th
	}
}

// WithSecondaryThreshold enables the parent-of-parents pass: representatives
// are re-clustered at this looser threshold and each one's output parent term
// becomes the top-scoring representative of its group.
func WithSecondaryThreshold(th float64) Option {
	return func(cfg *reducerConfig) {
		cfg.SecondaryThreshold = th
	}
}

// WithLinkage sets a custom linkage strategy.
func WithLinkage(link ports.Linkage) Option {
	return func(cfg *reducerConfig) {
		cfg.Linkage = link
	}
}

// WithSizeScoring scores unscored labels by their annotation set size instead
// of uniqueness. Requires an annotation source.
func WithSizeScoring() Option {
	return func(cfg *reducerConfig) {
		cfg.ScoreMode = score.ModeTermSize
	}
}

// WithAnnotations sets the annotation source used for size scoring and for
// human-readable parent terms in output.
func WithAnnotations(source ports.AnnotationSource) Option {
	return func(cfg *reducerConfig) {
		cfg.Annotations = source
	}
}

// WithLogger sets a custom logger.
func WithLogger(log l.Logger) Option {
	return func(cfg *reducerConfig) {
		cfg.Logger = logger.FromExisting(log)
	}
}

// New creates a new Reducer instance.
func New(opts ...Option) (*Reducer, error) {
	cfg := &reducerConfig{
		Threshold: DefaultThreshold,
		ScoreMode: score.ModeUniqueness,
	}
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

	core, err := reduce.NewReducer(reduce.Config{
		Threshold:          cfg.Threshold,
		SecondaryThreshold: cfg.SecondaryThreshold,
		ScoreMode:          cfg.ScoreMode,
	}, cfg.Logger, cfg.Linkage, cfg.Annotations)
	if err != nil {
		return nil, err
	}

	return &Reducer{reducer: core, logger: cfg.Logger}, nil
}

// Reduce partitions the matrix labels into clusters at the configured
// threshold and returns the full assignment. A nil scores map falls back to
// uniqueness scoring (or size scoring when configured); a non-nil map must
// cover every label in the matrix.
func (r *Reducer) Reduce(ctx context.Context, m *SimilarityMatrix, scores ScoreMap) (*ReducedAssignment, error) {
	return r.reducer.Reduce(ctx, m, scores)
}

// ReduceSimMatrix reduces a similarity matrix in one call. It is the
// externally-callable entry point for downstream consumers; the Reducer type
// exists for callers that reduce repeatedly with the same configuration.
func ReduceSimMatrix(ctx context.Context, m *SimilarityMatrix, scores ScoreMap, opts ...Option) (*ReducedAssignment, error) {
	r, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return r.Reduce(ctx, m, scores)
}
