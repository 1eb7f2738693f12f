// Package reduce orchestrates the full reduction pipeline: score resolution,
// agglomerative clustering, representative selection and result assembly.
package reduce

import (
	"context"

	"github.com/baditaflorin/go_term_reduction/internal/core/cluster"
	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/core/score"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
)

// Config holds configuration for the reducer.
type Config struct {
	// Threshold is the minimum similarity two labels need to share a cluster.
	// The dendrogram is cut at height 1 - Threshold. Must lie in (0,1].
	Threshold float64
	// SecondaryThreshold, when positive, re-clusters the representatives at
	// this looser threshold to derive parent-of-parents terms for output.
	SecondaryThreshold float64
	// ScoreMode selects the fallback scoring used when no scores are given.
	ScoreMode score.Mode
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Threshold: 0.7,
		ScoreMode: score.ModeUniqueness,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return &domain.InvalidThresholdError{Threshold: c.Threshold}
	}
	if c.SecondaryThreshold != 0 && (c.SecondaryThreshold <= 0 || c.SecondaryThreshold > 1) {
		return &domain.InvalidThresholdError{Threshold: c.SecondaryThreshold}
	}
	return nil
}

// Reducer reduces a similarity matrix into clusters with one representative
// label each. It holds no mutable state across calls; every invocation works
// on its own copies, so a Reducer is safe for reuse.
type Reducer struct {
	config      Config
	logger      ports.Logger
	linkage     ports.Linkage
	resolver    *score.Resolver
	annotations ports.AnnotationSource
}

// NewReducer creates a new reducer. The annotation source may be nil; output
// then carries raw identifiers as parent terms.
func NewReducer(config Config, logger ports.Logger, linkage ports.Linkage, annotations ports.AnnotationSource) (*Reducer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if linkage == nil {
		linkage = cluster.CompleteLinkage{}
	}
	return &Reducer{
		config:      config,
		logger:      logger,
		linkage:     linkage,
		resolver:    score.NewResolver(logger, annotations),
		annotations: annotations,
	}, nil
}

// Reduce partitions the matrix labels at the configured threshold and returns
// the full assignment. A nil scores map falls back to the configured scoring
// mode. Either a complete result is returned or an error; never both.
func (r *Reducer) Reduce(ctx context.Context, m *domain.SimilarityMatrix, scores domain.ScoreMap) (*domain.ReducedAssignment, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	r.logger.Debug("Starting reduction",
		"labels", m.Len(),
		"threshold", r.config.Threshold,
		"linkage", r.linkage.Name(),
	)

	resolved, err := r.resolver.Resolve(ctx, m, scores, r.config.ScoreMode)
	if err != nil {
		return nil, err
	}

	dendrogram := cluster.Agglomerate(m, r.linkage)
	partition := dendrogram.Cut(1.0 - r.config.Threshold)
	representatives := SelectRepresentatives(partition, resolved)

	r.logger.Debug("Cut dendrogram",
		"clusters", partition.NumClusters(),
		"cut_height", 1.0-r.config.Threshold,
	)

	parents, err := r.parentTerms(ctx, m, representatives, resolved)
	if err != nil {
		return nil, err
	}

	result, err := Assemble(m, partition, representatives, parents, resolved)
	if err != nil {
		return nil, err
	}
	result.Threshold = r.config.Threshold

	r.logger.Info("Reduction complete",
		"labels", m.Len(),
		"clusters", len(result.Representatives),
		"threshold", r.config.Threshold,
	)
	return result, nil
}

// parentTerms maps every representative to the display term recorded in the
// output rows of its cluster. Without a secondary threshold each
// representative is its own parent; with one, representatives that cluster
// together at the looser threshold share the top-scoring representative of
// that group as parent.
func (r *Reducer) parentTerms(ctx context.Context, m *domain.SimilarityMatrix, representatives map[domain.ClusterID]domain.Label, scores domain.ScoreMap) (map[domain.Label]string, error) {
	reps := make([]domain.Label, 0, len(representatives))
	for _, rep := range representatives {
		reps = append(reps, rep)
	}

	parentOf := make(map[domain.Label]domain.Label, len(reps))
	for _, rep := range reps {
		parentOf[rep] = rep
	}

	if r.config.SecondaryThreshold > 0 && len(reps) > 1 {
		sub, err := m.Submatrix(reps)
		if err != nil {
			return nil, err
		}
		repDendrogram := cluster.Agglomerate(sub, r.linkage)
		repPartition := repDendrogram.Cut(1.0 - r.config.SecondaryThreshold)
		superReps := SelectRepresentatives(repPartition, scores)
		for rep, id := range repPartition.Assignments {
			parentOf[rep] = superReps[id]
		}
		r.logger.Debug("Re-clustered representatives",
			"representatives", len(reps),
			"groups", repPartition.NumClusters(),
			"secondary_threshold", r.config.SecondaryThreshold,
		)
	}

	out := make(map[domain.Label]string, len(reps))
	for _, rep := range reps {
		parent := parentOf[rep]
		name, err := r.displayName(ctx, parent)
		if err != nil {
			return nil, err
		}
		out[rep] = name
	}
	return out, nil
}

// displayName resolves the human-readable term for a label, degrading to the
// raw identifier when no annotation source is configured.
func (r *Reducer) displayName(ctx context.Context, l domain.Label) (string, error) {
	if r.annotations == nil {
		return string(l), nil
	}
	name, err := r.annotations.DisplayName(ctx, l)
	if err != nil {
		return "", &domain.LookupError{Op: "displayname", Label: l, Err: err}
	}
	return name, nil
}
