// Package score resolves a per-label importance score for every label in a
// similarity matrix, from caller-provided scores, a uniqueness metric, or
// term-size lookups against the annotation source.
package score

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/stat"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
)

// Mode selects the fallback scoring strategy used when no scores are provided.
type Mode int

const (
	// ModeUniqueness scores each label by 1 - mean similarity to all other
	// labels, so near-duplicates rank low.
	ModeUniqueness Mode = iota
	// ModeTermSize scores each label by its annotation set size.
	ModeTermSize
)

// ErrNoAnnotationSource is returned when term-size scoring is requested
// without an annotation source to resolve sizes against.
var ErrNoAnnotationSource = errors.New("term size scoring requires an annotation source")

// Resolver produces a complete ScoreMap for the labels of a matrix.
type Resolver struct {
	logger      ports.Logger
	annotations ports.AnnotationSource
}

// NewResolver creates a new score resolver. The annotation source may be nil;
// term-size scoring then fails with a LookupError.
func NewResolver(logger ports.Logger, annotations ports.AnnotationSource) *Resolver {
	return &Resolver{logger: logger, annotations: annotations}
}

// Resolve returns a score for every label in the matrix. Provided scores win
// when non-nil but must cover every label; otherwise the fallback mode is
// applied. The returned map is always a fresh copy owned by the caller.
func (r *Resolver) Resolve(ctx context.Context, m *domain.SimilarityMatrix, provided domain.ScoreMap, mode Mode) (domain.ScoreMap, error) {
	labels := m.Labels()

	if provided != nil {
		var missing []domain.Label
		for _, l := range labels {
			if _, ok := provided[l]; !ok {
				missing = append(missing, l)
			}
		}
		if len(missing) > 0 {
			r.logger.Error("Provided scores do not cover matrix labels",
				"missing", len(missing),
				"labels", len(labels),
			)
			return nil, &domain.MissingScoreError{Labels: missing}
		}
		out := make(domain.ScoreMap, len(labels))
		for _, l := range labels {
			out[l] = provided[l]
		}
		return out, nil
	}

	switch mode {
	case ModeTermSize:
		return r.resolveTermSizes(ctx, labels)
	default:
		return r.resolveUniqueness(m, labels), nil
	}
}

// resolveUniqueness computes u(l) = 1 - mean(sim(l, l')) over all other
// labels. A singleton label set has uniqueness 1.0 by definition.
func (r *Resolver) resolveUniqueness(m *domain.SimilarityMatrix, labels []domain.Label) domain.ScoreMap {
	out := make(domain.ScoreMap, len(labels))
	n := len(labels)
	for i, l := range labels {
		if n == 1 {
			out[l] = 1.0
			continue
		}
		others := make([]float64, 0, n-1)
		for j, v := range m.Row(i) {
			if j != i {
				others = append(others, v)
			}
		}
		out[l] = 1.0 - stat.Mean(others, nil)
	}
	r.logger.Debug("Resolved uniqueness scores", "labels", n)
	return out
}

func (r *Resolver) resolveTermSizes(ctx context.Context, labels []domain.Label) (domain.ScoreMap, error) {
	if r.annotations == nil {
		return nil, &domain.LookupError{Op: "termsize", Label: "", Err: ErrNoAnnotationSource}
	}
	out := make(domain.ScoreMap, len(labels))
	for _, l := range labels {
		size, err := r.annotations.TermSize(ctx, l)
		if err != nil {
			r.logger.Error("Term size lookup failed", "label", l, "error", err)
			return nil, &domain.LookupError{Op: "termsize", Label: l, Err: err}
		}
		out[l] = float64(size)
	}
	r.logger.Debug("Resolved term size scores", "labels", len(labels))
	return out, nil
}
