package ports

import (
	"context"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
)

// SimilaritySource defines the interface for looking up the semantic
// similarity between two terms within an ontology. Implementations return a
// value in [0,1]; a failed lookup is an error, never a silent zero.
type SimilaritySource interface {
	Similarity(ctx context.Context, a, b domain.Label, ontology string) (float64, error)
}
