package ports

import (
	"context"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
)

// MatrixReducer defines the interface for reducing a similarity matrix into
// clusters with one representative term per cluster.
type MatrixReducer interface {
	Reduce(ctx context.Context, m *domain.SimilarityMatrix, scores domain.ScoreMap) (*domain.ReducedAssignment, error)
}
