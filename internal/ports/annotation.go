package ports

import (
	"context"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
)

// AnnotationSource defines the interface for looking up term metadata from an
// annotation database. It is optional everywhere it is consumed: a nil source
// degrades to uniqueness scoring and raw identifiers in output.
type AnnotationSource interface {
	// TermSize returns the number of entities annotated with the term.
	TermSize(ctx context.Context, label domain.Label) (int, error)

	// DisplayName returns the human-readable name of the term.
	DisplayName(ctx context.Context, label domain.Label) (string, error)

	// Ancestors returns the ancestor terms of the given term.
	Ancestors(ctx context.Context, label domain.Label) ([]domain.Label, error)
}
