// Package annotation provides implementations of the AnnotationSource port.
// The static adapter is an in-memory source suitable for tests and for
// callers that preload term metadata from their own database.
package annotation

import (
	"context"
	"errors"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
)

// ErrUnknownTerm is wrapped into the LookupError returned for labels the
// static source has no entry for.
var ErrUnknownTerm = errors.New("unknown term")

// Term holds the metadata of one ontology term.
type Term struct {
	Name      string
	Size      int
	Ancestors []domain.Label
}

// Static is an in-memory annotation source.
type Static struct {
	terms map[domain.Label]Term
}

// NewStatic creates a static annotation source from preloaded terms. The map
// is copied; later mutation of the argument does not affect the source.
func NewStatic(terms map[domain.Label]Term) *Static {
	copied := make(map[domain.Label]Term, len(terms))
	for l, t := range terms {
		copied[l] = t
	}
	return &Static{terms: copied}
}

// TermSize returns the annotation set size of the term.
func (s *Static) TermSize(ctx context.Context, label domain.Label) (int, error) {
	t, ok := s.terms[label]
	if !ok {
		return 0, &domain.LookupError{Op: "termsize", Label: label, Err: ErrUnknownTerm}
	}
	return t.Size, nil
}

// DisplayName returns the human-readable name of the term.
func (s *Static) DisplayName(ctx context.Context, label domain.Label) (string, error) {
	t, ok := s.terms[label]
	if !ok {
		return "", &domain.LookupError{Op: "displayname", Label: label, Err: ErrUnknownTerm}
	}
	return t.Name, nil
}

// Ancestors returns the ancestor labels of the term.
func (s *Static) Ancestors(ctx context.Context, label domain.Label) ([]domain.Label, error) {
	t, ok := s.terms[label]
	if !ok {
		return nil, &domain.LookupError{Op: "ancestors", Label: label, Err: ErrUnknownTerm}
	}
	out := make([]domain.Label, len(t.Ancestors))
	copy(out, t.Ancestors)
	return out, nil
}

var _ ports.AnnotationSource = (*Static)(nil)
