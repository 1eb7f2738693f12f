// Package simsource provides implementations of the SimilaritySource port:
// an in-memory static source, an LRU-cached decorator, and an HTTP client
// against a remote semantic similarity service.
package simsource

import (
	"context"
	"errors"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
)

// ErrUnknownPair is wrapped into the LookupError returned for pairs the
// static source has no entry for.
var ErrUnknownPair = errors.New("unknown label pair")

type pairKey struct {
	a, b     domain.Label
	ontology string
}

func newPairKey(a, b domain.Label, ontology string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b, ontology: ontology}
}

// Static is an in-memory similarity source backed by a precomputed table.
// Pairs are stored unordered; Set(a, b, v) also answers Similarity(b, a).
type Static struct {
	sims map[pairKey]float64
}

// NewStatic creates an empty static similarity source.
func NewStatic() *Static {
	return &Static{sims: make(map[pairKey]float64)}
}

// Set records the similarity of a pair within an ontology.
func (s *Static) Set(a, b domain.Label, ontology string, sim float64) *Static {
	s.sims[newPairKey(a, b, ontology)] = sim
	return s
}

// Similarity returns the recorded similarity. Identical labels are 1.0
// without a table entry; a missing pair is a LookupError.
func (s *Static) Similarity(ctx context.Context, a, b domain.Label, ontology string) (float64, error) {
	if a == b {
		return 1.0, nil
	}
	sim, ok := s.sims[newPairKey(a, b, ontology)]
	if !ok {
		return 0, &domain.LookupError{Op: "similarity", Label: a, Other: b, Err: ErrUnknownPair}
	}
	return sim, nil
}

var _ ports.SimilaritySource = (*Static)(nil)
