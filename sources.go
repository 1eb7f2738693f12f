// sources.go
// Package termreduction: public names for the bundled similarity and
// annotation source adapters, so callers can wire test doubles and the HTTP
// client without reaching into internal packages.
package termreduction

import (
	"github.com/baditaflorin/go_term_reduction/internal/adapters/annotation"
	"github.com/baditaflorin/go_term_reduction/internal/adapters/logger"
	"github.com/baditaflorin/go_term_reduction/internal/adapters/simsource"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
	"github.com/baditaflorin/l"
)

type (
	// SimilaritySource is the capability interface for pairwise similarity
	// lookups. Implement it to plug in your own similarity backend.
	SimilaritySource = ports.SimilaritySource
	// AnnotationSource is the capability interface for term metadata lookups.
	AnnotationSource = ports.AnnotationSource
	// Linkage is the strategy interface for agglomeration merge rules.
	Linkage = ports.Linkage

	// StaticSimilaritySource is an in-memory similarity source backed by a
	// precomputed table.
	StaticSimilaritySource = simsource.Static
	// HTTPSimilaritySource queries a remote similarity service over HTTP.
	HTTPSimilaritySource = simsource.HTTP
	// HTTPSourceOption configures an HTTPSimilaritySource.
	HTTPSourceOption = simsource.HTTPOption
	// CachedSimilaritySource decorates a source with an LRU lookup cache.
	CachedSimilaritySource = simsource.Cached

	// StaticAnnotationSource is an in-memory annotation source.
	StaticAnnotationSource = annotation.Static
	// AnnotationTerm holds the metadata of one ontology term.
	AnnotationTerm = annotation.Term
)

// NewStaticSimilaritySource creates an empty in-memory similarity source;
// populate it with Set.
func NewStaticSimilaritySource() *StaticSimilaritySource {
	return simsource.NewStatic()
}

// NewHTTPSimilaritySource creates a similarity source against a remote
// service endpoint, logging through the given logger.
func NewHTTPSimilaritySource(endpoint string, log l.Logger, opts ...HTTPSourceOption) (*HTTPSimilaritySource, error) {
	return simsource.NewHTTP(endpoint, logger.FromExisting(log), opts...)
}

// NewStaticAnnotationSource creates an in-memory annotation source from
// preloaded terms.
func NewStaticAnnotationSource(terms map[Label]AnnotationTerm) *StaticAnnotationSource {
	return annotation.NewStatic(terms)
}
