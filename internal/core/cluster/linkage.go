package cluster

import (
	"math"

	"github.com/baditaflorin/go_term_reduction/internal/ports"
)

// CompleteLinkage merges clusters by their maximum pairwise distance. It is
// the default: it needs nothing beyond pairwise distances and a max rule, so
// it tolerates the non-metric distances produced by semantic similarity.
type CompleteLinkage struct{}

func (CompleteLinkage) Name() string { return "complete" }

func (CompleteLinkage) Merge(dik, djk float64, si, sj int) float64 {
	return math.Max(dik, djk)
}

// SingleLinkage merges clusters by their minimum pairwise distance.
type SingleLinkage struct{}

func (SingleLinkage) Name() string { return "single" }

func (SingleLinkage) Merge(dik, djk float64, si, sj int) float64 {
	return math.Min(dik, djk)
}

// AverageLinkage merges clusters by the size-weighted mean of pairwise
// distances (UPGMA).
type AverageLinkage struct{}

func (AverageLinkage) Name() string { return "average" }

func (AverageLinkage) Merge(dik, djk float64, si, sj int) float64 {
	ni := float64(si)
	nj := float64(sj)
	return (ni*dik + nj*djk) / (ni + nj)
}

var _ ports.Linkage = CompleteLinkage{}
var _ ports.Linkage = SingleLinkage{}
var _ ports.Linkage = AverageLinkage{}
