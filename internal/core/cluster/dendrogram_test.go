package cluster

import (
	"testing"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
)

func mustMatrix(t *testing.T, labels []domain.Label, data [][]float64) *domain.SimilarityMatrix {
	t.Helper()
	m, err := domain.NewSimilarityMatrixFromDense(labels, data)
	if err != nil {
		t.Fatalf("building matrix: %v", err)
	}
	return m
}

func threeTermMatrix(t *testing.T) *domain.SimilarityMatrix {
	return mustMatrix(t,
		[]domain.Label{"A", "B", "C"},
		[][]float64{
			{1.0, 0.9, 0.2},
			{0.9, 1.0, 0.2},
			{0.2, 0.2, 1.0},
		},
	)
}

func TestAgglomerateMergeOrder(t *testing.T) {
	d := Agglomerate(threeTermMatrix(t), CompleteLinkage{})

	heights := d.Heights()
	if len(heights) != 2 {
		t.Fatalf("expected 2 merges, got %d", len(heights))
	}
	if heights[0] != 0.1 {
		t.Errorf("first merge height = %v, want 0.1", heights[0])
	}
	// Complete linkage joins {A,B} with {C} at max(0.8, 0.8).
	if heights[1] != 0.8 {
		t.Errorf("second merge height = %v, want 0.8", heights[1])
	}
	if heights[0] > heights[1] {
		t.Errorf("merge heights not monotone: %v", heights)
	}
}

func TestCutLevels(t *testing.T) {
	d := Agglomerate(threeTermMatrix(t), CompleteLinkage{})

	tests := []struct {
		name     string
		height   float64
		clusters int
	}{
		{name: "below first merge", height: 0.05, clusters: 3},
		{name: "between merges", height: 0.3, clusters: 2},
		{name: "above last merge", height: 0.9, clusters: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := d.Cut(tc.height)
			if got := p.NumClusters(); got != tc.clusters {
				t.Errorf("cut at %v: %d clusters, want %d", tc.height, got, tc.clusters)
			}
		})
	}

	p := d.Cut(0.3)
	if p.Assignments["A"] != p.Assignments["B"] {
		t.Errorf("A and B should share a cluster at height 0.3")
	}
	if p.Assignments["C"] == p.Assignments["A"] {
		t.Errorf("C should not share a cluster with A at height 0.3")
	}
	// IDs are numbered in order of each cluster's smallest member.
	if p.Assignments["A"] != 1 || p.Assignments["C"] != 2 {
		t.Errorf("unexpected cluster numbering: %v", p.Assignments)
	}
}

func TestTieBreakDeterministic(t *testing.T) {
	// All off-diagonal distances are equal; merges must proceed in lexical
	// order of the cluster keys.
	labels := []domain.Label{"A", "B", "C", "D"}
	data := [][]float64{
		{1.0, 0.5, 0.5, 0.5},
		{0.5, 1.0, 0.5, 0.5},
		{0.5, 0.5, 1.0, 0.5},
		{0.5, 0.5, 0.5, 1.0},
	}
	d := Agglomerate(mustMatrix(t, labels, data), CompleteLinkage{})

	if len(d.merges) != 3 {
		t.Fatalf("expected 3 merges, got %d", len(d.merges))
	}
	first := d.merges[0]
	if first.A[0] != "A" || first.B[0] != "B" {
		t.Errorf("first merge joined %v and %v, want [A] and [B]", first.A, first.B)
	}
	second := d.merges[1]
	if second.A[0] != "A" || second.B[0] != "C" {
		t.Errorf("second merge joined %v and %v, want [A B] and [C]", second.A, second.B)
	}
}

func TestLinkageStrategies(t *testing.T) {
	// Chain: A close to B, B close to C, A far from C. The second merge
	// height is where the strategies diverge.
	labels := []domain.Label{"A", "B", "C"}
	data := [][]float64{
		{1.0, 0.9, 0.1},
		{0.9, 1.0, 0.9},
		{0.1, 0.9, 1.0},
	}
	m := mustMatrix(t, labels, data)

	tests := []struct {
		name   string
		link   ports.Linkage
		second float64
	}{
		{name: "complete", link: CompleteLinkage{}, second: 0.9},
		{name: "single", link: SingleLinkage{}, second: 0.1},
		{name: "average", link: AverageLinkage{}, second: 0.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Agglomerate(m, tc.link)
			heights := d.Heights()
			if heights[0] != 0.1 {
				t.Errorf("first merge height = %v, want 0.1", heights[0])
			}
			if diff := heights[1] - tc.second; diff > 1e-12 || diff < -1e-12 {
				t.Errorf("second merge height = %v, want %v", heights[1], tc.second)
			}
		})
	}
}

func TestSingleLabel(t *testing.T) {
	m := mustMatrix(t, []domain.Label{"A"}, [][]float64{{1.0}})
	d := Agglomerate(m, CompleteLinkage{})
	if len(d.Heights()) != 0 {
		t.Fatalf("singleton produced merges: %v", d.Heights())
	}
	p := d.Cut(0.5)
	if p.NumClusters() != 1 {
		t.Errorf("singleton cut produced %d clusters, want 1", p.NumClusters())
	}
	if p.Assignments["A"] != 1 {
		t.Errorf("singleton cluster id = %d, want 1", p.Assignments["A"])
	}
}

func TestCutPartitionTotality(t *testing.T) {
	m := threeTermMatrix(t)
	d := Agglomerate(m, CompleteLinkage{})
	for _, height := range []float64{0.0, 0.1, 0.3, 0.8, 1.0} {
		p := d.Cut(height)
		if len(p.Assignments) != m.Len() {
			t.Errorf("cut at %v assigned %d labels, want %d", height, len(p.Assignments), m.Len())
		}
		for id, members := range p.Clusters() {
			if len(members) == 0 {
				t.Errorf("cut at %v produced empty cluster %d", height, id)
			}
		}
	}
}
