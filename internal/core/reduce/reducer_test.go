package reduce

import (
	"context"
	"errors"
	"testing"

	"github.com/baditaflorin/go_term_reduction/internal/adapters/annotation"
	"github.com/baditaflorin/go_term_reduction/internal/adapters/logger"
	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/core/score"
)

func mustMatrix(t *testing.T, labels []domain.Label, data [][]float64) *domain.SimilarityMatrix {
	t.Helper()
	m, err := domain.NewSimilarityMatrixFromDense(labels, data)
	if err != nil {
		t.Fatalf("building matrix: %v", err)
	}
	return m
}

func newTestReducer(t *testing.T, config Config) *Reducer {
	t.Helper()
	r, err := NewReducer(config, logger.Nop(), nil, nil)
	if err != nil {
		t.Fatalf("creating reducer: %v", err)
	}
	return r
}

func TestReduceExample(t *testing.T) {
	m := mustMatrix(t,
		[]domain.Label{"A", "B", "C"},
		[][]float64{
			{1.0, 0.9, 0.2},
			{0.9, 1.0, 0.2},
			{0.2, 0.2, 1.0},
		},
	)
	scores := domain.ScoreMap{"A": 5, "B": 3, "C": 10}

	r := newTestReducer(t, Config{Threshold: 0.7})
	result, err := r.Reduce(context.Background(), m, scores)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Rows))
	}
	byLabel := make(map[domain.Label]domain.AssignmentRow)
	for _, row := range result.Rows {
		byLabel[row.Label] = row
	}
	if byLabel["A"].Cluster != byLabel["B"].Cluster {
		t.Errorf("A and B should share a cluster at threshold 0.7")
	}
	if byLabel["C"].Cluster == byLabel["A"].Cluster {
		t.Errorf("C should stay separate at threshold 0.7")
	}
	if byLabel["A"].Representative != "A" || byLabel["B"].Representative != "A" {
		t.Errorf("representative of {A,B} should be A (score 5 > 3), got %s", byLabel["B"].Representative)
	}
	if byLabel["C"].Representative != "C" {
		t.Errorf("representative of {C} should be C, got %s", byLabel["C"].Representative)
	}
	if result.ReducedMatrix.Len() != 2 {
		t.Errorf("reduced matrix dimension = %d, want 2", result.ReducedMatrix.Len())
	}
	if sim, ok := result.ReducedMatrix.Sim("A", "C"); !ok || sim != 0.2 {
		t.Errorf("reduced sim(A,C) = %v, want 0.2 copied from input", sim)
	}
}

func TestReduceTightThreshold(t *testing.T) {
	m := mustMatrix(t,
		[]domain.Label{"A", "B", "C"},
		[][]float64{
			{1.0, 0.9, 0.2},
			{0.9, 1.0, 0.2},
			{0.2, 0.2, 1.0},
		},
	)
	scores := domain.ScoreMap{"A": 5, "B": 3, "C": 10}

	r := newTestReducer(t, Config{Threshold: 0.95})
	result, err := r.Reduce(context.Background(), m, scores)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Representatives) != 3 {
		t.Fatalf("expected 3 singleton clusters, got %d", len(result.Representatives))
	}
	for _, row := range result.Rows {
		if row.Representative != row.Label {
			t.Errorf("label %s should be its own representative, got %s", row.Label, row.Representative)
		}
	}
}

func TestReduceInvalidThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
	}{
		{name: "zero", threshold: 0},
		{name: "negative", threshold: -0.5},
		{name: "above one", threshold: 1.2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReducer(Config{Threshold: tc.threshold}, logger.Nop(), nil, nil)
			var thresholdErr *domain.InvalidThresholdError
			if !errors.As(err, &thresholdErr) {
				t.Fatalf("expected InvalidThresholdError, got %v", err)
			}
			if thresholdErr.Threshold != tc.threshold {
				t.Errorf("error names threshold %v, want %v", thresholdErr.Threshold, tc.threshold)
			}
		})
	}
}

func TestReduceScoreTieBreak(t *testing.T) {
	m := mustMatrix(t,
		[]domain.Label{"A", "B"},
		[][]float64{
			{1.0, 0.9},
			{0.9, 1.0},
		},
	)
	// Equal scores: the lexically smaller label wins.
	r := newTestReducer(t, Config{Threshold: 0.7})
	result, err := r.Reduce(context.Background(), m, domain.ScoreMap{"A": 1, "B": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Representatives[1] != "A" {
		t.Errorf("tie should break to A, got %s", result.Representatives[1])
	}
}

func TestReduceSecondaryThreshold(t *testing.T) {
	// Two tight pairs whose representatives are still fairly similar to each
	// other. At the looser secondary threshold the representatives group and
	// the top-scoring one names the parent term of both clusters.
	m := mustMatrix(t,
		[]domain.Label{"A", "B", "C", "D"},
		[][]float64{
			{1.0, 0.9, 0.5, 0.4},
			{0.9, 1.0, 0.4, 0.4},
			{0.5, 0.4, 1.0, 0.9},
			{0.4, 0.4, 0.9, 1.0},
		},
	)
	scores := domain.ScoreMap{"A": 5, "B": 1, "C": 7, "D": 1}

	annotations := annotation.NewStatic(map[domain.Label]annotation.Term{
		"A": {Name: "term A", Size: 10},
		"C": {Name: "term C", Size: 10},
	})
	r, err := NewReducer(Config{Threshold: 0.7, SecondaryThreshold: 0.4}, logger.Nop(), nil, annotations)
	if err != nil {
		t.Fatalf("creating reducer: %v", err)
	}
	result, err := r.Reduce(context.Background(), m, scores)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Representatives) != 2 {
		t.Fatalf("expected 2 primary clusters, got %d", len(result.Representatives))
	}
	for _, row := range result.Rows {
		// C outscores A, so every row's parent term is C's display name.
		if row.ParentTerm != "term C" {
			t.Errorf("row %s parent term = %q, want %q", row.Label, row.ParentTerm, "term C")
		}
	}
}

func TestReduceParentTermsWithoutAnnotations(t *testing.T) {
	m := mustMatrix(t,
		[]domain.Label{"A", "B"},
		[][]float64{
			{1.0, 0.9},
			{0.9, 1.0},
		},
	)
	r := newTestReducer(t, Config{Threshold: 0.7})
	result, err := r.Reduce(context.Background(), m, domain.ScoreMap{"A": 2, "B": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, row := range result.Rows {
		if row.ParentTerm != "A" {
			t.Errorf("without annotations parent term degrades to the raw identifier, got %q", row.ParentTerm)
		}
	}
}

func TestRepresentativeSelectionIdempotent(t *testing.T) {
	m := mustMatrix(t,
		[]domain.Label{"A", "B", "C"},
		[][]float64{
			{1.0, 0.9, 0.2},
			{0.9, 1.0, 0.2},
			{0.2, 0.2, 1.0},
		},
	)
	scores := domain.ScoreMap{"A": 5, "B": 3, "C": 10}

	r := newTestReducer(t, Config{Threshold: 0.7})
	first, err := r.Reduce(context.Background(), m, scores)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-reducing the already-reduced representative set must keep every
	// representative as its own cluster representative.
	second, err := r.Reduce(context.Background(), first.ReducedMatrix, scores)
	if err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}
	for _, row := range second.Rows {
		if row.Representative != row.Label {
			t.Errorf("representative %s was demoted to %s on identical input", row.Label, row.Representative)
		}
	}
}

func TestReduceUniquenessFallback(t *testing.T) {
	m := mustMatrix(t,
		[]domain.Label{"A", "B", "C"},
		[][]float64{
			{1.0, 0.9, 0.2},
			{0.9, 1.0, 0.2},
			{0.2, 0.2, 1.0},
		},
	)
	r := newTestReducer(t, Config{Threshold: 0.7, ScoreMode: score.ModeUniqueness})
	result, err := r.Reduce(context.Background(), m, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A and B tie on uniqueness (0.45 each); the lexically smaller label
	// represents the pair.
	byLabel := make(map[domain.Label]domain.AssignmentRow)
	for _, row := range result.Rows {
		byLabel[row.Label] = row
	}
	if byLabel["B"].Representative != "A" {
		t.Errorf("uniqueness fallback representative = %s, want A", byLabel["B"].Representative)
	}
}
