package simsource

import (
	"context"
	"errors"
	"testing"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
)

func TestStaticSimilarity(t *testing.T) {
	source := NewStatic().Set("A", "B", "BP", 0.9)

	tests := []struct {
		name    string
		a, b    domain.Label
		want    float64
		wantErr bool
	}{
		{name: "recorded pair", a: "A", b: "B", want: 0.9},
		{name: "reverse order", a: "B", b: "A", want: 0.9},
		{name: "identical labels", a: "A", b: "A", want: 1.0},
		{name: "unknown pair", a: "A", b: "C", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := source.Similarity(context.Background(), tc.a, tc.b, "BP")
			if tc.wantErr {
				var lookupErr *domain.LookupError
				if !errors.As(err, &lookupErr) {
					t.Fatalf("expected LookupError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("similarity = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStaticOntologyScoping(t *testing.T) {
	source := NewStatic().Set("A", "B", "BP", 0.9)
	if _, err := source.Similarity(context.Background(), "A", "B", "MF"); err == nil {
		t.Fatal("pair recorded under BP must not resolve under MF")
	}
}

// countingSource wraps a source and counts pass-through lookups.
type countingSource struct {
	src   *Static
	calls int
}

func (c *countingSource) Similarity(ctx context.Context, a, b domain.Label, ontology string) (float64, error) {
	c.calls++
	return c.src.Similarity(ctx, a, b, ontology)
}

func TestCachedSimilarity(t *testing.T) {
	counting := &countingSource{src: NewStatic().Set("A", "B", "BP", 0.9)}
	cached, err := NewCachedWithSize(counting, 16)
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}

	for i := 0; i < 3; i++ {
		sim, err := cached.Similarity(context.Background(), "A", "B", "BP")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sim != 0.9 {
			t.Errorf("similarity = %v, want 0.9", sim)
		}
	}
	// Reversed order must hit the same cache entry.
	if _, err := cached.Similarity(context.Background(), "B", "A", "BP"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counting.calls != 1 {
		t.Errorf("underlying source consulted %d times, want 1", counting.calls)
	}
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	counting := &countingSource{src: NewStatic()}
	cached, err := NewCachedWithSize(counting, 16)
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := cached.Similarity(context.Background(), "A", "B", "BP"); err == nil {
			t.Fatal("expected lookup failure")
		}
	}
	if counting.calls != 2 {
		t.Errorf("failed lookups should not be cached; source consulted %d times, want 2", counting.calls)
	}
}

func TestCachedOntologiesDoNotCollide(t *testing.T) {
	src := NewStatic().
		Set("A", "B", "BP", 0.9).
		Set("A", "B", "MF", 0.1)
	cached, err := NewCachedWithSize(src, 16)
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}
	bp, _ := cached.Similarity(context.Background(), "A", "B", "BP")
	mf, _ := cached.Similarity(context.Background(), "A", "B", "MF")
	if bp != 0.9 || mf != 0.1 {
		t.Errorf("cache keys collided across ontologies: bp=%v mf=%v", bp, mf)
	}
}
