package simsource

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/baditaflorin/go_term_reduction/internal/adapters/logger"
	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
)

// startService runs an in-memory similarity service and returns a source
// wired to it through the listener's dialer.
func startService(t *testing.T, handler fasthttp.RequestHandler) *HTTP {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() {
		_ = fasthttp.Serve(ln, handler)
	}()
	t.Cleanup(func() { _ = ln.Close() })

	client := &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) {
			return ln.Dial()
		},
	}
	source, err := NewHTTP("http://similarity.test/sim", logger.Nop(),
		WithClient(client),
		WithTimeout(2*time.Second),
	)
	if err != nil {
		t.Fatalf("creating source: %v", err)
	}
	return source
}

func TestHTTPSimilarity(t *testing.T) {
	source := startService(t, func(ctx *fasthttp.RequestCtx) {
		var req similarityRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			return
		}
		if req.A != "GO:0006915" || req.B != "GO:0012501" || req.Ontology != "BP" {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			return
		}
		body, _ := json.Marshal(similarityResponse{Similarity: 0.42})
		ctx.SetBody(body)
	})

	sim, err := source.Similarity(context.Background(), "GO:0006915", "GO:0012501", "BP")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim != 0.42 {
		t.Errorf("similarity = %v, want 0.42", sim)
	}
}

func TestHTTPSimilarityServiceFailure(t *testing.T) {
	source := startService(t, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	})
	_, err := source.Similarity(context.Background(), "A", "B", "BP")
	var lookupErr *domain.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected LookupError, got %v", err)
	}
	if lookupErr.Label != "A" || lookupErr.Other != "B" {
		t.Errorf("error should name the pair, got %v", lookupErr)
	}
}

func TestHTTPSimilarityOutOfRange(t *testing.T) {
	source := startService(t, func(ctx *fasthttp.RequestCtx) {
		body, _ := json.Marshal(similarityResponse{Similarity: 1.5})
		ctx.SetBody(body)
	})
	_, err := source.Similarity(context.Background(), "A", "B", "BP")
	var lookupErr *domain.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected LookupError for out-of-range similarity, got %v", err)
	}
}

func TestHTTPSimilarityCancelledContext(t *testing.T) {
	source := startService(t, func(ctx *fasthttp.RequestCtx) {
		body, _ := json.Marshal(similarityResponse{Similarity: 0.5})
		ctx.SetBody(body)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := source.Similarity(ctx, "A", "B", "BP")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation to surface, got %v", err)
	}
}

func TestNewHTTPRequiresEndpoint(t *testing.T) {
	if _, err := NewHTTP("", logger.Nop()); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
