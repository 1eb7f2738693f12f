package simsource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
)

// DefaultHTTPTimeout bounds a single similarity lookup round trip.
const DefaultHTTPTimeout = 10 * time.Second

// HTTP is a similarity source backed by a remote semantic similarity service
// speaking JSON over HTTP. The adapter performs no retries; retry and backoff
// policy belongs to the caller of the matrix builder.
type HTTP struct {
	endpoint string
	timeout  time.Duration
	client   *fasthttp.Client
	logger   ports.Logger
}

// HTTPOption defines a functional option for configuring the HTTP source.
type HTTPOption func(*HTTP)

// WithTimeout sets a custom per-lookup timeout.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.timeout = timeout
	}
}

// WithClient sets a custom fasthttp client, e.g. one with a custom dialer.
func WithClient(client *fasthttp.Client) HTTPOption {
	return func(h *HTTP) {
		h.client = client
	}
}

// NewHTTP creates an HTTP similarity source against the given endpoint.
func NewHTTP(endpoint string, logger ports.Logger, opts ...HTTPOption) (*HTTP, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("similarity endpoint is required")
	}
	h := &HTTP{
		endpoint: endpoint,
		timeout:  DefaultHTTPTimeout,
		client:   &fasthttp.Client{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

type similarityRequest struct {
	A        string `json:"a"`
	B        string `json:"b"`
	Ontology string `json:"ontology"`
}

type similarityResponse struct {
	Similarity float64 `json:"similarity"`
}

// Similarity queries the remote service for one pair. Transport failures,
// non-200 responses and malformed bodies all surface as LookupError.
func (h *HTTP) Similarity(ctx context.Context, a, b domain.Label, ontology string) (float64, error) {
	select {
	case <-ctx.Done():
		return 0, &domain.LookupError{Op: "similarity", Label: a, Other: b, Err: ctx.Err()}
	default:
	}

	timeout := h.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	body, err := json.Marshal(similarityRequest{A: string(a), B: string(b), Ontology: ontology})
	if err != nil {
		return 0, &domain.LookupError{Op: "similarity", Label: a, Other: b, Err: err}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(h.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := h.client.DoTimeout(req, resp, timeout); err != nil {
		h.logger.Error("Similarity request failed",
			"a", a,
			"b", b,
			"error", err,
		)
		return 0, &domain.LookupError{Op: "similarity", Label: a, Other: b, Err: err}
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		err := fmt.Errorf("similarity service returned status %d", resp.StatusCode())
		return 0, &domain.LookupError{Op: "similarity", Label: a, Other: b, Err: err}
	}

	var parsed similarityResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return 0, &domain.LookupError{Op: "similarity", Label: a, Other: b, Err: err}
	}
	if parsed.Similarity < 0 || parsed.Similarity > 1 {
		err := fmt.Errorf("similarity %v outside [0,1]", parsed.Similarity)
		return 0, &domain.LookupError{Op: "similarity", Label: a, Other: b, Err: err}
	}
	return parsed.Similarity, nil
}

var _ ports.SimilaritySource = (*HTTP)(nil)
