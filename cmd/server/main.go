package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"

	loggeradapter "github.com/baditaflorin/go_term_reduction/internal/adapters/logger"
	"github.com/baditaflorin/go_term_reduction/internal/adapters/simsource"
	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
	"github.com/baditaflorin/go_term_reduction/pkg/reduce"
	"github.com/baditaflorin/go_term_reduction/pkg/simmatrix"
)

// Default configuration
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultConcurrency    = 0                // 0 means use GOMAXPROCS
)

var (
	// Reducer with default configuration, warmed at startup
	defaultReducer *reduce.Reducer

	// Matrix builder against the remote similarity service, nil when no
	// -similarity-url was given
	matrixBuilder *simmatrix.Builder

	// Logger instance
	logger l.Logger
)

// ReduceRequest carries a full similarity matrix plus reduction parameters.
type ReduceRequest struct {
	Labels             []string           `json:"labels"`
	Matrix             [][]float64        `json:"matrix"`
	Scores             map[string]float64 `json:"scores,omitempty"`
	Threshold          float64            `json:"threshold,omitempty"`
	SecondaryThreshold float64            `json:"secondary_threshold,omitempty"`
}

// ReduceRow is one per-label row of the reduction output.
type ReduceRow struct {
	Label          string  `json:"label"`
	Cluster        int     `json:"cluster"`
	Representative string  `json:"representative"`
	ParentTerm     string  `json:"parent_term"`
	Score          float64 `json:"score"`
}

// ReduceResponse is the JSON form of a ReducedAssignment.
type ReduceResponse struct {
	Rows            []ReduceRow    `json:"rows"`
	Representatives map[int]string `json:"representatives"`
	ReducedLabels   []string       `json:"reduced_labels"`
	ReducedMatrix   [][]float64    `json:"reduced_matrix"`
	Threshold       float64        `json:"threshold"`
}

// MatrixRequest asks for a similarity matrix over labels within an ontology.
type MatrixRequest struct {
	Labels   []string `json:"labels"`
	Ontology string   `json:"ontology"`
}

// MatrixResponse carries the assembled matrix in label order.
type MatrixResponse struct {
	Labels []string    `json:"labels"`
	Matrix [][]float64 `json:"matrix"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	// Parse command-line flags
	port := flag.Int("port", DefaultPort, "HTTP server port")
	readTimeout := flag.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", DefaultMaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent requests (0 = GOMAXPROCS)")
	warmUp := flag.Bool("warm-up", true, "Perform system warm-up on startup")
	logFile := flag.String("log-file", "", "Log file path (empty = stdout)")
	similarityURL := flag.String("similarity-url", "", "Endpoint of the remote similarity service (empty disables /matrix)")
	workers := flag.Int("matrix-workers", 0, "Concurrent similarity lookups per matrix build (0 = NumCPU)")
	flag.Parse()

	// Set up logger
	var err error
	logger, err = createLogger(*logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting term reduction HTTP server",
		"port", *port,
		"read_timeout", *readTimeout,
		"write_timeout", *writeTimeout,
		"max_request_size", *maxRequestSize,
		"concurrency", *concurrency,
		"similarity_url", *similarityURL,
	)

	initReduction(*warmUp, *similarityURL, *workers)

	// Create HTTP server with fasthttp
	server := &fasthttp.Server{
		Handler:               requestHandler,
		ReadTimeout:           *readTimeout,
		WriteTimeout:          *writeTimeout,
		MaxRequestBodySize:    *maxRequestSize,
		Concurrency:           *concurrency,
		DisableKeepalive:      false,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
		Logger:                nil, // we'll handle logging ourselves
	}

	// Set up graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			logger.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	// Start server
	logger.Info("Server listening", "address", fmt.Sprintf(":%d", *port))
	if err := server.ListenAndServe(fmt.Sprintf(":%d", *port)); err != nil {
		logger.Error("Server error", "error", err)
	}

	<-idleConnsClosed
	logger.Info("Server stopped")
}

// createLogger builds the server logger, writing to the given file or stdout.
func createLogger(logFile string) (l.Logger, error) {
	output := os.Stdout
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		output = f
	}
	return l.NewStandardFactory().CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  logFile != "",
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,
		MaxFileSize: 10 * 1024 * 1024,
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     true,
	})
}

// newHTTPSource builds the similarity source for the remote service.
func newHTTPSource(endpoint string) (ports.SimilaritySource, error) {
	return simsource.NewHTTP(endpoint, loggeradapter.FromExisting(logger))
}

// initReduction initializes the default reducer and, when a similarity
// service is configured, the matrix builder.
func initReduction(warmUp bool, similarityURL string, workers int) {
	var err error

	opts := []reduce.ReducerOption{
		reduce.WithLogger(logger),
	}
	if warmUp {
		opts = append(opts, reduce.WithWarmUp(true))
	}
	defaultReducer, err = reduce.New(opts...)
	if err != nil {
		logger.Error("Failed to initialize reducer", "error", err)
		os.Exit(1)
	}

	if similarityURL != "" {
		source, err := newHTTPSource(similarityURL)
		if err != nil {
			logger.Error("Failed to initialize similarity source", "error", err)
			os.Exit(1)
		}
		matrixBuilder, err = simmatrix.New(source,
			simmatrix.WithLogger(logger),
			simmatrix.WithWorkers(workers),
		)
		if err != nil {
			logger.Error("Failed to initialize matrix builder", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Reduction components initialized",
		"warm_up", warmUp,
		"matrix_enabled", matrixBuilder != nil,
	)
}

// requestHandler is the main fasthttp request handler
func requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	// Set common headers
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "TermReductionServer")

	// Route based on path
	switch string(ctx.Path()) {
	case "/health":
		handleHealthCheck(ctx)
	case "/reduce":
		handleReduce(ctx)
	case "/matrix":
		handleMatrix(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		writeJSONError(ctx, "Not found")
	}

	// Log request
	duration := time.Since(startTime)
	logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", duration,
	)
}

// handleHealthCheck responds to health check requests
func handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	writeJSONResponse(ctx, response)
}

// handleReduce handles reduction requests carrying a full similarity matrix
func handleReduce(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	var req ReduceRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}
	if len(req.Labels) == 0 {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "At least one label is required")
		return
	}

	labels := make([]domain.Label, len(req.Labels))
	for i, name := range req.Labels {
		labels[i] = domain.Label(name)
	}
	m, err := domain.NewSimilarityMatrixFromDense(labels, req.Matrix)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, err.Error())
		return
	}

	var scores domain.ScoreMap
	if req.Scores != nil {
		scores = make(domain.ScoreMap, len(req.Scores))
		for name, s := range req.Scores {
			scores[domain.Label(name)] = s
		}
	}

	reducer := defaultReducer
	if req.Threshold != 0 || req.SecondaryThreshold != 0 {
		opts := []reduce.ReducerOption{reduce.WithLogger(logger)}
		if req.Threshold != 0 {
			opts = append(opts, reduce.WithThreshold(req.Threshold))
		}
		if req.SecondaryThreshold != 0 {
			opts = append(opts, reduce.WithSecondaryThreshold(req.SecondaryThreshold))
		}
		reducer, err = reduce.New(opts...)
		if err != nil {
			writeDomainError(ctx, err)
			return
		}
	}

	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := reducer.Reduce(c, m, scores)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, toReduceResponse(result))
}

// handleMatrix handles similarity matrix assembly requests
func handleMatrix(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}
	if matrixBuilder == nil {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		writeJSONError(ctx, "No similarity service configured; start with -similarity-url")
		return
	}

	var req MatrixRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "Invalid request: "+err.Error())
		return
	}
	if len(req.Labels) == 0 {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "At least one label is required")
		return
	}

	labels := make([]domain.Label, len(req.Labels))
	for i, name := range req.Labels {
		labels[i] = domain.Label(name)
	}

	c, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	m, err := matrixBuilder.Build(c, labels, req.Ontology)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}

	out := MatrixResponse{Labels: make([]string, m.Len()), Matrix: make([][]float64, m.Len())}
	for i, label := range m.Labels() {
		out.Labels[i] = string(label)
		out.Matrix[i] = m.Row(i)
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, out)
}

// toReduceResponse converts the domain result into its JSON form.
func toReduceResponse(result *domain.ReducedAssignment) ReduceResponse {
	resp := ReduceResponse{
		Rows:            make([]ReduceRow, len(result.Rows)),
		Representatives: make(map[int]string, len(result.Representatives)),
		Threshold:       result.Threshold,
	}
	for i, row := range result.Rows {
		resp.Rows[i] = ReduceRow{
			Label:          string(row.Label),
			Cluster:        int(row.Cluster),
			Representative: string(row.Representative),
			ParentTerm:     row.ParentTerm,
			Score:          row.Score,
		}
	}
	for id, rep := range result.Representatives {
		resp.Representatives[int(id)] = string(rep)
	}
	reduced := result.ReducedMatrix
	resp.ReducedLabels = make([]string, reduced.Len())
	resp.ReducedMatrix = make([][]float64, reduced.Len())
	for i, label := range reduced.Labels() {
		resp.ReducedLabels[i] = string(label)
		resp.ReducedMatrix[i] = reduced.Row(i)
	}
	return resp
}

// writeDomainError maps domain errors onto HTTP status codes.
func writeDomainError(ctx *fasthttp.RequestCtx, err error) {
	var dimErr *domain.DimensionMismatchError
	var scoreErr *domain.MissingScoreError
	var thresholdErr *domain.InvalidThresholdError
	var lookupErr *domain.LookupError

	switch {
	case errors.As(err, &dimErr), errors.As(err, &scoreErr), errors.As(err, &thresholdErr):
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
	case errors.As(err, &lookupErr):
		ctx.SetStatusCode(fasthttp.StatusBadGateway)
	default:
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}
	writeJSONError(ctx, err.Error())
}

// writeJSONResponse serializes a response body, falling back to a plain 500.
func writeJSONResponse(ctx *fasthttp.RequestCtx, response interface{}) {
	body, err := json.Marshal(response)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"error":"failed to encode response"}`)
		return
	}
	ctx.SetBody(body)
}

// writeJSONError writes an error response body.
func writeJSONError(ctx *fasthttp.RequestCtx, msg string) {
	body, err := json.Marshal(ErrorResponse{Error: msg})
	if err != nil {
		ctx.SetBodyString(`{"error":"internal error"}`)
		return
	}
	ctx.SetBody(body)
}
