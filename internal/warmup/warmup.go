package warmup

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
)

// WarmupConfig defines configuration for warming up the system
type WarmupConfig struct {
	// Number of synthetic labels per warmup matrix
	Labels int
	// Number of reduction iterations to run
	Iterations int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Labels:     64,
		Iterations: 25,
		Duration:   5 * time.Second,
		ForceGC:    true,
	}
}

// Manager handles system warmup operations
type Manager struct {
	logger   ports.Logger
	reducers []ports.MatrixReducer
	config   WarmupConfig
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterReducer adds a reducer to be warmed up
func (wm *Manager) RegisterReducer(r ports.MatrixReducer) {
	wm.reducers = append(wm.reducers, r)
}

// WarmUp runs every registered reducer against a synthetic similarity matrix
// so that allocator pools and branch caches are primed before real traffic.
func (wm *Manager) WarmUp(ctx context.Context) {
	if len(wm.reducers) == 0 {
		return
	}
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"reducers", len(wm.reducers),
		"labels", wm.config.Labels,
		"iterations", wm.config.Iterations,
	)

	warmupCtx := ctx
	var cancel context.CancelFunc
	if wm.config.Duration > 0 {
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	}

	m, err := SyntheticMatrix(wm.config.Labels)
	if err != nil {
		wm.logger.Error("Failed to build warmup matrix", "error", err)
		return
	}

	for i := 0; i < wm.config.Iterations; i++ {
		select {
		case <-warmupCtx.Done():
			wm.logger.Debug("Warmup cut short", "iteration", i)
			return
		default:
		}
		for _, r := range wm.reducers {
			if _, err := r.Reduce(warmupCtx, m, nil); err != nil {
				wm.logger.Warn("Warmup reduction failed", "error", err)
				return
			}
		}
	}

	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	wm.logger.Info("System warmup completed",
		"duration", time.Since(startTime),
	)
}

// SyntheticMatrix builds a deterministic pseudo-random similarity matrix over
// n synthetic labels. A fixed linear congruential generator keeps warmup
// reproducible without pulling in a randomness dependency.
func SyntheticMatrix(n int) (*domain.SimilarityMatrix, error) {
	if n < 1 {
		n = 1
	}
	labels := make([]domain.Label, n)
	for i := range labels {
		labels[i] = domain.Label(fmt.Sprintf("WARM:%04d", i))
	}
	data := make([][]float64, n)
	for i := range data {
		data[i] = make([]float64, n)
		data[i][i] = 1.0
	}
	seed := uint64(0x2545F4914F6CDD1D)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			seed = seed*6364136223846793005 + 1442695040888963407
			sim := float64(seed>>11) / float64(1<<53)
			data[i][j] = sim
			data[j][i] = sim
		}
	}
	return domain.NewSimilarityMatrixFromDense(labels, data)
}
