package pool

import (
	"sync"
)

// Float64SlicePool implements a pool of float64 slices for efficient reuse of
// the working distance rows allocated during agglomeration.
type Float64SlicePool struct {
	pool sync.Pool
}

// NewFloat64SlicePool creates a new float64 slice pool.
func NewFloat64SlicePool() *Float64SlicePool {
	return &Float64SlicePool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]float64, 0, 64)
				return &buffer
			},
		},
	}
}

// Get retrieves a zeroed slice of length n from the pool, growing the backing
// array when needed.
func (fp *Float64SlicePool) Get(n int) *[]float64 {
	buffer := fp.pool.Get().(*[]float64)
	if cap(*buffer) < n {
		grown := make([]float64, n)
		return &grown
	}
	*buffer = (*buffer)[:n]
	for i := range *buffer {
		(*buffer)[i] = 0
	}
	return buffer
}

// Put returns a slice to the pool for reuse.
func (fp *Float64SlicePool) Put(buffer *[]float64) {
	// Reset length but keep capacity
	*buffer = (*buffer)[:0]
	fp.pool.Put(buffer)
}
