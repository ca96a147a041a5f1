// Package parallel provides the worker-pool helpers TextNet uses to fan
// numeric work out across CPU cores.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how loops are distributed across goroutines.
// Parallelism is a pure performance knob: results are identical for any
// worker count.
type Config struct {
	NumWorkers   int // Number of worker goroutines to use.
	MinChunkSize int // Minimum iterations per goroutine to avoid overhead.
}

// DefaultConfig sizes the pool from the CPU count.
// Convolution rows carry enough work that a small minimum chunk pays off.
func DefaultConfig() Config {
	return Config{
		NumWorkers:   runtime.NumCPU(),
		MinChunkSize: 8,
	}
}

// WithWorkers returns a config with a fixed worker count. Layers expose
// their thread count as a construction-time parameter and route it here.
func WithWorkers(n int) Config {
	cfg := DefaultConfig()
	if n > 0 {
		cfg.NumWorkers = n
	}
	return cfg
}

// For executes f(i) for i in [0, n), distributing iterations across the
// configured workers. Each worker owns a disjoint index range, so f may
// write to per-index state without synchronization. Falls back to a
// plain loop when the pool is of size one or n is too small to split.
func For(n int, f func(i int), cfg Config) {
	if cfg.NumWorkers < 1 {
		cfg.NumWorkers = 1
	}
	if cfg.MinChunkSize < 1 {
		cfg.MinChunkSize = 1
	}

	if cfg.NumWorkers == 1 || n < 2*cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
