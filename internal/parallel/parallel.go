// Package parallel provides chunked parallel iteration for CPU kernels.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls how loops are split across goroutines.
type Config struct {
	// Enabled turns parallel execution on. When false, loops run serially.
	Enabled bool

	// NumWorkers is the maximum number of concurrent goroutines.
	// Zero means runtime.NumCPU().
	NumWorkers int

	// MinChunkSize is the smallest amount of work worth spawning a
	// goroutine for. Loops shorter than this run serially.
	MinChunkSize int
}

// DefaultConfig returns a config suitable for element-wise kernels.
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		NumWorkers:   runtime.NumCPU(),
		MinChunkSize: 64,
	}
}

func (c Config) workers() int {
	if c.NumWorkers > 0 {
		return c.NumWorkers
	}
	return runtime.NumCPU()
}

// For runs fn over [0, n) split into contiguous chunks, one chunk per
// goroutine. fn must be safe to call concurrently on disjoint ranges.
func For(cfg Config, n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := cfg.workers()
	if !cfg.Enabled || workers <= 1 || n < cfg.MinChunkSize*2 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	if chunk < cfg.MinChunkSize {
		chunk = cfg.MinChunkSize
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	// Workers never return errors; Wait is only a join point.
	_ = g.Wait()
}

// ForBatch runs fn once per index in [0, n), parallelizing across indices.
// Useful when each index is a coarse unit of work, e.g. one batch element
// or one output channel of a convolution.
func ForBatch(cfg Config, n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := cfg.workers()
	if !cfg.Enabled || workers <= 1 || n == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
