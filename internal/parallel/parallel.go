// Package parallel fans independent per-block and per-cluster work out to
// worker goroutines.
package parallel

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Upper bound on concurrently running goroutines.
	MinChunkSize int  // Minimum items per goroutine in For.
}

// DefaultConfig returns defaults based on CPU count. Work items are whole
// dense blocks or clusters, so chunks are small.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4,
	}
}

// Sequential returns a config that runs everything on the calling goroutine.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// WithWorkers returns a copy of cfg limited to n workers.
// n <= 1 disables parallelism.
func (cfg Config) WithWorkers(n int) Config {
	cfg.NumWorkers = max(n, 1)
	cfg.Enabled = n > 1
	return cfg
}

func (cfg Config) sequential(n int) bool {
	return !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*max(cfg.MinChunkSize, 1)
}

// For executes f(i) for i in [0, n). Items are split into contiguous chunks,
// one goroutine per chunk. f must only write state owned by item i.
func For(n int, f func(i int), cfg Config) {
	if cfg.sequential(n) {
		for i := range n {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				f(i)
			}
		}()
	}
	wg.Wait()
}

// ForErr executes f(i) for i in [0, n) with at most cfg.NumWorkers running at
// once and returns the first error. Items not yet started when an error
// occurs still run; their results should be discarded by the caller.
func ForErr(n int, f func(i int) error, cfg Config) error {
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2 {
		for i := range n {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(cfg.NumWorkers)
	for i := range n {
		g.Go(func() error { return f(i) })
	}
	return g.Wait()
}
