// Package options holds the functional options shared by the contraction and
// factorization algorithms.
package options

import (
	"log/slog"

	"github.com/born-ml/bsparse/internal/logging"
	"github.com/born-ml/bsparse/internal/parallel"
)

// DefaultSymmetryTol is the default absolute tolerance used when checking
// that a matrix equals its transpose.
const DefaultSymmetryTol = 1e-10

// Option configures an algorithm call.
type Option func(*Options)

// Options is the resolved configuration of one algorithm call.
type Options struct {
	BlockSort   bool
	SymmetryTol float64
	Parallel    parallel.Config
	Logger      *logging.Logger
}

// Apply resolves opts on top of the defaults.
func Apply(opts ...Option) Options {
	o := Options{
		SymmetryTol: DefaultSymmetryTol,
		Parallel:    parallel.DefaultConfig(),
		Logger:      logging.Noop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithBlockSort orders eigen-clusters by descending eigenvalue norm.
func WithBlockSort(sort bool) Option {
	return func(o *Options) {
		o.BlockSort = sort
	}
}

// WithWorkers limits the number of goroutines used for per-cluster and
// per-block work. n <= 1 runs sequentially.
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Parallel = o.Parallel.WithWorkers(n)
	}
}

// WithSymmetryTol sets the absolute tolerance of the symmetry check.
// A negative value disables the check.
func WithSymmetryTol(tol float64) Option {
	return func(o *Options) {
		o.SymmetryTol = tol
	}
}

// WithLogger routes debug output of the algorithm to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logging.FromSlog(l)
	}
}
