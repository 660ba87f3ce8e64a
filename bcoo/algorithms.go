// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bcoo

import (
	"log/slog"

	"github.com/born-ml/bsparse/internal/cluster"
	"github.com/born-ml/bsparse/internal/contract"
	"github.com/born-ml/bsparse/internal/linalg"
	"github.com/born-ml/bsparse/internal/options"
	"github.com/born-ml/bsparse/internal/tensor"
)

// Option configures Dot, Einsum, BlockEigh and BlockSVD.
type Option = options.Option

// WithBlockSort orders BlockEigh clusters by descending eigenvalue norm.
//
// Example:
//
//	vals, vecs, err := bcoo.BlockEigh(x, bcoo.WithBlockSort(true))
func WithBlockSort(sort bool) Option { return options.WithBlockSort(sort) }

// WithWorkers limits the goroutines used per call. n <= 1 runs sequentially.
func WithWorkers(n int) Option { return options.WithWorkers(n) }

// WithSymmetryTol sets the tolerance of BlockEigh's symmetry check.
// A negative value skips the check.
func WithSymmetryTol(tol float64) Option { return options.WithSymmetryTol(tol) }

// WithLogger sends debug output of an algorithm to l.
func WithLogger(l *slog.Logger) Option { return options.WithLogger(l) }

// Bicluster is a connected component of block rows and block columns.
type Bicluster = cluster.Bicluster

// GetClusters partitions the block indices of a square, symmetric block
// pattern into connected clusters.
func GetClusters(coords [][]int, outerShape tensor.Shape) ([][]int, error) {
	return cluster.GetClusters(coords, outerShape)
}

// GetClustersNoSym partitions block rows and block columns into connected
// components of the block pattern.
func GetClustersNoSym(coords [][]int, outerShape tensor.Shape) ([]Bicluster, error) {
	return cluster.GetClustersNoSym(coords, outerShape)
}

// Dot contracts the last axis of x with the first axis of y.
func Dot[T tensor.Numeric](x, y *Tensor[T], opts ...Option) (*Tensor[T], error) {
	return contract.Dot(x, y, opts...)
}

// Einsum evaluates an Einstein summation over block-sparse operands.
//
// Example:
//
//	z, err := bcoo.Einsum("ij,jk->ik", x, y)
func Einsum[T tensor.Numeric](expr string, operands ...*Tensor[T]) (*Tensor[T], error) {
	return contract.Einsum(expr, operands)
}

// EinsumWith is Einsum with options.
func EinsumWith[T tensor.Numeric](expr string, operands []*Tensor[T], opts ...Option) (*Tensor[T], error) {
	return contract.Einsum(expr, operands, opts...)
}

// BlockEigh computes x = V Λ Vᵀ for a symmetric rank-2 tensor, one dense
// eigendecomposition per cluster.
func BlockEigh(x *Tensor[float64], opts ...Option) (vals, vecs *Tensor[float64], err error) {
	return linalg.BlockEigh(x, opts...)
}

// BlockSVD computes x = U Σ Vᵀ for a rank-2 tensor, one dense SVD per
// connected component.
func BlockSVD(x *Tensor[float64], opts ...Option) (u, s, vt *Tensor[float64], err error) {
	return linalg.BlockSVD(x, opts...)
}
