// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bcoo

import (
	"math/rand/v2"

	"github.com/born-ml/bsparse/internal/bcoo"
	"github.com/born-ml/bsparse/internal/tensor"
)

// Tensor is a block-sparse tensor in blocked coordinate format.
type Tensor[T tensor.Numeric] = bcoo.Tensor[T]

// Entry pairs a block index with a dense block, for FromBlocks.
type Entry[T tensor.Numeric] = bcoo.Entry[T]

// Selector picks block indices along one axis in GetBlock.
type Selector = bcoo.Selector

// ShapeError describes a shape / block shape incompatibility.
type ShapeError = bcoo.ShapeError

// Sentinel errors.
var (
	ErrShapeMismatch      = bcoo.ErrShapeMismatch
	ErrInvalidPermutation = bcoo.ErrInvalidPermutation
	ErrReshapeSize        = bcoo.ErrReshapeSize
	ErrIndexRange         = bcoo.ErrIndexRange
	ErrPrecondition       = bcoo.ErrPrecondition
	ErrInvalidData        = bcoo.ErrInvalidData
	ErrInvalidSubscripts  = bcoo.ErrInvalidSubscripts
	ErrFactorization      = bcoo.ErrFactorization
)

// FromDense partitions a dense array into blocks and keeps the nonzero ones.
//
// Example:
//
//	x, err := bcoo.FromDense(a, tensor.Shape{2, 2})
func FromDense[T tensor.Numeric](a *tensor.Dense[T], blockShape tensor.Shape) (*Tensor[T], error) {
	return bcoo.FromDense(a, blockShape)
}

// New creates a tensor from block indices and matching blocks.
// Blocks are copied.
func New[T tensor.Numeric](coords [][]int, blocks []*tensor.Dense[T], shape, blockShape tensor.Shape) (*Tensor[T], error) {
	return bcoo.New(coords, blocks, shape, blockShape)
}

// FromBlocks creates a tensor from a coordinate/block association list. The
// shape is the smallest block grid holding every entry.
func FromBlocks[T tensor.Numeric](entries []Entry[T], blockShape tensor.Shape) (*Tensor[T], error) {
	return bcoo.FromBlocks(entries, blockShape)
}

// Zeros creates a tensor without stored blocks.
func Zeros[T tensor.Numeric](shape, blockShape tensor.Shape) (*Tensor[T], error) {
	return bcoo.Zeros[T](shape, blockShape)
}

// Random creates a tensor storing int(density * grid cells) random blocks.
//
// Example:
//
//	rng := rand.New(rand.NewPCG(1, 2))
//	x, err := bcoo.Random[float64](tensor.Shape{16, 8}, tensor.Shape{2, 2}, 0.3, rng)
func Random[T tensor.Numeric](shape, blockShape tensor.Shape, density float64, rng *rand.Rand) (*Tensor[T], error) {
	return bcoo.Random[T](shape, blockShape, density, rng)
}

// RandomSymmetric returns r + rᵀ for a random n×n tensor r with square blocks.
func RandomSymmetric[T tensor.Numeric](n, blockSize int, density float64, rng *rand.Rand) (*Tensor[T], error) {
	return bcoo.RandomSymmetric[T](n, blockSize, density, rng)
}

// Index selects one block index; negative values count from the end.
func Index(i int) Selector { return bcoo.Index(i) }

// Range selects block indices in [lo, hi).
func Range(lo, hi int) Selector { return bcoo.Range(lo, hi) }

// All selects every block index of an axis.
func All() Selector { return bcoo.All() }

// Ellipsis covers all remaining axes.
func Ellipsis() Selector { return bcoo.Ellipsis() }

// AllClose reports whether two tensors hold the same values within tolerance.
func AllClose[T tensor.Numeric](a, b *Tensor[T], rtol, atol float64) bool {
	return bcoo.AllClose(a, b, rtol, atol)
}
