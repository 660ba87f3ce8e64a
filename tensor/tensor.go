// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/bsparse/internal/tensor"
)

// Numeric is a constraint for element types: float32, float64, int32, int64
// and types derived from them.
type Numeric = tensor.Numeric

// DataType represents the element type of an array at runtime.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
)

// Shape represents the dimensions of an array.
// Example: Shape{2, 3, 4} represents a 3D array with dimensions 2×3×4.
type Shape = tensor.Shape

// Dense is a row-major N-dimensional array.
type Dense[T Numeric] = tensor.Dense[T]

// ErrShapeMismatch is returned when shapes are incompatible.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// ErrInvalidSubscripts is returned for malformed einsum expressions.
var ErrInvalidSubscripts = tensor.ErrInvalidSubscripts

// Zeros creates an array filled with zeros.
//
// Example:
//
//	x := tensor.Zeros[float64](tensor.Shape{2, 3})
func Zeros[T Numeric](shape Shape) *Dense[T] {
	return tensor.Zeros[T](shape)
}

// FromSlice creates an array from a Go slice, copying the data.
//
// Example:
//
//	x, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice[T Numeric](data []T, shape Shape) (*Dense[T], error) {
	return tensor.FromSlice(data, shape)
}

// Identity returns the n×n identity matrix.
func Identity[T Numeric](n int) *Dense[T] {
	return tensor.Identity[T](n)
}

// MatMul multiplies two 2D arrays: (M, K) @ (K, N) -> (M, N).
// float64 operands use BLAS.
func MatMul[T Numeric](a, b *Dense[T]) *Dense[T] {
	return tensor.MatMul(a, b)
}

// Einsum evaluates an Einstein summation on dense arrays.
//
// Example:
//
//	tr, err := tensor.Einsum("ii", m) // trace
func Einsum[T Numeric](expr string, operands ...*Dense[T]) (*Dense[T], error) {
	return tensor.Einsum(expr, operands...)
}

// AllClose reports whether |a - b| <= atol + rtol*|b| holds elementwise.
func AllClose[T Numeric](a, b *Dense[T], rtol, atol float64) bool {
	return tensor.AllClose(a, b, rtol, atol)
}
