// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense N-dimensional arrays that block-sparse
// tensors are built from and converted to.
//
// # Overview
//
// A Dense[T] is a row-major array of float32, float64, int32 or int64
// elements. It is the storage of every block inside a bcoo.Tensor and the
// reference representation block-sparse results are compared against:
//   - Creation: Zeros, FromSlice, Identity
//   - Layout: Transpose, Reshape, SubBox, SetBox
//   - Arithmetic: Add, Sub, Scale, MatMul, Einsum
//
// # Basic Usage
//
//	import "github.com/born-ml/bsparse/tensor"
//
//	func main() {
//	    a, _ := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	    b := a.Transpose()             // Shape: [3, 2]
//	    c := tensor.MatMul(a, b)       // Shape: [2, 2]
//	    d, _ := tensor.Einsum("ij,jk->ik", a, b)
//	    _ = c.Equal(d)                 // true
//	}
//
// # Shapes
//
// Shape{} is a scalar holding one element. Axes of length zero are legal and
// describe empty arrays.
package tensor
