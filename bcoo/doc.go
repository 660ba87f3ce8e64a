// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bcoo provides block-sparse tensors in blocked coordinate (BCOO)
// format and block-structure aware linear algebra on top of them.
//
// # Overview
//
// A Tensor[T] cuts an N-dimensional array into a regular grid of equally
// shaped dense blocks and stores only the blocks that may be nonzero:
//   - Construction: FromDense, New, FromBlocks, Zeros, Random
//   - Structure: Transpose, Reshape, BlockReshape, BroadcastTo, GetBlock, ToDense
//   - Contraction: Dot, Einsum
//   - Factorization: BlockEigh, BlockSVD
//   - Pattern analysis: GetClusters, GetClustersNoSym
//   - Storage: Save, Load, Write, Read (.bsp files)
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/bsparse/bcoo"
//	    "github.com/born-ml/bsparse/tensor"
//	)
//
//	func main() {
//	    a, _ := tensor.FromSlice([]float64{
//	        1, 2, 0, 0,
//	        0, 3, 0, 0,
//	        4, 5, 6, 0,
//	        8, 0, 9, 0,
//	    }, tensor.Shape{4, 4})
//
//	    x, _ := bcoo.FromDense(a, tensor.Shape{2, 2}) // 3 stored blocks
//	    y, _ := x.Transpose()
//	    z, _ := bcoo.Dot(x, y)
//	    _ = z.ToDense()
//	}
//
// # Factorizations
//
// BlockEigh and BlockSVD split the block pattern into connected clusters and
// factorize each cluster densely, so the cost is the sum of cubes of cluster
// sizes instead of the cube of the matrix size:
//
//	vals, vecs, err := bcoo.BlockEigh(x, bcoo.WithBlockSort(true))
//	u, s, vt, err := bcoo.BlockSVD(x)
//	rec, err := bcoo.Einsum("ij,jk,kl->il", u, s, vt) // == x
//
// # Errors
//
// Every failure wraps one of the sentinel errors below; test with errors.Is.
// Tensors are immutable: operations return new tensors, except a no-op
// Reshape, BlockReshape or BroadcastTo which returns its receiver.
package bcoo
