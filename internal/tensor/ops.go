package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// Add returns d + other elementwise. Panics on shape mismatch.
func (d *Dense[T]) Add(other *Dense[T]) *Dense[T] {
	out := d.Clone()
	out.AddAssign(other)
	return out
}

// Sub returns d - other elementwise. Panics on shape mismatch.
func (d *Dense[T]) Sub(other *Dense[T]) *Dense[T] {
	d.mustMatch("sub", other)
	out := d.Clone()
	for i, v := range other.data {
		out.data[i] -= v
	}
	return out
}

// AddAssign adds other into d in place. Panics on shape mismatch.
func (d *Dense[T]) AddAssign(other *Dense[T]) {
	d.mustMatch("add", other)
	for i, v := range other.data {
		d.data[i] += v
	}
}

// Scale returns alpha * d.
func (d *Dense[T]) Scale(alpha T) *Dense[T] {
	out := d.Clone()
	for i := range out.data {
		out.data[i] *= alpha
	}
	return out
}

func (d *Dense[T]) mustMatch(op string, other *Dense[T]) {
	if !d.shape.Equal(other.shape) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, d.shape, other.shape))
	}
}

// MatMul performs matrix multiplication.
// For 2D arrays: (M, K) @ (K, N) -> (M, N).
func MatMul[T Numeric](a, b *Dense[T]) *Dense[T] {
	m, k, n := matmulDims(a, b)
	c := Zeros[T](Shape{m, n})
	matmulAdd(c.data, a.data, b.data, m, k, n)
	return c
}

// MatMulAdd accumulates a @ b into c: c += a·b.
// Panics if the shapes are not (M,K), (K,N) and (M,N).
func MatMulAdd[T Numeric](c, a, b *Dense[T]) {
	m, _, n := matmulDims(a, b)
	if len(c.shape) != 2 || c.shape[0] != m || c.shape[1] != n {
		panic(fmt.Sprintf("matmul: output shape %v, want [%d %d]", c.shape, m, n))
	}
	matmulAdd(c.data, a.data, b.data, m, a.shape[1], n)
}

func matmulDims[T Numeric](a, b *Dense[T]) (m, k, n int) {
	if len(a.shape) != 2 || len(b.shape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D arrays supported, got %dD and %dD", len(a.shape), len(b.shape)))
	}
	m, k = a.shape[0], a.shape[1]
	kAlt, n := b.shape[0], b.shape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}
	return m, k, n
}

// matmulAdd computes c += a·b on flat row-major buffers.
// float64 goes through gonum's blas64 GEMM; other types use the naive kernel.
func matmulAdd[T Numeric](c, a, b []T, m, k, n int) {
	if m == 0 || n == 0 || k == 0 {
		return
	}
	if cf, ok := any(c).([]float64); ok {
		af := any(a).([]float64)
		bf := any(b).([]float64)
		blas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
			blas64.General{Rows: m, Cols: k, Stride: k, Data: af},
			blas64.General{Rows: k, Cols: n, Stride: n, Data: bf},
			1,
			blas64.General{Rows: m, Cols: n, Stride: n, Data: cf})
		return
	}

	for i := 0; i < m; i++ {
		for kIdx := 0; kIdx < k; kIdx++ {
			aik := a[i*k+kIdx]
			if aik == 0 {
				continue
			}
			row := b[kIdx*n : (kIdx+1)*n]
			out := c[i*n : (i+1)*n]
			for j, bkj := range row {
				out[j] += aik * bkj
			}
		}
	}
}
