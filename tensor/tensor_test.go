// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"errors"
	"testing"

	"github.com/born-ml/bsparse/tensor"
)

// TestDenseAPI verifies the Dense alias exposes the expected API.
func TestDenseAPI(t *testing.T) {
	a, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	if !a.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", a.Shape())
	}
	if a.DType() != tensor.Float64 {
		t.Errorf("DType() = %v, want float64", a.DType())
	}
	if got := a.At(1, 2); got != 6 {
		t.Errorf("At(1, 2) = %v, want 6", got)
	}

	c := tensor.MatMul(a, a.Transpose())
	d, err := tensor.Einsum("ij,kj->ik", a, a)
	if err != nil {
		t.Fatalf("Einsum failed: %v", err)
	}
	if !tensor.AllClose(c, d, 0, 0) {
		t.Errorf("MatMul = %v, Einsum = %v", c, d)
	}
	if got := c.At(0, 0); got != 14 {
		t.Errorf("c[0,0] = %v, want 14", got)
	}
}

func TestErrors(t *testing.T) {
	_, err := tensor.FromSlice([]int32{1, 2, 3}, tensor.Shape{2, 2})
	if !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Errorf("FromSlice error = %v, want ErrShapeMismatch", err)
	}

	_, err = tensor.Einsum[float32]("ij->k", tensor.Zeros[float32](tensor.Shape{2, 2}))
	if !errors.Is(err, tensor.ErrInvalidSubscripts) {
		t.Errorf("Einsum error = %v, want ErrInvalidSubscripts", err)
	}
}

func TestIdentity(t *testing.T) {
	i := tensor.Identity[int64](3)
	if !i.Equal(i.Transpose()) {
		t.Error("identity is not symmetric")
	}
	if got := tensor.Zeros[int64](tensor.Shape{3, 3}).Add(i).At(2, 2); got != 1 {
		t.Errorf("diagonal = %d, want 1", got)
	}
}
