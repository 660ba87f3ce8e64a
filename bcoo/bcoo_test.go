// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bcoo_test

import (
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/born-ml/bsparse/bcoo"
	"github.com/born-ml/bsparse/tensor"
)

func example(t *testing.T) *bcoo.Tensor[float64] {
	t.Helper()
	a, err := tensor.FromSlice([]float64{
		1, 2, 0, 0,
		0, 3, 0, 0,
		4, 5, 6, 0,
		8, 0, 9, 0,
	}, tensor.Shape{4, 4})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	x, err := bcoo.FromDense(a, tensor.Shape{2, 2})
	if err != nil {
		t.Fatalf("FromDense failed: %v", err)
	}
	return x
}

// TestStructure exercises the structural operations through the public API.
func TestStructure(t *testing.T) {
	x := example(t)
	if x.BlockNNZ() != 3 {
		t.Fatalf("BlockNNZ() = %d, want 3", x.BlockNNZ())
	}

	xt, err := x.Transpose()
	if err != nil {
		t.Fatalf("Transpose failed: %v", err)
	}
	if got := xt.ToDense().At(0, 2); got != 4 {
		t.Errorf("xᵀ[0,2] = %v, want 4", got)
	}

	r, err := x.Reshape(tensor.Shape{2, 8}, tensor.Shape{1, 2})
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}
	if got := r.ToDense().At(1, 1); got != 5 {
		t.Errorf("reshaped[1,1] = %v, want 5", got)
	}

	sub, err := x.GetBlock(bcoo.Index(1), bcoo.All())
	if err != nil {
		t.Fatalf("GetBlock failed: %v", err)
	}
	if !sub.Shape().Equal(tensor.Shape{2, 4}) {
		t.Errorf("GetBlock shape = %v, want [2 4]", sub.Shape())
	}

	if _, err := x.Transpose(0, 0); !errors.Is(err, bcoo.ErrInvalidPermutation) {
		t.Errorf("Transpose(0, 0) error = %v, want ErrInvalidPermutation", err)
	}
	if _, err := x.Reshape(tensor.Shape{3, 5}, tensor.Shape{1, 1}); !errors.Is(err, bcoo.ErrReshapeSize) {
		t.Errorf("Reshape error = %v, want ErrReshapeSize", err)
	}
}

// TestContraction checks Dot and Einsum against dense results.
func TestContraction(t *testing.T) {
	x := example(t)
	d := x.ToDense()

	z, err := bcoo.Dot(x, x, bcoo.WithWorkers(2))
	if err != nil {
		t.Fatalf("Dot failed: %v", err)
	}
	if !tensor.AllClose(z.ToDense(), tensor.MatMul(d, d), 0, 1e-12) {
		t.Errorf("Dot = %v, want %v", z.ToDense(), tensor.MatMul(d, d))
	}

	e, err := bcoo.Einsum("ij,jk->ik", x, x)
	if err != nil {
		t.Fatalf("Einsum failed: %v", err)
	}
	if !bcoo.AllClose(e, z, 0, 1e-12) {
		t.Errorf("Einsum and Dot disagree")
	}

	if _, err := bcoo.Einsum("ij,jk->ik", x); !errors.Is(err, bcoo.ErrInvalidSubscripts) {
		t.Errorf("Einsum error = %v, want ErrInvalidSubscripts", err)
	}
}

// TestFactorizations runs BlockEigh and BlockSVD on a random symmetric tensor.
func TestFactorizations(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 8))
	x, err := bcoo.RandomSymmetric[float64](12, 3, 0.25, rng)
	if err != nil {
		t.Fatalf("RandomSymmetric failed: %v", err)
	}

	clusters, err := bcoo.GetClusters(x.Coords(), x.OuterShape())
	if err != nil {
		t.Fatalf("GetClusters failed: %v", err)
	}
	seen := 0
	for _, c := range clusters {
		seen += len(c)
	}
	if seen != 4 {
		t.Errorf("clusters cover %d block indices, want 4", seen)
	}

	vals, vecs, err := bcoo.BlockEigh(x, bcoo.WithBlockSort(true))
	if err != nil {
		t.Fatalf("BlockEigh failed: %v", err)
	}
	rec, err := bcoo.Einsum("ij,jk,lk->il", vecs, vals, vecs)
	if err != nil {
		t.Fatalf("Einsum failed: %v", err)
	}
	if !bcoo.AllClose(rec, x, 1e-9, 1e-9) {
		t.Errorf("V Λ Vᵀ does not reconstruct x")
	}

	u, s, vt, err := bcoo.BlockSVD(x)
	if err != nil {
		t.Fatalf("BlockSVD failed: %v", err)
	}
	rec, err = bcoo.Einsum("ij,jk,kl->il", u, s, vt)
	if err != nil {
		t.Fatalf("Einsum failed: %v", err)
	}
	if !bcoo.AllClose(rec, x, 1e-9, 1e-9) {
		t.Errorf("U Σ Vᵀ does not reconstruct x")
	}
}

// TestConstructionErrors verifies sentinel errors surface through the facade.
func TestConstructionErrors(t *testing.T) {
	a := tensor.Zeros[float64](tensor.Shape{4, 5})
	_, err := bcoo.FromDense(a, tensor.Shape{2, 2})
	var se *bcoo.ShapeError
	if !errors.As(err, &se) || se.Axis != 1 {
		t.Errorf("FromDense error = %v, want ShapeError on axis 1", err)
	}
	if !errors.Is(err, bcoo.ErrShapeMismatch) {
		t.Errorf("FromDense error = %v, want ErrShapeMismatch", err)
	}

	b := tensor.Zeros[float64](tensor.Shape{2, 2})
	_, err = bcoo.New([][]int{{2, 0}}, []*tensor.Dense[float64]{b}, tensor.Shape{4, 4}, tensor.Shape{2, 2})
	if !errors.Is(err, bcoo.ErrIndexRange) {
		t.Errorf("New error = %v, want ErrIndexRange", err)
	}

	x, err := bcoo.FromBlocks([]bcoo.Entry[float64]{{Coord: []int{1, 2}, Block: b}}, tensor.Shape{2, 2})
	if err != nil {
		t.Fatalf("FromBlocks failed: %v", err)
	}
	if !x.Shape().Equal(tensor.Shape{4, 6}) {
		t.Errorf("FromBlocks shape = %v, want [4 6]", x.Shape())
	}
}

// TestSaveLoad round-trips a tensor through a compressed .bsp file.
func TestSaveLoad(t *testing.T) {
	x := example(t)
	path := filepath.Join(t.TempDir(), "example.bsp")
	if err := bcoo.Save(path, x, bcoo.WriterOptions{Compression: bcoo.CompressionZSTD}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	y, header, err := bcoo.Load[float64](path, bcoo.ReaderOptions{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if header.BlockNNZ != 3 {
		t.Errorf("header.BlockNNZ = %d, want 3", header.BlockNNZ)
	}
	if !x.Equal(y) {
		t.Errorf("loaded tensor differs from saved one")
	}

	m, _, err := bcoo.LoadMapped[float64](path, bcoo.ReaderOptions{})
	if err != nil {
		t.Fatalf("LoadMapped failed: %v", err)
	}
	if !x.Equal(m) {
		t.Errorf("mapped tensor differs from saved one")
	}
}
