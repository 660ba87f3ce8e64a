package linalg

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/bsparse/internal/bcoo"
	"github.com/born-ml/bsparse/internal/contract"
	"github.com/born-ml/bsparse/internal/options"
	"github.com/born-ml/bsparse/internal/tensor"
)

const tol = 1e-9

func mustEinsum(t *testing.T, expr string, operands ...*bcoo.Tensor[float64]) *tensor.Dense[float64] {
	t.Helper()
	out, err := contract.Einsum(expr, operands)
	require.NoError(t, err)
	return out.ToDense()
}

func denseEigenvalues(t *testing.T, d *tensor.Dense[float64]) []float64 {
	t.Helper()
	var es mat.EigenSym
	require.True(t, es.Factorize(tensor.ToSym(d), false))
	return es.Values(nil)
}

func diagonal(d *tensor.Dense[float64]) []float64 {
	n := min(d.Shape()[0], d.Shape()[1])
	out := make([]float64, n)
	for i := range out {
		out[i] = d.At(i, i)
	}
	return out
}

func assertIdentity(t *testing.T, d *tensor.Dense[float64]) {
	t.Helper()
	n := d.Shape()[0]
	assert.True(t, tensor.AllClose(d, tensor.Identity[float64](n), 0, tol), "not identity: %v", d)
}

func TestBlockEigh(t *testing.T) {
	for _, sorted := range []bool{false, true} {
		name := "unsorted"
		if sorted {
			name = "block sort"
		}
		t.Run(name, func(t *testing.T) {
			x, err := bcoo.RandomSymmetric[float64](16, 4, 0.2, rand.New(rand.NewPCG(42, 7)))
			require.NoError(t, err)

			vals, vecs, err := BlockEigh(x, options.WithBlockSort(sorted))
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{16, 16}, vals.Shape())
			assert.Equal(t, tensor.Shape{4, 4}, vecs.BlockShape())
			for _, c := range vals.Coords() {
				assert.Equal(t, c[0], c[1], "eigenvalue block off the diagonal")
			}

			lambda := vals.ToDense()
			vtxv := mustEinsum(t, "ji,jk,kl->il", vecs, x, vecs)
			assert.True(t, tensor.AllClose(vtxv, lambda, tol, tol))
			assertIdentity(t, mustEinsum(t, "ji,jk->ik", vecs, vecs))

			got := diagonal(lambda)
			slices.Sort(got)
			want := denseEigenvalues(t, x.ToDense())
			assert.InDeltaSlice(t, want, got, tol)
		})
	}
}

func TestBlockEighOrdering(t *testing.T) {
	x := bcooFromDiag(t, []float64{1, 5, 3})

	t.Run("unsorted keeps cluster positions", func(t *testing.T) {
		vals, vecs, err := BlockEigh(x, options.WithWorkers(1))
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 5, 3}, diagonal(vals.ToDense()))
		assert.Equal(t, [][]int{{0, 0}, {1, 1}, {2, 2}}, vecs.Coords())
	})

	t.Run("sorted by descending norm", func(t *testing.T) {
		vals, vecs, err := BlockEigh(x, options.WithBlockSort(true))
		require.NoError(t, err)
		assert.Equal(t, []float64{5, 3, 1}, diagonal(vals.ToDense()))
		assert.Equal(t, [][]int{{0, 2}, {1, 0}, {2, 1}}, vecs.Coords())
	})

	t.Run("ties keep index order", func(t *testing.T) {
		vals, _, err := BlockEigh(bcooFromDiag(t, []float64{2, -2, 4}), options.WithBlockSort(true))
		require.NoError(t, err)
		assert.Equal(t, []float64{4, 2, -2}, diagonal(vals.ToDense()))
	})
}

func bcooFromDiag(t *testing.T, v []float64) *bcoo.Tensor[float64] {
	t.Helper()
	d := tensor.Zeros[float64](tensor.Shape{len(v), len(v)})
	for i, x := range v {
		d.Set(x, i, i)
	}
	x, err := bcoo.FromDense(d, tensor.Shape{1, 1})
	require.NoError(t, err)
	return x
}

func TestBlockEighEmpty(t *testing.T) {
	x, err := bcoo.Zeros[float64](tensor.Shape{8, 8}, tensor.Shape{2, 2})
	require.NoError(t, err)
	vals, vecs, err := BlockEigh(x)
	require.NoError(t, err)
	assert.Equal(t, 0, vals.BlockNNZ())
	assert.Equal(t, 4, vecs.BlockNNZ())
	assertIdentity(t, mustEinsum(t, "ji,jk->ik", vecs, vecs))
}

func TestBlockEighPreconditions(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))

	rect, err := bcoo.Random[float64](tensor.Shape{4, 8}, tensor.Shape{2, 2}, 0.5, rng)
	require.NoError(t, err)
	_, _, err = BlockEigh(rect)
	assert.ErrorIs(t, err, bcoo.ErrPrecondition)

	oblong, err := bcoo.Zeros[float64](tensor.Shape{4, 4}, tensor.Shape{4, 2})
	require.NoError(t, err)
	_, _, err = BlockEigh(oblong)
	assert.ErrorIs(t, err, bcoo.ErrPrecondition)

	cube, err := bcoo.Zeros[float64](tensor.Shape{2, 2, 2}, tensor.Shape{1, 1, 1})
	require.NoError(t, err)
	_, _, err = BlockEigh(cube)
	assert.ErrorIs(t, err, bcoo.ErrPrecondition)

	a := mustDense(t, []float64{1, 2, 0, 0, 3, 4, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}, tensor.Shape{4, 4})
	asym, err := bcoo.FromDense(a, tensor.Shape{2, 2})
	require.NoError(t, err)
	_, _, err = BlockEigh(asym)
	assert.ErrorIs(t, err, bcoo.ErrPrecondition)

	b := mustDense(t, []float64{1, 0, 0, 0, 0, 1, 0, 0, 5, 0, 1, 0, 0, 0, 0, 1}, tensor.Shape{4, 4})
	lower, err := bcoo.FromDense(b, tensor.Shape{2, 2})
	require.NoError(t, err)
	_, _, err = BlockEigh(lower)
	assert.ErrorIs(t, err, bcoo.ErrPrecondition)

	_, _, err = BlockEigh(asym, options.WithSymmetryTol(-1))
	assert.NoError(t, err)
}

func mustDense(t *testing.T, data []float64, shape tensor.Shape) *tensor.Dense[float64] {
	t.Helper()
	d, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return d
}

func TestBlockSVD(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	x, err := bcoo.Random[float64](tensor.Shape{16, 8}, tensor.Shape{2, 2}, 0.3, rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)

	u, s, vt, err := BlockSVD(x, options.WithLogger(logger), options.WithWorkers(3))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{16, 16}, u.Shape())
	assert.Equal(t, tensor.Shape{16, 8}, s.Shape())
	assert.Equal(t, tensor.Shape{8, 8}, vt.Shape())
	assert.Contains(t, buf.String(), "op=svd")

	rec := mustEinsum(t, "ij,jk,kl->il", u, s, vt)
	assert.True(t, tensor.AllClose(rec, x.ToDense(), tol, tol))

	assertIdentity(t, mustEinsum(t, "ji,jk->ik", u, u))
	assertIdentity(t, mustEinsum(t, "ij,kj->ik", vt, vt))

	var got []float64
	for _, v := range s.ToDense().Data() {
		if math.Abs(v) > tol {
			got = append(got, v)
		}
	}
	var ref mat.SVD
	require.True(t, ref.Factorize(tensor.ToMat(x.ToDense()), mat.SVDNone))
	var want []float64
	for _, v := range ref.Values(nil) {
		if v > tol {
			want = append(want, v)
		}
	}
	slices.Sort(got)
	slices.Sort(want)
	assert.InDeltaSlice(t, want, got, tol)
}

func TestBlockSVDIsolated(t *testing.T) {
	// Only block (0, 1) is stored: row 1 and columns 0, 2 are isolated.
	b := mustDense(t, []float64{3, 0, 4, 0}, tensor.Shape{2, 2})
	x, err := bcoo.New([][]int{{0, 1}}, []*tensor.Dense[float64]{b}, tensor.Shape{4, 6}, tensor.Shape{2, 2})
	require.NoError(t, err)

	u, s, vt, err := BlockSVD(x)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 0}, {1, 1}}, u.Coords())
	assert.Equal(t, [][]int{{0, 1}}, s.Coords())
	assert.Equal(t, [][]int{{0, 0}, {1, 1}, {2, 2}}, vt.Coords())
	assert.InDelta(t, 5.0, s.ToDense().At(0, 2), tol)

	rec := mustEinsum(t, "ij,jk,kl->il", u, s, vt)
	assert.True(t, tensor.AllClose(rec, x.ToDense(), tol, tol))
}

func TestBlockSVDRank(t *testing.T) {
	x, err := bcoo.Zeros[float64](tensor.Shape{2, 2, 2}, tensor.Shape{1, 1, 1})
	require.NoError(t, err)
	_, _, _, err = BlockSVD(x)
	assert.ErrorIs(t, err, bcoo.ErrPrecondition)
}

func BenchmarkBlockEigh(b *testing.B) {
	x, _ := bcoo.RandomSymmetric[float64](256, 16, 0.02, rand.New(rand.NewPCG(3, 3)))
	b.Run("block", func(b *testing.B) {
		for b.Loop() {
			_, _, _ = BlockEigh(x)
		}
	})
	b.Run("dense", func(b *testing.B) {
		sym := tensor.ToSym(x.ToDense())
		for b.Loop() {
			var es mat.EigenSym
			es.Factorize(sym, true)
		}
	})
}
