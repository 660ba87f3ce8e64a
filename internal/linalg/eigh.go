package linalg

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/bsparse/internal/bcoo"
	"github.com/born-ml/bsparse/internal/cluster"
	"github.com/born-ml/bsparse/internal/options"
	"github.com/born-ml/bsparse/internal/parallel"
	"github.com/born-ml/bsparse/internal/tensor"
)

// eigenCluster is the factorization of one cluster.
type eigenCluster struct {
	members []int
	values  []float64 // ascending
	vectors *tensor.Dense[float64]
	norm    float64
}

// BlockEigh computes the eigendecomposition x = V Λ Vᵀ of a symmetric
// rank-2 block-sparse tensor.
//
// x must be square with square blocks and equal its transpose within the
// symmetry tolerance (see options.WithSymmetryTol); otherwise ErrPrecondition.
//
// Each cluster c of k block indices contributes a (k·b)×(k·b) dense
// eigendecomposition. Its eigenvalues, in ascending order, are stored as
// diagonal b×b blocks of Λ; Λ never stores an all-zero block. V holds the
// eigenvectors: block (i, j) maps block row i of x to eigen-basis block
// column j. Without block sorting the eigen-basis columns of a cluster are the
// cluster's own block indices, so V and Λ share the pattern of x's clusters.
// With options.WithBlockSort(true) clusters are ordered by descending 2-norm
// of their eigenvalues (ties by smallest block index) and packed into
// consecutive eigen-basis block columns, so Λ's diagonal groups the dominant
// clusters first.
//
// Vᵀ x V = Λ and Vᵀ V = I hold to the accuracy of the dense solver.
func BlockEigh(x *bcoo.Tensor[float64], opts ...options.Option) (vals, vecs *bcoo.Tensor[float64], err error) {
	o := options.Apply(opts...)
	log := o.Logger.WithOp("eigh").WithShape(x.Shape(), x.BlockShape())
	start := time.Now()

	if err := checkMatrix("eigh", x); err != nil {
		return nil, nil, err
	}
	shape, bs := x.Shape(), x.BlockShape()
	if shape[0] != shape[1] || bs[0] != bs[1] {
		return nil, nil, fmt.Errorf("eigh: shape %v with block shape %v is not square: %w", shape, bs, bcoo.ErrPrecondition)
	}
	if o.SymmetryTol >= 0 {
		if err := checkSymmetric(x, o.SymmetryTol); err != nil {
			return nil, nil, err
		}
	}

	clusters, err := cluster.Of(x)
	if err != nil {
		return nil, nil, err
	}

	results := make([]eigenCluster, len(clusters))
	err = parallel.ForErr(len(clusters), func(i int) error {
		sub := gather(x, clusters[i], clusters[i])
		var es mat.EigenSym
		if !es.Factorize(tensor.ToSym(sub), true) {
			return fmt.Errorf("eigh: cluster %v: %w", clusters[i], bcoo.ErrFactorization)
		}
		var v mat.Dense
		es.VectorsTo(&v)
		values := es.Values(nil)
		results[i] = eigenCluster{
			members: clusters[i],
			values:  values,
			vectors: tensor.FromMat(&v),
			norm:    floats.Norm(values, 2),
		}
		return nil
	}, o.Parallel)
	log.LogClusters(len(clusters), largest(clusters), time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}

	if o.BlockSort {
		slices.SortStableFunc(results, func(a, b eigenCluster) int {
			if c := cmp.Compare(b.norm, a.norm); c != 0 {
				return c
			}
			return cmp.Compare(a.members[0], b.members[0])
		})
	}

	b := bs[0]
	n := x.OuterShape()[0]
	vGrid := newBlockGrid(n, b, b)
	lGrid := newBlockGrid(n, b, b)
	next := 0
	for _, r := range results {
		basis := r.members
		if o.BlockSort {
			basis = make([]int, len(r.members))
			for i := range basis {
				basis[i] = next + i
			}
			next += len(basis)
		}
		vGrid.scatter(r.vectors, r.members, basis, false)
		for q, j := range basis {
			d := diag(r.values[q*b : (q+1)*b])
			if !d.IsZero() {
				lGrid.blocks[j*n+j] = d
			}
		}
	}

	if vals, err = lGrid.assemble(shape); err != nil {
		return nil, nil, err
	}
	if vecs, err = vGrid.assemble(shape); err != nil {
		return nil, nil, err
	}
	return vals, vecs, nil
}

// checkSymmetric verifies x[i,j] == x[j,i]ᵀ for every stored block. A block
// whose mirror is not stored must itself be zero within tol.
func checkSymmetric(x *bcoo.Tensor[float64], tol float64) error {
	for i := range x.BlockNNZ() {
		c := x.Coord(i)
		b := x.RawBlock(i)
		mirror, ok := x.Lookup(x.KeyOf([]int{c[1], c[0]}))
		var diff float64
		if ok {
			diff = b.Sub(mirror.Transpose()).MaxAbs()
		} else {
			diff = b.MaxAbs()
		}
		if diff > tol {
			return fmt.Errorf("eigh: block %v differs from the transpose of block [%d %d] by %g: %w",
				c, c[1], c[0], diff, bcoo.ErrPrecondition)
		}
	}
	return nil
}

func largest(clusters [][]int) int {
	m := 0
	for _, c := range clusters {
		m = max(m, len(c))
	}
	return m
}
