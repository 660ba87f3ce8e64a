package linalg

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/bsparse/internal/bcoo"
	"github.com/born-ml/bsparse/internal/cluster"
	"github.com/born-ml/bsparse/internal/options"
	"github.com/born-ml/bsparse/internal/parallel"
	"github.com/born-ml/bsparse/internal/tensor"
)

type svdCluster struct {
	u, s, vt *tensor.Dense[float64]
}

// BlockSVD computes the full singular value decomposition x = U Σ Vᵀ of a
// rank-2 block-sparse tensor of shape (m, n) with blocks (br, bc).
//
// Rows and columns are grouped into connected components of the block
// pattern; each component with rows R and columns C is factorized densely.
// U (m×m, blocks br×br) stores the component's left vectors at (R, R),
// Σ (m×n, blocks br×bc) its singular values, descending, on the diagonal of
// the (R, C) sub-grid, and Vᵀ (n×n, blocks bc×bc) its right vectors at
// (C, C). Rows and columns outside every stored block get identity blocks in
// U and Vᵀ and contribute zero singular values.
//
// U Σ Vᵀ = x holds to the accuracy of the dense solver; U and Vᵀ are
// orthogonal.
func BlockSVD(x *bcoo.Tensor[float64], opts ...options.Option) (u, s, vt *bcoo.Tensor[float64], err error) {
	o := options.Apply(opts...)
	log := o.Logger.WithOp("svd").WithShape(x.Shape(), x.BlockShape())
	start := time.Now()

	if err := checkMatrix("svd", x); err != nil {
		return nil, nil, nil, err
	}
	comps, err := cluster.OfNoSym(x)
	if err != nil {
		return nil, nil, nil, err
	}

	results := make([]svdCluster, len(comps))
	err = parallel.ForErr(len(comps), func(i int) error {
		c := comps[i]
		if len(c.Rows) == 0 || len(c.Cols) == 0 {
			return nil
		}
		sub := gather(x, c.Rows, c.Cols)
		var svd mat.SVD
		if !svd.Factorize(tensor.ToMat(sub), mat.SVDFull) {
			return fmt.Errorf("svd: component rows %v cols %v: %w", c.Rows, c.Cols, bcoo.ErrFactorization)
		}
		var uu, vv mat.Dense
		svd.UTo(&uu)
		svd.VTo(&vv)
		rows, cols := sub.Shape()[0], sub.Shape()[1]
		results[i] = svdCluster{
			u:  tensor.FromMat(&uu),
			s:  rectDiag(svd.Values(nil), rows, cols),
			vt: tensor.FromMat(vv.T()),
		}
		return nil
	}, o.Parallel)
	log.LogClusters(len(comps), largestComponent(comps), time.Since(start), err)
	if err != nil {
		return nil, nil, nil, err
	}

	shape, bs := x.Shape(), x.BlockShape()
	outer := x.OuterShape()
	uGrid := newBlockGrid(outer[0], bs[0], bs[0])
	sGrid := newBlockGrid(outer[1], bs[0], bs[1])
	vGrid := newBlockGrid(outer[1], bs[1], bs[1])
	for i, c := range comps {
		r := results[i]
		if r.u == nil {
			uGrid.identity(c.Rows)
			vGrid.identity(c.Cols)
			continue
		}
		uGrid.scatter(r.u, c.Rows, c.Rows, false)
		sGrid.scatter(r.s, c.Rows, c.Cols, true)
		vGrid.scatter(r.vt, c.Cols, c.Cols, false)
	}

	if u, err = uGrid.assemble(tensor.Shape{shape[0], shape[0]}); err != nil {
		return nil, nil, nil, err
	}
	if s, err = sGrid.assemble(shape); err != nil {
		return nil, nil, nil, err
	}
	if vt, err = vGrid.assemble(tensor.Shape{shape[1], shape[1]}); err != nil {
		return nil, nil, nil, err
	}
	return u, s, vt, nil
}

func largestComponent(comps []cluster.Bicluster) int {
	m := 0
	for _, c := range comps {
		m = max(m, c.Size())
	}
	return m
}
