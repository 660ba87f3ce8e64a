// Package linalg implements cluster based block-diagonal factorizations of
// rank-2 block-sparse tensors: BlockEigh and BlockSVD.
//
// The block pattern is split into connected clusters (see package cluster).
// No stored block connects two clusters, so the dense factorization of the
// whole matrix reduces to one independent dense factorization per cluster and
// the cost is the sum of cubes of cluster sizes.
package linalg

import (
	"fmt"

	"github.com/born-ml/bsparse/internal/bcoo"
	"github.com/born-ml/bsparse/internal/tensor"
)

func checkMatrix(op string, x *bcoo.Tensor[float64]) error {
	if x.Ndim() != 2 {
		return fmt.Errorf("%s: need a rank-2 tensor, got shape %v: %w", op, x.Shape(), bcoo.ErrPrecondition)
	}
	return nil
}

// gather copies the sub-matrix of x induced by the given block rows and block
// columns. Missing blocks are zero.
func gather(x *bcoo.Tensor[float64], rows, cols []int) *tensor.Dense[float64] {
	bs := x.BlockShape()
	br, bc := bs[0], bs[1]
	sub := tensor.Zeros[float64](tensor.Shape{len(rows) * br, len(cols) * bc})
	coord := make([]int, 2)
	for p, r := range rows {
		for q, c := range cols {
			coord[0], coord[1] = r, c
			if b, ok := x.Lookup(x.KeyOf(coord)); ok {
				sub.SetBox([]int{p * br, q * bc}, b)
			}
		}
	}
	return sub
}

// blockGrid collects the blocks of one rank-2 result tensor.
type blockGrid struct {
	cols   int // block-grid columns
	br, bc int
	blocks map[int]*tensor.Dense[float64]
}

func newBlockGrid(cols, br, bc int) *blockGrid {
	return &blockGrid{cols: cols, br: br, bc: bc, blocks: make(map[int]*tensor.Dense[float64])}
}

// scatter cuts m into blocks and stores block (p, q) at grid position
// (rows[p], cols[q]). All-zero blocks are dropped when sparse is set.
func (g *blockGrid) scatter(m *tensor.Dense[float64], rows, cols []int, sparse bool) {
	extent := tensor.Shape{g.br, g.bc}
	for p, r := range rows {
		for q, c := range cols {
			b := m.SubBox([]int{p * g.br, q * g.bc}, extent)
			if sparse && b.IsZero() {
				continue
			}
			g.blocks[r*g.cols+c] = b
		}
	}
}

// identity stores identity blocks on the diagonal positions idx.
func (g *blockGrid) identity(idx []int) {
	for _, i := range idx {
		g.blocks[i*g.cols+i] = tensor.Identity[float64](g.br)
	}
}

func (g *blockGrid) assemble(shape tensor.Shape) (*bcoo.Tensor[float64], error) {
	return bcoo.Assemble(shape, tensor.Shape{g.br, g.bc}, g.blocks)
}

// diag returns the square matrix with v on its diagonal.
func diag(v []float64) *tensor.Dense[float64] {
	d := tensor.Zeros[float64](tensor.Shape{len(v), len(v)})
	for i, x := range v {
		d.Set(x, i, i)
	}
	return d
}

// rectDiag returns the rows×cols matrix with v on its main diagonal.
func rectDiag(v []float64, rows, cols int) *tensor.Dense[float64] {
	d := tensor.Zeros[float64](tensor.Shape{rows, cols})
	for i, x := range v {
		d.Set(x, i, i)
	}
	return d
}
