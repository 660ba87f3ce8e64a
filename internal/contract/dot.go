// Package contract implements sparse block contraction: Dot and Einsum.
//
// Both operations join the stored blocks of their operands on the contracted
// block indices and only multiply block tuples that are all stored. Output
// blocks without a contributing tuple are not stored.
package contract

import (
	"fmt"
	"slices"
	"time"

	"github.com/born-ml/bsparse/internal/bcoo"
	"github.com/born-ml/bsparse/internal/options"
	"github.com/born-ml/bsparse/internal/parallel"
	"github.com/born-ml/bsparse/internal/tensor"
)

// Dot contracts the last axis of x with the first axis of y, the
// generalization of a matrix product. Both operands need rank >= 1 and the
// contracted axes must agree in extent and block extent.
//
// The result has shape x.Shape()[:n-1] ++ y.Shape()[1:].
//
// Example:
//
//	// [8 6] blocks [2 2] . [6 4] blocks [2 4] -> [8 4] blocks [2 4]
//	z, err := contract.Dot(x, y)
func Dot[T tensor.Numeric](x, y *bcoo.Tensor[T], opts ...options.Option) (*bcoo.Tensor[T], error) {
	o := options.Apply(opts...)
	start := time.Now()

	if x.Ndim() < 1 || y.Ndim() < 1 {
		return nil, fmt.Errorf("dot: operands of rank %d and %d: %w", x.Ndim(), y.Ndim(), bcoo.ErrPrecondition)
	}
	xs, ys := x.Shape(), y.Shape()
	xbs, ybs := x.BlockShape(), y.BlockShape()
	last := len(xs) - 1
	if xs[last] != ys[0] || xbs[last] != ybs[0] {
		return nil, fmt.Errorf("dot: last axis of x has extent %d (block %d), first axis of y has %d (block %d): %w",
			xs[last], xbs[last], ys[0], ybs[0], bcoo.ErrPrecondition)
	}

	shape := slices.Concat(xs[:last], ys[1:])
	blockShape := slices.Concat(xbs[:last], ybs[1:])
	outer := make(tensor.Shape, len(shape))
	for i := range outer {
		outer[i] = shape[i] / blockShape[i]
	}
	outStrides := outer.ComputeStrides()

	m := xbs[:last].NumElements()
	k := xbs[last]
	n := ybs[1:].NumElements()

	// Hash join on the contracted block index.
	byRow := make(map[int][]int)
	for j := range y.BlockNNZ() {
		c := y.Coord(j)
		byRow[c[0]] = append(byRow[c[0]], j)
	}

	type pair struct{ i, j int }
	groups := make(map[int][]pair)
	pairs := 0
	for i := range x.BlockNNZ() {
		cx := x.Coord(i)
		for _, j := range byRow[cx[last]] {
			cy := y.Coord(j)
			key := tensor.Ravel(slices.Concat(cx[:last], cy[1:]), outStrides)
			groups[key] = append(groups[key], pair{i, j})
			pairs++
		}
	}

	keys := make([]int, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	results := make([]*tensor.Dense[T], len(keys))
	parallel.For(len(keys), func(idx int) {
		c := tensor.Zeros[T](tensor.Shape{m, n})
		for _, p := range groups[keys[idx]] {
			a := x.RawBlock(p.i).Reshape(tensor.Shape{m, k})
			b := y.RawBlock(p.j).Reshape(tensor.Shape{k, n})
			tensor.MatMulAdd(c, a, b)
		}
		results[idx] = c.Reshape(blockShape)
	}, o.Parallel)

	blocks := make(map[int]*tensor.Dense[T], len(keys))
	for idx, key := range keys {
		blocks[key] = results[idx]
	}
	o.Logger.WithOp("dot").LogContraction(pairs, len(blocks), time.Since(start))
	return bcoo.Assemble(shape, blockShape, blocks)
}
