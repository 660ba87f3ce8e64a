package bcoo

import (
	"fmt"

	"github.com/born-ml/bsparse/internal/tensor"
)

// normalizeAxes resolves negative axes and checks that axes is a permutation.
func normalizeAxes(axes []int, ndim int) ([]int, error) {
	if len(axes) == 0 {
		return tensor.ReversedAxes(ndim), nil
	}
	if len(axes) != ndim {
		return nil, fmt.Errorf("transpose: %d axes for a rank-%d tensor: %w", len(axes), ndim, ErrInvalidPermutation)
	}
	out := make([]int, ndim)
	for i, a := range axes {
		n, ok := tensor.NormalizeAxis(a, ndim)
		if !ok {
			return nil, fmt.Errorf("transpose: axis %d out of range for rank %d: %w", a, ndim, ErrInvalidPermutation)
		}
		out[i] = n
	}
	if !tensor.IsPermutation(out, ndim) {
		return nil, fmt.Errorf("transpose: axes %v repeat an axis: %w", axes, ErrInvalidPermutation)
	}
	return out, nil
}

// Transpose permutes the axes of the tensor. Result axis i is input axis
// axes[i]; negative axes count from the end. With no axes the order is
// reversed.
//
// Example:
//
//	y, err := x.Transpose(1, 2, 0) // shape [a b c] -> [b c a]
func (t *Tensor[T]) Transpose(axes ...int) (*Tensor[T], error) {
	perm, err := normalizeAxes(axes, t.Ndim())
	if err != nil {
		return nil, err
	}

	shape := t.shape.Permute(perm)
	blockShape := t.blockShape.Permute(perm)
	outer := t.outerShape.Permute(perm)
	strides := outer.ComputeStrides()

	blocks := make(map[int]*tensor.Dense[T], len(t.keys))
	coord := make([]int, len(perm))
	moved := make([]int, len(perm))
	for i, k := range t.keys {
		tensor.Unravel(k, t.outerStrides, coord)
		for j, a := range perm {
			moved[j] = coord[a]
		}
		blocks[tensor.Ravel(moved, strides)] = t.blocks[i].Transpose(perm...)
	}
	return Assemble(shape, blockShape, blocks)
}
