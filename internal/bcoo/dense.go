package bcoo

import "github.com/born-ml/bsparse/internal/tensor"

// ToDense materializes the tensor as a dense array. Structurally zero blocks
// become zeros; a rank-0 tensor yields a scalar array.
func (t *Tensor[T]) ToDense() *tensor.Dense[T] {
	out := tensor.Zeros[T](t.shape)
	coord := make([]int, len(t.outerShape))
	for i, k := range t.keys {
		tensor.Unravel(k, t.outerStrides, coord)
		out.SetBox(t.elementOffset(coord), t.blocks[i])
	}
	return out
}
