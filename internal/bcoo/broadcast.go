package bcoo

import (
	"fmt"

	"github.com/born-ml/bsparse/internal/tensor"
)

// BroadcastTo repeats the tensor to a larger shape, right-aligning the axes.
// New leading axes repeat the whole tensor. An existing axis of extent s may
// become n when s == n, or when the axis holds a single block and n is a
// multiple of s; the block pattern is then tiled n/s times. blockShape is
// free as long as shape stays divisible by it.
//
// Example:
//
//	// [4 4] blocks [2 2] -> [3 4 4] blocks [3 2 2]
//	y, err := x.BroadcastTo(tensor.Shape{3, 4, 4}, tensor.Shape{3, 2, 2})
func (t *Tensor[T]) BroadcastTo(shape, blockShape tensor.Shape) (*Tensor[T], error) {
	if err := validateShapes("broadcast", shape, blockShape); err != nil {
		return nil, err
	}
	if len(shape) < len(t.shape) {
		return nil, fmt.Errorf("broadcast: cannot broadcast rank %d to rank %d: %w",
			len(t.shape), len(shape), ErrShapeMismatch)
	}
	lead := len(shape) - len(t.shape)

	// reps[j] is how many copies of each element land on output axis j.
	reps := make(tensor.Shape, len(shape))
	for j := range lead {
		reps[j] = shape[j]
	}
	for i, s := range t.shape {
		n := shape[i+lead]
		switch {
		case s == n:
			reps[i+lead] = 1
		case s > 0 && t.outerShape[i] == 1 && n%s == 0:
			reps[i+lead] = n / s
		default:
			return nil, fmt.Errorf("broadcast: axis %d of %v cannot become %d in %v: %w",
				i, []int(t.shape), n, []int(shape), ErrShapeMismatch)
		}
	}

	if shape.Equal(t.shape) && blockShape.Equal(t.blockShape) {
		return t, nil
	}

	outer := outerOf(shape, blockShape)
	outerStrides := outer.ComputeStrides()
	blocks := make(map[int]*tensor.Dense[T])

	coord := make([]int, len(t.outerShape))
	global := make([]int, len(t.shape))
	target := make([]int, len(shape))
	newCoord := make([]int, len(shape))
	local := make([]int, len(shape))

	for i, k := range t.keys {
		tensor.Unravel(k, t.outerStrides, coord)
		base := t.elementOffset(coord)
		src := t.blocks[i]
		tensor.ForEachIndex(t.blockShape, func(idx []int) {
			v := src.At(idx...)
			if v == 0 {
				return
			}
			for a := range idx {
				global[a] = base[a] + idx[a]
			}
			tensor.ForEachIndex(reps, func(r []int) {
				for j := range target {
					if j < lead {
						target[j] = r[j]
					} else {
						target[j] = global[j-lead] + r[j]*t.shape[j-lead]
					}
					newCoord[j] = target[j] / blockShape[j]
					local[j] = target[j] % blockShape[j]
				}
				key := tensor.Ravel(newCoord, outerStrides)
				dst, ok := blocks[key]
				if !ok {
					dst = tensor.Zeros[T](blockShape)
					blocks[key] = dst
				}
				dst.Set(v, local...)
			})
		})
	}
	return Assemble(shape, blockShape, blocks)
}
