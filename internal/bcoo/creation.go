package bcoo

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/born-ml/bsparse/internal/tensor"
)

// Entry pairs a block index with the dense block stored there.
type Entry[T tensor.Numeric] struct {
	Coord []int
	Block *tensor.Dense[T]
}

// Zeros creates an empty tensor with no stored blocks.
func Zeros[T tensor.Numeric](shape, blockShape tensor.Shape) (*Tensor[T], error) {
	if err := validateShapes("zeros", shape, blockShape); err != nil {
		return nil, err
	}
	return newSorted[T](shape.Clone(), blockShape.Clone(), nil, nil), nil
}

// FromDense partitions a dense array into blocks of blockShape and keeps the
// blocks holding at least one nonzero element.
//
// Example:
//
//	a, _ := tensor.FromSlice([]float64{1, 2, 0, 0, 0, 3, 0, 0, 4, 5, 6, 0, 8, 0, 9, 0}, tensor.Shape{4, 4})
//	x, err := bcoo.FromDense(a, tensor.Shape{2, 2}) // 3 stored blocks
func FromDense[T tensor.Numeric](a *tensor.Dense[T], blockShape tensor.Shape) (*Tensor[T], error) {
	shape := a.Shape()
	if err := validateShapes("from dense", shape, blockShape); err != nil {
		return nil, err
	}
	outer := outerOf(shape, blockShape)

	var keys []int
	var blocks []*tensor.Dense[T]
	key := 0
	offset := make([]int, len(shape))
	tensor.ForEachIndex(outer, func(coord []int) {
		for i, c := range coord {
			offset[i] = c * blockShape[i]
		}
		b := a.SubBox(offset, blockShape)
		if !b.IsZero() {
			keys = append(keys, key)
			blocks = append(blocks, b)
		}
		key++
	})
	return newSorted(shape, blockShape.Clone(), keys, blocks), nil
}

// New creates a tensor from parallel slices of block indices and blocks.
// Blocks are copied; the order of coords is irrelevant.
//
// Errors:
//   - ErrShapeMismatch when shape is not divisible by blockShape.
//   - ErrInvalidData when the slices differ in length, a block does not have
//     blockShape, a coord has the wrong rank, or a coord repeats.
//   - ErrIndexRange when a coord lies outside the block grid.
func New[T tensor.Numeric](coords [][]int, blocks []*tensor.Dense[T], shape, blockShape tensor.Shape) (*Tensor[T], error) {
	if err := validateShapes("new", shape, blockShape); err != nil {
		return nil, err
	}
	if len(coords) != len(blocks) {
		return nil, fmt.Errorf("new: %d coords but %d blocks: %w", len(coords), len(blocks), ErrInvalidData)
	}
	outer := outerOf(shape, blockShape)
	strides := outer.ComputeStrides()

	byKey := make(map[int]*tensor.Dense[T], len(coords))
	for i, c := range coords {
		if len(c) != len(outer) {
			return nil, fmt.Errorf("new: coord %v has rank %d, want %d: %w", c, len(c), len(outer), ErrInvalidData)
		}
		for axis, v := range c {
			if v < 0 || v >= outer[axis] {
				return nil, fmt.Errorf("new: coord %v outside block grid %v: %w", c, []int(outer), ErrIndexRange)
			}
		}
		if blocks[i] == nil || !blocks[i].Shape().Equal(blockShape) {
			return nil, fmt.Errorf("new: block %d does not have shape %v: %w", i, []int(blockShape), ErrInvalidData)
		}
		key := tensor.Ravel(c, strides)
		if _, dup := byKey[key]; dup {
			return nil, fmt.Errorf("new: duplicate coord %v: %w", c, ErrInvalidData)
		}
		byKey[key] = blocks[i].Clone()
	}
	return Assemble(shape, blockShape, byKey)
}

// FromBlocks creates a tensor from a coordinate/block association list.
// The shape is the smallest grid holding every entry: (max coord + 1) * blockShape.
//
// Example:
//
//	x, err := bcoo.FromBlocks([]bcoo.Entry[float64]{
//	    {Coord: []int{0, 0}, Block: b00},
//	    {Coord: []int{1, 2}, Block: b12},
//	}, tensor.Shape{2, 2}) // shape [4 6]
func FromBlocks[T tensor.Numeric](entries []Entry[T], blockShape tensor.Shape) (*Tensor[T], error) {
	shape := make(tensor.Shape, len(blockShape))
	for _, e := range entries {
		if len(e.Coord) != len(blockShape) {
			return nil, fmt.Errorf("from blocks: coord %v has rank %d, want %d: %w",
				e.Coord, len(e.Coord), len(blockShape), ErrInvalidData)
		}
		for axis, v := range e.Coord {
			if v < 0 {
				return nil, fmt.Errorf("from blocks: negative coord %v: %w", e.Coord, ErrIndexRange)
			}
			shape[axis] = max(shape[axis], v+1)
		}
	}
	for axis := range shape {
		shape[axis] *= blockShape[axis]
	}

	coords := make([][]int, len(entries))
	blocks := make([]*tensor.Dense[T], len(entries))
	for i, e := range entries {
		coords[i] = e.Coord
		blocks[i] = e.Block
	}
	return New(coords, blocks, shape, blockShape)
}

// Random creates a tensor with int(density * number of grid cells) stored
// blocks at distinct random positions. Float blocks are filled uniformly from
// [0, 1); integer blocks from [1, 9].
func Random[T tensor.Numeric](shape, blockShape tensor.Shape, density float64, rng *rand.Rand) (*Tensor[T], error) {
	if err := validateShapes("random", shape, blockShape); err != nil {
		return nil, err
	}
	if !(density >= 0 && density <= 1) {
		return nil, fmt.Errorf("random: density %v outside [0, 1]: %w", density, ErrInvalidData)
	}
	outer := outerOf(shape, blockShape)
	total := outer.NumElements()
	n := int(density * float64(total))

	keys := rng.Perm(total)[:n]
	slices.Sort(keys)

	isFloat := tensor.DataTypeOf[T]() == tensor.Float32 || tensor.DataTypeOf[T]() == tensor.Float64
	blocks := make([]*tensor.Dense[T], n)
	for i := range blocks {
		b := tensor.Zeros[T](blockShape)
		data := b.Data()
		for j := range data {
			if isFloat {
				data[j] = T(rng.Float64())
			} else {
				data[j] = T(rng.IntN(9) + 1)
			}
		}
		blocks[i] = b
	}
	return newSorted(shape.Clone(), blockShape.Clone(), keys, blocks), nil
}

// RandomSymmetric returns r + rᵀ for a random square rank-2 tensor r.
func RandomSymmetric[T tensor.Numeric](n, blockSize int, density float64, rng *rand.Rand) (*Tensor[T], error) {
	r, err := Random[T](tensor.Shape{n, n}, tensor.Shape{blockSize, blockSize}, density, rng)
	if err != nil {
		return nil, err
	}
	rt, err := r.Transpose()
	if err != nil {
		return nil, err
	}
	return r.Add(rt)
}
