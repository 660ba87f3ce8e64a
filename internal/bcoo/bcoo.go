// Package bcoo implements block-sparse tensors in blocked coordinate format.
//
// A Tensor[T] partitions an N-dimensional array into a regular grid of
// equally shaped dense blocks and stores only the blocks that may be nonzero.
// Blocks are kept in ascending lexicographic order of their block index.
// Tensors are immutable once constructed: every operation returns a new
// tensor, except for no-op reshapes which return the receiver itself.
package bcoo

import (
	"fmt"
	"slices"

	"github.com/born-ml/bsparse/internal/tensor"
)

// Tensor is a block-sparse tensor in blocked coordinate (BCOO) format.
//
// Example:
//
//	a := tensor.Zeros[float64](tensor.Shape{4, 4})
//	a.Set(1, 0, 0)
//	x, err := bcoo.FromDense(a, tensor.Shape{2, 2})
//	// x.BlockNNZ() == 1, x.OuterShape() == [2 2]
type Tensor[T tensor.Numeric] struct {
	shape        tensor.Shape
	blockShape   tensor.Shape
	outerShape   tensor.Shape
	outerStrides []int

	keys   []int              // flat block-grid offsets, ascending
	blocks []*tensor.Dense[T] // blocks[i] is stored at keys[i]
	index  map[int]int        // flat offset -> position in keys
}

// validateShapes checks rank equality, positive block extents and divisibility.
func validateShapes(op string, shape, blockShape tensor.Shape) error {
	if len(shape) != len(blockShape) {
		return &ShapeError{Op: op, Shape: shape, BlockShape: blockShape, Axis: -1, Err: ErrShapeMismatch}
	}
	for i := range shape {
		if shape[i] < 0 || blockShape[i] <= 0 || shape[i]%blockShape[i] != 0 {
			return &ShapeError{Op: op, Shape: shape, BlockShape: blockShape, Axis: i, Err: ErrShapeMismatch}
		}
	}
	return nil
}

// outerOf returns shape / blockShape per axis. Shapes must be validated.
func outerOf(shape, blockShape tensor.Shape) tensor.Shape {
	outer := make(tensor.Shape, len(shape))
	for i := range shape {
		outer[i] = shape[i] / blockShape[i]
	}
	return outer
}

// Assemble builds a tensor from blocks keyed by their flat row-major offset in
// the block grid. The tensor takes ownership of the blocks; callers must not
// modify them afterwards.
func Assemble[T tensor.Numeric](shape, blockShape tensor.Shape, blocks map[int]*tensor.Dense[T]) (*Tensor[T], error) {
	if err := validateShapes("assemble", shape, blockShape); err != nil {
		return nil, err
	}
	outer := outerOf(shape, blockShape)
	total := outer.NumElements()

	keys := make([]int, 0, len(blocks))
	for k, b := range blocks {
		if k < 0 || k >= total {
			return nil, fmt.Errorf("assemble: block offset %d outside grid %v: %w", k, []int(outer), ErrIndexRange)
		}
		if !b.Shape().Equal(blockShape) {
			return nil, fmt.Errorf("assemble: block shape %v, want %v: %w", []int(b.Shape()), []int(blockShape), ErrInvalidData)
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	ordered := make([]*tensor.Dense[T], len(keys))
	for i, k := range keys {
		ordered[i] = blocks[k]
	}
	return newSorted(shape.Clone(), blockShape.Clone(), keys, ordered), nil
}

// newSorted wires a tensor from validated shapes and ascending keys.
func newSorted[T tensor.Numeric](shape, blockShape tensor.Shape, keys []int, blocks []*tensor.Dense[T]) *Tensor[T] {
	outer := outerOf(shape, blockShape)
	index := make(map[int]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}
	return &Tensor[T]{
		shape:        shape,
		blockShape:   blockShape,
		outerShape:   outer,
		outerStrides: outer.ComputeStrides(),
		keys:         keys,
		blocks:       blocks,
		index:        index,
	}
}

// Shape returns the element-level extent per axis.
func (t *Tensor[T]) Shape() tensor.Shape { return t.shape.Clone() }

// BlockShape returns the element extent of one block per axis.
func (t *Tensor[T]) BlockShape() tensor.Shape { return t.blockShape.Clone() }

// OuterShape returns the block-grid extent per axis.
func (t *Tensor[T]) OuterShape() tensor.Shape { return t.outerShape.Clone() }

// Ndim returns the number of axes.
func (t *Tensor[T]) Ndim() int { return len(t.shape) }

// DType returns the element data type.
func (t *Tensor[T]) DType() tensor.DataType { return tensor.DataTypeOf[T]() }

// BlockNNZ returns the number of stored blocks.
func (t *Tensor[T]) BlockNNZ() int { return len(t.keys) }

// NNZ returns the number of structurally stored elements:
// BlockNNZ() times the block size.
func (t *Tensor[T]) NNZ() int { return len(t.keys) * t.blockShape.NumElements() }

// Size returns the total number of logical elements.
func (t *Tensor[T]) Size() int { return t.shape.NumElements() }

// Len returns the extent of the first axis. Panics on a rank-0 tensor.
func (t *Tensor[T]) Len() int {
	if len(t.shape) == 0 {
		panic("len() of unsized object")
	}
	return t.shape[0]
}

// Density returns the fraction of grid cells holding a stored block.
func (t *Tensor[T]) Density() float64 {
	total := t.outerShape.NumElements()
	if total == 0 {
		return 0
	}
	return float64(len(t.keys)) / float64(total)
}

// Coord returns the block index of the i-th stored block.
func (t *Tensor[T]) Coord(i int) []int {
	c := make([]int, len(t.outerShape))
	tensor.Unravel(t.keys[i], t.outerStrides, c)
	return c
}

// Coords returns the block indices of all stored blocks in ascending order.
func (t *Tensor[T]) Coords() [][]int {
	out := make([][]int, len(t.keys))
	for i := range t.keys {
		out[i] = t.Coord(i)
	}
	return out
}

// Key returns the flat block-grid offset of the i-th stored block.
func (t *Tensor[T]) Key(i int) int { return t.keys[i] }

// KeyOf returns the flat block-grid offset of a block index.
func (t *Tensor[T]) KeyOf(coord []int) int { return tensor.Ravel(coord, t.outerStrides) }

// RawBlock returns the i-th stored block without copying.
//
// WARNING: the block is shared with the tensor and must not be modified.
func (t *Tensor[T]) RawBlock(i int) *tensor.Dense[T] { return t.blocks[i] }

// Blocks returns copies of all stored blocks, aligned with Coords.
func (t *Tensor[T]) Blocks() []*tensor.Dense[T] {
	out := make([]*tensor.Dense[T], len(t.blocks))
	for i, b := range t.blocks {
		out[i] = b.Clone()
	}
	return out
}

// Block returns a copy of the block stored at coord, or nil and false when
// the block is structurally zero. Panics if coord has the wrong rank.
func (t *Tensor[T]) Block(coord ...int) (*tensor.Dense[T], bool) {
	if len(coord) != len(t.outerShape) {
		panic(fmt.Sprintf("block: expected %d indices, got %d", len(t.outerShape), len(coord)))
	}
	for i, c := range coord {
		if c < 0 || c >= t.outerShape[i] {
			return nil, false
		}
	}
	pos, ok := t.index[t.KeyOf(coord)]
	if !ok {
		return nil, false
	}
	return t.blocks[pos].Clone(), true
}

// Lookup returns the shared block at a flat grid offset.
//
// WARNING: the block is shared with the tensor and must not be modified.
func (t *Tensor[T]) Lookup(key int) (*tensor.Dense[T], bool) {
	pos, ok := t.index[key]
	if !ok {
		return nil, false
	}
	return t.blocks[pos], true
}

// Clone returns a deep copy of the tensor.
func (t *Tensor[T]) Clone() *Tensor[T] {
	return newSorted(t.shape.Clone(), t.blockShape.Clone(), slices.Clone(t.keys), t.Blocks())
}

// String returns a human-readable summary of the tensor.
func (t *Tensor[T]) String() string {
	return fmt.Sprintf("BCOO[%s] shape=%v block_shape=%v block_nnz=%d",
		t.DType(), []int(t.shape), []int(t.blockShape), len(t.keys))
}

// elementOffset returns the element offset of the block at coord.
func (t *Tensor[T]) elementOffset(coord []int) []int {
	off := make([]int, len(coord))
	for i, c := range coord {
		off[i] = c * t.blockShape[i]
	}
	return off
}
