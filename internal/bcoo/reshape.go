package bcoo

import (
	"fmt"

	"github.com/born-ml/bsparse/internal/tensor"
)

// inferShape resolves a single -1 entry in shape so that the element count
// equals size.
func inferShape(shape tensor.Shape, size int) (tensor.Shape, error) {
	out := shape.Clone()
	unknown := -1
	known := 1
	for i, d := range out {
		switch {
		case d == -1 && unknown >= 0:
			return nil, fmt.Errorf("reshape: more than one -1 in %v: %w", []int(shape), ErrReshapeSize)
		case d == -1:
			unknown = i
		case d < 0:
			return nil, &ShapeError{Op: "reshape", Shape: shape, Axis: i, Err: ErrShapeMismatch}
		default:
			known *= d
		}
	}
	if unknown >= 0 {
		if known == 0 || size%known != 0 {
			return nil, fmt.Errorf("reshape: cannot infer -1 in %v for %d elements: %w",
				[]int(shape), size, ErrReshapeSize)
		}
		out[unknown] = size / known
	}
	return out, nil
}

// Reshape changes the shape and block shape while preserving the row-major
// element order of the dense equivalent. One entry of shape may be -1 and is
// inferred. When shape and blockShape equal the current ones the receiver
// itself is returned.
//
// Errors:
//   - ErrReshapeSize when the element count changes.
//   - ErrShapeMismatch when shape is not divisible by blockShape.
//
// Example:
//
//	y, err := x.Reshape(tensor.Shape{-1, 8}, tensor.Shape{3, 4}) // [8 6] -> [6 8]
func (t *Tensor[T]) Reshape(shape, blockShape tensor.Shape) (*Tensor[T], error) {
	size := t.Size()
	shape, err := inferShape(shape, size)
	if err != nil {
		return nil, err
	}
	if shape.NumElements() != size {
		return nil, fmt.Errorf("reshape: cannot reshape %v into %v: %w", []int(t.shape), []int(shape), ErrReshapeSize)
	}
	if err := validateShapes("reshape", shape, blockShape); err != nil {
		return nil, err
	}
	if shape.Equal(t.shape) && blockShape.Equal(t.blockShape) {
		return t, nil
	}
	if size == 0 || len(t.keys) == 0 {
		return newSorted[T](shape, blockShape.Clone(), nil, nil), nil
	}

	if contiguousBlocks(t.shape, t.blockShape) && contiguousBlocks(shape, blockShape) &&
		t.blockShape.NumElements() == blockShape.NumElements() {
		return t.reshapeWhole(shape, blockShape), nil
	}
	return t.reshapeScatter(shape, blockShape)
}

// contiguousBlocks reports whether every block covers one contiguous run of
// the row-major element order: block extent 1 on leading axes, then one
// partial axis, then full extent on trailing axes.
func contiguousBlocks(shape, blockShape tensor.Shape) bool {
	k := 0
	for k < len(shape) && blockShape[k] == 1 {
		k++
	}
	for i := k + 1; i < len(shape); i++ {
		if blockShape[i] != shape[i] {
			return false
		}
	}
	return true
}

// reshapeWhole moves whole blocks. Both layouts are contiguous with equal
// block size, so block ordinal and flat grid offset coincide.
func (t *Tensor[T]) reshapeWhole(shape, blockShape tensor.Shape) *Tensor[T] {
	blocks := make([]*tensor.Dense[T], len(t.blocks))
	for i, b := range t.blocks {
		blocks[i] = b.Reshape(blockShape)
	}
	keys := make([]int, len(t.keys))
	copy(keys, t.keys)
	return newSorted(shape, blockShape.Clone(), keys, blocks)
}

// reshapeScatter routes every nonzero element of every stored block to its
// position in the new block grid. Only the touched blocks are allocated.
func (t *Tensor[T]) reshapeScatter(shape, blockShape tensor.Shape) (*Tensor[T], error) {
	oldStrides := t.shape.ComputeStrides()
	newStrides := shape.ComputeStrides()
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
			tensor.Unravel(tensor.Ravel(global, oldStrides), newStrides, target)
			for a := range target {
				newCoord[a] = target[a] / blockShape[a]
				local[a] = target[a] % blockShape[a]
			}
			key := tensor.Ravel(newCoord, outerStrides)
			dst, ok := blocks[key]
			if !ok {
				dst = tensor.Zeros[T](blockShape)
				blocks[key] = dst
			}
			dst.Set(v, local...)
		})
	}
	return Assemble(shape, blockShape, blocks)
}

// BlockReshape reinterprets the block grid as outerShape, keeping every block
// whole and in row-major block order. Block contents are reshaped to
// blockShape, which must hold the same number of elements.
//
// Example:
//
//	// [4 4] with blocks [2 2] -> grid [1 4], shape [2 8]
//	y, err := x.BlockReshape(tensor.Shape{1, 4}, tensor.Shape{2, 2})
func (t *Tensor[T]) BlockReshape(outerShape, blockShape tensor.Shape) (*Tensor[T], error) {
	if len(outerShape) != len(blockShape) {
		return nil, &ShapeError{Op: "block reshape", Shape: outerShape, BlockShape: blockShape, Axis: -1, Err: ErrShapeMismatch}
	}
	if err := outerShape.Validate(); err != nil {
		return nil, fmt.Errorf("block reshape: %w", ErrShapeMismatch)
	}
	if outerShape.NumElements() != t.outerShape.NumElements() {
		return nil, fmt.Errorf("block reshape: grid %v into %v: %w",
			[]int(t.outerShape), []int(outerShape), ErrReshapeSize)
	}
	if blockShape.NumElements() != t.blockShape.NumElements() {
		return nil, fmt.Errorf("block reshape: block %v into %v: %w",
			[]int(t.blockShape), []int(blockShape), ErrReshapeSize)
	}
	shape := make(tensor.Shape, len(outerShape))
	for i := range shape {
		shape[i] = outerShape[i] * blockShape[i]
	}
	if err := validateShapes("block reshape", shape, blockShape); err != nil {
		return nil, err
	}
	if shape.Equal(t.shape) && blockShape.Equal(t.blockShape) {
		return t, nil
	}

	blocks := make([]*tensor.Dense[T], len(t.blocks))
	for i, b := range t.blocks {
		blocks[i] = b.Reshape(blockShape)
	}
	keys := make([]int, len(t.keys))
	copy(keys, t.keys)
	return newSorted(shape, blockShape.Clone(), keys, blocks), nil
}
