package bcoo

import (
	"fmt"

	"github.com/born-ml/bsparse/internal/tensor"
)

// sameLayout checks that two tensors share shape and block shape.
func (t *Tensor[T]) sameLayout(op string, other *Tensor[T]) error {
	if !t.shape.Equal(other.shape) || !t.blockShape.Equal(other.blockShape) {
		return fmt.Errorf("%s: shape %v/%v vs %v/%v: %w", op,
			[]int(t.shape), []int(t.blockShape), []int(other.shape), []int(other.blockShape), ErrPrecondition)
	}
	return nil
}

// Add returns t + other. The result stores the union of both block patterns.
func (t *Tensor[T]) Add(other *Tensor[T]) (*Tensor[T], error) {
	return t.combine("add", other, func(a, b *tensor.Dense[T]) *tensor.Dense[T] { return a.Add(b) },
		func(b *tensor.Dense[T]) *tensor.Dense[T] { return b.Clone() })
}

// Sub returns t - other. The result stores the union of both block patterns.
func (t *Tensor[T]) Sub(other *Tensor[T]) (*Tensor[T], error) {
	return t.combine("sub", other, func(a, b *tensor.Dense[T]) *tensor.Dense[T] { return a.Sub(b) },
		func(b *tensor.Dense[T]) *tensor.Dense[T] { return b.Scale(-1) })
}

// combine merges the sorted key lists of two tensors. both handles keys
// stored in t and other, rightOnly keys stored only in other.
func (t *Tensor[T]) combine(op string, other *Tensor[T],
	both func(a, b *tensor.Dense[T]) *tensor.Dense[T],
	rightOnly func(b *tensor.Dense[T]) *tensor.Dense[T],
) (*Tensor[T], error) {
	if err := t.sameLayout(op, other); err != nil {
		return nil, err
	}
	keys := make([]int, 0, len(t.keys)+len(other.keys))
	blocks := make([]*tensor.Dense[T], 0, len(t.keys)+len(other.keys))

	i, j := 0, 0
	for i < len(t.keys) || j < len(other.keys) {
		switch {
		case j == len(other.keys) || (i < len(t.keys) && t.keys[i] < other.keys[j]):
			keys = append(keys, t.keys[i])
			blocks = append(blocks, t.blocks[i].Clone())
			i++
		case i == len(t.keys) || other.keys[j] < t.keys[i]:
			keys = append(keys, other.keys[j])
			blocks = append(blocks, rightOnly(other.blocks[j]))
			j++
		default:
			keys = append(keys, t.keys[i])
			blocks = append(blocks, both(t.blocks[i], other.blocks[j]))
			i++
			j++
		}
	}
	return newSorted(t.shape.Clone(), t.blockShape.Clone(), keys, blocks), nil
}

// Scale returns alpha * t with the same block pattern.
func (t *Tensor[T]) Scale(alpha T) *Tensor[T] {
	blocks := make([]*tensor.Dense[T], len(t.blocks))
	for i, b := range t.blocks {
		blocks[i] = b.Scale(alpha)
	}
	keys := make([]int, len(t.keys))
	copy(keys, t.keys)
	return newSorted(t.shape.Clone(), t.blockShape.Clone(), keys, blocks)
}

// Equal reports whether both tensors have the same shape and the same
// element values. Block shapes and stored patterns may differ.
func (t *Tensor[T]) Equal(other *Tensor[T]) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	return t.ToDense().Equal(other.ToDense())
}

// AllClose reports whether both tensors have the same shape and element
// values within |a-b| <= atol + rtol*|b|.
func AllClose[T tensor.Numeric](a, b *Tensor[T], rtol, atol float64) bool {
	if !a.shape.Equal(b.shape) {
		return false
	}
	return tensor.AllClose(a.ToDense(), b.ToDense(), rtol, atol)
}
