package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions >= 0).
// Zero-length axes are legal and describe an empty tensor.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("%w: dimension at index %d is %d (must be >= 0)", ErrShapeMismatch, i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String formats the shape as "[d0 d1 ...]".
func (s Shape) String() string {
	return fmt.Sprint([]int(s))
}

// HasZero reports whether any axis has zero length.
func (s Shape) HasZero() bool {
	for _, dim := range s {
		if dim == 0 {
			return true
		}
	}
	return false
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Permute returns the shape reordered by axes: out[i] = s[axes[i]].
func (s Shape) Permute(axes []int) Shape {
	out := make(Shape, len(axes))
	for i, a := range axes {
		out[i] = s[a]
	}
	return out
}

// NormalizeAxis maps a possibly negative axis onto [0, ndim).
// The second result is false when the axis is out of range.
func NormalizeAxis(axis, ndim int) (int, bool) {
	if axis < 0 {
		axis += ndim
	}
	if axis < 0 || axis >= ndim {
		return 0, false
	}
	return axis, true
}

// ReversedAxes returns the permutation (ndim-1, ..., 1, 0).
func ReversedAxes(ndim int) []int {
	axes := make([]int, ndim)
	for i := range axes {
		axes[i] = ndim - 1 - i
	}
	return axes
}

// InversePermutation returns p⁻¹ such that p⁻¹[p[i]] = i.
func InversePermutation(p []int) []int {
	inv := make([]int, len(p))
	for i, a := range p {
		inv[a] = i
	}
	return inv
}

// Unravel converts a flat row-major offset into a multi-index written to idx.
func Unravel(offset int, strides []int, idx []int) {
	for i, st := range strides {
		if st == 0 {
			idx[i] = 0
			continue
		}
		idx[i] = offset / st
		offset %= st
	}
}

// Ravel converts a multi-index into a flat offset.
func Ravel(idx []int, strides []int) int {
	offset := 0
	for i, v := range idx {
		offset += v * strides[i]
	}
	return offset
}

// nextIndex advances idx through shape in row-major order.
// It returns false once every index has been visited.
func nextIndex(idx []int, shape Shape) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < shape[i] {
			return true
		}
		idx[i] = 0
	}
	return false
}

// ForEachIndex calls f with every multi-index of shape in row-major order.
// The slice passed to f is reused between calls.
func ForEachIndex(shape Shape, f func(idx []int)) {
	if shape.HasZero() {
		return
	}
	idx := make([]int, len(shape))
	for {
		f(idx)
		if !nextIndex(idx, shape) {
			return
		}
	}
}
