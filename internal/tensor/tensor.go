package tensor

import (
	"fmt"
	"math"
	"strings"
)

// Dense is a row-major N-dimensional array.
//
// Dense is the storage of a single block inside a block-sparse tensor and the
// reference representation block-sparse results are checked against.
// Rank 0 is a scalar holding exactly one element; zero-length axes hold none.
//
// Example:
//
//	d := tensor.Zeros[float64](tensor.Shape{2, 3})
//	d.Set(1.5, 0, 2)
//	v := d.At(0, 2) // 1.5
type Dense[T Numeric] struct {
	shape   Shape
	strides []int
	data    []T
}

// Zeros creates a dense array filled with zeros.
// Panics if the shape has a negative dimension.
func Zeros[T Numeric](shape Shape) *Dense[T] {
	if err := shape.Validate(); err != nil {
		panic(err)
	}
	return &Dense[T]{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		data:    make([]T, shape.NumElements()),
	}
}

// FromSlice creates a dense array from a Go slice.
// The slice is copied into the array's memory.
func FromSlice[T Numeric](data []T, shape Shape) (*Dense[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d",
			ErrShapeMismatch, shape, shape.NumElements(), len(data))
	}
	d := Zeros[T](shape)
	copy(d.data, data)
	return d, nil
}

// Identity returns the n×n identity matrix.
func Identity[T Numeric](n int) *Dense[T] {
	d := Zeros[T](Shape{n, n})
	for i := 0; i < n; i++ {
		d.data[i*n+i] = 1
	}
	return d
}

// Shape returns a copy of the array's shape.
func (d *Dense[T]) Shape() Shape {
	return d.shape.Clone()
}

// Strides returns the row-major strides of the array.
func (d *Dense[T]) Strides() []int {
	return d.strides
}

// Ndim returns the number of axes.
func (d *Dense[T]) Ndim() int {
	return len(d.shape)
}

// NumElements returns the total number of elements.
func (d *Dense[T]) NumElements() int {
	return len(d.data)
}

// DType returns the runtime data type of the elements.
func (d *Dense[T]) DType() DataType {
	return DataTypeOf[T]()
}

// Data returns the flat row-major element slice.
//
// WARNING: Modifications to the returned slice will modify the array.
func (d *Dense[T]) Data() []T {
	return d.data
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (d *Dense[T]) At(indices ...int) T {
	return d.data[d.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (d *Dense[T]) Set(value T, indices ...int) {
	d.data[d.offset(indices)] = value
}

func (d *Dense[T]) offset(indices []int) int {
	if len(indices) != len(d.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(d.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= d.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, d.shape[i]))
		}
		offset += idx * d.strides[i]
	}
	return offset
}

// Clone creates a deep copy of the array.
func (d *Dense[T]) Clone() *Dense[T] {
	data := make([]T, len(d.data))
	copy(data, d.data)
	return &Dense[T]{
		shape:   d.shape.Clone(),
		strides: d.shape.ComputeStrides(),
		data:    data,
	}
}

// IsZero reports whether every element is exactly zero.
func (d *Dense[T]) IsZero() bool {
	for _, v := range d.data {
		if v != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether both arrays have the same shape and elements.
func (d *Dense[T]) Equal(other *Dense[T]) bool {
	if !d.shape.Equal(other.shape) {
		return false
	}
	for i, v := range d.data {
		if other.data[i] != v {
			return false
		}
	}
	return true
}

// AllClose reports whether both arrays have the same shape and
// |a - b| <= atol + rtol*|b| holds elementwise.
func AllClose[T Numeric](a, b *Dense[T], rtol, atol float64) bool {
	if !a.shape.Equal(b.shape) {
		return false
	}
	for i := range a.data {
		x, y := float64(a.data[i]), float64(b.data[i])
		if math.Abs(x-y) > atol+rtol*math.Abs(y) {
			return false
		}
	}
	return true
}

// MaxAbs returns the largest absolute element value, 0 for empty arrays.
func (d *Dense[T]) MaxAbs() float64 {
	var m float64
	for _, v := range d.data {
		if a := math.Abs(float64(v)); a > m {
			m = a
		}
	}
	return m
}

// String returns a human-readable representation of the array.
func (d *Dense[T]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dense[%s]%v", d.DType(), []int(d.shape))
	if len(d.data) <= 64 {
		fmt.Fprintf(&sb, " %v", d.data)
	}
	return sb.String()
}
