package tensor

import "fmt"

// Transpose returns a copy of the array with its axes permuted.
//
// out.Shape()[i] == d.Shape()[axes[i]]. With no axes the order is reversed.
// Panics if axes is not a permutation of [0, ndim); callers validate user input.
//
// Example:
//
//	x := tensor.Zeros[float64](tensor.Shape{2, 3, 4})
//	y := x.Transpose(2, 0, 1) // Shape: [4, 2, 3]
func (d *Dense[T]) Transpose(axes ...int) *Dense[T] {
	ndim := len(d.shape)
	if len(axes) == 0 {
		axes = ReversedAxes(ndim)
	}
	if !IsPermutation(axes, ndim) {
		panic(fmt.Sprintf("transpose: %v is not a permutation of %d axes", axes, ndim))
	}

	out := Zeros[T](d.shape.Permute(axes))
	if len(out.data) == 0 {
		return out
	}

	// Source stride for each output axis.
	srcStrides := make([]int, ndim)
	for i, a := range axes {
		srcStrides[i] = d.strides[a]
	}

	idx := make([]int, ndim)
	for dst := range out.data {
		out.data[dst] = d.data[Ravel(idx, srcStrides)]
		nextIndex(idx, out.shape)
	}
	return out
}

// IsPermutation reports whether axes is a bijection onto [0, ndim).
func IsPermutation(axes []int, ndim int) bool {
	if len(axes) != ndim {
		return false
	}
	seen := make([]bool, ndim)
	for _, a := range axes {
		if a < 0 || a >= ndim || seen[a] {
			return false
		}
		seen[a] = true
	}
	return true
}

// Reshape returns a copy of the array with a new shape holding the same
// elements in row-major order.
// Panics if the element counts differ.
func (d *Dense[T]) Reshape(shape Shape) *Dense[T] {
	if shape.NumElements() != len(d.data) {
		panic(fmt.Sprintf("reshape: cannot reshape %v into %v", d.shape, shape))
	}
	out := Zeros[T](shape)
	copy(out.data, d.data)
	return out
}

// SubBox copies the hyper-rectangle starting at offset with the given extent.
// Panics if the box does not fit inside the array.
func (d *Dense[T]) SubBox(offset []int, extent Shape) *Dense[T] {
	d.checkBox("subbox", offset, extent)
	out := Zeros[T](extent)
	if len(out.data) == 0 {
		return out
	}
	idx := make([]int, len(extent))
	src := make([]int, len(extent))
	for dst := range out.data {
		for i := range idx {
			src[i] = offset[i] + idx[i]
		}
		out.data[dst] = d.data[Ravel(src, d.strides)]
		nextIndex(idx, extent)
	}
	return out
}

// SetBox writes src into the array at offset, overwriting existing values.
// Panics if src does not fit.
func (d *Dense[T]) SetBox(offset []int, src *Dense[T]) {
	d.box("setbox", offset, src, false)
}

// AddBox adds src into the array at offset.
// Panics if src does not fit.
func (d *Dense[T]) AddBox(offset []int, src *Dense[T]) {
	d.box("addbox", offset, src, true)
}

func (d *Dense[T]) box(op string, offset []int, src *Dense[T], accumulate bool) {
	d.checkBox(op, offset, src.shape)
	if len(src.data) == 0 {
		return
	}
	idx := make([]int, len(src.shape))
	dst := make([]int, len(src.shape))
	for _, v := range src.data {
		for i := range idx {
			dst[i] = offset[i] + idx[i]
		}
		o := Ravel(dst, d.strides)
		if accumulate {
			d.data[o] += v
		} else {
			d.data[o] = v
		}
		nextIndex(idx, src.shape)
	}
}

func (d *Dense[T]) checkBox(op string, offset []int, extent Shape) {
	if len(offset) != len(d.shape) || len(extent) != len(d.shape) {
		panic(fmt.Sprintf("%s: rank mismatch: array %v, offset %v, extent %v", op, d.shape, offset, extent))
	}
	for i := range d.shape {
		if offset[i] < 0 || extent[i] < 0 || offset[i]+extent[i] > d.shape[i] {
			panic(fmt.Sprintf("%s: box %v+%v exceeds shape %v", op, offset, extent, d.shape))
		}
	}
}
