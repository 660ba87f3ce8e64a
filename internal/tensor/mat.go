package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ToMat copies a 2D float64 array into a gonum matrix.
// Panics if d is not 2D or has a zero-length axis (gonum forbids empty matrices).
func ToMat(d *Dense[float64]) *mat.Dense {
	if len(d.shape) != 2 || d.shape.HasZero() {
		panic(fmt.Sprintf("tomat: need a non-empty 2D array, got shape %v", d.shape))
	}
	data := make([]float64, len(d.data))
	copy(data, d.data)
	return mat.NewDense(d.shape[0], d.shape[1], data)
}

// ToSym copies a square 2D float64 array into a gonum symmetric matrix,
// reading the upper triangle.
func ToSym(d *Dense[float64]) *mat.SymDense {
	if len(d.shape) != 2 || d.shape[0] != d.shape[1] || d.shape[0] == 0 {
		panic(fmt.Sprintf("tosym: need a non-empty square array, got shape %v", d.shape))
	}
	data := make([]float64, len(d.data))
	copy(data, d.data)
	return mat.NewSymDense(d.shape[0], data)
}

// FromMat copies any gonum matrix into a 2D float64 array.
func FromMat(m mat.Matrix) *Dense[float64] {
	r, c := m.Dims()
	d := Zeros[float64](Shape{r, c})
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d.data[i*c+j] = m.At(i, j)
		}
	}
	return d
}
