package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a dense array from slice, failing the test on error.
func mustFromSlice[T Numeric](t *testing.T, data []T, shape Shape) *Dense[T] {
	t.Helper()
	d, err := FromSlice(data, shape)
	require.NoError(t, err)
	return d
}

func TestShape(t *testing.T) {
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
	assert.Equal(t, 0, Shape{2, 0, 4}.NumElements())
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.True(t, Shape{2, 0}.HasZero())
	assert.ErrorIs(t, Shape{2, -1}.Validate(), ErrShapeMismatch)
	assert.Equal(t, Shape{4, 2, 3}, Shape{2, 3, 4}.Permute([]int{2, 0, 1}))
}

func TestNormalizeAxis(t *testing.T) {
	a, ok := NormalizeAxis(-1, 3)
	assert.True(t, ok)
	assert.Equal(t, 2, a)

	_, ok = NormalizeAxis(3, 3)
	assert.False(t, ok)
	_, ok = NormalizeAxis(-4, 3)
	assert.False(t, ok)
}

func TestInversePermutation(t *testing.T) {
	p := []int{2, 0, 1}
	inv := InversePermutation(p)
	assert.Equal(t, []int{1, 2, 0}, inv)
	for i := range p {
		assert.Equal(t, i, inv[p[i]])
	}
}

func TestRavelUnravel(t *testing.T) {
	strides := Shape{2, 3, 4}.ComputeStrides()
	idx := make([]int, 3)
	for off := 0; off < 24; off++ {
		Unravel(off, strides, idx)
		assert.Equal(t, off, Ravel(idx, strides))
	}
}

func TestFromSlice(t *testing.T) {
	d := mustFromSlice(t, []float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	assert.Equal(t, Shape{2, 3}, d.Shape())
	assert.Equal(t, 6.0, d.At(1, 2))
	assert.Equal(t, Float64, d.DType())

	_, err := FromSlice([]float64{1, 2}, Shape{3})
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestScalarAndEmpty(t *testing.T) {
	s := Zeros[int32](Shape{})
	assert.Equal(t, 1, s.NumElements())
	s.Set(7)
	assert.Equal(t, int32(7), s.At())

	e := Zeros[float32](Shape{3, 0})
	assert.Equal(t, 0, e.NumElements())
	assert.True(t, e.IsZero())
}

func TestDataTypeOf(t *testing.T) {
	type myFloat float64
	type myInt int32
	assert.Equal(t, Float32, DataTypeOf[float32]())
	assert.Equal(t, Int64, DataTypeOf[int64]())
	assert.Equal(t, Float64, DataTypeOf[myFloat]())
	assert.Equal(t, Int32, DataTypeOf[myInt]())
}

func TestCloneIsDeep(t *testing.T) {
	d := mustFromSlice(t, []float64{1, 2, 3}, Shape{3})
	c := d.Clone()
	c.Set(9, 0)
	assert.Equal(t, 1.0, d.At(0))
	assert.False(t, d.Equal(c))
}

func TestAllClose(t *testing.T) {
	a := mustFromSlice(t, []float64{1, 2}, Shape{2})
	b := mustFromSlice(t, []float64{1 + 1e-12, 2}, Shape{2})
	assert.True(t, AllClose(a, b, 1e-9, 1e-9))
	c := mustFromSlice(t, []float64{1.1, 2}, Shape{2})
	assert.False(t, AllClose(a, c, 1e-9, 1e-9))
	assert.False(t, AllClose(a, mustFromSlice(t, []float64{1, 2}, Shape{1, 2}), 1, 1))
}

func TestMatMul(t *testing.T) {
	a := mustFromSlice(t, []float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	b := mustFromSlice(t, []float64{7, 8, 9, 10, 11, 12}, Shape{3, 2})
	want := []float64{58, 64, 139, 154}

	t.Run("float64 blas path", func(t *testing.T) {
		c := MatMul(a, b)
		assert.Equal(t, Shape{2, 2}, c.Shape())
		assert.Equal(t, want, c.Data())
	})

	t.Run("generic path", func(t *testing.T) {
		ai := mustFromSlice(t, []int64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
		bi := mustFromSlice(t, []int64{7, 8, 9, 10, 11, 12}, Shape{3, 2})
		c := MatMul(ai, bi)
		assert.Equal(t, []int64{58, 64, 139, 154}, c.Data())
	})

	t.Run("accumulate", func(t *testing.T) {
		c := Identity[float64](2)
		MatMulAdd(c, a, b)
		assert.Equal(t, []float64{59, 64, 139, 155}, c.Data())
	})

	t.Run("mismatch panics", func(t *testing.T) {
		assert.Panics(t, func() { MatMul(a, a) })
	})
}

func TestElementwise(t *testing.T) {
	a := mustFromSlice(t, []float32{1, 2, 3}, Shape{3})
	b := mustFromSlice(t, []float32{4, 5, 6}, Shape{3})
	assert.Equal(t, []float32{5, 7, 9}, a.Add(b).Data())
	assert.Equal(t, []float32{-3, -3, -3}, a.Sub(b).Data())
	assert.Equal(t, []float32{2, 4, 6}, a.Scale(2).Data())
	assert.Equal(t, 3.0, a.MaxAbs())
}

func TestMatBridge(t *testing.T) {
	a := mustFromSlice(t, []float64{1, 2, 3, 4, 5, 6}, Shape{2, 3})
	m := ToMat(a)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.True(t, FromMat(m).Equal(a))

	s := ToSym(mustFromSlice(t, []float64{2, 1, 1, 3}, Shape{2, 2}))
	assert.Equal(t, 1.0, s.At(1, 0))
}
