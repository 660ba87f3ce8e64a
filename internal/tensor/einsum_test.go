package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubscripts(t *testing.T) {
	t.Run("explicit", func(t *testing.T) {
		s, err := ParseSubscripts("ij,jk->ik", 2)
		require.NoError(t, err)
		assert.Equal(t, [][]byte{[]byte("ij"), []byte("jk")}, s.Inputs)
		assert.Equal(t, []byte("ik"), s.Output)
		assert.Equal(t, []byte("ikj"), s.Labels())
	})

	t.Run("implicit output is sorted singletons", func(t *testing.T) {
		s, err := ParseSubscripts("kj, ji", 2)
		require.NoError(t, err)
		assert.Equal(t, []byte("ik"), s.Output)
	})

	errCases := []struct {
		name string
		expr string
		nops int
	}{
		{"operand count", "ij,jk->ik", 3},
		{"double arrow", "ij->i->j", 1},
		{"bad label", "i1,jk->ik", 2},
		{"repeated output", "ij,jk->ii", 2},
		{"unknown output", "ij,jk->iz", 2},
		{"ellipsis", "...i->i", 1},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSubscripts(tc.expr, tc.nops)
			assert.ErrorIs(t, err, ErrInvalidSubscripts)
		})
	}
}

func TestEinsum(t *testing.T) {
	a := mustFromSlice(t, arange(6), Shape{2, 3})
	b := mustFromSlice(t, arange(12), Shape{3, 4})

	t.Run("matmul", func(t *testing.T) {
		got, err := Einsum("ij,jk->ik", a, b)
		require.NoError(t, err)
		assert.True(t, got.Equal(MatMul(a, b)))
	})

	t.Run("transpose", func(t *testing.T) {
		got, err := Einsum("ij->ji", a)
		require.NoError(t, err)
		assert.True(t, got.Equal(a.Transpose()))
	})

	t.Run("trace", func(t *testing.T) {
		sq := mustFromSlice(t, arange(9), Shape{3, 3})
		got, err := Einsum("ii", sq)
		require.NoError(t, err)
		assert.Equal(t, 12.0, got.At())
	})

	t.Run("three operands", func(t *testing.T) {
		c := mustFromSlice(t, arange(8), Shape{4, 2})
		got, err := Einsum("ij,jk,kl->il", a, b, c)
		require.NoError(t, err)
		assert.True(t, got.Equal(MatMul(MatMul(a, b), c)))
	})

	t.Run("outer product", func(t *testing.T) {
		u := mustFromSlice(t, []float64{1, 2}, Shape{2})
		v := mustFromSlice(t, []float64{3, 4, 5}, Shape{3})
		got, err := Einsum("i,j->ij", u, v)
		require.NoError(t, err)
		assert.Equal(t, []float64{3, 4, 5, 6, 8, 10}, got.Data())
	})

	t.Run("extent mismatch", func(t *testing.T) {
		_, err := Einsum("ij,jk->ik", a, a)
		assert.ErrorIs(t, err, ErrShapeMismatch)
	})
}
