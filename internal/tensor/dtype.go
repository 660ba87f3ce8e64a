// Package tensor provides the dense N-dimensional array used for block
// storage and as the reference representation of block-sparse tensors.
package tensor

import "unsafe"

// Numeric is a constraint for element types that support addition and
// multiplication. Block-sparse algorithms only ever add and multiply elements.
type Numeric interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	default:
		return "unknown"
	}
}

// DataTypeOf infers DataType from a generic type T.
// Named types are classified by their underlying kind.
func DataTypeOf[T Numeric]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	}

	half := 0.5
	isFloat := T(half) != 0
	wide := unsafe.Sizeof(dummy) == 8
	switch {
	case isFloat && wide:
		return Float64
	case isFloat:
		return Float32
	case wide:
		return Int64
	default:
		return Int32
	}
}
