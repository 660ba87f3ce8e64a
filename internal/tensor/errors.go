package tensor

import "errors"

// Common errors.
var (
	ErrShapeMismatch     = errors.New("tensor: shape mismatch")
	ErrInvalidSubscripts = errors.New("tensor: invalid einsum subscripts")
)
