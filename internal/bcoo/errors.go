package bcoo

import (
	"errors"
	"fmt"

	"github.com/born-ml/bsparse/internal/tensor"
)

// Common errors. Every failure returned by this module wraps exactly one of
// these; match with errors.Is.
var (
	ErrShapeMismatch      = errors.New("bcoo: shape mismatch")
	ErrInvalidPermutation = errors.New("bcoo: invalid axis permutation")
	ErrReshapeSize        = errors.New("bcoo: reshape changes element count")
	ErrIndexRange         = errors.New("bcoo: block index out of range")
	ErrPrecondition       = errors.New("bcoo: precondition violated")
	ErrInvalidData        = errors.New("bcoo: invalid block data")
	ErrInvalidSubscripts  = tensor.ErrInvalidSubscripts
	ErrFactorization      = errors.New("bcoo: dense factorization failed")
)

// ShapeError provides detailed information about a shape / block shape
// incompatibility.
type ShapeError struct {
	Op         string       // Operation that detected the problem
	Shape      tensor.Shape // Element-level shape involved
	BlockShape tensor.Shape // Block shape involved
	Axis       int          // Offending axis, -1 when the ranks differ
	Err        error        // Sentinel, usually ErrShapeMismatch
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Axis < 0 {
		return fmt.Sprintf("%s: %v: shape %v and block shape %v have different ranks",
			e.Op, e.Err, []int(e.Shape), []int(e.BlockShape))
	}
	return fmt.Sprintf("%s: %v: axis %d: shape %v is not divisible by block shape %v",
		e.Op, e.Err, e.Axis, []int(e.Shape), []int(e.BlockShape))
}

// Unwrap returns the sentinel error.
func (e *ShapeError) Unwrap() error { return e.Err }
