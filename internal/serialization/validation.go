package serialization

import (
	"fmt"

	"github.com/born-ml/bsparse/internal/tensor"
)

// ValidateHeader checks a decoded header against the element type the caller
// asked for and the format's structural rules.
func ValidateHeader(h *Header, want tensor.DataType) error {
	if h.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: header says %d", ErrUnsupportedVersion, h.FormatVersion)
	}
	dt, ok := stringToDtype(h.DType)
	if !ok {
		return &ValidationError{Type: "dtype", Details: fmt.Sprintf("unknown dtype %q", h.DType)}
	}
	if dt != want {
		return fmt.Errorf("%w: file holds %s, requested %s", ErrDTypeMismatch, dt, want)
	}

	if len(h.Shape) != len(h.BlockShape) {
		return &ValidationError{
			Type:    "shape",
			Details: fmt.Sprintf("shape %v and block shape %v have different ranks", h.Shape, h.BlockShape),
		}
	}
	cells := 1
	for i := range h.Shape {
		if h.Shape[i] < 0 || h.BlockShape[i] <= 0 || h.Shape[i]%h.BlockShape[i] != 0 {
			return &ValidationError{
				Type:    "shape",
				Details: fmt.Sprintf("axis %d: shape %v is not divisible by block shape %v", i, h.Shape, h.BlockShape),
			}
		}
		cells *= h.Shape[i] / h.BlockShape[i]
	}
	if h.BlockNNZ < 0 || h.BlockNNZ > cells {
		return &ValidationError{
			Type:    "block_nnz",
			Details: fmt.Sprintf("%d stored blocks in a grid of %d cells", h.BlockNNZ, cells),
		}
	}
	if size := h.payloadSize(dt); h.RawSize != size {
		return &ValidationError{
			Type:    "payload_size",
			Details: fmt.Sprintf("raw size %d, expected %d", h.RawSize, size),
		}
	}
	return nil
}
