package serialization

import (
	"time"

	"github.com/born-ml/bsparse/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "BSPT"
	FormatVersion   = 1
	FixedHeaderSize = 64 // 0x40
	HeaderAlignment = 64
	ChecksumSize    = 32
	ChecksumOffset  = 0x20
	MaxHeaderSize   = 16 * 1024 * 1024
	keySize         = 8 // int64 block offsets
)

// Flags for the .bsp format.
const (
	FlagHasMetadata uint32 = 1 << 0
)

// Compression selects how the payload is stored.
type Compression uint32

// Supported payload compressions.
const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZSTD
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "unknown"
	}
}

// Header represents the JSON header of a .bsp file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	CreatedAt     time.Time         `json:"created_at"`
	DType         string            `json:"dtype"`
	Shape         []int             `json:"shape"`
	BlockShape    []int             `json:"block_shape"`
	BlockNNZ      int               `json:"block_nnz"`
	RawSize       int64             `json:"raw_size"` // uncompressed payload bytes
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// payloadSize returns the uncompressed payload size implied by the header.
func (h *Header) payloadSize(dt tensor.DataType) int64 {
	blockElems := tensor.Shape(h.BlockShape).NumElements()
	return int64(h.BlockNNZ) * int64(keySize+blockElems*dt.Size())
}

// stringToDtype converts the header dtype name back to a DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	for _, dt := range []tensor.DataType{tensor.Float32, tensor.Float64, tensor.Int32, tensor.Int64} {
		if dt.String() == s {
			return dt, true
		}
	}
	return 0, false
}

// alignedHeaderEnd returns the payload offset following a JSON header.
func alignedHeaderEnd(headerSize uint64) int64 {
	pos := int64(FixedHeaderSize) + int64(headerSize) //nolint:gosec // bounded by MaxHeaderSize
	padding := (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
	return pos + padding
}
