package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/bsparse/internal/bcoo"
	"github.com/born-ml/bsparse/internal/tensor"
)

// ReaderOptions configures Read and Load.
type ReaderOptions struct {
	SkipChecksumValidation bool // Skip checksum validation (faster but less safe)
}

// prelude holds the fixed-size fields preceding the JSON header.
type prelude struct {
	compression Compression
	headerSize  uint64
	payloadSize uint64
	checksum    [ChecksumSize]byte
}

// payloadOffset returns the byte offset of the payload from the file start.
func (p *prelude) payloadOffset() int64 { return alignedHeaderEnd(p.headerSize) }

// readHeader consumes the fixed header and the JSON header from r.
func readHeader(r io.Reader) (prelude, Header, error) {
	var p prelude
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return p, Header{}, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[:4]) != MagicBytes {
		return p, Header{}, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint32(fixed[0x04:]); v != FormatVersion {
		return p, Header{}, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, v, FormatVersion)
	}
	p.compression = Compression(binary.LittleEndian.Uint32(fixed[0x0C:]))
	p.headerSize = binary.LittleEndian.Uint64(fixed[0x10:])
	p.payloadSize = binary.LittleEndian.Uint64(fixed[0x18:])
	copy(p.checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if p.headerSize > MaxHeaderSize {
		return p, Header{}, ErrHeaderTooLarge
	}
	headerJSON := make([]byte, p.headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return p, Header{}, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return p, Header{}, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	return p, header, nil
}

// checkPayloadSize rejects stored payload sizes the header cannot explain.
func checkPayloadSize(p *prelude, h *Header) error {
	raw := uint64(h.RawSize) //nolint:gosec // validated non-negative
	if p.payloadSize > raw || (p.compression == CompressionNone && p.payloadSize != raw) {
		return &ValidationError{
			Type:    "payload_size",
			Details: fmt.Sprintf("stored %d bytes (%s) for raw size %d", p.payloadSize, p.compression, h.RawSize),
		}
	}
	return nil
}

// decodeStored verifies, decompresses and decodes a stored payload.
func decodeStored[T tensor.Numeric](payload []byte, p *prelude, h *Header, opts ReaderOptions) (*bcoo.Tensor[T], error) {
	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(payload), p.checksum); err != nil {
			return nil, err
		}
	}
	raw, err := decompress(payload, p.compression, h.RawSize)
	if err != nil {
		return nil, err
	}
	return decodePayload[T](raw, h)
}

// Read decodes a .bsp stream holding elements of type T.
func Read[T tensor.Numeric](r io.Reader, opts ReaderOptions) (*bcoo.Tensor[T], Header, error) {
	p, header, err := readHeader(r)
	if err != nil {
		return nil, Header{}, err
	}
	if err := ValidateHeader(&header, tensor.DataTypeOf[T]()); err != nil {
		return nil, header, fmt.Errorf("validation failed: %w", err)
	}
	if err := checkPayloadSize(&p, &header); err != nil {
		return nil, header, err
	}

	padding := p.payloadOffset() - FixedHeaderSize - int64(p.headerSize) //nolint:gosec // bounded by MaxHeaderSize
	if _, err := io.CopyN(io.Discard, r, padding); err != nil {
		return nil, header, fmt.Errorf("failed to read padding: %w", err)
	}
	payload := make([]byte, p.payloadSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, header, fmt.Errorf("failed to read payload: %w", err)
	}

	x, err := decodeStored[T](payload, &p, &header, opts)
	if err != nil {
		return nil, header, err
	}
	return x, header, nil
}

// Load reads a .bsp file from path.
func Load[T tensor.Numeric](path string, opts ReaderOptions) (*bcoo.Tensor[T], Header, error) {
	//nolint:gosec // G304: path is chosen by the caller
	file, err := os.Open(path)
	if err != nil {
		return nil, Header{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Read[T](bufio.NewReader(file), opts)
}

// decodePayload rebuilds the tensor from a validated, uncompressed payload.
func decodePayload[T tensor.Numeric](raw []byte, h *Header) (*bcoo.Tensor[T], error) {
	shape := tensor.Shape(h.Shape)
	blockShape := tensor.Shape(h.BlockShape)
	cells := 1
	for i := range shape {
		cells *= shape[i] / blockShape[i]
	}

	n := h.BlockNNZ
	keys := make([]int, n)
	prev := -1
	for i := range keys {
		k := int(binary.LittleEndian.Uint64(raw[i*keySize:])) //nolint:gosec // range checked below
		if k <= prev || k >= cells {
			return nil, &ValidationError{
				Type:    "block_keys",
				Details: fmt.Sprintf("block offset %d at position %d is out of order or outside %d cells", k, i, cells),
			}
		}
		keys[i] = k
		prev = k
	}

	blocks := make(map[int]*tensor.Dense[T], n)
	off := n * keySize
	for _, k := range keys {
		b := tensor.Zeros[T](blockShape)
		m, err := binary.Decode(raw[off:], binary.LittleEndian, b.Data())
		if err != nil {
			return nil, fmt.Errorf("failed to decode block %d: %w", k, err)
		}
		off += m
		blocks[k] = b
	}
	return bcoo.Assemble(shape, blockShape, blocks)
}
