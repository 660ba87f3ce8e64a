package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/born-ml/bsparse/internal/bcoo"
	"github.com/born-ml/bsparse/internal/tensor"
)

// WriterOptions configures Write and Save.
type WriterOptions struct {
	Compression Compression
	Metadata    map[string]string
}

// Write encodes x in .bsp format to w.
func Write[T tensor.Numeric](w io.Writer, x *bcoo.Tensor[T], opts WriterOptions) error {
	raw, err := encodePayload(x)
	if err != nil {
		return err
	}
	payload, comp, err := compress(raw, opts.Compression)
	if err != nil {
		return fmt.Errorf("failed to compress payload: %w", err)
	}

	header := Header{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		DType:         x.DType().String(),
		Shape:         []int(x.Shape()),
		BlockShape:    []int(x.BlockShape()),
		BlockNNZ:      x.BlockNNZ(),
		RawSize:       int64(len(raw)),
		Metadata:      opts.Metadata,
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	var flags uint32
	if len(opts.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	fixed := make([]byte, FixedHeaderSize)
	copy(fixed, MagicBytes)
	binary.LittleEndian.PutUint32(fixed[0x04:], FormatVersion)
	binary.LittleEndian.PutUint32(fixed[0x08:], flags)
	binary.LittleEndian.PutUint32(fixed[0x0C:], uint32(comp))
	binary.LittleEndian.PutUint64(fixed[0x10:], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[0x18:], uint64(len(payload)))
	sum := ComputeChecksum(payload)
	copy(fixed[ChecksumOffset:], sum[:])

	padding := alignedHeaderEnd(uint64(len(headerJSON))) - FixedHeaderSize - int64(len(headerJSON))

	bw := bufio.NewWriter(w)
	for _, part := range [][]byte{fixed, headerJSON, make([]byte, padding), payload} {
		if _, err := bw.Write(part); err != nil {
			return fmt.Errorf("failed to write: %w", err)
		}
	}
	return bw.Flush()
}

// Save writes x to a .bsp file at path.
func Save[T tensor.Numeric](path string, x *bcoo.Tensor[T], opts WriterOptions) (err error) {
	//nolint:gosec // G304: path is chosen by the caller
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()
	return Write(file, x, opts)
}

// encodePayload lays out the block offsets followed by the block data.
func encodePayload[T tensor.Numeric](x *bcoo.Tensor[T]) ([]byte, error) {
	n := x.BlockNNZ()
	blockBytes := x.BlockShape().NumElements() * x.DType().Size()
	buf := make([]byte, 0, n*(keySize+blockBytes))
	for i := range n {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(x.Key(i))) //nolint:gosec // keys are non-negative
	}
	for i := range n {
		var err error
		buf, err = binary.Append(buf, binary.LittleEndian, x.RawBlock(i).Data())
		if err != nil {
			return nil, fmt.Errorf("failed to encode block %d: %w", i, err)
		}
	}
	return buf, nil
}
