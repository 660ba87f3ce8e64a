package serialization

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/born-ml/bsparse/internal/bcoo"
	"github.com/born-ml/bsparse/internal/tensor"
)

// MmapReader provides memory-mapped access to .bsp files.
// Only the header is parsed on open; the payload is read through the OS page
// cache when a tensor is decoded.
//
// Important: Always call Close() when done to unmap the file (use defer).
type MmapReader struct {
	file    *os.File
	data    []byte // mmap'd region (read-only)
	prelude prelude
	header  Header
	closed  bool
}

// NewMmapReader maps a .bsp file read-only and parses its header.
func NewMmapReader(path string) (*MmapReader, error) {
	//nolint:gosec // G304: path is chosen by the caller
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.Size() < FixedHeaderSize {
		_ = file.Close()
		return nil, fmt.Errorf("file too small: %d bytes (minimum %d)", stat.Size(), FixedHeaderSize)
	}

	data, err := mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}
	r := &MmapReader{file: file, data: data}

	r.prelude, r.header, err = readHeader(bytes.NewReader(data))
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	end := r.prelude.payloadOffset() + int64(r.prelude.payloadSize) //nolint:gosec // bounded by file size check
	if end > stat.Size() || end < 0 {
		_ = r.Close()
		return nil, &ValidationError{
			Type:    "out_of_bounds",
			Details: fmt.Sprintf("payload ends at %d, file has %d bytes", end, stat.Size()),
		}
	}
	return r, nil
}

// Header returns the file header.
func (r *MmapReader) Header() Header { return r.header }

// Compression returns how the payload is stored.
func (r *MmapReader) Compression() Compression { return r.prelude.compression }

// Checksum returns the stored SHA-256 of the payload.
func (r *MmapReader) Checksum() [ChecksumSize]byte { return r.prelude.checksum }

// payload returns the mapped payload bytes without copying.
func (r *MmapReader) payload() []byte {
	off := r.prelude.payloadOffset()
	return r.data[off : off+int64(r.prelude.payloadSize)] //nolint:gosec // checked in NewMmapReader
}

// Close unmaps the file and closes it.
func (r *MmapReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	var errs []error
	if r.data != nil {
		errs = append(errs, munmapFile(r.data))
		r.data = nil
	}
	errs = append(errs, r.file.Close())
	return errors.Join(errs...)
}

// ReadMapped decodes the tensor held by a mapped file. The result owns its
// blocks and stays valid after Close.
func ReadMapped[T tensor.Numeric](r *MmapReader, opts ReaderOptions) (*bcoo.Tensor[T], error) {
	if r.closed {
		return nil, errors.New("reader is closed")
	}
	if err := ValidateHeader(&r.header, tensor.DataTypeOf[T]()); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := checkPayloadSize(&r.prelude, &r.header); err != nil {
		return nil, err
	}
	return decodeStored[T](r.payload(), &r.prelude, &r.header, opts)
}
