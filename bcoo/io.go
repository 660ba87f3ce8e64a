// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bcoo

import (
	"errors"
	"io"

	"github.com/born-ml/bsparse/internal/serialization"
	"github.com/born-ml/bsparse/internal/tensor"
)

// Compression selects how Save and Write store block data.
type Compression = serialization.Compression

// Payload compressions.
const (
	CompressionNone = serialization.CompressionNone
	CompressionLZ4  = serialization.CompressionLZ4
	CompressionZSTD = serialization.CompressionZSTD
)

// WriterOptions configures Save and Write.
type WriterOptions = serialization.WriterOptions

// ReaderOptions configures Load and Read.
type ReaderOptions = serialization.ReaderOptions

// FileHeader is the metadata stored in a .bsp file.
type FileHeader = serialization.Header

// Save writes x to a .bsp file.
//
// Example:
//
//	err := bcoo.Save("x.bsp", x, bcoo.WriterOptions{Compression: bcoo.CompressionZSTD})
func Save[T tensor.Numeric](path string, x *Tensor[T], opts WriterOptions) error {
	return serialization.Save(path, x, opts)
}

// Load reads a .bsp file holding elements of type T.
func Load[T tensor.Numeric](path string, opts ReaderOptions) (*Tensor[T], FileHeader, error) {
	return serialization.Load[T](path, opts)
}

// Write encodes x in .bsp format to w.
func Write[T tensor.Numeric](w io.Writer, x *Tensor[T], opts WriterOptions) error {
	return serialization.Write(w, x, opts)
}

// Read decodes a .bsp stream holding elements of type T.
func Read[T tensor.Numeric](r io.Reader, opts ReaderOptions) (*Tensor[T], FileHeader, error) {
	return serialization.Read[T](r, opts)
}

// LoadMapped reads a .bsp file through a read-only memory mapping. The
// returned tensor does not reference the mapping.
func LoadMapped[T tensor.Numeric](path string, opts ReaderOptions) (x *Tensor[T], header FileHeader, err error) {
	r, err := serialization.NewMmapReader(path)
	if err != nil {
		return nil, FileHeader{}, err
	}
	defer func() {
		err = errors.Join(err, r.Close())
	}()
	x, err = serialization.ReadMapped[T](r, opts)
	return x, r.Header(), err
}
