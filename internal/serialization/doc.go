// Package serialization provides the .bsp file format for saving and loading
// block-sparse tensors.
//
//	Format Structure:
//	  [0x00: Magic "BSPT"]
//	  [0x04: Version (uint32 LE)]
//	  [0x08: Flags (uint32 LE)]
//	  [0x0C: Compression (uint32 LE)]
//	  [0x10: Header Size (uint64 LE)]
//	  [0x18: Payload Size (uint64 LE)]
//	  [0x20: SHA-256 of the stored payload (32 bytes)]
//	  [0x40: Header: JSON metadata]
//	  [Payload, 64-byte aligned]
//
// The payload holds the flat block-grid offsets of all stored blocks as
// int64 LE, followed by the block data in the same order, row-major and
// little endian. It is optionally compressed as a whole with LZ4 or zstd.
//
// Example usage:
//
//	if err := serialization.Save("x.bsp", x, serialization.WriterOptions{
//	    Compression: serialization.CompressionZSTD,
//	}); err != nil {
//	    log.Fatal(err)
//	}
//
//	y, header, err := serialization.Load[float64]("x.bsp", serialization.ReaderOptions{})
package serialization
