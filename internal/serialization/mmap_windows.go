//go:build windows

package serialization

import (
	"errors"
	"os"
	"syscall"
	"unsafe"
)

// mmapFile maps a file read-only (Windows implementation).
func mmapFile(f *os.File, size int64) ([]byte, error) {
	handle, err := syscall.CreateFileMapping(
		syscall.Handle(f.Fd()),
		nil,
		syscall.PAGE_READONLY,
		uint32(size>>32), //nolint:gosec // G115: high half of the size
		uint32(size),     //nolint:gosec // G115: low half of the size
		nil,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = syscall.CloseHandle(handle) }()

	addr, err := syscall.MapViewOfFile(handle, syscall.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		return nil, err
	}
	//nolint:gosec // G103: addr is a live view of exactly size bytes
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size)), nil
}

// munmapFile releases a view created by mmapFile.
func munmapFile(data []byte) error {
	if len(data) == 0 {
		return errors.New("cannot unmap empty data")
	}
	return syscall.UnmapViewOfFile(uintptr(unsafe.Pointer(&data[0]))) //nolint:gosec // G103
}
