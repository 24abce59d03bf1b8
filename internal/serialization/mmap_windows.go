//go:build windows

package serialization

import (
	"fmt"
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
		uint32(size>>32), //nolint:gosec // G115: high dword of the mapping size
		uint32(size),     //nolint:gosec // G115: low dword of the mapping size
		nil,
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = syscall.CloseHandle(handle)
	}()

	addr, err := syscall.MapViewOfFile(
		handle,
		syscall.FILE_MAP_READ,
		0,
		0,
		uintptr(size), //nolint:gosec // G115: size fits the address space or MapViewOfFile fails
	)
	if err != nil {
		return nil, err
	}

	// addr is a live mapping address returned by MapViewOfFile.
	//nolint:govet,gosec // unsafeptr: converting a syscall result is the documented exception.
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// munmapFile unmaps a region mapped by mmapFile (Windows implementation).
func munmapFile(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("cannot unmap empty region")
	}
	return syscall.UnmapViewOfFile(uintptr(unsafe.Pointer(&data[0])))
}
