//go:build windows
// +build windows

package index

import (
	"os"
	"syscall"
	"unsafe"
)

// mmapReader mirrors mmap_unix.go's interface using the Win32 file-mapping
// APIs, ported from the teacher corpus's openexr Windows mmap reader.
type mmapReader struct {
	data   []byte
	file   *os.File
	handle syscall.Handle
}

func newMmapReader(f *os.File) (*mmapReader, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size == 0 {
		return &mmapReader{data: nil, file: f}, nil
	}

	sizeLow := uint32(size)
	sizeHigh := uint32(size >> 32)
	handle, err := syscall.CreateFileMapping(syscall.Handle(f.Fd()), nil, syscall.PAGE_READONLY, sizeHigh, sizeLow, nil)
	if err != nil {
		return nil, err
	}

	ptr, err := syscall.MapViewOfFile(handle, syscall.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		_ = syscall.CloseHandle(handle)
		return nil, err
	}

	data := (*[1 << 30]byte)(unsafe.Pointer(ptr))[:size:size]

	return &mmapReader{data: data, file: f, handle: handle}, nil
}

func (m *mmapReader) Slice(off, length int64) []byte {
	if off < 0 || length < 0 || off+length > int64(len(m.data)) {
		return nil
	}

	return m.data[off : off+length]
}

func (m *mmapReader) Size() int64 {
	return int64(len(m.data))
}

func (m *mmapReader) Close() error {
	if m.data != nil {
		_ = syscall.UnmapViewOfFile(uintptr(unsafe.Pointer(&m.data[0])))
		m.data = nil
	}
	if m.handle != 0 {
		_ = syscall.CloseHandle(m.handle)
		m.handle = 0
	}
	if m.file != nil {
		return m.file.Close()
	}

	return nil
}
