//go:build !windows
// +build !windows

package index

import (
	"os"
	"syscall"
)

// mmapReader provides zero-copy, read-only file access via memory mapping,
// ported from the teacher corpus's openexr mmap reader (the only mmap
// implementation in the reference corpus): same Slice/Size/Close shape,
// adapted to the offset-table activation pattern this package needs instead
// of openexr's chunk-table reads.
type mmapReader struct {
	data []byte
	file *os.File
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

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, err
	}

	return &mmapReader{data: data, file: f}, nil
}

// Slice returns a direct, zero-copy view into the mapped file. Valid only
// while the mmapReader is open.
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
		if err := syscall.Munmap(m.data); err != nil {
			return err
		}
		m.data = nil
	}
	if m.file != nil {
		return m.file.Close()
	}

	return nil
}
