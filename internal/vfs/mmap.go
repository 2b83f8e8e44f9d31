package vfs

import (
	"github.com/lsmcore/coredb/internal/status"
	"golang.org/x/exp/mmap"
)

// MmapReader is a read-only memory-mapped file, the access pattern SSTable
// readers use: the whole file is mapped once and blocks are sliced out of it
// without further syscalls.
type MmapReader struct {
	path   string
	r      *mmap.ReaderAt
	length int
}

// OpenMmapReader maps path read-only.
func OpenMmapReader(path string) (*MmapReader, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, status.Wrap(status.MmapError, err, "mmap open")
	}
	return &MmapReader{path: path, r: r, length: r.Len()}, nil
}

// Size returns the mapped file's length in bytes.
func (m *MmapReader) Size() int { return m.length }

// Path returns the mapped file's path.
func (m *MmapReader) Path() string { return m.path }

// ReadAt copies len(buf) bytes starting at off out of the mapped file.
func (m *MmapReader) ReadAt(buf []byte, off int64) (int, error) {
	n, err := m.r.ReadAt(buf, off)
	if err != nil {
		return n, status.Wrap(status.MmapError, err, "mmap read")
	}
	return n, nil
}

// ReadRange is a convenience over ReadAt that allocates and returns the
// region [off, off+n).
func (m *MmapReader) ReadRange(off int64, n int) ([]byte, error) {
	if off < 0 || n < 0 || int(off)+n > m.length {
		return nil, status.Wrap(status.OutOfRange, nil, "mmap read range out of bounds")
	}
	buf := make([]byte, n)
	if _, err := m.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close unmaps the file.
func (m *MmapReader) Close() error {
	if err := m.r.Close(); err != nil {
		return status.Wrap(status.CloseFileError, err, "close mmap reader")
	}
	return nil
}
