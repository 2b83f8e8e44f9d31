// Package vfs wraps the OS filesystem calls the engine needs: buffered
// sequential writes, sequential and random-access reads, memory-mapped
// reads, and the atomic publish of a finished file.
package vfs

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/lsmcore/coredb/internal/status"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// writeBufferSize matches the teacher's fixed append buffer.
const writeBufferSize = 1 << 16 // 64KiB

// WritableFile is a buffered, append-only sequential writer.
type WritableFile struct {
	path   string
	f      *os.File
	w      *bufio.Writer
	closed bool
}

// OpenWritableFile creates (or truncates) path and wraps it for buffered
// append-only writes.
func OpenWritableFile(path string) (*WritableFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, status.Wrap(status.OpenFileError, err, "open writable file")
	}
	return &WritableFile{path: path, f: f, w: bufio.NewWriterSize(f, writeBufferSize)}, nil
}

// OpenAppendOnlyFile opens an existing path for append, creating it if absent.
func OpenAppendOnlyFile(path string) (*WritableFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, status.Wrap(status.OpenFileError, err, "open append-only file")
	}
	return &WritableFile{path: path, f: f, w: bufio.NewWriterSize(f, writeBufferSize)}, nil
}

// Path returns the file's current path.
func (w *WritableFile) Path() string { return w.path }

// Append writes data into the buffer, flushing to the OS as the buffer fills.
func (w *WritableFile) Append(data []byte) error {
	if _, err := w.w.Write(data); err != nil {
		return status.Wrap(status.IOError, err, "append")
	}
	return nil
}

// Flush pushes buffered bytes to the OS without fsyncing them.
func (w *WritableFile) Flush() error {
	if err := w.w.Flush(); err != nil {
		return status.Wrap(status.IOError, err, "flush")
	}
	return nil
}

// Sync flushes the buffer and fsyncs the underlying file. It prefers
// Fdatasync (skips the inode metadata sync Fsync also performs) and falls
// back to a full Sync when the platform call is unavailable.
func (w *WritableFile) Sync() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if err := unix.Fdatasync(int(w.f.Fd())); err != nil {
		if err := w.f.Sync(); err != nil {
			return status.Wrap(status.IOError, err, "sync")
		}
	}
	return nil
}

// Close flushes, fsyncs, and closes the file. Calling Close more than once is
// a no-op.
func (w *WritableFile) Close() error {
	if w.closed {
		return nil
	}
	if err := w.Sync(); err != nil {
		return err
	}
	if err := w.f.Close(); err != nil {
		return status.Wrap(status.CloseFileError, err, "close")
	}
	w.closed = true
	return nil
}

// Rename closes the file (flushing and fsyncing first) and renames it to
// newPath.
func (w *WritableFile) Rename(newPath string) error {
	if err := w.Close(); err != nil {
		return err
	}
	if err := os.Rename(w.path, newPath); err != nil {
		return status.Wrap(status.RenameFileError, err, "rename")
	}
	w.path = newPath
	return nil
}

// TempFile is a WritableFile created under dir with the given suffix, meant
// to be fsynced and renamed into place once its contents are final.
type TempFile struct {
	*WritableFile
}

// OpenTempFile creates a uniquely-named temp file under dir ending in suffix.
func OpenTempFile(dir, suffix string) (*TempFile, error) {
	f, err := os.CreateTemp(dir, "tmp-*"+suffix)
	if err != nil {
		return nil, status.Wrap(status.MakestempError, err, "create temp file")
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return nil, status.Wrap(status.CloseFileError, err, "close freshly created temp file")
	}
	wf, err := OpenWritableFile(path)
	if err != nil {
		return nil, err
	}
	return &TempFile{WritableFile: wf}, nil
}

// PublishAtomic fsyncs tmp's contents and atomically renames it to finalPath,
// creating finalPath's parent directory if needed.
func PublishAtomic(tmp *TempFile, finalPath string) error {
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return status.Wrap(status.CreateDirectoryFailed, err, "create destination directory")
	}
	return tmp.Rename(finalPath)
}

// SequentialReader reads a file strictly forward, in caller-chosen chunks.
type SequentialReader struct {
	f *os.File
}

// OpenSequentialReader opens path for sequential reads.
func OpenSequentialReader(path string) (*SequentialReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, status.Wrap(status.OpenFileError, err, "open sequential reader")
	}
	return &SequentialReader{f: f}, nil
}

// Read reads up to len(buf) bytes. A short read near the end of the file
// returns the bytes read with a nil error; the next Read, finding nothing
// left, returns status.ErrFileEOF. Any other read error, except on a closed
// file, is also reported as status.ErrFileEOF.
func (r *SequentialReader) Read(buf []byte) (int, error) {
	n, err := r.f.Read(buf)
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			return n, status.Wrap(status.IOError, err, "read from closed file")
		}
		return n, status.ErrFileEOF
	}
	return n, nil
}

// Skip advances the read position by n bytes.
func (r *SequentialReader) Skip(n int64) error {
	if _, err := r.f.Seek(n, io.SeekCurrent); err != nil {
		return status.Wrap(status.IOError, err, "skip")
	}
	return nil
}

// Close closes the underlying file.
func (r *SequentialReader) Close() error {
	if err := r.f.Close(); err != nil {
		return status.Wrap(status.CloseFileError, err, "close sequential reader")
	}
	return nil
}

// RandomAccessReader reads arbitrary offsets of a file via pread, suitable
// for concurrent readers sharing one handle.
type RandomAccessReader struct {
	f *os.File
}

// OpenRandomAccessReader opens path for positioned reads.
func OpenRandomAccessReader(path string) (*RandomAccessReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, status.Wrap(status.OpenFileError, err, "open random-access reader")
	}
	return &RandomAccessReader{f: f}, nil
}

// ReadAt reads len(buf) bytes starting at offset.
func (r *RandomAccessReader) ReadAt(buf []byte, offset int64) (int, error) {
	n, err := r.f.ReadAt(buf, offset)
	if err != nil {
		return n, status.Wrap(status.IOError, err, "read at offset")
	}
	return n, nil
}

// Close closes the underlying file.
func (r *RandomAccessReader) Close() error {
	if err := r.f.Close(); err != nil {
		return status.Wrap(status.CloseFileError, err, "close random-access reader")
	}
	return nil
}

// Exists reports whether path exists, regardless of type.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDirectory reports whether path exists and is a directory.
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// EnsureDirectory creates path (and parents) if it does not already exist.
func EnsureDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return status.Wrap(status.CreateDirectoryFailed, err, "ensure directory")
	}
	return nil
}

// FileSize stats path and returns its size in bytes.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, status.Wrap(status.IOError, err, "stat file")
	}
	return info.Size(), nil
}
