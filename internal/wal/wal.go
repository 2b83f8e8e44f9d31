// Package wal implements the write-ahead log: a length-prefixed,
// CRC32C-checked append-only record stream that makes memtable writes
// durable across a crash.
package wal

import (
	"encoding/binary"
	"hash/crc32"
	"os"

	"github.com/lsmcore/coredb/internal/status"
	"github.com/lsmcore/coredb/internal/vfs"
)

// recordTypeKV is the only record type defined today.
const recordTypeKV uint32 = 0

const headerLen = 4 + 4 + 4 // crc32c + type + len

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// Writer appends KV records to one WAL generation's file.
type Writer struct {
	f    *vfs.WritableFile
	path string
}

// Create opens a fresh WAL file at path (truncating any existing file).
func Create(path string) (*Writer, error) {
	f, err := vfs.OpenWritableFile(path)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, path: path}, nil
}

// AddRecord writes one record whose payload is data: crc32c(data) || type ||
// len(data) || data.
func (w *Writer) AddRecord(data []byte) error {
	var hdr [headerLen]byte
	binary.LittleEndian.PutUint32(hdr[0:], crc32.Checksum(data, castagnoliTable))
	binary.LittleEndian.PutUint32(hdr[4:], recordTypeKV)
	binary.LittleEndian.PutUint32(hdr[8:], uint32(len(data)))

	if err := w.f.Append(hdr[:]); err != nil {
		return err
	}
	return w.f.Append(data)
}

// Sync flushes the user-space buffer and fsyncs the underlying file.
func (w *Writer) Sync() error { return w.f.Sync() }

// Close flushes and closes the file.
func (w *Writer) Close() error { return w.f.Close() }

// Drop closes the file and unlinks it; subsequent use of w is invalid.
func (w *Writer) Drop() error {
	if err := w.f.Close(); err != nil {
		return err
	}
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return status.Wrap(status.DestroyFileFailed, err, "unlink wal file")
	}
	return nil
}

// Path returns the WAL file's path.
func (w *Writer) Path() string { return w.path }

// Reader reads KV records back out of a WAL file in order.
type Reader struct {
	r *vfs.SequentialReader
}

// Open opens an existing WAL file for sequential reading.
func Open(path string) (*Reader, error) {
	r, err := vfs.OpenSequentialReader(path)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r}, nil
}

// ReadRecord reads the next record's payload. status.ErrFileEOF signals a
// clean end of log (including a truncated trailing header or payload, which
// a crash mid-append can produce); status.ErrBadRecord signals an
// unrecognized record type; status.ErrChecksum signals a corrupt payload.
func (r *Reader) ReadRecord() ([]byte, error) {
	var hdr [headerLen]byte
	if err := readFull(r.r, hdr[:]); err != nil {
		return nil, err
	}
	wantCRC := binary.LittleEndian.Uint32(hdr[0:])
	typ := binary.LittleEndian.Uint32(hdr[4:])
	length := binary.LittleEndian.Uint32(hdr[8:])

	if typ != recordTypeKV {
		return nil, status.ErrBadRecord
	}

	payload := make([]byte, length)
	if err := readFull(r.r, payload); err != nil {
		return nil, err
	}

	if crc32.Checksum(payload, castagnoliTable) != wantCRC {
		return nil, status.ErrChecksum
	}
	return payload, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error { return r.r.Close() }

// readFull reads exactly len(buf) bytes, translating any short read
// (including a clean EOF) into status.ErrFileEOF.
func readFull(r *vfs.SequentialReader, buf []byte) error {
	read := 0
	for read < len(buf) {
		n, err := r.Read(buf[read:])
		read += n
		if err != nil {
			if read == len(buf) {
				return nil
			}
			return status.ErrFileEOF
		}
		if n == 0 {
			return status.ErrFileEOF
		}
	}
	return nil
}
