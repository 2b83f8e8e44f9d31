// Package block implements the prefix-compressed data block: the unit of
// storage inside an SSTable, with restart points for binary search.
package block

import (
	"bytes"
	"encoding/binary"

	"github.com/lsmcore/coredb/internal/status"
)

// RestartInterval is how many entries separate two restart points. Every
// RestartInterval-th record stores its key in full instead of as a suffix.
const RestartInterval = 16

const uint32Len = 4

// Writer accumulates records in strictly ascending internal-key order and
// produces the block's serialized bytes on Finish.
type Writer struct {
	buf         bytes.Buffer
	restarts    []uint32
	lastKey     []byte
	entriesSeen int
}

// NewWriter returns an empty block writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Add appends a record. Keys must be supplied in strictly ascending order
// (per the caller's internal-key comparator); Add rejects a regression.
func (w *Writer) Add(key, value []byte, less func(a, b []byte) int) error {
	if w.lastKey != nil && less(w.lastKey, key) >= 0 {
		return status.Wrap(status.BadRecord, nil, "block writer: keys must be strictly ascending")
	}

	atRestart := w.entriesSeen%RestartInterval == 0
	var shared int
	if !atRestart {
		shared = sharedPrefixLen(w.lastKey, key)
	}
	unshared := key[shared:]

	if atRestart {
		w.restarts = append(w.restarts, uint32(w.buf.Len()))
	}

	var hdr [3 * uint32Len]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(shared))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(unshared)))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(len(value)))
	w.buf.Write(hdr[:])
	w.buf.Write(unshared)
	w.buf.Write(value)

	w.lastKey = append(w.lastKey[:0], key...)
	w.entriesSeen++
	return nil
}

func sharedPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// EstimatedSize returns the size the block would occupy if finalized now.
func (w *Writer) EstimatedSize() int {
	return w.buf.Len() + (len(w.restarts)+1)*uint32Len
}

// Empty reports whether any record has been added since creation or Reset.
func (w *Writer) Empty() bool {
	return w.entriesSeen == 0
}

// Reset empties the writer so it can be reused for the next block.
func (w *Writer) Reset() {
	w.buf.Reset()
	w.restarts = w.restarts[:0]
	w.lastKey = nil
	w.entriesSeen = 0
}

// Finish appends the restart-point trailer and returns the finished block
// bytes. The writer is left populated; call Reset before reusing it.
func (w *Writer) Finish() []byte {
	for _, r := range w.restarts {
		var b [uint32Len]byte
		binary.LittleEndian.PutUint32(b[:], r)
		w.buf.Write(b[:])
	}
	var cnt [uint32Len]byte
	binary.LittleEndian.PutUint32(cnt[:], uint32(len(w.restarts)))
	w.buf.Write(cnt[:])
	return w.buf.Bytes()
}
