// Package filter implements the SSTable filter block: a sequence of
// per-data-block Bloom bitmaps plus the bookkeeping to locate and parse them.
package filter

import "encoding/binary"

// Writer accumulates keys per data block and assembles the finished filter
// block. One bitmap is produced per call to Flush.
type Writer struct {
	algo    Algorithm
	buf     []byte
	offsets []uint32
	pending [][]byte
}

// NewWriter returns a filter block writer driven by algo.
func NewWriter(algo Algorithm) *Writer {
	return &Writer{algo: algo}
}

// Update buffers a key observed for the data block currently being written.
func (w *Writer) Update(key []byte) {
	k := make([]byte, len(key))
	copy(k, key)
	w.pending = append(w.pending, k)
}

// Flush materializes the currently buffered keys into one bitmap, associated
// with the data block whose keys were just buffered. Call once per finished
// data block. A call with no pending keys still records an (empty) bitmap, so
// the per-block offset array stays aligned with the data block sequence.
func (w *Writer) Flush() {
	w.offsets = append(w.offsets, uint32(len(w.buf)))
	w.buf = append(w.buf, w.algo.KeysToBitmap(w.pending)...)
	w.pending = w.pending[:0]
}

// Finish flushes any pending keys, then appends the offsets array, the
// offsets-begin pointer, the offset count, the algorithm info tag and its
// length, and returns the finished filter block bytes.
func (w *Writer) Finish() []byte {
	if len(w.pending) > 0 {
		w.Flush()
	}

	offsetsBegin := uint32(len(w.buf))
	for _, off := range w.offsets {
		w.buf = append(w.buf, le32(off)...)
	}
	w.buf = append(w.buf, le32(offsetsBegin)...)
	w.buf = append(w.buf, le32(uint32(len(w.offsets)))...)

	info := w.algo.Info()
	if len(info) > 0 {
		w.buf = append(w.buf, info...)
		w.buf = append(w.buf, le32(uint32(len(info)))...)
	}

	return w.buf
}

func le32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}
