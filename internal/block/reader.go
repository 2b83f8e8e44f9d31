package block

import (
	"encoding/binary"

	"github.com/lsmcore/coredb/internal/status"
)

// CompareFn is the internal-key comparator a Reader uses for lower-bound
// lookups and ascending-order validation.
type CompareFn func(a, b []byte) int

// Reader parses a finished block's bytes lazily: only the restart trailer is
// decoded eagerly, individual records are reconstructed on demand.
type Reader struct {
	data     []byte // [entries][restarts][count], as produced by Writer.Finish
	restarts []uint32
	dataLen  int // offset where the restart-offset array begins
	cmp      CompareFn
}

// NewReader parses the trailing restart-count and restart-offset array out of
// a finished block's bytes.
func NewReader(data []byte, cmp CompareFn) (*Reader, error) {
	if len(data) < uint32Len {
		return nil, status.Wrap(status.UnsupportedFormat, nil, "block shorter than restart count")
	}
	count := binary.LittleEndian.Uint32(data[len(data)-uint32Len:])
	restartsStart := len(data) - uint32Len - int(count)*uint32Len
	if restartsStart < 0 {
		return nil, status.Wrap(status.UnsupportedFormat, nil, "block restart count out of range")
	}

	restarts := make([]uint32, count)
	for i := range restarts {
		off := restartsStart + i*uint32Len
		restarts[i] = binary.LittleEndian.Uint32(data[off : off+uint32Len])
	}

	return &Reader{
		data:     data,
		restarts: restarts,
		dataLen:  restartsStart,
		cmp:      cmp,
	}, nil
}

// entry is one decoded record plus the file offset it started at.
type entry struct {
	offset   int
	next     int
	key      []byte
	value    []byte
	shared   int
	unshared int
}

// decodeAt reconstructs the record at byte offset off, given the full key of
// the preceding record in the same restart run (nil if off is itself a
// restart point).
func (r *Reader) decodeAt(off int, prevKey []byte) (entry, error) {
	if off < 0 || off+3*uint32Len > r.dataLen {
		return entry{}, status.Wrap(status.UnsupportedFormat, nil, "block entry header out of range")
	}
	shared := int(binary.LittleEndian.Uint32(r.data[off:]))
	unshared := int(binary.LittleEndian.Uint32(r.data[off+uint32Len:]))
	valueLen := int(binary.LittleEndian.Uint32(r.data[off+2*uint32Len:]))

	pos := off + 3*uint32Len
	if shared > len(prevKey) || pos+unshared+valueLen > r.dataLen {
		return entry{}, status.Wrap(status.UnsupportedFormat, nil, "block entry body out of range")
	}

	key := make([]byte, shared+unshared)
	copy(key, prevKey[:shared])
	copy(key[shared:], r.data[pos:pos+unshared])
	pos += unshared

	value := r.data[pos : pos+valueLen]
	pos += valueLen

	return entry{
		offset:   off,
		next:     pos,
		key:      key,
		value:    value,
		shared:   shared,
		unshared: unshared,
	}, nil
}

// restartFullKey returns the full key stored at the record beginning at
// restart index i (its shared_len must be zero by construction).
func (r *Reader) restartFullKey(i int) ([]byte, error) {
	e, err := r.decodeAt(int(r.restarts[i]), nil)
	if err != nil {
		return nil, err
	}
	if e.shared != 0 {
		return nil, status.Wrap(status.UnsupportedFormat, nil, "restart point has nonzero shared_len")
	}
	return e.key, nil
}

// bsearchRestart finds the largest restart index whose full key is <= target,
// defaulting to 0 when none qualifies.
func (r *Reader) bsearchRestart(target []byte) (int, error) {
	lo, hi := 0, len(r.restarts)-1
	best := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		key, err := r.restartFullKey(mid)
		if err != nil {
			return 0, err
		}
		if r.cmp(key, target) <= 0 {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best, nil
}

// Get returns the first record with key >= target (lower bound), or
// status.ErrNotFound if every key in the block is less than target.
func (r *Reader) Get(target []byte) (key, value []byte, err error) {
	if len(r.restarts) == 0 {
		return nil, nil, status.ErrNotFound
	}

	restartIdx, err := r.bsearchRestart(target)
	if err != nil {
		return nil, nil, err
	}

	off := int(r.restarts[restartIdx])
	var prevKey []byte
	for i := 0; i < RestartInterval && off < r.dataLen; i++ {
		e, err := r.decodeAt(off, prevKey)
		if err != nil {
			return nil, nil, err
		}
		if r.cmp(e.key, target) >= 0 {
			return e.key, e.value, nil
		}
		prevKey = e.key
		off = e.next
	}

	// Walked a full restart run without a match; probe the next restart's
	// full key directly, per the spec's lower-bound fallback.
	if restartIdx+1 < len(r.restarts) {
		e, err := r.decodeAt(int(r.restarts[restartIdx+1]), nil)
		if err != nil {
			return nil, nil, err
		}
		if r.cmp(e.key, target) >= 0 {
			return e.key, e.value, nil
		}
	}

	return nil, nil, status.ErrNotFound
}

// NumRestarts reports how many restart points the block has (0 for an empty block).
func (r *Reader) NumRestarts() int { return len(r.restarts) }
