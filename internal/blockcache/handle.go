package blockcache

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Handle identifies one cached block: the SSTable it belongs to (by file
// identity, §4.5) and the block's byte offset within that file.
type Handle struct {
	SSTableID   string
	BlockOffset uint32
}

// Hash returns a 64-bit digest of the handle, for callers that want a
// precomputed key (e.g. a future sharded cache) rather than relying on Go's
// built-in comparison of the Handle struct, which the in-process cache uses
// directly.
func (h Handle) Hash() uint64 {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.WriteString(h.SSTableID)
	var off [4]byte
	binary.LittleEndian.PutUint32(off[:], h.BlockOffset)
	_, _ = d.Write(off[:])
	return d.Sum64()
}
