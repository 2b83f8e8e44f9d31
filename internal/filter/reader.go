package filter

import (
	"encoding/binary"

	"github.com/lsmcore/coredb/internal/status"
)

// Reader parses a finished filter block and answers per-block membership
// queries against it.
type Reader struct {
	data         []byte
	offsets      []uint32 // one per data block, byte offset into data of that block's bitmap
	offsetsBegin uint32
	algo         Algorithm
}

// NewReader parses filterBlock, validating its trailer and dispatching on the
// algorithm info tag to build the matching Algorithm. Only "bf:" (Bloom) is
// recognized today.
func NewReader(filterBlock []byte) (*Reader, error) {
	const u32 = 4
	if len(filterBlock) < u32 {
		return nil, status.Wrap(status.FilterBlockError, nil, "filter block shorter than info length")
	}

	infoLenOffset := len(filterBlock) - u32
	infoLen := int(binary.LittleEndian.Uint32(filterBlock[infoLenOffset:]))
	if infoLen <= 0 || infoLen > infoLenOffset {
		return nil, status.Wrap(status.FilterBlockError, nil, "filter block info length out of range")
	}

	infoOffset := infoLenOffset - infoLen
	info := filterBlock[infoOffset:infoLenOffset]
	algo, err := parseAlgorithm(info)
	if err != nil {
		return nil, err
	}

	if infoOffset < u32 {
		return nil, status.Wrap(status.FilterBlockError, nil, "filter block missing filter count")
	}
	countOffset := infoOffset - u32
	count := int(binary.LittleEndian.Uint32(filterBlock[countOffset:]))

	if countOffset < u32 {
		return nil, status.Wrap(status.FilterBlockError, nil, "filter block missing offsets pointer")
	}
	offsetsBeginOffset := countOffset - u32
	offsetsBegin := binary.LittleEndian.Uint32(filterBlock[offsetsBeginOffset:])

	if int(offsetsBegin)+count*u32 > offsetsBeginOffset || count < 0 {
		return nil, status.Wrap(status.FilterBlockError, nil, "filter block offsets array out of range")
	}

	offsets := make([]uint32, count)
	for i := range offsets {
		off := int(offsetsBegin) + i*u32
		offsets[i] = binary.LittleEndian.Uint32(filterBlock[off : off+u32])
	}
	if count > 0 && offsets[0] != 0 {
		return nil, status.Wrap(status.UnsupportedFormat, nil, "filter 0 must start at offset 0")
	}

	return &Reader{data: filterBlock, offsets: offsets, offsetsBegin: offsetsBegin, algo: algo}, nil
}

func parseAlgorithm(info []byte) (Algorithm, error) {
	if len(info) < 3 || info[0] != 'b' || info[1] != 'f' || info[2] != ':' {
		return nil, status.Wrap(status.FilterBlockError, nil, "unrecognized filter algorithm tag")
	}
	if len(info) < 3+4 {
		return nil, status.Wrap(status.FilterBlockError, nil, "bloom filter info truncated")
	}
	bitsPerKey := int(binary.LittleEndian.Uint32(info[3:7]))
	return NewBloomFilter(bitsPerKey), nil
}

// MayContain reports whether key might be present in the data block at
// blockIndex. An out-of-range blockIndex returns false, never an error.
func (r *Reader) MayContain(blockIndex int, key []byte) bool {
	if blockIndex < 0 || blockIndex >= len(r.offsets) {
		return false
	}
	start := r.offsets[blockIndex]
	end := r.offsetsBegin
	if blockIndex+1 < len(r.offsets) {
		end = r.offsets[blockIndex+1]
	}
	if start > end || int(end) > len(r.data) {
		return false
	}
	return r.algo.MayContain(key, r.data[start:end])
}

// NumFilters reports how many per-block bitmaps the filter block holds.
func (r *Reader) NumFilters() int { return len(r.offsets) }
