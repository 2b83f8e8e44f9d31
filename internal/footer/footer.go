// Package footer implements the fixed-size trailer every SSTable file ends
// with: the handles locating the meta-index and index blocks.
package footer

import (
	"encoding/binary"

	"github.com/lsmcore/coredb/internal/status"
)

// Size is the footer's fixed on-disk width: two 8-byte handles plus a 2-byte magic.
const Size = 2*handleSize + 2

const handleSize = 8

var magic = [2]byte{0x12, 0x34}

// Handle locates a block within the SSTable file.
type Handle struct {
	Offset uint32
	Size   uint32
}

// Encode writes the handle's 8-byte little-endian representation.
func (h Handle) Encode() []byte {
	b := make([]byte, handleSize)
	binary.LittleEndian.PutUint32(b[0:], h.Offset)
	binary.LittleEndian.PutUint32(b[4:], h.Size)
	return b
}

// DecodeHandle parses an 8-byte handle. b must be exactly 8 bytes.
func DecodeHandle(b []byte) (Handle, error) {
	if len(b) != handleSize {
		return Handle{}, status.Wrap(status.UnsupportedFormat, nil, "block handle must be 8 bytes")
	}
	return Handle{
		Offset: binary.LittleEndian.Uint32(b[0:4]),
		Size:   binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}

// Footer is the trailing 18 bytes of every SSTable file.
type Footer struct {
	MetaHandle  Handle
	IndexHandle Handle
}

// Encode serializes the footer to its fixed 18-byte representation.
func (f Footer) Encode() []byte {
	out := make([]byte, 0, Size)
	out = append(out, f.MetaHandle.Encode()...)
	out = append(out, f.IndexHandle.Encode()...)
	out = append(out, magic[:]...)
	return out
}

// Decode parses a footer from its trailing 18 bytes, rejecting any length
// other than Size or a magic mismatch with status.ErrUnsupportedFormat.
func Decode(b []byte) (Footer, error) {
	if len(b) != Size {
		return Footer{}, status.Wrap(status.UnsupportedFormat, nil, "footer must be 18 bytes")
	}
	if b[Size-2] != magic[0] || b[Size-1] != magic[1] {
		return Footer{}, status.Wrap(status.UnsupportedFormat, nil, "footer magic mismatch")
	}
	meta, err := DecodeHandle(b[0:handleSize])
	if err != nil {
		return Footer{}, err
	}
	index, err := DecodeHandle(b[handleSize : 2*handleSize])
	if err != nil {
		return Footer{}, err
	}
	return Footer{MetaHandle: meta, IndexHandle: index}, nil
}
