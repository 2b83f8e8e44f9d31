package wal

import (
	"encoding/binary"

	"github.com/lsmcore/coredb/internal/status"
)

// EncodePayload builds a WAL record payload from an internal key and value:
// a 4-byte little-endian internal-key length, then the internal key, then
// the value. The reference implementation's matching pair (EncodeKVPair /
// DecodeKVPair) concatenated internal key and value with nothing recording
// where one ends and the other begins — DecodeKVPair's body was left empty.
// The length prefix here is what makes DecodePayload well-defined.
func EncodePayload(internalKey, value []byte) []byte {
	out := make([]byte, 4+len(internalKey)+len(value))
	binary.LittleEndian.PutUint32(out, uint32(len(internalKey)))
	n := copy(out[4:], internalKey)
	copy(out[4+n:], value)
	return out
}

// DecodePayload splits a WAL record payload back into its internal key and value.
func DecodePayload(payload []byte) (internalKey, value []byte, err error) {
	if len(payload) < 4 {
		return nil, nil, status.ErrBadRecord
	}
	ikLen := int(binary.LittleEndian.Uint32(payload))
	if ikLen < 0 || 4+ikLen > len(payload) {
		return nil, nil, status.ErrBadRecord
	}
	return payload[4 : 4+ikLen], payload[4+ikLen:], nil
}
