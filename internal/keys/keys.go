// Package keys implements the internal-key codec: the wrapping of a user key
// with a sequence number and operation tag that gives the engine its total
// order, plus the comparator every other component sorts by.
package keys

import (
	"bytes"
	"encoding/binary"

	"github.com/lsmcore/coredb/internal/status"
)

// KeyType tags an internal key as a live value or a tombstone.
type KeyType uint8

const (
	TypePut KeyType = iota
	TypeDelete
)

// trailerLen is the width of the seq+type suffix appended to every user key.
const trailerLen = 8 + 1

// EncodeInternal concatenates userKey, seq (little-endian, 8 bytes) and typ
// (1 byte) into the on-disk internal-key representation.
func EncodeInternal(userKey []byte, seq uint64, typ KeyType) []byte {
	out := make([]byte, len(userKey)+trailerLen)
	n := copy(out, userKey)
	binary.LittleEndian.PutUint64(out[n:], seq)
	out[n+8] = byte(typ)
	return out
}

// DecodeInternal splits an internal key back into its three parts. It fails
// only when b is shorter than the fixed trailer.
func DecodeInternal(b []byte) (userKey []byte, seq uint64, typ KeyType, err error) {
	if len(b) < trailerLen {
		return nil, 0, 0, status.Wrap(status.BadRecord, nil, "internal key shorter than trailer")
	}
	split := len(b) - trailerLen
	userKey = b[:split]
	seq = binary.LittleEndian.Uint64(b[split : split+8])
	typ = KeyType(b[split+8])
	return userKey, seq, typ, nil
}

// UserKeyOf returns just the user-key prefix of an internal key, without
// validating the trailer length as strictly as DecodeInternal (callers that
// already trust b's shape, e.g. inside a hot comparator, use this).
func UserKeyOf(b []byte) []byte {
	if len(b) < trailerLen {
		return b
	}
	return b[:len(b)-trailerLen]
}

func seqOf(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b[len(b)-trailerLen : len(b)-1])
}

func typeOf(b []byte) KeyType {
	return KeyType(b[len(b)-1])
}

// CompareUserKeyOfInternal compares only the user-key prefixes of two internal keys.
func CompareUserKeyOfInternal(a, b []byte) int {
	return bytes.Compare(UserKeyOf(a), UserKeyOf(b))
}

// CompareInternal implements the total order over internal keys: ascending by
// user key; for equal user keys, descending by seq (newer first); for equal
// (user key, seq), DELETE sorts before PUT.
func CompareInternal(a, b []byte) int {
	if c := CompareUserKeyOfInternal(a, b); c != 0 {
		return c
	}
	seqA, seqB := seqOf(a), seqOf(b)
	if seqA == seqB {
		// DELETE=1, PUT=0; DELETE must sort first, so type(a)-type(b) is negated.
		return int(typeOf(b)) - int(typeOf(a))
	}
	if seqA > seqB {
		return -1
	}
	return 1
}

// MaxSeq is the sequence-number sentinel used to build lower-bound probes: no
// real write is ever assigned this sequence number.
const MaxSeq = ^uint64(0)

// LookupProbe returns the internal-key lower-bound probe for reading userKey
// as of snapshotSeq: the first entry >= this probe (under CompareInternal) is
// the newest version of userKey with seq <= snapshotSeq. type=DELETE so that
// a tombstone recorded at exactly snapshotSeq is never skipped past in favor
// of an older PUT at the same sequence.
func LookupProbe(userKey []byte, snapshotSeq uint64) []byte {
	return EncodeInternal(userKey, snapshotSeq, TypeDelete)
}

// MinInternalFor returns the smallest internal key possible for userKey under
// CompareInternal. Because higher sequence numbers sort first and DELETE
// sorts before PUT at equal sequence, that is seq=MaxSeq, type=DELETE, not
// seq=0 — this key sorts before every real version of userKey, so it doubles
// as the probe for an index block (which entry's block might hold userKey)
// and, via SaveIfUserKeyMatches, for the newest-version point lookup itself.
func MinInternalFor(userKey []byte) []byte {
	return LookupProbe(userKey, MaxSeq)
}

// SaveIfUserKeyMatches returns rv, true iff rk's user-key prefix equals
// target's user-key prefix and rk is a PUT; it reports false for a DELETE
// tombstone or a user-key mismatch.
func SaveIfUserKeyMatches(rk, rv, target []byte) ([]byte, bool) {
	if CompareUserKeyOfInternal(rk, target) != 0 {
		return nil, false
	}
	if typeOf(rk) == TypeDelete {
		return nil, false
	}
	out := make([]byte, len(rv))
	copy(out, rv)
	return out, true
}
