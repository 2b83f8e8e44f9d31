package filter

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bitset"
)

// Algorithm is the pluggable membership test a filter block is built from.
// BloomFilter is the only implementation today, but the writer/reader framing
// never assumes Bloom specifically: a future ribbon or cuckoo filter plugs in
// by implementing the same three methods and tagging Info() distinctly.
type Algorithm interface {
	// KeysToBitmap builds one filter bitmap covering exactly these keys.
	KeysToBitmap(keys [][]byte) []byte
	// MayContain reports whether key might be a member of bitmap's key set.
	// False means definitely absent; true means maybe present.
	MayContain(key, bitmap []byte) bool
	// Info returns the tagged, self-describing algorithm parameters stored
	// once per filter block.
	Info() []byte
}

const (
	bloomSeed1 = 0xe2c6928a
	bloomSeed2 = 0xbaea8a8f
)

// BloomFilter implements Algorithm with a standard double-hashed Bloom filter.
type BloomFilter struct {
	bitsPerKey int
	k          int
}

// NewBloomFilter derives the number of hash functions from bitsPerKey via
// k = clamp(round(0.69*bitsPerKey), 1, 30), 0.69 being ln(2) rounded.
func NewBloomFilter(bitsPerKey int) *BloomFilter {
	k := int(float64(bitsPerKey)*0.69 + 0.5)
	if k < 1 {
		k = 1
	}
	if k > 30 {
		k = 30
	}
	return &BloomFilter{bitsPerKey: bitsPerKey, k: k}
}

// KeysToBitmap builds a single bitmap sized (len(keys)*bitsPerKey+7) bytes*8
// bits, rounded down to a whole number of bytes, and sets k bit positions per
// key via double hashing: h1 + j*h2 mod bitmapBits.
func (f *BloomFilter) KeysToBitmap(keys [][]byte) []byte {
	n := uint32(len(keys))
	bitmapBits := (n*uint32(f.bitsPerKey) + 7) * 8
	bitmapBytes := bitmapBits / 8

	bs := bitset.New(uint(bitmapBits))
	for _, key := range keys {
		h1 := murmur3x86_32(bloomSeed1, key)
		h2 := murmur3x86_32(bloomSeed2, key)
		for j := 0; j < f.k; j++ {
			pos := (h1 + uint32(j)*h2) % bitmapBits
			bs.Set(uint(pos))
		}
	}

	bitmap := make([]byte, bitmapBytes)
	for i := uint32(0); i < bitmapBits; i++ {
		if bs.Test(uint(i)) {
			bitmap[i/8] |= 1 << (i % 8)
		}
	}
	return bitmap
}

// MayContain tests key's k bit positions against bitmap directly, without
// reconstructing a bitset — the on-disk bitmap is already byte-addressable.
func (f *BloomFilter) MayContain(key, bitmap []byte) bool {
	bitmapBits := uint32(len(bitmap)) * 8
	if bitmapBits == 0 {
		return false
	}
	h1 := murmur3x86_32(bloomSeed1, key)
	h2 := murmur3x86_32(bloomSeed2, key)
	for j := 0; j < f.k; j++ {
		pos := (h1 + uint32(j)*h2) % bitmapBits
		if bitmap[pos/8]&(1<<(pos%8)) == 0 {
			return false
		}
	}
	return true
}

// Info returns "bf:" followed by the little-endian 4-byte bitsPerKey, the
// tagged algorithm description stored once per filter block.
func (f *BloomFilter) Info() []byte {
	out := make([]byte, 0, 7)
	out = append(out, 'b', 'f', ':')
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(f.bitsPerKey))
	return append(out, b[:]...)
}

// BitsPerKey returns the configured bits-per-key parameter.
func (f *BloomFilter) BitsPerKey() int { return f.bitsPerKey }
