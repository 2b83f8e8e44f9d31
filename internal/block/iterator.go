package block

// Iterator walks a block's records in ascending order. It is a value type
// over interior state; a zero-value Iterator is invalid until obtained from
// Reader.NewIterator.
type Iterator struct {
	r       *Reader
	offset  int // byte offset of the current (already-fetched) entry, or -1
	prevKey []byte
	key     []byte
	value   []byte
	valid   bool
	atEnd   bool
}

// NewIterator returns an iterator positioned before the first record.
func (r *Reader) NewIterator() *Iterator {
	it := &Iterator{r: r, offset: -1}
	if len(r.restarts) == 0 {
		it.atEnd = true
	}
	return it
}

// Next advances to the next record and fetches its key/value, which Key and
// Value then return. Next past the last record moves the iterator to the
// at-end state.
func (it *Iterator) Next() {
	if it.atEnd {
		return
	}
	if !it.valid {
		it.offset = 0
		it.fetch()
		return
	}
	nextOff := it.nextOffset()
	if nextOff >= it.r.dataLen {
		it.valid = false
		it.atEnd = true
		return
	}
	it.offset = nextOff
	it.fetch()
}

// nextOffset returns the byte offset following the currently fetched entry,
// decoding it again if needed (cheap: block entries are small).
func (it *Iterator) nextOffset() int {
	e, err := it.r.decodeAt(it.offset, it.prevKeyFor(it.offset))
	if err != nil {
		return it.r.dataLen
	}
	return e.next
}

// prevKeyFor returns the full key of the preceding record, needed to expand
// the shared-prefix suffix at off; nil when off is itself a restart point.
func (it *Iterator) prevKeyFor(off int) []byte {
	for _, ro := range it.r.restarts {
		if int(ro) == off {
			return nil
		}
	}
	return it.key
}

// fetch lazily materializes the key/value at the iterator's current byte
// offset. Calling it multiple times at the same position is idempotent.
func (it *Iterator) fetch() {
	e, err := it.r.decodeAt(it.offset, it.prevKeyFor(it.offset))
	if err != nil {
		it.valid = false
		it.atEnd = true
		return
	}
	it.key = e.key
	it.value = e.value
	it.prevKey = e.key
	it.valid = true
}

// Valid reports whether the iterator currently sits on a record.
func (it *Iterator) Valid() bool { return it.valid }

// AtEnd reports whether the iterator has been advanced past the last record.
func (it *Iterator) AtEnd() bool { return it.atEnd }

// Key returns the current record's key. Only valid when Valid() is true.
func (it *Iterator) Key() []byte { return it.key }

// Value returns the current record's value. Only valid when Valid() is true.
func (it *Iterator) Value() []byte { return it.value }

// EqualPosition reports whether it and other iterate the same block and sit
// at the same byte offset — the Go stand-in for the source's iterator
// equality operator, which required identical container identity too.
func (it *Iterator) EqualPosition(other *Iterator) bool {
	return it.r == other.r && it.offset == other.offset && it.valid == other.valid && it.atEnd == other.atEnd
}
