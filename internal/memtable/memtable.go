// Package memtable implements the engine's in-memory write buffer: a skip
// list ordered by internal key, optionally tee'd through a write-ahead log,
// that renders itself into an SSTable when frozen by the (out-of-scope)
// orchestrator.
package memtable

import (
	"sync"

	"github.com/lsmcore/coredb/internal/keys"
	"github.com/lsmcore/coredb/internal/sstable"
	"github.com/lsmcore/coredb/internal/status"
	"github.com/lsmcore/coredb/internal/wal"
)

// Memtable is an ordered, in-memory (internalKey -> value) map, guarded by
// an RWMutex so one writer and many concurrent readers can share it.
type Memtable struct {
	mu         sync.RWMutex
	sl         *skipList
	bytes      int
	wal        *wal.Writer
	syncWrites bool
}

// New returns an empty memtable. syncWrites controls whether PutTeeWAL
// fsyncs the WAL after every record (Options.SyncWrites in the engine).
func New(syncWrites bool) *Memtable {
	return &Memtable{sl: newSkipList(keys.CompareInternal), syncWrites: syncWrites}
}

// AttachWAL associates w with this memtable. A memtable exclusively owns its
// WAL for its lifetime; attaching replaces any previous association without
// closing it (the caller is responsible for that).
func (m *Memtable) AttachWAL(w *wal.Writer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wal = w
}

// Put inserts or overwrites internalKey's value directly, bypassing the WAL
// (used by recovery replay, which is reconstructing state the WAL already
// durably recorded). A DELETE-typed key always stores an empty value,
// regardless of what the caller passed.
func (m *Memtable) Put(internalKey, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(internalKey, value)
}

func (m *Memtable) putLocked(internalKey, value []byte) {
	if _, _, typ, err := keys.DecodeInternal(internalKey); err == nil && typ == keys.TypeDelete {
		value = nil
	}
	oldBytes, existed := m.sl.put(internalKey, value)
	m.bytes += len(internalKey) + len(value)
	if existed {
		m.bytes -= oldBytes
	}
}

// PutTeeWAL durably records internalKey/value to the attached WAL before
// applying it to the in-memory skip list, so a crash between the two never
// loses an acknowledged write: AddRecord, then Sync (if configured), then
// Put. A failure at any step returns that error without mutating the skip
// list, so the memtable's state never runs ahead of its WAL.
func (m *Memtable) PutTeeWAL(internalKey, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.wal == nil {
		return status.ErrDBClosed
	}

	if err := m.wal.AddRecord(wal.EncodePayload(internalKey, value)); err != nil {
		return err
	}
	if m.syncWrites {
		if err := m.wal.Sync(); err != nil {
			return err
		}
	}

	m.putLocked(internalKey, value)
	return nil
}

// Get looks up userKey as of snapshotSeq. A DELETE tombstone at or below
// snapshotSeq shadows any older PUT and is reported as not-found.
func (m *Memtable) Get(userKey []byte, snapshotSeq uint64) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	probe := keys.LookupProbe(userKey, snapshotSeq)
	rk, rv, ok := m.sl.seekGE(probe)
	if !ok {
		return nil, false
	}
	return keys.SaveIfUserKeyMatches(rk, rv, probe)
}

// ForEach iterates every record in ascending internal-key order. Held under
// the read lock for the duration of the call, so it observes a single
// consistent snapshot even under concurrent writers.
func (m *Memtable) ForEach(fn func(internalKey, value []byte) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.sl.forEach(fn)
}

// BuildSSTable streams every record, in order, through a fresh SSTable
// writer and returns the resulting file metadata.
func (m *Memtable) BuildSSTable(dbDir string, opts sstable.Options) (sstable.FileMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, err := sstable.NewWriter(dbDir, opts)
	if err != nil {
		return sstable.FileMetadata{}, err
	}

	var addErr error
	m.sl.forEach(func(key, value []byte) bool {
		if addErr = w.Add(key, value); addErr != nil {
			return false
		}
		return true
	})
	if addErr != nil {
		return sstable.FileMetadata{}, addErr
	}
	return w.Finish()
}

// DropWAL flushes, fsyncs, closes, and unlinks the attached WAL. Subsequent
// PutTeeWAL calls fail with status.ErrDBClosed until AttachWAL is called again.
func (m *Memtable) DropWAL() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.wal == nil {
		return nil
	}
	if err := m.wal.Sync(); err != nil {
		return err
	}
	if err := m.wal.Drop(); err != nil {
		return err
	}
	m.wal = nil
	return nil
}

// Size returns the cumulative byte footprint (keys + values) of every
// record currently held.
func (m *Memtable) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bytes
}

// Empty reports whether any record is present.
func (m *Memtable) Empty() bool {
	return m.Size() == 0
}
