package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lsmcore/coredb/internal/engutil/options"
	"github.com/lsmcore/coredb/internal/keys"
	"github.com/lsmcore/coredb/internal/memtable"
	"github.com/lsmcore/coredb/internal/recovery"
	"github.com/lsmcore/coredb/internal/sstable"
	"github.com/lsmcore/coredb/internal/vfs"
	"github.com/lsmcore/coredb/internal/wal"
)

// main demonstrates the write -> WAL -> memtable -> SSTable pipeline this
// module implements. The level manifest, compaction, and revision machinery
// that would turn this into a full database are out of this module's scope.
func main() {
	dbDir := "./coredb-demo"
	opts := options.New(options.WithSyncWrites(true))

	if err := run(dbDir, opts); err != nil {
		fmt.Fprintln(os.Stderr, "coredb:", err)
		os.Exit(1)
	}
}

func run(dbDir string, opts options.Options) error {
	walDir := filepath.Join(dbDir, "wal")
	if err := vfs.EnsureDirectory(walDir); err != nil {
		return err
	}

	mt := memtable.New(opts.SyncWrites)
	if err := recovery.ReplayWAL(walDir, func(internalKey, value []byte) error {
		mt.Put(internalKey, value)
		return nil
	}); err != nil {
		return err
	}

	w, err := wal.Create(filepath.Join(walDir, "000000001.wal"))
	if err != nil {
		return err
	}
	mt.AttachWAL(w)

	seq := uint64(1)
	for _, kv := range [][2]string{{"hello", "world"}, {"foo", "bar"}} {
		ik := keys.EncodeInternal([]byte(kv[0]), seq, keys.TypePut)
		if err := mt.PutTeeWAL(ik, []byte(kv[1])); err != nil {
			return err
		}
		seq++
	}

	if got, ok := mt.Get([]byte("hello"), keys.MaxSeq); ok {
		fmt.Printf("hello = %s\n", got)
	}

	meta, err := mt.BuildSSTable(dbDir, sstable.Options{BitsPerKey: opts.BitsPerKey})
	if err != nil {
		return err
	}
	fmt.Printf("flushed %d keys to %s\n", meta.NumKeys, meta.Path)

	return mt.DropWAL()
}
