// Package recovery provides the mechanical WAL-replay helper the
// orchestrator drives on database open; freeze/flush policy (which WAL
// generations to keep, when to checkpoint) stays out of scope here.
package recovery

import (
	"regexp"

	"github.com/lsmcore/coredb/internal/status"
	"github.com/lsmcore/coredb/internal/vfs"
	"github.com/lsmcore/coredb/internal/wal"
)

// walFilePattern matches the <db>/wal/<log_number>.wal naming convention.
var walFilePattern = regexp.MustCompile(`^(\d+)\.wal$`)

// ReplayWAL scans dir (a database's wal/ subdirectory) for WAL generations,
// orders them by log number, and replays every record from each file, in
// order, into applyFn. Each file's own end-of-log is not an error; that
// includes a truncated trailing record, which the WAL reader reports as
// status.ErrFileEOF. A record failing its checksum (status.ErrChecksum) ends
// the scan without error only on the newest (last) file; the same error on an
// earlier file is returned.
func ReplayWAL(dir string, applyFn func(internalKey, value []byte) error) error {
	files, err := vfs.ListNumbered(dir, walFilePattern)
	if err != nil {
		return err
	}

	for i, f := range files {
		isLast := i == len(files)-1
		if err := replayOne(f.Path, applyFn); err != nil {
			if isLast && status.Is(err, status.ChecksumError) {
				return nil
			}
			return err
		}
	}
	return nil
}

func replayOne(path string, applyFn func(internalKey, value []byte) error) error {
	r, err := wal.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		payload, err := r.ReadRecord()
		if status.Is(err, status.FileEOF) {
			return nil
		}
		if err != nil {
			return err
		}
		internalKey, value, err := wal.DecodePayload(payload)
		if err != nil {
			return err
		}
		if err := applyFn(internalKey, value); err != nil {
			return err
		}
	}
}
