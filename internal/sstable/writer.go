// Package sstable assembles the engine's on-disk sorted-string table: data
// blocks, filter block, meta-index block, index block, and footer, composed
// from internal/block, internal/filter, and internal/footer, written through
// internal/vfs with a SHA-256 file identity.
package sstable

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"path/filepath"

	"github.com/lsmcore/coredb/internal/block"
	"github.com/lsmcore/coredb/internal/filter"
	"github.com/lsmcore/coredb/internal/footer"
	"github.com/lsmcore/coredb/internal/keys"
	"github.com/lsmcore/coredb/internal/status"
	"github.com/lsmcore/coredb/internal/vfs"
)

// Options configures the writer. Zero values fall back to the defaults noted
// per field.
type Options struct {
	// BitsPerKey configures the Bloom filter (default 10, ~1% false-positive rate).
	BitsPerKey int
	// FlushThreshold is the data-block size (bytes) that triggers a flush (default 4KiB).
	FlushThreshold int
}

func (o Options) bitsPerKey() int {
	if o.BitsPerKey <= 0 {
		return 10
	}
	return o.BitsPerKey
}

func (o Options) flushThreshold() int {
	if o.FlushThreshold <= 0 {
		return 4 << 10
	}
	return o.FlushThreshold
}

// metaIndexFilterKey is the sole entry of the meta-index block: the name
// under which the filter block's handle is stored.
var metaIndexFilterKey = []byte("filter.bloom")

// FileMetadata describes a finished SSTable file, returned by Writer.Finish
// and Memtable.BuildSSTable. Ordered by MinKey (the file's min internal key).
type FileMetadata struct {
	Path     string
	SHA256Hex string
	SizeBytes int64
	NumKeys   int
	Level     int
	MaxSeq    uint64
	MinKey    []byte
	MaxKey    []byte
}

// Less orders file metadata by MinKey, for level manifests that keep files sorted.
func (m FileMetadata) Less(other FileMetadata) bool {
	return keys.CompareInternal(m.MinKey, other.MinKey) < 0
}

// Writer streams internal-key/value pairs, in ascending order, into a new
// SSTable file.
type Writer struct {
	dbDir string
	opts  Options

	tmp *vfs.TempFile

	dataBlock    *block.Writer
	indexBlock   *block.Writer
	filterWriter *filter.Writer

	offset     int
	numBlocks  int
	digest     hash.Hash
	firstKey   []byte
	lastKey    []byte
	maxSeq     uint64
	numKeys    int
	hasEntries bool
}

// NewWriter opens a fresh temp file under dbDir/sst and returns a writer
// ready to accept Add calls.
func NewWriter(dbDir string, opts Options) (*Writer, error) {
	sstDir := filepath.Join(dbDir, "sst")
	if err := vfs.EnsureDirectory(sstDir); err != nil {
		return nil, err
	}
	tmp, err := vfs.OpenTempFile(sstDir, ".sst")
	if err != nil {
		return nil, err
	}
	return &Writer{
		dbDir:        dbDir,
		opts:         opts,
		tmp:          tmp,
		dataBlock:    block.NewWriter(),
		indexBlock:   block.NewWriter(),
		filterWriter: filter.NewWriter(filter.NewBloomFilter(opts.bitsPerKey())),
		digest:       sha256.New(),
	}, nil
}

// Add appends one internal-key/value pair. Keys must arrive in ascending
// order per keys.CompareInternal; the underlying block writer enforces this.
func (w *Writer) Add(internalKey, value []byte) error {
	if !w.hasEntries {
		w.firstKey = append([]byte(nil), internalKey...)
		w.hasEntries = true
	}
	if err := w.dataBlock.Add(internalKey, value, keys.CompareInternal); err != nil {
		return err
	}
	w.filterWriter.Update(keys.UserKeyOf(internalKey))
	w.lastKey = append(w.lastKey[:0], internalKey...)
	w.numKeys++

	if _, seq, _, err := keys.DecodeInternal(internalKey); err == nil && seq != keys.MaxSeq && seq > w.maxSeq {
		w.maxSeq = seq
	}

	if w.dataBlock.EstimatedSize() > w.opts.flushThreshold() {
		return w.flushDataBlock()
	}
	return nil
}

// flushDataBlock finalizes the current data block (if non-empty), writes it,
// flushes the filter writer's pending keys into the matching bitmap, and
// stages an index entry pointing at it.
func (w *Writer) flushDataBlock() error {
	if w.dataBlock.Empty() {
		return nil
	}
	handle, err := w.writeRaw(w.dataBlock.Finish())
	if err != nil {
		return err
	}
	w.filterWriter.Flush()

	indexValue := make([]byte, 12)
	copy(indexValue, handle.Encode())
	binary.LittleEndian.PutUint32(indexValue[8:], uint32(w.numBlocks))
	if err := w.indexBlock.Add(w.lastKey, indexValue, keys.CompareInternal); err != nil {
		return err
	}

	w.numBlocks++
	w.dataBlock.Reset()
	return nil
}

// writeRaw appends data to the temp file, folds it into the running SHA-256
// digest, and returns the handle describing where it landed.
func (w *Writer) writeRaw(data []byte) (footer.Handle, error) {
	if err := w.tmp.Append(data); err != nil {
		return footer.Handle{}, err
	}
	w.digest.Write(data)
	h := footer.Handle{Offset: uint32(w.offset), Size: uint32(len(data))}
	w.offset += len(data)
	return h, nil
}

// Finish flushes any trailing partial data block, writes the filter, the
// meta-index, the index, and the footer, computes the file's SHA-256 identity,
// and atomically publishes the temp file to <dbDir>/sst/<hex>.sst.
func (w *Writer) Finish() (FileMetadata, error) {
	if err := w.flushDataBlock(); err != nil {
		return FileMetadata{}, err
	}

	filterHandle, err := w.writeRaw(w.filterWriter.Finish())
	if err != nil {
		return FileMetadata{}, err
	}

	metaBlock := block.NewWriter()
	if err := metaBlock.Add(metaIndexFilterKey, filterHandle.Encode(), bytesCompare); err != nil {
		return FileMetadata{}, err
	}
	metaHandle, err := w.writeRaw(metaBlock.Finish())
	if err != nil {
		return FileMetadata{}, err
	}

	indexHandle, err := w.writeRaw(w.indexBlock.Finish())
	if err != nil {
		return FileMetadata{}, err
	}

	ft := footer.Footer{MetaHandle: metaHandle, IndexHandle: indexHandle}
	footerBytes := ft.Encode()
	if err := w.tmp.Append(footerBytes); err != nil {
		return FileMetadata{}, status.Wrap(status.IOError, err, "append footer")
	}
	w.digest.Write(footerBytes)
	w.offset += len(footerBytes)

	hexID := hex.EncodeToString(w.digest.Sum(nil))
	finalPath := filepath.Join(w.dbDir, "sst", hexID+".sst")
	if err := vfs.PublishAtomic(w.tmp, finalPath); err != nil {
		return FileMetadata{}, err
	}

	return FileMetadata{
		Path:      finalPath,
		SHA256Hex: hexID,
		SizeBytes: int64(w.offset),
		MaxSeq:    w.maxSeq,
		NumKeys:   w.numKeys,
		MinKey:    w.firstKey,
		MaxKey:    w.lastKey,
	}, nil
}

func bytesCompare(a, b []byte) int {
	switch {
	case string(a) < string(b):
		return -1
	case string(a) > string(b):
		return 1
	default:
		return 0
	}
}
