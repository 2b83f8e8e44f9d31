package sstable

import (
	"encoding/binary"
	"path/filepath"
	"strings"

	"github.com/lsmcore/coredb/internal/block"
	"github.com/lsmcore/coredb/internal/blockcache"
	"github.com/lsmcore/coredb/internal/filter"
	"github.com/lsmcore/coredb/internal/footer"
	"github.com/lsmcore/coredb/internal/keys"
	"github.com/lsmcore/coredb/internal/status"
	"github.com/lsmcore/coredb/internal/vfs"
)

// Reader opens a finished SSTable file for point lookups. The file is mapped
// once on Open; the index and filter blocks are parsed eagerly, data blocks
// are decoded lazily (and cached) on demand.
type Reader struct {
	mmap   *vfs.MmapReader
	index  *block.Reader
	filter *filter.Reader
	id     string
}

// OpenReader maps path and parses its footer, index, and filter blocks.
func OpenReader(path string) (*Reader, error) {
	m, err := vfs.OpenMmapReader(path)
	if err != nil {
		return nil, err
	}

	size := m.Size()
	if size < footer.Size {
		m.Close()
		return nil, status.Wrap(status.FooterBlockError, nil, "sstable file shorter than footer")
	}
	footerBytes, err := m.ReadRange(int64(size-footer.Size), footer.Size)
	if err != nil {
		m.Close()
		return nil, err
	}
	ft, err := footer.Decode(footerBytes)
	if err != nil {
		m.Close()
		return nil, err
	}

	metaBytes, err := m.ReadRange(int64(ft.MetaHandle.Offset), int(ft.MetaHandle.Size))
	if err != nil {
		m.Close()
		return nil, err
	}
	metaReader, err := block.NewReader(metaBytes, bytesCompare)
	if err != nil {
		m.Close()
		return nil, err
	}
	_, filterHandleBytes, err := metaReader.Get(metaIndexFilterKey)
	if err != nil {
		m.Close()
		return nil, err
	}
	filterHandle, err := footer.DecodeHandle(filterHandleBytes)
	if err != nil {
		m.Close()
		return nil, err
	}
	filterBytes, err := m.ReadRange(int64(filterHandle.Offset), int(filterHandle.Size))
	if err != nil {
		m.Close()
		return nil, err
	}
	filterReader, err := filter.NewReader(filterBytes)
	if err != nil {
		m.Close()
		return nil, err
	}

	indexBytes, err := m.ReadRange(int64(ft.IndexHandle.Offset), int(ft.IndexHandle.Size))
	if err != nil {
		m.Close()
		return nil, err
	}
	indexReader, err := block.NewReader(indexBytes, keys.CompareInternal)
	if err != nil {
		m.Close()
		return nil, err
	}

	id := strings.TrimSuffix(filepath.Base(path), ".sst")
	return &Reader{mmap: m, index: indexReader, filter: filterReader, id: id}, nil
}

// ID returns the file's SHA-256 hex identity, used as the block cache's
// SSTable discriminator.
func (r *Reader) ID() string { return r.id }

// Close unmaps the underlying file.
func (r *Reader) Close() error { return r.mmap.Close() }

// Get looks up userKey as of snapshotSeq, consulting cache for the decoded
// data block and populating it on a miss.
func (r *Reader) Get(userKey []byte, snapshotSeq uint64, cache blockcache.Interface) ([]byte, bool, error) {
	probe := keys.LookupProbe(userKey, snapshotSeq)

	_, indexValue, err := r.index.Get(probe)
	if err != nil {
		if status.Is(err, status.NotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(indexValue) != 12 {
		return nil, false, status.Wrap(status.UnsupportedFormat, nil, "index value must be 12 bytes")
	}
	handle, err := footer.DecodeHandle(indexValue[:8])
	if err != nil {
		return nil, false, err
	}
	blockIndex := int(binary.LittleEndian.Uint32(indexValue[8:]))

	if !r.filter.MayContain(blockIndex, userKey) {
		return nil, false, nil
	}

	dataBlock, err := r.dataBlock(handle, cache)
	if err != nil {
		return nil, false, err
	}

	rk, rv, err := dataBlock.Get(probe)
	if err != nil {
		if status.Is(err, status.NotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	value, ok := keys.SaveIfUserKeyMatches(rk, rv, probe)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (r *Reader) dataBlock(handle footer.Handle, cache blockcache.Interface) (*block.Reader, error) {
	cacheHandle := blockcache.Handle{SSTableID: r.id, BlockOffset: handle.Offset}
	if cache != nil {
		if br, ok := cache.Get(cacheHandle); ok {
			return br, nil
		}
	}

	raw, err := r.mmap.ReadRange(int64(handle.Offset), int(handle.Size))
	if err != nil {
		return nil, err
	}
	br, err := block.NewReader(raw, keys.CompareInternal)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		cache.Put(cacheHandle, br)
	}
	return br, nil
}
