package sstable

import (
	"fmt"
	"testing"

	"github.com/lsmcore/coredb/internal/blockcache"
	"github.com/lsmcore/coredb/internal/keys"
)

func buildSSTable(t *testing.T, dir string, n int) (FileMetadata, []string) {
	t.Helper()
	w, err := NewWriter(dir, Options{FlushThreshold: 200})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	var userKeys []string
	for i := 0; i < n; i++ {
		uk := fmt.Sprintf("key-%04d", i)
		userKeys = append(userKeys, uk)
		ik := keys.EncodeInternal([]byte(uk), uint64(i+1), keys.TypePut)
		if err := w.Add(ik, []byte(fmt.Sprintf("value-%d", i))); err != nil {
			t.Fatalf("Add(%s): %v", uk, err)
		}
	}
	meta, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return meta, userKeys
}

func TestWriterReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	meta, userKeys := buildSSTable(t, dir, 200)

	r, err := OpenReader(meta.Path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	cache := blockcache.NewCache(64)
	for i, uk := range userKeys {
		got, ok, err := r.Get([]byte(uk), keys.MaxSeq, cache)
		if err != nil {
			t.Fatalf("Get(%s): %v", uk, err)
		}
		if !ok {
			t.Fatalf("Get(%s): not found", uk)
		}
		want := fmt.Sprintf("value-%d", i)
		if string(got) != want {
			t.Fatalf("Get(%s) = %q, want %q", uk, got, want)
		}
	}
}

func TestReaderMissingKey(t *testing.T) {
	dir := t.TempDir()
	meta, _ := buildSSTable(t, dir, 50)

	r, err := OpenReader(meta.Path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	cache := blockcache.NewCache(16)
	_, ok, err := r.Get([]byte("does-not-exist"), keys.MaxSeq, cache)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected miss for absent key")
	}
}

func TestReaderSnapshotHidesNewerWrite(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, Options{})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	uk := []byte("shared")
	if err := w.Add(keys.EncodeInternal(uk, 5, keys.TypePut), []byte("v5")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := w.Add(keys.EncodeInternal(uk, 3, keys.TypePut), []byte("v3")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	meta, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r, err := OpenReader(meta.Path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	cache := blockcache.NewCache(4)
	got, ok, err := r.Get(uk, 4, cache)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || string(got) != "v3" {
		t.Fatalf("Get(seq=4) = (%q,%v), want (v3,true)", got, ok)
	}
}

func TestReaderTombstoneAtSnapshotHidesValue(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, Options{})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	uk := []byte("gone")
	if err := w.Add(keys.EncodeInternal(uk, 7, keys.TypeDelete), nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := w.Add(keys.EncodeInternal(uk, 2, keys.TypePut), []byte("old")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	meta, err := w.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	r, err := OpenReader(meta.Path)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	cache := blockcache.NewCache(4)
	_, ok, err := r.Get(uk, keys.MaxSeq, cache)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected tombstone to hide the value")
	}
}

func TestSSTableIdentityStableAcrossRebuilds(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	metaA, _ := buildSSTable(t, dirA, 30)
	metaB, _ := buildSSTable(t, dirB, 30)

	if metaA.SHA256Hex != metaB.SHA256Hex {
		t.Fatalf("identical content produced different identities: %s vs %s", metaA.SHA256Hex, metaB.SHA256Hex)
	}
}

func TestFileMetadataLess(t *testing.T) {
	a := FileMetadata{MinKey: keys.EncodeInternal([]byte("a"), 1, keys.TypePut)}
	b := FileMetadata{MinKey: keys.EncodeInternal([]byte("b"), 1, keys.TypePut)}
	if !a.Less(b) || b.Less(a) {
		t.Fatalf("expected a < b by MinKey")
	}
}
