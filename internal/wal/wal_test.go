package wal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lsmcore/coredb/internal/status"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0000000001.wal")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	records := [][]byte{[]byte("first"), []byte("second"), []byte("")}
	for _, rec := range records {
		if err := w.AddRecord(rec); err != nil {
			t.Fatalf("AddRecord: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	for i, want := range records {
		got, err := r.ReadRecord()
		if err != nil {
			t.Fatalf("ReadRecord %d: %v", i, err)
		}
		if string(got) != string(want) {
			t.Fatalf("record %d = %q, want %q", i, got, want)
		}
	}

	if _, err := r.ReadRecord(); !status.Is(err, status.FileEOF) {
		t.Fatalf("expected ErrFileEOF at end of log, got %v", err)
	}
}

func TestReaderDetectsChecksumMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0000000002.wal")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.AddRecord([]byte("payload")); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Flip a byte inside the payload region (past the 12-byte header).
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	data[headerLen] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if _, err := r.ReadRecord(); !status.Is(err, status.ChecksumError) {
		t.Fatalf("expected ErrChecksum, got %v", err)
	}
}

func TestReaderDetectsTruncatedRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0000000003.wal")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.AddRecord([]byte("a full payload")); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	// Simulate a crash mid-append: drop the last few payload bytes.
	truncated := data[:len(data)-3]
	if err := os.WriteFile(path, truncated, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if _, err := r.ReadRecord(); !status.Is(err, status.FileEOF) {
		t.Fatalf("expected ErrFileEOF for truncated record, got %v", err)
	}
}

func TestDropUnlinksFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0000000004.wal")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.AddRecord([]byte("x")); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if err := w.Drop(); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file to be unlinked, stat err = %v", err)
	}
}

func TestBadRecordType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0000000005.wal")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.AddRecord([]byte("ok")); err != nil {
		t.Fatalf("AddRecord: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	data[4] = 0xFF // corrupt the type field
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if _, err := r.ReadRecord(); !status.Is(err, status.BadRecord) {
		t.Fatalf("expected ErrBadRecord, got %v", err)
	}
}
