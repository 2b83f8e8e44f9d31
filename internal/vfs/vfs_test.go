package vfs

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestWritableFileAppendAndClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")

	w, err := OpenWritableFile(path)
	if err != nil {
		t.Fatalf("OpenWritableFile: %v", err)
	}
	if err := w.Append([]byte("hello ")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Append([]byte("world")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}

func TestTempFilePublishAtomic(t *testing.T) {
	dir := t.TempDir()

	tmp, err := OpenTempFile(dir, ".sst")
	if err != nil {
		t.Fatalf("OpenTempFile: %v", err)
	}
	if err := tmp.Append([]byte("payload")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	final := filepath.Join(dir, "nested", "final.sst")
	if err := PublishAtomic(tmp, final); err != nil {
		t.Fatalf("PublishAtomic: %v", err)
	}

	got, err := os.ReadFile(final)
	if err != nil {
		t.Fatalf("ReadFile(final): %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("got %q, want payload", got)
	}
}

func TestSequentialReaderReadsWhatWasWritten(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seq.bin")

	w, err := OpenWritableFile(path)
	if err != nil {
		t.Fatalf("OpenWritableFile: %v", err)
	}
	if err := w.Append([]byte("abcdef")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenSequentialReader(path)
	if err != nil {
		t.Fatalf("OpenSequentialReader: %v", err)
	}
	defer r.Close()

	buf := make([]byte, 3)
	n, err := r.Read(buf)
	if err != nil || n != 3 || string(buf) != "abc" {
		t.Fatalf("first Read = (%d,%v,%q), want (3,nil,abc)", n, err, buf)
	}
	n, err = r.Read(buf)
	if err != nil || n != 3 || string(buf) != "def" {
		t.Fatalf("second Read = (%d,%v,%q), want (3,nil,def)", n, err, buf)
	}
}

func TestRandomAccessReaderReadAt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ra.bin")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := OpenRandomAccessReader(path)
	if err != nil {
		t.Fatalf("OpenRandomAccessReader: %v", err)
	}
	defer r.Close()

	buf := make([]byte, 4)
	if _, err := r.ReadAt(buf, 3); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(buf) != "3456" {
		t.Fatalf("got %q, want 3456", buf)
	}
}

func TestMmapReaderReadRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mm.bin")
	if err := os.WriteFile(path, []byte("the quick brown fox"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m, err := OpenMmapReader(path)
	if err != nil {
		t.Fatalf("OpenMmapReader: %v", err)
	}
	defer m.Close()

	if m.Size() != len("the quick brown fox") {
		t.Fatalf("Size() = %d, want %d", m.Size(), len("the quick brown fox"))
	}
	got, err := m.ReadRange(4, 5)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if string(got) != "quick" {
		t.Fatalf("got %q, want quick", got)
	}

	if _, err := m.ReadRange(int64(m.Size()-1), 10); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestListNumbered(t *testing.T) {
	dir := t.TempDir()
	pattern := regexp.MustCompile(`^wal-(\d+)\.log$`)

	for _, name := range []string{"wal-003.log", "wal-001.log", "wal-002.log", "ignored.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}

	got, err := ListNumbered(dir, pattern)
	if err != nil {
		t.Fatalf("ListNumbered: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	for i, want := range []int64{1, 2, 3} {
		if got[i].Number != want {
			t.Fatalf("entry %d: number = %d, want %d", i, got[i].Number, want)
		}
	}
}

func TestEnsureDirectoryAndExists(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "b")

	if Exists(sub) {
		t.Fatalf("expected sub not to exist yet")
	}
	if err := EnsureDirectory(sub); err != nil {
		t.Fatalf("EnsureDirectory: %v", err)
	}
	if !IsDirectory(sub) {
		t.Fatalf("expected sub to be a directory")
	}
}
