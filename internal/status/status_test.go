package status

import (
	"errors"
	"io"
	"testing"
)

func TestOfIsComparesByCode(t *testing.T) {
	a := Of(NotFound)
	b := Wrap(NotFound, io.EOF, "lookup")

	if !errors.Is(b, a) {
		t.Fatalf("expected %v to match sentinel %v", b, a)
	}
	if errors.Is(b, Of(BadRecord)) {
		t.Fatalf("did not expect %v to match BAD_RECORD", b)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	err := Wrap(IOError, io.ErrUnexpectedEOF, "reading block")

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected wrapped error to unwrap to the cause")
	}

	code, ok := CodeOf(err)
	if !ok || code != IOError {
		t.Fatalf("expected code IOError, got %v ok=%v", code, ok)
	}
}

func TestIsHelper(t *testing.T) {
	err := Wrap(ChecksumError, nil, "crc mismatch")
	if !Is(err, ChecksumError) {
		t.Fatalf("expected Is to report true for matching code")
	}
	if Is(err, BadRecord) {
		t.Fatalf("did not expect Is to report true for BadRecord")
	}
}

func TestCodeStringUnknown(t *testing.T) {
	c := Code(9999)
	if c.String() == "" {
		t.Fatalf("expected non-empty string for unknown code")
	}
}
