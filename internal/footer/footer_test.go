package footer

import "testing"

func TestHandleRoundTrip(t *testing.T) {
	h := Handle{Offset: 1024, Size: 4096}
	got, err := DecodeHandle(h.Encode())
	if err != nil {
		t.Fatalf("DecodeHandle: %v", err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestDecodeHandleWrongLength(t *testing.T) {
	if _, err := DecodeHandle([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for short handle")
	}
}

func TestFooterRoundTrip(t *testing.T) {
	f := Footer{
		MetaHandle:  Handle{Offset: 10, Size: 20},
		IndexHandle: Handle{Offset: 30, Size: 40},
	}
	enc := f.Encode()
	if len(enc) != Size {
		t.Fatalf("encoded footer length = %d, want %d", len(enc), Size)
	}
	got, err := Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != f {
		t.Fatalf("got %+v, want %+v", got, f)
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	if _, err := Decode(make([]byte, Size-1)); err == nil {
		t.Fatalf("expected error for short footer")
	}
	if _, err := Decode(make([]byte, Size+1)); err == nil {
		t.Fatalf("expected error for long footer")
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	f := Footer{MetaHandle: Handle{Offset: 1, Size: 2}, IndexHandle: Handle{Offset: 3, Size: 4}}
	enc := f.Encode()
	enc[Size-1] = 0xFF
	if _, err := Decode(enc); err == nil {
		t.Fatalf("expected error for bad magic")
	}
}
