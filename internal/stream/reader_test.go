package stream

import (
	"errors"
	"testing"
)

func TestReader(t *testing.T) {
	data := []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		'u', 'e', '4', 0, 'x', 0,
		0xAA, 0xBB,
	}
	r := NewReader(data)

	v, err := r.ReadU64()
	if err != nil || v != 0x0807060504030201 {
		t.Fatalf("ReadU64() = %#x, %v", v, err)
	}

	sub, err := r.SubReader(6)
	if err != nil {
		t.Fatalf("SubReader() error = %v", err)
	}
	if r.Offset() != 14 || r.Remaining() != 2 {
		t.Errorf("Offset(), Remaining() = %d, %d, want 14, 2", r.Offset(), r.Remaining())
	}

	s, err := sub.ReadFixedString(6)
	if err != nil || s != "ue4" {
		t.Errorf("ReadFixedString() = %q, %v, want \"ue4\"", s, err)
	}
	if _, err := sub.ReadU64(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("ReadU64() past end error = %v, want %v", err, ErrUnexpectedEOF)
	}

	if _, err := r.ReadU64(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("ReadU64() error = %v, want %v", err, ErrUnexpectedEOF)
	}
	if r.Offset() != 14 {
		t.Errorf("failed read moved offset to %d", r.Offset())
	}
	if _, err := r.SubReader(-1); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("SubReader(-1) error = %v, want %v", err, ErrUnexpectedEOF)
	}

	s, err = r.ReadFixedString(2)
	if err != nil || s != "\xaa\xbb" {
		t.Errorf("ReadFixedString() without NUL = %q, %v", s, err)
	}
}
