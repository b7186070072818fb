package civ6save

import (
	"bytes"
	"errors"
	"testing"
)

func TestCursorReads(t *testing.T) {
	c := newCursor([]byte{0x78, 0x56, 0x34, 0x12, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE})
	v, err := c.readUint32()
	if err != nil || v != 0x12345678 {
		t.Fatalf("readUint32 = %#x, %v", v, err)
	}
	n, err := c.readUint24()
	if err != nil || n != 0xCCBBAA {
		t.Fatalf("readUint24 = %#x, %v", n, err)
	}
	b, err := c.readBytes(2)
	if err != nil || !bytes.Equal(b, []byte{0xDD, 0xEE}) {
		t.Fatalf("readBytes = % x, %v", b, err)
	}
	if c.pos() != 9 || c.remaining() != 0 {
		t.Fatalf("pos=%d remaining=%d", c.pos(), c.remaining())
	}
}

func TestCursorEOF(t *testing.T) {
	c := newCursor([]byte{0x01, 0x02})
	if _, err := c.readUint32(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
	// A failed read must not consume anything.
	if c.pos() != 0 || c.remaining() != 2 {
		t.Fatalf("failed read moved the cursor: pos=%d", c.pos())
	}
	if _, err := c.readBytes(-1); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("negative length should fail, got %v", err)
	}
}

func TestCursorBaseOffset(t *testing.T) {
	c := newCursorAt([]byte{0x00}, 0x100)
	if c.pos() != 0x100 {
		t.Fatalf("pos = %#x, want 0x100", c.pos())
	}
	if _, err := c.readBytes(4); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatal("expected EOF error")
	}
}
