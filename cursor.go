package civ6save

import (
	"encoding/binary"
	"fmt"
)

// cursor is a bounds-checked little-endian reader over an immutable byte
// buffer. Reads never truncate: a request past the end fails whole with
// ErrUnexpectedEOF and leaves the position unchanged. base offsets error
// diagnostics for sub-cursors carved out of an enclosing buffer (compressed
// blob payloads), so every reported offset is absolute in the file.
type cursor struct {
	data []byte
	off  int
	base int
}

func newCursor(data []byte) *cursor { return &cursor{data: data} }

func newCursorAt(data []byte, base int) *cursor { return &cursor{data: data, base: base} }

// pos returns the absolute offset of the next unread byte.
func (c *cursor) pos() int { return c.base + c.off }

func (c *cursor) remaining() int { return len(c.data) - c.off }

// readBytes returns a zero-copy view of the next n bytes.
func (c *cursor) readBytes(n int) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %#x, have %d",
			ErrUnexpectedEOF, n, c.pos(), c.remaining())
	}
	b := c.data[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) readUint32() (uint32, error) {
	b, err := c.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// readUint24 reads the 3-byte little-endian length used by string headers.
func (c *cursor) readUint24() (uint32, error) {
	b, err := c.readBytes(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

func (c *cursor) readByte() (byte, error) {
	b, err := c.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}
