package civ6save

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

const (
	stringMarker      = 0x21
	emptyStringMarker = 0x20
)

// decodeStringBytes reads one length-prefixed string payload and returns its
// raw content bytes: a 3-byte little-endian character count, the 0x21 marker
// byte, a 4-byte character width (which must equal declaredWidth) and then
// count*width content bytes.
//
// The 8-byte sequence 00 00 00 20 00 00 00 00 is the empty-string sentinel
// (marker 0x20, no content bytes) and is accepted for every declared width.
func decodeStringBytes(c *cursor, declaredWidth uint32, lim Limits) ([]byte, error) {
	count, err := c.readUint24()
	if err != nil {
		return nil, err
	}
	markerOff := c.pos()
	marker, err := c.readByte()
	if err != nil {
		return nil, err
	}
	if marker == emptyStringMarker {
		width, err := c.readUint32()
		if err != nil {
			return nil, err
		}
		if count != 0 || width != 0 {
			return nil, fmt.Errorf("%w: malformed empty-string sentinel at offset %#x (count=%d width=%d)",
				ErrConstantMismatch, markerOff, count, width)
		}
		return nil, nil
	}
	if marker != stringMarker {
		return nil, fmt.Errorf("%w: string marker at offset %#x: expected %#02x, got %#02x",
			ErrConstantMismatch, markerOff, stringMarker, marker)
	}
	width, err := c.readUint32()
	if err != nil {
		return nil, err
	}
	if width != declaredWidth {
		return nil, fmt.Errorf("%w: string char width at offset %#x: expected %d, got %d",
			ErrConstantMismatch, markerOff+1, declaredWidth, width)
	}
	if uint64(count) > lim.MaxStringLen {
		return nil, fmt.Errorf("%w: string length %d at offset %#x", ErrLimitExceeded, count, markerOff)
	}
	return c.readBytes(int(count) * int(width))
}

// decodeString reads one string payload and transcodes it for Go: width-1
// content is taken as-is (ASCII or UTF-8), width-2 content as UTF-16LE.
func decodeString(c *cursor, declaredWidth uint32, lim Limits) (string, error) {
	b, err := decodeStringBytes(c, declaredWidth, lim)
	if err != nil {
		return "", err
	}
	if declaredWidth != 2 {
		return string(b), nil
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(units)), nil
}

// appendStringBytes appends the wire form of a width-1 byte string.
func appendStringBytes(buf, content []byte) []byte {
	if len(content) == 0 {
		return append(buf, 0x00, 0x00, 0x00, emptyStringMarker, 0x00, 0x00, 0x00, 0x00)
	}
	buf = appendUint24(buf, uint32(len(content)))
	buf = append(buf, stringMarker)
	buf = binary.LittleEndian.AppendUint32(buf, 1)
	return append(buf, content...)
}

// appendString appends the wire form of s at the given character width.
// Empty strings encode as the sentinel regardless of width.
func appendString(buf []byte, s string, width uint32) []byte {
	if s == "" {
		return append(buf, 0x00, 0x00, 0x00, emptyStringMarker, 0x00, 0x00, 0x00, 0x00)
	}
	if width != 2 {
		return appendStringBytes(buf, []byte(s))
	}
	units := utf16.Encode([]rune(s))
	buf = appendUint24(buf, uint32(len(units)))
	buf = append(buf, stringMarker)
	buf = binary.LittleEndian.AppendUint32(buf, 2)
	for _, u := range units {
		buf = binary.LittleEndian.AppendUint16(buf, u)
	}
	return buf
}

func appendUint24(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16))
}
