package civ6save

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// expectConstant consumes len(want) bytes and fails with ErrConstantMismatch
// unless they match exactly. Skipping past a bad constant is never safe: the
// format has no resynchronization signal.
func expectConstant(c *cursor, want []byte) error {
	at := c.pos()
	got, err := c.readBytes(len(want))
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%w: at offset %#x: expected % x, got % x", ErrConstantMismatch, at, want, got)
	}
	return nil
}

// decodeEntry reads one tagged entry: identifier word, type word, then the
// type-specific payload.
func (d *decoder) decodeEntry(c *cursor, depth int) (Entry, error) {
	start := c.pos()
	id, err := c.readUint32()
	if err != nil {
		return Entry{}, err
	}
	typ, err := c.readUint32()
	if err != nil {
		return Entry{}, err
	}
	v, err := d.decodeValue(c, DataType(typ), depth, start)
	if err != nil {
		return Entry{}, err
	}
	return Entry{ID: id, Type: DataType(typ), Value: v}, nil
}

// decodeValue dispatches on the type tag. The set is closed: an unregistered
// tag is fatal because the payload length of an unknown type is unknown, so
// there is nothing safe to skip.
func (d *decoder) decodeValue(c *cursor, typ DataType, depth, start int) (Value, error) {
	switch typ {
	case TypeBool:
		if err := expectConstant(c, zeroHeader[:]); err != nil {
			return nil, err
		}
		at := c.pos()
		v, err := c.readUint32()
		if err != nil {
			return nil, err
		}
		if v > 1 {
			return nil, fmt.Errorf("%w: boolean flag %d at offset %#x", ErrConstantMismatch, v, at)
		}
		return BoolValue(v != 0), nil

	case TypeInt:
		if err := expectConstant(c, zeroHeader[:]); err != nil {
			return nil, err
		}
		v, err := c.readUint32()
		if err != nil {
			return nil, err
		}
		return IntValue(v), nil

	case TypeColor:
		b, err := c.readBytes(12)
		if err != nil {
			return nil, err
		}
		var v ColorValue
		copy(v[:], b)
		return v, nil

	case TypeASCII, TypeUTF8:
		s, err := decodeString(c, 1, d.cfg.limits)
		if err != nil {
			return nil, err
		}
		return StringValue(s), nil

	case TypeUTF16:
		s, err := decodeString(c, 2, d.cfg.limits)
		if err != nil {
			return nil, err
		}
		return StringValue(s), nil

	case TypeObject:
		if err := expectConstant(c, objectHeader[:]); err != nil {
			return nil, err
		}
		n, err := d.readCount(c)
		if err != nil {
			return nil, err
		}
		if depth >= d.cfg.limits.MaxDepth {
			return nil, fmt.Errorf("%w: nesting depth %d at offset %#x", ErrLimitExceeded, depth, start)
		}
		entries := make([]Entry, 0, n)
		for i := 0; i < n; i++ {
			e, err := d.decodeEntry(c, depth+1)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		return ObjectValue(entries), nil

	case TypeArray:
		if err := expectConstant(c, arrayHeader[:]); err != nil {
			return nil, err
		}
		n, err := d.readCount(c)
		if err != nil {
			return nil, err
		}
		if depth >= d.cfg.limits.MaxDepth {
			return nil, fmt.Errorf("%w: nesting depth %d at offset %#x", ErrLimitExceeded, depth, start)
		}
		elems := make([]ArrayElement, 0, n)
		for i := 0; i < n; i++ {
			elStart := c.pos()
			elTyp, err := c.readUint32()
			if err != nil {
				return nil, err
			}
			v, err := d.decodeValue(c, DataType(elTyp), depth+1, elStart)
			if err != nil {
				return nil, err
			}
			elems = append(elems, ArrayElement{Type: DataType(elTyp), Value: v})
		}
		return ArrayValue(elems), nil

	case TypeOpaque16:
		b, err := c.readBytes(16)
		if err != nil {
			return nil, err
		}
		var v Opaque16Value
		copy(v[:], b)
		return v, nil

	case TypeTimestamp:
		if err := expectConstant(c, wideHeader[:]); err != nil {
			return nil, err
		}
		epoch, err := c.readUint32()
		if err != nil {
			return nil, err
		}
		if err := expectConstant(c, zeroHeader[:4]); err != nil {
			return nil, err
		}
		return TimeValue(epoch), nil

	case TypeOpaque8:
		// Same 16-byte record shape as TypeTimestamp, trailing 8 bytes kept raw.
		if err := expectConstant(c, wideHeader[:]); err != nil {
			return nil, err
		}
		b, err := c.readBytes(8)
		if err != nil {
			return nil, err
		}
		var v Opaque8Value
		copy(v[:], b)
		return v, nil

	case TypeCompressed:
		return d.decodeBlob(c, start)

	default:
		return nil, fmt.Errorf("%w: tag %#x for entry at offset %#x", ErrUnknownDataType, uint32(typ), start)
	}
}

// decodeBlob reads a compressed blob entry: a width-1 string whose content is
// a 4-byte tag of unconfirmed meaning, the declared inflated size, and a
// chunked zlib stream running to the end of the string.
func (d *decoder) decodeBlob(c *cursor, start int) (Value, error) {
	content, err := decodeStringBytes(c, 1, d.cfg.limits)
	if err != nil {
		return nil, err
	}
	if len(content) < 8 {
		return nil, fmt.Errorf("%w: compressed blob at offset %#x: need 8 header bytes, have %d",
			ErrUnexpectedEOF, start, len(content))
	}
	sc := newCursorAt(content, c.pos()-len(content))
	var v BlobValue
	tag, err := sc.readBytes(4)
	if err != nil {
		return nil, err
	}
	copy(v.Tag[:], tag)
	if v.InflatedSize, err = sc.readUint32(); err != nil {
		return nil, err
	}
	streamStart := sc.pos()
	if v.Chunks, err = readChunkedToEnd(sc); err != nil {
		return nil, err
	}
	if d.cfg.inflate {
		if v.Data, err = inflateChunks(v.Chunks, d.cfg.limits.MaxInflatedSize, streamStart); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// readCount reads a 4-byte element count and bounds it.
func (d *decoder) readCount(c *cursor) (int, error) {
	at := c.pos()
	n, err := c.readUint32()
	if err != nil {
		return 0, err
	}
	if int64(n) > int64(d.cfg.limits.MaxEntries) {
		return 0, fmt.Errorf("%w: count %d at offset %#x", ErrLimitExceeded, n, at)
	}
	return int(n), nil
}

// appendEntry writes one tagged entry in wire form.
func appendEntry(buf []byte, e Entry) ([]byte, error) {
	buf = binary.LittleEndian.AppendUint32(buf, e.ID)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(e.Type))
	return appendValue(buf, e.Type, e.Value)
}

func appendValue(buf []byte, typ DataType, value Value) ([]byte, error) {
	switch typ {
	case TypeBool:
		v, ok := value.(BoolValue)
		if !ok {
			return nil, valueMismatch(typ, value)
		}
		buf = append(buf, zeroHeader[:]...)
		var w uint32
		if v {
			w = 1
		}
		return binary.LittleEndian.AppendUint32(buf, w), nil

	case TypeInt:
		v, ok := value.(IntValue)
		if !ok {
			return nil, valueMismatch(typ, value)
		}
		buf = append(buf, zeroHeader[:]...)
		return binary.LittleEndian.AppendUint32(buf, uint32(v)), nil

	case TypeColor:
		v, ok := value.(ColorValue)
		if !ok {
			return nil, valueMismatch(typ, value)
		}
		return append(buf, v[:]...), nil

	case TypeASCII, TypeUTF8:
		v, ok := value.(StringValue)
		if !ok {
			return nil, valueMismatch(typ, value)
		}
		return appendString(buf, string(v), 1), nil

	case TypeUTF16:
		v, ok := value.(StringValue)
		if !ok {
			return nil, valueMismatch(typ, value)
		}
		return appendString(buf, string(v), 2), nil

	case TypeObject:
		v, ok := value.(ObjectValue)
		if !ok {
			return nil, valueMismatch(typ, value)
		}
		buf = append(buf, objectHeader[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v)))
		var err error
		for _, child := range v {
			if buf, err = appendEntry(buf, child); err != nil {
				return nil, err
			}
		}
		return buf, nil

	case TypeArray:
		v, ok := value.(ArrayValue)
		if !ok {
			return nil, valueMismatch(typ, value)
		}
		buf = append(buf, arrayHeader[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v)))
		var err error
		for _, el := range v {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(el.Type))
			if buf, err = appendValue(buf, el.Type, el.Value); err != nil {
				return nil, err
			}
		}
		return buf, nil

	case TypeOpaque16:
		v, ok := value.(Opaque16Value)
		if !ok {
			return nil, valueMismatch(typ, value)
		}
		return append(buf, v[:]...), nil

	case TypeTimestamp:
		v, ok := value.(TimeValue)
		if !ok {
			return nil, valueMismatch(typ, value)
		}
		buf = append(buf, wideHeader[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
		return binary.LittleEndian.AppendUint32(buf, 0), nil

	case TypeOpaque8:
		v, ok := value.(Opaque8Value)
		if !ok {
			return nil, valueMismatch(typ, value)
		}
		buf = append(buf, wideHeader[:]...)
		return append(buf, v[:]...), nil

	case TypeCompressed:
		v, ok := value.(BlobValue)
		if !ok {
			return nil, valueMismatch(typ, value)
		}
		content := make([]byte, 0, 8+chunkedLen(v.Chunks))
		content = append(content, v.Tag[:]...)
		content = binary.LittleEndian.AppendUint32(content, v.InflatedSize)
		content = appendChunks(content, v.Chunks)
		return appendStringBytes(buf, content), nil

	default:
		return nil, fmt.Errorf("%w: cannot encode tag %#x", ErrUnknownDataType, uint32(typ))
	}
}

func valueMismatch(typ DataType, value Value) error {
	return fmt.Errorf("%w: %s entry holds %T", ErrValidation, typ, value)
}

func chunkedLen(chunks [][]byte) int {
	n := 0
	for _, c := range chunks {
		n += 4 + len(c)
	}
	return n
}
