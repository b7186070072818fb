package civ6save

import (
	"encoding/binary"
	"fmt"
)

// The top-level grammar is positional: nothing in the file says which section
// comes next, so the decoders below are invoked in a fixed order by Decode
// and each must consume exactly its declared shape.

// decodeTaggedUnit reads one unit of the leading repeated group. done
// reports that the group ends after this unit: either the unit started with
// the terminator identifier (no count field follows) or its entry count was
// zero.
func (d *decoder) decodeTaggedUnit(c *cursor) (sec *TaggedSection, done bool, err error) {
	id, err := c.readUint32()
	if err != nil {
		return nil, false, err
	}
	if id == SectionTerminator {
		return &TaggedSection{Identifier: id}, true, nil
	}
	n, err := d.readCount(c)
	if err != nil {
		return nil, false, err
	}
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		e, err := d.decodeEntry(c, 0)
		if err != nil {
			return nil, false, err
		}
		entries = append(entries, e)
	}
	return &TaggedSection{Identifier: id, Entries: entries}, n == 0, nil
}

func (d *decoder) decodeSubsectionSet(c *cursor) (*SubsectionSetSection, error) {
	m, err := d.readCount(c)
	if err != nil {
		return nil, err
	}
	subs := make([]Subsection, 0, m)
	for i := 0; i < m; i++ {
		id, err := c.readUint32()
		if err != nil {
			return nil, err
		}
		n, err := d.readCount(c)
		if err != nil {
			return nil, err
		}
		entries := make([]Entry, 0, n)
		for j := 0; j < n; j++ {
			e, err := d.decodeEntry(c, 0)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
		subs = append(subs, Subsection{Identifier: id, Entries: entries})
	}
	return &SubsectionSetSection{Subsections: subs}, nil
}

func (d *decoder) decodeIdless(c *cursor) (*IdlessSection, error) {
	n, err := d.readCount(c)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		e, err := d.decodeEntry(c, 0)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return &IdlessSection{Entries: entries}, nil
}

// decodeCompressed reads the game-state section. The decompressed layout is
// unknown upstream, so the inflated bytes stay opaque.
func (d *decoder) decodeCompressed(c *cursor) (*CompressedSection, error) {
	start := c.pos()
	chunks, err := readChunkedStream(c)
	if err != nil {
		return nil, err
	}
	sec := &CompressedSection{Chunks: chunks}
	if d.cfg.inflate {
		if sec.Inflated, err = inflateChunks(chunks, d.cfg.limits.MaxInflatedSize, start); err != nil {
			return nil, err
		}
	}
	return sec, nil
}

func (d *decoder) decodeBitmap(c *cursor) (*BitmapSection, error) {
	id, err := c.readUint32()
	if err != nil {
		return nil, err
	}
	w, err := c.readUint32()
	if err != nil {
		return nil, err
	}
	h, err := c.readUint32()
	if err != nil {
		return nil, err
	}
	cells := uint64(w) * uint64(h)
	if cells > d.cfg.limits.MaxBitmapCells {
		return nil, fmt.Errorf("%w: bitmap of %dx%d cells", ErrLimitExceeded, w, h)
	}
	sec := &BitmapSection{Identifier: id, Width: w, Height: h, Cells: make([]uint32, 0, cells)}
	for i := uint64(0); i < cells; i++ {
		at := c.pos()
		v, err := c.readUint32()
		if err != nil {
			return nil, err
		}
		if v != 0 && v != 1 && v != 0x1000001 {
			return nil, fmt.Errorf("%w: bitmap cell %#x at offset %#x", ErrConstantMismatch, v, at)
		}
		sec.Cells = append(sec.Cells, v)
	}
	return sec, nil
}

// decodeUnidentified1 reads the section of fixed 10-byte records. The
// leading identifier is expected to be Unidentified1Identifier, but its
// meaning is unconfirmed: a mismatch is recorded as a warning unless
// WithStrictSectionIdentifiers was set.
func (d *decoder) decodeUnidentified1(c *cursor) (*Unidentified1Section, error) {
	at := c.pos()
	id, err := c.readUint32()
	if err != nil {
		return nil, err
	}
	if id != Unidentified1Identifier {
		if d.cfg.strictIDs {
			return nil, fmt.Errorf("%w: unidentified1 identifier %#x at offset %#x (expected %#x)",
				ErrConstantMismatch, id, at, Unidentified1Identifier)
		}
		d.warnf("unidentified1 identifier %#x at offset %#x (expected %#x)", id, at, Unidentified1Identifier)
	}
	n, err := d.readCount(c)
	if err != nil {
		return nil, err
	}
	records := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		rec, err := c.readBytes(10)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return &Unidentified1Section{Identifier: id, Records: records}, nil
}

func (d *decoder) decodeUnidentified2(c *cursor) (*Unidentified2Section, error) {
	n, err := d.readCount(c)
	if err != nil {
		return nil, err
	}
	blob, err := c.readBytes(n)
	if err != nil {
		return nil, err
	}
	m, err := d.readCount(c)
	if err != nil {
		return nil, err
	}
	records := make([][]byte, 0, m)
	for i := 0; i < m; i++ {
		rec, err := c.readBytes(5)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := expectConstant(c, unid2Trailer[:]); err != nil {
		return nil, err
	}
	return &Unidentified2Section{Blob: blob, Records: records}, nil
}

func (d *decoder) decodeCustomData(c *cursor) (*CustomDataSection, error) {
	n, err := d.readCount(c)
	if err != nil {
		return nil, err
	}
	name, err := c.readBytes(n)
	if err != nil {
		return nil, err
	}
	m, err := d.readCount(c)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, m)
	for i := 0; i < m; i++ {
		e, err := d.decodeEntry(c, 0)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return &CustomDataSection{Name: string(name), Entries: entries}, nil
}

// appendSection writes one section in wire form.
func appendSection(buf []byte, s Section) ([]byte, error) {
	var err error
	switch sec := s.(type) {
	case *TaggedSection:
		buf = binary.LittleEndian.AppendUint32(buf, sec.Identifier)
		if sec.Terminator() {
			return buf, nil
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(sec.Entries)))
		for _, e := range sec.Entries {
			if buf, err = appendEntry(buf, e); err != nil {
				return nil, err
			}
		}
		return buf, nil

	case *SubsectionSetSection:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(sec.Subsections)))
		for _, sub := range sec.Subsections {
			buf = binary.LittleEndian.AppendUint32(buf, sub.Identifier)
			buf = binary.LittleEndian.AppendUint32(buf, uint32(len(sub.Entries)))
			for _, e := range sub.Entries {
				if buf, err = appendEntry(buf, e); err != nil {
					return nil, err
				}
			}
		}
		return buf, nil

	case *IdlessSection:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(sec.Entries)))
		for _, e := range sec.Entries {
			if buf, err = appendEntry(buf, e); err != nil {
				return nil, err
			}
		}
		return buf, nil

	case *CompressedSection:
		// Re-emitted from the stored framing, never re-deflated.
		return appendChunks(buf, sec.Chunks), nil

	case *BitmapSection:
		buf = binary.LittleEndian.AppendUint32(buf, sec.Identifier)
		buf = binary.LittleEndian.AppendUint32(buf, sec.Width)
		buf = binary.LittleEndian.AppendUint32(buf, sec.Height)
		for _, cell := range sec.Cells {
			buf = binary.LittleEndian.AppendUint32(buf, cell)
		}
		return buf, nil

	case *Unidentified1Section:
		buf = binary.LittleEndian.AppendUint32(buf, sec.Identifier)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(sec.Records)))
		for _, rec := range sec.Records {
			buf = append(buf, rec...)
		}
		return buf, nil

	case *Unidentified2Section:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(sec.Blob)))
		buf = append(buf, sec.Blob...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(sec.Records)))
		for _, rec := range sec.Records {
			buf = append(buf, rec...)
		}
		return append(buf, unid2Trailer[:]...), nil

	case *CustomDataSection:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(sec.Name)))
		buf = append(buf, sec.Name...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(sec.Entries)))
		for _, e := range sec.Entries {
			if buf, err = appendEntry(buf, e); err != nil {
				return nil, err
			}
		}
		return buf, nil

	default:
		return nil, fmt.Errorf("%w: unknown section %T", ErrValidation, s)
	}
}
