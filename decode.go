package civ6save

import (
	"bytes"
	"fmt"
)

type decoder struct {
	cfg      readConfig
	warnings []string
}

func (d *decoder) warnf(format string, args ...any) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

// Decode parses one complete save file from data.
//
// The section sequence is fixed and positional:
//  1. One or more tagged units (the group ends on the terminator identifier
//     or a zero entry count)
//  2. A subsection set
//  3. An identifier-less tagged section
//  4. The chunked, compressed game state
//  5. The bitmap grid
//  6. The 10-byte-record section (Unidentified1)
//  7. The blob + 5-byte-record section (Unidentified2)
//  8. The named CustomData section
//
// Decode fails fast with a positional error on any structural mismatch and
// requires the buffer to be consumed exactly: leftover bytes after the final
// section yield ErrTrailingBytes.
//
// Use ReadOption functions to customize behavior:
//   - WithLimits(l): set custom size limits
//   - WithStrictSectionIdentifiers(true): make the Unidentified1 identifier
//     check fatal instead of a warning
//   - WithoutInflate(): keep compressed payloads in chunk form only
func Decode(data []byte, opts ...ReadOption) (*Document, error) {
	cfg := readConfig{limits: defaultLimits(), inflate: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()

	c := newCursor(data)
	magic, err := c.readBytes(len(Magic))
	if err != nil || !bytes.Equal(magic, Magic[:]) {
		return nil, ErrInvalidMagic
	}

	d := &decoder{cfg: cfg}
	doc := &Document{}
	add := func(start int, s Section) {
		doc.Sections = append(doc.Sections, s)
		doc.Layout = append(doc.Layout, SectionSpan{Kind: s.Kind(), Offset: start, Length: c.pos() - start})
	}

	for {
		start := c.pos()
		sec, done, err := d.decodeTaggedUnit(c)
		if err != nil {
			return nil, err
		}
		add(start, sec)
		if done {
			break
		}
	}

	steps := []func(*cursor) (Section, error){
		func(c *cursor) (Section, error) { return d.decodeSubsectionSet(c) },
		func(c *cursor) (Section, error) { return d.decodeIdless(c) },
		func(c *cursor) (Section, error) { return d.decodeCompressed(c) },
		func(c *cursor) (Section, error) { return d.decodeBitmap(c) },
		func(c *cursor) (Section, error) { return d.decodeUnidentified1(c) },
		func(c *cursor) (Section, error) { return d.decodeUnidentified2(c) },
		func(c *cursor) (Section, error) { return d.decodeCustomData(c) },
	}
	for _, step := range steps {
		start := c.pos()
		sec, err := step(c)
		if err != nil {
			return nil, err
		}
		add(start, sec)
	}

	if c.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d bytes remain at offset %#x", ErrTrailingBytes, c.remaining(), c.pos())
	}
	doc.BytesConsumed = c.pos()
	doc.Warnings = d.warnings
	return doc, nil
}
