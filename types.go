package civ6save

import "time"

// Magic is the 4-byte marker at offset 0 of every save file.
var Magic = [4]byte{'C', 'I', 'V', '6'}

const (
	// SectionTerminator is the identifier word that ends the leading group
	// of tagged sections. A unit starting with it has no count field and no
	// entries.
	SectionTerminator uint32 = 0x00000010

	// Unidentified1Identifier is the identifier word usually found at the
	// start of the Unidentified1 section. A different value is recorded as a
	// document warning rather than a fatal error; see
	// WithStrictSectionIdentifiers.
	Unidentified1Identifier uint32 = 0x0000A5A5

	// maxChunkLen is the framing limit of the chunked compression streams.
	// A chunk of exactly this length continues the stream; the first shorter
	// chunk terminates it.
	maxChunkLen = 1 << 16
)

// Fixed header constants preceding the payloads of several entry types.
// Any deviation is a hard error: entry length is type-dependent, so a
// mismatched header means the cursor is already lost.
var (
	zeroHeader   = [8]byte{}
	objectHeader = [8]byte{0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00, 0x00}
	arrayHeader  = [8]byte{0x00, 0x00, 0x00, 0x11, 0x00, 0x00, 0x00, 0x00}
	wideHeader   = [8]byte{0x00, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00}
	unid2Trailer = [12]byte{
		0x01, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
	}
)

// DataType is the wire type tag of a tagged entry.
type DataType uint32

const (
	TypeBool       DataType = 0x01
	TypeInt        DataType = 0x02
	TypeColor      DataType = 0x03 // three words, raw; RGBA interpretation left to callers
	TypeASCII      DataType = 0x04
	TypeUTF8       DataType = 0x05
	TypeUTF16      DataType = 0x06
	TypeObject     DataType = 0x0A
	TypeArray      DataType = 0x0B
	TypeOpaque16   DataType = 0x0D
	TypeTimestamp  DataType = 0x14
	TypeOpaque8    DataType = 0x15
	TypeCompressed DataType = 0x18
)

// String returns a short name for the type tag.
func (t DataType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeColor:
		return "color"
	case TypeASCII:
		return "ascii"
	case TypeUTF8:
		return "utf8"
	case TypeUTF16:
		return "utf16"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeOpaque16:
		return "opaque16"
	case TypeTimestamp:
		return "timestamp"
	case TypeOpaque8:
		return "opaque8"
	case TypeCompressed:
		return "compressed"
	}
	return "unknown"
}

// Value is the decoded payload of a tagged entry. The set of implementations
// is closed: one per DataType, with shared string/opaque representations.
type Value interface {
	isValue()
}

type (
	// BoolValue is the payload of TypeBool entries.
	BoolValue bool

	// IntValue is the payload of TypeInt entries. The word is stored
	// unsigned, exactly as it appears on the wire.
	IntValue uint32

	// ColorValue is the raw 12-byte payload of TypeColor entries.
	ColorValue [12]byte

	// StringValue is the payload of TypeASCII, TypeUTF8 and TypeUTF16
	// entries. UTF-16 content is transcoded to UTF-8 on decode and back on
	// encode.
	StringValue string

	// ObjectValue is the payload of TypeObject entries: an ordered sequence
	// of child entries, each with its own identifier.
	ObjectValue []Entry

	// ArrayValue is the payload of TypeArray entries: an ordered sequence of
	// (type, value) pairs without identifiers.
	ArrayValue []ArrayElement

	// Opaque16Value is the raw 16-byte payload of TypeOpaque16 entries.
	Opaque16Value [16]byte

	// TimeValue is the payload of TypeTimestamp entries, in UNIX seconds.
	TimeValue uint32

	// Opaque8Value is the raw trailing 8 bytes of TypeOpaque8 entries.
	Opaque8Value [8]byte
)

// ArrayElement is one identifier-less element of an ArrayValue.
type ArrayElement struct {
	Type  DataType
	Value Value
}

// BlobValue is the payload of TypeCompressed entries: a chunked zlib stream
// carried inside a length-prefixed byte string. Chunks preserve the original
// framing so the entry re-encodes byte-for-byte. Data holds the inflated
// bytes and is nil when decoding ran with WithoutInflate.
type BlobValue struct {
	Tag          [4]byte // leading word, meaning unconfirmed
	InflatedSize uint32  // declared size, not re-derived
	Chunks       [][]byte
	Data         []byte
}

func (BoolValue) isValue()     {}
func (IntValue) isValue()      {}
func (ColorValue) isValue()    {}
func (StringValue) isValue()   {}
func (ObjectValue) isValue()   {}
func (ArrayValue) isValue()    {}
func (Opaque16Value) isValue() {}
func (TimeValue) isValue()     {}
func (Opaque8Value) isValue()  {}
func (BlobValue) isValue()     {}

// Time converts the stored UNIX seconds to a time.Time in UTC.
func (v TimeValue) Time() time.Time {
	return time.Unix(int64(v), 0).UTC()
}

// Entry is one tagged record: an opaque 32-bit identifier hash, a type tag
// and the decoded payload. Identifiers are stored verbatim and never
// interpreted; the names subpackage maps the known ones to field names.
type Entry struct {
	ID    uint32
	Type  DataType
	Value Value
}

// SectionKind discriminates the top-level section variants. Sections do not
// self-identify on the wire; the kind follows from the position in the file.
type SectionKind uint8

const (
	KindTagged SectionKind = iota + 1
	KindSubsectionSet
	KindIdless
	KindCompressed
	KindBitmap
	KindUnidentified1
	KindUnidentified2
	KindCustomData
)

// String returns a short name for the section kind.
func (k SectionKind) String() string {
	switch k {
	case KindTagged:
		return "tagged"
	case KindSubsectionSet:
		return "subsections"
	case KindIdless:
		return "idless"
	case KindCompressed:
		return "compressed"
	case KindBitmap:
		return "bitmap"
	case KindUnidentified1:
		return "unidentified1"
	case KindUnidentified2:
		return "unidentified2"
	case KindCustomData:
		return "customdata"
	}
	return "unknown"
}

// Section is one top-level region of the file. The set of implementations is
// closed; sections own their entry trees exclusively and are never mutated
// after decoding.
type Section interface {
	Kind() SectionKind
}

// TaggedSection is one unit of the leading repeated group: an identifier
// word, an entry count and that many tagged entries. A unit whose Identifier
// equals SectionTerminator carries no count field and no entries.
type TaggedSection struct {
	Identifier uint32
	Entries    []Entry
}

// Terminator reports whether the unit is the count-less group terminator.
func (s *TaggedSection) Terminator() bool { return s.Identifier == SectionTerminator }

// Subsection is one (identifier, entries) unit of a SubsectionSetSection.
type Subsection struct {
	Identifier uint32
	Entries    []Entry
}

// SubsectionSetSection is a counted set of identified subsections.
type SubsectionSetSection struct {
	Subsections []Subsection
}

// IdlessSection is a counted sequence of tagged entries with no section
// identifier of its own.
type IdlessSection struct {
	Entries []Entry
}

// CompressedSection holds the game state: a chunked zlib stream whose
// decompressed layout is unknown upstream. Chunks preserve the original
// framing for byte-exact re-encoding; Inflated holds the decompressed bytes
// as an opaque payload (nil when decoding ran with WithoutInflate).
type CompressedSection struct {
	Chunks   [][]byte
	Inflated []byte
}

// BitmapSection is a Width x Height grid of words, row-major. Every cell is
// one of 0, 1 or 0x1000001.
type BitmapSection struct {
	Identifier uint32
	Width      uint32
	Height     uint32
	Cells      []uint32
}

// Unidentified1Section is a counted sequence of fixed 10-byte records whose
// semantics are unconfirmed. Records are preserved verbatim.
type Unidentified1Section struct {
	Identifier uint32
	Records    [][]byte
}

// Unidentified2Section is a leading blob, a counted sequence of fixed 5-byte
// records and a verified 12-byte constant trailer, all semantics
// unconfirmed and preserved verbatim.
type Unidentified2Section struct {
	Blob    []byte
	Records [][]byte
}

// CustomDataSection is an ASCII-named section of tagged entries. In practice
// the only observed name is "CustomData".
type CustomDataSection struct {
	Name    string
	Entries []Entry
}

func (*TaggedSection) Kind() SectionKind        { return KindTagged }
func (*SubsectionSetSection) Kind() SectionKind { return KindSubsectionSet }
func (*IdlessSection) Kind() SectionKind        { return KindIdless }
func (*CompressedSection) Kind() SectionKind    { return KindCompressed }
func (*BitmapSection) Kind() SectionKind        { return KindBitmap }
func (*Unidentified1Section) Kind() SectionKind { return KindUnidentified1 }
func (*Unidentified2Section) Kind() SectionKind { return KindUnidentified2 }
func (*CustomDataSection) Kind() SectionKind    { return KindCustomData }

// SectionSpan records where a decoded section sat in the input buffer.
type SectionSpan struct {
	Kind   SectionKind
	Offset int
	Length int
}

// Document is the lossless representation of one decoded save file.
type Document struct {
	// Sections in file order: one or more TaggedSection units, then exactly
	// one each of SubsectionSetSection, IdlessSection, CompressedSection,
	// BitmapSection, Unidentified1Section, Unidentified2Section and
	// CustomDataSection.
	Sections []Section

	// Layout mirrors Sections with the byte span each one consumed.
	Layout []SectionSpan

	// Warnings holds soft integrity findings that did not abort the decode,
	// such as an unexpected Unidentified1 identifier.
	Warnings []string

	// BytesConsumed equals the input length for every successful decode.
	BytesConsumed int
}

// Compressed returns the game-state section, or nil if absent (only possible
// on hand-built documents).
func (d *Document) Compressed() *CompressedSection {
	for _, s := range d.Sections {
		if cs, ok := s.(*CompressedSection); ok {
			return cs
		}
	}
	return nil
}

// CustomData returns the named trailing section, or nil if absent.
func (d *Document) CustomData() *CustomDataSection {
	for _, s := range d.Sections {
		if cs, ok := s.(*CustomDataSection); ok {
			return cs
		}
	}
	return nil
}

// Walk calls fn for every tagged entry in the document, depth-first in file
// order, descending into object and array payloads. Walking stops early when
// fn returns false.
func (d *Document) Walk(fn func(Entry) bool) {
	for _, s := range d.Sections {
		var entries []Entry
		switch sec := s.(type) {
		case *TaggedSection:
			entries = sec.Entries
		case *IdlessSection:
			entries = sec.Entries
		case *CustomDataSection:
			entries = sec.Entries
		case *SubsectionSetSection:
			for _, sub := range sec.Subsections {
				if !walkEntries(sub.Entries, fn) {
					return
				}
			}
			continue
		default:
			continue
		}
		if !walkEntries(entries, fn) {
			return
		}
	}
}

func walkEntries(entries []Entry, fn func(Entry) bool) bool {
	for _, e := range entries {
		if !fn(e) {
			return false
		}
		switch v := e.Value.(type) {
		case ObjectValue:
			if !walkEntries(v, fn) {
				return false
			}
		case ArrayValue:
			for _, el := range v {
				if obj, ok := el.Value.(ObjectValue); ok {
					if !walkEntries(obj, fn) {
						return false
					}
				}
			}
		}
	}
	return true
}

// Find returns the first entry whose identifier equals id, in Walk order.
func (d *Document) Find(id uint32) (Entry, bool) {
	var found Entry
	ok := false
	d.Walk(func(e Entry) bool {
		if e.ID == id {
			found, ok = e, true
			return false
		}
		return true
	})
	return found, ok
}
