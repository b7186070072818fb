package civ6save

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func decodeParts(t *testing.T, parts [][]byte, opts ...ReadOption) (*Document, error) {
	t.Helper()
	return Decode(bytes.Join(parts, nil), opts...)
}

func TestTaggedGroupTerminatorOnly(t *testing.T) {
	parts := buildSampleParts(t)
	parts[partTagged] = nil // terminator as the very first unit
	doc, err := decodeParts(t, parts)
	if err != nil {
		t.Fatal(err)
	}
	first := doc.Sections[0].(*TaggedSection)
	if !first.Terminator() || len(first.Entries) != 0 {
		t.Fatalf("first unit should be the bare terminator: %#v", first)
	}
	// No count word follows the terminator identifier.
	if doc.Layout[0].Length != 4 {
		t.Fatalf("terminator unit consumed %d bytes, want 4", doc.Layout[0].Length)
	}
	if doc.Sections[1].Kind() != KindSubsectionSet {
		t.Fatalf("decoding did not resume at the next section: %s", doc.Sections[1].Kind())
	}
}

func TestTaggedGroupEndsOnZeroCount(t *testing.T) {
	parts := buildSampleParts(t)
	// A unit with a zero entry count ends the group without a terminator.
	parts[partTerminator] = append(u32(0x2222), u32(0)...)
	doc, err := decodeParts(t, parts)
	if err != nil {
		t.Fatal(err)
	}
	last := doc.Sections[1].(*TaggedSection)
	if last.Terminator() || len(last.Entries) != 0 {
		t.Fatalf("unexpected closing unit: %#v", last)
	}

	out, err := Encode(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, bytes.Join(parts, nil)) {
		t.Fatal("zero-count group closer did not round-trip")
	}
}

func TestTaggedGroupMultipleUnits(t *testing.T) {
	parts := buildSampleParts(t)
	unit2 := append(u32(0x3333), u32(1)...)
	unit2 = append(unit2, intEntry(9, 1)...)
	parts[partTagged] = append(parts[partTagged], unit2...)
	doc, err := decodeParts(t, parts)
	if err != nil {
		t.Fatal(err)
	}
	kinds := 0
	for _, s := range doc.Sections {
		if s.Kind() == KindTagged {
			kinds++
		}
	}
	if kinds != 3 {
		t.Fatalf("got %d tagged units, want 3", kinds)
	}
}

func TestBitmapInvalidCell(t *testing.T) {
	parts := buildSampleParts(t)
	bad := append([]byte(nil), parts[partBitmap]...)
	copy(bad[12:], u32(2)) // first cell: 2 is not a legal code
	parts[partBitmap] = bad
	_, err := decodeParts(t, parts)
	if !errors.Is(err, ErrConstantMismatch) {
		t.Fatalf("expected ErrConstantMismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "bitmap cell") {
		t.Fatalf("error should name the bitmap cell: %v", err)
	}
}

func TestBitmapAllZero(t *testing.T) {
	parts := buildSampleParts(t)
	var b []byte
	b = append(b, u32(3)...)
	b = append(b, u32(3)...)
	b = append(b, u32(2)...)
	for i := 0; i < 6; i++ {
		b = append(b, u32(0)...)
	}
	parts[partBitmap] = b
	doc, err := decodeParts(t, parts)
	if err != nil {
		t.Fatal(err)
	}
	bm := doc.Sections[5].(*BitmapSection)
	if bm.Width != 3 || bm.Height != 2 || len(bm.Cells) != 6 {
		t.Fatalf("bitmap %dx%d with %d cells", bm.Width, bm.Height, len(bm.Cells))
	}
	for i, cell := range bm.Cells {
		if cell != 0 {
			t.Fatalf("cell %d = %d", i, cell)
		}
	}
}

func TestUnidentified1SoftWarning(t *testing.T) {
	parts := buildSampleParts(t)
	odd := append([]byte(nil), parts[partUnidentified1]...)
	copy(odd, u32(0xBEEF))
	parts[partUnidentified1] = odd

	doc, err := decodeParts(t, parts)
	if err != nil {
		t.Fatalf("identifier mismatch must stay soft: %v", err)
	}
	if len(doc.Warnings) != 1 || !strings.Contains(doc.Warnings[0], "0xbeef") {
		t.Fatalf("warnings = %v", doc.Warnings)
	}
	sec := doc.Sections[6].(*Unidentified1Section)
	if sec.Identifier != 0xBEEF {
		t.Fatalf("identifier not preserved: %#x", sec.Identifier)
	}

	// The odd identifier must survive re-encoding.
	out, err := Encode(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, bytes.Join(parts, nil)) {
		t.Fatal("identifier mismatch broke the round trip")
	}

	_, err = decodeParts(t, parts, WithStrictSectionIdentifiers(true))
	if !errors.Is(err, ErrConstantMismatch) {
		t.Fatalf("strict mode should fail, got %v", err)
	}
}

func TestUnidentified2TrailerMismatch(t *testing.T) {
	parts := buildSampleParts(t)
	bad := append([]byte(nil), parts[partUnidentified2]...)
	bad[len(bad)-1] = 0x02
	parts[partUnidentified2] = bad
	_, err := decodeParts(t, parts)
	if !errors.Is(err, ErrConstantMismatch) {
		t.Fatalf("expected ErrConstantMismatch, got %v", err)
	}
}

func TestCompressedMultiChunk(t *testing.T) {
	parts := buildSampleParts(t)
	// Incompressible payload so the deflate stream spans two chunks.
	payload := make([]byte, 80<<10)
	rng := rand.New(rand.NewSource(1))
	rng.Read(payload)
	z := deflate(t, payload)
	if len(z) <= maxChunkLen || len(z) >= 2*maxChunkLen {
		t.Fatalf("fixture stream is %d bytes, want two chunks", len(z))
	}
	var b []byte
	b = append(b, u32(maxChunkLen)...)
	b = append(b, z[:maxChunkLen]...)
	rest := z[maxChunkLen:]
	b = append(b, u32(uint32(len(rest)))...)
	b = append(b, rest...)
	parts[partCompressed] = b

	doc, err := decodeParts(t, parts)
	if err != nil {
		t.Fatal(err)
	}
	cs := doc.Compressed()
	if len(cs.Chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(cs.Chunks))
	}
	if !bytes.Equal(cs.Inflated, payload) {
		t.Fatal("multi-chunk payload did not inflate correctly")
	}
	out, err := Encode(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, bytes.Join(parts, nil)) {
		t.Fatal("chunk framing was not preserved")
	}
}

func TestDecodeEntryCountLimit(t *testing.T) {
	parts := buildSampleParts(t)
	_, err := decodeParts(t, parts, WithLimits(Limits{MaxEntries: 1}))
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
}
