package civ6save

import "fmt"

// validateDocument checks that doc has the fixed positional section shape and
// that every payload is encodable. Called by Encode; decoding produces
// conforming documents by construction.
func validateDocument(doc *Document, lim Limits) error {
	i := 0
	for ; i < len(doc.Sections) && doc.Sections[i].Kind() == KindTagged; i++ {
	}
	if i == 0 {
		return fmt.Errorf("%w: document must start with a tagged section", ErrValidation)
	}
	for j := 0; j < i; j++ {
		sec := doc.Sections[j].(*TaggedSection)
		if sec.Terminator() && len(sec.Entries) > 0 {
			return fmt.Errorf("%w: terminator unit %d carries entries", ErrValidation, j)
		}
		last := j == i-1
		if !last && (sec.Terminator() || len(sec.Entries) == 0) {
			return fmt.Errorf("%w: tagged unit %d ends the group before unit %d", ErrValidation, j, i-1)
		}
		if last && !sec.Terminator() && len(sec.Entries) > 0 {
			return fmt.Errorf("%w: tagged group does not terminate", ErrValidation)
		}
	}

	rest := doc.Sections[i:]
	want := []SectionKind{
		KindSubsectionSet, KindIdless, KindCompressed, KindBitmap,
		KindUnidentified1, KindUnidentified2, KindCustomData,
	}
	if len(rest) != len(want) {
		return fmt.Errorf("%w: %d sections after the tagged group, want %d", ErrValidation, len(rest), len(want))
	}
	for j, s := range rest {
		if s.Kind() != want[j] {
			return fmt.Errorf("%w: section %d is %s, want %s", ErrValidation, i+j, s.Kind(), want[j])
		}
	}

	for _, s := range doc.Sections {
		if err := validateSection(s, lim); err != nil {
			return err
		}
	}
	return nil
}

func validateSection(s Section, lim Limits) error {
	switch sec := s.(type) {
	case *TaggedSection:
		return validateEntries(sec.Entries, lim, 0)
	case *SubsectionSetSection:
		for _, sub := range sec.Subsections {
			if err := validateEntries(sub.Entries, lim, 0); err != nil {
				return err
			}
		}
	case *IdlessSection:
		return validateEntries(sec.Entries, lim, 0)
	case *CompressedSection:
		for i, chunk := range sec.Chunks {
			if len(chunk) > maxChunkLen {
				return fmt.Errorf("%w: game-state chunk %d of %d bytes", ErrValidation, i, len(chunk))
			}
			if last := i == len(sec.Chunks)-1; last != (len(chunk) < maxChunkLen) {
				return fmt.Errorf("%w: game-state chunk %d breaks terminator framing", ErrValidation, i)
			}
		}
	case *BitmapSection:
		if uint64(len(sec.Cells)) != uint64(sec.Width)*uint64(sec.Height) {
			return fmt.Errorf("%w: bitmap has %d cells for %dx%d", ErrValidation, len(sec.Cells), sec.Width, sec.Height)
		}
		for i, v := range sec.Cells {
			if v != 0 && v != 1 && v != 0x1000001 {
				return fmt.Errorf("%w: bitmap cell %d holds %#x", ErrValidation, i, v)
			}
		}
	case *Unidentified1Section:
		for i, rec := range sec.Records {
			if len(rec) != 10 {
				return fmt.Errorf("%w: unidentified1 record %d is %d bytes, want 10", ErrValidation, i, len(rec))
			}
		}
	case *Unidentified2Section:
		for i, rec := range sec.Records {
			if len(rec) != 5 {
				return fmt.Errorf("%w: unidentified2 record %d is %d bytes, want 5", ErrValidation, i, len(rec))
			}
		}
	case *CustomDataSection:
		return validateEntries(sec.Entries, lim, 0)
	}
	return nil
}

func validateEntries(entries []Entry, lim Limits, depth int) error {
	if len(entries) > lim.MaxEntries {
		return fmt.Errorf("%w: %d entries", ErrValidation, len(entries))
	}
	if depth > lim.MaxDepth {
		return fmt.Errorf("%w: nesting depth %d", ErrValidation, depth)
	}
	for _, e := range entries {
		if err := validateValue(e.Type, e.Value, lim, depth); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(typ DataType, value Value, lim Limits, depth int) error {
	switch typ {
	case TypeBool:
		if _, ok := value.(BoolValue); !ok {
			return valueMismatch(typ, value)
		}
	case TypeInt:
		if _, ok := value.(IntValue); !ok {
			return valueMismatch(typ, value)
		}
	case TypeColor:
		if _, ok := value.(ColorValue); !ok {
			return valueMismatch(typ, value)
		}
	case TypeASCII, TypeUTF8, TypeUTF16:
		if _, ok := value.(StringValue); !ok {
			return valueMismatch(typ, value)
		}
	case TypeObject:
		v, ok := value.(ObjectValue)
		if !ok {
			return valueMismatch(typ, value)
		}
		return validateEntries(v, lim, depth+1)
	case TypeArray:
		v, ok := value.(ArrayValue)
		if !ok {
			return valueMismatch(typ, value)
		}
		for _, el := range v {
			if err := validateValue(el.Type, el.Value, lim, depth+1); err != nil {
				return err
			}
		}
	case TypeOpaque16:
		if _, ok := value.(Opaque16Value); !ok {
			return valueMismatch(typ, value)
		}
	case TypeTimestamp:
		if _, ok := value.(TimeValue); !ok {
			return valueMismatch(typ, value)
		}
	case TypeOpaque8:
		if _, ok := value.(Opaque8Value); !ok {
			return valueMismatch(typ, value)
		}
	case TypeCompressed:
		v, ok := value.(BlobValue)
		if !ok {
			return valueMismatch(typ, value)
		}
		for i, chunk := range v.Chunks {
			if len(chunk) > maxChunkLen {
				return fmt.Errorf("%w: blob chunk %d of %d bytes", ErrValidation, i, len(chunk))
			}
		}
	default:
		return fmt.Errorf("%w: cannot encode tag %#x", ErrUnknownDataType, uint32(typ))
	}
	return nil
}
