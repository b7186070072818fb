package civ6save

import "fmt"

// Encode serializes doc back to the wire format.
//
// The document is validated first: the section sequence must have the fixed
// positional shape, entry values must match their type tags, and the opaque
// sections must carry well-formed payloads. Compressed content is re-emitted
// byte-for-byte from its stored chunk framing, never re-deflated, so a
// decoded document encodes to the exact original bytes.
func Encode(doc *Document, opts ...WriteOption) ([]byte, error) {
	cfg := writeConfig{limits: defaultLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", ErrValidation)
	}
	if err := validateDocument(doc, cfg.limits); err != nil {
		return nil, err
	}

	buf := append([]byte(nil), Magic[:]...)
	var err error
	for _, s := range doc.Sections {
		if buf, err = appendSection(buf, s); err != nil {
			return nil, err
		}
	}
	return buf, nil
}
