// Package civ6save decodes and re-encodes Civilization VI save-file
// containers (.Civ6Save).
//
// A save file is a little-endian, word-aligned, tag-based binary container:
// a 4-byte magic marker followed by a fixed, positionally-ordered sequence of
// sections. Most sections hold self-describing tagged entries of the form
// (identifier, type, payload); one section holds the game state as a chunked
// zlib stream that this package reassembles and inflates but otherwise treats
// as an opaque payload.
//
// # Decoding
//
//	data, _ := os.ReadFile("AutoSave_0001.Civ6Save")
//	doc, err := civ6save.Decode(data)
//
// Decode consumes the entire buffer or fails: there is no resynchronization
// signal in the format, so a single misaligned word desynchronizes everything
// that follows. A failed decode yields a structured error carrying the byte
// offset where decoding stopped.
//
// The returned [Document] is immutable by convention and safe for concurrent
// reads. Entry values, unidentified section payloads and compressed chunks
// may alias the input buffer; callers that mutate the input after decoding
// must copy first.
//
// # Encoding
//
//	out, err := civ6save.Encode(doc)
//
// Encode is lossless for every decoded document: the opaque game-state
// section and compressed blob entries are re-emitted byte-for-byte from their
// stored chunk framing rather than re-deflated, so Decode(Encode(doc))
// reproduces doc exactly.
//
// # Security Considerations
//
// The package guards against hostile inputs (oversized allocations,
// decompression bombs, unbounded recursion in nested objects) via
// configurable [Limits] enforced during decoding.
//
// Identifiers are opaque 32-bit field-name hashes; the names subpackage maps
// the known ones to readable names. The archive and batch subpackages layer
// repackaging and multi-file scanning on top of this package.
package civ6save
