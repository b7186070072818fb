package civ6save

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// readChunkedStream reads length-prefixed chunks until the terminator: each
// chunk is a 4-byte little-endian length L followed by L raw bytes, L may
// never exceed 64 KiB, and the first chunk strictly shorter than 64 KiB ends
// the stream (and is part of it). The returned slices preserve the original
// framing so the stream can be re-emitted byte-for-byte.
func readChunkedStream(c *cursor) ([][]byte, error) {
	var chunks [][]byte
	for {
		at := c.pos()
		n, err := c.readUint32()
		if err != nil {
			return nil, err
		}
		if n > maxChunkLen {
			return nil, fmt.Errorf("%w: chunk of %d bytes at offset %#x", ErrChunkSizeExceeded, n, at)
		}
		chunk, err := c.readBytes(int(n))
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
		if n < maxChunkLen {
			return chunks, nil
		}
	}
}

// readChunkedToEnd reads chunks until the cursor is exhausted. Compressed
// blob entries carry their stream inside a length-prefixed string, so the
// string boundary terminates the framing instead of a short chunk.
func readChunkedToEnd(c *cursor) ([][]byte, error) {
	var chunks [][]byte
	for c.remaining() > 0 {
		at := c.pos()
		n, err := c.readUint32()
		if err != nil {
			return nil, err
		}
		if n > maxChunkLen {
			return nil, fmt.Errorf("%w: chunk of %d bytes at offset %#x", ErrChunkSizeExceeded, n, at)
		}
		chunk, err := c.readBytes(int(n))
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// inflateChunks concatenates a chunk stream and runs zlib inflate over it.
// maxSize bounds the output to keep hostile streams from expanding without
// limit; offset is where the stream started, for diagnostics only.
func inflateChunks(chunks [][]byte, maxSize uint64, offset int) ([]byte, error) {
	raw := bytes.Join(chunks, nil)
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: stream at offset %#x: %v", ErrInflate, offset, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, int64(maxSize)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: stream at offset %#x: %v", ErrInflate, offset, err)
	}
	if uint64(len(out)) > maxSize {
		return nil, fmt.Errorf("%w: inflated stream at offset %#x exceeds %d bytes", ErrLimitExceeded, offset, maxSize)
	}
	return out, nil
}

// appendChunks re-emits a chunk stream with its original framing.
func appendChunks(buf []byte, chunks [][]byte) []byte {
	for _, chunk := range chunks {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(chunk)))
		buf = append(buf, chunk...)
	}
	return buf
}
