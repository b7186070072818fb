package archive

import (
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// newCompressor wraps w in the selected codec. The returned writer must be
// closed to flush the stream; closing it does not close w.
func newCompressor(comp Compression, w io.Writer) (io.WriteCloser, error) {
	switch comp {
	case CompNone:
		return nopWriteCloser{w}, nil
	case CompGzip:
		return gzip.NewWriter(w), nil
	case CompZstd:
		return zstd.NewWriter(w)
	case CompLZ4:
		return lz4.NewWriter(w), nil
	case CompBrotli:
		return brotli.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, comp)
	}
}

// newDecompressor wraps r in the selected codec.
func newDecompressor(comp Compression, r io.Reader) (io.ReadCloser, error) {
	switch comp {
	case CompNone:
		return io.NopCloser(r), nil
	case CompGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case CompZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	case CompLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, comp)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
