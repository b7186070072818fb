package archive

import (
	"archive/tar"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Unpack reads an archive written by Pack and verifies the manifest digests.
// The codec must match the one the archive was packed with (gzip by
// default).
func Unpack(r io.Reader, opts ...Option) (*Archive, error) {
	cfg := newConfig(opts)
	cr, err := newDecompressor(cfg.compression, r)
	if err != nil {
		return nil, err
	}
	defer cr.Close()

	var a Archive
	sawManifest := false
	tr := tar.NewReader(cr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("archive: read tar: %w", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("archive: read %s: %w", hdr.Name, err)
		}
		switch hdr.Name {
		case manifestName:
			if err := json.Unmarshal(data, &a.Manifest); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
			}
			sawManifest = true
		case saveName:
			a.Save = data
		case gameStateName:
			a.GameState = data
		}
	}
	if !sawManifest {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, manifestName)
	}
	if a.Save == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, saveName)
	}

	if got := digest(a.Save); got != a.Manifest.SaveDigest {
		return nil, fmt.Errorf("%w: %s: %s != %s", ErrDigestMismatch, saveName, got, a.Manifest.SaveDigest)
	}
	if a.GameState != nil && a.Manifest.GameStateDigest != "" {
		if got := digest(a.GameState); got != a.Manifest.GameStateDigest {
			return nil, fmt.Errorf("%w: %s: %s != %s", ErrDigestMismatch, gameStateName, got, a.Manifest.GameStateDigest)
		}
	}
	return &a, nil
}

// UnpackFile reads the archive at path.
func UnpackFile(path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Unpack(f, opts...)
}
