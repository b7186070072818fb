// Package archive repacks decoded save files into compressed tar archives
// for long-term storage and analysis.
//
// An archive holds three entries: manifest.json (section inventory, content
// digests, decode warnings), the losslessly re-encoded save file, and the
// inflated game-state payload as a separate blob so analysis tooling can get
// at it without re-running the chunk reassembly. The tar stream is wrapped in
// a selectable compression codec.
package archive

import (
	"errors"
	"time"

	civ6save "github.com/SztoDwa/civ-vi-save-repackaging"
	"github.com/SztoDwa/civ-vi-save-repackaging/batch"
)

// Compression selects the codec wrapped around the tar stream.
type Compression uint8

const (
	CompNone Compression = iota
	CompGzip
	CompZstd
	CompLZ4
	CompBrotli
)

// String returns the codec name as used in file extensions.
func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompGzip:
		return "gzip"
	case CompZstd:
		return "zstd"
	case CompLZ4:
		return "lz4"
	case CompBrotli:
		return "brotli"
	}
	return "unknown"
}

var (
	ErrUnknownCompression = errors.New("archive: unknown compression")
	ErrDigestMismatch     = errors.New("archive: content digest mismatch")
	ErrMissingEntry       = errors.New("archive: missing archive entry")
	ErrInvalidManifest    = errors.New("archive: invalid manifest")
)

// Tar entry names.
const (
	manifestName  = "manifest.json"
	saveName      = "save.civ6save"
	gameStateName = "gamestate.bin"
)

// SectionInfo describes one section of the archived save.
type SectionInfo struct {
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// Manifest is the machine-readable index stored alongside the save.
type Manifest struct {
	Source          string        `json:"source,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	Summary         batch.Summary `json:"summary,omitzero"`
	Sections        []SectionInfo `json:"sections"`
	SaveSize        int           `json:"save_size"`
	SaveDigest      string        `json:"save_digest"`
	GameStateSize   int           `json:"game_state_size,omitempty"`
	GameStateDigest string        `json:"game_state_digest,omitempty"`
	Warnings        []string      `json:"warnings,omitempty"`
}

// Archive is the unpacked content of one repackaged save.
type Archive struct {
	Manifest  Manifest
	Save      []byte // the re-encoded .Civ6Save, decodable with civ6save.Decode
	GameState []byte // inflated game-state payload, absent in metadata-only packs
}

// Decode decodes the archived save file.
func (a *Archive) Decode(opts ...civ6save.ReadOption) (*civ6save.Document, error) {
	return civ6save.Decode(a.Save, opts...)
}

type config struct {
	compression Compression
	source      string
	now         func() time.Time
}

// Option customizes Pack and Unpack.
type Option func(*config)

// WithCompression selects the codec around the tar stream. Pack defaults to
// gzip; Unpack must be told the codec the archive was written with, since
// brotli streams carry no magic bytes to sniff.
func WithCompression(comp Compression) Option {
	return func(c *config) { c.compression = comp }
}

// WithSource records the origin of the save (typically its file path) in the
// manifest.
func WithSource(source string) Option {
	return func(c *config) { c.source = source }
}

func withClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

func newConfig(opts []Option) config {
	cfg := config{compression: CompGzip, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
