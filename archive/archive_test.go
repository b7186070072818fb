package archive

import (
	"archive/tar"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	civ6save "github.com/SztoDwa/civ-vi-save-repackaging"
	"github.com/SztoDwa/civ-vi-save-repackaging/names"
)

const gameStatePayload = "game state payload"

// buildSave assembles a minimal but complete save file: a bare terminator
// unit, empty middle sections, one compressed chunk, and an empty trailer
// run.
func buildSave(t *testing.T) []byte {
	t.Helper()
	u32 := func(v uint32) []byte {
		return binary.LittleEndian.AppendUint32(nil, v)
	}

	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	_, err := zw.Write([]byte(gameStatePayload))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var b []byte
	b = append(b, civ6save.Magic[:]...)
	b = append(b, u32(civ6save.SectionTerminator)...)
	b = append(b, u32(0)...) // no subsections
	b = append(b, u32(0)...) // no idless entries
	b = append(b, u32(uint32(z.Len()))...)
	b = append(b, z.Bytes()...)
	b = append(b, u32(3)...) // bitmap identifier, then an empty grid
	b = append(b, u32(0)...)
	b = append(b, u32(0)...)
	b = append(b, u32(civ6save.Unidentified1Identifier)...)
	b = append(b, u32(0)...)
	b = append(b, u32(0)...) // empty blob
	b = append(b, u32(0)...) // no 5-byte records
	b = append(b, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0)
	b = append(b, u32(4)...)
	b = append(b, "Data"...)
	b = append(b, u32(0)...)
	return b
}

func testDoc(t *testing.T, opts ...civ6save.ReadOption) *civ6save.Document {
	t.Helper()
	doc, err := civ6save.Decode(buildSave(t), opts...)
	require.NoError(t, err)
	return doc
}

func TestPackUnpackRoundTrip(t *testing.T) {
	codecs := []Compression{CompNone, CompGzip, CompZstd, CompLZ4, CompBrotli}
	clock := func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	doc := testDoc(t)

	for _, comp := range codecs {
		t.Run(comp.String(), func(t *testing.T) {
			var buf bytes.Buffer
			err := Pack(&buf, doc,
				WithCompression(comp),
				WithSource("saves/alpha.Civ6Save"),
				withClock(clock))
			require.NoError(t, err)

			a, err := Unpack(bytes.NewReader(buf.Bytes()), WithCompression(comp))
			require.NoError(t, err)

			assert.Equal(t, "saves/alpha.Civ6Save", a.Manifest.Source)
			assert.Equal(t, clock(), a.Manifest.CreatedAt)
			assert.Equal(t, buildSave(t), a.Save)
			assert.Equal(t, []byte(gameStatePayload), a.GameState)
			assert.Equal(t, len(gameStatePayload), a.Manifest.GameStateSize)
			assert.Len(t, a.Manifest.Sections, 8)
			assert.Equal(t, "tagged", a.Manifest.Sections[0].Kind)

			got, err := a.Decode()
			require.NoError(t, err)
			assert.Equal(t, doc, got)
		})
	}
}

func TestPackManifestSummary(t *testing.T) {
	u32 := func(v uint32) []byte {
		return binary.LittleEndian.AppendUint32(nil, v)
	}
	// A save whose leading unit carries a CurrentTurn entry.
	save := buildSave(t)
	var unit []byte
	unit = append(unit, u32(0x1111)...)
	unit = append(unit, u32(1)...)
	unit = append(unit, u32(names.CurrentTurn)...)
	unit = append(unit, u32(uint32(civ6save.TypeInt))...)
	unit = append(unit, make([]byte, 8)...)
	unit = append(unit, u32(42)...)
	save = append(save[:4:4], append(unit, save[4:]...)...)

	doc, err := civ6save.Decode(save)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Pack(&buf, doc))
	a, err := Unpack(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, uint32(42), a.Manifest.Summary.CurrentTurn)
}

func TestPackWithoutGameState(t *testing.T) {
	doc := testDoc(t, civ6save.WithoutInflate())

	var buf bytes.Buffer
	require.NoError(t, Pack(&buf, doc))

	a, err := Unpack(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Nil(t, a.GameState)
	assert.Empty(t, a.Manifest.GameStateDigest)
	assert.Zero(t, a.Manifest.GameStateSize)
}

func TestUnknownCompression(t *testing.T) {
	var buf bytes.Buffer
	err := Pack(&buf, testDoc(t), WithCompression(Compression(99)))
	assert.ErrorIs(t, err, ErrUnknownCompression)

	_, err = Unpack(bytes.NewReader(nil), WithCompression(Compression(99)))
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestUnpackWrongCodec(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Pack(&buf, testDoc(t), WithCompression(CompGzip)))

	_, err := Unpack(bytes.NewReader(buf.Bytes()), WithCompression(CompZstd))
	assert.Error(t, err)
}

// writeTar builds an uncompressed archive with an arbitrary entry set.
func writeTar(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, data := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(data)),
		}))
		_, err := tw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func TestUnpackMissingEntries(t *testing.T) {
	manifest, err := json.Marshal(Manifest{SaveDigest: digest(nil)})
	require.NoError(t, err)

	data := writeTar(t, map[string][]byte{saveName: {1, 2, 3}})
	_, err = Unpack(bytes.NewReader(data), WithCompression(CompNone))
	assert.ErrorIs(t, err, ErrMissingEntry)

	data = writeTar(t, map[string][]byte{manifestName: manifest})
	_, err = Unpack(bytes.NewReader(data), WithCompression(CompNone))
	assert.ErrorIs(t, err, ErrMissingEntry)
}

func TestUnpackInvalidManifest(t *testing.T) {
	data := writeTar(t, map[string][]byte{
		manifestName: []byte("not json"),
		saveName:     {1},
	})
	_, err := Unpack(bytes.NewReader(data), WithCompression(CompNone))
	assert.ErrorIs(t, err, ErrInvalidManifest)
}

func TestUnpackDigestMismatch(t *testing.T) {
	save := buildSave(t)
	manifest, err := json.Marshal(Manifest{SaveDigest: "xxh64:0000000000000000"})
	require.NoError(t, err)

	data := writeTar(t, map[string][]byte{
		manifestName: manifest,
		saveName:     save,
	})
	_, err = Unpack(bytes.NewReader(data), WithCompression(CompNone))
	assert.ErrorIs(t, err, ErrDigestMismatch)
}

func TestPackFileUnpackFile(t *testing.T) {
	dir := t.TempDir()
	savePath := filepath.Join(dir, "game.Civ6Save")
	outPath := filepath.Join(dir, "game.tar.gz")
	require.NoError(t, os.WriteFile(savePath, buildSave(t), 0o644))

	require.NoError(t, PackFile(savePath, outPath))

	a, err := UnpackFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, savePath, a.Manifest.Source)
	assert.Equal(t, buildSave(t), a.Save)

	_, err = UnpackFile(filepath.Join(dir, "missing.tar.gz"))
	assert.Error(t, err)
}
