package archive

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"

	civ6save "github.com/SztoDwa/civ-vi-save-repackaging"
	"github.com/SztoDwa/civ-vi-save-repackaging/batch"
)

// Pack re-encodes doc and writes it to w as a compressed tar archive.
//
// The archive holds manifest.json, the byte-exact save file, and (when the
// document was decoded with inflation enabled) the inflated game-state
// payload. Digests in the manifest are XXH64 over each entry's content.
func Pack(w io.Writer, doc *civ6save.Document, opts ...Option) error {
	cfg := newConfig(opts)

	save, err := civ6save.Encode(doc)
	if err != nil {
		return err
	}

	man := Manifest{
		Source:     cfg.source,
		CreatedAt:  cfg.now().UTC(),
		Summary:    batch.Summarize(doc),
		SaveSize:   len(save),
		SaveDigest: digest(save),
		Warnings:   doc.Warnings,
	}
	for _, span := range doc.Layout {
		man.Sections = append(man.Sections, SectionInfo{
			Kind:   span.Kind.String(),
			Offset: span.Offset,
			Length: span.Length,
		})
	}
	var gameState []byte
	if cs := doc.Compressed(); cs != nil && cs.Inflated != nil {
		gameState = cs.Inflated
		man.GameStateSize = len(gameState)
		man.GameStateDigest = digest(gameState)
	}

	manifest, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return err
	}

	cw, err := newCompressor(cfg.compression, w)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)
	entries := []struct {
		name string
		data []byte
	}{
		{manifestName, manifest},
		{saveName, save},
	}
	if gameState != nil {
		entries = append(entries, struct {
			name string
			data []byte
		}{gameStateName, gameState})
	}
	for _, e := range entries {
		hdr := &tar.Header{
			Name:    e.name,
			Mode:    0o644,
			Size:    int64(len(e.data)),
			ModTime: man.CreatedAt,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("archive: write %s header: %w", e.name, err)
		}
		if _, err := tw.Write(e.data); err != nil {
			return fmt.Errorf("archive: write %s: %w", e.name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}

// PackFile decodes the save at savePath and writes the archive to outPath.
func PackFile(savePath, outPath string, opts ...Option) error {
	data, err := os.ReadFile(savePath)
	if err != nil {
		return err
	}
	doc, err := civ6save.Decode(data)
	if err != nil {
		return fmt.Errorf("archive: decode %s: %w", savePath, err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	opts = append(opts, WithSource(savePath))
	if err := Pack(out, doc, opts...); err != nil {
		out.Close()
		os.Remove(outPath)
		return err
	}
	return out.Close()
}

func digest(data []byte) string {
	return fmt.Sprintf("xxh64:%016x", xxhash.Sum64(data))
}
