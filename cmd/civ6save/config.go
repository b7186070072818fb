package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/SztoDwa/civ-vi-save-repackaging/archive"
)

type fileConfig struct {
	Workers     int    `toml:"workers"`
	CacheSize   int    `toml:"cache_size"`
	Compression string `toml:"compression"`
	NamesFile   string `toml:"names_file"`
	Verbose     bool   `toml:"verbose"`
}

// loadConfig reads the optional TOML config. A missing file is not an error;
// a malformed one is.
func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	_, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return fileConfig{}, nil
	}
	if err != nil {
		return fileConfig{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func parseCompression(name string) (archive.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gzip":
		return archive.CompGzip, nil
	case "none":
		return archive.CompNone, nil
	case "zstd":
		return archive.CompZstd, nil
	case "lz4":
		return archive.CompLZ4, nil
	case "brotli":
		return archive.CompBrotli, nil
	}
	return 0, fmt.Errorf("unknown compression %q (want none, gzip, zstd, lz4 or brotli)", name)
}
