package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	civ6save "github.com/SztoDwa/civ-vi-save-repackaging"
)

const defaultCacheSize = 256

// Result is the outcome of decoding one file. Failures are per-file: a
// corrupt save never aborts the rest of the scan.
type Result struct {
	Path    string
	Summary Summary
	Err     error
}

// Scanner decodes save files in parallel and summarizes them. Summaries of
// unchanged files (same path, size and mtime) are served from an LRU cache.
// A Scanner is safe for concurrent use.
type Scanner struct {
	workers  int
	log      zerolog.Logger
	readOpts []civ6save.ReadOption
	cache    *lru.Cache[string, Summary]
}

// ScannerOption customizes a Scanner.
type ScannerOption func(*Scanner)

// WithWorkers sets the number of decode goroutines. Defaults to GOMAXPROCS.
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) { s.workers = n }
}

// WithLogger sets the progress logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) ScannerOption {
	return func(s *Scanner) { s.log = log }
}

// WithReadOptions replaces the decode options. The default is
// civ6save.WithoutInflate(), since summaries never touch the game state.
func WithReadOptions(opts ...civ6save.ReadOption) ScannerOption {
	return func(s *Scanner) { s.readOpts = opts }
}

// NewScanner creates a Scanner with a summary cache of cacheSize entries
// (<= 0 selects the default).
func NewScanner(cacheSize int, opts ...ScannerOption) (*Scanner, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, Summary](cacheSize)
	if err != nil {
		return nil, err
	}
	s := &Scanner{
		workers:  runtime.GOMAXPROCS(0),
		log:      zerolog.Nop(),
		readOpts: []civ6save.ReadOption{civ6save.WithoutInflate()},
		cache:    cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s, nil
}

// Scan decodes every path and returns one Result per path, in input order.
// Cancelling ctx stops picking up new files; files already being decoded
// finish (there is no safe mid-file cancellation point in the format).
func (s *Scanner) Scan(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.scanOne(paths[i])
			}
		}()
	}

feed:
	for i := range paths {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(paths); j++ {
				results[j] = Result{Path: paths[j], Err: err}
			}
			break feed
		}
		select {
		case <-ctx.Done():
			for j := i; j < len(paths); j++ {
				results[j] = Result{Path: paths[j], Err: ctx.Err()}
			}
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

// ScanDir scans every .Civ6Save file directly under dir, sorted by name.
func (s *Scanner) ScanDir(ctx context.Context, dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".civ6save") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return s.Scan(ctx, paths), nil
}

func (s *Scanner) scanOne(path string) Result {
	res := Result{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = err
		return res
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	if sum, ok := s.cache.Get(key); ok {
		s.log.Debug().Str("path", path).Msg("summary cache hit")
		res.Summary = sum
		return res
	}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}
	doc, err := civ6save.Decode(data, s.readOpts...)
	if err != nil {
		s.log.Warn().Str("path", path).Err(err).Msg("decode failed")
		res.Err = err
		return res
	}
	res.Summary = Summarize(doc)
	s.cache.Add(key, res.Summary)
	s.log.Debug().
		Str("path", path).
		Uint32("turn", res.Summary.CurrentTurn).
		Int("bytes", doc.BytesConsumed).
		Msg("decoded")
	return res
}
