// Command civ6save inspects, repacks and batch-scans Civilization VI save
// files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	civ6save "github.com/SztoDwa/civ-vi-save-repackaging"
	"github.com/SztoDwa/civ-vi-save-repackaging/archive"
	"github.com/SztoDwa/civ-vi-save-repackaging/batch"
	"github.com/SztoDwa/civ-vi-save-repackaging/names"
)

const usage = `usage: civ6save <command> [flags]

commands:
  inspect <file>          print save summary and section layout
  pack    <file>          repack a save into a compressed tar archive
  unpack  <archive>       extract a packed archive
  scan    <dir>           summarize every save in a directory

common flags:
  -config path            TOML config file (default civ6save.toml)
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "inspect":
		err = runInspect(os.Args[2:])
	case "pack":
		err = runPack(os.Args[2:])
	case "unpack":
		err = runUnpack(os.Args[2:])
	case "scan":
		err = runScan(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Fprint(os.Stderr, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "civ6save: unknown command %q\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "civ6save: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func nameTable(cfg fileConfig) (*names.Table, error) {
	table := names.Known()
	if cfg.NamesFile != "" {
		if err := table.LoadTOML(cfg.NamesFile); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	configPath := fs.String("config", "civ6save.toml", "TOML config file")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("inspect: expected one save file")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	table, err := nameTable(cfg)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	doc, err := civ6save.Decode(data)
	if err != nil {
		return err
	}

	sum := batch.Summarize(doc)
	fmt.Printf("%s\n", fs.Arg(0))
	fmt.Printf("  name:      %s\n", sum.DisplayName)
	fmt.Printf("  version:   %s\n", sum.SavedByVersion)
	fmt.Printf("  turn:      %d\n", sum.CurrentTurn)
	if !sum.SaveTime.IsZero() {
		fmt.Printf("  saved:     %s\n", sum.SaveTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("  civ:       %s\n", sum.Civilization)
	fmt.Printf("  leader:    %s\n", sum.Leader)
	fmt.Printf("  map:       %s (%s)\n", sum.MapScript, sum.MapSize)
	for _, m := range sum.EnabledMods {
		fmt.Printf("  mod:       %s (%s)\n", m.Name, m.ID)
	}
	for _, w := range doc.Warnings {
		fmt.Printf("  warning:   %s\n", w)
	}

	fmt.Println("sections:")
	for _, span := range doc.Layout {
		fmt.Printf("  %#08x  %8d  %s\n", span.Offset, span.Length, span.Kind)
	}
	fmt.Println("top-level entries:")
	for _, s := range doc.Sections {
		ts, ok := s.(*civ6save.TaggedSection)
		if !ok {
			continue
		}
		for _, e := range ts.Entries {
			fmt.Printf("  %-28s %s\n", table.Label(e.ID), e.Type)
		}
	}
	return nil
}

func runPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	configPath := fs.String("config", "civ6save.toml", "TOML config file")
	out := fs.String("o", "", "output path (default <file>.tar.<codec>)")
	codec := fs.String("c", "", "compression: none, gzip, zstd, lz4, brotli")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("pack: expected one save file")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *codec == "" {
		*codec = cfg.Compression
	}
	comp, err := parseCompression(*codec)
	if err != nil {
		return err
	}
	outPath := *out
	if outPath == "" {
		outPath = fs.Arg(0) + ".tar." + comp.String()
	}
	if err := archive.PackFile(fs.Arg(0), outPath, archive.WithCompression(comp)); err != nil {
		return err
	}
	fmt.Println(outPath)
	return nil
}

func runUnpack(args []string) error {
	fs := flag.NewFlagSet("unpack", flag.ExitOnError)
	out := fs.String("o", ".", "output directory")
	codec := fs.String("c", "gzip", "compression the archive was packed with")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("unpack: expected one archive")
	}
	comp, err := parseCompression(*codec)
	if err != nil {
		return err
	}
	a, err := archive.UnpackFile(fs.Arg(0), archive.WithCompression(comp))
	if err != nil {
		return err
	}
	base := filepath.Join(*out, filepath.Base(a.Manifest.Source))
	if a.Manifest.Source == "" {
		base = filepath.Join(*out, "save.civ6save")
	}
	if err := os.WriteFile(base, a.Save, 0o644); err != nil {
		return err
	}
	fmt.Println(base)
	if a.GameState != nil {
		gs := base + ".gamestate.bin"
		if err := os.WriteFile(gs, a.GameState, 0o644); err != nil {
			return err
		}
		fmt.Println(gs)
	}
	return nil
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", "civ6save.toml", "TOML config file")
	workers := fs.Int("workers", 0, "decode workers (default GOMAXPROCS)")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("scan: expected one directory")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *workers == 0 {
		*workers = cfg.Workers
	}
	log := newLogger(*verbose || cfg.Verbose)

	var opts []batch.ScannerOption
	opts = append(opts, batch.WithLogger(log))
	if *workers > 0 {
		opts = append(opts, batch.WithWorkers(*workers))
	}
	scanner, err := batch.NewScanner(cfg.CacheSize, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := scanner.ScanDir(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Error().Str("path", r.Path).Err(r.Err).Msg("skipped")
			continue
		}
		fmt.Printf("%-40s turn %4d  %-12s %s\n",
			filepath.Base(r.Path), r.Summary.CurrentTurn, r.Summary.Leader,
			r.Summary.SaveTime.Format("2006-01-02 15:04"))
	}
	if failed > 0 {
		return fmt.Errorf("scan: %d of %d files failed", failed, len(results))
	}
	return nil
}
