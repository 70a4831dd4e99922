// Command bench measures how fast each storage adapter commits autosaves
// and reloads a collection of a given size.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/bloco"
)

func main() {
	count := flag.Int("count", 500, "Number of notes to generate")
	saves := flag.Int("saves", 200, "Number of content saves to time")
	adapters := flag.String("adapters", "fs,sqlite,memory", "Comma-separated adapters to benchmark")
	keep := flag.Bool("keep", false, "Keep the benchmark directory after running")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	benchDir, err := os.MkdirTemp("", "bloco_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	for _, name := range strings.Split(*adapters, ",") {
		name = strings.TrimSpace(name)
		uri := filepath.Join(benchDir, name)
		if name == bloco.AdapterSQLite {
			uri = filepath.Join(benchDir, "notes.db")
		}
		if err := run(name, uri, *count, *saves, logger); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			os.Exit(1)
		}
	}
}

func run(adapter, uri string, count, saves int, logger *slog.Logger) error {
	ctx := context.Background()
	store, err := bloco.Open(ctx, uri, bloco.WithAdapter(adapter), bloco.WithLogger(logger))
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Printf("[%s] generating %d notes...\n", adapter, count)
	start := time.Now()
	for i := 0; i < count; i++ {
		if _, err := store.CreateNote(ctx); err != nil {
			return err
		}
		if _, err := store.SaveActiveContent(ctx, fmt.Sprintf("Note %d", i), "This is a test note."); err != nil {
			return err
		}
	}
	fmt.Printf("[%s] generation took: %v\n", adapter, time.Since(start))

	start = time.Now()
	for i := 0; i < saves; i++ {
		if _, err := store.SaveActiveContent(ctx, "Benchmark", strings.Repeat("x", i)); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("[%s] %d saves: %v (%v/save)\n", adapter, saves, elapsed, elapsed/time.Duration(max(saves, 1)))

	start = time.Now()
	if err := store.Reload(ctx); err != nil {
		return err
	}
	fmt.Printf("[%s] reload of %d notes: %v\n", adapter, store.Len(), time.Since(start))

	start = time.Now()
	found := store.Search("note 1")
	fmt.Printf("[%s] search matched %d notes in %v\n", adapter, len(found), time.Since(start))
	return nil
}
