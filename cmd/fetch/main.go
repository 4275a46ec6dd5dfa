package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ignite/kol-metrics/internal/config"
	"github.com/ignite/kol-metrics/internal/pipeline"
	"github.com/ignite/kol-metrics/internal/pkg/logger"
	"github.com/ignite/kol-metrics/internal/repository"
	"github.com/ignite/kol-metrics/internal/service/results"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case errors.Is(err, errUsage):
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

// run processes one local spreadsheet and writes the pipeline output as JSON
// to stdout. With -save the results are also upserted into the configured
// database.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "config/config.yaml", "path to config file")
	apiKey := fs.String("youtube-key", "", "YouTube Data API key (defaults to YOUTUBE_API_KEY)")
	save := fs.Bool("save", false, "upsert results into the configured database")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: fetch [flags] <posts.csv|posts.xlsx>\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}
	path := fs.Arg(0)

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedact(cfg.Log.RedactEnabled())

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	key := *apiKey
	if key == "" {
		key = cfg.YouTube.APIKey
	}

	out, err := pipeline.NewFromConfig(cfg).ProcessFile(ctx, data, path, key)
	if err != nil {
		return err
	}

	if *save {
		store, err := repository.Open(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("open results store: %w", err)
		}
		defer store.Close()
		stored, err := results.NewService(store.Results, "").Save(ctx, out.Results)
		if err != nil {
			return fmt.Errorf("save results: %w", err)
		}
		fmt.Fprintf(stderr, "Saved %d results (%s)\n", len(stored), store.Driver)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
