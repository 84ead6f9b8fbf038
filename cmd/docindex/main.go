// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/poiesic/docindex"
	"github.com/poiesic/docindex/config"
	"github.com/poiesic/docindex/index"
	"github.com/poiesic/docindex/watch"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docindex",
		Usage: "Build a vector index from a directory of documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"DOCINDEX_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file if it exists",
				Value: ".env",
			},
		},
		Before: before,
		Commands: []*cli.Command{
			{
				Name:   "rebuild",
				Usage:  "Rebuild the index from the corpus",
				Action: rebuildCommand,
				Flags:  append(overrideFlags(), reportFlag()),
			},
			{
				Name:   "stats",
				Usage:  "Describe the active index",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "index",
						Aliases: []string{"i"},
						Usage:   "Index location (overrides config)",
					},
				},
			},
			{
				Name:   "watch",
				Usage:  "Rebuild the index whenever the corpus changes",
				Action: watchCommand,
				Flags: append(overrideFlags(),
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before a rebuild starts",
						Value: watch.DefaultDebounce,
					},
				),
			},
		},
	}
}

func overrideFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "Corpus directory (overrides config)",
		},
		&cli.StringFlag{
			Name:    "index",
			Aliases: []string{"i"},
			Usage:   "Index location (overrides config)",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "Vector store backend: badger or chroma (overrides config)",
		},
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Maximum chunk length in characters (overrides config)",
		},
		&cli.IntFlag{
			Name:  "chunk-overlap",
			Usage: "Characters shared by consecutive chunks (overrides config)",
		},
	}
}

func reportFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "report-interval",
		Usage: "Report progress every N chunks when stderr is a terminal",
		Value: 100,
	}
}

func before(c *cli.Context) error {
	if err := loadEnvFile(c.String("env-file")); err != nil {
		return err
	}
	return setupLogger(c)
}

// loadEnvFile ignores a missing file.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// loadConfig reads the configuration file and environment, then applies
// command line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if v := c.String("root"); v != "" {
		cfg.Root = v
	}
	if v := c.String("index"); v != "" {
		cfg.IndexLocation = v
	}
	if v := c.String("store"); v != "" {
		cfg.Store.Backend = v
	}
	if c.IsSet("chunk-size") {
		cfg.ChunkSize = c.Int("chunk-size")
	}
	if c.IsSet("chunk-overlap") {
		cfg.ChunkOverlap = c.Int("chunk-overlap")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func openIndexer(ctx context.Context, c *cli.Context, cfg *config.Config) (*docindex.Indexer, error) {
	var opts []docindex.Option
	if c.IsSet("report-interval") || isatty.IsTerminal(os.Stderr.Fd()) {
		opts = append(opts, docindex.WithMonitor(index.NewProgressMonitor(os.Stderr, c.Int("report-interval"))))
	}
	return docindex.New(ctx, cfg, opts...)
}

func rebuildCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ix, err := openIndexer(ctx, c, cfg)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}
	defer ix.Close()

	fmt.Fprintf(os.Stderr, "Corpus: %s\n", cfg.Root)
	fmt.Fprintf(os.Stderr, "Index: %s (%s)\n", cfg.IndexLocation, cfg.Store.Backend)
	fmt.Fprintf(os.Stderr, "Embedding: %s %s\n", cfg.AI.Provider, cfg.AI.EmbeddingModel)
	fmt.Fprintln(os.Stderr)

	count, err := ix.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Indexed %d chunks.\n", count)
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ix, err := docindex.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}
	defer ix.Close()

	info, err := ix.Stats(ctx)
	if err != nil {
		return err
	}
	active, err := index.Active(cfg.IndexLocation)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Generation: %s\n", active)
	fmt.Fprintf(w, "Chunks: %d\n", info.Chunks)
	if info.Dimension > 0 {
		fmt.Fprintf(w, "Dimension: %d\n", info.Dimension)
	}
	if !info.CommittedAt.IsZero() {
		fmt.Fprintf(w, "Committed: %s\n", info.CommittedAt.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

func watchCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ix, err := docindex.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}
	defer ix.Close()

	slog.Info("watching corpus", "root", cfg.Root, "index", cfg.IndexLocation)
	return ix.Watch(ctx, watch.WithDebounce(c.Duration("debounce")))
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
