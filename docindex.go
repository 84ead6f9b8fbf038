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


// Package docindex builds a vector index from a directory of documents.
package docindex

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/ai/gemini"
	"github.com/poiesic/docindex/ai/openai"
	"github.com/poiesic/docindex/chunker"
	"github.com/poiesic/docindex/config"
	"github.com/poiesic/docindex/embedding"
	"github.com/poiesic/docindex/formats"
	"github.com/poiesic/docindex/index"
	"github.com/poiesic/docindex/loader"
	"github.com/poiesic/docindex/storage"
	"github.com/poiesic/docindex/storage/badger"
	"github.com/poiesic/docindex/storage/chroma"
	"github.com/poiesic/docindex/watch"
)

// Indexer wires a configuration to a provider, a vector store and the
// rebuild pipeline.
type Indexer struct {
	cfg      *config.Config
	provider ai.AIProvider
	store    storage.VectorStore
	registry *formats.Registry
	builder  *index.Builder
	logger   *slog.Logger
}

// Option configures an Indexer.
type Option func(*indexerOptions)

type indexerOptions struct {
	provider ai.AIProvider
	store    storage.VectorStore
	monitor  index.RebuildMonitor
	logger   *slog.Logger
}

// WithProvider uses provider instead of the one named by the configuration.
// The Indexer takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *indexerOptions) {
		o.provider = provider
	}
}

// WithStore uses store instead of the one named by the configuration.
// The Indexer takes ownership and closes it.
func WithStore(store storage.VectorStore) Option {
	return func(o *indexerOptions) {
		o.store = store
	}
}

// WithMonitor reports rebuild progress to monitor.
func WithMonitor(monitor index.RebuildMonitor) Option {
	return func(o *indexerOptions) {
		o.monitor = monitor
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *indexerOptions) {
		o.logger = logger
	}
}

// New validates cfg and builds an Indexer from it.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Indexer, error) {
	options := &indexerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = newProvider(ctx, &cfg.AI)
		if err != nil {
			return nil, err
		}
	}

	store := options.store
	if store == nil {
		var err error
		store, err = newStore(&cfg.Store, logger)
		if err != nil {
			provider.Close()
			return nil, err
		}
	}

	registry := formats.DefaultRegistry()
	ldr, err := loader.New(
		loader.WithRegistry(registry),
		loader.WithWorkers(cfg.LoaderWorkers),
		loader.WithFileTolerance(cfg.TolerateFileErrors),
		loader.WithLogger(logger),
	)
	if err != nil {
		store.Close()
		provider.Close()
		return nil, err
	}

	splitter, err := chunker.New(
		chunker.WithChunkSize(cfg.ChunkSize),
		chunker.WithOverlap(cfg.ChunkOverlap),
		chunker.WithLogger(logger),
	)
	if err != nil {
		store.Close()
		provider.Close()
		return nil, err
	}

	builderOpts := []index.Option{
		index.WithLoader(ldr),
		index.WithSplitter(splitter),
		index.WithEmbeddingConfig(embeddingConfig(cfg)),
		index.WithLogger(logger),
	}
	if options.monitor != nil {
		builderOpts = append(builderOpts, index.WithMonitor(options.monitor))
	}
	builder, err := index.NewBuilder(store, provider.Embedder(), builderOpts...)
	if err != nil {
		store.Close()
		provider.Close()
		return nil, err
	}

	return &Indexer{
		cfg:      cfg,
		provider: provider,
		store:    store,
		registry: registry,
		builder:  builder,
		logger:   logger,
	}, nil
}

func newProvider(ctx context.Context, cfg *ai.Config) (ai.AIProvider, error) {
	switch cfg.Provider {
	case ai.ProviderGemini:
		return gemini.NewProvider(ctx, cfg)
	case ai.ProviderOpenAI, "":
		return openai.NewProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func newStore(cfg *config.StoreConfig, logger *slog.Logger) (storage.VectorStore, error) {
	switch cfg.Backend {
	case config.StoreChroma:
		return chroma.NewStore(
			chroma.WithBaseURL(cfg.ChromaURL),
			chroma.WithCollectionPrefix(cfg.CollectionPrefix),
			chroma.WithLogger(logger),
		)
	case config.StoreBadger, "":
		return badger.NewStore(badger.WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.Backend)
	}
}

func embeddingConfig(cfg *config.Config) *embedding.Config {
	return &embedding.Config{
		BatchSize:         cfg.BatchSize,
		Workers:           cfg.Workers,
		MaxRetries:        cfg.MaxRetries,
		RetryDelay:        cfg.RetryDelay,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}
}

// Config returns the configuration the Indexer was built from.
func (ix *Indexer) Config() *config.Config {
	return ix.cfg
}

// Rebuild replaces the index at the configured location with one built
// from the configured root and returns the number of chunks stored.
func (ix *Indexer) Rebuild(ctx context.Context) (int, error) {
	return ix.builder.Rebuild(ctx, ix.cfg.Root, ix.cfg.IndexLocation)
}

// Stats describes the active index generation.
func (ix *Indexer) Stats(ctx context.Context) (*storage.IndexInfo, error) {
	reader, err := index.Open(ctx, ix.store, ix.cfg.IndexLocation)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return reader.Info(ctx)
}

// Watch rebuilds once, then again whenever supported files under the
// root change, until ctx is canceled. It fails with index.ErrRootNotFound when
// the root is missing.
func (ix *Indexer) Watch(ctx context.Context, opts ...watch.Option) error {
	if err := loader.CheckRoot(ix.cfg.Root); err != nil {
		return err
	}
	if _, err := ix.Rebuild(ctx); err != nil {
		ix.logger.Error("initial rebuild failed", "err", err)
		if ctx.Err() != nil {
			return nil
		}
	}

	rebuild := func(ctx context.Context) error {
		_, err := ix.Rebuild(ctx)
		return err
	}
	base := []watch.Option{
		watch.WithFilter(func(path string) bool {
			_, ok := ix.registry.Match(path)
			return ok
		}),
		watch.WithIgnore(ix.cfg.IndexLocation),
		watch.WithLogger(ix.logger),
	}
	w, err := watch.New(ix.cfg.Root, rebuild, append(base, opts...)...)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

// Close releases the provider and the store.
func (ix *Indexer) Close() error {
	if err := ix.provider.Close(); err != nil {
		ix.logger.Error("error closing AI provider", "err", err)
	}
	if err := ix.store.Close(); err != nil {
		ix.logger.Error("error closing vector store", "err", err)
		return err
	}
	return nil
}
