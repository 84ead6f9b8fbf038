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


package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/chunker"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/embedding"
	"github.com/poiesic/docindex/loader"
	"github.com/poiesic/docindex/storage"
)

// sampleChunk is the index of the chunk logged at debug level after splitting.
const sampleChunk = 10

// Builder performs full index rebuilds.
type Builder struct {
	store    storage.VectorStore
	embedder ai.Embedder
	loader   *loader.Loader
	splitter *chunker.Splitter
	config   *embedding.Config
	monitor  RebuildMonitor
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithLoader replaces the default document loader.
func WithLoader(l *loader.Loader) Option {
	return func(b *Builder) error {
		if l == nil {
			return errors.New("loader cannot be nil")
		}
		b.loader = l
		return nil
	}
}

// WithSplitter replaces the default chunker.
func WithSplitter(s *chunker.Splitter) Option {
	return func(b *Builder) error {
		if s == nil {
			return errors.New("splitter cannot be nil")
		}
		b.splitter = s
		return nil
	}
}

// WithEmbeddingConfig sets batching, concurrency and retry behavior.
func WithEmbeddingConfig(cfg *embedding.Config) Option {
	return func(b *Builder) error {
		if cfg == nil {
			cfg = embedding.DefaultConfig()
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		b.config = cfg
		return nil
	}
}

// WithMonitor sets a rebuild observer.
func WithMonitor(m RebuildMonitor) Option {
	return func(b *Builder) error {
		if m == nil {
			m = &noopMonitor{}
		}
		b.monitor = m
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBuilder creates a Builder writing to store with embeddings from embedder.
func NewBuilder(store storage.VectorStore, embedder ai.Embedder, opts ...Option) (*Builder, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	b := &Builder{
		store:    store,
		embedder: embedder,
		config:   embedding.DefaultConfig(),
		monitor:  &noopMonitor{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	if b.loader == nil {
		l, err := loader.New(loader.WithLogger(b.logger))
		if err != nil {
			return nil, err
		}
		b.loader = l
	}
	if b.splitter == nil {
		s, err := chunker.New(chunker.WithLogger(b.logger))
		if err != nil {
			return nil, err
		}
		b.splitter = s
	}
	b.logger = b.logger.With("component", "index")
	return b, nil
}

// Rebuild replaces the index at location with one built from root and
// returns the number of chunks indexed. Errors are *RebuildError.
func (b *Builder) Rebuild(ctx context.Context, root, location string) (count int, err error) {
	b.monitor.Start(root, location)
	defer func() { b.monitor.Finish(count, err) }()

	if err := loader.CheckRoot(root); err != nil {
		return 0, stageError(StageLoad, err)
	}
	if err := os.MkdirAll(location, 0755); err != nil {
		return 0, stageError(StageWrite, err)
	}
	lock, err := lockLocation(location)
	if err != nil {
		return 0, stageError(StageWrite, err)
	}
	defer lock.Unlock()

	docs, report, err := b.loader.LoadWithReport(ctx, root)
	if err != nil {
		return 0, stageError(StageLoad, err)
	}
	b.monitor.AfterLoad(report)

	chunks, err := b.splitter.Split(docs)
	if err != nil {
		return 0, stageError(StageSplit, err)
	}
	b.logger.Info(fmt.Sprintf("Split %d documents into %d chunks.", len(docs), len(chunks)))
	if len(chunks) > sampleChunk {
		sample := chunks[sampleChunk]
		b.logger.Debug("sample chunk", "index", sampleChunk, "text", sample.Text, "metadata", sample.Metadata)
	}
	b.monitor.AfterSplit(len(docs), len(chunks))

	gen, err := b.writeGeneration(ctx, location, chunks)
	if err != nil {
		return 0, err
	}

	if err := writeManifest(location, gen); err != nil {
		b.discard(ctx, filepath.Join(location, gen))
		return 0, stageError(StageSwap, err)
	}
	b.logger.Info(fmt.Sprintf("Saved %d chunks to %s.", len(chunks), location), "generation", gen)
	b.monitor.AfterSwap(gen, len(chunks))

	if err := b.clearStale(ctx, location, gen); err != nil {
		return len(chunks), stageError(StageClear, err)
	}
	return len(chunks), nil
}

// writeGeneration embeds and writes chunks into a new generation and
// commits it. On failure the generation is removed.
func (b *Builder) writeGeneration(ctx context.Context, location string, chunks []core.Chunk) (string, error) {
	gen, err := newGeneration()
	if err != nil {
		return "", stageError(StageWrite, err)
	}
	path := filepath.Join(location, gen)

	if err := b.store.Clear(ctx, path); err != nil {
		return "", stageError(StageClear, err)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", stageError(StageWrite, err)
	}
	writer, err := b.store.Create(ctx, path)
	if err != nil {
		b.discard(ctx, path)
		return "", stageError(StageWrite, err)
	}
	b.logger.Debug("writing generation", "generation", gen, "chunks", len(chunks))

	runner, err := embedding.NewRunner(b.embedder, b.config, embedding.WithLogger(b.logger))
	if err != nil {
		writer.Abort()
		b.discard(ctx, path)
		return "", stageError(StageEmbed, err)
	}

	var writeErr error
	written := 0
	err = runner.Run(ctx, chunks, func(ctx context.Context, _ int, batch []core.Chunk, vectors [][]float32) error {
		if err := writer.WriteBatch(ctx, batch, vectors); err != nil {
			writeErr = err
			return err
		}
		written += len(batch)
		b.monitor.BatchWritten(written, len(chunks))
		return nil
	})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		writer.Abort()
		b.discard(ctx, path)
		if writeErr != nil {
			return "", stageError(StageWrite, writeErr)
		}
		return "", stageError(StageEmbed, err)
	}

	if err := writer.Commit(ctx); err != nil {
		writer.Abort()
		b.discard(ctx, path)
		return "", stageError(StageWrite, err)
	}
	return gen, nil
}

// discard removes a generation that never became active. It runs even when
// ctx is cancelled.
func (b *Builder) discard(ctx context.Context, path string) {
	ctx = context.WithoutCancel(ctx)
	if err := b.store.Clear(ctx, path); err != nil {
		b.logger.Error("failed to clear staging generation", "path", path, "err", err)
	}
	if err := os.RemoveAll(path); err != nil {
		b.logger.Error("failed to remove staging generation", "path", path, "err", err)
	}
}

// clearStale removes every entry of location other than the active
// generation, the lock and the manifest.
func (b *Builder) clearStale(ctx context.Context, location, active string) error {
	ctx = context.WithoutCancel(ctx)
	stale, err := staleEntries(location, active)
	if err != nil {
		return err
	}

	var errs []error
	for _, e := range stale {
		path := filepath.Join(location, e.Name())
		if e.IsDir() && strings.HasPrefix(e.Name(), generationPrefix) {
			if err := b.store.Clear(ctx, path); err != nil {
				errs = append(errs, fmt.Errorf("clear %s: %w", path, err))
				continue
			}
		}
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, err)
			continue
		}
		b.logger.Debug("removed stale entry", "path", path)
	}
	return errors.Join(errs...)
}
