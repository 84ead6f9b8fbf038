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


package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/poiesic/docindex/ai"
	"github.com/poiesic/docindex/core"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Sink receives embedded batches in chunk order. start is the index of the
// batch's first chunk in the input slice. Sink is never called concurrently.
type Sink func(ctx context.Context, start int, chunks []core.Chunk, vectors [][]float32) error

// Runner embeds chunks in concurrent batches.
type Runner struct {
	embedder ai.Embedder
	config   Config
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRunner creates a Runner. A nil config uses DefaultConfig.
func NewRunner(embedder ai.Embedder, config *Config, opts ...Option) (*Runner, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		embedder: embedder,
		config:   *config,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "embedding")

	if config.RequestsPerSecond > 0 {
		burst := max(1, int(math.Ceil(config.RequestsPerSecond)))
		r.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}
	return r, nil
}

// Config returns a copy of the runner's configuration.
func (r *Runner) Config() Config {
	return r.config
}

// EmbedBatch embeds one batch with retry and returns unit-length vectors in
// chunk order.
func (r *Runner) EmbedBatch(ctx context.Context, chunks []core.Chunk) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	var vectors [][]float32
	attempts := 0
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return Permanent(err)
			}
		}
		var err error
		vectors, err = r.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(texts) {
			return Permanent(fmt.Errorf("%w: expected %d, got %d", ErrCountMismatch, len(texts), len(vectors)))
		}
		return nil
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		if attempts >= r.config.MaxRetries && attempts > 1 {
			return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", attempts, err)
		}
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: chunk %d from %q", ErrEmptyVector, i, chunks[i].Metadata[core.MetaSource])
		}
		vectors[i] = NormalizeVector(v)
	}
	return vectors, nil
}

// Run embeds all chunks and passes each batch to sink in order. Up to
// Config.Workers batches are in flight at once. The first embedding or
// sink error cancels outstanding work and is returned.
func (r *Runner) Run(ctx context.Context, chunks []core.Chunk, sink Sink) error {
	batches := Batches(chunks, r.config.BatchSize)
	if len(batches) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([][][]float32, len(batches))
	done := make([]chan struct{}, len(batches))
	for i := range done {
		done[i] = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)
	waitErr := make(chan error, 1)
	go func() {
		for i, batch := range batches {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				vectors, err := r.EmbedBatch(gctx, batch)
				if err != nil {
					return fmt.Errorf("batch %d: %w", i, err)
				}
				results[i] = vectors
				close(done[i])
				return nil
			})
		}
		waitErr <- g.Wait()
	}()

	waited := false
	start := 0
	for i, batch := range batches {
		select {
		case <-done[i]:
		case <-gctx.Done():
			if !waited {
				waited = true
				if err := <-waitErr; err != nil {
					return err
				}
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			// The group finished cleanly, so every batch is done.
			<-done[i]
		}

		r.logger.Debug("embedded batch", "batch", i, "chunks", len(batch))
		if err := sink(ctx, start, batch, results[i]); err != nil {
			cancel()
			if !waited {
				<-waitErr
			}
			return err
		}
		results[i] = nil
		start += len(batch)
	}

	if !waited {
		return <-waitErr
	}
	return nil
}
