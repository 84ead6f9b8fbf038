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


package chunker

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/docindex/core"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the default maximum chunk length in runes.
	DefaultChunkSize = 300

	// DefaultOverlap is the default number of runes shared by consecutive chunks.
	DefaultOverlap = 100
)

// DefaultSeparators are tried coarse to fine. The empty separator cuts at
// any character and must stay last.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter produces overlapping chunks. It is immutable after New and safe
// for concurrent use.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators [][]rune
	logger     *slog.Logger
}

var _ textsplitter.TextSplitter = (*Splitter)(nil)

// Option configures a Splitter.
type Option func(*Splitter) error

// WithChunkSize sets the maximum chunk length in runes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) error {
		s.chunkSize = size
		return nil
	}
}

// WithOverlap sets the number of runes consecutive chunks share.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) error {
		s.overlap = overlap
		return nil
	}
}

// WithSeparators replaces the separator hierarchy. A trailing empty
// separator is appended when missing so splitting always makes progress.
func WithSeparators(separators ...string) Option {
	return func(s *Splitter) error {
		if len(separators) == 0 {
			return ErrNoSeparators
		}
		s.separators = toRunes(separators)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Splitter) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a Splitter with DefaultChunkSize and DefaultOverlap unless
// overridden.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultOverlap,
		separators: toRunes(DefaultSeparators),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if err := validate(s.chunkSize, s.overlap); err != nil {
		return nil, err
	}
	s.logger = s.logger.With("component", "chunker")
	return s, nil
}

func validate(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidChunkConfig, chunkSize)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: overlap %d must not be negative", ErrInvalidChunkConfig, overlap)
	}
	if overlap >= chunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidChunkConfig, overlap, chunkSize)
	}
	return nil
}

func toRunes(separators []string) [][]rune {
	out := make([][]rune, 0, len(separators)+1)
	for _, sep := range separators {
		out = append(out, []rune(sep))
	}
	if len(out[len(out)-1]) != 0 {
		out = append(out, nil)
	}
	return out
}

// ChunkSize returns the configured maximum chunk length.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// Split chunks every document in order. Chunks of one document are emitted
// contiguously with strictly increasing offsets.
func (s *Splitter) Split(docs []core.Document) ([]core.Chunk, error) {
	var chunks []core.Chunk
	for i := range docs {
		chunks = append(chunks, s.SplitDocument(&docs[i])...)
	}
	s.logger.Debug("split documents", "documents", len(docs), "chunks", len(chunks))
	return chunks, nil
}

// SplitDocument chunks a single document.
func (s *Splitter) SplitDocument(doc *core.Document) []core.Chunk {
	runes := []rune(doc.Content)
	spans := s.spans(runes)
	chunks := make([]core.Chunk, len(spans))
	for i, sp := range spans {
		chunks[i] = core.NewChunk(doc, string(runes[sp.start:sp.end]), sp.start)
	}
	return chunks
}

// SplitText implements textsplitter.TextSplitter.
func (s *Splitter) SplitText(text string) ([]string, error) {
	runes := []rune(text)
	spans := s.spans(runes)
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = string(runes[sp.start:sp.end])
	}
	return out, nil
}

// Split chunks docs with the given size and overlap and the default
// separators.
func Split(docs []core.Document, chunkSize, overlap int) ([]core.Chunk, error) {
	s, err := New(WithChunkSize(chunkSize), WithOverlap(overlap))
	if err != nil {
		return nil, err
	}
	return s.Split(docs)
}
