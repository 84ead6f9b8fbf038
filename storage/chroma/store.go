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


package chroma

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

// ErrPrecomputed is returned if the client tries to embed text itself.
var ErrPrecomputed = errors.New("chroma: vectors are precomputed by the embedding provider")

const (
	// DefaultCollectionPrefix is prepended to every collection name.
	DefaultCollectionPrefix = "docindex-"

	minNameLength = 3
	maxNameLength = 63
)

// Store is a VectorStore backed by Chroma collections.
type Store struct {
	client  chromago.Client
	baseURL string
	prefix  string
	logger  *slog.Logger
}

var _ storage.VectorStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithBaseURL sets the Chroma server URL. The client default is used when unset.
func WithBaseURL(url string) Option {
	return func(s *Store) error {
		s.baseURL = url
		return nil
	}
}

// WithCollectionPrefix sets the collection name prefix.
func WithCollectionPrefix(prefix string) Option {
	return func(s *Store) error {
		s.prefix = prefix
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates a Chroma HTTP client and wraps it as a VectorStore.
func NewStore(opts ...Option) (storage.VectorStore, error) {
	s := &Store{
		prefix: DefaultCollectionPrefix,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "chroma-store")

	var clientOpts []chromago.ClientOption
	if s.baseURL != "" {
		clientOpts = append(clientOpts, chromago.WithBaseURL(s.baseURL))
	}
	client, err := chromago.NewHTTPClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}
	s.client = client
	return s, nil
}

// Create creates the collection for location. An existing non-empty
// collection is reported as storage.ErrIndexExists.
func (s *Store) Create(ctx context.Context, location string) (storage.IndexWriter, error) {
	name := CollectionName(s.prefix, location)

	if existing, err := s.client.GetCollection(ctx, name, chromago.WithEmbeddingFunctionGet(precomputed{})); err == nil {
		count, err := existing.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: collection %s", storage.ErrIndexExists, name)
		}
	}

	collection, err := s.client.GetOrCreateCollection(ctx, name,
		chromago.WithEmbeddingFunctionCreate(precomputed{}),
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("location", location),
				chromago.NewStringAttribute("created_by", "docindex"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	s.logger.Debug("created collection", "collection", name, "location", location)
	return &writer{collection: collection}, nil
}

// Open opens the collection for location.
func (s *Store) Open(ctx context.Context, location string) (storage.IndexReader, error) {
	name := CollectionName(s.prefix, location)
	collection, err := s.client.GetCollection(ctx, name, chromago.WithEmbeddingFunctionGet(precomputed{}))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: collection %s", storage.ErrNotFound, name)
		}
		return nil, err
	}
	return &reader{collection: collection}, nil
}

// Clear deletes the collection for location. A missing collection is not an error.
func (s *Store) Clear(ctx context.Context, location string) error {
	name := CollectionName(s.prefix, location)
	if err := s.client.DeleteCollection(ctx, name); err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	s.logger.Debug("deleted collection", "collection", name)
	return nil
}

// Close closes the HTTP client.
func (s *Store) Close() error {
	return s.client.Close()
}

// precomputed satisfies the client's embedding function requirement.
// Vectors always arrive with the chunks, so it is never asked to embed.
type precomputed struct{}

var _ embeddings.EmbeddingFunction = precomputed{}

func (precomputed) EmbedDocuments(ctx context.Context, texts []string) ([]embeddings.Embedding, error) {
	return nil, ErrPrecomputed
}

func (precomputed) EmbedQuery(ctx context.Context, text string) (embeddings.Embedding, error) {
	return nil, ErrPrecomputed
}

type writer struct {
	collection chromago.Collection
	seq        uint64
	dim        int
	closed     bool
}

// WriteBatch adds chunks to the collection in a single request.
func (w *writer) WriteBatch(ctx context.Context, chunks []core.Chunk, vectors [][]float32) error {
	if w.closed {
		return storage.ErrWriterClosed
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks, %d vectors", storage.ErrLengthMismatch, len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]chromago.DocumentID, len(chunks))
	texts := make([]string, len(chunks))
	embs := make([]embeddings.Embedding, len(chunks))
	metas := make([]chromago.DocumentMetadata, len(chunks))
	dim := w.dim
	for i := range chunks {
		if dim == 0 {
			dim = len(vectors[i])
		}
		if len(vectors[i]) == 0 || len(vectors[i]) != dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", storage.ErrDimensionMismatch, i, len(vectors[i]), dim)
		}
		ids[i] = chromago.DocumentID(documentID(w.seq+uint64(i), chunks[i].ID))
		texts[i] = chunks[i].Text
		embs[i] = embeddings.NewEmbeddingFromFloat32(vectors[i])
		metas[i] = chromago.NewDocumentMetadata(attributes(chunks[i].Metadata)...)
	}

	err := w.collection.Add(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
		chromago.WithMetadatas(metas...),
	)
	if err != nil {
		return fmt.Errorf("failed to add %d chunks to chroma: %w", len(chunks), err)
	}
	w.dim = dim
	w.seq += uint64(len(chunks))
	return nil
}

// Commit is a no-op; Chroma persists each Add.
func (w *writer) Commit(ctx context.Context) error {
	if w.closed {
		return storage.ErrWriterClosed
	}
	w.closed = true
	return nil
}

// Abort marks the writer closed. Added chunks stay until Clear.
func (w *writer) Abort() error {
	w.closed = true
	return nil
}

type reader struct {
	collection chromago.Collection
}

// Info reports the chunk count. Dimension and commit time are not tracked
// by the collection.
func (r *reader) Info(ctx context.Context) (*storage.IndexInfo, error) {
	count, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &storage.IndexInfo{Chunks: count}, nil
}

func (r *reader) Count(ctx context.Context) (int, error) {
	return r.collection.Count(ctx)
}

func (r *reader) ForEach(ctx context.Context, fn func(*core.StoredChunk) error) error {
	return storage.ErrNotSupported
}

func (r *reader) Close() error {
	return nil
}

// CollectionName derives a valid Chroma collection name from a location:
// 3 to 63 characters from [a-zA-Z0-9._-], starting and ending with an
// alphanumeric character.
func CollectionName(prefix, location string) string {
	raw := prefix + filepath.Base(filepath.Clean(location))
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if len(name) > maxNameLength {
		name = name[len(name)-maxNameLength:]
	}
	name = strings.TrimFunc(name, func(r rune) bool { return !isAlnum(r) })
	for len(name) < minNameLength {
		name += "0"
	}
	return name
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

func documentID(seq uint64, id core.ID) string {
	return fmt.Sprintf("%010d-%016x", seq, uint64(id))
}

func attributes(md map[string]any) []*chromago.MetaAttribute {
	attrs := make([]*chromago.MetaAttribute, 0, len(md))
	for k, v := range md {
		switch x := v.(type) {
		case string:
			attrs = append(attrs, chromago.NewStringAttribute(k, x))
		case int:
			attrs = append(attrs, chromago.NewIntAttribute(k, int64(x)))
		case int64:
			attrs = append(attrs, chromago.NewIntAttribute(k, x))
		case float64:
			attrs = append(attrs, chromago.NewFloatAttribute(k, x))
		case bool:
			attrs = append(attrs, chromago.NewBoolAttribute(k, x))
		default:
			attrs = append(attrs, chromago.NewStringAttribute(k, fmt.Sprint(x)))
		}
	}
	return attrs
}

func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "not found")
}
