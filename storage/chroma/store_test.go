package chroma

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{1,61}[a-zA-Z0-9]$`)

func TestCollectionName(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		location string
		want     string
	}{
		{"generation dir", "docindex-", "/var/index/gen-0192", "docindex-gen-0192"},
		{"trailing slash", "docindex-", "/var/index/gen-1/", "docindex-gen-1"},
		{"invalid chars", "", "my index@v2", "my_index_v2"},
		{"short name padded", "", "a", "a00"},
		{"leading punctuation trimmed", "", "__x", "x00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CollectionName(tt.prefix, tt.location)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, validName, got)
		})
	}
}

func TestCollectionName_Long(t *testing.T) {
	got := CollectionName(DefaultCollectionPrefix, strings.Repeat("x", 100)+"-tail")
	assert.LessOrEqual(t, len(got), maxNameLength)
	assert.True(t, strings.HasSuffix(got, "tail"))
	assert.Regexp(t, validName, got)
}

func TestDocumentID(t *testing.T) {
	a := documentID(1, core.ID(0xabc))
	b := documentID(2, core.ID(0xabc))
	assert.NotEqual(t, a, b)
	assert.Equal(t, "0000000001-0000000000000abc", a)
}

func TestAttributes(t *testing.T) {
	attrs := attributes(map[string]any{
		core.MetaSource: "a.pdf",
		core.MetaPage:   2,
		"score":         0.5,
		"ok":            true,
		"tags":          []string{"x"},
	})
	assert.Len(t, attrs, 5)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(errors.New("Collection docindex-x does not exist.")))
	assert.True(t, isNotFound(errors.New("404 Not Found")))
	assert.False(t, isNotFound(errors.New("connection refused")))
}

func testChunks(n int) ([]core.Chunk, [][]float32) {
	chunks := make([]core.Chunk, n)
	vectors := make([][]float32, n)
	for i := range n {
		doc := &core.Document{Metadata: map[string]any{core.MetaSource: "doc.txt", core.MetaRow: i + 1}}
		chunks[i] = core.NewChunk(doc, fmt.Sprintf("chunk %d", i), i*10)
		vectors[i] = []float32{float32(i), 1, 0}
	}
	return chunks, vectors
}

func newTestStore(t *testing.T) (*fakeChroma, storage.VectorStore) {
	t.Helper()
	fake, srv := newFakeChroma(t)
	store, err := NewStore(WithBaseURL(srv.URL))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return fake, store
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake, store := newTestStore(t)
	location := "/var/index/gen-1"
	name := CollectionName(DefaultCollectionPrefix, location)

	w, err := store.Create(ctx, location)
	require.NoError(t, err)
	require.NotNil(t, fake.collection(name))

	chunks, vectors := testChunks(3)
	require.NoError(t, w.WriteBatch(ctx, chunks[:2], vectors[:2]))
	require.NoError(t, w.WriteBatch(ctx, chunks[2:], vectors[2:]))
	require.NoError(t, w.Commit(ctx))

	c := fake.collection(name)
	require.Len(t, c.adds, 2)
	assert.Equal(t, "docindex", c.metadata["created_by"])
	assert.Equal(t, []string{"chunk 0", "chunk 1"}, c.adds[0].Documents)
	assert.Equal(t, vectors[:2], c.adds[0].Embeddings)
	assert.Equal(t, []string{documentID(2, chunks[2].ID)}, c.adds[1].IDs)
	assert.Equal(t, "doc.txt", c.adds[1].Metadatas[0][core.MetaSource])

	r, err := store.Open(ctx, location)
	require.NoError(t, err)
	defer r.Close()

	count, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	info, err := r.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, info.Chunks)

	err = r.ForEach(ctx, func(*core.StoredChunk) error { return nil })
	assert.ErrorIs(t, err, storage.ErrNotSupported)

	require.NoError(t, store.Clear(ctx, location))
	assert.Nil(t, fake.collection(name))

	_, err = store.Open(ctx, location)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_CreateExisting(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)

	w, err := store.Create(ctx, "gen-1")
	require.NoError(t, err)
	chunks, vectors := testChunks(1)
	require.NoError(t, w.WriteBatch(ctx, chunks, vectors))
	require.NoError(t, w.Commit(ctx))

	_, err = store.Create(ctx, "gen-1")
	assert.ErrorIs(t, err, storage.ErrIndexExists)
}

func TestStore_CreateReusesEmptyCollection(t *testing.T) {
	ctx := context.Background()
	fake, store := newTestStore(t)

	_, err := store.Create(ctx, "gen-1")
	require.NoError(t, err)
	_, err = store.Create(ctx, "gen-1")
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Len(t, fake.collections, 1)
}

func TestStore_ClearMissing(t *testing.T) {
	_, store := newTestStore(t)
	assert.NoError(t, store.Clear(context.Background(), "never-created"))
}

func TestStore_OpenMissing(t *testing.T) {
	_, store := newTestStore(t)
	_, err := store.Open(context.Background(), "never-created")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWriter_Validation(t *testing.T) {
	ctx := context.Background()
	_, store := newTestStore(t)

	w, err := store.Create(ctx, "gen-1")
	require.NoError(t, err)

	chunks, vectors := testChunks(2)
	err = w.WriteBatch(ctx, chunks, vectors[:1])
	assert.ErrorIs(t, err, storage.ErrLengthMismatch)

	vectors[1] = []float32{1, 2}
	err = w.WriteBatch(ctx, chunks, vectors)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)

	require.NoError(t, w.Commit(ctx))
	err = w.WriteBatch(ctx, chunks[:1], vectors[:1])
	assert.ErrorIs(t, err, storage.ErrWriterClosed)
	assert.ErrorIs(t, w.Commit(ctx), storage.ErrWriterClosed)
}

func TestPrecomputed(t *testing.T) {
	ctx := context.Background()
	_, err := precomputed{}.EmbedDocuments(ctx, []string{"x"})
	assert.ErrorIs(t, err, ErrPrecomputed)
	_, err = precomputed{}.EmbedQuery(ctx, "x")
	assert.ErrorIs(t, err, ErrPrecomputed)
}
