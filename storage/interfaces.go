package storage

import (
	"context"
	"time"

	"github.com/poiesic/docindex/core"
)

// VectorStore persists (chunk, embedding) pairs at a location. A location is
// a filesystem path for local stores; remote stores derive a collection name
// from it. Implementations must be thread-safe.
type VectorStore interface {
	// Create opens a writer for a new, empty index at location.
	// Returns ErrIndexExists if location already holds an index.
	Create(ctx context.Context, location string) (IndexWriter, error)

	// Open opens the committed index at location for reading.
	// Returns ErrNotFound if there is none.
	Open(ctx context.Context, location string) (IndexReader, error)

	// Clear removes the index at location in its entirety.
	// Clearing a location that holds no index is not an error.
	Clear(ctx context.Context, location string) error

	// Close releases client resources held by the store.
	Close() error
}

// IndexWriter appends chunks to an index under construction. It is not
// safe for concurrent use; callers serialize WriteBatch calls.
type IndexWriter interface {
	// WriteBatch appends chunks with their vectors, preserving call order.
	// chunks and vectors must have equal length and every vector must share
	// the index dimension.
	WriteBatch(ctx context.Context, chunks []core.Chunk, vectors [][]float32) error

	// Commit makes the written chunks durable and records index info.
	// The writer cannot be used afterwards.
	Commit(ctx context.Context) error

	// Abort discards buffered writes and releases the writer. Data already
	// flushed stays at the location until Clear is called.
	Abort() error
}

// IndexReader reads a committed index.
type IndexReader interface {
	// Info returns the summary recorded at commit.
	Info(ctx context.Context) (*IndexInfo, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// ForEach visits stored chunks in write order. Iteration stops at the
	// first error returned by fn.
	ForEach(ctx context.Context, fn func(*core.StoredChunk) error) error

	// Close releases the reader.
	Close() error
}

// IndexInfo summarizes a committed index.
type IndexInfo struct {
	Chunks      int
	Dimension   int
	CommittedAt time.Time
}
