package badger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

// chunkWriter bulk loads chunks into a fresh database through a WriteBatch.
type chunkWriter struct {
	backend *Backend
	batch   *badger.WriteBatch
	logger  *slog.Logger
	// owned writers close the backend on Commit or Abort.
	owned  bool
	seq    uint64
	dim    int
	closed bool
}

var _ storage.IndexWriter = (*chunkWriter)(nil)

func newChunkWriter(backend *Backend, owned bool, logger *slog.Logger) *chunkWriter {
	return &chunkWriter{
		backend: backend,
		batch:   backend.NewWriteBatch(),
		logger:  logger,
		owned:   owned,
	}
}

// WriteBatch appends chunks with their vectors. Sequence numbers continue
// across calls.
func (w *chunkWriter) WriteBatch(ctx context.Context, chunks []core.Chunk, vectors [][]float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.closed {
		return storage.ErrWriterClosed
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%w: %d chunks, %d vectors", storage.ErrLengthMismatch, len(chunks), len(vectors))
	}

	dim := w.dim
	for i, vec := range vectors {
		if dim == 0 {
			dim = len(vec)
		}
		if len(vec) == 0 || len(vec) != dim {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", storage.ErrDimensionMismatch, i, len(vec), dim)
		}
	}
	for i := range chunks {
		if err := core.ValidateChunk(&chunks[i]); err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
	}
	w.dim = dim

	for i := range chunks {
		sc := &core.StoredChunk{Seq: w.seq, Chunk: chunks[i], Vector: vectors[i]}
		if err := w.batch.Set(makeChunkKey(w.seq), storage.MarshalStoredChunk(sc)); err != nil {
			return err
		}
		w.seq++
	}
	return nil
}

// Commit flushes pending writes and records index info.
func (w *chunkWriter) Commit(ctx context.Context) error {
	if w.closed {
		return storage.ErrWriterClosed
	}
	w.closed = true

	if err := w.batch.Flush(); err != nil {
		w.release()
		return err
	}
	info := &storage.IndexInfo{
		Chunks:      int(w.seq),
		Dimension:   w.dim,
		CommittedAt: time.Now().UTC(),
	}
	if err := saveIndexInfo(w.backend, info); err != nil {
		w.release()
		return err
	}
	w.logger.Debug("committed index", "chunks", info.Chunks, "dimension", info.Dimension)
	return w.release()
}

// Abort cancels pending writes.
func (w *chunkWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.batch.Cancel()
	return w.release()
}

func (w *chunkWriter) release() error {
	if !w.owned {
		return nil
	}
	return w.backend.Close()
}

// chunkReader reads a committed database.
type chunkReader struct {
	backend *Backend
	info    *storage.IndexInfo
	owned   bool
}

var _ storage.IndexReader = (*chunkReader)(nil)

// Info returns the summary recorded at commit.
func (r *chunkReader) Info(ctx context.Context) (*storage.IndexInfo, error) {
	info := *r.info
	return &info, nil
}

// Count counts stored chunk keys.
func (r *chunkReader) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// ForEach visits chunks in sequence order.
func (r *chunkReader) ForEach(ctx context.Context, fn func(*core.StoredChunk) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var sc *core.StoredChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				sc, err = storage.UnmarshalStoredChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(sc); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Close releases the reader.
func (r *chunkReader) Close() error {
	if !r.owned {
		return nil
	}
	return r.backend.Close()
}
