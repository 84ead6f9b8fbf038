package docindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/docindex/ai/mock"
	"github.com/poiesic/docindex/config"
	"github.com/poiesic/docindex/index"
	"github.com/poiesic/docindex/storage/badger"
	"github.com/poiesic/docindex/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "corpus")
	require.NoError(t, os.MkdirAll(root, 0755))
	return config.New(
		config.WithRoot(root),
		config.WithIndexLocation(filepath.Join(dir, "index")),
	)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNew(t *testing.T) {
	t.Run("uses the configured badger store", func(t *testing.T) {
		cfg := testConfig(t)
		ix, err := New(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		defer ix.Close()

		assert.Same(t, cfg, ix.Config())
		assert.NotNil(t, ix.store)
		assert.NotNil(t, ix.builder)
	})

	t.Run("rejects invalid chunking", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.ChunkOverlap = cfg.ChunkSize
		ix, err := New(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, ix)
	})

	t.Run("rejects unknown store", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Store.Backend = "sqlite"
		ix, err := New(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, ix)
	})
}

func TestIndexer_RebuildAndStats(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.Root, "a.txt"), "The first document.")
	writeFile(t, filepath.Join(cfg.Root, "b.txt"), "The second document.")

	store, err := badger.NewStore(badger.WithInMemory())
	require.NoError(t, err)
	ix, err := New(context.Background(), cfg,
		WithProvider(mock.NewMockProvider()),
		WithStore(store),
	)
	require.NoError(t, err)
	defer ix.Close()

	_, err = ix.Stats(context.Background())
	require.ErrorIs(t, err, index.ErrNoActiveIndex)

	count, err := ix.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	info, err := ix.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, info.Chunks)
	assert.Equal(t, mock.DefaultDimension, info.Dimension)
	assert.False(t, info.CommittedAt.IsZero())
}

func TestIndexer_Close(t *testing.T) {
	cfg := testConfig(t)
	provider := mock.NewMockProvider().(*mock.MockProvider)
	ix, err := New(context.Background(), cfg, WithProvider(provider))
	require.NoError(t, err)

	require.NoError(t, ix.Close())
	assert.True(t, provider.Closed())
}

func TestIndexer_Watch(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.Root, "a.txt"), "The first document.")

	ix, err := New(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer ix.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ix.Watch(ctx, watch.WithDebounce(50*time.Millisecond))
	}()

	chunks := func(want int) func() bool {
		return func() bool {
			info, err := ix.Stats(context.Background())
			return err == nil && info.Chunks == want
		}
	}
	require.Eventually(t, chunks(1), 5*time.Second, 20*time.Millisecond)

	writeFile(t, filepath.Join(cfg.Root, "b.txt"), "The second document.")
	require.Eventually(t, chunks(2), 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestIndexer_WatchMissingRoot(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.RemoveAll(cfg.Root))

	ix, err := New(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer ix.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = ix.Watch(ctx, watch.WithDebounce(50*time.Millisecond))
	assert.ErrorIs(t, err, index.ErrRootNotFound)
}
