package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the contract every backend must satisfy.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	nodes, report, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.True(t, report.Clean())

	tree := sampleTree()
	require.NoError(t, s.Save(ctx, tree))

	got, report, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, tree, got)

	// last write wins
	require.NoError(t, s.Save(ctx, tree[1:]))
	got, _, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, tree[1:], got)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "notes.json")
	s := NewFileStore(path)
	defer s.Close()

	exerciseStore(t, s)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestFileStoreRepairsOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"x","type":"note","title":"t"}]`), 0o644))

	nodes, report, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "", nodes[0].Content)
	assert.False(t, report.Clean())
}

func TestFileStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewFileStore(filepath.Join(t.TempDir(), "notes.json"))
	assert.ErrorIs(t, s.Save(ctx, sampleTree()), context.Canceled)
	_, _, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "notes.db"), nil)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("NOTES_TEST_REDIS_URL")
	if url == "" {
		t.Skip("NOTES_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	key := "notes:test:" + t.Name()
	s, err := NewRedisStore(ctx, url, key)
	require.NoError(t, err)
	defer s.Close()
	defer s.client.Del(ctx, key)

	exerciseStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("NOTES_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("NOTES_TEST_POSTGRES_URL not set")
	}
	ctx := context.Background()
	owner := "test:" + t.Name()
	s, err := NewPostgresStore(ctx, url, owner, nil)
	require.NoError(t, err)
	defer s.Close()
	defer s.pool.Exec(ctx, "DELETE FROM note_trees WHERE owner = $1", owner)

	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, Config{Backend: BackendFile, DataDir: dir}, nil)
	require.NoError(t, err)
	fs, ok := s.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "notes.json"), fs.Path())

	s, err = Open(ctx, Config{Backend: BackendSQLite, DataDir: dir}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Backend: "etcd"}, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedBackend))
}
