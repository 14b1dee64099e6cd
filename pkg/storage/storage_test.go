package storage_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/exhibitdata/exhibit/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURISchemeless(t *testing.T) {
	u, err := storage.ParseURI("some/relative/path.json")
	require.NoError(t, err)
	assert.Equal(t, "file", u.Scheme)
	assert.True(t, filepath.IsAbs(u.Filepath()))
}

func TestParseURIS3(t *testing.T) {
	u, err := storage.ParseURI("s3://bucket/prefix/data.json")
	require.NoError(t, err)
	assert.Equal(t, "s3", u.Scheme)
	assert.Equal(t, "bucket", u.Host)
	assert.Equal(t, "/prefix/data.json", u.Path)
}

func TestParseURIEmpty(t *testing.T) {
	_, err := storage.ParseURI("")
	assert.Error(t, err)
}

func TestURIJoinPath(t *testing.T) {
	u := storage.MustParseURI("s3://bucket/prefix")
	joined := u.JoinPath("part-1.json")
	assert.Equal(t, "s3://bucket/prefix/part-1.json", joined.String())
	// The receiver is unchanged.
	assert.Equal(t, "/prefix", u.Path)
}

func TestFileSystemRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine := storage.NewFileSystem()
	u := storage.MustParseURI(filepath.Join(t.TempDir(), "nested", "dir", "data.json"))

	ok, err := engine.Exists(ctx, u)
	require.NoError(t, err)
	assert.False(t, ok)

	w, err := engine.Put(ctx, u)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ok, err = engine.Exists(ctx, u)
	require.NoError(t, err)
	assert.True(t, ok)

	r, err := engine.Get(ctx, u)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, engine.Delete(ctx, u))
	ok, err = engine.Exists(ctx, u)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileSystemDeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	engine := storage.NewFileSystem()
	dir := filepath.Join(t.TempDir(), "dataset")
	for _, name := range []string{"part-1.json", "part-2.json"} {
		w, err := engine.Put(ctx, storage.MustParseURI(filepath.Join(dir, name)))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	u := storage.MustParseURI(dir)
	require.NoError(t, engine.DeleteByPrefix(ctx, u))
	ok, err := engine.Exists(ctx, u)
	require.NoError(t, err)
	assert.False(t, ok)
	// Deleting a missing target is a no-op.
	assert.NoError(t, engine.DeleteByPrefix(ctx, u))
}

func TestNewEngineByScheme(t *testing.T) {
	engine, err := storage.NewEngine(storage.MustParseURI("/tmp/data.json"))
	require.NoError(t, err)
	assert.IsType(t, &storage.FileSystem{}, engine)
}
