package store_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal/store"
	"github.com/stretchr/testify/require"
)

func TestOpenRecords(t *testing.T) {
	ctx := context.Background()

	_, err := store.OpenRecords(t.TempDir(), 3, 1)
	require.Error(t, err)

	_, err = store.OpenRecords(t.TempDir(), 20, 3)
	require.Error(t, err)

	dir := t.TempDir()
	r, err := store.OpenRecords(dir, 16, 2)
	require.NoError(t, err)
	require.Equal(t, dir, r.Dir())

	key := "0102" + strings.Repeat("ab", 14)

	chunk, err := r.Chunk(key)
	require.NoError(t, err)
	require.Equal(t, "0102", chunk)

	require.NoError(t, r.Set(ctx, key, map[string]any{"name": "x"}))
	require.FileExists(t, filepath.Join(dir, "0102.yml"))

	v, ok, err := r.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, map[string]any{"name": "x"}, v)

	added, err := r.SetMany(ctx, map[string]any{
		key:                     "replaced",
		strings.Repeat("00", 16): 42,
	}, false)
	require.NoError(t, err)
	require.Equal(t, 1, added)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, 42, all[strings.Repeat("00", 16)])

	_, err = r.SetMany(ctx, map[string]any{"zz": 1}, false)
	require.Error(t, err)

	_, _, err = r.Get("short")
	require.Error(t, err)

	_, ok, err = r.Remove(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOpenFiles(t *testing.T) {
	ctx := context.Background()

	_, err := store.OpenFiles(t.TempDir(), "bin", 32, 8)
	require.Error(t, err)

	src := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o640))

	f, err := store.OpenFiles(t.TempDir(), "bin", 20, 1)
	require.NoError(t, err)

	key := strings.Repeat("0f", 20)
	require.NoError(t, f.SetMany(ctx, map[string]string{key: src}))

	p, ok, err := f.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, filepath.Join(f.Dir(), "0f", key+".bin"), p)

	all, err := f.GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{key: p}, all)
}
