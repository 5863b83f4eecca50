package filetable_test

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/filetable"
	"github.com/nspcc-dev/flatdb/pkg/hash"
	"github.com/nspcc-dev/flatdb/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testTable = filetable.FileTable[hash.W32, hash.W1]

func newTable(t *testing.T, dir string, opts ...filetable.Option) *testTable {
	ft, err := filetable.New[hash.W32, hash.W1](dir, "bin", append([]filetable.Option{
		filetable.WithLogger(zaptest.NewLogger(t)),
		filetable.WithNoSync(true),
	}, opts...)...)
	require.NoError(t, err)
	return ft
}

// sourceFile creates a file with the given content and returns its path and
// content hash.
func sourceFile(t *testing.T, content string) (string, hash.Hash[hash.W32]) {
	p := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o640))
	sum := sha256.Sum256([]byte(content))
	return p, hash.MustNew[hash.W32](sum[:])
}

func TestNew(t *testing.T) {
	_, err := filetable.New[hash.W32, hash.W1]("", "bin")
	require.Error(t, err)

	_, err = filetable.New[hash.W32, hash.W1](t.TempDir(), "")
	require.Error(t, err)

	_, err = filetable.New[hash.W32, hash.W1](t.TempDir(), "a/b")
	require.Error(t, err)

	_, err = filetable.New[hash.W2, hash.W4](t.TempDir(), "bin")
	require.Error(t, err)

	ft, err := filetable.New[hash.W32, hash.W1](t.TempDir(), ".bin")
	require.NoError(t, err)
	require.Equal(t, "bin", ft.Extension())
}

func TestFileTable(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "files")
	ft := newTable(t, dir)
	require.Equal(t, dir, ft.Dir())

	src, key := sourceFile(t, "hello")

	_, ok, err := ft.Get(key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, ft.Set(ctx, key, src))

	p, ok, err := ft.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir, key.String()[:2], key.String()+".bin"), p)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	t.Run("overwrite", func(t *testing.T) {
		other, _ := sourceFile(t, "bye")
		require.NoError(t, ft.Set(ctx, key, other))

		data, err := os.ReadFile(p)
		require.NoError(t, err)
		require.Equal(t, "bye", string(data))

		entries, err := os.ReadDir(filepath.Dir(p))
		require.NoError(t, err)
		require.Len(t, entries, 1, "temporary files must be gone")
	})

	t.Run("missing source", func(t *testing.T) {
		_, k := sourceFile(t, "missing")
		err := ft.Set(ctx, k, filepath.Join(t.TempDir(), "missing"))
		require.ErrorIs(t, err, os.ErrNotExist)

		var oerr *common.OpError
		require.ErrorAs(t, err, &oerr)
		require.Equal(t, common.OpCopyFile, oerr.Op)

		_, ok, err := ft.Get(k)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("directory in place of a file", func(t *testing.T) {
		_, k := sourceFile(t, "dir")
		require.NoError(t, os.MkdirAll(ft.Path(k), 0o750))

		_, ok, err := ft.Get(k)
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestFileTable_GetAll(t *testing.T) {
	ctx := context.Background()

	t.Run("missing directory", func(t *testing.T) {
		_, err := newTable(t, filepath.Join(t.TempDir(), "missing")).GetAll(ctx)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	dir := t.TempDir()
	ft := newTable(t, dir)

	want := make(map[hash.Hash[hash.W32]]string)
	for i := range 5 {
		src, key := sourceFile(t, fmt.Sprint("file ", i))
		require.NoError(t, ft.Set(ctx, key, src))
		want[key] = ft.Path(key)
	}

	for k := range want {
		chunkDir := filepath.Dir(want[k])
		require.NoError(t, os.WriteFile(filepath.Join(chunkDir, "notes.txt"), nil, 0o640))
		require.NoError(t, os.WriteFile(filepath.Join(chunkDir, "short.bin"), nil, 0o640))
		require.NoError(t, os.WriteFile(filepath.Join(chunkDir, k.String()+".bin#0"), nil, 0o640))
		require.NoError(t, os.Mkdir(filepath.Join(chunkDir, "sub.bin"), 0o750))
		break
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), nil, 0o640))

	all, err := ft.GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, want, all)
}

func TestFileTable_SetMany(t *testing.T) {
	ctx := context.Background()

	pool, err := util.NewPool(2)
	require.NoError(t, err)
	t.Cleanup(pool.Release)

	ft := newTable(t, t.TempDir(), filetable.WithWorkerPool(pool))

	items := make(map[hash.Hash[hash.W32]]string)
	for i := range 10 {
		src, key := sourceFile(t, fmt.Sprint("file ", i))
		items[key] = src
	}

	require.NoError(t, ft.SetMany(ctx, items))

	all, err := ft.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(items))

	t.Run("partial failure", func(t *testing.T) {
		_, bad := sourceFile(t, "bad")
		good, key := sourceFile(t, "good")

		err := ft.SetMany(ctx, map[hash.Hash[hash.W32]]string{
			bad: filepath.Join(t.TempDir(), "missing"),
			key: good,
		})

		var berr *common.BatchError
		require.ErrorAs(t, err, &berr)
		require.Equal(t, 1, berr.Succeeded)
		require.Equal(t, 1, berr.Failed)
		require.ErrorIs(t, err, os.ErrNotExist)

		_, ok, err := ft.Get(key)
		require.NoError(t, err)
		require.True(t, ok)
	})

	require.NoError(t, ft.SetMany(ctx, nil))
}

func TestFileTable_ConcurrentSet(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ft := newTable(t, dir)

	const writers = 32

	var (
		key  hash.Hash[hash.W32]
		srcs = make([]string, writers)
		errs = make([]error, writers)
		wg   sync.WaitGroup
	)
	for i := range srcs {
		srcs[i], _ = sourceFile(t, strings.Repeat(fmt.Sprint(i%10), 1<<20))
	}

	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = ft.Set(ctx, key, srcs[i])
		}()
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i], i)
	}

	p, ok, err := ft.Get(key)
	require.NoError(t, err)
	require.True(t, ok)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Len(t, data, 1<<20)
	require.Equal(t, strings.Repeat(string(data[:1]), len(data)), string(data), "content of a single source")

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left")
}

func TestFileTable_CleanTemp(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ft := newTable(t, dir)

	src, key := sourceFile(t, "content")
	p := ft.Path(key)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))

	leftover := p + "#42"
	require.NoError(t, os.WriteFile(leftover, []byte("partial"), 0o640))

	require.NoError(t, ft.Set(ctx, key, src))
	all, err := ft.GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, map[hash.Hash[hash.W32]]string{key: p}, all)

	removed, err := ft.CleanTemp(time.Hour)
	require.NoError(t, err)
	require.Empty(t, removed)

	removed, err = ft.CleanTemp(0)
	require.NoError(t, err)
	require.Equal(t, []string{leftover}, removed)
	require.FileExists(t, p)
}
