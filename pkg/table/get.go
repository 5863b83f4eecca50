package table

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nspcc-dev/flatdb/internal/storagelog"
	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/hash"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Get returns item stored by key. Missing chunk file means missing item. Get
// doesn't take a lock. With the chunk cache on, maps, slices and pointers
// inside the item are shared with the cache and must not be modified.
func (t *Table[K, C, T]) Get(key hash.Hash[K]) (T, bool, error) {
	defer t.elapsed("Get")()

	var zero T

	p := t.keyPath(key)
	items, err := t.load(p)
	if err != nil {
		return zero, false, err
	}

	item, ok := items[key]
	t.log.Debug("get item",
		storagelog.KeyField(key),
		storagelog.PathField(p),
		storagelog.FoundField(ok))

	return item, ok, nil
}

// GetAll returns all items of the table. Chunks are decoded concurrently.
// Directory entries other than chunk files are ignored. Missing table
// directory is an error. The returned map is owned by the caller, items
// follow the same sharing rule as in Get.
func (t *Table[K, C, T]) GetAll(ctx context.Context) (map[hash.Hash[K]]T, error) {
	defer t.elapsed("GetAll")()

	paths, err := t.chunkPaths()
	if err != nil {
		return nil, err
	}

	chunks := make([]map[hash.Hash[K]]T, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for i := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var err error
			chunks[i], err = t.load(paths[i])
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var n int
	for i := range chunks {
		n += len(chunks[i])
	}

	res := make(map[hash.Hash[K]]T, n)
	for i := range chunks {
		for k, v := range chunks[i] {
			res[k] = v
		}
	}

	t.log.Debug("read all items", zap.Int("chunks", len(paths)), zap.Int("items", n))

	return res, nil
}

// chunkPaths lists chunk files of the table.
func (t *Table[K, C, T]) chunkPaths() ([]string, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return nil, common.NewOpError(common.OpReadDir, t.dir, err)
	}

	suffix := "." + t.ext
	paths := make([]string, 0, len(entries))

	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || !strings.HasSuffix(name, suffix) {
			if !strings.HasSuffix(name, "."+t.locker.Extension()) {
				t.log.Debug("skip foreign directory entry", zap.String("name", name))
			}
			continue
		}
		if _, err := hash.Parse[C](strings.TrimSuffix(name, suffix)); err != nil {
			t.log.Debug("skip file with invalid chunk name", zap.String("name", name), zap.Error(err))
			continue
		}
		paths = append(paths, filepath.Join(t.dir, name))
	}

	return paths, nil
}
