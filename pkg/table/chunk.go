package table

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/hash"
)

// cachedChunk is a decoded chunk along with the stat of the file it was
// decoded from.
type cachedChunk[K hash.Width, T any] struct {
	info  fs.FileInfo
	items map[hash.Hash[K]]T
}

func (c cachedChunk[K, T]) valid(fi fs.FileInfo) bool {
	return os.SameFile(c.info, fi) &&
		c.info.Size() == fi.Size() &&
		c.info.ModTime().Equal(fi.ModTime())
}

// load returns items of the chunk stored in p. Missing chunk has no items.
// Returned map must not be modified.
func (t *Table[K, C, T]) load(p string) (map[hash.Hash[K]]T, error) {
	if t.cache == nil {
		items, err := t.read(p)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return items, err
	}

	fi, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.cache.Remove(p)
			return nil, nil
		}
		return nil, common.NewOpError(common.OpStat, p, err)
	}

	if c, ok := t.cache.Get(p); ok && c.valid(fi) {
		return c.items, nil
	}

	items, err := t.read(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	// The file could be replaced between Stat and read, then the entry is
	// dropped on the next load.
	t.cache.Add(p, cachedChunk[K, T]{info: fi, items: items})

	return items, nil
}

// loadForUpdate reads the chunk for modification bypassing the cache. It must
// be called under the chunk lock.
func (t *Table[K, C, T]) loadForUpdate(p string) (map[hash.Hash[K]]T, error) {
	items, err := t.read(p)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[hash.Hash[K]]T), nil
	}
	return items, err
}

// read reads and decodes chunk file. fs.ErrNotExist is returned as is.
func (t *Table[K, C, T]) read(p string) (map[hash.Hash[K]]T, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, common.NewOpError(common.OpReadChunk, p, err)
	}

	var raw map[string]T
	if err := t.codec.Unmarshal(data, &raw); err != nil {
		return nil, common.NewOpError(common.OpDecode, p, fmt.Errorf("%w: %w", common.ErrDecode, err))
	}

	items := make(map[hash.Hash[K]]T, len(raw))
	for s, v := range raw {
		key, err := hash.Parse[K](s)
		if err != nil {
			return nil, common.NewOpError(common.OpDecode, p, fmt.Errorf("%w: key %q: %w", common.ErrDecode, s, err))
		}
		items[key] = v
	}

	return items, nil
}

// write encodes items and replaces the chunk file with them. It must be
// called under the chunk lock.
func (t *Table[K, C, T]) write(p string, items map[hash.Hash[K]]T) error {
	raw := make(map[string]T, len(items))
	for k, v := range items {
		raw[k.String()] = v
	}

	data, err := t.codec.Marshal(raw)
	if err != nil {
		return common.NewOpError(common.OpEncode, p, err)
	}

	if err := t.writer.WriteFile(p, data); err != nil {
		return common.NewOpError(common.OpWriteChunk, p, err)
	}

	if t.cache != nil {
		if fi, err := os.Stat(p); err == nil {
			t.cache.Add(p, cachedChunk[K, T]{info: fi, items: items})
		} else {
			t.cache.Remove(p)
		}
	}

	return nil
}
