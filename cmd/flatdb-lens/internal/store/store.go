// Package store opens tables of widths known only at runtime. Keys are
// passed around in their hex form.
package store

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/filetable"
	"github.com/nspcc-dev/flatdb/pkg/hash"
	"github.com/nspcc-dev/flatdb/pkg/table"
)

// Records is a table of arbitrary YAML records.
type Records interface {
	Dir() string
	Chunk(key string) (string, error)
	Get(key string) (any, bool, error)
	GetAll(ctx context.Context) (map[string]any, error)
	Set(ctx context.Context, key string, v any) error
	SetMany(ctx context.Context, items map[string]any, replace bool) (int, error)
	Remove(ctx context.Context, key string) (any, bool, error)
	CleanLocks(force bool) ([]string, error)
}

// Files is a table of files.
type Files interface {
	Dir() string
	Get(key string) (string, bool, error)
	GetAll(ctx context.Context) (map[string]string, error)
	SetMany(ctx context.Context, items map[string]string) error
}

// OpenRecords opens table of records with keySize-byte keys grouped by
// chunkSize-byte prefixes.
func OpenRecords(dir string, keySize, chunkSize int, opts ...table.Option) (Records, error) {
	switch keySize {
	case 16:
		return recordsWithChunk[hash.W16](dir, chunkSize, opts)
	case 20:
		return recordsWithChunk[hash.W20](dir, chunkSize, opts)
	case 32:
		return recordsWithChunk[hash.W32](dir, chunkSize, opts)
	case 64:
		return recordsWithChunk[hash.W64](dir, chunkSize, opts)
	default:
		return nil, fmt.Errorf("unsupported key size %d", keySize)
	}
}

func recordsWithChunk[K hash.Width](dir string, chunkSize int, opts []table.Option) (Records, error) {
	switch chunkSize {
	case 1:
		return newRecords[K, hash.W1](dir, opts)
	case 2:
		return newRecords[K, hash.W2](dir, opts)
	case 4:
		return newRecords[K, hash.W4](dir, opts)
	default:
		return nil, fmt.Errorf("unsupported chunk size %d", chunkSize)
	}
}

// OpenFiles opens file table with keySize-byte keys grouped by chunkSize-byte
// prefixes.
func OpenFiles(dir, ext string, keySize, chunkSize int, opts ...filetable.Option) (Files, error) {
	switch keySize {
	case 16:
		return filesWithChunk[hash.W16](dir, ext, chunkSize, opts)
	case 20:
		return filesWithChunk[hash.W20](dir, ext, chunkSize, opts)
	case 32:
		return filesWithChunk[hash.W32](dir, ext, chunkSize, opts)
	case 64:
		return filesWithChunk[hash.W64](dir, ext, chunkSize, opts)
	default:
		return nil, fmt.Errorf("unsupported key size %d", keySize)
	}
}

func filesWithChunk[K hash.Width](dir, ext string, chunkSize int, opts []filetable.Option) (Files, error) {
	switch chunkSize {
	case 1:
		return newFiles[K, hash.W1](dir, ext, opts)
	case 2:
		return newFiles[K, hash.W2](dir, ext, opts)
	case 4:
		return newFiles[K, hash.W4](dir, ext, opts)
	default:
		return nil, fmt.Errorf("unsupported chunk size %d", chunkSize)
	}
}

type records[K, C hash.Width] struct {
	*table.Table[K, C, any]
}

func newRecords[K, C hash.Width](dir string, opts []table.Option) (Records, error) {
	t, err := table.New[K, C, any](dir, opts...)
	if err != nil {
		return nil, err
	}
	return records[K, C]{t}, nil
}

func (r records[K, C]) Chunk(key string) (string, error) {
	k, err := hash.Parse[K](key)
	if err != nil {
		return "", err
	}
	return common.ChunkID[C](k).String(), nil
}

func (r records[K, C]) Get(key string) (any, bool, error) {
	k, err := hash.Parse[K](key)
	if err != nil {
		return nil, false, err
	}
	return r.Table.Get(k)
}

func (r records[K, C]) GetAll(ctx context.Context) (map[string]any, error) {
	all, err := r.Table.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return stringKeys(all), nil
}

func (r records[K, C]) Set(ctx context.Context, key string, v any) error {
	k, err := hash.Parse[K](key)
	if err != nil {
		return err
	}
	return r.Table.Set(ctx, k, v)
}

func (r records[K, C]) SetMany(ctx context.Context, items map[string]any, replace bool) (int, error) {
	parsed, err := parseKeys[K](items)
	if err != nil {
		return 0, err
	}
	return r.Table.SetMany(ctx, parsed, replace)
}

func (r records[K, C]) Remove(ctx context.Context, key string) (any, bool, error) {
	k, err := hash.Parse[K](key)
	if err != nil {
		return nil, false, err
	}
	return r.Table.Remove(ctx, k)
}

type files[K, C hash.Width] struct {
	*filetable.FileTable[K, C]
}

func newFiles[K, C hash.Width](dir, ext string, opts []filetable.Option) (Files, error) {
	t, err := filetable.New[K, C](dir, ext, opts...)
	if err != nil {
		return nil, err
	}
	return files[K, C]{t}, nil
}

func (f files[K, C]) Get(key string) (string, bool, error) {
	k, err := hash.Parse[K](key)
	if err != nil {
		return "", false, err
	}
	return f.FileTable.Get(k)
}

func (f files[K, C]) GetAll(ctx context.Context) (map[string]string, error) {
	all, err := f.FileTable.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return stringKeys(all), nil
}

func (f files[K, C]) SetMany(ctx context.Context, items map[string]string) error {
	parsed, err := parseKeys[K](items)
	if err != nil {
		return err
	}
	return f.FileTable.SetMany(ctx, parsed)
}

func stringKeys[K hash.Width, V any](m map[hash.Hash[K]]V) map[string]V {
	res := make(map[string]V, len(m))
	for k, v := range m {
		res[k.String()] = v
	}
	return res
}

func parseKeys[K hash.Width, V any](m map[string]V) (map[hash.Hash[K]]V, error) {
	res := make(map[hash.Hash[K]]V, len(m))
	for s, v := range m {
		k, err := hash.Parse[K](s)
		if err != nil {
			return nil, fmt.Errorf("invalid key %q: %w", s, err)
		}
		res[k] = v
	}
	return res, nil
}
