package table

import (
	"context"
	"fmt"
	"sync"

	"github.com/nspcc-dev/flatdb/internal/storagelog"
	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/hash"
	"go.uber.org/zap"
)

// Set stores item by key overwriting the previous one. The chunk is updated
// under its lock.
func (t *Table[K, C, T]) Set(ctx context.Context, key hash.Hash[K], item T) error {
	defer t.elapsed("Set")()

	if err := t.ensureDir(); err != nil {
		return err
	}

	p := t.keyPath(key)

	err := t.locker.With(ctx, p, func() error {
		items, err := t.loadForUpdate(p)
		if err != nil {
			return err
		}

		items[key] = item

		return t.write(p, items)
	})
	if err != nil {
		return err
	}

	storagelog.Write(t.log,
		storagelog.KeyField(key),
		storagelog.PathField(p),
		storagelog.OpField("Set"))

	return nil
}

// SetMany stores items chunk by chunk, chunks are updated concurrently in the
// worker pool. Existing items are overwritten only if replace is set. SetMany
// returns the number of stored items.
//
// Failure of one chunk doesn't stop the others and isn't rolled back. If any
// chunk fails, *common.BatchError is returned along with the number of items
// stored in succeeded chunks.
func (t *Table[K, C, T]) SetMany(ctx context.Context, items map[hash.Hash[K]]T, replace bool) (int, error) {
	defer t.elapsed("SetMany")()

	if len(items) == 0 {
		return 0, nil
	}

	if err := t.ensureDir(); err != nil {
		return 0, err
	}

	batches := make(map[hash.Hash[C]]map[hash.Hash[K]]T)
	for k, v := range items {
		id := common.ChunkID[C](k)
		b, ok := batches[id]
		if !ok {
			b = make(map[hash.Hash[K]]T)
			batches[id] = b
		}
		b[k] = v
	}

	type result struct {
		added int
		err   error
	}

	var (
		wg      sync.WaitGroup
		i       int
		results = make([]result, len(batches))
	)

	for id, batch := range batches {
		idx := i
		i++

		wg.Add(1)
		err := t.pool.Submit(func() {
			defer wg.Done()
			results[idx].added, results[idx].err = t.updateChunk(ctx, t.chunkPath(id), batch, replace)
		})
		if err != nil {
			wg.Done()
			results[idx].err = fmt.Errorf("submit chunk %s update: %w", id, err)
		}
	}

	wg.Wait()

	var (
		added int
		errs  []error
	)
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		added += r.added
	}

	t.log.Debug("batch set finished",
		zap.Int("items", len(items)),
		zap.Int("chunks", len(batches)),
		zap.Int("added", added),
		zap.Int("failed chunks", len(errs)))

	if len(errs) > 0 {
		t.metrics.AddBatchFailures(t.name, len(errs))
		return added, &common.BatchError{
			Op:        common.OpSetMany,
			Succeeded: len(batches) - len(errs),
			Failed:    len(errs),
			Errors:    errs,
		}
	}

	return added, nil
}

// updateChunk merges batch into the chunk stored in p. Unchanged chunk is
// not rewritten.
func (t *Table[K, C, T]) updateChunk(ctx context.Context, p string, batch map[hash.Hash[K]]T, replace bool) (int, error) {
	var added int

	err := t.locker.With(ctx, p, func() error {
		items, err := t.loadForUpdate(p)
		if err != nil {
			return err
		}

		for k, v := range batch {
			if _, ok := items[k]; replace || !ok {
				items[k] = v
				added++
			}
		}

		if added == 0 {
			return nil
		}

		return t.write(p, items)
	})
	if err != nil {
		return 0, err
	}

	storagelog.Write(t.log,
		storagelog.PathField(p),
		storagelog.OpField("SetMany"),
		zap.Int("added", added))

	return added, nil
}
