package table

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/nspcc-dev/flatdb/internal/storagelog"
	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/hash"
)

// Remove deletes item stored by key and returns it. The chunk is rewritten
// only if the item was there. Removal of an item from a chunk never written
// is a no-op and creates nothing.
func (t *Table[K, C, T]) Remove(ctx context.Context, key hash.Hash[K]) (T, bool, error) {
	defer t.elapsed("Remove")()

	var (
		removed T
		found   bool
	)

	p := t.keyPath(key)

	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return removed, false, nil
		}
		return removed, false, common.NewOpError(common.OpStat, p, err)
	}

	err := t.locker.With(ctx, p, func() error {
		items, err := t.loadForUpdate(p)
		if err != nil {
			return err
		}

		removed, found = items[key]
		if !found {
			return nil
		}

		delete(items, key)

		return t.write(p, items)
	})
	if err != nil {
		var zero T
		return zero, false, err
	}

	storagelog.Write(t.log,
		storagelog.KeyField(key),
		storagelog.PathField(p),
		storagelog.OpField("Remove"),
		storagelog.FoundField(found))

	return removed, found, nil
}
