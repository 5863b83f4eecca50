package table

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nspcc-dev/flatdb/pkg/codec"
	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/hash"
	"github.com/nspcc-dev/flatdb/pkg/lock"
	"github.com/nspcc-dev/flatdb/pkg/util"
	"go.uber.org/zap"
)

// Table is a key-value store of T items keyed by hash.Hash[K] and persisted
// directly in the file system.
//
// Items are grouped into chunks by the key truncated to hash.Hash[C], all
// items of a chunk are encoded into a single <dir>/<chunk>.<ext> file. Write
// operations lock the chunk (see package lock), reads don't lock and see
// either the state before or after a concurrent write since chunk files are
// replaced atomically.
type Table[K, C hash.Width, T any] struct {
	dir     string
	name    string
	ext     string
	perm    fs.FileMode
	codec   codec.Codec
	locker  *lock.Locker
	writer  *util.FileWriter
	log     *zap.Logger
	metrics common.Metrics
	pool    util.WorkerPool
	cache   *lru.Cache[string, cachedChunk[K, T]]
}

// New creates Table stored in dir. The directory is created on the first
// write.
func New[K, C hash.Width, T any](dir string, opts ...Option) (*Table[K, C, T], error) {
	if dir == "" {
		return nil, errors.New("empty table directory")
	}
	if c, k := hash.Size[C](), hash.Size[K](); c > k {
		return nil, fmt.Errorf("chunk width %d exceeds key width %d", c, k)
	}

	o := defaultOptions()
	for i := range opts {
		opts[i](&o)
	}

	if o.ext == o.lockExt {
		return nil, fmt.Errorf("chunk and lock files have the same extension %q", o.ext)
	}
	if o.name == "" {
		o.name = filepath.Base(dir)
	}

	log := o.log.With(zap.String("component", "Table"), zap.String("table", o.name))

	t := &Table[K, C, T]{
		dir:     dir,
		name:    o.name,
		ext:     o.ext,
		perm:    o.perm,
		codec:   o.codec,
		writer:  util.NewFileWriter(o.perm, o.noSync),
		log:     log,
		metrics: o.metrics,
		pool:    o.pool,
		locker: lock.New(
			lock.WithConfig(o.lockCfg),
			lock.WithExtension(o.lockExt),
			lock.WithLogger(log),
			lock.WithMetrics(o.metrics),
		),
	}

	if o.cacheSize > 0 {
		var err error
		t.cache, err = lru.New[string, cachedChunk[K, T]](o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create chunk cache: %w", err)
		}
	}

	return t, nil
}

// Dir returns the table directory.
func (t *Table[K, C, T]) Dir() string {
	return t.dir
}

// Extension returns the extension of chunk files.
func (t *Table[K, C, T]) Extension() string {
	return t.ext
}

// CleanLocks removes stale lock markers of the table, see lock.Locker.Clean.
func (t *Table[K, C, T]) CleanLocks(force bool) ([]string, error) {
	return t.locker.Clean(t.dir, force)
}

// CleanTemp removes temporary files left by interrupted chunk writes. Unless
// force is set, files younger than the lock timeout are kept since they may
// belong to a write in progress.
func (t *Table[K, C, T]) CleanTemp(force bool) ([]string, error) {
	var age time.Duration
	if !force {
		age = t.locker.Config().Timeout
	}

	removed, err := util.CleanTemp(t.dir, age)
	for _, p := range removed {
		t.log.Info("temporary file removed", zap.String("path", p))
	}
	return removed, err
}

func (t *Table[K, C, T]) chunkPath(id hash.Hash[C]) string {
	return filepath.Join(t.dir, id.String()+"."+t.ext)
}

func (t *Table[K, C, T]) keyPath(key hash.Hash[K]) string {
	return t.chunkPath(common.ChunkID[C](key))
}

func (t *Table[K, C, T]) elapsed(method string) func() {
	return common.Elapsed(func(d time.Duration) {
		t.metrics.AddMethodDuration(t.name, method, d)
	})
}

func (t *Table[K, C, T]) ensureDir() error {
	return common.NewOpError(common.OpCreateDir, t.dir, util.MkdirAllX(t.dir, t.perm))
}
