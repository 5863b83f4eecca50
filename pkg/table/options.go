package table

import (
	"io/fs"

	"github.com/nspcc-dev/flatdb/pkg/codec"
	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/lock"
	"github.com/nspcc-dev/flatdb/pkg/util"
	"go.uber.org/zap"
)

// DefaultExtension is the default extension of chunk files.
const DefaultExtension = "yml"

const defaultPerm fs.FileMode = 0o640

// Option represents Table configuration option.
type Option func(*options)

type options struct {
	name      string
	ext       string
	codec     codec.Codec
	lockCfg   lock.Config
	lockExt   string
	log       *zap.Logger
	metrics   common.Metrics
	pool      util.WorkerPool
	cacheSize int
	perm      fs.FileMode
	noSync    bool
}

func defaultOptions() options {
	return options{
		ext:     DefaultExtension,
		codec:   codec.YAML{},
		lockExt: lock.DefaultExtension,
		log:     zap.NewNop(),
		metrics: common.NoopMetrics(),
		pool:    util.NewGoPool(),
		perm:    defaultPerm,
	}
}

// WithName sets the table name used in metrics. Defaults to the directory
// base name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithExtension sets the extension of chunk files.
func WithExtension(ext string) Option {
	return func(o *options) {
		if ext != "" {
			o.ext = ext
		}
	}
}

// WithCodec sets the chunk file codec. YAML is used by default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLockConfig sets lock timeout and retry interval.
func WithLockConfig(c lock.Config) Option {
	return func(o *options) {
		o.lockCfg = c
	}
}

// WithLockExtension sets the extension of lock marker files.
func WithLockExtension(ext string) Option {
	return func(o *options) {
		if ext != "" {
			o.lockExt = ext
		}
	}
}

// WithLogger sets logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithMetrics sets metrics collector.
func WithMetrics(m common.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithWorkerPool sets the pool batch operations run chunk updates in. By
// default every chunk is updated in its own routine.
func WithWorkerPool(p util.WorkerPool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithChunkCache enables caching of n decoded chunks. Cached chunk is used
// only while its file is not replaced, so writes of other processes are seen.
// Items read from the cache are shallow copies: reference types inside them
// are shared by all readers, so callers must treat them as read-only.
func WithChunkCache(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithPermissions sets permission bits of created files. Directories
// additionally get +x for a user and a group.
func WithPermissions(perm fs.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// WithNoSync disables syncing chunk files before they replace old ones.
func WithNoSync(noSync bool) Option {
	return func(o *options) {
		o.noSync = noSync
	}
}
