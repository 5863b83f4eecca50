package filetable

import (
	"io/fs"

	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/util"
	"go.uber.org/zap"
)

const defaultPerm fs.FileMode = 0o640

// Option represents FileTable configuration option.
type Option func(*options)

type options struct {
	name    string
	log     *zap.Logger
	metrics common.Metrics
	pool    util.WorkerPool
	perm    fs.FileMode
	noSync  bool
}

func defaultOptions() options {
	return options{
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

// WithWorkerPool sets the pool SetMany copies files in.
func WithWorkerPool(p util.WorkerPool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithPermissions sets permission bits of stored files.
func WithPermissions(perm fs.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// WithNoSync disables syncing copied files.
func WithNoSync(noSync bool) Option {
	return func(o *options) {
		o.noSync = noSync
	}
}
