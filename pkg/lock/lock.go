package lock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nspcc-dev/flatdb/pkg/common"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout is the default maximum time spent acquiring a lock.
	DefaultTimeout = 2 * time.Second
	// DefaultRetryInterval is the default pause between acquisition attempts.
	DefaultRetryInterval = 50 * time.Millisecond
	// DefaultExtension is the default extension of lock marker files.
	DefaultExtension = "lock"

	defaultPerm fs.FileMode = 0o640
)

// Config groups lock acquisition timings. Zero fields mean defaults.
type Config struct {
	// Timeout is the maximum time spent acquiring a lock.
	Timeout time.Duration
	// RetryInterval is the pause between acquisition attempts.
	RetryInterval time.Duration
}

// Locker acquires exclusive locks on file system resources. A lock is a
// marker file created next to the resource, so it works across processes
// sharing the directory. The lock is advisory: every writer of the resource
// must use the same Locker settings.
type Locker struct {
	cfg     Config
	ext     string
	perm    fs.FileMode
	log     *zap.Logger
	metrics common.Metrics
}

// Option represents Locker configuration option.
type Option func(*Locker)

// WithConfig sets timings, zero fields are ignored.
func WithConfig(c Config) Option {
	return func(l *Locker) {
		if c.Timeout > 0 {
			l.cfg.Timeout = c.Timeout
		}
		if c.RetryInterval > 0 {
			l.cfg.RetryInterval = c.RetryInterval
		}
	}
}

// WithTimeout sets the maximum time spent acquiring a lock.
func WithTimeout(d time.Duration) Option {
	return WithConfig(Config{Timeout: d})
}

// WithRetryInterval sets the pause between acquisition attempts.
func WithRetryInterval(d time.Duration) Option {
	return WithConfig(Config{RetryInterval: d})
}

// WithExtension sets the extension of marker files.
func WithExtension(ext string) Option {
	return func(l *Locker) {
		if ext != "" {
			l.ext = ext
		}
	}
}

// WithLogger sets logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Locker) {
		l.log = log
	}
}

// WithMetrics sets metrics collector.
func WithMetrics(m common.Metrics) Option {
	return func(l *Locker) {
		l.metrics = m
	}
}

// New creates Locker. Default timeout is 2s, retry interval is 50ms and
// marker files have "lock" extension.
func New(opts ...Option) *Locker {
	l := &Locker{
		cfg: Config{
			Timeout:       DefaultTimeout,
			RetryInterval: DefaultRetryInterval,
		},
		ext:     DefaultExtension,
		perm:    defaultPerm,
		log:     zap.NewNop(),
		metrics: common.NoopMetrics(),
	}

	for i := range opts {
		opts[i](l)
	}

	return l
}

// Extension returns the extension of marker files.
func (l *Locker) Extension() string {
	return l.ext
}

// Config returns lock timings.
func (l *Locker) Config() Config {
	return l.cfg
}

// MarkerPath returns the path of the lock marker for resource: the resource
// path with its extension replaced by ext.
func MarkerPath(resource, ext string) string {
	return strings.TrimSuffix(resource, filepath.Ext(resource)) + "." + ext
}

// Guard holds an acquired lock until Release.
type Guard struct {
	path string
	log  *zap.Logger
	once sync.Once
}

// Path returns the marker file path.
func (g *Guard) Path() string {
	return g.path
}

// Release removes the marker file. It's safe to call Release more than once,
// only the first call has effect. Failure to remove the marker is logged and
// otherwise ignored, the marker then blocks other writers until it's cleaned
// (see Locker.Clean).
func (g *Guard) Release() {
	g.once.Do(func() {
		err := os.Remove(g.path)
		if err != nil {
			g.log.Warn("could not remove lock file", zap.String("path", g.path), zap.Error(err))
			return
		}
		g.log.Debug("lock released", zap.String("path", g.path))
	})
}

// Acquire locks resource. It attempts to exclusively create the marker file
// every retry interval until it succeeds or the timeout passes.
//
// Returns *TimeoutError if the lock is still busy after the timeout, ctx
// error if ctx is done before that and *common.OpError if the marker can't
// be created for any other reason.
func (l *Locker) Acquire(ctx context.Context, resource string) (*Guard, error) {
	var (
		p     = MarkerPath(resource, l.ext)
		start = time.Now()
		timer *time.Timer
	)

	defer func() { l.metrics.AddLockWait(time.Since(start)) }()

	content, err := newOwner().marshal()
	if err != nil {
		return nil, common.NewOpError(common.OpAcquireLock, p, err)
	}

	for {
		err = l.create(p, content)
		if err == nil {
			l.log.Debug("lock acquired", zap.String("path", p))
			return &Guard{path: p, log: l.log}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, common.NewOpError(common.OpAcquireLock, p, err)
		}
		if time.Since(start) > l.cfg.Timeout {
			l.metrics.IncLockTimeout()
			return nil, &TimeoutError{Path: p, Timeout: l.cfg.Timeout}
		}

		l.log.Debug("lock busy, waiting", zap.String("path", p))

		if timer == nil {
			timer = time.NewTimer(l.cfg.RetryInterval)
			defer timer.Stop()
		} else {
			timer.Reset(l.cfg.RetryInterval)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %q: %w", p, ctx.Err())
		case <-timer.C:
		}
	}
}

// With runs fn holding the lock on resource. The lock is released on every
// return path of fn including panics.
func (l *Locker) With(ctx context.Context, resource string, fn func() error) error {
	g, err := l.Acquire(ctx, resource)
	if err != nil {
		return err
	}
	defer g.Release()

	return fn()
}

func (l *Locker) create(p string, content []byte) error {
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, l.perm)
	if err != nil {
		return err
	}

	_, err = f.Write(content)
	if errClose := f.Close(); err == nil {
		err = errClose
	}
	if err != nil {
		_ = os.Remove(p)
		return fmt.Errorf("write lock owner: %w", err)
	}

	return nil
}
