package lock_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/flatdb/internal/testutil"
	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/lock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func newLocker(t *testing.T, opts ...lock.Option) *lock.Locker {
	return lock.New(append([]lock.Option{
		lock.WithLogger(zaptest.NewLogger(t)),
		lock.WithTimeout(200 * time.Millisecond),
		lock.WithRetryInterval(10 * time.Millisecond),
	}, opts...)...)
}

func TestMarkerPath(t *testing.T) {
	require.Equal(t, filepath.Join("dir", "chunk.lock"), lock.MarkerPath(filepath.Join("dir", "chunk.yml"), "lock"))
	require.Equal(t, filepath.Join("dir", "ab.lock"), lock.MarkerPath(filepath.Join("dir", "ab"), "lock"))
	require.Equal(t, "a.b.lck", lock.MarkerPath("a.b.c", "lck"))
}

func TestDefaults(t *testing.T) {
	l := lock.New()
	require.Equal(t, lock.DefaultExtension, l.Extension())
	require.Equal(t, lock.Config{Timeout: 2 * time.Second, RetryInterval: 50 * time.Millisecond}, l.Config())

	l = lock.New(lock.WithConfig(lock.Config{Timeout: time.Second}), lock.WithExtension(""))
	require.Equal(t, lock.DefaultExtension, l.Extension())
	require.Equal(t, lock.Config{Timeout: time.Second, RetryInterval: lock.DefaultRetryInterval}, l.Config())
}

func TestAcquire(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and removes marker", func(t *testing.T) {
		dir := t.TempDir()
		chunk := filepath.Join(dir, "chunk.yml")
		marker := filepath.Join(dir, "chunk.lock")
		l := newLocker(t)

		g, err := l.Acquire(ctx, chunk)
		require.NoError(t, err)
		require.Equal(t, marker, g.Path())
		require.FileExists(t, marker)

		o, err := lock.ReadOwner(marker)
		require.NoError(t, err)
		require.Equal(t, os.Getpid(), o.PID)
		require.NotEmpty(t, o.Token)
		require.True(t, o.Alive())

		g.Release()
		require.NoFileExists(t, marker)

		g.Release() // no-op
	})

	t.Run("second acquire succeeds after release", func(t *testing.T) {
		chunk := filepath.Join(t.TempDir(), "chunk.yml")
		l := newLocker(t)

		g, err := l.Acquire(ctx, chunk)
		require.NoError(t, err)
		g.Release()

		g, err = l.Acquire(ctx, chunk)
		require.NoError(t, err)
		g.Release()
	})

	t.Run("times out when locked", func(t *testing.T) {
		chunk := filepath.Join(t.TempDir(), "chunk.yml")
		l := newLocker(t)

		g, err := l.Acquire(ctx, chunk)
		require.NoError(t, err)
		defer g.Release()

		start := time.Now()
		_, err = l.Acquire(ctx, chunk)
		require.ErrorIs(t, err, lock.ErrTimeout)
		require.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)

		var terr *lock.TimeoutError
		require.ErrorAs(t, err, &terr)
		require.Equal(t, g.Path(), terr.Path)
	})

	t.Run("succeeds after concurrent release", func(t *testing.T) {
		chunk := filepath.Join(t.TempDir(), "chunk.yml")
		l := newLocker(t)

		g, err := l.Acquire(ctx, chunk)
		require.NoError(t, err)

		released := make(chan struct{})
		go func() {
			time.Sleep(50 * time.Millisecond)
			g.Release()
			close(released)
		}()

		g2, err := l.Acquire(ctx, chunk)
		require.NoError(t, err)
		<-released
		g2.Release()
	})

	t.Run("context cancellation", func(t *testing.T) {
		chunk := filepath.Join(t.TempDir(), "chunk.yml")
		l := newLocker(t, lock.WithTimeout(time.Minute))

		g, err := l.Acquire(ctx, chunk)
		require.NoError(t, err)
		defer g.Release()

		cctx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
		defer cancel()

		_, err = l.Acquire(cctx, chunk)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.NotErrorIs(t, err, lock.ErrTimeout)
	})

	t.Run("missing directory fails immediately", func(t *testing.T) {
		chunk := filepath.Join(t.TempDir(), "missing", "chunk.yml")
		l := newLocker(t, lock.WithTimeout(time.Minute))

		_, err := l.Acquire(ctx, chunk)
		require.ErrorIs(t, err, os.ErrNotExist)

		var oerr *common.OpError
		require.ErrorAs(t, err, &oerr)
		require.Equal(t, common.OpAcquireLock, oerr.Op)
	})
}

func TestWith(t *testing.T) {
	ctx := context.Background()
	chunk := filepath.Join(t.TempDir(), "chunk.yml")
	marker := lock.MarkerPath(chunk, lock.DefaultExtension)
	l := newLocker(t)

	errTest := errors.New("test")
	err := l.With(ctx, chunk, func() error {
		require.FileExists(t, marker)
		return errTest
	})
	require.ErrorIs(t, err, errTest)
	require.NoFileExists(t, marker)

	require.Panics(t, func() {
		_ = l.With(ctx, chunk, func() error { panic("test") })
	})
	require.NoFileExists(t, marker)
}

func TestGuard_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("once", func(t *testing.T) {
		chunk := filepath.Join(t.TempDir(), "chunk.yml")
		log, buf := testutil.NewBufferedLogger(t, zap.DebugLevel)
		l := newLocker(t, lock.WithLogger(log))

		g, err := l.Acquire(ctx, chunk)
		require.NoError(t, err)
		buf.AssertLogged(zap.DebugLevel, "lock acquired")

		g.Release()
		g.Release()
		require.NoFileExists(t, g.Path())
		require.Len(t, buf.Filter(zap.DebugLevel, "lock released"), 1)
		buf.AssertNotLogged(zap.WarnLevel, "could not remove lock file")
	})

	t.Run("removal failure", func(t *testing.T) {
		chunk := filepath.Join(t.TempDir(), "chunk.yml")
		log, buf := testutil.NewBufferedLogger(t, zap.DebugLevel)
		l := newLocker(t, lock.WithLogger(log))

		g, err := l.Acquire(ctx, chunk)
		require.NoError(t, err)

		// non-empty directory in place of the marker can't be removed
		require.NoError(t, os.Remove(g.Path()))
		require.NoError(t, os.Mkdir(g.Path(), 0o700))
		require.NoError(t, os.WriteFile(filepath.Join(g.Path(), "f"), nil, 0o600))

		require.NotPanics(t, g.Release)

		e := buf.AssertLogged(zap.WarnLevel, "could not remove lock file")
		require.Equal(t, g.Path(), e.Fields["path"])
		buf.AssertNotLogged(zap.DebugLevel, "lock released")
		require.DirExists(t, g.Path())
	})
}

func TestClean(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l := newLocker(t, lock.WithTimeout(time.Minute))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "ab"), 0o750))

	live, err := l.Acquire(ctx, filepath.Join(dir, "ab", "cd.txt"))
	require.NoError(t, err)
	defer live.Release()

	// Left by a crash before the owner was written.
	empty := filepath.Join(dir, "ef.lock")
	require.NoError(t, os.WriteFile(empty, nil, 0o640))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(empty, old, old))

	// Fresh marker without owner may belong to a process in the middle of Acquire.
	fresh := filepath.Join(dir, "01.lock")
	require.NoError(t, os.WriteFile(fresh, nil, 0o640))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ab.yml"), nil, 0o640))

	found, err := l.Find(dir)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{live.Path(), empty, fresh}, found)

	removed, err := l.Clean(dir, false)
	require.NoError(t, err)
	require.Equal(t, []string{empty}, removed)

	removed, err = l.Clean(dir, true)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{live.Path(), fresh}, removed)

	found, err = l.Find(dir)
	require.NoError(t, err)
	require.Empty(t, found)

	_, err = l.Find(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadOwner(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.lock")

	require.NoError(t, os.WriteFile(p, []byte("{{{"), 0o640))
	_, err := lock.ReadOwner(p)
	require.ErrorIs(t, err, common.ErrDecode)

	require.NoError(t, os.WriteFile(p, []byte("host: h\n"), 0o640))
	_, err = lock.ReadOwner(p)
	require.ErrorIs(t, err, common.ErrDecode)

	require.NoError(t, os.WriteFile(p, []byte("pid: 1\nhost: some-other-host\n"), 0o640))
	o, err := lock.ReadOwner(p)
	require.NoError(t, err)
	require.True(t, o.Alive(), "owners from other hosts are considered alive")
}
