//go:build unix

package grace_test

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/nspcc-dev/flatdb/internal/testutil"
	"github.com/nspcc-dev/flatdb/pkg/util/grace"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewGracefulContext(t *testing.T) {
	t.Run("stop", func(t *testing.T) {
		ctx, stop := grace.NewGracefulContext(context.Background(), nil)
		require.NoError(t, ctx.Err())
		stop()
		require.ErrorIs(t, ctx.Err(), context.Canceled)
	})

	t.Run("parent", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := grace.NewGracefulContext(parent, nil)
		defer stop()

		cancel()
		require.ErrorIs(t, ctx.Err(), context.Canceled)
	})

	t.Run("signal", func(t *testing.T) {
		l, buf := testutil.NewBufferedLogger(t, zap.InfoLevel)

		ctx, stop := grace.NewGracefulContext(context.Background(), l)
		defer stop()

		require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGHUP))

		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("context is not canceled by signal")
		}

		require.Eventually(t, func() bool {
			return len(buf.Filter(zap.InfoLevel, "received signal")) == 1
		}, time.Second, 10*time.Millisecond)
	})
}
