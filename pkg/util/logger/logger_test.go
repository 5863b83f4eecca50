package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nspcc-dev/flatdb/pkg/util/logger"
	"github.com/stretchr/testify/require"
)

func TestPrm(t *testing.T) {
	var p logger.Prm

	require.NoError(t, p.SetLevelString("debug"))
	require.NoError(t, p.SetLevelString("WARN"))
	require.Error(t, p.SetLevelString("verbose"))

	require.NoError(t, p.SetEncoding("json"))
	require.NoError(t, p.SetEncoding("console"))
	require.Error(t, p.SetEncoding("xml"))
}

func TestNewLogger(t *testing.T) {
	l, err := logger.NewLogger(nil)
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(logger.DefaultLevel))
	require.False(t, l.Core().Enabled(logger.DefaultLevel-1))

	out := filepath.Join(t.TempDir(), "log")

	var p logger.Prm
	require.NoError(t, p.SetLevelString("warn"))
	require.NoError(t, p.SetEncoding("json"))
	p.SetOutput(out)

	l, err = logger.NewLogger(&p)
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")
	_ = l.Sync()

	b, err := os.ReadFile(out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], `"msg":"shown"`)
}
