package files

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/internal/store"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestHasher(t *testing.T) {
	_, err := hasher(20)
	require.NoError(t, err)
	_, err = hasher(32)
	require.NoError(t, err)
	_, err = hasher(16)
	require.Error(t, err)
}

func TestImport(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a"), []byte("a"), 0o640))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b"), []byte("b"), 0o640))
	require.NoError(t, os.WriteFile(filepath.Join(src, "dup"), []byte("a"), 0o640))
	require.NoError(t, os.Mkdir(filepath.Join(src, "sub"), 0o750))

	paths, err := listFiles(src)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	var calls int
	items, err := Hash(paths, sha256.New, func() { calls++ })
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Len(t, items, 2)

	sum := sha256.Sum256([]byte("b"))
	require.Equal(t, filepath.Join(src, "b"), items[hex.EncodeToString(sum[:])])

	f, err := store.OpenFiles(t.TempDir(), "bin", 32, 1)
	require.NoError(t, err)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	require.NoError(t, Import(cmd, f, items))

	all, err := f.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)

	data, err := os.ReadFile(all[hex.EncodeToString(sum[:])])
	require.NoError(t, err)
	require.Equal(t, "b", string(data))
}
