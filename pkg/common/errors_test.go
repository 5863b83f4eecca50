package common_test

import (
	"errors"
	"os"
	"testing"

	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/hash"
	"github.com/stretchr/testify/require"
)

func TestOpError(t *testing.T) {
	require.NoError(t, common.NewOpError(common.OpStat, "x", nil))

	err := common.NewOpError(common.OpReadChunk, "/tmp/ab.yml", os.ErrPermission)
	require.ErrorIs(t, err, os.ErrPermission)
	require.EqualError(t, err, `read chunk "/tmp/ab.yml": permission denied`)
}

func TestBatchError(t *testing.T) {
	errFirst := errors.New("first")
	err := error(&common.BatchError{
		Op:        common.OpSetMany,
		Succeeded: 3,
		Failed:    2,
		Errors: []error{
			errFirst,
			common.NewOpError(common.OpDecode, "ab.yml", common.ErrDecode),
		},
	})

	require.ErrorIs(t, err, errFirst)
	require.ErrorIs(t, err, common.ErrDecode)
	require.NotErrorIs(t, err, common.ErrNoSpace)

	var oerr *common.OpError
	require.ErrorAs(t, err, &oerr)
	require.Equal(t, "ab.yml", oerr.Path)

	require.EqualError(t, err, `set many: 3 succeeded, 2 failed; first; decode chunk "ab.yml": malformed content`)
}

func TestChunkID(t *testing.T) {
	key := hash.MustNew[hash.W4]([]byte{1, 2, 3, 4})
	require.Equal(t, "01", common.ChunkID[hash.W1](key).String())
	require.Equal(t, key, common.ChunkID[hash.W4](key))
	require.Panics(t, func() { common.ChunkID[hash.W8](key) })
}
