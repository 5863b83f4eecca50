package codec_test

import (
	"bytes"
	"testing"

	"github.com/nspcc-dev/flatdb/pkg/codec"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name    string   `yaml:"name"`
	Success bool     `yaml:"success"`
	Tags    []string `yaml:"tags,omitempty"`
}

func testCodec(t *testing.T, c codec.Codec) []byte {
	in := map[string]record{
		"bb": {Name: "second", Success: true},
		"aa": {Name: "first", Tags: []string{"x", "y"}},
	}

	data, err := c.Marshal(in)
	require.NoError(t, err)

	var out map[string]record
	require.NoError(t, c.Unmarshal(data, &out))
	require.Equal(t, in, out)

	require.Error(t, c.Unmarshal([]byte("aa: [unclosed"), &out))

	return data
}

func TestYAML(t *testing.T) {
	data := testCodec(t, codec.YAML{})
	require.Less(t, bytes.Index(data, []byte("aa:")), bytes.Index(data, []byte("bb:")), "keys must be sorted")
	require.False(t, codec.IsCompressed(data))

	var out map[string]record
	require.NoError(t, codec.YAML{}.Unmarshal(nil, &out))
	require.Nil(t, out)
}

func TestZstd(t *testing.T) {
	z, err := codec.NewZstd(codec.YAML{})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, z.Close()) })

	data := testCodec(t, z)
	require.True(t, codec.IsCompressed(data))

	t.Run("plain input", func(t *testing.T) {
		var out map[string]record
		require.NoError(t, z.Unmarshal([]byte("aa:\n  name: plain\n"), &out))
		require.Equal(t, "plain", out["aa"].Name)
	})

	t.Run("corrupted frame", func(t *testing.T) {
		var out map[string]record
		corrupted := append(bytes.Clone(data[:4]), 0xff, 0xff, 0xff)
		require.Error(t, z.Unmarshal(corrupted, &out))
	})
}
