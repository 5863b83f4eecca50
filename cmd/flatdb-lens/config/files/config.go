package filesconfig

import (
	"github.com/mitchellh/go-homedir"
	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/config"
)

const (
	subsection = "files"

	// KeySizeDefault is a default key width in bytes, SHA-256 size.
	KeySizeDefault = 32

	// ChunkSizeDefault is a default chunk ID width in bytes.
	ChunkSizeDefault = 1

	// ExtensionDefault is a default extension of stored files.
	ExtensionDefault = "bin"
)

// Dir returns the value of "dir" config parameter
// from "files" section with "~" expanded.
func Dir(c *config.Config) (string, error) {
	return homedir.Expand(config.StringSafe(c.Sub(subsection), "dir"))
}

// KeySize returns the value of "key_size" config parameter
// from "files" section.
//
// Returns KeySizeDefault if the value is not a positive number.
func KeySize(c *config.Config) int {
	if v := config.UintSafe(c.Sub(subsection), "key_size"); v > 0 {
		return int(v)
	}

	return KeySizeDefault
}

// ChunkSize returns the value of "chunk_size" config parameter
// from "files" section.
//
// Returns ChunkSizeDefault if the value is not a positive number.
func ChunkSize(c *config.Config) int {
	if v := config.UintSafe(c.Sub(subsection), "chunk_size"); v > 0 {
		return int(v)
	}

	return ChunkSizeDefault
}

// Extension returns the value of "extension" config parameter
// from "files" section.
//
// Returns ExtensionDefault if the value is not a non-empty string.
func Extension(c *config.Config) string {
	if v := config.StringSafe(c.Sub(subsection), "extension"); v != "" {
		return v
	}

	return ExtensionDefault
}

// NoSync returns the value of "no_sync" config parameter
// from "files" section.
func NoSync(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "no_sync")
}
