package tableconfig

import (
	"io/fs"

	"github.com/mitchellh/go-homedir"
	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/config"
	"github.com/nspcc-dev/flatdb/pkg/table"
)

const (
	subsection = "table"

	// KeySizeDefault is a default key width in bytes.
	KeySizeDefault = 20

	// ChunkSizeDefault is a default chunk ID width in bytes.
	ChunkSizeDefault = 1

	// PermDefault is a default permission bits of chunk files.
	PermDefault = 0o640
)

// Dir returns the value of "dir" config parameter
// from "table" section with "~" expanded.
//
// Returns "" if the value is missing.
func Dir(c *config.Config) (string, error) {
	return homedir.Expand(config.StringSafe(c.Sub(subsection), "dir"))
}

// KeySize returns the value of "key_size" config parameter
// from "table" section.
//
// Returns KeySizeDefault if the value is not a positive number.
func KeySize(c *config.Config) int {
	if v := config.UintSafe(c.Sub(subsection), "key_size"); v > 0 {
		return int(v)
	}

	return KeySizeDefault
}

// ChunkSize returns the value of "chunk_size" config parameter
// from "table" section.
//
// Returns ChunkSizeDefault if the value is not a positive number.
func ChunkSize(c *config.Config) int {
	if v := config.UintSafe(c.Sub(subsection), "chunk_size"); v > 0 {
		return int(v)
	}

	return ChunkSizeDefault
}

// Extension returns the value of "extension" config parameter
// from "table" section.
//
// Returns table.DefaultExtension if the value is not a non-empty string.
func Extension(c *config.Config) string {
	if v := config.StringSafe(c.Sub(subsection), "extension"); v != "" {
		return v
	}

	return table.DefaultExtension
}

// Compress returns the value of "compress" config parameter
// from "table" section.
//
// Returns false if the value is not a boolean.
func Compress(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "compress")
}

// CacheSize returns the value of "cache_size" config parameter
// from "table" section.
//
// Returns 0 (cache disabled) if the value is not a number.
func CacheSize(c *config.Config) int {
	return int(config.UintSafe(c.Sub(subsection), "cache_size"))
}

// NoSync returns the value of "no_sync" config parameter
// from "table" section.
func NoSync(c *config.Config) bool {
	return config.BoolSafe(c.Sub(subsection), "no_sync")
}

// Perm returns the value of "perm" config parameter
// from "table" section.
//
// Returns PermDefault if the value is not a positive number.
func Perm(c *config.Config) fs.FileMode {
	if v := config.UintSafe(c.Sub(subsection), "perm"); v > 0 {
		return fs.FileMode(v)
	}

	return PermDefault
}
