package common

import "github.com/nspcc-dev/flatdb/pkg/hash"

// ChunkID returns the ID of the chunk key belongs to. It panics if C is
// wider than K, tables refuse such widths on construction.
func ChunkID[C, K hash.Width](key hash.Hash[K]) hash.Hash[C] {
	id, err := hash.Truncate[C](key)
	if err != nil {
		panic(err)
	}
	return id
}
