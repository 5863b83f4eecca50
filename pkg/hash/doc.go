/*
Package hash provides fixed-width byte identifiers used as keys and shard
selectors of the flat tables.

Width is encoded in the type: Hash[W20] and Hash[W1] are different types, so
a full key can't be passed where a shard ID is expected. A shard ID is
derived from a key by Truncate:

	key, _ := hash.Parse[hash.W20]("ac32000000000000000000000000000000000000")
	shard, _ := hash.Truncate[hash.W1](key) // "ac"

The text form is lowercase hex of exactly 2*Size characters.
*/
package hash
