/*
Package table implements a key-value store of decoded records kept in plain
files.

Keys are fixed-width hashes. Records whose keys share the same prefix form a
chunk stored in a single file named after the hex prefix:

	<dir>/<chunk>.yml

Chunk file is a mapping from full hex keys to records, YAML by default. Every
write takes the chunk lock, loads the chunk, modifies it and replaces the file
atomically. Writers of different chunks never wait for each other.

	tbl, err := table.New[hash.W20, hash.W1, Record](dir)
	...
	err = tbl.Set(ctx, key, rec)
	rec, ok, err := tbl.Get(key)
*/
package table
