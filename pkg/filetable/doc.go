// Package filetable implements a store of external files grouped into chunk
// directories by key prefix.
package filetable
