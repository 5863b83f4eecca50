// Package codec defines how table records are serialized into chunk files.
package codec
