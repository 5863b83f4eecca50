package hash

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// Width defines the number of bytes in a Hash. Implementations are expected
// to be zero-size marker types, the Size of the zero value is used.
type Width interface {
	Size() int
}

// Predefined hash widths.
type (
	W1  struct{}
	W2  struct{}
	W4  struct{}
	W8  struct{}
	W16 struct{}
	W20 struct{}
	W32 struct{}
	W64 struct{}
)

func (W1) Size() int  { return 1 }
func (W2) Size() int  { return 2 }
func (W4) Size() int  { return 4 }
func (W8) Size() int  { return 8 }
func (W16) Size() int { return 16 }
func (W20) Size() int { return 20 }
func (W32) Size() int { return 32 }
func (W64) Size() int { return 64 }

// Size returns the number of bytes in Hash[W].
func Size[W Width]() int {
	var w W
	return w.Size()
}

// Hash is an immutable fixed-width byte identifier. Hashes of the same width
// are comparable with ==, so Hash can be used as a map key.
//
// The zero value is a hash of zero bytes and is == to one constructed from
// zero bytes.
type Hash[W Width] struct {
	b string
}

// fromBytes makes Hash from the correctly sized b. All-zero b is stored as
// an empty string to keep == consistent with the zero value.
func fromBytes[W Width](b []byte) Hash[W] {
	for i := range b {
		if b[i] != 0 {
			return Hash[W]{b: string(b)}
		}
	}
	return Hash[W]{}
}

// New constructs Hash from raw bytes. Returns *LengthError if len(b) does not
// match the width.
func New[W Width](b []byte) (Hash[W], error) {
	if n := Size[W](); len(b) != n {
		return Hash[W]{}, &LengthError{Expected: n, Actual: len(b)}
	}
	return fromBytes[W](b), nil
}

// MustNew is like New but panics on error.
func MustNew[W Width](b []byte) Hash[W] {
	h, err := New[W](b)
	if err != nil {
		panic(err)
	}
	return h
}

// Parse decodes Hash from its hexadecimal text form. Both lower and upper
// case digits are accepted.
//
// Returns *LengthError if len(s) is not twice the width and *CharacterError
// pointing to the first invalid byte pair.
func Parse[W Width](s string) (Hash[W], error) {
	n := Size[W]()
	if len(s) != 2*n {
		return Hash[W]{}, &LengthError{Expected: 2 * n, Actual: len(s)}
	}

	b := make([]byte, n)
	for i := range n {
		if _, err := hex.Decode(b[i:i+1], []byte(s[2*i:2*i+2])); err != nil {
			return Hash[W]{}, &CharacterError{Position: 2 * i}
		}
	}

	return fromBytes[W](b), nil
}

// Truncate returns the first C bytes of h. Truncating to a wider hash is not
// possible and results in ErrTruncate.
func Truncate[C, K Width](h Hash[K]) (Hash[C], error) {
	n, k := Size[C](), Size[K]()
	if n > k {
		return Hash[C]{}, fmt.Errorf("%w: %d bytes to %d", ErrTruncate, k, n)
	}
	return fromBytes[C](h.raw()[:n]), nil
}

func (h Hash[W]) raw() []byte {
	if h.b == "" {
		return make([]byte, Size[W]())
	}
	return []byte(h.b)
}

// Size returns the width of h in bytes.
func (h Hash[W]) Size() int {
	return Size[W]()
}

// Bytes returns a copy of the underlying bytes.
func (h Hash[W]) Bytes() []byte {
	return h.raw()
}

// String implements fmt.Stringer. Result is a lowercase hex string.
func (h Hash[W]) String() string {
	return hex.EncodeToString(h.raw())
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash[W]) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash[W]) UnmarshalText(text []byte) error {
	v, err := Parse[W](string(text))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// Compare compares two hashes byte-lexicographically. The result is -1, 0 or
// +1 as in [strings.Compare].
func Compare[W Width](a, b Hash[W]) int {
	return strings.Compare(string(a.raw()), string(b.raw()))
}

// Sorted returns keys of m in ascending order.
func Sorted[W Width, V any](m map[Hash[W]]V) []Hash[W] {
	keys := make([]Hash[W], 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, Compare[W])
	return keys
}
