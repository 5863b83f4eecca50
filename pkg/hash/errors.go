package hash

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLength is matched by *LengthError.
	ErrInvalidLength = errors.New("invalid hex length")
	// ErrInvalidCharacter is matched by *CharacterError.
	ErrInvalidCharacter = errors.New("invalid hex character")
	// ErrTruncate is returned when a hash is truncated to a larger width.
	ErrTruncate = errors.New("can't truncate to a larger width")
)

// LengthError describes input of unexpected length.
type LengthError struct {
	Expected int
	Actual   int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: expected %d, actual %d", ErrInvalidLength, e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrInvalidLength) work.
func (e *LengthError) Is(target error) bool {
	return target == ErrInvalidLength
}

// CharacterError points to the first byte pair that is not valid hex.
type CharacterError struct {
	Position int
}

func (e *CharacterError) Error() string {
	return fmt.Sprintf("%s at position %d", ErrInvalidCharacter, e.Position)
}

// Is makes errors.Is(err, ErrInvalidCharacter) work.
func (e *CharacterError) Is(target error) bool {
	return target == ErrInvalidCharacter
}
