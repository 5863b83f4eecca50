package lock

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is matched by *TimeoutError.
var ErrTimeout = errors.New("lock acquisition timeout")

// TimeoutError is returned when the lock stays busy for longer than the
// configured timeout.
type TimeoutError struct {
	// Path of the busy marker file.
	Path    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("acquire lock %q: %s exceeded", e.Path, e.Timeout)
}

// Is makes errors.Is(err, ErrTimeout) work.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
