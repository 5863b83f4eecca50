package cmderr

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/nspcc-dev/flatdb/pkg/lock"
)

// Exit codes of failed commands.
const (
	CodeFailure     = 1
	CodeLockTimeout = 2
	CodeMalformed   = 3
)

// ExitErr specific error for ExitOnErr function that passes the exit code and error caused.
type ExitErr struct {
	Code  int
	Cause error
}

func (x ExitErr) Error() string { return x.Cause.Error() }

func (x ExitErr) Unwrap() error { return x.Cause }

// Code returns exit code for err. Lock timeouts and malformed table files
// have dedicated codes so scripts can retry or repair.
func Code(err error) int {
	var e ExitErr
	switch {
	case errors.As(err, &e):
		return e.Code
	case errors.Is(err, lock.ErrTimeout):
		return CodeLockTimeout
	case errors.Is(err, common.ErrDecode):
		return CodeMalformed
	default:
		return CodeFailure
	}
}

// ExitOnErr writes error to os.Stderr and calls os.Exit with the code
// returned by Code. Does nothing if err is nil.
func ExitOnErr(err error) {
	if err != nil {
		os.Exit(Print(os.Stderr, err))
	}
}

// Print writes err to w and returns exit code for it.
func Print(w io.Writer, err error) int {
	fmt.Fprintln(w, "Error:", err)
	return Code(err)
}
