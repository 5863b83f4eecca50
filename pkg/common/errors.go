package common

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSpace MUST be returned when there is no space to write a file on the device.
var ErrNoSpace = errors.New("no free space")

// ErrDecode is wrapped into every failure to decode stored content, so it
// can be told apart from I/O errors with errors.Is.
var ErrDecode = errors.New("malformed content")

// Op names the action that failed.
type Op string

// Actions reported in OpError.
const (
	OpReadChunk   Op = "read chunk"
	OpWriteChunk  Op = "write chunk"
	OpDecode      Op = "decode chunk"
	OpEncode      Op = "encode chunk"
	OpReadDir     Op = "read directory"
	OpCreateDir   Op = "create directory"
	OpCopyFile    Op = "copy file"
	OpStat        Op = "stat"
	OpAcquireLock Op = "acquire lock"
	OpSetMany     Op = "set many"
	OpCleanTemp   Op = "clean temporary files"
)

// OpError is a filesystem or codec failure bound to a path.
type OpError struct {
	Op   Op
	Path string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// NewOpError returns nil if err is nil and *OpError otherwise.
func NewOpError(op Op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Path: path, Err: err}
}

// BatchError is returned by batch operations when at least one unit of work
// failed. Units that succeeded keep their result, nothing is rolled back.
type BatchError struct {
	Op        Op
	Succeeded int
	Failed    int
	Errors    []error
}

func (e *BatchError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s: %d succeeded, %d failed", e.Op, e.Succeeded, e.Failed)
	for i := range e.Errors {
		sb.WriteString("; ")
		sb.WriteString(e.Errors[i].Error())
	}

	return sb.String()
}

// Unwrap allows errors.Is and errors.As to inspect every cause.
func (e *BatchError) Unwrap() []error { return e.Errors }
