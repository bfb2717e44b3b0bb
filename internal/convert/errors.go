package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled reports that no input was chosen. Callers treat it as a no-op.
	ErrCancelled = errors.New("conversion cancelled")

	// ErrRead and ErrWrite match any *Error of the corresponding kind via errors.Is.
	ErrRead  = errors.New("document read failure")
	ErrWrite = errors.New("output write failure")

	// ErrOverwriteInput is the cause of a write failure whose output path is the input.
	ErrOverwriteInput = errors.New("output path is the input file")
)

// Kind distinguishes where a conversion failed.
type Kind int

const (
	KindRead Kind = iota + 1
	KindWrite
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	}
	return "unknown"
}

// Error is a failed document conversion.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrRead:
		return e.Kind == KindRead
	case ErrWrite:
		return e.Kind == KindWrite
	}
	return false
}

func readError(path string, err error) error {
	return &Error{Kind: KindRead, Path: path, Err: err}
}

func writeError(path string, err error) error {
	return &Error{Kind: KindWrite, Path: path, Err: err}
}
