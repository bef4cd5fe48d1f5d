package jsonfile

import (
	"errors"
	"fmt"
)

// Kind classifies a file-system boundary failure.
type Kind int

const (
	KindIO Kind = iota
	KindNotFound
	KindPermission
	KindMalformed
)

// Kind sentinels, matched with errors.Is against a *FileError.
var (
	ErrIO         = errors.New("i/o failure")
	ErrNotFound   = errors.New("file not found")
	ErrPermission = errors.New("permission denied")
	ErrMalformed  = errors.New("malformed JSON")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindPermission:
		return ErrPermission
	case KindMalformed:
		return ErrMalformed
	default:
		return ErrIO
	}
}

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission_denied"
	case KindMalformed:
		return "malformed"
	default:
		return "io"
	}
}

// FileError reports a read or write failure for one file.
type FileError struct {
	Op   string // "read" or "write"
	Path string
	Kind Kind
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind.sentinel(), e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's Kind.
func (e *FileError) Is(target error) bool {
	return target == e.Kind.sentinel()
}
