package backup

import (
	"errors"
	"fmt"
)

// Kind classifies why loading or saving a backup document failed.
type Kind int

const (
	// NotFound means the document file does not exist.
	NotFound Kind = iota + 1
	// ParseError means the file exists but does not decode into the expected document.
	ParseError
	// WriteError means encoding the document or replacing the file failed.
	WriteError
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case ParseError:
		return "parse error"
	case WriteError:
		return "write error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinels to match an *Error by kind with errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrParse    = errors.New("parse error")
	ErrWrite    = errors.New("write error")
)

// Error reports which document failed, where it lives and what went wrong.
type Error struct {
	Kind     Kind
	Document string
	Path     string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Document, e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrParse) and friends match on Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == NotFound
	case ErrParse:
		return e.Kind == ParseError
	case ErrWrite:
		return e.Kind == WriteError
	}
	return false
}
