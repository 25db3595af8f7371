package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures at component boundaries
type ErrorKind string

const (
	ErrKindValidation ErrorKind = "validation"
	ErrKindExtraction ErrorKind = "extraction"
	ErrKindFilesystem ErrorKind = "filesystem"
	ErrKindNoOutput   ErrorKind = "no_output_files" // engine succeeded, nothing matched the token
	ErrKindAuth       ErrorKind = "auth"
	ErrKindNotFound   ErrorKind = "not_found"
	ErrKindInternal   ErrorKind = "internal"
)

var (
	errURLRequired      = errors.New("URL is required")
	errURLMalformed     = errors.New("URL must be an absolute http or https URL")
	ErrFormatIDRequired = errors.New("format_id is required")
	ErrNoOutputFiles    = errors.New("download reported success but no output file matched")
	ErrRecordNotFound   = errors.New("download not found")
	ErrMissingToken     = errors.New("missing bearer token")
	ErrInvalidToken     = errors.New("invalid bearer token")
	ErrInterrupted      = errors.New("download interrupted by server shutdown")
)

// Error is a failure tagged with its kind and the operation that produced it
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and operation
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the underlying message without the operation prefix
func (e *Error) Message() string {
	return e.Err.Error()
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrKindInternal
}

// MessageOf returns a client-facing message for err
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message()
	}
	return err.Error()
}
