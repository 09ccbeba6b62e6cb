package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure of the question pipeline.
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindDimensionMismatch ErrorKind = "dimension_mismatch"
	KindStoreUnavailable  ErrorKind = "store_unavailable"
	KindEmbeddingFailed   ErrorKind = "embedding_failed"
	KindRetrievalFailed   ErrorKind = "retrieval_failed"
	KindSynthesisFailed   ErrorKind = "synthesis_failed"
	KindPersistenceFailed ErrorKind = "persistence_failed"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind only, so errors.Is(err, ErrEmbeddingFailed) holds for
// any embedding failure regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

var (
	ErrInvalidInput      = NewError(KindInvalidInput, "invalid input", nil)
	ErrDimensionMismatch = NewError(KindDimensionMismatch, "vector dimension mismatch", nil)
	ErrStoreUnavailable  = NewError(KindStoreUnavailable, "segment store unavailable", nil)
	ErrEmbeddingFailed   = NewError(KindEmbeddingFailed, "embedding failed", nil)
	ErrRetrievalFailed   = NewError(KindRetrievalFailed, "retrieval failed", nil)
	ErrSynthesisFailed   = NewError(KindSynthesisFailed, "synthesis failed", nil)
	ErrPersistenceFailed = NewError(KindPersistenceFailed, "persistence failed", nil)
)

// IsKind reports whether any error in err's chain has the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return errors.Is(err, &Error{Kind: kind})
}

// KindOf returns the outermost kind in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
