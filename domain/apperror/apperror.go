package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so retry logic can match on it
// instead of catching generic failures.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindValidation        Kind = "VALIDATION"
	KindUnavailable       Kind = "UNAVAILABLE"
	KindInvalidCredential Kind = "INVALID_CREDENTIAL"
	KindInternal          Kind = "INTERNAL"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Retryable reports whether the queue should re-schedule the failed job.
// Only remote unavailability is worth retrying; everything else needs a
// config, data, or credential fix first.
func (e *AppError) Retryable() bool { return e.Kind == KindUnavailable }

func New(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NotFound(message string, err error) *AppError {
	return New(KindNotFound, message, err)
}

func Validation(message string, err error) *AppError {
	return New(KindValidation, message, err)
}

func Unavailable(message string, err error) *AppError {
	return New(KindUnavailable, message, err)
}

func InvalidCredential(message string, err error) *AppError {
	return New(KindInvalidCredential, message, err)
}

func Internal(message string, err error) *AppError {
	return New(KindInternal, message, err)
}

// KindOf extracts the kind from any error chain; unknown errors are
// treated as Unavailable so a stray adapter failure stays retryable.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnavailable
}

// IsRetryable reports whether err should go back on the queue.
func IsRetryable(err error) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Retryable()
	}
	return true
}
