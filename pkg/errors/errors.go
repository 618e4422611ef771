package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an AppError so callers can map it to behavior (HTTP status,
// retry, silent skip) without matching on message text.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindValidationFailed Kind = "VALIDATION_FAILED"
	KindForbidden        Kind = "FORBIDDEN"
	KindTransientStore   Kind = "TRANSIENT_STORE_FAILURE"
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

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *AppError {
	return New(KindNotFound, message, nil)
}

func ValidationFailed(message string) *AppError {
	return New(KindValidationFailed, message, nil)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, message, nil)
}

func Transient(message string, err error) *AppError {
	return New(KindTransientStore, message, err)
}

func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

func IsNotFound(err error) bool         { return IsKind(err, KindNotFound) }
func IsValidationFailed(err error) bool { return IsKind(err, KindValidationFailed) }
func IsForbidden(err error) bool        { return IsKind(err, KindForbidden) }
func IsTransient(err error) bool        { return IsKind(err, KindTransientStore) }
