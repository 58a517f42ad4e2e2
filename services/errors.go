package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds. Match them with errors.Is.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrTransient         = errors.New("store unavailable")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
)

// Error is the error type returned by the order lifecycle core
type Error struct {
	Kind    error
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is / errors.As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// InvalidTransition reports that no edge leads from one status to the other
func InvalidTransition(message string) *Error {
	return newError(ErrInvalidTransition, "INVALID_TRANSITION", message)
}

// Unauthorized reports that the principal may not perform the action
func Unauthorized(message string) *Error {
	return newError(ErrUnauthorized, "FORBIDDEN", message)
}

// NotFound reports a missing record; code names the record, e.g. ORDER_NOT_FOUND
func NotFound(code, message string) *Error {
	return newError(ErrNotFound, code, message)
}

// Validation reports bad input
func Validation(message string) *Error {
	return newError(ErrValidation, "VALIDATION_ERROR", message)
}

// Transient reports that the store could not be reached; callers may retry
func Transient(message string, err error) *Error {
	return &Error{Kind: ErrTransient, Code: "SERVICE_UNAVAILABLE", Message: message, Err: err}
}

// ClassifyStoreError turns a gorm / driver error into a core error.
// what names the record for not-found codes, e.g. "order" gives ORDER_NOT_FOUND.
func ClassifyStoreError(err error, what string) error {
	if err == nil {
		return nil
	}

	var coreErr *Error
	if errors.As(err, &coreErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{
			Kind:    ErrNotFound,
			Code:    strings.ToUpper(what) + "_NOT_FOUND",
			Message: what + " not found",
			Err:     err,
		}
	}

	if IsUniqueViolation(err) {
		return &Error{Kind: ErrConflict, Code: "CONFLICT", Message: what + " already exists", Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return &Error{Kind: ErrConflict, Code: "CONFLICT", Message: what + " violates a constraint", Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return Transient("timed out talking to the database", err)
	}

	return Transient("database error while loading "+what, err)
}

// IsUniqueViolation reports a duplicate key error (works with both PostgreSQL and SQLite)
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
