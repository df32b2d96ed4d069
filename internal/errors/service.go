package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies service failures.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindNotFound        Kind = "not_found"
	KindInvalidState    Kind = "invalid_state"
	KindValidation      Kind = "validation"
	KindForbidden       Kind = "forbidden"
	KindConflict        Kind = "conflict"
	KindStorageFailure  Kind = "storage_failure"
	KindUnavailable     Kind = "unavailable"
)

// Error is the error type returned by every service operation.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	// Fields holds field-level messages for KindValidation.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + e.Fields[k]
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthenticated reports a missing user session.
func Unauthenticated(op string) *Error {
	return &Error{Kind: KindUnauthenticated, Op: op, Message: "Authentication required"}
}

// NotFound reports a missing entity or one the caller does not own.
func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

// InvalidState reports unmet operation preconditions.
func InvalidState(op, message string) *Error {
	return &Error{Kind: KindInvalidState, Op: op, Message: message}
}

// Validation reports a schema rejection with field-level messages.
func Validation(op string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: "Validation failed", Fields: fields}
}

// Forbidden reports an action the caller is not allowed to take.
func Forbidden(op, message string) *Error {
	return &Error{Kind: KindForbidden, Op: op, Message: message}
}

// Conflict reports a uniqueness violation.
func Conflict(op, message string) *Error {
	return &Error{Kind: KindConflict, Op: op, Message: message}
}

// Storage wraps a persistence failure, preserving its cause.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorageFailure, Op: op, Message: "storage operation failed", Err: err}
}

// Unavailable reports a dependency that is not configured or reachable.
func Unavailable(op, message string) *Error {
	return &Error{Kind: KindUnavailable, Op: op, Message: message}
}

// BulkError reports the identifiers whose updates failed in a bulk operation.
type BulkError struct {
	Op     string
	Failed []uint64
	Err    error
}

func (e *BulkError) Error() string {
	msg := fmt.Sprintf("%s: %d update(s) failed for ids %v", e.Op, len(e.Failed), e.Failed)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BulkError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of a service error, or KindStorageFailure for
// anything else.
func KindOf(err error) Kind {
	var svcErr *Error
	if As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindStorageFailure
}

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind Kind) bool {
	var svcErr *Error
	return As(err, &svcErr) && svcErr.Kind == kind
}

// As and Is forward to the standard library so callers importing this package
// do not need both.
func As(err error, target any) bool { return stderrors.As(err, target) }

func Is(err, target error) bool { return stderrors.Is(err, target) }
