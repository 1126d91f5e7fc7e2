// path: internal/apperr/apperr.go
// Package apperr implements the classified error taxonomy every outbound
// client (Store, JobQueue, LLMClient, SocialClient, ChatNotifier) returns,
// so handlers can decide retry vs terminal without parsing error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Class is the error taxonomy from the component design.
type Class string

const (
	ClassValidation   Class = "VALIDATION"    // caller input bad; never retried
	ClassPrecondition Class = "PRECONDITION"  // wrong status / stale token; never retried
	ClassAuth         Class = "AUTH"          // token invalid/expired; escalates to ACTION_REQUIRED
	ClassRateLimit    Class = "RATE_LIMIT"    // downstream throttled; retried with backoff
	ClassNetwork      Class = "NETWORK"       // timeout/connectivity; retried with backoff
	ClassProvider     Class = "PROVIDER"      // downstream 5xx/malformed; retried once, then fallback
	ClassIntegrity    Class = "INTEGRITY"     // store constraint violation; never retried
	ClassNotFound     Class = "NOT_FOUND"     // entity absent
	ClassConflict     Class = "CONFLICT"      // unique or state precondition failed
	ClassTransient    Class = "TRANSIENT"     // connection loss, retriable
)

// Error is a classified error carrying the taxonomy class plus the
// underlying cause, so %w-unwrapping still works with errors.Is/As.
type Error struct {
	Class   Class
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Class, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a classified error.
func New(class Class, message string) *Error {
	return &Error{Class: class, Message: message}
}

// Wrap builds a classified error around an existing cause.
func Wrap(class Class, message string, cause error) *Error {
	return &Error{Class: class, Message: message, Cause: cause}
}

// ClassOf extracts the Class of err, defaulting to ClassTransient for
// unclassified errors so callers fail safe toward "retry".
func ClassOf(err error) Class {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Class
	}
	return ClassTransient
}

// Retryable reports whether the handler owning err should retry the
// operation (possibly via JobQueue backoff) rather than terminate.
func Retryable(err error) bool {
	switch ClassOf(err) {
	case ClassRateLimit, ClassNetwork, ClassProvider, ClassTransient:
		return true
	default:
		return false
	}
}

func IsValidation(err error) bool   { return ClassOf(err) == ClassValidation }
func IsPrecondition(err error) bool { return ClassOf(err) == ClassPrecondition }
func IsAuth(err error) bool         { return ClassOf(err) == ClassAuth }
func IsNotFound(err error) bool     { return ClassOf(err) == ClassNotFound }
func IsConflict(err error) bool     { return ClassOf(err) == ClassConflict }
