// path: internal/threads/errors.go
package threads

import "github.com/techappsUT/socialqueue-ucb/internal/apperr"

// ErrorCode names the taxonomy SocialClient classifies failures into
// (spec §4.D). TOKEN_EXPIRED drives the account into ACTION_REQUIRED.
type ErrorCode string

const (
	CodeTokenExpired    ErrorCode = "TOKEN_EXPIRED"
	CodePermissionError ErrorCode = "PERMISSION_ERROR"
	CodeRateLimit       ErrorCode = "RATE_LIMIT"
	CodeNetworkError    ErrorCode = "NETWORK_ERROR"
	CodeUnknownError    ErrorCode = "UNKNOWN_ERROR"
)

// classOf maps an ErrorCode onto the shared apperr taxonomy so callers can
// use apperr.Retryable/apperr.ClassOf without re-switching on ErrorCode.
func classOf(code ErrorCode) apperr.Class {
	switch code {
	case CodeTokenExpired:
		return apperr.ClassAuth
	case CodePermissionError:
		return apperr.ClassPrecondition
	case CodeRateLimit:
		return apperr.ClassRateLimit
	case CodeNetworkError:
		return apperr.ClassNetwork
	default:
		return apperr.ClassProvider
	}
}

// ClientError is a SocialClient failure carrying both the Threads-specific
// code and the apperr class it maps to.
type ClientError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Cause.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *ClientError) Unwrap() error { return e.Cause }

func newError(code ErrorCode, message string, cause error) *ClientError {
	return &ClientError{Code: code, Message: message, Cause: cause}
}

// Classified converts a ClientError into the shared apperr type so handlers
// outside this package never need to know about ErrorCode.
func (e *ClientError) Classified() *apperr.Error {
	return apperr.Wrap(classOf(e.Code), e.Message, e.Cause)
}
