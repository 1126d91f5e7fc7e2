// path: internal/domain/scheduling/errors.go
package scheduling

import "errors"

var (
	ErrInvalidSelection  = errors.New("auto-schedule requires a time slot and template")
	ErrInvalidTransition = errors.New("auto-schedule status does not allow this transition")
	ErrNotFound          = errors.New("daily auto-schedule not found")
	ErrAlreadyScheduledToday = errors.New("a non-terminal auto-schedule already exists for this date")
)
