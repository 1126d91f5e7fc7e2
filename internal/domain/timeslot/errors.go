// path: internal/domain/timeslot/errors.go
package timeslot

import "errors"

var (
	ErrInvalidLabel  = errors.New("time slot label must not be empty")
	ErrInvalidWindow = errors.New("time slot window is invalid")
	ErrInvalidDay    = errors.New("time slot active days must be within 1..7")
	ErrNotFound      = errors.New("time slot not found")
)
