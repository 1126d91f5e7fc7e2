// path: internal/domain/timeslot/timeslot.go
// Package timeslot implements the TimeSlot aggregate: a recurring window of
// hours on selected weekdays within which a post may be scheduled.
package timeslot

import (
	"github.com/google/uuid"
)

// TimeSlot is a recurring posting window.
type TimeSlot struct {
	id          uuid.UUID
	label       string
	startHour   int
	startMinute int
	endHour     int
	endMinute   int
	activeDays  []int // 1..7, ISO weekday
	enabled     bool
}

// New validates the window bounds and weekday set.
func New(label string, startHour, startMinute, endHour, endMinute int, activeDays []int) (*TimeSlot, error) {
	if label == "" {
		return nil, ErrInvalidLabel
	}
	if !validHour(startHour) || !validHour(endHour) || !validMinute(startMinute) || !validMinute(endMinute) {
		return nil, ErrInvalidWindow
	}
	if startHour > endHour || (startHour == endHour && startMinute >= endMinute) {
		return nil, ErrInvalidWindow
	}
	for _, d := range activeDays {
		if d < 1 || d > 7 {
			return nil, ErrInvalidDay
		}
	}
	if len(activeDays) == 0 {
		return nil, ErrInvalidDay
	}
	return &TimeSlot{
		id:          uuid.New(),
		label:       label,
		startHour:   startHour,
		startMinute: startMinute,
		endHour:     endHour,
		endMinute:   endMinute,
		activeDays:  append([]int{}, activeDays...),
		enabled:     true,
	}, nil
}

// Reconstruct recreates a TimeSlot from persistence.
func Reconstruct(id uuid.UUID, label string, startHour, startMinute, endHour, endMinute int, activeDays []int, enabled bool) *TimeSlot {
	return &TimeSlot{
		id: id, label: label,
		startHour: startHour, startMinute: startMinute,
		endHour: endHour, endMinute: endMinute,
		activeDays: activeDays, enabled: enabled,
	}
}

func (t *TimeSlot) ID() uuid.UUID        { return t.id }
func (t *TimeSlot) Label() string        { return t.label }
func (t *TimeSlot) StartHour() int       { return t.startHour }
func (t *TimeSlot) StartMinute() int     { return t.startMinute }
func (t *TimeSlot) EndHour() int         { return t.endHour }
func (t *TimeSlot) EndMinute() int       { return t.endMinute }
func (t *TimeSlot) ActiveDays() []int    { return t.activeDays }
func (t *TimeSlot) Enabled() bool        { return t.enabled }

func (t *TimeSlot) Enable()  { t.enabled = true }
func (t *TimeSlot) Disable() { t.enabled = false }

// ActiveOn reports whether the slot is eligible on ISO weekday d (1=Monday).
func (t *TimeSlot) ActiveOn(d int) bool {
	if !t.enabled {
		return false
	}
	for _, ad := range t.activeDays {
		if ad == d {
			return true
		}
	}
	return false
}

// WindowMinutes returns the inclusive span of the slot in minutes-of-day,
// used by UCBSelector to derive a uniformly random exact instant.
func (t *TimeSlot) WindowMinutes() (start, end int) {
	return t.startHour*60 + t.startMinute, t.endHour*60 + t.endMinute
}

func validHour(h int) bool   { return h >= 0 && h <= 23 }
func validMinute(m int) bool { return m >= 0 && m <= 59 }
