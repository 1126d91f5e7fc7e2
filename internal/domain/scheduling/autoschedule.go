// path: internal/domain/scheduling/autoschedule.go
package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a DailyAutoSchedule row.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusGenerated  Status = "GENERATED"
	StatusApproved   Status = "APPROVED"
	StatusPublishing Status = "PUBLISHING"
	StatusPublished  Status = "PUBLISHED"
	StatusFailed     Status = "FAILED"
	StatusCancelled  Status = "CANCELLED"
	StatusExpired    Status = "EXPIRED"
)

// AutoSchedule ties a calendar day to the UCBSelector's decision and, once
// materialized, to the Post it produced.
type AutoSchedule struct {
	id                 uuid.UUID
	scheduleDate       time.Time // local calendar day, time component zeroed
	postID             *uuid.UUID
	scheduledTime      time.Time
	selectedTimeSlotID uuid.UUID
	selectedTemplateID uuid.UUID
	ucbScore           float64
	selectionReason    string
	status             Status
	executedAt         *time.Time
	errorMessage       string
}

// New creates a PENDING schedule row from a UCBSelector decision
// (spec §4.L step 6).
func New(scheduleDate time.Time, scheduledTime time.Time, timeSlotID, templateID uuid.UUID, ucbScore float64, reason string) (*AutoSchedule, error) {
	if timeSlotID == uuid.Nil || templateID == uuid.Nil {
		return nil, ErrInvalidSelection
	}
	return &AutoSchedule{
		id:                 uuid.New(),
		scheduleDate:       scheduleDate,
		scheduledTime:      scheduledTime,
		selectedTimeSlotID: timeSlotID,
		selectedTemplateID: templateID,
		ucbScore:           ucbScore,
		selectionReason:    reason,
		status:             StatusPending,
	}, nil
}

// Reconstruct recreates an AutoSchedule from persistence.
func Reconstruct(id uuid.UUID, scheduleDate, scheduledTime time.Time, postID *uuid.UUID, timeSlotID, templateID uuid.UUID, ucbScore float64, reason string, status Status, executedAt *time.Time, errorMessage string) *AutoSchedule {
	return &AutoSchedule{
		id: id, scheduleDate: scheduleDate, postID: postID, scheduledTime: scheduledTime,
		selectedTimeSlotID: timeSlotID, selectedTemplateID: templateID,
		ucbScore: ucbScore, selectionReason: reason, status: status,
		executedAt: executedAt, errorMessage: errorMessage,
	}
}

func (s *AutoSchedule) ID() uuid.UUID                 { return s.id }
func (s *AutoSchedule) ScheduleDate() time.Time        { return s.scheduleDate }
func (s *AutoSchedule) PostID() *uuid.UUID             { return s.postID }
func (s *AutoSchedule) ScheduledTime() time.Time       { return s.scheduledTime }
func (s *AutoSchedule) SelectedTimeSlotID() uuid.UUID  { return s.selectedTimeSlotID }
func (s *AutoSchedule) SelectedTemplateID() uuid.UUID  { return s.selectedTemplateID }
func (s *AutoSchedule) UCBScore() float64              { return s.ucbScore }
func (s *AutoSchedule) SelectionReason() string        { return s.selectionReason }
func (s *AutoSchedule) Status() Status                 { return s.status }
func (s *AutoSchedule) ExecutedAt() *time.Time         { return s.executedAt }
func (s *AutoSchedule) ErrorMessage() string           { return s.errorMessage }

// MaterializeDraft attaches the DRAFT post created for this schedule and
// transitions PENDING -> GENERATED (spec §4.L step 7).
func (s *AutoSchedule) MaterializeDraft(postID uuid.UUID) error {
	if s.status != StatusPending {
		return ErrInvalidTransition
	}
	s.postID = &postID
	s.status = StatusGenerated
	return nil
}

// MarkApproved mirrors the tied post's APPROVED transition.
func (s *AutoSchedule) MarkApproved() error {
	if s.status != StatusGenerated {
		return ErrInvalidTransition
	}
	s.status = StatusApproved
	return nil
}

// MarkPublishing mirrors the tied post's PUBLISHING transition, dispatched
// by the Scheduler's due-schedule sweep (spec §4.K).
func (s *AutoSchedule) MarkPublishing() error {
	if s.status != StatusApproved {
		return ErrInvalidTransition
	}
	s.status = StatusPublishing
	return nil
}

// MarkPublished records a successful Publisher run.
func (s *AutoSchedule) MarkPublished() error {
	if s.status != StatusPublishing {
		return ErrInvalidTransition
	}
	now := time.Now().UTC()
	s.status = StatusPublished
	s.executedAt = &now
	return nil
}

// MarkFailed records a failed Publisher run.
func (s *AutoSchedule) MarkFailed(message string) error {
	now := time.Now().UTC()
	s.status = StatusFailed
	s.errorMessage = message
	s.executedAt = &now
	return nil
}

// Expire marks the schedule EXPIRED when its draft post timed out in
// review (spec §4.K: "within the next 10 min and whose post is still
// PENDING_REVIEW").
func (s *AutoSchedule) Expire() error {
	if s.status != StatusGenerated {
		return ErrInvalidTransition
	}
	s.status = StatusExpired
	return nil
}

// IsDueWithin reports whether the schedule falls due for dispatch before
// the given horizon (spec §4.K "due APPROVED DailyAutoSchedules").
func (s *AutoSchedule) IsDueWithin(horizon time.Duration) bool {
	return s.status == StatusApproved && !s.scheduledTime.After(time.Now().Add(horizon))
}

// ExpiringWithin reports whether an unreviewed GENERATED schedule will
// come due before the given horizon.
func (s *AutoSchedule) ExpiringWithin(horizon time.Duration) bool {
	return s.status == StatusGenerated && !s.scheduledTime.After(time.Now().Add(horizon))
}
