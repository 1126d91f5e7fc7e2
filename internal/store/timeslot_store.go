// path: internal/store/timeslot_store.go
package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/techappsUT/socialqueue-ucb/internal/domain/timeslot"
)

// TimeSlotStore implements timeslot.Repository over Postgres.
type TimeSlotStore struct {
	db *sql.DB
}

// NewTimeSlotStore builds a TimeSlotStore.
func NewTimeSlotStore(db *sql.DB) *TimeSlotStore {
	return &TimeSlotStore{db: db}
}

func (s *TimeSlotStore) FindByID(ctx context.Context, id uuid.UUID) (*timeslot.TimeSlot, error) {
	row := s.db.QueryRowContext(ctx, timeSlotSelect+` WHERE id = $1`, id)
	return scanTimeSlot(row)
}

// FindEligible returns enabled slots whose active_days contains dayOfWeek.
func (s *TimeSlotStore) FindEligible(ctx context.Context, dayOfWeek int) ([]*timeslot.TimeSlot, error) {
	rows, err := s.db.QueryContext(ctx, timeSlotSelect+`
		WHERE enabled = true AND $1 = ANY(active_days)
		ORDER BY start_hour, start_minute`, dayOfWeek)
	if err != nil {
		return nil, classifyErr(err, timeslot.ErrNotFound)
	}
	defer rows.Close()
	return scanTimeSlots(rows)
}

func (s *TimeSlotStore) List(ctx context.Context) ([]*timeslot.TimeSlot, error) {
	rows, err := s.db.QueryContext(ctx, timeSlotSelect+` ORDER BY start_hour, start_minute`)
	if err != nil {
		return nil, classifyErr(err, timeslot.ErrNotFound)
	}
	defer rows.Close()
	return scanTimeSlots(rows)
}

func (s *TimeSlotStore) Create(ctx context.Context, t *timeslot.TimeSlot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_slots (id, label, start_hour, start_minute, end_hour, end_minute, active_days, enabled)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID(), t.Label(), t.StartHour(), t.StartMinute(), t.EndHour(), t.EndMinute(), pq.Array(t.ActiveDays()), t.Enabled(),
	)
	return classifyErr(err, timeslot.ErrNotFound)
}

func (s *TimeSlotStore) Update(ctx context.Context, t *timeslot.TimeSlot) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE time_slots SET label=$2, start_hour=$3, start_minute=$4, end_hour=$5,
			end_minute=$6, active_days=$7, enabled=$8
		WHERE id = $1`,
		t.ID(), t.Label(), t.StartHour(), t.StartMinute(), t.EndHour(), t.EndMinute(), pq.Array(t.ActiveDays()), t.Enabled(),
	)
	return classifyErr(err, timeslot.ErrNotFound)
}

func (s *TimeSlotStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM time_slots WHERE id = $1`, id)
	return classifyErr(err, timeslot.ErrNotFound)
}

const timeSlotSelect = `
	SELECT id, label, start_hour, start_minute, end_hour, end_minute, active_days, enabled
	FROM time_slots`

func scanTimeSlot(row rowScanner) (*timeslot.TimeSlot, error) {
	var (
		id                                           uuid.UUID
		label                                        string
		startHour, startMinute, endHour, endMinute   int
		activeDays                                   []int64
		enabled                                      bool
	)
	if err := row.Scan(&id, &label, &startHour, &startMinute, &endHour, &endMinute, pq.Array(&activeDays), &enabled); err != nil {
		return nil, classifyErr(err, timeslot.ErrNotFound)
	}
	days := make([]int, len(activeDays))
	for i, d := range activeDays {
		days[i] = int(d)
	}
	return timeslot.Reconstruct(id, label, startHour, startMinute, endHour, endMinute, days, enabled), nil
}

func scanTimeSlots(rows *sql.Rows) ([]*timeslot.TimeSlot, error) {
	var out []*timeslot.TimeSlot
	for rows.Next() {
		t, err := scanTimeSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
