// path: internal/store/scheduling_store.go
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/techappsUT/socialqueue-ucb/internal/domain/scheduling"
)

// SchedulerConfigStore implements scheduling.ConfigRepository over the
// singleton scheduler_config row.
type SchedulerConfigStore struct {
	db *sql.DB
}

// NewSchedulerConfigStore builds a SchedulerConfigStore.
func NewSchedulerConfigStore(db *sql.DB) *SchedulerConfigStore {
	return &SchedulerConfigStore{db: db}
}

func (s *SchedulerConfigStore) Get(ctx context.Context) (*scheduling.Config, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT exploration_factor, min_trials_per_template, posts_per_day,
		       time_range_start, time_range_end, active_days, auto_schedule_enabled,
		       ai_prompt, ai_engine, line_user_id, threads_account_id
		FROM scheduler_config WHERE id = 1`)

	cfg := scheduling.NewConfig(0, 0, 0)
	var (
		explorationFactor                    float64
		minTrials, postsPerDay                int
		timeRangeStart, timeRangeEnd          int
		activeDays                            []int64
		autoScheduleEnabled                   bool
		aiPrompt, aiEngine, lineUserID         string
		threadsAccountID                      *string
	)
	if err := row.Scan(&explorationFactor, &minTrials, &postsPerDay, &timeRangeStart, &timeRangeEnd,
		pq.Array(&activeDays), &autoScheduleEnabled, &aiPrompt, &aiEngine, &lineUserID, &threadsAccountID); err != nil {
		if err == sql.ErrNoRows {
			return cfg, nil
		}
		return nil, classifyErr(err, scheduling.ErrNotFound)
	}

	days := make([]int, len(activeDays))
	for i, d := range activeDays {
		days[i] = int(d)
	}
	cfg.Apply(func(c *scheduling.Config) {
		c.ExplorationFactor = explorationFactor
		c.MinTrialsPerTemplate = minTrials
		c.PostsPerDay = postsPerDay
		c.TimeRangeStart = timeRangeStart
		c.TimeRangeEnd = timeRangeEnd
		c.ActiveDays = days
		c.AutoScheduleEnabled = autoScheduleEnabled
		c.AIPrompt = aiPrompt
		c.AIEngine = aiEngine
		c.LineUserID = lineUserID
		c.ThreadsAccountID = threadsAccountID
	})
	return cfg, nil
}

func (s *SchedulerConfigStore) Save(ctx context.Context, c *scheduling.Config) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduler_config (
			id, exploration_factor, min_trials_per_template, posts_per_day,
			time_range_start, time_range_end, active_days, auto_schedule_enabled,
			ai_prompt, ai_engine, line_user_id, threads_account_id, updated_at
		) VALUES (1,$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			exploration_factor = EXCLUDED.exploration_factor,
			min_trials_per_template = EXCLUDED.min_trials_per_template,
			posts_per_day = EXCLUDED.posts_per_day,
			time_range_start = EXCLUDED.time_range_start,
			time_range_end = EXCLUDED.time_range_end,
			active_days = EXCLUDED.active_days,
			auto_schedule_enabled = EXCLUDED.auto_schedule_enabled,
			ai_prompt = EXCLUDED.ai_prompt,
			ai_engine = EXCLUDED.ai_engine,
			line_user_id = EXCLUDED.line_user_id,
			threads_account_id = EXCLUDED.threads_account_id,
			updated_at = EXCLUDED.updated_at`,
		c.ExplorationFactor, c.MinTrialsPerTemplate, c.PostsPerDay,
		c.TimeRangeStart, c.TimeRangeEnd, pq.Array(c.ActiveDays), c.AutoScheduleEnabled,
		c.AIPrompt, c.AIEngine, c.LineUserID, c.ThreadsAccountID, c.UpdatedAt(),
	)
	return classifyErr(err, scheduling.ErrNotFound)
}

// AutoScheduleStore implements scheduling.AutoScheduleRepository.
type AutoScheduleStore struct {
	db *sql.DB
}

// NewAutoScheduleStore builds an AutoScheduleStore.
func NewAutoScheduleStore(db *sql.DB) *AutoScheduleStore {
	return &AutoScheduleStore{db: db}
}

func (s *AutoScheduleStore) FindByID(ctx context.Context, id uuid.UUID) (*scheduling.AutoSchedule, error) {
	row := s.db.QueryRowContext(ctx, autoScheduleSelect+` WHERE id = $1`, id)
	return scanAutoSchedule(row)
}

func (s *AutoScheduleStore) FindByDate(ctx context.Context, date time.Time) (*scheduling.AutoSchedule, error) {
	row := s.db.QueryRowContext(ctx, autoScheduleSelect+` WHERE schedule_date = $1`, date)
	return scanAutoSchedule(row)
}

func (s *AutoScheduleStore) FindNonTerminalByDate(ctx context.Context, date time.Time) (*scheduling.AutoSchedule, error) {
	row := s.db.QueryRowContext(ctx, autoScheduleSelect+`
		WHERE schedule_date = $1
		AND status NOT IN ($2,$3,$4)`,
		date, scheduling.StatusCancelled, scheduling.StatusExpired, scheduling.StatusFailed)
	return scanAutoSchedule(row)
}

// Create enforces Invariant 7 (at most one non-terminal schedule per
// scheduleDate) via a unique partial index on schedule_date WHERE status
// NOT IN ('CANCELLED','EXPIRED','FAILED').
func (s *AutoScheduleStore) Create(ctx context.Context, a *scheduling.AutoSchedule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_auto_schedules (
			id, schedule_date, post_id, scheduled_time, selected_time_slot_id,
			selected_template_id, ucb_score, selection_reason, status, executed_at, error_message
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID(), a.ScheduleDate(), a.PostID(), a.ScheduledTime(), a.SelectedTimeSlotID(),
		a.SelectedTemplateID(), a.UCBScore(), a.SelectionReason(), a.Status(), a.ExecutedAt(), a.ErrorMessage(),
	)
	return classifyErr(err, scheduling.ErrAlreadyScheduledToday)
}

func (s *AutoScheduleStore) Update(ctx context.Context, a *scheduling.AutoSchedule) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE daily_auto_schedules SET
			post_id=$2, status=$3, executed_at=$4, error_message=$5
		WHERE id = $1`,
		a.ID(), a.PostID(), a.Status(), a.ExecutedAt(), a.ErrorMessage(),
	)
	return classifyErr(err, scheduling.ErrNotFound)
}

func (s *AutoScheduleStore) FindDueForDispatch(ctx context.Context, horizon time.Duration) ([]*scheduling.AutoSchedule, error) {
	rows, err := s.db.QueryContext(ctx, autoScheduleSelect+`
		WHERE status = $1 AND scheduled_time <= $2
		ORDER BY scheduled_time`, scheduling.StatusApproved, time.Now().Add(horizon))
	if err != nil {
		return nil, classifyErr(err, scheduling.ErrNotFound)
	}
	defer rows.Close()
	return scanAutoSchedules(rows)
}

func (s *AutoScheduleStore) FindExpiringUnreviewed(ctx context.Context, horizon time.Duration) ([]*scheduling.AutoSchedule, error) {
	rows, err := s.db.QueryContext(ctx, autoScheduleSelect+`
		WHERE status = $1 AND scheduled_time <= $2
		ORDER BY scheduled_time`, scheduling.StatusGenerated, time.Now().Add(horizon))
	if err != nil {
		return nil, classifyErr(err, scheduling.ErrNotFound)
	}
	defer rows.Close()
	return scanAutoSchedules(rows)
}

func (s *AutoScheduleStore) ListRecent(ctx context.Context, limit int) ([]*scheduling.AutoSchedule, error) {
	rows, err := s.db.QueryContext(ctx, autoScheduleSelect+`
		ORDER BY schedule_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, classifyErr(err, scheduling.ErrNotFound)
	}
	defer rows.Close()
	return scanAutoSchedules(rows)
}

const autoScheduleSelect = `
	SELECT id, schedule_date, post_id, scheduled_time, selected_time_slot_id,
	       selected_template_id, ucb_score, selection_reason, status, executed_at, error_message
	FROM daily_auto_schedules`

func scanAutoSchedule(row rowScanner) (*scheduling.AutoSchedule, error) {
	var (
		id, timeSlotID, templateID uuid.UUID
		scheduleDate, scheduledTime time.Time
		postID                      *uuid.UUID
		ucbScore                    float64
		reason                      string
		status                      scheduling.Status
		executedAt                  *time.Time
		errorMessage                string
	)
	err := row.Scan(&id, &scheduleDate, &postID, &scheduledTime, &timeSlotID,
		&templateID, &ucbScore, &reason, &status, &executedAt, &errorMessage)
	if err != nil {
		return nil, classifyErr(err, scheduling.ErrNotFound)
	}
	return scheduling.Reconstruct(id, scheduleDate, scheduledTime, postID, timeSlotID, templateID,
		ucbScore, reason, status, executedAt, errorMessage), nil
}

func scanAutoSchedules(rows *sql.Rows) ([]*scheduling.AutoSchedule, error) {
	var out []*scheduling.AutoSchedule
	for rows.Next() {
		a, err := scanAutoSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
