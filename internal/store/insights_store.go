// path: internal/store/insights_store.go
package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/techappsUT/socialqueue-ucb/internal/domain/insights"
)

// InsightsStore implements insights.Repository over Postgres.
type InsightsStore struct {
	db *sql.DB
}

// NewInsightsStore builds an InsightsStore.
func NewInsightsStore(db *sql.DB) *InsightsStore {
	return &InsightsStore{db: db}
}

func (s *InsightsStore) Upsert(ctx context.Context, p *insights.PostInsights) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO post_insights (post_id, views, likes, replies, reposts, last_synced_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (post_id) DO UPDATE SET
			views = EXCLUDED.views,
			likes = EXCLUDED.likes,
			replies = EXCLUDED.replies,
			reposts = EXCLUDED.reposts,
			last_synced_at = EXCLUDED.last_synced_at`,
		p.PostID, p.Views, p.Likes, p.Replies, p.Reposts, p.LastSyncedAt,
	)
	return classifyErr(err, insights.ErrNotFound)
}

func (s *InsightsStore) FindByPostID(ctx context.Context, postID uuid.UUID) (*insights.PostInsights, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT post_id, views, likes, replies, reposts, last_synced_at
		FROM post_insights WHERE post_id = $1`, postID)

	p := &insights.PostInsights{}
	err := row.Scan(&p.PostID, &p.Views, &p.Likes, &p.Replies, &p.Reposts, &p.LastSyncedAt)
	if err != nil {
		return nil, classifyErr(err, insights.ErrNotFound)
	}
	return p, nil
}

func (s *InsightsStore) CreatePerformanceLog(ctx context.Context, l *insights.PerformanceLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO performance_logs (
			post_id, template_id, time_slot_id, posted_at, posted_hour, posted_minute,
			day_of_week, ucb_score, was_exploration, selection_reason
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		l.PostID, l.TemplateID, l.TimeSlotID, l.PostedAt, l.PostedHour, l.PostedMinute,
		l.DayOfWeek, l.UCBScore, l.WasExploration, l.SelectionReason,
	)
	return classifyErr(err, insights.ErrNotFound)
}

// SlotStats aggregates total uses and mean engagement per time slot from
// the performance_logs/post_insights join, feeding the UCBSelector's
// slot-level pass (spec §4.L step 4).
func (s *InsightsStore) SlotStats(ctx context.Context, timeSlotIDs []uuid.UUID) (map[uuid.UUID]insights.SlotStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pl.time_slot_id,
		       count(*) AS total_uses,
		       coalesce(avg(
		           (pi.likes + pi.replies + pi.reposts)::float8 / greatest(pi.views, 1)
		       ), 0) AS avg_engagement
		FROM performance_logs pl
		LEFT JOIN post_insights pi ON pi.post_id = pl.post_id
		WHERE pl.time_slot_id = ANY($1)
		GROUP BY pl.time_slot_id`, pq.Array(timeSlotIDs))
	if err != nil {
		return nil, classifyErr(err, insights.ErrNotFound)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]insights.SlotStat)
	for rows.Next() {
		var stat insights.SlotStat
		if err := rows.Scan(&stat.TimeSlotID, &stat.TotalUses, &stat.AvgEngagement); err != nil {
			return nil, classifyErr(err, insights.ErrNotFound)
		}
		out[stat.TimeSlotID] = stat
	}
	return out, rows.Err()
}
