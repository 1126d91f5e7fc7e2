// path: internal/domain/insights/insights.go
// Package insights implements PostInsights (per-post engagement snapshot)
// and PerformanceLog (the UCB feedback audit trail).
package insights

import (
	"time"

	"github.com/google/uuid"
)

// PostInsights is the 1:1 engagement snapshot synced from SocialClient.
type PostInsights struct {
	PostID       uuid.UUID
	Views        int
	Likes        int
	Replies      int
	Reposts      int
	LastSyncedAt time.Time
}

// EngagementRate computes (likes + replies + reposts) / max(views, 1)
// (glossary definition).
func (p *PostInsights) EngagementRate() float64 {
	views := p.Views
	if views < 1 {
		views = 1
	}
	return float64(p.Likes+p.Replies+p.Reposts) / float64(views)
}

// PerformanceLog is an append-only audit row written only for posts
// authored through the UCB path (spec Invariant 6).
type PerformanceLog struct {
	PostID          uuid.UUID
	TemplateID      uuid.UUID
	TimeSlotID      uuid.UUID
	PostedAt        time.Time
	PostedHour      int
	PostedMinute    int
	DayOfWeek       int
	UCBScore        float64
	WasExploration  bool
	SelectionReason string
}

// NewPerformanceLog derives the hour/minute/day-of-week fields from
// postedAt in the scheduling timezone (Asia/Taipei), keeping postedAt's own
// location when the zone database is unavailable.
func NewPerformanceLog(postID, templateID, timeSlotID uuid.UUID, postedAt time.Time, ucbScore float64, wasExploration bool, reason string) *PerformanceLog {
	local := postedAt
	if loc, err := time.LoadLocation("Asia/Taipei"); err == nil {
		local = postedAt.In(loc)
	}
	return &PerformanceLog{
		PostID:          postID,
		TemplateID:      templateID,
		TimeSlotID:      timeSlotID,
		PostedAt:        postedAt,
		PostedHour:      local.Hour(),
		PostedMinute:    local.Minute(),
		DayOfWeek:       isoWeekday(local),
		UCBScore:        ucbScore,
		WasExploration:  wasExploration,
		SelectionReason: reason,
	}
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
