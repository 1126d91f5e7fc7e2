// path: internal/domain/insights/repository.go
package insights

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists PostInsights and PerformanceLog rows.
type Repository interface {
	Upsert(ctx context.Context, p *PostInsights) error
	FindByPostID(ctx context.Context, postID uuid.UUID) (*PostInsights, error)

	CreatePerformanceLog(ctx context.Context, l *PerformanceLog) error
	// SlotStats aggregates mean engagement and sample count per time slot
	// for the UCBSelector's slot-level pass (spec §4.L step 4).
	SlotStats(ctx context.Context, timeSlotIDs []uuid.UUID) (map[uuid.UUID]SlotStat, error)
}

// SlotStat is the aggregate UCBSelector needs per eligible time slot.
type SlotStat struct {
	TimeSlotID     uuid.UUID
	TotalUses      int
	AvgEngagement  float64
}
