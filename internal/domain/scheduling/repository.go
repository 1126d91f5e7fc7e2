// path: internal/domain/scheduling/repository.go
package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConfigRepository persists the SchedulerConfig singleton.
type ConfigRepository interface {
	Get(ctx context.Context) (*Config, error)
	Save(ctx context.Context, c *Config) error
}

// AutoScheduleRepository persists DailyAutoSchedule rows.
type AutoScheduleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AutoSchedule, error)
	FindByDate(ctx context.Context, date time.Time) (*AutoSchedule, error)
	FindNonTerminalByDate(ctx context.Context, date time.Time) (*AutoSchedule, error)

	// Create enforces Invariant 7 (at most one non-terminal schedule per
	// scheduleDate) via a unique partial index at the store layer.
	Create(ctx context.Context, s *AutoSchedule) error
	Update(ctx context.Context, s *AutoSchedule) error

	FindDueForDispatch(ctx context.Context, horizon time.Duration) ([]*AutoSchedule, error)
	FindExpiringUnreviewed(ctx context.Context, horizon time.Duration) ([]*AutoSchedule, error)
	ListRecent(ctx context.Context, limit int) ([]*AutoSchedule, error)
}
