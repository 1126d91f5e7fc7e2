// path: internal/domain/timeslot/repository.go
package timeslot

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists TimeSlot rows.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error)
	FindEligible(ctx context.Context, dayOfWeek int) ([]*TimeSlot, error)
	List(ctx context.Context) ([]*TimeSlot, error)
	Create(ctx context.Context, t *TimeSlot) error
	Update(ctx context.Context, t *TimeSlot) error
	Delete(ctx context.Context, id uuid.UUID) error
}
