// path: internal/domain/review/repository.go
package review

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists ReviewRequest rows.
type Repository interface {
	Create(ctx context.Context, r *Request) error

	// TryUse performs the single-use transition as one conditional UPDATE
	// (WHERE status = 'PENDING' AND token = ?) so concurrent webhook
	// redeliveries of the same action only ever let one caller proceed
	// (spec Invariant 4).
	TryUse(ctx context.Context, token string, actingUserID uuid.UUID) (*Request, error)

	FindByToken(ctx context.Context, token string) (*Request, error)
	FindActiveByReviewer(ctx context.Context, reviewerID uuid.UUID) (*Request, error)
	FindExpiring(ctx context.Context, before time.Time) ([]*Request, error)
	Update(ctx context.Context, r *Request) error

	// CountPendingByReviewer is used by the daily review-reminder tick.
	CountPendingByReviewer(ctx context.Context) (map[uuid.UUID]int, error)
}
