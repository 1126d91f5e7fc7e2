// path: internal/domain/template/repository.go
package template

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists Template rows.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Template, error)
	FindEnabled(ctx context.Context) ([]*Template, error)
	List(ctx context.Context) ([]*Template, error)
	Create(ctx context.Context, t *Template) error
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id uuid.UUID) error

	// WithRowLock runs fn against the Template row locked for the duration
	// of a read-modify-write (spec §5: "template stat updates... use
	// row-level locks"), so concurrent InsightsSync sweeps cannot race on
	// totalUses/avgEngagementRate.
	WithRowLock(ctx context.Context, id uuid.UUID, fn func(t *Template) error) error
}
