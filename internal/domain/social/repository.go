// path: internal/domain/social/repository.go
package social

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists ThreadsAccount and ThreadsAuth rows.
type Repository interface {
	FindAccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindDefaultActiveAccount(ctx context.Context) (*Account, error)
	CreateAccount(ctx context.Context, a *Account) error
	UpdateAccount(ctx context.Context, a *Account) error

	FindAuthByAccountID(ctx context.Context, accountID uuid.UUID) (*Auth, error)
	UpsertAuth(ctx context.Context, a *Auth) error

	// FindAuthsNeedingRefresh returns Auth rows matching the TokenLifecycle
	// scan predicate (spec §4.J), evaluated at the store layer via SQL so
	// the sweep can run against arbitrarily large account counts.
	FindAuthsNeedingRefresh(ctx context.Context) ([]*Auth, error)
}
