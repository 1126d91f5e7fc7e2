// path: internal/store/social_store.go
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/domain/social"
)

// SocialStore implements social.Repository over Postgres.
type SocialStore struct {
	db *sql.DB
}

// NewSocialStore builds a SocialStore.
func NewSocialStore(db *sql.DB) *SocialStore {
	return &SocialStore{db: db}
}

func (s *SocialStore) FindAccountByID(ctx context.Context, id uuid.UUID) (*social.Account, error) {
	row := s.db.QueryRowContext(ctx, accountSelect+` WHERE id = $1`, id)
	return scanAccount(row)
}

func (s *SocialStore) FindDefaultActiveAccount(ctx context.Context) (*social.Account, error) {
	row := s.db.QueryRowContext(ctx, accountSelect+`
		WHERE is_default = true AND status = $1 LIMIT 1`, social.AccountStatusActive)
	return scanAccount(row)
}

func (s *SocialStore) CreateAccount(ctx context.Context, a *social.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO threads_accounts (id, user_id, username, external_account_id, status, is_default, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID(), a.UserID(), a.Username(), a.ExternalAccountID(), a.Status(), a.IsDefault(), a.CreatedAt(), a.UpdatedAt(),
	)
	return classifyErr(err, social.ErrAccountNotFound)
}

func (s *SocialStore) UpdateAccount(ctx context.Context, a *social.Account) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE threads_accounts SET username=$2, status=$3, is_default=$4, updated_at=$5
		WHERE id = $1`, a.ID(), a.Username(), a.Status(), a.IsDefault(), a.UpdatedAt())
	return classifyErr(err, social.ErrAccountNotFound)
}

func (s *SocialStore) FindAuthByAccountID(ctx context.Context, accountID uuid.UUID) (*social.Auth, error) {
	row := s.db.QueryRowContext(ctx, authSelect+` WHERE a.account_id = $1`, accountID)
	return scanAuth(row)
}

func (s *SocialStore) UpsertAuth(ctx context.Context, a *social.Auth) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO threads_auths (account_id, access_token, expires_at, last_refreshed_at, status)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (account_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			expires_at = EXCLUDED.expires_at,
			last_refreshed_at = EXCLUDED.last_refreshed_at,
			status = EXCLUDED.status`,
		a.AccountID(), a.EncryptedToken(), a.ExpiresAt(), a.LastRefreshedAt(), a.Status(),
	)
	return classifyErr(err, social.ErrAuthNotFound)
}

// FindAuthsNeedingRefresh implements the TokenLifecycle scan predicate
// (spec §4.J) directly in SQL: account ACTIVE, auth OK, expiring within 7
// days, and not refreshed within the last 24h.
func (s *SocialStore) FindAuthsNeedingRefresh(ctx context.Context) ([]*social.Auth, error) {
	now := time.Now().UTC()
	rows, err := s.db.QueryContext(ctx, authSelect+`
		JOIN threads_accounts acc ON acc.id = a.account_id
		WHERE acc.status = $1 AND a.status = $2
		AND a.expires_at < $3
		AND (a.last_refreshed_at IS NULL OR a.last_refreshed_at < $4)`,
		social.AccountStatusActive, social.AuthStatusOK,
		now.Add(7*24*time.Hour), now.Add(-24*time.Hour))
	if err != nil {
		return nil, classifyErr(err, social.ErrAuthNotFound)
	}
	defer rows.Close()

	var out []*social.Auth
	for rows.Next() {
		a, err := scanAuthRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const accountSelect = `
	SELECT id, user_id, username, external_account_id, status, is_default, created_at, updated_at
	FROM threads_accounts`

func scanAccount(row rowScanner) (*social.Account, error) {
	var (
		id, userID        uuid.UUID
		username, extID   string
		status            social.AccountStatus
		isDefault         bool
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &userID, &username, &extID, &status, &isDefault, &createdAt, &updatedAt); err != nil {
		return nil, classifyErr(err, social.ErrAccountNotFound)
	}
	return social.Reconstruct(id, userID, username, extID, status, isDefault, createdAt, updatedAt), nil
}

// authSelect aliases threads_auths as "a" so FindAuthsNeedingRefresh can
// append its own join against threads_accounts without re-aliasing.
const authSelect = `
	SELECT a.account_id, a.access_token, a.expires_at, a.last_refreshed_at, a.status
	FROM threads_auths a `

func scanAuth(row rowScanner) (*social.Auth, error) {
	return scanAuthRow(row)
}

func scanAuthRow(row rowScanner) (*social.Auth, error) {
	var (
		accountID       uuid.UUID
		accessToken     string
		expiresAt       time.Time
		lastRefreshedAt *time.Time
		status          social.AuthStatus
	)
	if err := row.Scan(&accountID, &accessToken, &expiresAt, &lastRefreshedAt, &status); err != nil {
		return nil, classifyErr(err, social.ErrAuthNotFound)
	}
	return social.ReconstructAuth(accountID, accessToken, expiresAt, lastRefreshedAt, status), nil
}
