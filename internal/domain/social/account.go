// path: internal/domain/social/account.go
// Package social implements the ThreadsAccount/ThreadsAuth aggregate:
// the single external social-publishing account this brand posts through.
package social

import (
	"time"

	"github.com/google/uuid"
)

// AccountStatus is the connection status of a ThreadsAccount.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusLocked AccountStatus = "LOCKED"
)

// Account is a connected Threads account capable of receiving publish jobs.
type Account struct {
	id                uuid.UUID
	userID            uuid.UUID
	username          string
	externalAccountID string
	status            AccountStatus
	isDefault         bool
	createdAt         time.Time
	updatedAt         time.Time
}

// NewAccount registers a Threads account discovered via OAuth.
func NewAccount(userID uuid.UUID, username, externalAccountID string, isDefault bool) (*Account, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if username == "" || externalAccountID == "" {
		return nil, ErrInvalidAccount
	}
	now := time.Now().UTC()
	return &Account{
		id:                uuid.New(),
		userID:            userID,
		username:          username,
		externalAccountID: externalAccountID,
		status:            AccountStatusActive,
		isDefault:         isDefault,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// Reconstruct recreates an Account from persistence.
func Reconstruct(id, userID uuid.UUID, username, externalAccountID string, status AccountStatus, isDefault bool, createdAt, updatedAt time.Time) *Account {
	return &Account{
		id:                id,
		userID:            userID,
		username:          username,
		externalAccountID: externalAccountID,
		status:            status,
		isDefault:         isDefault,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (a *Account) ID() uuid.UUID                { return a.id }
func (a *Account) UserID() uuid.UUID            { return a.userID }
func (a *Account) Username() string             { return a.username }
func (a *Account) ExternalAccountID() string    { return a.externalAccountID }
func (a *Account) Status() AccountStatus        { return a.status }
func (a *Account) IsDefault() bool              { return a.isDefault }
func (a *Account) CreatedAt() time.Time         { return a.createdAt }
func (a *Account) UpdatedAt() time.Time         { return a.updatedAt }

// Lock marks the account LOCKED — it stops being eligible as a publish
// target (e.g. after repeated PERMISSION_ERROR responses).
func (a *Account) Lock() {
	a.status = AccountStatusLocked
	a.updatedAt = time.Now().UTC()
}

// Unlock restores a LOCKED account to ACTIVE.
func (a *Account) Unlock() {
	a.status = AccountStatusActive
	a.updatedAt = time.Now().UTC()
}

// IsActive reports whether the account may be selected as a publish target.
func (a *Account) IsActive() bool {
	return a.status == AccountStatusActive
}

// AuthStatus is the health of an Account's stored token.
type AuthStatus string

const (
	AuthStatusOK             AuthStatus = "OK"
	AuthStatusExpired        AuthStatus = "EXPIRED"
	AuthStatusActionRequired AuthStatus = "ACTION_REQUIRED"
)

// Auth is the 1:1 token record for an Account. AccessToken is always the
// ciphertext produced by the encryption envelope (internal/threads); the
// plaintext never reaches this aggregate (spec Invariant 5).
type Auth struct {
	accountID        uuid.UUID
	accessToken      string
	expiresAt        time.Time
	lastRefreshedAt  *time.Time
	status           AuthStatus
}

// NewAuth records a freshly exchanged long-lived token.
func NewAuth(accountID uuid.UUID, encryptedToken string, expiresAt time.Time) (*Auth, error) {
	if accountID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if encryptedToken == "" {
		return nil, ErrInvalidToken
	}
	return &Auth{
		accountID:   accountID,
		accessToken: encryptedToken,
		expiresAt:   expiresAt,
		status:      AuthStatusOK,
	}, nil
}

// ReconstructAuth recreates an Auth from persistence.
func ReconstructAuth(accountID uuid.UUID, encryptedToken string, expiresAt time.Time, lastRefreshedAt *time.Time, status AuthStatus) *Auth {
	return &Auth{
		accountID:       accountID,
		accessToken:     encryptedToken,
		expiresAt:       expiresAt,
		lastRefreshedAt: lastRefreshedAt,
		status:          status,
	}
}

func (a *Auth) AccountID() uuid.UUID        { return a.accountID }
func (a *Auth) EncryptedToken() string      { return a.accessToken }
func (a *Auth) ExpiresAt() time.Time        { return a.expiresAt }
func (a *Auth) LastRefreshedAt() *time.Time { return a.lastRefreshedAt }
func (a *Auth) Status() AuthStatus          { return a.status }

// Refresh records the outcome of a successful SocialClient.refresh call.
func (a *Auth) Refresh(encryptedToken string, expiresAt time.Time) error {
	if encryptedToken == "" {
		return ErrInvalidToken
	}
	now := time.Now().UTC()
	a.accessToken = encryptedToken
	a.expiresAt = expiresAt
	a.lastRefreshedAt = &now
	a.status = AuthStatusOK
	return nil
}

// MarkActionRequired escalates the token after a failed refresh or a
// TOKEN_EXPIRED response from the Social API (spec §4.J, Testable
// Properties: at least one refresh attempt must precede this call).
func (a *Auth) MarkActionRequired() {
	a.status = AuthStatusActionRequired
}

// NeedsRefresh reports whether the token matches the TokenLifecycle scan
// predicate: expires within 7 days and was not refreshed in the last 24h
// (spec §4.J).
func (a *Auth) NeedsRefresh(now time.Time) bool {
	if a.status != AuthStatusOK {
		return false
	}
	if a.expiresAt.After(now.Add(7 * 24 * time.Hour)) {
		return false
	}
	if a.lastRefreshedAt != nil && now.Sub(*a.lastRefreshedAt) < 24*time.Hour {
		return false
	}
	return true
}

// IsRefreshEligible enforces the SocialClient.refresh precondition: at
// least 1 day of life remaining and not refreshed within the last 24h
// (spec §4.D).
func (a *Auth) IsRefreshEligible(now time.Time) bool {
	if a.expiresAt.Before(now.Add(24 * time.Hour)) {
		return false
	}
	if a.lastRefreshedAt != nil && now.Sub(*a.lastRefreshedAt) < 24*time.Hour {
		return false
	}
	return true
}
