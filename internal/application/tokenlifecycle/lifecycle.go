// path: internal/application/tokenlifecycle/lifecycle.go
// Package tokenlifecycle implements TokenLifecycle (spec §4.J): the 6h scan
// for tokens approaching expiry, dispatched as tokenRefresh jobs, and the
// refresh handler that rolls a token forward or escalates to an admin alert.
package tokenlifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/social"
)

// RefreshPayload is the jobqueue.QueueTokenRefresh job body.
type RefreshPayload struct {
	AccountID uuid.UUID `json:"accountId"`
}

// SocialClient is the subset of *threads.Client the refresh handler needs.
type SocialClient interface {
	Refresh(ctx context.Context, longToken string) (refreshed string, expiresAt time.Time, err error)
}

// TokenCipher is the subset of *threads.TokenEncryption the handler needs to
// round-trip a stored token.
type TokenCipher interface {
	Decrypt(ciphertext string) (string, error)
	Encrypt(plaintext string) (string, error)
}

// ChatNotifier is the subset of *chat.Notifier the handler needs to alert
// the admin when a refresh can't be completed automatically.
type ChatNotifier interface {
	SendText(ctx context.Context, userID, text string) error
}

// Enqueuer hands a RefreshPayload to the job queue; declared here rather
// than importing internal/jobqueue directly so this package stays testable
// without a Redis dependency.
type Enqueuer interface {
	EnqueueTokenRefresh(ctx context.Context, payload RefreshPayload) error
}

// Lifecycle implements the scan and the per-account refresh handler.
type Lifecycle struct {
	social      social.Repository
	client      SocialClient
	cipher      TokenCipher
	notifier    ChatNotifier
	enqueuer    Enqueuer
	logger      common.Logger
	adminUserID string
}

// New builds a Lifecycle.
func New(socialRepo social.Repository, client SocialClient, cipher TokenCipher, notifier ChatNotifier, enqueuer Enqueuer, logger common.Logger, adminUserID string) *Lifecycle {
	return &Lifecycle{
		social:      socialRepo,
		client:      client,
		cipher:      cipher,
		notifier:    notifier,
		enqueuer:    enqueuer,
		logger:      logger,
		adminUserID: adminUserID,
	}
}

// Scan runs the 6h sweep (spec §4.J): every Auth matching the refresh
// predicate is enqueued as its own tokenRefresh job so a slow or failing
// provider call for one account never blocks another's.
func (l *Lifecycle) Scan(ctx context.Context) (int, error) {
	due, err := l.social.FindAuthsNeedingRefresh(ctx)
	if err != nil {
		return 0, err
	}
	enqueued := 0
	for _, auth := range due {
		if err := l.enqueuer.EnqueueTokenRefresh(ctx, RefreshPayload{AccountID: auth.AccountID()}); err != nil {
			l.logger.Error("failed to enqueue token refresh", "accountId", auth.AccountID(), "error", err.Error())
			continue
		}
		enqueued++
	}
	l.logger.Info("token lifecycle scan complete", "due", len(due), "enqueued", enqueued)
	return enqueued, nil
}

// Refresh handles one tokenRefresh job (spec §4.J): decrypt, call
// SocialClient.refresh, re-encrypt and persist on success, or escalate the
// account to ACTION_REQUIRED and alert the admin on failure.
func (l *Lifecycle) Refresh(ctx context.Context, payload RefreshPayload) error {
	auth, err := l.social.FindAuthByAccountID(ctx, payload.AccountID)
	if err != nil {
		return err
	}

	plaintext, err := l.cipher.Decrypt(auth.EncryptedToken())
	if err != nil {
		return err
	}

	refreshed, expiresAt, refreshErr := l.client.Refresh(ctx, plaintext)
	if refreshErr != nil {
		auth.MarkActionRequired()
		if err := l.social.UpsertAuth(ctx, auth); err != nil {
			return err
		}
		l.logger.Warn("token refresh failed, escalated to action required", "accountId", payload.AccountID, "error", refreshErr.Error())
		return l.notifier.SendText(ctx, l.adminUserID, fmt.Sprintf("Threads account %s needs reauthorization: %s", payload.AccountID, refreshErr.Error()))
	}

	ciphertext, err := l.cipher.Encrypt(refreshed)
	if err != nil {
		return err
	}
	if err := auth.Refresh(ciphertext, expiresAt); err != nil {
		return err
	}
	if err := l.social.UpsertAuth(ctx, auth); err != nil {
		return err
	}
	l.logger.Info("token refreshed", "accountId", payload.AccountID)
	return nil
}
