// path: internal/application/insightssync/syncer.go
// Package insightssync implements InsightsSync (spec §4.M): the periodic
// sweep that pulls fresh engagement metrics for recently-posted content and
// folds them back into each post's template UCB aggregates.
package insightssync

import (
	"context"
	"time"

	"github.com/techappsUT/socialqueue-ucb/internal/apperr"
	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/insights"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/social"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/template"
	"github.com/techappsUT/socialqueue-ucb/internal/threads"
)

// SyncWindow and MinSyncInterval bound PostedNotSyncedSince's candidate
// selection: posts posted within the last 7 days and not synced in the
// last hour (spec §4.M).
const (
	SyncWindow      = 7 * 24 * time.Hour
	MinSyncInterval = time.Hour
)

// SocialClient is the subset of *threads.Client the syncer needs.
type SocialClient interface {
	FetchInsights(ctx context.Context, mediaID, token string) (*threads.Insights, error)
}

// TokenDecrypter is the subset of *threads.TokenEncryption the syncer needs
// to read a stored token.
type TokenDecrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// Syncer implements the InsightsSync sweep.
type Syncer struct {
	posts     post.Repository
	accounts  social.Repository
	insights  insights.Repository
	templates template.Repository
	social    SocialClient
	decrypter TokenDecrypter
	logger    common.Logger
}

// New builds a Syncer.
func New(posts post.Repository, accounts social.Repository, insightsRepo insights.Repository, templates template.Repository, socialClient SocialClient, decrypter TokenDecrypter, logger common.Logger) *Syncer {
	return &Syncer{
		posts:     posts,
		accounts:  accounts,
		insights:  insightsRepo,
		templates: templates,
		social:    socialClient,
		decrypter: decrypter,
		logger:    logger,
	}
}

// Sync runs one sweep and returns the number of posts successfully synced.
// A single post's failure is logged and skipped, never aborting the rest of
// the sweep (spec §4.M).
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	candidates, err := s.posts.PostedNotSyncedSince(ctx, SyncWindow, MinSyncInterval)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, pst := range candidates {
		if err := s.syncOne(ctx, pst); err != nil {
			s.logger.Error("insights sync failed for post", "postId", pst.ID(), "error", err.Error())
			continue
		}
		synced++
	}
	if synced > 0 {
		s.logger.Info("insights sync completed", "count", synced)
	}
	return synced, nil
}

func (s *Syncer) syncOne(ctx context.Context, pst *post.Post) error {
	token, err := s.resolveToken(ctx, pst)
	if err != nil {
		return err
	}

	fetched, err := s.social.FetchInsights(ctx, pst.MediaID(), token)
	if err != nil {
		return err
	}

	snapshot := &insights.PostInsights{
		PostID:       pst.ID(),
		Views:        int(fetched.Views),
		Likes:        int(fetched.Likes),
		Replies:      int(fetched.Replies),
		Reposts:      int(fetched.Reposts),
		LastSyncedAt: time.Now().UTC(),
	}
	if err := s.insights.Upsert(ctx, snapshot); err != nil {
		return err
	}

	if pst.TemplateID() == nil {
		return nil
	}
	rate := snapshot.EngagementRate()
	return s.templates.WithRowLock(ctx, *pst.TemplateID(), func(t *template.Template) error {
		t.RecordEngagement(rate)
		return nil
	})
}

func (s *Syncer) resolveToken(ctx context.Context, pst *post.Post) (string, error) {
	var account *social.Account
	var err error
	if pst.ThreadsAccountID() != nil {
		account, err = s.accounts.FindAccountByID(ctx, *pst.ThreadsAccountID())
	} else {
		account, err = s.accounts.FindDefaultActiveAccount(ctx)
	}
	if err != nil {
		return "", err
	}

	auth, err := s.accounts.FindAuthByAccountID(ctx, account.ID())
	if err != nil {
		return "", err
	}
	if auth.Status() != social.AuthStatusOK {
		return "", apperr.New(apperr.ClassAuth, "account token requires reauthorization")
	}
	token, err := s.decrypter.Decrypt(auth.EncryptedToken())
	if err != nil {
		return "", apperr.Wrap(apperr.ClassIntegrity, "decrypt stored token", err)
	}
	return token, nil
}
