// path: internal/application/publish/publisher.go
// Package publish implements the Publisher (spec §4.I): it reserves a post
// for exclusive publishing, resolves and decrypts the target account's
// token, calls SocialClient, and records the outcome on both the post and
// its tied DailyAutoSchedule (if any).
package publish

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/apperr"
	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/insights"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/scheduling"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/social"
	"github.com/techappsUT/socialqueue-ucb/internal/threads"
)

// PublishPayload is the jobqueue.QueuePublish job body.
type PublishPayload struct {
	PostID uuid.UUID `json:"postId"`
}

// SocialClient is the subset of *threads.Client the publisher needs.
type SocialClient interface {
	Publish(ctx context.Context, accountID, token, text string) (*threads.PublishResult, error)
}

// TokenDecrypter is the subset of *threads.TokenEncryption the publisher
// needs to read a stored token.
type TokenDecrypter interface {
	Decrypt(ciphertext string) (string, error)
}

// Publisher implements the publish handler.
type Publisher struct {
	posts         post.Repository
	accounts      social.Repository
	schedules     scheduling.AutoScheduleRepository
	insightsRepo  insights.Repository
	social        SocialClient
	decrypter     TokenDecrypter
	logger        common.Logger
}

// New builds a Publisher.
func New(posts post.Repository, accounts social.Repository, schedules scheduling.AutoScheduleRepository, insightsRepo insights.Repository, socialClient SocialClient, decrypter TokenDecrypter, logger common.Logger) *Publisher {
	return &Publisher{
		posts:        posts,
		accounts:     accounts,
		schedules:    schedules,
		insightsRepo: insightsRepo,
		social:       socialClient,
		decrypter:    decrypter,
		logger:       logger,
	}
}

// Publish runs the full publish handler for payload.PostID (spec §4.I).
func (p *Publisher) Publish(ctx context.Context, payload PublishPayload) error {
	claimed, err := p.posts.TryStartPublishing(ctx, payload.PostID)
	if err != nil {
		return err
	}
	if !claimed {
		// Stale duplicate: another worker already moved this post past
		// APPROVED. Dropping here is what makes the claim a mutex (spec
		// §5, Invariant 3), not an error condition.
		p.logger.Info("publish job dropped as stale duplicate", "postId", payload.PostID)
		return nil
	}

	pst, err := p.posts.FindByID(ctx, payload.PostID)
	if err != nil {
		return err
	}

	revision, err := p.posts.LatestRevision(ctx, pst.ID())
	if err != nil {
		return err
	}

	account, token, err := p.resolveAccount(ctx, pst)
	if err != nil {
		return p.fail(ctx, pst, "ACCOUNT_RESOLUTION_FAILED", err.Error())
	}

	result, pubErr := p.social.Publish(ctx, account.ExternalAccountID(), token, revision.Content())
	if pubErr != nil {
		return p.handlePublishFailure(ctx, pst, pubErr)
	}

	if err := pst.MarkPosted(result.Permalink, result.MediaID); err != nil {
		return err
	}
	if err := p.posts.Update(ctx, pst); err != nil {
		return err
	}
	p.logger.Info("post published", "postId", pst.ID(), "mediaId", result.MediaID)

	if pst.AutoScheduleID() != nil {
		if err := p.recordScheduleOutcome(ctx, *pst.AutoScheduleID(), true, ""); err != nil {
			return err
		}
	}

	if pst.IsAIGenerated() && pst.TemplateID() != nil && pst.AutoScheduleID() != nil {
		if err := p.writePerformanceLog(ctx, pst); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) resolveAccount(ctx context.Context, pst *post.Post) (*social.Account, string, error) {
	var account *social.Account
	var err error
	if pst.ThreadsAccountID() != nil {
		account, err = p.accounts.FindAccountByID(ctx, *pst.ThreadsAccountID())
	} else {
		account, err = p.accounts.FindDefaultActiveAccount(ctx)
	}
	if err != nil {
		return nil, "", err
	}
	if !account.IsActive() {
		return nil, "", apperr.New(apperr.ClassPrecondition, "resolved account is not active")
	}

	auth, err := p.accounts.FindAuthByAccountID(ctx, account.ID())
	if err != nil {
		return nil, "", err
	}
	if auth.Status() != social.AuthStatusOK {
		return nil, "", apperr.New(apperr.ClassAuth, "account token requires reauthorization")
	}
	token, err := p.decrypter.Decrypt(auth.EncryptedToken())
	if err != nil {
		return nil, "", apperr.Wrap(apperr.ClassIntegrity, "decrypt stored token", err)
	}
	return account, token, nil
}

// handlePublishFailure classifies the SocialClient error and transitions
// the post to FAILED or ACTION_REQUIRED per spec §4.I step 5.
func (p *Publisher) handlePublishFailure(ctx context.Context, pst *post.Post, pubErr error) error {
	code := "PUBLISH_FAILED"
	message := pubErr.Error()
	if cerr, ok := pubErr.(*threads.ClientError); ok {
		code = string(cerr.Code)
	}

	if code == "TOKEN_EXPIRED" {
		if err := pst.MarkActionRequired(message); err != nil {
			return err
		}
		if err := p.posts.Update(ctx, pst); err != nil {
			return err
		}
		p.logger.Warn("post publish requires reauthorization", "postId", pst.ID())
		if pst.AutoScheduleID() != nil {
			return p.recordScheduleOutcome(ctx, *pst.AutoScheduleID(), false, message)
		}
		return nil
	}

	return p.fail(ctx, pst, code, message)
}

func (p *Publisher) fail(ctx context.Context, pst *post.Post, code, message string) error {
	if err := pst.MarkFailed(code, message); err != nil {
		return err
	}
	if err := p.posts.Update(ctx, pst); err != nil {
		return err
	}
	p.logger.Error("post publish failed", "postId", pst.ID(), "code", code, "message", message)
	if pst.AutoScheduleID() != nil {
		return p.recordScheduleOutcome(ctx, *pst.AutoScheduleID(), false, message)
	}
	return nil
}

func (p *Publisher) recordScheduleOutcome(ctx context.Context, scheduleID uuid.UUID, success bool, errMessage string) error {
	sched, err := p.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if success {
		if err := sched.MarkPublished(); err != nil {
			return err
		}
	} else {
		if err := sched.MarkFailed(errMessage); err != nil {
			return err
		}
	}
	return p.schedules.Update(ctx, sched)
}

func (p *Publisher) writePerformanceLog(ctx context.Context, pst *post.Post) error {
	sched, err := p.schedules.FindByID(ctx, *pst.AutoScheduleID())
	if err != nil {
		return err
	}
	postedAt := time.Now().UTC()
	if pst.PostedAt() != nil {
		postedAt = *pst.PostedAt()
	}
	log := insights.NewPerformanceLog(pst.ID(), *pst.TemplateID(), sched.SelectedTimeSlotID(), postedAt, sched.UCBScore(), wasExploration(sched.SelectionReason()), sched.SelectionReason())
	return p.insightsRepo.CreatePerformanceLog(ctx, log)
}

// wasExploration recovers the UCBSelector's exploration/exploitation
// decision from the stored selectionReason text, since AutoSchedule
// persists only the explanatory string, not a separate boolean column
// (spec §4.L step 6).
func wasExploration(reason string) bool {
	return strings.Contains(strings.ToLower(reason), "exploration")
}
