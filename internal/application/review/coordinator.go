// path: internal/application/review/coordinator.go
// Package review implements the ReviewCoordinator (spec §4.H): it issues a
// one-shot review token for a freshly generated revision, pushes it to the
// human reviewer over chat, and resolves the approve/regenerate/skip action
// that comes back through the webhook.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/apperr"
	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/auth"
	"github.com/techappsUT/socialqueue-ucb/internal/chat"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/review"
)

// Action identifies the outcome requested for a review token.
type Action string

const (
	ActionApprove    Action = "approve"
	ActionRegenerate Action = "regenerate"
	ActionSkip       Action = "skip"
)

// tokenLength is the byte length fed to auth.GenerateSecureToken, yielding
// a 128-bit token once base64 encoded (spec §4.H).
const tokenLength = 16

// Regenerator dispatches a rejected post back through the content pipeline.
// Implemented in wiring by jobqueue.Dispatcher.Regenerate, which enqueues a
// job on jobqueue.QueueGenerate.
type Regenerator interface {
	Regenerate(ctx context.Context, postID uuid.UUID, prompt string) error
}

// ChatNotifier is the subset of *chat.Notifier the coordinator needs.
type ChatNotifier interface {
	SendReviewCard(ctx context.Context, userID string, card chat.ReviewCard) error
	SendText(ctx context.Context, userID, text string) error
}

// Coordinator implements the ReviewCoordinator.
type Coordinator struct {
	posts       post.Repository
	reviews     review.Repository
	notifier    ChatNotifier
	regenerator Regenerator
	logger      common.Logger
	adminUserID string
	reviewerID  uuid.UUID
}

// New builds a Coordinator. adminUserID is the chat-platform user ID of the
// sole human reviewer (spec §3: ChatConfig.adminUserId); its deterministic
// UUID projection becomes ReviewRequest.reviewerID.
func New(posts post.Repository, reviews review.Repository, notifier ChatNotifier, regenerator Regenerator, logger common.Logger, adminUserID string) *Coordinator {
	return &Coordinator{
		posts:       posts,
		reviews:     reviews,
		notifier:    notifier,
		regenerator: regenerator,
		logger:      logger,
		adminUserID: adminUserID,
		reviewerID:  ReviewerIDFor(adminUserID),
	}
}

// ReviewerIDFor deterministically projects a chat-platform user ID onto the
// uuid.UUID space ReviewRequest.reviewerID lives in, so the same human
// reviewer always resolves to the same stored ID across restarts.
func ReviewerIDFor(chatUserID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("chat-reviewer:"+chatUserID))
}

// StartReview issues a fresh token for p/r and dispatches the review card.
func (c *Coordinator) StartReview(ctx context.Context, p *post.Post, r *post.Revision) error {
	token, err := auth.GenerateSecureToken(tokenLength)
	if err != nil {
		return apperr.Wrap(apperr.ClassTransient, "generate review token", err)
	}

	req, err := review.New(p.ID(), r.ID(), c.reviewerID, token, review.DefaultTTL)
	if err != nil {
		return err
	}
	if err := c.reviews.Create(ctx, req); err != nil {
		return err
	}

	card := chat.ReviewCard{
		Content:         r.Content(),
		ApproveToken:    token,
		RegenerateToken: token,
		SkipToken:       token,
		ScheduledFor:    p.ScheduledFor(),
	}
	if err := c.notifier.SendReviewCard(ctx, c.adminUserID, card); err != nil {
		c.logger.Error("failed to send review card", "postId", p.ID(), "error", err.Error())
		return err
	}
	c.logger.Info("review request dispatched", "postId", p.ID(), "revisionId", r.ID())
	return nil
}

// HandleAction resolves an approve/regenerate/skip token delivered through
// the chat webhook's postback data (spec §4.H). actingUserID must match the
// request's assigned reviewer (Request.Validate enforces this).
func (c *Coordinator) HandleAction(ctx context.Context, token string, action Action, actingUserID uuid.UUID) error {
	req, err := c.reviews.TryUse(ctx, token, actingUserID)
	if err != nil {
		return err
	}

	p, err := c.posts.FindByID(ctx, req.PostID())
	if err != nil {
		return err
	}

	switch action {
	case ActionApprove:
		return c.approve(ctx, p, req)
	case ActionRegenerate:
		return c.regenerate(ctx, p)
	case ActionSkip:
		if err := p.Skip(); err != nil {
			return err
		}
		return c.posts.Update(ctx, p)
	default:
		return apperr.New(apperr.ClassValidation, fmt.Sprintf("unknown review action %q", action))
	}
}

// approve applies an edit-then-publish override when the reviewer sent
// free-form chat text before approving (spec §4.H.1), then transitions the
// post PENDING_REVIEW -> APPROVED.
func (c *Coordinator) approve(ctx context.Context, p *post.Post, req *review.Request) error {
	if req.EditedContent() != nil {
		if err := post.ValidateContent(*req.EditedContent()); err != nil {
			return err
		}
		nextNo, err := c.posts.NextRevisionNo(ctx, p.ID())
		if err != nil {
			return err
		}
		edited, err := post.NewRevision(p.ID(), nextNo, *req.EditedContent(), post.EngineManual, 0)
		if err != nil {
			return err
		}
		if err := c.posts.CreateRevision(ctx, edited); err != nil {
			return err
		}
	}
	if err := p.Approve(); err != nil {
		return err
	}
	return c.posts.Update(ctx, p)
}

func (c *Coordinator) regenerate(ctx context.Context, p *post.Post) error {
	latest, err := c.posts.LatestRevision(ctx, p.ID())
	if err != nil {
		return err
	}
	if err := p.RequeueForGeneration(); err != nil {
		return err
	}
	if err := c.posts.Update(ctx, p); err != nil {
		return err
	}
	return c.regenerator.Regenerate(ctx, p.ID(), regeneratePrompt(p, latest))
}

// regeneratePrompt rebuilds a prompt from the post's own context, since the
// original operator-supplied prompt is not retained past the first attempt.
func regeneratePrompt(p *post.Post, latest *post.Revision) string {
	if p.Context() != "" {
		return p.Context()
	}
	return latest.Content()
}

// CaptureEdit records free-form chat text as the pending edit for
// actingUserID's outstanding review request (spec §4.H.1).
func (c *Coordinator) CaptureEdit(ctx context.Context, actingUserID uuid.UUID, text string) error {
	req, err := c.reviews.FindActiveByReviewer(ctx, actingUserID)
	if err != nil {
		return err
	}
	if err := req.CaptureEditedContent(text); err != nil {
		return err
	}
	return c.reviews.Update(ctx, req)
}

// ExpireStale marks every PENDING request older than `before` as EXPIRED
// (spec §4.K 5-minute sweep). The tied post is left untouched, both here and
// by the Scheduler tick that calls this.
func (c *Coordinator) ExpireStale(ctx context.Context, before time.Time) (int, error) {
	stale, err := c.reviews.FindExpiring(ctx, before)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, req := range stale {
		if err := req.Expire(); err != nil {
			continue
		}
		if err := c.reviews.Update(ctx, req); err != nil {
			c.logger.Error("failed to expire stale review request", "requestId", req.ID(), "error", err.Error())
			continue
		}
		expired++
	}
	return expired, nil
}
