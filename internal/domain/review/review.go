// path: internal/domain/review/review.go
// Package review implements the ReviewRequest aggregate: a one-shot token
// bound to a specific post, revision and reviewer (spec §3, Invariant 4).
package review

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusUsed    Status = "USED"
	StatusExpired Status = "EXPIRED"
)

// DefaultTTL is the review window before an outstanding request expires
// (spec §4.H default).
const DefaultTTL = 24 * time.Hour

// Request is a one-shot review credential. Token is never logged or
// returned once consumed; the webhook surface treats it as opaque.
type Request struct {
	id            uuid.UUID
	postID        uuid.UUID
	revisionID    uuid.UUID
	token         string
	reviewerID    uuid.UUID
	status        Status
	expiresAt     time.Time
	editedContent *string
	createdAt     time.Time
	usedAt        *time.Time
}

// New issues a PENDING review request with a fresh random token. Token
// generation itself lives in the caller (ReviewCoordinator), which sources
// it from crypto/rand so the aggregate never has to reason about entropy.
func New(postID, revisionID, reviewerID uuid.UUID, token string, ttl time.Duration) (*Request, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	now := time.Now().UTC()
	return &Request{
		id:         uuid.New(),
		postID:     postID,
		revisionID: revisionID,
		token:      token,
		reviewerID: reviewerID,
		status:     StatusPending,
		expiresAt:  now.Add(ttl),
		createdAt:  now,
	}, nil
}

// Reconstruct recreates a Request from persistence.
func Reconstruct(id, postID, revisionID uuid.UUID, token string, reviewerID uuid.UUID, status Status, expiresAt time.Time, editedContent *string, createdAt time.Time, usedAt *time.Time) *Request {
	return &Request{
		id:            id,
		postID:        postID,
		revisionID:    revisionID,
		token:         token,
		reviewerID:    reviewerID,
		status:        status,
		expiresAt:     expiresAt,
		editedContent: editedContent,
		createdAt:     createdAt,
		usedAt:        usedAt,
	}
}

func (r *Request) ID() uuid.UUID            { return r.id }
func (r *Request) PostID() uuid.UUID        { return r.postID }
func (r *Request) RevisionID() uuid.UUID    { return r.revisionID }
func (r *Request) Token() string            { return r.token }
func (r *Request) ReviewerID() uuid.UUID    { return r.reviewerID }
func (r *Request) Status() Status           { return r.status }
func (r *Request) ExpiresAt() time.Time     { return r.expiresAt }
func (r *Request) EditedContent() *string   { return r.editedContent }
func (r *Request) CreatedAt() time.Time     { return r.createdAt }
func (r *Request) UsedAt() *time.Time       { return r.usedAt }

// IsExpired reports whether the request has passed its TTL without being
// consumed.
func (r *Request) IsExpired() bool {
	return r.status == StatusPending && time.Now().After(r.expiresAt)
}

// Validate checks an inbound action against the single-use/expiry/reviewer
// match rules (spec §4.H) without mutating state, so callers can surface a
// PreconditionError distinctly from the state-changing Use().
func (r *Request) Validate(token string, actingUserID uuid.UUID) error {
	if r.token != token {
		return ErrTokenMismatch
	}
	if r.status != StatusPending {
		return ErrAlreadyUsed
	}
	if time.Now().After(r.expiresAt) {
		return ErrTokenExpired
	}
	if r.reviewerID != actingUserID {
		return ErrReviewerMismatch
	}
	return nil
}

// Use atomically marks the request USED for an approve/regenerate/skip
// action. Callers must still serialize this at the store layer (a
// conditional UPDATE ... WHERE status = 'PENDING') to honor Invariant 4
// under concurrent delivery of the same webhook.
func (r *Request) Use(token string, actingUserID uuid.UUID) error {
	if err := r.Validate(token, actingUserID); err != nil {
		return err
	}
	now := time.Now().UTC()
	r.status = StatusUsed
	r.usedAt = &now
	return nil
}

// Expire marks a stale PENDING request EXPIRED (Scheduler tick).
func (r *Request) Expire() error {
	if r.status != StatusPending {
		return ErrAlreadyUsed
	}
	r.status = StatusExpired
	return nil
}

// CaptureEditedContent records free-form chat text as the pending edit
// payload for the edit-then-publish flow (spec §4.H.1). Only valid while
// the request is still outstanding.
func (r *Request) CaptureEditedContent(text string) error {
	if r.status != StatusPending {
		return ErrAlreadyUsed
	}
	r.editedContent = &text
	return nil
}
