// path: internal/domain/post/post.go
package post

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxContentLength is the hard content ceiling enforced at every transition
// that sets or replaces a revision's text (spec §4.G.2b).
const MaxContentLength = 500

// Status is the lifecycle state of a Post.
type Status string

const (
	StatusDraft          Status = "DRAFT"
	StatusGenerating     Status = "GENERATING"
	StatusPendingReview  Status = "PENDING_REVIEW"
	StatusApproved       Status = "APPROVED"
	StatusPublishing     Status = "PUBLISHING"
	StatusPosted         Status = "POSTED"
	StatusFailed         Status = "FAILED"
	StatusActionRequired Status = "ACTION_REQUIRED"
	StatusSkipped        Status = "SKIPPED"
)

// Post is the aggregate root for the content pipeline state machine.
type Post struct {
	id               uuid.UUID
	status           Status
	createdBy        uuid.UUID
	templateID       *uuid.UUID
	threadsAccountID *uuid.UUID
	autoScheduleID   *uuid.UUID
	postedAt         *time.Time
	postURL          string
	mediaID          string
	lastErrorCode    string
	lastErrorMessage string
	isAIGenerated    bool
	tags             []string
	context          string
	scheduledFor     *time.Time
	createdAt        time.Time
	updatedAt        time.Time
}

// NewPost creates a draft post authored through the controller or the
// scheduler. autoScheduleID is nil for manual/controller-created posts.
func NewPost(createdBy uuid.UUID, isAIGenerated bool, context string, tags []string, autoScheduleID *uuid.UUID) (*Post, error) {
	if createdBy == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	now := time.Now().UTC()
	return &Post{
		id:             uuid.New(),
		status:         StatusDraft,
		createdBy:      createdBy,
		autoScheduleID: autoScheduleID,
		isAIGenerated:  isAIGenerated,
		tags:           append([]string{}, tags...),
		context:        context,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct recreates a Post from persistence without re-running
// construction invariants.
func Reconstruct(
	id uuid.UUID,
	status Status,
	createdBy uuid.UUID,
	templateID *uuid.UUID,
	threadsAccountID *uuid.UUID,
	autoScheduleID *uuid.UUID,
	postedAt *time.Time,
	postURL string,
	mediaID string,
	lastErrorCode string,
	lastErrorMessage string,
	isAIGenerated bool,
	tags []string,
	context string,
	scheduledFor *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) *Post {
	return &Post{
		id:               id,
		status:           status,
		createdBy:        createdBy,
		templateID:       templateID,
		threadsAccountID: threadsAccountID,
		autoScheduleID:   autoScheduleID,
		postedAt:         postedAt,
		postURL:          postURL,
		mediaID:          mediaID,
		lastErrorCode:    lastErrorCode,
		lastErrorMessage: lastErrorMessage,
		isAIGenerated:    isAIGenerated,
		tags:             tags,
		context:          context,
		scheduledFor:     scheduledFor,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// Getters

func (p *Post) ID() uuid.UUID                 { return p.id }
func (p *Post) Status() Status                { return p.status }
func (p *Post) CreatedBy() uuid.UUID          { return p.createdBy }
func (p *Post) TemplateID() *uuid.UUID        { return p.templateID }
func (p *Post) ThreadsAccountID() *uuid.UUID  { return p.threadsAccountID }
func (p *Post) AutoScheduleID() *uuid.UUID    { return p.autoScheduleID }
func (p *Post) PostedAt() *time.Time          { return p.postedAt }
func (p *Post) PostURL() string               { return p.postURL }
func (p *Post) MediaID() string               { return p.mediaID }
func (p *Post) LastErrorCode() string         { return p.lastErrorCode }
func (p *Post) LastErrorMessage() string      { return p.lastErrorMessage }
func (p *Post) IsAIGenerated() bool           { return p.isAIGenerated }
func (p *Post) Tags() []string                { return p.tags }
func (p *Post) Context() string               { return p.context }
func (p *Post) ScheduledFor() *time.Time      { return p.scheduledFor }
func (p *Post) CreatedAt() time.Time          { return p.createdAt }
func (p *Post) UpdatedAt() time.Time          { return p.updatedAt }

// Business logic methods. Each enforces the precondition on the current
// status before mutating; callers get a PreconditionError-class sentinel
// on mismatch (see errors.go).

// SetScheduledFor assigns a manual scheduled time. Rejected once the post
// is tied to a DailyAutoSchedule — the spec resolves that conflict in favor
// of the auto-schedule's own scheduledTime (see DESIGN.md open question).
func (p *Post) SetScheduledFor(t time.Time) error {
	if p.autoScheduleID != nil {
		return ErrScheduleConflict
	}
	if t.Before(time.Now()) {
		return ErrScheduleTimeInPast
	}
	p.scheduledFor = &t
	p.updatedAt = time.Now().UTC()
	return nil
}

// AssignTemplate attaches a template to the post (UCB path only).
func (p *Post) AssignTemplate(templateID uuid.UUID) {
	p.templateID = &templateID
	p.updatedAt = time.Now().UTC()
}

// AssignAccount attaches a specific target ThreadsAccount.
func (p *Post) AssignAccount(accountID uuid.UUID) {
	p.threadsAccountID = &accountID
	p.updatedAt = time.Now().UTC()
}

// StartGenerating transitions DRAFT -> GENERATING. Rejects any other
// starting state, including a retry of a post already in flight.
func (p *Post) StartGenerating() error {
	if p.status != StatusDraft {
		return ErrInvalidStatusTransition
	}
	p.status = StatusGenerating
	p.updatedAt = time.Now().UTC()
	return nil
}

// MarkPendingReview transitions GENERATING -> PENDING_REVIEW once a
// revision has been accepted.
func (p *Post) MarkPendingReview() error {
	if p.status != StatusGenerating {
		return ErrInvalidStatusTransition
	}
	p.status = StatusPendingReview
	p.updatedAt = time.Now().UTC()
	return nil
}

// FailSimilarityExceeded marks the post FAILED after every generation
// attempt was rejected by the similarity guardrail (spec §4.G.3 / §9).
func (p *Post) FailSimilarityExceeded() error {
	if p.status != StatusGenerating {
		return ErrInvalidStatusTransition
	}
	return p.fail("SIMILARITY_EXCEEDED", "no candidate passed the similarity threshold")
}

// Approve transitions PENDING_REVIEW -> APPROVED. It changes only the
// status; scheduledFor is left as it was.
func (p *Post) Approve() error {
	if p.status != StatusPendingReview {
		return ErrInvalidStatusTransition
	}
	p.status = StatusApproved
	p.updatedAt = time.Now().UTC()
	return nil
}

// Skip transitions PENDING_REVIEW -> SKIPPED, a terminal state.
func (p *Post) Skip() error {
	if p.status != StatusPendingReview {
		return ErrInvalidStatusTransition
	}
	p.status = StatusSkipped
	p.updatedAt = time.Now().UTC()
	return nil
}

// RequeueForGeneration transitions back to GENERATING for a regenerate
// action. Only valid from PENDING_REVIEW, and only while a review was
// still outstanding.
func (p *Post) RequeueForGeneration() error {
	if p.status != StatusPendingReview {
		return ErrInvalidStatusTransition
	}
	p.status = StatusGenerating
	p.updatedAt = time.Now().UTC()
	return nil
}

// StartPublishing is the exclusive-lock transition APPROVED -> PUBLISHING
// (spec Invariant 3). Callers must perform this via a single conditional
// UPDATE in the store so only one of several concurrent publish attempts
// observes success.
func (p *Post) StartPublishing() error {
	if p.status != StatusApproved {
		return ErrInvalidStatusTransition
	}
	p.status = StatusPublishing
	p.updatedAt = time.Now().UTC()
	return nil
}

// MarkPosted transitions PUBLISHING -> POSTED, a terminal state
// (spec Invariant 2).
func (p *Post) MarkPosted(postURL, mediaID string) error {
	if p.status != StatusPublishing {
		return ErrInvalidStatusTransition
	}
	if postURL == "" {
		return ErrMissingPostURL
	}
	now := time.Now().UTC()
	p.status = StatusPosted
	p.postURL = postURL
	p.mediaID = mediaID
	p.postedAt = &now
	p.updatedAt = now
	return nil
}

// MarkFailed transitions PUBLISHING or GENERATING -> FAILED with a
// classified error.
func (p *Post) MarkFailed(code, message string) error {
	if p.status != StatusPublishing && p.status != StatusGenerating {
		return ErrInvalidStatusTransition
	}
	return p.fail(code, message)
}

// MarkActionRequired transitions PUBLISHING -> ACTION_REQUIRED when the
// publish attempt failed because of an expired/invalid token.
func (p *Post) MarkActionRequired(message string) error {
	if p.status != StatusPublishing {
		return ErrInvalidStatusTransition
	}
	p.status = StatusActionRequired
	p.lastErrorCode = "TOKEN_EXPIRED"
	p.lastErrorMessage = message
	p.updatedAt = time.Now().UTC()
	return nil
}

func (p *Post) fail(code, message string) error {
	p.status = StatusFailed
	p.lastErrorCode = code
	p.lastErrorMessage = message
	p.updatedAt = time.Now().UTC()
	return nil
}

// Business rule checks (Specification-object style carried from the
// teacher's PublishablePostSpecification / ApprovablePostSpecification).

// CanPublish reports whether the post may begin the APPROVED->PUBLISHING
// transition right now.
func (p *Post) CanPublish() bool {
	if p.status != StatusApproved {
		return false
	}
	if p.scheduledFor != nil && p.scheduledFor.After(time.Now()) {
		return false
	}
	return true
}

// NeedsApproval reports whether the post is awaiting a reviewer decision.
func (p *Post) NeedsApproval() bool {
	return p.status == StatusPendingReview
}

// IsDue reports whether a post carrying a manual scheduledFor has reached
// that instant.
func (p *Post) IsDue() bool {
	if p.scheduledFor == nil {
		return true
	}
	return !p.scheduledFor.After(time.Now())
}

// IsTerminal reports whether no further lifecycle transition is possible.
func (p *Post) IsTerminal() bool {
	switch p.status {
	case StatusPosted, StatusSkipped, StatusActionRequired:
		return true
	default:
		return false
	}
}

// ValidateContent enforces the 500-character ceiling and non-empty rule
// shared by every path that persists a Revision against this post.
func ValidateContent(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyContent
	}
	if len([]rune(text)) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}
