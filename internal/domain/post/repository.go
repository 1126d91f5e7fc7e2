// path: internal/domain/post/repository.go
package post

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for Post, Revision and Embedding rows.
// Implementations follow the Store contract of spec §4.A: transactional
// status transitions, append-only revision numbering guarded by a unique
// (postID, revisionNo) constraint, and an atomic "claim" update used by
// Publisher and the Scheduler's due-schedule sweep.
type Repository interface {
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)

	// FindByStatus lists posts in a given status ordered by createdAt,
	// tie-broken by id (spec §4.A ordering rule).
	FindByStatus(ctx context.Context, status Status, offset, limit int) ([]*Post, error)
	List(ctx context.Context, status *Status, offset, limit int) ([]*Post, int64, error)

	// TryStartPublishing performs the exclusive APPROVED->PUBLISHING claim
	// as a single conditional UPDATE returning whether this caller won the
	// race (spec Invariant 3 / §5 serialization).
	TryStartPublishing(ctx context.Context, id uuid.UUID) (bool, error)

	// DeleteDraft removes a post by id whatever its status; the Scheduler's
	// expired-review sweep (spec §4.K) uses it on still-PENDING_REVIEW drafts.
	DeleteDraft(ctx context.Context, id uuid.UUID) error

	// NextRevisionNo returns max(revisionNo)+1 for postID under the
	// caller's transaction, starting at 1 when no revision exists.
	NextRevisionNo(ctx context.Context, postID uuid.UUID) (int, error)
	CreateRevision(ctx context.Context, r *Revision) error
	LatestRevision(ctx context.Context, postID uuid.UUID) (*Revision, error)
	Revisions(ctx context.Context, postID uuid.UUID) ([]*Revision, error)

	CreateEmbedding(ctx context.Context, e *Embedding) error
	// RecentPostedEmbeddings returns embeddings of the last n posts that
	// reached POSTED, ordered by postedAt desc (spec §4.F).
	RecentPostedEmbeddings(ctx context.Context, n int) ([]*Embedding, error)

	// PostedNotSyncedSince finds POSTED posts posted within `window` and
	// not synced within `notSyncedWithin` (spec §4.M).
	PostedNotSyncedSince(ctx context.Context, window, notSyncedWithin time.Duration) ([]*Post, error)
}
