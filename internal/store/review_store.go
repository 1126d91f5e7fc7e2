// path: internal/store/review_store.go
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/domain/review"
)

// ReviewStore implements review.Repository over Postgres.
type ReviewStore struct {
	db *sql.DB
}

// NewReviewStore builds a ReviewStore.
func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

func (s *ReviewStore) Create(ctx context.Context, r *review.Request) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_requests (
			id, post_id, revision_id, token, reviewer_id, status, expires_at,
			edited_content, created_at, used_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		r.ID(), r.PostID(), r.RevisionID(), r.Token(), r.ReviewerID(), r.Status(),
		r.ExpiresAt(), r.EditedContent(), r.CreatedAt(), r.UsedAt(),
	)
	return classifyErr(err, review.ErrNotFound)
}

// TryUse performs the single-use USED transition as one conditional UPDATE
// so concurrent webhook redeliveries of the same action only ever let one
// caller proceed (spec Invariant 4).
func (s *ReviewStore) TryUse(ctx context.Context, token string, actingUserID uuid.UUID) (*review.Request, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE review_requests SET status = $2, used_at = $3
		WHERE token = $1 AND status = $4 AND reviewer_id = $5 AND expires_at > $3`,
		token, review.StatusUsed, now, review.StatusPending, actingUserID)
	if err != nil {
		return nil, classifyErr(err, review.ErrNotFound)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, classifyErr(err, review.ErrNotFound)
	}
	if n != 1 {
		return nil, review.ErrAlreadyUsed
	}
	return s.FindByToken(ctx, token)
}

func (s *ReviewStore) FindByToken(ctx context.Context, token string) (*review.Request, error) {
	row := s.db.QueryRowContext(ctx, reviewSelect+` WHERE token = $1`, token)
	return scanReview(row)
}

func (s *ReviewStore) FindActiveByReviewer(ctx context.Context, reviewerID uuid.UUID) (*review.Request, error) {
	row := s.db.QueryRowContext(ctx, reviewSelect+`
		WHERE reviewer_id = $1 AND status = $2
		ORDER BY created_at DESC LIMIT 1`, reviewerID, review.StatusPending)
	return scanReview(row)
}

func (s *ReviewStore) FindExpiring(ctx context.Context, before time.Time) ([]*review.Request, error) {
	rows, err := s.db.QueryContext(ctx, reviewSelect+`
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at`, review.StatusPending, before)
	if err != nil {
		return nil, classifyErr(err, review.ErrNotFound)
	}
	defer rows.Close()

	var out []*review.Request
	for rows.Next() {
		r, err := scanReviewRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ReviewStore) Update(ctx context.Context, r *review.Request) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE review_requests SET status = $2, edited_content = $3, used_at = $4
		WHERE id = $1`, r.ID(), r.Status(), r.EditedContent(), r.UsedAt())
	return classifyErr(err, review.ErrNotFound)
}

func (s *ReviewStore) CountPendingByReviewer(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reviewer_id, count(*) FROM review_requests
		WHERE status = $1 GROUP BY reviewer_id`, review.StatusPending)
	if err != nil {
		return nil, classifyErr(err, review.ErrNotFound)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, classifyErr(err, review.ErrNotFound)
		}
		out[id] = n
	}
	return out, rows.Err()
}

const reviewSelect = `
	SELECT id, post_id, revision_id, token, reviewer_id, status, expires_at,
	       edited_content, created_at, used_at
	FROM review_requests`

func scanReview(row rowScanner) (*review.Request, error) {
	return scanReviewRow(row)
}

func scanReviewRow(row rowScanner) (*review.Request, error) {
	var (
		id, postID, revisionID, reviewerID uuid.UUID
		token                              string
		status                             review.Status
		expiresAt, createdAt               time.Time
		editedContent                      *string
		usedAt                             *time.Time
	)
	err := row.Scan(&id, &postID, &revisionID, &token, &reviewerID, &status,
		&expiresAt, &editedContent, &createdAt, &usedAt)
	if err != nil {
		return nil, classifyErr(err, review.ErrNotFound)
	}
	return review.Reconstruct(id, postID, revisionID, token, reviewerID, status,
		expiresAt, editedContent, createdAt, usedAt), nil
}
