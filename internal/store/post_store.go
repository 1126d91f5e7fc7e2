// path: internal/store/post_store.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
)

// PostStore implements post.Repository over Postgres.
type PostStore struct {
	db *sql.DB
}

// NewPostStore builds a PostStore.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

func (s *PostStore) Create(ctx context.Context, p *post.Post) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (
			id, status, created_by, template_id, threads_account_id, auto_schedule_id,
			posted_at, post_url, media_id, last_error_code, last_error_message,
			is_ai_generated, tags, context, scheduled_for, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		p.ID(), p.Status(), p.CreatedBy(), p.TemplateID(), p.ThreadsAccountID(), p.AutoScheduleID(),
		p.PostedAt(), p.PostURL(), p.MediaID(), p.LastErrorCode(), p.LastErrorMessage(),
		p.IsAIGenerated(), pq.Array(p.Tags()), p.Context(), p.ScheduledFor(), p.CreatedAt(), p.UpdatedAt(),
	)
	return classifyErr(err, post.ErrPostNotFound)
}

func (s *PostStore) Update(ctx context.Context, p *post.Post) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE posts SET
			status=$2, template_id=$3, threads_account_id=$4, auto_schedule_id=$5,
			posted_at=$6, post_url=$7, media_id=$8, last_error_code=$9, last_error_message=$10,
			tags=$11, scheduled_for=$12, updated_at=$13
		WHERE id=$1`,
		p.ID(), p.Status(), p.TemplateID(), p.ThreadsAccountID(), p.AutoScheduleID(),
		p.PostedAt(), p.PostURL(), p.MediaID(), p.LastErrorCode(), p.LastErrorMessage(),
		pq.Array(p.Tags()), p.ScheduledFor(), p.UpdatedAt(),
	)
	return classifyErr(err, post.ErrPostNotFound)
}

func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	row := s.db.QueryRowContext(ctx, postSelect+` WHERE id = $1`, id)
	return scanPost(row)
}

func (s *PostStore) FindByStatus(ctx context.Context, status post.Status, offset, limit int) ([]*post.Post, error) {
	rows, err := s.db.QueryContext(ctx, postSelect+`
		WHERE status = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, classifyErr(err, post.ErrPostNotFound)
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (s *PostStore) List(ctx context.Context, status *post.Status, offset, limit int) ([]*post.Post, int64, error) {
	var rows *sql.Rows
	var err error
	var total int64

	if status != nil {
		if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM posts WHERE status = $1`, *status).Scan(&total); err != nil {
			return nil, 0, classifyErr(err, post.ErrPostNotFound)
		}
		rows, err = s.db.QueryContext(ctx, postSelect+`
			WHERE status = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`, *status, limit, offset)
	} else {
		if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM posts`).Scan(&total); err != nil {
			return nil, 0, classifyErr(err, post.ErrPostNotFound)
		}
		rows, err = s.db.QueryContext(ctx, postSelect+`
			ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
	}
	if err != nil {
		return nil, 0, classifyErr(err, post.ErrPostNotFound)
	}
	defer rows.Close()
	posts, err := scanPosts(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// TryStartPublishing performs the APPROVED->PUBLISHING exclusive claim as a
// single conditional UPDATE (spec Invariant 3): at most one caller observes
// rowsAffected == 1.
func (s *PostStore) TryStartPublishing(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4`,
		id, post.StatusPublishing, time.Now().UTC(), post.StatusApproved)
	if err != nil {
		return false, classifyErr(err, post.ErrPostNotFound)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classifyErr(err, post.ErrPostNotFound)
	}
	return n == 1, nil
}

func (s *PostStore) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return classifyErr(err, post.ErrPostNotFound)
}

// NextRevisionNo computes max(revisionNo)+1 for postID. Callers must run
// this and the following CreateRevision inside the same transaction so the
// unique (post_id, revision_no) constraint actually serializes concurrent
// generation attempts rather than racing on the read.
func (s *PostStore) NextRevisionNo(ctx context.Context, postID uuid.UUID) (int, error) {
	var maxNo sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT max(revision_no) FROM revisions WHERE post_id = $1`, postID).Scan(&maxNo)
	if err != nil {
		return 0, classifyErr(err, post.ErrPostNotFound)
	}
	if !maxNo.Valid {
		return 1, nil
	}
	return int(maxNo.Int64) + 1, nil
}

func (s *PostStore) CreateRevision(ctx context.Context, r *post.Revision) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revisions (id, post_id, revision_no, content, engine_used, similarity_max, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.ID(), r.PostID(), r.RevisionNo(), r.Content(), r.EngineUsed(), r.SimilarityMax(), r.CreatedAt(),
	)
	return classifyErr(err, post.ErrPostNotFound)
}

func (s *PostStore) LatestRevision(ctx context.Context, postID uuid.UUID) (*post.Revision, error) {
	row := s.db.QueryRowContext(ctx, revisionSelect+`
		WHERE post_id = $1 ORDER BY revision_no DESC LIMIT 1`, postID)
	return scanRevision(row)
}

func (s *PostStore) Revisions(ctx context.Context, postID uuid.UUID) ([]*post.Revision, error) {
	rows, err := s.db.QueryContext(ctx, revisionSelect+`
		WHERE post_id = $1 ORDER BY revision_no`, postID)
	if err != nil {
		return nil, classifyErr(err, post.ErrPostNotFound)
	}
	defer rows.Close()

	var out []*post.Revision
	for rows.Next() {
		r, err := scanRevisionRow(rows)
		if err != nil {
			return nil, classifyErr(err, post.ErrPostNotFound)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostStore) CreateEmbedding(ctx context.Context, e *post.Embedding) error {
	vec, err := json.Marshal(e.Vector)
	if err != nil {
		return classifyErr(err, post.ErrPostNotFound)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO embeddings (revision_id, post_id, vector, created_at) VALUES ($1,$2,$3,$4)`,
		e.RevisionID, e.PostID, vec, e.CreatedAt,
	)
	return classifyErr(err, post.ErrPostNotFound)
}

// RecentPostedEmbeddings returns embeddings for the last n posts that
// reached POSTED, ordered by postedAt desc (spec §4.F).
func (s *PostStore) RecentPostedEmbeddings(ctx context.Context, n int) ([]*post.Embedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.revision_id, e.post_id, e.vector, e.created_at
		FROM embeddings e
		JOIN posts p ON p.id = e.post_id
		WHERE p.status = $1
		ORDER BY p.posted_at DESC
		LIMIT $2`, post.StatusPosted, n)
	if err != nil {
		return nil, classifyErr(err, post.ErrPostNotFound)
	}
	defer rows.Close()

	var out []*post.Embedding
	for rows.Next() {
		var e post.Embedding
		var raw []byte
		if err := rows.Scan(&e.RevisionID, &e.PostID, &raw, &e.CreatedAt); err != nil {
			return nil, classifyErr(err, post.ErrPostNotFound)
		}
		if err := json.Unmarshal(raw, &e.Vector); err != nil {
			return nil, classifyErr(err, post.ErrPostNotFound)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *PostStore) PostedNotSyncedSince(ctx context.Context, window, notSyncedWithin time.Duration) ([]*post.Post, error) {
	now := time.Now().UTC()
	rows, err := s.db.QueryContext(ctx, postSelect+`
		WHERE status = $1
		AND posted_at >= $2
		AND (last_synced_at IS NULL OR last_synced_at < $3)
		ORDER BY posted_at`,
		post.StatusPosted, now.Add(-window), now.Add(-notSyncedWithin))
	if err != nil {
		return nil, classifyErr(err, post.ErrPostNotFound)
	}
	defer rows.Close()
	return scanPosts(rows)
}

const postSelect = `
	SELECT id, status, created_by, template_id, threads_account_id, auto_schedule_id,
	       posted_at, post_url, media_id, last_error_code, last_error_message,
	       is_ai_generated, tags, context, scheduled_for, created_at, updated_at
	FROM posts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*post.Post, error) {
	var (
		id, createdBy                     uuid.UUID
		status                            post.Status
		templateID, threadsAccountID      *uuid.UUID
		autoScheduleID                    *uuid.UUID
		postedAt, scheduledFor            *time.Time
		postURL, mediaID                  string
		lastErrorCode, lastErrorMessage   string
		isAIGenerated                     bool
		tags                              []string
		context                           string
		createdAt, updatedAt              time.Time
	)
	err := row.Scan(
		&id, &status, &createdBy, &templateID, &threadsAccountID, &autoScheduleID,
		&postedAt, &postURL, &mediaID, &lastErrorCode, &lastErrorMessage,
		&isAIGenerated, pq.Array(&tags), &context, &scheduledFor, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, classifyErr(err, post.ErrPostNotFound)
	}
	return post.Reconstruct(
		id, status, createdBy, templateID, threadsAccountID, autoScheduleID,
		postedAt, postURL, mediaID, lastErrorCode, lastErrorMessage,
		isAIGenerated, tags, context, scheduledFor, createdAt, updatedAt,
	), nil
}

func scanPosts(rows *sql.Rows) ([]*post.Post, error) {
	var out []*post.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const revisionSelect = `
	SELECT id, post_id, revision_no, content, engine_used, similarity_max, created_at
	FROM revisions`

func scanRevision(row rowScanner) (*post.Revision, error) {
	return scanRevisionRow(row)
}

func scanRevisionRow(row rowScanner) (*post.Revision, error) {
	var (
		id, postID    uuid.UUID
		revisionNo    int
		content       string
		engine        post.Engine
		similarityMax float64
		createdAt     time.Time
	)
	if err := row.Scan(&id, &postID, &revisionNo, &content, &engine, &similarityMax, &createdAt); err != nil {
		return nil, classifyErr(err, post.ErrPostNotFound)
	}
	return post.ReconstructRevision(id, postID, revisionNo, content, engine, similarityMax, createdAt), nil
}
