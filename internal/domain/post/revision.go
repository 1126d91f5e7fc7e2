// path: internal/domain/post/revision.go
package post

import (
	"time"

	"github.com/google/uuid"
)

// Engine identifies what produced a Revision's content.
type Engine string

const (
	EnginePrimary  Engine = "PRIMARY"
	EngineFallback Engine = "FALLBACK"
	EngineManual   Engine = "MANUAL"
	EngineImported Engine = "IMPORTED"
)

// Revision is a concrete text candidate produced for a post. revisionNo is
// monotonic per post starting at 1 with no gaps (Invariant 1).
type Revision struct {
	id            uuid.UUID
	postID        uuid.UUID
	revisionNo    int
	content       string
	engineUsed    Engine
	similarityMax float64
	createdAt     time.Time
}

// NewRevision validates content length before construction; nextRevisionNo
// must come from a read-current-max-then-insert-next query against the
// store (spec §4.A) so numbering stays gapless under concurrent writers.
func NewRevision(postID uuid.UUID, nextRevisionNo int, content string, engine Engine, similarityMax float64) (*Revision, error) {
	if engine != EngineManual && engine != EngineImported {
		if err := ValidateContent(content); err != nil {
			return nil, err
		}
	}
	if nextRevisionNo < 1 {
		return nil, ErrInvalidStatusTransition
	}
	return &Revision{
		id:            uuid.New(),
		postID:        postID,
		revisionNo:    nextRevisionNo,
		content:       content,
		engineUsed:    engine,
		similarityMax: similarityMax,
		createdAt:     time.Now().UTC(),
	}, nil
}

// ReconstructRevision recreates a Revision from persistence.
func ReconstructRevision(id, postID uuid.UUID, revisionNo int, content string, engine Engine, similarityMax float64, createdAt time.Time) *Revision {
	return &Revision{
		id:            id,
		postID:        postID,
		revisionNo:    revisionNo,
		content:       content,
		engineUsed:    engine,
		similarityMax: similarityMax,
		createdAt:     createdAt,
	}
}

func (r *Revision) ID() uuid.UUID            { return r.id }
func (r *Revision) PostID() uuid.UUID        { return r.postID }
func (r *Revision) RevisionNo() int          { return r.revisionNo }
func (r *Revision) Content() string          { return r.content }
func (r *Revision) EngineUsed() Engine       { return r.engineUsed }
func (r *Revision) SimilarityMax() float64   { return r.similarityMax }
func (r *Revision) CreatedAt() time.Time     { return r.createdAt }

// Embedding is the vector representation of a Revision's content, used by
// the similarity guardrail. PostID is denormalized onto the row so
// RecentPostedEmbeddings can report which post a near-duplicate came from
// without a second join (spec §4.F: checkAgainstRecent returns maxPostId).
type Embedding struct {
	RevisionID uuid.UUID
	PostID     uuid.UUID
	Vector     []float32
	CreatedAt  time.Time
}
