// path: internal/application/review/coordinator_test.go
package review

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/socialqueue-ucb/internal/chat"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/review"
)

type fakePostRepo struct {
	posts     map[uuid.UUID]*post.Post
	revisions map[uuid.UUID][]*post.Revision
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[uuid.UUID]*post.Post{}, revisions: map[uuid.UUID][]*post.Revision{}}
}

func (f *fakePostRepo) Create(ctx context.Context, p *post.Post) error { f.posts[p.ID()] = p; return nil }
func (f *fakePostRepo) Update(ctx context.Context, p *post.Post) error { f.posts[p.ID()] = p; return nil }
func (f *fakePostRepo) FindByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, post.ErrPostNotFound
	}
	return p, nil
}
func (f *fakePostRepo) FindByStatus(ctx context.Context, status post.Status, offset, limit int) ([]*post.Post, error) {
	return nil, nil
}
func (f *fakePostRepo) List(ctx context.Context, status *post.Status, offset, limit int) ([]*post.Post, int64, error) {
	return nil, 0, nil
}
func (f *fakePostRepo) TryStartPublishing(ctx context.Context, id uuid.UUID) (bool, error) {
	return false, nil
}
func (f *fakePostRepo) DeleteDraft(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakePostRepo) NextRevisionNo(ctx context.Context, postID uuid.UUID) (int, error) {
	return len(f.revisions[postID]) + 1, nil
}
func (f *fakePostRepo) CreateRevision(ctx context.Context, r *post.Revision) error {
	f.revisions[r.PostID()] = append(f.revisions[r.PostID()], r)
	return nil
}
func (f *fakePostRepo) LatestRevision(ctx context.Context, postID uuid.UUID) (*post.Revision, error) {
	revs := f.revisions[postID]
	if len(revs) == 0 {
		return nil, post.ErrPostNotFound
	}
	return revs[len(revs)-1], nil
}
func (f *fakePostRepo) Revisions(ctx context.Context, postID uuid.UUID) ([]*post.Revision, error) {
	return f.revisions[postID], nil
}
func (f *fakePostRepo) CreateEmbedding(ctx context.Context, e *post.Embedding) error { return nil }
func (f *fakePostRepo) RecentPostedEmbeddings(ctx context.Context, n int) ([]*post.Embedding, error) {
	return nil, nil
}
func (f *fakePostRepo) PostedNotSyncedSince(ctx context.Context, window, notSyncedWithin time.Duration) ([]*post.Post, error) {
	return nil, nil
}

type fakeReviewRepo struct {
	byToken map[string]*review.Request
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{byToken: map[string]*review.Request{}}
}

func (f *fakeReviewRepo) Create(ctx context.Context, r *review.Request) error {
	f.byToken[r.Token()] = r
	return nil
}
func (f *fakeReviewRepo) TryUse(ctx context.Context, token string, actingUserID uuid.UUID) (*review.Request, error) {
	req, ok := f.byToken[token]
	if !ok {
		return nil, review.ErrNotFound
	}
	if err := req.Use(token, actingUserID); err != nil {
		return nil, err
	}
	return req, nil
}
func (f *fakeReviewRepo) FindByToken(ctx context.Context, token string) (*review.Request, error) {
	req, ok := f.byToken[token]
	if !ok {
		return nil, review.ErrNotFound
	}
	return req, nil
}
func (f *fakeReviewRepo) FindActiveByReviewer(ctx context.Context, reviewerID uuid.UUID) (*review.Request, error) {
	for _, r := range f.byToken {
		if r.ReviewerID() == reviewerID && r.Status() == review.StatusPending {
			return r, nil
		}
	}
	return nil, review.ErrNotFound
}
func (f *fakeReviewRepo) FindExpiring(ctx context.Context, before time.Time) ([]*review.Request, error) {
	var out []*review.Request
	for _, r := range f.byToken {
		if r.Status() == review.StatusPending && r.ExpiresAt().Before(before) {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *fakeReviewRepo) Update(ctx context.Context, r *review.Request) error {
	f.byToken[r.Token()] = r
	return nil
}
func (f *fakeReviewRepo) CountPendingByReviewer(ctx context.Context) (map[uuid.UUID]int, error) {
	return nil, nil
}

type fakeNotifier struct {
	lastCard   chat.ReviewCard
	sentText   string
	sentUserID string
}

func (f *fakeNotifier) SendReviewCard(ctx context.Context, userID string, card chat.ReviewCard) error {
	f.lastCard = card
	f.sentUserID = userID
	return nil
}
func (f *fakeNotifier) SendText(ctx context.Context, userID, text string) error {
	f.sentUserID = userID
	f.sentText = text
	return nil
}

type fakeRegenerator struct {
	called bool
	postID uuid.UUID
	prompt string
}

func (f *fakeRegenerator) Regenerate(ctx context.Context, postID uuid.UUID, prompt string) error {
	f.called = true
	f.postID = postID
	f.prompt = prompt
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...interface{}) {}
func (noopLogger) Info(msg string, fields ...interface{})  {}
func (noopLogger) Warn(msg string, fields ...interface{})  {}
func (noopLogger) Error(msg string, fields ...interface{}) {}

func newPendingReviewPost(t *testing.T) *post.Post {
	p, err := post.NewPost(uuid.New(), true, "launch week", nil, nil)
	require.NoError(t, err)
	require.NoError(t, p.StartGenerating())
	require.NoError(t, p.MarkPendingReview())
	return p
}

func TestStartReview_DispatchesSingleTokenCard(t *testing.T) {
	posts := newFakePostRepo()
	reviews := newFakeReviewRepo()
	notifier := &fakeNotifier{}
	coord := New(posts, reviews, notifier, &fakeRegenerator{}, noopLogger{}, "chat-admin-1")

	p := newPendingReviewPost(t)
	rev, err := post.NewRevision(p.ID(), 1, "draft content", post.EnginePrimary, 0)
	require.NoError(t, err)

	require.NoError(t, coord.StartReview(context.Background(), p, rev))

	assert.Equal(t, notifier.lastCard.ApproveToken, notifier.lastCard.RegenerateToken)
	assert.Equal(t, notifier.lastCard.ApproveToken, notifier.lastCard.SkipToken)
	assert.NotEmpty(t, notifier.lastCard.ApproveToken)
	assert.Equal(t, "chat-admin-1", notifier.sentUserID)
}

func TestHandleAction_Approve(t *testing.T) {
	posts := newFakePostRepo()
	reviews := newFakeReviewRepo()
	coord := New(posts, reviews, &fakeNotifier{}, &fakeRegenerator{}, noopLogger{}, "chat-admin-1")

	p := newPendingReviewPost(t)
	posts.posts[p.ID()] = p
	reviewerID := ReviewerIDFor("chat-admin-1")
	req, err := review.New(p.ID(), uuid.New(), reviewerID, "tok-approve", review.DefaultTTL)
	require.NoError(t, err)
	require.NoError(t, reviews.Create(context.Background(), req))

	err = coord.HandleAction(context.Background(), "tok-approve", ActionApprove, reviewerID)
	require.NoError(t, err)
	assert.Equal(t, post.StatusApproved, p.Status())
}

func TestHandleAction_ApproveWithEditOverride(t *testing.T) {
	posts := newFakePostRepo()
	reviews := newFakeReviewRepo()
	coord := New(posts, reviews, &fakeNotifier{}, &fakeRegenerator{}, noopLogger{}, "chat-admin-1")

	p := newPendingReviewPost(t)
	posts.posts[p.ID()] = p
	reviewerID := ReviewerIDFor("chat-admin-1")
	req, err := review.New(p.ID(), uuid.New(), reviewerID, "tok-edit", review.DefaultTTL)
	require.NoError(t, err)
	require.NoError(t, req.CaptureEditedContent("operator rewritten text"))
	require.NoError(t, reviews.Create(context.Background(), req))

	err = coord.HandleAction(context.Background(), "tok-edit", ActionApprove, reviewerID)
	require.NoError(t, err)
	assert.Equal(t, post.StatusApproved, p.Status())
	require.Len(t, posts.revisions[p.ID()], 1)
	assert.Equal(t, "operator rewritten text", posts.revisions[p.ID()][0].Content())
	assert.Equal(t, post.EngineManual, posts.revisions[p.ID()][0].EngineUsed())
}

func TestHandleAction_Skip(t *testing.T) {
	posts := newFakePostRepo()
	reviews := newFakeReviewRepo()
	coord := New(posts, reviews, &fakeNotifier{}, &fakeRegenerator{}, noopLogger{}, "chat-admin-1")

	p := newPendingReviewPost(t)
	posts.posts[p.ID()] = p
	reviewerID := ReviewerIDFor("chat-admin-1")
	req, err := review.New(p.ID(), uuid.New(), reviewerID, "tok-skip", review.DefaultTTL)
	require.NoError(t, err)
	require.NoError(t, reviews.Create(context.Background(), req))

	require.NoError(t, coord.HandleAction(context.Background(), "tok-skip", ActionSkip, reviewerID))
	assert.Equal(t, post.StatusSkipped, p.Status())
}

func TestHandleAction_RegenerateRequeuesAndDispatches(t *testing.T) {
	posts := newFakePostRepo()
	reviews := newFakeReviewRepo()
	regen := &fakeRegenerator{}
	coord := New(posts, reviews, &fakeNotifier{}, regen, noopLogger{}, "chat-admin-1")

	p := newPendingReviewPost(t)
	posts.posts[p.ID()] = p
	latest, err := post.NewRevision(p.ID(), 1, "first attempt", post.EnginePrimary, 0)
	require.NoError(t, err)
	posts.revisions[p.ID()] = []*post.Revision{latest}

	reviewerID := ReviewerIDFor("chat-admin-1")
	req, err := review.New(p.ID(), latest.ID(), reviewerID, "tok-regen", review.DefaultTTL)
	require.NoError(t, err)
	require.NoError(t, reviews.Create(context.Background(), req))

	require.NoError(t, coord.HandleAction(context.Background(), "tok-regen", ActionRegenerate, reviewerID))
	assert.Equal(t, post.StatusGenerating, p.Status())
	assert.True(t, regen.called)
	assert.Equal(t, p.ID(), regen.postID)
}

func TestHandleAction_TokenReuseFails(t *testing.T) {
	posts := newFakePostRepo()
	reviews := newFakeReviewRepo()
	coord := New(posts, reviews, &fakeNotifier{}, &fakeRegenerator{}, noopLogger{}, "chat-admin-1")

	p := newPendingReviewPost(t)
	posts.posts[p.ID()] = p
	reviewerID := ReviewerIDFor("chat-admin-1")
	req, err := review.New(p.ID(), uuid.New(), reviewerID, "tok-once", review.DefaultTTL)
	require.NoError(t, err)
	require.NoError(t, reviews.Create(context.Background(), req))

	require.NoError(t, coord.HandleAction(context.Background(), "tok-once", ActionSkip, reviewerID))
	err = coord.HandleAction(context.Background(), "tok-once", ActionApprove, reviewerID)
	assert.Error(t, err)
}

func TestCaptureEdit_StoresTextOnActiveRequest(t *testing.T) {
	posts := newFakePostRepo()
	reviews := newFakeReviewRepo()
	coord := New(posts, reviews, &fakeNotifier{}, &fakeRegenerator{}, noopLogger{}, "chat-admin-1")

	reviewerID := ReviewerIDFor("chat-admin-1")
	req, err := review.New(uuid.New(), uuid.New(), reviewerID, "tok-capture", review.DefaultTTL)
	require.NoError(t, err)
	require.NoError(t, reviews.Create(context.Background(), req))

	require.NoError(t, coord.CaptureEdit(context.Background(), reviewerID, "new text from chat"))

	stored, err := reviews.FindByToken(context.Background(), "tok-capture")
	require.NoError(t, err)
	require.NotNil(t, stored.EditedContent())
	assert.Equal(t, "new text from chat", *stored.EditedContent())
}

func TestExpireStale_MarksOnlyPastTTL(t *testing.T) {
	posts := newFakePostRepo()
	reviews := newFakeReviewRepo()
	coord := New(posts, reviews, &fakeNotifier{}, &fakeRegenerator{}, noopLogger{}, "chat-admin-1")

	reviewerID := ReviewerIDFor("chat-admin-1")
	stale, err := review.New(uuid.New(), uuid.New(), reviewerID, "tok-stale", -time.Hour)
	require.NoError(t, err)
	require.NoError(t, reviews.Create(context.Background(), stale))

	fresh, err := review.New(uuid.New(), uuid.New(), reviewerID, "tok-fresh", review.DefaultTTL)
	require.NoError(t, err)
	require.NoError(t, reviews.Create(context.Background(), fresh))

	n, err := coord.ExpireStale(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := reviews.FindByToken(context.Background(), "tok-stale")
	require.NoError(t, err)
	assert.Equal(t, review.StatusExpired, got.Status())

	stillPending, err := reviews.FindByToken(context.Background(), "tok-fresh")
	require.NoError(t, err)
	assert.Equal(t, review.StatusPending, stillPending.Status())
}
