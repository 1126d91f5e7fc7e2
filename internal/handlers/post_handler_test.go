// path: internal/handlers/post_handler_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/socialqueue-ucb/internal/application/pipeline"
	"github.com/techappsUT/socialqueue-ucb/internal/application/publish"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/middleware"
)

type testLogger struct{}

func (testLogger) Debug(msg string, fields ...interface{}) {}
func (testLogger) Info(msg string, fields ...interface{})  {}
func (testLogger) Warn(msg string, fields ...interface{})  {}
func (testLogger) Error(msg string, fields ...interface{}) {}

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

type fakeGenerateEnqueuer struct {
	calls []pipeline.GeneratePayload
	err   error
}

func (f *fakeGenerateEnqueuer) EnqueueGenerate(ctx context.Context, payload pipeline.GeneratePayload) error {
	f.calls = append(f.calls, payload)
	return f.err
}

type fakePublishEnqueuer struct {
	calls []publish.PublishPayload
	err   error
}

func (f *fakePublishEnqueuer) EnqueuePublish(ctx context.Context, payload publish.PublishPayload) error {
	f.calls = append(f.calls, payload)
	return f.err
}

func withOperator(r *http.Request, operatorID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.OperatorIDKey, operatorID.String())
	return r.WithContext(ctx)
}

func newTestPostHandler() (*PostHandler, *fakePostRepo, *fakeGenerateEnqueuer, *fakePublishEnqueuer) {
	repo := newFakePostRepo()
	genQ := &fakeGenerateEnqueuer{}
	pubQ := &fakePublishEnqueuer{}
	h := NewPostHandler(repo, nil, genQ, pubQ, testLogger{})
	return h, repo, genQ, pubQ
}

func TestPostHandler_CreatePost_EnqueuesGeneration(t *testing.T) {
	h, repo, genQ, _ := newTestPostHandler()
	operatorID := uuid.New()

	body, _ := json.Marshal(createPostRequest{Topic: "coffee", StylePreset: "playful"})
	req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(body))
	req = withOperator(req, operatorID)
	rec := httptest.NewRecorder()

	h.CreatePost(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.posts, 1)
	require.Len(t, genQ.calls, 1)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
}

func TestPostHandler_CreatePost_RequiresTopicOrStyle(t *testing.T) {
	h, _, _, _ := newTestPostHandler()
	operatorID := uuid.New()

	body, _ := json.Marshal(createPostRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(body))
	req = withOperator(req, operatorID)
	rec := httptest.NewRecorder()

	h.CreatePost(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostHandler_CreatePost_MissingOperator_Unauthorized(t *testing.T) {
	h, _, _, _ := newTestPostHandler()

	body, _ := json.Marshal(createPostRequest{Topic: "coffee"})
	req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreatePost(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPostHandler_GetPost_NotFound(t *testing.T) {
	h, _, _, _ := newTestPostHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/posts/"+uuid.New().String(), nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", uuid.New().String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.GetPost(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostHandler_ApprovePost_DuePostEnqueuesPublish(t *testing.T) {
	h, repo, _, pubQ := newTestPostHandler()
	operatorID := uuid.New()

	p, err := post.NewPost(operatorID, true, "a prompt", nil, nil)
	require.NoError(t, err)
	require.NoError(t, p.StartGenerating())
	require.NoError(t, p.MarkPendingReview())
	require.NoError(t, repo.Create(context.Background(), p))

	req := httptest.NewRequest(http.MethodPost, "/api/posts/"+p.ID().String()+"/approve", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", p.ID().String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.ApprovePost(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, pubQ.calls, 1)
	assert.Equal(t, post.StatusApproved, repo.posts[p.ID()].Status())
}

func TestPostHandler_ApprovePost_InvalidID(t *testing.T) {
	h, _, _, _ := newTestPostHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/posts/not-a-uuid/approve", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.ApprovePost(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostHandler_SkipPost_TransitionsToSkipped(t *testing.T) {
	h, repo, _, _ := newTestPostHandler()
	operatorID := uuid.New()

	p, err := post.NewPost(operatorID, true, "a prompt", nil, nil)
	require.NoError(t, err)
	require.NoError(t, p.StartGenerating())
	require.NoError(t, p.MarkPendingReview())
	require.NoError(t, repo.Create(context.Background(), p))

	req := httptest.NewRequest(http.MethodPost, "/api/posts/"+p.ID().String()+"/skip", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", p.ID().String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.SkipPost(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, post.StatusSkipped, repo.posts[p.ID()].Status())
}

func TestPostHandler_ListPosts_DefaultsOffsetAndLimit(t *testing.T) {
	h, _, _, _ := newTestPostHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()

	h.ListPosts(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 20, parseIntDefault("", 20))
	assert.Equal(t, 5, parseIntDefault("5", 20))
	assert.Equal(t, 20, parseIntDefault("not-a-number", 20))
	assert.Equal(t, 20, parseIntDefault("-1", 20))
}

func TestComposePrompt(t *testing.T) {
	assert.Equal(t, "", composePrompt(createPostRequest{}))
	assert.Equal(t,
		"Topic: coffee. Style: playful. Keywords: fresh, bold",
		composePrompt(createPostRequest{Topic: "coffee", StylePreset: "playful", Keywords: []string{"fresh", "bold"}}),
	)
}
