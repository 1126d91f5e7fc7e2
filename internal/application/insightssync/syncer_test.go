// path: internal/application/insightssync/syncer_test.go
package insightssync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/socialqueue-ucb/internal/domain/insights"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/social"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/template"
	"github.com/techappsUT/socialqueue-ucb/internal/threads"
)

type fakePostRepo struct {
	posts      []*post.Post
	failNextAt int
}

func (f *fakePostRepo) Create(ctx context.Context, p *post.Post) error { return nil }
func (f *fakePostRepo) Update(ctx context.Context, p *post.Post) error { return nil }
func (f *fakePostRepo) FindByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	return nil, post.ErrPostNotFound
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
	return 1, nil
}
func (f *fakePostRepo) CreateRevision(ctx context.Context, r *post.Revision) error { return nil }
func (f *fakePostRepo) LatestRevision(ctx context.Context, postID uuid.UUID) (*post.Revision, error) {
	return nil, post.ErrPostNotFound
}
func (f *fakePostRepo) Revisions(ctx context.Context, postID uuid.UUID) ([]*post.Revision, error) {
	return nil, nil
}
func (f *fakePostRepo) CreateEmbedding(ctx context.Context, e *post.Embedding) error { return nil }
func (f *fakePostRepo) RecentPostedEmbeddings(ctx context.Context, n int) ([]*post.Embedding, error) {
	return nil, nil
}
func (f *fakePostRepo) PostedNotSyncedSince(ctx context.Context, window, notSyncedWithin time.Duration) ([]*post.Post, error) {
	return f.posts, nil
}

type fakeSocialRepo struct {
	accounts  map[uuid.UUID]*social.Account
	auths     map[uuid.UUID]*social.Auth
	defaultID uuid.UUID
}

func newFakeSocialRepo() *fakeSocialRepo {
	return &fakeSocialRepo{accounts: map[uuid.UUID]*social.Account{}, auths: map[uuid.UUID]*social.Auth{}}
}

func (f *fakeSocialRepo) FindAccountByID(ctx context.Context, id uuid.UUID) (*social.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, social.ErrAccountNotFound
	}
	return a, nil
}
func (f *fakeSocialRepo) FindDefaultActiveAccount(ctx context.Context) (*social.Account, error) {
	a, ok := f.accounts[f.defaultID]
	if !ok {
		return nil, social.ErrNoDefaultAccount
	}
	return a, nil
}
func (f *fakeSocialRepo) CreateAccount(ctx context.Context, a *social.Account) error {
	f.accounts[a.ID()] = a
	return nil
}
func (f *fakeSocialRepo) UpdateAccount(ctx context.Context, a *social.Account) error {
	f.accounts[a.ID()] = a
	return nil
}
func (f *fakeSocialRepo) FindAuthByAccountID(ctx context.Context, accountID uuid.UUID) (*social.Auth, error) {
	a, ok := f.auths[accountID]
	if !ok {
		return nil, social.ErrAuthNotFound
	}
	return a, nil
}
func (f *fakeSocialRepo) UpsertAuth(ctx context.Context, a *social.Auth) error {
	f.auths[a.AccountID()] = a
	return nil
}
func (f *fakeSocialRepo) FindAuthsNeedingRefresh(ctx context.Context) ([]*social.Auth, error) {
	return nil, nil
}

type fakeInsightsRepo struct {
	upserted []*insights.PostInsights
}

func (f *fakeInsightsRepo) Upsert(ctx context.Context, p *insights.PostInsights) error {
	f.upserted = append(f.upserted, p)
	return nil
}
func (f *fakeInsightsRepo) FindByPostID(ctx context.Context, postID uuid.UUID) (*insights.PostInsights, error) {
	return nil, insights.ErrNotFound
}
func (f *fakeInsightsRepo) CreatePerformanceLog(ctx context.Context, l *insights.PerformanceLog) error {
	return nil
}
func (f *fakeInsightsRepo) SlotStats(ctx context.Context, timeSlotIDs []uuid.UUID) (map[uuid.UUID]insights.SlotStat, error) {
	return nil, nil
}

type fakeTemplateRepo struct {
	templates map[uuid.UUID]*template.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: map[uuid.UUID]*template.Template{}}
}

func (f *fakeTemplateRepo) FindByID(ctx context.Context, id uuid.UUID) (*template.Template, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, template.ErrNotFound
	}
	return t, nil
}
func (f *fakeTemplateRepo) FindEnabled(ctx context.Context) ([]*template.Template, error) {
	return nil, nil
}
func (f *fakeTemplateRepo) List(ctx context.Context) ([]*template.Template, error) { return nil, nil }
func (f *fakeTemplateRepo) Create(ctx context.Context, t *template.Template) error {
	f.templates[t.ID()] = t
	return nil
}
func (f *fakeTemplateRepo) Update(ctx context.Context, t *template.Template) error {
	f.templates[t.ID()] = t
	return nil
}
func (f *fakeTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.templates, id)
	return nil
}
func (f *fakeTemplateRepo) WithRowLock(ctx context.Context, id uuid.UUID, fn func(t *template.Template) error) error {
	t, ok := f.templates[id]
	if !ok {
		return template.ErrNotFound
	}
	if err := fn(t); err != nil {
		return err
	}
	f.templates[id] = t
	return nil
}

type fakeSocialClient struct {
	fetchFn func(mediaID, token string) (*threads.Insights, error)
	calls   []string
}

func (f *fakeSocialClient) FetchInsights(ctx context.Context, mediaID, token string) (*threads.Insights, error) {
	f.calls = append(f.calls, mediaID)
	return f.fetchFn(mediaID, token)
}

type fakeDecrypter struct{}

func (fakeDecrypter) Decrypt(ciphertext string) (string, error) { return "plaintext-" + ciphertext, nil }

type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...interface{}) {}
func (noopLogger) Info(msg string, fields ...interface{})  {}
func (noopLogger) Warn(msg string, fields ...interface{})  {}
func (noopLogger) Error(msg string, fields ...interface{}) {}

func postedPost(t *testing.T, templateID *uuid.UUID, mediaID string) *post.Post {
	p, err := post.NewPost(uuid.New(), true, "launch", nil, nil)
	require.NoError(t, err)
	require.NoError(t, p.StartGenerating())
	require.NoError(t, p.MarkPendingReview())
	require.NoError(t, p.Approve())
	if templateID != nil {
		p.AssignTemplate(*templateID)
	}
	require.NoError(t, p.StartPublishing())
	require.NoError(t, p.MarkPosted("https://social.example/post/abc", mediaID))
	return p
}

func defaultAccount(t *testing.T, repo *fakeSocialRepo) *social.Account {
	acct, err := social.NewAccount(uuid.New(), "brand", "ext-123", true)
	require.NoError(t, err)
	repo.accounts[acct.ID()] = acct
	repo.defaultID = acct.ID()
	auth, err := social.NewAuth(acct.ID(), "ciphertext", time.Now().Add(30*24*time.Hour))
	require.NoError(t, err)
	repo.auths[acct.ID()] = auth
	return acct
}

func TestSync_UpsertsInsightsAndRecomputesTemplateStats(t *testing.T) {
	tmpl, err := template.New("launch", "announce a launch", "primary")
	require.NoError(t, err)
	templates := newFakeTemplateRepo()
	templates.templates[tmpl.ID()] = tmpl
	tid := tmpl.ID()

	p := postedPost(t, &tid, "media-1")
	posts := &fakePostRepo{posts: []*post.Post{p}}
	accounts := newFakeSocialRepo()
	defaultAccount(t, accounts)
	ins := &fakeInsightsRepo{}
	client := &fakeSocialClient{fetchFn: func(mediaID, token string) (*threads.Insights, error) {
		return &threads.Insights{Views: 100, Likes: 10, Replies: 5, Reposts: 5}, nil
	}}

	syncer := New(posts, accounts, ins, templates, client, fakeDecrypter{}, noopLogger{})
	n, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, ins.upserted, 1)
	assert.Equal(t, p.ID(), ins.upserted[0].PostID)
	assert.Equal(t, 100, ins.upserted[0].Views)

	assert.Equal(t, 1, tmpl.TotalUses())
	assert.InDelta(t, 0.2, tmpl.AvgEngagementRate(), 0.0001)
	assert.Equal(t, []string{"media-1"}, client.calls)
}

func TestSync_SkipsTemplateUpdateWhenPostHasNoTemplate(t *testing.T) {
	p := postedPost(t, nil, "media-2")
	posts := &fakePostRepo{posts: []*post.Post{p}}
	accounts := newFakeSocialRepo()
	defaultAccount(t, accounts)
	ins := &fakeInsightsRepo{}
	templates := newFakeTemplateRepo()
	client := &fakeSocialClient{fetchFn: func(mediaID, token string) (*threads.Insights, error) {
		return &threads.Insights{Views: 50, Likes: 1, Replies: 0, Reposts: 0}, nil
	}}

	syncer := New(posts, accounts, ins, templates, client, fakeDecrypter{}, noopLogger{})
	n, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, ins.upserted, 1)
}

func TestSync_OnePostFailureDoesNotAbortTheSweep(t *testing.T) {
	tmpl, err := template.New("launch", "announce a launch", "primary")
	require.NoError(t, err)
	templates := newFakeTemplateRepo()
	templates.templates[tmpl.ID()] = tmpl
	tid := tmpl.ID()

	ok := postedPost(t, &tid, "media-ok")
	bad := postedPost(t, &tid, "media-bad")
	posts := &fakePostRepo{posts: []*post.Post{bad, ok}}
	accounts := newFakeSocialRepo()
	defaultAccount(t, accounts)
	ins := &fakeInsightsRepo{}
	client := &fakeSocialClient{fetchFn: func(mediaID, token string) (*threads.Insights, error) {
		if mediaID == "media-bad" {
			return nil, assert.AnError
		}
		return &threads.Insights{Views: 10, Likes: 1, Replies: 0, Reposts: 0}, nil
	}}

	syncer := New(posts, accounts, ins, templates, client, fakeDecrypter{}, noopLogger{})
	n, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, ins.upserted, 1)
	assert.Equal(t, ok.ID(), ins.upserted[0].PostID)
}

func TestSync_NoAccountTokenFailsGracefully(t *testing.T) {
	p := postedPost(t, nil, "media-3")
	posts := &fakePostRepo{posts: []*post.Post{p}}
	accounts := newFakeSocialRepo() // no default account configured
	ins := &fakeInsightsRepo{}
	templates := newFakeTemplateRepo()
	client := &fakeSocialClient{fetchFn: func(mediaID, token string) (*threads.Insights, error) {
		t.Fatal("social client must not be called when account resolution fails")
		return nil, nil
	}}

	syncer := New(posts, accounts, ins, templates, client, fakeDecrypter{}, noopLogger{})
	n, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, ins.upserted)
}
