// path: internal/application/ticks/scheduler_test.go
package ticks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/socialqueue-ucb/internal/application/publish"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/review"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/scheduling"
)

type fakeReviewExpirer struct {
	calls int
	n     int
}

func (f *fakeReviewExpirer) ExpireStale(ctx context.Context, before time.Time) (int, error) {
	f.calls++
	return f.n, nil
}

type fakeReviewRepo struct {
	counts map[uuid.UUID]int
}

func (f *fakeReviewRepo) Create(ctx context.Context, r *review.Request) error { return nil }
func (f *fakeReviewRepo) TryUse(ctx context.Context, token string, actingUserID uuid.UUID) (*review.Request, error) {
	return nil, review.ErrNotFound
}
func (f *fakeReviewRepo) FindByToken(ctx context.Context, token string) (*review.Request, error) {
	return nil, review.ErrNotFound
}
func (f *fakeReviewRepo) FindActiveByReviewer(ctx context.Context, reviewerID uuid.UUID) (*review.Request, error) {
	return nil, review.ErrNotFound
}
func (f *fakeReviewRepo) FindExpiring(ctx context.Context, before time.Time) ([]*review.Request, error) {
	return nil, nil
}
func (f *fakeReviewRepo) Update(ctx context.Context, r *review.Request) error { return nil }
func (f *fakeReviewRepo) CountPendingByReviewer(ctx context.Context) (map[uuid.UUID]int, error) {
	return f.counts, nil
}

type fakeScheduleRepo struct {
	expiringUnreviewed []*scheduling.AutoSchedule
	due                []*scheduling.AutoSchedule
	nonTerminal        *scheduling.AutoSchedule
	updated            []*scheduling.AutoSchedule
}

func (f *fakeScheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*scheduling.AutoSchedule, error) {
	return nil, scheduling.ErrNotFound
}
func (f *fakeScheduleRepo) FindByDate(ctx context.Context, date time.Time) (*scheduling.AutoSchedule, error) {
	return nil, scheduling.ErrNotFound
}
func (f *fakeScheduleRepo) FindNonTerminalByDate(ctx context.Context, date time.Time) (*scheduling.AutoSchedule, error) {
	if f.nonTerminal != nil {
		return f.nonTerminal, nil
	}
	return nil, scheduling.ErrNotFound
}
func (f *fakeScheduleRepo) Create(ctx context.Context, s *scheduling.AutoSchedule) error { return nil }
func (f *fakeScheduleRepo) Update(ctx context.Context, s *scheduling.AutoSchedule) error {
	f.updated = append(f.updated, s)
	return nil
}
func (f *fakeScheduleRepo) FindDueForDispatch(ctx context.Context, horizon time.Duration) ([]*scheduling.AutoSchedule, error) {
	return f.due, nil
}
func (f *fakeScheduleRepo) FindExpiringUnreviewed(ctx context.Context, horizon time.Duration) ([]*scheduling.AutoSchedule, error) {
	return f.expiringUnreviewed, nil
}
func (f *fakeScheduleRepo) ListRecent(ctx context.Context, limit int) ([]*scheduling.AutoSchedule, error) {
	return nil, nil
}

type fakePostRepo struct {
	posts   map[uuid.UUID]*post.Post
	deleted []uuid.UUID
}

func (f *fakePostRepo) Create(ctx context.Context, p *post.Post) error { return nil }
func (f *fakePostRepo) Update(ctx context.Context, p *post.Post) error { return nil }
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
func (f *fakePostRepo) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}
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
	return nil, nil
}

type fakeConfigRepo struct {
	cfg *scheduling.Config
}

func (f *fakeConfigRepo) Get(ctx context.Context) (*scheduling.Config, error) { return f.cfg, nil }
func (f *fakeConfigRepo) Save(ctx context.Context, c *scheduling.Config) error {
	f.cfg = c
	return nil
}

type fakeTokenScanner struct{ calls int }

func (f *fakeTokenScanner) Scan(ctx context.Context) (int, error) {
	f.calls++
	return 0, nil
}

type fakeInsightsSyncer struct{ calls int }

func (f *fakeInsightsSyncer) Sync(ctx context.Context) (int, error) {
	f.calls++
	return 0, nil
}

type fakeMaterializer struct {
	calls int
	err   error
}

func (f *fakeMaterializer) MaterializeToday(ctx context.Context) error {
	f.calls++
	return f.err
}

type fakePublishEnqueuer struct {
	enqueued []publish.PublishPayload
}

func (f *fakePublishEnqueuer) EnqueuePublish(ctx context.Context, payload publish.PublishPayload) error {
	f.enqueued = append(f.enqueued, payload)
	return nil
}

type fakeNotifier struct {
	sentTo   string
	sentText string
}

func (f *fakeNotifier) SendText(ctx context.Context, userID, text string) error {
	f.sentTo = userID
	f.sentText = text
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...interface{}) {}
func (noopLogger) Info(msg string, fields ...interface{})  {}
func (noopLogger) Warn(msg string, fields ...interface{})  {}
func (noopLogger) Error(msg string, fields ...interface{}) {}

func newScheduler(reviews *fakeReviewExpirer, reviewRepo *fakeReviewRepo, schedules *fakeScheduleRepo, posts *fakePostRepo, cfgRepo *fakeConfigRepo, tokenScanner *fakeTokenScanner, insights *fakeInsightsSyncer, materializer *fakeMaterializer, enqueuer *fakePublishEnqueuer, notifier *fakeNotifier) *Scheduler {
	return New(reviews, reviewRepo, schedules, posts, cfgRepo, tokenScanner, insights, materializer, enqueuer, notifier, noopLogger{})
}

func TestExpireStalePendingReviews_DelegatesToCoordinator(t *testing.T) {
	reviews := &fakeReviewExpirer{n: 3}
	sched := newScheduler(reviews, &fakeReviewRepo{}, &fakeScheduleRepo{}, &fakePostRepo{}, &fakeConfigRepo{cfg: &scheduling.Config{}}, &fakeTokenScanner{}, &fakeInsightsSyncer{}, &fakeMaterializer{}, &fakePublishEnqueuer{}, &fakeNotifier{})

	n, err := sched.ExpireStalePendingReviews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, reviews.calls)
}

func TestExpireUnreviewedAutoSchedules_ExpiresOnlyWhenPostStillPendingReview(t *testing.T) {
	schedID := uuid.New()
	postID := uuid.New()
	autoSched := scheduling.Reconstruct(schedID, time.Now(), time.Now(), &postID, uuid.New(), uuid.New(), 1.0, "reason", scheduling.StatusGenerated, nil, "")
	p := post.Reconstruct(postID, post.StatusPendingReview, uuid.New(), nil, nil, &schedID, nil, "", "", "", "", true, nil, "", nil, time.Now(), time.Now())

	schedules := &fakeScheduleRepo{expiringUnreviewed: []*scheduling.AutoSchedule{autoSched}}
	posts := &fakePostRepo{posts: map[uuid.UUID]*post.Post{postID: p}}
	sched := newScheduler(&fakeReviewExpirer{}, &fakeReviewRepo{}, schedules, posts, &fakeConfigRepo{cfg: &scheduling.Config{}}, &fakeTokenScanner{}, &fakeInsightsSyncer{}, &fakeMaterializer{}, &fakePublishEnqueuer{}, &fakeNotifier{})

	n, err := sched.ExpireUnreviewedAutoSchedules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, scheduling.StatusExpired, autoSched.Status())
	assert.Equal(t, []uuid.UUID{postID}, posts.deleted)
}

func TestExpireUnreviewedAutoSchedules_SkipsAlreadyApprovedPost(t *testing.T) {
	schedID := uuid.New()
	postID := uuid.New()
	autoSched := scheduling.Reconstruct(schedID, time.Now(), time.Now(), &postID, uuid.New(), uuid.New(), 1.0, "reason", scheduling.StatusGenerated, nil, "")
	p := post.Reconstruct(postID, post.StatusApproved, uuid.New(), nil, nil, &schedID, nil, "", "", "", "", true, nil, "", nil, time.Now(), time.Now())

	schedules := &fakeScheduleRepo{expiringUnreviewed: []*scheduling.AutoSchedule{autoSched}}
	posts := &fakePostRepo{posts: map[uuid.UUID]*post.Post{postID: p}}
	sched := newScheduler(&fakeReviewExpirer{}, &fakeReviewRepo{}, schedules, posts, &fakeConfigRepo{cfg: &scheduling.Config{}}, &fakeTokenScanner{}, &fakeInsightsSyncer{}, &fakeMaterializer{}, &fakePublishEnqueuer{}, &fakeNotifier{})

	n, err := sched.ExpireUnreviewedAutoSchedules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, scheduling.StatusGenerated, autoSched.Status())
	assert.Empty(t, posts.deleted)
}

func TestDispatchDueAutoSchedules_MarksPublishingAndEnqueues(t *testing.T) {
	schedID := uuid.New()
	postID := uuid.New()
	autoSched := scheduling.Reconstruct(schedID, time.Now(), time.Now(), &postID, uuid.New(), uuid.New(), 1.0, "reason", scheduling.StatusApproved, nil, "")

	schedules := &fakeScheduleRepo{due: []*scheduling.AutoSchedule{autoSched}}
	enqueuer := &fakePublishEnqueuer{}
	sched := newScheduler(&fakeReviewExpirer{}, &fakeReviewRepo{}, schedules, &fakePostRepo{}, &fakeConfigRepo{cfg: &scheduling.Config{}}, &fakeTokenScanner{}, &fakeInsightsSyncer{}, &fakeMaterializer{}, enqueuer, &fakeNotifier{})

	n, err := sched.DispatchDueAutoSchedules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, scheduling.StatusPublishing, autoSched.Status())
	require.Len(t, enqueuer.enqueued, 1)
	assert.Equal(t, postID, enqueuer.enqueued[0].PostID)
}

func TestEnsureTodaysAutoSchedule_SkipsWhenDisabled(t *testing.T) {
	cfgRepo := &fakeConfigRepo{cfg: &scheduling.Config{AutoScheduleEnabled: false}}
	materializer := &fakeMaterializer{}
	sched := newScheduler(&fakeReviewExpirer{}, &fakeReviewRepo{}, &fakeScheduleRepo{}, &fakePostRepo{}, cfgRepo, &fakeTokenScanner{}, &fakeInsightsSyncer{}, materializer, &fakePublishEnqueuer{}, &fakeNotifier{})

	require.NoError(t, sched.EnsureTodaysAutoSchedule(context.Background()))
	assert.Equal(t, 0, materializer.calls)
}

func TestEnsureTodaysAutoSchedule_SkipsWhenNonTerminalScheduleExists(t *testing.T) {
	cfgRepo := &fakeConfigRepo{cfg: &scheduling.Config{AutoScheduleEnabled: true, AIPrompt: "write a post", ActiveDays: []int{1, 2, 3, 4, 5, 6, 7}}}
	existing := scheduling.Reconstruct(uuid.New(), time.Now(), time.Now(), nil, uuid.New(), uuid.New(), 1.0, "r", scheduling.StatusGenerated, nil, "")
	schedules := &fakeScheduleRepo{nonTerminal: existing}
	materializer := &fakeMaterializer{}
	sched := newScheduler(&fakeReviewExpirer{}, &fakeReviewRepo{}, schedules, &fakePostRepo{}, cfgRepo, &fakeTokenScanner{}, &fakeInsightsSyncer{}, materializer, &fakePublishEnqueuer{}, &fakeNotifier{})

	require.NoError(t, sched.EnsureTodaysAutoSchedule(context.Background()))
	assert.Equal(t, 0, materializer.calls)
}

func TestEnsureTodaysAutoSchedule_MaterializesWhenEligible(t *testing.T) {
	cfgRepo := &fakeConfigRepo{cfg: &scheduling.Config{AutoScheduleEnabled: true, AIPrompt: "write a post", ActiveDays: []int{1, 2, 3, 4, 5, 6, 7}}}
	materializer := &fakeMaterializer{}
	sched := newScheduler(&fakeReviewExpirer{}, &fakeReviewRepo{}, &fakeScheduleRepo{}, &fakePostRepo{}, cfgRepo, &fakeTokenScanner{}, &fakeInsightsSyncer{}, materializer, &fakePublishEnqueuer{}, &fakeNotifier{})

	require.NoError(t, sched.EnsureTodaysAutoSchedule(context.Background()))
	assert.Equal(t, 1, materializer.calls)
}

func TestSendDailyReviewReminders_SendsWhenPendingExists(t *testing.T) {
	reviewerID := uuid.New()
	reviewRepo := &fakeReviewRepo{counts: map[uuid.UUID]int{reviewerID: 4}}
	cfgRepo := &fakeConfigRepo{cfg: &scheduling.Config{LineUserID: "U-admin"}}
	notifier := &fakeNotifier{}
	sched := newScheduler(&fakeReviewExpirer{}, reviewRepo, &fakeScheduleRepo{}, &fakePostRepo{}, cfgRepo, &fakeTokenScanner{}, &fakeInsightsSyncer{}, &fakeMaterializer{}, &fakePublishEnqueuer{}, notifier)

	n, err := sched.SendDailyReviewReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "U-admin", notifier.sentTo)
	assert.Contains(t, notifier.sentText, "4")
}

func TestSendDailyReviewReminders_NoopWhenNothingPending(t *testing.T) {
	reviewRepo := &fakeReviewRepo{counts: map[uuid.UUID]int{}}
	cfgRepo := &fakeConfigRepo{cfg: &scheduling.Config{LineUserID: "U-admin"}}
	notifier := &fakeNotifier{}
	sched := newScheduler(&fakeReviewExpirer{}, reviewRepo, &fakeScheduleRepo{}, &fakePostRepo{}, cfgRepo, &fakeTokenScanner{}, &fakeInsightsSyncer{}, &fakeMaterializer{}, &fakePublishEnqueuer{}, notifier)

	n, err := sched.SendDailyReviewReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, notifier.sentTo)
}

func TestRunTokenLifecycleScan_Delegates(t *testing.T) {
	scanner := &fakeTokenScanner{}
	sched := newScheduler(&fakeReviewExpirer{}, &fakeReviewRepo{}, &fakeScheduleRepo{}, &fakePostRepo{}, &fakeConfigRepo{cfg: &scheduling.Config{}}, scanner, &fakeInsightsSyncer{}, &fakeMaterializer{}, &fakePublishEnqueuer{}, &fakeNotifier{})
	_, err := sched.RunTokenLifecycleScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, scanner.calls)
}

func TestRunInsightsSync_Delegates(t *testing.T) {
	syncer := &fakeInsightsSyncer{}
	sched := newScheduler(&fakeReviewExpirer{}, &fakeReviewRepo{}, &fakeScheduleRepo{}, &fakePostRepo{}, &fakeConfigRepo{cfg: &scheduling.Config{}}, &fakeTokenScanner{}, syncer, &fakeMaterializer{}, &fakePublishEnqueuer{}, &fakeNotifier{})
	_, err := sched.RunInsightsSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, syncer.calls)
}
