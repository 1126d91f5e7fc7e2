// path: internal/application/ucb/selector_test.go
package ucb

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/socialqueue-ucb/internal/application/pipeline"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/insights"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/scheduling"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/template"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/timeslot"
)

type fakeTemplateRepo struct {
	enabled []*template.Template
}

func (f *fakeTemplateRepo) FindByID(ctx context.Context, id uuid.UUID) (*template.Template, error) {
	for _, t := range f.enabled {
		if t.ID() == id {
			return t, nil
		}
	}
	return nil, template.ErrNotFound
}
func (f *fakeTemplateRepo) FindEnabled(ctx context.Context) ([]*template.Template, error) {
	return append([]*template.Template{}, f.enabled...), nil
}
func (f *fakeTemplateRepo) List(ctx context.Context) ([]*template.Template, error) { return f.enabled, nil }
func (f *fakeTemplateRepo) Create(ctx context.Context, t *template.Template) error  { return nil }
func (f *fakeTemplateRepo) Update(ctx context.Context, t *template.Template) error  { return nil }
func (f *fakeTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error          { return nil }
func (f *fakeTemplateRepo) WithRowLock(ctx context.Context, id uuid.UUID, fn func(t *template.Template) error) error {
	t, err := f.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return fn(t)
}

type fakeTimeslotRepo struct {
	eligible []*timeslot.TimeSlot
}

func (f *fakeTimeslotRepo) FindByID(ctx context.Context, id uuid.UUID) (*timeslot.TimeSlot, error) {
	for _, sl := range f.eligible {
		if sl.ID() == id {
			return sl, nil
		}
	}
	return nil, timeslot.ErrNotFound
}
func (f *fakeTimeslotRepo) FindEligible(ctx context.Context, dayOfWeek int) ([]*timeslot.TimeSlot, error) {
	return append([]*timeslot.TimeSlot{}, f.eligible...), nil
}
func (f *fakeTimeslotRepo) List(ctx context.Context) ([]*timeslot.TimeSlot, error) { return f.eligible, nil }
func (f *fakeTimeslotRepo) Create(ctx context.Context, t *timeslot.TimeSlot) error  { return nil }
func (f *fakeTimeslotRepo) Update(ctx context.Context, t *timeslot.TimeSlot) error  { return nil }
func (f *fakeTimeslotRepo) Delete(ctx context.Context, id uuid.UUID) error          { return nil }

type fakeScheduleRepo struct {
	created []*scheduling.AutoSchedule
	updated []*scheduling.AutoSchedule
}

func (f *fakeScheduleRepo) FindByID(ctx context.Context, id uuid.UUID) (*scheduling.AutoSchedule, error) {
	for _, s := range f.created {
		if s.ID() == id {
			return s, nil
		}
	}
	return nil, scheduling.ErrNotFound
}
func (f *fakeScheduleRepo) FindByDate(ctx context.Context, date time.Time) (*scheduling.AutoSchedule, error) {
	return nil, scheduling.ErrNotFound
}
func (f *fakeScheduleRepo) FindNonTerminalByDate(ctx context.Context, date time.Time) (*scheduling.AutoSchedule, error) {
	return nil, scheduling.ErrNotFound
}
func (f *fakeScheduleRepo) Create(ctx context.Context, s *scheduling.AutoSchedule) error {
	f.created = append(f.created, s)
	return nil
}
func (f *fakeScheduleRepo) Update(ctx context.Context, s *scheduling.AutoSchedule) error {
	f.updated = append(f.updated, s)
	return nil
}
func (f *fakeScheduleRepo) FindDueForDispatch(ctx context.Context, horizon time.Duration) ([]*scheduling.AutoSchedule, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) FindExpiringUnreviewed(ctx context.Context, horizon time.Duration) ([]*scheduling.AutoSchedule, error) {
	return nil, nil
}
func (f *fakeScheduleRepo) ListRecent(ctx context.Context, limit int) ([]*scheduling.AutoSchedule, error) {
	return f.created, nil
}

type fakeConfigRepo struct {
	cfg *scheduling.Config
}

func (f *fakeConfigRepo) Get(ctx context.Context) (*scheduling.Config, error) { return f.cfg, nil }
func (f *fakeConfigRepo) Save(ctx context.Context, c *scheduling.Config) error {
	f.cfg = c
	return nil
}

type fakeInsightsRepo struct {
	slotStats map[uuid.UUID]insights.SlotStat
	logs      []*insights.PerformanceLog
}

func (f *fakeInsightsRepo) Upsert(ctx context.Context, p *insights.PostInsights) error { return nil }
func (f *fakeInsightsRepo) FindByPostID(ctx context.Context, postID uuid.UUID) (*insights.PostInsights, error) {
	return nil, insights.ErrNotFound
}
func (f *fakeInsightsRepo) CreatePerformanceLog(ctx context.Context, l *insights.PerformanceLog) error {
	f.logs = append(f.logs, l)
	return nil
}
func (f *fakeInsightsRepo) SlotStats(ctx context.Context, timeSlotIDs []uuid.UUID) (map[uuid.UUID]insights.SlotStat, error) {
	return f.slotStats, nil
}

type fakePostRepo struct {
	created []*post.Post
}

func (f *fakePostRepo) Create(ctx context.Context, p *post.Post) error {
	f.created = append(f.created, p)
	return nil
}
func (f *fakePostRepo) Update(ctx context.Context, p *post.Post) error { return nil }
func (f *fakePostRepo) FindByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	for _, p := range f.created {
		if p.ID() == id {
			return p, nil
		}
	}
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
	return nil, nil
}

type fakeGenerateEnqueuer struct {
	enqueued []pipeline.GeneratePayload
}

func (f *fakeGenerateEnqueuer) EnqueueGenerate(ctx context.Context, payload pipeline.GeneratePayload) error {
	f.enqueued = append(f.enqueued, payload)
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...interface{}) {}
func (noopLogger) Info(msg string, fields ...interface{})  {}
func (noopLogger) Warn(msg string, fields ...interface{})  {}
func (noopLogger) Error(msg string, fields ...interface{}) {}

func mustTemplate(t *testing.T, name, prompt string, totalUses int, avg float64) *template.Template {
	tpl, err := template.New(name, prompt, "gemini")
	require.NoError(t, err)
	return template.Reconstruct(tpl.ID(), name, prompt, "gemini", true, totalUses, avg)
}

func mustSlot(t *testing.T, label string, startHour, endHour int) *timeslot.TimeSlot {
	sl, err := timeslot.New(label, startHour, 0, endHour, 0, []int{1, 2, 3, 4, 5, 6, 7})
	require.NoError(t, err)
	return sl
}

func TestMaterialize_ForcesExplorationOnUndertriedTemplate(t *testing.T) {
	wellTried := mustTemplate(t, "evergreen", "write something evergreen", 50, 0.4)
	undertried := mustTemplate(t, "fresh-angle", "write something fresh", 1, 0.9)
	slot := mustSlot(t, "morning", 9, 12)

	templates := &fakeTemplateRepo{enabled: []*template.Template{wellTried, undertried}}
	slots := &fakeTimeslotRepo{eligible: []*timeslot.TimeSlot{slot}}
	schedules := &fakeScheduleRepo{}
	cfgRepo := &fakeConfigRepo{cfg: &scheduling.Config{ExplorationFactor: 1.4, MinTrialsPerTemplate: 5}}
	insightsRepo := &fakeInsightsRepo{}
	posts := &fakePostRepo{}
	enqueuer := &fakeGenerateEnqueuer{}

	sel := New(templates, slots, schedules, cfgRepo, insightsRepo, posts, enqueuer, noopLogger{}, uuid.New())

	day := time.Now().In(sel.loc).AddDate(0, 0, 1)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, sel.loc)
	require.NoError(t, sel.Materialize(context.Background(), day))

	require.Len(t, schedules.created, 1)
	assert.Equal(t, undertried.ID(), schedules.created[0].SelectedTemplateID())
	require.Len(t, posts.created, 1)
	assert.Equal(t, undertried.ID(), *posts.created[0].TemplateID())
	require.Len(t, enqueuer.enqueued, 1)
	assert.Equal(t, posts.created[0].ID(), enqueuer.enqueued[0].PostID)
	assert.Equal(t, scheduling.StatusGenerated, schedules.created[0].Status())
}

func TestMaterialize_PicksHigherEngagementWhenAllTemplatesMature(t *testing.T) {
	weak := mustTemplate(t, "weak", "weak prompt", 20, 0.1)
	strong := mustTemplate(t, "strong", "strong prompt", 20, 0.6)
	slot := mustSlot(t, "afternoon", 13, 17)

	templates := &fakeTemplateRepo{enabled: []*template.Template{weak, strong}}
	slots := &fakeTimeslotRepo{eligible: []*timeslot.TimeSlot{slot}}
	schedules := &fakeScheduleRepo{}
	cfgRepo := &fakeConfigRepo{cfg: &scheduling.Config{ExplorationFactor: 1.4, MinTrialsPerTemplate: 5}}
	insightsRepo := &fakeInsightsRepo{}
	posts := &fakePostRepo{}
	enqueuer := &fakeGenerateEnqueuer{}

	sel := New(templates, slots, schedules, cfgRepo, insightsRepo, posts, enqueuer, noopLogger{}, uuid.New())
	day := time.Now().In(sel.loc).AddDate(0, 0, 1)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, sel.loc)
	require.NoError(t, sel.Materialize(context.Background(), day))

	assert.Equal(t, strong.ID(), schedules.created[0].SelectedTemplateID())
}

func TestMaterialize_BreaksTiesByLowestTotalUsesThenID(t *testing.T) {
	a, err := template.New("alpha", "prompt a", "gemini")
	require.NoError(t, err)
	b, err := template.New("beta", "prompt b", "gemini")
	require.NoError(t, err)
	// Identical avg and totalUses: tie-break falls to lexicographic id.
	tplA := template.Reconstruct(a.ID(), "alpha", "prompt a", "gemini", true, 10, 0.3)
	tplB := template.Reconstruct(b.ID(), "beta", "prompt b", "gemini", true, 10, 0.3)
	want := tplA
	if tplB.ID().String() < tplA.ID().String() {
		want = tplB
	}

	slot := mustSlot(t, "evening", 18, 21)
	templates := &fakeTemplateRepo{enabled: []*template.Template{tplA, tplB}}
	slots := &fakeTimeslotRepo{eligible: []*timeslot.TimeSlot{slot}}
	schedules := &fakeScheduleRepo{}
	cfgRepo := &fakeConfigRepo{cfg: &scheduling.Config{ExplorationFactor: 1.4, MinTrialsPerTemplate: 5}}
	insightsRepo := &fakeInsightsRepo{}
	posts := &fakePostRepo{}
	enqueuer := &fakeGenerateEnqueuer{}

	sel := New(templates, slots, schedules, cfgRepo, insightsRepo, posts, enqueuer, noopLogger{}, uuid.New())
	day := time.Now().In(sel.loc).AddDate(0, 0, 1)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, sel.loc)
	require.NoError(t, sel.Materialize(context.Background(), day))

	assert.Equal(t, want.ID(), schedules.created[0].SelectedTemplateID())
}

func TestMaterialize_FallsBackToFirstEligibleSlotWithoutStats(t *testing.T) {
	tpl := mustTemplate(t, "only", "only prompt", 10, 0.3)
	slotA := mustSlot(t, "first", 9, 11)
	slotB := mustSlot(t, "second", 14, 16)

	templates := &fakeTemplateRepo{enabled: []*template.Template{tpl}}
	slots := &fakeTimeslotRepo{eligible: []*timeslot.TimeSlot{slotA, slotB}}
	schedules := &fakeScheduleRepo{}
	cfgRepo := &fakeConfigRepo{cfg: &scheduling.Config{ExplorationFactor: 1.4, MinTrialsPerTemplate: 5}}
	insightsRepo := &fakeInsightsRepo{slotStats: map[uuid.UUID]insights.SlotStat{}}
	posts := &fakePostRepo{}
	enqueuer := &fakeGenerateEnqueuer{}

	sel := New(templates, slots, schedules, cfgRepo, insightsRepo, posts, enqueuer, noopLogger{}, uuid.New())
	day := time.Now().In(sel.loc).AddDate(0, 0, 1)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, sel.loc)
	require.NoError(t, sel.Materialize(context.Background(), day))

	assert.Equal(t, slotA.ID(), schedules.created[0].SelectedTimeSlotID())
}

func TestMaterialize_ScheduledInstantFallsWithinSlotWindow(t *testing.T) {
	tpl := mustTemplate(t, "only", "only prompt", 10, 0.3)
	slot := mustSlot(t, "window", 10, 12)

	templates := &fakeTemplateRepo{enabled: []*template.Template{tpl}}
	slots := &fakeTimeslotRepo{eligible: []*timeslot.TimeSlot{slot}}
	schedules := &fakeScheduleRepo{}
	cfgRepo := &fakeConfigRepo{cfg: &scheduling.Config{ExplorationFactor: 1.4, MinTrialsPerTemplate: 5}}
	insightsRepo := &fakeInsightsRepo{}
	posts := &fakePostRepo{}
	enqueuer := &fakeGenerateEnqueuer{}

	sel := New(templates, slots, schedules, cfgRepo, insightsRepo, posts, enqueuer, noopLogger{}, uuid.New())
	day := time.Now().In(sel.loc).AddDate(0, 0, 2)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, sel.loc)
	require.NoError(t, sel.Materialize(context.Background(), day))

	scheduledTime := schedules.created[0].ScheduledTime()
	assert.Equal(t, day.Year(), scheduledTime.Year())
	assert.Equal(t, day.YearDay(), scheduledTime.YearDay())
	assert.True(t, scheduledTime.Hour() >= 10 && scheduledTime.Hour() <= 12)
}
