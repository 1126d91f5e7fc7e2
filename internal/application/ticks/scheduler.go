// path: internal/application/ticks/scheduler.go
// Package ticks implements the Scheduler (spec §4.K): the set of periodic
// tick functions that expire stale work, dispatch due auto-schedules,
// trigger the token-refresh and insights sweeps, materialize each day's
// auto-schedule, and send reviewers a daily reminder.
package ticks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/publish"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/review"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/scheduling"
)

// ExpiringReviewWindow is how far ahead an unreviewed GENERATED auto-schedule
// is considered "about to come due" for the every-5-min expiry sweep
// (spec §4.K: "within the next 10 min").
const ExpiringReviewWindow = 10 * time.Minute

// DispatchHorizon bounds how far in the future a due-schedule dispatch looks
// (spec §4.K: "dispatch due APPROVED DailyAutoSchedules").
const DispatchHorizon = 0

// ReviewExpirer is the subset of *review.Coordinator the Scheduler needs.
type ReviewExpirer interface {
	ExpireStale(ctx context.Context, before time.Time) (int, error)
}

// TokenScanner is the subset of *tokenlifecycle.Lifecycle the Scheduler
// needs for the 6h scan tick.
type TokenScanner interface {
	Scan(ctx context.Context) (int, error)
}

// InsightsSyncer is the subset of *insightssync.Syncer the Scheduler needs
// for the 4h sweep tick.
type InsightsSyncer interface {
	Sync(ctx context.Context) (int, error)
}

// AutoScheduleMaterializer is the subset of *ucb.Selector the Scheduler
// needs for the "ensure today's auto-schedule exists" tick.
type AutoScheduleMaterializer interface {
	MaterializeToday(ctx context.Context) error
}

// PublishEnqueuer hands a publish job to the queue.
type PublishEnqueuer interface {
	EnqueuePublish(ctx context.Context, payload publish.PublishPayload) error
}

// ChatNotifier is the subset of *chat.Notifier the Scheduler needs for the
// daily review-reminder tick.
type ChatNotifier interface {
	SendText(ctx context.Context, userID, text string) error
}

// Scheduler implements every periodic tick described by spec §4.K. Each
// exported method is one tick function, meant to be driven by its own
// ticker loop in cmd/worker; the tickGuard here is the "process-wide
// cooperative guard" that keeps a slow run of one tick from overlapping
// itself within the same process (spec §5), while cross-process overlap is
// still safe because every mutation below goes through an atomic Store
// claim or a precondition-checked domain transition.
type Scheduler struct {
	reviews       ReviewExpirer
	reviewRepo    review.Repository
	schedules     scheduling.AutoScheduleRepository
	posts         post.Repository
	config        scheduling.ConfigRepository
	tokenScanner  TokenScanner
	insights      InsightsSyncer
	ucbSelector   AutoScheduleMaterializer
	publishQueue  PublishEnqueuer
	notifier      ChatNotifier
	logger        common.Logger

	guards tickGuards
}

type tickGuards struct {
	expireReviews     sync.Mutex
	expireSchedules   sync.Mutex
	dispatchSchedules sync.Mutex
	tokenScan         sync.Mutex
	insightsSync      sync.Mutex
	ensureSchedule    sync.Mutex
	reviewReminders   sync.Mutex
}

// New builds a Scheduler.
func New(reviews ReviewExpirer, reviewRepo review.Repository, schedules scheduling.AutoScheduleRepository, posts post.Repository, config scheduling.ConfigRepository, tokenScanner TokenScanner, insights InsightsSyncer, ucbSelector AutoScheduleMaterializer, publishQueue PublishEnqueuer, notifier ChatNotifier, logger common.Logger) *Scheduler {
	return &Scheduler{
		reviews:      reviews,
		reviewRepo:   reviewRepo,
		schedules:    schedules,
		posts:        posts,
		config:       config,
		tokenScanner: tokenScanner,
		insights:     insights,
		ucbSelector:  ucbSelector,
		publishQueue: publishQueue,
		notifier:     notifier,
		logger:       logger,
	}
}

// ExpireStalePendingReviews runs the every-5-min ReviewRequest expiry half
// of the sweep (spec §4.K).
func (s *Scheduler) ExpireStalePendingReviews(ctx context.Context) (int, error) {
	if !s.guards.expireReviews.TryLock() {
		s.logger.Debug("expire stale reviews tick already running, skipped")
		return 0, nil
	}
	defer s.guards.expireReviews.Unlock()

	n, err := s.reviews.ExpireStale(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired stale review requests", "count", n)
	}
	return n, nil
}

// ExpireUnreviewedAutoSchedules runs the every-5-min auto-schedule half of
// the sweep: a GENERATED schedule coming due within ExpiringReviewWindow
// whose post is still PENDING_REVIEW is marked EXPIRED and its draft post
// purged, so no publish job is ever enqueued for it (spec §4.K, §8 test 5).
func (s *Scheduler) ExpireUnreviewedAutoSchedules(ctx context.Context) (int, error) {
	if !s.guards.expireSchedules.TryLock() {
		s.logger.Debug("expire unreviewed schedules tick already running, skipped")
		return 0, nil
	}
	defer s.guards.expireSchedules.Unlock()

	expiring, err := s.schedules.FindExpiringUnreviewed(ctx, ExpiringReviewWindow)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, sched := range expiring {
		if sched.PostID() == nil {
			continue
		}
		p, err := s.posts.FindByID(ctx, *sched.PostID())
		if err != nil {
			s.logger.Error("failed to load draft post for expiring schedule", "scheduleId", sched.ID(), "error", err.Error())
			continue
		}
		if p.Status() != post.StatusPendingReview {
			continue
		}
		if err := sched.Expire(); err != nil {
			continue
		}
		if err := s.schedules.Update(ctx, sched); err != nil {
			s.logger.Error("failed to expire auto-schedule", "scheduleId", sched.ID(), "error", err.Error())
			continue
		}
		if err := s.posts.DeleteDraft(ctx, p.ID()); err != nil {
			s.logger.Error("failed to purge expired draft post", "postId", p.ID(), "error", err.Error())
			continue
		}
		expired++
	}
	if expired > 0 {
		s.logger.Info("expired unreviewed auto-schedules", "count", expired)
	}
	return expired, nil
}

// DispatchDueAutoSchedules runs the every-5-min dispatch tick: every
// APPROVED auto-schedule whose scheduledTime has arrived moves to
// PUBLISHING and its post is handed to the publish queue (spec §4.K).
func (s *Scheduler) DispatchDueAutoSchedules(ctx context.Context) (int, error) {
	if !s.guards.dispatchSchedules.TryLock() {
		s.logger.Debug("dispatch due schedules tick already running, skipped")
		return 0, nil
	}
	defer s.guards.dispatchSchedules.Unlock()

	due, err := s.schedules.FindDueForDispatch(ctx, DispatchHorizon)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, sched := range due {
		if sched.PostID() == nil {
			continue
		}
		if err := sched.MarkPublishing(); err != nil {
			// Already dispatched by a concurrent tick/process; not an error.
			continue
		}
		if err := s.schedules.Update(ctx, sched); err != nil {
			s.logger.Error("failed to mark auto-schedule publishing", "scheduleId", sched.ID(), "error", err.Error())
			continue
		}
		if err := s.publishQueue.EnqueuePublish(ctx, publish.PublishPayload{PostID: *sched.PostID()}); err != nil {
			s.logger.Error("failed to enqueue publish job for due schedule", "scheduleId", sched.ID(), "error", err.Error())
			continue
		}
		dispatched++
	}
	if dispatched > 0 {
		s.logger.Info("dispatched due auto-schedules", "count", dispatched)
	}
	return dispatched, nil
}

// RunTokenLifecycleScan runs the 6h TokenLifecycle scan (spec §4.K/§4.J).
func (s *Scheduler) RunTokenLifecycleScan(ctx context.Context) (int, error) {
	if !s.guards.tokenScan.TryLock() {
		s.logger.Debug("token lifecycle scan tick already running, skipped")
		return 0, nil
	}
	defer s.guards.tokenScan.Unlock()
	return s.tokenScanner.Scan(ctx)
}

// RunInsightsSync runs the 4h InsightsSync sweep (spec §4.K/§4.M).
func (s *Scheduler) RunInsightsSync(ctx context.Context) (int, error) {
	if !s.guards.insightsSync.TryLock() {
		s.logger.Debug("insights sync tick already running, skipped")
		return 0, nil
	}
	defer s.guards.insightsSync.Unlock()
	return s.insights.Sync(ctx)
}

// EnsureTodaysAutoSchedule runs the every-10-min tick that materializes the
// day's auto-schedule exactly once (spec §4.K). It is a no-op when
// auto-scheduling is disabled, unconfigured, today is not an active day, or
// a non-terminal schedule for today already exists.
func (s *Scheduler) EnsureTodaysAutoSchedule(ctx context.Context) error {
	if !s.guards.ensureSchedule.TryLock() {
		s.logger.Debug("ensure today's auto-schedule tick already running, skipped")
		return nil
	}
	defer s.guards.ensureSchedule.Unlock()

	cfg, err := s.config.Get(ctx)
	if err != nil {
		return err
	}
	if !cfg.AutoScheduleEnabled || cfg.AIPrompt == "" {
		return nil
	}

	now := time.Now()
	if !cfg.ActiveOn(isoWeekday(now)) {
		return nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	_, err = s.schedules.FindNonTerminalByDate(ctx, today)
	if err == nil {
		return nil
	}
	if !errors.Is(err, scheduling.ErrNotFound) {
		return err
	}

	if err := s.ucbSelector.MaterializeToday(ctx); err != nil {
		return err
	}
	s.logger.Info("materialized today's auto-schedule")
	return nil
}

// SendDailyReviewReminders runs the daily tick that nudges the reviewer
// about any outstanding PENDING review requests (spec §4.K).
func (s *Scheduler) SendDailyReviewReminders(ctx context.Context) (int, error) {
	if !s.guards.reviewReminders.TryLock() {
		s.logger.Debug("review reminders tick already running, skipped")
		return 0, nil
	}
	defer s.guards.reviewReminders.Unlock()

	counts, err := s.reviewRepo.CountPendingByReviewer(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0, nil
	}

	cfg, err := s.config.Get(ctx)
	if err != nil {
		return 0, err
	}
	if cfg.LineUserID == "" {
		s.logger.Warn("skipping review reminder, no reviewer chat id configured", "pending", total)
		return 0, nil
	}
	text := fmt.Sprintf("You have %d post(s) awaiting review.", total)
	if err := s.notifier.SendText(ctx, cfg.LineUserID, text); err != nil {
		return 0, err
	}
	return total, nil
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
