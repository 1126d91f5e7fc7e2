// path: internal/application/ucb/selector.go
// Package ucb implements UCBSelector (spec §4.L): picks a template and time
// slot for a calendar day via UCB1, derives an exact scheduled instant,
// persists the DailyAutoSchedule row, and materializes the DRAFT post that
// starts the content pipeline.
package ucb

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/pipeline"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/insights"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/scheduling"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/template"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/timeslot"
)

// SchedulingTimezone is the local calendar the selector reasons in
// (spec §4.L: "timezone = Asia/Taipei").
const SchedulingTimezone = "Asia/Taipei"

// GenerateEnqueuer hands a content-generation job to the queue.
type GenerateEnqueuer interface {
	EnqueueGenerate(ctx context.Context, payload pipeline.GeneratePayload) error
}

// Selector implements UCBSelector.
type Selector struct {
	templates template.Repository
	timeslots timeslot.Repository
	schedules scheduling.AutoScheduleRepository
	config    scheduling.ConfigRepository
	insights  insights.Repository
	posts     post.Repository
	generate  GenerateEnqueuer
	logger    common.Logger
	createdBy uuid.UUID
	loc       *time.Location
}

// New builds a Selector. createdBy is the system/service account attributed
// as the author of UCB-produced draft posts.
func New(templates template.Repository, timeslots timeslot.Repository, schedules scheduling.AutoScheduleRepository, config scheduling.ConfigRepository, insightsRepo insights.Repository, posts post.Repository, generate GenerateEnqueuer, logger common.Logger, createdBy uuid.UUID) *Selector {
	loc, err := time.LoadLocation(SchedulingTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &Selector{
		templates: templates,
		timeslots: timeslots,
		schedules: schedules,
		config:    config,
		insights:  insightsRepo,
		posts:     posts,
		generate:  generate,
		logger:    logger,
		createdBy: createdBy,
		loc:       loc,
	}
}

// MaterializeToday runs the full selection and draft-creation flow for
// today's local calendar day (spec §4.L steps 1-7, invoked by the
// Scheduler's "ensure today's auto-schedule exists" tick).
func (s *Selector) MaterializeToday(ctx context.Context) error {
	now := time.Now().In(s.loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return s.Materialize(ctx, day)
}

// Materialize runs the selection flow for an arbitrary local calendar day,
// exposed separately from MaterializeToday for deterministic testing.
func (s *Selector) Materialize(ctx context.Context, day time.Time) error {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return err
	}

	dayOfWeek := isoWeekday(day)
	templates, err := s.templates.FindEnabled(ctx)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		return fmt.Errorf("ucb selector: no enabled templates available")
	}
	slots, err := s.timeslots.FindEligible(ctx, dayOfWeek)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		return fmt.Errorf("ucb selector: no eligible time slots for day-of-week %d", dayOfWeek)
	}

	chosenTemplate, templateReason, wasExploration := selectTemplate(templates, cfg.MinTrialsPerTemplate, cfg.ExplorationFactor)

	slotIDs := make([]uuid.UUID, len(slots))
	for i, sl := range slots {
		slotIDs[i] = sl.ID()
	}
	slotStats, err := s.insights.SlotStats(ctx, slotIDs)
	if err != nil {
		return err
	}
	chosenSlot, slotReason := selectTimeSlot(slots, slotStats, cfg.MinTrialsPerTemplate, cfg.ExplorationFactor)

	scheduledTime := deriveScheduledInstant(chosenSlot, day, s.loc)

	reason := fmt.Sprintf("template: %s (%s); slot: %s (%s)", chosenTemplate.Name(), templateReason, chosenSlot.Label(), slotReason)
	ucbScore := templateUCBScore(chosenTemplate, cfg.MinTrialsPerTemplate, cfg.ExplorationFactor, sumTotalUses(templates))

	schedule, err := scheduling.New(day, scheduledTime, chosenSlot.ID(), chosenTemplate.ID(), ucbScore, reason)
	if err != nil {
		return err
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return err
	}

	draft, err := post.NewPost(s.createdBy, true, chosenTemplate.Prompt(), nil, ptr(schedule.ID()))
	if err != nil {
		return err
	}
	// The scheduled instant lives on the AutoSchedule row, not the post
	// itself: Post.SetScheduledFor is for the manual flow and rejects any
	// post already tied to an auto-schedule.
	draft.AssignTemplate(chosenTemplate.ID())
	if err := s.posts.Create(ctx, draft); err != nil {
		return err
	}

	if err := schedule.MaterializeDraft(draft.ID()); err != nil {
		return err
	}
	if err := s.schedules.Update(ctx, schedule); err != nil {
		return err
	}

	if err := s.generate.EnqueueGenerate(ctx, pipeline.GeneratePayload{PostID: draft.ID(), Prompt: chosenTemplate.Prompt()}); err != nil {
		return err
	}

	s.logger.Info("ucb selector materialized auto-schedule", "scheduleId", schedule.ID(), "postId", draft.ID(), "template", chosenTemplate.Name(), "slot", chosenSlot.Label(), "wasExploration", wasExploration)
	return nil
}

func selectTemplate(templates []*template.Template, minTrials int, explorationFactor float64) (*template.Template, string, bool) {
	n := sumTotalUses(templates)

	sort.Slice(templates, func(i, j int) bool { return templates[i].ID().String() < templates[j].ID().String() })

	var best *template.Template
	bestUCB := math.Inf(-1)
	bestExploration := false

	for _, t := range templates {
		ucb, isExploration := ucbValue(t.TotalUses(), t.AvgEngagementRate(), minTrials, explorationFactor, n)
		if better(ucb, t.TotalUses(), t.ID(), bestUCB, pickTotalUses(best), pickID(best)) {
			best = t
			bestUCB = ucb
			bestExploration = isExploration
		}
	}

	reason := fmt.Sprintf("ucb=%.4f avgEngagement=%.4f totalUses=%d", bestUCB, best.AvgEngagementRate(), best.TotalUses())
	if bestExploration {
		reason = "forced exploration (" + reason + ")"
	} else {
		reason = "exploitation (" + reason + ")"
	}
	return best, reason, bestExploration
}

func templateUCBScore(t *template.Template, minTrials int, explorationFactor float64, n int) float64 {
	score, _ := ucbValue(t.TotalUses(), t.AvgEngagementRate(), minTrials, explorationFactor, n)
	return score
}

func selectTimeSlot(slots []*timeslot.TimeSlot, stats map[uuid.UUID]insights.SlotStat, minTrials int, explorationFactor float64) (*timeslot.TimeSlot, string) {
	if len(stats) == 0 {
		return slots[0], "no slot-level stats yet, chose first eligible slot"
	}

	n := 0
	for _, st := range stats {
		n += st.TotalUses
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].ID().String() < slots[j].ID().String() })

	var best *timeslot.TimeSlot
	bestUCB := math.Inf(-1)
	bestUses := 0

	for _, sl := range slots {
		st, ok := stats[sl.ID()]
		uses, avg := 0, 0.0
		if ok {
			uses, avg = st.TotalUses, st.AvgEngagement
		}
		ucb, _ := ucbValue(uses, avg, minTrials, explorationFactor, n)
		if best == nil || betterSlot(ucb, uses, sl.ID(), bestUCB, bestUses, best.ID()) {
			best = sl
			bestUCB = ucb
			bestUses = uses
		}
	}
	return best, fmt.Sprintf("ucb=%.4f totalUses=%d", bestUCB, bestUses)
}

// ucbValue computes UCB1 for one arm: +Inf while under minTrials (forced
// exploration), else mean + explorationFactor*sqrt(ln(n)/uses) (spec §4.L
// step 2).
func ucbValue(uses int, mean float64, minTrials int, explorationFactor float64, n int) (float64, bool) {
	if uses < minTrials {
		return math.Inf(1), true
	}
	if n <= 1 {
		return mean, false
	}
	return mean + explorationFactor*math.Sqrt(math.Log(float64(n))/float64(uses)), false
}

// better reports whether candidate (ucb, uses, id) beats the current best
// (bestUCB, bestUses, bestID), applying spec §4.L step 3's tie-break order:
// highest UCB, then lowest totalUses, then lexicographic id.
func better(ucb float64, uses int, id uuid.UUID, bestUCB float64, bestUses int, bestID uuid.UUID) bool {
	if bestID == uuid.Nil {
		return true
	}
	if ucb != bestUCB {
		return ucb > bestUCB
	}
	if uses != bestUses {
		return uses < bestUses
	}
	return id.String() < bestID.String()
}

func betterSlot(ucb float64, uses int, id uuid.UUID, bestUCB float64, bestUses int, bestID uuid.UUID) bool {
	return better(ucb, uses, id, bestUCB, bestUses, bestID)
}

func pickTotalUses(t *template.Template) int {
	if t == nil {
		return 0
	}
	return t.TotalUses()
}

func pickID(t *template.Template) uuid.UUID {
	if t == nil {
		return uuid.Nil
	}
	return t.ID()
}

func sumTotalUses(templates []*template.Template) int {
	n := 0
	for _, t := range templates {
		n += t.TotalUses()
	}
	return n
}

// deriveScheduledInstant picks a uniformly random minute within the slot's
// window on day, advancing a day if that instant has already passed
// (spec §4.L step 5).
func deriveScheduledInstant(slot *timeslot.TimeSlot, day time.Time, loc *time.Location) time.Time {
	start, end := slot.WindowMinutes()
	span := end - start
	if span <= 0 {
		span = 1
	}
	minute := start + rand.Intn(span+1)
	instant := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc).Add(time.Duration(minute) * time.Minute)
	if instant.Before(time.Now()) {
		instant = instant.Add(24 * time.Hour)
	}
	return instant
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }
