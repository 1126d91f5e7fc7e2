// path: cmd/worker/fetch_analytics.go
// PeriodicProcessor drives the remaining Scheduler tick cadences (spec
// §4.K): the 6h token-lifecycle scan, the 4h insights sync sweep, the
// 10-min auto-schedule materialization check, and the daily review
// reminder.
package main

import (
	"context"
	"time"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/ticks"
)

const (
	tokenScanInterval      = 6 * time.Hour
	insightsSyncInterval   = 4 * time.Hour
	ensureScheduleInterval = 10 * time.Minute
	reviewReminderInterval = 24 * time.Hour
)

// PeriodicProcessor runs the Scheduler's longer-period tick group, each on
// its own ticker inside one select loop: ticks run one at a time, so a slow
// 6h scan delays the 10-min materialization check until it returns.
type PeriodicProcessor struct {
	scheduler *ticks.Scheduler
	logger    common.Logger
	stop      chan struct{}
}

func NewPeriodicProcessor(scheduler *ticks.Scheduler, logger common.Logger) *PeriodicProcessor {
	return &PeriodicProcessor{scheduler: scheduler, logger: logger, stop: make(chan struct{})}
}

func (p *PeriodicProcessor) Name() string { return "PeriodicProcessor" }

func (p *PeriodicProcessor) Run(ctx context.Context) error {
	tokenTicker := time.NewTicker(tokenScanInterval)
	defer tokenTicker.Stop()
	insightsTicker := time.NewTicker(insightsSyncInterval)
	defer insightsTicker.Stop()
	ensureTicker := time.NewTicker(ensureScheduleInterval)
	defer ensureTicker.Stop()
	reminderTicker := time.NewTicker(reviewReminderInterval)
	defer reminderTicker.Stop()

	p.runEnsureSchedule(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.stop:
			return nil
		case <-tokenTicker.C:
			if _, err := p.scheduler.RunTokenLifecycleScan(ctx); err != nil {
				p.logger.Error("token lifecycle scan failed", "error", err.Error())
			}
		case <-insightsTicker.C:
			if _, err := p.scheduler.RunInsightsSync(ctx); err != nil {
				p.logger.Error("insights sync failed", "error", err.Error())
			}
		case <-ensureTicker.C:
			p.runEnsureSchedule(ctx)
		case <-reminderTicker.C:
			if _, err := p.scheduler.SendDailyReviewReminders(ctx); err != nil {
				p.logger.Error("daily review reminder failed", "error", err.Error())
			}
		}
	}
}

func (p *PeriodicProcessor) runEnsureSchedule(ctx context.Context) {
	if err := p.scheduler.EnsureTodaysAutoSchedule(ctx); err != nil {
		p.logger.Error("ensure today's auto-schedule failed", "error", err.Error())
	}
}

func (p *PeriodicProcessor) Stop(ctx context.Context) error {
	close(p.stop)
	return nil
}
