// path: cmd/worker/cleanup.go
// SweepProcessor drives the every-5-min half of the Scheduler's periodic
// ticks (spec §4.K): expiring stale review requests and unreviewed
// auto-schedules, then dispatching due auto-schedules to the publish queue.
package main

import (
	"context"
	"time"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/ticks"
)

const sweepInterval = 5 * time.Minute

// SweepProcessor runs the Scheduler's 5-min tick group.
type SweepProcessor struct {
	scheduler *ticks.Scheduler
	logger    common.Logger
	stop      chan struct{}
}

func NewSweepProcessor(scheduler *ticks.Scheduler, logger common.Logger) *SweepProcessor {
	return &SweepProcessor{scheduler: scheduler, logger: logger, stop: make(chan struct{})}
}

func (p *SweepProcessor) Name() string { return "SweepProcessor" }

func (p *SweepProcessor) Run(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	p.runSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.stop:
			return nil
		case <-ticker.C:
			p.runSweep(ctx)
		}
	}
}

func (p *SweepProcessor) runSweep(ctx context.Context) {
	if _, err := p.scheduler.ExpireStalePendingReviews(ctx); err != nil {
		p.logger.Error("expire stale pending reviews failed", "error", err.Error())
	}
	if _, err := p.scheduler.ExpireUnreviewedAutoSchedules(ctx); err != nil {
		p.logger.Error("expire unreviewed auto-schedules failed", "error", err.Error())
	}
	if _, err := p.scheduler.DispatchDueAutoSchedules(ctx); err != nil {
		p.logger.Error("dispatch due auto-schedules failed", "error", err.Error())
	}
}

func (p *SweepProcessor) Stop(ctx context.Context) error {
	close(p.stop)
	return nil
}
