// path: cmd/worker/queue_processor.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/jobqueue"
)

// leaseDuration bounds how long a worker may hold a reserved job before its
// lease is reclaimed by another worker (spec §5: "workers must periodically
// refresh the lease during long operations"). None of the three handlers
// below run long enough to need a mid-flight ExtendLease call.
const leaseDuration = 2 * time.Minute

// pollInterval is how often an idle worker slot checks for a reservable job.
const pollInterval = 1 * time.Second

// QueueProcessor drives jobqueue.Queue.Reserve/Complete/Fail for one queue
// across a fixed pool of concurrent workers (spec §4.B: "each queue owns a
// pool with fixed concurrency"), dispatching each reserved job's payload to
// a handler function.
type QueueProcessor struct {
	name        string
	queueName   string
	queue       *jobqueue.Queue
	concurrency int
	handle      func(ctx context.Context, payload json.RawMessage) error
	logger      common.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewQueueProcessor builds a QueueProcessor for queueName, running at
// jobqueue.DefaultConcurrency[queueName] worker slots unless overridden.
func NewQueueProcessor(name, queueName string, queue *jobqueue.Queue, logger common.Logger, handle func(ctx context.Context, payload json.RawMessage) error) *QueueProcessor {
	concurrency := jobqueue.DefaultConcurrency[queueName]
	if concurrency <= 0 {
		concurrency = 1
	}
	return &QueueProcessor{
		name:        name,
		queueName:   queueName,
		queue:       queue,
		concurrency: concurrency,
		handle:      handle,
		logger:      logger,
		stop:        make(chan struct{}),
	}
}

func (p *QueueProcessor) Name() string { return p.name }

// Run starts p.concurrency worker goroutines, each polling Reserve on its
// own ticker, and blocks until ctx is cancelled or Stop is called.
func (p *QueueProcessor) Run(ctx context.Context) error {
	p.wg.Add(p.concurrency)
	for i := 0; i < p.concurrency; i++ {
		go func(slot int) {
			defer p.wg.Done()
			p.workerLoop(ctx, slot)
		}(i)
	}
	p.wg.Wait()
	return nil
}

func (p *QueueProcessor) workerLoop(ctx context.Context, slot int) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			return
		case <-ticker.C:
			p.reserveAndProcess(ctx)
		}
	}
}

func (p *QueueProcessor) reserveAndProcess(ctx context.Context) {
	job, err := p.queue.Reserve(ctx, p.queueName, leaseDuration)
	if err != nil {
		p.logger.Error("queue reserve failed", "queue", p.queueName, "error", err.Error())
		return
	}
	if job == nil {
		return
	}

	if err := p.handle(ctx, job.Payload); err != nil {
		if failErr := p.queue.Fail(ctx, job, err); failErr != nil {
			p.logger.Error("failed to record job failure", "queue", p.queueName, "jobId", job.ID, "error", failErr.Error())
		}
		return
	}
	if err := p.queue.Complete(ctx, job); err != nil {
		p.logger.Error("failed to mark job complete", "queue", p.queueName, "jobId", job.ID, "error", err.Error())
	}
}

// Stop signals every worker goroutine to exit and waits for them to drain,
// honoring ctx's deadline as the outer shutdown grace period.
func (p *QueueProcessor) Stop(ctx context.Context) error {
	close(p.stop)
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", p.name, ctx.Err())
	}
}
