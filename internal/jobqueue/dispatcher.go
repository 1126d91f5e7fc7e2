// path: internal/jobqueue/dispatcher.go
// Dispatcher adapts Queue.Enqueue to the narrow per-consumer enqueue
// interfaces the application packages declare for themselves
// (pipeline.GenerateEnqueuer, publish's PublishEnqueuer, tokenlifecycle's
// Enqueuer, review's Regenerator), so wiring code has one concrete type to
// hand to all four instead of four bespoke adapters.
package jobqueue

import (
	"context"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/application/pipeline"
	"github.com/techappsUT/socialqueue-ucb/internal/application/publish"
	"github.com/techappsUT/socialqueue-ucb/internal/application/tokenlifecycle"
)

// Dispatcher wraps a Queue with the job-specific Enqueue calls spec §4.B's
// consumers need.
type Dispatcher struct {
	queue *Queue
}

// NewDispatcher builds a Dispatcher over queue.
func NewDispatcher(queue *Queue) *Dispatcher {
	return &Dispatcher{queue: queue}
}

// EnqueueGenerate schedules a content-generation job (spec §4.G).
func (d *Dispatcher) EnqueueGenerate(ctx context.Context, payload pipeline.GeneratePayload) error {
	_, err := d.queue.Enqueue(ctx, QueueGenerate, payload, EnqueueOptions{})
	return err
}

// EnqueuePublish schedules a publish job (spec §4.I).
func (d *Dispatcher) EnqueuePublish(ctx context.Context, payload publish.PublishPayload) error {
	_, err := d.queue.Enqueue(ctx, QueuePublish, payload, EnqueueOptions{})
	return err
}

// EnqueueTokenRefresh schedules a token-refresh job (spec §4.J).
func (d *Dispatcher) EnqueueTokenRefresh(ctx context.Context, payload tokenlifecycle.RefreshPayload) error {
	_, err := d.queue.Enqueue(ctx, QueueTokenRefresh, payload, EnqueueOptions{})
	return err
}

// Regenerate re-enters the content pipeline for an already-existing post,
// implementing review.Regenerator over the same generate queue a fresh
// draft uses.
func (d *Dispatcher) Regenerate(ctx context.Context, postID uuid.UUID, prompt string) error {
	return d.EnqueueGenerate(ctx, pipeline.GeneratePayload{PostID: postID, Prompt: prompt})
}
