// path: internal/jobqueue/queue.go
// Package jobqueue implements the durable multi-queue JobQueue (spec §4.B):
// enqueue, reserve-with-lease, complete/fail-with-backoff, delayed jobs and
// per-queue concurrency caps, generalized from the teacher's list-based
// WorkerQueueService into Redis sorted sets so reservation and lease expiry
// can be expressed atomically instead of "pop and hope the worker finishes".
package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/techappsUT/socialqueue-ucb/internal/apperr"
	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
)

// Queue names (spec §4.B).
const (
	QueueGenerate     = "generate"
	QueuePublish      = "publish"
	QueueTokenRefresh = "tokenRefresh"
)

// DefaultConcurrency maps each queue to its worker pool size.
var DefaultConcurrency = map[string]int{
	QueueGenerate:     2,
	QueuePublish:      2,
	QueueTokenRefresh: 1,
}

// DefaultBackoff is the fixed retry schedule: 2s, 10s, 60s (spec §4.B).
var DefaultBackoff = []time.Duration{2 * time.Second, 10 * time.Second, 60 * time.Second}

const (
	readyKeyPrefix      = "jobqueue:ready:"
	processingKeyPrefix = "jobqueue:processing:"
	dataKeyPrefix       = "jobqueue:data:"
	dlqKeyPrefix        = "jobqueue:dlq:"
)

// Status mirrors the Job.status enumeration of spec §3.
type Status string

const (
	StatusWaiting Status = "WAITING"
	StatusDelayed Status = "DELAYED"
	StatusActive  Status = "ACTIVE"
	StatusFailed  Status = "FAILED"
)

// Job is the durable unit of work. Payload is kept as raw JSON so each
// handler can define its own versioned schema (spec §9) without this
// package needing to know every queue's payload shape.
type Job struct {
	ID          string          `json:"id"`
	Queue       string          `json:"queue"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"maxAttempts"`
	AvailableAt time.Time       `json:"availableAt"`
	Status      Status          `json:"status"`
	LastError   string          `json:"lastError,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// EnqueueOptions customize a single enqueue call.
type EnqueueOptions struct {
	Delay       time.Duration
	MaxAttempts int
}

// Queue is a Redis-backed implementation of the JobQueue contract.
type Queue struct {
	client *redis.Client
	logger common.Logger
}

// New constructs a Queue bound to a Redis client.
func New(client *redis.Client, logger common.Logger) *Queue {
	return &Queue{client: client, logger: logger}
}

// Enqueue durably schedules payload on queue, available after opts.Delay
// (zero delay means immediately reservable).
func (q *Queue) Enqueue(ctx context.Context, queue string, payload any, opts EnqueueOptions) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperr.Wrap(apperr.ClassValidation, "marshal job payload", err)
	}
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = len(DefaultBackoff) + 1
	}
	now := time.Now().UTC()
	availableAt := now.Add(opts.Delay)
	status := StatusWaiting
	if opts.Delay > 0 {
		status = StatusDelayed
	}
	job := &Job{
		ID:          uuid.NewString(),
		Queue:       queue,
		Payload:     body,
		MaxAttempts: maxAttempts,
		AvailableAt: availableAt,
		Status:      status,
		CreatedAt:   now,
	}
	if err := q.save(ctx, job); err != nil {
		return "", err
	}
	if err := q.client.ZAdd(ctx, readyKey(queue), redis.Z{
		Score:  float64(availableAt.UnixMilli()),
		Member: job.ID,
	}).Err(); err != nil {
		return "", apperr.Wrap(apperr.ClassNetwork, "enqueue job", err)
	}
	q.logger.Info("enqueued job", "queue", queue, "jobId", job.ID)
	return job.ID, nil
}

// reserveScript atomically reclaims leases that expired, then promotes one
// ready job (score <= now) into the processing set under a fresh lease.
// Running this as a single script is what makes "at most one worker
// observes a given Job in ACTIVE state" (spec §4.B) hold under concurrent
// callers instead of racing on separate ZRANGE/ZADD round trips.
const reserveScript = `
local readyKey = KEYS[1]
local processingKey = KEYS[2]
local now = tonumber(ARGV[1])
local leaseUntil = tonumber(ARGV[2])

local expired = redis.call('ZRANGEBYSCORE', processingKey, '-inf', now)
for _, id in ipairs(expired) do
  redis.call('ZREM', processingKey, id)
  redis.call('ZADD', readyKey, now, id)
end

local candidates = redis.call('ZRANGEBYSCORE', readyKey, '-inf', now, 'LIMIT', 0, 1)
if #candidates == 0 then
  return nil
end
local id = candidates[1]
redis.call('ZREM', readyKey, id)
redis.call('ZADD', processingKey, leaseUntil, id)
return id
`

// Reserve atomically claims the next due job on queue under a lease of
// leaseDuration. Returns nil, nil when nothing is currently reservable.
func (q *Queue) Reserve(ctx context.Context, queue string, leaseDuration time.Duration) (*Job, error) {
	now := time.Now().UTC()
	res, err := q.client.Eval(ctx, reserveScript,
		[]string{readyKey(queue), processingKey(queue)},
		now.UnixMilli(), now.Add(leaseDuration).UnixMilli(),
	).Result()
	if err != nil {
		return nil, apperr.Wrap(apperr.ClassNetwork, "reserve job", err)
	}
	if res == nil {
		return nil, nil
	}
	jobID, _ := res.(string)
	job, err := q.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	job.Status = StatusActive
	if err := q.save(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// ExtendLease pushes back the lease deadline for a job a worker is still
// actively processing (spec §5: "workers must periodically refresh the
// lease during long operations").
func (q *Queue) ExtendLease(ctx context.Context, job *Job, leaseDuration time.Duration) error {
	newDeadline := time.Now().UTC().Add(leaseDuration)
	err := q.client.ZAdd(ctx, processingKey(job.Queue), redis.Z{
		Score: float64(newDeadline.UnixMilli()), Member: job.ID,
	}).Err()
	if err != nil {
		return apperr.Wrap(apperr.ClassNetwork, "extend lease", err)
	}
	return nil
}

// Complete removes a successfully processed job from the processing set
// and deletes its payload. Idempotent: completing an already-completed
// job is a harmless no-op, which is what lets at-least-once redelivery
// (spec §4.B) be handled safely by idempotent handlers.
func (q *Queue) Complete(ctx context.Context, job *Job) error {
	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, processingKey(job.Queue), job.ID)
	pipe.Del(ctx, dataKey(job.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrap(apperr.ClassNetwork, "complete job", err)
	}
	return nil
}

// Fail records a failed attempt. If attempts remain, the job is re-queued
// with the fixed backoff schedule (spec §4.B default: 2s, 10s, 60s);
// otherwise it is moved to the dead-letter list with status FAILED.
func (q *Queue) Fail(ctx context.Context, job *Job, cause error) error {
	job.Attempts++
	job.LastError = cause.Error()

	if job.Attempts < job.MaxAttempts {
		delay := backoffFor(job.Attempts)
		job.AvailableAt = time.Now().UTC().Add(delay)
		job.Status = StatusDelayed
		if err := q.save(ctx, job); err != nil {
			return err
		}
		pipe := q.client.TxPipeline()
		pipe.ZRem(ctx, processingKey(job.Queue), job.ID)
		pipe.ZAdd(ctx, readyKey(job.Queue), redis.Z{Score: float64(job.AvailableAt.UnixMilli()), Member: job.ID})
		_, err := pipe.Exec(ctx)
		if err != nil {
			return apperr.Wrap(apperr.ClassNetwork, "requeue failed job", err)
		}
		q.logger.Warn("job failed, retrying", "jobId", job.ID, "attempt", job.Attempts, "delay", delay.String())
		return nil
	}

	job.Status = StatusFailed
	if err := q.save(ctx, job); err != nil {
		return err
	}
	pipe := q.client.TxPipeline()
	pipe.ZRem(ctx, processingKey(job.Queue), job.ID)
	pipe.RPush(ctx, dlqKey(job.Queue), job.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrap(apperr.ClassNetwork, "dead-letter job", err)
	}
	q.logger.Error("job permanently failed", "jobId", job.ID, "attempts", job.Attempts, "cause", cause.Error())
	return nil
}

func backoffFor(attempt int) time.Duration {
	idx := attempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(DefaultBackoff) {
		idx = len(DefaultBackoff) - 1
	}
	return DefaultBackoff[idx]
}

func (q *Queue) save(ctx context.Context, job *Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return apperr.Wrap(apperr.ClassValidation, "marshal job", err)
	}
	if err := q.client.Set(ctx, dataKey(job.ID), body, 7*24*time.Hour).Err(); err != nil {
		return apperr.Wrap(apperr.ClassNetwork, "store job data", err)
	}
	return nil
}

func (q *Queue) load(ctx context.Context, jobID string) (*Job, error) {
	body, err := q.client.Get(ctx, dataKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.New(apperr.ClassNotFound, fmt.Sprintf("job %s data missing", jobID))
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ClassNetwork, "load job data", err)
	}
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, apperr.Wrap(apperr.ClassIntegrity, "unmarshal job data", err)
	}
	return &job, nil
}

// Len reports the number of jobs currently reservable on queue.
func (q *Queue) Len(ctx context.Context, queue string) (int64, error) {
	n, err := q.client.ZCard(ctx, readyKey(queue)).Result()
	if err != nil {
		return 0, apperr.Wrap(apperr.ClassNetwork, "queue length", err)
	}
	return n, nil
}

// ProcessingLen reports the number of jobs currently leased out.
func (q *Queue) ProcessingLen(ctx context.Context, queue string) (int64, error) {
	n, err := q.client.ZCard(ctx, processingKey(queue)).Result()
	if err != nil {
		return 0, apperr.Wrap(apperr.ClassNetwork, "processing length", err)
	}
	return n, nil
}

func readyKey(queue string) string      { return readyKeyPrefix + queue }
func processingKey(queue string) string { return processingKeyPrefix + queue }
func dataKey(jobID string) string       { return dataKeyPrefix + jobID }
func dlqKey(queue string) string        { return dlqKeyPrefix + queue }
