package taskqueue

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// maxAttempts bounds the exponential backoff retry policy from §4.7:
// "bounded (exponential backoff up to ~5 attempts)".
const maxAttempts = 5

// Handler executes one job. A returned error triggers the retry policy;
// nil marks the job as done.
type Handler func(ctx context.Context, job *Job) error

// Worker pulls jobs from a fixed set of queues and dispatches them to a
// per-task handler table. It never blocks the hot response path — it is
// meant to run as its own long-lived goroutine, one of the N worker tasks
// the scheduling model in §5 describes.
type Worker struct {
	queue    *Queue
	queues   []QueueName
	handlers map[TaskName]Handler
	log      zerolog.Logger
}

// NewWorker builds a worker pulling from queues in priority order.
func NewWorker(queue *Queue, queues []QueueName, log zerolog.Logger) *Worker {
	return &Worker{
		queue:    queue,
		queues:   queues,
		handlers: make(map[TaskName]Handler),
		log:      log.With().Str("component", "taskqueue.worker").Logger(),
	}
}

// Register binds a handler to a task name. Calling Register twice for the
// same task replaces the handler.
func (w *Worker) Register(task TaskName, handler Handler) {
	w.handlers[task] = handler
}

// Run loops until ctx is cancelled, dequeuing and dispatching jobs. Each
// iteration blocks at most pollInterval waiting for work, so cancellation
// is observed promptly even under an idle queue.
func (w *Worker) Run(ctx context.Context, pollInterval time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx, w.queues, pollInterval)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("dequeue failed")
			continue
		}
		if job == nil {
			continue
		}
		w.dispatch(ctx, job)
	}
}

func (w *Worker) dispatch(ctx context.Context, job *Job) {
	if job.Schedule != nil {
		nowMs := time.Now().UnixMilli()
		next := ComputeNextRunAtMs(*job.Schedule, nowMs)
		if next != nil && *next > nowMs {
			if err := w.queue.Requeue(ctx, job); err != nil {
				w.log.Error().Err(err).Str("job_id", job.ID).Msg("requeue failed for not-yet-due job")
			}
			return
		}
	}

	handler, ok := w.handlers[job.Task]
	if !ok {
		w.log.Warn().Str("task", string(job.Task)).Str("job_id", job.ID).Msg("no handler registered, dropping job")
		return
	}

	start := time.Now()
	err := handler(ctx, job)
	job.State.Attempts++
	job.State.LastRunAtMs = start.UnixMilli()
	job.State.LastDurationMs = time.Since(start).Milliseconds()

	if err == nil {
		job.State.LastStatus = "ok"
		w.log.Info().Str("job_id", job.ID).Str("task", string(job.Task)).Dur("duration", time.Since(start)).Msg("job completed")
		return
	}

	job.State.LastStatus = "error"
	job.State.LastError = err.Error()
	w.log.Error().Err(err).Str("job_id", job.ID).Str("task", string(job.Task)).Int("attempt", job.State.Attempts).Msg("job failed")

	if job.State.Attempts >= maxAttempts {
		w.log.Error().Str("job_id", job.ID).Msg("job exhausted retry budget, dropping")
		return
	}

	backoff := backoffDuration(job.State.Attempts)
	job.Schedule = &Schedule{Kind: "at", AtMs: time.Now().Add(backoff).UnixMilli()}
	if err := w.queue.Requeue(ctx, job); err != nil {
		w.log.Error().Err(err).Str("job_id", job.ID).Msg("requeue failed after job error")
	}
}

// backoffDuration doubles the base delay per attempt, capped at 5 minutes.
func backoffDuration(attempt int) time.Duration {
	base := time.Second
	d := base << uint(attempt)
	ceiling := 5 * time.Minute
	if d > ceiling {
		return ceiling
	}
	return d
}
