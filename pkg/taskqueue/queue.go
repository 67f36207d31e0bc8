package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// dedupTTL bounds how long an idempotency marker for a job id survives.
// A job enqueued twice within this window executes once, per §4.7 and the
// "summarize_<session_id>" idempotency test in §8.
const dedupTTL = 24 * time.Hour

// Queue is a Redis-backed named job queue. keyPrefix matches the broker key
// layout in §6: "arq:<queue_name>" holds job payloads, "job:<job_id>" is the
// idempotency marker.
type Queue struct {
	rdb       *redis.Client
	keyPrefix string
	log       zerolog.Logger
}

// NewQueue builds a Queue over an existing redis client. keyPrefix is the
// broker key prefix from configuration (may be empty).
func NewQueue(rdb *redis.Client, keyPrefix string, log zerolog.Logger) *Queue {
	return &Queue{rdb: rdb, keyPrefix: keyPrefix, log: log.With().Str("component", "taskqueue").Logger()}
}

func (q *Queue) listKey(queue QueueName) string {
	return fmt.Sprintf("%sarq:%s", q.keyPrefix, queue)
}

func (q *Queue) dedupKey(jobID string) string {
	return fmt.Sprintf("%sjob:%s", q.keyPrefix, jobID)
}

// EnqueueOptions mirrors the enqueue(...) contract in §4.7.
type EnqueueOptions struct {
	JobID    string
	DeferBy  string // duration string, e.g. "60s"; empty means run immediately
	BotName  string
	Payload  any
}

// Enqueue pushes a job onto the named queue. If opts.JobID is set and a job
// with that id is already pending (dedup marker present), Enqueue is a
// no-op and returns ("", nil) — mirroring "returns null" in the spec
// contract. Otherwise it returns the job id used (opts.JobID or a generated
// uuid).
func (q *Queue) Enqueue(ctx context.Context, queue QueueName, task TaskName, opts EnqueueOptions) (string, error) {
	if !queue.Valid() {
		return "", fmt.Errorf("taskqueue: unknown queue %q", queue)
	}
	jobID := opts.JobID
	if jobID == "" {
		jobID = uuid.NewString()
	} else {
		set, err := q.rdb.SetNX(ctx, q.dedupKey(jobID), "1", dedupTTL).Result()
		if err != nil {
			return "", fmt.Errorf("taskqueue: dedup check: %w", err)
		}
		if !set {
			q.log.Debug().Str("job_id", jobID).Msg("enqueue deduplicated")
			return "", nil
		}
	}

	payload, err := json.Marshal(opts.Payload)
	if err != nil {
		return "", fmt.Errorf("taskqueue: marshal payload: %w", err)
	}

	job := Job{
		ID:          jobID,
		Queue:       queue,
		Task:        task,
		BotName:     opts.BotName,
		Payload:     payload,
		CreatedAtMs: time.Now().UnixMilli(),
	}

	if opts.DeferBy != "" {
		deferMs, err := ParseDurationMs(opts.DeferBy, "s")
		if err != nil {
			return "", fmt.Errorf("taskqueue: defer_by: %w", err)
		}
		atMs := job.CreatedAtMs + deferMs
		job.Schedule = &Schedule{Kind: "at", AtMs: atMs}
	}

	encoded, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("taskqueue: marshal job: %w", err)
	}

	if err := q.rdb.LPush(ctx, q.listKey(queue), encoded).Err(); err != nil {
		return "", fmt.Errorf("taskqueue: lpush: %w", err)
	}
	q.log.Info().Str("job_id", jobID).Str("queue", string(queue)).Str("task", string(task)).Msg("enqueued job")
	return jobID, nil
}

// Dequeue blocks up to timeout for the next job on any of the given
// queues, in the order given (first queue drains first when all are
// non-empty, matching redis BRPOP/BLPOP's argument-order semantics).
func (q *Queue) Dequeue(ctx context.Context, queues []QueueName, timeout time.Duration) (*Job, error) {
	keys := make([]string, 0, len(queues))
	for _, qn := range queues {
		keys = append(keys, q.listKey(qn))
	}
	res, err := q.rdb.BRPop(ctx, timeout, keys...).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("taskqueue: brpop: %w", err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("taskqueue: unexpected brpop reply")
	}
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("taskqueue: unmarshal job: %w", err)
	}
	return &job, nil
}

// Requeue pushes a job back onto its own queue, for jobs whose schedule
// isn't due yet or whose retry policy allows another attempt.
func (q *Queue) Requeue(ctx context.Context, job *Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("taskqueue: marshal job: %w", err)
	}
	return q.rdb.LPush(ctx, q.listKey(job.Queue), encoded).Err()
}
