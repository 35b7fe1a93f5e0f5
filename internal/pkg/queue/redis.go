package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue keeps pending, in-flight and dead jobs in three Redis lists.
// Jobs move atomically from pending to in-flight on dequeue, so a crashed
// worker leaves them recoverable.
type RedisQueue struct {
	rdb         *redis.Client
	pending     string
	processing  string
	dead        string
	pollTimeout time.Duration
}

func NewRedisQueue(rdb *redis.Client, name string, pollTimeout time.Duration) *RedisQueue {
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}
	return &RedisQueue{
		rdb:         rdb,
		pending:     name,
		processing:  name + ":processing",
		dead:        name + ":dead",
		pollTimeout: pollTimeout,
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.pending, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", job.ID, err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*Job, error) {
	raw, err := q.rdb.BLMove(ctx, q.pending, q.processing, "RIGHT", "LEFT", q.pollTimeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		// Unreadable entries can never succeed; park them with the dead jobs.
		slog.Error("Dropping malformed job", "queue", q.pending, "error", err)
		_, _ = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LRem(ctx, q.processing, 1, raw)
			pipe.LPush(ctx, q.dead, raw)
			return nil
		})
		return nil, nil
	}
	job.raw = raw
	return &job, nil
}

func (q *RedisQueue) Ack(ctx context.Context, job Job) error {
	if err := q.rdb.LRem(ctx, q.processing, 1, job.raw).Err(); err != nil {
		return fmt.Errorf("failed to ack job %s: %w", job.ID, err)
	}
	return nil
}

func (q *RedisQueue) Retry(ctx context.Context, job Job, cause error) error {
	return q.move(ctx, job, cause, q.pending)
}

func (q *RedisQueue) DeadLetter(ctx context.Context, job Job, cause error) error {
	return q.move(ctx, job, cause, q.dead)
}

// move replaces the in-flight entry of job with an updated copy on dest.
func (q *RedisQueue) move(ctx context.Context, job Job, cause error, dest string) error {
	raw := job.raw
	job.Attempt++
	if cause != nil {
		job.LastError = cause.Error()
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	_, err = q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processing, 1, raw)
		pipe.LPush(ctx, dest, data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to move job %s to %s: %w", job.ID, dest, err)
	}
	return nil
}

// Recover returns jobs left in flight by a previous process to the pending
// list. Call it once before starting workers.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	n := 0
	for {
		err := q.rdb.LMove(ctx, q.processing, q.pending, "RIGHT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("failed to recover in-flight jobs: %w", err)
		}
		n++
	}
}

// DeadLetters returns up to limit dead jobs, most recent first.
func (q *RedisQueue) DeadLetters(ctx context.Context, limit int64) ([]Job, error) {
	raws, err := q.rdb.LRange(ctx, q.dead, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read dead letters: %w", err)
	}
	jobs := make([]Job, 0, len(raws))
	for _, raw := range raws {
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (q *RedisQueue) Close() error {
	return q.rdb.Close()
}
