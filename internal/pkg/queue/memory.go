package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is a process-local queue for single-instance deployments and
// tests. Jobs are lost on restart.
type MemoryQueue struct {
	jobs        chan Job
	pollTimeout time.Duration

	mu     sync.Mutex
	dead   []Job
	closed bool
}

func NewMemoryQueue(size int, pollTimeout time.Duration) *MemoryQueue {
	if size <= 0 {
		size = 1024
	}
	if pollTimeout <= 0 {
		pollTimeout = time.Second
	}
	return &MemoryQueue{
		jobs:        make(chan Job, size),
		pollTimeout: pollTimeout,
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return ErrClosed
	}

	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*Job, error) {
	timer := time.NewTimer(q.pollTimeout)
	defer timer.Stop()

	select {
	case job := <-q.jobs:
		return &job, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Ack(ctx context.Context, job Job) error {
	return nil
}

func (q *MemoryQueue) Retry(ctx context.Context, job Job, cause error) error {
	job.Attempt++
	if cause != nil {
		job.LastError = cause.Error()
	}
	return q.Enqueue(ctx, job)
}

func (q *MemoryQueue) DeadLetter(ctx context.Context, job Job, cause error) error {
	job.Attempt++
	if cause != nil {
		job.LastError = cause.Error()
	}
	q.mu.Lock()
	q.dead = append(q.dead, job)
	q.mu.Unlock()
	return nil
}

// DeadLetters returns a copy of the dead jobs, oldest first.
func (q *MemoryQueue) DeadLetters() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Job, len(q.dead))
	copy(out, q.dead)
	return out
}

// Len returns the number of pending jobs.
func (q *MemoryQueue) Len() int {
	return len(q.jobs)
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	return nil
}
