package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Handler processes one job. Handlers must be idempotent: a job may be
// delivered more than once.
type Handler func(ctx context.Context, job Job) error

// Worker drains a queue, dispatching jobs to handlers by type. Failed jobs are
// retried until MaxAttempts deliveries have failed, then dead-lettered.
type Worker struct {
	queue       Queue
	handlers    map[string]Handler
	maxAttempts int
	concurrency int
	backoff     time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewWorker(q Queue, maxAttempts, concurrency int) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		queue:       q,
		handlers:    make(map[string]Handler),
		maxAttempts: maxAttempts,
		concurrency: concurrency,
		backoff:     time.Second,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Handle registers the handler for a job type
func (w *Worker) Handle(jobType string, h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.handlers[jobType] = h
	slog.Info("Queue handler registered", "type", jobType)
}

// Start launches the consumer goroutines
func (w *Worker) Start() {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.loop()
	}
	slog.Info("Queue worker started", "concurrency", w.concurrency, "max_attempts", w.maxAttempts)
}

// Stop waits for in-flight jobs to finish
func (w *Worker) Stop() {
	slog.Info("Stopping queue worker...")
	w.cancel()
	w.wg.Wait()
	slog.Info("Queue worker stopped")
}

func (w *Worker) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		job, err := w.queue.Dequeue(w.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrClosed) {
				return
			}
			slog.Error("Queue dequeue failed", "error", err)
			select {
			case <-w.ctx.Done():
				return
			case <-time.After(w.backoff):
			}
			continue
		}
		if job == nil {
			continue
		}

		w.Process(context.WithoutCancel(w.ctx), *job)
	}
}

// Process runs one job and settles it on the queue.
func (w *Worker) Process(ctx context.Context, job Job) {
	start := time.Now()

	w.mu.Lock()
	h, ok := w.handlers[job.Type]
	w.mu.Unlock()

	var err error
	if !ok {
		err = fmt.Errorf("no handler for job type %q", job.Type)
	} else {
		err = w.run(ctx, h, job)
	}

	if err == nil {
		if ackErr := w.queue.Ack(ctx, job); ackErr != nil {
			slog.Error("Queue ack failed", "job_id", job.ID, "type", job.Type, "error", ackErr)
		}
		slog.Debug("Queue job completed", "job_id", job.ID, "type", job.Type, "duration", time.Since(start))
		return
	}

	if ok && job.Attempt+1 < w.maxAttempts {
		slog.Warn("Queue job failed, retrying",
			"job_id", job.ID, "type", job.Type, "attempt", job.Attempt+1, "error", err)
		if rErr := w.queue.Retry(ctx, job, err); rErr != nil {
			slog.Error("Queue retry failed", "job_id", job.ID, "type", job.Type, "error", rErr)
		}
		return
	}

	slog.Error("Queue job dead-lettered",
		"job_id", job.ID, "type", job.Type, "attempt", job.Attempt+1, "payload", string(job.Payload), "error", err)
	if dErr := w.queue.DeadLetter(ctx, job, err); dErr != nil {
		slog.Error("Queue dead-letter failed", "job_id", job.ID, "type", job.Type, "error", dErr)
	}
}

// run calls h, converting a panic into an error so one bad job cannot stop the worker.
func (w *Worker) run(ctx context.Context, h Handler, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, job)
}
