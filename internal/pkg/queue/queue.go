package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrClosed = errors.New("queue closed")

// Job is one unit of background work. Payload is the JSON encoding of a
// job-type specific value.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Attempt    int             `json:"attempt"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	LastError  string          `json:"last_error,omitempty"`

	// raw is the encoded form the job was dequeued as, used to acknowledge it
	raw string
}

// NewJob encodes payload into a job of the given type.
func NewJob(jobType string, payload any) (Job, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("failed to encode %s payload: %w", jobType, err)
	}
	return Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    data,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into v.
func (j Job) Decode(v any) error {
	if err := json.Unmarshal(j.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", j.Type, err)
	}
	return nil
}

// Queue delivers jobs at least once. A dequeued job stays in flight until it
// is acknowledged, retried or dead-lettered.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error

	// Dequeue blocks until a job is available or the poll timeout elapses, in
	// which case it returns nil and no error
	Dequeue(ctx context.Context) (*Job, error)

	Ack(ctx context.Context, job Job) error
	Retry(ctx context.Context, job Job, cause error) error
	DeadLetter(ctx context.Context, job Job, cause error) error
	Close() error
}
