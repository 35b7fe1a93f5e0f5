package summary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/queue"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
)

// JobRecalculateSummaries is the queue job type carrying a summary.RecalculationRequest.
const JobRecalculateSummaries = "summary.recalculate"

// QueueTrigger hands recalculation requests to the background queue.
type QueueTrigger struct {
	queue queue.Queue
}

func NewQueueTrigger(q queue.Queue) *QueueTrigger {
	return &QueueTrigger{queue: q}
}

// Fire implements summary.Trigger. It returns immediately; enqueue failures
// are logged and dropped, the nightly rebuild heals what they leave stale.
func (t *QueueTrigger) Fire(ctx context.Context, req summary.RecalculationRequest) {
	ctx = context.WithoutCancel(ctx)

	go func() {
		if err := t.enqueue(ctx, req); err != nil {
			logRecalculationFailure(req, err)
		}
	}()
}

func (t *QueueTrigger) enqueue(ctx context.Context, req summary.RecalculationRequest) error {
	job, err := queue.NewJob(JobRecalculateSummaries, req)
	if err != nil {
		return err
	}
	if err := t.queue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue recalculation: %w", err)
	}
	slog.Debug("Summary recalculation enqueued",
		"job_id", job.ID,
		"team_id", req.TeamID,
		"start_date", req.StartDate.Format(timezone.DateLayout),
		"end_date", req.EndDate.Format(timezone.DateLayout),
		"action", req.Action,
	)
	return nil
}

// NewRecalculationHandler consumes JobRecalculateSummaries jobs.
func NewRecalculationHandler(svc summary.SummaryService) queue.Handler {
	return func(ctx context.Context, job queue.Job) error {
		var req summary.RecalculationRequest
		if err := job.Decode(&req); err != nil {
			return err
		}

		rebuilt, err := svc.RecalculateSummariesForDateRange(ctx, req.TeamID, req.StartDate, req.EndDate, req.Timezone)
		if err != nil {
			logRecalculationFailure(req, err)
			return err
		}

		slog.Info("Team summaries recalculated",
			"team_id", req.TeamID,
			"start_date", req.StartDate.Format(timezone.DateLayout),
			"end_date", req.EndDate.Format(timezone.DateLayout),
			"action", req.Action,
			"days", len(rebuilt),
		)
		return nil
	}
}

func logRecalculationFailure(req summary.RecalculationRequest, err error) {
	slog.Error("Summary recalculation failed",
		"team_id", req.TeamID,
		"start_date", req.StartDate.Format(timezone.DateLayout),
		"end_date", req.EndDate.Format(timezone.DateLayout),
		"action", req.Action,
		"error", err,
	)
}
