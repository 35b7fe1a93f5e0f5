package report

import (
	"context"
	"time"
)

// ReportRepository aggregates raw check-ins for per-worker drill-downs. Nothing
// here reads the team summary store.
type ReportRepository interface {
	// GetBaseline aggregates the user's check-ins created within [from, to). It
	// returns nil when there are none.
	GetBaseline(ctx context.Context, userID string, from, to time.Time) (*Baseline, error)

	// GetMonthlyHistory buckets the user's check-ins created at or after from by
	// year and month in tz, most recent first
	GetMonthlyHistory(ctx context.Context, userID string, tz string, from time.Time) ([]MonthlyBucket, error)
}
