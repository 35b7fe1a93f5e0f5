package summary

import (
	"context"
	"time"
)

type SummaryRepository interface {
	// Upsert inserts or replaces the summary for (TeamID, Date)
	Upsert(ctx context.Context, s DailyTeamSummary) (DailyTeamSummary, error)

	// GetByTeamAndDate returns ErrSummaryNotFound when nothing was written yet
	GetByTeamAndDate(ctx context.Context, teamID string, date time.Time) (DailyTeamSummary, error)

	// ListByTeamInRange returns summaries with from <= date <= to, newest first
	ListByTeamInRange(ctx context.Context, teamID string, from, to time.Time) ([]DailyTeamSummary, error)
}
