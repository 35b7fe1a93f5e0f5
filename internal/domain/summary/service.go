package summary

import (
	"context"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
)

// SummaryService is the recalculation engine over the daily team summary store.
type SummaryService interface {
	// ComputeDailyTeamSummary derives the summary from current facts without writing it
	ComputeDailyTeamSummary(ctx context.Context, t team.Team, date time.Time) (DailyTeamSummary, error)

	// RecalculateDailyTeamSummary derives and upserts the summary for one day
	RecalculateDailyTeamSummary(ctx context.Context, teamID string, date time.Time, tz string) (DailyTeamSummary, error)

	// RecalculateTodaySummary recalculates the team's current company-local day
	RecalculateTodaySummary(ctx context.Context, teamID string, tz string) (DailyTeamSummary, error)

	// RecalculateSummariesForDateRange recalculates each day of [start, end] in order
	RecalculateSummariesForDateRange(ctx context.Context, teamID string, start, end time.Time, tz string) ([]DailyTeamSummary, error)

	// GetTeamSummaryForDate returns the stored summary, or nil when none exists
	GetTeamSummaryForDate(ctx context.Context, teamID string, date time.Time) (*DailyTeamSummary, error)

	// AggregateSummaries folds summaries into period totals
	AggregateSummaries(summaries []DailyTeamSummary) Aggregate

	// History returns the stored summaries of the last N days for the resolved team
	History(ctx context.Context, actor user.Actor, req HistoryRequest) (HistoryResponse, error)

	// Rebuild synchronously recalculates a date range for the resolved team
	Rebuild(ctx context.Context, actor user.Actor, req RebuildRequest) (RebuildResponse, error)
}
