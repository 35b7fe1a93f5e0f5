package monitoring

import (
	"context"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
)

// SuddenChangeDetector compares each member's check-in today with their
// trailing baseline and returns every drop. Members with fewer than
// minBaseline baseline check-ins are skipped. Results are sorted by severity,
// then by check-in recency.
type SuddenChangeDetector interface {
	Detect(ctx context.Context, members []team.Member, tz string, minBaseline int) ([]SuddenChange, error)
}

type MonitoringService interface {
	Overview(ctx context.Context, actor user.Actor, filter MonitoringFilter) (OverviewResponse, error)
	Stats(ctx context.Context, actor user.Actor, filter MonitoringFilter) (StatsResponse, error)
	ListCheckIns(ctx context.Context, actor user.Actor, filter MonitoringFilter) (ListCheckInsResponse, error)
	ListNotCheckedIn(ctx context.Context, actor user.Actor, filter MonitoringFilter) (ListNotCheckedInResponse, error)
	ListSuddenChanges(ctx context.Context, actor user.Actor, filter MonitoringFilter) (ListSuddenChangesResponse, error)
	ListExemptions(ctx context.Context, actor user.Actor, filter MonitoringFilter) (ListExemptionsResponse, error)
	MemberReport(ctx context.Context, actor user.Actor, memberID string, filter MonitoringFilter) (report.WorkerHealthReport, error)
}
