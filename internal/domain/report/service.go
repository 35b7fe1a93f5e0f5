package report

import (
	"context"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
)

// ReportService builds per-worker health reports straight from check-ins.
type ReportService interface {
	GenerateWorkerHealthReport(ctx context.Context, t team.Team, req WorkerHealthReportRequest) (WorkerHealthReport, error)
}
