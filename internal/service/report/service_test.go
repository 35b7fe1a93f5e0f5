package report

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
	"github.com/cmlabs-hris/readiness-backend-go/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workerID = "30000000-0000-0000-0000-000000000001"

var crew = team.Team{ID: "t1", CompanyID: "c1", Name: "Pit Crew", CompanyTimezone: "Asia/Jakarta"}

func newService(reports *servicetest.Reports) report.ReportService {
	clock := timezone.NewResolver("UTC").WithClock(func() time.Time {
		return time.Date(2025, 3, 10, 3, 0, 0, 0, time.UTC) // 10:00 in Jakarta
	})
	users := &servicetest.Users{Items: []user.User{
		{ID: workerID, CompanyID: "c1", FullName: "Rina Putri", Email: "rina@acme.test", Role: user.RoleWorker},
	}}
	return NewReportService(reports, users, clock, 12)
}

func TestGenerateWorkerHealthReport(t *testing.T) {
	reports := &servicetest.Reports{
		Baseline: &report.Baseline{CheckInCount: 12, AvgScore: 71.5, MinScore: 40, MaxScore: 92},
		History: []report.MonthlyBucket{
			{Year: 2025, Month: 3, Label: "2025-03", CheckInCount: 6, AvgScore: 70},
			{Year: 2025, Month: 2, Label: "2025-02", CheckInCount: 18, AvgScore: 74.2},
		},
	}

	got, err := newService(reports).GenerateWorkerHealthReport(context.Background(), crew, report.WorkerHealthReportRequest{UserID: workerID})
	require.NoError(t, err)

	assert.Equal(t, "Rina Putri", got.Worker.FullName)
	assert.Equal(t, "Pit Crew", got.Worker.TeamName)
	assert.Equal(t, report.DefaultPeriodDays, got.Period.Days)
	assert.Equal(t, "2025-02-08", got.Period.From)
	assert.Equal(t, "2025-03-10", got.Period.To)
	require.NotNil(t, got.Baseline)
	assert.Equal(t, 12, got.Baseline.CheckInCount)
	assert.Len(t, got.MonthlyHistory, 2)

	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	assert.True(t, reports.BaselineFrom.Equal(time.Date(2025, 2, 8, 0, 0, 0, 0, jakarta)))
	assert.True(t, reports.HistoryFrom.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, jakarta)))
	assert.Equal(t, "Asia/Jakarta", reports.HistoryTZ)
}

func TestGenerateWorkerHealthReport_NoCheckIns(t *testing.T) {
	got, err := newService(&servicetest.Reports{}).GenerateWorkerHealthReport(context.Background(), crew,
		report.WorkerHealthReportRequest{UserID: workerID, Days: "7"})
	require.NoError(t, err)

	assert.Nil(t, got.Baseline)
	assert.NotNil(t, got.MonthlyHistory)
	assert.Empty(t, got.MonthlyHistory)
	assert.Equal(t, 7, got.Period.Days)
}

func TestGenerateWorkerHealthReport_UnknownTimezoneFallsBack(t *testing.T) {
	reports := &servicetest.Reports{}
	misconfigured := crew
	misconfigured.CompanyTimezone = "Not/AZone"

	got, err := newService(reports).GenerateWorkerHealthReport(context.Background(), misconfigured,
		report.WorkerHealthReportRequest{UserID: workerID})
	require.NoError(t, err)

	assert.Equal(t, "UTC", reports.HistoryTZ)
	assert.True(t, reports.HistoryFrom.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-10", got.Period.To)
}

func TestGenerateWorkerHealthReport_Errors(t *testing.T) {
	svc := newService(&servicetest.Reports{})

	_, err := svc.GenerateWorkerHealthReport(context.Background(), crew,
		report.WorkerHealthReportRequest{UserID: "30000000-0000-0000-0000-000000000099"})
	assert.ErrorIs(t, err, report.ErrWorkerNotFound)

	_, err = svc.GenerateWorkerHealthReport(context.Background(), crew, report.WorkerHealthReportRequest{UserID: "nope"})
	assert.Error(t, err)

	_, err = svc.GenerateWorkerHealthReport(context.Background(), crew,
		report.WorkerHealthReportRequest{UserID: workerID, Days: "400"})
	assert.Error(t, err)
}
