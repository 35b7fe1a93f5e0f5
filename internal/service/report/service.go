package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
)

const DefaultHistoryMonths = 12

type ReportServiceImpl struct {
	report.ReportRepository
	user.UserRepository
	clock         *timezone.Resolver
	historyMonths int
}

func NewReportService(reportRepo report.ReportRepository, userRepo user.UserRepository, clock *timezone.Resolver, historyMonths int) report.ReportService {
	if historyMonths <= 0 {
		historyMonths = DefaultHistoryMonths
	}
	return &ReportServiceImpl{
		ReportRepository: reportRepo,
		UserRepository:   userRepo,
		clock:            clock,
		historyMonths:    historyMonths,
	}
}

// GenerateWorkerHealthReport implements report.ReportService. It reads raw
// check-ins only, never the team summary store.
func (s *ReportServiceImpl) GenerateWorkerHealthReport(ctx context.Context, t team.Team, req report.WorkerHealthReportRequest) (report.WorkerHealthReport, error) {
	// Validate request
	if err := req.Validate(); err != nil {
		return report.WorkerHealthReport{}, err
	}

	worker, err := s.UserRepository.GetByID(ctx, req.UserID, t.CompanyID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return report.WorkerHealthReport{}, report.ErrWorkerNotFound
		}
		return report.WorkerHealthReport{}, fmt.Errorf("failed to get worker: %w", err)
	}

	tz := t.CompanyTimezone
	from, to := s.clock.LastNDaysRange(tz, req.PeriodDays)

	baseline, err := s.ReportRepository.GetBaseline(ctx, worker.ID, from, to)
	if err != nil {
		return report.WorkerHealthReport{}, fmt.Errorf("failed to get health baseline: %w", err)
	}

	// History starts on the first day of the oldest month, company-local.
	// Storage buckets by the resolved zone name, never the raw company setting.
	loc := s.clock.Location(tz)
	local := to.In(loc)
	historyFrom := time.Date(local.Year(), local.Month()-time.Month(s.historyMonths-1), 1, 0, 0, 0, 0, loc)

	history, err := s.ReportRepository.GetMonthlyHistory(ctx, worker.ID, loc.String(), historyFrom)
	if err != nil {
		return report.WorkerHealthReport{}, fmt.Errorf("failed to get monthly history: %w", err)
	}
	if history == nil {
		history = []report.MonthlyBucket{}
	}

	return report.WorkerHealthReport{
		Worker: report.WorkerInfo{
			ID:       worker.ID,
			FullName: worker.FullName,
			Email:    worker.Email,
			TeamID:   t.ID,
			TeamName: t.Name,
		},
		Period: report.Period{
			Days: req.PeriodDays,
			From: s.clock.LocalDate(tz, from).Format(timezone.DateLayout),
			To:   s.clock.LocalDate(tz, to).Format(timezone.DateLayout),
		},
		Baseline:       baseline,
		MonthlyHistory: history,
		GeneratedAt:    s.clock.Now().Format(time.RFC3339),
	}, nil
}
