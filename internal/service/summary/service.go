package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/exception"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
)

var _ summary.SummaryService = (*SummaryServiceImpl)(nil)

type SummaryServiceImpl struct {
	team.TeamRepository
	checkin.CheckInRepository
	exception.ExceptionRepository
	holiday.HolidayRepository
	summary.SummaryRepository
	teamResolver team.TeamResolver
	clock        *timezone.Resolver
}

func NewSummaryService(
	teamRepo team.TeamRepository,
	checkInRepo checkin.CheckInRepository,
	exceptionRepo exception.ExceptionRepository,
	holidayRepo holiday.HolidayRepository,
	summaryRepo summary.SummaryRepository,
	teamResolver team.TeamResolver,
	clock *timezone.Resolver,
) *SummaryServiceImpl {
	return &SummaryServiceImpl{
		TeamRepository:      teamRepo,
		CheckInRepository:   checkInRepo,
		ExceptionRepository: exceptionRepo,
		HolidayRepository:   holidayRepo,
		SummaryRepository:   summaryRepo,
		teamResolver:        teamResolver,
		clock:               clock,
	}
}

// ComputeDailyTeamSummary implements summary.SummaryService.
func (s *SummaryServiceImpl) ComputeDailyTeamSummary(ctx context.Context, t team.Team, date time.Time) (summary.DailyTeamSummary, error) {
	date = timezone.Truncate(date)
	dayStart, dayEnd := s.clock.DateRange(t.CompanyTimezone, date)

	members, err := s.TeamRepository.ListActiveMembers(ctx, t.ID)
	if err != nil {
		return summary.DailyTeamSummary{}, fmt.Errorf("failed to list team members: %w", err)
	}

	result := summary.DailyTeamSummary{
		TeamID:       t.ID,
		CompanyID:    t.CompanyID,
		Date:         date,
		TotalMembers: len(members),
		IsWorkDay:    t.IsWorkDay(date),
	}

	isHoliday, err := s.HolidayRepository.ExistsInRange(ctx, t.CompanyID, dayStart, dayEnd)
	if err != nil {
		return summary.DailyTeamSummary{}, fmt.Errorf("failed to check holidays: %w", err)
	}
	if isHoliday {
		// Nobody is expected on a holiday, whatever else happened that day
		result.IsHoliday = true
		return result, nil
	}
	if len(members) == 0 {
		return result, nil
	}

	memberIDs := team.MemberIDs(members)

	checkIns, err := s.CheckInRepository.List(ctx, query.Where(
		query.In{Field: checkin.FieldUserID, Values: memberIDs},
		query.Between{Field: checkin.FieldCreatedAt, From: dayStart, To: dayEnd},
	).OrderBy(checkin.FieldCreatedAt, false))
	if err != nil {
		return summary.DailyTeamSummary{}, fmt.Errorf("failed to list check-ins: %w", err)
	}

	leaves, err := s.ExceptionRepository.List(ctx, exception.CoveringDate(memberIDs, date))
	if err != nil {
		return summary.DailyTeamSummary{}, fmt.Errorf("failed to list exemptions: %w", err)
	}

	onLeave := make(map[string]struct{}, len(leaves))
	for _, e := range leaves {
		onLeave[e.UserID] = struct{}{}
	}

	result.OnLeaveCount = len(onLeave)
	result.ExpectedToCheckIn = result.TotalMembers - result.OnLeaveCount

	var scoreSum int
	first := checkin.FirstPerUser(checkIns)
	for _, c := range first {
		switch c.ReadinessStatus {
		case checkin.StatusGreen:
			result.GreenCount++
		case checkin.StatusYellow:
			result.YellowCount++
		case checkin.StatusRed:
			result.RedCount++
		}
		scoreSum += c.ReadinessScore

		if _, ok := onLeave[c.UserID]; !ok {
			result.CheckedInCount++
		}
	}

	result.NotCheckedInCount = max(result.ExpectedToCheckIn-result.CheckedInCount, 0)
	if len(first) > 0 {
		result.AvgReadinessScore = summary.Round2(float64(scoreSum) / float64(len(first)))
	}
	result.ComplianceRate = summary.Compliance(result.CheckedInCount, result.ExpectedToCheckIn)

	return result, nil
}

// RecalculateDailyTeamSummary implements summary.SummaryService.
func (s *SummaryServiceImpl) RecalculateDailyTeamSummary(ctx context.Context, teamID string, date time.Time, tz string) (summary.DailyTeamSummary, error) {
	t, err := s.loadTeam(ctx, teamID, tz)
	if err != nil {
		return summary.DailyTeamSummary{}, err
	}
	return s.recalculate(ctx, t, date)
}

// RecalculateTodaySummary implements summary.SummaryService.
func (s *SummaryServiceImpl) RecalculateTodaySummary(ctx context.Context, teamID string, tz string) (summary.DailyTeamSummary, error) {
	t, err := s.loadTeam(ctx, teamID, tz)
	if err != nil {
		return summary.DailyTeamSummary{}, err
	}
	return s.recalculate(ctx, t, s.clock.Today(t.CompanyTimezone))
}

// RecalculateSummariesForDateRange implements summary.SummaryService. Days are
// recomputed one after another; a failed day does not stop the rest.
func (s *SummaryServiceImpl) RecalculateSummariesForDateRange(ctx context.Context, teamID string, start, end time.Time, tz string) ([]summary.DailyTeamSummary, error) {
	t, err := s.loadTeam(ctx, teamID, tz)
	if err != nil {
		return nil, err
	}

	days := timezone.Days(start, end)
	if len(days) == 0 {
		return nil, summary.ErrInvalidRange
	}

	var (
		results = make([]summary.DailyTeamSummary, 0, len(days))
		errs    []error
	)
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := s.recalculate(ctx, t, day)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", day.Format(timezone.DateLayout), err))
			continue
		}
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

// GetTeamSummaryForDate implements summary.SummaryService.
func (s *SummaryServiceImpl) GetTeamSummaryForDate(ctx context.Context, teamID string, date time.Time) (*summary.DailyTeamSummary, error) {
	stored, err := s.SummaryRepository.GetByTeamAndDate(ctx, teamID, timezone.Truncate(date))
	if err != nil {
		if errors.Is(err, summary.ErrSummaryNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get team summary: %w", err)
	}
	return &stored, nil
}

// AggregateSummaries implements summary.SummaryService.
func (s *SummaryServiceImpl) AggregateSummaries(summaries []summary.DailyTeamSummary) summary.Aggregate {
	return summary.AggregateSummaries(summaries)
}

// History implements summary.SummaryService.
func (s *SummaryServiceImpl) History(ctx context.Context, actor user.Actor, req summary.HistoryRequest) (summary.HistoryResponse, error) {
	if err := req.Validate(); err != nil {
		return summary.HistoryResponse{}, err
	}

	t, err := s.teamResolver.Resolve(ctx, actor, req.TeamID)
	if err != nil {
		return summary.HistoryResponse{}, err
	}

	to := s.clock.Today(t.CompanyTimezone)
	from := to.AddDate(0, 0, -(req.DayCount - 1))

	stored, err := s.SummaryRepository.ListByTeamInRange(ctx, t.ID, from, to)
	if err != nil {
		return summary.HistoryResponse{}, fmt.Errorf("failed to list team summaries: %w", err)
	}

	return summary.HistoryResponse{
		TeamID:    t.ID,
		TeamName:  t.Name,
		From:      from.Format(timezone.DateLayout),
		To:        to.Format(timezone.DateLayout),
		Summaries: summary.ToResponses(stored),
		Aggregate: summary.ToAggregateResponse(summary.AggregateSummaries(stored)),
	}, nil
}

// Rebuild implements summary.SummaryService.
func (s *SummaryServiceImpl) Rebuild(ctx context.Context, actor user.Actor, req summary.RebuildRequest) (summary.RebuildResponse, error) {
	if err := req.Validate(); err != nil {
		return summary.RebuildResponse{}, err
	}

	t, err := s.teamResolver.Resolve(ctx, actor, req.TeamID)
	if err != nil {
		return summary.RebuildResponse{}, err
	}

	rebuilt, err := s.RecalculateSummariesForDateRange(ctx, t.ID, req.Start, req.End, t.CompanyTimezone)
	if err != nil {
		return summary.RebuildResponse{}, fmt.Errorf("failed to rebuild team summaries: %w", err)
	}

	slog.Info("Team summaries rebuilt",
		"team_id", t.ID,
		"start_date", req.Start.Format(timezone.DateLayout),
		"end_date", req.End.Format(timezone.DateLayout),
		"actor_id", actor.UserID,
	)

	return summary.RebuildResponse{
		TeamID:    t.ID,
		Summaries: summary.ToResponses(rebuilt),
	}, nil
}

// RebuildRecent recomputes today and the lookbackDays before it for every
// active team.
func (s *SummaryServiceImpl) RebuildRecent(ctx context.Context, lookbackDays int) error {
	teams, err := s.TeamRepository.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active teams: %w", err)
	}

	var errs []error
	for _, t := range teams {
		end := s.clock.Today(t.CompanyTimezone)
		start := end.AddDate(0, 0, -lookbackDays)

		if _, err := s.RecalculateSummariesForDateRange(ctx, t.ID, start, end, t.CompanyTimezone); err != nil {
			slog.Error("Failed to rebuild team summaries",
				"team_id", t.ID,
				"start_date", start.Format(timezone.DateLayout),
				"end_date", end.Format(timezone.DateLayout),
				"action", "nightly_rebuild",
				"error", err,
			)
			errs = append(errs, fmt.Errorf("team %s: %w", t.ID, err))
		}
	}

	slog.Info("Nightly summary rebuild finished", "teams", len(teams), "failed", len(errs))
	return errors.Join(errs...)
}

func (s *SummaryServiceImpl) recalculate(ctx context.Context, t team.Team, date time.Time) (summary.DailyTeamSummary, error) {
	computed, err := s.ComputeDailyTeamSummary(ctx, t, date)
	if err != nil {
		return summary.DailyTeamSummary{}, err
	}

	stored, err := s.SummaryRepository.Upsert(ctx, computed)
	if err != nil {
		return summary.DailyTeamSummary{}, fmt.Errorf("failed to upsert team summary: %w", err)
	}
	return stored, nil
}

// loadTeam fetches the team and applies the caller's timezone when one is given.
func (s *SummaryServiceImpl) loadTeam(ctx context.Context, teamID string, tz string) (team.Team, error) {
	t, err := s.TeamRepository.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			return team.Team{}, team.ErrTeamNotFound
		}
		return team.Team{}, fmt.Errorf("failed to get team: %w", err)
	}
	if tz != "" {
		t.CompanyTimezone = tz
	}
	return t, nil
}
