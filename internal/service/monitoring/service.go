package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/exception"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/monitoring"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
	"golang.org/x/sync/errgroup"
)

const (
	SourceStore    = "store"
	SourceComputed = "computed"
)

// Options tunes the sudden-change thresholds and the health report period.
type Options struct {
	DashboardMinBaseline    int
	SuddenChangeMinBaseline int
	HealthReportDays        int
}

type MonitoringServiceImpl struct {
	team.TeamRepository
	checkin.CheckInRepository
	exception.ExceptionRepository
	holiday.HolidayRepository
	summary.SummaryRepository
	teamResolver team.TeamResolver
	summaries    summary.SummaryService
	detector     monitoring.SuddenChangeDetector
	reports      report.ReportService
	clock        *timezone.Resolver
	opts         Options
}

func NewMonitoringService(
	teamRepo team.TeamRepository,
	checkInRepo checkin.CheckInRepository,
	exceptionRepo exception.ExceptionRepository,
	holidayRepo holiday.HolidayRepository,
	summaryRepo summary.SummaryRepository,
	teamResolver team.TeamResolver,
	summaries summary.SummaryService,
	detector monitoring.SuddenChangeDetector,
	reports report.ReportService,
	clock *timezone.Resolver,
	opts Options,
) monitoring.MonitoringService {
	if opts.DashboardMinBaseline <= 0 {
		opts.DashboardMinBaseline = 3
	}
	if opts.SuddenChangeMinBaseline <= 0 {
		opts.SuddenChangeMinBaseline = 2
	}
	if opts.HealthReportDays <= 0 {
		opts.HealthReportDays = report.DefaultPeriodDays
	}
	return &MonitoringServiceImpl{
		TeamRepository:      teamRepo,
		CheckInRepository:   checkInRepo,
		ExceptionRepository: exceptionRepo,
		HolidayRepository:   holidayRepo,
		SummaryRepository:   summaryRepo,
		teamResolver:        teamResolver,
		summaries:           summaries,
		detector:            detector,
		reports:             reports,
		clock:               clock,
		opts:                opts,
	}
}

// teamDay is the resolved team with its company-local "today".
type teamDay struct {
	team     team.Team
	date     time.Time
	dayStart time.Time
	dayEnd   time.Time
	info     monitoring.TeamInfo
}

func (s *MonitoringServiceImpl) resolve(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (teamDay, error) {
	var requested string
	if filter.TeamID != nil {
		requested = *filter.TeamID
	}

	t, err := s.teamResolver.Resolve(ctx, actor, requested)
	if err != nil {
		return teamDay{}, err
	}

	tz := t.CompanyTimezone
	date := s.clock.Today(tz)
	start, end := s.clock.DateRange(tz, date)
	return teamDay{
		team:     t,
		date:     date,
		dayStart: start,
		dayEnd:   end,
		info: monitoring.TeamInfo{
			ID:       t.ID,
			Name:     t.Name,
			Timezone: s.clock.Location(tz).String(),
			Date:     date.Format(timezone.DateLayout),
		},
	}, nil
}

func (s *MonitoringServiceImpl) members(ctx context.Context, t team.Team) ([]team.Member, error) {
	members, err := s.TeamRepository.ListActiveMembers(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

// ========================================
// OVERVIEW
// ========================================

// Overview implements monitoring.MonitoringService.
func (s *MonitoringServiceImpl) Overview(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (monitoring.OverviewResponse, error) {
	if err := filter.Validate(); err != nil {
		return monitoring.OverviewResponse{}, err
	}

	day, err := s.resolve(ctx, actor, filter)
	if err != nil {
		return monitoring.OverviewResponse{}, err
	}

	members, err := s.members(ctx, day.team)
	if err != nil {
		return monitoring.OverviewResponse{}, err
	}
	ids := team.MemberIDs(members)

	var (
		stats         summary.DailyTeamSummary
		checkIns      []checkin.CheckIn
		notCheckedIn  []monitoring.NotCheckedInMember
		suddenChanges []monitoring.SuddenChange
		suddenCounts  monitoring.SeverityCounts
		pending       []exception.Exception
		active        []exception.Exception
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Today's summary, from the store when present
	g.Go(func() error {
		var err error
		stats, _, err = s.todaySummary(gCtx, day)
		return err
	})

	// 2. Today's check-ins
	g.Go(func() error {
		var err error
		checkIns, err = s.CheckInRepository.List(gCtx, s.checkInSpec(ids, day, filter).OrderBy(checkin.FieldCreatedAt, true))
		if err != nil {
			return fmt.Errorf("failed to list check-ins: %w", err)
		}
		return nil
	})

	// 3. Members still expected to check in
	g.Go(func() error {
		var err error
		notCheckedIn, err = s.notCheckedIn(gCtx, day, members)
		return err
	})

	// 4. Sudden changes with the dashboard baseline threshold
	g.Go(func() error {
		drops, err := s.detector.Detect(gCtx, members, day.team.CompanyTimezone, s.opts.DashboardMinBaseline)
		if err != nil {
			return fmt.Errorf("failed to detect sudden changes: %w", err)
		}
		suddenCounts = monitoring.CountSeverities(monitoring.DroppedAtLeast(drops, monitoring.DefaultMinDrop))
		suddenChanges = monitoring.DroppedAtLeast(drops, minDrop(filter))
		return nil
	})

	// 5. Pending exemptions
	g.Go(func() error {
		var err error
		pending, err = s.ExceptionRepository.List(gCtx, exemptionSpec(ids, day.date, []string{monitoring.ExemptionPending}, nil).
			OrderBy(exception.FieldCreatedAt, true))
		if err != nil {
			return fmt.Errorf("failed to list pending exemptions: %w", err)
		}
		return nil
	})

	// 6. Exemptions covering today
	g.Go(func() error {
		var err error
		active, err = s.ExceptionRepository.List(gCtx, exemptionSpec(ids, day.date, []string{monitoring.ExemptionActive}, nil).
			OrderBy(exception.FieldCreatedAt, true))
		if err != nil {
			return fmt.Errorf("failed to list active exemptions: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return monitoring.OverviewResponse{}, err
	}

	return monitoring.OverviewResponse{
		Team:              day.info,
		Stats:             summary.ToResponse(stats),
		CheckIns:          checkInResponses(checkIns),
		NotCheckedIn:      notCheckedIn,
		SuddenChanges:     suddenChangeResponses(suddenChanges),
		SuddenCounts:      suddenCounts,
		PendingExemptions: exceptionResponses(pending),
		ActiveExemptions:  exceptionResponses(active),
	}, nil
}

// ========================================
// STATS
// ========================================

// Stats implements monitoring.MonitoringService. Today's counts come from the
// summary store; when no row was written yet they are computed without
// persisting.
func (s *MonitoringServiceImpl) Stats(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (monitoring.StatsResponse, error) {
	if err := filter.Validate(); err != nil {
		return monitoring.StatsResponse{}, err
	}

	day, err := s.resolve(ctx, actor, filter)
	if err != nil {
		return monitoring.StatsResponse{}, err
	}

	today, source, err := s.todaySummary(ctx, day)
	if err != nil {
		return monitoring.StatsResponse{}, err
	}

	from30 := day.date.AddDate(0, 0, -29)
	from7 := day.date.AddDate(0, 0, -6)
	last30, err := s.SummaryRepository.ListByTeamInRange(ctx, day.team.ID, from30, day.date)
	if err != nil {
		return monitoring.StatsResponse{}, fmt.Errorf("failed to list team summaries: %w", err)
	}

	last7 := make([]summary.DailyTeamSummary, 0, 7)
	for _, row := range last30 {
		if !row.Date.Before(from7) {
			last7 = append(last7, row)
		}
	}

	return monitoring.StatsResponse{
		Team:       day.info,
		Today:      summary.ToResponse(today),
		Source:     source,
		Last7Days:  summary.ToAggregateResponse(s.summaries.AggregateSummaries(last7)),
		Last30Days: summary.ToAggregateResponse(s.summaries.AggregateSummaries(last30)),
	}, nil
}

func (s *MonitoringServiceImpl) todaySummary(ctx context.Context, day teamDay) (summary.DailyTeamSummary, string, error) {
	stored, err := s.summaries.GetTeamSummaryForDate(ctx, day.team.ID, day.date)
	if err != nil {
		return summary.DailyTeamSummary{}, "", err
	}
	if stored != nil {
		return *stored, SourceStore, nil
	}

	computed, err := s.summaries.ComputeDailyTeamSummary(ctx, day.team, day.date)
	if err != nil {
		return summary.DailyTeamSummary{}, "", fmt.Errorf("failed to compute today's summary: %w", err)
	}
	return computed, SourceComputed, nil
}

// ========================================
// LISTS
// ========================================

// ListCheckIns implements monitoring.MonitoringService.
func (s *MonitoringServiceImpl) ListCheckIns(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (monitoring.ListCheckInsResponse, error) {
	if err := filter.Validate(); err != nil {
		return monitoring.ListCheckInsResponse{}, err
	}
	if err := filter.ValidateStatus(string(checkin.StatusGreen), string(checkin.StatusYellow), string(checkin.StatusRed)); err != nil {
		return monitoring.ListCheckInsResponse{}, err
	}

	day, err := s.resolve(ctx, actor, filter)
	if err != nil {
		return monitoring.ListCheckInsResponse{}, err
	}

	members, err := s.members(ctx, day.team)
	if err != nil {
		return monitoring.ListCheckInsResponse{}, err
	}

	spec := s.checkInSpec(team.MemberIDs(members), day, filter)

	total, err := s.CheckInRepository.Count(ctx, spec)
	if err != nil {
		return monitoring.ListCheckInsResponse{}, fmt.Errorf("failed to count check-ins: %w", err)
	}

	checkIns, err := s.CheckInRepository.List(ctx, spec.OrderBy(checkin.FieldCreatedAt, true).Page(filter.Page, filter.Limit))
	if err != nil {
		return monitoring.ListCheckInsResponse{}, fmt.Errorf("failed to list check-ins: %w", err)
	}

	return monitoring.ListCheckInsResponse{
		Pagination: monitoring.NewPagination(total, filter.Page, filter.Limit, len(checkIns)),
		Team:       day.info,
		CheckIns:   checkInResponses(checkIns),
	}, nil
}

// ListNotCheckedIn implements monitoring.MonitoringService.
func (s *MonitoringServiceImpl) ListNotCheckedIn(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (monitoring.ListNotCheckedInResponse, error) {
	if err := filter.Validate(); err != nil {
		return monitoring.ListNotCheckedInResponse{}, err
	}

	day, err := s.resolve(ctx, actor, filter)
	if err != nil {
		return monitoring.ListNotCheckedInResponse{}, err
	}

	members, err := s.members(ctx, day.team)
	if err != nil {
		return monitoring.ListNotCheckedInResponse{}, err
	}

	missing, err := s.notCheckedIn(ctx, day, members)
	if err != nil {
		return monitoring.ListNotCheckedInResponse{}, err
	}

	spec := query.Where(search(filter, fieldFullName, fieldEmail)...)
	matched := query.Apply(missing, spec, memberRecord)
	paged := query.Apply(matched, query.Spec{}.Page(filter.Page, filter.Limit), memberRecord)

	return monitoring.ListNotCheckedInResponse{
		Pagination: monitoring.NewPagination(int64(len(matched)), filter.Page, filter.Limit, len(paged)),
		Team:       day.info,
		Members:    paged,
	}, nil
}

// notCheckedIn lists members who are neither checked in nor on leave today.
// Nobody is missing on a holiday.
func (s *MonitoringServiceImpl) notCheckedIn(ctx context.Context, day teamDay, members []team.Member) ([]monitoring.NotCheckedInMember, error) {
	out := make([]monitoring.NotCheckedInMember, 0)
	if len(members) == 0 {
		return out, nil
	}

	isHoliday, err := s.HolidayRepository.ExistsInRange(ctx, day.team.CompanyID, day.dayStart, day.dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to check holidays: %w", err)
	}
	if isHoliday {
		return out, nil
	}

	ids := team.MemberIDs(members)
	checkIns, err := s.CheckInRepository.List(ctx, query.Where(
		query.In{Field: checkin.FieldUserID, Values: ids},
		query.Between{Field: checkin.FieldCreatedAt, From: day.dayStart, To: day.dayEnd},
	))
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	leaves, err := s.ExceptionRepository.List(ctx, exception.CoveringDate(ids, day.date))
	if err != nil {
		return nil, fmt.Errorf("failed to list exemptions: %w", err)
	}

	skip := make(map[string]struct{}, len(checkIns)+len(leaves))
	for _, c := range checkIns {
		skip[c.UserID] = struct{}{}
	}
	for _, e := range leaves {
		skip[e.UserID] = struct{}{}
	}

	for _, m := range members {
		if _, ok := skip[m.ID]; ok {
			continue
		}
		out = append(out, monitoring.NotCheckedInMember{UserID: m.ID, FullName: m.FullName, Email: m.Email})
	}
	return out, nil
}

// ListSuddenChanges implements monitoring.MonitoringService. Counts cover the
// whole team at the default drop; minDrop, severity, search and paging apply
// afterwards.
func (s *MonitoringServiceImpl) ListSuddenChanges(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (monitoring.ListSuddenChangesResponse, error) {
	if err := filter.Validate(); err != nil {
		return monitoring.ListSuddenChangesResponse{}, err
	}

	day, err := s.resolve(ctx, actor, filter)
	if err != nil {
		return monitoring.ListSuddenChangesResponse{}, err
	}

	members, err := s.members(ctx, day.team)
	if err != nil {
		return monitoring.ListSuddenChangesResponse{}, err
	}

	drops, err := s.detector.Detect(ctx, members, day.team.CompanyTimezone, s.opts.SuddenChangeMinBaseline)
	if err != nil {
		return monitoring.ListSuddenChangesResponse{}, fmt.Errorf("failed to detect sudden changes: %w", err)
	}
	changes := monitoring.DroppedAtLeast(drops, minDrop(filter))

	preds := search(filter, fieldFullName, fieldEmail)
	if filter.Severity != nil {
		preds = append(preds, query.Eq{Field: fieldSeverity, Value: *filter.Severity})
	}
	matched := query.Apply(changes, query.Where(preds...), suddenChangeRecord)
	paged := query.Apply(matched, query.Spec{}.Page(filter.Page, filter.Limit), suddenChangeRecord)

	return monitoring.ListSuddenChangesResponse{
		Pagination:    monitoring.NewPagination(int64(len(matched)), filter.Page, filter.Limit, len(paged)),
		Team:          day.info,
		Counts:        monitoring.CountSeverities(monitoring.DroppedAtLeast(drops, monitoring.DefaultMinDrop)),
		SuddenChanges: suddenChangeResponses(paged),
	}, nil
}

// ListExemptions implements monitoring.MonitoringService. Without a status
// filter both pending and active exemptions are listed.
func (s *MonitoringServiceImpl) ListExemptions(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (monitoring.ListExemptionsResponse, error) {
	if err := filter.Validate(); err != nil {
		return monitoring.ListExemptionsResponse{}, err
	}
	if err := filter.ValidateStatus(monitoring.ExemptionPending, monitoring.ExemptionActive); err != nil {
		return monitoring.ListExemptionsResponse{}, err
	}

	day, err := s.resolve(ctx, actor, filter)
	if err != nil {
		return monitoring.ListExemptionsResponse{}, err
	}

	members, err := s.members(ctx, day.team)
	if err != nil {
		return monitoring.ListExemptionsResponse{}, err
	}

	states := []string{monitoring.ExemptionPending, monitoring.ExemptionActive}
	if filter.Status != nil {
		states = []string{*filter.Status}
	}
	spec := exemptionSpec(team.MemberIDs(members), day.date, states, filter.Search)

	total, err := s.ExceptionRepository.Count(ctx, spec)
	if err != nil {
		return monitoring.ListExemptionsResponse{}, fmt.Errorf("failed to count exemptions: %w", err)
	}

	exemptions, err := s.ExceptionRepository.List(ctx, spec.OrderBy(exception.FieldCreatedAt, true).Page(filter.Page, filter.Limit))
	if err != nil {
		return monitoring.ListExemptionsResponse{}, fmt.Errorf("failed to list exemptions: %w", err)
	}

	return monitoring.ListExemptionsResponse{
		Pagination: monitoring.NewPagination(total, filter.Page, filter.Limit, len(exemptions)),
		Team:       day.info,
		Exemptions: exceptionResponses(exemptions),
	}, nil
}

// ========================================
// MEMBER REPORT
// ========================================

// MemberReport implements monitoring.MonitoringService.
func (s *MonitoringServiceImpl) MemberReport(ctx context.Context, actor user.Actor, memberID string, filter monitoring.MonitoringFilter) (report.WorkerHealthReport, error) {
	if err := filter.Validate(); err != nil {
		return report.WorkerHealthReport{}, err
	}

	day, err := s.resolve(ctx, actor, filter)
	if err != nil {
		return report.WorkerHealthReport{}, err
	}

	members, err := s.members(ctx, day.team)
	if err != nil {
		return report.WorkerHealthReport{}, err
	}

	found := false
	for _, m := range members {
		if m.ID == memberID {
			found = true
			break
		}
	}
	if !found {
		return report.WorkerHealthReport{}, team.ErrMemberNotFound
	}

	req := report.WorkerHealthReportRequest{UserID: memberID, PeriodDays: s.opts.HealthReportDays}
	if filter.Days != nil {
		req.PeriodDays = *filter.Days
	}
	return s.reports.GenerateWorkerHealthReport(ctx, day.team, req)
}

// ========================================
// SPECS & MAPPING
// ========================================

func (s *MonitoringServiceImpl) checkInSpec(ids []string, day teamDay, filter monitoring.MonitoringFilter) query.Spec {
	spec := query.Where(
		query.In{Field: checkin.FieldUserID, Values: ids},
		query.Between{Field: checkin.FieldCreatedAt, From: day.dayStart, To: day.dayEnd},
	)
	if filter.Status != nil {
		spec = spec.And(query.Eq{Field: checkin.FieldStatus, Value: *filter.Status})
	}
	for _, p := range search(filter, checkin.FieldUserName, checkin.FieldUserEmail) {
		spec = spec.And(p)
	}
	return spec
}

// exemptionSpec selects exemptions of the given users in the given list
// states: PENDING requests, and ACTIVE approved exemptions covering date.
func exemptionSpec(ids []string, date time.Time, states []string, term *string) query.Spec {
	var anyOf query.Any
	for _, st := range states {
		switch st {
		case monitoring.ExemptionPending:
			anyOf.Preds = append(anyOf.Preds, query.Eq{Field: exception.FieldStatus, Value: string(exception.StatusPending)})
		case monitoring.ExemptionActive:
			anyOf.Preds = append(anyOf.Preds, exception.ActiveOn(date))
		}
	}

	spec := query.Where(
		query.In{Field: exception.FieldUserID, Values: ids},
		query.Eq{Field: exception.FieldIsExemption, Value: true},
		anyOf,
	)
	if term != nil && *term != "" {
		spec = spec.And(query.Search{Fields: []query.Field{exception.FieldUserName, exception.FieldUserEmail}, Term: *term})
	}
	return spec
}

func search(filter monitoring.MonitoringFilter, fields ...query.Field) []query.Predicate {
	if filter.Search == nil || *filter.Search == "" {
		return nil
	}
	return []query.Predicate{query.Search{Fields: fields, Term: *filter.Search}}
}

func minDrop(filter monitoring.MonitoringFilter) float64 {
	if filter.MinDrop != nil {
		return float64(*filter.MinDrop)
	}
	return monitoring.DefaultMinDrop
}

const (
	fieldFullName query.Field = "full_name"
	fieldEmail    query.Field = "email"
	fieldSeverity query.Field = "severity"
)

func memberRecord(m monitoring.NotCheckedInMember) query.Record {
	return func(f query.Field) any {
		switch f {
		case fieldFullName:
			return m.FullName
		case fieldEmail:
			return m.Email
		}
		return nil
	}
}

func suddenChangeRecord(c monitoring.SuddenChange) query.Record {
	return func(f query.Field) any {
		switch f {
		case fieldFullName:
			return c.FullName
		case fieldEmail:
			return c.Email
		case fieldSeverity:
			return string(c.Severity)
		}
		return nil
	}
}

func checkInResponses(checkIns []checkin.CheckIn) []checkin.CheckInResponse {
	out := make([]checkin.CheckInResponse, 0, len(checkIns))
	for _, c := range checkIns {
		out = append(out, checkin.ToResponse(c))
	}
	return out
}

func exceptionResponses(exceptions []exception.Exception) []exception.ExceptionResponse {
	out := make([]exception.ExceptionResponse, 0, len(exceptions))
	for _, e := range exceptions {
		out = append(out, exception.ToResponse(e))
	}
	return out
}

func suddenChangeResponses(changes []monitoring.SuddenChange) []monitoring.SuddenChangeResponse {
	out := make([]monitoring.SuddenChangeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, monitoring.ToSuddenChangeResponse(c))
	}
	return out
}
