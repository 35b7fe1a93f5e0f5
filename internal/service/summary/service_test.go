package summary

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/exception"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/queue"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
	"github.com/cmlabs-hris/readiness-backend-go/internal/service/servicetest"
	teamsvc "github.com/cmlabs-hris/readiness-backend-go/internal/service/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTeamID    = "10000000-0000-0000-0000-000000000001"
	testCompanyID = "c0000000-0000-0000-0000-000000000001"
	jakarta       = "Asia/Jakarta"
)

type fixture struct {
	svc        *SummaryServiceImpl
	teams      *servicetest.Teams
	checkIns   *servicetest.CheckIns
	exceptions *servicetest.Exceptions
	holidays   *servicetest.Holidays
	summaries  *servicetest.Summaries
	members    []team.Member
	loc        *time.Location
}

// newFixture builds a Jakarta team of n members; "now" is 2025-03-03 10:00 local.
func newFixture(t *testing.T, n int) *fixture {
	t.Helper()

	loc, err := time.LoadLocation(jakarta)
	require.NoError(t, err)

	members := make([]team.Member, 0, n)
	for i := 1; i <= n; i++ {
		members = append(members, team.Member{
			ID:       fmt.Sprintf("u%d", i),
			FullName: fmt.Sprintf("Worker %d", i),
			Email:    fmt.Sprintf("worker%d@acme.test", i),
		})
	}

	f := &fixture{
		teams: &servicetest.Teams{
			Teams: []team.Team{{
				ID:              testTeamID,
				CompanyID:       testCompanyID,
				Name:            "Pit Crew",
				WorkDays:        team.DefaultWorkDays,
				IsActive:        true,
				CompanyTimezone: jakarta,
			}},
			Members: map[string][]team.Member{testTeamID: members},
		},
		checkIns:   &servicetest.CheckIns{},
		exceptions: &servicetest.Exceptions{},
		holidays:   &servicetest.Holidays{},
		summaries:  &servicetest.Summaries{},
		members:    members,
		loc:        loc,
	}

	clock := timezone.NewResolver(jakarta).WithClock(func() time.Time {
		return time.Date(2025, 3, 3, 10, 0, 0, 0, loc)
	})
	f.svc = NewSummaryService(f.teams, f.checkIns, f.exceptions, f.holidays, f.summaries,
		teamsvc.NewTeamResolver(f.teams), clock)
	return f
}

func (f *fixture) checkIn(userID string, at time.Time, score int) {
	f.checkIns.Items = append(f.checkIns.Items, checkin.CheckIn{
		ID:              fmt.Sprintf("ci-%s-%d", userID, at.Unix()),
		UserID:          userID,
		CompanyID:       testCompanyID,
		ReadinessScore:  score,
		ReadinessStatus: checkin.StatusForScore(score),
		CreatedAt:       at,
	})
}

func (f *fixture) leave(userID string, status exception.Status, exemption bool, start, end time.Time) *exception.Exception {
	e := exception.Exception{
		ID:          fmt.Sprintf("ex-%s-%d", userID, len(f.exceptions.Items)+1),
		UserID:      userID,
		CompanyID:   testCompanyID,
		Type:        exception.TypeSickLeave,
		Status:      status,
		StartDate:   start,
		EndDate:     end,
		IsExemption: exemption,
	}
	f.exceptions.Items = append(f.exceptions.Items, e)
	return &f.exceptions.Items[len(f.exceptions.Items)-1]
}

func (f *fixture) local(day, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, f.loc)
}

func assertConserved(t *testing.T, s summary.DailyTeamSummary) {
	t.Helper()
	if s.IsHoliday {
		assert.Zero(t, s.ExpectedToCheckIn, "holiday expected")
		assert.Zero(t, s.NotCheckedInCount, "holiday not checked in")
		return
	}
	assert.Equal(t, s.TotalMembers, s.OnLeaveCount+s.ExpectedToCheckIn, "members = leave + expected on %s", s.Date)
	assert.Equal(t, s.ExpectedToCheckIn, s.CheckedInCount+s.NotCheckedInCount, "expected = checked + not checked on %s", s.Date)
	assert.GreaterOrEqual(t, s.NotCheckedInCount, 0)
}

func TestRecalculateDailyTeamSummary_TeamScenario(t *testing.T) {
	f := newFixture(t, 5)
	march3 := timezone.Date(2025, 3, 3)

	f.leave("u1", exception.StatusApproved, true, timezone.Date(2025, 3, 1), timezone.Date(2025, 3, 5))
	f.leave("u2", exception.StatusApproved, true, march3, march3)
	f.leave("u5", exception.StatusPending, true, march3, march3)
	f.leave("u4", exception.StatusApproved, false, march3, march3)

	f.checkIn("u3", f.local(3, 7), 82)
	f.checkIn("u4", f.local(3, 5), 75)
	f.checkIn("u1", f.local(3, 9), 30) // on leave, still scored
	f.checkIn("u5", f.local(4, 1), 90) // next local day

	got, err := f.svc.RecalculateDailyTeamSummary(context.Background(), testTeamID, march3, jakarta)
	require.NoError(t, err)

	assert.Equal(t, march3, got.Date)
	assert.Equal(t, 5, got.TotalMembers)
	assert.Equal(t, 2, got.OnLeaveCount)
	assert.Equal(t, 3, got.ExpectedToCheckIn)
	assert.Equal(t, 2, got.CheckedInCount)
	assert.Equal(t, 1, got.NotCheckedInCount)
	assert.Equal(t, 2, got.GreenCount)
	assert.Equal(t, 0, got.YellowCount)
	assert.Equal(t, 1, got.RedCount)
	require.NotNil(t, got.ComplianceRate)
	assert.Equal(t, 66.67, *got.ComplianceRate)
	require.NotNil(t, got.AvgReadinessScore)
	assert.Equal(t, 62.33, *got.AvgReadinessScore)
	assert.True(t, got.IsWorkDay)
	assert.False(t, got.IsHoliday)
	assertConserved(t, got)

	stored, err := f.svc.GetTeamSummaryForDate(context.Background(), testTeamID, march3)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, got, *stored)
}

func TestRecalculateDailyTeamSummary_UsesCompanyLocalDay(t *testing.T) {
	f := newFixture(t, 2)

	// 23:30 UTC on March 2nd is already March 3rd in Jakarta
	f.checkIn("u1", time.Date(2025, 3, 2, 23, 30, 0, 0, time.UTC), 80)

	march3, err := f.svc.RecalculateDailyTeamSummary(context.Background(), testTeamID, timezone.Date(2025, 3, 3), "")
	require.NoError(t, err)
	assert.Equal(t, 1, march3.CheckedInCount)

	march2, err := f.svc.RecalculateDailyTeamSummary(context.Background(), testTeamID, timezone.Date(2025, 3, 2), "")
	require.NoError(t, err)
	assert.Equal(t, 0, march2.CheckedInCount)
}

func TestRecalculateDailyTeamSummary_SecondCheckInSameDayIgnored(t *testing.T) {
	f := newFixture(t, 1)
	f.checkIn("u1", f.local(3, 7), 40)
	f.checkIn("u1", f.local(3, 9), 90)

	got, err := f.svc.RecalculateDailyTeamSummary(context.Background(), testTeamID, timezone.Date(2025, 3, 3), "")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CheckedInCount)
	assert.Equal(t, 1, got.RedCount)
	assert.Equal(t, 40.0, *got.AvgReadinessScore)
}

func TestRecalculateDailyTeamSummary_Idempotent(t *testing.T) {
	f := newFixture(t, 4)
	day := timezone.Date(2025, 3, 3)
	f.leave("u2", exception.StatusApproved, true, day, day)
	f.checkIn("u1", f.local(3, 8), 71)
	f.checkIn("u3", f.local(3, 8), 55)

	first, err := f.svc.RecalculateDailyTeamSummary(context.Background(), testTeamID, day, jakarta)
	require.NoError(t, err)
	second, err := f.svc.RecalculateDailyTeamSummary(context.Background(), testTeamID, day, jakarta)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, f.summaries.Rows, 1)
	assert.Equal(t, 2, f.summaries.Upserts)
}

func TestRecalculateDailyTeamSummary_Holiday(t *testing.T) {
	f := newFixture(t, 3)
	day := timezone.Date(2025, 3, 3)

	f.holidays.Items = []holiday.Holiday{{ID: "h1", CompanyID: testCompanyID, Date: f.local(3, 0), Name: "Company Day"}}
	f.leave("u1", exception.StatusApproved, true, day, day)
	f.checkIn("u2", f.local(3, 8), 88)

	got, err := f.svc.RecalculateDailyTeamSummary(context.Background(), testTeamID, day, "")
	require.NoError(t, err)

	assert.True(t, got.IsHoliday)
	assert.Equal(t, 3, got.TotalMembers)
	assert.Zero(t, got.OnLeaveCount)
	assert.Zero(t, got.ExpectedToCheckIn)
	assert.Zero(t, got.CheckedInCount)
	assert.Zero(t, got.NotCheckedInCount)
	assert.Zero(t, got.GreenCount)
	assert.Nil(t, got.AvgReadinessScore)
	assert.Nil(t, got.ComplianceRate)

	next, err := f.svc.RecalculateDailyTeamSummary(context.Background(), testTeamID, day.AddDate(0, 0, 1), "")
	require.NoError(t, err)
	assert.False(t, next.IsHoliday)
}

func TestRecalculateDailyTeamSummary_NullCompliance(t *testing.T) {
	t.Run("everyone on leave", func(t *testing.T) {
		f := newFixture(t, 2)
		day := timezone.Date(2025, 3, 3)
		f.leave("u1", exception.StatusApproved, true, day, day)
		f.leave("u2", exception.StatusApproved, true, day, day)

		got, err := f.svc.RecalculateDailyTeamSummary(context.Background(), testTeamID, day, "")
		require.NoError(t, err)
		assert.Zero(t, got.ExpectedToCheckIn)
		assert.Nil(t, got.ComplianceRate)
		assertConserved(t, got)
	})

	t.Run("no members", func(t *testing.T) {
		f := newFixture(t, 0)
		got, err := f.svc.RecalculateDailyTeamSummary(context.Background(), testTeamID, timezone.Date(2025, 3, 3), "")
		require.NoError(t, err)
		assert.Zero(t, got.TotalMembers)
		assert.Nil(t, got.ComplianceRate)
		assert.Nil(t, got.AvgReadinessScore)
	})
}

func TestRecalculateSummariesForDateRange_Conservation(t *testing.T) {
	f := newFixture(t, 6)
	f.leave("u1", exception.StatusApproved, true, timezone.Date(2025, 3, 2), timezone.Date(2025, 3, 4))
	f.leave("u2", exception.StatusApproved, true, timezone.Date(2025, 3, 6), timezone.Date(2025, 3, 9))
	f.holidays.Items = []holiday.Holiday{{ID: "h1", CompanyID: testCompanyID, Date: f.local(5, 0)}}

	for day := 1; day <= 10; day++ {
		for i, m := range f.members {
			if (day+i)%3 == 0 {
				continue
			}
			f.checkIn(m.ID, f.local(day, 6+i), 30+((day*7+i*11)%70))
		}
	}

	got, err := f.svc.RecalculateSummariesForDateRange(context.Background(), testTeamID,
		timezone.Date(2025, 3, 1), timezone.Date(2025, 3, 10), "")
	require.NoError(t, err)
	require.Len(t, got, 10)

	for i, s := range got {
		assert.Equal(t, timezone.Date(2025, 3, 1+i), s.Date, "days are recomputed in order")
		assertConserved(t, s)
		if s.ExpectedToCheckIn == 0 {
			assert.Nil(t, s.ComplianceRate)
		}
	}
	assert.True(t, got[4].IsHoliday)
	assert.Equal(t, 1, got[2].OnLeaveCount)
}

func TestRecalculateSummariesForDateRange_UnionOnEdit(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	jan5, jan8, jan10 := timezone.Date(2025, 1, 5), timezone.Date(2025, 1, 8), timezone.Date(2025, 1, 10)

	stored := f.leave("u1", exception.StatusApproved, true, jan5, jan10)
	_, err := f.svc.RecalculateSummariesForDateRange(ctx, testTeamID, jan5, jan10, "")
	require.NoError(t, err)

	before := *stored
	stored.EndDate = jan8
	after := *stored

	r, ok := exception.AffectedRange(exception.TransitionUpdate, &before, &after)
	require.True(t, ok)
	assert.Equal(t, jan5, r.Start)
	assert.Equal(t, jan10, r.End)

	_, err = f.svc.RecalculateSummariesForDateRange(ctx, testTeamID, r.Start, r.End, "")
	require.NoError(t, err)

	for _, day := range timezone.Days(jan5, jan10) {
		s, err := f.svc.GetTeamSummaryForDate(ctx, testTeamID, day)
		require.NoError(t, err)
		require.NotNil(t, s)
		if day.After(jan8) {
			assert.Equal(t, 0, s.OnLeaveCount, "%s is no longer covered", day.Format(timezone.DateLayout))
			assert.Equal(t, 3, s.ExpectedToCheckIn)
		} else {
			assert.Equal(t, 1, s.OnLeaveCount, "%s is still covered", day.Format(timezone.DateLayout))
			assert.Equal(t, 2, s.ExpectedToCheckIn)
		}
	}
}

func TestRecalculateSummariesForDateRange_Errors(t *testing.T) {
	f := newFixture(t, 1)

	_, err := f.svc.RecalculateSummariesForDateRange(context.Background(), testTeamID,
		timezone.Date(2025, 3, 5), timezone.Date(2025, 3, 1), "")
	assert.ErrorIs(t, err, summary.ErrInvalidRange)

	_, err = f.svc.RecalculateSummariesForDateRange(context.Background(), "missing",
		timezone.Date(2025, 3, 1), timezone.Date(2025, 3, 1), "")
	assert.ErrorIs(t, err, team.ErrTeamNotFound)

	f.summaries.Err = fmt.Errorf("disk full")
	got, err := f.svc.RecalculateSummariesForDateRange(context.Background(), testTeamID,
		timezone.Date(2025, 3, 1), timezone.Date(2025, 3, 3), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "2025-03-01")
	assert.Contains(t, err.Error(), "2025-03-03")
	assert.Empty(t, got)
}

func TestGetTeamSummaryForDate_Missing(t *testing.T) {
	f := newFixture(t, 1)
	got, err := f.svc.GetTeamSummaryForDate(context.Background(), testTeamID, timezone.Date(2025, 3, 3))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecalculateTodaySummary(t *testing.T) {
	f := newFixture(t, 2)
	f.checkIn("u1", f.local(3, 8), 77)

	got, err := f.svc.RecalculateTodaySummary(context.Background(), testTeamID, "")
	require.NoError(t, err)
	assert.Equal(t, timezone.Date(2025, 3, 3), got.Date)
	assert.Equal(t, 1, got.CheckedInCount)
}

func TestHistory(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.checkIn("u1", f.local(1, 8), 80)
	f.checkIn("u1", f.local(3, 8), 40)
	f.checkIn("u2", f.local(3, 8), 60)

	_, err := f.svc.RecalculateSummariesForDateRange(ctx, testTeamID, timezone.Date(2025, 2, 20), timezone.Date(2025, 3, 3), "")
	require.NoError(t, err)

	admin := user.Actor{UserID: "admin", CompanyID: testCompanyID, Role: user.RoleAdmin}
	resp, err := f.svc.History(ctx, admin, summary.HistoryRequest{Days: "3"})
	require.NoError(t, err)

	assert.Equal(t, testTeamID, resp.TeamID)
	assert.Equal(t, "2025-03-01", resp.From)
	assert.Equal(t, "2025-03-03", resp.To)
	require.Len(t, resp.Summaries, 3)
	assert.Equal(t, "2025-03-03", resp.Summaries[0].Date)
	assert.Equal(t, 3, resp.Aggregate.Days)
	assert.Equal(t, 3, resp.Aggregate.CheckedInCount)
	assert.Equal(t, 60.0, *resp.Aggregate.AvgReadinessScore)
	assert.Equal(t, 50.0, *resp.Aggregate.ComplianceRate)

	_, err = f.svc.History(ctx, admin, summary.HistoryRequest{Days: "0"})
	assert.Error(t, err)
}

func TestRebuild(t *testing.T) {
	f := newFixture(t, 2)
	supervisor := user.Actor{UserID: "sup", CompanyID: testCompanyID, Role: user.RoleSupervisor}

	resp, err := f.svc.Rebuild(context.Background(), supervisor, summary.RebuildRequest{
		TeamID:    testTeamID,
		StartDate: "2025-03-01",
		EndDate:   "2025-03-03",
	})
	require.NoError(t, err)
	assert.Equal(t, testTeamID, resp.TeamID)
	assert.Len(t, resp.Summaries, 3)
	assert.Len(t, f.summaries.Rows, 3)

	_, err = f.svc.Rebuild(context.Background(), supervisor, summary.RebuildRequest{
		StartDate: "2025-03-03",
		EndDate:   "2025-03-01",
	})
	assert.Error(t, err)
}

func TestRebuildRecent(t *testing.T) {
	f := newFixture(t, 2)
	f.teams.Teams = append(f.teams.Teams, team.Team{ID: "inactive", CompanyID: testCompanyID, IsActive: false})

	require.NoError(t, f.svc.RebuildRecent(context.Background(), 7))

	assert.Len(t, f.summaries.Rows, 8)
	rows, err := f.summaries.ListByTeamInRange(context.Background(), testTeamID, timezone.Date(2025, 2, 24), timezone.Date(2025, 3, 3))
	require.NoError(t, err)
	assert.Len(t, rows, 8)
}

func TestQueueTrigger_EnqueuesAndHandlerRecalculates(t *testing.T) {
	f := newFixture(t, 2)
	f.checkIn("u1", f.local(3, 8), 90)

	q := queue.NewMemoryQueue(10, time.Second)
	trigger := NewQueueTrigger(q)

	ctx, cancel := context.WithCancel(context.Background())
	trigger.Fire(ctx, summary.RecalculationRequest{
		TeamID:    testTeamID,
		CompanyID: testCompanyID,
		Timezone:  jakarta,
		StartDate: timezone.Date(2025, 3, 2),
		EndDate:   timezone.Date(2025, 3, 3),
		Action:    "approve",
	})
	// The request outlives the caller's context
	cancel()

	job, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, JobRecalculateSummaries, job.Type)

	require.NoError(t, NewRecalculationHandler(f.svc)(context.Background(), *job))

	assert.Len(t, f.summaries.Rows, 2)
	s, err := f.svc.GetTeamSummaryForDate(context.Background(), testTeamID, timezone.Date(2025, 3, 3))
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 1, s.CheckedInCount)
}

func TestRecalculationHandler_ReturnsFailures(t *testing.T) {
	f := newFixture(t, 1)
	job, err := queue.NewJob(JobRecalculateSummaries, summary.RecalculationRequest{
		TeamID:    "missing",
		StartDate: timezone.Date(2025, 3, 3),
		EndDate:   timezone.Date(2025, 3, 3),
	})
	require.NoError(t, err)

	err = NewRecalculationHandler(f.svc)(context.Background(), job)
	assert.ErrorIs(t, err, team.ErrTeamNotFound)
}
