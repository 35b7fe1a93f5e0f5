// Package servicetest provides in-memory repositories for service tests.
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/exception"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/query"
)

// Teams is an in-memory team.TeamRepository.
type Teams struct {
	Teams   []team.Team
	Members map[string][]team.Member // team id -> members
	Assign  map[string]string        // user id -> team id
	Err     error
}

func (f *Teams) GetByID(ctx context.Context, id string) (team.Team, error) {
	if f.Err != nil {
		return team.Team{}, f.Err
	}
	for _, t := range f.Teams {
		if t.ID == id {
			return t, nil
		}
	}
	return team.Team{}, team.ErrTeamNotFound
}

func (f *Teams) GetFirstActiveByCompany(ctx context.Context, companyID string) (team.Team, error) {
	if f.Err != nil {
		return team.Team{}, f.Err
	}
	var active []team.Team
	for _, t := range f.Teams {
		if t.CompanyID == companyID && t.IsActive {
			active = append(active, t)
		}
	}
	if len(active) == 0 {
		return team.Team{}, team.ErrTeamNotFound
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Name < active[j].Name })
	return active[0], nil
}

func (f *Teams) GetByLeader(ctx context.Context, leaderID string, companyID string) (team.Team, error) {
	if f.Err != nil {
		return team.Team{}, f.Err
	}
	for _, t := range f.Teams {
		if t.LeaderID != nil && *t.LeaderID == leaderID && t.CompanyID == companyID && t.IsActive {
			return t, nil
		}
	}
	return team.Team{}, team.ErrNoTeamAssigned
}

func (f *Teams) GetByMember(ctx context.Context, userID string, companyID string) (team.Team, error) {
	if f.Err != nil {
		return team.Team{}, f.Err
	}
	teamID, ok := f.Assign[userID]
	if !ok {
		return team.Team{}, team.ErrNoTeamAssigned
	}
	t, err := f.GetByID(ctx, teamID)
	if err != nil || t.CompanyID != companyID || !t.IsActive {
		return team.Team{}, team.ErrNoTeamAssigned
	}
	return t, nil
}

func (f *Teams) ListActive(ctx context.Context) ([]team.Team, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []team.Team
	for _, t := range f.Teams {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *Teams) ListActiveMembers(ctx context.Context, teamID string) ([]team.Member, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]team.Member(nil), f.Members[teamID]...), nil
}

// CheckIns is an in-memory checkin.CheckInRepository.
type CheckIns struct {
	mu    sync.Mutex
	Items []checkin.CheckIn
	Err   error
	seq   int

	// Locks records every LockUserDay call as "user/date"
	Locks []string
}

func checkInRecord(c checkin.CheckIn) query.Record {
	return func(f query.Field) any {
		switch f {
		case checkin.FieldID:
			return c.ID
		case checkin.FieldUserID:
			return c.UserID
		case checkin.FieldCompanyID:
			return c.CompanyID
		case checkin.FieldCreatedAt:
			return c.CreatedAt
		case checkin.FieldStatus:
			return string(c.ReadinessStatus)
		case checkin.FieldScore:
			return c.ReadinessScore
		case checkin.FieldUserName:
			return deref(c.UserName)
		case checkin.FieldUserEmail:
			return deref(c.UserEmail)
		}
		return nil
	}
}

func (f *CheckIns) Create(ctx context.Context, c checkin.CheckIn) (checkin.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return checkin.CheckIn{}, f.Err
	}
	f.seq++
	if c.ID == "" {
		c.ID = fmt.Sprintf("checkin-%d", f.seq)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	f.Items = append(f.Items, c)
	return c, nil
}

func (f *CheckIns) List(ctx context.Context, spec query.Spec) ([]checkin.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if len(spec.Order) == 0 {
		spec = spec.OrderBy(checkin.FieldCreatedAt, false)
	}
	return query.Apply(f.Items, spec, checkInRecord), nil
}

func (f *CheckIns) Count(ctx context.Context, spec query.Spec) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	return int64(len(query.Apply(f.Items, spec.Unpaged(), checkInRecord))), nil
}

func (f *CheckIns) LockUserDay(ctx context.Context, userID string, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Locks = append(f.Locks, userID+"/"+date.Format("2006-01-02"))
	return nil
}

// Exceptions is an in-memory exception.ExceptionRepository.
type Exceptions struct {
	mu    sync.Mutex
	Items []exception.Exception
	Err   error
	seq   int
}

func exceptionRecord(e exception.Exception) query.Record {
	return func(f query.Field) any {
		switch f {
		case exception.FieldID:
			return e.ID
		case exception.FieldUserID:
			return e.UserID
		case exception.FieldCompanyID:
			return e.CompanyID
		case exception.FieldStatus:
			return string(e.Status)
		case exception.FieldIsExemption:
			return e.IsExemption
		case exception.FieldStartDate:
			return e.StartDate
		case exception.FieldEndDate:
			return e.EndDate
		case exception.FieldCreatedAt:
			return e.CreatedAt
		case exception.FieldUserName:
			return deref(e.UserName)
		case exception.FieldUserEmail:
			return deref(e.UserEmail)
		}
		return nil
	}
}

func (f *Exceptions) Create(ctx context.Context, e exception.Exception) (exception.Exception, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return exception.Exception{}, f.Err
	}
	f.seq++
	if e.ID == "" {
		e.ID = fmt.Sprintf("exception-%d", f.seq)
	}
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now
	f.Items = append(f.Items, e)
	return e, nil
}

func (f *Exceptions) GetByID(ctx context.Context, id string, companyID string) (exception.Exception, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return exception.Exception{}, f.Err
	}
	for _, e := range f.Items {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return exception.Exception{}, exception.ErrExceptionNotFound
}

func (f *Exceptions) Update(ctx context.Context, e exception.Exception) (exception.Exception, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return exception.Exception{}, f.Err
	}
	for i := range f.Items {
		if f.Items[i].ID == e.ID && f.Items[i].CompanyID == e.CompanyID {
			e.UpdatedAt = time.Now()
			f.Items[i] = e
			return e, nil
		}
	}
	return exception.Exception{}, exception.ErrExceptionNotFound
}

func (f *Exceptions) Delete(ctx context.Context, id string, companyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	for i := range f.Items {
		if f.Items[i].ID == id && f.Items[i].CompanyID == companyID {
			f.Items = append(f.Items[:i], f.Items[i+1:]...)
			return nil
		}
	}
	return exception.ErrExceptionNotFound
}

func (f *Exceptions) List(ctx context.Context, spec query.Spec) ([]exception.Exception, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return query.Apply(f.Items, spec, exceptionRecord), nil
}

func (f *Exceptions) Count(ctx context.Context, spec query.Spec) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	return int64(len(query.Apply(f.Items, spec.Unpaged(), exceptionRecord))), nil
}

// Holidays is an in-memory holiday.HolidayRepository keyed by holiday instants.
type Holidays struct {
	Items []holiday.Holiday
	Err   error
}

func (f *Holidays) ExistsInRange(ctx context.Context, companyID string, start, end time.Time) (bool, error) {
	list, err := f.ListInRange(ctx, companyID, start, end)
	return len(list) > 0, err
}

func (f *Holidays) ListInRange(ctx context.Context, companyID string, start, end time.Time) ([]holiday.Holiday, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	var out []holiday.Holiday
	for _, h := range f.Items {
		if h.CompanyID == companyID && !h.Date.Before(start) && h.Date.Before(end) {
			out = append(out, h)
		}
	}
	return out, nil
}

// Summaries is an in-memory summary.SummaryRepository.
type Summaries struct {
	mu      sync.Mutex
	Rows    map[string]summary.DailyTeamSummary
	Upserts int
	Err     error
	seq     int
}

func summaryKey(teamID string, date time.Time) string {
	return teamID + "|" + date.Format("2006-01-02")
}

func (f *Summaries) Upsert(ctx context.Context, s summary.DailyTeamSummary) (summary.DailyTeamSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return summary.DailyTeamSummary{}, f.Err
	}
	if f.Rows == nil {
		f.Rows = make(map[string]summary.DailyTeamSummary)
	}
	key := summaryKey(s.TeamID, s.Date)
	if prev, ok := f.Rows[key]; ok {
		s.ID, s.CreatedAt = prev.ID, prev.CreatedAt
	} else {
		f.seq++
		s.ID = fmt.Sprintf("summary-%d", f.seq)
	}
	f.Rows[key] = s
	f.Upserts++
	return s, nil
}

func (f *Summaries) GetByTeamAndDate(ctx context.Context, teamID string, date time.Time) (summary.DailyTeamSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return summary.DailyTeamSummary{}, f.Err
	}
	s, ok := f.Rows[summaryKey(teamID, date)]
	if !ok {
		return summary.DailyTeamSummary{}, summary.ErrSummaryNotFound
	}
	return s, nil
}

func (f *Summaries) ListByTeamInRange(ctx context.Context, teamID string, from, to time.Time) ([]summary.DailyTeamSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []summary.DailyTeamSummary
	for _, s := range f.Rows {
		if s.TeamID == teamID && !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// Reports is a canned report.ReportRepository.
type Reports struct {
	Baseline *report.Baseline
	History  []report.MonthlyBucket
	Err      error

	BaselineFrom, BaselineTo time.Time
	HistoryTZ                string
	HistoryFrom              time.Time
}

func (f *Reports) GetBaseline(ctx context.Context, userID string, from, to time.Time) (*report.Baseline, error) {
	f.BaselineFrom, f.BaselineTo = from, to
	return f.Baseline, f.Err
}

func (f *Reports) GetMonthlyHistory(ctx context.Context, userID string, tz string, from time.Time) ([]report.MonthlyBucket, error) {
	f.HistoryTZ, f.HistoryFrom = tz, from
	return f.History, f.Err
}

// Users is an in-memory user.UserRepository.
type Users struct {
	Items []user.User
}

func (f *Users) GetByID(ctx context.Context, id string, companyID string) (user.User, error) {
	for _, u := range f.Items {
		if u.ID == id && u.CompanyID == companyID {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

// Companies is an in-memory company.CompanyRepository.
type Companies struct {
	Items []company.Company
}

func (f *Companies) GetByID(ctx context.Context, id string) (company.Company, error) {
	for _, c := range f.Items {
		if c.ID == id {
			return c, nil
		}
	}
	return company.Company{}, company.ErrCompanyNotFound
}

// Trigger records recalculation requests instead of running them.
type Trigger struct {
	mu       sync.Mutex
	Requests []summary.RecalculationRequest
}

func (f *Trigger) Fire(ctx context.Context, req summary.RecalculationRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
}

// Fired returns a copy of the recorded requests.
func (f *Trigger) Fired() []summary.RecalculationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]summary.RecalculationRequest(nil), f.Requests...)
}

// Transactor runs fn directly.
type Transactor struct{}

func (Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
