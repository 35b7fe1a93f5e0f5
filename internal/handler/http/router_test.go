package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/exception"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/monitoring"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/readiness-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "test-secret-key-for-jwt"
	testCompanyID = "c0000000-0000-0000-0000-000000000001"
	testTeamID    = "10000000-0000-0000-0000-000000000001"
)

// ===== STUB SERVICES =====

type stubMonitoring struct {
	actor    user.Actor
	filter   monitoring.MonitoringFilter
	memberID string
	err      error
}

func (s *stubMonitoring) record(actor user.Actor, filter monitoring.MonitoringFilter) error {
	s.actor, s.filter = actor, filter
	return s.err
}

func (s *stubMonitoring) Overview(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (monitoring.OverviewResponse, error) {
	return monitoring.OverviewResponse{}, s.record(actor, filter)
}

func (s *stubMonitoring) Stats(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (monitoring.StatsResponse, error) {
	return monitoring.StatsResponse{Source: "store", Team: monitoring.TeamInfo{ID: testTeamID}}, s.record(actor, filter)
}

func (s *stubMonitoring) ListCheckIns(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (monitoring.ListCheckInsResponse, error) {
	return monitoring.ListCheckInsResponse{}, s.record(actor, filter)
}

func (s *stubMonitoring) ListNotCheckedIn(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (monitoring.ListNotCheckedInResponse, error) {
	return monitoring.ListNotCheckedInResponse{}, s.record(actor, filter)
}

func (s *stubMonitoring) ListSuddenChanges(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (monitoring.ListSuddenChangesResponse, error) {
	return monitoring.ListSuddenChangesResponse{
		Pagination: monitoring.NewPagination(45, filter.Page, filter.Limit, 5),
		Team:       monitoring.TeamInfo{ID: testTeamID},
		Counts:     monitoring.SeverityCounts{Critical: 2, Total: 2},
	}, s.record(actor, filter)
}

func (s *stubMonitoring) ListExemptions(ctx context.Context, actor user.Actor, filter monitoring.MonitoringFilter) (monitoring.ListExemptionsResponse, error) {
	return monitoring.ListExemptionsResponse{}, s.record(actor, filter)
}

func (s *stubMonitoring) MemberReport(ctx context.Context, actor user.Actor, memberID string, filter monitoring.MonitoringFilter) (report.WorkerHealthReport, error) {
	s.memberID = memberID
	return report.WorkerHealthReport{}, s.record(actor, filter)
}

type stubCheckIns struct {
	req checkin.SubmitCheckInRequest
	err error
}

func (s *stubCheckIns) Submit(ctx context.Context, actor user.Actor, req checkin.SubmitCheckInRequest) (checkin.CheckInResponse, error) {
	s.req = req
	if s.err != nil {
		return checkin.CheckInResponse{}, s.err
	}
	return checkin.CheckInResponse{ID: "ci-1", UserID: actor.UserID, ReadinessScore: 78}, nil
}

type stubExceptions struct {
	lastID string
	err    error
}

func (s *stubExceptions) result(id string) (exception.ExceptionResponse, error) {
	s.lastID = id
	return exception.ExceptionResponse{ID: id}, s.err
}

func (s *stubExceptions) CreateRequest(ctx context.Context, actor user.Actor, req exception.CreateExceptionRequest) (exception.ExceptionResponse, error) {
	return s.result("new")
}

func (s *stubExceptions) CreateExemption(ctx context.Context, actor user.Actor, req exception.CreateExemptionRequest) (exception.ExceptionResponse, error) {
	return s.result("new-exemption")
}

func (s *stubExceptions) Approve(ctx context.Context, actor user.Actor, id string) (exception.ExceptionResponse, error) {
	return s.result(id)
}

func (s *stubExceptions) Reject(ctx context.Context, actor user.Actor, id string) (exception.ExceptionResponse, error) {
	return s.result(id)
}

func (s *stubExceptions) Update(ctx context.Context, actor user.Actor, id string, req exception.UpdateExceptionRequest) (exception.ExceptionResponse, error) {
	return s.result(id)
}

func (s *stubExceptions) EndEarly(ctx context.Context, actor user.Actor, id string, req exception.EndEarlyRequest) (exception.ExceptionResponse, error) {
	return s.result(id)
}

func (s *stubExceptions) Cancel(ctx context.Context, actor user.Actor, id string) error {
	_, err := s.result(id)
	return err
}

type stubSummaries struct {
	summary.SummaryService
	history summary.HistoryRequest
	rebuild summary.RebuildRequest
	err     error
}

func (s *stubSummaries) History(ctx context.Context, actor user.Actor, req summary.HistoryRequest) (summary.HistoryResponse, error) {
	s.history = req
	return summary.HistoryResponse{TeamID: testTeamID}, s.err
}

func (s *stubSummaries) Rebuild(ctx context.Context, actor user.Actor, req summary.RebuildRequest) (summary.RebuildResponse, error) {
	s.rebuild = req
	return summary.RebuildResponse{TeamID: testTeamID}, s.err
}

// ===== HELPERS =====

type testServer struct {
	router     http.Handler
	jwt        jwt.Service
	monitoring *stubMonitoring
	checkIns   *stubCheckIns
	exceptions *stubExceptions
	summaries  *stubSummaries
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		jwt:        jwt.NewJWTService(testSecret, "1h"),
		monitoring: &stubMonitoring{},
		checkIns:   &stubCheckIns{},
		exceptions: &stubExceptions{},
		summaries:  &stubSummaries{},
	}
	s.router = NewRouter(s.jwt.JWTAuth(), RouterOptions{AllowedOrigins: []string{"http://localhost:5173"}},
		NewMonitoringHandler(s.monitoring),
		NewCheckInHandler(s.checkIns),
		NewExceptionHandler(s.exceptions),
		NewTeamSummaryHandler(s.summaries),
	)
	return s
}

func (s *testServer) do(t *testing.T, method, path string, role user.Role, body any) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, _, err := s.jwt.GenerateAccessToken(user.Actor{
			UserID:    "20000000-0000-0000-0000-000000000001",
			CompanyID: testCompanyID,
			Role:      role,
		})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp response.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

// ===== TESTS =====

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodGet, "/api/v1/daily-monitoring/stats", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)
}

func TestRouter_RejectsNonAccessToken(t *testing.T) {
	s := newTestServer(t)
	_, token, err := s.jwt.JWTAuth().Encode(map[string]interface{}{
		"user_id":    "u-1",
		"company_id": testCompanyID,
		"role":       "ADMIN",
		"type":       "refresh",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/daily-monitoring/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_WorkerCannotViewMonitoring(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodGet, "/api/v1/daily-monitoring", user.RoleWorker, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
}

func TestMonitoringHandler_Stats_PassesActorAndFilter(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodGet, "/api/v1/daily-monitoring/stats?teamId="+testTeamID+"&search=ana&page=2&limit=5&minDrop=15", user.RoleTeamLead, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, user.RoleTeamLead, s.monitoring.actor.Role)
	assert.Equal(t, testCompanyID, s.monitoring.actor.CompanyID)
	require.NotNil(t, s.monitoring.filter.TeamID)
	assert.Equal(t, testTeamID, *s.monitoring.filter.TeamID)
	assert.Equal(t, "ana", *s.monitoring.filter.Search)
	assert.Equal(t, 2, s.monitoring.filter.Page)
	assert.Equal(t, 5, s.monitoring.filter.Limit)
	assert.Equal(t, 15, *s.monitoring.filter.MinDrop)
}

func TestMonitoringHandler_ListSendsPaginationAsMeta(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodGet, "/api/v1/daily-monitoring/sudden-changes?page=3&limit=20", user.RoleSupervisor, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.Limit)
	assert.Equal(t, int64(45), resp.Meta.TotalItems)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, "41-45 of 45", resp.Meta.Showing)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotContains(t, data, "total_count")
	assert.Contains(t, data, "counts")
}

func TestMonitoringHandler_MalformedNumberIsValidationError(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodGet, "/api/v1/daily-monitoring/sudden-changes?minDrop=lots", user.RoleSupervisor, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "minDrop")
}

func TestMonitoringHandler_MapsTeamErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{team.ErrForbiddenTeam, http.StatusForbidden, "FORBIDDEN_TEAM"},
		{team.ErrNoTeamAssigned, http.StatusBadRequest, "NO_TEAM_ASSIGNED"},
		{team.ErrTeamNotFound, http.StatusNotFound, "TEAM_NOT_FOUND"},
		{team.ErrMemberNotFound, http.StatusNotFound, "MEMBER_NOT_FOUND"},
		{assert.AnError, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}
	for _, c := range cases {
		t.Run(c.code, func(t *testing.T) {
			s := newTestServer(t)
			s.monitoring.err = c.err

			rec, resp := s.do(t, http.MethodGet, "/api/v1/daily-monitoring/member/20000000-0000-0000-0000-000000000003", user.RoleExecutive, nil)

			assert.Equal(t, c.status, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, c.code, resp.Error.Code)
			assert.Equal(t, "20000000-0000-0000-0000-000000000003", s.monitoring.memberID)
		})
	}
}

func TestCheckInHandler_Submit(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/checkins", user.RoleWorker, map[string]int{
		"mood": 8, "stress": 3, "sleep": 8, "physical_health": 8,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, 8, s.checkIns.req.Mood)
	assert.Equal(t, 8, s.checkIns.req.PhysicalHealth)

	s.checkIns.err = checkin.ErrAlreadyCheckedIn
	rec, _ = s.do(t, http.MethodPost, "/api/v1/checkins", user.RoleWorker, map[string]int{"mood": 8})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckInHandler_InvalidBody(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/checkins", user.RoleWorker, "not an object")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExceptionHandler_Routes(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/exceptions/ex-7/approve", user.RoleTeamLead, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ex-7", s.exceptions.lastID)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/exceptions/ex-7/reject", user.RoleWorker, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/exceptions/ex-8/end-early", user.RoleWorker, map[string]string{"end_date": "2025-01-07"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ex-8", s.exceptions.lastID)

	rec, _ = s.do(t, http.MethodDelete, "/api/v1/exceptions/ex-9", user.RoleWorker, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ex-9", s.exceptions.lastID)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/exceptions", user.RoleWorker, map[string]string{"type": "SICK_LEAVE"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestExceptionHandler_MapsLifecycleErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{exception.ErrExceptionNotFound, http.StatusNotFound},
		{exception.ErrAlreadyProcessed, http.StatusConflict},
		{exception.ErrOverlapping, http.StatusConflict},
		{exception.ErrNotApproved, http.StatusBadRequest},
		{exception.ErrInvalidEndDate, http.StatusBadRequest},
		{user.ErrInsufficientPermissions, http.StatusForbidden},
	}
	for _, c := range cases {
		s := newTestServer(t)
		s.exceptions.err = c.err

		rec, _ := s.do(t, http.MethodPost, "/api/v1/exceptions/ex-1/approve", user.RoleAdmin, nil)

		assert.Equal(t, c.status, rec.Code, c.err.Error())
	}
}

func TestTeamSummaryHandler(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/api/v1/team-summaries?teamId="+testTeamID+"&days=14", user.RoleTeamLead, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testTeamID, s.summaries.history.TeamID)
	assert.Equal(t, "14", s.summaries.history.Days)

	body := map[string]string{"team_id": testTeamID, "start_date": "2025-03-01", "end_date": "2025-03-10"}

	rec, _ = s.do(t, http.MethodPost, "/api/v1/team-summaries/recalculate", user.RoleTeamLead, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := s.do(t, http.MethodPost, "/api/v1/team-summaries/recalculate", user.RoleSupervisor, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "2025-03-10", s.summaries.rebuild.EndDate)

	s.summaries.err = summary.ErrInvalidRange
	rec, _ = s.do(t, http.MethodPost, "/api/v1/team-summaries/recalculate", user.RoleAdmin, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
