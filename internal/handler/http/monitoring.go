package http

import (
	"net/http"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/monitoring"
	"github.com/cmlabs-hris/readiness-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type MonitoringHandler interface {
	// Daily monitoring dashboard
	Overview(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)

	// Lists
	ListCheckIns(w http.ResponseWriter, r *http.Request)
	ListNotCheckedIn(w http.ResponseWriter, r *http.Request)
	ListSuddenChanges(w http.ResponseWriter, r *http.Request)
	ListExemptions(w http.ResponseWriter, r *http.Request)

	// Worker health report
	MemberReport(w http.ResponseWriter, r *http.Request)
}

type monitoringHandlerImpl struct {
	monitoringService monitoring.MonitoringService
}

func NewMonitoringHandler(monitoringService monitoring.MonitoringService) MonitoringHandler {
	return &monitoringHandlerImpl{
		monitoringService: monitoringService,
	}
}

// parseMonitoringFilter reads the shared daily-monitoring query parameters.
func parseMonitoringFilter(r *http.Request) (monitoring.MonitoringFilter, error) {
	var errs validator.ValidationErrors

	filter := monitoring.MonitoringFilter{
		TeamID:   queryString(r, "teamId"),
		Search:   queryString(r, "search"),
		Status:   queryString(r, "status"),
		Severity: queryString(r, "severity"),
		MinDrop:  queryInt(r, "minDrop", &errs),
		Days:     queryInt(r, "days", &errs),
	}
	if page := queryInt(r, "page", &errs); page != nil {
		filter.Page = *page
	}
	if limit := queryInt(r, "limit", &errs); limit != nil {
		filter.Limit = *limit
	}

	if len(errs) > 0 {
		return filter, errs
	}
	return filter, nil
}

func pageMeta(p monitoring.Pagination) *response.Meta {
	return &response.Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalItems: p.TotalCount,
		TotalPages: p.TotalPages,
		Showing:    p.Showing,
	}
}

// Overview handles GET /daily-monitoring
func (h *monitoringHandlerImpl) Overview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	filter, err := parseMonitoringFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.monitoringService.Overview(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Stats handles GET /daily-monitoring/stats
func (h *monitoringHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	filter, err := parseMonitoringFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.monitoringService.Stats(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListCheckIns handles GET /daily-monitoring/checkins
func (h *monitoringHandlerImpl) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	filter, err := parseMonitoringFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.monitoringService.ListCheckIns(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, pageMeta(result.Pagination))
}

// ListNotCheckedIn handles GET /daily-monitoring/not-checked-in
func (h *monitoringHandlerImpl) ListNotCheckedIn(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	filter, err := parseMonitoringFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.monitoringService.ListNotCheckedIn(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, pageMeta(result.Pagination))
}

// ListSuddenChanges handles GET /daily-monitoring/sudden-changes
func (h *monitoringHandlerImpl) ListSuddenChanges(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	filter, err := parseMonitoringFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.monitoringService.ListSuddenChanges(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, pageMeta(result.Pagination))
}

// ListExemptions handles GET /daily-monitoring/exemptions
func (h *monitoringHandlerImpl) ListExemptions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	filter, err := parseMonitoringFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.monitoringService.ListExemptions(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, pageMeta(result.Pagination))
}

// MemberReport handles GET /daily-monitoring/member/{id}
func (h *monitoringHandlerImpl) MemberReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	memberID := chi.URLParam(r, "id")
	if memberID == "" {
		response.BadRequest(w, "Member ID is required", nil)
		return
	}

	filter, err := parseMonitoringFilter(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.monitoringService.MemberReport(r.Context(), actor, memberID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
