package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/summary"
	"github.com/cmlabs-hris/readiness-backend-go/internal/handler/http/response"
)

type TeamSummaryHandler interface {
	History(w http.ResponseWriter, r *http.Request)
	Recalculate(w http.ResponseWriter, r *http.Request)
}

type teamSummaryHandlerImpl struct {
	summaryService summary.SummaryService
}

func NewTeamSummaryHandler(summaryService summary.SummaryService) TeamSummaryHandler {
	return &teamSummaryHandlerImpl{
		summaryService: summaryService,
	}
}

// History handles GET /team-summaries
func (h *teamSummaryHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	req := summary.HistoryRequest{
		TeamID: r.URL.Query().Get("teamId"),
		Days:   r.URL.Query().Get("days"),
	}

	result, err := h.summaryService.History(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Recalculate handles POST /team-summaries/recalculate
func (h *teamSummaryHandlerImpl) Recalculate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req summary.RebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Recalculate decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.summaryService.Rebuild(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Team summaries recalculated successfully", result)
}
