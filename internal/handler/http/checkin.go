package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/readiness-backend-go/internal/handler/http/response"
)

type CheckInHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
}

type checkInHandlerImpl struct {
	checkInService checkin.CheckInService
}

func NewCheckInHandler(checkInService checkin.CheckInService) CheckInHandler {
	return &checkInHandlerImpl{
		checkInService: checkInService,
	}
}

// Submit handles POST /checkins
func (h *checkInHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req checkin.SubmitCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Submit check-in decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.checkInService.Submit(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check-in submitted successfully", result)
}
