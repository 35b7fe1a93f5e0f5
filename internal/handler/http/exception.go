package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/exception"
	"github.com/cmlabs-hris/readiness-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ExceptionHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	CreateExemption(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	EndEarly(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type exceptionHandlerImpl struct {
	exceptionService exception.ExceptionService
}

func NewExceptionHandler(exceptionService exception.ExceptionService) ExceptionHandler {
	return &exceptionHandlerImpl{
		exceptionService: exceptionService,
	}
}

// CreateRequest handles POST /exceptions
func (h *exceptionHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req exception.CreateExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.exceptionService.CreateRequest(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Exception request submitted successfully", result)
}

// CreateExemption handles POST /exceptions/exemptions
func (h *exceptionHandlerImpl) CreateExemption(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req exception.CreateExemptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateExemption decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.exceptionService.CreateExemption(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Exemption created successfully", result)
}

// Approve handles POST /exceptions/{id}/approve
func (h *exceptionHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Exception ID is required", nil)
		return
	}

	result, err := h.exceptionService.Approve(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Exception approved successfully", result)
}

// Reject handles POST /exceptions/{id}/reject
func (h *exceptionHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Exception ID is required", nil)
		return
	}

	result, err := h.exceptionService.Reject(r.Context(), actor, id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Exception rejected successfully", result)
}

// Update handles PUT /exceptions/{id}
func (h *exceptionHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Exception ID is required", nil)
		return
	}

	var req exception.UpdateExceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Update exception decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.exceptionService.Update(r.Context(), actor, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Exception updated successfully", result)
}

// EndEarly handles POST /exceptions/{id}/end-early
func (h *exceptionHandlerImpl) EndEarly(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Exception ID is required", nil)
		return
	}

	var req exception.EndEarlyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("EndEarly decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.exceptionService.EndEarly(r.Context(), actor, id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Exception ended early", result)
}

// Cancel handles DELETE /exceptions/{id}
func (h *exceptionHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Exception ID is required", nil)
		return
	}

	if err := h.exceptionService.Cancel(r.Context(), actor, id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Exception cancelled successfully", nil)
}
