package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/lateness"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type LatenessHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Calculate(w http.ResponseWriter, r *http.Request)
}

type latenessHandlerImpl struct {
	latenessService lateness.LatenessService
}

func NewLatenessHandler(latenessService lateness.LatenessService) LatenessHandler {
	return &latenessHandlerImpl{
		latenessService: latenessService,
	}
}

// Create implements LatenessHandler.
func (h *latenessHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req lateness.CreateRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.latenessService.CreateRule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Lateness rule created successfully", result)
}

// Get implements LatenessHandler.
func (h *latenessHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.latenessService.GetRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements LatenessHandler.
func (h *latenessHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.latenessService.ListRules(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result)
}

// Update implements LatenessHandler.
func (h *latenessHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req lateness.UpdateRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.latenessService.UpdateRule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Lateness rule updated successfully", result)
}

// Delete implements LatenessHandler.
func (h *latenessHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.latenessService.DeleteRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Lateness rule deleted successfully", nil)
}

// Calculate implements LatenessHandler.
func (h *latenessHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	var req lateness.CalculateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.latenessService.Calculate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
