package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type OvertimeHandler interface {
	CreateRule(w http.ResponseWriter, r *http.Request)
	GetRule(w http.ResponseWriter, r *http.Request)
	ListRules(w http.ResponseWriter, r *http.Request)
	UpdateRule(w http.ResponseWriter, r *http.Request)
	DeleteRule(w http.ResponseWriter, r *http.Request)
	Evaluate(w http.ResponseWriter, r *http.Request)
}

type overtimeHandlerImpl struct {
	overtimeService overtime.OvertimeService
}

func NewOvertimeHandler(overtimeService overtime.OvertimeService) OvertimeHandler {
	return &overtimeHandlerImpl{
		overtimeService: overtimeService,
	}
}

// CreateRule implements OvertimeHandler.
func (h *overtimeHandlerImpl) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req overtime.CreateRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.overtimeService.CreateRule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Overtime rule created successfully", result)
}

// GetRule implements OvertimeHandler.
func (h *overtimeHandlerImpl) GetRule(w http.ResponseWriter, r *http.Request) {
	result, err := h.overtimeService.GetRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListRules implements OvertimeHandler.
func (h *overtimeHandlerImpl) ListRules(w http.ResponseWriter, r *http.Request) {
	result, err := h.overtimeService.ListRules(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result)
}

// UpdateRule implements OvertimeHandler.
func (h *overtimeHandlerImpl) UpdateRule(w http.ResponseWriter, r *http.Request) {
	var req overtime.UpdateRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.overtimeService.UpdateRule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime rule updated successfully", result)
}

// DeleteRule implements OvertimeHandler.
func (h *overtimeHandlerImpl) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.overtimeService.DeleteRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overtime rule deleted successfully", nil)
}

// Evaluate implements OvertimeHandler.
func (h *overtimeHandlerImpl) Evaluate(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors

	ruleID := r.URL.Query().Get("rule_id")
	if !validator.IsValidUUID(ruleID) {
		errs.Add("rule_id", "rule_id must be a valid UUID")
	}
	date, ok := validator.IsValidDate(r.URL.Query().Get("date"))
	if !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}
	hours, err := decimal.NewFromString(r.URL.Query().Get("hours"))
	if err != nil || hours.IsNegative() {
		errs.Add("hours", "hours must be a non-negative number")
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.overtimeService.Evaluate(r.Context(), ruleID, date, hours)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
