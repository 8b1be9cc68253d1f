package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type AssignmentHandler interface {
	// Subject scoped
	Create(w http.ResponseWriter, r *http.Request)
	ListBySubjectType(w http.ResponseWriter, r *http.Request)
	ListBySubject(w http.ResponseWriter, r *http.Request)
	UpdateBySubject(w http.ResponseWriter, r *http.Request)
	DeleteBySubject(w http.ResponseWriter, r *http.Request)
	GetActiveShift(w http.ResponseWriter, r *http.Request)

	// Single assignment
	Get(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)

	// Status queries and sweeps
	ListExpiring(w http.ResponseWriter, r *http.Request)
	ListExpired(w http.ResponseWriter, r *http.Request)
	ExpireAll(w http.ResponseWriter, r *http.Request)
	RecalculateAll(w http.ResponseWriter, r *http.Request)
}

type assignmentHandlerImpl struct {
	assignmentService assignment.AssignmentService
}

func NewAssignmentHandler(assignmentService assignment.AssignmentService) AssignmentHandler {
	return &assignmentHandlerImpl{
		assignmentService: assignmentService,
	}
}

type activeShiftResponse struct {
	Assignment assignment.AssignmentResponse `json:"assignment"`
	Shift      shift.ShiftResponse           `json:"shift"`
}

func subjectTypeParam(r *http.Request) (assignment.SubjectType, error) {
	subjectType, ok := assignment.ParseSubjectType(chi.URLParam(r, "subjectType"))
	if !ok {
		return "", assignment.ErrInvalidSubjectType
	}
	return subjectType, nil
}

func subjectParam(r *http.Request) (assignment.Subject, error) {
	subjectType, err := subjectTypeParam(r)
	if err != nil {
		return assignment.Subject{}, err
	}
	return assignment.Subject{Type: subjectType, ID: chi.URLParam(r, "subjectID")}, nil
}

// Create implements AssignmentHandler.
func (h *assignmentHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	subjectType, err := subjectTypeParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req assignment.CreateAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.assignmentService.Create(r.Context(), subjectType, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift assignment created successfully", result)
}

// ListBySubjectType implements AssignmentHandler.
func (h *assignmentHandlerImpl) ListBySubjectType(w http.ResponseWriter, r *http.Request) {
	subjectType, err := subjectTypeParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.assignmentService.ListBySubjectType(r.Context(), subjectType)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result)
}

// ListBySubject implements AssignmentHandler.
func (h *assignmentHandlerImpl) ListBySubject(w http.ResponseWriter, r *http.Request) {
	subject, err := subjectParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.assignmentService.ListBySubject(r.Context(), subject)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result)
}

// UpdateBySubject implements AssignmentHandler.
func (h *assignmentHandlerImpl) UpdateBySubject(w http.ResponseWriter, r *http.Request) {
	subject, err := subjectParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req assignment.UpdateBySubjectRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.assignmentService.UpdateBySubject(r.Context(), subject, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift assignments updated successfully", result)
}

// DeleteBySubject implements AssignmentHandler.
func (h *assignmentHandlerImpl) DeleteBySubject(w http.ResponseWriter, r *http.Request) {
	subject, err := subjectParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	deleted, err := h.assignmentService.DeleteBySubject(r.Context(), subject)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift assignments deleted successfully", map[string]int{"deleted": deleted})
}

// GetActiveShift implements AssignmentHandler.
func (h *assignmentHandlerImpl) GetActiveShift(w http.ResponseWriter, r *http.Request) {
	var errs validator.ValidationErrors
	date := time.Now()
	if d := queryDate(r, "date", &errs); d != nil {
		date = *d
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	active, err := h.assignmentService.GetActiveShift(r.Context(), chi.URLParam(r, "subjectID"), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, activeShiftResponse{
		Assignment: assignment.NewAssignmentResponse(active.Assignment),
		Shift:      shift.NewShiftResponse(active.Shift),
	})
}

// Get implements AssignmentHandler.
func (h *assignmentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.assignmentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Delete implements AssignmentHandler.
func (h *assignmentHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.assignmentService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift assignment deleted successfully", nil)
}

// Approve implements AssignmentHandler.
func (h *assignmentHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	result, err := h.assignmentService.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift assignment approved", result)
}

// Cancel implements AssignmentHandler.
func (h *assignmentHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	result, err := h.assignmentService.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift assignment cancelled", result)
}

// ListExpiring implements AssignmentHandler.
func (h *assignmentHandlerImpl) ListExpiring(w http.ResponseWriter, r *http.Request) {
	before := time.Now()
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, ok := validator.IsValidDateTime(raw)
		if !ok {
			response.ValidationError(w, map[string]string{"before": "before must be an RFC3339 timestamp"})
			return
		}
		before = t
	}

	result, err := h.assignmentService.ListExpiring(r.Context(), before)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result)
}

// ListExpired implements AssignmentHandler.
func (h *assignmentHandlerImpl) ListExpired(w http.ResponseWriter, r *http.Request) {
	result, err := h.assignmentService.ListExpired(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result)
}

// ExpireAll implements AssignmentHandler.
func (h *assignmentHandlerImpl) ExpireAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.assignmentService.ExpireAll(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Expired shift assignments swept", summary)
}

// RecalculateAll implements AssignmentHandler.
func (h *assignmentHandlerImpl) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.assignmentService.RecalculateAll(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift assignment statuses recalculated", summary)
}
