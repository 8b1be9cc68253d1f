package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CorrectionHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Withdraw(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	EscalatePending(w http.ResponseWriter, r *http.Request)
}

type correctionHandlerImpl struct {
	correctionService correction.CorrectionService
}

func NewCorrectionHandler(correctionService correction.CorrectionService) CorrectionHandler {
	return &correctionHandlerImpl{
		correctionService: correctionService,
	}
}

// Create implements CorrectionHandler. Reviewers file requests on behalf of an employee.
func (h *correctionHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req correction.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.correctionService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Correction request created successfully", result)
}

// Submit implements CorrectionHandler.
func (h *correctionHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}
	if claims.EmployeeID == nil {
		response.HandleError(w, correction.ErrMissingEmployee)
		return
	}

	var req correction.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.correctionService.Submit(r.Context(), *claims.EmployeeID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Correction request submitted successfully", result)
}

// Get implements CorrectionHandler.
func (h *correctionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	result, err := h.correctionService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !claims.Role.CanReview() && (claims.EmployeeID == nil || *claims.EmployeeID != result.EmployeeID) {
		response.HandleError(w, correction.ErrRequestNotFound)
		return
	}

	response.Success(w, result)
}

// List implements CorrectionHandler.
func (h *correctionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	filter := correction.RequestFilter{
		EmployeeID:         queryString(r, "employee_id"),
		AttendanceRecordID: queryString(r, "attendance_record_id"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := correction.Status(status)
		filter.Status = &s
	}
	if escalated := queryBool(r, "escalated"); escalated != nil {
		filter.EscalatedOnly = *escalated
	}
	if !claims.Role.CanReview() {
		if claims.EmployeeID == nil {
			response.Forbidden(w, "Employee account required")
			return
		}
		filter.EmployeeID = claims.EmployeeID
	}

	result, err := h.correctionService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result)
}

// Update implements CorrectionHandler. Only the submitter may edit a request.
func (h *correctionHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}
	if claims.EmployeeID == nil {
		response.HandleError(w, correction.ErrNotSubmitter)
		return
	}

	var req correction.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.EmployeeID = *claims.EmployeeID

	result, err := h.correctionService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Correction request updated successfully", result)
}

// Withdraw implements CorrectionHandler. The caller passes the version it last saw as ?expected_version=.
func (h *correctionHandlerImpl) Withdraw(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	var errs validator.ValidationErrors
	req := correction.WithdrawRequest{
		ID:              chi.URLParam(r, "id"),
		ExpectedVersion: queryInt(r, "expected_version", &errs),
		AsReviewer:      claims.Role.CanReview(),
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}
	if claims.EmployeeID != nil {
		req.EmployeeID = *claims.EmployeeID
	}

	if err := h.correctionService.Withdraw(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Correction request withdrawn", nil)
}

// Approve implements CorrectionHandler.
func (h *correctionHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.correctionService.Approve, "Correction request approved")
}

// Reject implements CorrectionHandler.
func (h *correctionHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.correctionService.Reject, "Correction request rejected")
}

type reviewFunc func(ctx context.Context, req correction.ReviewRequest) (correction.RequestResponse, error)

func (h *correctionHandlerImpl) review(w http.ResponseWriter, r *http.Request, decide reviewFunc, message string) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	var req correction.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.ReviewerID = claims.UserID

	result, err := decide(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, result)
}

// EscalatePending implements CorrectionHandler.
func (h *correctionHandlerImpl) EscalatePending(w http.ResponseWriter, r *http.Request) {
	result, err := h.correctionService.EscalatePending(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Pending correction requests escalated", result)
}
