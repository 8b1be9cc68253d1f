package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type AttendanceHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Finalize(w http.ResponseWriter, r *http.Request)
	Overtime(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Create implements AttendanceHandler.
func (h *attendanceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req attendance.CreateRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance record created successfully", result)
}

// Get implements AttendanceHandler. Employees only see their own records.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !claims.Role.CanReview() && (claims.EmployeeID == nil || *claims.EmployeeID != result.EmployeeID) {
		response.HandleError(w, attendance.ErrRecordNotFound)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	var errs validator.ValidationErrors
	filter := attendance.RecordFilter{
		EmployeeID: queryString(r, "employee_id"),
		From:       queryDate(r, "from", &errs),
		To:         queryDate(r, "to", &errs),
		Finalized:  queryBool(r, "finalized"),
	}
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}
	if !claims.Role.CanReview() {
		if claims.EmployeeID == nil {
			response.Forbidden(w, "Employee account required")
			return
		}
		filter.EmployeeID = claims.EmployeeID
	}

	result, err := h.attendanceService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, result)
}

// Update implements AttendanceHandler.
func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record updated successfully", result)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.attendanceService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record deleted successfully", nil)
}

// Finalize implements AttendanceHandler.
func (h *attendanceHandlerImpl) Finalize(w http.ResponseWriter, r *http.Request) {
	var req attendance.FinalizeRequest
	if err := decodeJSON(r, &req); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Finalize(r.Context(), chi.URLParam(r, "id"), req.ExpectedVersion)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance record finalized for payroll", result)
}

// Overtime implements AttendanceHandler.
func (h *attendanceHandlerImpl) Overtime(w http.ResponseWriter, r *http.Request) {
	ruleID := r.URL.Query().Get("rule_id")
	if !validator.IsValidUUID(ruleID) {
		response.ValidationError(w, map[string]string{"rule_id": "rule_id must be a valid UUID"})
		return
	}

	result, err := h.attendanceService.Overtime(r.Context(), chi.URLParam(r, "id"), ruleID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
