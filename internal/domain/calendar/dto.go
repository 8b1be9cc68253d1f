package calendar

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateHolidayRequest struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	}
	if !validator.IsInSlice(r.Type, HolidayTypeValues) {
		errs.Add("type", "type must be one of: "+strings.Join(HolidayTypeValues, ", "))
	}
	validateRange(&errs, r.StartDate, r.EndDate)

	return errs.Err()
}

type UpdateHolidayRequest struct {
	ID        string  `json:"-"`
	Name      *string `json:"name,omitempty"`
	Type      *string `json:"type,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Active    *bool   `json:"active,omitempty"`
}

func (r *UpdateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.Type != nil && !validator.IsInSlice(*r.Type, HolidayTypeValues) {
		errs.Add("type", "type must be one of: "+strings.Join(HolidayTypeValues, ", "))
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if r.EndDate != nil && *r.EndDate != "" {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

func validateRange(errs *validator.ValidationErrors, start string, end *string) {
	startDate, ok := validator.IsValidDate(start)
	if !ok {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		return
	}
	if end == nil || *end == "" {
		return
	}
	endDate, ok := validator.IsValidDate(*end)
	if !ok {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		return
	}
	if endDate.Before(startDate) {
		errs.Add("end_date", "end_date must not be before start_date")
	}
}

type HolidayFilter struct {
	Year       *int
	ActiveOnly bool
}

type HolidayResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
	Active    bool    `json:"active"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func NewHolidayResponse(h Holiday) HolidayResponse {
	resp := HolidayResponse{
		ID:        h.ID,
		Name:      h.Name,
		Type:      string(h.Type),
		StartDate: h.StartDate.Format(validator.DateLayout),
		Active:    h.Active,
		CreatedAt: h.CreatedAt.Format(time.RFC3339),
		UpdatedAt: h.UpdatedAt.Format(time.RFC3339),
	}
	if h.EndDate != nil {
		end := h.EndDate.Format(validator.DateLayout)
		resp.EndDate = &end
	}
	return resp
}
