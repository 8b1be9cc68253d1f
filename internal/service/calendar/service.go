package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type calendarServiceImpl struct {
	holidayRepo calendar.HolidayRepository
}

func NewCalendarService(holidayRepo calendar.HolidayRepository) calendar.CalendarService {
	return &calendarServiceImpl{
		holidayRepo: holidayRepo,
	}
}

// IsHoliday implements calendar.Checker.
func (s *calendarServiceImpl) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	day := calendar.DateOf(date)
	holidays, err := s.holidayRepo.ListActiveBetween(ctx, day, day)
	if err != nil {
		return false, fmt.Errorf("failed to list holidays: %w", err)
	}
	for _, h := range holidays {
		if h.Covers(day) {
			return true, nil
		}
	}
	return false, nil
}

// IsWeekend implements calendar.Checker.
func (s *calendarServiceImpl) IsWeekend(date time.Time) bool {
	return calendar.IsWeekend(date)
}

// IsBlackout implements calendar.CalendarService.
func (s *calendarServiceImpl) IsBlackout(ctx context.Context, date time.Time) (bool, error) {
	return s.IsHoliday(ctx, date)
}

// CreateHoliday implements calendar.CalendarService.
func (s *calendarServiceImpl) CreateHoliday(ctx context.Context, req calendar.CreateHolidayRequest) (calendar.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.HolidayResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return calendar.HolidayResponse{}, fmt.Errorf("failed to generate holiday id: %w", err)
	}

	start, _ := validator.IsValidDate(req.StartDate)
	holiday := calendar.Holiday{
		ID:        id.String(),
		Name:      req.Name,
		Type:      calendar.HolidayType(req.Type),
		StartDate: start,
		EndDate:   optionalDate(req.EndDate),
		Active:    true,
	}
	if req.Active != nil {
		holiday.Active = *req.Active
	}

	created, err := s.holidayRepo.Create(ctx, holiday)
	if err != nil {
		return calendar.HolidayResponse{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return calendar.NewHolidayResponse(created), nil
}

// GetHoliday implements calendar.CalendarService.
func (s *calendarServiceImpl) GetHoliday(ctx context.Context, id string) (calendar.HolidayResponse, error) {
	h, err := s.holidayRepo.GetByID(ctx, id)
	if err != nil {
		return calendar.HolidayResponse{}, err
	}
	return calendar.NewHolidayResponse(h), nil
}

// ListHolidays implements calendar.CalendarService.
func (s *calendarServiceImpl) ListHolidays(ctx context.Context, filter calendar.HolidayFilter) ([]calendar.HolidayResponse, error) {
	holidays, err := s.holidayRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	out := make([]calendar.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, calendar.NewHolidayResponse(h))
	}
	return out, nil
}

// UpdateHoliday implements calendar.CalendarService.
func (s *calendarServiceImpl) UpdateHoliday(ctx context.Context, req calendar.UpdateHolidayRequest) (calendar.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.HolidayResponse{}, err
	}

	h, err := s.holidayRepo.GetByID(ctx, req.ID)
	if err != nil {
		return calendar.HolidayResponse{}, err
	}

	if req.Name != nil {
		h.Name = *req.Name
	}
	if req.Type != nil {
		h.Type = calendar.HolidayType(*req.Type)
	}
	if req.StartDate != nil {
		h.StartDate, _ = validator.IsValidDate(*req.StartDate)
	}
	if req.EndDate != nil {
		// an empty end_date turns the holiday back into a single day
		h.EndDate = optionalDate(req.EndDate)
	}
	if req.Active != nil {
		h.Active = *req.Active
	}
	if h.EndDate != nil && h.EndDate.Before(h.StartDate) {
		return calendar.HolidayResponse{}, calendar.ErrInvalidRange
	}

	updated, err := s.holidayRepo.Update(ctx, h)
	if err != nil {
		return calendar.HolidayResponse{}, err
	}
	return calendar.NewHolidayResponse(updated), nil
}

// DeleteHoliday implements calendar.CalendarService.
func (s *calendarServiceImpl) DeleteHoliday(ctx context.Context, id string) error {
	return s.holidayRepo.Delete(ctx, id)
}

func optionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	d, ok := validator.IsValidDate(*s)
	if !ok {
		return nil
	}
	return &d
}
