package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	assignmentService "github.com/cmlabs-hris/hris-attendance-go/internal/service/assignment"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	calendarService "github.com/cmlabs-hris/hris-attendance-go/internal/service/calendar"
	correctionService "github.com/cmlabs-hris/hris-attendance-go/internal/service/correction"
	latenessService "github.com/cmlabs-hris/hris-attendance-go/internal/service/lateness"
	overtimeService "github.com/cmlabs-hris/hris-attendance-go/internal/service/overtime"
	scheduleRuleService "github.com/cmlabs-hris/hris-attendance-go/internal/service/schedulerule"
	shiftService "github.com/cmlabs-hris/hris-attendance-go/internal/service/shift"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		TotalItems int `json:"total_items"`
	} `json:"meta"`
}

type testServer struct {
	handler  http.Handler
	manager  string
	employee string
	other    string
	noLink   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	tx := memory.NewTransactor()
	holidays := memory.NewHolidayRepository(store)
	shifts := memory.NewShiftRepository(store)
	rules := memory.NewScheduleRuleRepository(store)
	assignments := memory.NewAssignmentRepository(store)
	records := memory.NewRecordRepository(store)
	corrections := memory.NewCorrectionRepository(store)
	latenessRules := memory.NewLatenessRuleRepository(store)

	calendarSvc := calendarService.NewCalendarService(holidays)
	assignmentSvc := assignmentService.NewAssignmentService(tx, assignments, shifts, rules, calendarSvc, memory.NewSubjectDirectory(), time.UTC)
	latenessSvc := latenessService.NewLatenessService(latenessRules, shifts, time.UTC)
	overtimeSvc := overtimeService.NewOvertimeService(memory.NewOvertimeRuleRepository(store), calendarSvc)
	attendanceSvc := attendanceService.NewAttendanceService(tx, records, corrections, assignmentSvc, latenessSvc, overtimeSvc,
		attendanceService.Options{RoundingMinutes: 5, Location: time.UTC})
	hub := sse.NewHub()
	correctionSvc := correctionService.NewCorrectionService(tx, corrections, records, attendanceSvc,
		correctionService.Options{PayrollCutoffDay: 25, LeadDays: 3, Location: time.UTC, Notifier: hub})

	jwtService := jwt.NewJWTService("test-secret", time.Hour)
	router := appHTTP.NewRouter(jwtService, appHTTP.Handlers{
		Holiday:    appHTTP.NewHolidayHandler(calendarSvc),
		Shift:      appHTTP.NewShiftHandler(shiftService.NewShiftService(shifts, memory.NewShiftTypeRepository(store), assignments)),
		Schedule:   appHTTP.NewScheduleHandler(scheduleRuleService.NewScheduleRuleService(rules)),
		Assignment: appHTTP.NewAssignmentHandler(assignmentSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Lateness:   appHTTP.NewLatenessHandler(latenessSvc),
		Overtime:   appHTTP.NewOvertimeHandler(overtimeSvc),
		Correction: appHTTP.NewCorrectionHandler(correctionSvc),
		Events:     appHTTP.NewEventHandler(hub, time.Minute),
	}, appHTTP.RouterOptions{AllowedOrigins: []string{"*"}})

	token := func(claims jwt.Claims) string {
		s, _, err := jwtService.GenerateAccessToken(claims)
		require.NoError(t, err)
		return s
	}
	employeeID, otherID := "E1", "E2"

	return &testServer{
		handler:  router,
		manager:  token(jwt.Claims{UserID: "U-HR", Role: jwt.RoleManager}),
		employee: token(jwt.Claims{UserID: "U-E1", EmployeeID: &employeeID, Role: jwt.RoleEmployee}),
		other:    token(jwt.Claims{UserID: "U-E2", EmployeeID: &otherID, Role: jwt.RoleEmployee}),
		noLink:   token(jwt.Claims{UserID: "U-X", Role: jwt.RoleEmployee}),
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestRouter_Authentication(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, code, "heartbeat is public")

	code, _ = s.do(t, http.MethodGet, "/api/v1/holidays", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/holidays", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(t, http.MethodGet, "/api/v1/holidays", s.employee, nil)
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Meta)
	assert.Zero(t, env.Meta.TotalItems)
	assert.JSONEq(t, "[]", string(env.Data))

	code, env = s.do(t, http.MethodPost, "/api/v1/holidays", s.employee, map[string]any{
		"name": "Independence Day", "type": "NATIONAL", "start_date": "2030-08-17",
	})
	assert.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestRouter_ShiftAssignmentFlow(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/shifts", s.manager, map[string]any{
		"name": "Morning", "start_time": "09:00", "end_time": "17:00",
	})
	require.Equal(t, http.StatusCreated, code)
	shift := decodeData[struct {
		ID string `json:"id"`
	}](t, env)

	code, env = s.do(t, http.MethodPost, "/api/v1/shift-assignments/employee", s.manager, map[string]any{
		"subject_id": "E1", "shift_id": shift.ID, "start_date": "2030-01-01", "end_date": "2030-01-31",
	})
	require.Equal(t, http.StatusCreated, code)
	created := decodeData[struct {
		ID          string `json:"id"`
		SubjectType string `json:"subject_type"`
		Status      string `json:"status"`
	}](t, env)
	assert.Equal(t, "EMPLOYEE", created.SubjectType)
	assert.Equal(t, "PENDING", created.Status)

	code, env = s.do(t, http.MethodPost, "/api/v1/shift-assignments/employee", s.manager, map[string]any{
		"subject_id": "E1", "shift_id": shift.ID, "start_date": "2030-01-15", "end_date": "2030-02-15",
	})
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, env = s.do(t, http.MethodPost, "/api/v1/shift-assignments/employee", s.manager, map[string]any{
		"subject_id": "E1", "shift_id": shift.ID, "start_date": "2030-03-10", "end_date": "2030-03-01",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "end_date")

	code, _ = s.do(t, http.MethodPost, "/api/v1/shift-assignments/employee", s.employee, map[string]any{})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/shift-assignments/employee/E1/active?date=2030-01-15", s.employee, nil)
	require.Equal(t, http.StatusOK, code)
	active := decodeData[struct {
		Shift struct {
			ID string `json:"id"`
		} `json:"shift"`
	}](t, env)
	assert.Equal(t, shift.ID, active.Shift.ID)

	code, _ = s.do(t, http.MethodGet, "/api/v1/shift-assignments/employee/E1/active?date=2030-02-15", s.employee, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(t, http.MethodPut, "/api/v1/shift-assignments/"+created.ID+"/cancel", s.manager, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "CANCELLED", decodeData[struct {
		Status string `json:"status"`
	}](t, env).Status)

	code, env = s.do(t, http.MethodPut, "/api/v1/shift-assignments/"+created.ID+"/approve", s.manager, nil)
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	code, env = s.do(t, http.MethodGet, "/api/v1/shift-assignments/employee/E1", s.manager, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.TotalItems)
}

func TestRouter_CorrectionFlow(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/attendance", s.manager, map[string]any{
		"employee_id": "E1",
		"work_date":   "2030-01-15",
		"punches":     []map[string]string{{"type": "IN", "time": "2030-01-15T09:00:00Z"}},
	})
	require.Equal(t, http.StatusCreated, code)
	record := decodeData[struct {
		ID             string `json:"id"`
		HasMissedPunch bool   `json:"has_missed_punch"`
	}](t, env)
	assert.True(t, record.HasMissedPunch)

	submit := map[string]any{
		"attendance_record_id": record.ID,
		"reason":               "forgot to punch out",
		"proposed_punches": []map[string]string{
			{"type": "IN", "time": "2030-01-15T09:00:00Z"},
			{"type": "OUT", "time": "2030-01-15T17:00:00Z"},
		},
	}

	code, _ = s.do(t, http.MethodPost, "/api/v1/attendanceCorrection/submit", s.noLink, submit)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/attendanceCorrection/submit", s.employee, submit)
	require.Equal(t, http.StatusCreated, code)
	request := decodeData[struct {
		ID         string `json:"id"`
		EmployeeID string `json:"employee_id"`
		Version    int    `json:"version"`
	}](t, env)
	assert.Equal(t, "E1", request.EmployeeID)

	code, _ = s.do(t, http.MethodPost, "/api/v1/attendanceCorrection/"+request.ID+"/approve", s.employee,
		map[string]any{"expected_version": request.Version})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/attendanceCorrection/"+request.ID+"/approve", s.manager,
		map[string]any{"expected_version": request.Version})
	require.Equal(t, http.StatusOK, code)
	approved := decodeData[struct {
		Status     string `json:"status"`
		ReviewerID string `json:"reviewer_id"`
		Version    int    `json:"version"`
	}](t, env)
	assert.Equal(t, "APPROVED", approved.Status)
	assert.Equal(t, "U-HR", approved.ReviewerID)

	code, env = s.do(t, http.MethodPost, "/api/v1/attendanceCorrection/"+request.ID+"/reject", s.manager,
		map[string]any{"expected_version": approved.Version})
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	code, env = s.do(t, http.MethodGet, "/api/v1/attendance/"+record.ID, s.employee, nil)
	require.Equal(t, http.StatusOK, code)
	corrected := decodeData[struct {
		HasMissedPunch   bool `json:"has_missed_punch"`
		TotalWorkMinutes int  `json:"total_work_minutes"`
	}](t, env)
	assert.False(t, corrected.HasMissedPunch)
	assert.Equal(t, 480, corrected.TotalWorkMinutes)

	code, _ = s.do(t, http.MethodPost, "/api/v1/attendanceCorrection/submit", s.employee, map[string]any{"reason": 42})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_CorrectionWithdraw(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/attendance", s.manager, map[string]any{
		"employee_id": "E1",
		"work_date":   "2030-01-15",
		"punches":     []map[string]string{{"type": "IN", "time": "2030-01-15T09:00:00Z"}},
	})
	require.Equal(t, http.StatusCreated, code)
	record := decodeData[struct {
		ID string `json:"id"`
	}](t, env)

	code, env = s.do(t, http.MethodPost, "/api/v1/attendanceCorrection/submit", s.employee, map[string]any{
		"attendance_record_id": record.ID,
		"reason":               "forgot to punch out",
	})
	require.Equal(t, http.StatusCreated, code)
	request := decodeData[struct {
		ID      string `json:"id"`
		Version int    `json:"version"`
	}](t, env)
	path := "/api/v1/attendanceCorrection/" + request.ID

	code, env = s.do(t, http.MethodPut, path, s.other, map[string]any{"reason": "mine now", "expected_version": request.Version})
	assert.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, env = s.do(t, http.MethodDelete, path, s.employee, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "expected_version")

	code, env = s.do(t, http.MethodDelete, path+"?expected_version=7", s.employee, nil)
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, _ = s.do(t, http.MethodDelete, fmt.Sprintf("%s?expected_version=%d", path, request.Version), s.employee, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, path, s.employee, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func streamEvents(body io.Reader) <-chan string {
	names := make(chan string, 8)
	go func() {
		defer close(names)
		scanner := bufio.NewScanner(body)
		for scanner.Scan() {
			if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
				names <- name
			}
		}
	}()
	return names
}

func nextEvent(t *testing.T, names <-chan string) string {
	t.Helper()
	select {
	case name, ok := <-names:
		require.True(t, ok, "stream closed")
		return name
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestRouter_CorrectionEventStream(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	code, _ := s.do(t, http.MethodGet, "/api/v1/attendanceCorrection/events", s.noLink, nil)
	assert.Equal(t, http.StatusForbidden, code)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/attendanceCorrection/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+s.manager)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	names := streamEvents(resp.Body)
	assert.Equal(t, "connected", nextEvent(t, names))

	code, env := s.do(t, http.MethodPost, "/api/v1/attendance", s.manager, map[string]any{
		"employee_id": "E1",
		"work_date":   "2030-01-15",
		"punches":     []map[string]string{{"type": "IN", "time": "2030-01-15T09:00:00Z"}},
	})
	require.Equal(t, http.StatusCreated, code)
	record := decodeData[struct {
		ID string `json:"id"`
	}](t, env)

	code, _ = s.do(t, http.MethodPost, "/api/v1/attendanceCorrection/submit", s.employee, map[string]any{
		"attendance_record_id": record.ID,
		"reason":               "forgot to punch out",
	})
	require.Equal(t, http.StatusCreated, code)

	assert.Equal(t, "correction.submitted", nextEvent(t, names))
}
