package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
)

type Handlers struct {
	Holiday    HolidayHandler
	Shift      ShiftHandler
	Schedule   ScheduleHandler
	Assignment AssignmentHandler
	Attendance AttendanceHandler
	Lateness   LatenessHandler
	Overtime   OvertimeHandler
	Correction CorrectionHandler
	Events     EventHandler
}

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

const subjectTypePattern = "/{subjectType:employee|department|position}"

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.Holiday.List)
			r.Get("/{id}", h.Holiday.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", h.Holiday.Create)
				r.Put("/{id}", h.Holiday.Update)
				r.Delete("/{id}", h.Holiday.Delete)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.Shift.ListShifts)
			r.Get("/expiring", h.Assignment.ListExpiring)
			r.Get("/expired", h.Assignment.ListExpired)
			r.Get("/{id}", h.Shift.GetShift)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", h.Shift.CreateShift)
				r.Put("/{id}", h.Shift.UpdateShift)
				r.Delete("/{id}", h.Shift.DeleteShift)
			})
		})

		r.Route("/shift-type", func(r chi.Router) {
			r.Get("/", h.Shift.ListShiftTypes)
			r.Get("/{id}", h.Shift.GetShiftType)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", h.Shift.CreateShiftType)
				r.Put("/{id}", h.Shift.UpdateShiftType)
				r.Delete("/{id}", h.Shift.DeleteShiftType)
			})
		})

		r.Route("/schedule", func(r chi.Router) {
			r.Get("/", h.Schedule.List)
			r.Get("/{id}", h.Schedule.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", h.Schedule.Create)
				r.Put("/{id}", h.Schedule.Update)
				r.Delete("/{id}", h.Schedule.Delete)
			})
		})

		r.Route("/shift-assignments", func(r chi.Router) {
			r.Get("/employee/{subjectID}/active", h.Assignment.GetActiveShift)

			// Manager only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)

				r.Post("/recalculate", h.Assignment.RecalculateAll)
				r.Post("/expire", h.Assignment.ExpireAll)

				r.Route(subjectTypePattern, func(r chi.Router) {
					r.Get("/", h.Assignment.ListBySubjectType)
					r.Post("/", h.Assignment.Create)
					r.Get("/{subjectID}", h.Assignment.ListBySubject)
					r.Put("/{subjectID}", h.Assignment.UpdateBySubject)
					r.Delete("/{subjectID}", h.Assignment.DeleteBySubject)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Assignment.Get)
					r.Delete("/", h.Assignment.Delete)
					r.Put("/approve", h.Assignment.Approve)
					r.Put("/cancel", h.Assignment.Cancel)
				})
			})
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", h.Attendance.List)
			r.Get("/{id}", h.Attendance.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", h.Attendance.Create)
				r.Put("/{id}", h.Attendance.Update)
				r.Delete("/{id}", h.Attendance.Delete)
				r.Post("/{id}/finalize", h.Attendance.Finalize)
				r.Get("/{id}/overtime", h.Attendance.Overtime)
			})
		})

		r.Route("/lateness", func(r chi.Router) {
			r.Get("/", h.Lateness.List)
			r.Get("/{id}", h.Lateness.Get)
			r.Post("/calculate", h.Lateness.Calculate)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", h.Lateness.Create)
				r.Put("/{id}", h.Lateness.Update)
				r.Delete("/{id}", h.Lateness.Delete)
			})
		})

		r.Route("/overtime", func(r chi.Router) {
			r.Get("/", h.Overtime.Evaluate)

			r.Route("/rules", func(r chi.Router) {
				r.Get("/", h.Overtime.ListRules)
				r.Get("/{id}", h.Overtime.GetRule)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Post("/", h.Overtime.CreateRule)
					r.Put("/{id}", h.Overtime.UpdateRule)
					r.Delete("/{id}", h.Overtime.DeleteRule)
				})
			})
		})

		r.Route("/attendanceCorrection", func(r chi.Router) {
			r.Get("/", h.Correction.List)
			r.Get("/events", h.Events.StreamCorrections)
			r.Get("/{id}", h.Correction.Get)
			r.Delete("/{id}", h.Correction.Withdraw)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireEmployee)
				r.Post("/submit", h.Correction.Submit)
				r.Put("/{id}", h.Correction.Update)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", h.Correction.Create)
				r.Post("/{id}/approve", h.Correction.Approve)
				r.Post("/{id}/reject", h.Correction.Reject)
			})
		})

		r.With(middleware.RequireManager).Post("/escalate-pending-requests", h.Correction.EscalatePending)
	})

	return r
}
