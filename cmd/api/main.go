package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/lateness"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/schedulerule"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	assignmentService "github.com/cmlabs-hris/hris-attendance-go/internal/service/assignment"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	calendarService "github.com/cmlabs-hris/hris-attendance-go/internal/service/calendar"
	correctionService "github.com/cmlabs-hris/hris-attendance-go/internal/service/correction"
	latenessService "github.com/cmlabs-hris/hris-attendance-go/internal/service/lateness"
	overtimeService "github.com/cmlabs-hris/hris-attendance-go/internal/service/overtime"
	scheduleRuleService "github.com/cmlabs-hris/hris-attendance-go/internal/service/schedulerule"
	shiftService "github.com/cmlabs-hris/hris-attendance-go/internal/service/shift"
)

type repositories struct {
	tx           database.Transactor
	holiday      calendar.HolidayRepository
	shift        shift.ShiftRepository
	shiftType    shift.ShiftTypeRepository
	scheduleRule schedulerule.ScheduleRuleRepository
	assignment   assignment.AssignmentRepository
	directory    assignment.SubjectDirectory
	record       attendance.RecordRepository
	lateness     lateness.RuleRepository
	overtime     overtime.RuleRepository
	correction   correction.RequestRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-attendance"),
		slog.String("env", cfg.App.Env),
	)
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, func(), error) {
	if cfg.Database.Driver == config.StorageDriverMemory {
		slog.Warn("Using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return repositories{
			tx:           memory.NewTransactor(),
			holiday:      memory.NewHolidayRepository(store),
			shift:        memory.NewShiftRepository(store),
			shiftType:    memory.NewShiftTypeRepository(store),
			scheduleRule: memory.NewScheduleRuleRepository(store),
			assignment:   memory.NewAssignmentRepository(store),
			directory:    memory.NewSubjectDirectory(),
			record:       memory.NewRecordRepository(store),
			lateness:     memory.NewLatenessRuleRepository(store),
			overtime:     memory.NewOvertimeRuleRepository(store),
			correction:   memory.NewCorrectionRepository(store),
		}, func() {}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return repositories{}, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return repositories{}, nil, fmt.Errorf("migrate database: %w", err)
	}

	return repositories{
		tx:           postgresql.NewTransactor(db),
		holiday:      postgresql.NewHolidayRepository(db),
		shift:        postgresql.NewShiftRepository(db),
		shiftType:    postgresql.NewShiftTypeRepository(db),
		scheduleRule: postgresql.NewScheduleRuleRepository(db),
		assignment:   postgresql.NewShiftAssignmentRepository(db),
		directory:    postgresql.NewSubjectDirectory(db),
		record:       postgresql.NewAttendanceRecordRepository(db),
		lateness:     postgresql.NewLatenessRuleRepository(db),
		overtime:     postgresql.NewOvertimeRuleRepository(db),
		correction:   postgresql.NewCorrectionRepository(db),
	}, db.Close, nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repos, closeRepos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	loc := cfg.Location()

	calendarSvc := calendarService.NewCalendarService(repos.holiday)
	shiftSvc := shiftService.NewShiftService(repos.shift, repos.shiftType, repos.assignment)
	scheduleRuleSvc := scheduleRuleService.NewScheduleRuleService(repos.scheduleRule)
	assignmentSvc := assignmentService.NewAssignmentService(
		repos.tx,
		repos.assignment,
		repos.shift,
		repos.scheduleRule,
		calendarSvc,
		repos.directory,
		loc,
	)
	latenessSvc := latenessService.NewLatenessService(repos.lateness, repos.shift, loc)
	overtimeSvc := overtimeService.NewOvertimeService(repos.overtime, calendarSvc)
	attendanceSvc := attendanceService.NewAttendanceService(
		repos.tx,
		repos.record,
		repos.correction,
		assignmentSvc,
		latenessSvc,
		overtimeSvc,
		attendanceService.Options{
			RoundingMinutes: cfg.Attendance.PunchRoundingMinutes,
			Location:        loc,
		},
	)
	hub := sse.NewHub()
	correctionSvc := correctionService.NewCorrectionService(
		repos.tx,
		repos.correction,
		repos.record,
		attendanceSvc,
		correctionService.Options{
			PayrollCutoffDay: cfg.Attendance.PayrollCutoffDay,
			LeadDays:         cfg.Attendance.EscalationLeadDays,
			Location:         loc,
			Notifier:         hub,
		},
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(JWTService, appHTTP.Handlers{
		Holiday:    appHTTP.NewHolidayHandler(calendarSvc),
		Shift:      appHTTP.NewShiftHandler(shiftSvc),
		Schedule:   appHTTP.NewScheduleHandler(scheduleRuleSvc),
		Assignment: appHTTP.NewAssignmentHandler(assignmentSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Lateness:   appHTTP.NewLatenessHandler(latenessSvc),
		Overtime:   appHTTP.NewOvertimeHandler(overtimeSvc),
		Correction: appHTTP.NewCorrectionHandler(correctionSvc),
		Events:     appHTTP.NewEventHandler(hub, 30*time.Second),
	}, appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	scheduler := cron.NewScheduler()
	cron.NewShiftJobs(assignmentSvc, cfg.Cron.SweepInterval).RegisterJobs(scheduler)
	cron.NewCorrectionJobs(correctionSvc, cfg.Cron.EscalationInterval).RegisterJobs(scheduler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting HTTP server", "addr", server.Addr, "timezone", loc.String(), "storage", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		slog.Info("Shutting down HTTP server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
