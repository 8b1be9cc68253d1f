package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/assignment"
)

type ShiftJobs struct {
	assignmentService assignment.AssignmentService
	interval          time.Duration
}

func NewShiftJobs(assignmentService assignment.AssignmentService, interval time.Duration) *ShiftJobs {
	return &ShiftJobs{
		assignmentService: assignmentService,
		interval:          interval,
	}
}

func (j *ShiftJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("expire_shift_assignments", j.interval, j.ExpireAssignments)
	scheduler.AddJob("recalculate_shift_assignments", j.interval, j.RecalculateAssignments)
}

// ExpireAssignments moves every ended assignment to EXPIRED.
func (j *ShiftJobs) ExpireAssignments(ctx context.Context) error {
	summary, err := j.assignmentService.ExpireAll(ctx)
	if err != nil {
		return err
	}
	slog.Info("Cron: expire shift assignments finished",
		"processed", summary.Processed, "updated", summary.Updated, "failed", summary.Failed)
	return nil
}

// RecalculateAssignments re-derives the status of every live assignment for today.
func (j *ShiftJobs) RecalculateAssignments(ctx context.Context) error {
	summary, err := j.assignmentService.RecalculateAll(ctx)
	if err != nil {
		return err
	}
	slog.Info("Cron: recalculate shift assignments finished",
		"processed", summary.Processed, "updated", summary.Updated, "failed", summary.Failed)
	return nil
}
