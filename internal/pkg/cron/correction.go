package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/correction"
)

type CorrectionJobs struct {
	correctionService correction.CorrectionService
	interval          time.Duration
}

func NewCorrectionJobs(correctionService correction.CorrectionService, interval time.Duration) *CorrectionJobs {
	return &CorrectionJobs{
		correctionService: correctionService,
		interval:          interval,
	}
}

func (j *CorrectionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("escalate_pending_corrections", j.interval, j.EscalatePending)
}

func (j *CorrectionJobs) EscalatePending(ctx context.Context) error {
	result, err := j.correctionService.EscalatePending(ctx)
	if err != nil {
		return err
	}
	if result.Count > 0 || result.Failed > 0 {
		slog.Info("Cron: escalated pending correction requests", "cutoff", result.Cutoff, "count", result.Count, "failed", result.Failed)
	}
	return nil
}
