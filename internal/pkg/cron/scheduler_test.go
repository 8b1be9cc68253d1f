package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s := NewScheduler()

	var calls atomic.Int32
	s.AddJob("tick", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestScheduler_RunOnceRunsEveryJob(t *testing.T) {
	s := NewScheduler()

	var ran []string
	s.AddJob("first", time.Hour, func(context.Context) error {
		ran = append(ran, "first")
		return errors.New("boom")
	})
	s.AddJob("second", time.Hour, func(context.Context) error {
		ran = append(ran, "second")
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"first", "second"}, ran, "a failing job does not stop the others")
}

func TestRegisterJobs(t *testing.T) {
	s := NewScheduler()
	NewShiftJobs(nil, time.Hour).RegisterJobs(s)
	NewCorrectionJobs(nil, 30*time.Minute).RegisterJobs(s)

	var names []string
	for _, j := range s.Jobs() {
		names = append(names, j.Name)
	}
	assert.Equal(t, []string{
		"expire_shift_assignments",
		"recalculate_shift_assignments",
		"escalate_pending_corrections",
	}, names)
	assert.Equal(t, 30*time.Minute, s.Jobs()[2].Interval)
}
