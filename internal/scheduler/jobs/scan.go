package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokenpulse/internal/pipeline"
)

// ScanJob drives the signal scan pipeline on a fixed interval.
type ScanJob struct {
	runner   *pipeline.Runner
	interval time.Duration
}

// NewScanJob creates the recurring scan job.
func NewScanJob(runner *pipeline.Runner, interval time.Duration) *ScanJob {
	return &ScanJob{runner: runner, interval: interval}
}

func (j *ScanJob) Name() string {
	return "signal_scan"
}

func (j *ScanJob) Schedule() string {
	return fmt.Sprintf("@every %s", j.interval)
}

// Run executes one scan cycle. An overlapping trigger is a skip, not a
// failure: the next tick will try again, retrying immediately would
// just collide with the running cycle.
func (j *ScanJob) Run(ctx context.Context) error {
	_, err := j.runner.RunCycle(ctx)
	if errors.Is(err, pipeline.ErrCycleInProgress) {
		return nil
	}
	return err
}
