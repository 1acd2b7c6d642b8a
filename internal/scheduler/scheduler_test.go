package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenpulse/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestAddJob_RejectsDuplicates(t *testing.T) {
	s := New(logger.NewNop())

	require.NoError(t, s.AddJob(&fakeJob{name: "signal_scan", schedule: "@every 90s"}))
	err := s.AddJob(&fakeJob{name: "signal_scan", schedule: "@every 90s"})
	assert.Error(t, err)
}

func TestAddJob_RejectsBadSchedule(t *testing.T) {
	s := New(logger.NewNop())

	err := s.AddJob(&fakeJob{name: "signal_scan", schedule: "not a schedule"})
	assert.Error(t, err)
}

func TestRunJob_UnknownJob(t *testing.T) {
	s := New(logger.NewNop())

	assert.Error(t, s.RunJob("missing"))
}

func TestStats_ReflectHistory(t *testing.T) {
	s := New(logger.NewNop())
	job := &fakeJob{name: "signal_scan", schedule: "@every 90s"}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)
	s.runJob(job)

	stats := s.Stats()
	require.Contains(t, stats, "signal_scan")
	assert.Equal(t, 2, stats["signal_scan"].TotalRuns)
	assert.Zero(t, stats["signal_scan"].FailureCount)
	assert.Equal(t, 1.0, stats["signal_scan"].SuccessRate)
	assert.NotNil(t, stats["signal_scan"].LastRun)
}

func TestJobHistory_BoundedAndRates(t *testing.T) {
	h := &JobHistory{}
	start := time.Now()

	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{JobName: "signal_scan", StartTime: start, Success: i%2 == 0})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.Latest(10), 10)
	assert.InDelta(t, 0.5, h.SuccessRate(), 0.01)
}
