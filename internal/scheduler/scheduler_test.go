package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs int
	err  error
}

func (j *countingJob) Run() error   { j.runs++; return j.err }
func (j *countingJob) Name() string { return "counting" }

func TestAddJob_ValidSchedule(t *testing.T) {
	sched := New(zerolog.Nop())

	err := sched.AddJob("@hourly", &countingJob{})
	assert.NoError(t, err)
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	sched := New(zerolog.Nop())

	err := sched.AddJob("not a schedule", &countingJob{})
	assert.Error(t, err)
}

func TestRunNow(t *testing.T) {
	sched := New(zerolog.Nop())
	job := &countingJob{}

	require.NoError(t, sched.RunNow(job))
	assert.Equal(t, 1, job.runs)
}

func TestRunNow_PropagatesError(t *testing.T) {
	sched := New(zerolog.Nop())
	sentinel := errors.New("prune failed")
	job := &countingJob{err: sentinel}

	assert.ErrorIs(t, sched.RunNow(job), sentinel)
	assert.Equal(t, 1, job.runs)
}

func TestStartStop(t *testing.T) {
	sched := New(zerolog.Nop())
	require.NoError(t, sched.AddJob("@hourly", &countingJob{}))

	sched.Start()
	sched.Stop()
}
