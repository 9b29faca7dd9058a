package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobFunc is the unit of work a scheduled job executes.
type JobFunc func(ctx context.Context) error

// JobStatus represents the lifecycle state of a job run
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a single run of a registered scheduled task.
type Job struct {
	ID          uuid.UUID
	Name        string
	Status      JobStatus
	ScheduledAt time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
	Error       string

	fn JobFunc
}

// NewJob creates a pending job run for a registered task.
func NewJob(name string, fn JobFunc, scheduledAt time.Time, maxRetries int) *Job {
	return &Job{
		ID:          uuid.New(),
		Name:        name,
		Status:      JobStatusPending,
		ScheduledAt: scheduledAt,
		MaxRetries:  maxRetries,
		fn:          fn,
	}
}

// Start marks the job as running
func (j *Job) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
}

// Complete marks the job as successfully finished
func (j *Job) Complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed with an error message
func (j *Job) Fail(errMsg string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = errMsg
}

// ShouldRetry reports whether the job has retry attempts left
func (j *Job) ShouldRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// ScheduleRetry resets the job for another attempt after the given delay
func (j *Job) ScheduleRetry(delay time.Duration) {
	j.RetryCount++
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Status = JobStatusPending
	j.StartedAt = nil
	j.CompletedAt = nil
}
