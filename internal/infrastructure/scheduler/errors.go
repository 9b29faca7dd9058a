package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrJobNotRegistered is returned when triggering a job name that was never registered
	ErrJobNotRegistered = errors.New("job not registered")

	// ErrJobAlreadyRegistered is returned when registering a duplicate job name
	ErrJobAlreadyRegistered = errors.New("job already registered")

	// ErrInvalidCronSpec is returned for cron expressions that cannot be parsed
	ErrInvalidCronSpec = errors.New("invalid cron spec")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
