package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/expenseally/backend/internal/infrastructure/cache"
	"github.com/expenseally/backend/internal/infrastructure/config"
)

// Config holds scheduler tuning parameters
type Config struct {
	Enabled           bool
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	LeaseTTL          time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	TickInterval      time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		MaxConcurrentJobs: 3,
		JobTimeout:        30 * time.Minute,
		LeaseTTL:          10 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
		TickInterval:      30 * time.Second,
	}
}

// ConfigFromApp maps the application scheduler settings onto a Config.
func ConfigFromApp(cfg config.SchedulerConfig) Config {
	c := DefaultConfig()
	c.Enabled = cfg.Enabled
	if cfg.MaxConcurrentJobs > 0 {
		c.MaxConcurrentJobs = cfg.MaxConcurrentJobs
	}
	if cfg.JobTimeout > 0 {
		c.JobTimeout = cfg.JobTimeout
	}
	if cfg.LeaseTTL > 0 {
		c.LeaseTTL = cfg.LeaseTTL
	}
	return c
}

// entry is a registered task with its firing schedule.
type entry struct {
	name     string
	schedule *CronSchedule
	fn       JobFunc
}

// Scheduler runs registered tasks on cron schedules through a bounded
// worker pool. Each run takes a short-lived lease before executing, so
// when several instances fire the same minute only one does the work.
type Scheduler struct {
	config Config
	leases cache.LeaseStore
	logger *zap.Logger

	jobs       chan *Job
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	entries    map[string]*entry
	isRunning  bool
	lastMinute string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, leases cache.LeaseStore, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		config:  config,
		leases:  leases,
		logger:  logger,
		entries: make(map[string]*entry),
		jobs:    make(chan *Job, 100),
	}
}

// Register adds a named task with a cron schedule.
func (s *Scheduler) Register(name, cronSpec string, fn JobFunc) error {
	schedule, err := ParseCron(cronSpec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[name]; exists {
		return ErrJobAlreadyRegistered
	}
	s.entries[name] = &entry{name: name, schedule: schedule, fn: fn}

	s.logger.Info("Scheduled job registered",
		zap.String("job", name),
		zap.String("cron", cronSpec),
	)
	return nil
}

// Start starts the worker pool and the cron tick loop
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler disabled by configuration")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.wg.Add(1)
	go s.tickLoop(ctx)

	s.logger.Info("Scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Int("jobs", len(s.entries)),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	close(s.jobs)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs a registered job immediately, bypassing its schedule.
// The run still takes the lease and honors the job timeout.
func (s *Scheduler) TriggerNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return ErrJobNotRegistered
	}

	job := NewJob(e.name, e.fn, time.Now(), 0)
	return s.runJob(ctx, job)
}

// SubmitJob queues a job for execution by the worker pool
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("job", job.Name),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// tickLoop fires due schedules once per minute
func (s *Scheduler) tickLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkDue(time.Now())
		}
	}
}

// checkDue submits a run for every entry whose schedule matches the
// minute containing now. Each minute is evaluated at most once.
func (s *Scheduler) checkDue(now time.Time) {
	minute := now.Format("2006-01-02 15:04")

	s.mu.Lock()
	if s.lastMinute == minute {
		s.mu.Unlock()
		return
	}
	s.lastMinute = minute

	var due []*entry
	for _, e := range s.entries {
		if e.schedule.Matches(now) {
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	for _, e := range due {
		job := NewJob(e.name, e.fn, now, s.config.RetryAttempts)
		if err := s.SubmitJob(job); err != nil {
			s.logger.Error("Failed to submit scheduled job",
				zap.String("job", e.name),
				zap.Error(err),
			)
		}
	}
}

// worker processes jobs from the queue
func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

// processJob executes a single queued job with retries
func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	// Not yet due for retry, put it back
	if job.NextRetryAt != nil && time.Now().Before(*job.NextRetryAt) {
		select {
		case s.jobs <- job:
		default:
			s.logger.Warn("Failed to re-queue job for retry",
				zap.String("job_id", job.ID.String()),
			)
		}
		return
	}

	err := s.runJob(ctx, job)
	if err == nil {
		s.logger.Info("Job completed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("job", job.Name),
		)
		return
	}

	s.logger.Error("Job failed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job", job.Name),
		zap.Error(err),
	)

	if job.ShouldRetry() {
		job.ScheduleRetry(s.config.RetryDelay)
		s.logger.Info("Job scheduled for retry",
			zap.String("job_id", job.ID.String()),
			zap.String("job", job.Name),
			zap.Int("retry_count", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
		)
		select {
		case s.jobs <- job:
		default:
			s.logger.Warn("Failed to re-queue job for retry",
				zap.String("job_id", job.ID.String()),
			)
		}
	}
}

// runJob takes the job lease and executes the job function under the
// configured timeout. A successful run leaves the lease to expire, so
// other instances firing in the same window skip the run. A failed run
// releases it to let a retry reacquire.
func (s *Scheduler) runJob(ctx context.Context, job *Job) error {
	acquired, err := s.leases.Acquire(ctx, job.Name, s.config.LeaseTTL)
	if err != nil {
		job.Fail(err.Error())
		return err
	}
	if !acquired {
		job.Complete()
		s.logger.Debug("Job lease held elsewhere, skipping",
			zap.String("job", job.Name),
		)
		return nil
	}

	job.Start()

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if err := job.fn(jobCtx); err != nil {
		job.Fail(err.Error())
		if relErr := s.leases.Release(ctx, job.Name); relErr != nil {
			s.logger.Warn("Failed to release job lease",
				zap.String("job", job.Name),
				zap.Error(relErr),
			)
		}
		return err
	}

	job.Complete()
	return nil
}
