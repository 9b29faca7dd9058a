package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	appclient "github.com/expenseally/backend/internal/application/client"
	appexpense "github.com/expenseally/backend/internal/application/expense"
	appinvoicing "github.com/expenseally/backend/internal/application/invoicing"
	"github.com/expenseally/backend/internal/infrastructure/config"
)

// Standard job names. These double as lease keys, so they must stay
// stable across deployments.
const (
	JobOverdueSweep      = "overdue-sweep"
	JobRecurringInvoices = "recurring-invoices"
	JobRecurringExpenses = "recurring-expenses"
	JobReminderDispatch  = "reminder-dispatch"
	JobCreditAlerts      = "credit-alerts"
	JobWeeklySummary     = "weekly-summary"
	JobMonthlyDigest     = "monthly-digest"
	JobRateRefresh       = "rate-refresh"
	JobNightlyBackup     = "nightly-backup"
)

// DigestSender sends periodic summary emails to company owners.
type DigestSender interface {
	SendWeeklySummaries(ctx context.Context, now time.Time) error
	SendMonthlyDigests(ctx context.Context, now time.Time) error
}

// RateRefresher updates cached exchange rates from the provider.
type RateRefresher interface {
	Refresh(ctx context.Context) error
}

// BackupRunner produces and uploads a database backup archive.
type BackupRunner interface {
	Run(ctx context.Context, now time.Time) error
}

// StandardJobs bundles the services behind the built-in scheduled jobs.
// Optional members may be nil, in which case the job is not registered.
type StandardJobs struct {
	Overdue           *appinvoicing.OverdueService
	RecurringInvoices *appinvoicing.RecurringInvoiceService
	Reminders         *appinvoicing.ReminderService
	RecurringExpenses *appexpense.RecurringExpenseService
	CreditMonitor     *appclient.CreditMonitorService
	Digests           DigestSender
	Rates             RateRefresher
	Backup            BackupRunner
}

// RegisterStandardJobs wires the built-in jobs onto their configured
// cron schedules.
func (s *Scheduler) RegisterStandardJobs(cfg config.SchedulerConfig, jobs StandardJobs) error {
	if jobs.Overdue != nil {
		err := s.Register(JobOverdueSweep, cfg.OverdueSweepCron, func(ctx context.Context) error {
			stats, err := jobs.Overdue.SweepOverdue(ctx, time.Now())
			if err != nil {
				return err
			}
			s.logger.Info("Overdue sweep finished",
				zap.Int("candidates", stats.Candidates),
				zap.Int("transitioned", stats.Transitioned),
				zap.Int("failed", stats.Failed),
			)
			return nil
		})
		if err != nil {
			return err
		}
	}

	if jobs.RecurringInvoices != nil {
		err := s.Register(JobRecurringInvoices, cfg.DailyCron, func(ctx context.Context) error {
			stats, err := jobs.RecurringInvoices.GenerateDue(ctx, time.Now())
			if err != nil {
				return err
			}
			s.logger.Info("Recurring invoice generation finished",
				zap.Int("generated", stats.Generated),
				zap.Int("failed", stats.Failed),
			)
			return nil
		})
		if err != nil {
			return err
		}
	}

	if jobs.RecurringExpenses != nil {
		err := s.Register(JobRecurringExpenses, cfg.DailyCron, func(ctx context.Context) error {
			stats, err := jobs.RecurringExpenses.GenerateDue(ctx, time.Now())
			if err != nil {
				return err
			}
			s.logger.Info("Recurring expense generation finished",
				zap.Int("generated", stats.Generated),
				zap.Int("failed", stats.Failed),
			)
			return nil
		})
		if err != nil {
			return err
		}
	}

	if jobs.Reminders != nil {
		err := s.Register(JobReminderDispatch, cfg.DailyCron, func(ctx context.Context) error {
			stats, err := jobs.Reminders.DispatchReminders(ctx, time.Now())
			if err != nil {
				return err
			}
			s.logger.Info("Reminder dispatch finished",
				zap.Int("overdue", stats.Overdue),
				zap.Int("sent", stats.Sent),
				zap.Int("skipped", stats.Skipped),
				zap.Int("failed", stats.Failed),
			)

			upcoming, err := jobs.Reminders.DispatchUpcomingReminders(ctx, time.Now(), appinvoicing.DefaultUpcomingDays)
			if err != nil {
				return err
			}
			s.logger.Info("Upcoming reminder dispatch finished",
				zap.Int("upcoming", upcoming.Upcoming),
				zap.Int("sent", upcoming.Sent),
				zap.Int("failed", upcoming.Failed),
			)
			return nil
		})
		if err != nil {
			return err
		}
	}

	if jobs.CreditMonitor != nil {
		err := s.Register(JobCreditAlerts, cfg.DailyCron, func(ctx context.Context) error {
			stats, err := jobs.CreditMonitor.CheckAll(ctx)
			if err != nil {
				return err
			}
			s.logger.Info("Credit limit check finished",
				zap.Int("checked", stats.Checked),
				zap.Int("alerted", stats.Alerted),
			)
			return nil
		})
		if err != nil {
			return err
		}
	}

	if jobs.Digests != nil {
		err := s.Register(JobWeeklySummary, cfg.WeeklyCron, func(ctx context.Context) error {
			return jobs.Digests.SendWeeklySummaries(ctx, time.Now())
		})
		if err != nil {
			return err
		}
		err = s.Register(JobMonthlyDigest, cfg.MonthlyCron, func(ctx context.Context) error {
			return jobs.Digests.SendMonthlyDigests(ctx, time.Now())
		})
		if err != nil {
			return err
		}
	}

	if jobs.Rates != nil {
		err := s.Register(JobRateRefresh, cfg.DailyCron, func(ctx context.Context) error {
			return jobs.Rates.Refresh(ctx)
		})
		if err != nil {
			return err
		}
	}

	if jobs.Backup != nil {
		err := s.Register(JobNightlyBackup, cfg.BackupCron, func(ctx context.Context) error {
			return jobs.Backup.Run(ctx, time.Now())
		})
		if err != nil {
			return err
		}
	}

	return nil
}
