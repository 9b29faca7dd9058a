package invoicing

import (
	"context"
	"time"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"go.uber.org/zap"
)

// ReminderNotifier delivers payment reminders to the client's billing
// contact
type ReminderNotifier interface {
	SendPaymentReminder(ctx context.Context, inv *invoicing.Invoice, recipient string) error
	SendUpcomingReminder(ctx context.Context, inv *invoicing.Invoice, recipient string) error
}

// DefaultUpcomingDays is how many days before the due date the
// courtesy notice goes out.
const DefaultUpcomingDays = 3

// ReminderService dispatches payment reminders for overdue invoices.
// The per-invoice backoff window widens as the invoice ages so clients
// are not nagged daily about months-old balances.
type ReminderService struct {
	invoiceRepo invoicing.InvoiceRepository
	clientRepo  client.ClientRepository
	notifier    ReminderNotifier
	logger      *zap.Logger
}

// NewReminderService creates a new ReminderService
func NewReminderService(
	invoiceRepo invoicing.InvoiceRepository,
	clientRepo client.ClientRepository,
	notifier ReminderNotifier,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// ReminderStats contains statistics about a reminder dispatch run
type ReminderStats struct {
	Overdue     int       `json:"overdue"`
	Upcoming    int       `json:"upcoming"`
	Sent        int       `json:"sent"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// DispatchReminders sends a reminder for every overdue invoice whose
// backoff window has elapsed, then records the send on the invoice
func (s *ReminderService) DispatchReminders(ctx context.Context, now time.Time) (*ReminderStats, error) {
	stats := &ReminderStats{ProcessedAt: now}

	overdue, err := s.invoiceRepo.FindOverdue(ctx)
	if err != nil {
		s.logger.Error("Failed to find overdue invoices", zap.Error(err))
		return nil, err
	}

	stats.Overdue = len(overdue)
	for _, inv := range overdue {
		if !inv.ShouldSendReminder(now) {
			stats.Skipped++
			continue
		}

		cl, err := s.clientRepo.FindByIDForCompany(ctx, inv.ClientID, inv.CompanyID)
		if err != nil || cl == nil {
			s.logger.Warn("Skipping reminder, client not found",
				zap.String("invoice_id", inv.ID.String()),
				zap.String("client_id", inv.ClientID.String()),
			)
			stats.Skipped++
			continue
		}

		if err := s.notifier.SendPaymentReminder(ctx, inv, cl.Email); err != nil {
			s.logger.Error("Failed to send payment reminder",
				zap.String("invoice_id", inv.ID.String()),
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}

		inv.MarkReminderSent(now)
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			s.logger.Error("Failed to record reminder send",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Sent++
	}

	s.logger.Info("Completed reminder dispatch",
		zap.Int("overdue", stats.Overdue),
		zap.Int("sent", stats.Sent),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// DispatchUpcomingReminders sends a courtesy notice for every open
// invoice due exactly daysBefore days from now. The exact-day match
// means a daily run sends each notice once, so no send is recorded on
// the invoice.
func (s *ReminderService) DispatchUpcomingReminders(ctx context.Context, now time.Time, daysBefore int) (*ReminderStats, error) {
	stats := &ReminderStats{ProcessedAt: now}

	due, err := s.invoiceRepo.FindDueOn(ctx, now.AddDate(0, 0, daysBefore))
	if err != nil {
		s.logger.Error("Failed to find near-due invoices", zap.Error(err))
		return nil, err
	}

	stats.Upcoming = len(due)
	for _, inv := range due {
		cl, err := s.clientRepo.FindByIDForCompany(ctx, inv.ClientID, inv.CompanyID)
		if err != nil || cl == nil {
			s.logger.Warn("Skipping upcoming reminder, client not found",
				zap.String("invoice_id", inv.ID.String()),
				zap.String("client_id", inv.ClientID.String()),
			)
			stats.Skipped++
			continue
		}

		if err := s.notifier.SendUpcomingReminder(ctx, inv, cl.Email); err != nil {
			s.logger.Error("Failed to send upcoming reminder",
				zap.String("invoice_id", inv.ID.String()),
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Sent++
	}

	s.logger.Info("Completed upcoming reminder dispatch",
		zap.Int("upcoming", stats.Upcoming),
		zap.Int("sent", stats.Sent),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}
