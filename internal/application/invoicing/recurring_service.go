package invoicing

import (
	"context"
	"time"

	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecurringInvoiceService generates new draft invoices from recurring
// templates whose next generation date has come due. The schedule is
// advanced and persisted before the clone is saved, so a crash between
// the two writes skips a generation instead of duplicating one.
type RecurringInvoiceService struct {
	invoiceRepo    invoicing.InvoiceRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewRecurringInvoiceService creates a new RecurringInvoiceService
func NewRecurringInvoiceService(invoiceRepo invoicing.InvoiceRepository, logger *zap.Logger) *RecurringInvoiceService {
	return &RecurringInvoiceService{
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *RecurringInvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GenerationStats contains statistics about a recurring generation run
type GenerationStats struct {
	Due         int       `json:"due"`
	Generated   int       `json:"generated"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// GenerateDue clones every recurring invoice whose next generation date
// is on or before today into a new draft dated today
func (s *RecurringInvoiceService) GenerateDue(ctx context.Context, today time.Time) (*GenerationStats, error) {
	stats := &GenerationStats{ProcessedAt: time.Now()}

	due, err := s.invoiceRepo.FindDueForRecurring(ctx, today)
	if err != nil {
		s.logger.Error("Failed to find due recurring invoices", zap.Error(err))
		return nil, err
	}

	stats.Due = len(due)
	if stats.Due == 0 {
		s.logger.Debug("No recurring invoices due")
		return stats, nil
	}

	for _, template := range due {
		if err := s.generateOne(ctx, template, today); err != nil {
			s.logger.Error("Failed to generate recurring invoice",
				zap.String("template_id", template.ID.String()),
				zap.String("invoice_number", template.InvoiceNumber),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Generated++
	}

	s.logger.Info("Completed recurring invoice generation",
		zap.Int("due", stats.Due),
		zap.Int("generated", stats.Generated),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

func (s *RecurringInvoiceService) generateOne(ctx context.Context, template *invoicing.Invoice, today time.Time) error {
	// Advance and persist the schedule first. If the clone save below
	// fails, the worst case is a skipped generation, never a duplicate.
	if err := template.AdvanceRecurringSchedule(today); err != nil {
		return err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, template); err != nil {
		return err
	}

	number, err := s.nextNumber(ctx, template.CompanyID, today)
	if err != nil {
		return err
	}

	termDays := daysSpan(template.IssueDate, template.DueDate)
	clone, err := template.CloneForRecurrence(number, today, today.AddDate(0, 0, termDays))
	if err != nil {
		return err
	}

	if err := s.invoiceRepo.Save(ctx, clone); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		for _, event := range clone.GetDomainEvents() {
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Warn("Failed to publish recurring invoice event",
					zap.String("invoice_id", clone.ID.String()),
					zap.Error(err),
				)
			}
		}
		clone.ClearDomainEvents()
	}
	return nil
}

func (s *RecurringInvoiceService) nextNumber(ctx context.Context, companyID uuid.UUID, now time.Time) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := invoicing.GenerateInvoiceNumber(now)
		exists, err := s.invoiceRepo.ExistsByNumber(ctx, number, companyID)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", shared.NewDomainError("NUMBER_EXHAUSTED", "Could not allocate a unique invoice number")
}

// daysSpan returns the whole days between two instants, floored at zero
func daysSpan(from, to time.Time) int {
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
