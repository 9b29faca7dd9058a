package expense

import (
	"context"
	"time"

	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RecurringExpenseService generates new unapproved expenses from
// recurring templates whose next generation date has come due. The
// schedule is advanced and persisted before the clone is saved, so a
// crash between the two writes skips a generation instead of
// duplicating one.
type RecurringExpenseService struct {
	expenseRepo    expense.ExpenseRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewRecurringExpenseService creates a new RecurringExpenseService
func NewRecurringExpenseService(expenseRepo expense.ExpenseRepository, logger *zap.Logger) *RecurringExpenseService {
	return &RecurringExpenseService{
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *RecurringExpenseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GenerationStats contains statistics about a recurring generation run
type GenerationStats struct {
	Due         int       `json:"due"`
	Generated   int       `json:"generated"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// GenerateDue clones every recurring expense whose next generation date
// is on or before today into a new unapproved record dated today
func (s *RecurringExpenseService) GenerateDue(ctx context.Context, today time.Time) (*GenerationStats, error) {
	stats := &GenerationStats{ProcessedAt: time.Now()}

	due, err := s.expenseRepo.FindDueForRecurring(ctx, today)
	if err != nil {
		s.logger.Error("Failed to find due recurring expenses", zap.Error(err))
		return nil, err
	}

	stats.Due = len(due)
	if stats.Due == 0 {
		s.logger.Debug("No recurring expenses due")
		return stats, nil
	}

	for _, template := range due {
		if err := s.generateOne(ctx, template, today); err != nil {
			s.logger.Error("Failed to generate recurring expense",
				zap.String("template_id", template.ID.String()),
				zap.String("description", template.Description),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Generated++
	}

	s.logger.Info("Completed recurring expense generation",
		zap.Int("due", stats.Due),
		zap.Int("generated", stats.Generated),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

func (s *RecurringExpenseService) generateOne(ctx context.Context, template *expense.Expense, today time.Time) error {
	// Schedule first, clone second. A failure after the schedule write
	// skips one generation rather than producing a duplicate.
	if err := template.AdvanceRecurringSchedule(today); err != nil {
		return err
	}
	if err := s.expenseRepo.Save(ctx, template); err != nil {
		return err
	}

	clone, err := template.CloneForRecurrence(today)
	if err != nil {
		return err
	}
	if err := s.expenseRepo.Save(ctx, clone); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		for _, event := range clone.GetDomainEvents() {
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Warn("Failed to publish recurring expense event",
					zap.String("expense_id", clone.ID.String()),
					zap.Error(err),
				)
			}
		}
		clone.ClearDomainEvents()
	}
	return nil
}
