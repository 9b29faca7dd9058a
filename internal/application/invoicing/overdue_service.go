package invoicing

import (
	"context"
	"errors"
	"time"

	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OverdueService transitions past-due invoices to OVERDUE and computes
// late fees. It is invoked by the hourly scheduler job and by the admin CLI.
type OverdueService struct {
	invoiceRepo    invoicing.InvoiceRepository
	companyRepo    company.CompanyRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOverdueService creates a new OverdueService
func NewOverdueService(
	invoiceRepo invoicing.InvoiceRepository,
	companyRepo company.CompanyRepository,
	logger *zap.Logger,
) *OverdueService {
	return &OverdueService{
		invoiceRepo: invoiceRepo,
		companyRepo: companyRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *OverdueService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SweepStats contains statistics about an overdue sweep run
type SweepStats struct {
	Candidates   int       `json:"candidates"`
	Transitioned int       `json:"transitioned"`
	Failed       int       `json:"failed"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// SweepOverdue finds SENT and PARTIALLY_PAID invoices whose due date has
// passed and transitions them to OVERDUE. Invoices due today are left
// alone; the comparison is on calendar dates, not instants.
func (s *OverdueService) SweepOverdue(ctx context.Context, today time.Time) (*SweepStats, error) {
	stats := &SweepStats{ProcessedAt: time.Now()}

	candidates, err := s.invoiceRepo.FindOverdueCandidates(ctx, today)
	if err != nil {
		s.logger.Error("Failed to find overdue candidates", zap.Error(err))
		return nil, err
	}

	stats.Candidates = len(candidates)
	if stats.Candidates == 0 {
		s.logger.Debug("No overdue candidates found")
		return stats, nil
	}

	for _, inv := range candidates {
		if !inv.SweepOverdue(today) {
			continue
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
			s.logger.Error("Failed to save overdue invoice",
				zap.String("invoice_id", inv.ID.String()),
				zap.String("invoice_number", inv.InvoiceNumber),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Transitioned++

		if s.eventPublisher != nil {
			for _, event := range inv.GetDomainEvents() {
				if err := s.eventPublisher.Publish(ctx, event); err != nil {
					s.logger.Warn("Failed to publish overdue event",
						zap.String("invoice_id", inv.ID.String()),
						zap.Error(err),
					)
				}
			}
			inv.ClearDomainEvents()
		}
	}

	s.logger.Info("Completed overdue sweep",
		zap.Int("candidates", stats.Candidates),
		zap.Int("transitioned", stats.Transitioned),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// LateFeeEntry describes the accrued late fee for one overdue invoice
type LateFeeEntry struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientID      uuid.UUID       `json:"client_id"`
	ClientName    string          `json:"client_name"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	DaysOverdue   int             `json:"days_overdue"`
	LateFee       decimal.Decimal `json:"late_fee"`
}

// CalculateLateFees computes the accrued late fee for every overdue
// invoice of a company, using the company's monthly late-fee rate
// prorated per day. It reports; it does not mutate invoices.
func (s *OverdueService) CalculateLateFees(ctx context.Context, companyID uuid.UUID, today time.Time) ([]LateFeeEntry, error) {
	comp, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Company not found")
		}
		return nil, err
	}

	rate := comp.Settings.LateFeeMonthlyRate
	if rate.IsZero() {
		return []LateFeeEntry{}, nil
	}

	outstanding, err := s.invoiceRepo.FindOutstanding(ctx, companyID)
	if err != nil {
		return nil, err
	}

	entries := make([]LateFeeEntry, 0)
	for _, inv := range outstanding {
		if !inv.IsOverdue(today) {
			continue
		}
		fee := inv.LateFee(rate, today)
		if !fee.IsPositive() {
			continue
		}
		entries = append(entries, LateFeeEntry{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			ClientID:      inv.ClientID,
			ClientName:    inv.ClientName,
			BalanceDue:    inv.BalanceDue(),
			DaysOverdue:   inv.DaysOverdue(today),
			LateFee:       fee,
		})
	}
	return entries, nil
}
