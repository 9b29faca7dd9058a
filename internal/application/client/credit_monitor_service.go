package client

import (
	"context"
	"time"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreditMonitorService checks every client with a credit limit against
// their outstanding invoice balance and publishes an alert event when a
// threshold is crossed. Invoked by the daily scheduler job.
type CreditMonitorService struct {
	clientRepo     client.ClientRepository
	invoiceRepo    invoicing.InvoiceRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCreditMonitorService creates a new CreditMonitorService
func NewCreditMonitorService(
	clientRepo client.ClientRepository,
	invoiceRepo invoicing.InvoiceRepository,
	logger *zap.Logger,
) *CreditMonitorService {
	return &CreditMonitorService{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for credit alert events
func (s *CreditMonitorService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreditCheckStats contains statistics about a credit monitoring run
type CreditCheckStats struct {
	Checked     int       `json:"checked"`
	Alerted     int       `json:"alerted"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// CheckAll evaluates every active client with a credit limit and raises
// alerts for those at or past the warning thresholds
func (s *CreditMonitorService) CheckAll(ctx context.Context) (*CreditCheckStats, error) {
	stats := &CreditCheckStats{ProcessedAt: time.Now()}

	clients, err := s.clientRepo.FindWithCreditLimit(ctx)
	if err != nil {
		s.logger.Error("Failed to find clients with credit limits", zap.Error(err))
		return nil, err
	}

	stats.Checked = len(clients)
	for _, cl := range clients {
		invoices, err := s.invoiceRepo.FindByClient(ctx, cl.CompanyID, cl.ID)
		if err != nil {
			s.logger.Error("Failed to load invoices for credit check",
				zap.String("client_id", cl.ID.String()),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}

		outstanding := decimal.Zero
		for _, inv := range invoices {
			if inv.Status.IsOutstanding() {
				outstanding = outstanding.Add(inv.BalanceDue())
			}
		}

		level := cl.CreditAlert(outstanding)
		if level == client.CreditAlertNone {
			continue
		}

		s.logger.Warn("Client credit alert",
			zap.String("client_id", cl.ID.String()),
			zap.String("client_name", cl.Name),
			zap.String("level", string(level)),
			zap.String("outstanding", outstanding.StringFixed(2)),
			zap.String("credit_limit", cl.CreditLimit.StringFixed(2)),
		)
		stats.Alerted++

		if s.eventPublisher != nil {
			event := client.NewClientCreditAlertEvent(cl, level, outstanding)
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Warn("Failed to publish credit alert event",
					zap.String("client_id", cl.ID.String()),
					zap.Error(err),
				)
			}
		}
	}

	s.logger.Info("Completed credit monitoring",
		zap.Int("checked", stats.Checked),
		zap.Int("alerted", stats.Alerted),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}
