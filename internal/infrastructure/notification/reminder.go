package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/expenseally/backend/internal/domain/invoicing"
)

// EmailReminderNotifier delivers payment reminders over email.
type EmailReminderNotifier struct {
	mailer Mailer
	logger *zap.Logger
}

// NewEmailReminderNotifier creates an email-backed reminder notifier.
func NewEmailReminderNotifier(mailer Mailer, logger *zap.Logger) *EmailReminderNotifier {
	return &EmailReminderNotifier{mailer: mailer, logger: logger}
}

// SendPaymentReminder emails an overdue notice to the client's billing
// contact.
func (n *EmailReminderNotifier) SendPaymentReminder(ctx context.Context, inv *invoicing.Invoice, recipient string) error {
	subject, body, err := RenderPaymentReminder(inv)
	if err != nil {
		return err
	}

	if err := n.mailer.Send(ctx, Message{
		To:       []string{recipient},
		Subject:  subject,
		HTMLBody: body,
	}); err != nil {
		return err
	}

	n.logger.Info("Payment reminder sent",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("recipient", recipient),
	)
	return nil
}

// SendUpcomingReminder emails a courtesy notice for an invoice that is
// approaching its due date.
func (n *EmailReminderNotifier) SendUpcomingReminder(ctx context.Context, inv *invoicing.Invoice, recipient string) error {
	subject, body, err := RenderUpcomingReminder(inv)
	if err != nil {
		return err
	}

	if err := n.mailer.Send(ctx, Message{
		To:       []string{recipient},
		Subject:  subject,
		HTMLBody: body,
	}); err != nil {
		return err
	}

	n.logger.Info("Upcoming payment reminder sent",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("recipient", recipient),
	)
	return nil
}
