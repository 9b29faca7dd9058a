package event

import (
	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/invoicing"
)

// RegisterDomainEvents registers every event type the domain raises so
// stored payloads can be decoded again
func RegisterDomainEvents(s *Serializer) {
	s.Register("CompanyCreated", &company.CompanyCreatedEvent{})

	s.Register("ClientCreated", &client.ClientCreatedEvent{})
	s.Register("ClientUpdated", &client.ClientUpdatedEvent{})
	s.Register("ClientStatusChanged", &client.ClientStatusChangedEvent{})
	s.Register("ClientCreditAlert", &client.ClientCreditAlertEvent{})

	s.Register("InvoiceCreated", &invoicing.InvoiceCreatedEvent{})
	s.Register("InvoiceSent", &invoicing.InvoiceSentEvent{})
	s.Register("InvoicePaid", &invoicing.InvoicePaidEvent{})
	s.Register("InvoicePartiallyPaid", &invoicing.InvoicePartiallyPaidEvent{})
	s.Register("PaymentRefunded", &invoicing.PaymentRefundedEvent{})
	s.Register("InvoiceVoided", &invoicing.InvoiceVoidedEvent{})
	s.Register("InvoiceOverdue", &invoicing.InvoiceOverdueEvent{})

	s.Register("ExpenseCreated", &expense.ExpenseCreatedEvent{})
	s.Register("ExpenseApproved", &expense.ExpenseApprovedEvent{})
}
