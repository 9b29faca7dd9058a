package invoicing

import (
	"context"
	"time"

	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter describes query criteria for invoice listings
type InvoiceFilter struct {
	shared.Filter
	Status      *InvoiceStatus
	ClientID    *uuid.UUID
	IssuedFrom  *time.Time
	IssuedTo    *time.Time
	DueFrom     *time.Time
	DueTo       *time.Time
	IsRecurring *bool
	Search      string
}

// InvoiceRepository persists and queries invoice aggregates
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *Invoice) error
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByIDForCompany(ctx context.Context, id, companyID uuid.UUID) (*Invoice, error)
	FindByNumberForCompany(ctx context.Context, number string, companyID uuid.UUID) (*Invoice, error)
	ExistsByNumber(ctx context.Context, number string, companyID uuid.UUID) (bool, error)
	FindForCompany(ctx context.Context, companyID uuid.UUID, filter InvoiceFilter) (*shared.Paginated[*Invoice], error)
	FindByClient(ctx context.Context, companyID, clientID uuid.UUID) ([]*Invoice, error)

	// FindOutstanding returns SENT, PARTIALLY_PAID and OVERDUE invoices for a company.
	FindOutstanding(ctx context.Context, companyID uuid.UUID) ([]*Invoice, error)

	// FindOverdueCandidates returns SENT and PARTIALLY_PAID invoices across all
	// companies whose due date falls strictly before the given day.
	FindOverdueCandidates(ctx context.Context, before time.Time) ([]*Invoice, error)

	// FindDueForRecurring returns recurring invoices whose next generation date
	// is on or before the given day, across all companies.
	FindDueForRecurring(ctx context.Context, asOf time.Time) ([]*Invoice, error)

	// FindOverdue returns OVERDUE invoices for reminder dispatch.
	FindOverdue(ctx context.Context) ([]*Invoice, error)

	// FindDueOn returns SENT and PARTIALLY_PAID invoices across all companies
	// whose due date falls on the given calendar day, for near-due reminders.
	FindDueOn(ctx context.Context, day time.Time) ([]*Invoice, error)

	// FindIssuedBetween returns invoices issued in [from, to] for a company,
	// all statuses except CANCELLED.
	FindIssuedBetween(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]*Invoice, error)

	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, companyID uuid.UUID) (int64, error)
}
