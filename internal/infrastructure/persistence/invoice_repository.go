package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM.
// Line items and payment records live in JSONB columns on the invoices
// table, so the whole aggregate loads and saves in one row.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

// SaveWithLock saves an invoice guarded by its version. Payment recording
// goes through this path so two concurrent payments cannot both apply
// against the same starting balance.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoicing.Invoice) error {
	result := r.db.WithContext(ctx).
		Model(inv).
		Where("id = ? AND version = ?", inv.ID, inv.Version-1).
		Select("*").
		Updates(inv)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The invoice was modified by another request")
	}
	return nil
}

// FindByID finds an invoice by ID regardless of company
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	var inv invoicing.Invoice
	if err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByIDForCompany finds an invoice by ID within a company
func (r *GormInvoiceRepository) FindByIDForCompany(ctx context.Context, id, companyID uuid.UUID) (*invoicing.Invoice, error) {
	var inv invoicing.Invoice
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByNumberForCompany finds an invoice by its number within a company
func (r *GormInvoiceRepository) FindByNumberForCompany(ctx context.Context, number string, companyID uuid.UUID) (*invoicing.Invoice, error) {
	var inv invoicing.Invoice
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND invoice_number = ?", companyID, number).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// ExistsByNumber checks whether a company already uses an invoice number
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, number string, companyID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&invoicing.Invoice{}).
		Where("company_id = ? AND invoice_number = ?", companyID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindForCompany returns a page of a company's invoices matching the filter
func (r *GormInvoiceRepository) FindForCompany(ctx context.Context, companyID uuid.UUID, filter invoicing.InvoiceFilter) (*shared.Paginated[*invoicing.Invoice], error) {
	query := r.db.WithContext(ctx).
		Model(&invoicing.Invoice{}).
		Where("company_id = ?", companyID)
	query = applyInvoiceFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var invoices []*invoicing.Invoice
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, InvoiceSortFields, "issue_date")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&invoices).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(invoices, total, page, pageSize)
	return &result, nil
}

// FindByClient returns all of a client's invoices, newest first
func (r *GormInvoiceRepository) FindByClient(ctx context.Context, companyID, clientID uuid.UUID) ([]*invoicing.Invoice, error) {
	var invoices []*invoicing.Invoice
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND client_id = ?", companyID, clientID).
		Order("issue_date DESC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindOutstanding returns a company's invoices still awaiting payment
func (r *GormInvoiceRepository) FindOutstanding(ctx context.Context, companyID uuid.UUID) ([]*invoicing.Invoice, error) {
	var invoices []*invoicing.Invoice
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND status IN ?", companyID, outstandingStatuses()).
		Order("due_date ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindOverdueCandidates returns sent and partially paid invoices across
// all companies due strictly before the given day, for the overdue sweep
func (r *GormInvoiceRepository) FindOverdueCandidates(ctx context.Context, before time.Time) ([]*invoicing.Invoice, error) {
	var invoices []*invoicing.Invoice
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date < ?",
			[]invoicing.InvoiceStatus{invoicing.InvoiceStatusSent, invoicing.InvoiceStatusPartiallyPaid},
			before).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindDueForRecurring returns recurring invoices whose next generation
// date has arrived, across all companies
func (r *GormInvoiceRepository) FindDueForRecurring(ctx context.Context, asOf time.Time) ([]*invoicing.Invoice, error) {
	var invoices []*invoicing.Invoice
	if err := r.db.WithContext(ctx).
		Where("is_recurring = ? AND next_recurring_date IS NOT NULL AND next_recurring_date <= ?", true, asOf).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindOverdue returns overdue invoices across all companies for reminders
func (r *GormInvoiceRepository) FindOverdue(ctx context.Context) ([]*invoicing.Invoice, error) {
	var invoices []*invoicing.Invoice
	if err := r.db.WithContext(ctx).
		Where("status = ?", invoicing.InvoiceStatusOverdue).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindDueOn returns open invoices due on the given calendar day, for
// upcoming-payment reminders
func (r *GormInvoiceRepository) FindDueOn(ctx context.Context, day time.Time) ([]*invoicing.Invoice, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var invoices []*invoicing.Invoice
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []invoicing.InvoiceStatus{
			invoicing.InvoiceStatusSent,
			invoicing.InvoiceStatusPartiallyPaid,
		}).
		Where("due_date >= ? AND due_date < ?", start, end).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindIssuedBetween returns a company's non-cancelled invoices issued in
// [from, to]. A zero from leaves the window open at the start.
func (r *GormInvoiceRepository) FindIssuedBetween(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]*invoicing.Invoice, error) {
	query := r.db.WithContext(ctx).
		Where("company_id = ? AND status <> ?", companyID, invoicing.InvoiceStatusCancelled).
		Where("issue_date <= ?", to)
	if !from.IsZero() {
		query = query.Where("issue_date >= ?", from)
	}

	var invoices []*invoicing.Invoice
	if err := query.Order("issue_date ASC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Delete removes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&invoicing.Invoice{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts a company's invoices
func (r *GormInvoiceRepository) Count(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&invoicing.Invoice{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyInvoiceFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issue_date >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issue_date <= ?", *filter.IssuedTo)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.IsRecurring != nil {
		query = query.Where("is_recurring = ?", *filter.IsRecurring)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR client_name ILIKE ?", pattern, pattern)
	}
	return query
}

func outstandingStatuses() []invoicing.InvoiceStatus {
	return []invoicing.InvoiceStatus{
		invoicing.InvoiceStatusSent,
		invoicing.InvoiceStatusPartiallyPaid,
		invoicing.InvoiceStatusOverdue,
	}
}

var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
