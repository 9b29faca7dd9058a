package expense

import (
	"context"
	"time"

	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ExpenseFilter describes query criteria for expense listings
type ExpenseFilter struct {
	shared.Filter
	CategoryID    *uuid.UUID
	From          *time.Time
	To            *time.Time
	Approved      *bool
	TaxDeductible *bool
	IsRecurring   *bool
	Search        string
}

// ExpenseRepository persists and queries expense aggregates
type ExpenseRepository interface {
	Save(ctx context.Context, expense *Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindByIDForCompany(ctx context.Context, id, companyID uuid.UUID) (*Expense, error)
	FindForCompany(ctx context.Context, companyID uuid.UUID, filter ExpenseFilter) (*shared.Paginated[*Expense], error)
	FindBetween(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]*Expense, error)

	// FindDueForRecurring returns recurring expenses whose next generation
	// date is on or before the given day, across all companies.
	FindDueForRecurring(ctx context.Context, asOf time.Time) ([]*Expense, error)

	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// CategoryRepository persists and queries expense categories
type CategoryRepository interface {
	Save(ctx context.Context, category *Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByIDForCompany(ctx context.Context, id, companyID uuid.UUID) (*Category, error)
	FindByNameForCompany(ctx context.Context, name string, companyID uuid.UUID) (*Category, error)
	ExistsByName(ctx context.Context, name string, companyID uuid.UUID) (bool, error)
	FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]*Category, error)

	// AncestorChain returns the IDs of every ancestor of the given
	// category, nearest parent first.
	AncestorChain(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
