package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRepository implements expense.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, exp *expense.Expense) error {
	return r.db.WithContext(ctx).Save(exp).Error
}

// FindByID finds an expense by ID regardless of company
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	var exp expense.Expense
	if err := r.db.WithContext(ctx).First(&exp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &exp, nil
}

// FindByIDForCompany finds an expense by ID within a company
func (r *GormExpenseRepository) FindByIDForCompany(ctx context.Context, id, companyID uuid.UUID) (*expense.Expense, error) {
	var exp expense.Expense
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&exp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &exp, nil
}

// FindForCompany returns a page of a company's expenses matching the filter
func (r *GormExpenseRepository) FindForCompany(ctx context.Context, companyID uuid.UUID, filter expense.ExpenseFilter) (*shared.Paginated[*expense.Expense], error) {
	query := r.db.WithContext(ctx).
		Model(&expense.Expense{}).
		Where("company_id = ?", companyID)
	query = applyExpenseFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var expenses []*expense.Expense
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, ExpenseSortFields, "expense_date")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&expenses).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(expenses, total, page, pageSize)
	return &result, nil
}

// FindBetween returns a company's expenses dated in [from, to]
func (r *GormExpenseRepository) FindBetween(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND expense_date >= ? AND expense_date <= ?", companyID, from, to).
		Order("expense_date ASC").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// FindDueForRecurring returns recurring expense templates whose next
// generation date has arrived, across all companies
func (r *GormExpenseRepository) FindDueForRecurring(ctx context.Context, asOf time.Time) ([]*expense.Expense, error) {
	var expenses []*expense.Expense
	if err := r.db.WithContext(ctx).
		Where("is_recurring = ? AND next_recurring_date IS NOT NULL AND next_recurring_date <= ?", true, asOf).
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// Delete removes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&expense.Expense{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts a company's expenses
func (r *GormExpenseRepository) Count(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&expense.Expense{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyExpenseFilter(query *gorm.DB, filter expense.ExpenseFilter) *gorm.DB {
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.From != nil {
		query = query.Where("expense_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("expense_date <= ?", *filter.To)
	}
	if filter.Approved != nil {
		if *filter.Approved {
			query = query.Where("approved_by IS NOT NULL")
		} else {
			query = query.Where("approved_by IS NULL")
		}
	}
	if filter.TaxDeductible != nil {
		query = query.Where("tax_deductible = ?", *filter.TaxDeductible)
	}
	if filter.IsRecurring != nil {
		query = query.Where("is_recurring = ?", *filter.IsRecurring)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("description ILIKE ? OR vendor ILIKE ?", pattern, pattern)
	}
	return query
}

var _ expense.ExpenseRepository = (*GormExpenseRepository)(nil)
