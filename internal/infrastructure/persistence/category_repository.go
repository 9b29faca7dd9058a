package persistence

import (
	"context"
	"errors"

	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCategoryRepository implements expense.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, cat *expense.Category) error {
	return r.db.WithContext(ctx).Save(cat).Error
}

// FindByID finds a category by ID regardless of company
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Category, error) {
	var cat expense.Category
	if err := r.db.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

// FindByIDForCompany finds a category by ID within a company
func (r *GormCategoryRepository) FindByIDForCompany(ctx context.Context, id, companyID uuid.UUID) (*expense.Category, error) {
	var cat expense.Category
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

// FindByNameForCompany finds a category by name within a company
func (r *GormCategoryRepository) FindByNameForCompany(ctx context.Context, name string, companyID uuid.UUID) (*expense.Category, error) {
	var cat expense.Category
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND name = ?", companyID, name).
		First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

// ExistsByName checks whether a company already has a category with this name
func (r *GormCategoryRepository) ExistsByName(ctx context.Context, name string, companyID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&expense.Category{}).
		Where("company_id = ? AND name = ?", companyID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAllForCompany returns all of a company's categories ordered by name
func (r *GormCategoryRepository) FindAllForCompany(ctx context.Context, companyID uuid.UUID) ([]*expense.Category, error) {
	var categories []*expense.Category
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// AncestorChain walks parent links upward and returns every ancestor ID,
// nearest parent first. Hierarchies are shallow so one query per level
// is acceptable; the depth guard stops runaway chains from corrupt data.
func (r *GormCategoryRepository) AncestorChain(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	const maxDepth = 32

	chain := make([]uuid.UUID, 0, 4)
	current := id
	for depth := 0; depth < maxDepth; depth++ {
		var row struct {
			ParentID *uuid.UUID
		}
		err := r.db.WithContext(ctx).
			Model(&expense.Category{}).
			Select("parent_id").
			Where("id = ?", current).
			Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return chain, nil
			}
			return nil, err
		}
		if row.ParentID == nil {
			return chain, nil
		}
		chain = append(chain, *row.ParentID)
		current = *row.ParentID
	}
	return nil, shared.NewDomainError("CATEGORY_CYCLE", "Category hierarchy exceeds maximum depth")
}

// Delete removes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&expense.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ expense.CategoryRepository = (*GormCategoryRepository)(nil)
