package persistence

import (
	"context"
	"errors"

	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompanyRepository implements company.CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, comp *company.Company) error {
	return r.db.WithContext(ctx).Save(comp).Error
}

// FindByID finds a company by ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	var comp company.Company
	if err := r.db.WithContext(ctx).First(&comp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &comp, nil
}

// FindByOwner finds all companies owned by a user
func (r *GormCompanyRepository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*company.Company, error) {
	var companies []*company.Company
	if err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// FindAll returns a page of companies matching the filter
func (r *GormCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*company.Company], error) {
	query := r.db.WithContext(ctx).Model(&company.Company{})
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var companies []*company.Company
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, CompanySortFields, "created_at")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&companies).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(companies, total, page, pageSize)
	return &result, nil
}

// FindActive returns all active companies, for scheduled per-company jobs
func (r *GormCompanyRepository) FindActive(ctx context.Context) ([]*company.Company, error) {
	var companies []*company.Company
	if err := r.db.WithContext(ctx).
		Where("status = ?", company.CompanyStatusActive).
		Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// Delete removes a company
func (r *GormCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&company.Company{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ company.CompanyRepository = (*GormCompanyRepository)(nil)
