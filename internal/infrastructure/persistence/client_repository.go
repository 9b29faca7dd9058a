package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements client.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, cl *client.Client) error {
	return r.db.WithContext(ctx).Save(cl).Error
}

// FindByID finds a client by ID regardless of company
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	var cl client.Client
	if err := r.db.WithContext(ctx).First(&cl, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cl, nil
}

// FindByIDForCompany finds a client by ID within a company
func (r *GormClientRepository) FindByIDForCompany(ctx context.Context, id, companyID uuid.UUID) (*client.Client, error) {
	var cl client.Client
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&cl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cl, nil
}

// FindByEmailForCompany finds a client by email within a company
func (r *GormClientRepository) FindByEmailForCompany(ctx context.Context, email string, companyID uuid.UUID) (*client.Client, error) {
	var cl client.Client
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND email = ?", companyID, strings.ToLower(email)).
		First(&cl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cl, nil
}

// ExistsByEmail checks whether a company already has a client with this email
func (r *GormClientRepository) ExistsByEmail(ctx context.Context, email string, companyID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&client.Client{}).
		Where("company_id = ? AND email = ?", companyID, strings.ToLower(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindForCompany returns a page of a company's clients matching the filter
func (r *GormClientRepository) FindForCompany(ctx context.Context, companyID uuid.UUID, filter client.ClientFilter) (*shared.Paginated[*client.Client], error) {
	query := r.db.WithContext(ctx).
		Model(&client.Client{}).
		Where("company_id = ?", companyID)
	query = applyClientFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var clients []*client.Client
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, ClientSortFields, "name")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&clients).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(clients, total, page, pageSize)
	return &result, nil
}

// FindActiveForCompany returns all active clients for a company
func (r *GormClientRepository) FindActiveForCompany(ctx context.Context, companyID uuid.UUID) ([]*client.Client, error) {
	var clients []*client.Client
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, client.ClientStatusActive).
		Order("name ASC").
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// FindWithCreditLimit returns active clients across all companies that
// carry a credit limit, for the nightly credit sweep
func (r *GormClientRepository) FindWithCreditLimit(ctx context.Context) ([]*client.Client, error) {
	var clients []*client.Client
	if err := r.db.WithContext(ctx).
		Where("status = ? AND credit_limit IS NOT NULL", client.ClientStatusActive).
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Delete removes a client
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&client.Client{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts a company's clients
func (r *GormClientRepository) Count(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&client.Client{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyClientFilter(query *gorm.DB, filter client.ClientFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR contact_name ILIKE ?",
			pattern, pattern, pattern)
	}
	return query
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

var _ client.ClientRepository = (*GormClientRepository)(nil)
