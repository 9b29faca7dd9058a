package company

import (
	"context"

	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyRepository persists and queries company aggregates
type CompanyRepository interface {
	Save(ctx context.Context, company *Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*Company, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Company], error)
	FindActive(ctx context.Context) ([]*Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository persists and queries user accounts
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByCompany(ctx context.Context, companyID uuid.UUID) ([]*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
