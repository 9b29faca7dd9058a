package client

import (
	"context"

	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientFilter describes query criteria for client listings
type ClientFilter struct {
	shared.Filter
	Status *ClientStatus
	Search string
}

// ClientRepository persists and queries client aggregates
type ClientRepository interface {
	Save(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByIDForCompany(ctx context.Context, id, companyID uuid.UUID) (*Client, error)
	FindByEmailForCompany(ctx context.Context, email string, companyID uuid.UUID) (*Client, error)
	ExistsByEmail(ctx context.Context, email string, companyID uuid.UUID) (bool, error)
	FindForCompany(ctx context.Context, companyID uuid.UUID, filter ClientFilter) (*shared.Paginated[*Client], error)
	FindActiveForCompany(ctx context.Context, companyID uuid.UUID) ([]*Client, error)

	// FindWithCreditLimit returns active clients with a non-zero credit
	// limit across all companies, for the credit monitoring job.
	FindWithCreditLimit(ctx context.Context) ([]*Client, error)

	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, companyID uuid.UUID) (int64, error)
}
