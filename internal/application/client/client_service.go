package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientService provides application-level client operations
type ClientService struct {
	clientRepo     client.ClientRepository
	invoiceRepo    invoicing.InvoiceRepository
	eventPublisher shared.EventPublisher
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo client.ClientRepository, invoiceRepo invoicing.InvoiceRepository) *ClientService {
	return &ClientService{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ClientService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ===================== DTOs =====================

// CreateClientRequest represents a request to create a client
type CreateClientRequest struct {
	Name             string           `json:"name" binding:"required"`
	Email            string           `json:"email" binding:"required,email"`
	Phone            string           `json:"phone"`
	ContactName      string           `json:"contact_name"`
	Address          string           `json:"address"`
	City             string           `json:"city"`
	State            string           `json:"state"`
	PostalCode       string           `json:"postal_code"`
	Country          string           `json:"country"`
	VATNumber        string           `json:"vat_number"`
	PaymentTermsDays *int             `json:"payment_terms_days"`
	CreditLimit      *decimal.Decimal `json:"credit_limit"`
	Notes            string           `json:"notes"`
	CreatedBy        *uuid.UUID       `json:"-"` // Set from JWT context, not from request body
}

// UpdateClientRequest represents a request to update a client
type UpdateClientRequest struct {
	Name             *string          `json:"name"`
	Email            *string          `json:"email"`
	Phone            *string          `json:"phone"`
	ContactName      *string          `json:"contact_name"`
	Address          *string          `json:"address"`
	City             *string          `json:"city"`
	State            *string          `json:"state"`
	PostalCode       *string          `json:"postal_code"`
	Country          *string          `json:"country"`
	VATNumber        *string          `json:"vat_number"`
	PaymentTermsDays *int             `json:"payment_terms_days"`
	CreditLimit      *decimal.Decimal `json:"credit_limit"`
	Notes            *string          `json:"notes"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID               uuid.UUID       `json:"id"`
	CompanyID        uuid.UUID       `json:"company_id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone,omitempty"`
	ContactName      string          `json:"contact_name,omitempty"`
	Address          string          `json:"address,omitempty"`
	City             string          `json:"city,omitempty"`
	State            string          `json:"state,omitempty"`
	PostalCode       string          `json:"postal_code,omitempty"`
	Country          string          `json:"country,omitempty"`
	VATNumber        string          `json:"vat_number,omitempty"`
	Status           string          `json:"status"`
	PaymentTermsDays int             `json:"payment_terms_days"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// ClientListFilter defines filtering options for client list queries
type ClientListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ClientListResponse represents a paginated client list
type ClientListResponse struct {
	Items      []ClientResponse `json:"items"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// CreditStatusResponse describes how much of a client's credit limit
// the outstanding invoice balance consumes
type CreditStatusResponse struct {
	ClientID        uuid.UUID       `json:"client_id"`
	ClientName      string          `json:"client_name"`
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	AvailableCredit decimal.Decimal `json:"available_credit"`
	AlertLevel      string          `json:"alert_level"`
}

// ===================== Operations =====================

// Create creates a new client. Email must be unique within the company.
func (s *ClientService) Create(ctx context.Context, companyID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.clientRepo.ExistsByEmail(ctx, email, companyID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_EMAIL", "A client with this email already exists")
	}

	cl, err := client.NewClient(companyID, req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		cl.SetCreatedBy(*req.CreatedBy)
	}
	if req.Phone != "" {
		if err := cl.SetContact(req.Phone); err != nil {
			return nil, err
		}
	}
	if req.ContactName != "" {
		if err := cl.Update(req.Name, req.ContactName); err != nil {
			return nil, err
		}
	}
	if req.Address != "" || req.City != "" || req.Country != "" {
		if err := cl.SetAddress(req.Address, req.City, req.State, req.PostalCode, req.Country); err != nil {
			return nil, err
		}
	}
	if req.VATNumber != "" {
		if err := cl.SetVATNumber(req.VATNumber); err != nil {
			return nil, err
		}
	}
	if req.PaymentTermsDays != nil {
		if err := cl.SetPaymentTerms(*req.PaymentTermsDays); err != nil {
			return nil, err
		}
	}
	if req.CreditLimit != nil {
		if err := cl.SetCreditLimit(*req.CreditLimit); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		cl.SetNotes(req.Notes)
	}

	if err := s.clientRepo.Save(ctx, cl); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, cl)
	return toClientResponse(cl), nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, companyID, clientID uuid.UUID) (*ClientResponse, error) {
	cl, err := s.findClient(ctx, companyID, clientID)
	if err != nil {
		return nil, err
	}
	return toClientResponse(cl), nil
}

// List returns a paginated list of clients for a company
func (s *ClientService) List(ctx context.Context, companyID uuid.UUID, filter ClientListFilter) (*ClientListResponse, error) {
	domainFilter := client.ClientFilter{
		Filter: shared.DefaultFilter(),
		Search: filter.Search,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		status := client.ClientStatus(filter.Status)
		domainFilter.Status = &status
	}

	page, err := s.clientRepo.FindForCompany(ctx, companyID, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]ClientResponse, 0, len(page.Items))
	for _, cl := range page.Items {
		items = append(items, *toClientResponse(cl))
	}
	return &ClientListResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Update edits a client's profile fields
func (s *ClientService) Update(ctx context.Context, companyID, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	cl, err := s.findClient(ctx, companyID, clientID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != cl.Email {
			exists, err := s.clientRepo.ExistsByEmail(ctx, email, companyID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewDomainError("DUPLICATE_EMAIL", "A client with this email already exists")
			}
			if err := cl.SetEmail(*req.Email); err != nil {
				return nil, err
			}
		}
	}
	if req.Name != nil || req.ContactName != nil {
		name := cl.Name
		contactName := cl.ContactName
		if req.Name != nil {
			name = *req.Name
		}
		if req.ContactName != nil {
			contactName = *req.ContactName
		}
		if err := cl.Update(name, contactName); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		if err := cl.SetContact(*req.Phone); err != nil {
			return nil, err
		}
	}
	if req.Address != nil || req.City != nil || req.State != nil || req.PostalCode != nil || req.Country != nil {
		address, city, state, postal, country := cl.Address, cl.City, cl.State, cl.PostalCode, cl.Country
		if req.Address != nil {
			address = *req.Address
		}
		if req.City != nil {
			city = *req.City
		}
		if req.State != nil {
			state = *req.State
		}
		if req.PostalCode != nil {
			postal = *req.PostalCode
		}
		if req.Country != nil {
			country = *req.Country
		}
		if err := cl.SetAddress(address, city, state, postal, country); err != nil {
			return nil, err
		}
	}
	if req.VATNumber != nil {
		if err := cl.SetVATNumber(*req.VATNumber); err != nil {
			return nil, err
		}
	}
	if req.PaymentTermsDays != nil {
		if err := cl.SetPaymentTerms(*req.PaymentTermsDays); err != nil {
			return nil, err
		}
	}
	if req.CreditLimit != nil {
		if err := cl.SetCreditLimit(*req.CreditLimit); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		cl.SetNotes(*req.Notes)
	}

	if err := s.clientRepo.Save(ctx, cl); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, cl)
	return toClientResponse(cl), nil
}

// Activate makes an inactive client available for invoicing again
func (s *ClientService) Activate(ctx context.Context, companyID, clientID uuid.UUID) (*ClientResponse, error) {
	cl, err := s.findClient(ctx, companyID, clientID)
	if err != nil {
		return nil, err
	}
	if err := cl.Activate(); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, cl); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, cl)
	return toClientResponse(cl), nil
}

// Deactivate retires a client. Deactivation is refused while the client
// still has outstanding invoices.
func (s *ClientService) Deactivate(ctx context.Context, companyID, clientID uuid.UUID) (*ClientResponse, error) {
	cl, err := s.findClient(ctx, companyID, clientID)
	if err != nil {
		return nil, err
	}

	outstanding, err := s.outstandingBalance(ctx, companyID, clientID)
	if err != nil {
		return nil, err
	}
	if outstanding.IsPositive() {
		return nil, shared.NewDomainError("OUTSTANDING_BALANCE",
			"Cannot deactivate a client with outstanding invoices")
	}

	if err := cl.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, cl); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, cl)
	return toClientResponse(cl), nil
}

// Delete removes a client that has no invoices
func (s *ClientService) Delete(ctx context.Context, companyID, clientID uuid.UUID) error {
	cl, err := s.findClient(ctx, companyID, clientID)
	if err != nil {
		return err
	}

	invoices, err := s.invoiceRepo.FindByClient(ctx, companyID, clientID)
	if err != nil {
		return err
	}
	if len(invoices) > 0 {
		return shared.NewDomainError("CLIENT_HAS_INVOICES",
			"Cannot delete a client with invoices; deactivate instead")
	}
	return s.clientRepo.Delete(ctx, cl.ID)
}

// CreditStatus reports the client's outstanding balance against their
// credit limit with the graded alert level
func (s *ClientService) CreditStatus(ctx context.Context, companyID, clientID uuid.UUID) (*CreditStatusResponse, error) {
	cl, err := s.findClient(ctx, companyID, clientID)
	if err != nil {
		return nil, err
	}

	outstanding, err := s.outstandingBalance(ctx, companyID, clientID)
	if err != nil {
		return nil, err
	}

	return &CreditStatusResponse{
		ClientID:        cl.ID,
		ClientName:      cl.Name,
		CreditLimit:     cl.CreditLimit,
		Outstanding:     outstanding,
		AvailableCredit: cl.AvailableCredit(outstanding),
		AlertLevel:      string(cl.CreditAlert(outstanding)),
	}, nil
}

// ===================== Helpers =====================

func (s *ClientService) findClient(ctx context.Context, companyID, clientID uuid.UUID) (*client.Client, error) {
	cl, err := s.clientRepo.FindByIDForCompany(ctx, clientID, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
		}
		return nil, err
	}
	return cl, nil
}

func (s *ClientService) outstandingBalance(ctx context.Context, companyID, clientID uuid.UUID) (decimal.Decimal, error) {
	invoices, err := s.invoiceRepo.FindByClient(ctx, companyID, clientID)
	if err != nil {
		return decimal.Zero, err
	}
	outstanding := decimal.Zero
	for _, inv := range invoices {
		if inv.Status.IsOutstanding() {
			outstanding = outstanding.Add(inv.BalanceDue())
		}
	}
	return outstanding, nil
}

func (s *ClientService) publishEvents(ctx context.Context, cl *client.Client) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range cl.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			continue
		}
	}
	cl.ClearDomainEvents()
}

func toClientResponse(cl *client.Client) *ClientResponse {
	return &ClientResponse{
		ID:               cl.ID,
		CompanyID:        cl.CompanyID,
		Name:             cl.Name,
		Email:            cl.Email,
		Phone:            cl.Phone,
		ContactName:      cl.ContactName,
		Address:          cl.Address,
		City:             cl.City,
		State:            cl.State,
		PostalCode:       cl.PostalCode,
		Country:          cl.Country,
		VATNumber:        cl.VATNumber,
		Status:           string(cl.Status),
		PaymentTermsDays: cl.PaymentTermsDays,
		CreditLimit:      cl.CreditLimit,
		Notes:            cl.Notes,
		CreatedAt:        cl.CreatedAt,
		UpdatedAt:        cl.UpdatedAt,
		Version:          cl.Version,
	}
}
