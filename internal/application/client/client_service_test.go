package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]shared.DomainEvent, 0),
	}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEvents() []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, len(m.events))
	copy(result, m.events)
	return result
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

func (m *MockEventPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = make([]shared.DomainEvent, 0)
}

// MockClientRepository is a mock implementation of client.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Save(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindByIDForCompany(ctx context.Context, id, companyID uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, id, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindByEmailForCompany(ctx context.Context, email string, companyID uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, email, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) ExistsByEmail(ctx context.Context, email string, companyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, companyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) FindForCompany(ctx context.Context, companyID uuid.UUID, filter client.ClientFilter) (*shared.Paginated[*client.Client], error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*client.Client]), args.Error(1)
}

func (m *MockClientRepository) FindActiveForCompany(ctx context.Context, companyID uuid.UUID) ([]*client.Client, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindWithCreditLimit(ctx context.Context) ([]*client.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*client.Client), args.Error(1)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClientRepository) Count(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of invoicing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *invoicing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForCompany(ctx context.Context, id, companyID uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumberForCompany(ctx context.Context, number string, companyID uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, number, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByNumber(ctx context.Context, number string, companyID uuid.UUID) (bool, error) {
	args := m.Called(ctx, number, companyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) FindForCompany(ctx context.Context, companyID uuid.UUID, filter invoicing.InvoiceFilter) (*shared.Paginated[*invoicing.Invoice], error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*invoicing.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepository) FindByClient(ctx context.Context, companyID, clientID uuid.UUID) ([]*invoicing.Invoice, error) {
	args := m.Called(ctx, companyID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOutstanding(ctx context.Context, companyID uuid.UUID) ([]*invoicing.Invoice, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOverdueCandidates(ctx context.Context, before time.Time) ([]*invoicing.Invoice, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindDueForRecurring(ctx context.Context, asOf time.Time) ([]*invoicing.Invoice, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOverdue(ctx context.Context) ([]*invoicing.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindDueOn(ctx context.Context, day time.Time) ([]*invoicing.Invoice, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindIssuedBetween(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]*invoicing.Invoice, error) {
	args := m.Called(ctx, companyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, companyID uuid.UUID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

// ===================== Fixtures =====================

func newTestClient(t *testing.T, companyID uuid.UUID) *client.Client {
	t.Helper()
	cl, err := client.NewClient(companyID, "Globex Corp", "billing@globex.test")
	require.NoError(t, err)
	cl.ClearDomainEvents()
	return cl
}

func newOutstandingInvoice(t *testing.T, companyID, clientID uuid.UUID, amount int64) *invoicing.Invoice {
	t.Helper()
	inv, err := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		CompanyID:     companyID,
		ClientID:      clientID,
		ClientName:    "Globex Corp",
		InvoiceNumber: invoicing.GenerateInvoiceNumber(time.Now()),
		IssueDate:     time.Now(),
		DueDate:       time.Now().AddDate(0, 0, 30),
		Currency:      "USD",
		TaxRate:       decimal.Zero,
	})
	require.NoError(t, err)
	require.NoError(t, inv.ReplaceItems([]invoicing.ItemInput{{
		Description: "Consulting hours",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(amount),
	}}))
	require.NoError(t, inv.MarkSent(time.Now()))
	inv.ClearDomainEvents()
	return inv
}

func newClientService(clientRepo *MockClientRepository, invoiceRepo *MockInvoiceRepository) (*ClientService, *MockEventPublisher) {
	svc := NewClientService(clientRepo, invoiceRepo)
	publisher := NewMockEventPublisher()
	svc.SetEventPublisher(publisher)
	return svc, publisher
}

// ===================== Tests =====================

func TestClientService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("creates client with optional fields", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, publisher := newClientService(clientRepo, invoiceRepo)

		terms := 14
		limit := decimal.NewFromInt(5000)
		clientRepo.On("ExistsByEmail", ctx, "billing@initech.test", companyID).Return(false, nil).Once()
		clientRepo.On("Save", ctx, mock.AnythingOfType("*client.Client")).Return(nil).Once()

		resp, err := svc.Create(ctx, companyID, CreateClientRequest{
			Name:             "Initech LLC",
			Email:            "Billing@Initech.test",
			Phone:            "+1 555 0100",
			ContactName:      "Bill Lumbergh",
			Address:          "100 Main St",
			City:             "Austin",
			State:            "TX",
			PostalCode:       "78701",
			Country:          "US",
			VATNumber:        "US123456789",
			PaymentTermsDays: &terms,
			CreditLimit:      &limit,
			Notes:            "Net 14 negotiated",
		})

		require.NoError(t, err)
		assert.Equal(t, "Initech LLC", resp.Name)
		assert.Equal(t, "billing@initech.test", resp.Email)
		assert.Equal(t, "Bill Lumbergh", resp.ContactName)
		assert.Equal(t, 14, resp.PaymentTermsDays)
		assert.True(t, resp.CreditLimit.Equal(limit))
		assert.Equal(t, string(client.ClientStatusActive), resp.Status)
		require.Len(t, publisher.GetEventsByType("ClientCreated"), 1)
		clientRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, _ := newClientService(clientRepo, invoiceRepo)

		clientRepo.On("ExistsByEmail", ctx, "billing@globex.test", companyID).Return(true, nil).Once()

		_, err := svc.Create(ctx, companyID, CreateClientRequest{
			Name:  "Globex Corp",
			Email: "billing@globex.test",
		})

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "DUPLICATE_EMAIL", domainErr.Code)
		clientRepo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects invalid payment terms", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, _ := newClientService(clientRepo, invoiceRepo)

		terms := -3
		clientRepo.On("ExistsByEmail", ctx, "billing@globex.test", companyID).Return(false, nil).Once()

		_, err := svc.Create(ctx, companyID, CreateClientRequest{
			Name:             "Globex Corp",
			Email:            "billing@globex.test",
			PaymentTermsDays: &terms,
		})

		require.Error(t, err)
		clientRepo.AssertNotCalled(t, "Save")
	})
}

func TestClientService_Update(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("changing email checks uniqueness", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, _ := newClientService(clientRepo, invoiceRepo)

		cl := newTestClient(t, companyID)
		newEmail := "accounts@globex.test"

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, companyID).Return(cl, nil).Once()
		clientRepo.On("ExistsByEmail", ctx, newEmail, companyID).Return(false, nil).Once()
		clientRepo.On("Save", ctx, cl).Return(nil).Once()

		resp, err := svc.Update(ctx, companyID, cl.ID, UpdateClientRequest{Email: &newEmail})

		require.NoError(t, err)
		assert.Equal(t, newEmail, resp.Email)
		clientRepo.AssertExpectations(t)
	})

	t.Run("unchanged email skips uniqueness check", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, _ := newClientService(clientRepo, invoiceRepo)

		cl := newTestClient(t, companyID)
		sameEmail := "Billing@Globex.test"

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, companyID).Return(cl, nil).Once()
		clientRepo.On("Save", ctx, cl).Return(nil).Once()

		_, err := svc.Update(ctx, companyID, cl.ID, UpdateClientRequest{Email: &sameEmail})

		require.NoError(t, err)
		clientRepo.AssertNotCalled(t, "ExistsByEmail")
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, _ := newClientService(clientRepo, invoiceRepo)

		cl := newTestClient(t, companyID)
		taken := "taken@globex.test"

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, companyID).Return(cl, nil).Once()
		clientRepo.On("ExistsByEmail", ctx, taken, companyID).Return(true, nil).Once()

		_, err := svc.Update(ctx, companyID, cl.ID, UpdateClientRequest{Email: &taken})

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "DUPLICATE_EMAIL", domainErr.Code)
		clientRepo.AssertNotCalled(t, "Save")
	})

	t.Run("merges partial address update", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, _ := newClientService(clientRepo, invoiceRepo)

		cl := newTestClient(t, companyID)
		require.NoError(t, cl.SetAddress("100 Main St", "Austin", "TX", "78701", "US"))
		cl.ClearDomainEvents()
		newCity := "Dallas"

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, companyID).Return(cl, nil).Once()
		clientRepo.On("Save", ctx, cl).Return(nil).Once()

		resp, err := svc.Update(ctx, companyID, cl.ID, UpdateClientRequest{City: &newCity})

		require.NoError(t, err)
		assert.Equal(t, "Dallas", resp.City)
		assert.Equal(t, "100 Main St", resp.Address)
		assert.Equal(t, "TX", resp.State)
	})

	t.Run("client not found", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, _ := newClientService(clientRepo, invoiceRepo)

		clientID := uuid.New()
		clientRepo.On("FindByIDForCompany", ctx, clientID, companyID).Return(nil, shared.ErrNotFound).Once()

		_, err := svc.Update(ctx, companyID, clientID, UpdateClientRequest{})

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestClientService_Deactivate(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("refuses while invoices are outstanding", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, _ := newClientService(clientRepo, invoiceRepo)

		cl := newTestClient(t, companyID)
		inv := newOutstandingInvoice(t, companyID, cl.ID, 1000)

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, companyID).Return(cl, nil).Once()
		invoiceRepo.On("FindByClient", ctx, companyID, cl.ID).Return([]*invoicing.Invoice{inv}, nil).Once()

		_, err := svc.Deactivate(ctx, companyID, cl.ID)

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "OUTSTANDING_BALANCE", domainErr.Code)
		assert.True(t, cl.IsActive())
		clientRepo.AssertNotCalled(t, "Save")
	})

	t.Run("succeeds once invoices are settled", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, publisher := newClientService(clientRepo, invoiceRepo)

		cl := newTestClient(t, companyID)
		inv := newOutstandingInvoice(t, companyID, cl.ID, 1000)
		_, err := inv.RecordPayment(invoicing.RecordPaymentParams{
			Amount:      decimal.NewFromInt(1000),
			PaymentDate: time.Now(),
			Method:      invoicing.PaymentMethodBankTransfer,
		})
		require.NoError(t, err)

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, companyID).Return(cl, nil).Once()
		invoiceRepo.On("FindByClient", ctx, companyID, cl.ID).Return([]*invoicing.Invoice{inv}, nil).Once()
		clientRepo.On("Save", ctx, cl).Return(nil).Once()

		resp, err := svc.Deactivate(ctx, companyID, cl.ID)

		require.NoError(t, err)
		assert.Equal(t, string(client.ClientStatusInactive), resp.Status)
		require.Len(t, publisher.GetEventsByType("ClientStatusChanged"), 1)
	})
}

func TestClientService_Activate(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	clientRepo := new(MockClientRepository)
	invoiceRepo := new(MockInvoiceRepository)
	svc, _ := newClientService(clientRepo, invoiceRepo)

	cl := newTestClient(t, companyID)
	require.NoError(t, cl.Deactivate())
	cl.ClearDomainEvents()

	clientRepo.On("FindByIDForCompany", ctx, cl.ID, companyID).Return(cl, nil).Once()
	clientRepo.On("Save", ctx, cl).Return(nil).Once()

	resp, err := svc.Activate(ctx, companyID, cl.ID)

	require.NoError(t, err)
	assert.Equal(t, string(client.ClientStatusActive), resp.Status)
}

func TestClientService_Delete(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("deletes client with no invoices", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, _ := newClientService(clientRepo, invoiceRepo)

		cl := newTestClient(t, companyID)

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, companyID).Return(cl, nil).Once()
		invoiceRepo.On("FindByClient", ctx, companyID, cl.ID).Return([]*invoicing.Invoice{}, nil).Once()
		clientRepo.On("Delete", ctx, cl.ID).Return(nil).Once()

		require.NoError(t, svc.Delete(ctx, companyID, cl.ID))
		clientRepo.AssertExpectations(t)
	})

	t.Run("refuses when invoices exist", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, _ := newClientService(clientRepo, invoiceRepo)

		cl := newTestClient(t, companyID)
		inv := newOutstandingInvoice(t, companyID, cl.ID, 500)

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, companyID).Return(cl, nil).Once()
		invoiceRepo.On("FindByClient", ctx, companyID, cl.ID).Return([]*invoicing.Invoice{inv}, nil).Once()

		err := svc.Delete(ctx, companyID, cl.ID)

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "CLIENT_HAS_INVOICES", domainErr.Code)
		clientRepo.AssertNotCalled(t, "Delete")
	})
}

func TestClientService_List(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	clientRepo := new(MockClientRepository)
	invoiceRepo := new(MockInvoiceRepository)
	svc, _ := newClientService(clientRepo, invoiceRepo)

	cl := newTestClient(t, companyID)
	page := shared.NewPaginated([]*client.Client{cl}, 1, 1, 20)

	clientRepo.On("FindForCompany", ctx, companyID, mock.MatchedBy(func(f client.ClientFilter) bool {
		return f.Status != nil && *f.Status == client.ClientStatusActive && f.Search == "globex"
	})).Return(&page, nil).Once()

	resp, err := svc.List(ctx, companyID, ClientListFilter{Status: "active", Search: "globex"})

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, cl.ID, resp.Items[0].ID)
	assert.Equal(t, int64(1), resp.Total)
}

func TestClientService_CreditStatus(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()

	t.Run("reports outstanding against limit", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, _ := newClientService(clientRepo, invoiceRepo)

		cl := newTestClient(t, companyID)
		require.NoError(t, cl.SetCreditLimit(decimal.NewFromInt(1000)))
		cl.ClearDomainEvents()
		inv := newOutstandingInvoice(t, companyID, cl.ID, 800)

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, companyID).Return(cl, nil).Once()
		invoiceRepo.On("FindByClient", ctx, companyID, cl.ID).Return([]*invoicing.Invoice{inv}, nil).Once()

		resp, err := svc.CreditStatus(ctx, companyID, cl.ID)

		require.NoError(t, err)
		assert.True(t, resp.Outstanding.Equal(decimal.NewFromInt(800)))
		assert.True(t, resp.AvailableCredit.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, string(client.CreditAlertWarning), resp.AlertLevel)
	})

	t.Run("no credit limit reports no alert", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc, _ := newClientService(clientRepo, invoiceRepo)

		cl := newTestClient(t, companyID)

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, companyID).Return(cl, nil).Once()
		invoiceRepo.On("FindByClient", ctx, companyID, cl.ID).Return([]*invoicing.Invoice{}, nil).Once()

		resp, err := svc.CreditStatus(ctx, companyID, cl.ID)

		require.NoError(t, err)
		assert.True(t, resp.Outstanding.IsZero())
		assert.Equal(t, string(client.CreditAlertNone), resp.AlertLevel)
	})
}
