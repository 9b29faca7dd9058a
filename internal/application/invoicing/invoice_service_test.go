package invoicing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/company"
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

// MockCompanyRepository is a mock implementation of company.CompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Save(ctx context.Context, c *company.Company) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]*company.Company, error) {
	args := m.Called(ctx, ownerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*company.Company], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*company.Company]), args.Error(1)
}

func (m *MockCompanyRepository) FindActive(ctx context.Context) ([]*company.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*company.Company), args.Error(1)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ===================== Fixtures =====================

func newTestCompany(t *testing.T) *company.Company {
	t.Helper()
	comp, err := company.NewCompany("Acme Consulting", uuid.New())
	require.NoError(t, err)
	comp.ClearDomainEvents()
	return comp
}

func newTestClient(t *testing.T, companyID uuid.UUID) *client.Client {
	t.Helper()
	cl, err := client.NewClient(companyID, "Globex Corp", "billing@globex.test")
	require.NoError(t, err)
	cl.ClearDomainEvents()
	return cl
}

func newTestInvoice(t *testing.T, companyID, clientID uuid.UUID) *invoicing.Invoice {
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
		Quantity:    decimal.NewFromInt(10),
		UnitPrice:   decimal.NewFromInt(100),
	}}))
	inv.ClearDomainEvents()
	return inv
}

func newSentInvoice(t *testing.T, companyID, clientID uuid.UUID) *invoicing.Invoice {
	t.Helper()
	inv := newTestInvoice(t, companyID, clientID)
	require.NoError(t, inv.MarkSent(time.Now()))
	inv.ClearDomainEvents()
	return inv
}

func newInvoiceService(invoiceRepo *MockInvoiceRepository, clientRepo *MockClientRepository, companyRepo *MockCompanyRepository) (*InvoiceService, *MockEventPublisher) {
	svc := NewInvoiceService(invoiceRepo, clientRepo, companyRepo)
	publisher := NewMockEventPublisher()
	svc.SetEventPublisher(publisher)
	return svc, publisher
}

// ===================== Tests =====================

func TestInvoiceService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates draft with company and client defaults", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		companyRepo := new(MockCompanyRepository)
		svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

		comp := newTestCompany(t)
		cl := newTestClient(t, comp.ID)

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, comp.ID).Return(cl, nil).Once()
		companyRepo.On("FindByID", ctx, comp.ID).Return(comp, nil).Once()
		invoiceRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string"), comp.ID).Return(false, nil).Once()
		invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Return(nil).Once()

		resp, err := svc.Create(ctx, comp.ID, CreateInvoiceRequest{
			ClientID: cl.ID,
			Items: []InvoiceItemRequest{{
				Description: "Retainer",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.NewFromInt(500),
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, string(invoicing.InvoiceStatusDraft), resp.Status)
		assert.Equal(t, "USD", resp.Currency)
		assert.Equal(t, resp.IssueDate.AddDate(0, 0, cl.PaymentTermsDays).Format("2006-01-02"), resp.DueDate.Format("2006-01-02"))
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(500)))
		invoiceRepo.AssertExpectations(t)
	})

	t.Run("rejects inactive client", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		companyRepo := new(MockCompanyRepository)
		svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

		comp := newTestCompany(t)
		cl := newTestClient(t, comp.ID)
		require.NoError(t, cl.Deactivate())

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, comp.ID).Return(cl, nil).Once()

		_, err := svc.Create(ctx, comp.ID, CreateInvoiceRequest{ClientID: cl.ID})

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "CLIENT_INACTIVE", domainErr.Code)
		invoiceRepo.AssertNotCalled(t, "Save")
	})

	t.Run("retries on invoice number collision", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		companyRepo := new(MockCompanyRepository)
		svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

		comp := newTestCompany(t)
		cl := newTestClient(t, comp.ID)

		clientRepo.On("FindByIDForCompany", ctx, cl.ID, comp.ID).Return(cl, nil).Once()
		companyRepo.On("FindByID", ctx, comp.ID).Return(comp, nil).Once()
		invoiceRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string"), comp.ID).Return(true, nil).Once()
		invoiceRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string"), comp.ID).Return(false, nil).Once()
		invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Return(nil).Once()

		_, err := svc.Create(ctx, comp.ID, CreateInvoiceRequest{ClientID: cl.ID})

		require.NoError(t, err)
		invoiceRepo.AssertNumberOfCalls(t, "ExistsByNumber", 2)
	})

	t.Run("client not found", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		companyRepo := new(MockCompanyRepository)
		svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

		companyID := uuid.New()
		clientID := uuid.New()
		clientRepo.On("FindByIDForCompany", ctx, clientID, companyID).Return(nil, shared.ErrNotFound).Once()

		_, err := svc.Create(ctx, companyID, CreateInvoiceRequest{ClientID: clientID})

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestInvoiceService_CreditAlert(t *testing.T) {
	ctx := context.Background()

	invoiceRepo := new(MockInvoiceRepository)
	clientRepo := new(MockClientRepository)
	companyRepo := new(MockCompanyRepository)
	svc, publisher := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

	comp := newTestCompany(t)
	cl := newTestClient(t, comp.ID)
	require.NoError(t, cl.SetCreditLimit(decimal.NewFromInt(1000)))
	cl.ClearDomainEvents()

	outstanding := newSentInvoice(t, comp.ID, cl.ID) // 1000 outstanding

	clientRepo.On("FindByIDForCompany", ctx, cl.ID, comp.ID).Return(cl, nil).Once()
	companyRepo.On("FindByID", ctx, comp.ID).Return(comp, nil).Once()
	invoiceRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string"), comp.ID).Return(false, nil).Once()
	invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Return(nil).Once()
	invoiceRepo.On("FindByClient", ctx, comp.ID, cl.ID).Return([]*invoicing.Invoice{outstanding}, nil).Once()

	_, err := svc.Create(ctx, comp.ID, CreateInvoiceRequest{
		ClientID: cl.ID,
		Items: []InvoiceItemRequest{{
			Description: "Support plan",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(200),
		}},
	})

	require.NoError(t, err)
	alerts := publisher.GetEventsByType("ClientCreditAlert")
	require.Len(t, alerts, 1)
}

func TestInvoiceService_Send(t *testing.T) {
	ctx := context.Background()

	invoiceRepo := new(MockInvoiceRepository)
	clientRepo := new(MockClientRepository)
	companyRepo := new(MockCompanyRepository)
	svc, publisher := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

	comp := newTestCompany(t)
	inv := newTestInvoice(t, comp.ID, uuid.New())

	invoiceRepo.On("FindByIDForCompany", ctx, inv.ID, comp.ID).Return(inv, nil).Once()
	invoiceRepo.On("SaveWithLock", ctx, inv).Return(nil).Once()

	resp, err := svc.Send(ctx, comp.ID, inv.ID)

	require.NoError(t, err)
	assert.Equal(t, string(invoicing.InvoiceStatusSent), resp.Status)
	assert.NotNil(t, resp.SentAt)
	assert.NotEmpty(t, publisher.GetEvents())
	assert.Empty(t, inv.GetDomainEvents())
}

func TestInvoiceService_RecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("partial payment", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		companyRepo := new(MockCompanyRepository)
		svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

		comp := newTestCompany(t)
		inv := newSentInvoice(t, comp.ID, uuid.New()) // total 1000

		invoiceRepo.On("FindByIDForCompany", ctx, inv.ID, comp.ID).Return(inv, nil).Once()
		invoiceRepo.On("SaveWithLock", ctx, inv).Return(nil).Once()

		resp, err := svc.RecordPayment(ctx, comp.ID, inv.ID, RecordPaymentRequest{
			Amount: decimal.NewFromInt(400),
			Method: string(invoicing.PaymentMethodBankTransfer),
		})

		require.NoError(t, err)
		assert.Equal(t, string(invoicing.InvoiceStatusPartiallyPaid), resp.Status)
		assert.True(t, resp.BalanceDue.Equal(decimal.NewFromInt(600)))
	})

	t.Run("full payment marks invoice paid", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		companyRepo := new(MockCompanyRepository)
		svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

		comp := newTestCompany(t)
		inv := newSentInvoice(t, comp.ID, uuid.New())

		invoiceRepo.On("FindByIDForCompany", ctx, inv.ID, comp.ID).Return(inv, nil).Once()
		invoiceRepo.On("SaveWithLock", ctx, inv).Return(nil).Once()

		resp, err := svc.RecordPayment(ctx, comp.ID, inv.ID, RecordPaymentRequest{
			Amount: decimal.NewFromInt(1000),
			Method: string(invoicing.PaymentMethodCash),
		})

		require.NoError(t, err)
		assert.Equal(t, string(invoicing.InvoiceStatusPaid), resp.Status)
		assert.NotNil(t, resp.PaidAt)
		assert.True(t, resp.BalanceDue.IsZero())
	})

	t.Run("payment on draft is rejected", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		companyRepo := new(MockCompanyRepository)
		svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

		comp := newTestCompany(t)
		inv := newTestInvoice(t, comp.ID, uuid.New())

		invoiceRepo.On("FindByIDForCompany", ctx, inv.ID, comp.ID).Return(inv, nil).Once()

		_, err := svc.RecordPayment(ctx, comp.ID, inv.ID, RecordPaymentRequest{
			Amount: decimal.NewFromInt(100),
			Method: string(invoicing.PaymentMethodCash),
		})

		require.Error(t, err)
		invoiceRepo.AssertNotCalled(t, "SaveWithLock")
	})
}

func TestInvoiceService_RefundPayment(t *testing.T) {
	ctx := context.Background()

	invoiceRepo := new(MockInvoiceRepository)
	clientRepo := new(MockClientRepository)
	companyRepo := new(MockCompanyRepository)
	svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

	comp := newTestCompany(t)
	inv := newSentInvoice(t, comp.ID, uuid.New())
	payment, err := inv.RecordPayment(invoicing.RecordPaymentParams{
		Amount:      decimal.NewFromInt(1000),
		PaymentDate: time.Now(),
		Method:      invoicing.PaymentMethodCreditCard,
	})
	require.NoError(t, err)
	inv.ClearDomainEvents()

	invoiceRepo.On("FindByIDForCompany", ctx, inv.ID, comp.ID).Return(inv, nil).Once()
	invoiceRepo.On("SaveWithLock", ctx, inv).Return(nil).Once()

	resp, err := svc.RefundPayment(ctx, comp.ID, inv.ID, RefundPaymentRequest{
		PaymentID: payment.ID,
		Amount:    decimal.NewFromInt(300),
		Reason:    "Overbilled hours",
	})

	require.NoError(t, err)
	assert.True(t, resp.AmountPaid.Equal(decimal.NewFromInt(700)))
	assert.Len(t, resp.Payments, 2)
}

func TestInvoiceService_Void(t *testing.T) {
	ctx := context.Background()

	invoiceRepo := new(MockInvoiceRepository)
	clientRepo := new(MockClientRepository)
	companyRepo := new(MockCompanyRepository)
	svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

	comp := newTestCompany(t)
	inv := newSentInvoice(t, comp.ID, uuid.New())

	invoiceRepo.On("FindByIDForCompany", ctx, inv.ID, comp.ID).Return(inv, nil).Once()
	invoiceRepo.On("SaveWithLock", ctx, inv).Return(nil).Once()

	resp, err := svc.Void(ctx, comp.ID, inv.ID, VoidInvoiceRequest{
		Reason: "Issued in error",
		Actor:  "owner@acme.test",
	})

	require.NoError(t, err)
	assert.Equal(t, string(invoicing.InvoiceStatusCancelled), resp.Status)
	assert.NotNil(t, resp.CancelledAt)
}

func TestInvoiceService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes draft", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		companyRepo := new(MockCompanyRepository)
		svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

		comp := newTestCompany(t)
		inv := newTestInvoice(t, comp.ID, uuid.New())

		invoiceRepo.On("FindByIDForCompany", ctx, inv.ID, comp.ID).Return(inv, nil).Once()
		invoiceRepo.On("Delete", ctx, inv.ID).Return(nil).Once()

		require.NoError(t, svc.Delete(ctx, comp.ID, inv.ID))
		invoiceRepo.AssertExpectations(t)
	})

	t.Run("rejects non-draft", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		companyRepo := new(MockCompanyRepository)
		svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

		comp := newTestCompany(t)
		inv := newSentInvoice(t, comp.ID, uuid.New())

		invoiceRepo.On("FindByIDForCompany", ctx, inv.ID, comp.ID).Return(inv, nil).Once()

		err := svc.Delete(ctx, comp.ID, inv.ID)

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		invoiceRepo.AssertNotCalled(t, "Delete")
	})
}

func TestInvoiceService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown status", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		companyRepo := new(MockCompanyRepository)
		svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

		_, err := svc.List(ctx, uuid.New(), InvoiceListFilter{Status: "SHIPPED"})

		require.Error(t, err)
		domainErr, ok := err.(*shared.DomainError)
		require.True(t, ok)
		assert.Equal(t, "INVALID_STATUS", domainErr.Code)
	})

	t.Run("maps pagination", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		companyRepo := new(MockCompanyRepository)
		svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

		comp := newTestCompany(t)
		inv := newTestInvoice(t, comp.ID, uuid.New())
		page := shared.NewPaginated([]*invoicing.Invoice{inv}, 1, 1, 20)

		invoiceRepo.On("FindForCompany", ctx, comp.ID, mock.AnythingOfType("invoicing.InvoiceFilter")).Return(&page, nil).Once()

		resp, err := svc.List(ctx, comp.ID, InvoiceListFilter{})

		require.NoError(t, err)
		assert.Len(t, resp.Items, 1)
		assert.Equal(t, int64(1), resp.Total)
	})
}

func TestInvoiceService_EnableRecurring(t *testing.T) {
	ctx := context.Background()

	invoiceRepo := new(MockInvoiceRepository)
	clientRepo := new(MockClientRepository)
	companyRepo := new(MockCompanyRepository)
	svc, _ := newInvoiceService(invoiceRepo, clientRepo, companyRepo)

	comp := newTestCompany(t)
	inv := newTestInvoice(t, comp.ID, uuid.New())
	firstDate := time.Now().AddDate(0, 1, 0)

	invoiceRepo.On("FindByIDForCompany", ctx, inv.ID, comp.ID).Return(inv, nil).Once()
	invoiceRepo.On("SaveWithLock", ctx, inv).Return(nil).Once()

	resp, err := svc.EnableRecurring(ctx, comp.ID, inv.ID, EnableRecurringRequest{
		Frequency: "MONTHLY",
		FirstDate: &firstDate,
	})

	require.NoError(t, err)
	assert.True(t, resp.IsRecurring)
	assert.Equal(t, "MONTHLY", resp.RecurringFrequency)
	require.NotNil(t, resp.NextRecurringDate)
}
