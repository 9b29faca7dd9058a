package importapp

import (
	"context"
	"errors"
	"testing"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/shared"
	csvimport "github.com/expenseally/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClientRepository is a mock implementation of client.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Save(ctx context.Context, cl *client.Client) error {
	args := m.Called(ctx, cl)
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

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// Test helpers
func newTestCompanyID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func newTestUserID() uuid.UUID {
	return uuid.MustParse("22222222-2222-2222-2222-222222222222")
}

func newTestRow(lineNum int, data map[string]string) *csvimport.Row {
	return &csvimport.Row{
		LineNumber: lineNum,
		Data:       data,
	}
}

func newValidatedSession(companyID, userID uuid.UUID, entityType csvimport.EntityType, fileName string) *csvimport.ImportSession {
	session := csvimport.NewImportSession(companyID, userID, entityType, fileName, 1024)
	session.UpdateState(csvimport.StateValidating)
	session.TotalRows = 2
	session.ValidRows = 2
	session.ErrorRows = 0
	session.UpdateState(csvimport.StateValidated)
	return session
}

func newClientValidatedSession(companyID, userID uuid.UUID) *csvimport.ImportSession {
	return newValidatedSession(companyID, userID, csvimport.EntityClients, "clients.csv")
}

// Tests for ConflictMode
func TestConflictMode_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		mode     ConflictMode
		expected bool
	}{
		{"skip is valid", ConflictModeSkip, true},
		{"update is valid", ConflictModeUpdate, true},
		{"fail is valid", ConflictModeFail, true},
		{"empty is invalid", ConflictMode(""), false},
		{"unknown is invalid", ConflictMode("merge"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.mode.IsValid())
		})
	}
}

// Tests for GetValidationRules
func TestClientImportService_GetValidationRules(t *testing.T) {
	clientRepo := new(MockClientRepository)
	service := NewClientImportService(clientRepo, nil)

	rules := service.GetValidationRules()

	requiredFields := map[string]bool{
		"name":  false,
		"email": false,
	}

	for _, rule := range rules {
		if _, ok := requiredFields[rule.Column]; ok {
			requiredFields[rule.Column] = rule.Required
		}
	}

	for field, required := range requiredFields {
		assert.True(t, required, "field %s should be required", field)
	}

	for _, rule := range rules {
		if rule.Column == "email" {
			assert.True(t, rule.Unique, "email should be unique")
		}
	}
}

// Tests for LookupUnique
func TestClientImportService_LookupUnique(t *testing.T) {
	ctx := context.Background()
	companyID := newTestCompanyID()

	t.Run("empty value is not a duplicate", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		service := NewClientImportService(clientRepo, nil)

		exists, err := service.LookupUnique(ctx, companyID, "email", "")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("existing email returns true", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		service := NewClientImportService(clientRepo, nil)

		clientRepo.On("ExistsByEmail", ctx, "taken@acme.test", companyID).Return(true, nil)

		exists, err := service.LookupUnique(ctx, companyID, "email", "taken@acme.test")
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("unknown field is not a duplicate", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		service := NewClientImportService(clientRepo, nil)

		exists, err := service.LookupUnique(ctx, companyID, "phone", "+1 555 0100")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("database error is propagated", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		service := NewClientImportService(clientRepo, nil)

		clientRepo.On("ExistsByEmail", ctx, "fail@acme.test", companyID).Return(false, errors.New("connection lost"))

		_, err := service.LookupUnique(ctx, companyID, "email", "fail@acme.test")
		assert.Error(t, err)
	})
}

// Tests for Import
func TestClientImportService_Import(t *testing.T) {
	ctx := context.Background()
	companyID := newTestCompanyID()
	userID := newTestUserID()

	t.Run("invalid session state returns error", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		service := NewClientImportService(clientRepo, nil)

		session := csvimport.NewImportSession(companyID, userID, csvimport.EntityClients, "clients.csv", 1024)
		// Session is in "created" state, not "validated"

		_, err := service.Import(ctx, companyID, userID, session, nil, ConflictModeSkip)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "validated state")
	})

	t.Run("session with errors returns error", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		service := NewClientImportService(clientRepo, nil)

		session := newClientValidatedSession(companyID, userID)
		session.ErrorRows = 1

		_, err := service.Import(ctx, companyID, userID, session, nil, ConflictModeSkip)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "validation errors")
	})

	t.Run("cancels import when context is cancelled", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		service := NewClientImportService(clientRepo, nil)

		session := newClientValidatedSession(companyID, userID)

		rows := []*csvimport.Row{
			newTestRow(2, map[string]string{
				"name":  "Client One",
				"email": "one@acme.test",
			}),
		}

		cancelledCtx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := service.Import(cancelledCtx, companyID, userID, session, rows, ConflictModeSkip)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, csvimport.StateCancelled, session.State)
	})

	t.Run("successful import creates clients", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		eventBus := new(MockEventPublisher)
		service := NewClientImportService(clientRepo, eventBus)

		session := newClientValidatedSession(companyID, userID)

		rows := []*csvimport.Row{
			newTestRow(2, map[string]string{
				"name":               "Client One",
				"email":              "one@acme.test",
				"contact_name":       "Jane Doe",
				"phone":              "+1 555 0100",
				"address":            "1 Main St",
				"city":               "Springfield",
				"state":              "IL",
				"payment_terms_days": "45",
				"credit_limit":       "10000",
			}),
		}

		clientRepo.On("FindByEmailForCompany", ctx, "one@acme.test", companyID).Return(nil, shared.ErrNotFound)
		clientRepo.On("Save", ctx, mock.MatchedBy(func(cl *client.Client) bool {
			return cl.Email == "one@acme.test" &&
				cl.PaymentTermsDays == 45 &&
				cl.CreditLimit.Equal(decimal.NewFromInt(10000))
		})).Return(nil)
		eventBus.On("Publish", ctx, mock.Anything).Return(nil)

		result, err := service.Import(ctx, companyID, userID, session, rows, ConflictModeSkip)

		require.NoError(t, err)
		assert.Equal(t, 1, result.TotalRows)
		assert.Equal(t, 1, result.ImportedRows)
		assert.Equal(t, 0, result.UpdatedRows)
		assert.Equal(t, 0, result.SkippedRows)
		assert.Equal(t, 0, result.ErrorRows)
		assert.Equal(t, csvimport.StateCompleted, session.State)
	})

	t.Run("skip mode skips existing clients", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		service := NewClientImportService(clientRepo, nil)

		session := newClientValidatedSession(companyID, userID)

		rows := []*csvimport.Row{
			newTestRow(2, map[string]string{
				"name":  "Existing Client",
				"email": "existing@acme.test",
			}),
		}

		existing, _ := client.NewClient(companyID, "Existing Client", "existing@acme.test")
		clientRepo.On("FindByEmailForCompany", ctx, "existing@acme.test", companyID).Return(existing, nil)

		result, err := service.Import(ctx, companyID, userID, session, rows, ConflictModeSkip)

		require.NoError(t, err)
		assert.Equal(t, 0, result.ImportedRows)
		assert.Equal(t, 1, result.SkippedRows)
	})

	t.Run("fail mode reports error on existing clients", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		service := NewClientImportService(clientRepo, nil)

		session := newClientValidatedSession(companyID, userID)

		rows := []*csvimport.Row{
			newTestRow(2, map[string]string{
				"name":  "Existing Client",
				"email": "existing@acme.test",
			}),
		}

		existing, _ := client.NewClient(companyID, "Existing Client", "existing@acme.test")
		clientRepo.On("FindByEmailForCompany", ctx, "existing@acme.test", companyID).Return(existing, nil)

		result, err := service.Import(ctx, companyID, userID, session, rows, ConflictModeFail)

		require.NoError(t, err)
		assert.Equal(t, 0, result.ImportedRows)
		assert.Equal(t, 1, result.ErrorRows)
		assert.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0].Message, "already exists")
		assert.Equal(t, csvimport.StateFailed, session.State)
	})

	t.Run("update mode updates existing clients", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		eventBus := new(MockEventPublisher)
		service := NewClientImportService(clientRepo, eventBus)

		session := newClientValidatedSession(companyID, userID)

		rows := []*csvimport.Row{
			newTestRow(2, map[string]string{
				"name":         "Renamed Client",
				"email":        "existing@acme.test",
				"credit_limit": "50000",
			}),
		}

		existing, _ := client.NewClient(companyID, "Original Client", "existing@acme.test")
		clientRepo.On("FindByEmailForCompany", ctx, "existing@acme.test", companyID).Return(existing, nil)
		clientRepo.On("Save", ctx, mock.MatchedBy(func(cl *client.Client) bool {
			return cl.Name == "Renamed Client" && cl.CreditLimit.Equal(decimal.NewFromInt(50000))
		})).Return(nil)
		eventBus.On("Publish", ctx, mock.Anything).Return(nil)

		result, err := service.Import(ctx, companyID, userID, session, rows, ConflictModeUpdate)

		require.NoError(t, err)
		assert.Equal(t, 0, result.ImportedRows)
		assert.Equal(t, 1, result.UpdatedRows)
	})

	t.Run("invalid payment terms counts as error row", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		service := NewClientImportService(clientRepo, nil)

		session := newClientValidatedSession(companyID, userID)

		rows := []*csvimport.Row{
			newTestRow(2, map[string]string{
				"name":               "Client One",
				"email":              "one@acme.test",
				"payment_terms_days": "soon",
			}),
		}

		result, err := service.Import(ctx, companyID, userID, session, rows, ConflictModeSkip)

		require.NoError(t, err)
		assert.Equal(t, 1, result.ErrorRows)
		assert.Equal(t, 0, result.ImportedRows)
		clientRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("repository failure stops the import", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		service := NewClientImportService(clientRepo, nil)

		session := newClientValidatedSession(companyID, userID)

		rows := []*csvimport.Row{
			newTestRow(2, map[string]string{
				"name":  "Client One",
				"email": "one@acme.test",
			}),
		}

		clientRepo.On("FindByEmailForCompany", ctx, "one@acme.test", companyID).Return(nil, errors.New("connection lost"))

		_, err := service.Import(ctx, companyID, userID, session, rows, ConflictModeSkip)
		assert.Error(t, err)
		assert.Equal(t, csvimport.StateFailed, session.State)
	})
}

// Tests for ValidateWithWarnings
func TestClientImportService_ValidateWithWarnings(t *testing.T) {
	clientRepo := new(MockClientRepository)
	service := NewClientImportService(clientRepo, nil)

	t.Run("high credit limit warns", func(t *testing.T) {
		row := newTestRow(3, map[string]string{"credit_limit": "2000000"})
		warnings := service.ValidateWithWarnings(row)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "unusually high")
	})

	t.Run("test email warns", func(t *testing.T) {
		row := newTestRow(4, map[string]string{"email": "someone@example.com"})
		warnings := service.ValidateWithWarnings(row)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "test address")
	})

	t.Run("clean row has no warnings", func(t *testing.T) {
		row := newTestRow(5, map[string]string{
			"email":        "billing@acme.io",
			"credit_limit": "5000",
		})
		assert.Empty(t, service.ValidateWithWarnings(row))
	})
}
