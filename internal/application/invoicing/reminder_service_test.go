package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockReminderNotifier is a mock implementation of ReminderNotifier
type MockReminderNotifier struct {
	mock.Mock
}

func (m *MockReminderNotifier) SendPaymentReminder(ctx context.Context, inv *invoicing.Invoice, recipient string) error {
	args := m.Called(ctx, inv, recipient)
	return args.Error(0)
}

func (m *MockReminderNotifier) SendUpcomingReminder(ctx context.Context, inv *invoicing.Invoice, recipient string) error {
	args := m.Called(ctx, inv, recipient)
	return args.Error(0)
}

func newOverdueInvoice(t *testing.T, companyID uuid.UUID, daysOverdue int) *invoicing.Invoice {
	t.Helper()
	inv := newPastDueInvoice(t, companyID, daysOverdue)
	require.True(t, inv.SweepOverdue(time.Now()))
	inv.ClearDomainEvents()
	return inv
}

func TestReminderService_DispatchReminders(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("sends a first reminder and records it", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		notifier := new(MockReminderNotifier)
		svc := NewReminderService(invoiceRepo, clientRepo, notifier, zap.NewNop())

		comp := newTestCompany(t)
		inv := newOverdueInvoice(t, comp.ID, 5)
		cl := newTestClient(t, comp.ID)
		inv.ClientID = cl.ID

		invoiceRepo.On("FindOverdue", ctx).Return([]*invoicing.Invoice{inv}, nil).Once()
		clientRepo.On("FindByIDForCompany", ctx, cl.ID, comp.ID).Return(cl, nil).Once()
		notifier.On("SendPaymentReminder", ctx, inv, cl.Email).Return(nil).Once()
		invoiceRepo.On("SaveWithLock", ctx, inv).Return(nil).Once()

		stats, err := svc.DispatchReminders(ctx, now)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Overdue)
		assert.Equal(t, 1, stats.Sent)
		assert.Equal(t, 1, inv.ReminderCount)
		require.NotNil(t, inv.LastReminderSent)
		notifier.AssertExpectations(t)
	})

	t.Run("skips invoices inside their backoff window", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		notifier := new(MockReminderNotifier)
		svc := NewReminderService(invoiceRepo, clientRepo, notifier, zap.NewNop())

		inv := newOverdueInvoice(t, uuid.New(), 5)
		inv.MarkReminderSent(now.Add(-1 * time.Hour))

		invoiceRepo.On("FindOverdue", ctx).Return([]*invoicing.Invoice{inv}, nil).Once()

		stats, err := svc.DispatchReminders(ctx, now)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Skipped)
		assert.Equal(t, 0, stats.Sent)
		notifier.AssertNotCalled(t, "SendPaymentReminder")
	})

	t.Run("notifier failure counts as failed, invoice untouched", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		notifier := new(MockReminderNotifier)
		svc := NewReminderService(invoiceRepo, clientRepo, notifier, zap.NewNop())

		comp := newTestCompany(t)
		inv := newOverdueInvoice(t, comp.ID, 5)
		cl := newTestClient(t, comp.ID)
		inv.ClientID = cl.ID

		invoiceRepo.On("FindOverdue", ctx).Return([]*invoicing.Invoice{inv}, nil).Once()
		clientRepo.On("FindByIDForCompany", ctx, cl.ID, comp.ID).Return(cl, nil).Once()
		notifier.On("SendPaymentReminder", ctx, inv, cl.Email).Return(errors.New("smtp timeout")).Once()

		stats, err := svc.DispatchReminders(ctx, now)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Failed)
		assert.Equal(t, 0, inv.ReminderCount)
		invoiceRepo.AssertNotCalled(t, "SaveWithLock")
	})

	t.Run("missing client is skipped", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		notifier := new(MockReminderNotifier)
		svc := NewReminderService(invoiceRepo, clientRepo, notifier, zap.NewNop())

		inv := newOverdueInvoice(t, uuid.New(), 5)

		invoiceRepo.On("FindOverdue", ctx).Return([]*invoicing.Invoice{inv}, nil).Once()
		clientRepo.On("FindByIDForCompany", ctx, inv.ClientID, inv.CompanyID).Return(nil, shared.ErrNotFound).Once()

		stats, err := svc.DispatchReminders(ctx, now)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Skipped)
		notifier.AssertNotCalled(t, "SendPaymentReminder")
	})
}

func newNearDueInvoice(t *testing.T, companyID uuid.UUID, daysUntilDue int) *invoicing.Invoice {
	t.Helper()
	issueDate := time.Now().AddDate(0, 0, daysUntilDue-30)
	inv, err := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		CompanyID:     companyID,
		ClientID:      uuid.New(),
		ClientName:    "Globex Corp",
		InvoiceNumber: invoicing.GenerateInvoiceNumber(issueDate),
		IssueDate:     issueDate,
		DueDate:       issueDate.AddDate(0, 0, 30),
		Currency:      "USD",
		TaxRate:       decimal.Zero,
	})
	require.NoError(t, err)
	require.NoError(t, inv.ReplaceItems([]invoicing.ItemInput{{
		Description: "Consulting hours",
		Quantity:    decimal.NewFromInt(10),
		UnitPrice:   decimal.NewFromInt(100),
	}}))
	require.NoError(t, inv.MarkSent(issueDate))
	inv.ClearDomainEvents()
	return inv
}

func TestReminderService_DispatchUpcomingReminders(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	sameDay := func(want time.Time) func(time.Time) bool {
		return func(got time.Time) bool {
			return got.Year() == want.Year() && got.YearDay() == want.YearDay()
		}
	}

	t.Run("sends a courtesy notice for invoices due soon", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		notifier := new(MockReminderNotifier)
		svc := NewReminderService(invoiceRepo, clientRepo, notifier, zap.NewNop())

		comp := newTestCompany(t)
		inv := newNearDueInvoice(t, comp.ID, 3)
		cl := newTestClient(t, comp.ID)
		inv.ClientID = cl.ID

		invoiceRepo.On("FindDueOn", ctx, mock.MatchedBy(sameDay(now.AddDate(0, 0, 3)))).
			Return([]*invoicing.Invoice{inv}, nil).Once()
		clientRepo.On("FindByIDForCompany", ctx, cl.ID, comp.ID).Return(cl, nil).Once()
		notifier.On("SendUpcomingReminder", ctx, inv, cl.Email).Return(nil).Once()

		stats, err := svc.DispatchUpcomingReminders(ctx, now, 3)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Upcoming)
		assert.Equal(t, 1, stats.Sent)
		assert.Equal(t, 0, inv.ReminderCount, "courtesy notices do not advance reminder state")
		invoiceRepo.AssertNotCalled(t, "SaveWithLock")
		notifier.AssertExpectations(t)
	})

	t.Run("notifier failure counts as failed", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		notifier := new(MockReminderNotifier)
		svc := NewReminderService(invoiceRepo, clientRepo, notifier, zap.NewNop())

		comp := newTestCompany(t)
		inv := newNearDueInvoice(t, comp.ID, 3)
		cl := newTestClient(t, comp.ID)
		inv.ClientID = cl.ID

		invoiceRepo.On("FindDueOn", ctx, mock.Anything).
			Return([]*invoicing.Invoice{inv}, nil).Once()
		clientRepo.On("FindByIDForCompany", ctx, cl.ID, comp.ID).Return(cl, nil).Once()
		notifier.On("SendUpcomingReminder", ctx, inv, cl.Email).
			Return(errors.New("smtp down")).Once()

		stats, err := svc.DispatchUpcomingReminders(ctx, now, 3)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Failed)
		assert.Equal(t, 0, stats.Sent)
	})

	t.Run("missing client is skipped", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		clientRepo := new(MockClientRepository)
		notifier := new(MockReminderNotifier)
		svc := NewReminderService(invoiceRepo, clientRepo, notifier, zap.NewNop())

		inv := newNearDueInvoice(t, uuid.New(), 3)

		invoiceRepo.On("FindDueOn", ctx, mock.Anything).
			Return([]*invoicing.Invoice{inv}, nil).Once()
		clientRepo.On("FindByIDForCompany", ctx, inv.ClientID, inv.CompanyID).Return(nil, shared.ErrNotFound).Once()

		stats, err := svc.DispatchUpcomingReminders(ctx, now, 3)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Skipped)
		notifier.AssertNotCalled(t, "SendUpcomingReminder")
	})
}
