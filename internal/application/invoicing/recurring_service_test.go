package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared/recurrence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRecurringTemplate(t *testing.T, companyID uuid.UUID, nextDate time.Time) *invoicing.Invoice {
	t.Helper()
	inv := newTestInvoice(t, companyID, uuid.New())
	require.NoError(t, inv.EnableRecurring(recurrence.FrequencyMonthly, nextDate))
	inv.ClearDomainEvents()
	return inv
}

func TestRecurringInvoiceService_GenerateDue(t *testing.T) {
	ctx := context.Background()
	today := time.Now()

	t.Run("clones due templates", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewRecurringInvoiceService(invoiceRepo, zap.NewNop())

		template := newRecurringTemplate(t, uuid.New(), today)

		invoiceRepo.On("FindDueForRecurring", ctx, today).Return([]*invoicing.Invoice{template}, nil).Once()
		invoiceRepo.On("SaveWithLock", ctx, template).Return(nil).Once()
		invoiceRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string"), template.CompanyID).Return(false, nil).Once()
		invoiceRepo.On("Save", ctx, mock.MatchedBy(func(inv *invoicing.Invoice) bool {
			return inv.ID != template.ID &&
				inv.ClientID == template.ClientID &&
				inv.Status == invoicing.InvoiceStatusDraft &&
				!inv.IsRecurring
		})).Return(nil).Once()

		stats, err := svc.GenerateDue(ctx, today)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Due)
		assert.Equal(t, 1, stats.Generated)
		assert.Equal(t, 0, stats.Failed)
		invoiceRepo.AssertExpectations(t)
	})

	t.Run("advances the schedule before saving the clone", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewRecurringInvoiceService(invoiceRepo, zap.NewNop())

		template := newRecurringTemplate(t, uuid.New(), today)

		invoiceRepo.On("FindDueForRecurring", ctx, today).Return([]*invoicing.Invoice{template}, nil).Once()
		invoiceRepo.On("SaveWithLock", ctx, template).Return(nil).Once()
		invoiceRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string"), template.CompanyID).Return(false, nil).Once()
		// The clone save fails; the schedule must already be advanced so
		// the next run does not produce a duplicate for this period
		invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Return(errors.New("db down")).Once()

		stats, err := svc.GenerateDue(ctx, today)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Failed)
		assert.Equal(t, 0, stats.Generated)
		require.NotNil(t, template.NextRecurringDate)
		assert.True(t, template.NextRecurringDate.After(today))
	})

	t.Run("nothing due", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewRecurringInvoiceService(invoiceRepo, zap.NewNop())

		invoiceRepo.On("FindDueForRecurring", ctx, today).Return([]*invoicing.Invoice{}, nil).Once()

		stats, err := svc.GenerateDue(ctx, today)

		require.NoError(t, err)
		assert.Equal(t, 0, stats.Due)
		invoiceRepo.AssertNotCalled(t, "Save")
	})

	t.Run("clone due date preserves the template's term", func(t *testing.T) {
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewRecurringInvoiceService(invoiceRepo, zap.NewNop())

		template := newRecurringTemplate(t, uuid.New(), today)
		termDays := 30

		var clone *invoicing.Invoice
		invoiceRepo.On("FindDueForRecurring", ctx, today).Return([]*invoicing.Invoice{template}, nil).Once()
		invoiceRepo.On("SaveWithLock", ctx, template).Return(nil).Once()
		invoiceRepo.On("ExistsByNumber", ctx, mock.AnythingOfType("string"), template.CompanyID).Return(false, nil).Once()
		invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Run(func(args mock.Arguments) {
			clone = args.Get(1).(*invoicing.Invoice)
		}).Return(nil).Once()

		_, err := svc.GenerateDue(ctx, today)

		require.NoError(t, err)
		require.NotNil(t, clone)
		assert.Equal(t, today.AddDate(0, 0, termDays).Format("2006-01-02"), clone.DueDate.Format("2006-01-02"))
	})
}
