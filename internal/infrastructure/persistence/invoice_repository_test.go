package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInvoiceRepository_FindByIDForCompany(t *testing.T) {
	t.Run("loads line items and payments from JSONB", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()
		companyID := uuid.New()
		itemID := uuid.New()
		paymentID := uuid.New()

		itemsJSON := `[{"id":"` + itemID.String() + `","description":"Consulting hours","quantity":"2","unit_price":"150","tax_rate":"0","total":"300"}]`
		paymentsJSON := `[{"id":"` + paymentID.String() + `","amount":"100","payment_date":"2026-03-10T00:00:00Z","method":"BANK_TRANSFER","status":"COMPLETED"}]`

		rows := sqlmock.NewRows([]string{
			"id", "company_id", "invoice_number", "client_id", "client_name",
			"status", "total_amount", "amount_paid", "items", "payments",
		}).AddRow(
			invoiceID, companyID, "INV-2026-0001", uuid.New(), "Globex Corp",
			"PARTIALLY_PAID", "300", "100", itemsJSON, paymentsJSON,
		)

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE company_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(companyID, invoiceID, 1).
			WillReturnRows(rows)

		inv, err := repo.FindByIDForCompany(context.Background(), invoiceID, companyID)

		require.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, invoicing.InvoiceStatusPartiallyPaid, inv.Status)
		require.Len(t, inv.Items, 1)
		assert.Equal(t, "Consulting hours", inv.Items[0].Description)
		assert.True(t, inv.Items[0].Total.Equal(decimal.NewFromInt(300)))
		require.Len(t, inv.Payments, 1)
		assert.Equal(t, invoicing.PaymentMethodBankTransfer, inv.Payments[0].Method)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing invoice", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()
		companyID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE company_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(companyID, invoiceID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		inv, err := repo.FindByIDForCompany(context.Background(), invoiceID, companyID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, inv)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindOutstanding(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormInvoiceRepository(gormDB)

	companyID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "company_id", "invoice_number", "status"}).
		AddRow(uuid.New(), companyID, "INV-2026-0001", "SENT").
		AddRow(uuid.New(), companyID, "INV-2026-0002", "OVERDUE")

	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE company_id = \$1 AND status IN \(\$2,\$3,\$4\) ORDER BY due_date ASC`).
		WithArgs(companyID, "SENT", "PARTIALLY_PAID", "OVERDUE").
		WillReturnRows(rows)

	invoices, err := repo.FindOutstanding(context.Background(), companyID)

	require.NoError(t, err)
	assert.Len(t, invoices, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInvoiceRepository_FindIssuedBetween(t *testing.T) {
	t.Run("bounds both ends of the window", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		companyID := uuid.New()
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE \(company_id = \$1 AND status <> \$2\) AND issue_date <= \$3 AND issue_date >= \$4 ORDER BY issue_date ASC`).
			WithArgs(companyID, "CANCELLED", to, from).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindIssuedBetween(context.Background(), companyID, from, to)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero from leaves the window open at the start", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		companyID := uuid.New()
		to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE \(company_id = \$1 AND status <> \$2\) AND issue_date <= \$3 ORDER BY issue_date ASC`).
			WithArgs(companyID, "CANCELLED", to).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindIssuedBetween(context.Background(), companyID, time.Time{}, to)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindDueForRecurring(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormInvoiceRepository(gormDB)

	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE is_recurring = \$1 AND next_recurring_date IS NOT NULL AND next_recurring_date <= \$2`).
		WithArgs(true, asOf).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindDueForRecurring(context.Background(), asOf)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
