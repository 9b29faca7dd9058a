package report

import (
	"testing"
	"time"

	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Shared builders for report tests. Invoices are driven through the
// aggregate's own entry points so report inputs carry real derived state.

func buildInvoice(t *testing.T, companyID, clientID uuid.UUID, number string, issue, due time.Time, amount float64, taxRate float64) *invoicing.Invoice {
	t.Helper()
	inv, err := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		CompanyID:     companyID,
		ClientID:      clientID,
		ClientName:    "Test Client",
		InvoiceNumber: number,
		IssueDate:     issue,
		DueDate:       due,
		Currency:      valueobject.USD,
		TaxRate:       decimal.NewFromFloat(taxRate),
	})
	require.NoError(t, err)
	require.NoError(t, inv.ReplaceItems([]invoicing.ItemInput{
		{Description: "Services", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromFloat(amount), TaxRate: decimal.Zero},
	}))
	require.NoError(t, inv.MarkSent(issue))
	return inv
}

func payInvoice(t *testing.T, inv *invoicing.Invoice, amount float64, date time.Time) {
	t.Helper()
	_, err := inv.RecordPayment(invoicing.RecordPaymentParams{
		Amount:      decimal.NewFromFloat(amount),
		PaymentDate: date,
		Method:      invoicing.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)
}

func buildExpense(t *testing.T, companyID, categoryID uuid.UUID, amount float64, date time.Time, deductible bool) *expense.Expense {
	t.Helper()
	exp, err := expense.NewExpense(expense.NewExpenseParams{
		CompanyID:     companyID,
		CategoryID:    categoryID,
		Description:   "Test expense",
		Amount:        decimal.NewFromFloat(amount),
		ExpenseDate:   date,
		Method:        expense.PaymentMethodBankTransfer,
		TaxDeductible: deductible,
	})
	require.NoError(t, err)
	return exp
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
