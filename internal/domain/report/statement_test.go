package report

import (
	"testing"

	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClientStatement_RunningBalance(t *testing.T) {
	companyID := uuid.New()
	clientID := uuid.New()
	from, to := day(2026, 2, 1), day(2026, 2, 28)

	// Issued before the period, paid partly inside it
	older := buildInvoice(t, companyID, clientID, "INV-OLD", day(2026, 1, 10), day(2026, 2, 9), 500.00, 0)
	payInvoice(t, older, 200.00, day(2026, 2, 5))

	// Issued and paid inside the period
	current := buildInvoice(t, companyID, clientID, "INV-CUR", day(2026, 2, 10), day(2026, 3, 12), 300.00, 0)
	payInvoice(t, current, 300.00, day(2026, 2, 20))

	stmt := BuildClientStatement(companyID, clientID, "Test Client", []*invoicing.Invoice{older, current}, from, to)

	assert.True(t, stmt.OpeningBalance.Equal(decimal.NewFromFloat(500.00)), "got %s", stmt.OpeningBalance)
	require.Len(t, stmt.Lines, 3)

	// Chronological: payment Feb 5, invoice Feb 10, payment Feb 20
	assert.Equal(t, EntryTypePayment, stmt.Lines[0].Type)
	assert.True(t, stmt.Lines[0].Balance.Equal(decimal.NewFromFloat(300.00)))

	assert.Equal(t, EntryTypeInvoice, stmt.Lines[1].Type)
	assert.Equal(t, "INV-CUR", stmt.Lines[1].Reference)
	assert.True(t, stmt.Lines[1].Balance.Equal(decimal.NewFromFloat(600.00)))

	assert.Equal(t, EntryTypePayment, stmt.Lines[2].Type)
	assert.True(t, stmt.Lines[2].Balance.Equal(decimal.NewFromFloat(300.00)))

	assert.True(t, stmt.TotalCharges.Equal(decimal.NewFromFloat(300.00)))
	assert.True(t, stmt.TotalPayments.Equal(decimal.NewFromFloat(500.00)))
	assert.True(t, stmt.ClosingBalance.Equal(decimal.NewFromFloat(300.00)))

	// Closing reconciles: opening + charges - payments
	expected := stmt.OpeningBalance.Add(stmt.TotalCharges).Sub(stmt.TotalPayments)
	assert.True(t, stmt.ClosingBalance.Equal(expected))
}

func TestBuildClientStatement_OpeningBalanceNetsPriorPayments(t *testing.T) {
	companyID := uuid.New()
	clientID := uuid.New()

	inv := buildInvoice(t, companyID, clientID, "INV-1", day(2026, 1, 5), day(2026, 2, 4), 1000.00, 0)
	payInvoice(t, inv, 400.00, day(2026, 1, 20))

	stmt := BuildClientStatement(companyID, clientID, "Test Client", []*invoicing.Invoice{inv}, day(2026, 3, 1), day(2026, 3, 31))

	assert.True(t, stmt.OpeningBalance.Equal(decimal.NewFromFloat(600.00)))
	assert.Empty(t, stmt.Lines)
	assert.True(t, stmt.ClosingBalance.Equal(decimal.NewFromFloat(600.00)))
}

func TestBuildClientStatement_RefundAppearsAsDebit(t *testing.T) {
	companyID := uuid.New()
	clientID := uuid.New()

	inv := buildInvoice(t, companyID, clientID, "INV-R", day(2026, 2, 3), day(2026, 3, 5), 500.00, 0)
	payInvoice(t, inv, 500.00, day(2026, 2, 10))
	payment := inv.Payments[0]
	_, err := inv.RefundPayment(payment.ID, decimal.NewFromFloat(100.00), "partial refund", nil)
	require.NoError(t, err)

	// Refund records are dated at refund time (now); widen the window
	stmt := BuildClientStatement(companyID, clientID, "Test Client", []*invoicing.Invoice{inv}, day(2026, 1, 1), day(2100, 1, 1))

	require.Len(t, stmt.Lines, 3)
	var refundLine *StatementLine
	for i := range stmt.Lines {
		if stmt.Lines[i].Type == EntryTypeRefund {
			refundLine = &stmt.Lines[i]
		}
	}
	require.NotNil(t, refundLine)
	assert.True(t, refundLine.Debit.Equal(decimal.NewFromFloat(100.00)))
	assert.True(t, refundLine.Credit.IsZero())

	// 500 charged, 500 paid, 100 refunded: client owes 100
	assert.True(t, stmt.ClosingBalance.Equal(decimal.NewFromFloat(100.00)))
}

func TestBuildClientStatement_ExcludesOtherClientsAndCancelled(t *testing.T) {
	companyID := uuid.New()
	clientID := uuid.New()

	mine := buildInvoice(t, companyID, clientID, "INV-M", day(2026, 2, 3), day(2026, 3, 5), 100.00, 0)
	other := buildInvoice(t, companyID, uuid.New(), "INV-X", day(2026, 2, 4), day(2026, 3, 6), 999.00, 0)
	voided := buildInvoice(t, companyID, clientID, "INV-V", day(2026, 2, 5), day(2026, 3, 7), 500.00, 0)
	require.NoError(t, voided.Void("mistake", "tester", day(2026, 2, 6)))

	stmt := BuildClientStatement(companyID, clientID, "Test Client", []*invoicing.Invoice{mine, other, voided}, day(2026, 2, 1), day(2026, 2, 28))

	require.Len(t, stmt.Lines, 1)
	assert.Equal(t, "INV-M", stmt.Lines[0].Reference)
	assert.True(t, stmt.ClosingBalance.Equal(decimal.NewFromFloat(100.00)))
}
