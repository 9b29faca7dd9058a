package report

import (
	"testing"
	"time"

	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		days int
		want AgingBucketName
	}{
		{0, BucketCurrent},
		{15, BucketCurrent},
		{30, BucketCurrent},
		{31, BucketDays31to60},
		{60, BucketDays31to60},
		{61, BucketDays61to90},
		{90, BucketDays61to90},
		{91, BucketOver90},
		{365, BucketOver90},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketFor(tt.days), "days=%d", tt.days)
	}
}

func TestComputeAging_Partition(t *testing.T) {
	companyID := uuid.New()
	clientID := uuid.New()
	asOf := day(2026, 6, 1)

	// One invoice per bucket, plus a partially paid one
	a := buildInvoice(t, companyID, clientID, "INV-A", day(2026, 4, 22), day(2026, 5, 22), 100.00, 0) // 10 days past due
	b := buildInvoice(t, companyID, clientID, "INV-B", day(2026, 3, 17), day(2026, 4, 17), 200.00, 0) // 45 days
	c := buildInvoice(t, companyID, clientID, "INV-C", day(2026, 2, 21), day(2026, 3, 23), 300.00, 0) // 70 days
	d := buildInvoice(t, companyID, clientID, "INV-D", day(2026, 1, 2), day(2026, 2, 1), 400.00, 0)   // 120 days
	payInvoice(t, d, 150.00, day(2026, 2, 10))

	report := ComputeAging(companyID, []*invoicing.Invoice{a, b, c, d}, asOf)

	assert.True(t, report.Current.Total.Equal(decimal.NewFromFloat(100.00)), "got %s", report.Current.Total)
	assert.True(t, report.Days31to60.Total.Equal(decimal.NewFromFloat(200.00)))
	assert.True(t, report.Days61to90.Total.Equal(decimal.NewFromFloat(300.00)))
	assert.True(t, report.Over90.Total.Equal(decimal.NewFromFloat(250.00)), "partially paid invoice contributes its balance, got %s", report.Over90.Total)

	// Bucket totals sum to total outstanding
	sum := report.Current.Total.Add(report.Days31to60.Total).Add(report.Days61to90.Total).Add(report.Over90.Total)
	assert.True(t, report.TotalOutstanding.Equal(sum))
	assert.True(t, report.TotalOutstanding.Equal(decimal.NewFromFloat(850.00)))

	// Each invoice lands in exactly one bucket
	lineCount := len(report.Current.Lines) + len(report.Days31to60.Lines) + len(report.Days61to90.Lines) + len(report.Over90.Lines)
	assert.Equal(t, 4, lineCount)
}

func TestComputeAging_NotYetDueIsCurrent(t *testing.T) {
	companyID := uuid.New()
	asOf := day(2026, 6, 1)

	inv := buildInvoice(t, companyID, uuid.New(), "INV-F", day(2026, 5, 20), day(2026, 6, 20), 500.00, 0)
	report := ComputeAging(companyID, []*invoicing.Invoice{inv}, asOf)

	require.Len(t, report.Current.Lines, 1)
	assert.Equal(t, 0, report.Current.Lines[0].DaysPastDue)
	assert.True(t, report.TotalOutstanding.Equal(decimal.NewFromFloat(500.00)))
}

func TestComputeAging_ExcludesSettledAndCancelled(t *testing.T) {
	companyID := uuid.New()
	clientID := uuid.New()
	asOf := day(2026, 6, 1)

	paid := buildInvoice(t, companyID, clientID, "INV-P", day(2026, 4, 1), day(2026, 5, 1), 100.00, 0)
	payInvoice(t, paid, 100.00, day(2026, 4, 15))

	voided := buildInvoice(t, companyID, clientID, "INV-V", day(2026, 4, 1), day(2026, 5, 1), 100.00, 0)
	require.NoError(t, voided.Void("test", "tester", day(2026, 4, 2)))

	draft, err := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		CompanyID:     companyID,
		ClientID:      clientID,
		ClientName:    "Test Client",
		InvoiceNumber: "INV-DRAFT",
		IssueDate:     day(2026, 4, 1),
		DueDate:       day(2026, 5, 1),
	})
	require.NoError(t, err)

	report := ComputeAging(companyID, []*invoicing.Invoice{paid, voided, draft}, asOf)

	assert.True(t, report.TotalOutstanding.IsZero())
	assert.Empty(t, report.Current.Lines)
}

func TestComputeAging_OverdueStatusInvoices(t *testing.T) {
	companyID := uuid.New()
	asOf := day(2026, 6, 1)

	inv := buildInvoice(t, companyID, uuid.New(), "INV-O", day(2026, 3, 1), day(2026, 4, 1), 750.00, 0)
	require.True(t, inv.SweepOverdue(asOf))

	report := ComputeAging(companyID, []*invoicing.Invoice{inv}, asOf)

	require.Len(t, report.Days61to90.Lines, 1)
	assert.Equal(t, 61, report.Days61to90.Lines[0].DaysPastDue)
}

func TestComputeAging_EmptyInput(t *testing.T) {
	report := ComputeAging(uuid.New(), nil, time.Now())
	assert.True(t, report.TotalOutstanding.IsZero())
	assert.True(t, report.Current.Total.IsZero())
}
