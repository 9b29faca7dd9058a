package report

import (
	"time"

	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientDashboard summarizes one client's account health
type ClientDashboard struct {
	ClientID           uuid.UUID       `json:"client_id"`
	ClientName         string          `json:"client_name"`
	TotalInvoiced      decimal.Decimal `json:"total_invoiced"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	InvoiceCount       int             `json:"invoice_count"`
	OpenInvoiceCount   int             `json:"open_invoice_count"`
	OverdueCount       int             `json:"overdue_count"`

	// AverageDaysToPay averages issue-to-payment time over paid invoices;
	// nil when no invoice has been paid yet
	AverageDaysToPay *decimal.Decimal `json:"average_days_to_pay,omitempty"`
}

// ComputeClientDashboard folds a client's invoices into account metrics.
// Cancelled invoices are ignored.
func ComputeClientDashboard(clientID uuid.UUID, clientName string, invoices []*invoicing.Invoice, asOf time.Time) *ClientDashboard {
	d := &ClientDashboard{
		ClientID:           clientID,
		ClientName:         clientName,
		TotalInvoiced:      decimal.Zero,
		TotalPaid:          decimal.Zero,
		OutstandingBalance: decimal.Zero,
	}

	daysToPayTotal := decimal.Zero
	paidCount := 0

	for _, inv := range invoices {
		if inv.ClientID != clientID || inv.Status == invoicing.InvoiceStatusCancelled {
			continue
		}

		d.InvoiceCount++
		d.TotalInvoiced = d.TotalInvoiced.Add(inv.TotalAmount)
		d.TotalPaid = d.TotalPaid.Add(inv.AmountPaid)

		if inv.Status.IsOutstanding() {
			d.OpenInvoiceCount++
			d.OutstandingBalance = d.OutstandingBalance.Add(inv.BalanceDue())
			if inv.IsOverdue(asOf) {
				d.OverdueCount++
			}
		}

		if inv.Status == invoicing.InvoiceStatusPaid && inv.PaidAt != nil {
			days := decimal.NewFromInt(int64(inv.PaidAt.Sub(inv.IssueDate).Hours() / 24))
			daysToPayTotal = daysToPayTotal.Add(days)
			paidCount++
		}
	}

	if paidCount > 0 {
		avg := daysToPayTotal.Div(decimal.NewFromInt(int64(paidCount))).Round(1)
		d.AverageDaysToPay = &avg
	}

	return d
}

// PeriodComparison holds one metric's value for the current and previous
// period along with the percentage change
type PeriodComparison struct {
	Current       decimal.Decimal `json:"current"`
	Previous      decimal.Decimal `json:"previous"`
	ChangePercent decimal.Decimal `json:"change_percent"` // 0 when the previous period was zero
}

// ComparePeriods computes the period-over-period change for a metric
func ComparePeriods(current, previous decimal.Decimal) PeriodComparison {
	c := PeriodComparison{Current: current, Previous: previous, ChangePercent: decimal.Zero}
	if !previous.IsZero() {
		c.ChangePercent = current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return c
}

// BusinessOverview is the company-wide dashboard read model
type BusinessOverview struct {
	CompanyID   uuid.UUID `json:"company_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	Revenue  PeriodComparison `json:"revenue"`
	Expenses PeriodComparison `json:"expenses"`
	Profit   PeriodComparison `json:"profit"`

	OutstandingReceivables decimal.Decimal `json:"outstanding_receivables"`
	OverdueReceivables     decimal.Decimal `json:"overdue_receivables"`
	OpenInvoiceCount       int             `json:"open_invoice_count"`
	OverdueInvoiceCount    int             `json:"overdue_invoice_count"`
}
