package report

import (
	"sort"
	"time"

	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlyCashFlow is one month's inflows and outflows
type MonthlyCashFlow struct {
	Year     int             `json:"year"`
	Month    time.Month      `json:"month"`
	Inflows  decimal.Decimal `json:"inflows"`
	Outflows decimal.Decimal `json:"outflows"`
	Net      decimal.Decimal `json:"net"`
}

// CashFlowReport tracks actual money movement for a period: payments
// received against invoices in, expenses out. Refunds reduce inflows in
// the month they were issued.
type CashFlowReport struct {
	CompanyID   uuid.UUID `json:"company_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	TotalInflows  decimal.Decimal `json:"total_inflows"`
	TotalOutflows decimal.Decimal `json:"total_outflows"`
	NetCashFlow   decimal.Decimal `json:"net_cash_flow"`

	// CashConversionRatio is inflows over outflows, 0 when nothing was spent
	CashConversionRatio decimal.Decimal `json:"cash_conversion_ratio"`

	Monthly []MonthlyCashFlow `json:"monthly"`
}

// ComputeCashFlow builds the cash flow report from payment records dated
// in the period and expenses dated in it
func ComputeCashFlow(companyID uuid.UUID, invoices []*invoicing.Invoice, expenses []*expense.Expense, from, to time.Time) *CashFlowReport {
	r := &CashFlowReport{
		CompanyID:           companyID,
		PeriodStart:         from,
		PeriodEnd:           to,
		TotalInflows:        decimal.Zero,
		TotalOutflows:       decimal.Zero,
		CashConversionRatio: decimal.Zero,
	}

	type monthKey struct {
		year  int
		month time.Month
	}
	months := make(map[monthKey]*MonthlyCashFlow)
	monthOf := func(date time.Time) *MonthlyCashFlow {
		key := monthKey{date.Year(), date.Month()}
		m, ok := months[key]
		if !ok {
			m = &MonthlyCashFlow{Year: key.year, Month: key.month, Inflows: decimal.Zero, Outflows: decimal.Zero}
			months[key] = m
		}
		return m
	}

	for _, inv := range invoices {
		if inv.Status == invoicing.InvoiceStatusCancelled {
			continue
		}
		for _, p := range inv.Payments {
			if !p.Status.CountsTowardBalance() {
				continue
			}
			if p.PaymentDate.Before(from) || p.PaymentDate.After(to) {
				continue
			}
			r.TotalInflows = r.TotalInflows.Add(p.Amount)
			monthOf(p.PaymentDate).Inflows = monthOf(p.PaymentDate).Inflows.Add(p.Amount)
		}
	}

	for _, exp := range expenses {
		if exp.ExpenseDate.Before(from) || exp.ExpenseDate.After(to) {
			continue
		}
		r.TotalOutflows = r.TotalOutflows.Add(exp.Amount)
		monthOf(exp.ExpenseDate).Outflows = monthOf(exp.ExpenseDate).Outflows.Add(exp.Amount)
	}

	r.NetCashFlow = r.TotalInflows.Sub(r.TotalOutflows)
	if r.TotalOutflows.IsPositive() {
		r.CashConversionRatio = r.TotalInflows.Div(r.TotalOutflows).Round(2)
	}

	for _, m := range months {
		m.Net = m.Inflows.Sub(m.Outflows)
		r.Monthly = append(r.Monthly, *m)
	}
	sort.Slice(r.Monthly, func(i, j int) bool {
		if r.Monthly[i].Year != r.Monthly[j].Year {
			return r.Monthly[i].Year < r.Monthly[j].Year
		}
		return r.Monthly[i].Month < r.Monthly[j].Month
	})

	return r
}
