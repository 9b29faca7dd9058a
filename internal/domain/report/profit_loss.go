package report

import (
	"sort"
	"time"

	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategoryBreakdown is one category's share of total spending
type ExpenseCategoryBreakdown struct {
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Amount       decimal.Decimal `json:"amount"`
	Percentage   decimal.Decimal `json:"percentage"` // Of total expenses
}

// ProfitLossReport summarizes revenue against spending for a period.
// Revenue recognizes PAID invoices issued in the period; NetRevenue
// excludes the tax collected on top.
type ProfitLossReport struct {
	CompanyID   uuid.UUID `json:"company_id"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	Revenue      decimal.Decimal `json:"revenue"`
	TaxCollected decimal.Decimal `json:"tax_collected"`
	NetRevenue   decimal.Decimal `json:"net_revenue"` // Revenue - TaxCollected
	InvoiceCount int             `json:"invoice_count"`

	TotalExpenses decimal.Decimal            `json:"total_expenses"`
	ExpenseCount  int                        `json:"expense_count"`
	ByCategory    []ExpenseCategoryBreakdown `json:"by_category"`

	GrossProfit decimal.Decimal `json:"gross_profit"` // NetRevenue - TotalExpenses
	GrossMargin decimal.Decimal `json:"gross_margin"` // Percentage of NetRevenue, 0 when no revenue
	NetProfit   decimal.Decimal `json:"net_profit"`   // Revenue - TotalExpenses
	NetMargin   decimal.Decimal `json:"net_margin"`   // Percentage of Revenue, 0 when no revenue
}

// ComputeProfitLoss builds the P&L for a period from PAID invoices
// issued in the window and expenses dated in it. categoryNames resolves
// expense category IDs for the breakdown.
func ComputeProfitLoss(companyID uuid.UUID, invoices []*invoicing.Invoice, expenses []*expense.Expense, categoryNames map[uuid.UUID]string, from, to time.Time) *ProfitLossReport {
	r := &ProfitLossReport{
		CompanyID:     companyID,
		PeriodStart:   from,
		PeriodEnd:     to,
		Revenue:       decimal.Zero,
		TaxCollected:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}

	for _, inv := range invoices {
		if inv.Status != invoicing.InvoiceStatusPaid {
			continue
		}
		if inv.IssueDate.Before(from) || inv.IssueDate.After(to) {
			continue
		}
		r.Revenue = r.Revenue.Add(inv.TotalAmount)
		r.TaxCollected = r.TaxCollected.Add(inv.TaxAmount)
		r.InvoiceCount++
	}
	r.NetRevenue = r.Revenue.Sub(r.TaxCollected)

	byCategory := make(map[uuid.UUID]decimal.Decimal)
	for _, exp := range expenses {
		if exp.ExpenseDate.Before(from) || exp.ExpenseDate.After(to) {
			continue
		}
		r.TotalExpenses = r.TotalExpenses.Add(exp.Amount)
		r.ExpenseCount++
		byCategory[exp.CategoryID] = byCategory[exp.CategoryID].Add(exp.Amount)
	}

	for categoryID, amount := range byCategory {
		breakdown := ExpenseCategoryBreakdown{
			CategoryID:   categoryID,
			CategoryName: categoryNames[categoryID],
			Amount:       amount,
			Percentage:   decimal.Zero,
		}
		if r.TotalExpenses.IsPositive() {
			breakdown.Percentage = amount.Div(r.TotalExpenses).Mul(decimal.NewFromInt(100)).Round(2)
		}
		r.ByCategory = append(r.ByCategory, breakdown)
	}
	sort.Slice(r.ByCategory, func(i, j int) bool {
		return r.ByCategory[i].Amount.GreaterThan(r.ByCategory[j].Amount)
	})

	r.GrossProfit = r.NetRevenue.Sub(r.TotalExpenses)
	r.NetProfit = r.Revenue.Sub(r.TotalExpenses)
	if r.NetRevenue.IsPositive() {
		r.GrossMargin = r.GrossProfit.Div(r.NetRevenue).Mul(decimal.NewFromInt(100)).Round(2)
	} else {
		r.GrossMargin = decimal.Zero
	}
	if r.Revenue.IsPositive() {
		r.NetMargin = r.NetProfit.Div(r.Revenue).Mul(decimal.NewFromInt(100)).Round(2)
	} else {
		r.NetMargin = decimal.Zero
	}

	return r
}
