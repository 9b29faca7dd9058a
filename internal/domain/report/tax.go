package report

import (
	"sort"
	"time"

	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxReport summarizes a calendar year's tax position: tax collected on
// paid invoices against tax-deductible spending
type TaxReport struct {
	CompanyID uuid.UUID `json:"company_id"`
	Year      int       `json:"year"`

	TaxCollected decimal.Decimal `json:"tax_collected"`
	PaidRevenue  decimal.Decimal `json:"paid_revenue"`

	DeductibleExpenses   decimal.Decimal            `json:"deductible_expenses"`
	DeductibleByCategory []ExpenseCategoryBreakdown `json:"deductible_by_category"`

	// NetTaxPosition is tax collected minus deductible spending; positive
	// means tax is likely owed
	NetTaxPosition decimal.Decimal `json:"net_tax_position"`
}

// ComputeTaxReport builds the tax summary for a calendar year from PAID
// invoices issued in the year and tax-deductible expenses dated in it
func ComputeTaxReport(companyID uuid.UUID, invoices []*invoicing.Invoice, expenses []*expense.Expense, categoryNames map[uuid.UUID]string, year int) *TaxReport {
	r := &TaxReport{
		CompanyID:          companyID,
		Year:               year,
		TaxCollected:       decimal.Zero,
		PaidRevenue:        decimal.Zero,
		DeductibleExpenses: decimal.Zero,
	}

	for _, inv := range invoices {
		if inv.Status != invoicing.InvoiceStatusPaid {
			continue
		}
		if inv.IssueDate.Year() != year {
			continue
		}
		r.TaxCollected = r.TaxCollected.Add(inv.TaxAmount)
		r.PaidRevenue = r.PaidRevenue.Add(inv.TotalAmount)
	}

	byCategory := make(map[uuid.UUID]decimal.Decimal)
	for _, exp := range expenses {
		if !exp.TaxDeductible {
			continue
		}
		if exp.ExpenseDate.Year() != year {
			continue
		}
		r.DeductibleExpenses = r.DeductibleExpenses.Add(exp.Amount)
		byCategory[exp.CategoryID] = byCategory[exp.CategoryID].Add(exp.Amount)
	}

	for categoryID, amount := range byCategory {
		breakdown := ExpenseCategoryBreakdown{
			CategoryID:   categoryID,
			CategoryName: categoryNames[categoryID],
			Amount:       amount,
			Percentage:   decimal.Zero,
		}
		if r.DeductibleExpenses.IsPositive() {
			breakdown.Percentage = amount.Div(r.DeductibleExpenses).Mul(decimal.NewFromInt(100)).Round(2)
		}
		r.DeductibleByCategory = append(r.DeductibleByCategory, breakdown)
	}
	sort.Slice(r.DeductibleByCategory, func(i, j int) bool {
		return r.DeductibleByCategory[i].Amount.GreaterThan(r.DeductibleByCategory[j].Amount)
	})

	r.NetTaxPosition = r.TaxCollected.Sub(r.DeductibleExpenses)

	return r
}

// YearRange returns the first and last instant of a calendar year in UTC
func YearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	return start, end
}
