package export

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/expenseally/backend/internal/domain/report"
)

const dateLayout = "2006-01-02"

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// AgingDocument flattens an accounts-receivable aging report. Each bucket
// becomes a section with its invoice lines and total.
func AgingDocument(r *report.AgingReport) *Document {
	doc := &Document{Name: "Aging"}

	doc.Sections = append(doc.Sections, Section{
		Title:   fmt.Sprintf("Accounts receivable aging as of %s", r.AsOf.Format(dateLayout)),
		Headers: []string{"Bucket", "Total"},
		Rows: [][]string{
			{string(r.Current.Name), money(r.Current.Total)},
			{string(r.Days31to60.Name), money(r.Days31to60.Total)},
			{string(r.Days61to90.Name), money(r.Days61to90.Total)},
			{string(r.Over90.Name), money(r.Over90.Total)},
			{"Total outstanding", money(r.TotalOutstanding)},
		},
	})

	for _, bucket := range []report.AgingBucket{r.Current, r.Days31to60, r.Days61to90, r.Over90} {
		if len(bucket.Lines) == 0 {
			continue
		}
		section := Section{
			Title:   string(bucket.Name),
			Headers: []string{"Invoice", "Client", "Due date", "Days past due", "Balance due"},
		}
		for _, line := range bucket.Lines {
			section.Rows = append(section.Rows, []string{
				line.InvoiceNumber,
				line.ClientName,
				line.DueDate.Format(dateLayout),
				strconv.Itoa(line.DaysPastDue),
				money(line.BalanceDue),
			})
		}
		doc.Sections = append(doc.Sections, section)
	}

	return doc
}

// ProfitLossDocument flattens a profit and loss report.
func ProfitLossDocument(r *report.ProfitLossReport) *Document {
	doc := &Document{Name: "Profit and loss"}

	doc.Sections = append(doc.Sections, Section{
		Title: fmt.Sprintf("Profit and loss, %s to %s",
			r.PeriodStart.Format(dateLayout), r.PeriodEnd.Format(dateLayout)),
		Headers: []string{"Metric", "Amount"},
		Rows: [][]string{
			{"Revenue", money(r.Revenue)},
			{"Tax collected", money(r.TaxCollected)},
			{"Net revenue", money(r.NetRevenue)},
			{"Invoices", strconv.Itoa(r.InvoiceCount)},
			{"Total expenses", money(r.TotalExpenses)},
			{"Expenses", strconv.Itoa(r.ExpenseCount)},
			{"Gross profit", money(r.GrossProfit)},
			{"Gross margin %", money(r.GrossMargin)},
			{"Net profit", money(r.NetProfit)},
			{"Net margin %", money(r.NetMargin)},
		},
	})

	if len(r.ByCategory) > 0 {
		doc.Sections = append(doc.Sections, categorySection("Expenses by category", r.ByCategory))
	}

	return doc
}

// CashFlowDocument flattens a cash flow report into its monthly series.
func CashFlowDocument(r *report.CashFlowReport) *Document {
	doc := &Document{Name: "Cash flow"}

	summary := Section{
		Title: fmt.Sprintf("Cash flow, %s to %s",
			r.PeriodStart.Format(dateLayout), r.PeriodEnd.Format(dateLayout)),
		Headers: []string{"Metric", "Amount"},
		Rows: [][]string{
			{"Total inflows", money(r.TotalInflows)},
			{"Total outflows", money(r.TotalOutflows)},
			{"Net cash flow", money(r.NetCashFlow)},
			{"Cash conversion ratio", money(r.CashConversionRatio)},
		},
	}
	doc.Sections = append(doc.Sections, summary)

	monthly := Section{
		Title:   "Monthly",
		Headers: []string{"Month", "Inflows", "Outflows", "Net"},
	}
	for _, m := range r.Monthly {
		monthly.Rows = append(monthly.Rows, []string{
			fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)),
			money(m.Inflows),
			money(m.Outflows),
			money(m.Net),
		})
	}
	doc.Sections = append(doc.Sections, monthly)

	return doc
}

// TaxDocument flattens a yearly tax summary.
func TaxDocument(r *report.TaxReport) *Document {
	doc := &Document{Name: "Tax summary"}

	doc.Sections = append(doc.Sections, Section{
		Title:   fmt.Sprintf("Tax summary for %d", r.Year),
		Headers: []string{"Metric", "Amount"},
		Rows: [][]string{
			{"Tax collected", money(r.TaxCollected)},
			{"Paid revenue", money(r.PaidRevenue)},
			{"Deductible expenses", money(r.DeductibleExpenses)},
			{"Net tax position", money(r.NetTaxPosition)},
		},
	})

	if len(r.DeductibleByCategory) > 0 {
		doc.Sections = append(doc.Sections, categorySection("Deductible expenses by category", r.DeductibleByCategory))
	}

	return doc
}

// StatementDocument flattens a client statement into its ledger lines.
func StatementDocument(s *report.ClientStatement) *Document {
	doc := &Document{Name: "Statement"}

	lines := Section{
		Title: fmt.Sprintf("Statement for %s, %s to %s",
			s.ClientName, s.PeriodStart.Format(dateLayout), s.PeriodEnd.Format(dateLayout)),
		Headers: []string{"Date", "Type", "Reference", "Description", "Debit", "Credit", "Balance"},
		Rows: [][]string{
			{s.PeriodStart.Format(dateLayout), "", "", "Opening balance", "", "", money(s.OpeningBalance)},
		},
	}
	for _, line := range s.Lines {
		lines.Rows = append(lines.Rows, []string{
			line.Date.Format(dateLayout),
			string(line.Type),
			line.Reference,
			line.Description,
			money(line.Debit),
			money(line.Credit),
			money(line.Balance),
		})
	}
	doc.Sections = append(doc.Sections, lines)

	doc.Sections = append(doc.Sections, Section{
		Title:   "Summary",
		Headers: []string{"Metric", "Amount"},
		Rows: [][]string{
			{"Total charges", money(s.TotalCharges)},
			{"Total payments", money(s.TotalPayments)},
			{"Closing balance", money(s.ClosingBalance)},
		},
	})

	return doc
}

func categorySection(title string, breakdown []report.ExpenseCategoryBreakdown) Section {
	section := Section{
		Title:   title,
		Headers: []string{"Category", "Amount", "% of total"},
	}
	for _, c := range breakdown {
		section.Rows = append(section.Rows, []string{
			c.CategoryName,
			money(c.Amount),
			money(c.Percentage),
		})
	}
	return section
}
