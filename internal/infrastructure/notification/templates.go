package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/report"
)

var reminderTemplate = template.Must(template.New("payment_reminder").Parse(`
<p>Hello {{.ClientName}},</p>
<p>This is a friendly reminder that invoice <strong>{{.InvoiceNumber}}</strong>
is past due. It was due on {{.DueDate}} and has an outstanding balance of
<strong>{{.Currency}} {{.BalanceDue}}</strong>.</p>
<p>If you have already sent payment, please disregard this notice.</p>
<p>Thank you,<br>{{.SenderNote}}</p>
`))

var upcomingTemplate = template.Must(template.New("upcoming_reminder").Parse(`
<p>Hello {{.ClientName}},</p>
<p>This is a courtesy notice that invoice <strong>{{.InvoiceNumber}}</strong>
is due on {{.DueDate}}. The outstanding balance is
<strong>{{.Currency}} {{.BalanceDue}}</strong>.</p>
<p>If you have already sent payment, please disregard this notice.</p>
<p>Thank you,<br>{{.SenderNote}}</p>
`))

type reminderData struct {
	ClientName    string
	InvoiceNumber string
	DueDate       string
	Currency      string
	BalanceDue    string
	SenderNote    string
}

// RenderPaymentReminder produces the subject and HTML body for an
// overdue invoice reminder.
func RenderPaymentReminder(inv *invoicing.Invoice) (string, string, error) {
	data := reminderData{
		ClientName:    inv.ClientName,
		InvoiceNumber: inv.InvoiceNumber,
		DueDate:       inv.DueDate.Format("January 2, 2006"),
		Currency:      string(inv.Currency),
		BalanceDue:    inv.BalanceDue().StringFixed(2),
		SenderNote:    "Accounts Receivable",
	}

	var body bytes.Buffer
	if err := reminderTemplate.Execute(&body, data); err != nil {
		return "", "", err
	}

	subject := fmt.Sprintf("Payment reminder: invoice %s is past due", inv.InvoiceNumber)
	return subject, body.String(), nil
}

// RenderUpcomingReminder produces the subject and HTML body for an
// invoice approaching its due date.
func RenderUpcomingReminder(inv *invoicing.Invoice) (string, string, error) {
	data := reminderData{
		ClientName:    inv.ClientName,
		InvoiceNumber: inv.InvoiceNumber,
		DueDate:       inv.DueDate.Format("January 2, 2006"),
		Currency:      string(inv.Currency),
		BalanceDue:    inv.BalanceDue().StringFixed(2),
		SenderNote:    "Accounts Receivable",
	}

	var body bytes.Buffer
	if err := upcomingTemplate.Execute(&body, data); err != nil {
		return "", "", err
	}

	subject := fmt.Sprintf("Upcoming payment: invoice %s is due %s",
		inv.InvoiceNumber, data.DueDate)
	return subject, body.String(), nil
}

var digestTemplate = template.Must(template.New("digest").Parse(`
<p>Hello,</p>
<p>Here is the {{.PeriodLabel}} summary for <strong>{{.CompanyName}}</strong>
({{.PeriodStart}} to {{.PeriodEnd}}):</p>
<table cellpadding="6" border="1">
  <tr><th>Metric</th><th>This period</th><th>Previous</th><th>Change</th></tr>
  <tr><td>Revenue</td><td>{{.RevenueCurrent}}</td><td>{{.RevenuePrevious}}</td><td>{{.RevenueChange}}%</td></tr>
  <tr><td>Expenses</td><td>{{.ExpensesCurrent}}</td><td>{{.ExpensesPrevious}}</td><td>{{.ExpensesChange}}%</td></tr>
  <tr><td>Profit</td><td>{{.ProfitCurrent}}</td><td>{{.ProfitPrevious}}</td><td>{{.ProfitChange}}%</td></tr>
</table>
<p>Outstanding receivables: <strong>{{.Outstanding}}</strong> across {{.OpenInvoices}} open invoice(s),
of which <strong>{{.Overdue}}</strong> is overdue ({{.OverdueInvoices}} invoice(s)).</p>
`))

type digestData struct {
	CompanyName      string
	PeriodLabel      string
	PeriodStart      string
	PeriodEnd        string
	RevenueCurrent   string
	RevenuePrevious  string
	RevenueChange    string
	ExpensesCurrent  string
	ExpensesPrevious string
	ExpensesChange   string
	ProfitCurrent    string
	ProfitPrevious   string
	ProfitChange     string
	Outstanding      string
	Overdue          string
	OpenInvoices     int
	OverdueInvoices  int
}

// RenderBusinessDigest produces the subject and HTML body for a weekly
// or monthly business summary email.
func RenderBusinessDigest(companyName, periodLabel string, overview *report.BusinessOverview) (string, string, error) {
	data := digestData{
		CompanyName:      companyName,
		PeriodLabel:      periodLabel,
		PeriodStart:      overview.PeriodStart.Format("Jan 2, 2006"),
		PeriodEnd:        overview.PeriodEnd.Format("Jan 2, 2006"),
		RevenueCurrent:   overview.Revenue.Current.StringFixed(2),
		RevenuePrevious:  overview.Revenue.Previous.StringFixed(2),
		RevenueChange:    overview.Revenue.ChangePercent.StringFixed(1),
		ExpensesCurrent:  overview.Expenses.Current.StringFixed(2),
		ExpensesPrevious: overview.Expenses.Previous.StringFixed(2),
		ExpensesChange:   overview.Expenses.ChangePercent.StringFixed(1),
		ProfitCurrent:    overview.Profit.Current.StringFixed(2),
		ProfitPrevious:   overview.Profit.Previous.StringFixed(2),
		ProfitChange:     overview.Profit.ChangePercent.StringFixed(1),
		Outstanding:      overview.OutstandingReceivables.StringFixed(2),
		Overdue:          overview.OverdueReceivables.StringFixed(2),
		OpenInvoices:     overview.OpenInvoiceCount,
		OverdueInvoices:  overview.OverdueInvoiceCount,
	}

	var body bytes.Buffer
	if err := digestTemplate.Execute(&body, data); err != nil {
		return "", "", err
	}

	subject := fmt.Sprintf("Your %s summary for %s", periodLabel, companyName)
	return subject, body.String(), nil
}

// PeriodLabelFor returns a human label for a digest window.
func PeriodLabelFor(from, to time.Time) string {
	if to.Sub(from) <= 8*24*time.Hour {
		return "weekly"
	}
	return "monthly"
}
