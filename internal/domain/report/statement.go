package report

import (
	"sort"
	"time"

	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementEntryType tags a statement line as a charge or a payment
type StatementEntryType string

const (
	EntryTypeInvoice StatementEntryType = "INVOICE" // Debit: increases what the client owes
	EntryTypePayment StatementEntryType = "PAYMENT" // Credit: decreases what the client owes
	EntryTypeRefund  StatementEntryType = "REFUND"  // Debit: a payment given back
)

// StatementLine is one row of a client statement
type StatementLine struct {
	Date          time.Time          `json:"date"`
	Type          StatementEntryType `json:"type"`
	Reference     string             `json:"reference"`
	Description   string             `json:"description"`
	Debit         decimal.Decimal    `json:"debit"`
	Credit        decimal.Decimal    `json:"credit"`
	Balance       decimal.Decimal    `json:"balance"`
	InvoiceID     uuid.UUID          `json:"invoice_id"`
	InvoiceNumber string             `json:"invoice_number"`
}

// ClientStatement is the full ledger of a client's account over a period
type ClientStatement struct {
	CompanyID      uuid.UUID       `json:"company_id"`
	ClientID       uuid.UUID       `json:"client_id"`
	ClientName     string          `json:"client_name"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Lines          []StatementLine `json:"lines"`
	TotalCharges   decimal.Decimal `json:"total_charges"`
	TotalPayments  decimal.Decimal `json:"total_payments"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// BuildClientStatement merges a client's invoices and payments into a
// chronological ledger with a running balance. The opening balance is
// computed from all activity before the period start, so a statement for
// any window reconciles against the client's full history. Cancelled
// invoices and their payments are excluded; drafts have not been issued
// and are excluded too.
func BuildClientStatement(companyID, clientID uuid.UUID, clientName string, invoices []*invoicing.Invoice, from, to time.Time) *ClientStatement {
	stmt := &ClientStatement{
		CompanyID:      companyID,
		ClientID:       clientID,
		ClientName:     clientName,
		PeriodStart:    from,
		PeriodEnd:      to,
		OpeningBalance: decimal.Zero,
		TotalCharges:   decimal.Zero,
		TotalPayments:  decimal.Zero,
	}

	var lines []StatementLine
	for _, inv := range invoices {
		if inv.ClientID != clientID {
			continue
		}
		if inv.Status == invoicing.InvoiceStatusDraft || inv.Status == invoicing.InvoiceStatusCancelled {
			continue
		}

		if inv.IssueDate.Before(from) {
			stmt.OpeningBalance = stmt.OpeningBalance.Add(inv.TotalAmount)
		} else if !inv.IssueDate.After(to) {
			lines = append(lines, StatementLine{
				Date:          inv.IssueDate,
				Type:          EntryTypeInvoice,
				Reference:     inv.InvoiceNumber,
				Description:   "Invoice " + inv.InvoiceNumber,
				Debit:         inv.TotalAmount,
				Credit:        decimal.Zero,
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.InvoiceNumber,
			})
		}

		for _, p := range inv.Payments {
			if !p.Status.CountsTowardBalance() {
				continue
			}

			if p.PaymentDate.Before(from) {
				stmt.OpeningBalance = stmt.OpeningBalance.Sub(p.Amount)
				continue
			}
			if p.PaymentDate.After(to) {
				continue
			}

			line := StatementLine{
				Date:          p.PaymentDate,
				Reference:     p.ReferenceNumber,
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.InvoiceNumber,
			}
			if p.IsRefund() {
				line.Type = EntryTypeRefund
				line.Description = "Refund on " + inv.InvoiceNumber
				line.Debit = p.Amount.Abs()
				line.Credit = decimal.Zero
			} else {
				line.Type = EntryTypePayment
				line.Description = "Payment on " + inv.InvoiceNumber
				line.Debit = decimal.Zero
				line.Credit = p.Amount
			}
			lines = append(lines, line)
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Date.Before(lines[j].Date)
	})

	balance := stmt.OpeningBalance
	for i := range lines {
		balance = balance.Add(lines[i].Debit).Sub(lines[i].Credit)
		lines[i].Balance = balance
		stmt.TotalCharges = stmt.TotalCharges.Add(lines[i].Debit)
		stmt.TotalPayments = stmt.TotalPayments.Add(lines[i].Credit)
	}

	stmt.Lines = lines
	stmt.ClosingBalance = balance

	return stmt
}
