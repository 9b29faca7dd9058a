package report

import (
	"time"

	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgingBucketName identifies one column of the receivables aging report
type AgingBucketName string

const (
	BucketCurrent    AgingBucketName = "current" // Not yet due, or up to 30 days past due
	BucketDays31to60 AgingBucketName = "days_31_60"
	BucketDays61to90 AgingBucketName = "days_61_90"
	BucketOver90     AgingBucketName = "over_90"
)

// AgingLine is one invoice's contribution to the aging report
type AgingLine struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientID      uuid.UUID       `json:"client_id"`
	ClientName    string          `json:"client_name"`
	DueDate       time.Time       `json:"due_date"`
	DaysPastDue   int             `json:"days_past_due"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	Bucket        AgingBucketName `json:"bucket"`
}

// AgingBucket aggregates one column of the report
type AgingBucket struct {
	Name  AgingBucketName `json:"name"`
	Total decimal.Decimal `json:"total"`
	Lines []AgingLine     `json:"lines"`
}

// AgingReport partitions every unpaid invoice balance into exactly one
// bucket keyed on days past due; bucket totals sum to the total
// outstanding.
type AgingReport struct {
	CompanyID        uuid.UUID       `json:"company_id"`
	AsOf             time.Time       `json:"as_of"`
	Current          AgingBucket     `json:"current"`
	Days31to60       AgingBucket     `json:"days_31_60"`
	Days61to90       AgingBucket     `json:"days_61_90"`
	Over90           AgingBucket     `json:"over_90"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}

// BucketFor maps days past due to the bucket holding that balance.
// Aging is measured against the due date; anything not yet 31 days past
// due counts as current.
func BucketFor(daysPastDue int) AgingBucketName {
	switch {
	case daysPastDue <= 30:
		return BucketCurrent
	case daysPastDue <= 60:
		return BucketDays31to60
	case daysPastDue <= 90:
		return BucketDays61to90
	default:
		return BucketOver90
	}
}

// ComputeAging builds the aging report from the company's invoices.
// PAID and CANCELLED invoices never appear; drafts carry no balance a
// client owes yet and are skipped too.
func ComputeAging(companyID uuid.UUID, invoices []*invoicing.Invoice, asOf time.Time) *AgingReport {
	r := &AgingReport{
		CompanyID:        companyID,
		AsOf:             asOf,
		Current:          AgingBucket{Name: BucketCurrent, Total: decimal.Zero},
		Days31to60:       AgingBucket{Name: BucketDays31to60, Total: decimal.Zero},
		Days61to90:       AgingBucket{Name: BucketDays61to90, Total: decimal.Zero},
		Over90:           AgingBucket{Name: BucketOver90, Total: decimal.Zero},
		TotalOutstanding: decimal.Zero,
	}

	for _, inv := range invoices {
		if !inv.Status.IsOutstanding() {
			continue
		}
		balance := inv.BalanceDue()
		if !balance.IsPositive() {
			continue
		}

		days := inv.DaysOverdue(asOf)
		line := AgingLine{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			ClientID:      inv.ClientID,
			ClientName:    inv.ClientName,
			DueDate:       inv.DueDate,
			DaysPastDue:   days,
			BalanceDue:    balance,
			Bucket:        BucketFor(days),
		}

		bucket := r.bucket(line.Bucket)
		bucket.Lines = append(bucket.Lines, line)
		bucket.Total = bucket.Total.Add(balance)
		r.TotalOutstanding = r.TotalOutstanding.Add(balance)
	}

	return r
}

func (r *AgingReport) bucket(name AgingBucketName) *AgingBucket {
	switch name {
	case BucketDays31to60:
		return &r.Days31to60
	case BucketDays61to90:
		return &r.Days61to90
	case BucketOver90:
		return &r.Over90
	default:
		return &r.Current
	}
}
