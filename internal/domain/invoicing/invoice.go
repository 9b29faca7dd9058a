package invoicing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/expenseally/backend/internal/domain/shared/recurrence"
	"github.com/expenseally/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"          // Being edited, not yet sent
	InvoiceStatusSent          InvoiceStatus = "SENT"           // Delivered to the client, awaiting payment
	InvoiceStatusPaid          InvoiceStatus = "PAID"           // Fully paid
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID" // Some payment received, balance outstanding
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"        // Past due date without full payment
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"      // Voided
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusPartiallyPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// IsOutstanding returns true if the invoice still carries a balance a
// client is expected to pay
func (s InvoiceStatus) IsOutstanding() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusPartiallyPaid || s == InvoiceStatusOverdue
}

// CanRecordPayment returns true if payments can be recorded in this status
func (s InvoiceStatus) CanRecordPayment() bool {
	return s.IsOutstanding()
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodBankTransfer,
		PaymentMethodCreditCard, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentStatus represents the status of a payment record
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED" // Negative-amount record referencing the refunded payment
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusCancelled:
		return true
	}
	return false
}

// CountsTowardBalance returns true if records in this status roll into
// the invoice's amount paid. Refund records carry negative amounts, so
// including them subtracts the refunded value.
func (s PaymentStatus) CountsTowardBalance() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusRefunded
}

// InvoiceItem is a line item owned by an invoice.
// It is a value object within the Invoice aggregate, stored as JSONB.
type InvoiceItem struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"` // Percentage, e.g. 10 for 10%
	Total       decimal.Decimal `json:"total"`    // quantity * unit_price * (1 + tax_rate/100)
}

// ItemInput carries the caller-supplied fields for a line item
type ItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
}

// NewInvoiceItem creates a line item, computing its total
func NewInvoiceItem(in ItemInput) (*InvoiceItem, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if in.Quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item quantity cannot be negative")
	}
	if in.UnitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item unit price cannot be negative")
	}
	if in.TaxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item tax rate cannot be negative")
	}

	return &InvoiceItem{
		ID:          uuid.New(),
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		TaxRate:     in.TaxRate,
		Total:       itemTotal(in.Quantity, in.UnitPrice, in.TaxRate),
	}, nil
}

// itemTotal computes quantity * unit_price * (1 + tax_rate/100), rounded to cents
func itemTotal(quantity, unitPrice, taxRate decimal.Decimal) decimal.Decimal {
	base := quantity.Mul(unitPrice)
	factor := decimal.NewFromInt(1).Add(taxRate.Div(decimal.NewFromInt(100)))
	return base.Mul(factor).Round(2)
}

// InvoiceItems is a slice of InvoiceItem that implements GORM Scanner/Valuer for JSONB storage
type InvoiceItems []InvoiceItem

// Value implements driver.Valuer for GORM to store as JSONB
func (it InvoiceItems) Value() (driver.Value, error) {
	if it == nil {
		return "[]", nil
	}
	return json.Marshal(it)
}

// Scan implements sql.Scanner for GORM to read from JSONB
func (it *InvoiceItems) Scan(value interface{}) error {
	if value == nil {
		*it = InvoiceItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceItems: unsupported type")
	}

	if len(bytes) == 0 {
		*it = InvoiceItems{}
		return nil
	}

	return json.Unmarshal(bytes, it)
}

// PaymentRecord represents a payment event applied against an invoice.
// It is a value object within the Invoice aggregate, stored as JSONB.
// Refunds are negative-amount records with status REFUNDED that reference
// the original payment through RefundOf.
type PaymentRecord struct {
	ID              uuid.UUID       `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	Method          PaymentMethod   `json:"method"`
	Status          PaymentStatus   `json:"status"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	ProcessedBy     *uuid.UUID      `json:"processed_by,omitempty"`
	RefundOf        *uuid.UUID      `json:"refund_of,omitempty"`
}

// IsRefund returns true if this record is a refund against another payment
func (p *PaymentRecord) IsRefund() bool {
	return p.Status == PaymentStatusRefunded && p.RefundOf != nil
}

// PaymentRecords is a slice of PaymentRecord that implements GORM Scanner/Valuer for JSONB storage
type PaymentRecords []PaymentRecord

// Value implements driver.Valuer for GORM to store as JSONB
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for GORM to read from JSONB
func (p *PaymentRecords) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentRecords{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Invoice is the aggregate root for the invoicing subsystem. It owns its
// line items and payment records; totals and status are derived state
// that every mutation entry point recomputes before returning.
type Invoice struct {
	shared.CompanyAggregateRoot
	InvoiceNumber string        `json:"invoice_number"`
	ClientID      uuid.UUID     `json:"client_id"`
	ClientName    string        `json:"client_name"`
	Status        InvoiceStatus `json:"status"`
	IssueDate     time.Time     `json:"issue_date"`
	DueDate       time.Time     `json:"due_date"`

	Currency    valueobject.Currency `json:"currency"`
	Subtotal    decimal.Decimal      `json:"subtotal"`
	TaxRate     decimal.Decimal      `json:"tax_rate"` // Header-level rate applied on top of item totals
	TaxAmount   decimal.Decimal      `json:"tax_amount"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	AmountPaid  decimal.Decimal      `json:"amount_paid"`

	Items    InvoiceItems   `json:"items"`
	Payments PaymentRecords `json:"payments"`

	Notes string `json:"notes"`
	Terms string `json:"terms"`

	IsRecurring        bool                 `json:"is_recurring"`
	RecurringFrequency recurrence.Frequency `json:"recurring_frequency,omitempty"`
	NextRecurringDate  *time.Time           `json:"next_recurring_date,omitempty"`

	SentAt      *time.Time `json:"sent_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	LastReminderSent *time.Time `json:"last_reminder_sent,omitempty"`
	ReminderCount    int        `json:"reminder_count"`
}

// NewInvoiceParams carries the inputs for creating an invoice
type NewInvoiceParams struct {
	CompanyID     uuid.UUID
	ClientID      uuid.UUID
	ClientName    string
	InvoiceNumber string
	IssueDate     time.Time
	DueDate       time.Time
	Currency      valueobject.Currency
	TaxRate       decimal.Decimal
	Notes         string
	Terms         string
	CreatedBy     *uuid.UUID
}

// TableName returns the database table name for invoices
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new draft invoice with no items
func NewInvoice(p NewInvoiceParams) (*Invoice, error) {
	if p.InvoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(p.InvoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if p.ClientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if p.ClientName == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if p.DueDate.Before(p.IssueDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}
	if p.TaxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	currency := p.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Unsupported currency %q", currency))
	}

	root := shared.NewCompanyAggregateRoot(p.CompanyID)
	if p.CreatedBy != nil {
		root.SetCreatedBy(*p.CreatedBy)
	}

	inv := &Invoice{
		CompanyAggregateRoot: root,
		InvoiceNumber:        p.InvoiceNumber,
		ClientID:             p.ClientID,
		ClientName:           p.ClientName,
		Status:               InvoiceStatusDraft,
		IssueDate:            p.IssueDate,
		DueDate:              p.DueDate,
		Currency:             currency,
		Subtotal:             decimal.Zero,
		TaxRate:              p.TaxRate,
		TaxAmount:            decimal.Zero,
		TotalAmount:          decimal.Zero,
		AmountPaid:           decimal.Zero,
		Items:                InvoiceItems{},
		Payments:             PaymentRecords{},
		Notes:                p.Notes,
		Terms:                p.Terms,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// ReplaceItems swaps the invoice's line items for the given set and
// recomputes totals. This is the single entry point for item edits so the
// totals invariant holds immediately after the call.
func (inv *Invoice) ReplaceItems(inputs []ItemInput) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit items of a %s invoice", inv.Status))
	}

	items := make(InvoiceItems, 0, len(inputs))
	for _, in := range inputs {
		item, err := NewInvoiceItem(in)
		if err != nil {
			return err
		}
		items = append(items, *item)
	}

	inv.Items = items
	inv.recompute()
	inv.touch()
	return nil
}

// AddItem appends a single line item and recomputes totals
func (inv *Invoice) AddItem(in ItemInput) (*InvoiceItem, error) {
	if inv.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit items of a %s invoice", inv.Status))
	}

	item, err := NewInvoiceItem(in)
	if err != nil {
		return nil, err
	}
	inv.Items = append(inv.Items, *item)
	inv.recompute()
	inv.touch()
	return item, nil
}

// RemoveItem deletes a line item by ID and recomputes totals
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit items of a %s invoice", inv.Status))
	}

	for i, item := range inv.Items {
		if item.ID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			inv.recompute()
			inv.touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// MarkSent transitions a draft invoice to SENT
func (inv *Invoice) MarkSent(now time.Time) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Only draft invoices can be sent, invoice is %s", inv.Status))
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("EMPTY_INVOICE", "Cannot send an invoice with no items")
	}

	inv.Status = InvoiceStatusSent
	inv.SentAt = &now
	inv.touch()
	inv.AddDomainEvent(NewInvoiceSentEvent(inv))
	return nil
}

// RecordPaymentParams carries the inputs for recording a payment
type RecordPaymentParams struct {
	Amount          decimal.Decimal
	PaymentDate     time.Time
	Method          PaymentMethod
	TransactionID   string
	ReferenceNumber string
	Notes           string
	ProcessedBy     *uuid.UUID
}

// RecordPayment validates and applies a payment against the invoice.
// The amount paid is re-aggregated from all counting payment records
// rather than incremented, so a replayed save converges to the same value.
func (inv *Invoice) RecordPayment(p RecordPaymentParams) (*PaymentRecord, error) {
	if !inv.Status.CanRecordPayment() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment on a %s invoice", inv.Status))
	}
	if !p.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if p.Amount.GreaterThan(inv.BalanceDue()) {
		return nil, shared.NewDomainError("EXCEEDS_BALANCE_DUE",
			fmt.Sprintf("Payment amount %s exceeds balance due %s", p.Amount.StringFixed(2), inv.BalanceDue().StringFixed(2)))
	}
	if !p.Method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unsupported payment method %q", p.Method))
	}

	record := PaymentRecord{
		ID:              uuid.New(),
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		Method:          p.Method,
		Status:          PaymentStatusCompleted,
		TransactionID:   p.TransactionID,
		ReferenceNumber: p.ReferenceNumber,
		Notes:           p.Notes,
		ProcessedBy:     p.ProcessedBy,
	}
	inv.Payments = append(inv.Payments, record)

	inv.reaggregatePayments()
	inv.deriveStatus(p.PaymentDate)
	inv.touch()

	if inv.Status == InvoiceStatusPaid {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else {
		inv.AddDomainEvent(NewInvoicePartiallyPaidEvent(inv, record.Amount))
	}

	return &record, nil
}

// RefundPayment creates a negative-amount REFUNDED record against an
// earlier payment. The refund cannot exceed what remains refundable on
// the original payment.
func (inv *Invoice) RefundPayment(paymentID uuid.UUID, amount decimal.Decimal, reason string, processedBy *uuid.UUID) (*PaymentRecord, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}

	original := inv.findPayment(paymentID)
	if original == nil || original.Status != PaymentStatusCompleted {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Original payment not found or not completed")
	}

	refundable := original.Amount.Sub(inv.refundedAgainst(paymentID))
	if amount.GreaterThan(refundable) {
		return nil, shared.NewDomainError("EXCEEDS_REFUNDABLE",
			fmt.Sprintf("Refund amount %s exceeds refundable amount %s", amount.StringFixed(2), refundable.StringFixed(2)))
	}

	now := time.Now()
	record := PaymentRecord{
		ID:          uuid.New(),
		Amount:      amount.Neg(),
		PaymentDate: now,
		Method:      original.Method,
		Status:      PaymentStatusRefunded,
		Notes:       reason,
		ProcessedBy: processedBy,
		RefundOf:    &paymentID,
	}
	inv.Payments = append(inv.Payments, record)

	inv.reaggregatePayments()
	if inv.AmountPaid.IsZero() {
		// Balance fully restored; the invoice goes back out for collection
		inv.Status = InvoiceStatusSent
		inv.PaidAt = nil
		inv.deriveStatus(now)
	} else if inv.AmountPaid.LessThan(inv.TotalAmount) {
		inv.Status = InvoiceStatusPartiallyPaid
		inv.PaidAt = nil
	}
	inv.touch()
	inv.AddDomainEvent(NewPaymentRefundedEvent(inv, paymentID, amount))

	return &record, nil
}

// Void cancels the invoice and records an audit line in its notes.
// Paid invoices cannot be voided.
func (inv *Invoice) Void(reason, actor string, now time.Time) error {
	if inv.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Cannot void a paid invoice")
	}
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	}

	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	audit := fmt.Sprintf("Voided on %s by %s. Reason: %s", now.Format("2006-01-02 15:04"), actor, reason)
	if inv.Notes == "" {
		inv.Notes = audit
	} else {
		inv.Notes = inv.Notes + "\n" + audit
	}
	inv.touch()
	inv.AddDomainEvent(NewInvoiceVoidedEvent(inv, reason))
	return nil
}

// SweepOverdue transitions an outstanding invoice to OVERDUE when its due
// date has passed. Returns true if the status changed.
func (inv *Invoice) SweepOverdue(today time.Time) bool {
	if inv.Status != InvoiceStatusSent && inv.Status != InvoiceStatusPartiallyPaid {
		return false
	}
	if !dateBefore(inv.DueDate, today) {
		return false
	}

	inv.Status = InvoiceStatusOverdue
	inv.touch()
	inv.AddDomainEvent(NewInvoiceOverdueEvent(inv, inv.DaysOverdue(today)))
	return true
}

// EnableRecurring marks the invoice as a recurring template
func (inv *Invoice) EnableRecurring(freq recurrence.Frequency, firstDate time.Time) error {
	if !freq.IsValid() {
		return shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Unsupported recurring frequency %q", freq))
	}
	inv.IsRecurring = true
	inv.RecurringFrequency = freq
	inv.NextRecurringDate = &firstDate
	inv.touch()
	return nil
}

// DisableRecurring stops further generation from this invoice
func (inv *Invoice) DisableRecurring() {
	inv.IsRecurring = false
	inv.NextRecurringDate = nil
	inv.touch()
}

// AdvanceRecurringSchedule moves the next generation date past today.
// Persisting the advanced date before results are visible is what makes
// the daily generation job idempotent per day.
func (inv *Invoice) AdvanceRecurringSchedule(today time.Time) error {
	if !inv.IsRecurring || inv.NextRecurringDate == nil {
		return shared.NewDomainError("NOT_RECURRING", "Invoice is not a recurring template")
	}
	next := inv.RecurringFrequency.NextAfter(*inv.NextRecurringDate, today)
	inv.NextRecurringDate = &next
	inv.touch()
	return nil
}

// CloneForRecurrence produces a new draft invoice copying the template's
// commercial fields and line items, dated today.
func (inv *Invoice) CloneForRecurrence(invoiceNumber string, today, dueDate time.Time) (*Invoice, error) {
	clone, err := NewInvoice(NewInvoiceParams{
		CompanyID:     inv.CompanyID,
		ClientID:      inv.ClientID,
		ClientName:    inv.ClientName,
		InvoiceNumber: invoiceNumber,
		IssueDate:     today,
		DueDate:       dueDate,
		Currency:      inv.Currency,
		TaxRate:       inv.TaxRate,
		Notes:         inv.Notes,
		Terms:         inv.Terms,
		CreatedBy:     inv.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	inputs := make([]ItemInput, 0, len(inv.Items))
	for _, item := range inv.Items {
		inputs = append(inputs, ItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
		})
	}
	if err := clone.ReplaceItems(inputs); err != nil {
		return nil, err
	}
	return clone, nil
}

// SetDueDate updates the due date of a non-terminal invoice
func (inv *Invoice) SetDueDate(dueDate time.Time) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify due date in a terminal state")
	}
	if dueDate.Before(inv.IssueDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}
	inv.DueDate = dueDate
	inv.touch()
	return nil
}

// SetTaxRate updates the header tax rate and recomputes totals
func (inv *Invoice) SetTaxRate(rate decimal.Decimal) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify tax rate in a terminal state")
	}
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	inv.TaxRate = rate
	inv.recompute()
	inv.touch()
	return nil
}

// BalanceDue returns total_amount - amount_paid
func (inv *Invoice) BalanceDue() decimal.Decimal {
	return inv.TotalAmount.Sub(inv.AmountPaid)
}

// IsOverdue returns true if the invoice is outstanding past its due date
func (inv *Invoice) IsOverdue(today time.Time) bool {
	return inv.Status.IsOutstanding() && dateBefore(inv.DueDate, today)
}

// DaysOverdue returns the whole days past the due date (0 if not past due)
func (inv *Invoice) DaysOverdue(today time.Time) int {
	days := daysBetween(inv.DueDate, today)
	if days < 0 {
		return 0
	}
	return days
}

// DaysOutstanding returns the whole days since the due date, which may be
// negative for invoices not yet due. Aging buckets are keyed off this.
func (inv *Invoice) DaysOutstanding(asOf time.Time) int {
	return daysBetween(inv.DueDate, asOf)
}

// LateFee computes the accumulated late fee for an overdue invoice.
// The monthly rate is prorated daily over 30 days.
func (inv *Invoice) LateFee(monthlyRate decimal.Decimal, today time.Time) decimal.Decimal {
	if !inv.IsOverdue(today) || monthlyRate.IsZero() {
		return decimal.Zero
	}
	daysOverdue := decimal.NewFromInt(int64(inv.DaysOverdue(today)))
	dailyRate := monthlyRate.Div(decimal.NewFromInt(30))
	return inv.TotalAmount.Mul(dailyRate).Mul(daysOverdue).Round(2)
}

// recompute recalculates subtotal, tax and total from the line items and
// re-derives the status. Call after every item or rate mutation.
func (inv *Invoice) recompute() {
	subtotal := decimal.Zero
	for _, item := range inv.Items {
		subtotal = subtotal.Add(item.Total)
	}
	inv.Subtotal = subtotal
	inv.TaxAmount = subtotal.Mul(inv.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	inv.TotalAmount = inv.Subtotal.Add(inv.TaxAmount)
	inv.deriveStatus(time.Now())
}

// reaggregatePayments recomputes amount_paid as the sum over all payment
// records that count toward the balance
func (inv *Invoice) reaggregatePayments() {
	total := decimal.Zero
	for _, p := range inv.Payments {
		if p.Status.CountsTowardBalance() {
			total = total.Add(p.Amount)
		}
	}
	inv.AmountPaid = total
}

// deriveStatus applies the status transition rule from the current
// payment state: paid in full wins, then partial, then overdue detection
// for sent invoices; otherwise the status is left unchanged.
func (inv *Invoice) deriveStatus(today time.Time) {
	if inv.Status == InvoiceStatusDraft || inv.Status == InvoiceStatusCancelled {
		return
	}

	switch {
	case inv.TotalAmount.IsPositive() && inv.AmountPaid.GreaterThanOrEqual(inv.TotalAmount):
		if inv.Status != InvoiceStatusPaid {
			inv.Status = InvoiceStatusPaid
			paidAt := today
			inv.PaidAt = &paidAt
		}
	case inv.AmountPaid.IsPositive():
		inv.Status = InvoiceStatusPartiallyPaid
	case inv.Status == InvoiceStatusSent && dateBefore(inv.DueDate, today):
		inv.Status = InvoiceStatusOverdue
	}
}

// findPayment returns the payment record with the given ID, or nil
func (inv *Invoice) findPayment(id uuid.UUID) *PaymentRecord {
	for i := range inv.Payments {
		if inv.Payments[i].ID == id {
			return &inv.Payments[i]
		}
	}
	return nil
}

// refundedAgainst sums the absolute refund amounts already applied
// against the given payment
func (inv *Invoice) refundedAgainst(paymentID uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, p := range inv.Payments {
		if p.IsRefund() && *p.RefundOf == paymentID {
			total = total.Add(p.Amount.Abs())
		}
	}
	return total
}

// touch bumps the updated timestamp and optimistic-locking version
func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// dateBefore compares two times by calendar date only
func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC).Before(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC))
}

// daysBetween returns whole calendar days from a to b (negative if b is earlier)
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
