package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/expenseally/backend/internal/domain/shared/recurrence"
	"github.com/expenseally/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how an expense was paid
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

// Expense represents money spent by a company. It is the aggregate root
// for expense tracking; approval state and the recurring schedule live
// on the record itself.
type Expense struct {
	shared.CompanyAggregateRoot
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency    valueobject.Currency
	ExpenseDate time.Time     `gorm:"not null;index"`
	Vendor      string        `gorm:"type:varchar(200)"`
	Method      PaymentMethod `gorm:"type:varchar(20);not null"`

	TaxDeductible bool `gorm:"not null;default:false"`

	// ApprovedBy and ApprovalDate are set together; an expense with both
	// nil is unapproved.
	ApprovedBy   *uuid.UUID `gorm:"type:uuid"`
	ApprovalDate *time.Time

	ReceiptURL string `gorm:"type:varchar(500)"`
	Notes      string `gorm:"type:text"`

	IsRecurring        bool                 `gorm:"not null;default:false"`
	RecurringFrequency recurrence.Frequency `gorm:"type:varchar(20)"`
	NextRecurringDate  *time.Time
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "expenses"
}

// NewExpenseParams carries the inputs for recording an expense
type NewExpenseParams struct {
	CompanyID     uuid.UUID
	CategoryID    uuid.UUID
	Description   string
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	ExpenseDate   time.Time
	Vendor        string
	Method        PaymentMethod
	TaxDeductible bool
	Notes         string
	CreatedBy     *uuid.UUID
}

// NewExpense creates a new unapproved expense
func NewExpense(p NewExpenseParams) (*Expense, error) {
	if p.CategoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category ID cannot be empty")
	}
	if strings.TrimSpace(p.Description) == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(p.Description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if !p.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if !p.Method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unsupported payment method %q", p.Method))
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

	exp := &Expense{
		CompanyAggregateRoot: root,
		CategoryID:           p.CategoryID,
		Description:          p.Description,
		Amount:               p.Amount.Round(2),
		Currency:             currency,
		ExpenseDate:          p.ExpenseDate,
		Vendor:               p.Vendor,
		Method:               p.Method,
		TaxDeductible:        p.TaxDeductible,
		Notes:                p.Notes,
	}

	exp.AddDomainEvent(NewExpenseCreatedEvent(exp))

	return exp, nil
}

// Update updates the expense details. Approved expenses are immutable.
func (e *Expense) Update(categoryID uuid.UUID, description string, amount decimal.Decimal, expenseDate time.Time, vendor string, method PaymentMethod) error {
	if e.IsApproved() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify an approved expense")
	}
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category ID cannot be empty")
	}
	if strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unsupported payment method %q", method))
	}

	e.CategoryID = categoryID
	e.Description = description
	e.Amount = amount.Round(2)
	e.ExpenseDate = expenseDate
	e.Vendor = vendor
	e.Method = method
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// Approve marks the expense approved by the given user. Approving an
// already-approved expense is rejected so the original approval record
// is never overwritten.
func (e *Expense) Approve(approvedBy uuid.UUID, now time.Time) error {
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Approver user ID cannot be empty")
	}
	if e.IsApproved() {
		return shared.NewDomainError("ALREADY_APPROVED", "Expense is already approved")
	}

	e.ApprovedBy = &approvedBy
	e.ApprovalDate = &now
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewExpenseApprovedEvent(e))

	return nil
}

// RevokeApproval clears the approval, returning the expense to editable state
func (e *Expense) RevokeApproval() error {
	if !e.IsApproved() {
		return shared.NewDomainError("NOT_APPROVED", "Expense is not approved")
	}

	e.ApprovedBy = nil
	e.ApprovalDate = nil
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// IsApproved returns true if the expense has been approved
func (e *Expense) IsApproved() bool {
	return e.ApprovedBy != nil && e.ApprovalDate != nil
}

// SetTaxDeductible flags the expense for the tax report
func (e *Expense) SetTaxDeductible(deductible bool) {
	e.TaxDeductible = deductible
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

// AttachReceipt stores the URL of an uploaded receipt
func (e *Expense) AttachReceipt(url string) error {
	if url == "" {
		return shared.NewDomainError("INVALID_RECEIPT", "Receipt URL cannot be empty")
	}
	if len(url) > 500 {
		return shared.NewDomainError("INVALID_RECEIPT", "Receipt URL cannot exceed 500 characters")
	}

	e.ReceiptURL = url
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// EnableRecurring marks the expense as a recurring template
func (e *Expense) EnableRecurring(freq recurrence.Frequency, firstDate time.Time) error {
	if !freq.IsValid() {
		return shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Unsupported recurring frequency %q", freq))
	}

	e.IsRecurring = true
	e.RecurringFrequency = freq
	e.NextRecurringDate = &firstDate
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// DisableRecurring stops further generation from this expense
func (e *Expense) DisableRecurring() {
	e.IsRecurring = false
	e.NextRecurringDate = nil
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

// AdvanceRecurringSchedule moves the next generation date past today
func (e *Expense) AdvanceRecurringSchedule(today time.Time) error {
	if !e.IsRecurring || e.NextRecurringDate == nil {
		return shared.NewDomainError("NOT_RECURRING", "Expense is not a recurring template")
	}

	next := e.RecurringFrequency.NextAfter(*e.NextRecurringDate, today)
	e.NextRecurringDate = &next
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// CloneForRecurrence produces a new unapproved expense copying the
// template's fields, dated today
func (e *Expense) CloneForRecurrence(today time.Time) (*Expense, error) {
	return NewExpense(NewExpenseParams{
		CompanyID:     e.CompanyID,
		CategoryID:    e.CategoryID,
		Description:   e.Description,
		Amount:        e.Amount,
		Currency:      e.Currency,
		ExpenseDate:   today,
		Vendor:        e.Vendor,
		Method:        e.Method,
		TaxDeductible: e.TaxDeductible,
		Notes:         e.Notes,
		CreatedBy:     e.CreatedBy,
	})
}
