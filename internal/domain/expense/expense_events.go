package expense

import (
	"time"

	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCreatedEvent is raised when an expense is recorded
type ExpenseCreatedEvent struct {
	shared.BaseDomainEvent
	ExpenseID   uuid.UUID       `json:"expense_id"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expense_date"`
}

// EventType returns the event type name
func (e *ExpenseCreatedEvent) EventType() string {
	return "ExpenseCreated"
}

// NewExpenseCreatedEvent creates a new ExpenseCreatedEvent
func NewExpenseCreatedEvent(exp *Expense) *ExpenseCreatedEvent {
	return &ExpenseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseCreated", "Expense", exp.ID, exp.CompanyID),
		ExpenseID:       exp.ID,
		CategoryID:      exp.CategoryID,
		Description:     exp.Description,
		Amount:          exp.Amount,
		ExpenseDate:     exp.ExpenseDate,
	}
}

// ExpenseApprovedEvent is raised when an expense is approved
type ExpenseApprovedEvent struct {
	shared.BaseDomainEvent
	ExpenseID  uuid.UUID       `json:"expense_id"`
	Amount     decimal.Decimal `json:"amount"`
	ApprovedBy uuid.UUID       `json:"approved_by"`
	ApprovedAt time.Time       `json:"approved_at"`
}

// EventType returns the event type name
func (e *ExpenseApprovedEvent) EventType() string {
	return "ExpenseApproved"
}

// NewExpenseApprovedEvent creates a new ExpenseApprovedEvent
func NewExpenseApprovedEvent(exp *Expense) *ExpenseApprovedEvent {
	return &ExpenseApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseApproved", "Expense", exp.ID, exp.CompanyID),
		ExpenseID:       exp.ID,
		Amount:          exp.Amount,
		ApprovedBy:      *exp.ApprovedBy,
		ApprovedAt:      *exp.ApprovalDate,
	}
}
