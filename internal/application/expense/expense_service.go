package expense

import (
	"context"
	"errors"
	"time"

	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/expenseally/backend/internal/domain/shared/recurrence"
	"github.com/expenseally/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseService provides application-level expense operations
type ExpenseService struct {
	expenseRepo    expense.ExpenseRepository
	categoryRepo   expense.CategoryRepository
	userRepo       company.UserRepository
	eventPublisher shared.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo expense.ExpenseRepository,
	categoryRepo expense.CategoryRepository,
	userRepo company.UserRepository,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		userRepo:     userRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ExpenseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ===================== DTOs =====================

// CreateExpenseRequest represents a request to create an expense
type CreateExpenseRequest struct {
	CategoryID    uuid.UUID       `json:"category_id" binding:"required"`
	Description   string          `json:"description" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Currency      string          `json:"currency"`
	ExpenseDate   time.Time       `json:"expense_date" binding:"required"`
	Vendor        string          `json:"vendor"`
	Method        string          `json:"method"`
	TaxDeductible bool            `json:"tax_deductible"`
	ReceiptURL    string          `json:"receipt_url"`
	Notes         string          `json:"notes"`
	CreatedBy     *uuid.UUID      `json:"-"` // Set from JWT context, not from request body
}

// UpdateExpenseRequest represents a request to update an unapproved expense
type UpdateExpenseRequest struct {
	CategoryID    *uuid.UUID       `json:"category_id"`
	Description   *string          `json:"description"`
	Amount        *decimal.Decimal `json:"amount"`
	ExpenseDate   *time.Time       `json:"expense_date"`
	Vendor        *string          `json:"vendor"`
	Method        *string          `json:"method"`
	TaxDeductible *bool            `json:"tax_deductible"`
	Notes         *string          `json:"notes"`
}

// EnableRecurringExpenseRequest puts an expense on a generation schedule
type EnableRecurringExpenseRequest struct {
	Frequency string     `json:"frequency" binding:"required"`
	FirstDate *time.Time `json:"first_date"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID                 uuid.UUID       `json:"id"`
	CompanyID          uuid.UUID       `json:"company_id"`
	CategoryID         uuid.UUID       `json:"category_id"`
	CategoryName       string          `json:"category_name,omitempty"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	ExpenseDate        time.Time       `json:"expense_date"`
	Vendor             string          `json:"vendor,omitempty"`
	Method             string          `json:"method,omitempty"`
	TaxDeductible      bool            `json:"tax_deductible"`
	Approved           bool            `json:"approved"`
	ApprovedBy         *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovalDate       *time.Time      `json:"approval_date,omitempty"`
	ReceiptURL         string          `json:"receipt_url,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	IsRecurring        bool            `json:"is_recurring"`
	RecurringFrequency string          `json:"recurring_frequency,omitempty"`
	NextRecurringDate  *time.Time      `json:"next_recurring_date,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

// ExpenseListFilter defines filtering options for expense list queries
type ExpenseListFilter struct {
	CategoryID    *uuid.UUID `form:"category_id"`
	From          *time.Time `form:"from"`
	To            *time.Time `form:"to"`
	Approved      *bool      `form:"approved"`
	TaxDeductible *bool      `form:"tax_deductible"`
	IsRecurring   *bool      `form:"is_recurring"`
	Search        string     `form:"search"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
}

// ExpenseListResponse represents a paginated expense list
type ExpenseListResponse struct {
	Items      []ExpenseResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ===================== Operations =====================

// Create records a new unapproved expense
func (s *ExpenseService) Create(ctx context.Context, companyID uuid.UUID, req CreateExpenseRequest) (*ExpenseResponse, error) {
	cat, err := s.categoryRepo.FindByIDForCompany(ctx, req.CategoryID, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Expense category not found")
		}
		return nil, err
	}
	if !cat.IsActive {
		return nil, shared.NewDomainError("CATEGORY_INACTIVE", "Cannot book expenses against an inactive category")
	}

	exp, err := expense.NewExpense(expense.NewExpenseParams{
		CompanyID:     companyID,
		CategoryID:    cat.ID,
		Description:   req.Description,
		Amount:        req.Amount,
		Currency:      valueobject.Currency(req.Currency),
		ExpenseDate:   req.ExpenseDate,
		Vendor:        req.Vendor,
		Method:        expense.PaymentMethod(req.Method),
		TaxDeductible: req.TaxDeductible,
		Notes:         req.Notes,
		CreatedBy:     req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}
	if req.ReceiptURL != "" {
		if err := exp.AttachReceipt(req.ReceiptURL); err != nil {
			return nil, err
		}
	}

	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, exp)

	resp := toExpenseResponse(exp)
	resp.CategoryName = cat.Name
	return resp, nil
}

// GetByID retrieves an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, companyID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	exp, err := s.findExpense(ctx, companyID, expenseID)
	if err != nil {
		return nil, err
	}
	return toExpenseResponse(exp), nil
}

// List returns a paginated list of expenses for a company
func (s *ExpenseService) List(ctx context.Context, companyID uuid.UUID, filter ExpenseListFilter) (*ExpenseListResponse, error) {
	domainFilter := expense.ExpenseFilter{
		Filter:        shared.DefaultFilter(),
		CategoryID:    filter.CategoryID,
		From:          filter.From,
		To:            filter.To,
		Approved:      filter.Approved,
		TaxDeductible: filter.TaxDeductible,
		IsRecurring:   filter.IsRecurring,
		Search:        filter.Search,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	page, err := s.expenseRepo.FindForCompany(ctx, companyID, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]ExpenseResponse, 0, len(page.Items))
	for _, exp := range page.Items {
		items = append(items, *toExpenseResponse(exp))
	}
	return &ExpenseListResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Update edits an expense. Approved expenses are immutable until
// approval is revoked.
func (s *ExpenseService) Update(ctx context.Context, companyID, expenseID uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	exp, err := s.findExpense(ctx, companyID, expenseID)
	if err != nil {
		return nil, err
	}

	categoryID := exp.CategoryID
	if req.CategoryID != nil {
		cat, err := s.categoryRepo.FindByIDForCompany(ctx, *req.CategoryID, companyID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "Expense category not found")
			}
			return nil, err
		}
		categoryID = cat.ID
	}

	description := exp.Description
	if req.Description != nil {
		description = *req.Description
	}
	amount := exp.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}
	expenseDate := exp.ExpenseDate
	if req.ExpenseDate != nil {
		expenseDate = *req.ExpenseDate
	}
	vendor := exp.Vendor
	if req.Vendor != nil {
		vendor = *req.Vendor
	}
	method := exp.Method
	if req.Method != nil {
		method = expense.PaymentMethod(*req.Method)
	}

	if err := exp.Update(categoryID, description, amount, expenseDate, vendor, method); err != nil {
		return nil, err
	}
	if req.TaxDeductible != nil {
		exp.SetTaxDeductible(*req.TaxDeductible)
	}
	if req.Notes != nil {
		exp.Notes = *req.Notes
	}

	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		return nil, err
	}
	return toExpenseResponse(exp), nil
}

// Approve marks an expense as approved by the given user. Only owners
// and accountants may approve; a second approval is rejected so the
// original approval record is never overwritten.
func (s *ExpenseService) Approve(ctx context.Context, companyID, expenseID, approverID uuid.UUID) (*ExpenseResponse, error) {
	approver, err := s.userRepo.FindByID(ctx, approverID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Approver not found")
		}
		return nil, err
	}
	if approver.CompanyID != companyID {
		return nil, shared.NewDomainError("NOT_FOUND", "Approver not found")
	}
	if !approver.Role.CanApproveExpenses() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only owners and accountants can approve expenses")
	}

	exp, err := s.findExpense(ctx, companyID, expenseID)
	if err != nil {
		return nil, err
	}

	if err := exp.Approve(approverID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, exp)
	return toExpenseResponse(exp), nil
}

// RevokeApproval clears an expense's approval so it can be edited again
func (s *ExpenseService) RevokeApproval(ctx context.Context, companyID, expenseID, actorID uuid.UUID) (*ExpenseResponse, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return nil, err
	}
	if actor.CompanyID != companyID {
		return nil, shared.NewDomainError("NOT_FOUND", "User not found")
	}
	if !actor.Role.CanApproveExpenses() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only owners and accountants can revoke approvals")
	}

	exp, err := s.findExpense(ctx, companyID, expenseID)
	if err != nil {
		return nil, err
	}

	if err := exp.RevokeApproval(); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		return nil, err
	}
	return toExpenseResponse(exp), nil
}

// AttachReceipt links a stored receipt document to an expense
func (s *ExpenseService) AttachReceipt(ctx context.Context, companyID, expenseID uuid.UUID, url string) (*ExpenseResponse, error) {
	exp, err := s.findExpense(ctx, companyID, expenseID)
	if err != nil {
		return nil, err
	}
	if err := exp.AttachReceipt(url); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		return nil, err
	}
	return toExpenseResponse(exp), nil
}

// EnableRecurring puts an expense on a recurring generation schedule
func (s *ExpenseService) EnableRecurring(ctx context.Context, companyID, expenseID uuid.UUID, req EnableRecurringExpenseRequest) (*ExpenseResponse, error) {
	exp, err := s.findExpense(ctx, companyID, expenseID)
	if err != nil {
		return nil, err
	}

	firstDate := time.Now()
	if req.FirstDate != nil {
		firstDate = *req.FirstDate
	}
	if err := exp.EnableRecurring(recurrence.Frequency(req.Frequency), firstDate); err != nil {
		return nil, err
	}

	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		return nil, err
	}
	return toExpenseResponse(exp), nil
}

// DisableRecurring takes an expense off its recurring schedule
func (s *ExpenseService) DisableRecurring(ctx context.Context, companyID, expenseID uuid.UUID) (*ExpenseResponse, error) {
	exp, err := s.findExpense(ctx, companyID, expenseID)
	if err != nil {
		return nil, err
	}

	exp.DisableRecurring()

	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		return nil, err
	}
	return toExpenseResponse(exp), nil
}

// Delete removes an unapproved expense
func (s *ExpenseService) Delete(ctx context.Context, companyID, expenseID uuid.UUID) error {
	exp, err := s.findExpense(ctx, companyID, expenseID)
	if err != nil {
		return err
	}
	if exp.IsApproved() {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete an approved expense")
	}
	return s.expenseRepo.Delete(ctx, exp.ID)
}

// ===================== Helpers =====================

func (s *ExpenseService) findExpense(ctx context.Context, companyID, expenseID uuid.UUID) (*expense.Expense, error) {
	exp, err := s.expenseRepo.FindByIDForCompany(ctx, expenseID, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Expense not found")
		}
		return nil, err
	}
	return exp, nil
}

func (s *ExpenseService) publishEvents(ctx context.Context, exp *expense.Expense) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range exp.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			continue
		}
	}
	exp.ClearDomainEvents()
}

func toExpenseResponse(exp *expense.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:                 exp.ID,
		CompanyID:          exp.CompanyID,
		CategoryID:         exp.CategoryID,
		Description:        exp.Description,
		Amount:             exp.Amount,
		Currency:           string(exp.Currency),
		ExpenseDate:        exp.ExpenseDate,
		Vendor:             exp.Vendor,
		Method:             string(exp.Method),
		TaxDeductible:      exp.TaxDeductible,
		Approved:           exp.IsApproved(),
		ApprovedBy:         exp.ApprovedBy,
		ApprovalDate:       exp.ApprovalDate,
		ReceiptURL:         exp.ReceiptURL,
		Notes:              exp.Notes,
		IsRecurring:        exp.IsRecurring,
		RecurringFrequency: string(exp.RecurringFrequency),
		NextRecurringDate:  exp.NextRecurringDate,
		CreatedAt:          exp.CreatedAt,
		UpdatedAt:          exp.UpdatedAt,
		Version:            exp.Version,
	}
}
