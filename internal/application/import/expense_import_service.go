package importapp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/shared"
	csvimport "github.com/expenseally/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const expenseDateFormat = "2006-01-02"

// ExpenseImportRow represents a row from the expense CSV import
type ExpenseImportRow struct {
	Description   string `csv:"description"`
	Amount        string `csv:"amount"`
	Date          string `csv:"date"`
	Category      string `csv:"category"`
	Vendor        string `csv:"vendor"`
	PaymentMethod string `csv:"payment_method"`
	TaxDeductible string `csv:"tax_deductible"`
	Notes         string `csv:"notes"`
}

// ExpenseImportResult represents the result of an expense import operation
type ExpenseImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	UpdatedRows  int                  `json:"updated_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

// ExpenseImportService handles expense bulk import operations
type ExpenseImportService struct {
	expenseRepo  expense.ExpenseRepository
	categoryRepo expense.CategoryRepository
	eventBus     shared.EventPublisher
}

// NewExpenseImportService creates a new ExpenseImportService
func NewExpenseImportService(
	expenseRepo expense.ExpenseRepository,
	categoryRepo expense.CategoryRepository,
	eventBus shared.EventPublisher,
) *ExpenseImportService {
	return &ExpenseImportService{
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		eventBus:     eventBus,
	}
}

// GetValidationRules returns the validation rules for expense import
func (s *ExpenseImportService) GetValidationRules() []csvimport.FieldRule {
	return []csvimport.FieldRule{
		csvimport.Field("description").Required().String().MinLength(1).MaxLength(500).Build(),
		csvimport.Field("amount").Required().Decimal().Custom(validatePositiveAmount).Build(),
		csvimport.Field("date").Required().Date().DateFormat(expenseDateFormat).Build(),
		csvimport.Field("category").Required().String().MaxLength(100).Reference("category").Build(),
		csvimport.Field("vendor").String().MaxLength(200).Build(),
		csvimport.Field("payment_method").String().Custom(validateImportPaymentMethod).Build(),
		csvimport.Field("tax_deductible").Bool().Build(),
		csvimport.Field("notes").String().MaxLength(1000).Build(),
	}
}

// validatePositiveAmount rejects zero and negative amounts
func validatePositiveAmount(value string) error {
	if value == "" {
		return nil // will be caught by required check
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return nil // type check reports this one
	}
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

// validateImportPaymentMethod validates the payment method field
func validateImportPaymentMethod(value string) error {
	if value == "" {
		return nil // empty defaults to OTHER
	}
	if !normalizePaymentMethod(value).IsValid() {
		return fmt.Errorf("payment_method must be one of cash, check, bank_transfer, credit_card, other")
	}
	return nil
}

// normalizePaymentMethod normalizes the payment method input
func normalizePaymentMethod(value string) expense.PaymentMethod {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", "OTHER":
		return expense.PaymentMethodOther
	case "CASH":
		return expense.PaymentMethodCash
	case "CHECK":
		return expense.PaymentMethodCheck
	case "BANK_TRANSFER", "TRANSFER", "WIRE":
		return expense.PaymentMethodBankTransfer
	case "CREDIT_CARD", "CARD":
		return expense.PaymentMethodCreditCard
	default:
		return expense.PaymentMethod(strings.ToUpper(strings.TrimSpace(value)))
	}
}

// LookupCategory checks whether a category name exists for the company
func (s *ExpenseImportService) LookupCategory(ctx context.Context, companyID uuid.UUID, name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	return s.categoryRepo.ExistsByName(ctx, name, companyID)
}

// Import imports expenses from validated rows
func (s *ExpenseImportService) Import(
	ctx context.Context,
	companyID, userID uuid.UUID,
	session *csvimport.ImportSession,
	validRows []*csvimport.Row,
	conflictMode ConflictMode,
) (*ExpenseImportResult, error) {
	if session.State != csvimport.StateValidated {
		return nil, shared.NewDomainError("INVALID_STATE", "Import session must be in validated state")
	}

	if !session.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERRORS", "Cannot import session with validation errors")
	}

	session.UpdateState(csvimport.StateImporting)

	result := &ExpenseImportResult{
		TotalRows: len(validRows),
	}
	errs := csvimport.NewErrorCollection(100)

	// Resolved category names, cached per import run
	categories := map[string]uuid.UUID{}

	for _, row := range validRows {
		select {
		case <-ctx.Done():
			session.UpdateState(csvimport.StateCancelled)
			return nil, ctx.Err()
		default:
		}

		err := s.importRow(ctx, companyID, userID, row, conflictMode, categories, result, errs)
		if err != nil {
			// Critical error - stop import
			session.UpdateState(csvimport.StateFailed)
			return nil, err
		}
	}

	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()

	if result.ErrorRows > 0 {
		session.UpdateState(csvimport.StateFailed)
	} else {
		session.UpdateState(csvimport.StateCompleted)
	}

	return result, nil
}

// importRow imports a single expense row
func (s *ExpenseImportService) importRow(
	ctx context.Context,
	companyID, userID uuid.UUID,
	row *csvimport.Row,
	conflictMode ConflictMode,
	categories map[string]uuid.UUID,
	result *ExpenseImportResult,
	errs *csvimport.ErrorCollection,
) error {
	description := strings.TrimSpace(row.Get("description"))
	amountStr := strings.TrimSpace(row.Get("amount"))
	dateStr := strings.TrimSpace(row.Get("date"))
	categoryName := strings.TrimSpace(row.Get("category"))
	vendor := strings.TrimSpace(row.Get("vendor"))
	methodStr := strings.TrimSpace(row.Get("payment_method"))
	deductibleStr := strings.TrimSpace(row.Get("tax_deductible"))
	notes := strings.TrimSpace(row.Get("notes"))

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		errs.Add(csvimport.NewRowError(row.LineNumber, "amount", csvimport.ErrCodeImportInvalidType, "invalid decimal value"))
		result.ErrorRows++
		return nil
	}

	expenseDate, err := time.Parse(expenseDateFormat, dateStr)
	if err != nil {
		errs.Add(csvimport.NewRowError(row.LineNumber, "date", csvimport.ErrCodeImportInvalidType, "invalid date, expected YYYY-MM-DD"))
		result.ErrorRows++
		return nil
	}

	categoryID, err := s.resolveCategory(ctx, companyID, categoryName, categories)
	if err != nil {
		return fmt.Errorf("failed to resolve category: %w", err)
	}
	if categoryID == uuid.Nil {
		errs.Add(csvimport.NewRowErrorWithValue(row.LineNumber, "category", csvimport.ErrCodeImportReferenceNotFound,
			fmt.Sprintf("category '%s' not found", categoryName), categoryName))
		result.ErrorRows++
		return nil
	}

	taxDeductible := parseBool(deductibleStr)

	// Expenses have no natural key; a duplicate is another expense with the
	// same description, amount and date.
	existing, err := s.findDuplicate(ctx, companyID, description, amount, expenseDate)
	if err != nil {
		return fmt.Errorf("failed to check existing expense: %w", err)
	}

	if existing != nil {
		switch conflictMode {
		case ConflictModeSkip:
			result.SkippedRows++
			return nil
		case ConflictModeFail:
			errs.Add(csvimport.NewRowErrorWithValue(row.LineNumber, "description", csvimport.ErrCodeImportDuplicateInDB,
				fmt.Sprintf("expense '%s' on %s already exists", description, dateStr), description))
			result.ErrorRows++
			return nil
		case ConflictModeUpdate:
			return s.updateExistingExpense(ctx, existing, row, categoryID, description, amount, expenseDate, vendor, methodStr, taxDeductible, result, errs)
		}
	}

	exp, err := expense.NewExpense(expense.NewExpenseParams{
		CompanyID:     companyID,
		CategoryID:    categoryID,
		Description:   description,
		Amount:        amount,
		ExpenseDate:   expenseDate,
		Vendor:        vendor,
		Method:        normalizePaymentMethod(methodStr),
		TaxDeductible: taxDeductible,
		Notes:         notes,
		CreatedBy:     &userID,
	})
	if err != nil {
		errs.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error()))
		result.ErrorRows++
		return nil
	}

	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		errs.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, "failed to save expense: "+err.Error()))
		result.ErrorRows++
		return nil
	}

	s.publishEvents(ctx, exp)

	result.ImportedRows++
	return nil
}

// updateExistingExpense updates an existing expense with import data
func (s *ExpenseImportService) updateExistingExpense(
	ctx context.Context,
	exp *expense.Expense,
	row *csvimport.Row,
	categoryID uuid.UUID,
	description string,
	amount decimal.Decimal,
	expenseDate time.Time,
	vendor, methodStr string,
	taxDeductible bool,
	result *ExpenseImportResult,
	errs *csvimport.ErrorCollection,
) error {
	if err := exp.Update(categoryID, description, amount, expenseDate, vendor, normalizePaymentMethod(methodStr)); err != nil {
		errs.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error()))
		result.ErrorRows++
		return nil
	}
	exp.SetTaxDeductible(taxDeductible)

	if err := s.expenseRepo.Save(ctx, exp); err != nil {
		errs.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, "failed to save expense: "+err.Error()))
		result.ErrorRows++
		return nil
	}

	s.publishEvents(ctx, exp)

	result.UpdatedRows++
	return nil
}

// resolveCategory maps a category name to its ID, caching lookups for the
// duration of the import. Returns uuid.Nil when the name is unknown.
func (s *ExpenseImportService) resolveCategory(ctx context.Context, companyID uuid.UUID, name string, cache map[string]uuid.UUID) (uuid.UUID, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}
	cat, err := s.categoryRepo.FindByNameForCompany(ctx, name, companyID)
	if errors.Is(err, shared.ErrNotFound) {
		cache[key] = uuid.Nil
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	cache[key] = cat.ID
	return cat.ID, nil
}

// findDuplicate looks for an expense on the same day with the same
// description and amount.
func (s *ExpenseImportService) findDuplicate(ctx context.Context, companyID uuid.UUID, description string, amount decimal.Decimal, date time.Time) (*expense.Expense, error) {
	day := date.Truncate(24 * time.Hour)
	sameDay, err := s.expenseRepo.FindBetween(ctx, companyID, day, day.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		return nil, err
	}
	for _, exp := range sameDay {
		if strings.EqualFold(exp.Description, description) && exp.Amount.Equal(amount.Round(2)) {
			return exp, nil
		}
	}
	return nil, nil
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}

func (s *ExpenseImportService) publishEvents(ctx context.Context, exp *expense.Expense) {
	if s.eventBus == nil {
		return
	}
	events := exp.GetDomainEvents()
	if len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			log.Printf("WARNING: failed to publish domain events for expense %s: %v", exp.Description, err)
		}
	}
	exp.ClearDomainEvents()
}
