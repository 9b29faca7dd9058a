package importapp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/shared"
	csvimport "github.com/expenseally/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConflictMode defines how to handle conflicts during import
type ConflictMode string

const (
	// ConflictModeSkip skips rows that conflict with existing data
	ConflictModeSkip ConflictMode = "skip"
	// ConflictModeUpdate updates existing records with new data
	ConflictModeUpdate ConflictMode = "update"
	// ConflictModeFail fails the import if any conflicts are found
	ConflictModeFail ConflictMode = "fail"
)

// IsValid checks if the conflict mode is valid
func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeUpdate, ConflictModeFail:
		return true
	}
	return false
}

// ClientImportRow represents a row from the client CSV import
type ClientImportRow struct {
	Name             string `csv:"name"`
	Email            string `csv:"email"`
	ContactName      string `csv:"contact_name"`
	Phone            string `csv:"phone"`
	Address          string `csv:"address"`
	City             string `csv:"city"`
	State            string `csv:"state"`
	PostalCode       string `csv:"postal_code"`
	Country          string `csv:"country"`
	VATNumber        string `csv:"vat_number"`
	PaymentTermsDays string `csv:"payment_terms_days"`
	CreditLimit      string `csv:"credit_limit"`
	Notes            string `csv:"notes"`
}

// ClientImportResult represents the result of a client import operation
type ClientImportResult struct {
	TotalRows    int                  `json:"total_rows"`
	ImportedRows int                  `json:"imported_rows"`
	UpdatedRows  int                  `json:"updated_rows"`
	SkippedRows  int                  `json:"skipped_rows"`
	ErrorRows    int                  `json:"error_rows"`
	Errors       []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated  bool                 `json:"is_truncated,omitempty"`
	TotalErrors  int                  `json:"total_errors,omitempty"`
}

// ClientImportService handles client bulk import operations
type ClientImportService struct {
	clientRepo client.ClientRepository
	eventBus   shared.EventPublisher
}

// NewClientImportService creates a new ClientImportService
func NewClientImportService(clientRepo client.ClientRepository, eventBus shared.EventPublisher) *ClientImportService {
	return &ClientImportService{
		clientRepo: clientRepo,
		eventBus:   eventBus,
	}
}

// GetValidationRules returns the validation rules for client import
func (s *ClientImportService) GetValidationRules() []csvimport.FieldRule {
	zero := decimal.Zero
	return []csvimport.FieldRule{
		csvimport.Field("name").Required().String().MinLength(1).MaxLength(200).Build(),
		csvimport.Field("email").Required().Email().Unique().Build(),
		csvimport.Field("contact_name").String().MaxLength(100).Build(),
		csvimport.Field("phone").String().MaxLength(50).Build(),
		csvimport.Field("address").String().MaxLength(200).Build(),
		csvimport.Field("city").String().MaxLength(100).Build(),
		csvimport.Field("state").String().MaxLength(100).Build(),
		csvimport.Field("postal_code").String().MaxLength(20).Build(),
		csvimport.Field("country").String().MaxLength(100).Build(),
		csvimport.Field("vat_number").String().MaxLength(50).Build(),
		csvimport.Field("payment_terms_days").Int().Range(decimal.Zero, decimal.NewFromInt(365)).Build(),
		csvimport.Field("credit_limit").Decimal().MinValue(zero).Build(),
		csvimport.Field("notes").String().MaxLength(1000).Build(),
	}
}

// LookupUnique checks if a value is unique for a given field
func (s *ClientImportService) LookupUnique(ctx context.Context, companyID uuid.UUID, field, value string) (bool, error) {
	if value == "" {
		return false, nil // empty is not a duplicate
	}
	switch field {
	case "email":
		return s.clientRepo.ExistsByEmail(ctx, value, companyID)
	default:
		return false, nil
	}
}

// Import imports clients from validated rows
func (s *ClientImportService) Import(
	ctx context.Context,
	companyID, userID uuid.UUID,
	session *csvimport.ImportSession,
	validRows []*csvimport.Row,
	conflictMode ConflictMode,
) (*ClientImportResult, error) {
	if session.State != csvimport.StateValidated {
		return nil, shared.NewDomainError("INVALID_STATE", "Import session must be in validated state")
	}

	if !session.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERRORS", "Cannot import session with validation errors")
	}

	session.UpdateState(csvimport.StateImporting)

	result := &ClientImportResult{
		TotalRows: len(validRows),
	}
	errs := csvimport.NewErrorCollection(100)

	for _, row := range validRows {
		select {
		case <-ctx.Done():
			session.UpdateState(csvimport.StateCancelled)
			return nil, ctx.Err()
		default:
		}

		err := s.importRow(ctx, companyID, userID, row, conflictMode, result, errs)
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

// importRow imports a single client row
func (s *ClientImportService) importRow(
	ctx context.Context,
	companyID, userID uuid.UUID,
	row *csvimport.Row,
	conflictMode ConflictMode,
	result *ClientImportResult,
	errs *csvimport.ErrorCollection,
) error {
	name := strings.TrimSpace(row.Get("name"))
	email := strings.ToLower(strings.TrimSpace(row.Get("email")))
	contactName := strings.TrimSpace(row.Get("contact_name"))
	phone := strings.TrimSpace(row.Get("phone"))
	address := strings.TrimSpace(row.Get("address"))
	city := strings.TrimSpace(row.Get("city"))
	state := strings.TrimSpace(row.Get("state"))
	postalCode := strings.TrimSpace(row.Get("postal_code"))
	country := strings.TrimSpace(row.Get("country"))
	vatNumber := strings.TrimSpace(row.Get("vat_number"))
	paymentTermsStr := strings.TrimSpace(row.Get("payment_terms_days"))
	creditLimitStr := strings.TrimSpace(row.Get("credit_limit"))
	notes := strings.TrimSpace(row.Get("notes"))

	var paymentTermsDays int
	if paymentTermsStr != "" {
		var err error
		paymentTermsDays, err = strconv.Atoi(paymentTermsStr)
		if err != nil {
			errs.Add(csvimport.NewRowError(row.LineNumber, "payment_terms_days", csvimport.ErrCodeImportInvalidType, "invalid integer value"))
			result.ErrorRows++
			return nil
		}
	}

	var creditLimit decimal.Decimal
	if creditLimitStr != "" {
		var err error
		creditLimit, err = decimal.NewFromString(creditLimitStr)
		if err != nil {
			errs.Add(csvimport.NewRowError(row.LineNumber, "credit_limit", csvimport.ErrCodeImportInvalidType, "invalid decimal value"))
			result.ErrorRows++
			return nil
		}
	}

	// Check for existing client by email
	existing, err := s.clientRepo.FindByEmailForCompany(ctx, email, companyID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to check existing client: %w", err)
	}

	if existing != nil {
		switch conflictMode {
		case ConflictModeSkip:
			result.SkippedRows++
			return nil
		case ConflictModeFail:
			errs.Add(csvimport.NewRowErrorWithValue(row.LineNumber, "email", csvimport.ErrCodeImportDuplicateInDB,
				fmt.Sprintf("client with email '%s' already exists", email), email))
			result.ErrorRows++
			return nil
		case ConflictModeUpdate:
			return s.updateExistingClient(ctx, existing, row, name, contactName, phone, address, city, state, postalCode, country, vatNumber, paymentTermsDays, creditLimit, notes, result, errs)
		}
	}

	cl, err := client.NewClient(companyID, name, email)
	if err != nil {
		errs.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, err.Error()))
		result.ErrorRows++
		return nil
	}
	cl.SetCreatedBy(userID)

	if err := s.applyOptionalFields(cl, row, contactName, phone, address, city, state, postalCode, country, vatNumber, paymentTermsDays, creditLimit, notes, result, errs); err != nil {
		return nil
	}

	if err := s.clientRepo.Save(ctx, cl); err != nil {
		errs.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, "failed to save client: "+err.Error()))
		result.ErrorRows++
		return nil
	}

	s.publishEvents(ctx, cl)

	result.ImportedRows++
	return nil
}

// updateExistingClient updates an existing client with import data
func (s *ClientImportService) updateExistingClient(
	ctx context.Context,
	cl *client.Client,
	row *csvimport.Row,
	name, contactName, phone, address, city, state, postalCode, country, vatNumber string,
	paymentTermsDays int,
	creditLimit decimal.Decimal,
	notes string,
	result *ClientImportResult,
	errs *csvimport.ErrorCollection,
) error {
	if err := cl.Update(name, contactName); err != nil {
		errs.Add(csvimport.NewRowError(row.LineNumber, "name", csvimport.ErrCodeImportValidation, err.Error()))
		result.ErrorRows++
		return nil
	}

	if err := s.applyOptionalFields(cl, row, "", phone, address, city, state, postalCode, country, vatNumber, paymentTermsDays, creditLimit, notes, result, errs); err != nil {
		return nil
	}

	if err := s.clientRepo.Save(ctx, cl); err != nil {
		errs.Add(csvimport.NewRowError(row.LineNumber, "", csvimport.ErrCodeImportValidation, "failed to save client: "+err.Error()))
		result.ErrorRows++
		return nil
	}

	s.publishEvents(ctx, cl)

	result.UpdatedRows++
	return nil
}

// applyOptionalFields sets the non-required fields on a client. Returns a
// sentinel error when a field was rejected, after recording the row error.
func (s *ClientImportService) applyOptionalFields(
	cl *client.Client,
	row *csvimport.Row,
	contactName, phone, address, city, state, postalCode, country, vatNumber string,
	paymentTermsDays int,
	creditLimit decimal.Decimal,
	notes string,
	result *ClientImportResult,
	errs *csvimport.ErrorCollection,
) error {
	fail := func(field string, err error) error {
		errs.Add(csvimport.NewRowError(row.LineNumber, field, csvimport.ErrCodeImportValidation, err.Error()))
		result.ErrorRows++
		return err
	}

	if contactName != "" {
		if err := cl.Update(cl.Name, contactName); err != nil {
			return fail("contact_name", err)
		}
	}
	if phone != "" {
		if err := cl.SetContact(phone); err != nil {
			return fail("phone", err)
		}
	}
	if address != "" || city != "" || state != "" || postalCode != "" || country != "" {
		if err := cl.SetAddress(address, city, state, postalCode, country); err != nil {
			return fail("address", err)
		}
	}
	if vatNumber != "" {
		if err := cl.SetVATNumber(vatNumber); err != nil {
			return fail("vat_number", err)
		}
	}
	if paymentTermsDays > 0 {
		if err := cl.SetPaymentTerms(paymentTermsDays); err != nil {
			return fail("payment_terms_days", err)
		}
	}
	if !creditLimit.IsZero() {
		if err := cl.SetCreditLimit(creditLimit); err != nil {
			return fail("credit_limit", err)
		}
	}
	if notes != "" {
		cl.SetNotes(notes)
	}
	return nil
}

func (s *ClientImportService) publishEvents(ctx context.Context, cl *client.Client) {
	if s.eventBus == nil {
		return
	}
	events := cl.GetDomainEvents()
	if len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			log.Printf("WARNING: failed to publish domain events for client %s: %v", cl.Email, err)
		}
	}
	cl.ClearDomainEvents()
}

// ValidateWithWarnings returns validation warnings (non-blocking issues)
func (s *ClientImportService) ValidateWithWarnings(row *csvimport.Row) []string {
	var warnings []string

	creditLimitStr := row.Get("credit_limit")
	if creditLimitStr != "" {
		creditLimit, err := decimal.NewFromString(creditLimitStr)
		if err == nil && creditLimit.GreaterThan(decimal.NewFromInt(1000000)) {
			warnings = append(warnings, fmt.Sprintf("row %d: credit limit is unusually high (>1,000,000)", row.LineNumber))
		}
	}

	email := row.Get("email")
	if email != "" {
		lowerEmail := strings.ToLower(email)
		if strings.Contains(lowerEmail, "test") || strings.Contains(lowerEmail, "example") {
			warnings = append(warnings, fmt.Sprintf("row %d: email appears to be a test address", row.LineNumber))
		}
	}

	return warnings
}
