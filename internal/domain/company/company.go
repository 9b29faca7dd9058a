package company

import (
	"strings"
	"time"

	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/expenseally/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyStatus represents the status of a company
type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusInactive  CompanyStatus = "inactive"
	CompanyStatusSuspended CompanyStatus = "suspended"
)

// CompanySettings holds the billing defaults a company applies to new
// invoices and the late-fee policy used by the overdue sweep
type CompanySettings struct {
	Currency valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`

	// DefaultPaymentTermsDays is applied when a client has no terms of its own
	DefaultPaymentTermsDays int `gorm:"not null;default:30"`

	// LateFeeMonthlyRate is the monthly late-fee rate as a fraction,
	// e.g. 0.015 for 1.5% per month, prorated daily over 30 days
	LateFeeMonthlyRate decimal.Decimal `gorm:"type:decimal(8,5);not null;default:0"`

	// DefaultTaxRate is the header tax rate percentage for new invoices
	DefaultTaxRate decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
}

// DefaultCompanySettings returns the settings applied at signup
func DefaultCompanySettings() CompanySettings {
	return CompanySettings{
		Currency:                valueobject.USD,
		DefaultPaymentTermsDays: 30,
		LateFeeMonthlyRate:      decimal.Zero,
		DefaultTaxRate:          decimal.Zero,
	}
}

// Company represents a business using the platform. It is the tenancy
// root: every client, invoice and expense belongs to exactly one company.
type Company struct {
	shared.BaseAggregateRoot
	Name         string        `gorm:"type:varchar(200);not null"`
	LegalName    string        `gorm:"type:varchar(200)"`
	OwnerUserID  uuid.UUID     `gorm:"type:uuid;not null;index"`
	Status       CompanyStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactEmail string        `gorm:"type:varchar(200)"`
	ContactPhone string        `gorm:"type:varchar(50)"`
	Address      string        `gorm:"type:text"`
	TaxID        string        `gorm:"type:varchar(50)"`
	LogoURL      string        `gorm:"type:varchar(500)"`

	Settings CompanySettings `gorm:"embedded;embeddedPrefix:settings_"`

	Notes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a new active company owned by the given user
func NewCompany(name string, ownerUserID uuid.UUID) (*Company, error) {
	if err := validateCompanyName(name); err != nil {
		return nil, err
	}
	if ownerUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner user ID cannot be empty")
	}

	company := &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		OwnerUserID:       ownerUserID,
		Status:            CompanyStatusActive,
		Settings:          DefaultCompanySettings(),
	}

	company.AddDomainEvent(NewCompanyCreatedEvent(company))

	return company, nil
}

// Update updates the company's basic information
func (c *Company) Update(name, legalName string) error {
	if err := validateCompanyName(name); err != nil {
		return err
	}
	if legalName != "" && len(legalName) > 200 {
		return shared.NewDomainError("INVALID_LEGAL_NAME", "Legal name cannot exceed 200 characters")
	}

	c.Name = name
	c.LegalName = legalName
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetContact sets the company's contact information
func (c *Company) SetContact(email, phone string) error {
	if email != "" && len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	c.ContactEmail = strings.ToLower(strings.TrimSpace(email))
	c.ContactPhone = strings.TrimSpace(phone)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetAddress sets the company's address
func (c *Company) SetAddress(address string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}

	c.Address = address
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetTaxID sets the company's tax identification number
func (c *Company) SetTaxID(taxID string) error {
	if taxID != "" && len(taxID) > 50 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 50 characters")
	}

	c.TaxID = taxID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetCurrency sets the company's preferred billing currency
func (c *Company) SetCurrency(currency valueobject.Currency) error {
	if !currency.IsValid() {
		return shared.NewDomainError("INVALID_CURRENCY", "Unsupported currency")
	}

	c.Settings.Currency = currency
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetPaymentDefaults sets the default net terms and header tax rate
func (c *Company) SetPaymentDefaults(termsDays int, taxRate decimal.Decimal) error {
	if termsDays < 0 || termsDays > 365 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms must be between 0 and 365 days")
	}
	if taxRate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	c.Settings.DefaultPaymentTermsDays = termsDays
	c.Settings.DefaultTaxRate = taxRate
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetLateFeeRate sets the monthly late-fee rate as a fraction
func (c *Company) SetLateFeeRate(monthlyRate decimal.Decimal) error {
	if monthlyRate.IsNegative() {
		return shared.NewDomainError("INVALID_LATE_FEE_RATE", "Late fee rate cannot be negative")
	}
	if monthlyRate.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_LATE_FEE_RATE", "Late fee rate cannot exceed 100% per month")
	}

	c.Settings.LateFeeMonthlyRate = monthlyRate
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// TransferOwnership moves the company to a new owner
func (c *Company) TransferOwnership(newOwnerID uuid.UUID) error {
	if newOwnerID == uuid.Nil {
		return shared.NewDomainError("INVALID_OWNER", "Owner user ID cannot be empty")
	}
	if newOwnerID == c.OwnerUserID {
		return shared.NewDomainError("SAME_OWNER", "User already owns this company")
	}

	c.OwnerUserID = newOwnerID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Activate activates the company
func (c *Company) Activate() error {
	if c.Status == CompanyStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Company is already active")
	}

	c.Status = CompanyStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Suspend suspends the company; logins are rejected while suspended
func (c *Company) Suspend() error {
	if c.Status == CompanyStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Company is already suspended")
	}

	c.Status = CompanyStatusSuspended
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Deactivate deactivates the company
func (c *Company) Deactivate() error {
	if c.Status == CompanyStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Company is already inactive")
	}

	c.Status = CompanyStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// IsActive returns true if the company is active
func (c *Company) IsActive() bool {
	return c.Status == CompanyStatusActive
}

func validateCompanyName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}
	return nil
}
