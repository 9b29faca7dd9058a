package client

import (
	"regexp"
	"strings"
	"time"

	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientStatus represents the status of a client
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive" // Soft-disabled, kept for history
)

// CreditAlertLevel grades how close a client's outstanding balance is to
// its credit limit
type CreditAlertLevel string

const (
	CreditAlertNone     CreditAlertLevel = "NONE"
	CreditAlertWarning  CreditAlertLevel = "WARNING"  // 75% of limit used
	CreditAlertCritical CreditAlertLevel = "CRITICAL" // 90% of limit used
	CreditAlertExceeded CreditAlertLevel = "EXCEEDED"
)

const (
	creditWarningThreshold  = 0.75
	creditCriticalThreshold = 0.90
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Client represents a billable customer of a company. It is the
// aggregate root for client-related operations; email is unique within
// the owning company.
type Client struct {
	shared.CompanyAggregateRoot
	Name        string       `gorm:"type:varchar(200);not null"`
	Email       string       `gorm:"type:varchar(200);not null"`
	Phone       string       `gorm:"type:varchar(50)"`
	Address     string       `gorm:"type:text"`
	City        string       `gorm:"type:varchar(100)"`
	State       string       `gorm:"type:varchar(100)"`
	PostalCode  string       `gorm:"type:varchar(20)"`
	Country     string       `gorm:"type:varchar(100)"`
	VATNumber   string       `gorm:"type:varchar(50)"`
	ContactName string       `gorm:"type:varchar(100)"`
	Status      ClientStatus `gorm:"type:varchar(20);not null;default:'active'"`

	// PaymentTermsDays is the default net terms applied to new invoices
	PaymentTermsDays int             `gorm:"not null;default:30"`
	CreditLimit      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Notes string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new active client with required fields
func NewClient(companyID uuid.UUID, name, email string) (*Client, error) {
	if err := validateClientName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	client := &Client{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		Email:                strings.ToLower(email),
		Status:               ClientStatusActive,
		PaymentTermsDays:     30,
		CreditLimit:          decimal.Zero,
	}

	client.AddDomainEvent(NewClientCreatedEvent(client))

	return client, nil
}

// Update updates the client's basic information
func (c *Client) Update(name, contactName string) error {
	if err := validateClientName(name); err != nil {
		return err
	}
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}

	c.Name = name
	c.ContactName = contactName
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientUpdatedEvent(c))

	return nil
}

// SetEmail updates the client's email. Per-company uniqueness is checked
// by the application service against the repository.
func (c *Client) SetEmail(email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	c.Email = strings.ToLower(email)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientUpdatedEvent(c))

	return nil
}

// SetContact sets the client's phone number
func (c *Client) SetContact(phone string) error {
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	c.Phone = phone
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetAddress sets the client's address information
func (c *Client) SetAddress(address, city, state, postalCode, country string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	if city != "" && len(city) > 100 {
		return shared.NewDomainError("INVALID_CITY", "City cannot exceed 100 characters")
	}
	if state != "" && len(state) > 100 {
		return shared.NewDomainError("INVALID_STATE", "State cannot exceed 100 characters")
	}
	if postalCode != "" && len(postalCode) > 20 {
		return shared.NewDomainError("INVALID_POSTAL_CODE", "Postal code cannot exceed 20 characters")
	}
	if country != "" && len(country) > 100 {
		return shared.NewDomainError("INVALID_COUNTRY", "Country cannot exceed 100 characters")
	}

	c.Address = address
	c.City = city
	c.State = state
	c.PostalCode = postalCode
	c.Country = country
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetVATNumber sets the client's VAT registration number
func (c *Client) SetVATNumber(vat string) error {
	if vat != "" && len(vat) > 50 {
		return shared.NewDomainError("INVALID_VAT_NUMBER", "VAT number cannot exceed 50 characters")
	}

	c.VATNumber = vat
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetPaymentTerms sets the client's default net payment terms in days
func (c *Client) SetPaymentTerms(days int) error {
	if days < 0 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms cannot be negative")
	}
	if days > 365 {
		return shared.NewDomainError("INVALID_PAYMENT_TERMS", "Payment terms cannot exceed 365 days")
	}

	c.PaymentTermsDays = days
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetCreditLimit sets the client's credit limit. Zero means unlimited.
func (c *Client) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}

	c.CreditLimit = limit
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetNotes sets the client's notes
func (c *Client) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate re-enables an inactive client
func (c *Client) Activate() error {
	if c.Status == ClientStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Client is already active")
	}

	c.Status = ClientStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientStatusChangedEvent(c, ClientStatusInactive, ClientStatusActive))

	return nil
}

// Deactivate soft-disables the client. History is preserved; new
// invoices cannot be raised against an inactive client.
func (c *Client) Deactivate() error {
	if c.Status == ClientStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Client is already inactive")
	}

	c.Status = ClientStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewClientStatusChangedEvent(c, ClientStatusActive, ClientStatusInactive))

	return nil
}

// IsActive returns true if the client is active
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// HasCreditLimit returns true if a credit limit is set
func (c *Client) HasCreditLimit() bool {
	return c.CreditLimit.GreaterThan(decimal.Zero)
}

// CreditAlert grades the given outstanding balance against the client's
// credit limit. Clients without a limit never alert.
func (c *Client) CreditAlert(outstanding decimal.Decimal) CreditAlertLevel {
	if !c.HasCreditLimit() {
		return CreditAlertNone
	}

	utilization, _ := outstanding.Div(c.CreditLimit).Float64()
	switch {
	case utilization > 1:
		return CreditAlertExceeded
	case utilization >= creditCriticalThreshold:
		return CreditAlertCritical
	case utilization >= creditWarningThreshold:
		return CreditAlertWarning
	default:
		return CreditAlertNone
	}
}

// AvailableCredit returns limit minus outstanding, floored at zero
func (c *Client) AvailableCredit(outstanding decimal.Decimal) decimal.Decimal {
	if !c.HasCreditLimit() {
		return decimal.Zero
	}
	available := c.CreditLimit.Sub(outstanding)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// WouldExceedCredit reports whether adding the given amount to the
// outstanding balance would push the client past its limit
func (c *Client) WouldExceedCredit(outstanding, additional decimal.Decimal) bool {
	if !c.HasCreditLimit() {
		return false
	}
	return outstanding.Add(additional).GreaterThan(c.CreditLimit)
}

// FullAddress returns the formatted full address
func (c *Client) FullAddress() string {
	parts := []string{}
	if c.Address != "" {
		parts = append(parts, c.Address)
	}
	if c.City != "" {
		parts = append(parts, c.City)
	}
	if c.State != "" {
		parts = append(parts, c.State)
	}
	if c.PostalCode != "" {
		parts = append(parts, c.PostalCode)
	}
	if c.Country != "" {
		parts = append(parts, c.Country)
	}
	return strings.Join(parts, ", ")
}

// Validation functions

func validateClientName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
