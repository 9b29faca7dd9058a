package client

import (
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientCreatedEvent is raised when a new client is created
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
}

// EventType returns the event type name
func (e *ClientCreatedEvent) EventType() string {
	return "ClientCreated"
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ClientCreated", "Client", c.ID, c.CompanyID),
		ClientID:        c.ID,
		Name:            c.Name,
		Email:           c.Email,
	}
}

// ClientUpdatedEvent is raised when a client's details change
type ClientUpdatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
}

// EventType returns the event type name
func (e *ClientUpdatedEvent) EventType() string {
	return "ClientUpdated"
}

// NewClientUpdatedEvent creates a new ClientUpdatedEvent
func NewClientUpdatedEvent(c *Client) *ClientUpdatedEvent {
	return &ClientUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ClientUpdated", "Client", c.ID, c.CompanyID),
		ClientID:        c.ID,
		Name:            c.Name,
		Email:           c.Email,
	}
}

// ClientStatusChangedEvent is raised when a client is activated or deactivated
type ClientStatusChangedEvent struct {
	shared.BaseDomainEvent
	ClientID  uuid.UUID    `json:"client_id"`
	OldStatus ClientStatus `json:"old_status"`
	NewStatus ClientStatus `json:"new_status"`
}

// EventType returns the event type name
func (e *ClientStatusChangedEvent) EventType() string {
	return "ClientStatusChanged"
}

// NewClientStatusChangedEvent creates a new ClientStatusChangedEvent
func NewClientStatusChangedEvent(c *Client, oldStatus, newStatus ClientStatus) *ClientStatusChangedEvent {
	return &ClientStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ClientStatusChanged", "Client", c.ID, c.CompanyID),
		ClientID:        c.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// ClientCreditAlertEvent is raised by the credit monitoring job when a
// client's outstanding balance crosses an alert threshold
type ClientCreditAlertEvent struct {
	shared.BaseDomainEvent
	ClientID    uuid.UUID        `json:"client_id"`
	ClientName  string           `json:"client_name"`
	Level       CreditAlertLevel `json:"level"`
	Outstanding decimal.Decimal  `json:"outstanding"`
	CreditLimit decimal.Decimal  `json:"credit_limit"`
}

// EventType returns the event type name
func (e *ClientCreditAlertEvent) EventType() string {
	return "ClientCreditAlert"
}

// NewClientCreditAlertEvent creates a new ClientCreditAlertEvent
func NewClientCreditAlertEvent(c *Client, level CreditAlertLevel, outstanding decimal.Decimal) *ClientCreditAlertEvent {
	return &ClientCreditAlertEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ClientCreditAlert", "Client", c.ID, c.CompanyID),
		ClientID:        c.ID,
		ClientName:      c.Name,
		Level:           level,
		Outstanding:     outstanding,
		CreditLimit:     c.CreditLimit,
	}
}
