package company

import (
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyCreatedEvent is raised when a company signs up
type CompanyCreatedEvent struct {
	shared.BaseDomainEvent
	Name        string    `json:"name"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
}

// EventType returns the event type name
func (e *CompanyCreatedEvent) EventType() string {
	return "CompanyCreated"
}

// NewCompanyCreatedEvent creates a new CompanyCreatedEvent
func NewCompanyCreatedEvent(c *Company) *CompanyCreatedEvent {
	return &CompanyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CompanyCreated", "Company", c.ID, c.ID),
		Name:            c.Name,
		OwnerUserID:     c.OwnerUserID,
	}
}
