package expense

import (
	"strings"
	"time"

	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Category represents a user-defined expense category. Categories form a
// hierarchy through ParentID; name is unique within the owning company.
type Category struct {
	shared.CompanyAggregateRoot
	Name        string     `gorm:"type:varchar(100);not null"`
	Description string     `gorm:"type:varchar(500)"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	IsActive    bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "expense_categories"
}

// NewCategory creates a new expense category
func NewCategory(companyID uuid.UUID, name, description string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	return &Category{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		Description:          description,
		IsActive:             true,
	}, nil
}

// Rename changes the category name. Per-company uniqueness is checked by
// the application service.
func (c *Category) Rename(name string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}

	c.Name = name
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetDescription updates the category description
func (c *Category) SetDescription(description string) error {
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	c.Description = description
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetParent reparents the category. The ancestor chain is supplied by
// the caller (walked through the repository); a chain containing this
// category means the move would create a cycle and is rejected.
func (c *Category) SetParent(parentID *uuid.UUID, ancestorChain []uuid.UUID) error {
	if parentID != nil {
		if *parentID == c.ID {
			return shared.NewDomainError("CATEGORY_CYCLE", "Category cannot be its own parent")
		}
		for _, ancestor := range ancestorChain {
			if ancestor == c.ID {
				return shared.NewDomainError("CATEGORY_CYCLE", "Reparenting would create a category cycle")
			}
		}
	}

	c.ParentID = parentID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Deactivate soft-disables the category for new expenses
func (c *Category) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate re-enables the category
func (c *Category) Activate() {
	c.IsActive = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
