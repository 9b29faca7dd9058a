package expense

import (
	"context"
	"errors"
	"time"

	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryService provides application-level expense category operations
type CategoryService struct {
	categoryRepo expense.CategoryRepository
	expenseRepo  expense.ExpenseRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo expense.CategoryRepository, expenseRepo expense.ExpenseRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		expenseRepo:  expenseRepo,
	}
}

// ===================== DTOs =====================

// CreateCategoryRequest represents a request to create an expense category
type CreateCategoryRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	CreatedBy   *uuid.UUID `json:"-"`
}

// UpdateCategoryRequest represents a request to update an expense category
type UpdateCategoryRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	ClearParent bool       `json:"clear_parent"`
}

// CategoryResponse represents an expense category in API responses
type CategoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ===================== Operations =====================

// Create creates a new expense category. Name must be unique within the
// company; an optional parent builds the category tree.
func (s *CategoryService) Create(ctx context.Context, companyID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.categoryRepo.ExistsByName(ctx, req.Name, companyID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_NAME", "A category with this name already exists")
	}

	cat, err := expense.NewCategory(companyID, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		cat.SetCreatedBy(*req.CreatedBy)
	}
	if req.ParentID != nil {
		if err := s.assignParent(ctx, companyID, cat, *req.ParentID); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Save(ctx, cat); err != nil {
		return nil, err
	}
	return toCategoryResponse(cat), nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, companyID, categoryID uuid.UUID) (*CategoryResponse, error) {
	cat, err := s.findCategory(ctx, companyID, categoryID)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(cat), nil
}

// List returns every category of a company
func (s *CategoryService) List(ctx context.Context, companyID uuid.UUID) ([]CategoryResponse, error) {
	cats, err := s.categoryRepo.FindAllForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	responses := make([]CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		responses = append(responses, *toCategoryResponse(cat))
	}
	return responses, nil
}

// Update edits a category's name, description or parent
func (s *CategoryService) Update(ctx context.Context, companyID, categoryID uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	cat, err := s.findCategory(ctx, companyID, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != cat.Name {
		exists, err := s.categoryRepo.ExistsByName(ctx, *req.Name, companyID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("DUPLICATE_NAME", "A category with this name already exists")
		}
		if err := cat.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if err := cat.SetDescription(*req.Description); err != nil {
			return nil, err
		}
	}
	if req.ClearParent {
		if err := cat.SetParent(nil, nil); err != nil {
			return nil, err
		}
	} else if req.ParentID != nil {
		if err := s.assignParent(ctx, companyID, cat, *req.ParentID); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Save(ctx, cat); err != nil {
		return nil, err
	}
	return toCategoryResponse(cat), nil
}

// Activate re-enables a category for new expenses
func (s *CategoryService) Activate(ctx context.Context, companyID, categoryID uuid.UUID) (*CategoryResponse, error) {
	cat, err := s.findCategory(ctx, companyID, categoryID)
	if err != nil {
		return nil, err
	}
	cat.Activate()
	if err := s.categoryRepo.Save(ctx, cat); err != nil {
		return nil, err
	}
	return toCategoryResponse(cat), nil
}

// Deactivate retires a category. Existing expenses keep their category;
// new expenses can no longer use it.
func (s *CategoryService) Deactivate(ctx context.Context, companyID, categoryID uuid.UUID) (*CategoryResponse, error) {
	cat, err := s.findCategory(ctx, companyID, categoryID)
	if err != nil {
		return nil, err
	}
	cat.Deactivate()
	if err := s.categoryRepo.Save(ctx, cat); err != nil {
		return nil, err
	}
	return toCategoryResponse(cat), nil
}

// Delete removes a category that no expense references
func (s *CategoryService) Delete(ctx context.Context, companyID, categoryID uuid.UUID) error {
	cat, err := s.findCategory(ctx, companyID, categoryID)
	if err != nil {
		return err
	}

	filter := expense.ExpenseFilter{Filter: shared.DefaultFilter(), CategoryID: &cat.ID}
	filter.PageSize = 1
	page, err := s.expenseRepo.FindForCompany(ctx, companyID, filter)
	if err != nil {
		return err
	}
	if page.Total > 0 {
		return shared.NewDomainError("CATEGORY_IN_USE", "Cannot delete a category that has expenses; deactivate instead")
	}
	return s.categoryRepo.Delete(ctx, cat.ID)
}

// ===================== Helpers =====================

// assignParent validates the prospective parent and walks its ancestor
// chain so the aggregate can reject a cycle before anything is saved
func (s *CategoryService) assignParent(ctx context.Context, companyID uuid.UUID, cat *expense.Category, parentID uuid.UUID) error {
	_, err := s.categoryRepo.FindByIDForCompany(ctx, parentID, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Parent category not found")
		}
		return err
	}

	chain, err := s.categoryRepo.AncestorChain(ctx, parentID)
	if err != nil {
		return err
	}
	return cat.SetParent(&parentID, append([]uuid.UUID{parentID}, chain...))
}

func (s *CategoryService) findCategory(ctx context.Context, companyID, categoryID uuid.UUID) (*expense.Category, error) {
	cat, err := s.categoryRepo.FindByIDForCompany(ctx, categoryID, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Category not found")
		}
		return nil, err
	}
	return cat, nil
}

func toCategoryResponse(cat *expense.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          cat.ID,
		CompanyID:   cat.CompanyID,
		Name:        cat.Name,
		Description: cat.Description,
		ParentID:    cat.ParentID,
		IsActive:    cat.IsActive,
		CreatedAt:   cat.CreatedAt,
		UpdatedAt:   cat.UpdatedAt,
	}
}
