package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appexpense "github.com/expenseally/backend/internal/application/expense"
)

// CategoryHandler handles expense category endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService *appexpense.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *appexpense.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// RegisterRoutes mounts the category routes
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/expense-categories")
	{
		grp.POST("", h.Create)
		grp.GET("", h.List)
		grp.GET("/:id", h.Get)
		grp.PUT("/:id", h.Update)
		grp.DELETE("/:id", h.Delete)
		grp.POST("/:id/activate", h.Activate)
		grp.POST("/:id/deactivate", h.Deactivate)
	}
}

// Create godoc
// @Summary      Create an expense category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Success      201 {object} dto.Response{data=expense.CategoryResponse}
// @Router       /expense-categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appexpense.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	resp, err := h.categoryService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List returns the company's category tree as a flat list
func (h *CategoryHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.categoryService.List(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Get fetches one category
func (h *CategoryHandler) Get(c *gin.Context) {
	companyID, categoryID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.categoryService.GetByID(c.Request.Context(), companyID, categoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update modifies a category
func (h *CategoryHandler) Update(c *gin.Context) {
	companyID, categoryID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appexpense.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.categoryService.Update(c.Request.Context(), companyID, categoryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes an unused category
func (h *CategoryHandler) Delete(c *gin.Context) {
	companyID, categoryID, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), companyID, categoryID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Activate reinstates a category
func (h *CategoryHandler) Activate(c *gin.Context) {
	companyID, categoryID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.categoryService.Activate(c.Request.Context(), companyID, categoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Deactivate retires a category from new expenses
func (h *CategoryHandler) Deactivate(c *gin.Context) {
	companyID, categoryID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.categoryService.Deactivate(c.Request.Context(), companyID, categoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

func (h *CategoryHandler) scope(c *gin.Context) (companyID, categoryID uuid.UUID, ok bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	categoryID, ok = bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid category ID")
		return uuid.Nil, uuid.Nil, false
	}
	return companyID, categoryID, true
}
