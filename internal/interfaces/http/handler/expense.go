package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appexpense "github.com/expenseally/backend/internal/application/expense"
	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/infrastructure/storage"
	"github.com/expenseally/backend/internal/interfaces/http/middleware"
)

// ExpenseHandler handles expense endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService *appexpense.ExpenseService
	objectStorage  storage.ObjectStorage
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService *appexpense.ExpenseService, objectStorage storage.ObjectStorage) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		objectStorage:  objectStorage,
	}
}

// RegisterRoutes mounts the expense routes
func (h *ExpenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	approvers := middleware.RequireRole(company.UserRoleOwner, company.UserRoleAccountant)

	grp := rg.Group("/expenses")
	{
		grp.POST("", h.Create)
		grp.GET("", h.List)
		grp.GET("/:id", h.Get)
		grp.PUT("/:id", h.Update)
		grp.DELETE("/:id", h.Delete)
		grp.POST("/:id/approve", approvers, h.Approve)
		grp.POST("/:id/revoke-approval", approvers, h.RevokeApproval)
		grp.POST("/:id/receipt-upload-url", h.ReceiptUploadURL)
		grp.POST("/:id/receipt", h.AttachReceipt)
		grp.GET("/:id/receipt", h.ReceiptDownloadURL)
		grp.POST("/:id/recurring", h.EnableRecurring)
		grp.DELETE("/:id/recurring", h.DisableRecurring)
	}
}

// Create godoc
// @Summary      Record an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Success      201 {object} dto.Response{data=expense.ExpenseResponse}
// @Router       /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appexpense.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	resp, err := h.expenseService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List godoc
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Param        category_id query string false "Filter by category"
// @Param        approved query bool false "Filter by approval state"
// @Success      200 {object} dto.Response{data=[]expense.ExpenseResponse}
// @Router       /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter appexpense.ExpenseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.expenseService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// Get fetches one expense
func (h *ExpenseHandler) Get(c *gin.Context) {
	companyID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.expenseService.GetByID(c.Request.Context(), companyID, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update modifies an unapproved expense
func (h *ExpenseHandler) Update(c *gin.Context) {
	companyID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appexpense.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.expenseService.Update(c.Request.Context(), companyID, expenseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete removes an unapproved expense
func (h *ExpenseHandler) Delete(c *gin.Context) {
	companyID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.expenseService.Delete(c.Request.Context(), companyID, expenseID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Approve godoc
// @Summary      Approve an expense
// @Tags         expenses
// @Produce      json
// @Success      200 {object} dto.Response{data=expense.ExpenseResponse}
// @Router       /expenses/{id}/approve [post]
func (h *ExpenseHandler) Approve(c *gin.Context) {
	companyID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.expenseService.Approve(c.Request.Context(), companyID, expenseID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RevokeApproval reverts an approved expense to pending
func (h *ExpenseHandler) RevokeApproval(c *gin.Context) {
	companyID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.expenseService.RevokeApproval(c.Request.Context(), companyID, expenseID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

type receiptUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// ReceiptUploadURL godoc
// @Summary      Issue a presigned URL for uploading an expense receipt
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=uploadURLResponse}
// @Router       /expenses/{id}/receipt-upload-url [post]
func (h *ExpenseHandler) ReceiptUploadURL(c *gin.Context) {
	companyID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	var req receiptUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	if !storage.IsAllowedUploadType(req.ContentType) {
		h.BadRequest(c, "Unsupported content type")
		return
	}

	key := storage.ReceiptKey(companyID, expenseID, req.Filename)
	url, expiresAt, err := h.objectStorage.GenerateUploadURL(c.Request.Context(), key, req.ContentType, presignTTL)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, uploadURLResponse{UploadURL: url, Key: key, ExpiresAt: expiresAt})
}

type attachReceiptRequest struct {
	Key string `json:"key" binding:"required"`
}

// AttachReceipt records an uploaded receipt object against the expense
func (h *ExpenseHandler) AttachReceipt(c *gin.Context) {
	companyID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	var req attachReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	exists, err := h.objectStorage.ObjectExists(c.Request.Context(), req.Key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !exists {
		h.BadRequest(c, "Receipt object has not been uploaded")
		return
	}

	resp, err := h.expenseService.AttachReceipt(c.Request.Context(), companyID, expenseID, req.Key)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

type receiptDownloadResponse struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ReceiptDownloadURL issues a presigned URL for the stored receipt
func (h *ExpenseHandler) ReceiptDownloadURL(c *gin.Context) {
	companyID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	exp, err := h.expenseService.GetByID(c.Request.Context(), companyID, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if exp.ReceiptURL == "" {
		h.NotFound(c, "Expense has no receipt")
		return
	}

	url, expiresAt, err := h.objectStorage.GenerateDownloadURL(c.Request.Context(), exp.ReceiptURL, presignTTL)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, receiptDownloadResponse{DownloadURL: url, ExpiresAt: expiresAt})
}

// EnableRecurring puts an expense on a generation schedule
func (h *ExpenseHandler) EnableRecurring(c *gin.Context) {
	companyID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appexpense.EnableRecurringExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.expenseService.EnableRecurring(c.Request.Context(), companyID, expenseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DisableRecurring takes an expense off its schedule
func (h *ExpenseHandler) DisableRecurring(c *gin.Context) {
	companyID, expenseID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.expenseService.DisableRecurring(c.Request.Context(), companyID, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

func (h *ExpenseHandler) scope(c *gin.Context) (companyID, expenseID uuid.UUID, ok bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	expenseID, ok = bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid expense ID")
		return uuid.Nil, uuid.Nil, false
	}
	return companyID, expenseID, true
}
