package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcompany "github.com/expenseally/backend/internal/application/company"
	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/infrastructure/storage"
	"github.com/expenseally/backend/internal/interfaces/http/middleware"
)

// CompanyHandler handles the company profile and member management
type CompanyHandler struct {
	BaseHandler
	companyService *appcompany.CompanyService
	objectStorage  storage.ObjectStorage
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyService *appcompany.CompanyService, objectStorage storage.ObjectStorage) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		objectStorage:  objectStorage,
	}
}

// RegisterRoutes mounts the company routes
func (h *CompanyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	manage := middleware.RequireRole(company.UserRoleOwner, company.UserRoleAccountant)
	ownerOnly := middleware.RequireRole(company.UserRoleOwner)

	grp := rg.Group("/company")
	{
		grp.GET("", h.Get)
		grp.PUT("", manage, h.UpdateProfile)
		grp.PUT("/settings", manage, h.UpdateSettings)
		grp.POST("/transfer-ownership", ownerOnly, h.TransferOwnership)
		grp.POST("/logo-upload-url", manage, h.LogoUploadURL)

		grp.GET("/users", h.ListUsers)
		grp.POST("/users", manage, h.CreateUser)
		grp.PUT("/users/:id/role", manage, h.UpdateUserRole)
		grp.POST("/users/:id/activate", manage, h.ActivateUser)
		grp.POST("/users/:id/deactivate", manage, h.DeactivateUser)
		grp.POST("/users/:id/unlock", manage, h.UnlockUser)
		grp.DELETE("/users/:id", ownerOnly, h.RemoveUser)
	}
}

// Get godoc
// @Summary      Return the company profile
// @Tags         company
// @Produce      json
// @Success      200 {object} dto.Response{data=company.CompanyResponse}
// @Router       /company [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.companyService.Get(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateProfile godoc
// @Summary      Update company profile fields
// @Tags         company
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=company.CompanyResponse}
// @Router       /company [put]
func (h *CompanyHandler) UpdateProfile(c *gin.Context) {
	companyID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req appcompany.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	req.Actor = userID

	resp, err := h.companyService.UpdateProfile(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateSettings godoc
// @Summary      Update billing defaults
// @Tags         company
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=company.CompanyResponse}
// @Router       /company/settings [put]
func (h *CompanyHandler) UpdateSettings(c *gin.Context) {
	companyID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req appcompany.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	req.Actor = userID

	resp, err := h.companyService.UpdateSettings(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// TransferOwnership godoc
// @Summary      Hand the company to another member
// @Tags         company
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=company.CompanyResponse}
// @Router       /company/transfer-ownership [post]
func (h *CompanyHandler) TransferOwnership(c *gin.Context) {
	companyID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req appcompany.TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	req.Actor = userID

	resp, err := h.companyService.TransferOwnership(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

type logoUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// presignTTL is how long issued upload and download URLs stay valid.
const presignTTL = 15 * time.Minute

type uploadURLResponse struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LogoUploadURL godoc
// @Summary      Issue a presigned URL for uploading the company logo
// @Tags         company
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=uploadURLResponse}
// @Router       /company/logo-upload-url [post]
func (h *CompanyHandler) LogoUploadURL(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req logoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	if !storage.IsAllowedUploadType(req.ContentType) {
		h.BadRequest(c, "Unsupported content type")
		return
	}

	key := storage.LogoKey(companyID, req.Filename)
	url, expiresAt, err := h.objectStorage.GenerateUploadURL(c.Request.Context(), key, req.ContentType, presignTTL)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, uploadURLResponse{UploadURL: url, Key: key, ExpiresAt: expiresAt})
}

// ListUsers godoc
// @Summary      List company members
// @Tags         company
// @Produce      json
// @Success      200 {object} dto.Response{data=[]company.UserInfo}
// @Router       /company/users [get]
func (h *CompanyHandler) ListUsers(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	users, err := h.companyService.ListUsers(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, users)
}

// CreateUser godoc
// @Summary      Add a member to the company
// @Tags         company
// @Accept       json
// @Produce      json
// @Success      201 {object} dto.Response{data=company.UserInfo}
// @Router       /company/users [post]
func (h *CompanyHandler) CreateUser(c *gin.Context) {
	companyID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req appcompany.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	req.Actor = userID

	info, err := h.companyService.CreateUser(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// UpdateUserRole godoc
// @Summary      Change a member's role
// @Tags         company
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=company.UserInfo}
// @Router       /company/users/{id}/role [put]
func (h *CompanyHandler) UpdateUserRole(c *gin.Context) {
	companyID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	targetID, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req appcompany.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	req.Actor = userID

	info, err := h.companyService.UpdateUserRole(c.Request.Context(), companyID, targetID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// ActivateUser reactivates a deactivated member
func (h *CompanyHandler) ActivateUser(c *gin.Context) {
	h.memberAction(c, h.companyService.ActivateUser)
}

// DeactivateUser suspends a member's access
func (h *CompanyHandler) DeactivateUser(c *gin.Context) {
	h.memberAction(c, h.companyService.DeactivateUser)
}

// UnlockUser clears a member's failed-login lockout
func (h *CompanyHandler) UnlockUser(c *gin.Context) {
	h.memberAction(c, h.companyService.UnlockUser)
}

// RemoveUser removes a member from the company
func (h *CompanyHandler) RemoveUser(c *gin.Context) {
	h.memberAction(c, h.companyService.RemoveUser)
}

type memberActionFunc func(ctx context.Context, companyID, userID, actor uuid.UUID) error

func (h *CompanyHandler) memberAction(c *gin.Context, fn memberActionFunc) {
	companyID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	targetID, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	if err := fn(c.Request.Context(), companyID, targetID, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *CompanyHandler) identity(c *gin.Context) (companyID, userID uuid.UUID, ok bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	return companyID, userID, true
}
