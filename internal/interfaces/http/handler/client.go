package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appclient "github.com/expenseally/backend/internal/application/client"
)

// ClientHandler handles client (customer) endpoints
type ClientHandler struct {
	BaseHandler
	clientService *appclient.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *appclient.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// RegisterRoutes mounts the client routes
func (h *ClientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/clients")
	{
		grp.POST("", h.Create)
		grp.GET("", h.List)
		grp.GET("/:id", h.Get)
		grp.PUT("/:id", h.Update)
		grp.DELETE("/:id", h.Delete)
		grp.POST("/:id/activate", h.Activate)
		grp.POST("/:id/deactivate", h.Deactivate)
		grp.GET("/:id/credit-status", h.CreditStatus)
	}
}

// Create godoc
// @Summary      Create a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Success      201 {object} dto.Response{data=client.ClientResponse}
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appclient.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	resp, err := h.clientService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List godoc
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        search query string false "Search by name or email"
// @Success      200 {object} dto.Response{data=[]client.ClientResponse}
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter appclient.ClientListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.clientService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// Get godoc
// @Summary      Fetch one client
// @Tags         clients
// @Produce      json
// @Success      200 {object} dto.Response{data=client.ClientResponse}
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	companyID, clientID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.clientService.GetByID(c.Request.Context(), companyID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update godoc
// @Summary      Update client fields
// @Tags         clients
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=client.ClientResponse}
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	companyID, clientID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appclient.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.clientService.Update(c.Request.Context(), companyID, clientID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete a client without invoices
// @Tags         clients
// @Success      204
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	companyID, clientID, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), companyID, clientID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Activate reactivates a client
func (h *ClientHandler) Activate(c *gin.Context) {
	companyID, clientID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.clientService.Activate(c.Request.Context(), companyID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Deactivate archives a client; open invoices block it
func (h *ClientHandler) Deactivate(c *gin.Context) {
	companyID, clientID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.clientService.Deactivate(c.Request.Context(), companyID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// CreditStatus godoc
// @Summary      Report a client's credit limit utilization
// @Tags         clients
// @Produce      json
// @Success      200 {object} dto.Response{data=client.CreditStatusResponse}
// @Router       /clients/{id}/credit-status [get]
func (h *ClientHandler) CreditStatus(c *gin.Context) {
	companyID, clientID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.clientService.CreditStatus(c.Request.Context(), companyID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

func (h *ClientHandler) scope(c *gin.Context) (companyID, clientID uuid.UUID, ok bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	clientID, ok = bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid client ID")
		return uuid.Nil, uuid.Nil, false
	}
	return companyID, clientID, true
}
