package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinvoicing "github.com/expenseally/backend/internal/application/invoicing"
	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/expenseally/backend/internal/infrastructure/pdf"
)

// InvoiceHandler handles invoice lifecycle endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *appinvoicing.InvoiceService
	invoiceRepo    invoicing.InvoiceRepository
	companyRepo    company.CompanyRepository
	documents      *pdf.InvoiceDocumentService
}

// NewInvoiceHandler creates a new invoice handler. The document service is
// optional; PDF downloads return 503 without it.
func NewInvoiceHandler(
	invoiceService *appinvoicing.InvoiceService,
	invoiceRepo invoicing.InvoiceRepository,
	companyRepo company.CompanyRepository,
	documents *pdf.InvoiceDocumentService,
) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		invoiceRepo:    invoiceRepo,
		companyRepo:    companyRepo,
		documents:      documents,
	}
}

// RegisterRoutes mounts the invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	grp := rg.Group("/invoices")
	{
		grp.POST("", h.Create)
		grp.GET("", h.List)
		grp.GET("/:id", h.Get)
		grp.PUT("/:id", h.Update)
		grp.DELETE("/:id", h.Delete)
		grp.POST("/:id/items", h.AddItem)
		grp.DELETE("/:id/items/:itemID", h.RemoveItem)
		grp.POST("/:id/send", h.Send)
		grp.POST("/:id/void", h.Void)
		grp.POST("/:id/payments", h.RecordPayment)
		grp.POST("/:id/refunds", h.RefundPayment)
		grp.POST("/:id/recurring", h.EnableRecurring)
		grp.DELETE("/:id/recurring", h.DisableRecurring)
		grp.GET("/:id/pdf", h.DownloadPDF)
	}
}

// Create godoc
// @Summary      Create a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Success      201 {object} dto.Response{data=invoicing.InvoiceResponse}
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appinvoicing.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	resp, err := h.invoiceService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        client_id query string false "Filter by client"
// @Success      200 {object} dto.Response{data=[]invoicing.InvoiceResponse}
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter appinvoicing.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	resp, err := h.invoiceService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// Get godoc
// @Summary      Fetch one invoice with items and payments
// @Tags         invoices
// @Produce      json
// @Success      200 {object} dto.Response{data=invoicing.InvoiceResponse}
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	companyID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.invoiceService.GetByID(c.Request.Context(), companyID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Update godoc
// @Summary      Update a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=invoicing.InvoiceResponse}
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	companyID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appinvoicing.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.invoiceService.Update(c.Request.Context(), companyID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Delete godoc
// @Summary      Delete a draft invoice
// @Tags         invoices
// @Success      204
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	companyID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), companyID, invoiceID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// AddItem appends a line item to a draft invoice
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	companyID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appinvoicing.InvoiceItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.invoiceService.AddItem(c.Request.Context(), companyID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RemoveItem removes a line item from a draft invoice
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	companyID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	resp, err := h.invoiceService.RemoveItem(c.Request.Context(), companyID, invoiceID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Send godoc
// @Summary      Mark a draft invoice as sent
// @Tags         invoices
// @Produce      json
// @Success      200 {object} dto.Response{data=invoicing.InvoiceResponse}
// @Router       /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	companyID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.invoiceService.Send(c.Request.Context(), companyID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Void godoc
// @Summary      Void an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=invoicing.InvoiceResponse}
// @Router       /invoices/{id}/void [post]
func (h *InvoiceHandler) Void(c *gin.Context) {
	companyID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appinvoicing.VoidInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.Actor = userID.String()
	}

	resp, err := h.invoiceService.Void(c.Request.Context(), companyID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RecordPayment godoc
// @Summary      Record a payment against an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=invoicing.InvoiceResponse}
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	companyID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appinvoicing.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.ProcessedBy = &userID
	}

	resp, err := h.invoiceService.RecordPayment(c.Request.Context(), companyID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// RefundPayment godoc
// @Summary      Refund all or part of a recorded payment
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=invoicing.InvoiceResponse}
// @Router       /invoices/{id}/refunds [post]
func (h *InvoiceHandler) RefundPayment(c *gin.Context) {
	companyID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appinvoicing.RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.ProcessedBy = &userID
	}

	resp, err := h.invoiceService.RefundPayment(c.Request.Context(), companyID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// EnableRecurring puts an invoice on a generation schedule
func (h *InvoiceHandler) EnableRecurring(c *gin.Context) {
	companyID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	var req appinvoicing.EnableRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.invoiceService.EnableRecurring(c.Request.Context(), companyID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DisableRecurring takes an invoice off its schedule
func (h *InvoiceHandler) DisableRecurring(c *gin.Context) {
	companyID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}

	resp, err := h.invoiceService.DisableRecurring(c.Request.Context(), companyID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DownloadPDF godoc
// @Summary      Render the invoice as a PDF
// @Tags         invoices
// @Produce      application/pdf
// @Success      200 {file} binary
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *gin.Context) {
	companyID, invoiceID, ok := h.scope(c)
	if !ok {
		return
	}
	if h.documents == nil {
		h.Error(c, http.StatusServiceUnavailable, "PDF_UNAVAILABLE", "PDF rendering is not configured")
		return
	}

	inv, err := h.invoiceRepo.FindByIDForCompany(c.Request.Context(), invoiceID, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "Invoice not found")
			return
		}
		h.HandleError(c, err)
		return
	}

	comp, err := h.companyRepo.FindByID(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	data, err := h.documents.RenderInvoice(c.Request.Context(), inv, comp)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("invoice_%s.pdf", inv.InvoiceNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *InvoiceHandler) scope(c *gin.Context) (companyID, invoiceID uuid.UUID, ok bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	invoiceID, ok = bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid invoice ID")
		return uuid.Nil, uuid.Nil, false
	}
	return companyID, invoiceID, true
}
