package invoicing

import (
	"context"
	"errors"
	"time"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/expenseally/backend/internal/domain/shared/recurrence"
	"github.com/expenseally/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxNumberAttempts bounds the invoice number retry loop on collisions
const maxNumberAttempts = 5

// InvoiceService provides application-level invoice operations
type InvoiceService struct {
	invoiceRepo    invoicing.InvoiceRepository
	clientRepo     client.ClientRepository
	companyRepo    company.CompanyRepository
	eventPublisher shared.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	clientRepo client.ClientRepository,
	companyRepo company.CompanyRepository,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		companyRepo: companyRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ===================== DTOs =====================

// InvoiceItemRequest represents a line item in invoice requests
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	ClientID  uuid.UUID            `json:"client_id" binding:"required"`
	IssueDate *time.Time           `json:"issue_date"`
	DueDate   *time.Time           `json:"due_date"`
	Currency  string               `json:"currency"`
	TaxRate   *decimal.Decimal     `json:"tax_rate"`
	Notes     string               `json:"notes"`
	Terms     string               `json:"terms"`
	Items     []InvoiceItemRequest `json:"items"`
	CreatedBy *uuid.UUID           `json:"-"` // Set from JWT context, not from request body
}

// UpdateInvoiceRequest represents a request to update a draft invoice
type UpdateInvoiceRequest struct {
	DueDate *time.Time           `json:"due_date"`
	TaxRate *decimal.Decimal     `json:"tax_rate"`
	Notes   *string              `json:"notes"`
	Terms   *string              `json:"terms"`
	Items   []InvoiceItemRequest `json:"items"`
}

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate     *time.Time      `json:"payment_date"`
	Method          string          `json:"method" binding:"required"`
	TransactionID   string          `json:"transaction_id"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
	ProcessedBy     *uuid.UUID      `json:"-"`
}

// RefundPaymentRequest represents a request to refund a payment
type RefundPaymentRequest struct {
	PaymentID   uuid.UUID       `json:"payment_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Reason      string          `json:"reason" binding:"required"`
	ProcessedBy *uuid.UUID      `json:"-"`
}

// VoidInvoiceRequest represents a request to void an invoice
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
	Actor  string `json:"-"`
}

// EnableRecurringRequest represents a request to put an invoice on a schedule
type EnableRecurringRequest struct {
	Frequency string     `json:"frequency" binding:"required"`
	FirstDate *time.Time `json:"first_date"`
}

// InvoiceItemResponse represents a line item in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Total       decimal.Decimal `json:"total"`
}

// PaymentRecordResponse represents a payment record in API responses
type PaymentRecordResponse struct {
	ID              uuid.UUID       `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	Method          string          `json:"method"`
	Status          string          `json:"status"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	RefundOf        *uuid.UUID      `json:"refund_of,omitempty"`
	ProcessedBy     *uuid.UUID      `json:"processed_by,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                 uuid.UUID               `json:"id"`
	CompanyID          uuid.UUID               `json:"company_id"`
	InvoiceNumber      string                  `json:"invoice_number"`
	ClientID           uuid.UUID               `json:"client_id"`
	ClientName         string                  `json:"client_name"`
	Status             string                  `json:"status"`
	IssueDate          time.Time               `json:"issue_date"`
	DueDate            time.Time               `json:"due_date"`
	Currency           string                  `json:"currency"`
	Subtotal           decimal.Decimal         `json:"subtotal"`
	TaxRate            decimal.Decimal         `json:"tax_rate"`
	TaxAmount          decimal.Decimal         `json:"tax_amount"`
	TotalAmount        decimal.Decimal         `json:"total_amount"`
	AmountPaid         decimal.Decimal         `json:"amount_paid"`
	BalanceDue         decimal.Decimal         `json:"balance_due"`
	Items              []InvoiceItemResponse   `json:"items"`
	Payments           []PaymentRecordResponse `json:"payments"`
	Notes              string                  `json:"notes,omitempty"`
	Terms              string                  `json:"terms,omitempty"`
	IsRecurring        bool                    `json:"is_recurring"`
	RecurringFrequency string                  `json:"recurring_frequency,omitempty"`
	NextRecurringDate  *time.Time              `json:"next_recurring_date,omitempty"`
	SentAt             *time.Time              `json:"sent_at,omitempty"`
	PaidAt             *time.Time              `json:"paid_at,omitempty"`
	CancelledAt        *time.Time              `json:"cancelled_at,omitempty"`
	ReminderCount      int                     `json:"reminder_count"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
	Version            int                     `json:"version"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Status      string     `form:"status"`
	ClientID    *uuid.UUID `form:"client_id"`
	IssuedFrom  *time.Time `form:"issued_from"`
	IssuedTo    *time.Time `form:"issued_to"`
	DueFrom     *time.Time `form:"due_from"`
	DueTo       *time.Time `form:"due_to"`
	IsRecurring *bool      `form:"is_recurring"`
	Search      string     `form:"search"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
}

// InvoiceListResponse represents a paginated invoice list
type InvoiceListResponse struct {
	Items      []InvoiceResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ===================== Operations =====================

// Create creates a new draft invoice for a client
func (s *InvoiceService) Create(ctx context.Context, companyID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	cl, err := s.clientRepo.FindByIDForCompany(ctx, req.ClientID, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
		}
		return nil, err
	}
	if !cl.IsActive() {
		return nil, shared.NewDomainError("CLIENT_INACTIVE", "Cannot invoice an inactive client")
	}

	comp, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Company not found")
		}
		return nil, err
	}

	now := time.Now()
	issueDate := now
	if req.IssueDate != nil {
		issueDate = *req.IssueDate
	}
	dueDate := issueDate.AddDate(0, 0, cl.PaymentTermsDays)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	currency := comp.Settings.Currency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}
	taxRate := comp.Settings.DefaultTaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	number, err := s.nextInvoiceNumber(ctx, companyID, now)
	if err != nil {
		return nil, err
	}

	inv, err := invoicing.NewInvoice(invoicing.NewInvoiceParams{
		CompanyID:     companyID,
		ClientID:      cl.ID,
		ClientName:    cl.Name,
		InvoiceNumber: number,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Currency:      currency,
		TaxRate:       taxRate,
		Notes:         req.Notes,
		Terms:         req.Terms,
		CreatedBy:     req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	if len(req.Items) > 0 {
		if err := inv.ReplaceItems(toItemInputs(req.Items)); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.raiseCreditAlert(ctx, cl, inv.TotalAmount)
	s.publishEvents(ctx, inv)

	return toInvoiceResponse(inv), nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, companyID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// GetByNumber retrieves an invoice by its invoice number
func (s *InvoiceService) GetByNumber(ctx context.Context, companyID uuid.UUID, number string) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByNumberForCompany(ctx, number, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// List returns a paginated list of invoices for a company
func (s *InvoiceService) List(ctx context.Context, companyID uuid.UUID, filter InvoiceListFilter) (*InvoiceListResponse, error) {
	domainFilter := invoicing.InvoiceFilter{
		Filter:      shared.DefaultFilter(),
		ClientID:    filter.ClientID,
		IssuedFrom:  filter.IssuedFrom,
		IssuedTo:    filter.IssuedTo,
		DueFrom:     filter.DueFrom,
		DueTo:       filter.DueTo,
		IsRecurring: filter.IsRecurring,
		Search:      filter.Search,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		status := invoicing.InvoiceStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown invoice status "+filter.Status)
		}
		domainFilter.Status = &status
	}

	page, err := s.invoiceRepo.FindForCompany(ctx, companyID, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]InvoiceResponse, 0, len(page.Items))
	for _, inv := range page.Items {
		items = append(items, *toInvoiceResponse(inv))
	}
	return &InvoiceListResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Update edits a draft invoice's mutable fields and line items
func (s *InvoiceService) Update(ctx context.Context, companyID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	if req.DueDate != nil {
		if err := inv.SetDueDate(*req.DueDate); err != nil {
			return nil, err
		}
	}
	if req.TaxRate != nil {
		if err := inv.SetTaxRate(*req.TaxRate); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}
	if req.Terms != nil {
		inv.Terms = *req.Terms
	}
	if req.Items != nil {
		if err := inv.ReplaceItems(toItemInputs(req.Items)); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// AddItem appends a line item to an invoice
func (s *InvoiceService) AddItem(ctx context.Context, companyID, invoiceID uuid.UUID, req InvoiceItemRequest) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	if _, err := inv.AddItem(invoicing.ItemInput{
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		TaxRate:     req.TaxRate,
	}); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// RemoveItem deletes a line item from an invoice
func (s *InvoiceService) RemoveItem(ctx context.Context, companyID, invoiceID, itemID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.RemoveItem(itemID); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// Send transitions a draft invoice to SENT
func (s *InvoiceService) Send(ctx context.Context, companyID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.MarkSent(time.Now()); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv)
	return toInvoiceResponse(inv), nil
}

// RecordPayment records a payment against an invoice
func (s *InvoiceService) RecordPayment(ctx context.Context, companyID, invoiceID uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	if _, err := inv.RecordPayment(invoicing.RecordPaymentParams{
		Amount:          req.Amount,
		PaymentDate:     paymentDate,
		Method:          invoicing.PaymentMethod(req.Method),
		TransactionID:   req.TransactionID,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		ProcessedBy:     req.ProcessedBy,
	}); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv)
	return toInvoiceResponse(inv), nil
}

// RefundPayment refunds part or all of a previously recorded payment
func (s *InvoiceService) RefundPayment(ctx context.Context, companyID, invoiceID uuid.UUID, req RefundPaymentRequest) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	if _, err := inv.RefundPayment(req.PaymentID, req.Amount, req.Reason, req.ProcessedBy); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv)
	return toInvoiceResponse(inv), nil
}

// Void cancels an invoice with an audit trail entry
func (s *InvoiceService) Void(ctx context.Context, companyID, invoiceID uuid.UUID, req VoidInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := inv.Void(req.Reason, req.Actor, time.Now()); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, inv)
	return toInvoiceResponse(inv), nil
}

// EnableRecurring puts an invoice on a recurring generation schedule
func (s *InvoiceService) EnableRecurring(ctx context.Context, companyID, invoiceID uuid.UUID, req EnableRecurringRequest) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	firstDate := time.Now()
	if req.FirstDate != nil {
		firstDate = *req.FirstDate
	}
	if err := inv.EnableRecurring(recurrence.Frequency(req.Frequency), firstDate); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// DisableRecurring takes an invoice off its recurring schedule
func (s *InvoiceService) DisableRecurring(ctx context.Context, companyID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.findInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	inv.DisableRecurring()

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// Delete removes a draft invoice. Non-draft invoices must be voided instead.
func (s *InvoiceService) Delete(ctx context.Context, companyID, invoiceID uuid.UUID) error {
	inv, err := s.findInvoice(ctx, companyID, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status != invoicing.InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be deleted")
	}
	return s.invoiceRepo.Delete(ctx, inv.ID)
}

// ===================== Helpers =====================

func (s *InvoiceService) findInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) (*invoicing.Invoice, error) {
	inv, err := s.invoiceRepo.FindByIDForCompany(ctx, invoiceID, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}
		return nil, err
	}
	return inv, nil
}

// nextInvoiceNumber generates a candidate number and retries on the
// unlikely event of a collision within the company.
func (s *InvoiceService) nextInvoiceNumber(ctx context.Context, companyID uuid.UUID, now time.Time) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := invoicing.GenerateInvoiceNumber(now)
		exists, err := s.invoiceRepo.ExistsByNumber(ctx, number, companyID)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", shared.NewDomainError("NUMBER_EXHAUSTED", "Could not allocate a unique invoice number")
}

// raiseCreditAlert publishes a credit alert event when the client's
// outstanding balance plus the new invoice crosses an alert threshold.
// Alerts are advisory; they never block invoice creation.
func (s *InvoiceService) raiseCreditAlert(ctx context.Context, cl *client.Client, newAmount decimal.Decimal) {
	if s.eventPublisher == nil || !cl.HasCreditLimit() {
		return
	}

	invoices, err := s.invoiceRepo.FindByClient(ctx, cl.CompanyID, cl.ID)
	if err != nil {
		return
	}
	// The new invoice is still a draft and not yet outstanding, so its
	// amount is added on top of the committed balance
	outstanding := newAmount
	for _, inv := range invoices {
		if inv.Status.IsOutstanding() {
			outstanding = outstanding.Add(inv.BalanceDue())
		}
	}

	level := cl.CreditAlert(outstanding)
	if level == client.CreditAlertNone {
		return
	}
	event := client.NewClientCreditAlertEvent(cl, level, outstanding)
	_ = s.eventPublisher.Publish(ctx, event)
}

func (s *InvoiceService) publishEvents(ctx context.Context, inv *invoicing.Invoice) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range inv.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			// Event delivery is best-effort; the state change is already committed
			continue
		}
	}
	inv.ClearDomainEvents()
}

func toItemInputs(items []InvoiceItemRequest) []invoicing.ItemInput {
	inputs := make([]invoicing.ItemInput, 0, len(items))
	for _, it := range items {
		inputs = append(inputs, invoicing.ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
		})
	}
	return inputs
}

func toInvoiceResponse(inv *invoicing.Invoice) *InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			Total:       it.Total,
		})
	}
	payments := make([]PaymentRecordResponse, 0, len(inv.Payments))
	for _, p := range inv.Payments {
		payments = append(payments, PaymentRecordResponse{
			ID:              p.ID,
			Amount:          p.Amount,
			PaymentDate:     p.PaymentDate,
			Method:          string(p.Method),
			Status:          string(p.Status),
			TransactionID:   p.TransactionID,
			ReferenceNumber: p.ReferenceNumber,
			Notes:           p.Notes,
			RefundOf:        p.RefundOf,
			ProcessedBy:     p.ProcessedBy,
		})
	}

	return &InvoiceResponse{
		ID:                 inv.ID,
		CompanyID:          inv.CompanyID,
		InvoiceNumber:      inv.InvoiceNumber,
		ClientID:           inv.ClientID,
		ClientName:         inv.ClientName,
		Status:             string(inv.Status),
		IssueDate:          inv.IssueDate,
		DueDate:            inv.DueDate,
		Currency:           string(inv.Currency),
		Subtotal:           inv.Subtotal,
		TaxRate:            inv.TaxRate,
		TaxAmount:          inv.TaxAmount,
		TotalAmount:        inv.TotalAmount,
		AmountPaid:         inv.AmountPaid,
		BalanceDue:         inv.BalanceDue(),
		Items:              items,
		Payments:           payments,
		Notes:              inv.Notes,
		Terms:              inv.Terms,
		IsRecurring:        inv.IsRecurring,
		RecurringFrequency: string(inv.RecurringFrequency),
		NextRecurringDate:  inv.NextRecurringDate,
		SentAt:             inv.SentAt,
		PaidAt:             inv.PaidAt,
		CancelledAt:        inv.CancelledAt,
		ReminderCount:      inv.ReminderCount,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
		Version:            inv.Version,
	}
}
