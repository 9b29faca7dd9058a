package pdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/expenseally/backend/internal/domain/company"
	"github.com/expenseally/backend/internal/domain/invoicing"
)

var invoiceTemplate = template.Must(template.New("invoice").Parse(`
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #1a1a1a; }
  h1 { font-size: 22px; margin-bottom: 2px; }
  .meta { color: #555; }
  .parties { width: 100%; margin: 18px 0; }
  .parties td { vertical-align: top; width: 50%; }
  table.items { width: 100%; border-collapse: collapse; margin-top: 12px; }
  table.items th { text-align: left; border-bottom: 2px solid #1a1a1a; padding: 6px 4px; }
  table.items td { border-bottom: 1px solid #ddd; padding: 6px 4px; }
  .num { text-align: right; }
  .totals { margin-top: 10px; margin-left: auto; }
  .totals td { padding: 3px 8px; }
  .totals .due { font-weight: bold; border-top: 2px solid #1a1a1a; }
  .status { display: inline-block; padding: 2px 8px; border: 1px solid #1a1a1a; font-weight: bold; }
  .section { margin-top: 18px; }
  .muted { color: #777; font-size: 11px; }
</style>

<h1>Invoice {{.Number}}</h1>
<p class="meta">
  Issued {{.IssueDate}} &middot; Due {{.DueDate}} &middot;
  <span class="status">{{.Status}}</span>
</p>

<table class="parties">
  <tr>
    <td>
      <strong>{{.CompanyName}}</strong><br>
      {{if .CompanyLegalName}}{{.CompanyLegalName}}<br>{{end}}
      {{if .CompanyAddress}}{{.CompanyAddress}}<br>{{end}}
      {{if .CompanyTaxID}}Tax ID: {{.CompanyTaxID}}{{end}}
    </td>
    <td>
      <span class="muted">Billed to</span><br>
      <strong>{{.ClientName}}</strong>
    </td>
  </tr>
</table>

<table class="items">
  <tr><th>Description</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Tax</th><th class="num">Total</th></tr>
  {{range .Items}}
  <tr>
    <td>{{.Description}}</td>
    <td class="num">{{.Quantity}}</td>
    <td class="num">{{.UnitPrice}}</td>
    <td class="num">{{.TaxRate}}%</td>
    <td class="num">{{.Total}}</td>
  </tr>
  {{end}}
</table>

<table class="totals">
  <tr><td>Subtotal</td><td class="num">{{.Currency}} {{.Subtotal}}</td></tr>
  {{if .ShowTax}}<tr><td>Tax ({{.TaxRate}}%)</td><td class="num">{{.Currency}} {{.TaxAmount}}</td></tr>{{end}}
  <tr><td>Total</td><td class="num">{{.Currency}} {{.Total}}</td></tr>
  <tr><td>Paid</td><td class="num">{{.Currency}} {{.AmountPaid}}</td></tr>
  <tr class="due"><td>Balance due</td><td class="num">{{.Currency}} {{.BalanceDue}}</td></tr>
</table>

{{if .Payments}}
<div class="section">
  <strong>Payments</strong>
  <table class="items">
    <tr><th>Date</th><th>Method</th><th>Reference</th><th class="num">Amount</th></tr>
    {{range .Payments}}
    <tr>
      <td>{{.Date}}</td>
      <td>{{.Method}}</td>
      <td>{{.Reference}}</td>
      <td class="num">{{.Amount}}</td>
    </tr>
    {{end}}
  </table>
</div>
{{end}}

{{if .Notes}}<div class="section"><strong>Notes</strong><p>{{.Notes}}</p></div>{{end}}
{{if .Terms}}<div class="section muted"><strong>Terms</strong><p>{{.Terms}}</p></div>{{end}}
`))

type invoiceItemData struct {
	Description string
	Quantity    string
	UnitPrice   string
	TaxRate     string
	Total       string
}

type invoicePaymentData struct {
	Date      string
	Method    string
	Reference string
	Amount    string
}

type invoiceData struct {
	Number           string
	Status           string
	IssueDate        string
	DueDate          string
	CompanyName      string
	CompanyLegalName string
	CompanyAddress   string
	CompanyTaxID     string
	ClientName       string
	Currency         string
	Items            []invoiceItemData
	Subtotal         string
	ShowTax          bool
	TaxRate          string
	TaxAmount        string
	Total            string
	AmountPaid       string
	BalanceDue       string
	Payments         []invoicePaymentData
	Notes            string
	Terms            string
}

// RenderInvoiceHTML produces the HTML body of an invoice document.
func RenderInvoiceHTML(inv *invoicing.Invoice, comp *company.Company) (string, error) {
	data := invoiceData{
		Number:     inv.InvoiceNumber,
		Status:     string(inv.Status),
		IssueDate:  inv.IssueDate.Format("January 2, 2006"),
		DueDate:    inv.DueDate.Format("January 2, 2006"),
		ClientName: inv.ClientName,
		Currency:   string(inv.Currency),
		Subtotal:   inv.Subtotal.StringFixed(2),
		ShowTax:    !inv.TaxRate.IsZero(),
		TaxRate:    inv.TaxRate.StringFixed(2),
		TaxAmount:  inv.TaxAmount.StringFixed(2),
		Total:      inv.TotalAmount.StringFixed(2),
		AmountPaid: inv.AmountPaid.StringFixed(2),
		BalanceDue: inv.BalanceDue().StringFixed(2),
		Notes:      inv.Notes,
		Terms:      inv.Terms,
	}
	if comp != nil {
		data.CompanyName = comp.Name
		data.CompanyLegalName = comp.LegalName
		data.CompanyAddress = comp.Address
		data.CompanyTaxID = comp.TaxID
	}

	for _, item := range inv.Items {
		data.Items = append(data.Items, invoiceItemData{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.StringFixed(2),
			TaxRate:     item.TaxRate.StringFixed(0),
			Total:       item.Total.StringFixed(2),
		})
	}

	for _, p := range inv.Payments {
		if !p.Status.CountsTowardBalance() {
			continue
		}
		data.Payments = append(data.Payments, invoicePaymentData{
			Date:      p.PaymentDate.Format("Jan 2, 2006"),
			Method:    string(p.Method),
			Reference: p.ReferenceNumber,
			Amount:    p.Amount.StringFixed(2),
		})
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// InvoiceDocumentService renders invoices through a Renderer.
type InvoiceDocumentService struct {
	renderer Renderer
}

// NewInvoiceDocumentService creates the document service.
func NewInvoiceDocumentService(renderer Renderer) *InvoiceDocumentService {
	return &InvoiceDocumentService{renderer: renderer}
}

// RenderInvoice produces the PDF bytes for an invoice.
func (s *InvoiceDocumentService) RenderInvoice(ctx context.Context, inv *invoicing.Invoice, comp *company.Company) ([]byte, error) {
	html, err := RenderInvoiceHTML(inv, comp)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to build invoice HTML", err)
	}

	result, err := s.renderer.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      fmt.Sprintf("Invoice %s", inv.InvoiceNumber),
		FooterHTML: `<div style="font-size:9px;width:100%;text-align:center;color:#777;"><span class="pageNumber"></span> / <span class="totalPages"></span></div>`,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}
