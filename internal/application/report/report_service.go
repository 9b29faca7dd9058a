package report

import (
	"context"
	"errors"
	"time"

	"github.com/expenseally/backend/internal/domain/client"
	"github.com/expenseally/backend/internal/domain/expense"
	"github.com/expenseally/backend/internal/domain/invoicing"
	"github.com/expenseally/backend/internal/domain/report"
	"github.com/expenseally/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PeriodFilter bounds a report to a date window
type PeriodFilter struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
}

// ReportService assembles financial reports from the company's invoices
// and expenses
type ReportService struct {
	invoiceRepo  invoicing.InvoiceRepository
	expenseRepo  expense.ExpenseRepository
	categoryRepo expense.CategoryRepository
	clientRepo   client.ClientRepository
}

// NewReportService creates a new report service
func NewReportService(
	invoiceRepo invoicing.InvoiceRepository,
	expenseRepo expense.ExpenseRepository,
	categoryRepo expense.CategoryRepository,
	clientRepo client.ClientRepository,
) *ReportService {
	return &ReportService{
		invoiceRepo:  invoiceRepo,
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		clientRepo:   clientRepo,
	}
}

// Aging buckets the company's outstanding receivables by days past due
func (s *ReportService) Aging(ctx context.Context, companyID uuid.UUID, asOf time.Time) (*report.AgingReport, error) {
	invoices, err := s.invoiceRepo.FindOutstanding(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return report.ComputeAging(companyID, invoices, asOf), nil
}

// ClientStatement lists a client's invoices and payments for a period
func (s *ReportService) ClientStatement(ctx context.Context, companyID, clientID uuid.UUID, filter PeriodFilter) (*report.ClientStatement, error) {
	cl, err := s.findClient(ctx, companyID, clientID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.FindByClient(ctx, companyID, clientID)
	if err != nil {
		return nil, err
	}

	return report.BuildClientStatement(companyID, clientID, cl.Name, invoices, filter.From, filter.To), nil
}

// ProfitLoss summarizes revenue against spending for a period
func (s *ReportService) ProfitLoss(ctx context.Context, companyID uuid.UUID, filter PeriodFilter) (*report.ProfitLossReport, error) {
	invoices, err := s.invoiceRepo.FindIssuedBetween(ctx, companyID, filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindBetween(ctx, companyID, filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	names, err := s.categoryNames(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return report.ComputeProfitLoss(companyID, invoices, expenses, names, filter.From, filter.To), nil
}

// CashFlow tracks payments received against expenses paid for a period
func (s *ReportService) CashFlow(ctx context.Context, companyID uuid.UUID, filter PeriodFilter) (*report.CashFlowReport, error) {
	// Payments in the window can sit on invoices issued well before it,
	// so the invoice load is bounded only by the window's end
	invoices, err := s.invoiceRepo.FindIssuedBetween(ctx, companyID, time.Time{}, filter.To)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindBetween(ctx, companyID, filter.From, filter.To)
	if err != nil {
		return nil, err
	}

	return report.ComputeCashFlow(companyID, invoices, expenses, filter.From, filter.To), nil
}

// Tax summarizes tax collected and deductible spending for a calendar year
func (s *ReportService) Tax(ctx context.Context, companyID uuid.UUID, year int) (*report.TaxReport, error) {
	if year < 2000 || year > time.Now().Year()+1 {
		return nil, shared.NewDomainError("INVALID_YEAR", "Year is out of range")
	}

	from, to := report.YearRange(year)
	invoices, err := s.invoiceRepo.FindIssuedBetween(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.FindBetween(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}
	names, err := s.categoryNames(ctx, companyID)
	if err != nil {
		return nil, err
	}

	return report.ComputeTaxReport(companyID, invoices, expenses, names, year), nil
}

// ClientDashboard summarizes one client's account health
func (s *ReportService) ClientDashboard(ctx context.Context, companyID, clientID uuid.UUID) (*report.ClientDashboard, error) {
	cl, err := s.findClient(ctx, companyID, clientID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.FindByClient(ctx, companyID, clientID)
	if err != nil {
		return nil, err
	}

	return report.ComputeClientDashboard(clientID, cl.Name, invoices, time.Now()), nil
}

// BusinessOverview compares the period's revenue, spending and profit
// against the immediately preceding period of equal length
func (s *ReportService) BusinessOverview(ctx context.Context, companyID uuid.UUID, filter PeriodFilter) (*report.BusinessOverview, error) {
	span := filter.To.Sub(filter.From)
	prevFrom := filter.From.Add(-span)
	prevTo := filter.From.Add(-time.Nanosecond)

	current, err := s.ProfitLoss(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	previous, err := s.ProfitLoss(ctx, companyID, PeriodFilter{From: prevFrom, To: prevTo})
	if err != nil {
		return nil, err
	}

	outstanding, err := s.invoiceRepo.FindOutstanding(ctx, companyID)
	if err != nil {
		return nil, err
	}

	overview := &report.BusinessOverview{
		CompanyID:   companyID,
		PeriodStart: filter.From,
		PeriodEnd:   filter.To,
		Revenue:     report.ComparePeriods(current.Revenue, previous.Revenue),
		Expenses:    report.ComparePeriods(current.TotalExpenses, previous.TotalExpenses),
		Profit:      report.ComparePeriods(current.NetProfit, previous.NetProfit),
	}

	now := time.Now()
	for _, inv := range outstanding {
		overview.OutstandingReceivables = overview.OutstandingReceivables.Add(inv.BalanceDue())
		overview.OpenInvoiceCount++
		if inv.IsOverdue(now) {
			overview.OverdueReceivables = overview.OverdueReceivables.Add(inv.BalanceDue())
			overview.OverdueInvoiceCount++
		}
	}

	return overview, nil
}

func (s *ReportService) findClient(ctx context.Context, companyID, clientID uuid.UUID) (*client.Client, error) {
	cl, err := s.clientRepo.FindByIDForCompany(ctx, clientID, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
		}
		return nil, err
	}
	return cl, nil
}

func (s *ReportService) categoryNames(ctx context.Context, companyID uuid.UUID) (map[uuid.UUID]string, error) {
	categories, err := s.categoryRepo.FindAllForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	return names, nil
}
