package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	appreport "github.com/expenseally/backend/internal/application/report"
	"github.com/expenseally/backend/internal/infrastructure/export"
	"github.com/expenseally/backend/internal/infrastructure/persistence"
)

var reportsCmd = &cobra.Command{
	Use:   "reports [aging|pl|cashflow|tax|statement]",
	Short: "Generate a financial report and write it to a file",
	Long: `Reports builds one of the financial reports for a company and
writes it as CSV or XLSX.

The aging report uses today as its as-of date. Profit and loss,
cash flow and statements need a --from/--to window; the tax report
needs a --year. Statements additionally need a --client-id.`,
	Example: `  # Profit and loss for Q1 as a spreadsheet
  expenseally-admin reports pl --company-id <uuid> --from 2026-01-01 --to 2026-03-31 --format xlsx

  # Aging report to a named CSV file
  expenseally-admin reports aging --company-id <uuid> --out aging.csv`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"aging", "pl", "cashflow", "tax", "statement"},
	RunE:      runReports,
}

func init() {
	rootCmd.AddCommand(reportsCmd)

	reportsCmd.Flags().String("company-id", "", "Company UUID (required)")
	reportsCmd.Flags().String("client-id", "", "Client UUID (statement only)")
	reportsCmd.Flags().String("from", "", "Period start (YYYY-MM-DD)")
	reportsCmd.Flags().String("to", "", "Period end (YYYY-MM-DD)")
	reportsCmd.Flags().Int("year", 0, "Tax year (tax only, default: current year)")
	reportsCmd.Flags().String("format", "csv", "Output format: csv or xlsx")
	reportsCmd.Flags().String("out", "", "Output file (default: derived from report and date)")
	_ = reportsCmd.MarkFlagRequired("company-id")
}

func runReports(cmd *cobra.Command, args []string) error {
	reportType := args[0]
	companyIDStr, _ := cmd.Flags().GetString("company-id")
	clientIDStr, _ := cmd.Flags().GetString("client-id")
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")
	year, _ := cmd.Flags().GetInt("year")
	formatStr, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	companyID, err := uuid.Parse(companyIDStr)
	if err != nil {
		return fmt.Errorf("invalid company-id: %w", err)
	}
	format, err := export.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	filter, err := parsePeriod(fromStr, toStr)
	if err != nil {
		return err
	}

	cfg, _, err := bootstrap()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg, "")
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	reportService := appreport.NewReportService(
		persistence.NewGormInvoiceRepository(db.DB),
		persistence.NewGormExpenseRepository(db.DB),
		persistence.NewGormCategoryRepository(db.DB),
		persistence.NewGormClientRepository(db.DB),
	)

	ctx := cmd.Context()
	var doc *export.Document

	switch reportType {
	case "aging":
		r, err := reportService.Aging(ctx, companyID, now)
		if err != nil {
			return err
		}
		doc = export.AgingDocument(r)
	case "pl":
		if filter == nil {
			return fmt.Errorf("pl requires --from and --to")
		}
		r, err := reportService.ProfitLoss(ctx, companyID, *filter)
		if err != nil {
			return err
		}
		doc = export.ProfitLossDocument(r)
	case "cashflow":
		if filter == nil {
			return fmt.Errorf("cashflow requires --from and --to")
		}
		r, err := reportService.CashFlow(ctx, companyID, *filter)
		if err != nil {
			return err
		}
		doc = export.CashFlowDocument(r)
	case "tax":
		if year == 0 {
			year = now.Year()
		}
		r, err := reportService.Tax(ctx, companyID, year)
		if err != nil {
			return err
		}
		doc = export.TaxDocument(r)
	case "statement":
		if filter == nil {
			return fmt.Errorf("statement requires --from and --to")
		}
		clientID, err := uuid.Parse(clientIDStr)
		if err != nil {
			return fmt.Errorf("statement requires a valid --client-id: %w", err)
		}
		s, err := reportService.ClientStatement(ctx, companyID, clientID, *filter)
		if err != nil {
			return err
		}
		doc = export.StatementDocument(s)
	}

	if outPath == "" {
		outPath = export.Filename(reportType, format, now)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	switch format {
	case export.FormatXLSX:
		err = export.WriteXLSX(f, doc)
	default:
		err = export.WriteCSV(f, doc)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("Wrote %s report to %s\n", reportType, outPath)
	return nil
}

func parsePeriod(fromStr, toStr string) (*appreport.PeriodFilter, error) {
	if fromStr == "" && toStr == "" {
		return nil, nil
	}
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --from date, use YYYY-MM-DD: %w", err)
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return nil, fmt.Errorf("invalid --to date, use YYYY-MM-DD: %w", err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("--to cannot be before --from")
	}
	return &appreport.PeriodFilter{From: from, To: to}, nil
}
