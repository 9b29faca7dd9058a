package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	appclient "github.com/expenseally/backend/internal/application/client"
	appreport "github.com/expenseally/backend/internal/application/report"
	"github.com/expenseally/backend/internal/infrastructure/notification"
	"github.com/expenseally/backend/internal/infrastructure/persistence"
)

var notificationsCmd = &cobra.Command{
	Use:   "send-notifications",
	Short: "Dispatch summary emails and credit alerts now",
	Long: `Send-notifications runs the periodic notification passes on
demand instead of waiting for their scheduled slots: the weekly
summary email, the monthly digest, and the credit alert check.

With --type the run is limited to one pass. Credit alerts are
published to the event bus subscribers the server carries; run from
this command they are evaluated and logged only.`,
	RunE: runNotifications,
}

func init() {
	rootCmd.AddCommand(notificationsCmd)

	notificationsCmd.Flags().String("type", "all", "Which pass to run: weekly, monthly, credit-alerts or all")
}

func runNotifications(cmd *cobra.Command, args []string) error {
	passType, _ := cmd.Flags().GetString("type")
	if passType != "weekly" && passType != "monthly" && passType != "credit-alerts" && passType != "all" {
		return fmt.Errorf("invalid --type %q: must be weekly, monthly, credit-alerts or all", passType)
	}

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg, "")
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	now := time.Now()

	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)

	if passType == "weekly" || passType == "monthly" || passType == "all" {
		mailer := notification.NewMailer(cfg.SMTP, log)
		reportService := appreport.NewReportService(invoiceRepo, expenseRepo, categoryRepo, clientRepo)
		digests := notification.NewDigestService(companyRepo, userRepo, reportService, mailer, log)

		if passType == "weekly" || passType == "all" {
			if err := digests.SendWeeklySummaries(ctx, now); err != nil {
				return fmt.Errorf("send weekly summaries: %w", err)
			}
			fmt.Println("Weekly summaries sent")
		}
		if passType == "monthly" || passType == "all" {
			if err := digests.SendMonthlyDigests(ctx, now); err != nil {
				return fmt.Errorf("send monthly digests: %w", err)
			}
			fmt.Println("Monthly digests sent")
		}
	}

	if passType == "credit-alerts" || passType == "all" {
		creditMonitor := appclient.NewCreditMonitorService(clientRepo, invoiceRepo, log)
		stats, err := creditMonitor.CheckAll(ctx)
		if err != nil {
			return fmt.Errorf("check credit limits: %w", err)
		}
		fmt.Printf("Credit check: %d clients checked, %d alerted, %d failed\n",
			stats.Checked, stats.Alerted, stats.Failed)
	}
	return nil
}
