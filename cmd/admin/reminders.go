package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	appinvoicing "github.com/expenseally/backend/internal/application/invoicing"
	"github.com/expenseally/backend/internal/infrastructure/notification"
	"github.com/expenseally/backend/internal/infrastructure/persistence"
)

var remindersCmd = &cobra.Command{
	Use:   "send-reminders",
	Short: "Dispatch invoice payment reminders now",
	Long: `Send-reminders runs the same reminder pass the scheduler runs
nightly: every overdue invoice that has reached its next reminder
step gets an email to the client's billing address, and invoices
approaching their due date get a courtesy notice.

With --type the pass is limited to overdue or upcoming reminders.
With --dry-run the matching invoices are listed without sending
anything or advancing reminder state.`,
	RunE: runReminders,
}

func init() {
	rootCmd.AddCommand(remindersCmd)

	remindersCmd.Flags().Bool("dry-run", false, "List matching invoices without sending")
	remindersCmd.Flags().String("type", "all", "Which reminders to send: overdue, upcoming or all")
	remindersCmd.Flags().Int("days-before-due", appinvoicing.DefaultUpcomingDays,
		"How many days before the due date the upcoming notice goes out")
}

func runReminders(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	reminderType, _ := cmd.Flags().GetString("type")
	daysBefore, _ := cmd.Flags().GetInt("days-before-due")

	if reminderType != "overdue" && reminderType != "upcoming" && reminderType != "all" {
		return fmt.Errorf("invalid --type %q: must be overdue, upcoming or all", reminderType)
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
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	now := time.Now()
	sendOverdue := reminderType == "overdue" || reminderType == "all"
	sendUpcoming := reminderType == "upcoming" || reminderType == "all"

	if dryRun {
		if sendOverdue {
			overdue, err := invoiceRepo.FindOverdue(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%d overdue invoices:\n", len(overdue))
			for _, inv := range overdue {
				fmt.Printf("  %s  %s  %d days overdue, balance %s %s\n",
					inv.InvoiceNumber, inv.ClientName, inv.DaysOverdue(now),
					inv.BalanceDue().StringFixed(2), inv.Currency)
			}
		}
		if sendUpcoming {
			due, err := invoiceRepo.FindDueOn(ctx, now.AddDate(0, 0, daysBefore))
			if err != nil {
				return err
			}
			fmt.Printf("%d invoices due in %d days:\n", len(due), daysBefore)
			for _, inv := range due {
				fmt.Printf("  %s  %s  balance %s %s\n",
					inv.InvoiceNumber, inv.ClientName,
					inv.BalanceDue().StringFixed(2), inv.Currency)
			}
		}
		fmt.Println("Dry run: no reminders sent")
		return nil
	}

	mailer := notification.NewMailer(cfg.SMTP, log)
	notifier := notification.NewEmailReminderNotifier(mailer, log)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	reminders := appinvoicing.NewReminderService(invoiceRepo, clientRepo, notifier, log)

	if sendOverdue {
		stats, err := reminders.DispatchReminders(ctx, now)
		if err != nil {
			return err
		}
		fmt.Printf("Overdue reminders: %d sent, %d skipped, %d failed\n",
			stats.Sent, stats.Skipped, stats.Failed)
	}
	if sendUpcoming {
		stats, err := reminders.DispatchUpcomingReminders(ctx, now, daysBefore)
		if err != nil {
			return err
		}
		fmt.Printf("Upcoming reminders: %d sent, %d skipped, %d failed\n",
			stats.Sent, stats.Skipped, stats.Failed)
	}
	return nil
}
