package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mkinyua/landbook/internal/cli"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/spf13/cobra"
)

func paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Record and review payments",
		Long:  `Record stage payments against clients and review their payment history.`,
	}

	cmd.AddCommand(addPaymentCmd())
	cmd.AddCommand(paymentHistoryCmd())

	return cmd
}

func addPaymentCmd() *cobra.Command {
	var (
		stageName string
		method    string
		notes     string
	)

	cmd := &cobra.Command{
		Use:   "add <client-id> <amount>",
		Short: "Record a payment",
		Long: `Record a payment against one of a client's stages.

The payment is rejected if it would push the stage's paid amount past its
total. On success the stage balances and the client's pending balance are
updated atomically with the history record.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			engine := initEngine(store)

			stage, err := parseStage(engine, stageName)
			if err != nil {
				return err
			}

			payment, err := engine.RecordPayment(ctx, args[0], stage, amount, model.PaymentMethod(method), notes)
			if err != nil {
				return fmt.Errorf("failed to record payment: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %s against %s", cli.FormatAmount(payment.Amount), payment.Stage)))
			fmt.Printf("  Balance: %s → %s\n",
				cli.FormatAmount(payment.PreviousBalance),
				cli.FormatAmount(payment.ResultingBalance))

			return nil
		},
	}

	cmd.Flags().StringVar(&stageName, "stage", "", "Stage the payment applies to")
	cmd.Flags().StringVar(&method, "method", "", fmt.Sprintf("Payment method (%v)", model.PaymentMethods()))
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes for the record")
	_ = cmd.MarkFlagRequired("stage")

	return cmd
}

func paymentHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <client-id>",
		Short: "Show a client's payment history",
		Long:  `Display a client's payment records newest-first with running balances.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			engine := initEngine(store)
			payments, err := engine.ListPaymentHistory(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load payment history: %w", err)
			}

			if len(payments) == 0 {
				fmt.Println(cli.InfoStyle.Render("No payments recorded yet."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				headerStyle.Render("Date"),
				headerStyle.Render("Stage"),
				headerStyle.Render("Amount"),
				headerStyle.Render("Method"),
				headerStyle.Render("Before"),
				headerStyle.Render("After"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 16),
				strings.Repeat("-", 16),
				strings.Repeat("-", 12),
				strings.Repeat("-", 12),
				strings.Repeat("-", 12),
				strings.Repeat("-", 12))

			for _, p := range payments {
				method := string(p.Method)
				if method == "" {
					method = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("(none)")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					p.Timestamp.Format("2006-01-02 15:04"),
					p.Stage,
					cli.FormatAmount(p.Amount),
					method,
					cli.FormatAmount(p.PreviousBalance),
					cli.FormatAmount(p.ResultingBalance))
			}

			return nil
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <client-id>",
		Short: "Show a client's pending balance",
		Long:  `Display a client's total pending balance across all stages.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			engine := initEngine(store)
			report, err := engine.GetBalance(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load balance: %w", err)
			}

			if report.PendingBalance.IsZero() {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s is fully paid up", report.ClientName)))
				return nil
			}

			fmt.Printf("%s owes %s\n", report.ClientName, cli.BoldStyle.Render(cli.FormatAmount(report.PendingBalance)))
			return nil
		},
	}
}
