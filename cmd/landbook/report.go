package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mkinyua/landbook/internal/cli"
	"github.com/mkinyua/landbook/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var owingOnly bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Business-wide ledger summary",
		Long: `Summarize the ledger across all clients: who owes what, the total
outstanding, and recorded expenses.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			clients, err := store.ListClients(ctx)
			if err != nil {
				return fmt.Errorf("failed to list clients: %w", err)
			}

			summary := service.LedgerSummary{TotalPending: decimal.Zero}
			for _, client := range clients {
				pending := client.PendingBalance()
				if owingOnly && pending.IsZero() {
					continue
				}
				summary.Clients = append(summary.Clients, service.ClientBalance{
					ClientID:       client.ID,
					ClientName:     client.Name,
					LRNo:           client.LRNo,
					PendingBalance: pending,
				})
				summary.TotalPending = summary.TotalPending.Add(pending)
			}

			expenses, err := store.TotalExpenses(ctx)
			if err != nil {
				return fmt.Errorf("failed to total expenses: %w", err)
			}

			fmt.Println(cli.FormatTitle("Ledger Summary"))

			if len(summary.Clients) == 0 {
				fmt.Println(cli.InfoStyle.Render("No clients to report on."))
			} else {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

				headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					headerStyle.Render("Client"),
					headerStyle.Render("LR No"),
					headerStyle.Render("Pending"))
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					strings.Repeat("-", 24),
					strings.Repeat("-", 12),
					strings.Repeat("-", 14))

				for _, row := range summary.Clients {
					rendered := cli.FormatAmount(row.PendingBalance)
					if row.PendingBalance.IsZero() {
						rendered = cli.PaidStyle.Render(rendered)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", row.ClientName, row.LRNo, rendered)
				}
				w.Flush()
			}

			fmt.Println()
			fmt.Printf("%s %s\n",
				cli.BoldStyle.Render("Total pending:"),
				cli.FormatAmount(summary.TotalPending))
			fmt.Printf("%s %s\n",
				cli.BoldStyle.Render("Total expenses:"),
				cli.FormatAmount(expenses))

			return nil
		},
	}

	cmd.Flags().BoolVar(&owingOnly, "owing", false, "Only include clients with a pending balance")

	return cmd
}
