package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mkinyua/landbook/internal/cli"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func clientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage clients",
		Long:  `Add, list, and inspect clients and their payment stages.`,
	}

	cmd.AddCommand(addClientCmd())
	cmd.AddCommand(listClientsCmd())
	cmd.AddCommand(showClientCmd())
	cmd.AddCommand(watchClientCmd())

	return cmd
}

func addClientCmd() *cobra.Command {
	var (
		lrNo   string
		stages []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new client",
		Long: `Create a new client with funded payment stages.

Each --stage flag takes a "Stage Name=total" pair. Stages without a flag
start with a zero total and are considered settled.

Example:
  landbook clients add "Wanjiku Estates" --lr-no "LR 2041/88" \
    --stage "Downpayment=150000" --stage "Title Payments=50000"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			engine := initEngine(store)

			stageTotals := make(map[model.StageName]decimal.Decimal)
			for _, pair := range stages {
				name, rawTotal, found := strings.Cut(pair, "=")
				if !found {
					return fmt.Errorf("invalid --stage value %q, expected \"Stage Name=total\"", pair)
				}
				stage, err := parseStage(engine, strings.TrimSpace(name))
				if err != nil {
					return err
				}
				total, err := parseAmount(strings.TrimSpace(rawTotal))
				if err != nil {
					return err
				}
				stageTotals[stage] = total
			}

			client, err := engine.CreateClient(ctx, args[0], lrNo, stageTotals)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created client %q (ID: %s)", client.Name, client.ID)))
			fmt.Printf("  Pending balance: %s\n", cli.FormatAmount(client.PendingBalance()))

			return nil
		},
	}

	cmd.Flags().StringVar(&lrNo, "lr-no", "", "Land reference number")
	cmd.Flags().StringArrayVar(&stages, "stage", nil, `Stage total as "Stage Name=total" (repeatable)`)
	_ = cmd.MarkFlagRequired("lr-no")

	return cmd
}

func listClientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all clients",
		Long:  `Display all clients newest-first with their pending balances.`,
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

			if len(clients) == 0 {
				fmt.Println(cli.InfoStyle.Render("No clients found. Use 'landbook clients add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Name"),
				headerStyle.Render("LR No"),
				headerStyle.Render("Pending"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 36),
				strings.Repeat("-", 24),
				strings.Repeat("-", 12),
				strings.Repeat("-", 14))

			for _, client := range clients {
				pending := client.PendingBalance()
				rendered := cli.FormatAmount(pending)
				if pending.IsZero() {
					rendered = cli.PaidStyle.Render(rendered)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", client.ID, client.Name, client.LRNo, rendered)
			}

			return nil
		},
	}
}

func showClientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <client-id>",
		Short: "Show one client's stages",
		Long:  `Display a client's payment stages with totals, paid amounts, and what remains.`,
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
				return fmt.Errorf("failed to load client: %w", err)
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("%s (%s)", report.ClientName, report.LRNo)))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				headerStyle.Render("Stage"),
				headerStyle.Render("Total"),
				headerStyle.Render("Paid"),
				headerStyle.Render("Remaining"),
				headerStyle.Render("Status"))

			for _, stage := range report.Stages {
				status := cli.OwingStyle.Render("owing")
				if stage.IsPaid {
					status = cli.PaidStyle.Render("paid")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					stage.Stage,
					cli.FormatAmount(stage.Total),
					cli.FormatAmount(stage.Paid),
					cli.FormatAmount(stage.Remaining),
					status)
			}

			fmt.Fprintf(w, "\n%s\t%s\n",
				headerStyle.Render("Pending balance"),
				cli.FormatAmount(report.PendingBalance))

			return nil
		},
	}
}

func watchClientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <client-id>",
		Short: "Watch a client for changes",
		Long: `Stream change notifications for one client until interrupted.

Each committed payment or client update prints the client's new pending
balance as it lands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			clientID := args[0]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			// Fail fast on unknown clients before blocking
			if _, err := store.GetClient(ctx, clientID); err != nil {
				return fmt.Errorf("failed to load client: %w", err)
			}

			events, cancel := store.WatchClient(clientID)
			defer cancel()

			fmt.Println(cli.FormatInfo(fmt.Sprintf("Watching client %s (Ctrl+C to stop)", clientID)))

			for {
				select {
				case <-ctx.Done():
					return nil
				case event, ok := <-events:
					if !ok {
						return nil
					}
					fmt.Printf("%s %s: pending balance %s\n",
						event.At.Format("15:04:05"),
						event.Type,
						cli.FormatAmount(event.Client.PendingBalance()))
				}
			}
		},
	}
}
