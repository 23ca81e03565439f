package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mkinyua/landbook/internal/cli"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func invoicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Manage invoices",
		Long:  `Create, list, display, and delete invoices. Numbers are issued sequentially.`,
	}

	cmd.AddCommand(newInvoiceCmd())
	cmd.AddCommand(listInvoicesCmd())
	cmd.AddCommand(showInvoiceCmd())
	cmd.AddCommand(deleteInvoiceCmd())

	return cmd
}

func newInvoiceCmd() *cobra.Command {
	var (
		from       string
		notes      string
		taxPercent string
		dueDays    int
		items      []string
	)

	cmd := &cobra.Command{
		Use:   "new <to>",
		Short: "Create a new invoice",
		Long: `Create an invoice with the next sequential number.

Each --item flag takes a "description:quantity:rate" triple.

Example:
  landbook invoices new "Wanjiku Estates" \
    --item "Plot transfer:1:50000" --item "Survey fees:2:1500"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(items) == 0 {
				return fmt.Errorf("at least one --item is required")
			}

			lineItems := make([]model.LineItem, 0, len(items))
			for _, raw := range items {
				item, err := parseLineItem(raw)
				if err != nil {
					return err
				}
				lineItems = append(lineItems, item)
			}

			tax, err := decimal.NewFromString(taxPercent)
			if err != nil {
				return fmt.Errorf("invalid tax percent %q: %w", taxPercent, err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			number, err := store.NextInvoiceNumber(ctx)
			if err != nil {
				return fmt.Errorf("failed to determine invoice number: %w", err)
			}

			if from == "" {
				from = viper.GetString("business.name")
			}

			now := time.Now()
			invoice := &model.Invoice{
				ID:         uuid.NewString(),
				Number:     number,
				From:       from,
				To:         args[0],
				Notes:      notes,
				Date:       now,
				DueDate:    now.AddDate(0, 0, dueDays),
				TaxPercent: tax,
				Items:      lineItems,
				CreatedAt:  now,
			}

			if err := store.SaveInvoice(ctx, invoice); err != nil {
				return fmt.Errorf("failed to save invoice: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created invoice %s for %s", invoice.Number, invoice.To)))
			fmt.Printf("  Total: %s (tax %s%%)\n", cli.FormatAmount(invoice.Total()), tax)

			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Issuer name (default: business.name from config)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes printed at the bottom of the invoice")
	cmd.Flags().StringVar(&taxPercent, "tax", "0", "Tax percentage applied to the subtotal")
	cmd.Flags().IntVar(&dueDays, "due-days", 30, "Days until the invoice is due")
	cmd.Flags().StringArrayVar(&items, "item", nil, `Line item as "description:quantity:rate" (repeatable)`)

	return cmd
}

// parseLineItem parses "description:quantity:rate". Descriptions may not
// contain colons; quantities and rates are decimals.
func parseLineItem(raw string) (model.LineItem, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return model.LineItem{}, fmt.Errorf("invalid --item value %q, expected \"description:quantity:rate\"", raw)
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return model.LineItem{}, fmt.Errorf("invalid quantity in %q: %w", raw, err)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return model.LineItem{}, fmt.Errorf("invalid rate in %q: %w", raw, err)
	}

	return model.LineItem{
		Description: strings.TrimSpace(parts[0]),
		Quantity:    quantity,
		Rate:        rate,
	}, nil
}

func listInvoicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all invoices",
		Long:  `Display all invoices newest-first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			invoices, err := store.ListInvoices(ctx)
			if err != nil {
				return fmt.Errorf("failed to list invoices: %w", err)
			}

			if len(invoices) == 0 {
				fmt.Println(cli.InfoStyle.Render("No invoices found. Use 'landbook invoices new' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				headerStyle.Render("Number"),
				headerStyle.Render("To"),
				headerStyle.Render("Date"),
				headerStyle.Render("Due"),
				headerStyle.Render("Total"))

			for _, invoice := range invoices {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					invoice.Number,
					invoice.To,
					invoice.Date.Format("2006-01-02"),
					invoice.DueDate.Format("2006-01-02"),
					cli.FormatAmount(invoice.Total()))
			}

			return nil
		},
	}
}

func showInvoiceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <number>",
		Short: "Display one invoice",
		Long:  `Render a full invoice to the terminal.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			invoice, err := store.GetInvoice(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load invoice: %w", err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "From: %s\n", invoice.From)
			fmt.Fprintf(&b, "To:   %s\n", invoice.To)
			fmt.Fprintf(&b, "Date: %s    Due: %s\n\n",
				invoice.Date.Format("2006-01-02"),
				invoice.DueDate.Format("2006-01-02"))

			w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Description\tQty\tRate\tAmount\n")
			for _, item := range invoice.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					item.Description,
					item.Quantity,
					cli.FormatAmount(item.Rate),
					cli.FormatAmount(item.Amount()))
			}
			fmt.Fprintf(w, "\tSubtotal\t\t%s\n", cli.FormatAmount(invoice.Subtotal()))
			fmt.Fprintf(w, "\tTax (%s%%)\t\t%s\n", invoice.TaxPercent, cli.FormatAmount(invoice.TaxAmount()))
			fmt.Fprintf(w, "\tTotal\t\t%s\n", cli.FormatAmount(invoice.Total()))
			w.Flush()

			if invoice.Notes != "" {
				fmt.Fprintf(&b, "\n%s\n", cli.SubtleStyle.Render(invoice.Notes))
			}

			fmt.Println(cli.RenderBox(fmt.Sprintf("Invoice %s", invoice.Number), b.String()))
			return nil
		},
	}
}

func deleteInvoiceCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <number>",
		Short: "Delete an invoice",
		Long:  `Delete an invoice and its line items.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Confirm deletion
			if !force {
				fmt.Printf("Are you sure you want to delete invoice %s? (y/N): ", args[0])
				var response string
				fmt.Scanln(&response)
				if strings.ToLower(response) != "y" {
					fmt.Println("Deletion cancelled.")
					return nil
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteInvoice(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete invoice: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted invoice %s", args[0])))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
