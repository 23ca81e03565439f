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

func quotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Manage quotations",
		Long:  `Create, list, and display quotations. VAT is applied at a fixed 16%.`,
	}

	cmd.AddCommand(newQuoteCmd())
	cmd.AddCommand(listQuotesCmd())
	cmd.AddCommand(showQuoteCmd())

	return cmd
}

func newQuoteCmd() *cobra.Command {
	var (
		signatory    string
		paymentTerms string
		items        []string
	)

	cmd := &cobra.Command{
		Use:   "new <recipient>",
		Short: "Create a new quotation",
		Long: `Create a quotation for a prospective client.

Each --item flag takes an "item:description:quantity:unit-cost" quadruple.

Example:
  landbook quotes new "Njeri Farms" --signatory "J. Mwangi" \
    --item "Plot 12:Eighth acre:1:100000"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if len(items) == 0 {
				return fmt.Errorf("at least one --item is required")
			}

			quoteItems := make([]model.QuotationItem, 0, len(items))
			for _, raw := range items {
				item, err := parseQuotationItem(raw)
				if err != nil {
					return err
				}
				quoteItems = append(quoteItems, item)
			}

			if signatory == "" {
				signatory = viper.GetString("business.signatory")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			quotation := &model.Quotation{
				ID:           uuid.NewString(),
				Recipient:    args[0],
				Signatory:    signatory,
				PaymentTerms: paymentTerms,
				Items:        quoteItems,
				CreatedAt:    time.Now(),
			}

			if err := store.SaveQuotation(ctx, quotation); err != nil {
				return fmt.Errorf("failed to save quotation: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created quotation for %s (ID: %s)", quotation.Recipient, quotation.ID)))
			fmt.Printf("  Total with VAT: %s\n", cli.FormatAmount(quotation.TotalWithVAT()))

			return nil
		},
	}

	cmd.Flags().StringVar(&signatory, "signatory", "", "Who signs the quotation (default: business.signatory from config)")
	cmd.Flags().StringVar(&paymentTerms, "terms", "", "Payment terms printed on the quotation")
	cmd.Flags().StringArrayVar(&items, "item", nil, `Quotation row as "item:description:quantity:unit-cost" (repeatable)`)

	return cmd
}

// parseQuotationItem parses "item:description:quantity:unit-cost".
func parseQuotationItem(raw string) (model.QuotationItem, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 4 {
		return model.QuotationItem{}, fmt.Errorf("invalid --item value %q, expected \"item:description:quantity:unit-cost\"", raw)
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return model.QuotationItem{}, fmt.Errorf("invalid quantity in %q: %w", raw, err)
	}
	unitCost, err := decimal.NewFromString(strings.TrimSpace(parts[3]))
	if err != nil {
		return model.QuotationItem{}, fmt.Errorf("invalid unit cost in %q: %w", raw, err)
	}

	return model.QuotationItem{
		Item:        strings.TrimSpace(parts[0]),
		Description: strings.TrimSpace(parts[1]),
		Quantity:    quantity,
		UnitCost:    unitCost,
	}, nil
}

func listQuotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all quotations",
		Long:  `Display all quotations newest-first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			quotations, err := store.ListQuotations(ctx)
			if err != nil {
				return fmt.Errorf("failed to list quotations: %w", err)
			}

			if len(quotations) == 0 {
				fmt.Println(cli.InfoStyle.Render("No quotations found. Use 'landbook quotes new' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Recipient"),
				headerStyle.Render("Date"),
				headerStyle.Render("Total with VAT"))

			for _, quotation := range quotations {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					quotation.ID,
					quotation.Recipient,
					quotation.CreatedAt.Format("2006-01-02"),
					cli.FormatAmount(quotation.TotalWithVAT()))
			}

			return nil
		},
	}
}

func showQuoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display one quotation",
		Long:  `Render a full quotation to the terminal.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			quotation, err := store.GetQuotation(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load quotation: %w", err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "To:   %s\n", quotation.Recipient)
			fmt.Fprintf(&b, "Date: %s\n\n", quotation.CreatedAt.Format("2006-01-02"))

			w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Item\tDescription\tQty\tUnit Cost\tAmount\n")
			for _, item := range quotation.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					item.Item,
					item.Description,
					item.Quantity,
					cli.FormatAmount(item.UnitCost),
					cli.FormatAmount(item.Amount()))
			}
			fmt.Fprintf(w, "\tSubtotal\t\t\t%s\n", cli.FormatAmount(quotation.Subtotal()))
			fmt.Fprintf(w, "\tVAT (%s%%)\t\t\t%s\n", model.QuotationVATPercent, cli.FormatAmount(quotation.VATAmount()))
			fmt.Fprintf(w, "\tTotal\t\t\t%s\n", cli.FormatAmount(quotation.TotalWithVAT()))
			w.Flush()

			if quotation.PaymentTerms != "" {
				fmt.Fprintf(&b, "\nTerms: %s\n", quotation.PaymentTerms)
			}
			if quotation.Signatory != "" {
				fmt.Fprintf(&b, "Signed: %s\n", quotation.Signatory)
			}

			fmt.Println(cli.RenderBox("Quotation", b.String()))
			return nil
		},
	}
}
