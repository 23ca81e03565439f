package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mkinyua/landbook/internal/cli"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/spf13/cobra"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Track business expenses",
		Long:  `Record expenses and review running totals.`,
	}

	cmd.AddCommand(addExpenseCmd())
	cmd.AddCommand(listExpensesCmd())

	return cmd
}

func addExpenseCmd() *cobra.Command {
	var (
		expenseType string
		date        string
	)

	cmd := &cobra.Command{
		Use:   "add <description> <amount>",
		Short: "Record an expense",
		Long: `Record a business expense.

Example:
  landbook expenses add "Fuel to site" 1500.50 --type Transport`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			when := time.Now()
			if date != "" {
				when, err = time.ParseInLocation("2006-01-02", date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date value %q, expected \"2006-01-02\": %w", date, err)
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			expense := &model.Expense{
				ID:          uuid.NewString(),
				Type:        expenseType,
				Description: args[0],
				Amount:      amount,
				Date:        when,
			}

			if err := store.SaveExpense(ctx, expense); err != nil {
				return fmt.Errorf("failed to save expense: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Recorded %s expense of %s", expense.Type, cli.FormatAmount(expense.Amount))))
			return nil
		},
	}

	cmd.Flags().StringVar(&expenseType, "type", "General", "Expense category")
	cmd.Flags().StringVar(&date, "date", "", `Expense date as "2006-01-02" (default: today)`)

	return cmd
}

func listExpensesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Long:  `Display all expenses newest-first with the running total.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			expenses, err := store.ListExpenses(ctx)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			if len(expenses) == 0 {
				fmt.Println(cli.InfoStyle.Render("No expenses recorded."))
				return nil
			}

			total, err := store.TotalExpenses(ctx)
			if err != nil {
				return fmt.Errorf("failed to total expenses: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				headerStyle.Render("Date"),
				headerStyle.Render("Type"),
				headerStyle.Render("Description"),
				headerStyle.Render("Amount"))

			for _, expense := range expenses {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					expense.Date.Format("2006-01-02"),
					expense.Type,
					expense.Description,
					cli.FormatAmount(expense.Amount))
			}

			fmt.Fprintf(w, "\n%s\t\t\t%s\n",
				headerStyle.Render("Total"),
				cli.BoldStyle.Render(cli.FormatAmount(total)))

			return nil
		},
	}
}
