package storage

import (
	"context"
	"fmt"

	"github.com/mkinyua/landbook/internal/model"
	"github.com/shopspring/decimal"
)

// SaveExpense inserts an expense entry.
func (s *SQLiteStorage) SaveExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, type, amount, description, date)
		VALUES (?, ?, ?, ?, ?)
	`,
		expense.ID,
		expense.Type,
		expense.Amount.String(),
		expense.Description,
		expense.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense %s: %w", expense.ID, err)
	}
	return nil
}

// ListExpenses returns all expenses newest-first.
func (s *SQLiteStorage) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, amount, description, date
		FROM expenses
		ORDER BY date DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		var (
			expense   model.Expense
			amountStr string
		)
		if err := rows.Scan(
			&expense.ID,
			&expense.Type,
			&amountStr,
			&expense.Description,
			&expense.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if expense.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("corrupt expense amount %q: %w", amountStr, err)
		}
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

// TotalExpenses sums all expense amounts. The sum is computed in decimal
// arithmetic rather than SQL to avoid float rounding on the TEXT amounts.
func (s *SQLiteStorage) TotalExpenses(ctx context.Context) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT amount FROM expenses`)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read expense amounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	total := decimal.Zero
	for rows.Next() {
		var amountStr string
		if err := rows.Scan(&amountStr); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan expense amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return decimal.Zero, fmt.Errorf("corrupt expense amount %q: %w", amountStr, err)
		}
		total = total.Add(amount)
	}

	return total, rows.Err()
}
