package storage

import (
	"context"
	"fmt"

	"github.com/mkinyua/landbook/internal/model"
	"github.com/shopspring/decimal"
)

func (s *SQLiteStorage) appendPaymentTx(ctx context.Context, q queryable, payment *model.Payment) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO payments (
			id, client_id, client_name, stage, amount,
			method, notes, timestamp, previous_balance, resulting_balance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		payment.ID,
		payment.ClientID,
		payment.ClientName,
		string(payment.Stage),
		payment.Amount.String(),
		string(payment.Method),
		payment.Notes,
		payment.Timestamp,
		payment.PreviousBalance.String(),
		payment.ResultingBalance.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment %s: %w", payment.ID, err)
	}
	return nil
}

// ListPaymentsByClient returns the client's payment records newest-first.
func (s *SQLiteStorage) ListPaymentsByClient(ctx context.Context, clientID string) ([]model.Payment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(clientID, "clientID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, client_name, stage, amount,
		       method, notes, timestamp, previous_balance, resulting_balance
		FROM payments
		WHERE client_id = ?
		ORDER BY timestamp DESC, rowid DESC
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var payments []model.Payment
	for rows.Next() {
		var (
			payment      model.Payment
			amountStr    string
			prevStr      string
			resultingStr string
		)
		if err := rows.Scan(
			&payment.ID,
			&payment.ClientID,
			&payment.ClientName,
			&payment.Stage,
			&amountStr,
			&payment.Method,
			&payment.Notes,
			&payment.Timestamp,
			&prevStr,
			&resultingStr,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if payment.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("corrupt payment amount %q: %w", amountStr, err)
		}
		if payment.PreviousBalance, err = decimal.NewFromString(prevStr); err != nil {
			return nil, fmt.Errorf("corrupt previous balance %q: %w", prevStr, err)
		}
		if payment.ResultingBalance, err = decimal.NewFromString(resultingStr); err != nil {
			return nil, fmt.Errorf("corrupt resulting balance %q: %w", resultingStr, err)
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}
