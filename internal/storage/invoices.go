package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkinyua/landbook/internal/common"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/shopspring/decimal"
)

// SaveInvoice inserts or replaces an invoice by number, items included.
func (s *SQLiteStorage) SaveInvoice(ctx context.Context, invoice *model.Invoice) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateInvoice(invoice); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (number, id, bill_from, bill_to, date, due_date, tax_percent, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			bill_from = excluded.bill_from,
			bill_to = excluded.bill_to,
			date = excluded.date,
			due_date = excluded.due_date,
			tax_percent = excluded.tax_percent,
			notes = excluded.notes
	`,
		invoice.Number,
		invoice.ID,
		invoice.From,
		invoice.To,
		invoice.Date,
		invoice.DueDate,
		invoice.TaxPercent.String(),
		invoice.Notes,
		invoice.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save invoice %s: %w", invoice.Number, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM invoice_items WHERE invoice_number = ?`, invoice.Number); err != nil {
		return fmt.Errorf("failed to clear invoice items: %w", err)
	}

	for i, item := range invoice.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_items (invoice_number, position, description, quantity, rate)
			VALUES (?, ?, ?, ?, ?)
		`,
			invoice.Number,
			i,
			item.Description,
			item.Quantity.String(),
			item.Rate.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert invoice item %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetInvoice retrieves an invoice by number.
func (s *SQLiteStorage) GetInvoice(ctx context.Context, number string) (*model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(number, "number"); err != nil {
		return nil, err
	}

	invoice := &model.Invoice{Number: number}
	var taxStr string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, bill_from, bill_to, date, due_date, tax_percent, notes, created_at
		FROM invoices
		WHERE number = ?
	`, number).Scan(
		&invoice.ID,
		&invoice.From,
		&invoice.To,
		&invoice.Date,
		&invoice.DueDate,
		&taxStr,
		&invoice.Notes,
		&invoice.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", number, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.TaxPercent, err = decimal.NewFromString(taxStr); err != nil {
		return nil, fmt.Errorf("corrupt tax percent %q: %w", taxStr, err)
	}

	items, err := s.getInvoiceItems(ctx, number)
	if err != nil {
		return nil, err
	}
	invoice.Items = items

	return invoice, nil
}

func (s *SQLiteStorage) getInvoiceItems(ctx context.Context, number string) ([]model.LineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT description, quantity, rate
		FROM invoice_items
		WHERE invoice_number = ?
		ORDER BY position
	`, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.LineItem
	for rows.Next() {
		var (
			item        model.LineItem
			quantityStr string
			rateStr     string
		)
		if err := rows.Scan(&item.Description, &quantityStr, &rateStr); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		if item.Quantity, err = decimal.NewFromString(quantityStr); err != nil {
			return nil, fmt.Errorf("corrupt item quantity %q: %w", quantityStr, err)
		}
		if item.Rate, err = decimal.NewFromString(rateStr); err != nil {
			return nil, fmt.Errorf("corrupt item rate %q: %w", rateStr, err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ListInvoices returns all invoices newest-first, items included.
func (s *SQLiteStorage) ListInvoices(ctx context.Context) ([]model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT number FROM invoices ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var numbers []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, fmt.Errorf("failed to scan invoice number: %w", err)
		}
		numbers = append(numbers, number)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	invoices := make([]model.Invoice, 0, len(numbers))
	for _, number := range numbers {
		invoice, err := s.GetInvoice(ctx, number)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *invoice)
	}

	return invoices, nil
}

// DeleteInvoice removes an invoice and its items.
func (s *SQLiteStorage) DeleteInvoice(ctx context.Context, number string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(number, "number"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM invoice_items WHERE invoice_number = ?`, number); err != nil {
		return fmt.Errorf("failed to delete invoice items: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM invoices WHERE number = ?`, number)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice %s: %w", number, common.ErrNotFound)
	}

	return tx.Commit()
}

// NextInvoiceNumber returns the number the next invoice should be issued
// under: one past the highest existing number, or the seed for an empty table.
func (s *SQLiteStorage) NextInvoiceNumber(ctx context.Context) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT number FROM invoices`)
	if err != nil {
		return "", fmt.Errorf("failed to read invoice numbers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var numbers []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return "", fmt.Errorf("failed to scan invoice number: %w", err)
		}
		numbers = append(numbers, number)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	return model.NextInvoiceNumber(numbers), nil
}
