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

// SaveQuotation inserts or replaces a quotation, items included.
func (s *SQLiteStorage) SaveQuotation(ctx context.Context, quotation *model.Quotation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateQuotation(quotation); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO quotations (id, recipient, signatory, payment_terms, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			recipient = excluded.recipient,
			signatory = excluded.signatory,
			payment_terms = excluded.payment_terms
	`,
		quotation.ID,
		quotation.Recipient,
		quotation.Signatory,
		quotation.PaymentTerms,
		quotation.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quotation %s: %w", quotation.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM quotation_items WHERE quotation_id = ?`, quotation.ID); err != nil {
		return fmt.Errorf("failed to clear quotation items: %w", err)
	}

	for i, item := range quotation.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO quotation_items (quotation_id, position, item, description, quantity, unit_cost)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			quotation.ID,
			i,
			item.Item,
			item.Description,
			item.Quantity.String(),
			item.UnitCost.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert quotation item %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetQuotation retrieves a quotation by id.
func (s *SQLiteStorage) GetQuotation(ctx context.Context, id string) (*model.Quotation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	quotation := &model.Quotation{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT recipient, signatory, payment_terms, created_at
		FROM quotations
		WHERE id = ?
	`, id).Scan(
		&quotation.Recipient,
		&quotation.Signatory,
		&quotation.PaymentTerms,
		&quotation.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quotation %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT item, description, quantity, unit_cost
		FROM quotation_items
		WHERE quotation_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quotation items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			item        model.QuotationItem
			quantityStr string
			costStr     string
		)
		if err := rows.Scan(&item.Item, &item.Description, &quantityStr, &costStr); err != nil {
			return nil, fmt.Errorf("failed to scan quotation item: %w", err)
		}
		if item.Quantity, err = decimal.NewFromString(quantityStr); err != nil {
			return nil, fmt.Errorf("corrupt item quantity %q: %w", quantityStr, err)
		}
		if item.UnitCost, err = decimal.NewFromString(costStr); err != nil {
			return nil, fmt.Errorf("corrupt item unit cost %q: %w", costStr, err)
		}
		quotation.Items = append(quotation.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return quotation, nil
}

// ListQuotations returns all quotations newest-first, items included.
func (s *SQLiteStorage) ListQuotations(ctx context.Context) ([]model.Quotation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM quotations ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan quotation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	quotations := make([]model.Quotation, 0, len(ids))
	for _, id := range ids {
		quotation, err := s.GetQuotation(ctx, id)
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, *quotation)
	}

	return quotations, nil
}
