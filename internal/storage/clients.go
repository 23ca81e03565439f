package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkinyua/landbook/internal/common"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/mkinyua/landbook/internal/service"
	"github.com/shopspring/decimal"
)

// CreateClient persists a new client together with its stage rows.
func (s *SQLiteStorage) CreateClient(ctx context.Context, client *model.Client) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClient(client); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO clients (id, name, lr_no, pending_balance, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		client.ID,
		client.Name,
		client.LRNo,
		client.PendingBalance().String(),
		client.Version,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert client %s: %w", client.ID, err)
	}

	if err := s.replaceStagesTx(ctx, tx, client); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit client: %w", err)
	}

	s.watcher.publish(service.ClientEvent{
		Type:   service.ClientCreated,
		Client: *client,
		At:     client.CreatedAt,
	})

	return nil
}

// GetClient retrieves a client with all stage balances.
func (s *SQLiteStorage) GetClient(ctx context.Context, id string) (*model.Client, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getClientTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getClientTx(ctx context.Context, q queryable, id string) (*model.Client, error) {
	client := &model.Client{ID: id}

	err := q.QueryRowContext(ctx, `
		SELECT name, lr_no, version, created_at, updated_at
		FROM clients
		WHERE id = ?
	`, id).Scan(
		&client.Name,
		&client.LRNo,
		&client.Version,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	stages, err := s.getStagesTx(ctx, q, id)
	if err != nil {
		return nil, err
	}
	client.Stages = stages

	return client, nil
}

func (s *SQLiteStorage) getStagesTx(ctx context.Context, q queryable, clientID string) (map[model.StageName]model.Stage, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT stage, total, paid, is_paid, last_updated
		FROM client_stages
		WHERE client_id = ?
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stages := make(map[model.StageName]model.Stage)
	for rows.Next() {
		var (
			name     model.StageName
			totalStr string
			paidStr  string
			stage    model.Stage
		)
		if err := rows.Scan(&name, &totalStr, &paidStr, &stage.IsPaid, &stage.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		if stage.Total, err = decimal.NewFromString(totalStr); err != nil {
			return nil, fmt.Errorf("corrupt stage total %q: %w", totalStr, err)
		}
		if stage.Paid, err = decimal.NewFromString(paidStr); err != nil {
			return nil, fmt.Errorf("corrupt stage paid %q: %w", paidStr, err)
		}
		stages[name] = stage
	}

	return stages, rows.Err()
}

// UpdateClient performs a versioned compare-and-swap update outside a wider
// transaction. The client's Version must match the stored row; on success the
// in-memory Version is advanced to the new stored value.
func (s *SQLiteStorage) UpdateClient(ctx context.Context, client *model.Client) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClient(client); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.updateClientTx(ctx, tx, client); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit client update: %w", err)
	}

	s.watcher.publish(service.ClientEvent{
		Type:   service.ClientUpdated,
		Client: *client,
		At:     client.UpdatedAt,
	})

	return nil
}

func (s *SQLiteStorage) updateClientTx(ctx context.Context, tx *sql.Tx, client *model.Client) error {
	// Compare-and-swap on the version column: a stale reader loses and gets
	// a conflict instead of silently overwriting a newer write.
	result, err := tx.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, lr_no = ?, pending_balance = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`,
		client.Name,
		client.LRNo,
		client.PendingBalance().String(),
		client.UpdatedAt,
		client.ID,
		client.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update client %s: %w", client.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM clients WHERE id = ?)`, client.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check client existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("client %s: %w", client.ID, common.ErrNotFound)
		}
		return fmt.Errorf("client %s: %w", client.ID, common.ErrConflict)
	}

	if err := s.replaceStagesTx(ctx, tx, client); err != nil {
		return err
	}

	client.Version++
	return nil
}

func (s *SQLiteStorage) replaceStagesTx(ctx context.Context, tx *sql.Tx, client *model.Client) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO client_stages (client_id, stage, total, paid, is_paid, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id, stage) DO UPDATE SET
			total = excluded.total,
			paid = excluded.paid,
			is_paid = excluded.is_paid,
			last_updated = excluded.last_updated
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare stage statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for name, stage := range client.Stages {
		_, err := stmt.ExecContext(ctx,
			client.ID,
			string(name),
			stage.Total.String(),
			stage.Paid.String(),
			stage.IsPaid,
			stage.LastUpdated,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert stage %s: %w", name, err)
		}
	}

	return nil
}

// ListClients returns all clients newest-first, with stage balances loaded.
func (s *SQLiteStorage) ListClients(ctx context.Context) ([]model.Client, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM clients ORDER BY created_at DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan client id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	clients := make([]model.Client, 0, len(ids))
	for _, id := range ids {
		client, err := s.getClientTx(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}

	return clients, nil
}
