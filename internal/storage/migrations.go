package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Client ledger schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS clients (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					lr_no TEXT NOT NULL,
					pending_balance TEXT NOT NULL DEFAULT '0',
					version INTEGER NOT NULL DEFAULT 1,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_clients_created ON clients(created_at)`,

				`CREATE TABLE IF NOT EXISTS client_stages (
					client_id TEXT NOT NULL,
					stage TEXT NOT NULL,
					total TEXT NOT NULL,
					paid TEXT NOT NULL,
					is_paid INTEGER NOT NULL DEFAULT 0,
					last_updated DATETIME NOT NULL,
					PRIMARY KEY (client_id, stage),
					FOREIGN KEY (client_id) REFERENCES clients(id)
				)`,

				`CREATE TABLE IF NOT EXISTS payments (
					id TEXT PRIMARY KEY,
					client_id TEXT NOT NULL,
					client_name TEXT,
					stage TEXT NOT NULL,
					amount TEXT NOT NULL,
					method TEXT,
					notes TEXT,
					timestamp DATETIME NOT NULL,
					previous_balance TEXT NOT NULL,
					resulting_balance TEXT NOT NULL,
					FOREIGN KEY (client_id) REFERENCES clients(id)
				)`,
				`CREATE INDEX idx_payments_client ON payments(client_id, timestamp)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Invoices and quotations",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS invoices (
					number TEXT PRIMARY KEY,
					id TEXT NOT NULL,
					bill_from TEXT,
					bill_to TEXT,
					date DATETIME,
					due_date DATETIME,
					tax_percent TEXT NOT NULL DEFAULT '0',
					notes TEXT,
					created_at DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS invoice_items (
					invoice_number TEXT NOT NULL,
					position INTEGER NOT NULL,
					description TEXT NOT NULL,
					quantity TEXT NOT NULL,
					rate TEXT NOT NULL,
					PRIMARY KEY (invoice_number, position),
					FOREIGN KEY (invoice_number) REFERENCES invoices(number) ON DELETE CASCADE
				)`,

				`CREATE TABLE IF NOT EXISTS quotations (
					id TEXT PRIMARY KEY,
					recipient TEXT NOT NULL,
					signatory TEXT,
					payment_terms TEXT,
					created_at DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS quotation_items (
					quotation_id TEXT NOT NULL,
					position INTEGER NOT NULL,
					item TEXT,
					description TEXT,
					quantity TEXT NOT NULL,
					unit_cost TEXT NOT NULL,
					PRIMARY KEY (quotation_id, position),
					FOREIGN KEY (quotation_id) REFERENCES quotations(id) ON DELETE CASCADE
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Appointments and expenses",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS appointments (
					id TEXT PRIMARY KEY,
					title TEXT NOT NULL,
					notes TEXT,
					start_time DATETIME NOT NULL,
					calendar_event_id TEXT,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_appointments_start ON appointments(start_time)`,

				`CREATE TABLE IF NOT EXISTS expenses (
					id TEXT PRIMARY KEY,
					type TEXT NOT NULL,
					amount TEXT NOT NULL,
					description TEXT,
					date DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_expenses_date ON expenses(date)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies any pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
