package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkinyua/landbook/internal/model"
	"github.com/mkinyua/landbook/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQLiteStorage implements the service.Storage contract using SQLite.
type SQLiteStorage struct {
	db      *sql.DB
	watcher *clientWatcher
	dbPath  string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:      db,
		dbPath:  dbPath,
		watcher: newClientWatcher(),
	}, nil
}

// Close closes the database connection and drops all watch subscriptions.
func (s *SQLiteStorage) Close() error {
	s.watcher.closeAll()
	return s.db.Close()
}

// WatchClient subscribes to change notifications for one client. The returned
// cancel function must be called to release the subscription.
func (s *SQLiteStorage) WatchClient(clientID string) (<-chan service.ClientEvent, func()) {
	return s.watcher.subscribe(clientID)
}

// BeginTx starts a ledger transaction. Client mutations and payment appends
// made through it become visible atomically on Commit.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.LedgerTx, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTx{tx: tx, storage: s}, nil
}

// sqliteTx wraps sql.Tx to implement service.LedgerTx. Change notifications
// are buffered until Commit so watchers never observe uncommitted state.
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
	events  []service.ClientEvent
}

func (t *sqliteTx) GetClient(ctx context.Context, id string) (*model.Client, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getClientTx(ctx, t.tx, id)
}

func (t *sqliteTx) UpdateClient(ctx context.Context, client *model.Client) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClient(client); err != nil {
		return err
	}
	if err := t.storage.updateClientTx(ctx, t.tx, client); err != nil {
		return err
	}
	t.events = append(t.events, service.ClientEvent{
		Type:   service.ClientUpdated,
		Client: *client,
		At:     client.UpdatedAt,
	})
	return nil
}

func (t *sqliteTx) AppendPayment(ctx context.Context, payment *model.Payment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePayment(payment); err != nil {
		return err
	}
	return t.storage.appendPaymentTx(ctx, t.tx, payment)
}

func (t *sqliteTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return err
	}
	for _, event := range t.events {
		t.storage.watcher.publish(event)
	}
	t.events = nil
	return nil
}

func (t *sqliteTx) Rollback() error {
	t.events = nil
	return t.tx.Rollback()
}
