// Package service defines the interfaces the application's services are built against.
package service

import (
	"context"
	"time"

	"github.com/mkinyua/landbook/internal/model"
	"github.com/shopspring/decimal"
)

// ClientEventType distinguishes client change notifications.
type ClientEventType string

const (
	// ClientCreated signals a newly created client.
	ClientCreated ClientEventType = "created"
	// ClientUpdated signals a mutation to an existing client.
	ClientUpdated ClientEventType = "updated"
)

// ClientEvent is a change notification for a single client.
type ClientEvent struct {
	At     time.Time
	Type   ClientEventType
	Client model.Client
}

// LedgerTx is the transactional view of the store used by the ledger engine.
// Every mutation inside one LedgerTx becomes visible atomically on Commit,
// or not at all.
type LedgerTx interface {
	GetClient(ctx context.Context, id string) (*model.Client, error)
	// UpdateClient performs a versioned compare-and-swap: it fails with the
	// store's conflict error if the client's stored version no longer matches
	// the version the caller read.
	UpdateClient(ctx context.Context, client *model.Client) error
	AppendPayment(ctx context.Context, payment *model.Payment) error
	Commit() error
	Rollback() error
}

// LedgerStore is the minimal storage contract the ledger engine requires.
// Any store offering read-one, versioned read-modify-write, append and
// query-by-client satisfies it.
type LedgerStore interface {
	CreateClient(ctx context.Context, client *model.Client) error
	GetClient(ctx context.Context, id string) (*model.Client, error)
	ListPaymentsByClient(ctx context.Context, clientID string) ([]model.Payment, error)
	BeginTx(ctx context.Context) (LedgerTx, error)
}

// Storage defines the full contract for the persistence layer.
type Storage interface {
	LedgerStore

	// Client operations
	ListClients(ctx context.Context) ([]model.Client, error)
	UpdateClient(ctx context.Context, client *model.Client) error

	// Invoice operations
	SaveInvoice(ctx context.Context, invoice *model.Invoice) error
	GetInvoice(ctx context.Context, number string) (*model.Invoice, error)
	ListInvoices(ctx context.Context) ([]model.Invoice, error)
	DeleteInvoice(ctx context.Context, number string) error
	NextInvoiceNumber(ctx context.Context) (string, error)

	// Quotation operations
	SaveQuotation(ctx context.Context, quotation *model.Quotation) error
	GetQuotation(ctx context.Context, id string) (*model.Quotation, error)
	ListQuotations(ctx context.Context) ([]model.Quotation, error)

	// Appointment operations
	SaveAppointment(ctx context.Context, appointment *model.Appointment) error
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	ListAppointments(ctx context.Context) ([]model.Appointment, error)
	SetAppointmentEventID(ctx context.Context, id, eventID string) error

	// Expense operations
	SaveExpense(ctx context.Context, expense *model.Expense) error
	ListExpenses(ctx context.Context) ([]model.Expense, error)
	TotalExpenses(ctx context.Context) (decimal.Decimal, error)

	// Change notifications
	WatchClient(clientID string) (<-chan ClientEvent, func())

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// ClientBalance is one row of a business-wide ledger summary.
type ClientBalance struct {
	ClientID       string
	ClientName     string
	LRNo           string
	PendingBalance decimal.Decimal
}

// LedgerSummary aggregates balances across all clients.
type LedgerSummary struct {
	Clients      []ClientBalance
	TotalPending decimal.Decimal
}

// CalendarPusher publishes appointments to an external calendar.
type CalendarPusher interface {
	Push(ctx context.Context, appointment *model.Appointment) (eventID string, err error)
}
