// Package ledger implements the payment ledger engine: per-stage client
// balances, balance-validated payment application, and an append-only payment
// history. The engine is storage-agnostic; it speaks only the contract in the
// service package, so any store with read-one, versioned read-modify-write,
// append and query-by-client can back it.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkinyua/landbook/internal/common"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/mkinyua/landbook/internal/service"
	"github.com/shopspring/decimal"
)

// Config holds configuration for the ledger engine. Stage names are injected
// here rather than read from process-wide state.
type Config struct {
	Stages             []model.StageName
	MaxConflictRetries int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Stages:             model.DefaultStages(),
		MaxConflictRetries: 3,
	}
}

// Engine maintains client payment-stage balances and the payment history.
type Engine struct {
	store  service.LedgerStore
	stages []model.StageName
	// maxConflictRetries bounds how often a payment is re-attempted after a
	// concurrent-update conflict before the failure is surfaced.
	maxConflictRetries int
}

// New creates a ledger engine over the given store.
func New(store service.LedgerStore, config Config) *Engine {
	if len(config.Stages) == 0 {
		config.Stages = model.DefaultStages()
	}
	if config.MaxConflictRetries <= 0 {
		config.MaxConflictRetries = 3
	}
	return &Engine{
		store:              store,
		stages:             config.Stages,
		maxConflictRetries: config.MaxConflictRetries,
	}
}

// Stages returns the configured stage names in order.
func (e *Engine) Stages() []model.StageName {
	out := make([]model.StageName, len(e.stages))
	copy(out, e.stages)
	return out
}

// CreateClient creates a client with every configured stage initialized to
// paid zero. Totals for stages missing from stageTotals default to zero;
// totals for unknown stages are rejected.
func (e *Engine) CreateClient(ctx context.Context, name, lrNo string, stageTotals map[model.StageName]decimal.Decimal) (*model.Client, error) {
	name = strings.TrimSpace(name)
	lrNo = strings.TrimSpace(lrNo)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "client name is required"}
	}
	if lrNo == "" {
		return nil, &ValidationError{Field: "lrNo", Reason: "LR number is required"}
	}
	for stage, total := range stageTotals {
		if !e.knownStage(stage) {
			return nil, &ValidationError{Field: "stage", Reason: fmt.Sprintf("unknown stage %q", stage)}
		}
		if total.IsNegative() {
			return nil, &ValidationError{Field: string(stage), Reason: "stage total must not be negative"}
		}
	}

	now := time.Now()
	stages := make(map[model.StageName]model.Stage, len(e.stages))
	for _, stage := range e.stages {
		stages[stage] = model.Stage{
			Total:       stageTotals[stage],
			Paid:        decimal.Zero,
			IsPaid:      false,
			LastUpdated: now,
		}
	}

	client := &model.Client{
		ID:        uuid.NewString(),
		Name:      name,
		LRNo:      lrNo,
		Stages:    stages,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := e.store.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	slog.Info("client created",
		"client_id", client.ID,
		"name", client.Name,
		"lr_no", client.LRNo,
		"pending_balance", client.PendingBalance())

	return client, nil
}

// RecordPayment applies a payment to one stage of a client. The stage update,
// the client's recomputed pending balance and the new history record commit
// atomically; on a concurrent-update conflict the whole read-modify-write
// cycle is retried against fresh state, never applied over stale reads.
func (e *Engine) RecordPayment(ctx context.Context, clientID string, stage model.StageName, amount decimal.Decimal, method model.PaymentMethod, notes string) (*model.Payment, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "payment amount must be positive"}
	}
	if !e.knownStage(stage) {
		return nil, &ValidationError{Field: "stage", Reason: fmt.Sprintf("unknown stage %q", stage)}
	}
	if method != "" && !model.ValidPaymentMethod(method) {
		return nil, &ValidationError{Field: "method", Reason: fmt.Sprintf("unknown payment method %q", method)}
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxConflictRetries; attempt++ {
		payment, err := e.recordPaymentOnce(ctx, clientID, stage, amount, method, notes)
		if err == nil {
			return payment, nil
		}
		if !errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		lastErr = err
		slog.Debug("payment hit version conflict, retrying",
			"client_id", clientID,
			"stage", stage,
			"attempt", attempt)
	}

	return nil, fmt.Errorf("payment not applied after %d conflict retries: %w", e.maxConflictRetries, lastErr)
}

func (e *Engine) recordPaymentOnce(ctx context.Context, clientID string, stage model.StageName, amount decimal.Decimal, method model.PaymentMethod, notes string) (*model.Payment, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	client, err := tx.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	stageData, ok := client.Stages[stage]
	if !ok {
		return nil, &ValidationError{Field: "stage", Reason: fmt.Sprintf("client has no stage %q", stage)}
	}

	remaining := stageData.Remaining()
	if amount.GreaterThan(remaining) {
		return nil, &OverpaymentError{Stage: stage, Requested: amount, Remaining: remaining}
	}

	now := time.Now()
	previousBalance := client.PendingBalance()

	stageData.Paid = stageData.Paid.Add(amount)
	stageData.IsPaid = stageData.Paid.GreaterThanOrEqual(stageData.Total)
	stageData.LastUpdated = now
	client.Stages[stage] = stageData
	client.UpdatedAt = now

	if err := tx.UpdateClient(ctx, client); err != nil {
		return nil, err
	}

	payment := &model.Payment{
		ID:               uuid.NewString(),
		ClientID:         client.ID,
		ClientName:       client.Name,
		Stage:            stage,
		Amount:           amount,
		Method:           method,
		Notes:            notes,
		Timestamp:        now,
		PreviousBalance:  previousBalance,
		ResultingBalance: client.PendingBalance(),
	}

	if err := tx.AppendPayment(ctx, payment); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	slog.Info("payment recorded",
		"client_id", client.ID,
		"stage", stage,
		"amount", amount,
		"resulting_balance", payment.ResultingBalance)

	return payment, nil
}

// StageBalance is the read-only balance view of one stage.
type StageBalance struct {
	Stage     model.StageName
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
	IsPaid    bool
}

// BalanceReport is the read-only balance view of one client.
type BalanceReport struct {
	ClientID       string
	ClientName     string
	LRNo           string
	Stages         []StageBalance
	PendingBalance decimal.Decimal
}

// GetBalance returns the client's current pending balance and per-stage
// breakdown in configured stage order. It never mutates state.
func (e *Engine) GetBalance(ctx context.Context, clientID string) (*BalanceReport, error) {
	client, err := e.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	report := &BalanceReport{
		ClientID:       client.ID,
		ClientName:     client.Name,
		LRNo:           client.LRNo,
		PendingBalance: client.PendingBalance(),
	}
	for _, stage := range e.stages {
		stageData, ok := client.Stages[stage]
		if !ok {
			continue
		}
		report.Stages = append(report.Stages, StageBalance{
			Stage:     stage,
			Total:     stageData.Total,
			Paid:      stageData.Paid,
			Remaining: stageData.Remaining(),
			IsPaid:    stageData.IsPaid,
		})
	}

	return report, nil
}

// ListPaymentHistory returns the client's payment records newest-first.
func (e *Engine) ListPaymentHistory(ctx context.Context, clientID string) ([]model.Payment, error) {
	if _, err := e.store.GetClient(ctx, clientID); err != nil {
		return nil, err
	}
	return e.store.ListPaymentsByClient(ctx, clientID)
}

func (e *Engine) knownStage(stage model.StageName) bool {
	for _, s := range e.stages {
		if s == stage {
			return true
		}
	}
	return false
}
