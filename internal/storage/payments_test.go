package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/shopspring/decimal"
)

func appendTestPayment(t *testing.T, store *SQLiteStorage, clientID string, amount int64, at time.Time) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	payment := &model.Payment{
		ID:               uuid.NewString(),
		ClientID:         clientID,
		Stage:            model.StageDownpayment,
		Amount:           decimal.NewFromInt(amount),
		Method:           model.MethodCash,
		Timestamp:        at,
		PreviousBalance:  decimal.NewFromInt(1000),
		ResultingBalance: decimal.NewFromInt(1000 - amount),
	}
	if err := tx.AppendPayment(ctx, payment); err != nil {
		t.Fatalf("AppendPayment failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
}

func TestSQLiteStorage_ListPaymentsByClient_NewestFirst(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	client := createTestClient(t, 1000)
	if err := store.CreateClient(ctx, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	base := time.Now().Add(-time.Hour)
	amounts := []int64{100, 200, 300}
	for i, amount := range amounts {
		appendTestPayment(t, store, client.ID, amount, base.Add(time.Duration(i)*time.Minute))
	}

	payments, err := store.ListPaymentsByClient(ctx, client.ID)
	if err != nil {
		t.Fatalf("ListPaymentsByClient failed: %v", err)
	}
	if len(payments) != 3 {
		t.Fatalf("got %d payments, want 3", len(payments))
	}

	// Most recent payment first.
	want := []int64{300, 200, 100}
	for i, amount := range want {
		if !payments[i].Amount.Equal(decimal.NewFromInt(amount)) {
			t.Errorf("payments[%d].Amount = %s, want %d", i, payments[i].Amount, amount)
		}
	}
}

func TestSQLiteStorage_ListPaymentsByClient_SameTimestampStableOrder(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	client := createTestClient(t, 1000)
	if err := store.CreateClient(ctx, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	// Identical timestamps: insertion order must still be honored, latest insert first.
	at := time.Now()
	for _, amount := range []int64{10, 20, 30} {
		appendTestPayment(t, store, client.ID, amount, at)
	}

	payments, err := store.ListPaymentsByClient(ctx, client.ID)
	if err != nil {
		t.Fatalf("ListPaymentsByClient failed: %v", err)
	}
	if len(payments) != 3 {
		t.Fatalf("got %d payments, want 3", len(payments))
	}
	if !payments[0].Amount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("payments[0].Amount = %s, want 30", payments[0].Amount)
	}
}

func TestSQLiteStorage_ListPaymentsByClient_OtherClientsExcluded(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first := createTestClient(t, 1000)
	second := createTestClient(t, 1000)
	if err := store.CreateClient(ctx, first); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	if err := store.CreateClient(ctx, second); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	appendTestPayment(t, store, first.ID, 100, time.Now())
	appendTestPayment(t, store, second.ID, 200, time.Now())

	payments, err := store.ListPaymentsByClient(ctx, first.ID)
	if err != nil {
		t.Fatalf("ListPaymentsByClient failed: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("got %d payments, want 1", len(payments))
	}
	if payments[0].ClientID != first.ID {
		t.Errorf("payment client = %s, want %s", payments[0].ClientID, first.ID)
	}
}
