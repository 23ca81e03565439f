package storage

import (
	"context"
	"testing"
	"time"

	"github.com/mkinyua/landbook/internal/model"
	"github.com/mkinyua/landbook/internal/service"
	"github.com/shopspring/decimal"
)

func waitForEvent(t *testing.T, events <-chan service.ClientEvent) service.ClientEvent {
	t.Helper()
	select {
	case event, ok := <-events:
		if !ok {
			t.Fatal("event channel closed unexpectedly")
		}
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for client event")
	}
	return service.ClientEvent{}
}

func TestWatchClient_ReceivesCreateAndUpdate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	client := createTestClient(t, 1000)
	events, cancel := store.WatchClient(client.ID)
	defer cancel()

	if err := store.CreateClient(ctx, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	event := waitForEvent(t, events)
	if event.Type != service.ClientCreated {
		t.Errorf("event type = %v, want ClientCreated", event.Type)
	}
	if event.Client.ID != client.ID {
		t.Errorf("event client = %s, want %s", event.Client.ID, client.ID)
	}

	stage := client.Stages[model.StageDownpayment]
	stage.Paid = decimal.NewFromInt(400)
	client.Stages[model.StageDownpayment] = stage
	if err := store.UpdateClient(ctx, client); err != nil {
		t.Fatalf("UpdateClient failed: %v", err)
	}

	event = waitForEvent(t, events)
	if event.Type != service.ClientUpdated {
		t.Errorf("event type = %v, want ClientUpdated", event.Type)
	}
	if !event.Client.Stages[model.StageDownpayment].Paid.Equal(decimal.NewFromInt(400)) {
		t.Errorf("event carries paid = %s, want 400", event.Client.Stages[model.StageDownpayment].Paid)
	}
}

func TestWatchClient_OtherClientsFiltered(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	watched := createTestClient(t, 1000)
	other := createTestClient(t, 500)

	events, cancel := store.WatchClient(watched.ID)
	defer cancel()

	if err := store.CreateClient(ctx, other); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	if err := store.CreateClient(ctx, watched); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	event := waitForEvent(t, events)
	if event.Client.ID != watched.ID {
		t.Errorf("received event for %s, want only %s", event.Client.ID, watched.ID)
	}

	select {
	case extra := <-events:
		t.Errorf("unexpected extra event for %s", extra.Client.ID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchClient_RollbackPublishesNothing(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	client := createTestClient(t, 1000)
	if err := store.CreateClient(ctx, client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	events, cancel := store.WatchClient(client.ID)
	defer cancel()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	got, err := tx.GetClient(ctx, client.ID)
	if err != nil {
		t.Fatalf("GetClient failed: %v", err)
	}
	stage := got.Stages[model.StageDownpayment]
	stage.Paid = decimal.NewFromInt(999)
	got.Stages[model.StageDownpayment] = stage
	if err := tx.UpdateClient(ctx, got); err != nil {
		t.Fatalf("UpdateClient failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	select {
	case event := <-events:
		t.Errorf("rollback should publish nothing, got %v event", event.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatchClient_CancelClosesChannel(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	events, cancel := store.WatchClient("some-client")
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Error("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed after cancel")
	}

	// A second cancel is a no-op.
	cancel()
}
