package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mkinyua/landbook/internal/common"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/mkinyua/landbook/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory LedgerStore with versioned compare-and-swap
// commits, so the engine's conflict-retry path behaves exactly as it would
// against the real store.
type memStore struct {
	mu       sync.Mutex
	clients  map[string]*model.Client
	payments []model.Payment
}

func newMemStore() *memStore {
	return &memStore{clients: make(map[string]*model.Client)}
}

func cloneClient(c *model.Client) *model.Client {
	clone := *c
	clone.Stages = make(map[model.StageName]model.Stage, len(c.Stages))
	for name, stage := range c.Stages {
		clone.Stages[name] = stage
	}
	return &clone
}

func (s *memStore) CreateClient(_ context.Context, client *model.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.clients[client.ID]; exists {
		return common.ErrDuplicateEntry
	}
	s.clients[client.ID] = cloneClient(client)
	return nil
}

func (s *memStore) GetClient(_ context.Context, id string) (*model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	client, ok := s.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, common.ErrNotFound)
	}
	return cloneClient(client), nil
}

func (s *memStore) ListPaymentsByClient(_ context.Context, clientID string) ([]model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Payment
	for i := len(s.payments) - 1; i >= 0; i-- {
		if s.payments[i].ClientID == clientID {
			out = append(out, s.payments[i])
		}
	}
	return out, nil
}

func (s *memStore) BeginTx(_ context.Context) (service.LedgerTx, error) {
	return &memTx{store: s}, nil
}

type memTx struct {
	store           *memStore
	pendingClient   *model.Client
	pendingPayment  *model.Payment
	expectedVersion int64
	done            bool
}

func (t *memTx) GetClient(ctx context.Context, id string) (*model.Client, error) {
	client, err := t.store.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}
	t.expectedVersion = client.Version
	return client, nil
}

func (t *memTx) UpdateClient(_ context.Context, client *model.Client) error {
	t.pendingClient = cloneClient(client)
	return nil
}

func (t *memTx) AppendPayment(_ context.Context, payment *model.Payment) error {
	p := *payment
	t.pendingPayment = &p
	return nil
}

func (t *memTx) Commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.done = true

	if t.pendingClient != nil {
		stored, ok := t.store.clients[t.pendingClient.ID]
		if !ok {
			return common.ErrNotFound
		}
		if stored.Version != t.expectedVersion {
			return common.ErrConflict
		}
		t.pendingClient.Version = stored.Version + 1
		t.store.clients[t.pendingClient.ID] = t.pendingClient
	}
	if t.pendingPayment != nil {
		t.store.payments = append(t.store.payments, *t.pendingPayment)
	}
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.pendingClient = nil
	t.pendingPayment = nil
	t.done = true
	return nil
}

// conflictStore forces every commit into a version conflict.
type conflictStore struct {
	*memStore
}

func (s *conflictStore) BeginTx(ctx context.Context) (service.LedgerTx, error) {
	tx, err := s.memStore.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &conflictTx{tx.(*memTx)}, nil
}

type conflictTx struct {
	*memTx
}

func (t *conflictTx) Commit() error {
	return common.ErrConflict
}

func newTestEngine(t *testing.T) (*Engine, *memStore) {
	t.Helper()
	store := newMemStore()
	return New(store, DefaultConfig()), store
}

func totals(amounts map[model.StageName]int64) map[model.StageName]decimal.Decimal {
	out := make(map[model.StageName]decimal.Decimal, len(amounts))
	for stage, amount := range amounts {
		out[stage] = decimal.NewFromInt(amount)
	}
	return out
}

func TestEngine_CreateClient(t *testing.T) {
	ctx := context.Background()

	t.Run("initializes all stages unpaid", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		client, err := engine.CreateClient(ctx, "Wanjiku Estates", "LR-2041/88", totals(map[model.StageName]int64{
			model.StageDownpayment:   1000,
			model.StageTitlePayments: 5000,
		}))
		require.NoError(t, err)

		require.Len(t, client.Stages, 4)
		for name, stage := range client.Stages {
			assert.True(t, stage.Paid.IsZero(), "stage %s should start unpaid", name)
			assert.False(t, stage.IsPaid, "stage %s should not be marked paid", name)
		}
		assert.True(t, client.Stages[model.StageDownpayment].Total.Equal(decimal.NewFromInt(1000)))
		assert.True(t, client.Stages[model.StageCountyApprovals].Total.IsZero())
		assert.True(t, client.PendingBalance().Equal(decimal.NewFromInt(6000)))
	})

	t.Run("validation failures", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		tests := []struct {
			totals map[model.StageName]decimal.Decimal
			name   string
			lrNo   string
			label  string
		}{
			{label: "empty name", name: "  ", lrNo: "LR-1"},
			{label: "empty lr number", name: "Client", lrNo: ""},
			{label: "negative total", name: "Client", lrNo: "LR-1",
				totals: map[model.StageName]decimal.Decimal{model.StageDownpayment: decimal.NewFromInt(-5)}},
			{label: "unknown stage", name: "Client", lrNo: "LR-1",
				totals: map[model.StageName]decimal.Decimal{"Surveying": decimal.NewFromInt(100)}},
		}

		for _, tt := range tests {
			t.Run(tt.label, func(t *testing.T) {
				_, err := engine.CreateClient(ctx, tt.name, tt.lrNo, tt.totals)
				var validationErr *ValidationError
				require.ErrorAs(t, err, &validationErr)
			})
		}
	})
}

func TestEngine_RecordPayment(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*Engine, *model.Client) {
		t.Helper()
		engine, _ := newTestEngine(t)
		client, err := engine.CreateClient(ctx, "Kamau Holdings", "LR-99/12", totals(map[model.StageName]int64{
			model.StageDownpayment: 1000,
		}))
		require.NoError(t, err)
		return engine, client
	}

	t.Run("partial payment reduces balance and records history", func(t *testing.T) {
		engine, client := setup(t)

		payment, err := engine.RecordPayment(ctx, client.ID, model.StageDownpayment,
			decimal.NewFromInt(400), model.MethodCash, "first installment")
		require.NoError(t, err)

		assert.True(t, payment.PreviousBalance.Equal(decimal.NewFromInt(1000)))
		assert.True(t, payment.ResultingBalance.Equal(decimal.NewFromInt(600)))

		report, err := engine.GetBalance(ctx, client.ID)
		require.NoError(t, err)
		assert.True(t, report.PendingBalance.Equal(decimal.NewFromInt(600)))

		history, err := engine.ListPaymentHistory(ctx, client.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, model.MethodCash, history[0].Method)
	})

	t.Run("overpayment rejected without state change", func(t *testing.T) {
		engine, client := setup(t)

		_, err := engine.RecordPayment(ctx, client.ID, model.StageDownpayment,
			decimal.NewFromInt(400), model.MethodCash, "")
		require.NoError(t, err)

		_, err = engine.RecordPayment(ctx, client.ID, model.StageDownpayment,
			decimal.NewFromInt(700), model.MethodCash, "")
		var overErr *OverpaymentError
		require.ErrorAs(t, err, &overErr)
		assert.True(t, overErr.Remaining.Equal(decimal.NewFromInt(600)))

		report, err := engine.GetBalance(ctx, client.ID)
		require.NoError(t, err)
		assert.True(t, report.PendingBalance.Equal(decimal.NewFromInt(600)))

		history, err := engine.ListPaymentHistory(ctx, client.ID)
		require.NoError(t, err)
		assert.Len(t, history, 1, "rejected payment must leave no history record")
	})

	t.Run("exact remaining amount completes the stage", func(t *testing.T) {
		engine, client := setup(t)

		_, err := engine.RecordPayment(ctx, client.ID, model.StageDownpayment,
			decimal.NewFromInt(400), model.MethodCash, "")
		require.NoError(t, err)
		_, err = engine.RecordPayment(ctx, client.ID, model.StageDownpayment,
			decimal.NewFromInt(600), model.MethodBankTransfer, "")
		require.NoError(t, err)

		report, err := engine.GetBalance(ctx, client.ID)
		require.NoError(t, err)
		require.Len(t, report.Stages, 4)
		assert.True(t, report.Stages[0].IsPaid)
		assert.True(t, report.Stages[0].Remaining.IsZero())
	})

	t.Run("validation and lookup failures", func(t *testing.T) {
		engine, client := setup(t)

		_, err := engine.RecordPayment(ctx, client.ID, model.StageDownpayment, decimal.Zero, model.MethodCash, "")
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)

		_, err = engine.RecordPayment(ctx, client.ID, model.StageDownpayment, decimal.NewFromInt(-10), model.MethodCash, "")
		require.ErrorAs(t, err, &validationErr)

		_, err = engine.RecordPayment(ctx, client.ID, "Surveying", decimal.NewFromInt(10), model.MethodCash, "")
		require.ErrorAs(t, err, &validationErr)

		_, err = engine.RecordPayment(ctx, client.ID, model.StageDownpayment, decimal.NewFromInt(10), "Barter", "")
		require.ErrorAs(t, err, &validationErr)

		_, err = engine.RecordPayment(ctx, "no-such-client", model.StageDownpayment, decimal.NewFromInt(10), model.MethodCash, "")
		require.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("stage balances are independent", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		client, err := engine.CreateClient(ctx, "Njeri Farms", "LR-7/3", totals(map[model.StageName]int64{
			model.StageDownpayment:     100,
			model.StageCountyApprovals: 1000,
		}))
		require.NoError(t, err)

		// A big county-approvals balance must not absorb a downpayment overshoot.
		_, err = engine.RecordPayment(ctx, client.ID, model.StageDownpayment,
			decimal.NewFromInt(200), model.MethodCash, "")
		var overErr *OverpaymentError
		require.ErrorAs(t, err, &overErr)
	})
}

func TestEngine_ListPaymentHistory_Order(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	client, err := engine.CreateClient(ctx, "Otieno Ltd", "LR-15/9", totals(map[model.StageName]int64{
		model.StageDownpayment: 1000,
	}))
	require.NoError(t, err)

	amounts := []int64{100, 200, 300}
	for _, a := range amounts {
		_, err := engine.RecordPayment(ctx, client.ID, model.StageDownpayment,
			decimal.NewFromInt(a), model.MethodMobileMoney, "")
		require.NoError(t, err)
	}

	history, err := engine.ListPaymentHistory(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Newest first, and each record's resulting balance matches the balance
	// right after that payment applied.
	assert.True(t, history[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.True(t, history[0].ResultingBalance.Equal(decimal.NewFromInt(400)))
	assert.True(t, history[1].Amount.Equal(decimal.NewFromInt(200)))
	assert.True(t, history[1].ResultingBalance.Equal(decimal.NewFromInt(700)))
	assert.True(t, history[2].Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, history[2].ResultingBalance.Equal(decimal.NewFromInt(900)))

	for i := 0; i < len(history)-1; i++ {
		assert.True(t, history[i].PreviousBalance.Equal(history[i+1].ResultingBalance),
			"balance chain broken between records %d and %d", i, i+1)
	}
}

func TestEngine_RecordPayment_ConcurrentNoLostUpdates(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	// High retry budget: every worker must eventually win its CAS.
	engine := New(store, Config{MaxConflictRetries: 100})

	client, err := engine.CreateClient(ctx, "Mutiso & Sons", "LR-88/1", totals(map[model.StageName]int64{
		model.StageDownpayment: 10000,
	}))
	require.NoError(t, err)

	const workers = 20
	const amount = 10

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.RecordPayment(ctx, client.ID, model.StageDownpayment,
				decimal.NewFromInt(amount), model.MethodCash, "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	report, err := engine.GetBalance(ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, report.Stages[0].Paid.Equal(decimal.NewFromInt(workers*amount)),
		"paid = %s, want %d: a concurrent update was lost", report.Stages[0].Paid, workers*amount)

	history, err := engine.ListPaymentHistory(ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, history, workers)
}

func TestEngine_RecordPayment_ConflictRetriesExhausted(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	engine := New(store, DefaultConfig())

	client, err := engine.CreateClient(ctx, "Achieng Plots", "LR-3/14", totals(map[model.StageName]int64{
		model.StageDownpayment: 1000,
	}))
	require.NoError(t, err)

	stubborn := New(&conflictStore{store}, Config{MaxConflictRetries: 2})
	_, err = stubborn.RecordPayment(ctx, client.ID, model.StageDownpayment,
		decimal.NewFromInt(100), model.MethodCash, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConflict))

	// The failed attempts must leave no trace.
	history, err := engine.ListPaymentHistory(ctx, client.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestEngine_GetBalance_ReadOnly(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	client, err := engine.CreateClient(ctx, "Baraka Traders", "LR-5/5", totals(map[model.StageName]int64{
		model.StageDownpayment: 500,
	}))
	require.NoError(t, err)

	before, err := engine.GetBalance(ctx, client.ID)
	require.NoError(t, err)
	after, err := engine.GetBalance(ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, before.PendingBalance.Equal(after.PendingBalance))

	_, err = engine.GetBalance(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}
