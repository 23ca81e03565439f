package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkinyua/landbook/internal/config"
	"github.com/mkinyua/landbook/internal/ledger"
	"github.com/mkinyua/landbook/internal/model"
	"github.com/mkinyua/landbook/internal/service"
	"github.com/mkinyua/landbook/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine builds the ledger engine on top of the given store.
func initEngine(store service.LedgerStore) *ledger.Engine {
	engineConfig := ledger.DefaultConfig()
	if retries := viper.GetInt("ledger.max_conflict_retries"); retries > 0 {
		engineConfig.MaxConflictRetries = retries
	}
	return ledger.New(store, engineConfig)
}

// parseAmount parses a positive decimal amount from a CLI argument.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return amount, nil
}

// parseStage resolves a CLI stage argument against the engine's stages.
// Matching is case-insensitive on the exact stage name.
func parseStage(engine *ledger.Engine, raw string) (model.StageName, error) {
	for _, stage := range engine.Stages() {
		if strings.EqualFold(string(stage), raw) {
			return stage, nil
		}
	}
	return "", fmt.Errorf("unknown stage %q (valid: %v)", raw, engine.Stages())
}
