package main

import (
	"context"
	"fmt"

	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/config"
	"github.com/Praneeth9346/CreditRisk/internal/service"
	"github.com/Praneeth9346/CreditRisk/internal/storage"
	"github.com/spf13/viper"
)

// loadSettings resolves the application settings from viper.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid configuration", err)
	}
	return settings, nil
}

// initStore opens the configured model store, migrating SQLite as needed.
func initStore(ctx context.Context, settings *config.Settings) (service.ModelStore, error) {
	switch settings.StoreBackend {
	case config.BackendFile:
		return storage.NewFileStore(settings.StorePath)
	case config.BackendSQLite:
		store, err := storage.NewSQLiteStore(settings.SQLitePath())
		if err != nil {
			return nil, err
		}

		// Run migrations
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", common.ErrInvalidConfig, settings.StoreBackend)
	}
}

// storeLocation describes where the configured store keeps its data.
func storeLocation(settings *config.Settings) string {
	if settings.StoreBackend == config.BackendSQLite {
		return settings.SQLitePath()
	}
	return settings.StorePath
}
