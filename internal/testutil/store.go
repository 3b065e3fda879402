// Package testutil provides model store fixtures for tests. Every store it
// returns is migrated, isolated to the calling test and closed on cleanup.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Praneeth9346/CreditRisk/internal/storage"
)

// SetupSQLiteStore creates an in-memory SQLite model store.
//
// Example:
//
//	store := testutil.SetupSQLiteStore(t)
//	summary, err := engine.New(store, cfg).Train(ctx)
func SetupSQLiteStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SetupFileStore creates a file-backed model store in a fresh temp directory.
func SetupFileStore(t *testing.T) *storage.FileStore {
	t.Helper()

	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "model"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}
