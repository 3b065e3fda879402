package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements service.ModelStore on a single SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

var _ service.ModelStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at dbPath. Call
// Migrate before use.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Validate input
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite doesn't benefit from multiple connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save replaces the stored pair and records the training run in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, artifacts *service.Artifacts) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateArtifacts(artifacts); err != nil {
		return err
	}

	enc, err := encodeArtifacts(artifacts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO artifacts (id, classifier, baseline, baseline_digest, created_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			classifier = excluded.classifier,
			baseline = excluded.baseline,
			baseline_digest = excluded.baseline_digest,
			created_at = excluded.created_at`,
		enc.classifier, enc.baseline, enc.digest, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save artifacts: %w", err)
	}

	if run := artifacts.Run; run != nil {
		var data []byte
		data, err = json.Marshal(run)
		if err != nil {
			return fmt.Errorf("failed to encode training run: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO training_runs (id, created_at, accuracy, data)
			VALUES (?, ?, ?, ?)`,
			run.ID, run.CreatedAt.UTC(), run.Accuracy, string(data))
		if err != nil {
			return fmt.Errorf("failed to save training run: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit artifacts: %w", err)
	}

	slog.Debug("Saved model artifacts", "path", s.dbPath, "bytes", len(enc.classifier)+len(enc.baseline))
	return nil
}

// Load reads and decodes the stored pair.
func (s *SQLiteStore) Load(ctx context.Context) (*service.Artifacts, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var classifier, baseline []byte
	err := s.db.QueryRowContext(ctx, `SELECT classifier, baseline FROM artifacts WHERE id = 1`).
		Scan(&classifier, &baseline)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no artifacts in %s", common.ErrArtifactMissing, s.dbPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}

	artifacts, err := decodeArtifacts(classifier, baseline)
	if err != nil {
		return nil, err
	}
	slog.Debug("Loaded model artifacts", "path", s.dbPath)
	return artifacts, nil
}

// Status reports whether a usable pair is stored.
func (s *SQLiteStore) Status(ctx context.Context) (service.StoreStatus, error) {
	return statusOf(ctx, s)
}

// Exists reports whether a usable pair is stored.
func (s *SQLiteStore) Exists(ctx context.Context) (bool, error) {
	status, err := s.Status(ctx)
	return status == service.StatusPresent, err
}

// Runs lists recorded training runs, newest first.
func (s *SQLiteStore) Runs(ctx context.Context, limit int) ([]service.TrainingRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM training_runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Error("failed to close rows", "error", closeErr)
		}
	}()

	var runs []service.TrainingRun
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		var run service.TrainingRun
		if err := json.Unmarshal([]byte(data), &run); err != nil {
			return nil, fmt.Errorf("failed to decode training run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read training runs: %w", err)
	}
	return runs, nil
}

// statusOf maps the outcome of a full Load onto a status.
func statusOf(ctx context.Context, store service.ModelStore) (service.StoreStatus, error) {
	_, err := store.Load(ctx)
	switch {
	case err == nil:
		return service.StatusPresent, nil
	case errors.Is(err, common.ErrArtifactMissing):
		return service.StatusAbsent, nil
	case errors.Is(err, common.ErrArtifactCorrupt):
		return service.StatusCorrupt, nil
	default:
		return service.StatusAbsent, err
	}
}
