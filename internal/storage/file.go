package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/service"
)

// File names used by FileStore.
const (
	ClassifierFile = "classifier.json"
	BaselineFile   = "baseline.bin"
	RunsFile       = "runs.json"
)

// FileStore implements service.ModelStore as files in one directory. Each
// file is replaced atomically; the classifier names its baseline by digest
// so a half-written pair loads as corrupt rather than mismatched.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var _ service.ModelStore = (*FileStore)(nil)

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := validateString(dir, "dir"); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

// Save writes the baseline, then the classifier that references it, then
// appends the training run. Only a failure to write the pair is returned.
func (s *FileStore) Save(ctx context.Context, artifacts *service.Artifacts) error {
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

	if err := writeFileAtomic(s.path(BaselineFile), enc.baseline); err != nil {
		return fmt.Errorf("failed to write baseline: %w", err)
	}
	if err := writeFileAtomic(s.path(ClassifierFile), enc.classifier); err != nil {
		return fmt.Errorf("failed to write classifier: %w", err)
	}

	// The pair is in place; a lost history entry does not undo it.
	if artifacts.Run != nil {
		if err := s.appendRun(artifacts.Run); err != nil {
			slog.Warn("Failed to record training run", "run_id", artifacts.Run.ID, "error", err)
		}
	}

	slog.Debug("Saved model artifacts", "dir", s.dir, "bytes", len(enc.classifier)+len(enc.baseline))
	return nil
}

// Load reads both files and checks that they belong together.
func (s *FileStore) Load(ctx context.Context) (*service.Artifacts, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	classifier, err := s.readArtifact(ClassifierFile)
	if err != nil {
		return nil, err
	}
	baseline, err := s.readArtifact(BaselineFile)
	if err != nil {
		return nil, err
	}

	artifacts, err := decodeArtifacts(classifier, baseline)
	if err != nil {
		return nil, err
	}
	slog.Debug("Loaded model artifacts", "dir", s.dir)
	return artifacts, nil
}

// Status reports whether a usable pair is stored.
func (s *FileStore) Status(ctx context.Context) (service.StoreStatus, error) {
	return statusOf(ctx, s)
}

// Exists reports whether a usable pair is stored.
func (s *FileStore) Exists(ctx context.Context) (bool, error) {
	status, err := s.Status(ctx)
	return status == service.StatusPresent, err
}

// Runs lists recorded training runs, newest first.
func (s *FileStore) Runs(ctx context.Context, limit int) ([]service.TrainingRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.readRuns()
	if err != nil {
		return nil, err
	}

	// Stored oldest first.
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *FileStore) readArtifact(name string) ([]byte, error) {
	// #nosec G304 - name is one of the fixed artifact file names
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s not found in %s", common.ErrArtifactMissing, name, s.dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (s *FileStore) appendRun(run *service.TrainingRun) error {
	runs, err := s.readRuns()
	if err != nil {
		slog.Warn("Discarding unreadable training run history", "error", err)
		runs = nil
	}
	runs = append(runs, *run)

	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode training runs: %w", err)
	}
	if err := writeFileAtomic(s.path(RunsFile), data); err != nil {
		return fmt.Errorf("failed to write training runs: %w", err)
	}
	return nil
}

func (s *FileStore) readRuns() ([]service.TrainingRun, error) {
	// #nosec G304 - fixed file name inside the store directory
	data, err := os.ReadFile(s.path(RunsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read training runs: %w", err)
	}

	var runs []service.TrainingRun
	if err := json.Unmarshal(data, &runs); err != nil {
		return nil, fmt.Errorf("failed to decode training runs: %w", err)
	}
	return runs, nil
}

// writeFileAtomic writes to a temporary file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		if rmErr := os.Remove(tmpPath); rmErr != nil {
			slog.Error("failed to remove temporary file after rename error", "error", rmErr)
		}
		return err
	}
	return nil
}
