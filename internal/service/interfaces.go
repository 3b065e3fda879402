// Package service defines the contracts shared between the pipeline and its
// persistence backends.
package service

import (
	"context"
	"time"

	"github.com/Praneeth9346/CreditRisk/internal/boost"
	"github.com/Praneeth9346/CreditRisk/internal/evaluation"
	"gonum.org/v1/gonum/mat"
)

// StoreStatus reports whether a usable artifact pair is stored.
type StoreStatus int

// Store states.
const (
	StatusAbsent StoreStatus = iota
	StatusPresent
	StatusCorrupt
)

func (s StoreStatus) String() string {
	switch s {
	case StatusAbsent:
		return "absent"
	case StatusPresent:
		return "present"
	case StatusCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// TrainingRun records how a stored classifier was produced.
type TrainingRun struct {
	CreatedAt      time.Time          `json:"created_at"`
	Report         *evaluation.Report `json:"report,omitempty"`
	ID             string             `json:"id"`
	Params         boost.Params       `json:"params"`
	Duration       time.Duration      `json:"duration"`
	Seed           uint64             `json:"seed"`
	Samples        int                `json:"samples"`
	TrainSize      int                `json:"train_size"`
	TestSize       int                `json:"test_size"`
	ResampledSize  int                `json:"resampled_size"`
	TrainPositives int                `json:"train_positives"`
	TestPositives  int                `json:"test_positives"`
	Neighbors      int                `json:"neighbors"`
	Accuracy       float64            `json:"accuracy"`
}

// Artifacts is the matched output of one training run: the classifier and
// the pre-resampling training features it was fitted on.
type Artifacts struct {
	Classifier *boost.Ensemble
	Baseline   *mat.Dense
	Run        *TrainingRun
}

// ModelStore persists the artifact pair. Save replaces the stored pair as a
// whole; Load never returns a classifier with a baseline from another run.
type ModelStore interface {
	Save(ctx context.Context, artifacts *Artifacts) error
	// Load fails with common.ErrArtifactMissing or common.ErrArtifactCorrupt.
	Load(ctx context.Context) (*Artifacts, error)
	Status(ctx context.Context) (StoreStatus, error)
	Exists(ctx context.Context) (bool, error)
	// Runs lists training runs, newest first. A limit of zero lists all.
	Runs(ctx context.Context, limit int) ([]TrainingRun, error)
	Close() error
}
