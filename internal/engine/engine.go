// Package engine runs the credit risk pipeline: it trains and persists a
// classifier, and loads it back to score applicants.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Praneeth9346/CreditRisk/internal/boost"
	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/datagen"
	"github.com/Praneeth9346/CreditRisk/internal/evaluation"
	"github.com/Praneeth9346/CreditRisk/internal/model"
	"github.com/Praneeth9346/CreditRisk/internal/resample"
	"github.com/Praneeth9346/CreditRisk/internal/service"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Config holds configuration options for the pipeline.
type Config struct {
	Data         datagen.Config
	Params       boost.Params
	TestFraction float64
	SplitSeed    uint64
	Neighbors    int
	ResampleSeed uint64
	// AllowRetrain lets Load train a new model when the store holds no
	// usable one.
	AllowRetrain bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Data:         datagen.DefaultConfig(),
		Params:       boost.DefaultParams(),
		TestFraction: 0.2,
		SplitSeed:    42,
		Neighbors:    resample.DefaultNeighbors,
		ResampleSeed: resample.DefaultSeed,
		AllowRetrain: true,
	}
}

// Engine orchestrates generation, resampling, training, evaluation and
// persistence.
type Engine struct {
	store    service.ModelStore
	logger   *slog.Logger
	progress boost.ProgressFunc
	now      func() time.Time
	cfg      Config
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithProgress reports boosting progress during Train.
func WithProgress(fn boost.ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// New creates an engine. A nil store trains without persisting.
func New(store service.ModelStore, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// TrainingSummary is the outcome of one Train call.
type TrainingSummary struct {
	Classifier *boost.Ensemble
	Baseline   *mat.Dense
	Report     *evaluation.Report
	Run        *service.TrainingRun
	Importance map[string]float64
	Saved      bool
}

// Train runs the full training pipeline and stores the result. Nothing is
// stored unless every stage succeeds.
func (e *Engine) Train(ctx context.Context) (*TrainingSummary, error) {
	start := e.now()
	e.logger.Info("Starting training run",
		"samples", e.cfg.Data.Samples,
		"seed", e.cfg.Data.Seed,
		"trees", e.cfg.Params.Trees)

	ds, err := datagen.Generate(e.cfg.Data)
	if err != nil {
		return nil, err
	}
	_, positives := ds.ClassCounts()
	e.logger.Info("Generated dataset", "records", ds.Len(), "positives", positives)

	train, test, err := Split(ds, e.cfg.TestFraction, e.cfg.SplitSeed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrTraining, err)
	}

	balanced, err := e.resample(train)
	if err != nil {
		return nil, err
	}

	var opts []boost.Option
	if e.progress != nil {
		opts = append(opts, boost.WithProgress(e.progress))
	}
	classifier, err := boost.Train(ctx, balanced, e.cfg.Params, opts...)
	if err != nil {
		return nil, err
	}

	predicted, err := classifier.PredictLabels(test)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to predict test split: %w", common.ErrTraining, err)
	}
	report, err := evaluation.Evaluate(test.Y, predicted)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to evaluate: %w", common.ErrTraining, err)
	}
	e.logger.Info("Evaluated classifier", "accuracy", report.Accuracy, "test_records", test.Len())
	e.logger.Debug("Classification report\n" + report.String())

	_, trainPositives := train.ClassCounts()
	_, testPositives := test.ClassCounts()
	run := &service.TrainingRun{
		ID:             uuid.NewString(),
		CreatedAt:      start.UTC(),
		Samples:        ds.Len(),
		Seed:           e.cfg.Data.Seed,
		TrainSize:      train.Len(),
		TestSize:       test.Len(),
		ResampledSize:  balanced.Len(),
		TrainPositives: trainPositives,
		TestPositives:  testPositives,
		Neighbors:      e.cfg.Neighbors,
		Accuracy:       report.Accuracy,
		Report:         report,
		Params:         e.cfg.Params,
		Duration:       e.now().Sub(start),
	}

	summary := &TrainingSummary{
		Classifier: classifier,
		Baseline:   train.X,
		Report:     report,
		Run:        run,
		Importance: classifier.Importance(),
	}

	if e.store != nil {
		if err := e.store.Save(ctx, &service.Artifacts{Classifier: classifier, Baseline: train.X, Run: run}); err != nil {
			return nil, fmt.Errorf("failed to store model: %w", err)
		}
		summary.Saved = true
	}

	e.logger.Info("Training run complete",
		"run_id", run.ID,
		"accuracy", run.Accuracy,
		"duration", run.Duration,
		"saved", summary.Saved)
	return summary, nil
}

// resample balances the training split. A minority class too small for the
// configured neighbour count is retried once with a lowered count.
func (e *Engine) resample(train *model.Dataset) (*model.Dataset, error) {
	smote := resample.New(e.cfg.Neighbors, e.cfg.ResampleSeed)
	balanced, err := smote.Resample(train)
	if errors.Is(err, common.ErrInsufficientMinoritySamples) {
		e.logger.Warn("Minority class smaller than neighbour count, lowering it", "neighbors", e.cfg.Neighbors)
		smote.AdjustNeighbors = true
		balanced, err = smote.Resample(train)
	}
	if err != nil {
		return nil, err
	}

	neg, pos := balanced.ClassCounts()
	e.logger.Info("Resampled training split", "records", balanced.Len(), "negatives", neg, "positives", pos)
	return balanced, nil
}

// Load returns a scorer for the stored model. A missing or corrupt model
// is retrained once when AllowRetrain is set.
func (e *Engine) Load(ctx context.Context) (*Scorer, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: no model store configured", common.ErrArtifactMissing)
	}

	artifacts, err := e.store.Load(ctx)
	if common.NeedsRetrain(err) && e.cfg.AllowRetrain {
		e.logger.Warn("Stored model unavailable, retraining", "error", err)
		if _, trainErr := e.Train(ctx); trainErr != nil {
			return nil, fmt.Errorf("failed to retrain model: %w", trainErr)
		}
		artifacts, err = e.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("model unavailable after retraining: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	return NewScorer(artifacts)
}

// Status reports the state of the stored model.
func (e *Engine) Status(ctx context.Context) (service.StoreStatus, error) {
	if e.store == nil {
		return service.StatusAbsent, nil
	}
	return e.store.Status(ctx)
}
