package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Praneeth9346/CreditRisk/internal/boost"
	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/datagen"
	"github.com/Praneeth9346/CreditRisk/internal/engine"
	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// DefaultStorePath is resolved against the working directory.
const DefaultStorePath = "./.creditrisk"

// SQLiteFile is the database name inside the store directory.
const SQLiteFile = "model.db"

// Settings is the resolved application configuration.
type Settings struct {
	StoreBackend string
	StorePath    string
	Engine       engine.Config
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	def := engine.DefaultConfig()

	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.path", DefaultStorePath)

	v.SetDefault("data.samples", def.Data.Samples)
	v.SetDefault("data.seed", def.Data.Seed)
	v.SetDefault("data.threshold", def.Data.Threshold)
	v.SetDefault("data.noise", def.Data.NoiseStdDev)

	v.SetDefault("split.test_fraction", def.TestFraction)
	v.SetDefault("split.seed", def.SplitSeed)

	v.SetDefault("resample.neighbors", def.Neighbors)
	v.SetDefault("resample.seed", def.ResampleSeed)

	v.SetDefault("model.trees", def.Params.Trees)
	v.SetDefault("model.max_depth", def.Params.MaxDepth)
	v.SetDefault("model.learning_rate", def.Params.LearningRate)
	v.SetDefault("model.lambda", def.Params.Lambda)
	v.SetDefault("model.gamma", def.Params.Gamma)
	v.SetDefault("model.min_child_weight", def.Params.MinChildWeight)

	v.SetDefault("engine.allow_retrain", def.AllowRetrain)
}

// Load resolves Settings from v, applying defaults for unset keys.
func Load(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)

	storePath, err := ResolveStorePath(v.GetString("store.path"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	s := &Settings{
		StoreBackend: strings.ToLower(strings.TrimSpace(v.GetString("store.backend"))),
		StorePath:    storePath,
		Engine: engine.Config{
			Data: datagen.Config{
				Samples:     v.GetInt("data.samples"),
				Seed:        v.GetUint64("data.seed"),
				Threshold:   v.GetFloat64("data.threshold"),
				NoiseStdDev: v.GetFloat64("data.noise"),
			},
			Params: boost.Params{
				Trees:          v.GetInt("model.trees"),
				MaxDepth:       v.GetInt("model.max_depth"),
				LearningRate:   v.GetFloat64("model.learning_rate"),
				Lambda:         v.GetFloat64("model.lambda"),
				Gamma:          v.GetFloat64("model.gamma"),
				MinChildWeight: v.GetFloat64("model.min_child_weight"),
				BaseScore:      boost.DefaultBaseScore,
			},
			TestFraction: v.GetFloat64("split.test_fraction"),
			SplitSeed:    v.GetUint64("split.seed"),
			Neighbors:    v.GetInt("resample.neighbors"),
			ResampleSeed: v.GetUint64("resample.seed"),
			AllowRetrain: v.GetBool("engine.allow_retrain"),
		},
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the settings can drive the pipeline.
func (s *Settings) Validate() error {
	switch s.StoreBackend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("%w: unknown store backend %q (want %s or %s)", common.ErrInvalidConfig, s.StoreBackend, BackendSQLite, BackendFile)
	}
	if strings.TrimSpace(s.StorePath) == "" {
		return fmt.Errorf("%w: store path is empty", common.ErrInvalidConfig)
	}

	cfg := s.Engine
	if cfg.Data.Samples <= 0 {
		return fmt.Errorf("%w: data.samples must be positive, got %d", common.ErrInvalidConfig, cfg.Data.Samples)
	}
	if cfg.Data.NoiseStdDev < 0 {
		return fmt.Errorf("%w: data.noise must not be negative, got %g", common.ErrInvalidConfig, cfg.Data.NoiseStdDev)
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		return fmt.Errorf("%w: split.test_fraction must be in (0,1), got %g", common.ErrInvalidConfig, cfg.TestFraction)
	}
	if cfg.Neighbors < 0 {
		return fmt.Errorf("%w: resample.neighbors must not be negative, got %d", common.ErrInvalidConfig, cfg.Neighbors)
	}
	if err := cfg.Params.Validate(); err != nil {
		return fmt.Errorf("%w: model: %w", common.ErrInvalidConfig, err)
	}
	return nil
}

// SQLitePath is the database file used by the sqlite backend.
func (s *Settings) SQLitePath() string {
	return filepath.Join(s.StorePath, SQLiteFile)
}
