package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/engine"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, s.StoreBackend)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, ".creditrisk"), s.StorePath)
	assert.Equal(t, engine.DefaultConfig(), s.Engine)
	assert.Equal(t, filepath.Join(wd, ".creditrisk", SQLiteFile), s.SQLitePath())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
store:
  backend: file
  path: /tmp/creditrisk-models
data:
  samples: 1200
  seed: 7
split:
  test_fraction: 0.25
model:
  trees: 40
  max_depth: 4
  learning_rate: 0.1
engine:
  allow_retrain: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, BackendFile, s.StoreBackend)
	assert.Equal(t, "/tmp/creditrisk-models", s.StorePath)
	assert.Equal(t, 1200, s.Engine.Data.Samples)
	assert.Equal(t, uint64(7), s.Engine.Data.Seed)
	assert.InDelta(t, 0.25, s.Engine.TestFraction, 1e-12)
	assert.Equal(t, 40, s.Engine.Params.Trees)
	assert.Equal(t, 4, s.Engine.Params.MaxDepth)
	assert.InDelta(t, 0.1, s.Engine.Params.LearningRate, 1e-12)
	assert.False(t, s.Engine.AllowRetrain)

	// Unset keys keep their defaults.
	assert.InDelta(t, 110.0, s.Engine.Data.Threshold, 1e-12)
	assert.Equal(t, 5, s.Engine.Neighbors)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CREDITRISK_DATA_SAMPLES", "321")
	t.Setenv("CREDITRISK_STORE_BACKEND", "FILE")

	v := viper.New()
	v.SetEnvPrefix("CREDITRISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 321, s.Engine.Data.Samples)
	assert.Equal(t, BackendFile, s.StoreBackend)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{key: "store.backend", value: "postgres"},
		{key: "store.path", value: " "},
		{key: "data.samples", value: 0},
		{key: "data.noise", value: -1},
		{key: "split.test_fraction", value: 1.0},
		{key: "resample.neighbors", value: -2},
		{key: "model.trees", value: 0},
		{key: "model.learning_rate", value: 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestResolveStorePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Setenv("CREDITRISK_TEST_DIR", "/srv/models")
	t.Setenv("CREDITRISK_EMPTY_DIR", "")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "   ", want: ""},
		{in: "$CREDITRISK_EMPTY_DIR", want: ""},
		{in: "~", want: home},
		{in: "~/models", want: filepath.Join(home, "models")},
		{in: "$CREDITRISK_TEST_DIR/store", want: "/srv/models/store"},
		{in: "/srv/models/../store/", want: "/srv/store"},
		{in: "./.creditrisk", want: filepath.Join(wd, ".creditrisk")},
		{in: "models/run", want: filepath.Join(wd, "models", "run")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ResolveStorePath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if got != "" {
				assert.True(t, filepath.IsAbs(got))
			}
		})
	}
}
