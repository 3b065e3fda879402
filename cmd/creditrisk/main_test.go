package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestApplicantFromFlags(t *testing.T) {
	cmd := scoreCmd()
	require.NoError(t, cmd.Flags().Parse([]string{
		"--income", "20000", "--age", "25", "--house", "mortgage",
		"--experience", "4", "--job-years", "1", "--married", "--car",
	}))

	a, err := applicantFromFlags(cmd.Flags())
	require.NoError(t, err)
	assert.Equal(t, 20000, a.Income)
	assert.Equal(t, 25, a.Age)
	assert.Equal(t, model.HouseMortgage, a.HouseOwnership)
	assert.Equal(t, 4, a.Experience)
	assert.Equal(t, 1, a.CurrentJobYears)
	assert.True(t, a.Married)
	assert.True(t, a.CarOwnership)

	bad := scoreCmd()
	require.NoError(t, bad.Flags().Parse([]string{"--house", "castle"}))
	_, err = applicantFromFlags(bad.Flags())
	assert.ErrorIs(t, err, common.ErrInvalidApplicant)

	negative := scoreCmd()
	require.NoError(t, negative.Flags().Parse([]string{"--income", "-5"}))
	_, err = applicantFromFlags(negative.Flags())
	assert.ErrorIs(t, err, common.ErrInvalidApplicant)
}

func TestCommands_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	storeDir := filepath.Join(dir, "store")
	t.Setenv("CREDITRISK_DATA_SAMPLES", "2000")
	t.Setenv("CREDITRISK_MODEL_TREES", "10")
	t.Setenv("CREDITRISK_MODEL_MAX_DEPTH", "4")

	csvPath := filepath.Join(dir, "data.csv")
	out, err := execute(t, "generate", "--store", storeDir, "--backend", "file", "-o", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2000 records")
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 2001)

	out, err = execute(t, "status", "--store", storeDir, "--backend", "file")
	require.NoError(t, err)
	assert.Contains(t, out, "No model")

	out, err = execute(t, "train", "--store", storeDir, "--backend", "file", "--no-progress")
	require.NoError(t, err)
	assert.Contains(t, out, "weighted avg")
	assert.Contains(t, out, "Model stored in")

	out, err = execute(t, "score", "--store", storeDir, "--backend", "file",
		"--income", "150000", "--age", "21", "--house", "own", "--experience", "5", "--job-years", "5", "--json")
	require.NoError(t, err)
	var decision model.Decision
	require.NoError(t, json.Unmarshal([]byte(out), &decision))
	assert.False(t, decision.Reject)
	assert.Len(t, decision.Attributions, len(model.DefaultSchema()))

	out, err = execute(t, "runs", "--store", storeDir, "--backend", "file")
	require.NoError(t, err)
	assert.Contains(t, out, "Accuracy")

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "creditrisk dev")
}

func TestCommands_InvalidBackend(t *testing.T) {
	_, err := execute(t, "status", "--backend", "postgres", "--store", t.TempDir())
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestGenerateCmd_DefaultOutput(t *testing.T) {
	output := generateCmd().Flags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "loan_data.csv", output.DefValue)
	assert.Equal(t, "o", output.Shorthand)
}
