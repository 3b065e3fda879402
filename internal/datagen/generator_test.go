package datagen

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"
)

func applicantFromRow(row []float64) model.Applicant {
	return model.Applicant{
		Income:          int(row[0]),
		Age:             int(row[1]),
		Experience:      int(row[2]),
		Married:         row[3] == 1,
		HouseOwnership:  model.HouseOwnership(row[4]),
		CarOwnership:    row[5] == 1,
		Profession:      int(row[6]),
		CurrentJobYears: int(row[7]),
		HouseYears:      int(row[8]),
	}
}

func TestGenerate_ShapeAndRanges(t *testing.T) {
	ds, err := Generate(DefaultConfig())
	require.NoError(t, err)

	rows, cols := ds.X.Dims()
	assert.Equal(t, DefaultSamples, rows)
	assert.Equal(t, 9, cols)
	assert.Equal(t, model.DefaultSchema(), ds.Schema)
	require.Len(t, ds.Y, DefaultSamples)

	for i := 0; i < ds.Len(); i++ {
		a := applicantFromRow(ds.Row(i))
		assert.Contains(t, []int{0, 1}, ds.Y[i])
		assert.True(t, a.Income >= 20000 && a.Income <= 150000, "income %d", a.Income)
		assert.True(t, a.Age >= 21 && a.Age <= 70, "age %d", a.Age)
		assert.True(t, a.Experience >= 0 && a.Experience <= 40, "experience %d", a.Experience)
		assert.True(t, a.HouseOwnership.Valid())
		assert.True(t, a.Profession >= 0 && a.Profession < 50)
		assert.True(t, a.HouseYears >= 0 && a.HouseYears < 20)
		assert.LessOrEqual(t, a.CurrentJobYears, a.Experience, "row %d", i)
		assert.GreaterOrEqual(t, a.CurrentJobYears, 0)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Samples = 500

	first, err := Generate(cfg)
	require.NoError(t, err)
	second, err := Generate(cfg)
	require.NoError(t, err)

	assert.True(t, mat.Equal(first.X, second.X))
	assert.Equal(t, first.Y, second.Y)

	cfg.Seed = 7
	other, err := Generate(cfg)
	require.NoError(t, err)
	assert.False(t, mat.Equal(first.X, other.X))
}

func TestGenerate_Prevalence(t *testing.T) {
	ds, err := Generate(DefaultConfig())
	require.NoError(t, err)

	_, pos := ds.ClassCounts()
	rate := float64(pos) / float64(ds.Len())
	// The risk formula with threshold 110 and noise 10 yields roughly one
	// default per hundred applicants.
	assert.Greater(t, rate, 0.005)
	assert.Less(t, rate, 0.03)
}

func TestGenerate_LabelsFollowRiskFormulaWithoutNoise(t *testing.T) {
	cfg := Config{Samples: 2000, Seed: 3, Threshold: 90, NoiseStdDev: 0}
	ds, err := Generate(cfg)
	require.NoError(t, err)

	for i := 0; i < ds.Len(); i++ {
		a := applicantFromRow(ds.Row(i))
		want := 0
		if RiskScore(&a) > cfg.Threshold {
			want = 1
		}
		require.Equal(t, want, ds.Y[i], "row %d", i)
	}
}

func TestRiskScore(t *testing.T) {
	a := model.Applicant{Income: 20000, Age: 70, HouseOwnership: model.HouseRent, CurrentJobYears: 0}
	assert.InDelta(t, 100.0, RiskScore(&a), 1e-9)

	b := model.Applicant{Income: 150000, Age: 21, HouseOwnership: model.HouseOwn, CurrentJobYears: 5}
	assert.InDelta(t, 24.5, RiskScore(&b), 1e-9)
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(Config{Samples: 0, Seed: 1, Threshold: 110})
	assert.ErrorIs(t, err, common.ErrDataGeneration)

	_, err = Generate(Config{Samples: 10, Seed: 1, Threshold: 110, NoiseStdDev: -1})
	assert.ErrorIs(t, err, common.ErrDataGeneration)

	// No applicant can reach this threshold, so every label is 0.
	_, err = Generate(Config{Samples: 200, Seed: 1, Threshold: 1000, NoiseStdDev: 10})
	assert.ErrorIs(t, err, common.ErrDataGeneration)
	assert.Contains(t, err.Error(), "degenerate")
}

func smallDataset(t *testing.T) *model.Dataset {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Samples = 300
	cfg.Threshold = 80
	ds, err := Generate(cfg)
	require.NoError(t, err)
	return ds
}

func TestWriteCSV(t *testing.T) {
	ds := smallDataset(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, ds.Len()+1)
	assert.Equal(t, []string{
		"Income", "Age", "Experience", "Married", "House_Ownership", "Car_Ownership",
		"Profession", "Current_Job_Years", "House_Years", "Risk_Flag",
	}, records[0])
	assert.Len(t, records[1], 10)
	assert.NotContains(t, records[1][0], ".")
}

func TestExport_XLSX(t *testing.T) {
	ds := smallDataset(t)
	path := filepath.Join(t.TempDir(), "out", "loan_data.xlsx")

	require.NoError(t, Export(path, ds))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, ds.Len()+1)
	assert.Equal(t, "Risk_Flag", rows[0][9])
}

func TestExport_CSVAndUnsupported(t *testing.T) {
	ds := smallDataset(t)
	dir := t.TempDir()

	assert.NoError(t, Export(filepath.Join(dir, "loan_data.csv"), ds))
	assert.Error(t, Export(filepath.Join(dir, "loan_data.parquet"), ds))
}
