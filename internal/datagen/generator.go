// Package datagen produces the synthetic labeled loan dataset the risk
// classifier is trained on.
package datagen

import (
	"fmt"
	"math/rand/v2"

	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/model"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Default generation parameters.
const (
	DefaultSamples     = 5000
	DefaultSeed        = 42
	DefaultThreshold   = 110.0
	DefaultNoiseStdDev = 10.0
)

// Sampling bounds. Closed ranges unless the name says otherwise.
const (
	minIncome          = 20000
	maxIncome          = 150000
	minAge             = 21
	maxAge             = 70
	maxExperience      = 40
	professionCount    = 50 // [0,50)
	houseYearsExcl     = 20 // [0,20)
	shortTenureYears   = 2
	incomeWeight       = 0.0005
	ageWeight          = 0.5
	rentPenalty        = 20.0
	shortTenurePenalty = 15.0
)

// Config controls a generation run.
type Config struct {
	Samples     int
	Seed        uint64
	Threshold   float64
	NoiseStdDev float64
}

// DefaultConfig returns the reference generation settings.
func DefaultConfig() Config {
	return Config{
		Samples:     DefaultSamples,
		Seed:        DefaultSeed,
		Threshold:   DefaultThreshold,
		NoiseStdDev: DefaultNoiseStdDev,
	}
}

// RiskScore is the deterministic part of the default risk formula.
func RiskScore(a *model.Applicant) float64 {
	score := float64(maxIncome-a.Income)*incomeWeight + float64(maxAge-a.Age)*ageWeight
	if a.HouseOwnership == model.HouseRent {
		score += rentPenalty
	}
	if a.CurrentJobYears < shortTenureYears {
		score += shortTenurePenalty
	}
	return score
}

// Generate samples cfg.Samples applicants and labels each one by
// thresholding its noisy risk score. The same config always yields the
// same dataset.
func Generate(cfg Config) (*model.Dataset, error) {
	if cfg.Samples <= 0 {
		return nil, fmt.Errorf("%w: sample count must be positive, got %d", common.ErrDataGeneration, cfg.Samples)
	}
	if cfg.NoiseStdDev < 0 {
		return nil, fmt.Errorf("%w: noise standard deviation must not be negative", common.ErrDataGeneration)
	}

	src := rand.NewPCG(cfg.Seed, cfg.Seed)
	rng := rand.New(src)
	noise := distuv.Normal{Mu: 0, Sigma: cfg.NoiseStdDev, Src: src}

	schema := model.DefaultSchema()
	x := mat.NewDense(cfg.Samples, len(schema), nil)
	y := make([]int, cfg.Samples)

	for i := 0; i < cfg.Samples; i++ {
		a := sampleApplicant(rng)
		vec, err := a.Vector(schema)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrDataGeneration, err)
		}
		x.SetRow(i, vec)

		score := RiskScore(&a)
		if cfg.NoiseStdDev > 0 {
			score += noise.Rand()
		}
		if score > cfg.Threshold {
			y[i] = 1
		}
	}

	ds, err := model.NewDataset(schema, x, y)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDataGeneration, err)
	}

	neg, pos := ds.ClassCounts()
	if neg == 0 || pos == 0 {
		return nil, fmt.Errorf("%w: degenerate labels (%d negative, %d positive)", common.ErrDataGeneration, neg, pos)
	}
	return ds, nil
}

func sampleApplicant(rng *rand.Rand) model.Applicant {
	a := model.Applicant{
		Income:         between(rng, minIncome, maxIncome),
		Age:            between(rng, minAge, maxAge),
		Experience:     between(rng, 0, maxExperience),
		Married:        rng.IntN(2) == 1,
		HouseOwnership: model.HouseOwnership(rng.IntN(3)),
		CarOwnership:   rng.IntN(2) == 1,
		Profession:     rng.IntN(professionCount),
	}
	a.CurrentJobYears = between(rng, 0, a.Experience)
	a.HouseYears = rng.IntN(houseYearsExcl)
	return a
}

// between returns a uniform integer in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}
