package explain

import (
	"fmt"
	"sort"

	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/model"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

// FeatureSummary describes one feature of the training baseline.
type FeatureSummary struct {
	Feature string
	Mean    float64
	Median  float64
	StdDev  float64
	Min     float64
	Max     float64
}

// Profile summarises the training baseline so single predictions can be
// placed in the population the model was trained on.
type Profile struct {
	schema    model.Schema
	sorted    [][]float64
	summaries []FeatureSummary
}

// NewBaselineProfile computes per-feature statistics of baseline.
func NewBaselineProfile(schema model.Schema, baseline *mat.Dense) (*Profile, error) {
	if baseline == nil {
		return nil, fmt.Errorf("baseline is empty")
	}
	rows, cols := baseline.Dims()
	if cols != len(schema) {
		return nil, fmt.Errorf("%w: baseline has %d columns for %d features", common.ErrSchemaMismatch, cols, len(schema))
	}
	if rows == 0 {
		return nil, fmt.Errorf("baseline is empty")
	}

	p := &Profile{
		schema:    schema,
		sorted:    make([][]float64, cols),
		summaries: make([]FeatureSummary, cols),
	}
	for f := 0; f < cols; f++ {
		col := stats.Float64Data(mat.Col(nil, f, baseline))

		summary, err := summarize(schema[f], col)
		if err != nil {
			return nil, fmt.Errorf("failed to summarise %s: %w", schema[f], err)
		}
		p.summaries[f] = summary

		sorted := append([]float64(nil), col...)
		sort.Float64s(sorted)
		p.sorted[f] = sorted
	}
	return p, nil
}

func summarize(name string, col stats.Float64Data) (FeatureSummary, error) {
	s := FeatureSummary{Feature: name}
	var err error
	if s.Mean, err = col.Mean(); err != nil {
		return s, err
	}
	if s.Median, err = col.Median(); err != nil {
		return s, err
	}
	if s.StdDev, err = col.StandardDeviation(); err != nil {
		return s, err
	}
	if s.Min, err = col.Min(); err != nil {
		return s, err
	}
	if s.Max, err = col.Max(); err != nil {
		return s, err
	}
	return s, nil
}

// Summaries returns the per-feature statistics in schema order.
func (p *Profile) Summaries() []FeatureSummary {
	return append([]FeatureSummary(nil), p.summaries...)
}

// Context places every value of x within the baseline distribution.
// Percentile is the share of baseline records at or below the value.
func (p *Profile) Context(x []float64) ([]model.FeatureContext, error) {
	if len(x) != len(p.schema) {
		return nil, fmt.Errorf("%w: expected %d features, got %d", common.ErrSchemaMismatch, len(p.schema), len(x))
	}

	out := make([]model.FeatureContext, len(x))
	for f, v := range x {
		col := p.sorted[f]
		atOrBelow := sort.Search(len(col), func(i int) bool { return col[i] > v })
		out[f] = model.FeatureContext{
			Feature:        p.schema[f],
			Value:          v,
			BaselineMean:   p.summaries[f].Mean,
			BaselineMedian: p.summaries[f].Median,
			Percentile:     100 * float64(atOrBelow) / float64(len(col)),
		}
	}
	return out, nil
}
