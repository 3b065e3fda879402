package model

import (
	"math"
	"sort"
)

// RejectThreshold is the default probability above which a loan is rejected.
const RejectThreshold = 0.5

// FeatureAttribution is the signed contribution of one feature to a
// prediction's raw margin.
type FeatureAttribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// FeatureContext places a feature value within the training baseline.
type FeatureContext struct {
	Feature        string  `json:"feature"`
	Value          float64 `json:"value"`
	BaselineMean   float64 `json:"baseline_mean"`
	BaselineMedian float64 `json:"baseline_median"`
	Percentile     float64 `json:"percentile"`
}

// Decision is the scored and explained outcome for one applicant.
type Decision struct {
	Attributions  []FeatureAttribution `json:"attributions"`
	Context       []FeatureContext     `json:"context,omitempty"`
	Probability   float64              `json:"probability"`
	Margin        float64              `json:"margin"`
	ExpectedValue float64              `json:"expected_value"`
	Reject        bool                 `json:"reject"`
}

// Label returns the human readable outcome.
func (d *Decision) Label() string {
	if d.Reject {
		return "REJECTED"
	}
	return "APPROVED"
}

// Ranked returns the attributions ordered by absolute contribution,
// largest first. Ties keep schema order.
func (d *Decision) Ranked() []FeatureAttribution {
	out := append([]FeatureAttribution(nil), d.Attributions...)
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Contribution) > math.Abs(out[j].Contribution)
	})
	return out
}
