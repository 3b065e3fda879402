// Package boost implements a gradient boosted decision tree classifier
// trained on logistic loss.
package boost

import (
	"fmt"
	"math"

	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/model"
)

// Node is one node of a regression tree. Internal nodes send a record to
// Left when its feature value is below Threshold. Cover is the hessian sum
// of the training records that reached the node.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Gain      float64 `json:"gain,omitempty"`
	Cover     float64 `json:"cover"`
	Leaf      bool    `json:"leaf,omitempty"`
}

// Tree is a binary regression tree; Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict returns the leaf value reached by x.
func (t *Tree) Predict(x []float64) float64 {
	return t.Nodes[t.Leaf(x)].Value
}

// Leaf returns the index of the leaf reached by x.
func (t *Tree) Leaf(x []float64) int {
	i := 0
	for !t.Nodes[i].Leaf {
		n := &t.Nodes[i]
		if x[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return i
}

// Depth returns the number of edges on the longest root to leaf path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := &t.Nodes[i]
		if n.Leaf {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}

// Ensemble is a trained boosted tree classifier. It is immutable once
// returned by Train.
type Ensemble struct {
	Schema     model.Schema `json:"schema"`
	Trees      []Tree       `json:"trees"`
	Params     Params       `json:"params"`
	BaseMargin float64      `json:"base_margin"`
}

// Margin returns the raw (pre-logistic) output for x.
func (e *Ensemble) Margin(x []float64) (float64, error) {
	if len(x) != len(e.Schema) {
		return 0, fmt.Errorf("%w: expected %d features, got %d", common.ErrSchemaMismatch, len(e.Schema), len(x))
	}
	m := e.BaseMargin
	for i := range e.Trees {
		m += e.Trees[i].Predict(x)
	}
	return m, nil
}

// PredictProba returns the probability of default for x.
func (e *Ensemble) PredictProba(x []float64) (float64, error) {
	m, err := e.Margin(x)
	if err != nil {
		return 0, err
	}
	return Sigmoid(m), nil
}

// Predict returns 1 when the default probability is above model.RejectThreshold.
func (e *Ensemble) Predict(x []float64) (int, error) {
	p, err := e.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p > model.RejectThreshold {
		return 1, nil
	}
	return 0, nil
}

// PredictLabels predicts every record of ds.
func (e *Ensemble) PredictLabels(ds *model.Dataset) ([]int, error) {
	if !e.Schema.Equal(ds.Schema) {
		return nil, fmt.Errorf("%w: dataset schema differs from model schema", common.ErrSchemaMismatch)
	}
	out := make([]int, ds.Len())
	for i := range out {
		label, err := e.Predict(ds.X.RawRowView(i))
		if err != nil {
			return nil, err
		}
		out[i] = label
	}
	return out, nil
}

// Importance returns the share of total split gain attributed to each feature.
func (e *Ensemble) Importance() map[string]float64 {
	gain := make([]float64, len(e.Schema))
	var total float64
	for _, t := range e.Trees {
		for _, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			gain[n.Feature] += n.Gain
			total += n.Gain
		}
	}

	out := make(map[string]float64, len(e.Schema))
	for i, name := range e.Schema {
		if total > 0 {
			out[name] = gain[i] / total
		} else {
			out[name] = 0
		}
	}
	return out
}

// Validate checks the structural integrity of a decoded ensemble.
func (e *Ensemble) Validate() error {
	if len(e.Schema) == 0 {
		return fmt.Errorf("ensemble has no schema")
	}
	if len(e.Trees) == 0 {
		return fmt.Errorf("ensemble has no trees")
	}
	for ti, t := range e.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= len(e.Schema) {
				return fmt.Errorf("tree %d node %d: feature %d out of range", ti, ni, n.Feature)
			}
			if n.Left <= ni || n.Right <= ni || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d: invalid children", ti, ni)
			}
			if n.Cover <= 0 {
				return fmt.Errorf("tree %d node %d: non-positive cover", ti, ni)
			}
		}
	}
	return nil
}

// Sigmoid is the logistic link.
func Sigmoid(m float64) float64 {
	return 1 / (1 + math.Exp(-m))
}

// Logit is the inverse of Sigmoid.
func Logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
