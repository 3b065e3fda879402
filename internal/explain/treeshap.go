// Package explain attributes boosted tree predictions to individual
// features with exact TreeSHAP values.
package explain

import (
	"errors"
	"fmt"

	"github.com/Praneeth9346/CreditRisk/internal/boost"
	"github.com/Praneeth9346/CreditRisk/internal/model"
)

// Explanation is the additive decomposition of one prediction:
// ExpectedValue + sum(Values) == Margin.
type Explanation struct {
	Schema        model.Schema
	Input         []float64
	Values        []float64
	ExpectedValue float64
	Margin        float64
}

// Attributions pairs every contribution with its feature name and value.
func (e *Explanation) Attributions() []model.FeatureAttribution {
	out := make([]model.FeatureAttribution, len(e.Values))
	for i, v := range e.Values {
		out[i] = model.FeatureAttribution{
			Feature:      e.Schema[i],
			Value:        e.Input[i],
			Contribution: v,
		}
	}
	return out
}

// Explainer computes TreeSHAP values for one ensemble. It holds no
// mutable state and can be shared between goroutines.
type Explainer struct {
	ens      *boost.Ensemble
	expected float64
}

// NewExplainer prepares an explainer for ens.
func NewExplainer(ens *boost.Ensemble) (*Explainer, error) {
	if ens == nil {
		return nil, errors.New("nil ensemble")
	}
	if err := ens.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ensemble: %w", err)
	}

	expected := ens.BaseMargin
	for i := range ens.Trees {
		expected += treeExpectation(&ens.Trees[i], 0)
	}
	return &Explainer{ens: ens, expected: expected}, nil
}

// ExpectedValue is the cover-weighted mean margin of the training data.
func (e *Explainer) ExpectedValue() float64 {
	return e.expected
}

// Explain decomposes the margin of x into per-feature contributions.
func (e *Explainer) Explain(x []float64) (*Explanation, error) {
	margin, err := e.ens.Margin(x)
	if err != nil {
		return nil, err
	}

	phi := make([]float64, len(e.ens.Schema))
	for i := range e.ens.Trees {
		w := walker{tree: &e.ens.Trees[i], x: x, phi: phi}
		w.recurse(0, nil, 1, 1, -1)
	}

	return &Explanation{
		Schema:        e.ens.Schema,
		Input:         append([]float64(nil), x...),
		Values:        phi,
		ExpectedValue: e.expected,
		Margin:        margin,
	}, nil
}

// ExplainApplicant validates and encodes a, then explains it.
func (e *Explainer) ExplainApplicant(a *model.Applicant) (*Explanation, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	x, err := a.Vector(e.ens.Schema)
	if err != nil {
		return nil, err
	}
	return e.Explain(x)
}

func treeExpectation(t *boost.Tree, i int) float64 {
	n := &t.Nodes[i]
	if n.Leaf {
		return n.Value
	}
	l, r := &t.Nodes[n.Left], &t.Nodes[n.Right]
	return (l.Cover*treeExpectation(t, n.Left) + r.Cover*treeExpectation(t, n.Right)) / n.Cover
}

// pathElement tracks one feature on the current root to node path: the
// fraction of "zero" paths (feature unknown) and "one" paths (feature
// known) flowing through it, and the permutation weight.
type pathElement struct {
	feature int
	zero    float64
	one     float64
	weight  float64
}

type walker struct {
	tree *boost.Tree
	x    []float64
	phi  []float64
}

func (w *walker) recurse(i int, path []pathElement, zero, one float64, feature int) {
	path = extendPath(path, zero, one, feature)
	node := &w.tree.Nodes[i]

	if node.Leaf {
		for k := 1; k < len(path); k++ {
			scale := unwoundPathSum(path, k)
			w.phi[path[k].feature] += scale * (path[k].one - path[k].zero) * node.Value
		}
		return
	}

	hot, cold := node.Right, node.Left
	if w.x[node.Feature] < node.Threshold {
		hot, cold = node.Left, node.Right
	}

	incomingZero, incomingOne := 1.0, 1.0
	for k := 1; k < len(path); k++ {
		if path[k].feature == node.Feature {
			incomingZero, incomingOne = path[k].zero, path[k].one
			path = unwindPath(path, k)
			break
		}
	}

	hotCover := w.tree.Nodes[hot].Cover / node.Cover
	coldCover := w.tree.Nodes[cold].Cover / node.Cover
	w.recurse(hot, path, incomingZero*hotCover, incomingOne, node.Feature)
	w.recurse(cold, path, incomingZero*coldCover, 0, node.Feature)
}

// extendPath returns a copy of path grown by one feature split.
func extendPath(path []pathElement, zero, one float64, feature int) []pathElement {
	l := len(path)
	out := make([]pathElement, l+1)
	copy(out, path)

	out[l] = pathElement{feature: feature, zero: zero, one: one}
	if l == 0 {
		out[l].weight = 1
	}
	for i := l - 1; i >= 0; i-- {
		out[i+1].weight += one * out[i].weight * float64(i+1) / float64(l+1)
		out[i].weight = zero * out[i].weight * float64(l-i) / float64(l+1)
	}
	return out
}

// unwindPath returns a copy of path with element i removed, undoing extendPath.
func unwindPath(path []pathElement, i int) []pathElement {
	l := len(path) - 1
	out := make([]pathElement, len(path))
	copy(out, path)

	one, zero := out[i].one, out[i].zero
	next := out[l].weight
	for j := l - 1; j >= 0; j-- {
		if one != 0 {
			tmp := out[j].weight
			out[j].weight = next * float64(l+1) / (float64(j+1) * one)
			next = tmp - out[j].weight*zero*float64(l-j)/float64(l+1)
		} else {
			out[j].weight = out[j].weight * float64(l+1) / (zero * float64(l-j))
		}
	}

	for j := i; j < l; j++ {
		out[j].feature = out[j+1].feature
		out[j].zero = out[j+1].zero
		out[j].one = out[j+1].one
	}
	return out[:l]
}

// unwoundPathSum is the total permutation weight of path with element i
// removed, without building the unwound path.
func unwoundPathSum(path []pathElement, i int) float64 {
	l := len(path) - 1
	one, zero := path[i].one, path[i].zero
	next := path[l].weight

	var total float64
	for j := l - 1; j >= 0; j-- {
		if one != 0 {
			tmp := next * float64(l+1) / (float64(j+1) * one)
			total += tmp
			next = path[j].weight - tmp*zero*float64(l-j)/float64(l+1)
		} else {
			total += path[j].weight / zero / (float64(l-j) / float64(l+1))
		}
	}
	return total
}
