package explain

import (
	"context"
	"math"
	"testing"

	"github.com/Praneeth9346/CreditRisk/internal/boost"
	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func stumpEnsemble() *boost.Ensemble {
	return &boost.Ensemble{
		Schema: model.Schema{"a", "b"},
		Trees: []boost.Tree{{Nodes: []boost.Node{
			{Feature: 0, Threshold: 5, Left: 1, Right: 2, Cover: 4},
			{Leaf: true, Value: -1, Cover: 3},
			{Leaf: true, Value: 3, Cover: 1},
		}}},
	}
}

// interactionDataset labels a record 1 when both x0 and x1 are high; x2 is
// irrelevant.
func interactionDataset(t *testing.T) *model.Dataset {
	t.Helper()
	const n = 300
	x := mat.NewDense(n, 3, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		a, b, c := float64(i%10), float64((i/10)%10), float64((i*7)%11)
		x.SetRow(i, []float64{a, b, c})
		if a >= 4 && b >= 6 {
			y[i] = 1
		}
	}
	ds, err := model.NewDataset(model.Schema{"x0", "x1", "x2"}, x, y)
	require.NoError(t, err)
	return ds
}

func trainedEnsemble(t *testing.T) *boost.Ensemble {
	t.Helper()
	params := boost.DefaultParams()
	params.Trees = 8
	params.MaxDepth = 3
	ens, err := boost.Train(context.Background(), interactionDataset(t), params)
	require.NoError(t, err)
	return ens
}

// conditionalExpectation follows x for features in known and averages the
// other branches by cover.
func conditionalExpectation(tree *boost.Tree, i int, x []float64, known map[int]bool) float64 {
	n := &tree.Nodes[i]
	if n.Leaf {
		return n.Value
	}
	if known[n.Feature] {
		if x[n.Feature] < n.Threshold {
			return conditionalExpectation(tree, n.Left, x, known)
		}
		return conditionalExpectation(tree, n.Right, x, known)
	}
	l, r := &tree.Nodes[n.Left], &tree.Nodes[n.Right]
	return (l.Cover*conditionalExpectation(tree, n.Left, x, known) +
		r.Cover*conditionalExpectation(tree, n.Right, x, known)) / n.Cover
}

// bruteForceShapley enumerates every coalition.
func bruteForceShapley(ens *boost.Ensemble, x []float64) []float64 {
	m := len(ens.Schema)
	value := func(mask int) float64 {
		known := map[int]bool{}
		for f := 0; f < m; f++ {
			if mask&(1<<f) != 0 {
				known[f] = true
			}
		}
		total := ens.BaseMargin
		for i := range ens.Trees {
			total += conditionalExpectation(&ens.Trees[i], 0, x, known)
		}
		return total
	}

	factorial := func(k int) float64 {
		out := 1.0
		for i := 2; i <= k; i++ {
			out *= float64(i)
		}
		return out
	}

	phi := make([]float64, m)
	for f := 0; f < m; f++ {
		for mask := 0; mask < 1<<m; mask++ {
			if mask&(1<<f) != 0 {
				continue
			}
			size := 0
			for g := 0; g < m; g++ {
				if mask&(1<<g) != 0 {
					size++
				}
			}
			weight := factorial(size) * factorial(m-size-1) / factorial(m)
			phi[f] += weight * (value(mask|1<<f) - value(mask))
		}
	}
	return phi
}

func TestExplain_Stump(t *testing.T) {
	e, err := NewExplainer(stumpEnsemble())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, e.ExpectedValue(), 1e-12)

	exp, err := e.Explain([]float64{7, 100})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, exp.Margin, 1e-12)
	assert.InDelta(t, 3.0, exp.Values[0], 1e-12)
	assert.InDelta(t, 0.0, exp.Values[1], 1e-12)

	exp, err = e.Explain([]float64{1, 100})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, exp.Values[0], 1e-12)

	attrs := exp.Attributions()
	require.Len(t, attrs, 2)
	assert.Equal(t, "a", attrs[0].Feature)
	assert.Equal(t, 1.0, attrs[0].Value)
	assert.Equal(t, "b", attrs[1].Feature)
}

func TestExplain_Additivity(t *testing.T) {
	ens := trainedEnsemble(t)
	e, err := NewExplainer(ens)
	require.NoError(t, err)

	ds := interactionDataset(t)
	for i := 0; i < ds.Len(); i += 17 {
		x := ds.Row(i)
		exp, err := e.Explain(x)
		require.NoError(t, err)

		margin, err := ens.Margin(x)
		require.NoError(t, err)

		sum := exp.ExpectedValue
		for _, v := range exp.Values {
			sum += v
		}
		assert.InDelta(t, margin, sum, 1e-6, "row %d", i)
		assert.InDelta(t, margin, exp.Margin, 1e-12)
	}
}

func TestExplain_MatchesBruteForce(t *testing.T) {
	ens := trainedEnsemble(t)
	e, err := NewExplainer(ens)
	require.NoError(t, err)

	for _, x := range [][]float64{{0, 0, 0}, {9, 9, 3}, {5, 2, 10}, {3, 7, 1}} {
		exp, err := e.Explain(x)
		require.NoError(t, err)
		want := bruteForceShapley(ens, x)
		for f := range want {
			assert.InDelta(t, want[f], exp.Values[f], 1e-9, "input %v feature %d", x, f)
		}
	}
}

func TestExplain_ExpectedValue(t *testing.T) {
	ens := trainedEnsemble(t)
	e, err := NewExplainer(ens)
	require.NoError(t, err)

	want := bruteForceEmpty(ens)
	assert.InDelta(t, want, e.ExpectedValue(), 1e-12)
}

func bruteForceEmpty(ens *boost.Ensemble) float64 {
	total := ens.BaseMargin
	for i := range ens.Trees {
		total += conditionalExpectation(&ens.Trees[i], 0, make([]float64, len(ens.Schema)), nil)
	}
	return total
}

func TestExplain_IrrelevantFeature(t *testing.T) {
	ens := trainedEnsemble(t)
	used := false
	for _, tree := range ens.Trees {
		for _, n := range tree.Nodes {
			if !n.Leaf && n.Feature == 2 {
				used = true
			}
		}
	}
	if used {
		t.Skip("noise feature was split on")
	}

	e, err := NewExplainer(ens)
	require.NoError(t, err)
	exp, err := e.Explain([]float64{9, 9, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, exp.Values[2])
}

func TestNewExplainer_Errors(t *testing.T) {
	_, err := NewExplainer(nil)
	assert.Error(t, err)

	_, err = NewExplainer(&boost.Ensemble{Schema: model.Schema{"a"}})
	assert.Error(t, err)
}

func TestExplain_SchemaMismatch(t *testing.T) {
	e, err := NewExplainer(stumpEnsemble())
	require.NoError(t, err)

	_, err = e.Explain([]float64{1})
	assert.ErrorIs(t, err, common.ErrSchemaMismatch)
}

func TestExplainApplicant(t *testing.T) {
	schema := model.DefaultSchema()
	ens := &boost.Ensemble{
		Schema: schema,
		Trees: []boost.Tree{{Nodes: []boost.Node{
			{Feature: schema.Index(model.FeatureIncome), Threshold: 50000, Left: 1, Right: 2, Cover: 2},
			{Leaf: true, Value: 1, Cover: 1},
			{Leaf: true, Value: -1, Cover: 1},
		}}},
	}
	e, err := NewExplainer(ens)
	require.NoError(t, err)

	a := &model.Applicant{Income: 20000, Age: 30, HouseOwnership: model.HouseRent}
	exp, err := e.ExplainApplicant(a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, exp.Values[schema.Index(model.FeatureIncome)], 1e-12)
	assert.InDelta(t, 1.0, exp.Margin, 1e-12)

	_, err = e.ExplainApplicant(&model.Applicant{Income: -1})
	assert.ErrorIs(t, err, common.ErrInvalidApplicant)

	_, err = e.ExplainApplicant(nil)
	assert.ErrorIs(t, err, common.ErrInvalidApplicant)
}

func TestProfile(t *testing.T) {
	baseline := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})
	p, err := NewBaselineProfile(model.Schema{"a", "b"}, baseline)
	require.NoError(t, err)

	summaries := p.Summaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "a", summaries[0].Feature)
	assert.InDelta(t, 2.5, summaries[0].Mean, 1e-12)
	assert.InDelta(t, 2.5, summaries[0].Median, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), summaries[0].StdDev, 1e-12)
	assert.Equal(t, 1.0, summaries[0].Min)
	assert.Equal(t, 40.0, summaries[1].Max)

	ctx, err := p.Context([]float64{3, 5})
	require.NoError(t, err)
	require.Len(t, ctx, 2)
	assert.Equal(t, "a", ctx[0].Feature)
	assert.Equal(t, 3.0, ctx[0].Value)
	assert.InDelta(t, 75.0, ctx[0].Percentile, 1e-12)
	assert.InDelta(t, 25.0, ctx[1].BaselineMean, 1e-12)
	assert.InDelta(t, 0.0, ctx[1].Percentile, 1e-12)

	_, err = p.Context([]float64{1})
	assert.ErrorIs(t, err, common.ErrSchemaMismatch)
}

func TestNewBaselineProfile_Errors(t *testing.T) {
	_, err := NewBaselineProfile(model.Schema{"a"}, nil)
	assert.Error(t, err)

	_, err = NewBaselineProfile(model.Schema{"a"}, mat.NewDense(2, 2, nil))
	assert.ErrorIs(t, err, common.ErrSchemaMismatch)
}
