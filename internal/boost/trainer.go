package boost

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/model"
)

// Default hyperparameters. They are recorded in every trained Ensemble.
const (
	DefaultTrees          = 100
	DefaultMaxDepth       = 6
	DefaultLearningRate   = 0.3
	DefaultLambda         = 1.0
	DefaultGamma          = 0.0
	DefaultMinChildWeight = 1.0
	DefaultBaseScore      = 0.5

	minHessian = 1e-16
	minGain    = 1e-6
)

// Params are the boosting hyperparameters.
type Params struct {
	Trees          int     `json:"trees"`
	MaxDepth       int     `json:"max_depth"`
	LearningRate   float64 `json:"learning_rate"`
	Lambda         float64 `json:"lambda"`
	Gamma          float64 `json:"gamma"`
	MinChildWeight float64 `json:"min_child_weight"`
	BaseScore      float64 `json:"base_score"`
}

// DefaultParams returns the untuned defaults.
func DefaultParams() Params {
	return Params{
		Trees:          DefaultTrees,
		MaxDepth:       DefaultMaxDepth,
		LearningRate:   DefaultLearningRate,
		Lambda:         DefaultLambda,
		Gamma:          DefaultGamma,
		MinChildWeight: DefaultMinChildWeight,
		BaseScore:      DefaultBaseScore,
	}
}

// Validate checks that the parameters can train a model.
func (p Params) Validate() error {
	switch {
	case p.Trees <= 0:
		return fmt.Errorf("trees must be positive, got %d", p.Trees)
	case p.MaxDepth <= 0:
		return fmt.Errorf("max depth must be positive, got %d", p.MaxDepth)
	case p.LearningRate <= 0 || p.LearningRate > 1:
		return fmt.Errorf("learning rate must be in (0,1], got %g", p.LearningRate)
	case p.Lambda < 0:
		return fmt.Errorf("lambda must not be negative, got %g", p.Lambda)
	case p.Gamma < 0:
		return fmt.Errorf("gamma must not be negative, got %g", p.Gamma)
	case p.MinChildWeight < 0:
		return fmt.Errorf("min child weight must not be negative, got %g", p.MinChildWeight)
	case p.BaseScore <= 0 || p.BaseScore >= 1:
		return fmt.Errorf("base score must be in (0,1), got %g", p.BaseScore)
	}
	return nil
}

// ProgressFunc is called after each boosting round.
type ProgressFunc func(done, total int)

// Option configures Train.
type Option func(*trainer)

// WithProgress reports progress after every tree.
func WithProgress(fn ProgressFunc) Option {
	return func(t *trainer) {
		t.progress = fn
	}
}

type trainer struct {
	progress ProgressFunc
	rows     [][]float64
	order    [][]int
	grad     []float64
	hess     []float64
	params   Params
}

// Train fits a boosted ensemble to ds by minimising logistic loss. Trees are
// grown depth-wise with an exact greedy split search on second-order
// statistics.
func Train(ctx context.Context, ds *model.Dataset, params Params, opts ...Option) (*Ensemble, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrTraining, err)
	}
	if err := checkTrainingSet(ds); err != nil {
		return nil, err
	}

	t := &trainer{params: params}
	for _, opt := range opts {
		opt(t)
	}
	t.prepare(ds)

	n := ds.Len()
	ens := &Ensemble{
		Schema:     ds.Schema.Clone(),
		Params:     params,
		BaseMargin: Logit(params.BaseScore),
		Trees:      make([]Tree, 0, params.Trees),
	}

	margin := make([]float64, n)
	for i := range margin {
		margin[i] = ens.BaseMargin
	}

	for round := 0; round < params.Trees; round++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("training interrupted after %d trees: %w", round, err)
		}

		for i := 0; i < n; i++ {
			p := Sigmoid(margin[i])
			t.grad[i] = p - float64(ds.Y[i])
			t.hess[i] = math.Max(p*(1-p), minHessian)
		}

		tree := t.grow()
		for i, row := range t.rows {
			margin[i] += tree.Predict(row)
		}
		ens.Trees = append(ens.Trees, tree)

		if t.progress != nil {
			t.progress(round+1, params.Trees)
		}
	}

	return ens, nil
}

func checkTrainingSet(ds *model.Dataset) error {
	if ds == nil || ds.Len() == 0 || ds.X == nil {
		return fmt.Errorf("%w: empty feature matrix", common.ErrTraining)
	}
	rows, cols := ds.X.Dims()
	if rows != len(ds.Y) {
		return fmt.Errorf("%w: %d rows but %d labels", common.ErrTraining, rows, len(ds.Y))
	}
	if cols == 0 || cols != len(ds.Schema) {
		return fmt.Errorf("%w: %d columns for %d schema features", common.ErrTraining, cols, len(ds.Schema))
	}
	for i, y := range ds.Y {
		if y != 0 && y != 1 {
			return fmt.Errorf("%w: label %d at row %d is not 0 or 1", common.ErrTraining, y, i)
		}
	}
	return nil
}

// prepare caches row views and per-feature sort orders, shared by all trees.
func (t *trainer) prepare(ds *model.Dataset) {
	n := ds.Len()
	t.rows = make([][]float64, n)
	for i := range t.rows {
		t.rows[i] = ds.X.RawRowView(i)
	}

	t.order = make([][]int, len(ds.Schema))
	for f := range t.order {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return t.rows[idx[a]][f] < t.rows[idx[b]][f]
		})
		t.order[f] = idx
	}

	t.grad = make([]float64, n)
	t.hess = make([]float64, n)
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	ok        bool
}

type scan struct {
	gl, hl float64
	last   float64
	seen   bool
}

// grow builds one tree level by level. Every node of the current level is
// evaluated in a single pass over each presorted feature column.
func (t *trainer) grow() Tree {
	n := len(t.rows)
	nodeOf := make([]int, n)
	nodes := []Node{{}}
	sumG := []float64{0}
	sumH := []float64{0}
	for i := 0; i < n; i++ {
		sumG[0] += t.grad[i]
		sumH[0] += t.hess[i]
	}

	frontier := []int{0}
	for depth := 0; depth < t.params.MaxDepth && len(frontier) > 0; depth++ {
		open := make([]bool, len(nodes))
		for _, id := range frontier {
			open[id] = true
		}

		best := make([]split, len(nodes))
		for f := range t.order {
			scans := make([]scan, len(nodes))
			for _, r := range t.order[f] {
				id := nodeOf[r]
				if !open[id] {
					continue
				}
				s := &scans[id]
				v := t.rows[r][f]
				if s.seen && v != s.last {
					t.consider(&best[id], f, s, v, sumG[id], sumH[id])
				}
				s.gl += t.grad[r]
				s.hl += t.hess[r]
				s.last = v
				s.seen = true
			}
		}

		var next []int
		for _, id := range frontier {
			b := best[id]
			if !b.ok {
				continue
			}
			left, right := len(nodes), len(nodes)+1
			nodes[id].Feature = b.feature
			nodes[id].Threshold = b.threshold
			nodes[id].Gain = b.gain
			nodes[id].Left = left
			nodes[id].Right = right
			nodes = append(nodes, Node{}, Node{})
			sumG = append(sumG, 0, 0)
			sumH = append(sumH, 0, 0)
			next = append(next, left, right)
		}
		if len(next) == 0 {
			break
		}

		for r := 0; r < n; r++ {
			id := nodeOf[r]
			if !open[id] || !best[id].ok {
				continue
			}
			child := nodes[id].Right
			if t.rows[r][nodes[id].Feature] < nodes[id].Threshold {
				child = nodes[id].Left
			}
			nodeOf[r] = child
			sumG[child] += t.grad[r]
			sumH[child] += t.hess[r]
		}
		frontier = next
	}

	for id := range nodes {
		nodes[id].Cover = sumH[id]
		if nodes[id].Left == 0 {
			nodes[id].Leaf = true
			nodes[id].Feature = 0
			nodes[id].Value = -sumG[id] / (sumH[id] + t.params.Lambda) * t.params.LearningRate
		}
	}
	return Tree{Nodes: nodes}
}

// consider evaluates the split between the values already scanned and v.
func (t *trainer) consider(best *split, feature int, s *scan, v, g, h float64) {
	gr, hr := g-s.gl, h-s.hl
	if s.hl < t.params.MinChildWeight || hr < t.params.MinChildWeight {
		return
	}

	lambda := t.params.Lambda
	gain := 0.5 * (s.gl*s.gl/(s.hl+lambda) + gr*gr/(hr+lambda) - g*g/(h+lambda))
	if gain <= t.params.Gamma || gain <= minGain {
		return
	}
	if best.ok && gain <= best.gain {
		return
	}

	threshold := s.last + (v-s.last)/2
	if threshold <= s.last {
		threshold = v
	}
	*best = split{feature: feature, threshold: threshold, gain: gain, ok: true}
}
