// Package resample rebalances a training set by synthesizing minority
// class records.
package resample

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/Praneeth9346/CreditRisk/internal/model"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Defaults for SMOTE.
const (
	DefaultNeighbors = 5
	DefaultSeed      = 42
)

// SMOTE oversamples the minority class by interpolating between minority
// records and their nearest same-class neighbours.
type SMOTE struct {
	Neighbors int
	Seed      uint64
	// AdjustNeighbors lowers Neighbors to the minority count minus one
	// instead of failing when the minority class is too small.
	AdjustNeighbors bool
}

// New returns a SMOTE with the given neighbour count and seed.
func New(neighbors int, seed uint64) *SMOTE {
	return &SMOTE{Neighbors: neighbors, Seed: seed}
}

// Resample returns a new dataset in which the minority class has as many
// records as the majority class. All input rows are kept unchanged and in
// order; synthetic rows are appended after them. ds is not modified.
func (s *SMOTE) Resample(ds *model.Dataset) (*model.Dataset, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("%w: empty training set", common.ErrInsufficientMinoritySamples)
	}

	neg, pos := ds.ClassCounts()
	minorityLabel, minorityCount, majorityCount := 1, pos, neg
	if neg < pos {
		minorityLabel, minorityCount, majorityCount = 0, neg, pos
	}

	deficit := majorityCount - minorityCount
	if deficit == 0 {
		return ds.Subset(allRows(ds.Len())), nil
	}

	k, err := s.neighborCount(minorityCount)
	if err != nil {
		return nil, err
	}

	minority := make([][]float64, 0, minorityCount)
	for i, y := range ds.Y {
		if y == minorityLabel {
			minority = append(minority, ds.Row(i))
		}
	}
	neighbors := nearestNeighbors(minority, k)

	cols := len(ds.Schema)
	total := ds.Len() + deficit
	x := mat.NewDense(total, cols, nil)
	y := make([]int, total)
	for i := 0; i < ds.Len(); i++ {
		x.SetRow(i, ds.X.RawRowView(i))
		y[i] = ds.Y[i]
	}

	rng := rand.New(rand.NewPCG(s.Seed, s.Seed))
	synthetic := make([]float64, cols)
	for j := 0; j < deficit; j++ {
		i := j % minorityCount
		base := minority[i]
		other := minority[neighbors[i][rng.IntN(k)]]
		gap := openUnit(rng)
		for f := range synthetic {
			synthetic[f] = base[f] + gap*(other[f]-base[f])
		}
		x.SetRow(ds.Len()+j, synthetic)
		y[ds.Len()+j] = minorityLabel
	}

	return model.NewDataset(ds.Schema, x, y)
}

func (s *SMOTE) neighborCount(minorityCount int) (int, error) {
	k := s.Neighbors
	if k <= 0 {
		k = DefaultNeighbors
	}
	if minorityCount > k {
		return k, nil
	}
	if s.AdjustNeighbors && minorityCount >= 2 {
		return minorityCount - 1, nil
	}
	return 0, fmt.Errorf("%w: %d minority records for %d neighbours",
		common.ErrInsufficientMinoritySamples, minorityCount, k)
}

// nearestNeighbors returns, for every point, the indices of its k nearest
// other points ordered by distance.
func nearestNeighbors(points [][]float64, k int) [][]int {
	index := make(map[*float64]int, len(points))
	pts := make(kdtree.Points, len(points))
	for i, p := range points {
		cp := append(kdtree.Point(nil), p...)
		pts[i] = cp
		index[&cp[0]] = i
	}
	// New reorders pts while building, the index map is keyed by backing
	// array so it survives that.
	tree := kdtree.New(pts, false)

	out := make([][]int, len(points))
	for i, p := range points {
		keep := kdtree.NewNKeeper(k + 1)
		tree.NearestSet(keep, kdtree.Point(p))

		found := make([]kdtree.ComparableDist, 0, len(keep.Heap))
		for _, c := range keep.Heap {
			if c.Comparable != nil {
				found = append(found, c)
			}
		}
		sort.SliceStable(found, func(a, b int) bool { return found[a].Dist < found[b].Dist })

		nn := make([]int, 0, k)
		for _, c := range found {
			j := index[&c.Comparable.(kdtree.Point)[0]]
			if j == i || len(nn) == k {
				continue
			}
			nn = append(nn, j)
		}
		out[i] = nn
	}
	return out
}

// openUnit returns a uniform value in (0,1).
func openUnit(rng *rand.Rand) float64 {
	for {
		if g := rng.Float64(); g > 0 {
			return g
		}
	}
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
