package engine

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Praneeth9346/CreditRisk/internal/model"
)

// Split partitions ds into train and test sets by a seeded shuffle. The
// test set gets ceil(testFraction*n) records; both sets are non-empty and
// disjoint.
func Split(ds *model.Dataset, testFraction float64, seed uint64) (train, test *model.Dataset, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in (0,1), got %g", testFraction)
	}
	if ds == nil {
		return nil, nil, fmt.Errorf("nothing to split")
	}
	n := ds.Len()
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest < 1 || nTest >= n {
		return nil, nil, fmt.Errorf("cannot split %d records with test fraction %g", n, testFraction)
	}

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	return ds.Subset(perm[nTest:]), ds.Subset(perm[:nTest]), nil
}
