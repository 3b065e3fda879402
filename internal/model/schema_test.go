package model

import (
	"testing"

	"github.com/Praneeth9346/CreditRisk/internal/common"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestSchemaValidate(t *testing.T) {
	schema := DefaultSchema()

	assert.NoError(t, schema.Validate(DefaultSchema()))

	swapped := DefaultSchema()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	err := schema.Validate(swapped)
	assert.ErrorIs(t, err, common.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), `feature "Age" at position 0`)

	assert.ErrorIs(t, schema.Validate(schema[:8]), common.ErrSchemaMismatch)

	unknown := DefaultSchema()
	unknown[8] = "Zip_Code"
	assert.ErrorIs(t, schema.Validate(unknown), common.ErrSchemaMismatch)
}

func TestSchemaEqualAndClone(t *testing.T) {
	s := DefaultSchema()
	c := s.Clone()
	assert.True(t, s.Equal(c))

	c[0] = "changed"
	assert.False(t, s.Equal(c))
	assert.Equal(t, FeatureIncome, s[0])
	assert.Equal(t, 7, s.Index(FeatureCurrentJobYears))
	assert.Equal(t, -1, s.Index("nope"))
}

func TestDatasetSubsetAndCounts(t *testing.T) {
	schema := Schema{"a", "b"}
	x := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	ds, err := NewDataset(schema, x, []int{0, 1, 0})
	assert.NoError(t, err)

	neg, pos := ds.ClassCounts()
	assert.Equal(t, 2, neg)
	assert.Equal(t, 1, pos)

	sub := ds.Subset([]int{2, 1})
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, []float64{5, 6}, sub.Row(0))
	assert.Equal(t, []int{0, 1}, sub.Y)

	sub.X.Set(0, 0, 99)
	assert.Equal(t, 5.0, ds.X.At(2, 0))
}

func TestNewDataset_Mismatch(t *testing.T) {
	x := mat.NewDense(2, 2, nil)
	_, err := NewDataset(Schema{"a", "b"}, x, []int{0})
	assert.Error(t, err)

	_, err = NewDataset(Schema{"a"}, x, []int{0, 1})
	assert.Error(t, err)

	empty, err := NewDataset(Schema{"a"}, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestDecisionRanked(t *testing.T) {
	d := &Decision{
		Attributions: []FeatureAttribution{
			{Feature: "a", Contribution: 0.1},
			{Feature: "b", Contribution: -2},
			{Feature: "c", Contribution: 0.5},
		},
		Reject: true,
	}

	ranked := d.Ranked()
	assert.Equal(t, []string{"b", "c", "a"}, []string{ranked[0].Feature, ranked[1].Feature, ranked[2].Feature})
	assert.Equal(t, "a", d.Attributions[0].Feature)
	assert.Equal(t, "REJECTED", d.Label())
}
