package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dataset is a labeled feature matrix. Rows of X are records in Schema
// order and Y holds the matching Risk_Flag labels.
type Dataset struct {
	X      *mat.Dense
	Schema Schema
	Y      []int
}

// NewDataset checks that the matrix, labels and schema agree.
func NewDataset(schema Schema, x *mat.Dense, y []int) (*Dataset, error) {
	if x == nil {
		if len(y) != 0 {
			return nil, fmt.Errorf("no feature matrix for %d labels", len(y))
		}
		return &Dataset{Schema: schema}, nil
	}
	r, c := x.Dims()
	if r != len(y) {
		return nil, fmt.Errorf("feature matrix has %d rows but %d labels", r, len(y))
	}
	if c != len(schema) {
		return nil, fmt.Errorf("feature matrix has %d columns but schema has %d features", c, len(schema))
	}
	return &Dataset{Schema: schema, X: x, Y: y}, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Y)
}

// Row returns a copy of record i.
func (d *Dataset) Row(i int) []float64 {
	return mat.Row(nil, i, d.X)
}

// ClassCounts returns the number of negative and positive labels.
func (d *Dataset) ClassCounts() (negatives, positives int) {
	for _, y := range d.Y {
		if y == 1 {
			positives++
		} else {
			negatives++
		}
	}
	return negatives, positives
}

// Subset copies the given rows into a new dataset, preserving their order.
func (d *Dataset) Subset(rows []int) *Dataset {
	out := &Dataset{Schema: d.Schema, Y: make([]int, len(rows))}
	if len(rows) == 0 {
		return out
	}
	out.X = mat.NewDense(len(rows), len(d.Schema), nil)
	for i, r := range rows {
		out.X.SetRow(i, d.X.RawRowView(r))
		out.Y[i] = d.Y[r]
	}
	return out
}
