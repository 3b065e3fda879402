package evaluation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	// 6 negatives (5 right), 4 positives (3 right).
	yTrue := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1}
	yPred := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 0}

	r, err := Evaluate(yTrue, yPred)
	require.NoError(t, err)

	assert.InDelta(t, 0.8, r.Accuracy, 1e-12)
	assert.Equal(t, 10, r.Support)
	require.Len(t, r.Classes, 2)

	neg, pos := r.Classes[0], r.Classes[1]
	assert.Equal(t, 6, neg.Support)
	assert.Equal(t, 4, pos.Support)
	assert.InDelta(t, 5.0/6.0, neg.Precision, 1e-12)
	assert.InDelta(t, 5.0/6.0, neg.Recall, 1e-12)
	assert.InDelta(t, 0.75, pos.Precision, 1e-12)
	assert.InDelta(t, 0.75, pos.Recall, 1e-12)
	assert.InDelta(t, 0.75, pos.F1, 1e-12)

	assert.InDelta(t, (5.0/6.0+0.75)/2, r.Macro.Precision, 1e-12)
	assert.InDelta(t, (5.0/6.0*6+0.75*4)/10, r.Weighted.Recall, 1e-12)
}

func TestEvaluate_NoPositivePredictions(t *testing.T) {
	r, err := Evaluate([]int{0, 0, 1}, []int{0, 0, 0})
	require.NoError(t, err)

	pos := r.Classes[1]
	assert.Equal(t, 0.0, pos.Precision)
	assert.Equal(t, 0.0, pos.Recall)
	assert.Equal(t, 0.0, pos.F1)
	assert.InDelta(t, 2.0/3.0, r.Accuracy, 1e-12)
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []int
		yPred []int
	}{
		{name: "length mismatch", yTrue: []int{0, 1}, yPred: []int{0}},
		{name: "empty", yTrue: nil, yPred: nil},
		{name: "bad label", yTrue: []int{0, 2}, yPred: []int{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.yTrue, tt.yPred)
			assert.Error(t, err)
		})
	}
}

func TestReportString(t *testing.T) {
	r, err := Evaluate([]int{0, 1, 1, 0}, []int{0, 1, 0, 0})
	require.NoError(t, err)

	out := r.String()
	for _, want := range []string{"precision", "recall", "f1-score", "support", "accuracy", "macro avg", "weighted avg", "0.75"} {
		assert.Contains(t, out, want)
	}
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 8)
}
