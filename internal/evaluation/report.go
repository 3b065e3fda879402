// Package evaluation scores predicted labels against held-out truth.
package evaluation

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ClassMetrics are the per-class figures of a classification report.
type ClassMetrics struct {
	Label     int     `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Average is a macro or support-weighted average over classes.
type Average struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Report is the outcome of Evaluate.
type Report struct {
	Classes  []ClassMetrics `json:"classes"`
	Macro    Average        `json:"macro"`
	Weighted Average        `json:"weighted"`
	Accuracy float64        `json:"accuracy"`
	Support  int            `json:"support"`
}

// Evaluate compares binary predictions with the true labels. Classes 0 and
// 1 are always reported; a metric whose denominator is zero is 0.
func Evaluate(yTrue, yPred []int) (*Report, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("label count mismatch: %d true, %d predicted", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, fmt.Errorf("no labels to evaluate")
	}

	// confusion[t][p]
	var confusion [2][2]int
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t > 1 || p < 0 || p > 1 {
			return nil, fmt.Errorf("label at row %d is not 0 or 1", i)
		}
		confusion[t][p]++
	}

	r := &Report{Support: len(yTrue)}
	r.Accuracy = float64(confusion[0][0]+confusion[1][1]) / float64(len(yTrue))

	precision := make([]float64, 2)
	recall := make([]float64, 2)
	f1 := make([]float64, 2)
	support := make([]float64, 2)
	for c := 0; c < 2; c++ {
		tp := confusion[c][c]
		predicted := confusion[0][c] + confusion[1][c]
		actual := confusion[c][0] + confusion[c][1]

		precision[c] = ratio(tp, predicted)
		recall[c] = ratio(tp, actual)
		if precision[c]+recall[c] > 0 {
			f1[c] = 2 * precision[c] * recall[c] / (precision[c] + recall[c])
		}
		support[c] = float64(actual)

		r.Classes = append(r.Classes, ClassMetrics{
			Label:     c,
			Precision: precision[c],
			Recall:    recall[c],
			F1:        f1[c],
			Support:   actual,
		})
	}

	r.Macro = Average{
		Precision: floats.Sum(precision) / 2,
		Recall:    floats.Sum(recall) / 2,
		F1:        floats.Sum(f1) / 2,
	}
	total := floats.Sum(support)
	r.Weighted = Average{
		Precision: floats.Dot(precision, support) / total,
		Recall:    floats.Dot(recall, support) / total,
		F1:        floats.Dot(f1, support) / total,
	}
	return r, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// String renders the report as a fixed-width table.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%12s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	b.WriteString("\n")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%12d %10.2f %10.2f %10.2f %10d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, r.Support)
	fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", "macro avg", r.Macro.Precision, r.Macro.Recall, r.Macro.F1, r.Support)
	fmt.Fprintf(&b, "%12s %10.2f %10.2f %10.2f %10d\n", "weighted avg", r.Weighted.Precision, r.Weighted.Recall, r.Weighted.F1, r.Support)
	return b.String()
}
