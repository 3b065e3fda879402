package cli

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/Praneeth9346/CreditRisk/internal/model"
	"github.com/Praneeth9346/CreditRisk/internal/service"
	"github.com/charmbracelet/lipgloss"
)

// RenderDecision writes the decision banner followed by the attribution
// table, strongest contributions first. top limits the rows; zero shows all.
func RenderDecision(w io.Writer, d *model.Decision, top int) error {
	labelStyle := SuccessStyle
	if d.Reject {
		labelStyle = ErrorStyle
	}
	banner := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Bold(true).Render(d.Label()),
		fmt.Sprintf("Default probability: %.1f%%", 100*d.Probability),
		SubtleStyle.Render(fmt.Sprintf("margin %.4f, baseline %.4f", d.Margin, d.ExpectedValue)),
	)
	if _, err := fmt.Fprintln(w, RenderBox("Credit decision", banner)); err != nil {
		return err
	}

	percentiles := make(map[string]float64, len(d.Context))
	for _, c := range d.Context {
		percentiles[c.Feature] = c.Percentile
	}

	ranked := d.Ranked()
	if top > 0 && top < len(ranked) {
		ranked = ranked[:top]
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-18s %12s %12s %11s", "Feature", "Value", "Impact", "Percentile")))
	b.WriteString("\n")
	for _, a := range ranked {
		impact := fmt.Sprintf("%s %+.4f", DownIcon, a.Contribution)
		style := SuccessStyle
		if a.Contribution > 0 {
			impact = fmt.Sprintf("%s %+.4f", UpIcon, a.Contribution)
			style = ErrorStyle
		}
		if a.Contribution == 0 {
			style = SubtleStyle
		}

		pct := "-"
		if p, ok := percentiles[a.Feature]; ok {
			pct = fmt.Sprintf("%.0f%%", p)
		}
		fmt.Fprintf(&b, "%-18s %12s %12s %11s\n", a.Feature, formatValue(a.Value), style.Render(impact), pct)
	}
	b.WriteString(SubtleStyle.Render(UpIcon + " raises risk, " + DownIcon + " lowers risk"))

	_, err := fmt.Fprintln(w, b.String())
	return err
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// RenderRun writes a training run and its classification report.
func RenderRun(w io.Writer, run *service.TrainingRun) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Run:        %s\n", run.ID)
	fmt.Fprintf(&b, "Trained:    %s (%s)\n", run.CreatedAt.Local().Format("Jan 2, 2006 15:04:05"), run.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Records:    %d generated, %d train (%d positive), %d test (%d positive)\n",
		run.Samples, run.TrainSize, run.TrainPositives, run.TestSize, run.TestPositives)
	fmt.Fprintf(&b, "Resampled:  %d records\n", run.ResampledSize)
	fmt.Fprintf(&b, "Model:      %d trees, depth %d, learning rate %g\n", run.Params.Trees, run.Params.MaxDepth, run.Params.LearningRate)
	fmt.Fprintf(&b, "Accuracy:   %.4f", run.Accuracy)
	if run.Report != nil {
		b.WriteString("\n\n")
		b.WriteString(run.Report.String())
	}

	_, err := fmt.Fprintln(w, RenderBox("Training run", b.String()))
	return err
}

// RenderRuns writes one line per training run.
func RenderRuns(w io.Writer, runs []service.TrainingRun) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No training runs recorded"))
		return err
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-36s  %-19s  %8s  %8s", "Run", "Trained", "Records", "Accuracy")))
	b.WriteString("\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "%-36s  %-19s  %8d  %8.4f\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Samples, r.Accuracy)
	}
	_, err := fmt.Fprint(w, b.String())
	return err
}

// RenderStatus writes a one line summary of the model store.
func RenderStatus(w io.Writer, location string, status service.StoreStatus) error {
	var line string
	switch status {
	case service.StatusPresent:
		line = FormatSuccess("Model ready in " + location)
	case service.StatusCorrupt:
		line = FormatError("Stored model in " + location + " is corrupt; it will be retrained on next use")
	default:
		line = FormatWarning("No model in " + location + "; run 'creditrisk train'")
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
