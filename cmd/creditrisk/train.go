package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/Praneeth9346/CreditRisk/internal/cli"
	"github.com/Praneeth9346/CreditRisk/internal/engine"
	"github.com/spf13/cobra"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train and store the risk classifier",
		Long: `Generate the synthetic dataset, balance it, train the boosted tree
classifier, evaluate it on a held-out split and store it with its training
baseline. The previously stored model is replaced only on success.`,
		RunE: runTrain,
	}

	cmd.Flags().Bool("no-progress", false, "disable the progress bar")

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context(), true)

	store, err := initStore(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close model store", "error", closeErr)
		}
	}()

	var opts []engine.Option
	if noProgress, _ := cmd.Flags().GetBool("no-progress"); !noProgress {
		opts = append(opts, engine.WithProgress(cli.NewTrainingProgress(cmd.ErrOrStderr()).Update))
	}

	summary, err := engine.New(store, settings.Engine, opts...).Train(ctx)
	if err != nil {
		if handler.WasInterrupted() {
			return fmt.Errorf("training interrupted: %w", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if err := cli.RenderRun(out, summary.Run); err != nil {
		return err
	}

	type share struct {
		name  string
		value float64
	}
	shares := make([]share, 0, len(summary.Importance))
	for name, v := range summary.Importance {
		shares = append(shares, share{name, v})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].value != shares[j].value {
			return shares[i].value > shares[j].value
		}
		return shares[i].name < shares[j].name
	})
	fmt.Fprintln(out, cli.BoldStyle.Render("Feature importance (gain share)"))
	for _, s := range shares {
		fmt.Fprintf(out, "  %-18s %6.1f%%\n", s.name, 100*s.value)
	}

	_, err = fmt.Fprintln(out, cli.FormatSuccess("Model stored in "+storeLocation(settings)))
	return err
}
