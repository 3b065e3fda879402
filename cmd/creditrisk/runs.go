package main

import (
	"log/slog"

	"github.com/Praneeth9346/CreditRisk/internal/cli"
	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded training runs",
		RunE:  runRuns,
	}

	cmd.Flags().Int("limit", 10, "maximum number of runs to list (0 for all)")

	return cmd
}

func runRuns(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := initStore(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close model store", "error", closeErr)
		}
	}()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(ctx, limit)
	if err != nil {
		return err
	}
	return cli.RenderRuns(cmd.OutOrStdout(), runs)
}
