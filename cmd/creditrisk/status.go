package main

import (
	"log/slog"

	"github.com/Praneeth9346/CreditRisk/internal/cli"
	"github.com/Praneeth9346/CreditRisk/internal/service"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a usable model is stored",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
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

	status, err := store.Status(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := cli.RenderStatus(out, storeLocation(settings), status); err != nil {
		return err
	}
	if status != service.StatusPresent {
		return nil
	}

	artifacts, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if artifacts.Run == nil {
		return nil
	}
	return cli.RenderRun(out, artifacts.Run)
}
