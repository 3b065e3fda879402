package main

import (
	"encoding/json"
	"log/slog"

	"github.com/Praneeth9346/CreditRisk/internal/cli"
	"github.com/Praneeth9346/CreditRisk/internal/engine"
	"github.com/Praneeth9346/CreditRisk/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one applicant and explain the decision",
		Long: `Score a single applicant with the stored classifier. If no usable model
is stored, one is trained first (unless engine.allow_retrain is false).

Every feature's contribution to the decision is listed, strongest first.`,
		Example: `  creditrisk score --income 20000 --age 25 --house rent --experience 0 --job-years 0
  creditrisk score --income 150000 --age 21 --house own --experience 5 --job-years 5 --json`,
		RunE: runScore,
	}

	cmd.Flags().Int("income", 50000, "annual income")
	cmd.Flags().Int("age", 35, "age in years")
	cmd.Flags().Int("experience", 10, "years of work experience")
	cmd.Flags().Bool("married", false, "applicant is married")
	cmd.Flags().String("house", "rent", "house ownership (rent, own, mortgage)")
	cmd.Flags().Bool("car", false, "applicant owns a car")
	cmd.Flags().Int("profession", 0, "profession id")
	cmd.Flags().Int("job-years", 3, "years in current job")
	cmd.Flags().Int("house-years", 5, "years at current residence")
	cmd.Flags().Int("top", 0, "show only the strongest N contributions")
	cmd.Flags().Bool("json", false, "print the decision as JSON")

	return cmd
}

// applicantFromFlags builds an applicant from the score flags.
func applicantFromFlags(flags *pflag.FlagSet) (*model.Applicant, error) {
	house, _ := flags.GetString("house")
	ownership, err := model.ParseHouseOwnership(house)
	if err != nil {
		return nil, err
	}

	a := &model.Applicant{HouseOwnership: ownership}
	a.Income, _ = flags.GetInt("income")
	a.Age, _ = flags.GetInt("age")
	a.Experience, _ = flags.GetInt("experience")
	a.Married, _ = flags.GetBool("married")
	a.CarOwnership, _ = flags.GetBool("car")
	a.Profession, _ = flags.GetInt("profession")
	a.CurrentJobYears, _ = flags.GetInt("job-years")
	a.HouseYears, _ = flags.GetInt("house-years")

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func runScore(cmd *cobra.Command, _ []string) error {
	applicant, err := applicantFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

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

	scorer, err := engine.New(store, settings.Engine).Load(ctx)
	if err != nil {
		return err
	}

	decision, err := scorer.Score(applicant)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(decision)
	}

	top, _ := cmd.Flags().GetInt("top")
	return cli.RenderDecision(cmd.OutOrStdout(), decision, top)
}
