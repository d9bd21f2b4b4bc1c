package main

import (
	"fmt"

	"github.com/spf13/cobra"

	financeapp "github.com/corpfin/backend/internal/application/finance"
	"github.com/corpfin/backend/internal/infrastructure/config"
	"github.com/corpfin/backend/internal/infrastructure/logger"
)

var validateScenarioFile string

// NewValidateCmd builds the validate subcommand.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a scenario file without running the model",
		Long: `Validate checks a scenario file against the model input rules and exits
non-zero when the scenario would be rejected by the API. Nothing is computed,
so an expensive scenario validates as fast as a trivial one.`,
		RunE: validateScenario,
	}
	cmd.Flags().StringVarP(&validateScenarioFile, "file", "f", "", "scenario YAML file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func validateScenario(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.CLIConfig())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync(log) }()

	scenario, err := financeapp.LoadScenario(validateScenarioFile)
	if err != nil {
		return err
	}

	projections := financeapp.NewProjectionService(financeapp.ProjectionServiceConfig{
		MaxProjectionYears: cfg.Model.MaxProjectionYears,
		Logger:             log,
	})

	result, err := projections.Validate(cmd.Context(), scenario.ToRequest())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: valid, %d projection years\n", validateScenarioFile, result.Years)
	return nil
}
