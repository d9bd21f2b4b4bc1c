package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	financeapp "github.com/corpfin/backend/internal/application/finance"
	reportapp "github.com/corpfin/backend/internal/application/report"
	"github.com/corpfin/backend/internal/infrastructure/config"
	"github.com/corpfin/backend/internal/infrastructure/logger"
	"github.com/corpfin/backend/internal/infrastructure/rendering"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

var (
	runScenarioFile string
	runFormat       string
	runIterations   int
	runPDFPath      string
)

// NewRunCmd builds the run subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the projection model on a scenario file",
		Long: `Run evaluates a scenario file with the three-statement projection model and
prints the resulting statements. The circular dependency between interest,
debt and cash is resolved with a fixed number of solver rounds, so repeated
runs of the same scenario produce identical numbers.`,
		Example: `  fincli run -f scenario.yaml
  fincli run -f scenario.yaml --format json
  fincli run -f scenario.yaml --pdf report.pdf`,
		RunE: runScenario,
	}
	AddRunFlags(cmd)
	return cmd
}

// AddRunFlags binds the run command flags.
func AddRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runScenarioFile, "file", "f", "", "scenario YAML file (required)")
	cmd.Flags().StringVar(&runFormat, "format", formatTable, "output format: table or json")
	cmd.Flags().IntVar(&runIterations, "iterations", 0, "solver rounds, 0 uses the configured default")
	cmd.Flags().StringVar(&runPDFPath, "pdf", "", "also render the report and write the PDF to this path")
	_ = cmd.MarkFlagRequired("file")
}

func runScenario(cmd *cobra.Command, args []string) error {
	if runFormat != formatTable && runFormat != formatJSON {
		return fmt.Errorf("unknown format %q, want %s or %s", runFormat, formatTable, formatJSON)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.CLIConfig())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync(log) }()

	scenario, err := financeapp.LoadScenario(runScenarioFile)
	if err != nil {
		return err
	}

	iterations := cfg.Model.SolverIterations
	if runIterations > 0 {
		iterations = runIterations
	}

	// No result cache here, every invocation computes from scratch.
	projections := financeapp.NewProjectionService(financeapp.ProjectionServiceConfig{
		SolverIterations:   iterations,
		MaxProjectionYears: cfg.Model.MaxProjectionYears,
		Logger:             log,
	})

	resp, err := projections.Run(cmd.Context(), scenario.ToRequest())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if runFormat == formatJSON {
		if err := printJSON(out, resp); err != nil {
			return err
		}
	} else {
		printProjection(out, scenario, resp)
	}

	if runPDFPath != "" {
		if err := writePDFReport(cmd.Context(), cfg, log, projections, scenario, runPDFPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nReport written to %s\n", runPDFPath)
	}

	return nil
}

// writePDFReport renders the projection report through the configured PDF
// engine. The rendering.enabled switch only gates the HTTP endpoint; an
// explicit --pdf flag always renders.
func writePDFReport(ctx context.Context, cfg *config.Config, log *zap.Logger, projections *financeapp.ProjectionService, scenario *financeapp.Scenario, path string) error {
	renderer, err := rendering.NewPDFRenderer(cfg.Rendering, log)
	if err != nil {
		return err
	}

	reports := reportapp.NewReportService(reportapp.ReportServiceConfig{
		Projections: projections,
		Renderer:    renderer,
		EngineName:  cfg.Rendering.Engine,
		Logger:      log,
	})
	defer func() { _ = reports.Close() }()

	req := scenario.ToRequest()
	rendered, err := reports.RenderProjection(ctx, reportapp.RenderProjectionRequest{
		BaseYear:    req.BaseYear,
		Assumptions: req.Assumptions,
		Options:     &reportapp.ReportOptionsDTO{Title: scenario.Name},
	})
	if err != nil {
		return err
	}

	return os.WriteFile(path, rendered.Data, 0o644)
}
