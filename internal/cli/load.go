package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-dwload/internal/db"
	"github.com/pgEdge/pgedge-dwload/internal/etl"
	"github.com/pgEdge/pgedge-dwload/internal/logging"
)

var (
	loadDDL      string
	loadFrom     string
	loadOnly     string
	loadVerify   bool
	loadNoRunLog bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the warehouse from the source schema",
	Long: `Run the load pipeline: schema, reference, location, calendar,
originations and performance. Each stage runs in its own transaction; a
failed stage is rolled back and stops the load, leaving earlier stages
committed. Re-run the whole load, or resume with --from.

Example:
  pgedge-dwload load --source-schema lc_src --warehouse-schema lc_dw --ddl dw.sql
  pgedge-dwload load --from calendar
  pgedge-dwload load --only performance --verify`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadDDL, "ddl", "",
		"warehouse DDL file to execute first (DDL_PATH)")
	loadCmd.Flags().StringVar(&loadFrom, "from", "",
		"start at this stage and run every later one")
	loadCmd.Flags().StringVar(&loadOnly, "only", "",
		"run this stage only")
	loadCmd.Flags().BoolVar(&loadVerify, "verify", false,
		"run the reconciliation checks after loading")
	loadCmd.Flags().BoolVar(&loadNoRunLog, "no-run-log", false,
		"do not record the run in the warehouse run log")
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadDDL != "" {
		cfg.DDLPath = loadDDL
	}
	if loadVerify {
		cfg.Load.Verify = true
	}
	if loadNoRunLog {
		cfg.Load.RunLog = false
	}

	// Validate configuration
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}
	sel := etl.Selection{From: loadFrom, Only: loadOnly}
	if err := validateSelection(sel); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	database, err := db.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	env, err := etl.NewEnv(database, cfg)
	if err != nil {
		return err
	}

	pipeline := etl.NewPipeline(env, etl.Options{
		DDLPath: cfg.DDLPath,
		RunLog:  cfg.Load.RunLog,
	})

	result, err := pipeline.Run(ctx, sel)
	if err != nil {
		if ctx.Err() != nil {
			logging.Warn().Msg("Load interrupted; the running stage was rolled back")
		}
		return err
	}

	printResult(cmd, result)

	if cfg.Load.Verify {
		return runVerification(ctx, cmd, env)
	}
	return nil
}

// validateSelection checks --from and --only against the stage list
// without touching the database.
func validateSelection(sel etl.Selection) error {
	_, err := etl.NewPipeline(&etl.Env{}, etl.Options{}).Select(sel)
	return err
}

func printResult(cmd *cobra.Command, result *etl.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s\n\n", result.RunID)
	fmt.Fprintf(out, "  %-13s %12s %12s\n", "STAGE", "ROWS", "DURATION")
	for _, s := range result.Stages {
		fmt.Fprintf(out, "  %-13s %12d %12s\n", s.Name, s.Rows, s.Duration.Round(msRound))
	}
	fmt.Fprintf(out, "  %-13s %12d %12s\n", "total", result.Rows(), result.Duration.Round(msRound))
}

// runVerification prints the reconciliation report and fails if any
// check failed.
func runVerification(ctx context.Context, cmd *cobra.Command, env *etl.Env) error {
	logging.Info().Msg("Verifying warehouse")

	report, err := etl.NewVerifier(env).Run(ctx)
	if err != nil {
		return fmt.Errorf("verification could not complete: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	for _, c := range report.Checks {
		status := "PASS"
		if !c.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(out, "  %s  %-40s %s\n", status, c.Name, c.Detail)
	}

	if !report.OK() {
		return fmt.Errorf("verification failed: %d of %d checks failed",
			len(report.Failed()), len(report.Checks))
	}

	logging.Info().Int("checks", len(report.Checks)).Msg("Verification passed")
	return nil
}
