package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-dwload/internal/db"
	"github.com/pgEdge/pgedge-dwload/internal/etl"
)

const msRound = time.Millisecond

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a loaded warehouse against its source",
	Long: `Run the reconciliation checks without loading:

  - every source loan has a row in each fact table
  - no dimension holds the same natural key twice (NULLs compare equal)
  - dim_date covers every day of the source date span

Exits non-zero if any check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
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
		return runVerification(ctx, cmd, env)
	},
}
