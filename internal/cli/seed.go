package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-dwload/internal/datagen"
	"github.com/pgEdge/pgedge-dwload/internal/db"
	"github.com/pgEdge/pgedge-dwload/internal/logging"
	"github.com/pgEdge/pgedge-dwload/internal/sqlgen"
)

var (
	seedLoans int
	seedSeed  uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the source schema and fill it with synthetic loans",
	Long: `Create the operational source schema if it does not exist and replace
its contents with synthetic loans. Some rows are deliberately incomplete:
declined applications, NULL codes, addresses without a zip3, and loans
with no settlement or hardship case.

Example:
  pgedge-dwload seed --source-schema lc_src --loans 5000 --seed 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Override config with CLI flags
		if seedLoans > 0 {
			cfg.Seed.Loans = seedLoans
		}
		if seedSeed > 0 {
			cfg.Seed.Seed = seedSeed
		}

		// Validate configuration
		if err := cfg.ValidateSeed(); err != nil {
			return err
		}

		d, err := sqlgen.ForName(cfg.Dialect)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		database, err := db.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		faker := datagen.NewFaker()
		if cfg.Seed.Seed > 0 {
			faker = datagen.NewFakerWithSeed(cfg.Seed.Seed)
		}

		logging.Info().
			Str("schema", cfg.Schemas.Source).
			Int("loans", cfg.Seed.Loans).
			Msg("Generating source data")

		ds := datagen.Generate(faker, cfg.Seed.Loans)
		seeder := datagen.NewSeeder(database, d, cfg.Schemas.Source, datagen.DefaultBatchConfig())

		if err := seeder.CreateSchema(ctx); err != nil {
			return err
		}
		if err := seeder.Seed(ctx, ds); err != nil {
			return fmt.Errorf("failed to seed source schema: %w", err)
		}

		logging.Info().
			Str("schema", cfg.Schemas.Source).
			Int64("rows", ds.Rows()).
			Msg("Source data ready")
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedLoans, "loans", 0,
		"number of loans to generate (default: 1000)")
	seedCmd.Flags().Uint64Var(&seedSeed, "seed", 0,
		"random seed for reproducible data (0 = random)")
}
