//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-dwload.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-dwload/internal/config"
	"github.com/pgEdge/pgedge-dwload/internal/etl"
	"github.com/pgEdge/pgedge-dwload/internal/logging"
	"github.com/pgEdge/pgedge-dwload/internal/schema"
	"github.com/pgEdge/pgedge-dwload/internal/sqlgen"
	"github.com/pgEdge/pgedge-dwload/pkg/version"
)

var (
	// Global flags
	cfgFile         string
	envFile         string
	dialect         string
	host            string
	port            int
	user            string
	password        string
	database        string
	sourceSchema    string
	warehouseSchema string
	logLevel        string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-dwload",
		Short: "Loan data warehouse loader",
		Long: `pgedge-dwload populates a star-schema loan warehouse from a normalized
operational loan database. It loads the reference dimensions, the
location and calendar dimensions, and then the origination and
performance fact tables, each stage in its own transaction.

Re-running a load is safe: dimension rows are only ever added and fact
rows are replaced per loan.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-dwload.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"file of KEY=value environment settings (default: ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&dialect, "dialect", "",
		"database dialect (postgres, mysql)")
	rootCmd.PersistentFlags().StringVar(&host, "host", "",
		"database host (DB_HOST)")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0,
		"database port (DB_PORT, default: 5432 or 3306)")
	rootCmd.PersistentFlags().StringVar(&user, "user", "",
		"database user (DB_USER)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "",
		"database password (DB_PASSWORD)")
	rootCmd.PersistentFlags().StringVar(&database, "database", "",
		"database name (DB_NAME)")
	rootCmd.PersistentFlags().StringVar(&sourceSchema, "source-schema", "",
		"operational source schema (SRC_DB)")
	rootCmd.PersistentFlags().StringVar(&warehouseSchema, "warehouse-schema", "",
		"warehouse schema (DW_DB)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(stagesCmd)
	rootCmd.AddCommand(ddlCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(seedCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile, envFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if dialect != "" {
		// A port defaulted for the configured dialect follows the flag.
		if port == 0 && cfg.Database.Port == config.DefaultPort(cfg.Dialect) {
			cfg.Database.Port = 0
		}
		cfg.Dialect = dialect
	}
	if host != "" {
		cfg.Database.Host = host
	}
	if port > 0 {
		cfg.Database.Port = port
	}
	if user != "" {
		cfg.Database.User = user
	}
	if password != "" {
		cfg.Database.Password = password
	}
	if database != "" {
		cfg.Database.Name = database
	}
	if sourceSchema != "" {
		cfg.Schemas.Source = sourceSchema
	}
	if warehouseSchema != "" {
		cfg.Schemas.Warehouse = warehouseSchema
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	cfg.ApplyDefaults()

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogFormat != "json",
	})

	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM. An
// interrupted stage is rolled back.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Warn().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List the load stages in execution order",
	Long: `List the load stages in the order they run. Any of these names can
be passed to 'load --from' or 'load --only'.`,
	Run: func(cmd *cobra.Command, args []string) {
		p := etl.NewPipeline(&etl.Env{}, etl.Options{})
		cmd.Println("Load stages:")
		cmd.Println()
		for _, s := range p.Stages() {
			cmd.Printf("  %-13s - %s\n", s.Name(), s.Description())
		}
	},
}

var ddlKind string

var ddlCmd = &cobra.Command{
	Use:   "ddl",
	Short: "Print the source or warehouse DDL",
	Long: `Print the DDL for the configured dialect. The warehouse DDL can be
saved and passed to 'load --ddl'; the source DDL is what 'seed' creates.

Example:
  pgedge-dwload ddl --kind warehouse --warehouse-schema lc_dw > dw.sql`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := sqlgen.ForName(cfg.Dialect)
		if err != nil {
			return err
		}

		var kind schema.Kind
		var name string
		switch ddlKind {
		case string(schema.Warehouse):
			kind, name = schema.Warehouse, cfg.Schemas.Warehouse
		case string(schema.Source):
			kind, name = schema.Source, cfg.Schemas.Source
		default:
			return fmt.Errorf("--kind must be '%s' or '%s', got '%s'",
				schema.Source, schema.Warehouse, ddlKind)
		}
		if name == "" {
			return fmt.Errorf("%w: %s schema", config.ErrMissing, kind)
		}

		text, err := schema.Render(d, kind, name)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), text)
		return err
	},
}

func init() {
	ddlCmd.Flags().StringVar(&ddlKind, "kind", string(schema.Warehouse),
		"which DDL to print: source or warehouse")
}
