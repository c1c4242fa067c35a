package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syssam/arrayrel"
	"github.com/syssam/arrayrel/dialect"
	"github.com/syssam/arrayrel/dialect/sql"
	"github.com/syssam/arrayrel/graph"
	"github.com/syssam/arrayrel/internal/cli"
)

var (
	// Global state set during PersistentPreRunE.
	cfg        *cli.Config
	configPath string
	logger     *slog.Logger

	// Persistent flags.
	cfgFile    string
	modelsFile string
	dbURL      string
	verbose    int
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "arrayrel",
	Short: "Array-backed many-to-many relations for PostgreSQL",
	Long: `arrayrel - array-backed many-to-many relations for PostgreSQL

arrayrel stores many-to-many relations in array columns of the owning
table. This tool prints and validates the tables of a models file and
repairs arrays holding identifiers of deleted rows.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}
		logger, err = cli.NewLogger(cmd.ErrOrStderr(), cfg.Log, verbose, quiet)
		if err != nil {
			return err
		}
		if configPath != "" {
			logger.Debug("loaded configuration", "path", configPath)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover arrayrel.yaml)")
	rootCmd.PersistentFlags().StringVar(&modelsFile, "models", "", "models file (overrides models)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "database URL (overrides database.url)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase verbosity (can be repeated)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddCommand(ddlCmd, validateCmd, pruneCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}

// resolveString returns the first non-empty string from the provided values.
// Used to implement precedence: flag > config > default.
func resolveString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// loadGraph loads the models file named by the flag or the configuration.
func loadGraph() (*graph.Graph, error) {
	path := resolveString(modelsFile, cfg.Models)
	g, err := cli.LoadGraph(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded models", "path", path, "models", len(g.Models))
	return g, nil
}

// openDriver opens the configured database and checks the connection.
func openDriver(ctx context.Context) (*sql.Driver, error) {
	name, err := cfg.DriverName()
	if err != nil {
		return nil, cli.ConfigError("database.driver", err)
	}
	dsn := dbURL
	if dsn == "" {
		if dsn, err = cfg.DSN(); err != nil {
			return nil, cli.ConfigError("database", err)
		}
	}
	drv, err := sql.Open(name, dsn)
	if err != nil {
		return nil, cli.DBConnectError("opening database", err)
	}
	if err := drv.DB().PingContext(ctx); err != nil {
		drv.Close()
		return nil, cli.DBConnectError("connecting to database", err)
	}
	return drv, nil
}

// hasDatabase reports if a database is configured.
func hasDatabase() bool {
	return dbURL != "" || cfg.Database.URL != "" || cfg.Database.Host != ""
}

// instrument decorates the driver with statement statistics, statement
// logging at -vv and spans when tracing is configured. The returned
// function logs the statistics and flushes pending spans.
func instrument(ctx context.Context, drv *sql.Driver) (dialect.Driver, func(), error) {
	var d dialect.Driver = drv
	if verbose >= 2 {
		d = sql.NewDebugDriver(d, logger)
	}
	tp, err := cli.NewTracerProvider(ctx, cfg.Trace)
	if err != nil {
		return nil, nil, err
	}
	if tp != nil {
		d = sql.NewTraceDriver(d, sql.WithTracerProvider(tp))
	}
	opts := []sql.StatsOption{sql.WithSlowQueryLog(logger)}
	if cfg.Log.SlowQuery > 0 {
		opts = append(opts, sql.WithSlowThreshold(cfg.Log.SlowQuery))
	}
	sd := sql.NewStatsDriver(d, opts...)
	done := func() {
		logger.Debug("statements", "stats", sd.QueryStats().Stats())
		if tp == nil {
			return
		}
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("flushing spans", "error", err)
		}
	}
	return sd, done, nil
}

// newClient returns a client of the graph on the driver, configured from
// the loaded configuration.
func newClient(drv dialect.Driver, g *graph.Graph) *arrayrel.Client {
	return arrayrel.NewClient(drv, g,
		arrayrel.WithConfig(arrayrel.Config{
			EnableArrayM2M:   cfg.EnableArrayM2M,
			PruneConcurrency: cfg.Prune.Concurrency,
			PruneTimeout:     cfg.Prune.StatementTimeout,
		}),
		arrayrel.Log(logger),
	)
}
