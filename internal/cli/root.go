// Package cli implements the costwatch command-line interface. Commands
// operate directly on the local SQLite database, so no server needs to
// be running.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/costwatch/costwatch/internal/config"
	"github.com/costwatch/costwatch/internal/pkg/logger"
	"github.com/costwatch/costwatch/internal/repository/sqlite"
	"github.com/costwatch/costwatch/internal/services"
	"github.com/costwatch/costwatch/internal/store"
)

var (
	cfgFile      string
	outputFormat string
	dbPath       string
)

var rootCmd = &cobra.Command{
	Use:   "costwatch",
	Short: "CostWatch - multi-cloud daily cost anomaly detection",
	Long: `CostWatch ingests daily cloud cost series and detects anomalies with
statistical, trend, seasonal and isolation-forest methods.

Ingested data and detection findings live in a local SQLite database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.costwatch/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newDetectCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newServeCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		configDir := home + "/.costwatch"
		_ = os.MkdirAll(configDir, 0700)
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("COSTWATCH")
	viper.AutomaticEnv()

	viper.SetDefault("output", "table")

	_ = viper.ReadInConfig()
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("output")
}

// appEnv bundles the wired application for a CLI command run.
type appEnv struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *sqlite.DB
	store     *store.TimeSeriesStore
	costs     *services.CostService
	anomalies *services.AnomalyService
}

func (e *appEnv) Close() {
	if e.db != nil {
		_ = e.db.Close()
	}
}

// openEnv loads configuration, opens the database and wires the
// services. Stored series are hydrated into the in-memory store so
// detection sees everything previously ingested.
func openEnv(cmd *cobra.Command) (*appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if path := viper.GetString("db_path"); path != "" {
		cfg.Database.Path = path
	}

	log := logger.New(logger.Config{Level: "error", Format: "console"})

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}

	ts := store.New()
	costs := services.NewCostService(ts, db, log)
	anomalies := services.NewAnomalyService(ts, db, log, services.DetectionConfig{
		Window:         cfg.Detection.Window,
		TrendThreshold: cfg.Detection.TrendThreshold,
		Sensitivity:    cfg.Detection.Sensitivity,
		Seed:           cfg.Detection.Seed,
	})

	env := &appEnv{
		cfg:       cfg,
		log:       log,
		db:        db,
		store:     ts,
		costs:     costs,
		anomalies: anomalies,
	}

	if err := costs.Hydrate(cmd.Context()); err != nil {
		env.Close()
		return nil, fmt.Errorf("load stored series: %w", err)
	}
	return env, nil
}
