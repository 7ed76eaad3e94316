package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/engine"
	"github.com/rustyeddy/papertrader/ledger"
)

var rootCmd = &cobra.Command{
	Use:   "papertrader",
	Short: "A paper trading ledger for simulated stock accounts",
	Long: `Papertrader maintains simulated stock trading accounts: a cash
balance, per-symbol positions with weighted average cost, and an append-only
transaction log.

Trades commit atomically against a SQLite ledger; if the database cannot be
opened the process falls back to an in-memory ledger for its lifetime.

Complete documentation is available at https://github.com/rustyeddy/papertrader`,
	PersistentPreRunE: loadConfig,
}

var (
	cfgPath   string
	dbPath    string
	accountID int64

	cfg *config.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "path to SQLite ledger DB (overrides config)")
	rootCmd.PersistentFlags().Int64VarP(&accountID, "account", "a", 1, "account id to operate on")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	// .env may supply PAPERTRADER_DB and PAPERTRADER_CONFIG; missing file is fine.
	_ = godotenv.Load()

	if cfgPath == "" {
		cfgPath = os.Getenv("PAPERTRADER_CONFIG")
	}

	var err error
	if cfgPath != "" {
		cfg, err = config.LoadFromFile(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}

	if dbPath == "" {
		dbPath = os.Getenv("PAPERTRADER_DB")
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}

	return nil
}

func logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// openLedger runs the one-shot backend selection and wires the executor to
// whichever store won.
func openLedger(cmd *cobra.Command) (ledger.Store, *engine.Engine, error) {
	seed, err := cfg.Seed.SeedAccount()
	if err != nil {
		return nil, nil, err
	}

	log := logger()
	store := ledger.Open(cmd.Context(), cfg.Store.Path, seed, log)
	return store, engine.New(store, log), nil
}
