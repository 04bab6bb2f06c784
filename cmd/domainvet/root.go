package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hakim/domainvet/internal/config"
	"github.com/hakim/domainvet/internal/logger"
	"github.com/hakim/domainvet/internal/storage"
)

const defaultConfigFile = "domainvet.yaml"

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	appLog  logger.Logger = logger.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "domainvet <input-file> [max-workers]",
	Short: "Email-domain deliverability validator",
	Long: `DomainVet reads a list of domains, one per line, and classifies each one as
Valid, Risky, or Invalid for outbound email.

Every domain goes through a syntax check, MX/A/TXT/DMARC lookups, a parking-MX
check, and a liveness probe (HTTPS, HTTP, then raw TCP on ports 80 and 443)
whose fetched page is screened for registrar parking and for-sale templates.
A dead subdomain is escalated to its root domain.

Results are written to domain_validation_results_<timestamp>.csv (and/or .xlsx)
in the output directory, and each run is recorded in the history database so
'domainvet history' and 'domainvet diff' can track changes over time.

Examples:
  domainvet domains.txt
  domainvet domains.txt 20
  domainvet domains.txt --profile v1 --format both --output reports/`,
	Args: cobra.RangeArgs(1, 2),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		skipConfig := map[string]bool{
			"init":     true,
			"profiles": true,
			"help":     true,
			"version":  true,
		}

		if skipConfig[cmd.Name()] {
			return nil
		}

		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		l, err := logger.New(level, cfg.Log.Pretty)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		appLog = l

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = appLog.Sync()
	},
	RunE: runValidate,
}

// loadConfig reads --config when given explicitly, otherwise the default
// file when present, otherwise built-in defaults. Root-level flags override
// whatever was loaded.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var c *config.Config

	switch _, statErr := os.Stat(cfgFile); {
	case cmd.Flags().Changed("config"):
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		c = loaded
	case statErr == nil:
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		c = loaded
	case errors.Is(statErr, os.ErrNotExist):
		c = config.DefaultConfig()
	default:
		return nil, fmt.Errorf("failed to stat config: %w", statErr)
	}

	flags := cmd.Flags()
	if flags.Changed("profile") {
		c.Profile, _ = flags.GetString("profile")
	}
	if flags.Changed("output") {
		c.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("format") {
		c.ReportFormat, _ = flags.GetString("format")
	}
	if flags.Changed("rate-limit") {
		c.RateLimit, _ = flags.GetFloat64("rate-limit")
	}
	if flags.Changed("db") {
		c.DBPath, _ = flags.GetString("db")
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// openStore opens the history database, or returns nil when history is
// disabled by an empty db_path.
func openStore() (*storage.Store, error) {
	if cfg.DBPath == "" {
		return nil, nil
	}
	store, err := storage.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return store, nil
}

// requireStore opens the history database and fails when history is disabled.
func requireStore() (*storage.Store, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("run history is disabled (db_path is empty)")
	}
	return store, nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")
	rootCmd.PersistentFlags().String("profile", "", "heuristic profile (v1, v2)")
	rootCmd.PersistentFlags().String("db", "", "history database path (empty string disables history)")

	// Validation flags
	rootCmd.Flags().StringP("output", "o", "", "directory for result files")
	rootCmd.Flags().StringP("format", "f", "", "report format: csv, xlsx, both")
	rootCmd.Flags().Float64("rate-limit", 0, "maximum domains dispatched per second (0 = unlimited)")

	// Version flag
	rootCmd.Version = "0.1.0-dev"
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
