package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/sensordash-cli/internal/config"
	"github.com/KaramelBytes/sensordash-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogLevel  string
	flagTimeZone  string
	flagDelimiter string

	// Loaded configuration
	cfg *cfgpkg.Global
	log = logging.NewDefault()
)

var rootCmd = &cobra.Command{
	Use:   "sensordash",
	Short: "SensorDash: explore ESP32 temperature and humidity logs",
	Long: `SensorDash loads a CSV exported by an ESP32 temperature/humidity sensor, normalizes legacy
column names, and produces descriptive statistics, threshold filters and a filtered CSV export.
The same pipeline is available over HTTP with "sensordash serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sensordash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: error|warn|info|debug (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagTimeZone, "tz", "", "IANA time zone for timestamps without offset (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("tz") {
		cfg.TimeZone = flagTimeZone
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
	log = logging.New(level, os.Stderr)
	log.Debug("config loaded (file=%q)", cfgFile)
}

// settings returns the loaded configuration, or defaults when none was loaded.
func settings() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}
