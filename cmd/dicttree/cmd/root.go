package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile     string
	logLevel    string
	logFormat   string
	recordsFile string
	noColor     bool
)

var rootCmd = &cobra.Command{
	Use:   "dicttree",
	Short: "Dictionary type tree administration",
	Long: `A CLI and small HTTP service for administering hierarchical dictionary
types stored as flat parent-referencing records.

Features:
  - Forest building that never drops a record (dangling parents become roots)
  - Cycle detection with deterministic cycle breaking
  - Ancestor-preserving search and flattened selection options
  - Re-parenting guarded against cycles, serialised by a MySQL advisory lock
  - MySQL or YAML/JSON file storage`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "dicttree.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Store and display overrides
	rootCmd.PersistentFlags().StringVar(&recordsFile, "file", "",
		"Read and write records from a YAML or JSON file instead of MySQL")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel    string
	LogFormat   string
	RecordsFile string
	NoColor     bool
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		RecordsFile: recordsFile,
		NoColor:     noColor,
	}
}
