package cmd

import (
	"io"
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
	cfgFile   string
	notation  string
	logLevel  string
	logFormat string
	noColor   bool
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// inputReader is read when a file argument is "-"
var inputReader io.Reader = os.Stdin

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

var rootCmd = &cobra.Command{
	Use:   "erdsql",
	Short: "ER diagram to SQL compiler and schema equivalence checker",
	Long: `erdsql compiles conceptual ER diagrams drawn in draw.io into relational
CREATE TABLE schemas and decides whether two SQL schemas are structurally
equivalent.

Features:
  - UML, Chen and crow's foot cardinality notations
  - Weak entities, identifying relationships and associative tables
  - Foreign-key aware table ordering with cycle detection
  - Equivalence checking that ignores quoting, datatypes and key column names
  - Logical ER export (Mermaid) and schema linting from SQL`,
	Version:      Version,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Path to configuration file (default erdsql.yaml when present)")
	rootCmd.PersistentFlags().StringVarP(&notation, "notation", "n", "",
		"Override diagram notation (uml, chen, crows-foot, chen-simple)")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	Notation  string
	LogLevel  string
	LogFormat string
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		Notation:  notation,
		LogLevel:  logLevel,
		LogFormat: logFormat,
	}
}
