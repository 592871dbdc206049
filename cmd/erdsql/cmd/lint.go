package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dbsmedya/erdsql/internal/erd"
)

var lintEngine string

var lintCmd = &cobra.Command{
	Use:   "lint <schema.sql>",
	Short: "Report structural anomalies in a SQL schema",
	Long: `Lint checks a schema for:
  - tables without a primary key
  - foreign keys into missing tables or unknown columns
  - foreign keys that do not reference a key of the parent table
  - foreign keys whose column count differs from the referenced columns
  - foreign-key cycles that prevent ordering CREATE TABLE statements

The command exits non-zero when anything is found.

Example:
  erdsql lint generated.sql --engine sqlite`,
	Args: cobra.ExactArgs(1),
	RunE: runLint,
}

func init() {
	lintCmd.Flags().StringVar(&lintEngine, "engine", "text",
		"How to read the schema (text, sqlite)")

	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	s, err := loadSchema(cmd.Context(), args[0], lintEngine)
	if err != nil {
		return err
	}

	findings := erd.FromSchema(s).Anomalies()
	newPrinter().Diagnostics(findings)
	if !findings.Empty() {
		return ErrFindings
	}
	return nil
}
