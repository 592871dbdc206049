package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dbsmedya/erdsql/internal/normalize"
)

var normalizeExtractOnly bool

var normalizeCmd = &cobra.Command{
	Use:   "normalize <schema.sql>",
	Short: "Print the canonical form of a SQL schema",
	Long: `Normalize prints one CREATE TABLE statement per line with comments and
identifier quoting removed, datatypes folded to INTEGER, REAL, TEXT, BLOB or
BOOLEAN, missing commas before table constraints repaired and constraint
keywords upper-cased. Statements other than CREATE TABLE are dropped.

With --extract only the CREATE TABLE statements are kept, verbatim.

Example:
  erdsql normalize generated.sql
  cat generated.sql | erdsql normalize -`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().BoolVar(&normalizeExtractOnly, "extract", false,
		"Only extract CREATE TABLE statements without normalizing them")

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	var out string
	if normalizeExtractOnly {
		out, err = normalize.ExtractCreateTables(text)
	} else {
		out, err = normalize.Normalize(text)
	}
	if err != nil {
		return err
	}
	return writeOutput("", out)
}
