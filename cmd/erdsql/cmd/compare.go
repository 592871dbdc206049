package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dbsmedya/erdsql/internal/compare"
)

var (
	compareCaseSensitive bool
	compareStrict        bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <schema1.sql> <schema2.sql> [schema2.sql...]",
	Short: "Decide whether SQL schemas are structurally equivalent",
	Long: `Compare normalizes and parses two schemas and reports every structural
difference: tables or attribute columns present on one side only, primary
keys that differ, and foreign keys that reference different tables.

Datatypes, quoting, comments and the names of propagated key columns are
ignored. With more than one candidate every candidate is compared against
the first schema and a summary table is printed. Use "-" to read a schema
from stdin.

The command exits non-zero when any pair differs.

Example:
  erdsql compare expected.sql generated.sql
  erdsql compare expected.sql model-a.sql model-b.sql --strict`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&compareCaseSensitive, "case-sensitive", false,
		"Compare table and column names exactly")
	compareCmd.Flags().BoolVar(&compareStrict, "strict", false,
		"Also compare inline constraints of attribute columns")

	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	opts := compareOptions(cfg)
	if compareCaseSensitive {
		opts.CaseSensitive = true
	}
	if compareStrict {
		opts.StrictConstraints = true
	}
	checker := compare.New(opts)

	reference, err := readInput(args[0])
	if err != nil {
		return err
	}

	if len(args) == 2 {
		candidate, err := readInput(args[1])
		if err != nil {
			return err
		}
		result, err := checker.Compare(reference, candidate)
		if err != nil {
			return err
		}
		newPrinter().Verdict(result)
		if !result.Equivalent {
			return ErrNotEquivalent
		}
		return nil
	}

	pairs := make([]compare.Pair, 0, len(args)-1)
	for _, path := range args[1:] {
		candidate, err := readInput(path)
		if err != nil {
			return err
		}
		pairs = append(pairs, compare.Pair{Name: path, Schema1: reference, Schema2: candidate})
	}

	results := checker.CompareAll(pairs)
	allEquivalent := true
	for _, r := range results {
		if r.Err != nil {
			log.Warnw("parse failure", "schema", r.Name, "error", r.Err)
		}
		if !r.Result.Equivalent {
			allEquivalent = false
		}
	}

	newPrinter().Batch(results)
	if !allEquivalent {
		return ErrNotEquivalent
	}
	return nil
}
