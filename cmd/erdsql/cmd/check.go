package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/erdsql/internal/compare"
)

var checkCmd = &cobra.Command{
	Use:   "check <diagram.drawio> <expected.sql>",
	Short: "Synthesize a diagram and compare it with an expected schema",
	Long: `Check compiles the diagram exactly like synth and compares the result
with a ground-truth schema. The expected schema is normalized first, so
quoting, datatypes, comments and missing commas do not matter.

The command exits non-zero when the schemas differ.

Example:
  erdsql check university.drawio university.sql`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	res, err := synthesizeDiagram(cfg, log, args[0])
	if err != nil {
		return err
	}
	sql, err := res.SQL()
	if err != nil {
		return fmt.Errorf("failed to order tables: %w", err)
	}

	expected, err := readInput(args[1])
	if err != nil {
		return err
	}

	result, err := compare.New(compareOptions(cfg)).Compare(sql, expected)
	if err != nil {
		return fmt.Errorf("%s: %w", args[1], err)
	}
	newPrinter().Verdict(result)
	if !result.Equivalent {
		return ErrNotEquivalent
	}
	return nil
}
