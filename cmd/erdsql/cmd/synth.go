package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	synthOutput     string
	synthColumnType string
	synthNoComments bool
)

var synthCmd = &cobra.Command{
	Use:   "synth <diagram.drawio>",
	Short: "Compile an ER diagram into CREATE TABLE statements",
	Long: `Synth reads a draw.io ER diagram and prints the relational schema it
describes.

Every entity becomes a table. Relationships are folded into the tables:
  - 1:N adds the one side's key as a foreign key on the many side
  - 1:1 adds a unique foreign key on the optional side
  - M:N and 1:N relations with their own key create an associative table
  - identifying relationships give weak entities a composite key

Tables are ordered so that referenced tables come first. Problems found in
the diagram are logged as warnings and the affected relationships skipped.

Example:
  erdsql synth university.drawio --notation chen -o university.sql`,
	Args: cobra.ExactArgs(1),
	RunE: runSynth,
}

func init() {
	synthCmd.Flags().StringVarP(&synthOutput, "output", "o", "",
		"Write SQL to this file instead of stdout")
	synthCmd.Flags().StringVar(&synthColumnType, "column-type", "",
		"Override the datatype emitted for every column")
	synthCmd.Flags().BoolVar(&synthNoComments, "no-comments", false,
		"Omit provenance comments")

	rootCmd.AddCommand(synthCmd)
}

func runSynth(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if synthColumnType != "" {
		cfg.Synthesis.ColumnType = synthColumnType
	}
	if synthNoComments {
		cfg.Synthesis.EmitComments = false
	}

	res, err := synthesizeDiagram(cfg, log, args[0])
	if err != nil {
		return err
	}

	sql, err := res.SQL()
	if err != nil {
		return fmt.Errorf("failed to order tables: %w", err)
	}
	return writeOutput(synthOutput, sql)
}
