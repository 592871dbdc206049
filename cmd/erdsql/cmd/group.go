package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dbsmedya/erdsql/internal/compare"
)

var groupCmd = &cobra.Command{
	Use:   "group <schema.sql>...",
	Short: "Partition schemas into equivalence classes",
	Long: `Group compares every schema against one representative of each class
found so far and prints the resulting classes. The first member of a class
(marked with *) is its representative. Schemas that cannot be parsed are
listed separately.

Example:
  erdsql group answers/*.sql`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGroup,
}

func init() {
	rootCmd.AddCommand(groupCmd)
}

func runGroup(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	docs := make([]compare.Document, 0, len(args))
	for _, path := range args {
		text, err := readInput(path)
		if err != nil {
			return err
		}
		docs = append(docs, compare.Document{Name: path, SQL: text})
	}

	part := compare.New(compareOptions(cfg)).Partition(docs)
	for _, f := range part.Failed {
		log.Warnw("parse failure", "schema", f.Document.Name, "error", f.Err)
	}
	log.Debugw("partition finished", "documents", len(docs), "classes", len(part.Classes))

	newPrinter().Partition(part)
	return nil
}
