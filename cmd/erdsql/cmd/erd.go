package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/erdsql/internal/ddl"
	"github.com/dbsmedya/erdsql/internal/erd"
	"github.com/dbsmedya/erdsql/internal/introspect"
)

var (
	erdFormat string
	erdEngine string
)

var erdCmd = &cobra.Command{
	Use:   "erd <schema.sql>",
	Short: "Derive the logical ER model of a SQL schema",
	Long: `Erd reads a schema and classifies every table as a strong, weak or
associative entity (or one without a primary key), tags columns as PK, FK or
PK+FK and lists foreign keys as N:1 or 1:1 relationships.

Formats:
  summary  aligned tables of entities and relationships (default)
  mermaid  a Mermaid erDiagram
  drop     DROP TABLE statements, referencing tables first

Engines:
  text     parse the DDL text directly (default)
  sqlite   execute the DDL in an in-memory SQLite database and read back
           what the engine created

Example:
  erdsql erd university.sql --format mermaid`,
	Args: cobra.ExactArgs(1),
	RunE: runERD,
}

func init() {
	erdCmd.Flags().StringVarP(&erdFormat, "format", "f", "summary",
		"Output format (summary, mermaid, drop)")
	erdCmd.Flags().StringVar(&erdEngine, "engine", "text",
		"How to read the schema (text, sqlite)")

	rootCmd.AddCommand(erdCmd)
}

// loadSchema reads a schema file with the given engine.
func loadSchema(ctx context.Context, path, engine string) (*ddl.Schema, error) {
	text, err := readInput(path)
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	switch engine {
	case "text", "":
		s, err := ddl.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return s, nil
	case "sqlite":
		s, err := introspect.SQLite(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown engine %q (expected text or sqlite)", engine)
}

func runERD(cmd *cobra.Command, args []string) error {
	switch erdFormat {
	case "summary", "mermaid", "drop":
	default:
		return fmt.Errorf("unknown format %q (expected summary, mermaid or drop)", erdFormat)
	}

	s, err := loadSchema(cmd.Context(), args[0], erdEngine)
	if err != nil {
		return err
	}
	g := erd.FromSchema(s)

	switch erdFormat {
	case "mermaid":
		_, err := fmt.Fprint(outputWriter, g.Mermaid())
		return err
	case "drop":
		script, err := g.DropScript()
		if err != nil {
			return err
		}
		return writeOutput("", script)
	}
	newPrinter().Graph(g)
	return nil
}
