package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/erdsql/internal/database"
	"github.com/dbsmedya/erdsql/internal/introspect"
	"github.com/dbsmedya/erdsql/internal/normalize"
)

var (
	dumpOutput    string
	dumpNormalize bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the schema of a live MySQL or PostgreSQL database",
	Long: `Dump connects to the database configured in the "database" section and
prints a CREATE TABLE statement for every base table. MySQL tables are read
with SHOW CREATE TABLE; PostgreSQL tables are rebuilt from information_schema
for the configured schema (default "public"). The output can be fed to
compare or check as a ground-truth schema.

Connection secrets can be kept in a .env file in the working directory.

Example:
  erdsql dump --config erdsql.yaml -o university.sql
  ERDSQL_DATABASE_PASSWORD=secret erdsql dump --normalize`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "",
		"Write SQL to this file instead of stdout")
	dumpCmd.Flags().BoolVar(&dumpNormalize, "normalize", false,
		"Print the normalized form")

	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := cfg.ValidateDatabase(); err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := database.SignalContext(parent, func(sig os.Signal) {
		log.Warnw("received signal, aborting dump", "signal", sig.String())
	})
	defer cancel()

	mgr := database.NewManager(&cfg.Database, log)
	if err := mgr.Connect(ctx); err != nil {
		return err
	}
	defer mgr.Close()

	var text string
	if database.IsPostgres(&cfg.Database) {
		text, err = introspect.PostgresDDL(ctx, mgr.DB, cfg.Database.Schema)
	} else {
		text, err = introspect.MySQLDDL(ctx, mgr.DB)
	}
	if err != nil {
		return fmt.Errorf("failed to dump schema: %w", err)
	}
	if dumpNormalize {
		if text, err = normalize.Normalize(text); err != nil {
			return err
		}
	}

	log.WithFields(map[string]interface{}{
		"driver":   database.DriverName(&cfg.Database),
		"host":     cfg.Database.Host,
		"database": cfg.Database.Database,
	}).Info("schema dumped")
	return writeOutput(dumpOutput, text)
}
