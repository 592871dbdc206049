package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dbsmedya/erdsql/internal/ddl"
	"github.com/dbsmedya/erdsql/internal/sqlutil"
)

// MySQLDDL returns the SHOW CREATE TABLE statement of every base table in
// the connected database, separated by semicolons.
func MySQLDDL(ctx context.Context, db *sql.DB) (string, error) {
	names, err := mysqlTables(ctx, db)
	if err != nil {
		return "", fmt.Errorf("failed to get table names: %w", err)
	}

	stmts := make([]string, 0, len(names))
	for _, name := range names {
		var table, create string
		err := db.QueryRowContext(ctx, "SHOW CREATE TABLE "+sqlutil.QuoteIdentifier(name)).Scan(&table, &create)
		if err != nil {
			return "", fmt.Errorf("failed to read definition of %s: %w", name, err)
		}
		stmts = append(stmts, create+";")
	}
	return strings.Join(stmts, "\n\n"), nil
}

// MySQL reads and parses every base table of the connected database.
func MySQL(ctx context.Context, db *sql.DB) (*ddl.Schema, error) {
	text, err := MySQLDDL(ctx, db)
	if err != nil {
		return nil, err
	}
	return ddl.Parse(text)
}

func mysqlTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
