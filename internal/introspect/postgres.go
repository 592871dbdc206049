package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/erdsql/internal/ddl"
)

const pgTablesQuery = `SELECT table_name FROM information_schema.tables
WHERE table_schema = $1 AND table_type = 'BASE TABLE'
ORDER BY table_name`

const pgColumnsQuery = `SELECT column_name, data_type, is_nullable, udt_name, character_maximum_length
FROM information_schema.columns
WHERE table_schema = $1 AND table_name = $2
ORDER BY ordinal_position`

const pgKeysQuery = `SELECT tc.constraint_name, tc.constraint_type, kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_schema = tc.constraint_schema
  AND kcu.constraint_name = tc.constraint_name
  AND kcu.table_name = tc.table_name
WHERE tc.table_schema = $1 AND tc.table_name = $2
  AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE')
ORDER BY tc.constraint_type, tc.constraint_name, kcu.ordinal_position`

// pgForeignKeysQuery pairs local and referenced columns through
// position_in_unique_constraint so composite keys keep their column order.
const pgForeignKeysQuery = `SELECT kcu.constraint_name, kcu.column_name, ref.table_name, ref.column_name,
  rc.update_rule, rc.delete_rule
FROM information_schema.referential_constraints rc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_schema = rc.constraint_schema
  AND kcu.constraint_name = rc.constraint_name
JOIN information_schema.key_column_usage ref
  ON ref.constraint_schema = rc.unique_constraint_schema
  AND ref.constraint_name = rc.unique_constraint_name
  AND ref.ordinal_position = kcu.position_in_unique_constraint
WHERE kcu.table_schema = $1 AND kcu.table_name = $2
ORDER BY kcu.constraint_name, kcu.ordinal_position`

// Postgres reads every base table of schema from a PostgreSQL database.
// Column defaults are not read.
func Postgres(ctx context.Context, db *sql.DB, schema string) (*ddl.Schema, error) {
	names, err := postgresTables(ctx, db, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	s := &ddl.Schema{}
	for _, name := range names {
		t, err := postgresTable(ctx, db, schema, name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", name, err)
		}
		s.Tables = append(s.Tables, t)
	}
	return s, nil
}

// PostgresDDL renders Postgres as CREATE TABLE statements.
func PostgresDDL(ctx context.Context, db *sql.DB, schema string) (string, error) {
	s, err := Postgres(ctx, db, schema)
	if err != nil {
		return "", err
	}
	return ddl.Format(s), nil
}

func postgresTables(ctx context.Context, db *sql.DB, schema string) ([]string, error) {
	rows, err := db.QueryContext(ctx, pgTablesQuery, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func postgresTable(ctx context.Context, db *sql.DB, schema, name string) (*ddl.Table, error) {
	t := &ddl.Table{Name: name}

	if err := postgresColumns(ctx, db, schema, t); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if err := postgresKeys(ctx, db, schema, t); err != nil {
		return nil, fmt.Errorf("failed to extract keys: %w", err)
	}

	fks, err := postgresForeignKeys(ctx, db, schema, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract relations: %w", err)
	}
	for _, fk := range fks {
		t.Elements = append(t.Elements, fk)
	}
	return t, nil
}

func postgresColumns(ctx context.Context, db *sql.DB, schema string, t *ddl.Table) error {
	rows, err := db.QueryContext(ctx, pgColumnsQuery, schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, dataType, nullable, udtName string
		var maxLen sql.NullInt64
		if err := rows.Scan(&name, &dataType, &nullable, &udtName, &maxLen); err != nil {
			return err
		}

		col := &ddl.Column{Name: name, Type: postgresType(dataType, udtName, maxLen)}
		if nullable == "NO" {
			col.Constraints = append(col.Constraints, ddl.ColumnConstraint{Kind: ddl.ConstraintNotNull})
		}
		t.Elements = append(t.Elements, col)
	}
	return rows.Err()
}

// postgresKeys appends the primary key and UNIQUE constraints of t. Rows
// arrive grouped by constraint, primary key first. Constraint names are
// generated by the server and are not kept.
func postgresKeys(ctx context.Context, db *sql.DB, schema string, t *ddl.Table) error {
	rows, err := db.QueryContext(ctx, pgKeysQuery, schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	var pk *ddl.PrimaryKey
	var current *ddl.Unique
	var currentName string
	for rows.Next() {
		var constraint, kind, column string
		if err := rows.Scan(&constraint, &kind, &column); err != nil {
			return err
		}

		switch kind {
		case "PRIMARY KEY":
			if pk == nil {
				pk = &ddl.PrimaryKey{}
				t.Elements = append(t.Elements, pk)
			}
			pk.Columns = append(pk.Columns, column)
		case "UNIQUE":
			if current == nil || currentName != constraint {
				currentName = constraint
				current = &ddl.Unique{}
				t.Elements = append(t.Elements, current)
			}
			current.Columns = append(current.Columns, column)
		}
	}
	return rows.Err()
}

func postgresForeignKeys(ctx context.Context, db *sql.DB, schema, table string) ([]*ddl.ForeignKey, error) {
	rows, err := db.QueryContext(ctx, pgForeignKeysQuery, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ddl.ForeignKey
	var current *ddl.ForeignKey
	var currentName string
	for rows.Next() {
		var constraint, column, refTable, refColumn, onUpdate, onDelete string
		if err := rows.Scan(&constraint, &column, &refTable, &refColumn, &onUpdate, &onDelete); err != nil {
			return nil, err
		}

		if current == nil || currentName != constraint {
			currentName = constraint
			current = &ddl.ForeignKey{RefTable: refTable, OnDelete: action(onDelete), OnUpdate: action(onUpdate)}
			out = append(out, current)
		}
		current.Columns = append(current.Columns, column)
		current.RefColumns = append(current.RefColumns, refColumn)
	}
	return out, rows.Err()
}

// postgresType maps information_schema type names back to the short names
// used in DDL.
func postgresType(dataType, udtName string, maxLen sql.NullInt64) string {
	switch dataType {
	case "character varying":
		if maxLen.Valid {
			return fmt.Sprintf("varchar(%d)", maxLen.Int64)
		}
		return "varchar"
	case "character":
		if maxLen.Valid {
			return fmt.Sprintf("char(%d)", maxLen.Int64)
		}
		return "char"
	case "timestamp with time zone":
		return "timestamptz"
	case "timestamp without time zone":
		return "timestamp"
	case "time with time zone":
		return "timetz"
	case "time without time zone":
		return "time"
	case "ARRAY":
		// udt_name of an array type is the element type prefixed with "_".
		if len(udtName) > 1 && udtName[0] == '_' {
			return udtName[1:] + " ARRAY"
		}
		return "ARRAY"
	case "USER-DEFINED":
		return udtName
	}
	return dataType
}
