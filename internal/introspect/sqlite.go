// Package introspect reads table definitions back from a database engine.
//
// SQLite executes a DDL script in a private in-memory database and reports
// what the engine actually created, which resolves dialect quirks the text
// parser would have to guess at. MySQL reads SHOW CREATE TABLE output from a
// live server and Postgres reads information_schema. All return a ddl.Schema.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dbsmedya/erdsql/internal/ddl"
	"github.com/dbsmedya/erdsql/internal/sqlutil"
)

// SQLite executes script in a fresh in-memory SQLite database and returns the
// tables it created.
func SQLite(ctx context.Context, script string) (*ddl.Schema, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, script); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	return ReadSQLite(ctx, db)
}

// ReadSQLite reads every user table of an open SQLite database.
func ReadSQLite(ctx context.Context, db *sql.DB) (*ddl.Schema, error) {
	names, err := sqliteTables(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	s := &ddl.Schema{}
	for _, name := range names {
		t, err := sqliteTable(ctx, db, name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", name, err)
		}
		s.Tables = append(s.Tables, t)
	}
	return s, nil
}

func sqliteTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid")
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

func sqliteTable(ctx context.Context, db *sql.DB, name string) (*ddl.Table, error) {
	t := &ddl.Table{Name: name}

	pk, err := sqliteColumns(ctx, db, t)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if len(pk) > 0 {
		t.Elements = append(t.Elements, &ddl.PrimaryKey{Columns: pk})
	}

	uniques, err := sqliteUniques(ctx, db, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	for _, u := range uniques {
		t.Elements = append(t.Elements, &ddl.Unique{Columns: u})
	}

	fks, err := sqliteForeignKeys(ctx, db, name)
	if err != nil {
		return nil, fmt.Errorf("failed to extract relations: %w", err)
	}
	for _, fk := range fks {
		t.Elements = append(t.Elements, fk)
	}
	return t, nil
}

// sqliteColumns appends the columns of t and returns its primary key in key
// order.
func sqliteColumns(ctx context.Context, db *sql.DB, t *ddl.Table) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", sqlutil.QuoteANSI(t.Name)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type keyPart struct {
		pos  int
		name string
	}
	var key []keyPart

	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}

		col := &ddl.Column{Name: name, Type: colType}
		if notNull != 0 {
			col.Constraints = append(col.Constraints, ddl.ColumnConstraint{Kind: ddl.ConstraintNotNull})
		}
		if dflt.Valid {
			col.Constraints = append(col.Constraints, ddl.ColumnConstraint{Kind: ddl.ConstraintDefault, Expr: dflt.String})
		}
		if pk > 0 {
			key = append(key, keyPart{pos: pk, name: name})
		}
		t.Elements = append(t.Elements, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(key, func(i, j int) bool { return key[i].pos < key[j].pos })
	out := make([]string, len(key))
	for i, k := range key {
		out[i] = k.name
	}
	return out, nil
}

// sqliteUniques returns the column sets of UNIQUE constraints. Indexes
// created by CREATE UNIQUE INDEX and the primary key index are skipped.
func sqliteUniques(ctx context.Context, db *sql.DB, table string) ([][]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", sqlutil.QuoteANSI(table)))
	if err != nil {
		return nil, err
	}

	var names []string
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		if unique == 1 && origin == "u" {
			names = append(names, name)
		}
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// index_list reports the newest index first.
	var out [][]string
	for i := len(names) - 1; i >= 0; i-- {
		cols, err := sqliteIndexColumns(ctx, db, names[i])
		if err != nil {
			return nil, err
		}
		if len(cols) > 0 {
			out = append(out, cols)
		}
	}
	return out, nil
}

func sqliteIndexColumns(ctx context.Context, db *sql.DB, index string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", sqlutil.QuoteANSI(index)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	return cols, rows.Err()
}

// sqliteForeignKeys groups foreign_key_list rows by constraint id. A NULL
// target column means the constraint references the parent's primary key.
func sqliteForeignKeys(ctx context.Context, db *sql.DB, table string) ([]*ddl.ForeignKey, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", sqlutil.QuoteANSI(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int]*ddl.ForeignKey)
	var ids []int
	for rows.Next() {
		var id, seq int
		var refTable, from, onUpdate, onDelete, match string
		var to sql.NullString
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		fk, ok := byID[id]
		if !ok {
			fk = &ddl.ForeignKey{RefTable: refTable, OnDelete: action(onDelete), OnUpdate: action(onUpdate)}
			byID[id] = fk
			ids = append(ids, id)
		}
		fk.Columns = append(fk.Columns, from)
		if to.Valid {
			fk.RefColumns = append(fk.RefColumns, to.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Constraint ids count down from the last declared foreign key.
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	out := make([]*ddl.ForeignKey, 0, len(ids))
	for _, id := range ids {
		fk := byID[id]
		if len(fk.RefColumns) != len(fk.Columns) {
			fk.RefColumns = nil
		}
		out = append(out, fk)
	}
	return out, nil
}

func action(a string) string {
	if a == "NO ACTION" {
		return ""
	}
	return a
}
