// Package normalize rewrites SQL DDL text into a canonical form so that
// schemas written by hand, generated, dumped or produced by a model can be
// compared structurally.
//
// The canonical form has no comments, no identifier quoting unless an
// identifier needs it, folded datatypes without length modifiers, upper-case
// constraint keywords and one statement per line. Normalize is idempotent.
package normalize

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/erdsql/internal/ddl"
	"github.com/dbsmedya/erdsql/internal/sqlutil"
)

// Normalize returns the canonical form of raw. CREATE TABLE statements are
// repaired, parsed and re-rendered; other statements are kept with
// normalized spacing.
func Normalize(raw string) (string, error) {
	tokens, err := sqlutil.Tokenize(raw)
	if err != nil {
		return "", fmt.Errorf("failed to normalize: %w", err)
	}

	var lines []string
	for _, stmt := range sqlutil.SplitStatements(tokens) {
		if !isCreateTable(stmt) {
			lines = append(lines, sqlutil.Render(stmt)+";")
			continue
		}

		line, err := normalizeCreateTable(stmt)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// ExtractCreateTables keeps only the CREATE TABLE statements of text, one per
// line, as written in text. Useful for stripping sample data and queries from
// generated SQL.
func ExtractCreateTables(text string) (string, error) {
	tokens, err := sqlutil.Tokenize(text)
	if err != nil {
		return "", fmt.Errorf("failed to scan SQL: %w", err)
	}

	var lines []string
	for _, stmt := range sqlutil.SplitStatements(tokens) {
		if isCreateTable(stmt) {
			lines = append(lines, sqlutil.Source(text, stmt)+";")
		}
	}
	return strings.Join(lines, "\n"), nil
}

func isCreateTable(stmt []sqlutil.Token) bool {
	if len(stmt) < 2 || !stmt[0].Is("CREATE") {
		return false
	}
	i := 1
	if stmt[i].Is("TEMP") || stmt[i].Is("TEMPORARY") {
		i++
	}
	return i < len(stmt) && stmt[i].Is("TABLE")
}

func normalizeCreateTable(stmt []sqlutil.Token) (string, error) {
	repaired := RepairCommas(stmt)

	schema, err := ddl.Parse(sqlutil.Render(repaired))
	if err != nil {
		return "", err
	}
	if len(schema.Tables) != 1 {
		return "", fmt.Errorf("%w: expected one table, found %d", ddl.ErrParse, len(schema.Tables))
	}

	t := schema.Tables[0]
	for _, col := range t.Columns() {
		col.Type = FoldType(col.Type)
	}
	return FormatLine(t), nil
}

// FormatLine renders a table as a single canonical line.
func FormatLine(t *ddl.Table) string {
	defs := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		defs[i] = ddl.FormatElement(e)
	}
	return "CREATE TABLE " + sqlutil.FormatIdentifier(t.Name) + " (" + strings.Join(defs, ", ") + ");"
}

// RepairCommas inserts the comma that hand-written and generated SQL often
// omits before a table constraint, e.g.
//
//	name TEXT
//	PRIMARY KEY (id)
//
// Only top-level elements of the table body are considered. A constraint
// named by a preceding CONSTRAINT clause is left alone.
func RepairCommas(stmt []sqlutil.Token) []sqlutil.Token {
	open := -1
	for i, t := range stmt {
		if t.IsSymbol("(") {
			open = i
			break
		}
	}
	if open < 0 {
		return stmt
	}
	end := sqlutil.MatchingParen(stmt, open)
	if end < 0 {
		return stmt
	}

	out := make([]sqlutil.Token, 0, len(stmt)+4)
	out = append(out, stmt[:open+1]...)
	depth := 0
	for i := open + 1; i < end; i++ {
		t := stmt[i]
		if depth == 0 && i > open+1 && startsTableConstraint(stmt, i, end) {
			prev := out[len(out)-1]
			namedByConstraint := i >= 2 && stmt[i-2].Is("CONSTRAINT")
			if !prev.IsSymbol(",") && !namedByConstraint {
				out = append(out, sqlutil.Token{Kind: sqlutil.TokenSymbol, Text: ",", Line: t.Line})
			}
		}
		switch {
		case t.IsSymbol("("):
			depth++
		case t.IsSymbol(")"):
			depth--
		}
		out = append(out, t)
	}
	return append(out, stmt[end:]...)
}

func startsTableConstraint(toks []sqlutil.Token, i, end int) bool {
	at := func(n int) sqlutil.Token {
		if i+n >= end {
			return sqlutil.Token{}
		}
		return toks[i+n]
	}

	t := at(0)
	switch {
	case t.Is("CONSTRAINT"):
		next := at(2)
		return at(1).IsName() && (next.Is("PRIMARY") || next.Is("FOREIGN") || next.Is("UNIQUE") || next.Is("CHECK"))
	case t.Is("PRIMARY"):
		return at(1).Is("KEY") && at(2).IsSymbol("(")
	case t.Is("FOREIGN"):
		return at(1).Is("KEY")
	case t.Is("UNIQUE"):
		if at(1).IsSymbol("(") {
			return true
		}
		return (at(1).Is("KEY") || at(1).Is("INDEX")) &&
			(at(2).IsSymbol("(") || (at(2).IsName() && at(3).IsSymbol("(")))
	case t.Is("KEY"), t.Is("INDEX"):
		// KEY after PRIMARY, FOREIGN or UNIQUE belongs to that constraint.
		if i > 0 && isKeyPrefix(toks[i-1]) {
			return false
		}
		return at(1).IsSymbol("(") || (at(1).IsName() && at(2).IsSymbol("("))
	}
	return false
}

func isKeyPrefix(t sqlutil.Token) bool {
	return t.Is("PRIMARY") || t.Is("FOREIGN") || t.Is("UNIQUE")
}
