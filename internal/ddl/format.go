package ddl

import (
	"strings"

	"github.com/dbsmedya/erdsql/internal/sqlutil"
)

const indent = "    "

// Format renders the schema as CREATE TABLE statements separated by blank
// lines. Table comments are emitted as "--" lines above each statement.
func Format(s *Schema) string {
	parts := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		parts = append(parts, FormatTable(t))
	}
	return strings.Join(parts, "\n\n")
}

// FormatTable renders a single table.
func FormatTable(t *Table) string {
	var b strings.Builder
	for _, c := range t.Comments {
		b.WriteString("-- ")
		b.WriteString(c)
		b.WriteByte('\n')
	}

	b.WriteString("CREATE TABLE ")
	b.WriteString(sqlutil.FormatIdentifier(t.Name))
	b.WriteString(" (\n")

	defs := make([]string, 0, len(t.Elements))
	for _, e := range t.Elements {
		defs = append(defs, indent+FormatElement(e))
	}
	b.WriteString(strings.Join(defs, ",\n"))
	b.WriteString("\n);")
	return b.String()
}

// FormatElement renders one column definition or table constraint.
func FormatElement(e Element) string {
	switch el := e.(type) {
	case *Column:
		return formatColumn(el)
	case *PrimaryKey:
		return constraintPrefix(el.Name) + "PRIMARY KEY (" + identList(el.Columns) + ")"
	case *ForeignKey:
		s := constraintPrefix(el.Name) + "FOREIGN KEY (" + identList(el.Columns) + ") " + formatReference(el.RefTable, el.RefColumns)
		if el.OnDelete != "" {
			s += " ON DELETE " + el.OnDelete
		}
		if el.OnUpdate != "" {
			s += " ON UPDATE " + el.OnUpdate
		}
		return s
	case *Unique:
		return constraintPrefix(el.Name) + "UNIQUE (" + identList(el.Columns) + ")"
	case *Check:
		return constraintPrefix(el.Name) + "CHECK " + el.Expr
	}
	return ""
}

func formatColumn(c *Column) string {
	parts := []string{sqlutil.FormatIdentifier(c.Name)}
	if c.Type != "" {
		parts = append(parts, c.Type)
	}
	for _, cc := range c.Constraints {
		parts = append(parts, FormatConstraint(cc))
	}
	return strings.Join(parts, " ")
}

// FormatConstraint renders an inline column constraint.
func FormatConstraint(cc ColumnConstraint) string {
	s := constraintPrefix(cc.Name)
	switch cc.Kind {
	case ConstraintReferences:
		return s + formatReference(cc.RefTable, cc.RefColumns)
	case ConstraintDefault, ConstraintCollate, ConstraintComment, ConstraintOnUpdate:
		return s + cc.Kind.String() + " " + cc.Expr
	case ConstraintCheck:
		return s + "CHECK " + cc.Expr
	case ConstraintGenerated:
		return s + "GENERATED ALWAYS AS " + cc.Expr
	case ConstraintOther:
		return s + cc.Expr
	}
	return s + cc.Kind.String()
}

func constraintPrefix(name string) string {
	if name == "" {
		return ""
	}
	return "CONSTRAINT " + sqlutil.FormatIdentifier(name) + " "
}

func formatReference(table string, cols []string) string {
	s := "REFERENCES " + sqlutil.FormatIdentifier(table)
	if len(cols) > 0 {
		s += "(" + identList(cols) + ")"
	}
	return s
}

func identList(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = sqlutil.FormatIdentifier(n)
	}
	return strings.Join(out, ", ")
}
