// Package ddl models CREATE TABLE statements.
//
// A Schema is a list of tables; each table is an ordered list of elements:
// columns and table-level constraints. The parser accepts the subset of SQL
// DDL that hand-written, generated and dumped schemas have in common and skips
// every statement that is not a CREATE TABLE.
package ddl

import "strings"

// Schema is an ordered list of tables.
type Schema struct {
	Tables []*Table
}

// Table returns the table with the given name, ignoring case.
func (s *Schema) Table(name string) *Table {
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// TableNames returns table names in declaration order.
func (s *Schema) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// Element is a table element. Concrete types are *Column, *PrimaryKey,
// *ForeignKey, *Unique and *Check.
type Element interface {
	element()
}

// Table is a single CREATE TABLE statement.
type Table struct {
	Name     string
	Comments []string
	Elements []Element
}

// ConstraintKind identifies an inline column constraint.
type ConstraintKind int

const (
	ConstraintNotNull ConstraintKind = iota
	ConstraintNull
	ConstraintPrimaryKey
	ConstraintUnique
	ConstraintDefault
	ConstraintCheck
	ConstraintReferences
	ConstraintAutoIncrement
	ConstraintCollate
	ConstraintComment
	ConstraintOnUpdate
	ConstraintGenerated
	ConstraintOther
)

var constraintKeywords = map[ConstraintKind]string{
	ConstraintNotNull:       "NOT NULL",
	ConstraintNull:          "NULL",
	ConstraintPrimaryKey:    "PRIMARY KEY",
	ConstraintUnique:        "UNIQUE",
	ConstraintDefault:       "DEFAULT",
	ConstraintCheck:         "CHECK",
	ConstraintReferences:    "REFERENCES",
	ConstraintAutoIncrement: "AUTO_INCREMENT",
	ConstraintCollate:       "COLLATE",
	ConstraintComment:       "COMMENT",
	ConstraintOnUpdate:      "ON UPDATE",
	ConstraintGenerated:     "GENERATED",
}

func (k ConstraintKind) String() string {
	if s, ok := constraintKeywords[k]; ok {
		return s
	}
	return "OTHER"
}

// ColumnConstraint is a constraint written after a column's type.
type ColumnConstraint struct {
	Kind       ConstraintKind
	Name       string   // CONSTRAINT name, if any
	Expr       string   // DEFAULT/CHECK/COLLATE/COMMENT/ON UPDATE/GENERATED payload
	RefTable   string   // REFERENCES target
	RefColumns []string // REFERENCES target columns
}

// Column is a column definition.
type Column struct {
	Name        string
	Type        string
	Constraints []ColumnConstraint
}

// Has reports whether the column carries a constraint of the given kind.
func (c *Column) Has(kind ConstraintKind) bool {
	for _, cc := range c.Constraints {
		if cc.Kind == kind {
			return true
		}
	}
	return false
}

// PrimaryKey is a table-level PRIMARY KEY constraint.
type PrimaryKey struct {
	Name    string
	Columns []string
}

// ForeignKey is a table-level FOREIGN KEY constraint.
type ForeignKey struct {
	Name       string
	Columns    []string
	RefTable   string
	RefColumns []string
	OnDelete   string
	OnUpdate   string
}

// Unique is a table-level UNIQUE constraint.
type Unique struct {
	Name    string
	Columns []string
}

// Check is a table-level CHECK constraint.
type Check struct {
	Name string
	Expr string
}

func (*Column) element()     {}
func (*PrimaryKey) element() {}
func (*ForeignKey) element() {}
func (*Unique) element()     {}
func (*Check) element()      {}

// Columns returns the column definitions in declaration order.
func (t *Table) Columns() []*Column {
	var cols []*Column
	for _, e := range t.Elements {
		if c, ok := e.(*Column); ok {
			cols = append(cols, c)
		}
	}
	return cols
}

// Column returns the named column, ignoring case.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns() {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// PrimaryKeyColumns merges inline and table-level primary keys, in
// declaration order without duplicates.
func (t *Table) PrimaryKeyColumns() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(name string) {
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			out = append(out, name)
		}
	}

	for _, e := range t.Elements {
		switch el := e.(type) {
		case *Column:
			if el.Has(ConstraintPrimaryKey) {
				add(el.Name)
			}
		case *PrimaryKey:
			for _, c := range el.Columns {
				add(c)
			}
		}
	}
	return out
}

// ForeignKeys returns table-level foreign keys plus one foreign key per inline
// REFERENCES constraint, in declaration order.
func (t *Table) ForeignKeys() []*ForeignKey {
	var out []*ForeignKey
	for _, e := range t.Elements {
		switch el := e.(type) {
		case *Column:
			for _, cc := range el.Constraints {
				if cc.Kind == ConstraintReferences {
					out = append(out, &ForeignKey{
						Name:       cc.Name,
						Columns:    []string{el.Name},
						RefTable:   cc.RefTable,
						RefColumns: cc.RefColumns,
					})
				}
			}
		case *ForeignKey:
			out = append(out, el)
		}
	}
	return out
}

// UniqueSets returns every column set declared unique, inline or table-level.
func (t *Table) UniqueSets() [][]string {
	var out [][]string
	for _, e := range t.Elements {
		switch el := e.(type) {
		case *Column:
			if el.Has(ConstraintUnique) {
				out = append(out, []string{el.Name})
			}
		case *Unique:
			out = append(out, el.Columns)
		}
	}
	return out
}

// ForeignKeyTargets maps each lower-cased FK column to the tables it
// references.
func (t *Table) ForeignKeyTargets() map[string][]string {
	out := make(map[string][]string)
	for _, fk := range t.ForeignKeys() {
		for _, c := range fk.Columns {
			key := strings.ToLower(c)
			out[key] = append(out[key], fk.RefTable)
		}
	}
	return out
}
