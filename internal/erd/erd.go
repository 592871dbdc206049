// Package erd derives a logical entity-relationship graph from a parsed schema.
//
// The graph is what a diagram renderer needs to draw a conceptual model back
// from SQL: every table typed as a strong, weak or associative entity, every
// column tagged with its key role, and every foreign key as a labeled
// relationship. No layout information is produced.
package erd

import (
	"strings"

	"github.com/dbsmedya/erdsql/internal/ddl"
)

// Kind is the entity type of a table.
type Kind string

const (
	KindStrong      Kind = "strong"      // has a primary key with no foreign-key column in it
	KindWeak        Kind = "weak"        // primary key borrows from exactly one parent table
	KindAssociative Kind = "associative" // primary key borrows from two or more parent tables
	KindNoPK        Kind = "no-pk"
)

// Role is the key role of a column.
type Role string

const (
	RoleAttr Role = "Attr"
	RolePK   Role = "PK"
	RoleFK   Role = "FK"
	RolePKFK Role = "PK+FK"
)

// IsKey reports whether the role includes the primary key.
func (r Role) IsKey() bool {
	return r == RolePK || r == RolePKFK
}

// IsForeign reports whether the role includes a foreign key.
func (r Role) IsForeign() bool {
	return r == RoleFK || r == RolePKFK
}

// Column is a column with its key role.
type Column struct {
	Name string
	Type string
	Role Role
}

// Table is an entity of the graph.
type Table struct {
	Name    string
	Kind    Kind
	Columns []Column
	Parents []string // tables referenced from inside the primary key, first seen first
}

// Relationship is one foreign key seen as an ER relationship. Child holds the
// foreign key and Parent is the referenced table.
type Relationship struct {
	Child       string
	Parent      string
	Columns     []string
	RefColumns  []string
	Label       string // "N:1", or "1:1" when the FK columns are a key of the child
	Identifying bool   // every FK column is part of the child's primary key
}

// Graph is the logical ER graph of a schema.
type Graph struct {
	Tables        []*Table
	Relationships []*Relationship

	schema *ddl.Schema
}

// Cardinality labels.
const (
	ManyToOne = "N:1"
	OneToOne  = "1:1"
)

// FromSchema builds the ER graph of s. Tables and relationships keep
// declaration order.
func FromSchema(s *ddl.Schema) *Graph {
	g := &Graph{schema: s}
	for _, t := range s.Tables {
		g.Tables = append(g.Tables, g.table(t))
	}
	for _, t := range s.Tables {
		g.Relationships = append(g.Relationships, g.relationships(t)...)
	}
	return g
}

// Table returns the named table, ignoring case.
func (g *Graph) Table(name string) *Table {
	for _, t := range g.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

func (g *Graph) table(t *ddl.Table) *Table {
	pk := lowerSet(t.PrimaryKeyColumns())
	fkTargets := t.ForeignKeyTargets()

	out := &Table{Name: t.Name}
	seenParent := make(map[string]bool)
	for _, c := range t.Columns() {
		key := strings.ToLower(c.Name)
		refs, isFK := fkTargets[key]
		role := RoleAttr
		switch {
		case pk[key] && isFK:
			role = RolePKFK
			for _, r := range refs {
				name := g.canonical(r)
				if !seenParent[strings.ToLower(name)] {
					seenParent[strings.ToLower(name)] = true
					out.Parents = append(out.Parents, name)
				}
			}
		case pk[key]:
			role = RolePK
		case isFK:
			role = RoleFK
		}
		out.Columns = append(out.Columns, Column{Name: c.Name, Type: c.Type, Role: role})
	}

	switch {
	case len(pk) == 0:
		out.Kind = KindNoPK
	case len(out.Parents) == 0:
		out.Kind = KindStrong
	case len(out.Parents) == 1:
		out.Kind = KindWeak
	default:
		out.Kind = KindAssociative
	}
	return out
}

func (g *Graph) relationships(t *ddl.Table) []*Relationship {
	pkCols := t.PrimaryKeyColumns()
	pk := lowerSet(pkCols)

	var out []*Relationship
	for _, fk := range t.ForeignKeys() {
		identifying := len(fk.Columns) > 0
		for _, c := range fk.Columns {
			if !pk[strings.ToLower(c)] {
				identifying = false
				break
			}
		}

		label := ManyToOne
		if sameColumns(fk.Columns, pkCols) || isUniqueSet(t, fk.Columns) {
			label = OneToOne
		}

		out = append(out, &Relationship{
			Child:       t.Name,
			Parent:      g.canonical(fk.RefTable),
			Columns:     fk.Columns,
			RefColumns:  g.refColumns(fk),
			Label:       label,
			Identifying: identifying,
		})
	}
	return out
}

// canonical returns the declared spelling of a referenced table, or name
// itself when the table is not part of the schema.
func (g *Graph) canonical(name string) string {
	if t := g.schema.Table(name); t != nil {
		return t.Name
	}
	return name
}

// refColumns returns the referenced columns, defaulting to the primary key of
// the referenced table when the foreign key omits them.
func (g *Graph) refColumns(fk *ddl.ForeignKey) []string {
	if len(fk.RefColumns) > 0 {
		return fk.RefColumns
	}
	if t := g.schema.Table(fk.RefTable); t != nil {
		return t.PrimaryKeyColumns()
	}
	return nil
}

func isUniqueSet(t *ddl.Table, cols []string) bool {
	for _, u := range t.UniqueSets() {
		if sameColumns(u, cols) {
			return true
		}
	}
	return false
}

func sameColumns(a, b []string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	set := lowerSet(a)
	for _, c := range b {
		if !set[strings.ToLower(c)] {
			return false
		}
	}
	return len(lowerSet(b)) == len(set)
}

func lowerSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[strings.ToLower(n)] = true
	}
	return out
}
