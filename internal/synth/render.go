package synth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dbsmedya/erdsql/internal/ddl"
	"github.com/dbsmedya/erdsql/internal/graph"
)

// ErrCyclicForeignKeyDependency is returned when the synthesized foreign keys
// form a cycle, so no CREATE TABLE order exists. The wrapped error is a
// *graph.CycleError naming the tables involved.
var ErrCyclicForeignKeyDependency = errors.New("cyclic foreign key dependency")

// Tables returns the drafts that have at least one column, in creation order.
func (r *Result) Tables() []*TableDraft {
	out := make([]*TableDraft, 0, r.Drafts.Len())
	for el := r.Drafts.Front(); el != nil; el = el.Next() {
		if !el.Value.Empty() {
			out = append(out, el.Value)
		}
	}
	return out
}

// Graph returns the foreign-key dependency graph of the non-empty drafts.
// Self references are not edges.
func (r *Result) Graph() *graph.Graph {
	tables := r.Tables()
	g := graph.NewGraph()
	for _, d := range tables {
		g.AddNode(d.ID, d.Name)
	}
	for _, d := range tables {
		pk := d.PrimaryKey()
		for _, fk := range d.ForeignKeys {
			if fk.RefID == d.ID || !g.HasNode(fk.RefID) {
				continue
			}
			g.AddEdgeWithMeta(fk.RefID, d.ID, graph.EdgeMeta{
				Columns:     fk.Columns,
				RefColumns:  fk.RefColumns,
				Identifying: containsAll(pk, fk.Columns),
			})
		}
	}
	return g
}

// Order returns the drafts in an order where every referenced table precedes
// the tables referencing it. Unrelated tables keep creation order.
func (r *Result) Order() ([]*TableDraft, error) {
	ids, err := r.Graph().CreateOrder()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCyclicForeignKeyDependency, err)
	}

	out := make([]*TableDraft, 0, len(ids))
	for _, id := range ids {
		d, _ := r.Drafts.Get(id)
		out = append(out, d)
	}
	return out, nil
}

// Schema builds the DDL tree of the ordered drafts.
func (r *Result) Schema() (*ddl.Schema, error) {
	order, err := r.Order()
	if err != nil {
		return nil, err
	}

	s := &ddl.Schema{Tables: make([]*ddl.Table, 0, len(order))}
	for _, d := range order {
		s.Tables = append(s.Tables, r.table(d))
	}
	return s, nil
}

// SQL renders the synthesized schema as CREATE TABLE statements. With
// comments enabled, the diagnostics of the run lead the output as "--" lines.
func (r *Result) SQL() (string, error) {
	s, err := r.Schema()
	if err != nil {
		return "", err
	}

	out := ddl.Format(s)
	if !r.opts.EmitComments || r.Diagnostics.Empty() {
		return out, nil
	}

	lines := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		lines = append(lines, "-- "+d.String())
	}
	header := strings.Join(lines, "\n")
	if out == "" {
		return header, nil
	}
	return header + "\n\n" + out, nil
}

func (r *Result) table(d *TableDraft) *ddl.Table {
	t := &ddl.Table{Name: d.Name}
	if r.opts.EmitComments {
		t.Comments = append(t.Comments, d.Comments...)
	}

	for _, c := range d.Columns() {
		col := &ddl.Column{Name: c.Name, Type: r.opts.ColumnType}
		if c.NotNull {
			col.Constraints = append(col.Constraints, ddl.ColumnConstraint{Kind: ddl.ConstraintNotNull})
		}
		if c.Unique {
			col.Constraints = append(col.Constraints, ddl.ColumnConstraint{Kind: ddl.ConstraintUnique})
		}
		t.Elements = append(t.Elements, col)
	}

	if pk := d.PrimaryKey(); len(pk) > 0 {
		t.Elements = append(t.Elements, &ddl.PrimaryKey{Columns: pk})
	}
	for _, u := range d.Uniques {
		t.Elements = append(t.Elements, &ddl.Unique{Columns: u})
	}
	for _, fk := range d.ForeignKeys {
		t.Elements = append(t.Elements, &ddl.ForeignKey{
			Columns:    fk.Columns,
			RefTable:   fk.RefTable,
			RefColumns: fk.RefColumns,
		})
	}
	return t
}

func containsAll(set, items []string) bool {
	for _, it := range items {
		found := false
		for _, s := range set {
			if strings.EqualFold(s, it) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return len(items) > 0
}
