package erd

import (
	"errors"
	"strings"

	"github.com/dbsmedya/erdsql/internal/diag"
	"github.com/dbsmedya/erdsql/internal/graph"
	"github.com/dbsmedya/erdsql/internal/sqlutil"
)

// Anomalies lints the schema behind the graph. Findings are structural
// anomalies: tables without a primary key, foreign keys into missing tables
// or non-key columns, arity mismatches and foreign-key cycles.
func (g *Graph) Anomalies() diag.List {
	var list diag.List

	for _, t := range g.Tables {
		if t.Kind == KindNoPK {
			list.Add(diag.StructuralAnomaly, t.Name, "table has no primary key")
		}
	}

	for _, r := range g.Relationships {
		parent := g.schema.Table(r.Parent)
		if parent == nil {
			list.Add(diag.StructuralAnomaly, r.Child, "foreign key (%s) references missing table %q",
				strings.Join(r.Columns, ", "), r.Parent)
			continue
		}
		if len(r.RefColumns) != len(r.Columns) {
			list.Add(diag.StructuralAnomaly, r.Child, "foreign key (%s) has %d columns but references %d in %q",
				strings.Join(r.Columns, ", "), len(r.Columns), len(r.RefColumns), parent.Name)
			continue
		}
		for _, c := range r.RefColumns {
			if parent.Column(c) == nil {
				list.Add(diag.StructuralAnomaly, r.Child, "foreign key (%s) references unknown column %s.%s",
					strings.Join(r.Columns, ", "), parent.Name, c)
			}
		}
		if !sameColumns(r.RefColumns, parent.PrimaryKeyColumns()) && !isUniqueSet(parent, r.RefColumns) {
			list.Add(diag.StructuralAnomaly, r.Child, "foreign key (%s) does not reference a key of %q",
				strings.Join(r.Columns, ", "), parent.Name)
		}
	}

	if err := g.dependencies().Validate(); err != nil {
		var ce *graph.CycleError
		if errors.As(err, &ce) {
			list.Add(diag.StructuralAnomaly, "", "foreign key cycle: %s", strings.Join(ce.Info.CyclePath, " -> "))
		}
	}
	return list
}

// dependencies returns the foreign-key dependency graph between the tables of
// the schema. Self references and references to missing tables are left out.
func (g *Graph) dependencies() *graph.Graph {
	dg := graph.NewGraph()
	for _, t := range g.Tables {
		dg.AddNode(strings.ToLower(t.Name), t.Name)
	}
	for _, r := range g.Relationships {
		parent, child := strings.ToLower(r.Parent), strings.ToLower(r.Child)
		if parent == child || !dg.HasNode(parent) {
			continue
		}
		dg.AddEdgeWithMeta(parent, child, graph.EdgeMeta{
			Columns:     r.Columns,
			RefColumns:  r.RefColumns,
			Identifying: r.Identifying,
		})
	}
	return dg
}

// CreateOrder returns table names so that every referenced table comes
// before the tables referencing it.
func (g *Graph) CreateOrder() ([]string, error) {
	dg := g.dependencies()
	ids, err := dg.CreateOrder()
	if err != nil {
		return nil, err
	}
	return displayNames(dg, ids), nil
}

// DropOrder returns table names so that every referencing table comes
// before the tables it references.
func (g *Graph) DropOrder() ([]string, error) {
	dg := g.dependencies()
	ids, err := dg.DropOrder()
	if err != nil {
		return nil, err
	}
	return displayNames(dg, ids), nil
}

// DropScript renders DROP TABLE statements in drop order.
func (g *Graph) DropScript() (string, error) {
	names, err := g.DropOrder()
	if err != nil {
		return "", err
	}
	lines := make([]string, len(names))
	for i, n := range names {
		lines[i] = "DROP TABLE IF EXISTS " + sqlutil.FormatIdentifier(n) + ";"
	}
	return strings.Join(lines, "\n"), nil
}

func displayNames(dg *graph.Graph, ids []string) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = dg.GetNode(id).Name
	}
	return names
}
