package synth

import (
	"strconv"
	"strings"

	"github.com/dbsmedya/erdsql/internal/sqlutil"
)

// Column is a column of a TableDraft.
type Column struct {
	Name    string
	NotNull bool
	Unique  bool
	own     bool // attribute drawn on the entity itself
}

// ForeignKey references another draft by id.
type ForeignKey struct {
	RefID      string
	RefTable   string
	Columns    []string
	RefColumns []string
}

// TableDraft accumulates the columns and constraints of one output table.
// Drafts only grow: relationships add columns, keys and comments but never
// remove anything.
type TableDraft struct {
	ID          string // entity or relation cell id
	Name        string
	Associative bool
	Comments    []string
	ForeignKeys []*ForeignKey
	Uniques     [][]string // composite UNIQUE sets

	columns     []*Column
	contributed []string // PK columns received through identifying relationships
	ownKeys     []string
}

func newDraft(id, name string) *TableDraft {
	return &TableDraft{ID: id, Name: name}
}

// Columns returns the columns added by relationships followed by the draft's
// own attributes, each group in insertion order.
func (d *TableDraft) Columns() []*Column {
	out := make([]*Column, 0, len(d.columns))
	for _, c := range d.columns {
		if !c.own {
			out = append(out, c)
		}
	}
	for _, c := range d.columns {
		if c.own {
			out = append(out, c)
		}
	}
	return out
}

// Column looks up a column by name, ignoring case.
func (d *TableDraft) Column(name string) *Column {
	for _, c := range d.columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the contributed key columns followed by the draft's own
// key columns, without duplicates.
func (d *TableDraft) PrimaryKey() []string {
	seen := make(map[string]bool, len(d.contributed)+len(d.ownKeys))
	var out []string
	for _, k := range append(append([]string{}, d.contributed...), d.ownKeys...) {
		lk := strings.ToLower(k)
		if seen[lk] {
			continue
		}
		seen[lk] = true
		out = append(out, k)
	}
	return out
}

// Empty reports whether the draft has no columns.
func (d *TableDraft) Empty() bool {
	return len(d.columns) == 0
}

func (d *TableDraft) addOwn(name string, key bool) {
	if d.Column(name) == nil {
		d.columns = append(d.columns, &Column{Name: name, own: true})
	}
	if key {
		d.ownKeys = append(d.ownKeys, name)
	}
}

// addColumn appends a column, renaming it when the name is taken. The
// replacement is <table>_<name>, then numbered suffixes.
func (d *TableDraft) addColumn(name, refTable string) *Column {
	final := name
	if d.Column(final) != nil {
		final = sqlutil.SnakeCase(refTable) + "_" + name
		for i := 2; d.Column(final) != nil; i++ {
			final = sqlutil.SnakeCase(refTable) + "_" + name + "_" + strconv.Itoa(i)
		}
	}
	c := &Column{Name: final}
	d.columns = append(d.columns, c)
	return c
}

// reference adds one column per referenced key plus a composite foreign key
// and returns the local column names.
func (d *TableDraft) reference(ref *TableDraft, keys []string, notNull bool) []string {
	local := make([]string, len(keys))
	for i, k := range keys {
		c := d.addColumn(k, ref.Name)
		c.NotNull = c.NotNull || notNull
		local[i] = c.Name
	}
	d.ForeignKeys = append(d.ForeignKeys, &ForeignKey{
		RefID:      ref.ID,
		RefTable:   ref.Name,
		Columns:    local,
		RefColumns: append([]string(nil), keys...),
	})
	return local
}

func (d *TableDraft) contribute(cols []string) {
	d.contributed = append(d.contributed, cols...)
}

func (d *TableDraft) unique(cols []string) {
	if len(cols) == 1 {
		d.Column(cols[0]).Unique = true
		return
	}
	d.Uniques = append(d.Uniques, cols)
}

func (d *TableDraft) comment(c string) {
	d.Comments = append(d.Comments, c)
}
