// Package compare decides whether two SQL schemas describe the same
// relational structure.
//
// Both inputs are normalized and parsed, then compared table by table:
// attribute columns by name, primary keys with foreign-key columns replaced
// by the tables they reference, and foreign keys by referenced table. Column
// datatypes and the names chosen for propagated key columns do not matter.
package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/dbsmedya/erdsql/internal/ddl"
	"github.com/dbsmedya/erdsql/internal/normalize"
)

// Options controls the comparison.
type Options struct {
	CaseSensitive     bool // compare identifiers exactly
	StrictConstraints bool // also compare inline constraints of attribute columns
	SuggestDistance   int  // max edit distance for "did you mean" hints, 0 disables
}

// Result is the verdict for one pair of schemas. Diagnostics is empty
// exactly when Equivalent is true.
type Result struct {
	Diagnostics []string
	Equivalent  bool
}

// Checker compares schemas.
type Checker struct {
	opts Options
}

// New creates a Checker.
func New(opts Options) *Checker {
	return &Checker{opts: opts}
}

// Compare normalizes, parses and compares two schema texts. A text that
// cannot be parsed is an error; it says nothing about equivalence.
func (c *Checker) Compare(schema1, schema2 string) (*Result, error) {
	s1, err := Load(schema1)
	if err != nil {
		return nil, fmt.Errorf("schema1: %w", err)
	}
	s2, err := Load(schema2)
	if err != nil {
		return nil, fmt.Errorf("schema2: %w", err)
	}
	return c.CompareSchemas(s1, s2), nil
}

// Load normalizes text and parses the result.
func Load(text string) (*ddl.Schema, error) {
	normalized, err := normalize.Normalize(text)
	if err != nil {
		return nil, err
	}
	return ddl.Parse(normalized)
}

// CompareSchemas compares two parsed schemas.
func (c *Checker) CompareSchemas(s1, s2 *ddl.Schema) *Result {
	t1 := c.index(s1)
	t2 := c.index(s2)

	var diags []string
	only1, only2, common := splitKeys(t1, t2)
	for _, k := range only1 {
		diags = append(diags, c.onlyIn("schema1", t1[k].name, only2, t2))
	}
	for _, k := range only2 {
		diags = append(diags, c.onlyIn("schema2", t2[k].name, only1, t1))
	}
	for _, k := range common {
		diags = append(diags, c.compareTables(t1[k], t2[k])...)
	}

	return &Result{Diagnostics: diags, Equivalent: len(diags) == 0}
}

// tableShape is the comparable structure of one table.
type tableShape struct {
	name        string
	columns     map[string]string   // attribute column key -> display name
	fkTargets   map[string][]string // FK column key -> referenced table keys
	pkNames     map[string]string   // PK columns that are not FK columns
	pkRefs      map[string]bool     // tables referenced by FK columns inside the PK
	refs        map[string]bool     // tables referenced by any FK
	constraints map[string][]string // attribute column key -> sorted constraint keywords
}

func (c *Checker) key(name string) string {
	if c.opts.CaseSensitive {
		return name
	}
	return strings.ToLower(name)
}

func (c *Checker) index(s *ddl.Schema) map[string]*tableShape {
	out := make(map[string]*tableShape, len(s.Tables))
	for _, t := range s.Tables {
		out[c.key(t.Name)] = c.shape(t)
	}
	return out
}

func (c *Checker) shape(t *ddl.Table) *tableShape {
	ts := &tableShape{
		name:        t.Name,
		columns:     make(map[string]string),
		fkTargets:   make(map[string][]string),
		pkNames:     make(map[string]string),
		pkRefs:      make(map[string]bool),
		refs:        make(map[string]bool),
		constraints: make(map[string][]string),
	}

	for _, fk := range t.ForeignKeys() {
		ref := c.key(fk.RefTable)
		ts.refs[ref] = true
		for _, col := range fk.Columns {
			k := c.key(col)
			ts.fkTargets[k] = append(ts.fkTargets[k], ref)
		}
	}

	for _, col := range t.Columns() {
		k := c.key(col.Name)
		if _, isFK := ts.fkTargets[k]; isFK {
			continue
		}
		ts.columns[k] = col.Name
		ts.constraints[k] = constraintKinds(col)
	}

	for _, pk := range t.PrimaryKeyColumns() {
		k := c.key(pk)
		if refs, isFK := ts.fkTargets[k]; isFK {
			for _, r := range refs {
				ts.pkRefs[r] = true
			}
			continue
		}
		ts.pkNames[k] = pk
	}
	return ts
}

// constraintKinds lists the inline constraint keywords of an attribute
// column. Keys and references are covered by their own checks.
func constraintKinds(col *ddl.Column) []string {
	seen := make(map[string]bool)
	var out []string
	for _, cc := range col.Constraints {
		if cc.Kind == ddl.ConstraintReferences || cc.Kind == ddl.ConstraintPrimaryKey {
			continue
		}
		kw := cc.Kind.String()
		if !seen[kw] {
			seen[kw] = true
			out = append(out, kw)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Checker) compareTables(a, b *tableShape) []string {
	var diags []string
	table := a.name

	if only := minus(a.columns, b.columns); len(only) > 0 {
		diags = append(diags, fmt.Sprintf("table %s: columns only in schema1: %s", table, strings.Join(only, ", ")))
	}
	if only := minus(b.columns, a.columns); len(only) > 0 {
		diags = append(diags, fmt.Sprintf("table %s: columns only in schema2: %s", table, strings.Join(only, ", ")))
	}

	if !sameKeys(a.pkNames, b.pkNames) || !sameSet(a.pkRefs, b.pkRefs) {
		diags = append(diags, fmt.Sprintf("table %s: primary key mismatch: schema1 %s vs schema2 %s",
			table, describeKey(a), describeKey(b)))
	}

	if !sameSet(a.refs, b.refs) {
		diags = append(diags, fmt.Sprintf("table %s: foreign key targets differ: schema1 {%s} vs schema2 {%s}",
			table, strings.Join(setList(a.refs), ", "), strings.Join(setList(b.refs), ", ")))
	}

	if c.opts.StrictConstraints {
		for _, k := range sortedKeys(a.columns) {
			if _, ok := b.columns[k]; !ok {
				continue
			}
			ca, cb := a.constraints[k], b.constraints[k]
			if strings.Join(ca, ",") != strings.Join(cb, ",") {
				diags = append(diags, fmt.Sprintf("table %s: constraints on column %s differ: schema1 {%s} vs schema2 {%s}",
					table, a.columns[k], strings.Join(ca, ", "), strings.Join(cb, ", ")))
			}
		}
	}
	return diags
}

func (c *Checker) onlyIn(side, name string, candidates []string, other map[string]*tableShape) string {
	msg := fmt.Sprintf("table %s only in %s", name, side)
	if s := c.suggest(name, candidates, other); s != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", s)
	}
	return msg
}

// suggest returns the closest unmatched table name on the other side within
// the configured edit distance.
func (c *Checker) suggest(name string, candidates []string, other map[string]*tableShape) string {
	if c.opts.SuggestDistance <= 0 {
		return ""
	}
	best, bestDist := "", c.opts.SuggestDistance+1
	for _, k := range candidates {
		cand := other[k].name
		d := levenshtein.DistanceForStrings([]rune(c.key(name)), []rune(c.key(cand)), levenshtein.DefaultOptions)
		if d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best
}

// describeKey renders a primary key as its attribute columns followed by
// the tables referenced by its foreign-key columns.
func describeKey(t *tableShape) string {
	parts := make([]string, 0, len(t.pkNames)+len(t.pkRefs))
	for _, k := range sortedKeys(t.pkNames) {
		parts = append(parts, t.pkNames[k])
	}
	for _, r := range setList(t.pkRefs) {
		parts = append(parts, "FK->"+r)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func splitKeys(a, b map[string]*tableShape) (onlyA, onlyB, common []string) {
	for k := range a {
		if _, ok := b[k]; ok {
			common = append(common, k)
		} else {
			onlyA = append(onlyA, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			onlyB = append(onlyB, k)
		}
	}
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	sort.Strings(common)
	return onlyA, onlyB, common
}

// minus returns the display names of keys in a but not in b, sorted.
func minus(a, b map[string]string) []string {
	var out []string
	for _, k := range sortedKeys(a) {
		if _, ok := b[k]; !ok {
			out = append(out, a[k])
		}
	}
	return out
}

func sameKeys(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func setList(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
