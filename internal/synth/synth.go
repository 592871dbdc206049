// Package synth compiles an extracted ER model into relational table drafts
// and renders them as CREATE TABLE statements.
//
// Every entity becomes one draft. Relationships are then folded into the
// drafts: identifying relationships first, so that keys propagated by the
// remaining relationships already include the composite keys of weak
// entities. Associative drafts are created for many-to-many relationships
// and for one-to-many relationships that carry their own key attributes.
package synth

import (
	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/erdsql/internal/cardinality"
	"github.com/dbsmedya/erdsql/internal/diag"
	"github.com/dbsmedya/erdsql/internal/diagram"
	"github.com/dbsmedya/erdsql/internal/logger"
)

// DefaultColumnType is the datatype emitted for every column.
const DefaultColumnType = "VARCHAR(255)"

// Options controls rendering of synthesized tables.
type Options struct {
	ColumnType   string
	EmitComments bool
}

// DefaultOptions returns the options used when no configuration is given.
func DefaultOptions() Options {
	return Options{ColumnType: DefaultColumnType, EmitComments: true}
}

// Synthesizer turns diagram models into table drafts.
type Synthesizer struct {
	opts Options
	log  *logger.Logger
}

// New creates a Synthesizer. A nil logger discards output.
func New(opts Options, log *logger.Logger) *Synthesizer {
	if opts.ColumnType == "" {
		opts.ColumnType = DefaultColumnType
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Synthesizer{opts: opts, log: log}
}

// Result holds the drafts of one synthesis run. Drafts are keyed by the cell
// id of the entity or relation they were created for, in creation order.
type Result struct {
	Drafts      *orderedmap.OrderedMap[string, *TableDraft]
	Diagnostics diag.List
	opts        Options
}

// fold carries the state of a single Synthesize call.
type fold struct {
	*Synthesizer
	model *diagram.Model
	res   *Result
}

// Synthesize builds the drafts for m. It never fails: relationships that
// cannot be translated are reported in Result.Diagnostics and skipped.
func (s *Synthesizer) Synthesize(m *diagram.Model) *Result {
	res := &Result{
		Drafts: orderedmap.NewOrderedMap[string, *TableDraft](),
		opts:   s.opts,
	}

	for _, e := range m.Entities() {
		d := newDraft(e.ID, displayName(e.Name, e.ID))
		for _, a := range e.Attributes {
			d.addOwn(a.Name, a.PrimaryKey)
		}
		res.Drafts.Set(e.ID, d)
	}

	f := &fold{Synthesizer: s, model: m, res: res}
	for _, rel := range f.ordered() {
		f.relationship(rel)
	}

	s.log.Debugw("synthesis finished",
		"tables", res.Drafts.Len(),
		"diagnostics", len(res.Diagnostics))
	return res
}

// ordered returns identifying relationships first, then the others, each
// group in first-seen order.
func (f *fold) ordered() []*diagram.Relationship {
	var identifying, other []*diagram.Relationship
	for _, rel := range f.model.RelationshipList() {
		if r, ok := f.model.Relation(rel.RelationID); ok && r.Weak {
			identifying = append(identifying, rel)
		} else {
			other = append(other, rel)
		}
	}
	return append(identifying, other...)
}

func (f *fold) relationship(rel *diagram.Relationship) {
	relation, ok := f.model.Relation(rel.RelationID)
	if !ok {
		return
	}
	if !rel.Binary() {
		f.res.Diagnostics.Add(diag.UnsupportedRelationship, rel.RelationID,
			"relation %q connects %d entities; only binary relationships are synthesized", relation.Name, len(rel.Ends))
		return
	}

	unknown := false
	for _, end := range rel.Ends {
		if end.Cardinality == cardinality.Unknown {
			f.res.Diagnostics.Add(diag.UnclassifiableCardinality, rel.RelationID,
				"cardinality of edge %s between relation %q and entity %q could not be classified",
				end.EdgeID, relation.Name, f.draftName(end.EntityID))
			unknown = true
		}
	}
	if unknown {
		return
	}

	a, b := rel.Ends[0], rel.Ends[1]
	d1, ok1 := f.res.Drafts.Get(a.EntityID)
	d2, ok2 := f.res.Drafts.Get(b.EntityID)
	if !ok1 || !ok2 {
		return
	}

	if relation.Weak {
		f.weak(relation, a, b, d1, d2)
	} else {
		f.strong(relation, a.Cardinality, b.Cardinality, d1, d2)
	}
}

func (f *fold) weak(relation *diagram.Relation, a, b diagram.End, d1, d2 *TableDraft) {
	weak1 := f.isWeak(a.EntityID)
	weak2 := f.isWeak(b.EntityID)
	c1, c2 := a.Cardinality, b.Cardinality

	if weak1 == weak2 {
		f.res.Diagnostics.Add(diag.StructuralAnomaly, relation.ID,
			"identifying relation %q connects two %s entities %q and %q",
			relation.Name, strength(weak1), d1.Name, d2.Name)
	}

	switch {
	case c1.IsOne() && c2.IsOne():
		owner, dependent := d1, d2
		if weak1 && !weak2 {
			owner, dependent = d2, d1
		}
		f.identify(relation, owner, dependent, "Weak 1-1: dependent PK = owner PK")

	case c1.IsMany() && c2.IsMany():
		d2.comment("Weak many-to-many between " + d1.Name + " and " + d2.Name + " is not meaningful; nothing synthesized")
		f.res.Diagnostics.Add(diag.StructuralAnomaly, relation.ID,
			"identifying relation %q is many-to-many; nothing synthesized", relation.Name)

	default:
		one, many := d1, d2
		oneWeak, manyWeak := weak1, weak2
		if c1.IsMany() {
			one, many = d2, d1
			oneWeak, manyWeak = weak2, weak1
		}
		if oneWeak && !manyWeak {
			f.res.Diagnostics.Add(diag.StructuralAnomaly, relation.ID,
				"weak entity %q is on the one side of identifying relation %q; nothing synthesized",
				one.Name, relation.Name)
			return
		}
		f.identify(relation, one, many, "Weak 1-N: PK = owner PK + partial key")
	}
}

// identify gives dependent the owner's key as a foreign key that is also
// part of dependent's primary key.
func (f *fold) identify(relation *diagram.Relation, owner, dependent *TableDraft, note string) {
	keys, ok := f.keys(relation, owner)
	if !ok {
		return
	}
	cols := dependent.reference(owner, keys, false)
	dependent.contribute(cols)
	dependent.comment(note)
	f.migrate(relation, dependent)

	f.log.WithTable(dependent.Name).Debugw("identifying relationship folded",
		"relation", relation.Name, "owner", owner.Name, "columns", cols)
}

func (f *fold) strong(relation *diagram.Relation, c1, c2 cardinality.Class, d1, d2 *TableDraft) {
	switch {
	case c1.IsOne() && c2.IsOne():
		switch {
		case c1 == cardinality.OptionalZeroOrOne:
			f.oneToOne(relation, d1, d2, false, "Optional 1-1: FK in optional side")
		case c2 == cardinality.OptionalZeroOrOne:
			f.oneToOne(relation, d2, d1, false, "Optional 1-1: FK in optional side")
		default:
			f.oneToOne(relation, d2, d1, true, "Exact 1-1: enforced with UNIQUE + NOT NULL")
		}

	case c1.IsMany() && c2.IsMany():
		f.manyToMany(relation, d1, d2)

	default:
		one, many, oneClass := d1, d2, c1
		if c1.IsMany() {
			one, many, oneClass = d2, d1, c2
		}
		if len(relation.Keys()) > 0 {
			f.attributedOneToMany(relation, one, many)
			return
		}

		keys, ok := f.keys(relation, one)
		if !ok {
			return
		}
		cols := many.reference(one, keys, oneClass == cardinality.ExactlyOne)
		many.comment("Added FK to " + one.Name + " because " + many.Name + " is the many side.")
		f.migrate(relation, many)

		f.log.WithTable(many.Name).Debugw("one-to-many folded",
			"relation", relation.Name, "references", one.Name, "columns", cols)
	}
}

// oneToOne places a unique foreign key to ref on holder.
func (f *fold) oneToOne(relation *diagram.Relation, holder, ref *TableDraft, notNull bool, note string) {
	keys, ok := f.keys(relation, ref)
	if !ok {
		return
	}
	cols := holder.reference(ref, keys, notNull)
	holder.unique(cols)
	holder.comment(note)
	f.migrate(relation, holder)

	f.log.WithTable(holder.Name).Debugw("one-to-one folded",
		"relation", relation.Name, "references", ref.Name, "columns", cols)
}

func (f *fold) attributedOneToMany(relation *diagram.Relation, one, many *TableDraft) {
	keys, ok := f.keys(relation, one)
	if !ok {
		return
	}
	d := f.associative(relation)
	d.contribute(d.reference(one, keys, false))
	d.comment("Table for one-to-many between " + one.Name + " and " + many.Name + " due to relations having primary key.")
	f.res.Drafts.Set(relation.ID, d)
}

func (f *fold) manyToMany(relation *diagram.Relation, d1, d2 *TableDraft) {
	keys1, ok1 := f.keys(relation, d1)
	keys2, ok2 := f.keys(relation, d2)
	if !ok1 || !ok2 {
		return
	}
	d := f.associative(relation)
	d.contribute(d.reference(d1, keys1, false))
	d.contribute(d.reference(d2, keys2, false))
	d.comment("Join table for many-to-many between " + d1.Name + " and " + d2.Name + ".")
	f.res.Drafts.Set(relation.ID, d)

	f.log.WithTable(d.Name).Debugw("join table created", "between", []string{d1.Name, d2.Name})
}

// associative starts a draft for a relation. The relation's attributes come
// first and its key attributes lead the primary key.
func (f *fold) associative(relation *diagram.Relation) *TableDraft {
	d := newDraft(relation.ID, displayName(relation.Name, relation.ID))
	d.Associative = true
	for _, a := range relation.Attributes {
		if d.Column(a.Name) != nil {
			continue
		}
		d.addColumn(a.Name, relation.Name)
		if a.PrimaryKey {
			d.contribute([]string{a.Name})
		}
	}
	return d
}

// migrate moves the attributes of a relationship folded into a foreign key
// onto the table holding that key.
func (f *fold) migrate(relation *diagram.Relation, holder *TableDraft) {
	for _, a := range relation.Attributes {
		holder.addColumn(a.Name, relation.Name)
	}
}

// keys returns the full primary key of ref, reporting an anomaly when it has none.
func (f *fold) keys(relation *diagram.Relation, ref *TableDraft) ([]string, bool) {
	keys := ref.PrimaryKey()
	if len(keys) == 0 {
		f.res.Diagnostics.Add(diag.StructuralAnomaly, relation.ID,
			"entity %q has no primary key; relation %q not synthesized", ref.Name, relation.Name)
		return nil, false
	}
	return keys, true
}

func (f *fold) isWeak(entityID string) bool {
	e, ok := f.model.Entity(entityID)
	return ok && e.Weak
}

func (f *fold) draftName(id string) string {
	if d, ok := f.res.Drafts.Get(id); ok {
		return d.Name
	}
	return id
}

func strength(weak bool) string {
	if weak {
		return "weak"
	}
	return "strong"
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}
	return name
}
