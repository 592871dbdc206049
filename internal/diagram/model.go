// Package diagram extracts a typed ER model from draw.io diagrams.
//
// Cells are classified by their style into entities, relations, attributes and
// edges. Edges then attach attributes to their owners and collect, per relation,
// the participating entities together with the cardinality of each end.
package diagram

import (
	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/erdsql/internal/cardinality"
	"github.com/dbsmedya/erdsql/internal/diag"
)

// Shape is a classified diagram cell. Concrete types are *Entity, *Relation,
// *Attribute and *Edge.
type Shape interface {
	ShapeID() string
	Kind() string
}

// Attribute is an ellipse attached to an entity or relation.
type Attribute struct {
	ID         string
	Name       string
	PrimaryKey bool
}

// Entity is a rectangle. Weak entities are drawn with a double border.
type Entity struct {
	ID         string
	Name       string
	Weak       bool
	Attributes []*Attribute
}

// Relation is a rhombus. Weak (identifying) relations have a double border.
type Relation struct {
	ID         string
	Name       string
	Weak       bool
	Attributes []*Attribute
}

// Edge is a connector between two cells.
type Edge struct {
	ID     string
	Source string
	Target string
	Style  string
	Label  string
}

func (a *Attribute) ShapeID() string { return a.ID }
func (e *Entity) ShapeID() string    { return e.ID }
func (r *Relation) ShapeID() string  { return r.ID }
func (e *Edge) ShapeID() string      { return e.ID }

func (a *Attribute) Kind() string { return "attribute" }
func (e *Entity) Kind() string    { return "entity" }
func (r *Relation) Kind() string  { return "relation" }
func (e *Edge) Kind() string      { return "edge" }

// Keys returns the names of the entity's primary-key attributes.
func (e *Entity) Keys() []string {
	return keyNames(e.Attributes)
}

// Keys returns the names of the relation's primary-key attributes.
func (r *Relation) Keys() []string {
	return keyNames(r.Attributes)
}

// AttributeNames returns every attribute name in attachment order.
func (r *Relation) AttributeNames() []string {
	return attributeNames(r.Attributes)
}

// AttributeNames returns every attribute name in attachment order.
func (e *Entity) AttributeNames() []string {
	return attributeNames(e.Attributes)
}

func keyNames(attrs []*Attribute) []string {
	var keys []string
	for _, a := range attrs {
		if a.PrimaryKey {
			keys = append(keys, a.Name)
		}
	}
	return keys
}

func attributeNames(attrs []*Attribute) []string {
	names := make([]string, 0, len(attrs))
	for _, a := range attrs {
		names = append(names, a.Name)
	}
	return names
}

// End is one participant of a relationship.
type End struct {
	EntityID    string
	EdgeID      string
	Cardinality cardinality.Class
}

// Relationship lists the entities connected to a relation, in edge order.
type Relationship struct {
	RelationID string
	Ends       []End
}

// Binary reports whether the relationship connects exactly two ends.
func (r *Relationship) Binary() bool {
	return len(r.Ends) == 2
}

// Model is the result of extracting one diagram.
type Model struct {
	Notation      cardinality.Notation
	Shapes        *orderedmap.OrderedMap[string, Shape]
	Relationships *orderedmap.OrderedMap[string, *Relationship]
	Diagnostics   diag.List
}

// NewModel returns an empty model for the given notation.
func NewModel(n cardinality.Notation) *Model {
	return &Model{
		Notation:      n,
		Shapes:        orderedmap.NewOrderedMap[string, Shape](),
		Relationships: orderedmap.NewOrderedMap[string, *Relationship](),
	}
}

// Entity looks up an entity by cell id.
func (m *Model) Entity(id string) (*Entity, bool) {
	s, ok := m.Shapes.Get(id)
	if !ok {
		return nil, false
	}
	e, ok := s.(*Entity)
	return e, ok
}

// Relation looks up a relation by cell id.
func (m *Model) Relation(id string) (*Relation, bool) {
	s, ok := m.Shapes.Get(id)
	if !ok {
		return nil, false
	}
	r, ok := s.(*Relation)
	return r, ok
}

// Entities returns all entities in diagram order.
func (m *Model) Entities() []*Entity {
	var out []*Entity
	for el := m.Shapes.Front(); el != nil; el = el.Next() {
		if e, ok := el.Value.(*Entity); ok {
			out = append(out, e)
		}
	}
	return out
}

// RelationshipList returns all relationships in first-seen order.
func (m *Model) RelationshipList() []*Relationship {
	out := make([]*Relationship, 0, m.Relationships.Len())
	for el := m.Relationships.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}
