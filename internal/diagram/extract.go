package diagram

import (
	"fmt"
	"html"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/dbsmedya/erdsql/internal/cardinality"
	"github.com/dbsmedya/erdsql/internal/diag"
)

// plainEntityStyle is the exact style draw.io's ER palette gives a bare entity.
const plainEntityStyle = "whiteSpace=wrap;html=1;align=center;"

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	breakPattern = regexp.MustCompile(`(?i)<br\s*/?>|</div>|</p>`)
)

// Extract classifies cells and resolves edges into a Model. Problems with
// individual edges are recorded as diagnostics and never abort extraction.
func Extract(cells []Cell, n cardinality.Notation) *Model {
	m := NewModel(n)

	// Multiplicities are often drawn as edgeLabel children of the edge.
	childLabels := make(map[string]string)
	for _, c := range cells {
		if c.Parent != "" && strings.Contains(c.Style, "edgeLabel") {
			if _, seen := childLabels[c.Parent]; !seen {
				childLabels[c.Parent] = cleanLabel(c.Value)
			}
		}
	}

	for _, c := range cells {
		s := classify(c)
		if s == nil {
			continue
		}
		if e, ok := s.(*Edge); ok && e.Label == "" {
			e.Label = childLabels[e.ID]
		}
		m.Shapes.Set(c.ID, s)
	}

	for el := m.Shapes.Front(); el != nil; el = el.Next() {
		if e, ok := el.Value.(*Edge); ok {
			m.resolveEdge(e)
		}
	}

	return m
}

// ExtractFile parses and extracts the draw.io document at path.
func ExtractFile(path string, n cardinality.Notation) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open diagram: %w", err)
	}
	defer f.Close()

	cells, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Extract(cells, n), nil
}

func classify(c Cell) Shape {
	if c.Edge {
		return &Edge{
			ID:     c.ID,
			Source: c.Source,
			Target: c.Target,
			Style:  c.Style,
			Label:  cleanLabel(c.Value),
		}
	}

	style := parseStyle(c.Style)
	weak := style["double"] == "1"

	switch {
	case isEntityStyle(c.Style, style):
		return &Entity{ID: c.ID, Name: cleanLabel(c.Value), Weak: weak}
	case style.has("rhombus"):
		return &Relation{ID: c.ID, Name: cleanLabel(c.Value), Weak: weak}
	case style.has("ellipse"):
		return &Attribute{
			ID:         c.ID,
			Name:       cleanLabel(c.Value),
			PrimaryKey: underlined(style, c.Value),
		}
	}
	return nil
}

func isEntityStyle(raw string, style styleMap) bool {
	switch style["shape"] {
	case "rectangle", "ext", "associativeEntity":
		return true
	}
	return strings.TrimSpace(raw) == plainEntityStyle
}

// underlined reports whether an attribute is drawn as a key: either the
// underline bit of fontStyle is set or the label is wrapped in <u> markup.
func underlined(style styleMap, value string) bool {
	if fs, ok := style["fontStyle"]; ok {
		if bits, err := strconv.Atoi(fs); err == nil && bits&4 != 0 {
			return true
		}
	}
	v := strings.ToLower(html.UnescapeString(strings.TrimSpace(value)))
	return strings.HasPrefix(v, "<u>") && strings.HasSuffix(v, "</u>")
}

func (m *Model) resolveEdge(e *Edge) {
	if e.Source == "" || e.Target == "" {
		m.Diagnostics.Add(diag.MalformedDiagram, e.ID, "edge has a missing endpoint")
		return
	}

	src, ok := m.Shapes.Get(e.Source)
	if !ok {
		m.Diagnostics.Add(diag.MalformedDiagram, e.ID, "edge source %q is not an entity, relation or attribute", e.Source)
		return
	}
	dst, ok := m.Shapes.Get(e.Target)
	if !ok {
		m.Diagnostics.Add(diag.MalformedDiagram, e.ID, "edge target %q is not an entity, relation or attribute", e.Target)
		return
	}

	switch s := src.(type) {
	case *Attribute:
		if m.attach(dst, s) {
			return
		}
	case *Entity:
		switch d := dst.(type) {
		case *Attribute:
			if m.attach(s, d) {
				return
			}
		case *Relation:
			m.addEnd(d, s, e)
			return
		}
	case *Relation:
		switch d := dst.(type) {
		case *Attribute:
			if m.attach(s, d) {
				return
			}
		case *Entity:
			m.addEnd(s, d, e)
			return
		}
	}

	m.Diagnostics.Add(diag.MalformedDiagram, e.ID, "edge between %s %q and %s %q is not valid", src.Kind(), e.Source, dst.Kind(), e.Target)
}

func (m *Model) attach(owner Shape, a *Attribute) bool {
	switch o := owner.(type) {
	case *Entity:
		o.Attributes = append(o.Attributes, a)
	case *Relation:
		o.Attributes = append(o.Attributes, a)
	default:
		return false
	}
	return true
}

func (m *Model) addEnd(r *Relation, e *Entity, edge *Edge) {
	rel, ok := m.Relationships.Get(r.ID)
	if !ok {
		rel = &Relationship{RelationID: r.ID}
		m.Relationships.Set(r.ID, rel)
	}
	rel.Ends = append(rel.Ends, End{
		EntityID:    e.ID,
		EdgeID:      edge.ID,
		Cardinality: cardinality.Classify(m.Notation, edge.Style, edge.Label),
	})
}

// cleanLabel turns an HTML cell value into plain text.
func cleanLabel(value string) string {
	s := html.UnescapeString(value)
	s = breakPattern.ReplaceAllString(s, " ")
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

type styleMap map[string]string

func (s styleMap) has(key string) bool {
	if _, ok := s[key]; ok {
		return true
	}
	return s["shape"] == key
}

// parseStyle splits a draw.io style string into its entries. Bare entries
// such as "ellipse" map to the empty string.
func parseStyle(style string) styleMap {
	out := styleMap{}
	for _, part := range strings.Split(style, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		out[k] = v
	}
	return out
}
