// Package graph provides the foreign-key dependency graph used to order
// table creation, with Kahn's topological sort and cycle diagnostics.
//
// An edge runs from a referenced (parent) table to the table holding the
// foreign key (child). Nodes and edges keep insertion order so every
// traversal is deterministic.
package graph

// Node represents a table in the dependency graph.
type Node struct {
	ID   string // stable identifier (diagram cell id or table name)
	Name string // display name used in messages
}

// Edge represents a dependency relationship between tables.
type Edge struct {
	From string // referenced table
	To   string // referencing table
}

// EdgeMeta contains metadata about an edge relationship.
type EdgeMeta struct {
	Columns     []string // FK columns in the child table
	RefColumns  []string // key columns in the parent table
	Identifying bool     // FK columns are part of the child's primary key
}

// Graph is a directed dependency graph over tables.
type Graph struct {
	Nodes        map[string]*Node
	Children     map[string][]string // table -> tables referencing it
	Parents      map[string][]string // table -> tables it references
	order        []string
	edgeMetadata map[Edge]*EdgeMeta
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:        make(map[string]*Node),
		Children:     make(map[string][]string),
		Parents:      make(map[string][]string),
		edgeMetadata: make(map[Edge]*EdgeMeta),
	}
}

// AddNode adds a table node. Adding an existing id with a non-empty name
// updates its name but keeps its original position.
func (g *Graph) AddNode(id, name string) {
	if n, exists := g.Nodes[id]; exists {
		if name != "" {
			n.Name = name
		}
		return
	}
	if name == "" {
		name = id
	}
	g.Nodes[id] = &Node{ID: id, Name: name}
	g.order = append(g.order, id)
}

// AddEdge adds a parent -> child relationship. Unknown endpoints are added as
// nodes, duplicate edges and self references are ignored.
func (g *Graph) AddEdge(parent, child string) bool {
	if parent == child {
		return false
	}
	for _, c := range g.Children[parent] {
		if c == child {
			return false
		}
	}

	g.AddNode(parent, "")
	g.AddNode(child, "")
	g.Children[parent] = append(g.Children[parent], child)
	g.Parents[child] = append(g.Parents[child], parent)
	return true
}

// AddEdgeWithMeta adds an edge with metadata about the relationship.
func (g *Graph) AddEdgeWithMeta(parent, child string, meta EdgeMeta) bool {
	if !g.AddEdge(parent, child) {
		return false
	}
	m := meta
	g.edgeMetadata[Edge{From: parent, To: child}] = &m
	return true
}

// GetChildren returns the tables referencing parent.
func (g *Graph) GetChildren(parent string) []string {
	return g.Children[parent]
}

// GetParents returns the tables child references.
func (g *Graph) GetParents(child string) []string {
	return g.Parents[child]
}

// GetNode returns the node for an id, or nil if not found.
func (g *Graph) GetNode(id string) *Node {
	return g.Nodes[id]
}

// GetEdgeMeta returns metadata for an edge, or nil if not found.
func (g *Graph) GetEdgeMeta(parent, child string) *EdgeMeta {
	return g.edgeMetadata[Edge{From: parent, To: child}]
}

// HasNode returns true if the graph contains a node with the given id.
func (g *Graph) HasNode(id string) bool {
	_, exists := g.Nodes[id]
	return exists
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.Children {
		count += len(children)
	}
	return count
}

// AllNodes returns node ids in insertion order.
func (g *Graph) AllNodes() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// AllEdges returns every edge, grouped by parent in insertion order.
func (g *Graph) AllEdges() []Edge {
	var edges []Edge
	for _, parent := range g.order {
		for _, child := range g.Children[parent] {
			edges = append(edges, Edge{From: parent, To: child})
		}
	}
	return edges
}

// Roots returns tables that reference nothing.
func (g *Graph) Roots() []string {
	var roots []string
	for _, id := range g.order {
		if len(g.Parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// InDegree returns the number of tables a node references.
func (g *Graph) InDegree(id string) int {
	return len(g.Parents[id])
}

// OutDegree returns the number of tables referencing a node.
func (g *Graph) OutDegree(id string) int {
	return len(g.Children[id])
}

// names maps ids to display names.
func (g *Graph) names(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if n := g.Nodes[id]; n != nil {
			out[i] = n.Name
		} else {
			out[i] = id
		}
	}
	return out
}
