package domain

import "fmt"

// GraphFragment is the exported graph of one analyzed host
type GraphFragment struct {
	Host  string `json:"host,omitempty"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewGraphFragment creates an empty graph fragment
func NewGraphFragment() *GraphFragment {
	return &GraphFragment{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// AddNode adds a node to the fragment
func (g *GraphFragment) AddNode(node Node) {
	g.Nodes = append(g.Nodes, node)
}

// AddEdge adds an edge to the fragment
func (g *GraphFragment) AddEdge(edge Edge) {
	g.Edges = append(g.Edges, edge)
}

// FindNode returns the node with the given ID, or nil
func (g *GraphFragment) FindNode(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// EdgesOfType returns every edge of the given type, in fragment order
func (g *GraphFragment) EdgesOfType(t EdgeType) []Edge {
	var edges []Edge
	for _, e := range g.Edges {
		if e.Type == t {
			edges = append(edges, e)
		}
	}
	return edges
}

// Validate checks that node IDs are unique and every edge joins two nodes of the fragment
func (g *GraphFragment) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node with empty id")
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node %q", n.ID)
		}
		seen[n.ID] = true
	}
	for _, e := range g.Edges {
		if !seen[e.FromID] || !seen[e.ToID] {
			return fmt.Errorf("%s edge %s -> %s references a missing node", e.Type, e.FromID, e.ToID)
		}
	}
	return nil
}
