package graph

import (
	"fmt"

	"github.com/samber/lo"
)

// CompositionGraph is the DAG of a reactor's shapes. Roots are the
// reactor members in insertion order.
type CompositionGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
}

// New creates an empty CompositionGraph.
func New() *CompositionGraph {
	return &CompositionGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *CompositionGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
}

// AddRoot registers a node ID as a root of the graph and indexes its
// name. A repeated name keeps the first root.
func (g *CompositionGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
	if n := g.Nodes[id]; n != nil && n.Name != "" {
		if _, taken := g.NameIndex[n.Name]; !taken {
			g.NameIndex[n.Name] = id
		}
	}
}

// Lookup returns the root with the given name, or nil.
func (g *CompositionGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the root with the given name, or panics.
func (g *CompositionGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *CompositionGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// RootNodes returns the existing roots in insertion order.
func (g *CompositionGraph) RootNodes() []*Node {
	return lo.FilterMap(g.Roots, func(id NodeID, _ int) (*Node, bool) {
		n, ok := g.Nodes[id]
		return n, ok
	})
}

// Children returns the operand nodes of n, in edge order.
func (g *CompositionGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, e := range n.Children {
		if c := g.Nodes[e.To]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// SetBounds records the bounding box of a node.
func (g *CompositionGraph) SetBounds(id NodeID, b Box) {
	if n := g.Nodes[id]; n != nil {
		n.Bounds = &b
	}
}

// NodeCount returns the total number of nodes.
func (g *CompositionGraph) NodeCount() int {
	return len(g.Nodes)
}
