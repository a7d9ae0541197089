package graph

import (
	"fmt"

	"github.com/chazu/reactorcad/pkg/shape"
)

// FromShapes builds the graph whose roots are members, in order. A shape
// reached more than once maps to a single node, so a reference cycle
// between shapes becomes a cycle in the graph and is reported by
// Validate rather than followed.
func FromShapes(members ...*shape.Shape) *CompositionGraph {
	g := New()
	ids := make(map[*shape.Shape]NodeID)
	solids := make(map[shape.Solid]NodeID)

	var add func(s *shape.Shape) NodeID
	add = func(s *shape.Shape) NodeID {
		if id, ok := ids[s]; ok {
			return id
		}
		id := NewNodeID(fmt.Sprintf("shape/%d", len(ids)))
		ids[s] = id
		n := &Node{
			ID:       id,
			Kind:     kindOf(s),
			Name:     s.Name(),
			Material: s.Material(),
			Shape:    s,
		}
		// Hash fails on cycles; the node is still added.
		if h, err := s.Hash(); err == nil {
			n.ContentHash = h
		}
		g.AddNode(n)

		lists := []struct {
			op  Op
			ops []shape.Operand
		}{{OpCut, s.Cut()}, {OpIntersect, s.Intersect()}, {OpUnion, s.Union()}}
		for _, l := range lists {
			for _, o := range l.ops {
				switch v := o.(type) {
				case *shape.Shape:
					if v == nil {
						continue
					}
					n.Children = append(n.Children, Edge{Op: l.op, To: add(v)})
				case shape.Solid:
					sid, ok := solids[v]
					if !ok {
						sid = NewNodeID(fmt.Sprintf("solid/%d", len(solids)))
						solids[v] = sid
						g.AddNode(&Node{ID: sid, Kind: NodeSolid})
					}
					n.Children = append(n.Children, Edge{Op: l.op, To: sid})
				}
			}
		}
		return id
	}

	for _, s := range members {
		if s == nil {
			continue
		}
		g.AddRoot(add(s))
	}
	return g
}

func kindOf(s *shape.Shape) NodeKind {
	switch {
	case s.Name() == shape.SectorWedgeName || s.Name() == shape.CuttingWedgeName:
		return NodeWedge
	case isHollowCube(s):
		return NodeGraveyard
	default:
		return NodeShape
	}
}

func isHollowCube(s *shape.Shape) bool {
	_, ok := s.Verb().(shape.HollowCube)
	return ok
}
