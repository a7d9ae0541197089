package graph

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/chazu/reactorcad/pkg/shape"
)

// NodeID identifies a node within one graph.
type NodeID string

// NewNodeID derives a NodeID from a key.
func NewNodeID(key string) NodeID {
	sum := blake2b.Sum256([]byte(key))
	return NodeID(hex.EncodeToString(sum[:]))
}

func (id NodeID) String() string { return string(id) }

// Short returns the first 8 characters of the ID.
func (id NodeID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool { return id == "" }

// NodeKind enumerates the types of nodes in the composition graph.
type NodeKind int

const (
	NodeShape     NodeKind = iota // a shape built from a profile
	NodeSolid                     // a raw kernel solid operand
	NodeWedge                     // a sector or cutting wedge
	NodeGraveyard                 // the neutronics graveyard
)

func (k NodeKind) String() string {
	switch k {
	case NodeShape:
		return "shape"
	case NodeSolid:
		return "solid"
	case NodeWedge:
		return "wedge"
	case NodeGraveyard:
		return "graveyard"
	default:
		return "unknown"
	}
}

// Op is the boolean operation an edge applies.
type Op int

const (
	OpCut Op = iota
	OpIntersect
	OpUnion
)

func (o Op) String() string {
	switch o {
	case OpCut:
		return "cut"
	case OpIntersect:
		return "intersect"
	case OpUnion:
		return "union"
	default:
		return "unknown"
	}
}

// Edge points from a shape to one of its boolean operands.
type Edge struct {
	Op Op     `json:"op"`
	To NodeID `json:"to"`
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// Contains reports whether o lies inside b, within tol.
func (b Box) Contains(o Box, tol float64) bool {
	for i := 0; i < 3; i++ {
		if o.Min[i] < b.Min[i]-tol || o.Max[i] > b.Max[i]+tol {
			return false
		}
	}
	return true
}

// Overlap returns the volume shared by b and o.
func (b Box) Overlap(o Box) float64 {
	v := 1.0
	for i := 0; i < 3; i++ {
		lo := max(b.Min[i], o.Min[i])
		hi := min(b.Max[i], o.Max[i])
		if hi <= lo {
			return 0
		}
		v *= hi - lo
	}
	return v
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], o.Min[i])
		b.Max[i] = max(b.Max[i], o.Max[i])
	}
	return b
}

// Node is one shape or operand of the composition graph.
type Node struct {
	ID          NodeID   `json:"id"`
	Kind        NodeKind `json:"kind"`
	Name        string   `json:"name,omitempty"`
	Material    string   `json:"material,omitempty"`
	ContentHash string   `json:"content_hash,omitempty"`
	Children    []Edge   `json:"children,omitempty"`
	Bounds      *Box     `json:"bounds,omitempty"`

	// Shape is the source shape, nil for raw solids.
	Shape *shape.Shape `json:"-"`
}

// Label returns the node name, or its short ID when unnamed.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}
