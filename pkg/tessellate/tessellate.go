// Package tessellate walks a composition graph and produces triangle meshes
// through a shape.Builder. One mesh is produced per reactor member.
package tessellate

import (
	"context"
	"fmt"
	"math"

	"github.com/chazu/reactorcad/pkg/graph"
	"github.com/chazu/reactorcad/pkg/kernel"
	"github.com/chazu/reactorcad/pkg/shape"
)

// Options control a tessellation pass.
type Options struct {
	// Cells overrides the builder's mesh resolution when positive.
	Cells int
	// CellSize, when positive, derives each member's resolution from its
	// recorded bounds so that every member is meshed at the same edge
	// length. Members without bounds fall back to Cells.
	CellSize float64
	// Cutter, when set, is removed from every shape member. Wedge and
	// graveyard members are meshed as they are.
	Cutter *shape.Shape
	// Skip lists member kinds that produce no mesh.
	Skip []graph.NodeKind
}

// Option configures Options.
type Option func(*Options)

// WithCells sets the marching cubes resolution.
func WithCells(n int) Option {
	return func(o *Options) { o.Cells = n }
}

// WithCellSize meshes members at a uniform cell edge length.
func WithCellSize(size float64) Option {
	return func(o *Options) { o.CellSize = size }
}

// WithCutter removes c from every shape member.
func WithCutter(c *shape.Shape) Option {
	return func(o *Options) { o.Cutter = c }
}

// WithoutKinds skips members of the given kinds.
func WithoutKinds(kinds ...graph.NodeKind) Option {
	return func(o *Options) { o.Skip = append(o.Skip, kinds...) }
}

// Tessellate walks the graph roots in insertion order and returns one mesh
// per member. Operand nodes are consumed by their owner's booleans and are
// never meshed on their own. The graph is not mutated.
func Tessellate(ctx context.Context, g *graph.CompositionGraph, b *shape.Builder, opts ...Option) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	cells := o.Cells
	if cells <= 0 {
		cells = b.Cells()
	}

	var meshes []*kernel.Mesh
	for _, rootID := range g.Roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := g.Get(rootID)
		if n == nil || skipped(o.Skip, n.Kind) {
			continue
		}
		m, err := meshNode(b, n, o.Cutter, cellsFor(n, o.CellSize, cells))
		if err != nil {
			return nil, fmt.Errorf("tessellate: member %s: %w", n.Label(), err)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// Resolution bounds for derived cell counts.
const (
	minCells = 8
	maxCells = 512
)

func cellsFor(n *graph.Node, size float64, fallback int) int {
	if size <= 0 || n.Bounds == nil {
		return fallback
	}
	var extent float64
	for i := 0; i < 3; i++ {
		extent = math.Max(extent, n.Bounds.Max[i]-n.Bounds.Min[i])
	}
	cells := int(math.Ceil(extent / size))
	return min(max(cells, minCells), maxCells)
}

func skipped(kinds []graph.NodeKind, k graph.NodeKind) bool {
	for _, s := range kinds {
		if s == k {
			return true
		}
	}
	return false
}

// meshNode meshes a single member.
func meshNode(b *shape.Builder, n *graph.Node, cutter *shape.Shape, cells int) (*kernel.Mesh, error) {
	if n.Shape == nil {
		return nil, fmt.Errorf("%v node has no shape", n.Kind)
	}
	switch n.Kind {
	case graph.NodeShape:
		return b.MeshWithout(n.Shape, cutter, cells)
	case graph.NodeWedge, graph.NodeGraveyard:
		return b.MeshCells(n.Shape, cells)
	default:
		return nil, fmt.Errorf("unsupported node kind: %v", n.Kind)
	}
}
