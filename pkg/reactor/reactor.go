// Package reactor assembles shapes into a reactor and exports it.
//
// A Reactor is an ordered list of shapes. It never mutates its members: the
// graveyard and sector wedge are synthesized on demand and every export
// walks the members in insertion order.
package reactor

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
	"github.com/chazu/reactorcad/pkg/graph"
	"github.com/chazu/reactorcad/pkg/kernel/sdfx"
	"github.com/chazu/reactorcad/pkg/shape"
)

// Graveyard naming. DAGMC requires the graveyard material to be "graveyard".
const (
	GraveyardName     = "graveyard"
	GraveyardMaterial = "graveyard"
)

// PlasmaMaterial is the material tag that marks a member as plasma.
const PlasmaMaterial = "DT_plasma"

// Config holds the reactor-wide export settings.
type Config struct {
	// GraveyardSize is the inner edge of the graveyard. Zero derives it
	// from the largest dimension and GraveyardOffset.
	GraveyardSize      float64    `yaml:"graveyard_size" json:"graveyard_size,omitempty"`
	GraveyardOffset    float64    `yaml:"graveyard_offset" json:"graveyard_offset,omitempty"`
	GraveyardThickness float64    `yaml:"graveyard_thickness" json:"graveyard_thickness,omitempty"`
	GraveyardCenter    [3]float64 `yaml:"graveyard_center" json:"graveyard_center,omitempty"`
	IncludeGraveyard   bool       `yaml:"include_graveyard" json:"include_graveyard"`

	FacetingTolerance float64 `yaml:"faceting_tolerance" json:"faceting_tolerance,omitempty"`
	MergeTolerance    float64 `yaml:"merge_tolerance" json:"merge_tolerance,omitempty"`
	MinMeshSize       float64 `yaml:"min_mesh_size" json:"min_mesh_size,omitempty"`
	MaxMeshSize       float64 `yaml:"max_mesh_size" json:"max_mesh_size,omitempty"`
	// MeshCells fixes the marching cubes resolution of every export when
	// positive, overriding the mesh sizes.
	MeshCells int `yaml:"mesh_cells" json:"mesh_cells,omitempty"`

	// Units is the STEP length unit, "mm" or "cm".
	Units         string `yaml:"units" json:"units,omitempty"`
	ExcludePlasma bool   `yaml:"exclude_plasma" json:"exclude_plasma,omitempty"`
}

// DefaultConfig returns the export defaults.
func DefaultConfig() Config {
	return Config{
		GraveyardOffset:    100,
		GraveyardThickness: 10,
		IncludeGraveyard:   true,
		FacetingTolerance:  1e-1,
		MergeTolerance:     1e-4,
		MinMeshSize:        5,
		MaxMeshSize:        20,
		Units:              "mm",
	}
}

// Validate checks the numeric settings.
func (c Config) Validate() error {
	const op = "reactor.Config"
	for name, v := range map[string]float64{
		"graveyard_size":     c.GraveyardSize,
		"graveyard_offset":   c.GraveyardOffset,
		"faceting_tolerance": c.FacetingTolerance,
		"merge_tolerance":    c.MergeTolerance,
		"min_mesh_size":      c.MinMeshSize,
		"max_mesh_size":      c.MaxMeshSize,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errdefs.Invalidf(op, "%s must be a finite non-negative number, got %v", name, v)
		}
	}
	if !(c.GraveyardThickness > 0) {
		return errdefs.Invalidf(op, "graveyard_thickness must be positive, got %v", c.GraveyardThickness)
	}
	if c.MaxMeshSize < c.MinMeshSize {
		return errdefs.Invalidf(op, "max_mesh_size %v is below min_mesh_size %v", c.MaxMeshSize, c.MinMeshSize)
	}
	if c.MeshCells < 0 {
		return errdefs.Invalidf(op, "mesh_cells must not be negative, got %d", c.MeshCells)
	}
	if _, err := unitTag(c.Units); err != nil {
		return err
	}
	return nil
}

// cellSize is the marching cubes edge length implied by the mesh sizes.
func (c Config) cellSize() float64 {
	return (c.MinMeshSize + c.MaxMeshSize) / 2
}

// Reactor is an ordered collection of shapes.
type Reactor struct {
	cfg     Config
	builder *shape.Builder
	log     *zap.Logger
	shapes  []*shape.Shape
}

// Option configures a Reactor.
type Option func(*Reactor)

// WithConfig replaces the default configuration.
func WithConfig(c Config) Option {
	return func(r *Reactor) { r.cfg = c }
}

// WithBuilder sets the shape builder, and with it the kernel.
func WithBuilder(b *shape.Builder) Option {
	return func(r *Reactor) { r.builder = b }
}

// WithLogger sets the logger. Each exported file is logged at info level.
func WithLogger(l *zap.Logger) Option {
	return func(r *Reactor) {
		if l != nil {
			r.log = l
		}
	}
}

// New returns an empty reactor. Without WithBuilder it builds through a
// fresh sdfx kernel.
func New(opts ...Option) *Reactor {
	r := &Reactor{cfg: DefaultConfig(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.builder == nil {
		r.builder = shape.NewBuilder(sdfx.New(), shape.WithLogger(r.log))
	}
	return r
}

// Add appends shapes. Nil shapes are ignored.
func (r *Reactor) Add(shapes ...*shape.Shape) {
	for _, s := range shapes {
		if s != nil {
			r.shapes = append(r.shapes, s)
		}
	}
}

// Shapes returns the members in insertion order.
func (r *Reactor) Shapes() []*shape.Shape {
	return append([]*shape.Shape(nil), r.shapes...)
}

// ShapeNames returns the member names in insertion order.
func (r *Reactor) ShapeNames() []string {
	return lo.Map(r.shapes, func(s *shape.Shape, _ int) string { return s.Name() })
}

// Lookup returns the member with the given name, or nil.
func (r *Reactor) Lookup(name string) *shape.Shape {
	s, _ := lo.Find(r.shapes, func(s *shape.Shape) bool { return s.Name() == name })
	return s
}

// Config returns the reactor configuration.
func (r *Reactor) Config() Config { return r.cfg }

// Builder returns the shape builder.
func (r *Reactor) Builder() *shape.Builder { return r.builder }

// Warnings collects the advisories of every member.
func (r *Reactor) Warnings() []errdefs.Warning {
	return lo.FlatMap(r.shapes, func(s *shape.Shape, _ int) []errdefs.Warning { return s.Warnings() })
}

// ---------------------------------------------------------------------------
// Collective geometry
// ---------------------------------------------------------------------------

// BoundingBox returns a box containing every member's bounding box.
func (r *Reactor) BoundingBox(ctx context.Context) (graph.Box, error) {
	boxes, err := r.boxes(ctx)
	if err != nil {
		return graph.Box{}, err
	}
	if len(boxes) == 0 {
		return graph.Box{}, errdefs.Geometryf("reactor.BoundingBox", "reactor has no shapes")
	}
	out := boxes[0]
	for _, b := range boxes[1:] {
		out = out.Union(b)
	}
	return out, nil
}

// boxes returns each member's bounding box in insertion order.
func (r *Reactor) boxes(ctx context.Context) ([]graph.Box, error) {
	out := make([]graph.Box, 0, len(r.shapes))
	for _, s := range r.shapes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		min, max, err := s.BoundingBox(r.builder)
		if err != nil {
			return nil, errdefs.WithSubject(err, s.Name())
		}
		out = append(out, graph.Box{Min: min, Max: max})
	}
	return out, nil
}

// LargestDimension returns the largest absolute coordinate of the
// reactor's bounding box.
func (r *Reactor) LargestDimension(ctx context.Context) (float64, error) {
	b, err := r.BoundingBox(ctx)
	if err != nil {
		return 0, err
	}
	var largest float64
	for i := 0; i < 3; i++ {
		largest = math.Max(largest, math.Max(math.Abs(b.Min[i]), math.Abs(b.Max[i])))
	}
	return largest, nil
}

// Volumes maps each member name to its volume. With split, members with
// several placement angles report one volume per copy.
func (r *Reactor) Volumes(ctx context.Context, split bool) (map[string][]float64, error) {
	out := make(map[string][]float64, len(r.shapes))
	for _, s := range r.shapes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := s.Volumes(r.builder, split)
		if err != nil {
			return nil, errdefs.WithSubject(err, s.Name())
		}
		out[s.Name()] = v
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Graveyard and sector wedge
// ---------------------------------------------------------------------------

// Graveyard returns the hollow cube enclosing every member. An explicit
// GraveyardSize sets the inner edge; otherwise it is twice the largest
// dimension plus the offset.
func (r *Reactor) Graveyard(ctx context.Context) (*shape.Shape, error) {
	size := r.cfg.GraveyardSize
	if size <= 0 {
		largest, err := r.LargestDimension(ctx)
		if err != nil {
			return nil, fmt.Errorf("reactor: sizing graveyard: %w", err)
		}
		size = 2 * (largest + r.cfg.GraveyardOffset)
	}
	return r.graveyard(size)
}

func (r *Reactor) graveyard(size float64) (*shape.Shape, error) {
	g, err := shape.NewHollowCube(GraveyardName, GraveyardMaterial, size, r.cfg.GraveyardThickness, r.cfg.GraveyardCenter)
	if err != nil {
		return nil, err
	}
	if err := g.SetStpFilename(GraveyardName + ".stp"); err != nil {
		return nil, err
	}
	if err := g.SetStlFilename(GraveyardName + ".stl"); err != nil {
		return nil, err
	}
	return g, nil
}

// RotationAngle returns the smallest revolve angle among the members, or
// 360 for a full reactor.
func (r *Reactor) RotationAngle() float64 {
	rot := 360.0
	for _, s := range r.shapes {
		rot = math.Min(rot, s.RevolveAngle())
	}
	return rot
}

// SectorWedge returns the reflecting wedge that closes a partial reactor,
// sized from twice the largest dimension. Full reactors yield nil.
func (r *Reactor) SectorWedge(ctx context.Context) (*shape.Shape, error) {
	rot := r.RotationAngle()
	if rot >= 360 {
		return nil, nil
	}
	largest, err := r.LargestDimension(ctx)
	if err != nil {
		return nil, fmt.Errorf("reactor: sizing sector wedge: %w", err)
	}
	return shape.SectorWedge(2*largest, 2*largest, rot)
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

// Graph returns the composition graph of the members.
func (r *Reactor) Graph() *graph.CompositionGraph {
	return graph.FromShapes(r.shapes...)
}

// Validate builds the composition graph and runs every validation tier.
// Structural errors stop before any geometry is built; otherwise member
// bounds are recorded for the overlap advisories. The returned error
// reports kernel failures while measuring bounds.
func (r *Reactor) Validate(ctx context.Context) (graph.ValidationResult, error) {
	g := r.Graph()
	if errs := graph.Validate(g); len(errs) > 0 {
		return graph.ValidationResult{Errors: errs}, nil
	}
	if err := r.recordBounds(ctx, g); err != nil {
		return graph.ValidationResult{}, err
	}
	return graph.ValidateAll(g), nil
}

// recordBounds measures every root of g and stores the box on its node.
func (r *Reactor) recordBounds(ctx context.Context, g *graph.CompositionGraph) error {
	for _, n := range g.RootNodes() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n.Shape == nil {
			continue
		}
		min, max, err := n.Shape.BoundingBox(r.builder)
		if err != nil {
			return errdefs.WithSubject(err, n.Name)
		}
		g.SetBounds(n.ID, graph.Box{Min: min, Max: max})
	}
	return nil
}

// ---------------------------------------------------------------------------
// Export staging
// ---------------------------------------------------------------------------

// staged is the pure per-member data every export needs.
type staged struct {
	shape  *shape.Shape
	hash   string
	points []geom.Point
	stp    string
	stl    string
}

// stage hashes and processes every shape in parallel, then checks names
// and filenames. It makes no kernel calls.
func (r *Reactor) stage(ctx context.Context, shapes []*shape.Shape) ([]staged, error) {
	const op = "reactor.stage"
	out := make([]staged, len(shapes))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range shapes {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			if strings.TrimSpace(s.Name()) == "" {
				return errdefs.New(errdefs.KindExport, op, "", fmt.Errorf("member %d has no name", i))
			}
			h, err := s.Hash()
			if err != nil {
				return errdefs.WithSubject(err, s.Name())
			}
			pts, err := s.ProcessedPoints()
			if err != nil {
				return errdefs.WithSubject(err, s.Name())
			}
			out[i] = staged{shape: s, hash: h, points: pts, stp: s.StpFilename(), stl: s.StlFilename()}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if err := unique(op, "name", lo.Map(out, func(s staged, _ int) string { return s.shape.Name() })); err != nil {
		return nil, err
	}
	if err := unique(op, "stp filename", lo.Map(out, func(s staged, _ int) string { return s.stp })); err != nil {
		return nil, err
	}
	if err := unique(op, "stl filename", lo.Map(out, func(s staged, _ int) string { return s.stl })); err != nil {
		return nil, err
	}
	return out, nil
}

func unique(op, what string, values []string) error {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return errdefs.New(errdefs.KindExport, op, v, fmt.Errorf("duplicate %s %q", what, v))
		}
		seen[v] = true
	}
	return nil
}

// isPlasma reports whether s is the plasma member.
func isPlasma(s *shape.Shape) bool {
	return s.Name() == "plasma" || s.Material() == PlasmaMaterial
}

// neutronicsShapes returns the members that take part in neutronics
// exports.
func (r *Reactor) neutronicsShapes() []*shape.Shape {
	if !r.cfg.ExcludePlasma {
		return r.Shapes()
	}
	return lo.Reject(r.shapes, func(s *shape.Shape, _ int) bool { return isPlasma(s) })
}

// solidMembers returns the members for solid exports: every shape, then
// the sector wedge when one exists, then the graveyard when enabled.
func (r *Reactor) solidMembers(ctx context.Context) ([]*shape.Shape, error) {
	members := r.Shapes()
	wedge, err := r.SectorWedge(ctx)
	if err != nil {
		return nil, err
	}
	if wedge != nil {
		members = append(members, wedge)
	}
	if r.cfg.IncludeGraveyard {
		g, err := r.Graveyard(ctx)
		if err != nil {
			return nil, err
		}
		members = append(members, g)
	}
	return members, nil
}

// cellsFor returns the marching cubes resolution for s.
func (r *Reactor) cellsFor(s *shape.Shape) (int, error) {
	if r.cfg.MeshCells > 0 {
		return r.cfg.MeshCells, nil
	}
	if r.cfg.cellSize() <= 0 {
		return r.builder.Cells(), nil
	}
	bmin, bmax, err := s.BoundingBox(r.builder)
	if err != nil {
		return 0, err
	}
	var extent float64
	for i := 0; i < 3; i++ {
		extent = math.Max(extent, bmax[i]-bmin[i])
	}
	cells := int(math.Ceil(extent / r.cfg.cellSize()))
	return min(max(cells, 8), 512), nil
}
