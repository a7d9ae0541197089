package shape

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/kernel"
)

// DefaultCacheSize is the number of solids a Builder keeps by default.
const DefaultCacheSize = 256

// Builder turns shapes into kernel solids. Every kernel call goes through
// its mutex, so a Builder may be shared between goroutines while the
// kernel itself stays single-threaded. Built solids are cached by content
// hash on the shape and in a shared LRU.
type Builder struct {
	kernel kernel.Kernel
	log    *zap.Logger
	cells  int
	size   int

	mu     sync.Mutex
	solids *lru.Cache[string, kernel.Solid]
	meshes *lru.Cache[string, *kernel.Mesh]
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger. Builds are logged at debug level.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithMeshCells sets the marching cubes resolution used for volumes,
// bounding boxes and meshes. Zero uses the kernel default.
func WithMeshCells(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.cells = n
		}
	}
}

// WithCacheSize sets the capacity of the solid and mesh caches.
func WithCacheSize(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.size = n
		}
	}
}

// NewBuilder returns a Builder over k.
func NewBuilder(k kernel.Kernel, opts ...BuilderOption) *Builder {
	b := &Builder{kernel: k, log: zap.NewNop(), size: DefaultCacheSize}
	for _, o := range opts {
		o(b)
	}
	// lru.New only fails for a non-positive size.
	b.solids, _ = lru.New[string, kernel.Solid](b.size)
	b.meshes, _ = lru.New[string, *kernel.Mesh](b.size)
	return b
}

// Kernel returns the underlying kernel.
func (b *Builder) Kernel() kernel.Kernel { return b.kernel }

// Cells returns the configured mesh resolution, 0 for the kernel
// default.
func (b *Builder) Cells() int { return b.cells }

// Logger returns the builder's logger.
func (b *Builder) Logger() *zap.Logger { return b.log }

// Solid builds s, or returns its cached solid when nothing changed since
// the last build.
func (b *Builder) Solid(s *Shape) (kernel.Solid, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.solid(s)
}

func (b *Builder) solid(s *Shape) (kernel.Solid, error) {
	h, err := s.Hash()
	if err != nil {
		return nil, err
	}
	if s.cache.builder == b && s.cache.hash == h && s.cache.solid != nil {
		return s.cache.solid, nil
	}
	if v, ok := b.solids.Get(h); ok {
		s.cache.builder, s.cache.hash, s.cache.solid = b, h, v
		return v, nil
	}

	start := time.Now()
	solid, err := b.build(s)
	if err != nil {
		return nil, err
	}
	b.solids.Add(h, solid)
	s.cache.builder, s.cache.hash, s.cache.solid = b, h, solid
	b.log.Debug("built shape",
		zap.String("name", s.name),
		zap.String("verb", s.verb.Name()),
		zap.String("hash", h[:12]),
		zap.Duration("elapsed", time.Since(start)))
	return solid, nil
}

// build runs the pipeline: wire, verb, placement copies, cut, sector trim,
// intersect, union, translate.
func (b *Builder) build(s *Shape) (kernel.Solid, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	base, err := b.verbSolid(s)
	if err != nil {
		return nil, err
	}

	origin, dir, _ := s.RotationAxis().Line()
	var solid kernel.Solid
	for _, angle := range sortedPlacement(s.placement) {
		c := b.kernel.RotateAxis(base, origin, dir, angle)
		if solid == nil {
			solid = c
		} else {
			solid = b.kernel.Union(solid, c)
		}
	}

	solid, err = b.booleans(s, solid, true)
	if err != nil {
		return nil, err
	}
	if t, ok := s.Translate(); ok {
		solid = b.kernel.Translate(solid, t[0], t[1], t[2])
	}
	return solid, nil
}

// booleans applies cut, the partial-extrude trim and intersect, then union
// when withUnion is set.
func (b *Builder) booleans(s *Shape, solid kernel.Solid, withUnion bool) (kernel.Solid, error) {
	operand := func(o Operand) (kernel.Solid, error) {
		switch v := o.(type) {
		case *Shape:
			return b.solid(v)
		case Solid:
			return v.Solid, nil
		}
		return nil, errdefs.New(errdefs.KindComposition, "shape.Solid", s.name, fmt.Errorf("unknown operand %T", o))
	}

	for _, o := range s.cut {
		t, err := operand(o)
		if err != nil {
			return nil, err
		}
		solid = b.kernel.Difference(solid, t)
	}
	if e, ok := s.verb.(Extrude); ok && e.partial() {
		wedge, err := CuttingWedgeFS(s)
		if err != nil {
			return nil, err
		}
		t, err := b.solid(wedge)
		if err != nil {
			return nil, err
		}
		solid = b.kernel.Difference(solid, t)
	}
	for _, o := range s.intersect {
		t, err := operand(o)
		if err != nil {
			return nil, err
		}
		solid = b.kernel.Intersection(solid, t)
	}
	if withUnion {
		for _, o := range s.union {
			t, err := operand(o)
			if err != nil {
				return nil, err
			}
			solid = b.kernel.Union(solid, t)
		}
	}
	return solid, nil
}

func sortedPlacement(p []float64) []float64 {
	out := append([]float64(nil), p...)
	sort.Float64s(out)
	return out
}

// verbSolid builds the single untransformed copy.
func (b *Builder) verbSolid(s *Shape) (kernel.Solid, error) {
	const op = "shape.Solid"
	if c, ok := s.verb.(HollowCube); ok {
		outer := c.Length + 2*c.Thickness
		shell := b.kernel.Difference(
			b.kernel.Box(outer, outer, outer),
			b.kernel.Box(c.Length, c.Length, c.Length))
		return b.kernel.Translate(shell, c.Center[0], c.Center[1], c.Center[2]), nil
	}

	wire, err := s.Wire()
	if err != nil {
		return nil, errdefs.WithSubject(err, s.name)
	}
	poly := kernel.Polygon(wire.Polygon())
	frame := s.workplane.Frame()

	var solid kernel.Solid
	switch v := s.verb.(type) {
	case Revolve:
		solid, err = b.kernel.Revolve(poly, frame, v.Angle)
	case Extrude:
		from, to := v.span()
		solid, err = b.kernel.Extrude(poly, frame, from, to)
	case Sweep:
		// Profile coordinates are relative to the first path point.
		frame.Origin = v.world(v.Path[0])
		solid, err = b.kernel.Sweep(poly, frame, v.path(), v.ForceCrossSection)
	default:
		return nil, errdefs.New(errdefs.KindInvalidParameter, op, s.name, fmt.Errorf("unsupported verb %T", s.verb))
	}
	if err != nil {
		return nil, errdefs.Kernel(op, s.name, err)
	}
	return solid, nil
}

// ---------------------------------------------------------------------------
// Meshes and measures
// ---------------------------------------------------------------------------

// Mesh tessellates s at the builder's resolution. The returned mesh is
// shared with the cache and must not be modified.
func (b *Builder) Mesh(s *Shape) (*kernel.Mesh, error) {
	return b.MeshCells(s, b.cells)
}

// MeshCells tessellates s with the given number of marching cubes cells
// along the longest axis. Hollow cubes are meshed exactly.
func (b *Builder) MeshCells(s *Shape, cells int) (*kernel.Mesh, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mesh(s, cells)
}

func (b *Builder) mesh(s *Shape, cells int) (*kernel.Mesh, error) {
	h, err := s.Hash()
	if err != nil {
		return nil, err
	}
	key := h + "/" + strconv.Itoa(cells)
	if m, ok := b.meshes.Get(key); ok {
		return m, nil
	}
	var m *kernel.Mesh
	if c, ok := s.verb.(HollowCube); ok && len(s.cut)+len(s.intersect)+len(s.union) == 0 && s.translate == nil {
		m = c.Mesh()
	} else {
		solid, err := b.solid(s)
		if err != nil {
			return nil, err
		}
		m, err = b.kernel.ToMeshCells(solid, cells)
		if err != nil {
			return nil, errdefs.Kernel("shape.Mesh", s.name, err)
		}
	}
	m.PartName = s.name
	b.meshes.Add(key, m)
	return m, nil
}

// MeshWithout tessellates s with cutter removed from it. Sector models use
// it to trim every member to the reactor's rotation.
func (b *Builder) MeshWithout(s, cutter *Shape, cells int) (*kernel.Mesh, error) {
	if cutter == nil {
		return b.MeshCells(s, cells)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	h, err := s.Hash()
	if err != nil {
		return nil, err
	}
	ch, err := cutter.Hash()
	if err != nil {
		return nil, err
	}
	key := h + "-" + ch + "/" + strconv.Itoa(cells)
	if m, ok := b.meshes.Get(key); ok {
		return m, nil
	}
	solid, err := b.solid(s)
	if err != nil {
		return nil, err
	}
	cut, err := b.solid(cutter)
	if err != nil {
		return nil, err
	}
	m, err := b.kernel.ToMeshCells(b.kernel.Difference(solid, cut), cells)
	if err != nil {
		return nil, errdefs.Kernel("shape.MeshWithout", s.name, err)
	}
	m.PartName = s.name
	b.meshes.Add(key, m)
	return m, nil
}

// ExportSTL writes s as binary STL.
func (b *Builder) ExportSTL(s *Shape, path string, cells int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := s.verb.(HollowCube); ok {
		m, err := b.mesh(s, cells)
		if err != nil {
			return err
		}
		if err := b.kernel.ExportMeshSTL(m, path); err != nil {
			return errdefs.IO("shape.ExportSTL", s.name, err)
		}
		return nil
	}
	solid, err := b.solid(s)
	if err != nil {
		return err
	}
	if err := b.kernel.ExportSTL(solid, path, cells); err != nil {
		return errdefs.IO("shape.ExportSTL", s.name, err)
	}
	return nil
}

// ExportMeshSTL writes an already tessellated mesh as binary STL.
func (b *Builder) ExportMeshSTL(m *kernel.Mesh, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.kernel.ExportMeshSTL(m, path); err != nil {
		return errdefs.IO("shape.ExportMeshSTL", m.PartName, err)
	}
	return nil
}

// Volume returns the volume of the shape's solid.
func (s *Shape) Volume(b *Builder) (float64, error) {
	if c, ok := s.verb.(HollowCube); ok && len(s.cut)+len(s.intersect)+len(s.union) == 0 {
		return c.Volume(), nil
	}
	m, err := b.Mesh(s)
	if err != nil {
		return 0, err
	}
	return m.Volume(), nil
}

// Volumes returns the total volume, or with split one volume per
// placement copy. Split copies carry the cut, sector trim and intersect
// operands but not the union operands.
func (s *Shape) Volumes(b *Builder, split bool) ([]float64, error) {
	if !split || len(s.placement) < 2 {
		v, err := s.Volume(b)
		if err != nil {
			return nil, err
		}
		return []float64{v}, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := s.Hash(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	base, err := b.verbSolid(s)
	if err != nil {
		return nil, err
	}
	origin, dir, _ := s.RotationAxis().Line()
	out := make([]float64, 0, len(s.placement))
	for _, angle := range sortedPlacement(s.placement) {
		c, err := b.booleans(s, b.kernel.RotateAxis(base, origin, dir, angle), false)
		if err != nil {
			return nil, err
		}
		m, err := b.kernel.ToMeshCells(c, b.cells)
		if err != nil {
			return nil, errdefs.Kernel("shape.Volumes", s.name, err)
		}
		out = append(out, m.Volume())
	}
	return out, nil
}

// BoundingBox returns the bounds of the shape's tessellation.
func (s *Shape) BoundingBox(b *Builder) (min, max [3]float64, err error) {
	if c, ok := s.verb.(HollowCube); ok && len(s.cut)+len(s.intersect)+len(s.union) == 0 && s.translate == nil {
		m := c.Mesh()
		min, max = m.Bounds()
		return min, max, nil
	}
	m, err := b.Mesh(s)
	if err != nil {
		return min, max, err
	}
	if m.IsEmpty() {
		return min, max, errdefs.Geometryf("shape.BoundingBox", "shape %q tessellates to an empty mesh", s.name)
	}
	min, max = m.Bounds()
	return min, max, nil
}
