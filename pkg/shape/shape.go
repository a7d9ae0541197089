// Package shape is the solid algebra of reactorcad.
//
// A Shape is a planar profile (points or a circle) drawn in a workplane and
// turned into a solid by a Verb. Copies are placed at azimuthal angles
// about a rotation axis, then combined with cut, intersect and union
// operands. Shapes are built through a Builder, which serialises kernel
// access and caches solids by content hash.
package shape

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
	"github.com/chazu/reactorcad/pkg/kernel"
	"github.com/chazu/reactorcad/pkg/profile"
)

// MaxMaterialTag is the longest material tag DAGMC accepts.
const MaxMaterialTag = 27

// Operand is one input of a cut, intersect or union: a *Shape or a raw
// kernel solid wrapped in Solid.
type Operand interface {
	operand()
}

// Solid wraps an already built kernel solid for use as an operand.
type Solid struct {
	kernel.Solid
}

func (Solid) operand() {}

func (*Shape) operand() {}

// Circle is a full circle profile.
type Circle struct {
	Center [2]float64 `yaml:"center" json:"center"`
	Radius float64    `yaml:"radius" json:"radius"`
}

// Params is the full construction form of a Shape.
type Params struct {
	Name     string
	Material string

	// Points is ignored when Circle is set or the verb is a HollowCube.
	Points     []geom.Point
	Connection geom.Kind
	Circle     *Circle

	Workplane    Workplane
	RotationAxis *Axis
	Verb         Verb
	// Placement holds azimuthal placement angles in degrees. Nil means a
	// single copy at 0.
	Placement []float64
	Translate *[3]float64

	Cut       []Operand
	Intersect []Operand
	Union     []Operand

	StpFilename         string
	StlFilename         string
	TetMesh             string
	SurfaceReflectivity bool
	PhysicalGroups      []profile.PhysicalGroup
	Color               *[3]float64
}

// Shape is a parametric solid description. Setters validate their argument
// and drop the cached solid.
type Shape struct {
	name     string
	material string

	points     []geom.Point
	connection geom.Kind
	circle     *Circle

	workplane Workplane
	axis      *Axis
	verb      Verb
	placement []float64
	translate *[3]float64

	cut, intersect, union []Operand

	stpFilename string
	stlFilename string
	tetMesh     string
	reflective  bool
	groups      []profile.PhysicalGroup
	color       *[3]float64
	warnings    []errdefs.Warning

	cache struct {
		builder *Builder
		hash    string
		solid   kernel.Solid
	}
}

// New validates p and returns the shape.
func New(p Params) (*Shape, error) {
	s := &Shape{
		name:       p.Name,
		material:   p.Material,
		points:     append([]geom.Point(nil), p.Points...),
		connection: p.Connection,
		workplane:  p.Workplane,
		verb:       p.Verb,
		placement:  append([]float64(nil), p.Placement...),
		cut:        append([]Operand(nil), p.Cut...),
		intersect:  append([]Operand(nil), p.Intersect...),
		union:      append([]Operand(nil), p.Union...),

		stpFilename: p.StpFilename,
		stlFilename: p.StlFilename,
		tetMesh:     p.TetMesh,
		reflective:  p.SurfaceReflectivity,
		groups:      append([]profile.PhysicalGroup(nil), p.PhysicalGroups...),
	}
	if s.connection == geom.KindNone && !annotated(s.points) {
		s.connection = geom.KindStraight
	}
	if s.workplane == "" {
		s.workplane = DefaultWorkplane
	}
	if p.Placement == nil {
		s.placement = []float64{0}
	}
	if p.Circle != nil {
		c := *p.Circle
		s.circle = &c
	}
	if p.RotationAxis != nil {
		a := *p.RotationAxis
		s.axis = &a
	}
	if p.Translate != nil {
		t := *p.Translate
		s.translate = &t
	}
	if p.Color != nil {
		c := *p.Color
		s.color = &c
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func annotated(pts []geom.Point) bool {
	for _, p := range pts {
		if p.Kind != geom.KindNone {
			return true
		}
	}
	return false
}

// Validate checks every attribute. Build calls it again, so a shape made
// invalid through its operands is caught there too.
func (s *Shape) Validate() error {
	if err := s.validate(); err != nil {
		return errdefs.WithSubject(err, s.name)
	}
	return nil
}

func (s *Shape) validate() error {
	const op = "shape.Validate"
	if err := s.workplane.Validate(); err != nil {
		return err
	}
	if s.verb == nil {
		return errdefs.Invalidf(op, "shape has no verb")
	}
	if err := s.verb.validate(s); err != nil {
		return err
	}
	if s.axis != nil {
		if _, _, err := s.axis.Line(); err != nil {
			return err
		}
	}
	if _, err := s.ProcessedPoints(); err != nil {
		return err
	}
	if err := validatePlacement(s.placement); err != nil {
		return err
	}
	if s.translate != nil {
		for _, v := range s.translate {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errdefs.Invalidf(op, "non-finite translate %v", *s.translate)
			}
		}
	}
	if err := validateSuffix("stp_filename", s.stpFilename, ".stp", ".step"); err != nil {
		return err
	}
	if err := validateSuffix("stl_filename", s.stlFilename, ".stl"); err != nil {
		return err
	}
	if s.color != nil {
		for _, c := range s.color {
			if !(c >= 0 && c <= 1) {
				return errdefs.Invalidf(op, "colour components must lie in [0, 1], got %v", *s.color)
			}
		}
	}
	for _, list := range [][]Operand{s.cut, s.intersect, s.union} {
		for _, o := range list {
			switch v := o.(type) {
			case nil:
				return errdefs.Compositionf(op, "nil boolean operand")
			case *Shape:
				if v == nil {
					return errdefs.Compositionf(op, "nil boolean operand")
				}
			case Solid:
				if v.Solid == nil {
					return errdefs.Compositionf(op, "raw solid operand is nil")
				}
			}
		}
	}
	return nil
}

func validatePlacement(angles []float64) error {
	if len(angles) == 0 {
		return errdefs.Invalidf("shape.SetPlacement", "placement needs at least one angle")
	}
	for _, a := range angles {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return errdefs.Invalidf("shape.SetPlacement", "non-finite placement angle %v", a)
		}
	}
	return nil
}

func validateSuffix(field, name string, suffixes ...string) error {
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)
	for _, sfx := range suffixes {
		if strings.HasSuffix(lower, sfx) {
			return nil
		}
	}
	return errdefs.Invalidf("shape.Validate", "%s %q must end with %s", field, name, strings.Join(suffixes, " or "))
}

// invalidate drops the cached solid.
func (s *Shape) invalidate() {
	s.cache.builder, s.cache.hash, s.cache.solid = nil, "", nil
}

// set applies fn, validates the result and restores the previous state
// when validation fails.
func (s *Shape) set(fn func()) error {
	saved := *s
	fn()
	if err := s.Validate(); err != nil {
		*s = saved
		return err
	}
	s.invalidate()
	return nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (s *Shape) Name() string               { return s.name }
func (s *Shape) Material() string           { return s.material }
func (s *Shape) Connection() geom.Kind      { return s.connection }
func (s *Shape) Workplane() Workplane       { return s.workplane }
func (s *Shape) Verb() Verb                 { return s.verb }
func (s *Shape) TetMesh() string            { return s.tetMesh }
func (s *Shape) SurfaceReflectivity() bool  { return s.reflective }
func (s *Shape) Placement() []float64       { return append([]float64(nil), s.placement...) }
func (s *Shape) Cut() []Operand             { return append([]Operand(nil), s.cut...) }
func (s *Shape) Intersect() []Operand       { return append([]Operand(nil), s.intersect...) }
func (s *Shape) Union() []Operand           { return append([]Operand(nil), s.union...) }
func (s *Shape) Points() []geom.Point       { return append([]geom.Point(nil), s.points...) }
func (s *Shape) PhysicalGroups() []profile.PhysicalGroup {
	return append([]profile.PhysicalGroup(nil), s.groups...)
}

// Circle returns the circle profile, if the shape has one.
func (s *Shape) Circle() (Circle, bool) {
	if s.circle == nil {
		return Circle{}, false
	}
	return *s.circle, true
}

// RotationAxis returns the axis placement copies turn about. It defaults
// to the second letter of the workplane, or of the path workplane for a
// sweep.
func (s *Shape) RotationAxis() Axis {
	if s.axis != nil {
		return *s.axis
	}
	if sw, ok := s.verb.(Sweep); ok && sw.PathWorkplane != "" {
		return defaultAxis(sw.PathWorkplane)
	}
	return defaultAxis(s.workplane)
}

// Translate returns the translation applied last, if any.
func (s *Shape) Translate() ([3]float64, bool) {
	if s.translate == nil {
		return [3]float64{}, false
	}
	return *s.translate, true
}

// Color returns the display colour, if one is set.
func (s *Shape) Color() ([3]float64, bool) {
	if s.color == nil {
		return [3]float64{}, false
	}
	return *s.color, true
}

// StpFilename returns the STEP filename, defaulting to <name>.stp.
func (s *Shape) StpFilename() string {
	if s.stpFilename != "" {
		return s.stpFilename
	}
	return s.name + ".stp"
}

// StlFilename returns the STL filename, defaulting to <name>.stl.
func (s *Shape) StlFilename() string {
	if s.stlFilename != "" {
		return s.stlFilename
	}
	return s.name + ".stl"
}

// RevolveAngle returns the revolve angle, or 360 for other verbs.
func (s *Shape) RevolveAngle() float64 {
	switch v := s.verb.(type) {
	case Revolve:
		return v.Angle
	case Extrude:
		if v.partial() {
			return v.RotationAngle
		}
	}
	return 360
}

func (s *Shape) String() string {
	return fmt.Sprintf("%s(%s)", s.verb.Name(), s.name)
}

// ---------------------------------------------------------------------------
// Setters
// ---------------------------------------------------------------------------

func (s *Shape) SetName(name string) error {
	return s.set(func() { s.name = name })
}

func (s *Shape) SetMaterial(tag string) error {
	return s.set(func() { s.material = tag })
}

// SetPoints replaces the profile points and clears any circle.
func (s *Shape) SetPoints(pts []geom.Point) error {
	return s.set(func() {
		s.points = append([]geom.Point(nil), pts...)
		s.circle = nil
	})
}

func (s *Shape) SetConnection(k geom.Kind) error {
	return s.set(func() { s.connection = k })
}

func (s *Shape) SetCircle(c Circle) error {
	return s.set(func() { s.circle = &c })
}

func (s *Shape) SetWorkplane(w Workplane) error {
	return s.set(func() { s.workplane = w })
}

func (s *Shape) SetRotationAxis(a Axis) error {
	return s.set(func() { s.axis = &a })
}

func (s *Shape) SetVerb(v Verb) error {
	return s.set(func() { s.verb = v })
}

func (s *Shape) SetPlacement(angles ...float64) error {
	return s.set(func() { s.placement = append([]float64(nil), angles...) })
}

func (s *Shape) SetTranslate(v [3]float64) error {
	return s.set(func() { s.translate = &v })
}

func (s *Shape) SetCut(ops ...Operand) error {
	return s.set(func() { s.cut = append([]Operand(nil), ops...) })
}

// AddCut appends cut operands.
func (s *Shape) AddCut(ops ...Operand) error {
	return s.set(func() { s.cut = append(append([]Operand(nil), s.cut...), ops...) })
}

func (s *Shape) SetIntersect(ops ...Operand) error {
	return s.set(func() { s.intersect = append([]Operand(nil), ops...) })
}

func (s *Shape) SetUnion(ops ...Operand) error {
	return s.set(func() { s.union = append([]Operand(nil), ops...) })
}

func (s *Shape) SetStpFilename(name string) error {
	return s.set(func() { s.stpFilename = name })
}

func (s *Shape) SetStlFilename(name string) error {
	return s.set(func() { s.stlFilename = name })
}

func (s *Shape) SetTetMesh(spec string) error {
	return s.set(func() { s.tetMesh = spec })
}

func (s *Shape) SetSurfaceReflectivity(on bool) error {
	return s.set(func() { s.reflective = on })
}

func (s *Shape) SetPhysicalGroups(g []profile.PhysicalGroup) error {
	return s.set(func() { s.groups = append([]profile.PhysicalGroup(nil), g...) })
}

func (s *Shape) SetColor(rgb [3]float64) error {
	return s.set(func() { s.color = &rgb })
}

// AddWarning records an advisory produced while generating the shape.
func (s *Shape) AddWarning(w errdefs.Warning) {
	if w.Subject == "" {
		w.Subject = s.name
	}
	s.warnings = append(s.warnings, w)
}

// ---------------------------------------------------------------------------
// Derived data
// ---------------------------------------------------------------------------

// ProcessedPoints returns the canonical closed point list. Circle shapes
// return the four quadrant points of the circle.
func (s *Shape) ProcessedPoints() ([]geom.Point, error) {
	if _, ok := s.verb.(HollowCube); ok {
		return nil, nil
	}
	if s.circle != nil {
		w, err := geom.CircleWire(s.circle.Center, s.circle.Radius)
		if err != nil {
			return nil, err
		}
		return w.Points(), nil
	}
	return geom.Process(s.points, s.connection)
}

// Wire returns the discretised profile.
func (s *Shape) Wire() (*geom.Wire, error) {
	if _, ok := s.verb.(HollowCube); ok {
		return nil, errdefs.Geometryf("shape.Wire", "hollow cube has no profile")
	}
	if s.circle != nil {
		return geom.CircleWire(s.circle.Center, s.circle.Radius)
	}
	return geom.NewWire(s.points, s.connection)
}

// Warnings returns the advisories attached to the shape.
func (s *Shape) Warnings() []errdefs.Warning {
	out := append([]errdefs.Warning(nil), s.warnings...)
	if len(s.material) > MaxMaterialTag {
		out = append(out, errdefs.Warning{
			Subject: s.name,
			Message: fmt.Sprintf("material tag %q is longer than %d characters and will be truncated by DAGMC", s.material, MaxMaterialTag),
		})
	}
	return out
}

// NeutronicsDescription is the manifest entry of a shape.
type NeutronicsDescription struct {
	Material            string `json:"material"`
	Filename            string `json:"filename"`
	StpFilename         string `json:"stp_filename"`
	StlFilename         string `json:"stl_filename"`
	TetMesh             string `json:"tet_mesh,omitempty"`
	SurfaceReflectivity bool   `json:"surface_reflectivity,omitempty"`
}

// NeutronicsDescription returns the manifest entry. A shape without a
// material tag cannot be described.
func (s *Shape) NeutronicsDescription() (NeutronicsDescription, error) {
	if s.material == "" {
		return NeutronicsDescription{}, errdefs.New(errdefs.KindExport, "shape.NeutronicsDescription", s.name,
			fmt.Errorf("material tag is required for a neutronics description"))
	}
	return NeutronicsDescription{
		Material:            s.material,
		Filename:            s.StpFilename(),
		StpFilename:         s.StpFilename(),
		StlFilename:         s.StlFilename(),
		TetMesh:             s.tetMesh,
		SurfaceReflectivity: s.reflective,
	}, nil
}
