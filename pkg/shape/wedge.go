package shape

import (
	"fmt"
	"math"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
	"github.com/chazu/reactorcad/pkg/kernel"
)

// Names and materials of the generated wedges.
const (
	SectorWedgeName     = "sector_wedge"
	SectorWedgeMaterial = "vacuum"
	CuttingWedgeName    = "cutting_wedge"
	CuttingWedgeMat     = "cutting_slice_mat"
)

// wedgeSafetyFactor oversizes cutting wedges so they clear the shape.
const wedgeSafetyFactor = 3.0

func wedgePoints(height, radius float64) []geom.Point {
	return []geom.Point{
		geom.P(0, height/2),
		geom.P(radius, height/2),
		geom.P(radius, -height/2),
		geom.P(0, -height/2),
	}
}

// SectorWedge returns the reflecting wedge that closes a sector model of
// the given rotation about Z. It spans from rotation to 360 degrees. A
// full 360 model needs no wedge and yields nil.
func SectorWedge(height, radius, rotation float64) (*Shape, error) {
	const op = "shape.SectorWedge"
	if !(rotation > 0 && rotation <= 360) {
		return nil, errdefs.Compositionf(op, "rotation angle %v outside (0, 360]", rotation)
	}
	if rotation == 360 {
		return nil, nil
	}
	if !(height > 0) || !(radius > 0) {
		return nil, errdefs.Invalidf(op, "height and radius must be positive, got %v and %v", height, radius)
	}
	axis := Axis{Label: "Z"}
	return New(Params{
		Name:                SectorWedgeName,
		Material:            SectorWedgeMaterial,
		Points:              wedgePoints(height, radius),
		Connection:          geom.KindStraight,
		Workplane:           XZ,
		RotationAxis:        &axis,
		Verb:                Revolve{Angle: 360 - rotation},
		Placement:           []float64{rotation},
		SurfaceReflectivity: true,
	})
}

// wedgeWorkplane returns a workplane whose v axis is the given world axis.
func wedgeWorkplane(letter byte) Workplane {
	switch letter {
	case 'X':
		return YX
	case 'Y':
		return XY
	default:
		return XZ
	}
}

// CuttingWedgeFS returns the wedge that trims a partially rotated extrude
// to its sector. The wedge covers the complement of the sector, starting
// at the first placement angle plus the rotation angle, and is sized from
// the extruded profile with a safety factor of three. Shapes without a
// partial rotation yield nil.
func CuttingWedgeFS(s *Shape) (*Shape, error) {
	const op = "shape.CuttingWedgeFS"
	e, ok := s.verb.(Extrude)
	if !ok || !e.partial() {
		return nil, nil
	}
	axis := s.RotationAxis()
	if axis.Label == "" {
		return nil, errdefs.New(errdefs.KindComposition, op, s.name,
			fmt.Errorf("a partial rotation needs a labelled rotation axis, got %s", axis))
	}
	wire, err := s.Wire()
	if err != nil {
		return nil, errdefs.WithSubject(err, s.name)
	}
	origin, dir, err := axis.Line()
	if err != nil {
		return nil, err
	}

	// Largest radial and axial reach of the extruded profile.
	frame := s.workplane.Frame()
	from, to := e.span()
	var radius, height float64
	for _, p := range wire.Polygon() {
		for _, n := range []float64{from, to} {
			w := kernel.Sub(frame.ToWorld(p[0], p[1], n), origin)
			along := kernel.Dot(w, dir)
			radius = math.Max(radius, kernel.Length(kernel.Sub(w, kernel.Scale(dir, along))))
			height = math.Max(height, math.Abs(along))
		}
	}
	radius = wedgeSafetyFactor * math.Max(radius, 1)
	height = 2 * wedgeSafetyFactor * math.Max(height, 1)

	// The wedge revolves about the positive world axis; against a negative
	// axis its span already starts RotationAngle past the placement.
	start := s.placement[0] + e.RotationAngle
	if axis.Label[0] == '-' {
		start = s.placement[0]
	}

	return New(Params{
		Name:         CuttingWedgeName,
		Material:     CuttingWedgeMat,
		Points:       wedgePoints(height, radius),
		Connection:   geom.KindStraight,
		Workplane:    wedgeWorkplane(axis.letter()),
		RotationAxis: &axis,
		Verb:         Revolve{Angle: 360 - e.RotationAngle},
		Placement:    []float64{start},
	})
}

// NewHollowCube returns a cube shell with an inner edge of length and walls
// of thickness, centred on center.
func NewHollowCube(name, material string, length, thickness float64, center [3]float64) (*Shape, error) {
	return New(Params{
		Name:     name,
		Material: material,
		Verb:     HollowCube{Length: length, Thickness: thickness, Center: center},
	})
}

// NewCircle returns a shape whose profile is the full circle of radius
// about center.
func NewCircle(p Params, center [2]float64, radius float64) (*Shape, error) {
	p.Circle = &Circle{Center: center, Radius: radius}
	p.Points = nil
	return New(p)
}
