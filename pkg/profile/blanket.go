package profile

import (
	"fmt"
	"math"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
)

// DefaultBlanketPoints is the default number of samples per blanket curve.
const DefaultBlanketPoints = 50

// BlanketFP is a blanket that follows the plasma separatrix between two
// poloidal angles. The inner curve sits OffsetFromPlasma away from the
// plasma along its normal and the outer curve a further Thickness away.
type BlanketFP struct {
	Plasma           Plasma    `yaml:"plasma" json:"plasma"`
	OffsetFromPlasma Variation `yaml:"offset_from_plasma" json:"offset_from_plasma"`
	Thickness        Variation `yaml:"thickness" json:"thickness"`
	StartAngle       float64   `yaml:"start_angle" json:"start_angle"`
	StopAngle        float64   `yaml:"stop_angle" json:"stop_angle"`
	NumPoints        int       `yaml:"num_points" json:"num_points"`
}

// diffBetweenAngles returns b - a wrapped into (-180, 180].
func diffBetweenAngles(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d < 0 {
		d += 360
	}
	if d > 180 {
		d -= 360
	}
	return d
}

// FullCoverage reports whether the blanket wraps all the way round.
func (b BlanketFP) FullCoverage() bool {
	return b.StartAngle != b.StopAngle && math.Abs(diffBetweenAngles(b.StartAngle, b.StopAngle)) < 1e-9
}

// Validate checks angles and variations.
func (b BlanketFP) Validate() error {
	const op = "profile.BlanketFP"
	if err := b.Plasma.Validate(); err != nil {
		return err
	}
	if !finite(b.StartAngle, b.StopAngle) {
		return errdefs.Invalidf(op, "non-finite angles")
	}
	if b.StartAngle == b.StopAngle {
		return errdefs.Invalidf(op, "start_angle and stop_angle are both %v", b.StartAngle)
	}
	for _, a := range []float64{b.StartAngle, b.StopAngle} {
		if a < -360 || a > 720 {
			return errdefs.Invalidf(op, "angle %v outside [-360, 720]", a)
		}
	}
	if b.NumPoints < 0 || b.NumPoints == 1 {
		return errdefs.Invalidf(op, "num_points must be at least 2, got %d", b.NumPoints)
	}
	if err := b.OffsetFromPlasma.Validate(); err != nil {
		return errdefs.WithSubject(err, "offset_from_plasma")
	}
	if err := b.Thickness.Validate(); err != nil {
		return errdefs.WithSubject(err, "thickness")
	}
	return nil
}

func (b BlanketFP) thetas() []float64 {
	n := b.NumPoints
	if n == 0 {
		n = DefaultBlanketPoints
	}
	return geom.Linspace(b.StartAngle, b.StopAngle, n, true)
}

// offsetCurve samples the plasma at the given angles (degrees), offset
// along the outward normal. Points with R <= 0 are dropped.
func (b BlanketFP) offsetCurve(thetas []float64, offset func(deg float64) float64) (pts [][2]float64, dropped int) {
	for _, deg := range thetas {
		th := radians(deg)
		p := b.Plasma.At(th)
		n := b.Plasma.Normal(th)
		d := offset(deg)
		q := [2]float64{p[0] + d*n[0], p[1] + d*n[1]}
		if q[0] > 0 {
			pts = append(pts, q)
		} else {
			dropped++
		}
	}
	return pts, dropped
}

// Curves returns the inner curve in start-to-stop order and the outer
// curve in stop-to-start order, plus any warnings.
func (b BlanketFP) Curves() (inner, outer [][2]float64, warnings []errdefs.Warning, err error) {
	if err := b.Validate(); err != nil {
		return nil, nil, nil, err
	}
	start, stop := b.StartAngle, b.StopAngle
	thetas := b.thetas()
	for _, deg := range thetas {
		if t := b.Thickness.At(deg, start, stop); !(t > 0) {
			return nil, nil, nil, errdefs.Invalidf("profile.BlanketFP", "thickness %v at %v degrees must be positive", t, deg)
		}
	}
	innerOffset := func(deg float64) float64 { return b.OffsetFromPlasma.At(deg, start, stop) }
	outerOffset := func(deg float64) float64 {
		return innerOffset(deg) + b.Thickness.At(deg, start, stop)
	}
	inner, d1 := b.offsetCurve(thetas, innerOffset)
	rev := make([]float64, len(thetas))
	for i, t := range thetas {
		rev[len(thetas)-1-i] = t
	}
	outer, d2 := b.offsetCurve(rev, outerOffset)
	if d1+d2 > 0 {
		warnings = append(warnings, errdefs.Warning{
			Message: fmt.Sprintf("%d blanket points with negative R were dropped; the profile overlaps the axis", d1+d2),
		})
	}
	if len(inner) == 0 || len(outer) == 0 {
		return nil, nil, warnings, errdefs.Geometryf("profile.BlanketFP", "no blanket points left with positive R")
	}
	if b.FullCoverage() {
		warnings = append(warnings, errdefs.Warning{
			Message: "blanket covers the full 360 degrees; only a partial revolve avoids self-intersection",
		})
	}
	return inner, outer, warnings, nil
}

// Points returns the closed blanket profile: inner spline, straight cap,
// outer spline, straight cap.
func (b BlanketFP) Points() ([]geom.Point, []errdefs.Warning, error) {
	inner, outer, warnings, err := b.Curves()
	if err != nil {
		return nil, warnings, err
	}
	pts := closeStraight(tagged(inner, geom.KindSpline))
	pts = append(pts, closeStraight(tagged(outer, geom.KindSpline))...)
	return pts, warnings, nil
}

// PhysicalGroups names the volume and faces of a blanket revolved by
// rotationAngle degrees.
func (b BlanketFP) PhysicalGroups(rotationAngle float64) []PhysicalGroup {
	surfaces := []string{"inner", "outer"}
	full := rotationAngle == 360
	if !full {
		surfaces = append(surfaces, "left_section", "right_section")
	}
	closed := diffBetweenAngles(b.StartAngle, b.StopAngle) == 0
	if !closed {
		surfaces = append(surfaces, "inner_section", "outer_section")
	}
	var order []int
	switch {
	case full && !closed:
		order = []int{0, 2, 1, 3}
	case !full && !closed:
		order = []int{0, 4, 1, 5, 2, 3}
	default:
		for i := range surfaces {
			order = append(order, i)
		}
	}
	groups := []PhysicalGroup{{Dim: 3, ID: 1, Name: "inside"}}
	for i, idx := range order {
		groups = append(groups, PhysicalGroup{Dim: 2, ID: i + 1, Name: surfaces[idx]})
	}
	return groups
}

// ---------------------------------------------------------------------------
// Constant-thickness arcs
// ---------------------------------------------------------------------------

// ArcOrientation selects the direction a constant-thickness arc is
// thickened in.
type ArcOrientation int

const (
	// ArcVertical thickens the end points vertically and the mid point
	// radially.
	ArcVertical ArcOrientation = iota
	// ArcHorizontal thickens every point radially.
	ArcHorizontal
)

// ConstantThicknessArc is a blanket bounded by an arc through three
// points and a second arc offset by Thickness.
type ConstantThicknessArc struct {
	Orientation ArcOrientation `yaml:"orientation" json:"orientation"`
	InnerUpper  [2]float64     `yaml:"inner_upper_point" json:"inner_upper_point"`
	InnerMid    [2]float64     `yaml:"inner_mid_point" json:"inner_mid_point"`
	InnerLower  [2]float64     `yaml:"inner_lower_point" json:"inner_lower_point"`
	Thickness   float64        `yaml:"thickness" json:"thickness"`
}

// Points returns the arc profile.
func (a ConstantThicknessArc) Points() ([]geom.Point, error) {
	const op = "profile.ConstantThicknessArc"
	if err := positive(op, "thickness", math.Abs(a.Thickness)); err != nil {
		return nil, err
	}
	if _, _, err := geom.CircleThrough(a.InnerUpper, a.InnerMid, a.InnerLower); err != nil {
		return nil, err
	}
	t := math.Abs(a.Thickness)
	up, mid, low := a.InnerUpper, a.InnerMid, a.InnerLower
	c, s := geom.KindCircle, geom.KindStraight
	pts := []geom.Point{
		geom.PK(up[0], up[1], c),
		geom.PK(mid[0], mid[1], c),
		geom.PK(low[0], low[1], s),
	}
	switch a.Orientation {
	case ArcVertical:
		pts = append(pts,
			geom.PK(low[0], low[1]-t, c),
			geom.PK(mid[0]+a.Thickness, mid[1], c),
			geom.PK(up[0], up[1]+t, s),
		)
	case ArcHorizontal:
		pts = append(pts,
			geom.PK(low[0]+t, low[1], c),
			geom.PK(mid[0]+t, mid[1], c),
			geom.PK(up[0]+t, up[1], s),
		)
	default:
		return nil, errdefs.Invalidf(op, "unknown orientation %d", int(a.Orientation))
	}
	return pts, nil
}
