package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
)

// ---------------------------------------------------------------------------
// Port cutters
// ---------------------------------------------------------------------------

// Port cutter profiles live in the plane perpendicular to the radial
// direction of the port: the first coordinate is toroidal, the second is
// vertical.

// PortCutterCircular is a round port at height ZPos.
type PortCutterCircular struct {
	ZPos   float64 `yaml:"z_pos" json:"z_pos"`
	Radius float64 `yaml:"radius" json:"radius"`
}

// Circle returns the centre and radius of the port section.
func (p PortCutterCircular) Circle() ([2]float64, float64, error) {
	if err := positive("profile.PortCutterCircular", "radius", p.Radius); err != nil {
		return [2]float64{}, 0, err
	}
	if !finite(p.ZPos) {
		return [2]float64{}, 0, errdefs.Invalidf("profile.PortCutterCircular", "non-finite z_pos")
	}
	return [2]float64{0, p.ZPos}, p.Radius, nil
}

// PortCutterRectangular is a rectangular port centred at height ZPos with
// optionally rounded corners.
type PortCutterRectangular struct {
	ZPos         float64 `yaml:"z_pos" json:"z_pos"`
	Width        float64 `yaml:"width" json:"width"`
	Height       float64 `yaml:"height" json:"height"`
	FilletRadius float64 `yaml:"fillet_radius,omitempty" json:"fillet_radius,omitempty"`
}

// Points returns the port section.
func (p PortCutterRectangular) Points() ([]geom.Point, error) {
	const op = "profile.PortCutterRectangular"
	if err := positive(op, "width", p.Width); err != nil {
		return nil, err
	}
	if err := positive(op, "height", p.Height); err != nil {
		return nil, err
	}
	if !finite(p.ZPos, p.FilletRadius) || p.FilletRadius < 0 {
		return nil, errdefs.Invalidf(op, "fillet_radius must be a non-negative number")
	}
	w, h := p.Width/2, p.Height/2
	corners := [][2]float64{{-w, p.ZPos - h}, {w, p.ZPos - h}, {w, p.ZPos + h}, {-w, p.ZPos + h}}
	r := p.FilletRadius
	if r == 0 {
		return closeStraight(tagged(corners, geom.KindStraight)), nil
	}
	if r >= math.Min(w, h) {
		return nil, errdefs.Invalidf(op, "fillet_radius %v must be less than half the smaller side", r)
	}
	var pts []geom.Point
	for i, c := range corners {
		prev := corners[(i+3)%4]
		next := corners[(i+1)%4]
		a := geom.Extend(c, prev, r)
		b := geom.Extend(c, next, r)
		center := [2]float64{a[0] + b[0] - c[0], a[1] + b[1] - c[1]}
		mid := geom.Extend(center, c, r)
		pts = append(pts,
			geom.PK(a[0], a[1], geom.KindCircle),
			geom.PK(mid[0], mid[1], geom.KindCircle),
			geom.PK(b[0], b[1], geom.KindStraight),
		)
	}
	return pts, nil
}

// ---------------------------------------------------------------------------
// Inner TF coils
// ---------------------------------------------------------------------------

// wedgeAngles returns the angular span theta of one coil at radius r and
// the half-gap offset omega, for n coils separated by gap.
func wedgeAngles(r, gap float64, n int) (theta, omega float64) {
	theta = (2*math.Pi*r - gap*float64(n)) / (r * float64(n))
	omega = math.Asin(gap / (2 * r))
	return theta, omega
}

func polar(r, a float64) [2]float64 { return [2]float64{r * math.Cos(a), r * math.Sin(a)} }

// InnerTFCoilsCircular is the cross section of one of NumberOfCoils inner
// TF coil wedges between two circles, separated by GapSize.
type InnerTFCoilsCircular struct {
	InnerRadius   float64 `yaml:"inner_radius" json:"inner_radius"`
	OuterRadius   float64 `yaml:"outer_radius" json:"outer_radius"`
	NumberOfCoils int     `yaml:"number_of_coils" json:"number_of_coils"`
	GapSize       float64 `yaml:"gap_size" json:"gap_size"`
}

func validateInnerTF(op string, ri, ro, gap float64, n int, allowZeroInner bool) error {
	if !(ri > 0) && !(allowZeroInner && ri == 0) {
		return errdefs.Invalidf(op, "inner_radius must be positive, got %v", ri)
	}
	if !(ro > ri) || !finite(ro) {
		return errdefs.Invalidf(op, "outer_radius %v must exceed inner_radius %v", ro, ri)
	}
	if n < 1 {
		return errdefs.Invalidf(op, "number_of_coils must be at least 1, got %d", n)
	}
	if !(gap >= 0) {
		return errdefs.Invalidf(op, "gap_size must be non-negative, got %v", gap)
	}
	if gap*float64(n) > 2*math.Pi*ri || (ri > 0 && gap >= 2*ri) {
		return errdefs.Invalidf(op, "gap_size %v is too large for %d coils at radius %v", gap, n, ri)
	}
	return nil
}

// Points returns the wedge section in the XY plane.
func (c InnerTFCoilsCircular) Points() ([]geom.Point, error) {
	if err := validateInnerTF("profile.InnerTFCoilsCircular", c.InnerRadius, c.OuterRadius, c.GapSize, c.NumberOfCoils, false); err != nil {
		return nil, err
	}
	ti, wi := wedgeAngles(c.InnerRadius, c.GapSize, c.NumberOfCoils)
	to, wo := wedgeAngles(c.OuterRadius, c.GapSize, c.NumberOfCoils)
	p1, p2, p3 := polar(c.InnerRadius, wi), polar(c.InnerRadius, wi+ti/2), polar(c.InnerRadius, wi+ti)
	p4, p5, p6 := polar(c.OuterRadius, wo), polar(c.OuterRadius, wo+to/2), polar(c.OuterRadius, wo+to)
	return []geom.Point{
		geom.PK(p1[0], p1[1], geom.KindCircle),
		geom.PK(p2[0], p2[1], geom.KindCircle),
		geom.PK(p3[0], p3[1], geom.KindStraight),
		geom.PK(p6[0], p6[1], geom.KindCircle),
		geom.PK(p5[0], p5[1], geom.KindCircle),
		geom.PK(p4[0], p4[1], geom.KindStraight),
	}, nil
}

// RadiusType says whether the radii of flat inner TF coils are measured
// to the wedge corners or to the middle of the flat faces.
type RadiusType int

const (
	RadiusCorner RadiusType = iota
	RadiusStraight
)

func (r RadiusType) String() string {
	switch r {
	case RadiusCorner:
		return "corner"
	case RadiusStraight:
		return "straight"
	default:
		return fmt.Sprintf("RadiusType(%d)", int(r))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r RadiusType) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RadiusType) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "corner":
		*r = RadiusCorner
	case "straight":
		*r = RadiusStraight
	default:
		return errdefs.Invalidf("profile.RadiusType", "unknown radius type %q", string(b))
	}
	return nil
}

// InnerTFCoilsFlat is the flat-faced variant of InnerTFCoilsCircular. An
// inner radius of zero gives triangular wedges meeting on the axis.
type InnerTFCoilsFlat struct {
	InnerRadius   float64    `yaml:"inner_radius" json:"inner_radius"`
	OuterRadius   float64    `yaml:"outer_radius" json:"outer_radius"`
	NumberOfCoils int        `yaml:"number_of_coils" json:"number_of_coils"`
	GapSize       float64    `yaml:"gap_size" json:"gap_size"`
	RadiusType    RadiusType `yaml:"radius_type" json:"radius_type"`
}

// Points returns the wedge section in the XY plane.
func (c InnerTFCoilsFlat) Points() ([]geom.Point, error) {
	const op = "profile.InnerTFCoilsFlat"
	ri, ro := c.InnerRadius, c.OuterRadius
	if c.RadiusType == RadiusStraight && c.NumberOfCoils > 0 {
		f := math.Cos(math.Pi / float64(c.NumberOfCoils))
		ri, ro = ri/f, ro/f
	}
	if err := validateInnerTF(op, ri, ro, c.GapSize, c.NumberOfCoils, true); err != nil {
		return nil, err
	}
	var raw [][2]float64
	if ri == 0 {
		raw = append(raw, [2]float64{0, 0})
	} else {
		ti, wi := wedgeAngles(ri, c.GapSize, c.NumberOfCoils)
		raw = append(raw, polar(ri, wi), polar(ri, wi+ti))
	}
	to, wo := wedgeAngles(ro, c.GapSize, c.NumberOfCoils)
	raw = append(raw, polar(ro, wo+to), polar(ro, wo))
	return closeStraight(tagged(raw, geom.KindStraight)), nil
}
