package profile

import (
	"math"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
)

// ---------------------------------------------------------------------------
// Poloidal field coils
// ---------------------------------------------------------------------------

// PFCoil is a rectangular poloidal field coil cross section.
type PFCoil struct {
	Center [2]float64 `yaml:"center_point" json:"center_point"`
	Width  float64    `yaml:"width" json:"width"`
	Height float64    `yaml:"height" json:"height"`
}

// Validate checks the coil dimensions.
func (c PFCoil) Validate() error {
	const op = "profile.PFCoil"
	if err := positive(op, "width", c.Width); err != nil {
		return err
	}
	if err := positive(op, "height", c.Height); err != nil {
		return err
	}
	if !finite(c.Center[0], c.Center[1]) {
		return errdefs.Invalidf(op, "non-finite center point")
	}
	return nil
}

// Points returns the coil rectangle, upper right corner first.
func (c PFCoil) Points() ([]geom.Point, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	w, h := c.Width/2, c.Height/2
	x, z := c.Center[0], c.Center[1]
	return closeStraight(tagged([][2]float64{
		{x + w, z + h},
		{x + w, z - h},
		{x - w, z - h},
		{x - w, z + h},
	}, geom.KindStraight)), nil
}

// Bounds returns the lower left and upper right corners.
func (c PFCoil) Bounds() (min, max [2]float64) {
	return [2]float64{c.Center[0] - c.Width/2, c.Center[1] - c.Height/2},
		[2]float64{c.Center[0] + c.Width/2, c.Center[1] + c.Height/2}
}

// PFCoilCase is a casing of CasingThickness around a coil on all four
// sides. The casing profile is the outer rectangle with the coil removed.
type PFCoilCase struct {
	Coil            PFCoil  `yaml:"coil" json:"coil"`
	CasingThickness float64 `yaml:"casing_thickness" json:"casing_thickness"`
}

// Outer returns the rectangle enclosing the casing.
func (c PFCoilCase) Outer() (PFCoil, error) {
	if err := c.Coil.Validate(); err != nil {
		return PFCoil{}, err
	}
	if err := positive("profile.PFCoilCase", "casing_thickness", c.CasingThickness); err != nil {
		return PFCoil{}, err
	}
	return PFCoil{
		Center: c.Coil.Center,
		Width:  c.Coil.Width + 2*c.CasingThickness,
		Height: c.Coil.Height + 2*c.CasingThickness,
	}, nil
}

// PFCoilSet is a set of rectangular coils given as parallel lists.
type PFCoilSet struct {
	Centers [][2]float64 `yaml:"center_points" json:"center_points"`
	Widths  []float64    `yaml:"widths" json:"widths"`
	Heights []float64    `yaml:"heights" json:"heights"`
}

// Coils splits the set into individual coils.
func (s PFCoilSet) Coils() ([]PFCoil, error) {
	const op = "profile.PFCoilSet"
	if len(s.Centers) != len(s.Widths) || len(s.Widths) != len(s.Heights) {
		return nil, errdefs.Invalidf(op, "center_points, widths and heights have lengths %d, %d and %d",
			len(s.Centers), len(s.Widths), len(s.Heights))
	}
	if len(s.Centers) == 0 {
		return nil, errdefs.Invalidf(op, "empty coil set")
	}
	coils := make([]PFCoil, len(s.Centers))
	for i := range s.Centers {
		coils[i] = PFCoil{Center: s.Centers[i], Width: s.Widths[i], Height: s.Heights[i]}
		if err := coils[i].Validate(); err != nil {
			return nil, err
		}
	}
	return coils, nil
}

// ---------------------------------------------------------------------------
// Toroidal field coils
// ---------------------------------------------------------------------------

// CoilProfile is the cross section of an outboard TF coil: an open
// C-shaped limb plus, optionally, the straight inner leg closing it.
type CoilProfile struct {
	Points   []geom.Point
	InnerLeg []geom.Point
}

func legFrom(corners [4][2]float64) []geom.Point {
	return closeStraight(tagged(corners[:], geom.KindStraight))
}

// TFCoilRectangle is a rectangular TF coil. HorizontalStart is the inner
// upper corner and VerticalMid the midpoint of the outboard vertical limb.
type TFCoilRectangle struct {
	HorizontalStart [2]float64 `yaml:"horizontal_start_point" json:"horizontal_start_point"`
	VerticalMid     [2]float64 `yaml:"vertical_mid_point" json:"vertical_mid_point"`
	Thickness       float64    `yaml:"thickness" json:"thickness"`
	WithInnerLeg    bool       `yaml:"with_inner_leg" json:"with_inner_leg"`
}

// Profile returns the coil cross section.
func (c TFCoilRectangle) Profile() (CoilProfile, error) {
	const op = "profile.TFCoilRectangle"
	if err := positive(op, "thickness", c.Thickness); err != nil {
		return CoilProfile{}, err
	}
	hs, vm, t := c.HorizontalStart, c.VerticalMid, c.Thickness
	if hs[0] >= vm[0] {
		return CoilProfile{}, errdefs.Invalidf(op, "horizontal_start_point x %v must be less than vertical_mid_point x %v", hs[0], vm[0])
	}
	if vm[1] >= hs[1] {
		return CoilProfile{}, errdefs.Invalidf(op, "vertical_mid_point y %v must be less than horizontal_start_point y %v", vm[1], hs[1])
	}
	raw := [][2]float64{
		hs,
		{hs[0] + t, hs[1]},
		{vm[0], hs[1]},
		{vm[0], -hs[1]},
		{hs[0] + t, -hs[1]},
		{hs[0], -hs[1]},
		{hs[0], -hs[1] - t},
		{vm[0] + t, -hs[1] - t},
		{vm[0] + t, hs[1] + t},
		{hs[0], hs[1] + t},
	}
	p := CoilProfile{Points: closeStraight(tagged(raw, geom.KindStraight))}
	if c.WithInnerLeg {
		p.InnerLeg = legFrom([4][2]float64{raw[0], raw[1], raw[4], raw[5]})
	}
	return p, nil
}

// TFCoilTripleArc is a TF coil whose inner contour is made of a small, a
// mid and a large arc, mirrored about the midplane.
type TFCoilTripleArc struct {
	R1                   float64    `yaml:"r1" json:"r1"`
	H                    float64    `yaml:"h" json:"h"`
	Radii                [2]float64 `yaml:"radii" json:"radii"`
	Coverages            [2]float64 `yaml:"coverages" json:"coverages"` // degrees
	Thickness            float64    `yaml:"thickness" json:"thickness"`
	VerticalDisplacement float64    `yaml:"vertical_displacement" json:"vertical_displacement"`
	WithInnerLeg         bool       `yaml:"with_inner_leg" json:"with_inner_leg"`
}

const tripleArcSamples = 500

func tripleArcCurve(r1, h float64, radii, coverages [2]float64) [][2]float64 {
	rs, rm := radii[0], radii[1]
	cs, cm := coverages[0], coverages[1]
	asum := cs + cm

	var half [][2]float64
	small := geom.Linspace(0, cs, max(int(math.Round(0.5*tripleArcSamples*cs/math.Pi)), 2), true)
	for _, th := range small {
		half = append(half, [2]float64{r1 + rs*(1-math.Cos(th)), h + rs*math.Sin(th)})
	}
	s := half[len(half)-1]
	mid := geom.Linspace(cs, asum, max(int(math.Round(0.5*tripleArcSamples*cm/math.Pi)), 2), true)
	for _, th := range mid[1:] {
		half = append(half, [2]float64{s[0] + rm*(math.Cos(cs)-math.Cos(th)), s[1] + rm*(math.Sin(th)-math.Sin(cs))})
	}
	m := half[len(half)-1]
	rl := m[1] / math.Sin(math.Pi-asum)
	for _, th := range geom.Linspace(asum, math.Pi, 60, true)[1:] {
		half = append(half, [2]float64{
			m[0] + rl*(math.Cos(math.Pi-th)-math.Cos(math.Pi-asum)),
			m[1] - rl*(math.Sin(asum)-math.Sin(math.Pi-th)),
		})
	}
	out := append([][2]float64(nil), half...)
	for i := len(half) - 2; i >= 0; i-- {
		out = append(out, [2]float64{half[i][0], -half[i][1]})
	}
	return out
}

// Profile returns the coil cross section. The arcs are sampled densely
// and joined as a polyline.
func (c TFCoilTripleArc) Profile() (CoilProfile, error) {
	const op = "profile.TFCoilTripleArc"
	for _, v := range []struct {
		name string
		v    float64
	}{{"r1", c.R1}, {"h", c.H}, {"small radius", c.Radii[0]}, {"mid radius", c.Radii[1]}, {"thickness", c.Thickness}} {
		if err := positive(op, v.name, v.v); err != nil {
			return CoilProfile{}, err
		}
	}
	cs, cm := radians(c.Coverages[0]), radians(c.Coverages[1])
	if !(cs > 0 && cm > 0 && cs+cm < math.Pi) {
		return CoilProfile{}, errdefs.Invalidf(op, "coverages %v must be positive and sum below 180", c.Coverages)
	}
	if c.Thickness >= c.R1 {
		return CoilProfile{}, errdefs.Invalidf(op, "thickness %v must be less than r1 %v", c.Thickness, c.R1)
	}
	cov := [2]float64{cs, cm}
	inner := tripleArcCurve(c.R1, c.H/2, c.Radii, cov)
	outer := reversed(tripleArcCurve(c.R1-c.Thickness, c.H/2, [2]float64{c.Radii[0] + c.Thickness, c.Radii[1] + c.Thickness}, cov))
	return coilFromCurves(inner, outer, c.VerticalDisplacement, c.WithInnerLeg), nil
}

// coilFromCurves joins an inner curve and the reversed outer curve into a
// C-shaped limb, shifted by vd.
func coilFromCurves(inner, outer [][2]float64, vd float64, withLeg bool) CoilProfile {
	shift := func(pts [][2]float64) [][2]float64 {
		out := make([][2]float64, len(pts))
		for i, p := range pts {
			out[i] = [2]float64{p[0], p[1] + vd}
		}
		return out
	}
	inner, outer = shift(inner), shift(outer)
	pts := closeStraight(tagged(inner, geom.KindStraight))
	pts = append(pts, closeStraight(tagged(outer, geom.KindStraight))...)
	p := CoilProfile{Points: pts}
	if withLeg {
		p.InnerLeg = legFrom([4][2]float64{inner[0], inner[len(inner)-1], outer[0], outer[len(outer)-1]})
	}
	return p
}

// TFCoilCoatHanger is a TF coil with horizontal top and bottom limbs, a
// vertical outboard limb and slanted joints between them.
type TFCoilCoatHanger struct {
	HorizontalStart  [2]float64 `yaml:"horizontal_start_point" json:"horizontal_start_point"`
	HorizontalLength float64    `yaml:"horizontal_length" json:"horizontal_length"`
	VerticalMid      [2]float64 `yaml:"vertical_mid_point" json:"vertical_mid_point"`
	VerticalLength   float64    `yaml:"vertical_length" json:"vertical_length"`
	Thickness        float64    `yaml:"thickness" json:"thickness"`
	WithInnerLeg     bool       `yaml:"with_inner_leg" json:"with_inner_leg"`
}

// Profile returns the coil cross section.
func (c TFCoilCoatHanger) Profile() (CoilProfile, error) {
	const op = "profile.TFCoilCoatHanger"
	for _, v := range []struct {
		name string
		v    float64
	}{{"horizontal_length", c.HorizontalLength}, {"vertical_length", c.VerticalLength}, {"thickness", c.Thickness}} {
		if err := positive(op, v.name, v.v); err != nil {
			return CoilProfile{}, err
		}
	}
	hs, vm, t := c.HorizontalStart, c.VerticalMid, c.Thickness
	hl, vl := c.HorizontalLength, c.VerticalLength/2
	adj := vm[0] - (hs[0] + hl)
	opp := hs[1] - (vm[1] + vl)
	if !(adj > 0) || !(opp > 0) {
		return CoilProfile{}, errdefs.Invalidf(op, "vertical limb must lie outboard of and below the horizontal limb end")
	}
	rot := math.Atan(opp / adj)
	rotMid := math.Pi/2 - rot

	p2 := [2]float64{hs[0] + hl, hs[1]}
	p3 := [2]float64{vm[0], vm[1] + vl}
	p4 := [2]float64{vm[0], vm[1] - vl}
	p5 := [2]float64{hs[0] + hl, -hs[1]}
	p8 := [2]float64{hs[0] + hl, -hs[1] - t}
	p11 := [2]float64{vm[0] + t, vm[1] - vl}
	p12 := [2]float64{vm[0] + t, vm[1] + vl}
	p15 := [2]float64{hs[0] + hl, hs[1] + t}
	raw := [][2]float64{
		hs,
		p2,
		p3,
		p4,
		p5,
		{hs[0], -hs[1]},
		{hs[0], -hs[1] - t},
		p8,
		geom.Rotate(p5, p8, rot),
		geom.Rotate(p4, p11, -rotMid),
		p11,
		p12,
		geom.Rotate(p3, p12, rotMid),
		geom.Rotate(p2, p15, -rot),
		p15,
		{hs[0], hs[1] + t},
	}
	p := CoilProfile{Points: closeStraight(tagged(raw, geom.KindStraight))}
	if c.WithInnerLeg {
		p.InnerLeg = legFrom([4][2]float64{raw[0], {raw[0][0] + t, raw[0][1]}, {raw[5][0] + t, raw[5][1]}, raw[5]})
	}
	return p, nil
}
