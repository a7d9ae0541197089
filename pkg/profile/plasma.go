package profile

import (
	"math"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
)

// MinPlasmaPoints is the smallest number of separatrix samples produced.
const MinPlasmaPoints = 50

// Plasma holds the shape coefficients of a plasma separatrix.
type Plasma struct {
	MajorRadius          float64       `yaml:"major_radius" json:"major_radius"`
	MinorRadius          float64       `yaml:"minor_radius" json:"minor_radius"`
	Elongation           float64       `yaml:"elongation" json:"elongation"`
	Triangularity        float64       `yaml:"triangularity" json:"triangularity"`
	VerticalDisplacement float64       `yaml:"vertical_displacement" json:"vertical_displacement"`
	Configuration        Configuration `yaml:"configuration" json:"configuration"`
	XPointShift          float64       `yaml:"x_point_shift" json:"x_point_shift"`
	NumPoints            int           `yaml:"num_points" json:"num_points"`
}

// DefaultPlasma returns the reference plasma.
func DefaultPlasma() Plasma {
	return Plasma{
		MajorRadius:   450,
		MinorRadius:   150,
		Elongation:    2,
		Triangularity: 0.55,
		Configuration: NonNull,
		XPointShift:   0.1,
		NumPoints:     MinPlasmaPoints,
	}
}

// PlasmaFromPoints derives a plasma from its outer and inner equatorial
// radii and its high point.
func PlasmaFromPoints(outerX, innerX float64, high [2]float64, cfg Configuration) Plasma {
	p := DefaultPlasma()
	p.MajorRadius = (outerX + innerX) / 2
	p.MinorRadius = (outerX - innerX) / 2
	p.Elongation = high[1] / p.MinorRadius
	p.Triangularity = (p.MajorRadius - high[0]) / p.MinorRadius
	p.Configuration = cfg
	return p
}

// Validate checks the coefficient ranges.
func (p Plasma) Validate() error {
	const op = "profile.Plasma"
	if !finite(p.MajorRadius, p.MinorRadius, p.Elongation, p.Triangularity, p.VerticalDisplacement, p.XPointShift) {
		return errdefs.Invalidf(op, "non-finite coefficient")
	}
	if !(p.MinorRadius > 0 && p.MinorRadius <= 2000) {
		return errdefs.Invalidf(op, "minor_radius %v outside (0, 2000]", p.MinorRadius)
	}
	if !(p.MajorRadius > 0 && p.MajorRadius <= 2000) {
		return errdefs.Invalidf(op, "major_radius %v outside (0, 2000]", p.MajorRadius)
	}
	if !(p.Elongation > 0 && p.Elongation <= 10) {
		return errdefs.Invalidf(op, "elongation %v outside (0, 10]", p.Elongation)
	}
	switch p.Configuration {
	case NonNull, SingleNull, DoubleNull:
	default:
		return errdefs.Invalidf(op, "unknown configuration %d", int(p.Configuration))
	}
	return nil
}

// At returns the separatrix point at parametric angle theta (radians).
func (p Plasma) At(theta float64) [2]float64 {
	return [2]float64{
		p.MajorRadius + p.MinorRadius*math.Cos(theta+p.Triangularity*math.Sin(theta)),
		p.Elongation*p.MinorRadius*math.Sin(theta) + p.VerticalDisplacement,
	}
}

// Normal returns the outward unit normal of the separatrix at theta.
func (p Plasma) Normal(theta float64) [2]float64 {
	dR := -p.MinorRadius * math.Sin(theta+p.Triangularity*math.Sin(theta)) * (1 + p.Triangularity*math.Cos(theta))
	dZ := p.Elongation * p.MinorRadius * math.Cos(theta)
	l := math.Hypot(dR, dZ)
	if l == 0 {
		return [2]float64{}
	}
	return [2]float64{dZ / l, -dR / l}
}

// Points samples the separatrix as a closed spline.
func (p Plasma) Points() ([]geom.Point, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := max(p.NumPoints, MinPlasmaPoints)
	thetas := geom.Linspace(0, 2*math.Pi, n, false)
	raw := make([][2]float64, n)
	for i, th := range thetas {
		raw[i] = p.At(th)
	}
	return closeStraight(tagged(raw, geom.KindSpline)), nil
}

// HighPoint is the top of the separatrix.
func (p Plasma) HighPoint() [2]float64 {
	return [2]float64{p.MajorRadius - p.Triangularity*p.MinorRadius, p.Elongation*p.MinorRadius + p.VerticalDisplacement}
}

// LowPoint is the bottom of the separatrix.
func (p Plasma) LowPoint() [2]float64 {
	return [2]float64{p.MajorRadius - p.Triangularity*p.MinorRadius, -p.Elongation*p.MinorRadius + p.VerticalDisplacement}
}

// OuterEquatorialPoint is the outboard midplane point.
func (p Plasma) OuterEquatorialPoint() [2]float64 {
	return [2]float64{p.MajorRadius + p.MinorRadius, p.VerticalDisplacement}
}

// InnerEquatorialPoint is the inboard midplane point.
func (p Plasma) InnerEquatorialPoint() [2]float64 {
	return [2]float64{p.MajorRadius - p.MinorRadius, p.VerticalDisplacement}
}

// XPoints returns the lower and upper X-points. A non-null plasma has
// neither, a single-null plasma only the lower one.
func (p Plasma) XPoints() (lower, upper *[2]float64) {
	if p.Configuration != SingleNull && p.Configuration != DoubleNull {
		return nil, nil
	}
	s := 1 + p.XPointShift
	x := 1 - s*p.Triangularity*p.MinorRadius
	lower = &[2]float64{x, -s*p.Elongation*p.MinorRadius + p.VerticalDisplacement}
	if p.Configuration == DoubleNull {
		upper = &[2]float64{x, s*p.Elongation*p.MinorRadius + p.VerticalDisplacement}
	}
	return lower, upper
}
