package profile

import (
	"math"

	"github.com/chazu/reactorcad/pkg/errdefs"
)

// princetonSteps is the number of integration steps along each half of
// the D.
const princetonSteps = 140

// TFCoilPrincetonD is a constant-tension Princeton-D TF coil. R1 is the
// inboard radius of the outer face of the inner leg and R2 the outboard
// radius of the D.
type TFCoilPrincetonD struct {
	R1                   float64 `yaml:"r1" json:"r1"`
	R2                   float64 `yaml:"r2" json:"r2"`
	Thickness            float64 `yaml:"thickness" json:"thickness"`
	VerticalDisplacement float64 `yaml:"vertical_displacement" json:"vertical_displacement"`
	WithInnerLeg         bool    `yaml:"with_inner_leg" json:"with_inner_leg"`
}

// Validate checks the radii.
func (c TFCoilPrincetonD) Validate() error {
	const op = "profile.TFCoilPrincetonD"
	if err := positive(op, "r1", c.R1); err != nil {
		return err
	}
	if err := positive(op, "thickness", c.Thickness); err != nil {
		return err
	}
	if !(c.R1+c.Thickness < c.R2) || !finite(c.R2, c.VerticalDisplacement) {
		return errdefs.Invalidf(op, "r1 + thickness (%v) must be less than r2 (%v)", c.R1+c.Thickness, c.R2)
	}
	return nil
}

// princetonD solves the constant-tension D between r1 and r2, where the
// curvature is 1/(k R) with k = ln(r2/r1)/2.
//
// With the tangent angle a, R(a) = R0 exp(-k sin a) and dz/da = -k R sin a
// for a in [-pi/2, pi/2], R0 = sqrt(r1 r2). The curve is vertical at both
// ends and z(r2) = 0. The upper half is returned from r1 to r2 together
// with the outward normals.
func princetonD(r1, r2 float64, steps int) (pts, normals [][2]float64) {
	k := 0.5 * math.Log(r2/r1)
	r0 := math.Sqrt(r1 * r2)
	radius := func(a float64) float64 { return r0 * math.Exp(-k*math.Sin(a)) }
	dz := func(a float64) float64 { return -k * radius(a) * math.Sin(a) }

	// Integrate from the outboard midplane (a = -pi/2, z = 0) to r1.
	h := math.Pi / float64(steps)
	zs := make([]float64, steps+1)
	for i := 0; i < steps; i++ {
		a := -math.Pi/2 + float64(i)*h
		k1 := dz(a)
		k2 := dz(a + h/2)
		k4 := dz(a + h)
		zs[i+1] = zs[i] + h/6*(k1+4*k2+k4)
	}
	for i := steps; i >= 0; i-- {
		a := -math.Pi/2 + float64(i)*h
		pts = append(pts, [2]float64{radius(a), zs[i]})
		normals = append(normals, [2]float64{-math.Sin(a), math.Cos(a)})
	}
	pts[0][0], pts[steps][0] = r1, r2
	return pts, normals
}

// Profile returns the coil cross section. The inner face of the D starts
// at R1 + Thickness so the outer face of the inner leg sits at R1.
func (c TFCoilPrincetonD) Profile() (CoilProfile, error) {
	if err := c.Validate(); err != nil {
		return CoilProfile{}, err
	}
	upper, normals := princetonD(c.R1+c.Thickness, c.R2, princetonSteps)
	n := len(upper)
	inner := make([][2]float64, 0, 2*n-1)
	offset := make([][2]float64, 0, 2*n-1)
	inner = append(inner, upper...)
	for i, p := range upper {
		offset = append(offset, [2]float64{p[0] + c.Thickness*normals[i][0], p[1] + c.Thickness*normals[i][1]})
	}
	for i := n - 2; i >= 0; i-- {
		p, nm := upper[i], normals[i]
		inner = append(inner, [2]float64{p[0], -p[1]})
		offset = append(offset, [2]float64{p[0] + c.Thickness*nm[0], -p[1] - c.Thickness*nm[1]})
	}
	return coilFromCurves(inner, reversed(offset), c.VerticalDisplacement, c.WithInnerLeg), nil
}

// Height returns the vertical extent of the straight inner leg face.
func (c TFCoilPrincetonD) Height() float64 {
	upper, _ := princetonD(c.R1+c.Thickness, c.R2, princetonSteps)
	return 2 * upper[0][1]
}
