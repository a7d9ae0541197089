package profile

import (
	"math"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
)

// VerticalTarget describes one leg of an ITER-like divertor: a circular
// part of Radius and Coverage degrees ending at Anchor, followed by a
// straight leg of Length, all tilted by Tilt degrees about the anchor.
type VerticalTarget struct {
	Anchor   [2]float64 `yaml:"anchor" json:"anchor"`
	Coverage float64    `yaml:"coverage" json:"coverage"`
	Radius   float64    `yaml:"radius" json:"radius"`
	Length   float64    `yaml:"length" json:"length"`
	Tilt     float64    `yaml:"tilt" json:"tilt"`
}

// Dome is the optional dome between the two vertical targets. Position is
// the relative location of the dome along the chord between the leg ends.
type Dome struct {
	Height    float64 `yaml:"height" json:"height"`
	Length    float64 `yaml:"length" json:"length"`
	Thickness float64 `yaml:"thickness" json:"thickness"`
	Position  float64 `yaml:"position" json:"position"`
}

// DivertorITER is an ITER-like divertor cross section. A nil Dome gives
// the no-dome variant.
type DivertorITER struct {
	Inner VerticalTarget `yaml:"inner" json:"inner"`
	Outer VerticalTarget `yaml:"outer" json:"outer"`
	Dome  *Dome          `yaml:"dome,omitempty" json:"dome,omitempty"`
}

// DefaultDivertorITER returns the reference ITER-like divertor with dome.
func DefaultDivertorITER() DivertorITER {
	return DivertorITER{
		Inner: VerticalTarget{Anchor: [2]float64{450, -300}, Coverage: 90, Radius: 50, Length: 78, Tilt: -27},
		Outer: VerticalTarget{Anchor: [2]float64{561, -367}, Coverage: 180, Radius: 25, Length: 87, Tilt: 0},
		Dome:  &Dome{Height: 43, Length: 66, Thickness: 10, Position: 0.5},
	}
}

// Validate checks the target and dome dimensions.
func (d DivertorITER) Validate() error {
	const op = "profile.DivertorITER"
	for _, vt := range []VerticalTarget{d.Inner, d.Outer} {
		if err := positive(op, "radius", vt.Radius); err != nil {
			return err
		}
		if err := positive(op, "length", vt.Length); err != nil {
			return err
		}
		if !finite(vt.Anchor[0], vt.Anchor[1], vt.Coverage, vt.Tilt) {
			return errdefs.Invalidf(op, "non-finite vertical target parameters")
		}
		if vt.Coverage <= 0 || vt.Coverage >= 360 {
			return errdefs.Invalidf(op, "coverage %v outside (0, 360)", vt.Coverage)
		}
	}
	if d.Dome != nil {
		if err := positive(op, "dome height", d.Dome.Height); err != nil {
			return err
		}
		if err := positive(op, "dome length", d.Dome.Length); err != nil {
			return err
		}
		if err := positive(op, "dome thickness", d.Dome.Thickness); err != nil {
			return err
		}
		if !(d.Dome.Position > 0 && d.Dome.Position < 1) {
			return errdefs.Invalidf(op, "dome position %v outside (0, 1)", d.Dome.Position)
		}
	}
	return nil
}

// verticalTarget returns A, A', B and C: arc start, arc mid, anchor and
// leg end. coverage and tilt are radians; radius is signed.
func verticalTarget(anchor [2]float64, coverage, tilt, radius, length float64) [4][2]float64 {
	center := [2]float64{anchor[0] + radius, anchor[1]}
	a := geom.Rotate(center, anchor, coverage)
	aMid := geom.Rotate(center, anchor, coverage/2)
	c := [2]float64{anchor[0], anchor[1] - length}
	return [4][2]float64{
		geom.Rotate(anchor, a, tilt),
		geom.Rotate(anchor, aMid, tilt),
		anchor,
		geom.Rotate(anchor, c, tilt),
	}
}

// Points returns the divertor cross section.
func (d DivertorITER) Points() ([]geom.Point, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	c, s := geom.KindCircle, geom.KindStraight

	ivt := verticalTarget(d.Inner.Anchor, radians(d.Inner.Coverage), radians(d.Inner.Tilt), -d.Inner.Radius, d.Inner.Length)
	ovt := verticalTarget(d.Outer.Anchor, -radians(d.Outer.Coverage), radians(d.Outer.Tilt), d.Outer.Radius, d.Outer.Length)

	pts := []geom.Point{
		geom.PK(ivt[0][0], ivt[0][1], c),
		geom.PK(ivt[1][0], ivt[1][1], c),
		geom.PK(ivt[2][0], ivt[2][1], s),
		geom.PK(ivt[3][0], ivt[3][1], s),
	}
	cEnd, fEnd := ivt[3], ovt[3]

	if d.Dome != nil {
		chord := geom.Distance(fEnd, cEnd)
		base := geom.Extend(cEnd, fEnd, d.Dome.Position*chord)
		lower := geom.Extend(base, geom.Rotate(base, cEnd, -math.Pi/2), d.Dome.Height)
		dPrime := geom.Extend(base, lower, d.Dome.Height+d.Dome.Thickness)
		dPt := geom.Extend(lower, geom.Rotate(lower, dPrime, math.Pi/2), d.Dome.Length/2)
		ePt := geom.Extend(lower, geom.Rotate(lower, dPrime, -math.Pi/2), d.Dome.Length/2)
		pts = append(pts,
			geom.PK(dPt[0], dPt[1], c),
			geom.PK(dPrime[0], dPrime[1], c),
			geom.PK(ePt[0], ePt[1], s),
		)
	}

	// Outer target runs leg end to arc start.
	pts = append(pts,
		geom.PK(ovt[3][0], ovt[3][1], s),
		geom.PK(ovt[2][0], ovt[2][1], c),
		geom.PK(ovt[1][0], ovt[1][1], c),
		geom.PK(ovt[0][0], ovt[0][1], s),
	)

	chord := geom.Distance(fEnd, cEnd)
	i := geom.Extend(cEnd, fEnd, 1.1*chord)
	j := geom.Extend(d.Outer.Anchor, fEnd, 1.2*d.Outer.Length)
	k := geom.Extend(d.Inner.Anchor, cEnd, 1.2*d.Inner.Length)
	l := geom.Extend(fEnd, cEnd, 1.1*chord)
	pts = append(pts, tagged([][2]float64{i, j, k, l}, s)...)
	return pts, nil
}
