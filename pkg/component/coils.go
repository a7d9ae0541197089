package component

import (
	"fmt"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
	"github.com/chazu/reactorcad/pkg/profile"
	"github.com/chazu/reactorcad/pkg/shape"
)

// ---------------------------------------------------------------------------
// Poloidal field coils
// ---------------------------------------------------------------------------

// PFCoil returns a revolved rectangular PF coil.
func PFCoil(coil profile.PFCoil, c Common) (*shape.Shape, error) {
	pts, err := coil.Points()
	if err != nil {
		return nil, err
	}
	return revolved(c, "pf_coil", "pf_coil_mat", pts)
}

// PFCoilCase returns the casing around a PF coil: the outer rectangle with
// the coil cut out.
func PFCoilCase(cs profile.PFCoilCase, c Common) (*shape.Shape, error) {
	outer, err := cs.Outer()
	if err != nil {
		return nil, err
	}
	inner, err := PFCoil(cs.Coil, Common{RotationAngle: c.RotationAngle, Placement: c.Placement})
	if err != nil {
		return nil, err
	}
	pts, err := outer.Points()
	if err != nil {
		return nil, err
	}
	c.Cut = append(append([]shape.Operand(nil), c.Cut...), inner)
	return revolved(c, "pf_coil_case", "pf_coil_case_mat", pts)
}

// PFCoilSet returns the coils of set as one shape: the first coil with the
// rest unioned onto it.
func PFCoilSet(set profile.PFCoilSet, c Common) (*shape.Shape, error) {
	coils, err := set.Coils()
	if err != nil {
		return nil, err
	}
	return coilUnion(coils, c, func(coil profile.PFCoil, c Common) (*shape.Shape, error) {
		return PFCoil(coil, c)
	})
}

// PFCoilCaseSet returns one casing per coil of set, unioned into a single
// shape.
func PFCoilCaseSet(set profile.PFCoilSet, thickness float64, c Common) (*shape.Shape, error) {
	coils, err := set.Coils()
	if err != nil {
		return nil, err
	}
	return coilUnion(coils, c, func(coil profile.PFCoil, c Common) (*shape.Shape, error) {
		return PFCoilCase(profile.PFCoilCase{Coil: coil, CasingThickness: thickness}, c)
	})
}

func coilUnion(coils []profile.PFCoil, c Common, build func(profile.PFCoil, Common) (*shape.Shape, error)) (*shape.Shape, error) {
	member := Common{RotationAngle: c.RotationAngle, Placement: c.Placement}
	rest := make([]shape.Operand, 0, len(coils)-1)
	for i, coil := range coils[1:] {
		member.Name = fmt.Sprintf("coil_%d", i+1)
		s, err := build(coil, member)
		if err != nil {
			return nil, err
		}
		rest = append(rest, s)
	}
	c.Union = append(append([]shape.Operand(nil), c.Union...), rest...)
	return build(coils[0], c)
}

// ---------------------------------------------------------------------------
// Toroidal field coils
// ---------------------------------------------------------------------------

// TFOptions are the extrusion settings shared by outboard TF coils.
type TFOptions struct {
	// Distance is the toroidal thickness of each coil.
	Distance      float64 `yaml:"distance" json:"distance"`
	NumberOfCoils int     `yaml:"number_of_coils" json:"number_of_coils"`
}

// TFCoil extrudes a coil profile symmetrically about the XZ plane and
// places NumberOfCoils copies evenly about Z. The inner leg, when present,
// is unioned onto the limb.
func TFCoil(cp profile.CoilProfile, o TFOptions, c Common) (*shape.Shape, error) {
	const op = "component.TFCoil"
	if o.NumberOfCoils < 1 {
		return nil, errdefs.Invalidf(op, "number_of_coils must be at least 1, got %d", o.NumberOfCoils)
	}
	if c.Placement == nil {
		c.Placement = geom.Linspace(0, 360, o.NumberOfCoils, false)
	}
	verb := shape.Extrude{Distance: o.Distance, Both: true}
	if c.rotation() < 360 {
		verb.RotationAngle = c.rotation()
	}
	if len(cp.InnerLeg) > 0 {
		leg, err := shape.New(shape.Params{
			Name:      "inner_leg",
			Points:    cp.InnerLeg,
			Verb:      shape.Extrude{Distance: o.Distance, Both: true},
			Placement: c.Placement,
		})
		if err != nil {
			return nil, err
		}
		c.Union = append(append([]shape.Operand(nil), c.Union...), leg)
	}
	p := c.params("toroidal_field_coil", "outer_tf_coil_mat")
	p.Points = cp.Points
	p.Verb = verb
	return shape.New(p)
}

// TFCoilRectangle returns rectangular TF coils.
func TFCoilRectangle(cfg profile.TFCoilRectangle, o TFOptions, c Common) (*shape.Shape, error) {
	cp, err := cfg.Profile()
	if err != nil {
		return nil, err
	}
	return TFCoil(cp, o, c)
}

// TFCoilPrincetonD returns constant-tension Princeton-D TF coils.
func TFCoilPrincetonD(cfg profile.TFCoilPrincetonD, o TFOptions, c Common) (*shape.Shape, error) {
	cp, err := cfg.Profile()
	if err != nil {
		return nil, err
	}
	return TFCoil(cp, o, c)
}

// TFCoilTripleArc returns triple-arc TF coils.
func TFCoilTripleArc(cfg profile.TFCoilTripleArc, o TFOptions, c Common) (*shape.Shape, error) {
	cp, err := cfg.Profile()
	if err != nil {
		return nil, err
	}
	return TFCoil(cp, o, c)
}

// TFCoilCoatHanger returns coat-hanger TF coils.
func TFCoilCoatHanger(cfg profile.TFCoilCoatHanger, o TFOptions, c Common) (*shape.Shape, error) {
	cp, err := cfg.Profile()
	if err != nil {
		return nil, err
	}
	return TFCoil(cp, o, c)
}

// ---------------------------------------------------------------------------
// Inner TF coils
// ---------------------------------------------------------------------------

// InnerTFOptions place the inner TF coil wedges.
type InnerTFOptions struct {
	Height     float64 `yaml:"height" json:"height"`
	StartAngle float64 `yaml:"azimuth_start_angle" json:"azimuth_start_angle"`
}

func innerTF(pts []geom.Point, n int, o InnerTFOptions, c Common) (*shape.Shape, error) {
	if c.Placement == nil {
		c.Placement = geom.Linspace(o.StartAngle, 360+o.StartAngle, n, false)
	}
	z := shape.Axis{Label: "Z"}
	p := c.params("inner_tf_coil", "inner_tf_coil_mat")
	p.Points = pts
	p.Workplane = shape.XY
	p.RotationAxis = &z
	p.Verb = shape.Extrude{Distance: o.Height, Both: true}
	return shape.New(p)
}

// InnerTFCoilsCircular returns the wedge-shaped inner TF coils with
// circular faces.
func InnerTFCoilsCircular(cfg profile.InnerTFCoilsCircular, o InnerTFOptions, c Common) (*shape.Shape, error) {
	pts, err := cfg.Points()
	if err != nil {
		return nil, err
	}
	return innerTF(pts, cfg.NumberOfCoils, o, c)
}

// InnerTFCoilsFlat returns the wedge-shaped inner TF coils with flat
// faces.
func InnerTFCoilsFlat(cfg profile.InnerTFCoilsFlat, o InnerTFOptions, c Common) (*shape.Shape, error) {
	pts, err := cfg.Points()
	if err != nil {
		return nil, err
	}
	return innerTF(pts, cfg.NumberOfCoils, o, c)
}
