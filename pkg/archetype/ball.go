package archetype

import (
	"fmt"
	"math"

	"github.com/chazu/reactorcad/pkg/component"
	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
	"github.com/chazu/reactorcad/pkg/profile"
	"github.com/chazu/reactorcad/pkg/radialbuild"
	"github.com/chazu/reactorcad/pkg/shape"
)

// Ball is a spherical tokamak: a cylindrical center column, a blanket
// wrapping the plasma poloidally, upper and lower divertors and optional
// PF and TF coils.
type Ball struct {
	InnerBoreRadialThickness          float64 `yaml:"inner_bore_radial_thickness" json:"inner_bore_radial_thickness"`
	InboardTFLegRadialThickness       float64 `yaml:"inboard_tf_leg_radial_thickness" json:"inboard_tf_leg_radial_thickness"`
	CenterColumnShieldRadialThickness float64 `yaml:"center_column_shield_radial_thickness" json:"center_column_shield_radial_thickness"`
	DivertorRadialThickness           float64 `yaml:"divertor_radial_thickness" json:"divertor_radial_thickness"`
	InnerPlasmaGapRadialThickness     float64 `yaml:"inner_plasma_gap_radial_thickness" json:"inner_plasma_gap_radial_thickness"`
	PlasmaRadialThickness             float64 `yaml:"plasma_radial_thickness" json:"plasma_radial_thickness"`
	OuterPlasmaGapRadialThickness     float64 `yaml:"outer_plasma_gap_radial_thickness" json:"outer_plasma_gap_radial_thickness"`
	PlasmaGapVerticalThickness        float64 `yaml:"plasma_gap_vertical_thickness" json:"plasma_gap_vertical_thickness"`
	FirstwallRadialThickness          float64 `yaml:"firstwall_radial_thickness" json:"firstwall_radial_thickness"`
	BlanketRadialThickness            float64 `yaml:"blanket_radial_thickness" json:"blanket_radial_thickness"`
	BlanketRearWallRadialThickness    float64 `yaml:"blanket_rear_wall_radial_thickness" json:"blanket_rear_wall_radial_thickness"`

	Elongation    float64 `yaml:"elongation" json:"elongation"`
	Triangularity float64 `yaml:"triangularity" json:"triangularity"`
	RotationAngle float64 `yaml:"rotation_angle" json:"rotation_angle"`

	// PF coils are optional; the four lists must have equal lengths.
	PFCoilRadialThicknesses   []float64 `yaml:"pf_coil_radial_thicknesses,omitempty" json:"pf_coil_radial_thicknesses,omitempty"`
	PFCoilVerticalThicknesses []float64 `yaml:"pf_coil_vertical_thicknesses,omitempty" json:"pf_coil_vertical_thicknesses,omitempty"`
	PFCoilRadialPositions     []float64 `yaml:"pf_coil_radial_position,omitempty" json:"pf_coil_radial_position,omitempty"`
	PFCoilVerticalPositions   []float64 `yaml:"pf_coil_vertical_position,omitempty" json:"pf_coil_vertical_position,omitempty"`
	PFCoilCaseThickness       float64   `yaml:"pf_coil_case_thickness,omitempty" json:"pf_coil_case_thickness,omitempty"`

	// Outboard TF coils are built when both thicknesses are positive.
	OutboardTFCoilRadialThickness   float64 `yaml:"outboard_tf_coil_radial_thickness,omitempty" json:"outboard_tf_coil_radial_thickness,omitempty"`
	OutboardTFCoilPoloidalThickness float64 `yaml:"outboard_tf_coil_poloidal_thickness,omitempty" json:"outboard_tf_coil_poloidal_thickness,omitempty"`
	TFCoilToRearBlanketRadialGap    float64 `yaml:"tf_coil_to_rear_blanket_radial_gap,omitempty" json:"tf_coil_to_rear_blanket_radial_gap,omitempty"`
	NumberOfTFCoils                 int     `yaml:"number_of_tf_coils" json:"number_of_tf_coils"`
}

// DefaultBall returns a ball reactor with no PF or outboard TF coils.
func DefaultBall() Ball {
	return Ball{
		InnerBoreRadialThickness:          50,
		InboardTFLegRadialThickness:       50,
		CenterColumnShieldRadialThickness: 60,
		DivertorRadialThickness:           50,
		InnerPlasmaGapRadialThickness:     30,
		PlasmaRadialThickness:             300,
		OuterPlasmaGapRadialThickness:     30,
		PlasmaGapVerticalThickness:        50,
		FirstwallRadialThickness:          30,
		BlanketRadialThickness:            50,
		BlanketRearWallRadialThickness:    30,
		Elongation:                        2,
		Triangularity:                     0.55,
		RotationAngle:                     180,
		TFCoilToRearBlanketRadialGap:      50,
		NumberOfTFCoils:                   16,
	}
}

func (b Ball) hasPFCoils() bool { return len(b.PFCoilRadialPositions) > 0 }

func (b Ball) hasTFCoils() bool {
	return b.OutboardTFCoilRadialThickness > 0 && b.OutboardTFCoilPoloidalThickness > 0
}

// Validate checks the ball parameters.
func (b Ball) Validate() error {
	const op = "archetype.Ball"
	if err := checkPositive(op, map[string]float64{
		"inboard_tf_leg_radial_thickness":       b.InboardTFLegRadialThickness,
		"center_column_shield_radial_thickness": b.CenterColumnShieldRadialThickness,
		"divertor_radial_thickness":             b.DivertorRadialThickness,
		"plasma_radial_thickness":               b.PlasmaRadialThickness,
		"firstwall_radial_thickness":            b.FirstwallRadialThickness,
		"blanket_radial_thickness":              b.BlanketRadialThickness,
		"blanket_rear_wall_radial_thickness":    b.BlanketRearWallRadialThickness,
		"elongation":                            b.Elongation,
	}); err != nil {
		return err
	}
	if err := checkNonNegative(op, map[string]float64{
		"inner_bore_radial_thickness":        b.InnerBoreRadialThickness,
		"inner_plasma_gap_radial_thickness":  b.InnerPlasmaGapRadialThickness,
		"outer_plasma_gap_radial_thickness":  b.OuterPlasmaGapRadialThickness,
		"plasma_gap_vertical_thickness":      b.PlasmaGapVerticalThickness,
		"pf_coil_case_thickness":             b.PFCoilCaseThickness,
		"outboard_tf_coil_radial_thickness":  b.OutboardTFCoilRadialThickness,
		"tf_coil_to_rear_blanket_radial_gap": b.TFCoilToRearBlanketRadialGap,
	}); err != nil {
		return err
	}
	if err := checkRotation(op, b.RotationAngle, true); err != nil {
		return err
	}
	n := len(b.PFCoilRadialPositions)
	if len(b.PFCoilVerticalPositions) != n || len(b.PFCoilRadialThicknesses) != n || len(b.PFCoilVerticalThicknesses) != n {
		return errdefs.Invalidf(op, "pf coil positions and thicknesses have lengths %d, %d, %d and %d",
			n, len(b.PFCoilVerticalPositions), len(b.PFCoilRadialThicknesses), len(b.PFCoilVerticalThicknesses))
	}
	if b.hasTFCoils() && b.NumberOfTFCoils < 1 {
		return errdefs.Invalidf(op, "number_of_tf_coils must be at least 1, got %d", b.NumberOfTFCoils)
	}
	return nil
}

// ballLayout is a resolved ball build.
type ballLayout struct {
	table  *radialbuild.Table
	plasma profile.Plasma

	tfLeg     radialbuild.Extent
	shield    radialbuild.Extent
	divertor  radialbuild.Extent
	rearWall  radialbuild.Extent
	topHeight float64
}

// layout resolves the radial and vertical builds. inboard layers sit
// between the center column shield and the inner plasma gap.
func (b Ball) layout(cfg profile.Configuration, inboard ...radialbuild.Layer) (ballLayout, error) {
	radial := []radialbuild.Layer{
		{Label: "inner_bore", Kind: radialbuild.Gap, Thickness: b.InnerBoreRadialThickness},
		{Label: "inboard_tf_coils", Kind: radialbuild.Solid, Thickness: b.InboardTFLegRadialThickness},
		{Label: "center_column_shield", Kind: radialbuild.Solid, Thickness: b.CenterColumnShieldRadialThickness},
	}
	radial = append(radial, inboard...)
	radial = append(radial,
		radialbuild.Layer{Label: "inner_plasma_gap", Kind: radialbuild.Gap, Thickness: b.InnerPlasmaGapRadialThickness},
		radialbuild.Layer{Label: "plasma", Kind: radialbuild.Plasma, Thickness: b.PlasmaRadialThickness},
		radialbuild.Layer{Label: "outer_plasma_gap", Kind: radialbuild.Gap, Thickness: b.OuterPlasmaGapRadialThickness},
		radialbuild.Layer{Label: "firstwall", Kind: radialbuild.Solid, Thickness: b.FirstwallRadialThickness},
		radialbuild.Layer{Label: "blanket", Kind: radialbuild.Solid, Thickness: b.BlanketRadialThickness},
		radialbuild.Layer{Label: "rear_wall", Kind: radialbuild.Solid, Thickness: b.BlanketRearWallRadialThickness},
	)
	vertical := []radialbuild.Layer{
		{Label: "rear_wall_lower", Kind: radialbuild.Solid, Thickness: b.BlanketRearWallRadialThickness},
		{Label: "blanket_lower", Kind: radialbuild.Solid, Thickness: b.BlanketRadialThickness},
		{Label: "firstwall_lower", Kind: radialbuild.Solid, Thickness: b.FirstwallRadialThickness},
		{Label: "plasma_gap_lower", Kind: radialbuild.Gap, Thickness: b.PlasmaGapVerticalThickness},
		{Label: "plasma", Kind: radialbuild.Plasma, Thickness: b.Elongation * b.PlasmaRadialThickness},
		{Label: "plasma_gap_upper", Kind: radialbuild.Gap, Thickness: b.PlasmaGapVerticalThickness},
		{Label: "firstwall", Kind: radialbuild.Solid, Thickness: b.FirstwallRadialThickness},
		{Label: "blanket", Kind: radialbuild.Solid, Thickness: b.BlanketRadialThickness},
		{Label: "rear_wall", Kind: radialbuild.Solid, Thickness: b.BlanketRearWallRadialThickness},
	}
	t, err := radialbuild.Resolve(radial, vertical, radialbuild.Options{
		Elongation:    b.Elongation,
		Triangularity: b.Triangularity,
	})
	if err != nil {
		return ballLayout{}, err
	}

	pl := profile.DefaultPlasma()
	pl.MajorRadius = t.MajorRadius()
	pl.MinorRadius = t.MinorRadius()
	pl.Elongation = b.Elongation
	pl.Triangularity = b.Triangularity
	pl.Configuration = cfg

	a := t.Anchors()
	l := ballLayout{table: t, plasma: pl, rearWall: a.RearWall, topHeight: a.RearWallHeight.End}
	l.tfLeg, _ = t.Radial("inboard_tf_coils")
	l.shield, _ = t.Radial("center_column_shield")
	l.divertor = radialbuild.Extent{Start: a.Divertor.Start, End: a.Divertor.Start + b.DivertorRadialThickness}
	return l, nil
}

// offsets is the plasma offset profile of a full-coverage blanket, from the
// inboard midplane round through the outboard midplane and back. extra is
// added to the inboard, vertical and outboard gaps alike.
func (b Ball) offsets(extra float64) profile.Variation {
	in := b.InnerPlasmaGapRadialThickness + extra
	v := b.PlasmaGapVerticalThickness + extra
	out := b.OuterPlasmaGapRadialThickness + extra
	return profile.Profile(nil, []float64{in, v, out, v, in})
}

// blanket is a full-coverage blanket layer.
func (b Ball) blanket(l ballLayout, offset, thickness profile.Variation, c component.Common) (*shape.Shape, error) {
	c.RotationAngle = b.RotationAngle
	return component.BlanketFP(profile.BlanketFP{
		Plasma:           l.plasma,
		OffsetFromPlasma: offset,
		Thickness:        thickness,
		StartAngle:       -180,
		StopAngle:        180,
	}, c)
}

// inboard returns the inboard TF leg, the center column shield and the
// cutter that clears blanket material from the center column.
func (b Ball) inboard(l ballLayout) (tf, shield, cutter *shape.Shape, err error) {
	height := 2 * l.topHeight
	c := component.Common{RotationAngle: b.RotationAngle}

	tfc := c
	tfc.Name, tfc.Material = "inboard_tf_coils", "inboard_tf_coils_mat"
	if tf, err = component.CenterColumnShieldCylinder(height, l.tfLeg.Start, l.tfLeg.End, tfc); err != nil {
		return nil, nil, nil, err
	}
	if shield, err = component.CenterColumnShieldCylinder(height, l.shield.Start, l.shield.End, c); err != nil {
		return nil, nil, nil, err
	}
	cutter, err = rect{
		name: "center_column_cutter", material: "cutter",
		r0: 0, r1: l.divertor.Start, z0: -1.5 * height, z1: 1.5 * height,
	}.shape(b.RotationAngle, shape.Params{})
	return tf, shield, cutter, err
}

// divertors returns the divertor slices of the blanket envelope: upper,
// lower or both.
func (b Ball) divertors(l ballLayout, upper, lower bool, names ...string) ([]*shape.Shape, error) {
	envelope, err := b.blanket(l, b.offsets(0),
		profile.Constant(b.FirstwallRadialThickness+b.BlanketRadialThickness+b.BlanketRearWallRadialThickness),
		component.Common{Name: "divertor_envelope", Material: "cutter"})
	if err != nil {
		return nil, err
	}
	type side struct {
		on     bool
		z0, z1 float64
	}
	high, low := l.plasma.HighPoint()[1], l.plasma.LowPoint()[1]
	sides := []side{
		{upper, high, 2 * l.topHeight},
		{lower, -2 * l.topHeight, low},
	}
	var out []*shape.Shape
	for _, sd := range sides {
		if !sd.on {
			continue
		}
		name := names[len(out)]
		d, err := rect{
			name: name, material: "divertor_mat",
			r0: l.divertor.Start, r1: l.divertor.End, z0: sd.z0, z1: sd.z1,
		}.shape(b.RotationAngle, shape.Params{Intersect: []shape.Operand{envelope}})
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// walls returns the firstwall, blanket and rear wall layers, each cut by
// cuts.
func (b Ball) walls(l ballLayout, cuts []shape.Operand) ([]*shape.Shape, error) {
	fw, bl, rw := b.FirstwallRadialThickness, b.BlanketRadialThickness, b.BlanketRearWallRadialThickness
	layers := []struct {
		name, material string
		extra, thick   float64
	}{
		{"firstwall", "firstwall_mat", 0, fw},
		{"blanket", "blanket_mat", fw, bl},
		{"blanket_rear_wall", "blanket_rear_wall_mat", fw + bl, rw},
	}
	out := make([]*shape.Shape, 0, len(layers))
	for _, ly := range layers {
		s, err := b.blanket(l, b.offsets(ly.extra), profile.Constant(ly.thick),
			component.Common{Name: ly.name, Material: ly.material, Cut: cuts})
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// coils returns the optional PF coils, their cases and the outboard TF
// coils.
func (b Ball) coils(l ballLayout) ([]*shape.Shape, error) {
	var out []*shape.Shape
	c := component.Common{RotationAngle: b.RotationAngle}
	outer, top := l.rearWall.End, l.topHeight

	if b.hasPFCoils() {
		set := profile.PFCoilSet{
			Widths:  b.PFCoilRadialThicknesses,
			Heights: b.PFCoilVerticalThicknesses,
		}
		for i := range b.PFCoilRadialPositions {
			set.Centers = append(set.Centers, [2]float64{b.PFCoilRadialPositions[i], b.PFCoilVerticalPositions[i]})
		}
		pc := c
		pc.Name = "pf_coils"
		coils, err := component.PFCoilSet(set, pc)
		if err != nil {
			return nil, err
		}
		out = append(out, coils)
		casing := 0.0
		if b.PFCoilCaseThickness > 0 {
			cc := c
			cc.Name = "pf_coil_cases"
			cases, err := component.PFCoilCaseSet(set, b.PFCoilCaseThickness, cc)
			if err != nil {
				return nil, err
			}
			out = append(out, cases)
			casing = b.PFCoilCaseThickness
		}
		for i := range b.PFCoilRadialPositions {
			outer = max(outer, b.PFCoilRadialPositions[i]+b.PFCoilRadialThicknesses[i]/2+casing)
			top = max(top, math.Abs(b.PFCoilVerticalPositions[i])+b.PFCoilVerticalThicknesses[i]/2+casing)
		}
	}

	if b.hasTFCoils() {
		tc := c
		tc.Name, tc.Material = "tf_coils", "tf_coil_mat"
		tf, err := component.TFCoilRectangle(profile.TFCoilRectangle{
			HorizontalStart: [2]float64{l.tfLeg.Start, top + b.TFCoilToRearBlanketRadialGap},
			VerticalMid:     [2]float64{outer + b.TFCoilToRearBlanketRadialGap, 0},
			Thickness:       b.OutboardTFCoilRadialThickness,
		}, component.TFOptions{
			Distance:      b.OutboardTFCoilPoloidalThickness,
			NumberOfCoils: b.NumberOfTFCoils,
		}, tc)
		if err != nil {
			return nil, err
		}
		out = append(out, tf)
	}
	return out, nil
}

// plasmaShape is the revolved plasma of l.
func (b Ball) plasmaShape(l ballLayout) (*shape.Shape, error) {
	return component.Plasma(l.plasma, component.Common{RotationAngle: b.RotationAngle})
}

// Shapes builds the ball reactor.
func (b Ball) Shapes() ([]*shape.Shape, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	l, err := b.layout(profile.NonNull)
	if err != nil {
		return nil, err
	}
	return b.assemble(l, true, true, []string{"divertor_upper", "divertor_lower"}, nil)
}

// assemble builds the members shared by the ball family. walls, when not
// nil, replaces the default firstwall, blanket and rear wall layers.
func (b Ball) assemble(l ballLayout, upper, lower bool, divNames []string,
	walls func(cuts []shape.Operand) ([]*shape.Shape, error)) ([]*shape.Shape, error) {

	pl, err := b.plasmaShape(l)
	if err != nil {
		return nil, err
	}
	tf, shield, cutter, err := b.inboard(l)
	if err != nil {
		return nil, err
	}
	divs, err := b.divertors(l, upper, lower, divNames...)
	if err != nil {
		return nil, err
	}
	cuts := []shape.Operand{cutter}
	for _, d := range divs {
		cuts = append(cuts, d)
	}
	if walls == nil {
		walls = func(cuts []shape.Operand) ([]*shape.Shape, error) { return b.walls(l, cuts) }
	}
	ws, err := walls(cuts)
	if err != nil {
		return nil, err
	}
	coils, err := b.coils(l)
	if err != nil {
		return nil, err
	}

	out := []*shape.Shape{pl, tf, shield}
	out = append(out, divs...)
	out = append(out, ws...)
	return append(out, coils...), nil
}

// ---------------------------------------------------------------------------
// Single null
// ---------------------------------------------------------------------------

// SingleNullBall is a ball reactor with a single-null plasma and one
// divertor at the X-point end.
type SingleNullBall struct {
	Ball `yaml:",inline"`
	// DivertorPosition is "upper" or "lower".
	DivertorPosition string `yaml:"divertor_position" json:"divertor_position"`
}

// DefaultSingleNullBall returns a single-null ball with a lower divertor.
func DefaultSingleNullBall() SingleNullBall {
	return SingleNullBall{Ball: DefaultBall(), DivertorPosition: "lower"}
}

// Validate checks the ball parameters and the divertor position.
func (s SingleNullBall) Validate() error {
	if s.DivertorPosition != "upper" && s.DivertorPosition != "lower" {
		return errdefs.Invalidf("archetype.SingleNullBall", "divertor_position must be \"upper\" or \"lower\", got %q", s.DivertorPosition)
	}
	return s.Ball.Validate()
}

// Shapes builds the single-null ball reactor.
func (s SingleNullBall) Shapes() ([]*shape.Shape, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	l, err := s.layout(profile.SingleNull)
	if err != nil {
		return nil, err
	}
	upper := s.DivertorPosition == "upper"
	return s.assemble(l, upper, !upper, []string{"divertor"}, nil)
}

// ---------------------------------------------------------------------------
// Segmented blanket
// ---------------------------------------------------------------------------

// SegmentedBlanketBall is a ball reactor whose blanket is split into
// toroidal segments. The firstwall wraps each segment.
type SegmentedBlanketBall struct {
	Ball                    `yaml:",inline"`
	GapBetweenBlankets      float64 `yaml:"gap_between_blankets" json:"gap_between_blankets"`
	NumberOfBlanketSegments int     `yaml:"number_of_blanket_segments" json:"number_of_blanket_segments"`
}

// DefaultSegmentedBlanketBall returns a ball with four blanket segments.
func DefaultSegmentedBlanketBall() SegmentedBlanketBall {
	return SegmentedBlanketBall{Ball: DefaultBall(), GapBetweenBlankets: 30, NumberOfBlanketSegments: 4}
}

// Validate checks the ball parameters and the segmentation.
func (s SegmentedBlanketBall) Validate() error {
	const op = "archetype.SegmentedBlanketBall"
	if !(s.GapBetweenBlankets > 0) {
		return errdefs.Invalidf(op, "gap_between_blankets must be positive, got %v", s.GapBetweenBlankets)
	}
	if s.NumberOfBlanketSegments <= 2 {
		return errdefs.Invalidf(op, "number_of_blanket_segments must be greater than 2, got %d", s.NumberOfBlanketSegments)
	}
	return s.Ball.Validate()
}

// Shapes builds the segmented ball reactor.
func (s SegmentedBlanketBall) Shapes() ([]*shape.Shape, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	l, err := s.layout(profile.NonNull)
	if err != nil {
		return nil, err
	}
	return s.assemble(l, true, true, []string{"divertor_upper", "divertor_lower"}, func(cuts []shape.Operand) ([]*shape.Shape, error) {
		return s.segmentedWalls(l, cuts)
	})
}

func (s SegmentedBlanketBall) segmentedWalls(l ballLayout, cuts []shape.Operand) ([]*shape.Shape, error) {
	fw, bl, rw := s.FirstwallRadialThickness, s.BlanketRadialThickness, s.BlanketRearWallRadialThickness
	star := func(name string, distance float64) (*shape.Shape, error) {
		return component.BlanketCutterStar(component.StarCutter{
			Height:   4 * l.topHeight,
			Width:    2 * l.rearWall.End,
			Distance: distance,
		}, component.Common{
			Name:      name,
			Placement: geom.Linspace(0, 360, s.NumberOfBlanketSegments, false),
		})
	}
	thin, err := star("blanket_cutter_thin", s.GapBetweenBlankets)
	if err != nil {
		return nil, err
	}
	thick, err := star("blanket_cutter_thick", s.GapBetweenBlankets+2*fw)
	if err != nil {
		return nil, err
	}

	blanket, err := s.blanket(l, s.offsets(fw), profile.Constant(bl), component.Common{
		Name: "blanket", Material: "blanket_mat",
		Cut: append(append([]shape.Operand(nil), cuts...), thick),
	})
	if err != nil {
		return nil, err
	}
	firstwall, err := s.blanket(l, s.offsets(0), profile.Constant(fw+bl), component.Common{
		Name: "firstwall", Material: "firstwall_mat",
		Cut: append(append([]shape.Operand(nil), cuts...), thin, blanket),
	})
	if err != nil {
		return nil, err
	}
	rear, err := s.blanket(l, s.offsets(fw+bl), profile.Constant(rw), component.Common{
		Name: "blanket_rear_wall", Material: "blanket_rear_wall_mat", Cut: cuts,
	})
	if err != nil {
		return nil, err
	}
	return []*shape.Shape{firstwall, blanket, rear}, nil
}

// ---------------------------------------------------------------------------
// Submersion
// ---------------------------------------------------------------------------

// SubmersionBall is a ball reactor whose blanket also covers the inboard
// side, between the center column shield and the plasma. It needs outboard
// TF coils to close the magnet.
type SubmersionBall struct {
	Ball                            `yaml:",inline"`
	InboardFirstwallRadialThickness float64 `yaml:"inboard_firstwall_radial_thickness" json:"inboard_firstwall_radial_thickness"`
	InboardBlanketRadialThickness   float64 `yaml:"inboard_blanket_radial_thickness" json:"inboard_blanket_radial_thickness"`
}

// DefaultSubmersionBall returns a submersion ball with outboard TF coils.
func DefaultSubmersionBall() SubmersionBall {
	b := DefaultBall()
	b.InnerBoreRadialThickness = 10
	b.InboardTFLegRadialThickness = 30
	b.CenterColumnShieldRadialThickness = 60
	b.OutboardTFCoilRadialThickness = 30
	b.OutboardTFCoilPoloidalThickness = 30
	return SubmersionBall{Ball: b, InboardFirstwallRadialThickness: 20, InboardBlanketRadialThickness: 60}
}

// Validate checks the ball parameters and the inboard blanket.
func (s SubmersionBall) Validate() error {
	const op = "archetype.SubmersionBall"
	if err := checkPositive(op, map[string]float64{
		"inboard_firstwall_radial_thickness": s.InboardFirstwallRadialThickness,
		"inboard_blanket_radial_thickness":   s.InboardBlanketRadialThickness,
	}); err != nil {
		return err
	}
	if !s.hasTFCoils() {
		return errdefs.Invalidf(op, "outboard_tf_coil_radial_thickness and outboard_tf_coil_poloidal_thickness must be positive")
	}
	return s.Ball.Validate()
}

// Shapes builds the submersion ball reactor.
func (s SubmersionBall) Shapes() ([]*shape.Shape, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	l, err := s.layout(profile.NonNull,
		radialbuild.Layer{Label: "inboard_blanket", Kind: radialbuild.Solid, Thickness: s.InboardBlanketRadialThickness},
		radialbuild.Layer{Label: "inboard_firstwall", Kind: radialbuild.Solid, Thickness: s.InboardFirstwallRadialThickness},
	)
	if err != nil {
		return nil, err
	}
	// The inboard blanket sits outside the cutter, which stops at the shield.
	l.divertor.Start = l.shield.End
	l.divertor.End = l.shield.End + s.DivertorRadialThickness
	return s.assemble(l, true, true, []string{"divertor_upper", "divertor_lower"}, func(cuts []shape.Operand) ([]*shape.Shape, error) {
		return s.submersionWalls(l, cuts)
	})
}

func (s SubmersionBall) submersionWalls(l ballLayout, cuts []shape.Operand) ([]*shape.Shape, error) {
	fw, bl, rw := s.FirstwallRadialThickness, s.BlanketRadialThickness, s.BlanketRearWallRadialThickness
	ifw, ibl := s.InboardFirstwallRadialThickness, s.InboardBlanketRadialThickness
	ig, vg, og := s.InnerPlasmaGapRadialThickness, s.PlasmaGapVerticalThickness, s.OuterPlasmaGapRadialThickness
	around := func(in, v, out float64) profile.Variation {
		return profile.Profile(nil, []float64{in, v, out, v, in})
	}

	layers := []struct {
		name, material string
		offset, thick  profile.Variation
	}{
		{"firstwall", "firstwall_mat", around(ig, vg, og), around(ifw, fw, fw)},
		{"blanket", "blanket_mat", around(ig+ifw, vg+fw, og+fw), around(ibl, bl, bl)},
		{"blanket_rear_wall", "blanket_rear_wall_mat", around(ig+ifw+ibl, vg+fw+bl, og+fw+bl), profile.Constant(rw)},
	}
	out := make([]*shape.Shape, 0, len(layers))
	for _, ly := range layers {
		w, err := s.blanket(l, ly.offset, ly.thick, component.Common{Name: ly.name, Material: ly.material, Cut: cuts})
		if err != nil {
			return nil, fmt.Errorf("archetype: submersion %s: %w", ly.name, err)
		}
		out = append(out, w)
	}
	return out, nil
}
