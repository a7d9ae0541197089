package archetype

import (
	"github.com/chazu/reactorcad/pkg/component"
	"github.com/chazu/reactorcad/pkg/profile"
	"github.com/chazu/reactorcad/pkg/radialbuild"
	"github.com/chazu/reactorcad/pkg/shape"
)

// CenterColumnStudy is a minimal reactor for shielding studies of a
// flat-topped hyperbolic center column: the column, its inboard firstwall,
// a plasma, a blanket and a divertor.
type CenterColumnStudy struct {
	InnerBoreRadialThickness               float64 `yaml:"inner_bore_radial_thickness" json:"inner_bore_radial_thickness"`
	InboardTFLegRadialThickness            float64 `yaml:"inboard_tf_leg_radial_thickness" json:"inboard_tf_leg_radial_thickness"`
	CenterColumnShieldRadialThicknessMid   float64 `yaml:"center_column_shield_radial_thickness_mid" json:"center_column_shield_radial_thickness_mid"`
	CenterColumnShieldRadialThicknessUpper float64 `yaml:"center_column_shield_radial_thickness_upper" json:"center_column_shield_radial_thickness_upper"`
	InboardFirstwallRadialThickness        float64 `yaml:"inboard_firstwall_radial_thickness" json:"inboard_firstwall_radial_thickness"`
	DivertorRadialThickness                float64 `yaml:"divertor_radial_thickness" json:"divertor_radial_thickness"`
	InnerPlasmaGapRadialThickness          float64 `yaml:"inner_plasma_gap_radial_thickness" json:"inner_plasma_gap_radial_thickness"`
	PlasmaRadialThickness                  float64 `yaml:"plasma_radial_thickness" json:"plasma_radial_thickness"`
	OuterPlasmaGapRadialThickness          float64 `yaml:"outer_plasma_gap_radial_thickness" json:"outer_plasma_gap_radial_thickness"`
	PlasmaGapVerticalThickness             float64 `yaml:"plasma_gap_vertical_thickness" json:"plasma_gap_vertical_thickness"`
	BlanketRadialThickness                 float64 `yaml:"blanket_radial_thickness" json:"blanket_radial_thickness"`
	// CenterColumnArcVerticalThickness is the height of the curved part of
	// the column.
	CenterColumnArcVerticalThickness float64 `yaml:"center_column_arc_vertical_thickness" json:"center_column_arc_vertical_thickness"`

	Elongation    float64 `yaml:"elongation" json:"elongation"`
	Triangularity float64 `yaml:"triangularity" json:"triangularity"`
	RotationAngle float64 `yaml:"rotation_angle" json:"rotation_angle"`
}

// DefaultCenterColumnStudy returns the reference study reactor.
func DefaultCenterColumnStudy() CenterColumnStudy {
	return CenterColumnStudy{
		InnerBoreRadialThickness:               20,
		InboardTFLegRadialThickness:            50,
		CenterColumnShieldRadialThicknessMid:   50,
		CenterColumnShieldRadialThicknessUpper: 100,
		InboardFirstwallRadialThickness:        20,
		DivertorRadialThickness:                100,
		InnerPlasmaGapRadialThickness:          80,
		PlasmaRadialThickness:                  200,
		OuterPlasmaGapRadialThickness:          90,
		PlasmaGapVerticalThickness:             40,
		BlanketRadialThickness:                 100,
		CenterColumnArcVerticalThickness:       520,
		Elongation:                             2.3,
		Triangularity:                          0.45,
		RotationAngle:                          180,
	}
}

// Validate checks the study parameters.
func (c CenterColumnStudy) Validate() error {
	const op = "archetype.CenterColumnStudy"
	if err := checkPositive(op, map[string]float64{
		"inboard_tf_leg_radial_thickness":             c.InboardTFLegRadialThickness,
		"center_column_shield_radial_thickness_mid":   c.CenterColumnShieldRadialThicknessMid,
		"center_column_shield_radial_thickness_upper": c.CenterColumnShieldRadialThicknessUpper,
		"inboard_firstwall_radial_thickness":          c.InboardFirstwallRadialThickness,
		"divertor_radial_thickness":                   c.DivertorRadialThickness,
		"plasma_radial_thickness":                     c.PlasmaRadialThickness,
		"blanket_radial_thickness":                    c.BlanketRadialThickness,
		"center_column_arc_vertical_thickness":        c.CenterColumnArcVerticalThickness,
		"elongation":                                  c.Elongation,
	}); err != nil {
		return err
	}
	if err := checkNonNegative(op, map[string]float64{
		"inner_bore_radial_thickness":       c.InnerBoreRadialThickness,
		"inner_plasma_gap_radial_thickness": c.InnerPlasmaGapRadialThickness,
		"outer_plasma_gap_radial_thickness": c.OuterPlasmaGapRadialThickness,
		"plasma_gap_vertical_thickness":     c.PlasmaGapVerticalThickness,
	}); err != nil {
		return err
	}
	return checkRotation(op, c.RotationAngle, true)
}

// Shapes builds the study reactor. The column profile checks the mid and
// upper thicknesses and the arc height against the resolved height.
func (c CenterColumnStudy) Shapes() ([]*shape.Shape, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	radial := []radialbuild.Layer{
		{Label: "inner_bore", Kind: radialbuild.Gap, Thickness: c.InnerBoreRadialThickness},
		{Label: "inboard_tf_coils", Kind: radialbuild.Solid, Thickness: c.InboardTFLegRadialThickness},
		{Label: "center_column_shield", Kind: radialbuild.Solid, Thickness: c.CenterColumnShieldRadialThicknessMid},
		{Label: "inboard_firstwall", Kind: radialbuild.Solid, Thickness: c.InboardFirstwallRadialThickness},
		{Label: "inner_plasma_gap", Kind: radialbuild.Gap, Thickness: c.InnerPlasmaGapRadialThickness},
		{Label: "plasma", Kind: radialbuild.Plasma, Thickness: c.PlasmaRadialThickness},
		{Label: "outer_plasma_gap", Kind: radialbuild.Gap, Thickness: c.OuterPlasmaGapRadialThickness},
		{Label: "blanket", Kind: radialbuild.Solid, Thickness: c.BlanketRadialThickness},
	}
	vertical := []radialbuild.Layer{
		{Label: "blanket_lower", Kind: radialbuild.Solid, Thickness: c.BlanketRadialThickness},
		{Label: "plasma_gap_lower", Kind: radialbuild.Gap, Thickness: c.PlasmaGapVerticalThickness},
		{Label: "plasma", Kind: radialbuild.Plasma, Thickness: c.Elongation * c.PlasmaRadialThickness},
		{Label: "plasma_gap_upper", Kind: radialbuild.Gap, Thickness: c.PlasmaGapVerticalThickness},
		{Label: "blanket", Kind: radialbuild.Solid, Thickness: c.BlanketRadialThickness},
	}
	t, err := radialbuild.Resolve(radial, vertical, radialbuild.Options{
		Elongation:    c.Elongation,
		Triangularity: c.Triangularity,
	})
	if err != nil {
		return nil, err
	}
	tfLeg, _ := t.Radial("inboard_tf_coils")
	mid, _ := t.Radial("center_column_shield")
	fwMid, _ := t.Radial("inboard_firstwall")
	top, _ := t.Vertical("blanket")
	height := 2 * top.End
	common := component.Common{RotationAngle: c.RotationAngle}

	pl := profile.DefaultPlasma()
	pl.MajorRadius, pl.MinorRadius = t.MajorRadius(), t.MinorRadius()
	pl.Elongation, pl.Triangularity = c.Elongation, c.Triangularity
	plasma, err := component.Plasma(pl, common)
	if err != nil {
		return nil, err
	}

	tfc := common
	tfc.Name, tfc.Material = "inboard_tf_coils", "inboard_tf_coils_mat"
	tf, err := component.CenterColumnShieldCylinder(height, tfLeg.Start, tfLeg.End, tfc)
	if err != nil {
		return nil, err
	}

	upper := mid.Start + c.CenterColumnShieldRadialThicknessUpper
	shield, err := component.CenterColumnShield(profile.CenterColumn{
		Kind:        profile.ColumnFlatTopHyperbola,
		Height:      height,
		InnerRadius: mid.Start,
		MidRadius:   mid.End,
		OuterRadius: upper,
		ArcHeight:   c.CenterColumnArcVerticalThickness,
	}, common)
	if err != nil {
		return nil, err
	}

	fwc := common
	fwc.Name, fwc.Material = "inboard_firstwall", "firstwall_mat"
	fwc.Cut = []shape.Operand{shield}
	firstwall, err := component.CenterColumnShield(profile.CenterColumn{
		Kind:        profile.ColumnFlatTopHyperbola,
		Height:      height,
		InnerRadius: mid.Start,
		MidRadius:   fwMid.End,
		OuterRadius: upper + c.InboardFirstwallRadialThickness,
		ArcHeight:   c.CenterColumnArcVerticalThickness,
	}, fwc)
	if err != nil {
		return nil, err
	}

	offsets := profile.Profile(nil, []float64{
		c.InnerPlasmaGapRadialThickness,
		c.PlasmaGapVerticalThickness,
		c.OuterPlasmaGapRadialThickness,
		c.PlasmaGapVerticalThickness,
		c.InnerPlasmaGapRadialThickness,
	})
	envelope := func(cm component.Common) (*shape.Shape, error) {
		cm.RotationAngle = c.RotationAngle
		return component.BlanketFP(profile.BlanketFP{
			Plasma:           pl,
			OffsetFromPlasma: offsets,
			Thickness:        profile.Constant(c.BlanketRadialThickness),
			StartAngle:       -180,
			StopAngle:        180,
		}, cm)
	}
	divEnvelope, err := envelope(component.Common{Name: "divertor_envelope", Material: "cutter"})
	if err != nil {
		return nil, err
	}
	divStart := t.Anchors().Divertor.Start
	divertor, err := rect{
		name: "divertor", material: "divertor_mat",
		r0: divStart, r1: divStart + c.DivertorRadialThickness, z0: -height, z1: height,
	}.shape(c.RotationAngle, shape.Params{Intersect: []shape.Operand{divEnvelope}})
	if err != nil {
		return nil, err
	}

	cutter, err := rect{
		name: "center_column_cutter", material: "cutter",
		r0: 0, r1: fwMid.End, z0: -1.5 * height, z1: 1.5 * height,
	}.shape(c.RotationAngle, shape.Params{})
	if err != nil {
		return nil, err
	}
	blanket, err := envelope(component.Common{
		Name: "blanket", Material: "blanket_mat",
		Cut: []shape.Operand{cutter, shield, firstwall, divertor},
	})
	if err != nil {
		return nil, err
	}

	return []*shape.Shape{plasma, tf, shield, firstwall, blanket, divertor}, nil
}
