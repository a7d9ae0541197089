// Package component builds named, material-tagged reactor shapes from the
// profile generators.
//
// Every constructor takes the profile parameters plus a Common block. Zero
// values in Common fall back to the component's default name, material tag
// and a full 360 degree rotation.
package component

import (
	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
	"github.com/chazu/reactorcad/pkg/profile"
	"github.com/chazu/reactorcad/pkg/shape"
)

// Common holds the attributes shared by every component.
type Common struct {
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Material string `yaml:"material_tag,omitempty" json:"material_tag,omitempty"`
	// RotationAngle is the revolve angle of revolved components and the
	// sector kept of extruded ones. Zero means 360.
	RotationAngle float64   `yaml:"rotation_angle,omitempty" json:"rotation_angle,omitempty"`
	Placement     []float64 `yaml:"azimuth_placement_angle,omitempty" json:"azimuth_placement_angle,omitempty"`

	StpFilename string      `yaml:"stp_filename,omitempty" json:"stp_filename,omitempty"`
	StlFilename string      `yaml:"stl_filename,omitempty" json:"stl_filename,omitempty"`
	TetMesh     string      `yaml:"tet_mesh,omitempty" json:"tet_mesh,omitempty"`
	Color       *[3]float64 `yaml:"color,omitempty" json:"color,omitempty"`

	Cut       []shape.Operand `yaml:"-" json:"-"`
	Intersect []shape.Operand `yaml:"-" json:"-"`
	Union     []shape.Operand `yaml:"-" json:"-"`
}

func (c Common) rotation() float64 {
	if c.RotationAngle == 0 {
		return 360
	}
	return c.RotationAngle
}

// params fills the shared fields of a shape.Params.
func (c Common) params(name, material string) shape.Params {
	if c.Name != "" {
		name = c.Name
	}
	if c.Material != "" {
		material = c.Material
	}
	return shape.Params{
		Name:        name,
		Material:    material,
		Placement:   c.Placement,
		StpFilename: c.StpFilename,
		StlFilename: c.StlFilename,
		TetMesh:     c.TetMesh,
		Color:       c.Color,
		Cut:         c.Cut,
		Intersect:   c.Intersect,
		Union:       c.Union,
	}
}

// revolved returns a shape revolving pts in the XZ workplane.
func revolved(c Common, name, material string, pts []geom.Point) (*shape.Shape, error) {
	p := c.params(name, material)
	p.Points = pts
	p.Verb = shape.Revolve{Angle: c.rotation()}
	return shape.New(p)
}

// ---------------------------------------------------------------------------
// Plasma
// ---------------------------------------------------------------------------

// Plasma returns the revolved plasma. It defaults to "plasma" / "DT_plasma".
func Plasma(pl profile.Plasma, c Common) (*shape.Shape, error) {
	pts, err := pl.Points()
	if err != nil {
		return nil, err
	}
	return revolved(c, "plasma", "DT_plasma", pts)
}

// ---------------------------------------------------------------------------
// Center column shields
// ---------------------------------------------------------------------------

// CenterColumnShield returns a revolved shield of any CenterColumn kind.
func CenterColumnShield(cc profile.CenterColumn, c Common) (*shape.Shape, error) {
	pts, err := cc.Points()
	if err != nil {
		return nil, err
	}
	return revolved(c, "center_column_shield", "center_column_shield_mat", pts)
}

// CenterColumnShieldCylinder is the cylinder shield between innerRadius and
// outerRadius, centred on z = 0.
func CenterColumnShieldCylinder(height, innerRadius, outerRadius float64, c Common) (*shape.Shape, error) {
	return CenterColumnShield(profile.CenterColumn{
		Kind:        profile.ColumnCylinder,
		Height:      height,
		InnerRadius: innerRadius,
		OuterRadius: outerRadius,
	}, c)
}

// CenterColumnShieldPlasmaHyperbola returns the plasma-following shield.
func CenterColumnShieldPlasmaHyperbola(cc profile.CenterColumnPlasmaHyperbola, c Common) (*shape.Shape, error) {
	pts, err := cc.Points()
	if err != nil {
		return nil, err
	}
	return revolved(c, "center_column_shield", "center_column_shield_mat", pts)
}

// ---------------------------------------------------------------------------
// Blankets
// ---------------------------------------------------------------------------

// BlanketFP returns a revolved blanket following the plasma. A blanket that
// covers the full poloidal circle cannot be revolved by 360 degrees.
func BlanketFP(b profile.BlanketFP, c Common) (*shape.Shape, error) {
	const op = "component.BlanketFP"
	if b.FullCoverage() && c.rotation() == 360 {
		return nil, errdefs.Geometryf(op, "a blanket covering 360 degrees poloidally cannot be revolved by 360 degrees")
	}
	pts, warnings, err := b.Points()
	if err != nil {
		return nil, err
	}
	p := c.params("blanket", "blanket_mat")
	p.Points = pts
	p.Verb = shape.Revolve{Angle: c.rotation()}
	p.PhysicalGroups = b.PhysicalGroups(c.rotation())
	s, err := shape.New(p)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.AddWarning(w)
	}
	return s, nil
}

// BlanketArc returns a revolved constant-thickness arc blanket.
func BlanketArc(a profile.ConstantThicknessArc, c Common) (*shape.Shape, error) {
	pts, err := a.Points()
	if err != nil {
		return nil, err
	}
	return revolved(c, "blanket_constant_thickness_arc", "blanket_mat", pts)
}

// ---------------------------------------------------------------------------
// Divertor
// ---------------------------------------------------------------------------

// DivertorITER returns the revolved ITER-like divertor.
func DivertorITER(d profile.DivertorITER, c Common) (*shape.Shape, error) {
	pts, err := d.Points()
	if err != nil {
		return nil, err
	}
	return revolved(c, "divertor", "divertor_mat", pts)
}
