package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
)

// ColumnKind selects the outer face of a center-column shield.
type ColumnKind int

const (
	ColumnCylinder ColumnKind = iota
	ColumnHyperbola
	ColumnFlatTopHyperbola
	ColumnCircular
	ColumnFlatTopCircular
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnCylinder:
		return "cylinder"
	case ColumnHyperbola:
		return "hyperbola"
	case ColumnFlatTopHyperbola:
		return "flat_top_hyperbola"
	case ColumnCircular:
		return "circular"
	case ColumnFlatTopCircular:
		return "flat_top_circular"
	default:
		return fmt.Sprintf("ColumnKind(%d)", int(k))
	}
}

// ParseColumnKind converts a column kind name.
func ParseColumnKind(s string) (ColumnKind, error) {
	for k := ColumnCylinder; k <= ColumnFlatTopCircular; k++ {
		if strings.EqualFold(strings.TrimSpace(s), k.String()) {
			return k, nil
		}
	}
	return ColumnCylinder, errdefs.Invalidf("profile.ParseColumnKind", "unknown center column kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k ColumnKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ColumnKind) UnmarshalText(b []byte) error {
	v, err := ParseColumnKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// CenterColumn is a center-column shield cross section with a straight
// inner face at InnerRadius, centred on z = 0. MidRadius is the outer face
// radius at the midplane for the curved kinds; ArcHeight is the height of
// the curved part for the flat-top kinds.
type CenterColumn struct {
	Kind        ColumnKind `yaml:"kind" json:"kind"`
	Height      float64    `yaml:"height" json:"height"`
	InnerRadius float64    `yaml:"inner_radius" json:"inner_radius"`
	MidRadius   float64    `yaml:"mid_radius,omitempty" json:"mid_radius,omitempty"`
	OuterRadius float64    `yaml:"outer_radius" json:"outer_radius"`
	ArcHeight   float64    `yaml:"arc_height,omitempty" json:"arc_height,omitempty"`
}

// Validate checks the radii ordering and heights.
func (c CenterColumn) Validate() error {
	op := "profile.CenterColumn(" + c.Kind.String() + ")"
	if err := positive(op, "height", c.Height); err != nil {
		return err
	}
	if !finite(c.InnerRadius, c.MidRadius, c.OuterRadius, c.ArcHeight) || c.InnerRadius < 0 {
		return errdefs.Invalidf(op, "inner_radius must be a non-negative number")
	}
	switch c.Kind {
	case ColumnCylinder:
		if !(c.InnerRadius < c.OuterRadius) {
			return errdefs.Invalidf(op, "inner_radius %v must be less than outer_radius %v", c.InnerRadius, c.OuterRadius)
		}
		return nil
	case ColumnHyperbola, ColumnFlatTopHyperbola, ColumnCircular, ColumnFlatTopCircular:
	default:
		return errdefs.Invalidf(op, "unknown center column kind")
	}
	if !(c.InnerRadius < c.MidRadius && c.MidRadius < c.OuterRadius) {
		return errdefs.Invalidf(op, "radii must satisfy inner (%v) < mid (%v) < outer (%v)", c.InnerRadius, c.MidRadius, c.OuterRadius)
	}
	if c.Kind == ColumnFlatTopHyperbola || c.Kind == ColumnFlatTopCircular {
		if err := positive(op, "arc_height", c.ArcHeight); err != nil {
			return err
		}
		if c.ArcHeight >= c.Height {
			return errdefs.Invalidf(op, "arc_height %v must be less than height %v", c.ArcHeight, c.Height)
		}
	}
	return nil
}

// Points returns the shield cross section.
func (c CenterColumn) Points() ([]geom.Point, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	h := c.Height / 2
	ri, rm, ro := c.InnerRadius, c.MidRadius, c.OuterRadius
	s := geom.KindStraight
	curve := geom.KindSpline
	if c.Kind == ColumnCircular || c.Kind == ColumnFlatTopCircular {
		curve = geom.KindCircle
	}
	switch c.Kind {
	case ColumnCylinder:
		return closeStraight(tagged([][2]float64{{ri, h}, {ro, h}, {ro, -h}, {ri, -h}}, s)), nil
	case ColumnHyperbola, ColumnCircular:
		return []geom.Point{
			geom.PK(ri, 0, s),
			geom.PK(ri, h, s),
			geom.PK(ro, h, curve),
			geom.PK(rm, 0, curve),
			geom.PK(ro, -h, s),
			geom.PK(ri, -h, s),
		}, nil
	default:
		a := c.ArcHeight / 2
		return []geom.Point{
			geom.PK(ri, 0, s),
			geom.PK(ri, h, s),
			geom.PK(ro, h, s),
			geom.PK(ro, a, curve),
			geom.PK(rm, 0, curve),
			geom.PK(ro, -a, s),
			geom.PK(ro, -h, s),
			geom.PK(ri, -h, s),
		}, nil
	}
}

// CenterColumnPlasmaHyperbola is a shield whose outer face follows the
// plasma: MidOffset from the inner equatorial point and EdgeOffset from
// the high and low points.
type CenterColumnPlasmaHyperbola struct {
	Height      float64 `yaml:"height" json:"height"`
	InnerRadius float64 `yaml:"inner_radius" json:"inner_radius"`
	MidOffset   float64 `yaml:"mid_offset" json:"mid_offset"`
	EdgeOffset  float64 `yaml:"edge_offset" json:"edge_offset"`
	Plasma      Plasma  `yaml:"plasma" json:"plasma"`
}

// Points returns the shield cross section.
func (c CenterColumnPlasmaHyperbola) Points() ([]geom.Point, error) {
	const op = "profile.CenterColumnPlasmaHyperbola"
	if err := c.Plasma.Validate(); err != nil {
		return nil, err
	}
	hi, lo, ie := c.Plasma.HighPoint(), c.Plasma.LowPoint(), c.Plasma.InnerEquatorialPoint()
	if plasmaHeight := math.Abs(hi[1]) + math.Abs(lo[1]); c.Height <= plasmaHeight {
		return nil, errdefs.Invalidf(op, "height %v is smaller than the plasma height %v", c.Height, plasmaHeight)
	}
	if c.InnerRadius >= ie[0]-c.MidOffset {
		return nil, errdefs.Invalidf(op, "inner_radius %v is too large for mid_offset %v", c.InnerRadius, c.MidOffset)
	}
	h := c.Height / 2
	s, sp := geom.KindStraight, geom.KindSpline
	return []geom.Point{
		geom.PK(c.InnerRadius, 0, s),
		geom.PK(c.InnerRadius, h, s),
		geom.PK(hi[0]-c.EdgeOffset, h, s),
		geom.PK(hi[0]-c.EdgeOffset, hi[1], sp),
		geom.PK(ie[0]-c.MidOffset, ie[1], sp),
		geom.PK(lo[0]-c.EdgeOffset, lo[1], s),
		geom.PK(lo[0]-c.EdgeOffset, -h, s),
		geom.PK(c.InnerRadius, -h, s),
	}, nil
}
