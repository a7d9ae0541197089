// Package radialbuild resolves ordered layer builds into absolute
// coordinates.
//
// A build is a list of (kind, thickness) layers walked outward from the
// machine axis (radial) or upward (vertical). The single PLASMA layer of
// the radial build fixes the equatorial points of the plasma and so its
// major and minor radius. Resolve returns a frozen Table that archetype
// reactors read their dimensions from.
package radialbuild

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chazu/reactorcad/pkg/errdefs"
)

// Kind is the kind of a layer.
type Kind int

const (
	Gap Kind = iota
	Solid
	Plasma
)

func (k Kind) String() string {
	switch k {
	case Gap:
		return "GAP"
	case Solid:
		return "SOLID"
	case Plasma:
		return "PLASMA"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses GAP, SOLID or PLASMA, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GAP":
		return Gap, nil
	case "SOLID":
		return Solid, nil
	case "PLASMA":
		return Plasma, nil
	}
	return 0, errdefs.Invalidf("radialbuild.ParseKind", "unknown layer kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Layer is one entry of a build. An empty Label is replaced by
// "<kind>_<index>" on resolution.
type Layer struct {
	Label     string  `yaml:"label,omitempty" json:"label,omitempty"`
	Kind      Kind    `yaml:"kind" json:"kind"`
	Thickness float64 `yaml:"thickness" json:"thickness"`
}

// L returns an unlabelled layer.
func L(kind Kind, thickness float64) Layer { return Layer{Kind: kind, Thickness: thickness} }

// UnmarshalYAML accepts either a mapping or a [kind, thickness] or
// [label, kind, thickness] sequence.
func (l *Layer) UnmarshalYAML(node *yaml.Node) error {
	const op = "radialbuild.Layer"
	if node.Kind == yaml.MappingNode {
		type plain Layer
		var p plain
		if err := node.Decode(&p); err != nil {
			return errdefs.Invalidf(op, "line %d: %v", node.Line, err)
		}
		*l = Layer(p)
		return nil
	}
	var raw []string
	if err := node.Decode(&raw); err != nil {
		return errdefs.Invalidf(op, "line %d: expected a mapping or a list", node.Line)
	}
	return l.fromStrings(raw)
}

// UnmarshalJSON accepts the same forms as UnmarshalYAML.
func (l *Layer) UnmarshalJSON(b []byte) error {
	const op = "radialbuild.Layer"
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		type plain Layer
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return errdefs.Invalidf(op, "%v", err)
		}
		*l = Layer(p)
		return nil
	}
	strs := make([]string, len(raw))
	for i, r := range raw {
		strs[i] = fmt.Sprint(r)
	}
	return l.fromStrings(strs)
}

func (l *Layer) fromStrings(raw []string) error {
	const op = "radialbuild.Layer"
	var label string
	switch len(raw) {
	case 2:
	case 3:
		label, raw = raw[0], raw[1:]
	default:
		return errdefs.Invalidf(op, "expected [kind, thickness] or [label, kind, thickness], got %d entries", len(raw))
	}
	k, err := ParseKind(raw[0])
	if err != nil {
		return err
	}
	var t float64
	if _, err := fmt.Sscan(raw[1], &t); err != nil {
		return errdefs.Invalidf(op, "thickness %q is not a number", raw[1])
	}
	*l = Layer{Label: label, Kind: k, Thickness: t}
	return nil
}

// Extent is an absolute [Start, End] interval.
type Extent struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Thickness returns End - Start.
func (e Extent) Thickness() float64 { return e.End - e.Start }

// Mid returns the centre of the interval.
func (e Extent) Mid() float64 { return (e.Start + e.End) / 2 }

// IsZero reports whether e is the zero interval.
func (e Extent) IsZero() bool { return e == Extent{} }

// Resolved is a layer with its absolute extent.
type Resolved struct {
	Layer
	Extent
}

// Options tune the resolution.
type Options struct {
	// VerticalDisplacement is where the plasma layer of the vertical build
	// is centred.
	VerticalDisplacement float64
	// Elongation, when nonzero, is checked against the vertical build. It
	// is also recorded as the elongation of builds with no vertical part.
	Elongation float64
	// Triangularity places the high and low points.
	Triangularity float64
	// Tolerance is the relative elongation tolerance, 1e-3 when zero.
	Tolerance float64
}

// DefaultTolerance is the relative tolerance on the elongation check.
const DefaultTolerance = 1e-3

// Anchors are the positions derived from the build that archetypes place
// their walls at. Absent anchors are zero extents.
type Anchors struct {
	FirstWall Extent
	Blanket   Extent
	RearWall  Extent

	FirstWallHeight Extent
	BlanketHeight   Extent
	RearWallHeight  Extent

	// TFCoilStartHeight is the top of the outermost vertical solid.
	TFCoilStartHeight float64
	// Divertor spans radially from the last solid before the plasma gap to
	// the plasma high point.
	Divertor Extent
}

// Table is a resolved build. It is immutable; accessors return copies.
type Table struct {
	radial   []Resolved
	vertical []Resolved
	index    map[string]int
	vindex   map[string]int

	plasma       Extent
	plasmaZ      Extent
	major        float64
	minor        float64
	elongation   float64
	triangular   float64
	displacement float64
	anchors      Anchors
}

// Resolve walks radial, and vertical when given, into a Table.
func Resolve(radial, vertical []Layer, o Options) (*Table, error) {
	const op = "radialbuild.Resolve"
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	t := &Table{triangular: o.Triangularity, displacement: o.VerticalDisplacement}

	var err error
	var pi int
	t.radial, t.index, pi, err = walk(op, "radial", radial, 0)
	if err != nil {
		return nil, err
	}
	if pi < 0 {
		return nil, errdefs.Invalidf(op, "the radial build has no PLASMA layer")
	}
	t.plasma = t.radial[pi].Extent
	t.major = t.plasma.Mid()
	t.minor = t.plasma.Thickness() / 2
	t.elongation = o.Elongation

	if len(vertical) > 0 {
		var vi int
		t.vertical, t.vindex, vi, err = walk(op, "vertical", vertical, 0)
		if err != nil {
			return nil, err
		}
		if vi < 0 {
			return nil, errdefs.Invalidf(op, "the vertical build has no PLASMA layer")
		}
		// Shift so the plasma is centred on the vertical displacement.
		shift := o.VerticalDisplacement - t.vertical[vi].Mid()
		for i := range t.vertical {
			t.vertical[i].Start += shift
			t.vertical[i].End += shift
		}
		t.plasmaZ = t.vertical[vi].Extent
		got := (t.plasmaZ.Thickness() / 2) / t.minor
		if o.Elongation != 0 && math.Abs(got-o.Elongation) > o.Tolerance*math.Abs(o.Elongation) {
			return nil, errdefs.Invalidf(op, "vertical plasma extent %v gives elongation %.6g, expected %v",
				t.plasmaZ.Thickness(), got, o.Elongation)
		}
		t.elongation = got
	}

	t.anchors = t.deriveAnchors(pi)
	return t, nil
}

// walk accumulates extents from start and returns the PLASMA index, -1
// when there is none.
func walk(op, dir string, layers []Layer, start float64) ([]Resolved, map[string]int, int, error) {
	out := make([]Resolved, 0, len(layers))
	index := make(map[string]int, len(layers))
	plasma := -1
	pos := start
	for i, l := range layers {
		if l.Label == "" {
			l.Label = fmt.Sprintf("%s_%d", strings.ToLower(l.Kind.String()), i)
		}
		subj := dir + " layer " + l.Label
		if math.IsNaN(l.Thickness) || math.IsInf(l.Thickness, 0) {
			return nil, nil, 0, errdefs.WithSubject(errdefs.Invalidf(op, "non-finite thickness"), subj)
		}
		switch l.Kind {
		case Gap:
			if l.Thickness < 0 {
				return nil, nil, 0, errdefs.WithSubject(errdefs.Invalidf(op, "GAP thickness must not be negative, got %v", l.Thickness), subj)
			}
		case Solid, Plasma:
			if !(l.Thickness > 0) {
				return nil, nil, 0, errdefs.WithSubject(errdefs.Invalidf(op, "%s thickness must be positive, got %v", l.Kind, l.Thickness), subj)
			}
		default:
			return nil, nil, 0, errdefs.WithSubject(errdefs.Invalidf(op, "unknown layer kind %v", l.Kind), subj)
		}
		if l.Kind == Plasma {
			if plasma >= 0 {
				return nil, nil, 0, errdefs.Invalidf(op, "the %s build has more than one PLASMA layer", dir)
			}
			plasma = i
		}
		if _, dup := index[l.Label]; dup {
			return nil, nil, 0, errdefs.Invalidf(op, "duplicate %s layer label %q", dir, l.Label)
		}
		index[l.Label] = i
		out = append(out, Resolved{Layer: l, Extent: Extent{Start: pos, End: pos + l.Thickness}})
		pos += l.Thickness
	}
	return out, index, plasma, nil
}

// deriveAnchors picks the walls outboard of the plasma: the layers
// labelled firstwall, blanket and rear_wall, else the first three solids.
func (t *Table) deriveAnchors(pi int) Anchors {
	var a Anchors
	walls := []*Extent{&a.FirstWall, &a.Blanket, &a.RearWall}
	heights := []*Extent{&a.FirstWallHeight, &a.BlanketHeight, &a.RearWallHeight}
	labels := []string{"firstwall", "blanket", "rear_wall"}

	var solids []Resolved
	for _, r := range t.radial[pi+1:] {
		if r.Kind == Solid {
			solids = append(solids, r)
		}
	}
	for i, label := range labels {
		if j, ok := t.index[label]; ok {
			*walls[i] = t.radial[j].Extent
		} else if i < len(solids) {
			*walls[i] = solids[i].Extent
		}
	}

	if len(t.vertical) > 0 {
		var above []Resolved
		for _, r := range t.vertical {
			if r.Kind == Solid && r.Start >= t.plasmaZ.End {
				above = append(above, r)
			}
		}
		for i, label := range labels {
			if j, ok := t.vindex[label]; ok {
				*heights[i] = t.vertical[j].Extent
			} else if i < len(above) {
				*heights[i] = above[i].Extent
			}
		}
		for i := len(t.vertical) - 1; i >= 0; i-- {
			if t.vertical[i].Kind == Solid {
				a.TFCoilStartHeight = t.vertical[i].End
				break
			}
		}
	}

	for i := pi - 1; i >= 0; i-- {
		if t.radial[i].Kind == Solid {
			a.Divertor = Extent{Start: t.radial[i].End, End: t.HighPoint()[0]}
			break
		}
	}
	return a
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Radial returns the extent of the radial layer with the given label.
func (t *Table) Radial(label string) (Extent, bool) {
	i, ok := t.index[label]
	if !ok {
		return Extent{}, false
	}
	return t.radial[i].Extent, true
}

// Vertical returns the extent of the vertical layer with the given label.
func (t *Table) Vertical(label string) (Extent, bool) {
	i, ok := t.vindex[label]
	if !ok {
		return Extent{}, false
	}
	return t.vertical[i].Extent, true
}

// RadialLayers returns the resolved radial layers in build order.
func (t *Table) RadialLayers() []Resolved { return append([]Resolved(nil), t.radial...) }

// VerticalLayers returns the resolved vertical layers in build order.
func (t *Table) VerticalLayers() []Resolved { return append([]Resolved(nil), t.vertical...) }

func (t *Table) InnerEquatorial() float64 { return t.plasma.Start }
func (t *Table) OuterEquatorial() float64 { return t.plasma.End }
func (t *Table) MajorRadius() float64     { return t.major }
func (t *Table) MinorRadius() float64     { return t.minor }
func (t *Table) Elongation() float64      { return t.elongation }
func (t *Table) Anchors() Anchors         { return t.anchors }

// HighPoint returns (R0 - δa, κa + vd).
func (t *Table) HighPoint() [2]float64 {
	return [2]float64{t.major - t.triangular*t.minor, t.elongation*t.minor + t.displacement}
}

// LowPoint returns (R0 - δa, -κa + vd).
func (t *Table) LowPoint() [2]float64 {
	return [2]float64{t.major - t.triangular*t.minor, -t.elongation*t.minor + t.displacement}
}

// Outer returns the end of the last radial layer.
func (t *Table) Outer() float64 {
	if len(t.radial) == 0 {
		return 0
	}
	return t.radial[len(t.radial)-1].End
}

// Summary lists the radial layers as "label kind start..end" lines.
func (t *Table) Summary() string {
	var b strings.Builder
	for _, r := range t.radial {
		fmt.Fprintf(&b, "%-24s %-6s %10.3f .. %10.3f\n", r.Label, r.Kind, r.Start, r.End)
	}
	return b.String()
}
