package profile

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
)

func requireKind(t *testing.T, err error, kind errdefs.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, errdefs.KindOf(err), "error: %v", err)
}

func requireClosedWire(t *testing.T, pts []geom.Point) *geom.Wire {
	t.Helper()
	require.NotEmpty(t, pts)
	assert.Equal(t, geom.KindStraight, pts[len(pts)-1].Kind, "last point must be straight")
	w, err := geom.NewWire(pts, geom.KindStraight)
	require.NoError(t, err)
	assert.False(t, w.SelfIntersects())
	return w
}

// ---------------------------------------------------------------------------
// Plasma
// ---------------------------------------------------------------------------

func TestPlasmaXPoints(t *testing.T) {
	p := Plasma{
		MajorRadius:   400,
		MinorRadius:   200,
		Elongation:    1.5,
		Triangularity: 0.5,
		Configuration: SingleNull,
		XPointShift:   0.1,
	}
	lower, upper := p.XPoints()
	require.NotNil(t, lower)
	assert.Nil(t, upper)
	assert.InDelta(t, 1-1.1*0.5*200, lower[0], 1e-9)
	assert.InDelta(t, -330, lower[1], 1e-9)

	p.Configuration = DoubleNull
	lower, upper = p.XPoints()
	require.NotNil(t, upper)
	assert.InDelta(t, lower[0], upper[0], 1e-12)
	assert.InDelta(t, 330, upper[1], 1e-9)

	p.Configuration = NonNull
	lower, upper = p.XPoints()
	assert.Nil(t, lower)
	assert.Nil(t, upper)
}

func TestPlasmaPoints(t *testing.T) {
	p := DefaultPlasma()
	p.NumPoints = 10
	pts, err := p.Points()
	require.NoError(t, err)
	assert.Len(t, pts, MinPlasmaPoints)
	assert.Equal(t, geom.KindSpline, pts[0].Kind)

	first := pts[0]
	assert.InDelta(t, p.MajorRadius+p.MinorRadius, first.X, 1e-9)
	assert.InDelta(t, 0, first.Y, 1e-9)

	w := requireClosedWire(t, pts)
	min, max := w.BoundingBox()
	assert.InDelta(t, p.Elongation*p.MinorRadius, max[1], 2)
	assert.InDelta(t, -p.Elongation*p.MinorRadius, min[1], 2)
}

func TestPlasmaDerivedPoints(t *testing.T) {
	p := DefaultPlasma()
	p.VerticalDisplacement = 10
	for _, tt := range []struct {
		got, want [2]float64
	}{
		{p.HighPoint(), [2]float64{367.5, 310}},
		{p.LowPoint(), [2]float64{367.5, -290}},
		{p.OuterEquatorialPoint(), [2]float64{600, 10}},
		{p.InnerEquatorialPoint(), [2]float64{300, 10}},
	} {
		assert.InDelta(t, tt.want[0], tt.got[0], 1e-9)
		assert.InDelta(t, tt.want[1], tt.got[1], 1e-9)
	}
}

func TestPlasmaValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Plasma)
	}{
		{"zero minor radius", func(p *Plasma) { p.MinorRadius = 0 }},
		{"huge minor radius", func(p *Plasma) { p.MinorRadius = 2001 }},
		{"negative major radius", func(p *Plasma) { p.MajorRadius = -1 }},
		{"elongation above 10", func(p *Plasma) { p.Elongation = 10.5 }},
		{"zero elongation", func(p *Plasma) { p.Elongation = 0 }},
		{"bad configuration", func(p *Plasma) { p.Configuration = Configuration(7) }},
		{"nan triangularity", func(p *Plasma) { p.Triangularity = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPlasma()
			tt.mod(&p)
			_, err := p.Points()
			requireKind(t, err, errdefs.KindInvalidParameter)
		})
	}
}

func TestPlasmaFromPoints(t *testing.T) {
	p := PlasmaFromPoints(1118, 677, [2]float64{853, 368}, SingleNull)
	assert.InDelta(t, 897.5, p.MajorRadius, 1e-9)
	assert.InDelta(t, 220.5, p.MinorRadius, 1e-9)
	assert.InDelta(t, 368/220.5, p.Elongation, 1e-9)
	assert.InDelta(t, (897.5-853)/220.5, p.Triangularity, 1e-9)
	hp := p.HighPoint()
	assert.InDelta(t, 853, hp[0], 1e-9)
	assert.InDelta(t, 368, hp[1], 1e-9)
}

func TestParseConfiguration(t *testing.T) {
	for in, want := range map[string]Configuration{
		"":            NonNull,
		"non-null":    NonNull,
		"Single-Null": SingleNull,
		"double-null": DoubleNull,
	} {
		got, err := ParseConfiguration(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseConfiguration("triple-null")
	requireKind(t, err, errdefs.KindInvalidParameter)
}

// ---------------------------------------------------------------------------
// Variation
// ---------------------------------------------------------------------------

func TestVariationAt(t *testing.T) {
	tests := []struct {
		name string
		v    Variation
		deg  float64
		want float64
	}{
		{"constant", Constant(5), 42, 5},
		{"endpoints start", Endpoints(10, 20), -90, 10},
		{"endpoints mid", Endpoints(10, 20), 0, 15},
		{"endpoints end", Endpoints(10, 20), 90, 20},
		{"profile explicit", Profile([]float64{-90, 0, 90}, []float64{1, 3, 5}), 45, 4},
		{"profile implicit angles", Profile(nil, []float64{0, 10}), 0, 5},
		{"func", Func("double", func(d float64) float64 { return 2 * d }), 30, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.v.At(tt.deg, -90, 90), 1e-9)
		})
	}
}

func TestVariationValidate(t *testing.T) {
	err := Profile([]float64{0, 10, 20}, []float64{1, 2}).Validate()
	requireKind(t, err, errdefs.KindInvalidParameter)
	requireKind(t, Profile(nil, nil).Validate(), errdefs.KindInvalidParameter)
	requireKind(t, Func("nil", nil).Validate(), errdefs.KindInvalidParameter)
	require.NoError(t, Endpoints(1, 2).Validate())
}

func TestVariationDecode(t *testing.T) {
	type doc struct {
		V Variation `yaml:"v" json:"v"`
	}
	tests := []struct {
		name string
		yaml string
		json string
		want Variation
	}{
		{"scalar", "v: 20", `{"v": 20}`, Constant(20)},
		{"pair", "v: [10, 30]", `{"v": [10, 30]}`, Endpoints(10, 30)},
		{"profile", "v: [[0, 90, 180], [5, 10, 5]]", `{"v": [[0, 90, 180], [5, 10, 5]]}`,
			Profile([]float64{0, 90, 180}, []float64{5, 10, 5})},
	}
	opt := cmpopts.IgnoreFields(Variation{}, "Func")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var y doc
			require.NoError(t, yaml.Unmarshal([]byte(tt.yaml), &y))
			if diff := cmp.Diff(tt.want, y.V, opt); diff != "" {
				t.Errorf("yaml decode mismatch (-want +got):\n%s", diff)
			}
			var j doc
			require.NoError(t, json.Unmarshal([]byte(tt.json), &j))
			if diff := cmp.Diff(tt.want, j.V, opt); diff != "" {
				t.Errorf("json decode mismatch (-want +got):\n%s", diff)
			}
		})
	}

	var bad doc
	err := yaml.Unmarshal([]byte("v: [[0, 90], [1, 2, 3]]"), &bad)
	require.Error(t, err)
}

func TestVariationString(t *testing.T) {
	assert.Equal(t, "constant(2.5)", Constant(2.5).String())
	assert.Equal(t, "endpoints(1,2)", Endpoints(1, 2).String())
	assert.Equal(t, "profile([0,90],[1,2])", Profile([]float64{0, 90}, []float64{1, 2}).String())
	assert.Equal(t, "func(wave)", Func("wave", math.Sin).String())
}

// ---------------------------------------------------------------------------
// Center columns
// ---------------------------------------------------------------------------

func TestCenterColumnPoints(t *testing.T) {
	tests := []struct {
		name string
		c    CenterColumn
		n    int
	}{
		{"cylinder", CenterColumn{Kind: ColumnCylinder, Height: 15, InnerRadius: 5, OuterRadius: 10}, 4},
		{"hyperbola", CenterColumn{Kind: ColumnHyperbola, Height: 600, InnerRadius: 50, MidRadius: 80, OuterRadius: 120}, 6},
		{"circular", CenterColumn{Kind: ColumnCircular, Height: 600, InnerRadius: 50, MidRadius: 80, OuterRadius: 120}, 6},
		{"flat top hyperbola", CenterColumn{Kind: ColumnFlatTopHyperbola, Height: 600, ArcHeight: 400, InnerRadius: 50, MidRadius: 80, OuterRadius: 120}, 8},
		{"flat top circular", CenterColumn{Kind: ColumnFlatTopCircular, Height: 600, ArcHeight: 400, InnerRadius: 50, MidRadius: 80, OuterRadius: 120}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts, err := tt.c.Points()
			require.NoError(t, err)
			assert.Len(t, pts, tt.n)
			w := requireClosedWire(t, pts)
			min, max := w.BoundingBox()
			assert.InDelta(t, tt.c.InnerRadius, min[0], 1e-9)
			assert.InDelta(t, tt.c.Height/2, max[1], 1e-9)
		})
	}
}

func TestCenterColumnCylinderArea(t *testing.T) {
	pts, err := CenterColumn{Kind: ColumnCylinder, Height: 15, InnerRadius: 5, OuterRadius: 10}.Points()
	require.NoError(t, err)
	w := requireClosedWire(t, pts)
	assert.InDelta(t, 75, w.Area(), 1e-9)
}

func TestCenterColumnValidate(t *testing.T) {
	tests := []struct {
		name string
		c    CenterColumn
	}{
		{"cylinder inverted", CenterColumn{Kind: ColumnCylinder, Height: 10, InnerRadius: 10, OuterRadius: 5}},
		{"zero height", CenterColumn{Kind: ColumnCylinder, Height: 0, InnerRadius: 1, OuterRadius: 5}},
		{"mid outside", CenterColumn{Kind: ColumnHyperbola, Height: 10, InnerRadius: 1, MidRadius: 6, OuterRadius: 5}},
		{"mid inside inner", CenterColumn{Kind: ColumnCircular, Height: 10, InnerRadius: 3, MidRadius: 2, OuterRadius: 5}},
		{"arc too tall", CenterColumn{Kind: ColumnFlatTopHyperbola, Height: 10, ArcHeight: 10, InnerRadius: 1, MidRadius: 2, OuterRadius: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.c.Points()
			requireKind(t, err, errdefs.KindInvalidParameter)
		})
	}
}

func TestCenterColumnPlasmaHyperbola(t *testing.T) {
	c := CenterColumnPlasmaHyperbola{Height: 800, InnerRadius: 50, MidOffset: 60, EdgeOffset: 40, Plasma: DefaultPlasma()}
	pts, err := c.Points()
	require.NoError(t, err)
	assert.Len(t, pts, 8)
	assert.InDelta(t, 300-60, pts[4].X, 1e-9)
	requireClosedWire(t, pts)

	c.Height = 500
	_, err = c.Points()
	requireKind(t, err, errdefs.KindInvalidParameter)

	c.Height = 800
	c.InnerRadius = 250
	_, err = c.Points()
	requireKind(t, err, errdefs.KindInvalidParameter)
}

// ---------------------------------------------------------------------------
// Blankets
// ---------------------------------------------------------------------------

func testBlanket() BlanketFP {
	return BlanketFP{
		Plasma:           DefaultPlasma(),
		OffsetFromPlasma: Constant(20),
		Thickness:        Constant(50),
		StartAngle:       -90,
		StopAngle:        90,
	}
}

func TestBlanketFPPoints(t *testing.T) {
	b := testBlanket()
	pts, warnings, err := b.Points()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Len(t, pts, 2*DefaultBlanketPoints)
	assert.Equal(t, geom.KindStraight, pts[DefaultBlanketPoints-1].Kind)

	// The first inner point sits at the offset below the plasma low point.
	low := b.Plasma.At(radians(-90))
	assert.InDelta(t, low[1]-20, pts[0].Y, 1e-6)
	// The first outer point sits a further thickness out at the stop angle.
	high := b.Plasma.At(radians(90))
	assert.InDelta(t, high[1]+70, pts[DefaultBlanketPoints].Y, 1e-6)

	requireClosedWire(t, pts)
}

func TestBlanketFPVariableThickness(t *testing.T) {
	b := testBlanket()
	b.Thickness = Endpoints(10, 100)
	inner, outer, _, err := b.Curves()
	require.NoError(t, err)
	// outer runs stop to start
	assert.InDelta(t, 100, geom.Distance(inner[len(inner)-1], outer[0]), 1e-6)
	assert.InDelta(t, 10, geom.Distance(inner[0], outer[len(outer)-1]), 1e-6)
}

func TestBlanketFPDropsNegativeRadius(t *testing.T) {
	b := testBlanket()
	b.StartAngle, b.StopAngle = 90, 270
	b.OffsetFromPlasma = Constant(280)
	_, warnings, err := b.Points()
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0].Message, "negative R")
}

func TestBlanketFPFullCoverage(t *testing.T) {
	b := testBlanket()
	b.StartAngle, b.StopAngle = 0, 360
	assert.True(t, b.FullCoverage())
	_, warnings, err := b.Points()
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
	assert.False(t, testBlanket().FullCoverage())
}

func TestBlanketFPValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*BlanketFP)
	}{
		{"equal angles", func(b *BlanketFP) { b.StopAngle = b.StartAngle }},
		{"angle below range", func(b *BlanketFP) { b.StartAngle = -400 }},
		{"angle above range", func(b *BlanketFP) { b.StopAngle = 800 }},
		{"mismatched profile", func(b *BlanketFP) { b.Thickness = Profile([]float64{0, 1}, []float64{1}) }},
		{"negative thickness", func(b *BlanketFP) { b.Thickness = Constant(-1) }},
		{"one point", func(b *BlanketFP) { b.NumPoints = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBlanket()
			tt.mod(&b)
			_, _, err := b.Points()
			requireKind(t, err, errdefs.KindInvalidParameter)
		})
	}
}

func TestBlanketFPPhysicalGroups(t *testing.T) {
	names := func(groups []PhysicalGroup) []string {
		var out []string
		for _, g := range groups[1:] {
			out = append(out, g.Name)
		}
		return out
	}
	b := testBlanket()
	full := b.PhysicalGroups(360)
	assert.Equal(t, PhysicalGroup{Dim: 3, ID: 1, Name: "inside"}, full[0])
	assert.Equal(t, []string{"inner", "inner_section", "outer", "outer_section"}, names(full))

	partial := b.PhysicalGroups(180)
	assert.Equal(t, []string{"inner", "inner_section", "outer", "outer_section", "left_section", "right_section"}, names(partial))
	assert.Equal(t, 6, partial[len(partial)-1].ID)

	b.StartAngle, b.StopAngle = 0, 360
	assert.Equal(t, []string{"inner", "outer"}, names(b.PhysicalGroups(360)))
	assert.Equal(t, []string{"inner", "outer", "left_section", "right_section"}, names(b.PhysicalGroups(90)))
}

func TestConstantThicknessArc(t *testing.T) {
	for _, o := range []ArcOrientation{ArcVertical, ArcHorizontal} {
		a := ConstantThicknessArc{
			Orientation: o,
			InnerUpper:  [2]float64{100, 50},
			InnerMid:    [2]float64{150, 0},
			InnerLower:  [2]float64{100, -50},
			Thickness:   20,
		}
		pts, err := a.Points()
		require.NoError(t, err)
		assert.Len(t, pts, 6)
		requireClosedWire(t, pts)
	}
	_, err := ConstantThicknessArc{InnerUpper: [2]float64{0, 1}, InnerMid: [2]float64{0, 0}, InnerLower: [2]float64{0, -1}, Thickness: 1}.Points()
	requireKind(t, err, errdefs.KindInvalidGeometry)
}

// ---------------------------------------------------------------------------
// Divertor
// ---------------------------------------------------------------------------

func TestDivertorITER(t *testing.T) {
	d := DefaultDivertorITER()
	pts, err := d.Points()
	require.NoError(t, err)
	assert.Len(t, pts, 15)
	// The inner target passes through its anchor.
	assert.Equal(t, d.Inner.Anchor, pts[2].XY())
	_, err = geom.Process(pts, geom.KindStraight)
	require.NoError(t, err)

	d.Dome = nil
	pts, err = d.Points()
	require.NoError(t, err)
	assert.Len(t, pts, 12)
	_, err = geom.Process(pts, geom.KindStraight)
	require.NoError(t, err)
}

func TestDivertorITERValidate(t *testing.T) {
	d := DefaultDivertorITER()
	d.Dome.Position = 1.5
	_, err := d.Points()
	requireKind(t, err, errdefs.KindInvalidParameter)

	d = DefaultDivertorITER()
	d.Outer.Radius = 0
	_, err = d.Points()
	requireKind(t, err, errdefs.KindInvalidParameter)
}

// ---------------------------------------------------------------------------
// Coils
// ---------------------------------------------------------------------------

func TestPFCoil(t *testing.T) {
	c := PFCoil{Center: [2]float64{500, 300}, Width: 20, Height: 40}
	pts, err := c.Points()
	require.NoError(t, err)
	w := requireClosedWire(t, pts)
	assert.InDelta(t, 800, w.Area(), 1e-9)

	cs := PFCoilCase{Coil: c, CasingThickness: 5}
	outer, err := cs.Outer()
	require.NoError(t, err)
	assert.Equal(t, 30.0, outer.Width)
	assert.Equal(t, 50.0, outer.Height)

	_, err = PFCoil{Width: 0, Height: 1}.Points()
	requireKind(t, err, errdefs.KindInvalidParameter)
}

func TestPFCoilSet(t *testing.T) {
	s := PFCoilSet{
		Centers: [][2]float64{{100, 100}, {200, 200}},
		Widths:  []float64{10, 20},
		Heights: []float64{30, 40},
	}
	coils, err := s.Coils()
	require.NoError(t, err)
	require.Len(t, coils, 2)
	assert.Equal(t, PFCoil{Center: [2]float64{200, 200}, Width: 20, Height: 40}, coils[1])

	s.Heights = s.Heights[:1]
	_, err = s.Coils()
	requireKind(t, err, errdefs.KindInvalidParameter)
}

func TestTFCoilRectangle(t *testing.T) {
	c := TFCoilRectangle{HorizontalStart: [2]float64{100, 700}, VerticalMid: [2]float64{800, 0}, Thickness: 50, WithInnerLeg: true}
	p, err := c.Profile()
	require.NoError(t, err)
	assert.Len(t, p.Points, 10)
	requireClosedWire(t, p.Points)
	leg := requireClosedWire(t, p.InnerLeg)
	assert.InDelta(t, 50*1400, leg.Area(), 1e-9)

	c.VerticalMid = [2]float64{50, 0}
	_, err = c.Profile()
	requireKind(t, err, errdefs.KindInvalidParameter)
}

func TestTFCoilTripleArc(t *testing.T) {
	c := TFCoilTripleArc{
		R1: 100, H: 700, Radii: [2]float64{100, 200}, Coverages: [2]float64{60, 60},
		Thickness: 50, WithInnerLeg: true,
	}
	p, err := c.Profile()
	require.NoError(t, err)
	w := requireClosedWire(t, p.Points)
	min, max := w.BoundingBox()
	assert.InDelta(t, 50, min[0], 1e-6)
	assert.InDelta(t, -max[1], min[1], 1e-6)
	require.Len(t, p.InnerLeg, 4)
	assert.InDelta(t, 100, p.InnerLeg[0].X, 1e-9)
	assert.InDelta(t, 350, p.InnerLeg[0].Y, 1e-9)

	c.Coverages = [2]float64{120, 90}
	_, err = c.Profile()
	requireKind(t, err, errdefs.KindInvalidParameter)
}

func TestTFCoilCoatHanger(t *testing.T) {
	c := TFCoilCoatHanger{
		HorizontalStart:  [2]float64{500, 500},
		HorizontalLength: 400,
		VerticalMid:      [2]float64{1300, 0},
		VerticalLength:   300,
		Thickness:        50,
		WithInnerLeg:     true,
	}
	p, err := c.Profile()
	require.NoError(t, err)
	assert.Len(t, p.Points, 16)
	requireClosedWire(t, p.Points)
	requireClosedWire(t, p.InnerLeg)
}

func TestPrincetonDCurve(t *testing.T) {
	pts, normals := princetonD(100, 1000, 200)
	require.Len(t, pts, 201)
	assert.InDelta(t, 100, pts[0][0], 1e-9)
	assert.InDelta(t, 1000, pts[200][0], 1e-9)
	assert.InDelta(t, 0, pts[200][1], 1e-12)
	assert.Greater(t, pts[0][1], 0.0)
	assert.Equal(t, [2]float64{-1, 0}, roundVec(normals[0]))
	assert.Equal(t, [2]float64{1, 0}, roundVec(normals[200]))

	// The top of the D sits at R0 = sqrt(R1 R2).
	top := 0
	for i, p := range pts {
		if p[1] > pts[top][1] {
			top = i
		}
	}
	assert.InDelta(t, math.Sqrt(100*1000), pts[top][0], 5)
}

func roundVec(v [2]float64) [2]float64 {
	return [2]float64{math.Round(v[0]*1e9) / 1e9, math.Round(v[1]*1e9) / 1e9}
}

func TestTFCoilPrincetonD(t *testing.T) {
	c := TFCoilPrincetonD{R1: 100, R2: 1000, Thickness: 50, WithInnerLeg: true}
	p, err := c.Profile()
	require.NoError(t, err)
	w := requireClosedWire(t, p.Points)
	min, max := w.BoundingBox()
	assert.InDelta(t, 100, min[0], 1e-6)
	assert.InDelta(t, 1050, max[0], 1e-6)
	assert.InDelta(t, -max[1], min[1], 1e-6)

	leg := requireClosedWire(t, p.InnerLeg)
	assert.InDelta(t, 50*c.Height(), leg.Area(), 1e-6)

	_, err = TFCoilPrincetonD{R1: 900, R2: 1000, Thickness: 200}.Profile()
	requireKind(t, err, errdefs.KindInvalidParameter)
}

// ---------------------------------------------------------------------------
// Ports and inner TF coils
// ---------------------------------------------------------------------------

func TestPortCutters(t *testing.T) {
	center, r, err := PortCutterCircular{ZPos: 50, Radius: 20}.Circle()
	require.NoError(t, err)
	assert.Equal(t, [2]float64{0, 50}, center)
	assert.Equal(t, 20.0, r)

	pts, err := PortCutterRectangular{ZPos: 10, Width: 40, Height: 20}.Points()
	require.NoError(t, err)
	w := requireClosedWire(t, pts)
	assert.InDelta(t, 800, w.Area(), 1e-9)

	pts, err = PortCutterRectangular{ZPos: 10, Width: 40, Height: 20, FilletRadius: 5}.Points()
	require.NoError(t, err)
	w = requireClosedWire(t, pts)
	assert.InDelta(t, 800-(4-math.Pi)*25, w.Area(), 1)

	_, err = PortCutterRectangular{Width: 40, Height: 20, FilletRadius: 10}.Points()
	requireKind(t, err, errdefs.KindInvalidParameter)
}

func TestInnerTFCoilsCircular(t *testing.T) {
	c := InnerTFCoilsCircular{InnerRadius: 25, OuterRadius: 100, NumberOfCoils: 10, GapSize: 5}
	pts, err := c.Points()
	require.NoError(t, err)
	w := requireClosedWire(t, pts)
	// Ten wedges plus their gaps fill the annulus.
	annulus := math.Pi * (100*100 - 25*25)
	assert.Less(t, 10*w.Area(), annulus)
	assert.Greater(t, 10*w.Area(), annulus-10*5*75*1.05)

	c.GapSize = 20
	_, err = c.Points()
	requireKind(t, err, errdefs.KindInvalidParameter)
}

func TestInnerTFCoilsFlat(t *testing.T) {
	c := InnerTFCoilsFlat{InnerRadius: 25, OuterRadius: 100, NumberOfCoils: 10, GapSize: 5}
	pts, err := c.Points()
	require.NoError(t, err)
	assert.Len(t, pts, 4)
	requireClosedWire(t, pts)

	c.RadiusType = RadiusStraight
	pts, err = c.Points()
	require.NoError(t, err)
	assert.InDelta(t, 100/math.Cos(math.Pi/10), math.Hypot(pts[2].X, pts[2].Y), 1e-9)

	c = InnerTFCoilsFlat{InnerRadius: 0, OuterRadius: 100, NumberOfCoils: 10}
	pts, err = c.Points()
	require.NoError(t, err)
	assert.Len(t, pts, 3)
	assert.Equal(t, [2]float64{0, 0}, pts[0].XY())
}
