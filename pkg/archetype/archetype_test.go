package archetype_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/reactorcad/pkg/archetype"
	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/graph"
	"github.com/chazu/reactorcad/pkg/kernel/sdfx"
	"github.com/chazu/reactorcad/pkg/reactor"
	"github.com/chazu/reactorcad/pkg/shape"
)

func requireKind(t *testing.T, err error, kind errdefs.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, errdefs.KindOf(err), "error: %v", err)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"ball", "center_column_study", "eu_demo",
		"segmented_blanket_ball", "single_null_ball", "submersion_ball",
	}, archetype.Names())
}

func TestDefaultsBuild(t *testing.T) {
	ball := []string{
		"plasma", "inboard_tf_coils", "center_column_shield",
		"divertor_upper", "divertor_lower",
		"firstwall", "blanket", "blanket_rear_wall",
	}
	tests := []struct {
		name string
		want []string
	}{
		{"ball", ball},
		{"segmented_blanket_ball", ball},
		{"submersion_ball", append(append([]string(nil), ball...), "tf_coils")},
		{"single_null_ball", []string{
			"plasma", "inboard_tf_coils", "center_column_shield", "divertor",
			"firstwall", "blanket", "blanket_rear_wall",
		}},
		{"center_column_study", []string{
			"plasma", "inboard_tf_coils", "center_column_shield", "inboard_firstwall", "blanket", "divertor",
		}},
		{"eu_demo", []string{
			"plasma", "outboard_pf_coils",
			"pf_coils_1", "pf_coils_2", "pf_coils_3", "pf_coils_4", "pf_coils_5",
			"divertor", "blanket", "vacuum_vessel", "tf_coil_casing",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := archetype.Build(archetype.Request{Archetype: tt.name})
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.ShapeNames())

			for _, e := range graph.Validate(graph.FromShapes(r.Shapes()...)) {
				if e.Severity == graph.SeverityError {
					t.Errorf("structural error: %v", e)
				}
			}
		})
	}
}

// TestDefaultsMesh builds the profile and solid of every member of every
// default archetype at a coarse resolution.
func TestDefaultsMesh(t *testing.T) {
	if testing.Short() {
		t.Skip("meshes every default archetype")
	}
	for _, name := range archetype.Names() {
		t.Run(name, func(t *testing.T) {
			b := shape.NewBuilder(sdfx.New(sdfx.WithMeshCells(48)), shape.WithMeshCells(48))
			r, err := archetype.Build(archetype.Request{Archetype: name}, reactor.WithBuilder(b))
			require.NoError(t, err)

			for _, s := range r.Shapes() {
				if _, ok := s.Circle(); ok || len(s.Points()) > 0 {
					_, err := s.Wire()
					require.NoError(t, err, "wire of %s", s.Name())
				}
				_, err := b.Solid(s)
				require.NoError(t, err, "solid of %s", s.Name())
			}

			volumes, err := r.Volumes(context.Background(), false)
			require.NoError(t, err)
			require.Len(t, volumes, len(r.Shapes()))
			if v, ok := volumes["blanket"]; ok {
				assert.Positive(t, v[0])
			}
		})
	}
}

func TestBallRadialBuild(t *testing.T) {
	r, err := archetype.Build(archetype.Request{Archetype: "ball"})
	require.NoError(t, err)

	// Bore 50 and TF leg 50 put the shield between 100 and 160. The
	// vertical build is 920 high, centred on the midplane.
	pts := r.Lookup("center_column_shield").Points()
	require.NotEmpty(t, pts)
	assert.InDelta(t, 100, pts[0].X, 1e-9)
	assert.InDelta(t, 160, pts[1].X, 1e-9)
	assert.InDelta(t, 460, pts[0].Y, 1e-9)

	assert.Equal(t, shape.Revolve{Angle: 180}, r.Lookup("plasma").Verb())
}

func TestParamsOverrideDefaults(t *testing.T) {
	r, err := archetype.Build(archetype.Request{
		Archetype: "ball",
		Params: map[string]any{
			"rotation_angle":                      90,
			"pf_coil_radial_thicknesses":          []any{50, 50},
			"pf_coil_vertical_thicknesses":        []any{50, 50},
			"pf_coil_radial_position":             []any{600, 600},
			"pf_coil_vertical_position":           []any{500, -500},
			"pf_coil_case_thickness":              10,
			"outboard_tf_coil_radial_thickness":   50,
			"outboard_tf_coil_poloidal_thickness": 50,
		},
	})
	require.NoError(t, err)
	names := r.ShapeNames()
	assert.Contains(t, names, "pf_coils")
	assert.Contains(t, names, "pf_coil_cases")
	assert.Contains(t, names, "tf_coils")
	assert.Equal(t, shape.Revolve{Angle: 90}, r.Lookup("plasma").Verb())
	assert.Len(t, r.Lookup("tf_coils").Placement(), 16)
}

func TestDecodeKeepsDefaults(t *testing.T) {
	cfg, err := archetype.Decode(archetype.Request{
		Archetype: "ball",
		Params:    map[string]any{"elongation": 1.8},
	})
	require.NoError(t, err)
	b, ok := cfg.(*archetype.Ball)
	require.True(t, ok)
	assert.Equal(t, 1.8, b.Elongation)
	assert.Equal(t, archetype.DefaultBall().BlanketRadialThickness, b.BlanketRadialThickness)
}

func TestEmbeddedParams(t *testing.T) {
	cfg, err := archetype.Decode(archetype.Request{
		Archetype: "Segmented-Blanket-Ball",
		Params: map[string]any{
			"number_of_blanket_segments": 6,
			"blanket_radial_thickness":   80,
		},
	})
	require.NoError(t, err)
	s := cfg.(*archetype.SegmentedBlanketBall)
	assert.Equal(t, 6, s.NumberOfBlanketSegments)
	assert.Equal(t, 80.0, s.BlanketRadialThickness)

	shapes, err := s.Shapes()
	require.NoError(t, err)
	var blanket *shape.Shape
	for _, m := range shapes {
		if m.Name() == "blanket" {
			blanket = m
		}
	}
	require.NotNil(t, blanket)
	var star *shape.Shape
	for _, op := range blanket.Cut() {
		if c, ok := op.(*shape.Shape); ok && c.Name() == "blanket_cutter_thick" {
			star = c
		}
	}
	require.NotNil(t, star)
	assert.Equal(t, []float64{0, 60, 120, 180, 240, 300}, star.Placement())
}

func TestRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		req  archetype.Request
	}{
		{"unknown archetype", archetype.Request{Archetype: "donut"}},
		{"unknown key", archetype.Request{Archetype: "ball", Params: map[string]any{"blanket_thickness": 3}}},
		{"wrong type", archetype.Request{Archetype: "ball", Params: map[string]any{"elongation": "tall"}}},
		{"full revolve of full blanket", archetype.Request{Archetype: "ball", Params: map[string]any{"rotation_angle": 360}}},
		{"negative gap", archetype.Request{Archetype: "ball", Params: map[string]any{"inner_plasma_gap_radial_thickness": -1}}},
		{"pf list lengths", archetype.Request{Archetype: "ball", Params: map[string]any{"pf_coil_radial_position": []any{500}}}},
		{"two segments", archetype.Request{Archetype: "segmented_blanket_ball", Params: map[string]any{"number_of_blanket_segments": 2}}},
		{"zero blanket gap", archetype.Request{Archetype: "segmented_blanket_ball", Params: map[string]any{"gap_between_blankets": 0}}},
		{"divertor position", archetype.Request{Archetype: "single_null_ball", Params: map[string]any{"divertor_position": "middle"}}},
		{"submersion without tf", archetype.Request{Archetype: "submersion_ball", Params: map[string]any{"outboard_tf_coil_radial_thickness": 0}}},
		{"arc taller than column", archetype.Request{Archetype: "center_column_study", Params: map[string]any{"center_column_arc_vertical_thickness": 5000}}},
		{"no tf coils", archetype.Request{Archetype: "eu_demo", Params: map[string]any{"number_of_tf_coils": 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := archetype.Build(tt.req)
			requireKind(t, err, errdefs.KindInvalidParameter)
		})
	}
}

func TestUnknownKeyIsNamed(t *testing.T) {
	_, err := archetype.Decode(archetype.Request{Archetype: "ball", Params: map[string]any{"blanket_thickness": 3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blanket_thickness")
}

func TestSingleNullUpper(t *testing.T) {
	r, err := archetype.Build(archetype.Request{
		Archetype: "single_null_ball",
		Params:    map[string]any{"divertor_position": "upper"},
	})
	require.NoError(t, err)
	for _, p := range r.Lookup("divertor").Points() {
		assert.Greater(t, p.Y, 0.0)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		archetype.Register("ball", func() archetype.Config { c := archetype.DefaultBall(); return &c })
	})
}
