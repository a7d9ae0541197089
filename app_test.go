package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/chazu/reactorcad/pkg/config"
	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/reactor"
)

// testCells keeps marching cubes coarse so end-to-end tests stay fast.
const testCells = 24

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Reactor.MeshCells = testCells
	cfg.Out = t.TempDir()
	return NewApp(cfg, zap.NewNop())
}

// TestE2EExampleParams loads every example parameter file and builds the
// reactor it describes.
func TestE2EExampleParams(t *testing.T) {
	tests := []struct {
		file      string
		archetype string
		shapes    []string
	}{
		{
			file:      "examples/ball.yaml",
			archetype: "ball",
			shapes: []string{
				"plasma", "inboard_tf_coils", "center_column_shield",
				"divertor_upper", "divertor_lower",
				"firstwall", "blanket", "blanket_rear_wall",
				"pf_coils", "pf_coil_cases", "tf_coils",
			},
		},
		{
			file:      "examples/segmented_blanket.json",
			archetype: "segmented_blanket_ball",
			shapes: []string{
				"plasma", "inboard_tf_coils", "center_column_shield",
				"divertor_upper", "divertor_lower",
				"firstwall", "blanket", "blanket_rear_wall",
			},
		},
		{
			file:      "examples/single_null.zy",
			archetype: "single_null_ball",
			shapes: []string{
				"plasma", "inboard_tf_coils", "center_column_shield", "divertor",
				"firstwall", "blanket", "blanket_rear_wall",
			},
		},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.file), func(t *testing.T) {
			app := newTestApp(t)
			req, err := app.LoadRequest(context.Background(), tt.file)
			if err != nil {
				t.Fatalf("LoadRequest: %v", err)
			}
			if req.Archetype != tt.archetype {
				t.Errorf("archetype = %q, want %q", req.Archetype, tt.archetype)
			}
			r, err := app.Reactor(req)
			if err != nil {
				t.Fatalf("Reactor: %v", err)
			}
			got := r.ShapeNames()
			if len(got) != len(tt.shapes) {
				t.Fatalf("shapes = %v, want %v", got, tt.shapes)
			}
			for i := range got {
				if got[i] != tt.shapes[i] {
					t.Errorf("shape %d = %q, want %q", i, got[i], tt.shapes[i])
				}
			}
		})
	}
}

// TestE2EScriptParamsApplied checks that script values reach the shapes.
func TestE2EScriptParamsApplied(t *testing.T) {
	app := newTestApp(t)
	req, err := app.LoadRequest(context.Background(), "examples/single_null.zy")
	if err != nil {
		t.Fatalf("LoadRequest: %v", err)
	}
	r, err := app.Reactor(req)
	if err != nil {
		t.Fatalf("Reactor: %v", err)
	}
	if got := r.RotationAngle(); got != 120 {
		t.Errorf("rotation angle = %v, want 120", got)
	}
	for _, p := range r.Lookup("divertor").Points() {
		if p.Y <= 0 {
			t.Fatalf("upper divertor has a point below the midplane: %+v", p)
		}
	}
}

// TestE2EManifestExport writes the neutronics manifest, which needs no
// geometry to be built.
func TestE2EManifestExport(t *testing.T) {
	app := newTestApp(t)
	req, err := app.LoadRequest(context.Background(), "examples/segmented_blanket.json")
	if err != nil {
		t.Fatalf("LoadRequest: %v", err)
	}
	r, err := app.Reactor(req)
	if err != nil {
		t.Fatalf("Reactor: %v", err)
	}
	paths, err := app.Export(context.Background(), FormatManifest, r)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "manifest.json" {
		t.Fatalf("paths = %v, want one manifest.json", paths)
	}

	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	// Eight members, the sector wedge of the half model, then the graveyard.
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
	if entries[0]["material"] != "DT_plasma" {
		t.Errorf("first entry material = %v, want DT_plasma", entries[0]["material"])
	}
	if last := entries[len(entries)-1]; last["material"] != reactor.GraveyardMaterial {
		t.Errorf("last entry material = %v, want graveyard", last["material"])
	}
}

// TestE2EEvaluate runs a script through to meshes.
func TestE2EEvaluate(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(context.Background(), `(reactor :center-column-study :rotation-angle 90)`)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	if result.Archetype != "center_column_study" {
		t.Errorf("archetype = %q", result.Archetype)
	}

	expectedParts := map[string]bool{
		"plasma":               false,
		"inboard_tf_coils":     false,
		"center_column_shield": false,
		"inboard_firstwall":    false,
		"blanket":              false,
		"divertor":             false,
	}
	if len(result.Meshes) != len(expectedParts) {
		t.Fatalf("expected %d meshes, got %d", len(expectedParts), len(result.Meshes))
	}
	for _, m := range result.Meshes {
		if _, ok := expectedParts[m.PartName]; !ok {
			t.Errorf("unexpected part name: %q", m.PartName)
			continue
		}
		expectedParts[m.PartName] = true
		if m.Color == "" {
			t.Errorf("part %q: no color assigned", m.PartName)
		}
		if len(m.Vertices) != len(m.Normals) {
			t.Errorf("part %q: %d vertices but %d normals", m.PartName, len(m.Vertices), len(m.Normals))
		}
	}
	for name, found := range expectedParts {
		if !found {
			t.Errorf("missing mesh for part %q", name)
		}
	}
	if len(result.Meshes[0].Indices) == 0 {
		t.Error("plasma mesh has no triangles")
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(context.Background(), "")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(context.Background(), `(reactor :ball`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

// TestE2EInvalidParamsReported ensures archetype failures surface as
// result errors.
func TestE2EInvalidParamsReported(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(context.Background(), `(reactor :ball :rotation-angle 360)`)

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if result.Archetype != "ball" {
		t.Errorf("archetype = %q, want ball", result.Archetype)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

func TestLoadRequestMissingFile(t *testing.T) {
	app := newTestApp(t)
	_, err := app.LoadRequest(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	if got := errdefs.KindOf(err); got != errdefs.KindIO {
		t.Fatalf("kind = %v, want i/o failure (err: %v)", got, err)
	}
}
