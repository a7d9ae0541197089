package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/reactorcad/pkg/archetype"
	"github.com/chazu/reactorcad/pkg/errdefs"
)

// ---------------------------------------------------------------------------
// 1. Empty script: 0 meshes, 0 errors, non-nil slices.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(context.Background(), "")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax error on a later line keeps a message.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := newTestApp(t)

	source := "(def gap 40)\n(reactor :ball :inner-plasma-gap-radial-thickness gap"
	result := app.Evaluate(context.Background(), source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

// ---------------------------------------------------------------------------
// 3. Scripts without a reactor produce nothing.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	app := newTestApp(t)
	sources := []string{
		";; just a comment",
		"  \n ;; comment\n\t; another\n",
		"(def x (* 2 (+ 3 4)))",
	}
	for _, source := range sources {
		result := app.Evaluate(context.Background(), source)
		if len(result.Errors) != 0 || len(result.Meshes) != 0 || result.Archetype != "" {
			t.Errorf("source %q: got %+v", source, result)
		}
	}
}

// ---------------------------------------------------------------------------
// 4. Rapid sequential evaluation never panics and recovers between
//    failures and successes.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	app := newTestApp(t)

	sources := []string{
		`(reactor :donut)`,
		`(reactor :ball`,
		``,
		`(undefined-func 1 2 3)`,
		`(reactor :ball :elongation "tall")`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(reactor :ball) (reactor :ball)`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			result := app.Evaluate(context.Background(), source)
			if len(result.Meshes) != 0 {
				t.Errorf("iteration %d: expected no meshes, got %d", i, len(result.Meshes))
			}
		}()
	}
}

// ---------------------------------------------------------------------------
// 5. Parameter files.
// ---------------------------------------------------------------------------

func TestParseRequestFormats(t *testing.T) {
	app := newTestApp(t)
	tests := []struct {
		ext  string
		data string
	}{
		{".json", `{"archetype": "ball", "params": {"rotation_angle": 45}}`},
		{".yaml", "archetype: ball\nparams:\n  rotation_angle: 45\n"},
		{".YML", "archetype: ball\nparams: {rotation_angle: 45}\n"},
		{".zy", "(reactor \"ball\" :rotation-angle 45)"},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			req, err := app.ParseRequest(context.Background(), tt.ext, []byte(tt.data))
			if err != nil {
				t.Fatalf("ParseRequest: %v", err)
			}
			if req.Archetype != "ball" {
				t.Errorf("archetype = %q, want ball", req.Archetype)
			}
			cfg, err := archetype.Decode(req)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got := cfg.(*archetype.Ball).RotationAngle; got != 45 {
				t.Errorf("rotation angle = %v, want 45", got)
			}
		})
	}
}

func TestParseRequestErrors(t *testing.T) {
	app := newTestApp(t)
	tests := []struct {
		name string
		ext  string
		data string
		want string
	}{
		{"unknown extension", ".toml", `archetype = "ball"`, "unsupported"},
		{"unknown json field", ".json", `{"archetype": "ball", "parameters": {}}`, "parameters"},
		{"unknown yaml field", ".yaml", "archetype: ball\nparameters: {}\n", "parameters"},
		{"bad json", ".json", `{"archetype": `, "json"},
		{"missing archetype", ".yaml", "params: {rotation_angle: 45}\n", "missing archetype"},
		{"empty yaml", ".yaml", "", "missing archetype"},
		{"script without reactor", ".zy", "(+ 1 2)", "no reactor"},
		{"script error", ".zy", "(reactor :donut)", "donut"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.ParseRequest(context.Background(), tt.ext, []byte(tt.data))
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errdefs.KindOf(err); got != errdefs.KindInvalidParameter {
				t.Errorf("kind = %v, want invalid parameter", got)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 6. Export routing.
// ---------------------------------------------------------------------------

func TestExportUnknownFormat(t *testing.T) {
	app := newTestApp(t)
	r, err := app.Reactor(archetype.Request{Archetype: "ball"})
	if err != nil {
		t.Fatalf("Reactor: %v", err)
	}
	_, err = app.Export(context.Background(), "obj", r)
	if got := errdefs.KindOf(err); got != errdefs.KindInvalidParameter {
		t.Fatalf("kind = %v, want invalid parameter (err: %v)", got, err)
	}
}

func TestOutFile(t *testing.T) {
	app := newTestApp(t)
	dir := app.Config().Out

	if got, want := app.outFile("dagmc", ".h5m"), filepath.Join(dir, "dagmc.h5m"); got != want {
		t.Errorf("outFile in directory = %q, want %q", got, want)
	}
	app.cfg.Out = filepath.Join(dir, "model.H5M")
	if got := app.outFile("dagmc", ".h5m"); got != app.cfg.Out {
		t.Errorf("outFile with suffix = %q, want %q", got, app.cfg.Out)
	}
}

func TestExportPureFormats(t *testing.T) {
	app := newTestApp(t)
	r, err := app.Reactor(archetype.Request{Archetype: "single_null_ball"})
	if err != nil {
		t.Fatalf("Reactor: %v", err)
	}
	tests := []struct {
		format string
		files  int
	}{
		{FormatDXF, 1},
		{FormatGroups, len(r.Shapes())},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			paths, err := app.Export(context.Background(), tt.format, r)
			if err != nil {
				t.Fatalf("Export: %v", err)
			}
			if len(paths) != tt.files {
				t.Fatalf("got %d paths, want %d: %v", len(paths), tt.files, paths)
			}
			for _, p := range paths {
				info, err := os.Stat(p)
				if err != nil {
					t.Fatalf("stat %s: %v", p, err)
				}
				if info.Size() == 0 {
					t.Errorf("%s is empty", p)
				}
			}
		})
	}
}
