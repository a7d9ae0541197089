package engine

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/chazu/reactorcad/pkg/archetype"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(reactor :archetype "ball")`,
			expect: `(reactor "__kw_archetype" "ball")`,
		},
		{
			name:   "multiple keywords",
			input:  `(reactor :ball :elongation 2 :triangularity 0.5)`,
			expect: `(reactor "__kw_ball" "__kw_elongation" 2 "__kw_triangularity" 0.5)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def blanket-thickness 50)`,
			expect: `(def blanket_thickness 50)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:rotation-angle`,
			expect: `"__kw_rotation-angle"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func evalRequest(t *testing.T, source string) *archetype.Request {
	t.Helper()
	req, evalErrs, err := NewEngine().Evaluate(context.Background(), source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if req == nil {
		t.Fatal("expected a reactor")
	}
	return req
}

func evalFails(t *testing.T, source, want string) {
	t.Helper()
	req, evalErrs, err := NewEngine().Evaluate(context.Background(), source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if req != nil {
		t.Fatalf("expected nil request, got %+v", req)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	if !strings.Contains(evalErrs[0].Message, want) {
		t.Errorf("message = %q, want containing %q", evalErrs[0].Message, want)
	}
}

// ---------------------------------------------------------------------------
// reactor
// ---------------------------------------------------------------------------

func TestReactorPositionalName(t *testing.T) {
	req := evalRequest(t, `(reactor "ball")`)
	if req.Archetype != "ball" {
		t.Errorf("archetype = %q, want ball", req.Archetype)
	}
	if len(req.Params) != 0 {
		t.Errorf("expected no params, got %v", req.Params)
	}
}

func TestReactorKeywordParams(t *testing.T) {
	source := `
;; an upper single null reactor
(reactor :archetype :single-null-ball
         :divertor-position :upper
         :rotation-angle 90
         :elongation 1.9)
`
	req := evalRequest(t, source)
	if req.Archetype != "single_null_ball" {
		t.Errorf("archetype = %q, want single_null_ball", req.Archetype)
	}
	want := map[string]any{
		"divertor_position": "upper",
		"rotation_angle":    int64(90),
		"elongation":        1.9,
	}
	if !reflect.DeepEqual(req.Params, want) {
		t.Errorf("params = %#v, want %#v", req.Params, want)
	}
}

func TestReactorVariableReference(t *testing.T) {
	source := `
(def gap 40)
(reactor :ball
         :inner-plasma-gap-radial-thickness gap
         :outer-plasma-gap-radial-thickness (* gap 2))
`
	req := evalRequest(t, source)
	if got := req.Params["inner_plasma_gap_radial_thickness"]; got != int64(40) {
		t.Errorf("inner gap = %v, want 40", got)
	}
	if got := req.Params["outer_plasma_gap_radial_thickness"]; got != int64(80) {
		t.Errorf("outer gap = %v, want 80", got)
	}
}

func TestReactorListParams(t *testing.T) {
	source := `
(reactor :ball
         :pf-coil-radial-position (list 500 550.5)
         :pf-coil-vertical-position [300 -300])
`
	req := evalRequest(t, source)
	if got, want := req.Params["pf_coil_radial_position"], []any{int64(500), 550.5}; !reflect.DeepEqual(got, want) {
		t.Errorf("radial positions = %#v, want %#v", got, want)
	}
	if got, want := req.Params["pf_coil_vertical_position"], []any{int64(300), int64(-300)}; !reflect.DeepEqual(got, want) {
		t.Errorf("vertical positions = %#v, want %#v", got, want)
	}
}

// The request a script produces decodes into the archetype it names.
func TestReactorRequestDecodes(t *testing.T) {
	req := evalRequest(t, `(reactor :segmented-blanket-ball :number-of-blanket-segments 6 :gap-between-blankets 25.5)`)
	cfg, err := archetype.Decode(*req)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	s, ok := cfg.(*archetype.SegmentedBlanketBall)
	if !ok {
		t.Fatalf("expected *SegmentedBlanketBall, got %T", cfg)
	}
	if s.NumberOfBlanketSegments != 6 || s.GapBetweenBlankets != 25.5 {
		t.Errorf("got segments=%d gap=%v", s.NumberOfBlanketSegments, s.GapBetweenBlankets)
	}
}

func TestReactorErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"no archetype", `(reactor :rotation-angle 90)`, "requires an archetype"},
		{"unknown archetype", `(reactor :donut)`, "donut"},
		{"defined twice", "(reactor :ball)\n(reactor :eu-demo)", "already defined"},
		{"missing value", `(reactor :ball :elongation)`, "elongation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalFails(t, tt.source, tt.want)
		})
	}
}

// ---------------------------------------------------------------------------
// linspace and archetypes
// ---------------------------------------------------------------------------

func TestLinspaceBuiltin(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []any
	}{
		{"endpoint", `(reactor :ball :angles (linspace 0 90 3))`, []any{0.0, 45.0, 90.0}},
		{"no endpoint", `(reactor :ball :angles (linspace 0 360 4 :endpoint false))`, []any{0.0, 90.0, 180.0, 270.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := evalRequest(t, tt.source)
			if got := req.Params["angles"]; !reflect.DeepEqual(got, tt.want) {
				t.Errorf("angles = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestLinspaceErrors(t *testing.T) {
	evalFails(t, `(linspace 0 1)`, "start, stop and count")
	evalFails(t, `(linspace 0 1 2.5)`, "positive integer")
	evalFails(t, `(linspace 0 1 3 :endpoint 1)`, "boolean")
}

func TestArchetypesBuiltin(t *testing.T) {
	req := evalRequest(t, `(reactor :ball :names (archetypes))`)
	names, ok := req.Params["names"].([]any)
	if !ok {
		t.Fatalf("names = %T, want []any", req.Params["names"])
	}
	if len(names) != len(archetype.Names()) {
		t.Errorf("got %d names, want %d", len(names), len(archetype.Names()))
	}
}

// ---------------------------------------------------------------------------
// Plain arithmetic still works (regression)
// ---------------------------------------------------------------------------

func TestArithmeticStillWorks(t *testing.T) {
	eng := NewEngine()
	req, evalErrs, err := eng.Evaluate(context.Background(), "(+ 1 2)")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if req != nil {
		t.Errorf("expected no reactor, got %+v", req)
	}
}
