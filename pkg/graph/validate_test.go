package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/reactorcad/pkg/errdefs"
)

func findMessage(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidateCycle(t *testing.T) {
	a := ring(t, "a", 5, 10)
	b := ring(t, "b", 6, 7)
	if err := a.SetCut(b); err != nil {
		t.Fatal(err)
	}
	if err := b.SetUnion(a); err != nil {
		t.Fatal(err)
	}

	g := FromShapes(a)
	if g.RootNodes()[0].ContentHash != "" {
		t.Error("a shape in a cycle has no content hash")
	}
	errs := Validate(g)
	if !findMessage(errs, "cycle") {
		t.Fatalf("expected a cycle finding, got %v", errs)
	}
	res := ValidateAll(g)
	if res.OK() {
		t.Fatal("a cyclic graph must not validate")
	}
	if got := errdefs.KindOf(res.Err()); got != errdefs.KindComposition {
		t.Errorf("kind = %v, want composition", got)
	}
}

func TestValidateNames(t *testing.T) {
	a := ring(t, "blanket", 5, 10)
	b := ring(t, "blanket", 11, 15)
	c := ring(t, "", 16, 20)

	errs := Validate(FromShapes(a, b, c))
	if !findMessage(errs, "duplicate member name") {
		t.Errorf("expected duplicate name finding, got %v", errs)
	}
	if !findMessage(errs, "has no name") {
		t.Errorf("expected missing name finding, got %v", errs)
	}

	res := ValidateAll(FromShapes(a, b))
	if got := errdefs.KindOf(res.Err()); got != errdefs.KindExport {
		t.Errorf("kind = %v, want export", got)
	}
	var ve ValidationError
	if !errors.As(res.Err(), &ve) || ve.Subject != "blanket" {
		t.Errorf("error should wrap the finding for blanket, got %v", res.Err())
	}

	// The same shape added twice is a duplicate as well.
	if errs := Validate(FromShapes(a, a)); !findMessage(errs, "duplicate member name") {
		t.Errorf("expected duplicate finding for a repeated member, got %v", errs)
	}
}

func TestValidateReferences(t *testing.T) {
	g := New()
	id := NewNodeID("shape/0")
	g.AddNode(&Node{ID: id, Name: "s", Material: "m", Children: []Edge{{Op: OpCut, To: NewNodeID("missing")}}})
	g.AddRoot(id)
	g.Roots = append(g.Roots, NewNodeID("ghost"))

	errs := Validate(g)
	if !findMessage(errs, "cut operand") {
		t.Errorf("expected dangling operand finding, got %v", errs)
	}
	if !findMessage(errs, "root reference") {
		t.Errorf("expected dangling root finding, got %v", errs)
	}
}

func TestValidateOrphanIsWarning(t *testing.T) {
	g := FromShapes(ring(t, "a", 5, 10))
	orphan := NewNodeID("orphan")
	g.AddNode(&Node{ID: orphan, Name: "loose"})

	res := ValidateAll(g)
	if !res.OK() {
		t.Fatalf("orphans must not block, got %v", res.Errors)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, "orphan") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an orphan warning, got %v", res.Warnings)
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Subject: "plasma", Message: "bad", Severity: SeverityError}
	if got := e.Error(); got != "[error] plasma: bad" {
		t.Errorf("Error() = %q", got)
	}
	e = ValidationError{Message: "graph-level", Severity: SeverityWarning}
	if got := e.Error(); got != "[warning] graph-level" {
		t.Errorf("Error() = %q", got)
	}
	if (ValidationResult{}).Err() != nil {
		t.Error("an empty result has no error")
	}
}
