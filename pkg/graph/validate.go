package graph

import (
	"errors"
	"fmt"

	"github.com/chazu/reactorcad/pkg/errdefs"
)

// ValidationSeverity indicates whether a validation finding blocks export
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks export
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Subject  string             // node name, when known
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
	Kind     errdefs.Kind       // error kind reported by ValidationResult.Err
}

func (e ValidationError) Error() string {
	switch {
	case e.Subject != "":
		return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Subject, e.Message)
	case !e.NodeID.IsZero():
		return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Subject string
	Message string
}

func (w ValidationWarning) String() string {
	if w.Subject != "" {
		return w.Subject + ": " + w.Message
	}
	return w.Message
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Err returns nil when OK, otherwise an *errdefs.Error whose kind is that
// of the first finding and which wraps every finding.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	first := r.Errors[0]
	return errdefs.New(first.Kind, "graph.Validate", first.Subject, errors.Join(errs...))
}

// Validate runs the Tier 1 structural checks and returns every finding.
// An empty slice means the graph is valid. It never mutates the graph.
func Validate(g *CompositionGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	return errs
}

// ValidateAll runs all validation tiers (structural, geometric, material)
// and returns a ValidationResult with separated errors and warnings.
func ValidateAll(g *CompositionGraph) ValidationResult {
	tier1 := Validate(g)
	tier2Errs, tier2Warnings := validateGeometry(g)
	tier3Warnings := validateMaterial(g)

	var result ValidationResult
	for _, e := range tier1 {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Subject: e.Subject,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier2Warnings...)
	result.Warnings = append(result.Warnings, tier3Warnings...)
	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *CompositionGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			n := g.Nodes[id]
			errs = append(errs, ValidationError{
				NodeID:   id,
				Subject:  n.Label(),
				Message:  "boolean operands form a cycle",
				Severity: SeverityError,
				Kind:     errdefs.KindComposition,
			})
			return true
		}

		color[id] = gray
		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}
		for _, e := range node.Children {
			if visit(e.To) {
				return true
			}
		}
		color[id] = black
		return false
	}

	// Roots first so the reported node is a reactor member when possible.
	order := append([]NodeID(nil), g.Roots...)
	for id := range g.Nodes {
		order = append(order, id)
	}
	for _, id := range order {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}
	return errs
}

// validateReferences checks that every edge points to an existing node.
func validateReferences(g *CompositionGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		for _, e := range node.Children {
			if _, ok := g.Nodes[e.To]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Subject:  node.Name,
					Message:  fmt.Sprintf("%s operand %s does not exist", e.Op, e.To.Short()),
					Severity: SeverityError,
					Kind:     errdefs.KindComposition,
				})
			}
		}
	}
	return errs
}

// validateNames checks that every root is named, that root names are
// unique, and that the name index points at existing roots.
func validateNames(g *CompositionGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
				Kind:     errdefs.KindExport,
			})
		}
	}

	seen := make(map[string]int)
	for i, n := range g.RootNodes() {
		if n.Name == "" {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("member %d has no name", i),
				Severity: SeverityError,
				Kind:     errdefs.KindExport,
			})
			continue
		}
		seen[n.Name]++
		if seen[n.Name] == 2 {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Subject:  n.Name,
				Message:  fmt.Sprintf("duplicate member name %q", n.Name),
				Severity: SeverityError,
				Kind:     errdefs.KindExport,
			})
		}
	}
	return errs
}

// validateRoots checks that every root ID references an existing node and
// warns about nodes unreachable from any root.
func validateRoots(g *CompositionGraph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
				Kind:     errdefs.KindComposition,
			})
		}
	}
	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, e := range node.Children {
			if !reachable[e.To] {
				reachable[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}

	for id, node := range g.Nodes {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Subject:  node.Name,
				Message:  fmt.Sprintf("node %q is not reachable from any member (orphan)", node.Label()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
