package graph

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dhconnelly/rtreego"

	"github.com/chazu/reactorcad/pkg/errdefs"
)

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry checks recorded bounding boxes. Degenerate boxes are
// errors; overlapping members are advisory.
func validateGeometry(g *CompositionGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	errs = append(errs, validateBounds(g)...)
	return errs, validateOverlaps(g)
}

// validateBounds checks that every recorded box has positive extent.
func validateBounds(g *CompositionGraph) []ValidationError {
	var errs []ValidationError
	for _, n := range g.RootNodes() {
		if n.Bounds == nil {
			continue
		}
		for i, axis := range "XYZ" {
			if !(n.Bounds.Max[i] > n.Bounds.Min[i]) {
				errs = append(errs, ValidationError{
					NodeID:   n.ID,
					Subject:  n.Name,
					Message:  fmt.Sprintf("bounding box has no extent along %c", axis),
					Severity: SeverityError,
					Kind:     errdefs.KindInvalidGeometry,
				})
				break
			}
		}
	}
	return errs
}

// validateOverlaps warns about pairs of shape members whose boxes overlap,
// unless one is an operand of the other.
func validateOverlaps(g *CompositionGraph) []ValidationWarning {
	var nodes []*Node
	var boxes []Box
	for _, n := range g.RootNodes() {
		if n.Bounds != nil && n.Kind == NodeShape {
			nodes = append(nodes, n)
			boxes = append(boxes, *n.Bounds)
		}
	}

	var warnings []ValidationWarning
	for _, p := range Touching(boxes, 0) {
		a, b := nodes[p[0]], nodes[p[1]]
		shared := boxes[p[0]].Overlap(boxes[p[1]])
		if shared == 0 || reaches(g, a.ID, b.ID) || reaches(g, b.ID, a.ID) {
			continue
		}
		warnings = append(warnings, ValidationWarning{
			NodeID:  a.ID,
			Subject: a.Name,
			Message: fmt.Sprintf("bounding box overlaps %q by %.4g; check the solids do not intersect", b.Name, shared),
		})
	}
	return warnings
}

// reaches reports whether to is an operand of from at any depth.
func reaches(g *CompositionGraph, from, to NodeID) bool {
	seen := map[NodeID]bool{from: true}
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := g.Nodes[id]
		if n == nil {
			continue
		}
		for _, e := range n.Children {
			if e.To == to {
				return true
			}
			if !seen[e.To] {
				seen[e.To] = true
				stack = append(stack, e.To)
			}
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Tier 3: material warnings
// ---------------------------------------------------------------------------

// validateMaterial warns about missing material tags and forwards the
// shapes' own advisories, such as overlong tags.
func validateMaterial(g *CompositionGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, n := range g.RootNodes() {
		if n.Kind == NodeSolid {
			continue
		}
		if strings.TrimSpace(n.Material) == "" {
			warnings = append(warnings, ValidationWarning{
				NodeID:  n.ID,
				Subject: n.Name,
				Message: "no material tag; neutronics exports will fail",
			})
		}
		if n.Shape == nil {
			continue
		}
		for _, w := range n.Shape.Warnings() {
			warnings = append(warnings, ValidationWarning{NodeID: n.ID, Subject: w.Subject, Message: w.Message})
		}
	}
	return warnings
}

// ---------------------------------------------------------------------------
// Spatial index
// ---------------------------------------------------------------------------

type indexed struct {
	i    int
	rect rtreego.Rect
}

func (x indexed) Bounds() rtreego.Rect { return x.rect }

func rectOf(b Box, tol float64) rtreego.Rect {
	p := rtreego.Point{b.Min[0] - tol, b.Min[1] - tol, b.Min[2] - tol}
	lengths := make([]float64, 3)
	for i := range lengths {
		// rtreego rejects empty extents.
		lengths[i] = math.Max(b.Max[i]-b.Min[i]+2*tol, 1e-9)
	}
	r, _ := rtreego.NewRect(p, lengths)
	return r
}

// Touching returns the index pairs (i < j), sorted, of boxes that overlap
// once each is grown by tol.
func Touching(boxes []Box, tol float64) [][2]int {
	if len(boxes) < 2 {
		return nil
	}
	tree := rtreego.NewTree(3, 2, 8)
	for i, b := range boxes {
		tree.Insert(indexed{i: i, rect: rectOf(b, tol)})
	}
	var pairs [][2]int
	for i, b := range boxes {
		for _, hit := range tree.SearchIntersect(rectOf(b, tol)) {
			if j := hit.(indexed).i; j > i {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a][0] != pairs[b][0] {
			return pairs[a][0] < pairs[b][0]
		}
		return pairs[a][1] < pairs[b][1]
	})
	return pairs
}
