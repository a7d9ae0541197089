package reactor

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	svg "github.com/ajstarks/svgo"
	"go.uber.org/zap"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/kernel"
)

// SVGOptions control the projected line drawing.
type SVGOptions struct {
	Width         int        `yaml:"width" json:"width"`
	Height        int        `yaml:"height" json:"height"`
	MarginLeft    int        `yaml:"margin_left" json:"margin_left"`
	MarginTop     int        `yaml:"margin_top" json:"margin_top"`
	ProjectionDir [3]float64 `yaml:"projection_dir" json:"projection_dir"`
	// StrokeWidth of zero picks a width from the drawing size.
	StrokeWidth float64 `yaml:"stroke_width" json:"stroke_width,omitempty"`
	StrokeColor [3]int  `yaml:"stroke_color" json:"stroke_color"`
	HiddenColor [3]int  `yaml:"hidden_color" json:"hidden_color"`
	ShowHidden  bool    `yaml:"show_hidden" json:"show_hidden"`
	ShowAxes    bool    `yaml:"show_axes" json:"show_axes"`
}

// DefaultSVGOptions returns the drawing defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:         1000,
		Height:        800,
		MarginLeft:    120,
		MarginTop:     100,
		ProjectionDir: [3]float64{-1.75, 1.1, 5},
		HiddenColor:   [3]int{100, 100, 100},
	}
}

// Validate checks the drawing options.
func (o SVGOptions) Validate() error {
	const op = "reactor.SVGOptions"
	if o.Width <= 2*o.MarginLeft || o.Height <= 2*o.MarginTop {
		return errdefs.Invalidf(op, "drawing %dx%d leaves no room inside margins %d, %d", o.Width, o.Height, o.MarginLeft, o.MarginTop)
	}
	if o.MarginLeft < 0 || o.MarginTop < 0 || o.StrokeWidth < 0 {
		return errdefs.Invalidf(op, "margins and stroke width must not be negative")
	}
	if kernel.Length(o.ProjectionDir) == 0 {
		return errdefs.Invalidf(op, "projection direction must be non-zero")
	}
	for _, c := range [][3]int{o.StrokeColor, o.HiddenColor} {
		for _, v := range c {
			if v < 0 || v > 255 {
				return errdefs.Invalidf(op, "colour component %d outside [0, 255]", v)
			}
		}
	}
	return nil
}

// featureAngle is the dihedral angle above which a mesh edge is drawn.
const featureAngle = 30.0

// segment is a projected edge.
type segment struct {
	a, b   [2]float64
	hidden bool
}

// projection maps world points onto the drawing plane.
type projection struct {
	dir, u, v [3]float64
}

func newProjection(dir [3]float64) projection {
	d := kernel.Normalize(dir)
	up := [3]float64{0, 0, 1}
	if math.Abs(kernel.Dot(up, d)) > 0.99 {
		up = [3]float64{0, 1, 0}
	}
	u := kernel.Normalize(kernel.Cross(up, d))
	return projection{dir: d, u: u, v: kernel.Cross(d, u)}
}

func (p projection) apply(x [3]float64) [2]float64 {
	return [2]float64{kernel.Dot(x, p.u), kernel.Dot(x, p.v)}
}

// featureEdges returns the boundary and crease edges of m, each marked
// hidden when no adjacent face points towards the viewer.
func featureEdges(m *kernel.Mesh, p projection) []segment {
	welded := m.Weld(1e-5)
	type edge struct{ i, j uint32 }
	normals := map[edge][][3]float64{}
	var order []edge
	for t := 0; t < welded.TriangleCount(); t++ {
		tri := welded.Triangle(t)
		n := kernel.Normalize(kernel.Cross(kernel.Sub(tri[1], tri[0]), kernel.Sub(tri[2], tri[0])))
		idx := welded.Indices[3*t : 3*t+3]
		for k := 0; k < 3; k++ {
			e := edge{idx[k], idx[(k+1)%3]}
			if e.i > e.j {
				e.i, e.j = e.j, e.i
			}
			if _, ok := normals[e]; !ok {
				order = append(order, e)
			}
			normals[e] = append(normals[e], n)
		}
	}

	crease := math.Cos(featureAngle * math.Pi / 180)
	var out []segment
	for _, e := range order {
		ns := normals[e]
		if len(ns) == 2 && kernel.Dot(ns[0], ns[1]) > crease {
			continue
		}
		front := false
		for _, n := range ns {
			front = front || kernel.Dot(n, p.dir) > 0
		}
		out = append(out, segment{
			a:      p.apply(welded.Vertex(e.i)),
			b:      p.apply(welded.Vertex(e.j)),
			hidden: !front,
		})
	}
	return out
}

func rgb(c [3]int) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c[0], c[1], c[2])
}

// RenderSVG draws the members' feature edges projected along
// o.ProjectionDir. Each member is a group named after it.
func (r *Reactor) RenderSVG(ctx context.Context, w io.Writer, o SVGOptions) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if _, err := r.stage(ctx, r.shapes); err != nil {
		return err
	}
	p := newProjection(o.ProjectionDir)
	groups := make([][]segment, len(r.shapes))
	minP := [2]float64{math.Inf(1), math.Inf(1)}
	maxP := [2]float64{math.Inf(-1), math.Inf(-1)}
	for i, s := range r.shapes {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := r.mesh(s)
		if err != nil {
			return err
		}
		groups[i] = featureEdges(m, p)
		for _, seg := range groups[i] {
			for _, q := range [][2]float64{seg.a, seg.b} {
				minP = [2]float64{math.Min(minP[0], q[0]), math.Min(minP[1], q[1])}
				maxP = [2]float64{math.Max(maxP[0], q[0]), math.Max(maxP[1], q[1])}
			}
		}
	}

	innerW := float64(o.Width - 2*o.MarginLeft)
	innerH := float64(o.Height - 2*o.MarginTop)
	scale := 1.0
	if dx, dy := maxP[0]-minP[0], maxP[1]-minP[1]; dx > 0 || dy > 0 {
		scale = math.Min(innerW/math.Max(dx, 1e-12), innerH/math.Max(dy, 1e-12))
	}
	px := func(q [2]float64) (int, int) {
		x := float64(o.MarginLeft) + (q[0]-minP[0])*scale
		y := float64(o.Height-o.MarginTop) - (q[1]-minP[1])*scale
		return int(math.Round(x)), int(math.Round(y))
	}
	stroke := o.StrokeWidth
	if stroke == 0 {
		stroke = math.Max(0.5, math.Min(innerW, innerH)/600)
	}

	canvas := svg.New(w)
	canvas.Start(o.Width, o.Height)
	canvas.Title("reactor")
	for i, segs := range groups {
		canvas.Gid(r.shapes[i].Name())
		if o.ShowHidden {
			canvas.Gstyle(fmt.Sprintf("stroke:%s;stroke-width:%.3g;stroke-dasharray:4,2;fill:none", rgb(o.HiddenColor), stroke))
			for _, seg := range segs {
				if seg.hidden {
					x1, y1 := px(seg.a)
					x2, y2 := px(seg.b)
					canvas.Line(x1, y1, x2, y2)
				}
			}
			canvas.Gend()
		}
		canvas.Gstyle(fmt.Sprintf("stroke:%s;stroke-width:%.3g;fill:none", rgb(o.StrokeColor), stroke))
		for _, seg := range segs {
			if !seg.hidden {
				x1, y1 := px(seg.a)
				x2, y2 := px(seg.b)
				canvas.Line(x1, y1, x2, y2)
			}
		}
		canvas.Gend()
		canvas.Gend()
	}
	if o.ShowAxes {
		drawAxes(canvas, p, o)
	}
	canvas.End()
	return nil
}

// drawAxes draws a small X/Y/Z triad in the lower left corner.
func drawAxes(canvas *svg.SVG, p projection, o SVGOptions) {
	const length = 40.0
	ox, oy := o.MarginLeft/2, o.Height-o.MarginTop/2
	canvas.Gstyle("stroke:rgb(0,0,0);stroke-width:1;fill:none;font-size:12px")
	for i, label := range []string{"X", "Y", "Z"} {
		var axis [3]float64
		axis[i] = 1
		q := p.apply(axis)
		x := ox + int(math.Round(q[0]*length))
		y := oy - int(math.Round(q[1]*length))
		canvas.Line(ox, oy, x, y)
		canvas.Text(x+3, y-3, label, "stroke:none;fill:rgb(0,0,0)")
	}
	canvas.Gend()
}

// ExportSVG writes the projection to path, appending .svg when the suffix
// is missing. It returns the written path.
func (r *Reactor) ExportSVG(ctx context.Context, path string, o SVGOptions) (string, error) {
	const op = "reactor.ExportSVG"
	if !strings.EqualFold(filepath.Ext(path), ".svg") {
		path += ".svg"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errdefs.IO(op, path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", errdefs.IO(op, path, err)
	}
	if err := r.RenderSVG(ctx, f, o); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", errdefs.IO(op, path, err)
	}
	r.log.Info("exported svg", zap.String("file", path))
	return path, nil
}
