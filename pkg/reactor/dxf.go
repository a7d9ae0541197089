package reactor

import (
	"context"
	"math"
	"os"
	"path/filepath"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"
	"go.uber.org/zap"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/shape"
)

var layerColors = []color.ColorNumber{color.Red, color.Yellow, color.Green, color.Cyan, color.Blue, color.Magenta}

// crossSection reports whether s is profiled in a plane containing the X
// and Z axes, so its wire is a true XZ cross-section.
func crossSection(s *shape.Shape) bool {
	if _, ok := s.Verb().(shape.HollowCube); ok {
		return false
	}
	n := s.Workplane().Frame().N
	return math.Abs(n[1]) > 1-1e-9
}

// ExportDXF writes the XZ cross-section of every member profiled in an XZ
// workplane, one layer per member. It returns the names of the members
// drawn.
func (r *Reactor) ExportDXF(ctx context.Context, path string) ([]string, error) {
	const op = "reactor.ExportDXF"
	staged, err := r.stage(ctx, r.shapes)
	if err != nil {
		return nil, err
	}

	d := dxf.NewDrawing()
	var drawn []string
	for i, st := range staged {
		s := st.shape
		if !crossSection(s) {
			r.log.Debug("dxf: skipping shape outside the XZ plane", zap.String("shape", s.Name()))
			continue
		}
		wire, err := s.Wire()
		if err != nil {
			return nil, errdefs.WithSubject(err, s.Name())
		}
		if _, err := d.AddLayer(s.Name(), layerColors[i%len(layerColors)], table.LT_CONTINUOUS, true); err != nil {
			return nil, errdefs.New(errdefs.KindExport, op, s.Name(), err)
		}
		frame := s.Workplane().Frame()
		poly := wire.Polygon()
		for k := range poly {
			a := frame.ToWorld(poly[k][0], poly[k][1], 0)
			b := frame.ToWorld(poly[(k+1)%len(poly)][0], poly[(k+1)%len(poly)][1], 0)
			if _, err := d.Line(a[0], a[2], 0, b[0], b[2], 0); err != nil {
				return nil, errdefs.New(errdefs.KindExport, op, s.Name(), err)
			}
		}
		drawn = append(drawn, s.Name())
	}
	if len(drawn) == 0 {
		return nil, errdefs.Exportf(op, "no shape has an XZ cross-section")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errdefs.IO(op, path, err)
	}
	if err := d.SaveAs(path); err != nil {
		return nil, errdefs.IO(op, path, err)
	}
	r.log.Info("exported dxf", zap.Int("layers", len(drawn)), zap.String("file", path))
	return drawn, nil
}
