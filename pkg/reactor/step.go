package reactor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/kernel"
	"github.com/chazu/reactorcad/pkg/shape"
)

// unitTag returns the STEP SI_UNIT prefix for units.
func unitTag(units string) (string, error) {
	switch strings.ToLower(units) {
	case "", "mm":
		return ".MILLI.", nil
	case "cm":
		return ".CENTI.", nil
	default:
		return "", errdefs.Invalidf("reactor.units", "units must be mm or cm, got %q", units)
	}
}

// ExportSTP writes one STEP file per member into dir, followed by the
// sector wedge and the graveyard when they apply. It returns the paths in
// write order.
func (r *Reactor) ExportSTP(ctx context.Context, dir string) ([]string, error) {
	const op = "reactor.ExportSTP"
	tag, err := unitTag(r.cfg.Units)
	if err != nil {
		return nil, err
	}
	if err := checkSuffixes(op, r.shapes, (*shape.Shape).StpFilename, ".stp", ".step"); err != nil {
		return nil, err
	}
	if _, err := r.stage(ctx, r.shapes); err != nil {
		return nil, err
	}
	members, err := r.solidMembers(ctx)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errdefs.IO(op, dir, err)
	}

	var paths []string
	for _, s := range members {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := r.mesh(s)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, s.StpFilename())
		if err := writeSTEPFile(path, tag, []*kernel.Mesh{m}); err != nil {
			return nil, errdefs.IO(op, s.Name(), err)
		}
		r.log.Info("exported step", zap.String("shape", s.Name()), zap.String("file", path))
		paths = append(paths, path)
	}
	return paths, nil
}

// ExportSTPCombined writes every member, plus the wedge and graveyard when
// they apply, into a single STEP file.
func (r *Reactor) ExportSTPCombined(ctx context.Context, path string) error {
	const op = "reactor.ExportSTPCombined"
	tag, err := unitTag(r.cfg.Units)
	if err != nil {
		return err
	}
	if _, err := r.stage(ctx, r.shapes); err != nil {
		return err
	}
	members, err := r.solidMembers(ctx)
	if err != nil {
		return err
	}
	meshes := make([]*kernel.Mesh, 0, len(members))
	for _, s := range members {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := r.mesh(s)
		if err != nil {
			return err
		}
		meshes = append(meshes, m)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errdefs.IO(op, path, err)
	}
	if err := writeSTEPFile(path, tag, meshes); err != nil {
		return errdefs.IO(op, path, err)
	}
	r.log.Info("exported step", zap.Int("shapes", len(meshes)), zap.String("file", path))
	return nil
}

// mesh tessellates s at its export resolution.
func (r *Reactor) mesh(s *shape.Shape) (*kernel.Mesh, error) {
	cells, err := r.cellsFor(s)
	if err != nil {
		return nil, errdefs.WithSubject(err, s.Name())
	}
	m, err := r.builder.MeshCells(s, cells)
	if err != nil {
		return nil, errdefs.WithSubject(err, s.Name())
	}
	return m, nil
}

// checkSuffixes rejects output filenames without one of the suffixes.
func checkSuffixes(op string, shapes []*shape.Shape, filename func(*shape.Shape) string, suffixes ...string) error {
	for _, s := range shapes {
		name := filename(s)
		ok := false
		for _, suf := range suffixes {
			ok = ok || strings.EqualFold(filepath.Ext(name), suf)
		}
		if !ok {
			return errdefs.New(errdefs.KindExport, op, s.Name(),
				fmt.Errorf("filename %q must end with one of %v", name, suffixes))
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// ISO 10303-21 writer
// ---------------------------------------------------------------------------

func writeSTEPFile(path, unit string, meshes []*kernel.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := WriteSTEP(w, filepath.Base(path), unit, meshes); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// stepWriter numbers entities as they are written.
type stepWriter struct {
	w    io.Writer
	next int
	err  error
}

func (s *stepWriter) entity(format string, args ...any) int {
	s.next++
	if s.err == nil {
		_, s.err = fmt.Fprintf(s.w, "#%d=%s;\n", s.next, fmt.Sprintf(format, args...))
	}
	return s.next
}

func stepReal(v float32) string {
	out := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.Contains(out, ".") {
		out += "."
	}
	return out
}

func stepString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func refList(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "#" + strconv.Itoa(id)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// WriteSTEP writes meshes as an AP214 faceted boundary representation, one
// FACETED_BREP per mesh named after its part. unit is the SI_UNIT prefix,
// ".MILLI." or ".CENTI.".
func WriteSTEP(w io.Writer, filename, unit string, meshes []*kernel.Mesh) error {
	fmt.Fprintf(w, "ISO-10303-21;\nHEADER;\n")
	fmt.Fprintf(w, "FILE_DESCRIPTION(('reactorcad faceted model'),'2;1');\n")
	fmt.Fprintf(w, "FILE_NAME(%s,'%s',(''),(''),'reactorcad','reactorcad','');\n",
		stepString(filename), time.Now().UTC().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(w, "FILE_SCHEMA(('AUTOMOTIVE_DESIGN { 1 0 10303 214 1 1 1 1 }'));\nENDSEC;\nDATA;\n")

	s := &stepWriter{w: w}
	app := s.entity("APPLICATION_CONTEXT('automotive design')")
	s.entity("APPLICATION_PROTOCOL_DEFINITION('international standard','automotive_design',2000,#%d)", app)
	pctx := s.entity("PRODUCT_CONTEXT('',#%d,'mechanical')", app)
	prod := s.entity("PRODUCT(%s,%s,'',(#%d))", stepString(filename), stepString(filename), pctx)
	form := s.entity("PRODUCT_DEFINITION_FORMATION('','',#%d)", prod)
	dctx := s.entity("PRODUCT_DEFINITION_CONTEXT('part definition',#%d,'design')", app)
	def := s.entity("PRODUCT_DEFINITION('design','',#%d,#%d)", form, dctx)
	pds := s.entity("PRODUCT_DEFINITION_SHAPE('','',#%d)", def)
	length := s.entity("(LENGTH_UNIT()NAMED_UNIT(*)SI_UNIT(%s,.METRE.))", unit)
	angle := s.entity("(NAMED_UNIT(*)PLANE_ANGLE_UNIT()SI_UNIT($,.RADIAN.))")
	solid := s.entity("(NAMED_UNIT(*)SI_UNIT($,.STERADIAN.)SOLID_ANGLE_UNIT())")
	unc := s.entity("UNCERTAINTY_MEASURE_WITH_UNIT(LENGTH_MEASURE(1.E-07),#%d,'distance_accuracy_value','confusion accuracy')", length)
	gctx := s.entity("(GEOMETRIC_REPRESENTATION_CONTEXT(3)GLOBAL_UNCERTAINTY_ASSIGNED_CONTEXT((#%d))"+
		"GLOBAL_UNIT_ASSIGNED_CONTEXT((#%d,#%d,#%d))REPRESENTATION_CONTEXT('',''))", unc, length, angle, solid)

	var breps []int
	for _, m := range meshes {
		welded := m.Weld(0)
		points := make([]int, welded.VertexCount())
		for i := range points {
			v := welded.Vertices[3*i : 3*i+3]
			points[i] = s.entity("CARTESIAN_POINT('',(%s,%s,%s))", stepReal(v[0]), stepReal(v[1]), stepReal(v[2]))
		}
		faces := make([]int, 0, welded.TriangleCount())
		for t := 0; t < welded.TriangleCount(); t++ {
			idx := welded.Indices[3*t : 3*t+3]
			loop := s.entity("POLY_LOOP('',%s)", refList([]int{points[idx[0]], points[idx[1]], points[idx[2]]}))
			bound := s.entity("FACE_OUTER_BOUND('',#%d,.T.)", loop)
			faces = append(faces, s.entity("FACE('',(#%d))", bound))
		}
		shell := s.entity("CLOSED_SHELL('',%s)", refList(faces))
		breps = append(breps, s.entity("FACETED_BREP(%s,#%d)", stepString(m.PartName), shell))
	}
	rep := s.entity("FACETED_BREP_SHAPE_REPRESENTATION('',%s,#%d)", refList(breps), gctx)
	s.entity("SHAPE_DEFINITION_REPRESENTATION(#%d,#%d)", pds, rep)
	if s.err != nil {
		return s.err
	}
	_, err := fmt.Fprintf(w, "ENDSEC;\nEND-ISO-10303-21;\n")
	return err
}

// ---------------------------------------------------------------------------
// Reader
// ---------------------------------------------------------------------------

var (
	stepEntityRe = regexp.MustCompile(`^#(\d+)=([A-Z_]+)\((.*)\);$`)
	stepRefRe    = regexp.MustCompile(`#(\d+)`)
	stepNameRe   = regexp.MustCompile(`^'((?:[^']|'')*)'`)
	stepUnitRe   = regexp.MustCompile(`SI_UNIT\((\.[A-Z]+\.),\.METRE\.\)`)
)

// STEPModel is the content of a faceted STEP file.
type STEPModel struct {
	Unit   string
	Meshes []*kernel.Mesh
}

// ReadSTEPMesh parses a faceted STEP file written by WriteSTEP back into
// meshes, one per FACETED_BREP.
func ReadSTEPMesh(r io.Reader) (*STEPModel, error) {
	type entity struct {
		kind string
		args string
	}
	entities := map[int]entity{}
	var breps []int
	model := &STEPModel{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if m := stepUnitRe.FindStringSubmatch(line); m != nil {
			model.Unit = m[1]
		}
		m := stepEntityRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		id, _ := strconv.Atoi(m[1])
		entities[id] = entity{kind: m[2], args: m[3]}
		if m[2] == "FACETED_BREP" {
			breps = append(breps, id)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	refs := func(args string) []int {
		var out []int
		for _, m := range stepRefRe.FindAllStringSubmatch(args, -1) {
			id, _ := strconv.Atoi(m[1])
			out = append(out, id)
		}
		return out
	}
	point := func(id int) ([3]float64, error) {
		e, ok := entities[id]
		if !ok || e.kind != "CARTESIAN_POINT" {
			return [3]float64{}, fmt.Errorf("step: #%d is not a cartesian point", id)
		}
		open, close := strings.LastIndex(e.args, "("), strings.LastIndex(e.args, ")")
		if open < 0 || close < open {
			return [3]float64{}, fmt.Errorf("step: malformed point #%d", id)
		}
		var p [3]float64
		fields := strings.Split(e.args[open+1:close], ",")
		if len(fields) != 3 {
			return p, fmt.Errorf("step: point #%d has %d coordinates", id, len(fields))
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return p, fmt.Errorf("step: point #%d: %w", id, err)
			}
			p[i] = v
		}
		return p, nil
	}
	firstRef := func(e entity) int {
		if r := refs(e.args); len(r) > 0 {
			return r[0]
		}
		return 0
	}
	follow := func(id int, kind string) (entity, error) {
		e, ok := entities[id]
		if !ok || e.kind != kind {
			return entity{}, fmt.Errorf("step: #%d is not a %s", id, kind)
		}
		return e, nil
	}

	for _, id := range breps {
		brep := entities[id]
		mesh := &kernel.Mesh{}
		if m := stepNameRe.FindStringSubmatch(brep.args); m != nil {
			mesh.PartName = strings.ReplaceAll(m[1], "''", "'")
		}
		shellRefs := refs(brep.args)
		if len(shellRefs) != 1 {
			return nil, fmt.Errorf("step: brep #%d has %d shells", id, len(shellRefs))
		}
		shell, err := follow(shellRefs[0], "CLOSED_SHELL")
		if err != nil {
			return nil, err
		}
		for _, faceID := range refs(shell.args) {
			face, err := follow(faceID, "FACE")
			if err != nil {
				return nil, err
			}
			bound, err := follow(firstRef(face), "FACE_OUTER_BOUND")
			if err != nil {
				return nil, err
			}
			loop, err := follow(firstRef(bound), "POLY_LOOP")
			if err != nil {
				return nil, err
			}
			corners := refs(loop.args)
			if len(corners) < 3 {
				return nil, fmt.Errorf("step: loop with %d corners", len(corners))
			}
			// Polygonal loops are fanned into triangles.
			first, err := point(corners[0])
			if err != nil {
				return nil, err
			}
			for k := 1; k+1 < len(corners); k++ {
				b, err := point(corners[k])
				if err != nil {
					return nil, err
				}
				c, err := point(corners[k+1])
				if err != nil {
					return nil, err
				}
				n := kernel.Normalize(kernel.Cross(kernel.Sub(b, first), kernel.Sub(c, first)))
				for _, p := range [][3]float64{first, b, c} {
					mesh.Vertices = append(mesh.Vertices, float32(p[0]), float32(p[1]), float32(p[2]))
					mesh.Normals = append(mesh.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
					mesh.Indices = append(mesh.Indices, uint32(len(mesh.Indices)))
				}
			}
		}
		model.Meshes = append(model.Meshes, mesh)
	}
	return model, nil
}
