package reactor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tinylib/msgp/msgp"
	"go.uber.org/zap"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/graph"
	"github.com/chazu/reactorcad/pkg/shape"
	"github.com/chazu/reactorcad/pkg/tessellate"
)

// H5MFormat identifies the faceted model encoding.
const H5MFormat = "reactorcad-dagmc/1"

// H5M is a watertight faceted neutronics model.
type H5M struct {
	Format            string      `msg:"format"`
	ModelID           string      `msg:"model_id"`
	FacetingTolerance float64     `msg:"faceting_tolerance"`
	MergeTolerance    float64     `msg:"merge_tolerance"`
	Volumes           []H5MVolume `msg:"volumes"`
}

// H5MVolume is one tagged volume. Vertices are welded; Triangles index
// them three at a time. Adjacent lists the IDs of volumes whose bounds
// touch this one within the faceting tolerance.
type H5MVolume struct {
	ID         int       `msg:"id"`
	Name       string    `msg:"name"`
	Material   string    `msg:"material"`
	Reflective bool      `msg:"reflective"`
	Vertices   []float32 `msg:"vertices"`
	Triangles  []uint32  `msg:"triangles"`
	Adjacent   []int     `msg:"adjacent"`
}

// Volume returns the volume with the given material tag, or nil.
func (h *H5M) Volume(material string) *H5MVolume {
	for i := range h.Volumes {
		if h.Volumes[i].Material == material {
			return &h.Volumes[i]
		}
	}
	return nil
}

// H5MOptions control a DAGMC export.
type H5MOptions struct {
	// Tags replaces the default mat_<material> tags, one per volume in
	// export order.
	Tags []string
}

// ExportH5M writes the neutronics members as a DAGMC model. Partial
// reactors have the sector wedge cut from every shape and added as a
// reflecting volume. The graveyard is appended when IncludeGraveyard is
// set.
func (r *Reactor) ExportH5M(ctx context.Context, path string, o H5MOptions) error {
	const op = "reactor.ExportH5M"
	model, err := r.H5M(ctx, o)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errdefs.IO(op, path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errdefs.IO(op, path, err)
	}
	w := bufio.NewWriter(f)
	if err := msgp.Encode(w, model); err != nil {
		f.Close()
		return errdefs.IO(op, path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errdefs.IO(op, path, err)
	}
	if err := f.Close(); err != nil {
		return errdefs.IO(op, path, err)
	}
	r.log.Info("exported h5m", zap.Int("volumes", len(model.Volumes)), zap.String("file", path))
	return nil
}

// H5M builds the DAGMC model in memory.
func (r *Reactor) H5M(ctx context.Context, o H5MOptions) (*H5M, error) {
	const op = "reactor.H5M"
	shapes := r.neutronicsShapes()
	if _, err := r.stage(ctx, shapes); err != nil {
		return nil, err
	}
	members := append([]*shape.Shape(nil), shapes...)
	wedge, err := r.SectorWedge(ctx)
	if err != nil {
		return nil, err
	}
	if wedge != nil {
		members = append(members, wedge)
	}
	if r.cfg.IncludeGraveyard {
		g, err := r.Graveyard(ctx)
		if err != nil {
			return nil, err
		}
		members = append(members, g)
	}
	if len(o.Tags) > 0 && len(o.Tags) != len(members) {
		return nil, errdefs.Invalidf(op, "%d material tags given for %d volumes", len(o.Tags), len(members))
	}

	g := graph.FromShapes(members...)
	if err := r.recordBounds(ctx, g); err != nil {
		return nil, err
	}
	topts := []tessellate.Option{tessellate.WithCutter(wedge)}
	if r.cfg.MeshCells > 0 {
		topts = append(topts, tessellate.WithCells(r.cfg.MeshCells))
	} else {
		topts = append(topts, tessellate.WithCellSize(r.cfg.cellSize()))
	}
	meshes, err := tessellate.Tessellate(ctx, g, r.builder, topts...)
	if err != nil {
		return nil, fmt.Errorf("reactor: h5m: %w", err)
	}

	model := &H5M{
		Format:            H5MFormat,
		ModelID:           uuid.NewString(),
		FacetingTolerance: r.cfg.FacetingTolerance,
		MergeTolerance:    r.cfg.MergeTolerance,
		Volumes:           make([]H5MVolume, len(meshes)),
	}
	boxes := make([]graph.Box, len(meshes))
	for i, m := range meshes {
		welded := m.Weld(r.cfg.MergeTolerance)
		if welded.IsEmpty() {
			return nil, errdefs.New(errdefs.KindInvalidGeometry, op, members[i].Name(),
				fmt.Errorf("volume tessellates to an empty mesh"))
		}
		tag := "mat_" + members[i].Material()
		if len(o.Tags) > 0 {
			tag = o.Tags[i]
		}
		model.Volumes[i] = H5MVolume{
			ID:         i + 1,
			Name:       members[i].Name(),
			Material:   tag,
			Reflective: members[i].SurfaceReflectivity(),
			Vertices:   welded.Vertices,
			Triangles:  welded.Indices,
		}
		bmin, bmax := welded.Bounds()
		boxes[i] = graph.Box{Min: bmin, Max: bmax}
	}
	for _, p := range graph.Touching(boxes, r.cfg.FacetingTolerance) {
		a, b := &model.Volumes[p[0]], &model.Volumes[p[1]]
		a.Adjacent = append(a.Adjacent, b.ID)
		b.Adjacent = append(b.Adjacent, a.ID)
	}
	return model, nil
}

// ReadH5M decodes a model written by ExportH5M.
func ReadH5M(r io.Reader) (*H5M, error) {
	var h H5M
	if err := msgp.Decode(r, &h); err != nil {
		return nil, fmt.Errorf("reactor: decode h5m: %w", err)
	}
	if h.Format != H5MFormat {
		return nil, fmt.Errorf("reactor: unsupported h5m format %q", h.Format)
	}
	return &h, nil
}
