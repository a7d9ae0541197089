package reactor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/profile"
	"github.com/chazu/reactorcad/pkg/shape"
)

// NeutronicsDescription returns the manifest entries: the neutronics
// members in insertion order, then the sector wedge when the reactor is
// partial, then the graveyard when enabled. Only names and tags are read,
// so nothing is built.
func (r *Reactor) NeutronicsDescription(ctx context.Context) ([]shape.NeutronicsDescription, error) {
	shapes := r.neutronicsShapes()
	if _, err := r.stage(ctx, shapes); err != nil {
		return nil, err
	}
	// Placeholder sizes: the entries carry no geometry.
	if wedge, err := shape.SectorWedge(1, 1, r.RotationAngle()); err != nil {
		return nil, err
	} else if wedge != nil {
		shapes = append(shapes, wedge)
	}
	if r.cfg.IncludeGraveyard {
		g, err := r.graveyard(1)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, g)
	}

	out := make([]shape.NeutronicsDescription, 0, len(shapes))
	for _, s := range shapes {
		d, err := s.NeutronicsDescription()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// MaterialTags returns the material tags of the neutronics members in
// insertion order.
func (r *Reactor) MaterialTags() []string {
	shapes := r.neutronicsShapes()
	out := make([]string, len(shapes))
	for i, s := range shapes {
		out[i] = s.Material()
	}
	return out
}

// ExportManifest writes the neutronics description as JSON.
func (r *Reactor) ExportManifest(ctx context.Context, path string) error {
	const op = "reactor.ExportManifest"
	entries, err := r.NeutronicsDescription(ctx)
	if err != nil {
		return err
	}
	if err := writeJSON(path, entries); err != nil {
		return errdefs.IO(op, path, err)
	}
	r.log.Info("exported manifest", zap.Int("entries", len(entries)), zap.String("file", path))
	return nil
}

// ExportPhysicalGroups writes one JSON file per member, named after its
// STEP file, listing the volume and face groups for downstream meshers.
// Members without generated groups get a single volume group.
func (r *Reactor) ExportPhysicalGroups(ctx context.Context, dir string) ([]string, error) {
	const op = "reactor.ExportPhysicalGroups"
	staged, err := r.stage(ctx, r.shapes)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, st := range staged {
		groups := st.shape.PhysicalGroups()
		if len(groups) == 0 {
			groups = []profile.PhysicalGroup{{Dim: 3, ID: 1, Name: st.shape.Name()}}
		}
		path := filepath.Join(dir, strings.TrimSuffix(st.stp, filepath.Ext(st.stp))+".json")
		if err := writeJSON(path, groups); err != nil {
			return nil, errdefs.IO(op, st.shape.Name(), err)
		}
		r.log.Info("exported physical groups", zap.String("shape", st.shape.Name()), zap.String("file", path))
		paths = append(paths, path)
	}
	return paths, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
