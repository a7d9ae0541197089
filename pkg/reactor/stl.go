package reactor

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/kernel"
	"github.com/chazu/reactorcad/pkg/shape"
)

// ExportSTL writes one binary STL file per member into dir, followed by
// the sector wedge and the graveyard when they apply.
func (r *Reactor) ExportSTL(ctx context.Context, dir string) ([]string, error) {
	const op = "reactor.ExportSTL"
	if err := checkSuffixes(op, r.shapes, (*shape.Shape).StlFilename, ".stl"); err != nil {
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
		cells, err := r.cellsFor(s)
		if err != nil {
			return nil, errdefs.WithSubject(err, s.Name())
		}
		path := filepath.Join(dir, s.StlFilename())
		if err := r.builder.ExportSTL(s, path, cells); err != nil {
			return nil, err
		}
		r.log.Info("exported stl", zap.String("shape", s.Name()), zap.String("file", path))
		paths = append(paths, path)
	}
	return paths, nil
}

// ExportSTLCombined writes every member, plus the wedge and graveyard when
// they apply, into one STL file.
func (r *Reactor) ExportSTLCombined(ctx context.Context, path string) error {
	const op = "reactor.ExportSTLCombined"
	if _, err := r.stage(ctx, r.shapes); err != nil {
		return err
	}
	members, err := r.solidMembers(ctx)
	if err != nil {
		return err
	}
	combined := &kernel.Mesh{PartName: filepath.Base(path)}
	for _, s := range members {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := r.mesh(s)
		if err != nil {
			return err
		}
		combined.Append(m)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errdefs.IO(op, path, err)
	}
	if err := r.builder.ExportMeshSTL(combined, path); err != nil {
		return err
	}
	r.log.Info("exported stl", zap.Int("shapes", len(members)), zap.String("file", path))
	return nil
}
