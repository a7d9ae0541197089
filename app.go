package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/chazu/reactorcad/pkg/archetype"
	"github.com/chazu/reactorcad/pkg/config"
	"github.com/chazu/reactorcad/pkg/engine"
	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/graph"
	"github.com/chazu/reactorcad/pkg/kernel/sdfx"
	"github.com/chazu/reactorcad/pkg/reactor"
	"github.com/chazu/reactorcad/pkg/shape"
)

// Export formats understood by App.Export.
const (
	FormatSTP      = "stp"
	FormatSTL      = "stl"
	FormatH5M      = "h5m"
	FormatSVG      = "svg"
	FormatHTML     = "html"
	FormatDXF      = "dxf"
	FormatManifest = "manifest"
	FormatGroups   = "groups"
)

// App glues configuration, the script engine, the archetype registry and
// the reactor exporters together. The CLI commands are thin wrappers
// around it.
type App struct {
	cfg     config.Config
	log     *zap.Logger
	engine  *engine.Engine
	builder *shape.Builder
}

// EvalErrorData is a JSON-serializable evaluation error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a reactor script.
type EvalResult struct {
	Archetype string             `json:"archetype,omitempty"`
	Meshes    []reactor.MeshData `json:"meshes"`
	Errors    []EvalErrorData    `json:"errors"`
	Warnings  []EvalErrorData    `json:"warnings"`
}

// NewApp creates an App over a fresh sdfx kernel. A nil logger discards
// everything.
func NewApp(cfg config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	k := sdfx.New(sdfx.WithMeshCells(cfg.Reactor.MeshCells))
	return &App{
		cfg:    cfg,
		log:    log,
		engine: engine.NewEngine(engine.WithTimeout(cfg.ScriptTimeout), engine.WithLogger(log)),
		builder: shape.NewBuilder(k,
			shape.WithLogger(log),
			shape.WithMeshCells(cfg.Reactor.MeshCells),
			shape.WithCacheSize(cfg.CacheSize),
		),
	}
}

// Config returns the configuration the App was created with.
func (a *App) Config() config.Config { return a.cfg }

// ---------------------------------------------------------------------------
// Parameters
// ---------------------------------------------------------------------------

// LoadRequest reads an archetype request from a .json, .yaml/.yml or .zy
// file.
func (a *App) LoadRequest(ctx context.Context, path string) (archetype.Request, error) {
	const op = "app.LoadRequest"
	data, err := os.ReadFile(path)
	if err != nil {
		return archetype.Request{}, errdefs.IO(op, path, err)
	}
	req, err := a.ParseRequest(ctx, filepath.Ext(path), data)
	if err != nil {
		return archetype.Request{}, errdefs.WithSubject(err, path)
	}
	a.log.Debug("loaded parameters", zap.String("file", path), zap.String("archetype", req.Archetype))
	return req, nil
}

// ParseRequest decodes a request in the format named by ext.
func (a *App) ParseRequest(ctx context.Context, ext string, data []byte) (archetype.Request, error) {
	const op = "app.ParseRequest"
	var req archetype.Request
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return req, errdefs.Invalidf(op, "json: %v", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return req, errdefs.Invalidf(op, "yaml: %v", err)
		}
	case ".zy":
		r, evalErrs, err := a.engine.Evaluate(ctx, string(data))
		if err != nil {
			return req, errdefs.Invalidf(op, "script: %v", err)
		}
		if len(evalErrs) > 0 {
			msgs := lo.Map(evalErrs, func(e engine.EvalError, _ int) string { return e.Error() })
			return req, errdefs.Invalidf(op, "script: %s", strings.Join(msgs, "; "))
		}
		if r == nil {
			return req, errdefs.Invalidf(op, "script defines no reactor")
		}
		req = *r
	default:
		return req, errdefs.Invalidf(op, "unsupported parameter file type %q, want .json, .yaml, .yml or .zy", ext)
	}
	if req.Archetype == "" {
		return req, errdefs.Invalidf(op, "missing archetype")
	}
	return req, nil
}

// ---------------------------------------------------------------------------
// Building
// ---------------------------------------------------------------------------

// Reactor builds the reactor req describes and checks its composition.
// Advisories are logged at warn level.
func (a *App) Reactor(req archetype.Request) (*reactor.Reactor, error) {
	r, err := archetype.Build(req,
		reactor.WithConfig(a.cfg.Reactor),
		reactor.WithBuilder(a.builder),
		reactor.WithLogger(a.log),
	)
	if err != nil {
		return nil, err
	}
	blocking := lo.Filter(graph.Validate(r.Graph()), func(e graph.ValidationError, _ int) bool {
		return e.Severity == graph.SeverityError
	})
	if err := (graph.ValidationResult{Errors: blocking}).Err(); err != nil {
		return nil, err
	}
	for _, w := range r.Warnings() {
		a.log.Warn("advisory", zap.String("subject", w.Subject), zap.String("message", w.Message))
	}
	a.log.Info("built reactor",
		zap.String("archetype", req.Archetype),
		zap.Strings("shapes", r.ShapeNames()),
	)
	return r, nil
}

// Validate runs every validation tier over r, logging the advisories.
func (a *App) Validate(ctx context.Context, r *reactor.Reactor) (graph.ValidationResult, error) {
	res, err := r.Validate(ctx)
	if err != nil {
		return res, err
	}
	for _, w := range res.Warnings {
		a.log.Warn("advisory", zap.String("subject", w.Subject), zap.String("message", w.Message))
	}
	return res, res.Err()
}

// ---------------------------------------------------------------------------
// Exporting
// ---------------------------------------------------------------------------

// outFile resolves the single-file output for ext: Out itself when it
// already carries the suffix, otherwise name inside Out.
func (a *App) outFile(name, ext string) string {
	if strings.EqualFold(filepath.Ext(a.cfg.Out), ext) {
		return a.cfg.Out
	}
	return filepath.Join(a.cfg.Out, name+ext)
}

// Export writes r in format and returns the written paths.
func (a *App) Export(ctx context.Context, format string, r *reactor.Reactor) ([]string, error) {
	dir := a.cfg.Out
	switch format {
	case FormatSTP:
		paths, err := r.ExportSTP(ctx, dir)
		if err != nil || !a.cfg.Combined {
			return paths, err
		}
		path := filepath.Join(dir, "reactor.stp")
		return append(paths, path), r.ExportSTPCombined(ctx, path)
	case FormatSTL:
		paths, err := r.ExportSTL(ctx, dir)
		if err != nil || !a.cfg.Combined {
			return paths, err
		}
		path := filepath.Join(dir, "reactor.stl")
		return append(paths, path), r.ExportSTLCombined(ctx, path)
	case FormatH5M:
		path := a.outFile("dagmc", ".h5m")
		return []string{path}, r.ExportH5M(ctx, path, reactor.H5MOptions{})
	case FormatSVG:
		path, err := r.ExportSVG(ctx, a.outFile("reactor", ".svg"), a.cfg.SVG)
		return []string{path}, err
	case FormatHTML:
		path, err := r.ExportHTML(ctx, a.outFile("reactor", ".html"), a.cfg.SVG)
		return []string{path}, err
	case FormatDXF:
		path := a.outFile("reactor", ".dxf")
		if _, err := r.ExportDXF(ctx, path); err != nil {
			return nil, err
		}
		return []string{path}, nil
	case FormatManifest:
		path := a.outFile("manifest", ".json")
		return []string{path}, r.ExportManifest(ctx, path)
	case FormatGroups:
		return r.ExportPhysicalGroups(ctx, dir)
	}
	return nil, errdefs.Invalidf("app.Export", "unknown export format %q", format)
}

// ---------------------------------------------------------------------------
// Scripts
// ---------------------------------------------------------------------------

// Evaluate runs a reactor script and tessellates the reactor it defines.
// Failures are reported in the result rather than returned.
func (a *App) Evaluate(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Meshes:   []reactor.MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	fail := func(msg string) EvalResult {
		result.Errors = append(result.Errors, EvalErrorData{Message: msg})
		return result
	}

	// Step 1: Evaluate the script into an archetype request.
	req, evalErrs, err := a.engine.Evaluate(ctx, source)
	if err != nil {
		a.log.Error("evaluate fatal error", zap.Error(err))
		return fail(err.Error())
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	if req == nil {
		return result
	}
	result.Archetype = req.Archetype

	// Step 2: Build the reactor.
	r, err := a.Reactor(*req)
	if err != nil {
		return fail(err.Error())
	}
	for _, w := range r.Warnings() {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.String()})
	}

	// Step 3: Tessellate every member for display.
	meshes, err := r.MeshData(ctx)
	if err != nil {
		a.log.Error("tessellate error", zap.Error(err))
		return fail(fmt.Sprintf("tessellation failed: %v", err))
	}
	result.Meshes = meshes
	return result
}
