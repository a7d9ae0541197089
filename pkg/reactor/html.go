package reactor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/chazu/reactorcad/pkg/errdefs"
)

// Palette assigns distinct colours to members without their own colour.
var Palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// MeshData is the JSON mesh format fed to the web viewer.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// MeshData tessellates every member for the viewer, in insertion order.
func (r *Reactor) MeshData(ctx context.Context) ([]MeshData, error) {
	if _, err := r.stage(ctx, r.shapes); err != nil {
		return nil, err
	}
	out := make([]MeshData, 0, len(r.shapes))
	for i, s := range r.shapes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := r.mesh(s)
		if err != nil {
			return nil, err
		}
		color := Palette[i%len(Palette)]
		if c, ok := s.Color(); ok {
			color = fmt.Sprintf("#%02X%02X%02X", channel(c[0]), channel(c[1]), channel(c[2]))
		}
		out = append(out, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: s.Name(),
			Color:    color,
		})
	}
	return out, nil
}

// channel converts a colour component in [0, 1] to a byte.
func channel(v float64) int {
	return int(min(max(v, 0), 1)*255 + 0.5)
}

var htmlPage = template.Must(template.New("reactor").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: sans-serif; }
#view { width: 100%; height: 70vh; }
#parts { padding: 0.5em 1em; }
#parts span { display: inline-block; margin-right: 1em; }
#projection { padding: 1em; }
</style>
<script type="importmap">
{ "imports": { "three": "https://unpkg.com/three@0.160.0/build/three.module.js",
               "three/addons/": "https://unpkg.com/three@0.160.0/examples/jsm/" } }
</script>
</head>
<body>
<div id="view"></div>
<div id="parts">{{range .Meshes}}<span style="color:{{.Color}}">&#9632; {{.PartName}}</span>{{end}}</div>
<div id="projection">{{.SVG}}</div>
<script type="module">
import * as THREE from "three";
import { OrbitControls } from "three/addons/controls/OrbitControls.js";
const meshes = {{.MeshJSON}};
const el = document.getElementById("view");
const renderer = new THREE.WebGLRenderer({ antialias: true });
renderer.setSize(el.clientWidth, el.clientHeight);
el.appendChild(renderer.domElement);
const scene = new THREE.Scene();
scene.background = new THREE.Color(0xf4f4f4);
scene.add(new THREE.AmbientLight(0xffffff, 0.5));
const sun = new THREE.DirectionalLight(0xffffff, 0.8);
sun.position.set(1, 1, 2);
scene.add(sun);
const box = new THREE.Box3();
for (const m of meshes) {
  const g = new THREE.BufferGeometry();
  g.setAttribute("position", new THREE.Float32BufferAttribute(m.vertices, 3));
  g.setAttribute("normal", new THREE.Float32BufferAttribute(m.normals, 3));
  g.setIndex(m.indices);
  const mesh = new THREE.Mesh(g, new THREE.MeshStandardMaterial({ color: m.color, side: THREE.DoubleSide }));
  mesh.name = m.partName;
  scene.add(mesh);
  box.expandByObject(mesh);
}
const size = box.getSize(new THREE.Vector3()).length() || 1;
const center = box.getCenter(new THREE.Vector3());
const camera = new THREE.PerspectiveCamera(45, el.clientWidth / el.clientHeight, size / 1000, size * 10);
camera.up.set(0, 0, 1);
camera.position.copy(center).add(new THREE.Vector3(-1.75, 1.1, 5).normalize().multiplyScalar(size));
const controls = new OrbitControls(camera, renderer.domElement);
controls.target.copy(center);
controls.update();
renderer.setAnimationLoop(() => renderer.render(scene, camera));
</script>
</body>
</html>
`))

type htmlData struct {
	Title    string
	Meshes   []MeshData
	MeshJSON template.JS
	SVG      template.HTML
}

// RenderHTML writes a standalone page with a 3D viewer of every member and
// the SVG projection below it.
func (r *Reactor) RenderHTML(ctx context.Context, w io.Writer, title string, o SVGOptions) error {
	meshes, err := r.MeshData(ctx)
	if err != nil {
		return err
	}
	var drawing bytes.Buffer
	if err := r.RenderSVG(ctx, &drawing, o); err != nil {
		return err
	}
	data, err := json.Marshal(meshes)
	if err != nil {
		return fmt.Errorf("reactor: encode meshes: %w", err)
	}
	// Drop the XML prolog so the drawing can be inlined.
	inline := drawing.String()
	if i := strings.Index(inline, "<svg"); i > 0 {
		inline = inline[i:]
	}
	return htmlPage.Execute(w, htmlData{
		Title:    title,
		Meshes:   meshes,
		MeshJSON: template.JS(data),
		SVG:      template.HTML(inline),
	})
}

// ExportHTML writes the viewer page to path, appending .html when the
// suffix is missing. It returns the written path.
func (r *Reactor) ExportHTML(ctx context.Context, path string, o SVGOptions) (string, error) {
	const op = "reactor.ExportHTML"
	if !strings.EqualFold(filepath.Ext(path), ".html") {
		path += ".html"
	}
	var page bytes.Buffer
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := r.RenderHTML(ctx, &page, title, o); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errdefs.IO(op, path, err)
	}
	if err := os.WriteFile(path, page.Bytes(), 0o644); err != nil {
		return "", errdefs.IO(op, path, err)
	}
	r.log.Info("exported html", zap.String("file", path), zap.Int("shapes", len(r.shapes)))
	return path, nil
}
