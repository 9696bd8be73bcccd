package main

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/voxie/pkg/config"
	"github.com/chazu/voxie/pkg/document"
	"github.com/chazu/voxie/pkg/editor"
	"github.com/chazu/voxie/pkg/engine"
	"github.com/chazu/voxie/pkg/tessellate"
	"github.com/chazu/voxie/pkg/upload"
	"github.com/chazu/voxie/pkg/voxel"
)

// documentChangedEvent is emitted to the frontend after every edit.
const documentChangedEvent = "document:changed"

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	cfg    config.Config
	engine *engine.Engine

	mu    sync.Mutex
	doc   *document.Document
	state *editor.State
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// StatsData summarizes the rendered frame.
type StatsData struct {
	Voxels      int `json:"voxels"`
	Vertices    int `json:"vertices"`
	Triangles   int `json:"triangles"`
	VertexBytes int `json:"vertexBytes"`
	IndexBytes  int `json:"indexBytes"`
}

// LayerData describes one layer for the layer panel.
type LayerData struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Blend   string `json:"blend"`
	Visible bool   `json:"visible"`
	Voxels  int    `json:"voxels"`
	Active  bool   `json:"active"`
}

// ToolData describes one toolbar button.
type ToolData struct {
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Tooltip  string `json:"tooltip"`
	Shortcut string `json:"shortcut"`
	Selected bool   `json:"selected"`
}

// EvalResult is the full result returned to the frontend. Mesh is nil when
// there is nothing to draw this frame.
type EvalResult struct {
	Mesh     *MeshData       `json:"mesh"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Stats    StatsData       `json:"stats"`
	Layers   []LayerData     `json:"layers"`
}

// NewApp creates an App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Default())
}

// NewAppWithConfig creates an App using cfg for evaluation and rendering.
func NewAppWithConfig(cfg config.Config) *App {
	eng := engine.NewEngine()
	eng.Timeout = cfg.Editor.EvalTimeout.Duration
	return &App{
		cfg:    cfg,
		engine: eng,
		state:  editor.NewState(cfg.Editor.BrushRadius),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

func newResult() EvalResult {
	return EvalResult{
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
		Layers:   []LayerData{},
	}
}

func errorResult(msg string) EvalResult {
	r := newResult()
	r.Errors = append(r.Errors, EvalErrorData{Message: msg})
	return r
}

// Evaluate runs a script, replaces the current document with the one it
// builds and returns the rendered mesh.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	doc, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, superseded)
		log.Printf("Evaluate fatal error: %v", err)
		return errorResult(err.Error())
	}
	if len(evalErrs) > 0 {
		result := newResult()
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.doc = doc
	a.state.ActiveLayer = a.pickActiveLayer(doc)
	return a.render()
}

// pickActiveLayer keeps the active layer across evaluations when a layer of
// the same name still exists, and otherwise selects the topmost layer.
func (a *App) pickActiveLayer(doc *document.Document) uuid.UUID {
	if a.doc != nil {
		if prev := a.doc.Get(a.state.ActiveLayer); prev != nil {
			if l := doc.Lookup(prev.Name); l != nil {
				return l.ID
			}
		}
	}
	if n := len(doc.Layers); n > 0 && doc.Layers[n-1] != nil {
		return doc.Layers[n-1].ID
	}
	return uuid.Nil
}

// Paint applies the selected tool at (x, y, z) on the active layer.
func (a *App) Paint(x, y, z int) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.doc == nil {
		return errorResult(editor.ErrNoActiveLayer.Error())
	}
	if err := a.state.Paint(a.doc, voxel.Coord{X: x, Y: y, Z: z}); err != nil {
		// Out of range strokes are dropped; the frame stays as it was.
		if !errors.Is(err, voxel.ErrCoordinateOutOfRange) {
			log.Printf("Paint error: %v", err)
		}
		r := a.render()
		r.Errors = append(r.Errors, EvalErrorData{Message: err.Error()})
		return r
	}
	return a.render()
}

// SelectTool switches tools by keyboard shortcut and returns the toolbar.
func (a *App) SelectTool(key string) []ToolData {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.SelectByShortcut(key)
	return a.tools()
}

// Tools returns the toolbar.
func (a *App) Tools() []ToolData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tools()
}

func (a *App) tools() []ToolData {
	return lo.Map(editor.Tools, func(t editor.Tool, _ int) ToolData {
		return ToolData{
			Name:     t.String(),
			Icon:     t.Icon(),
			Tooltip:  t.Tooltip(),
			Shortcut: t.Shortcut().Key,
			Selected: t == a.state.Tool,
		}
	})
}

// SetBrushRadius changes the radius used by Paint.
func (a *App) SetBrushRadius(radius float32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.SetBrushRadius(radius)
}

// Layers returns the layer panel contents in stack order.
func (a *App) Layers() []LayerData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.layers()
}

func (a *App) layers() []LayerData {
	if a.doc == nil {
		return []LayerData{}
	}
	return lo.FilterMap(a.doc.Layers, func(l *document.Layer, _ int) (LayerData, bool) {
		if l == nil {
			return LayerData{}, false
		}
		voxels := 0
		if l.Volume != nil {
			voxels = l.Volume.Count()
		}
		return LayerData{
			ID:      l.ID.String(),
			Name:    l.Name,
			Blend:   l.Blend.String(),
			Visible: l.Visible,
			Voxels:  voxels,
			Active:  l.ID == a.state.ActiveLayer,
		}, true
	})
}

// SetActiveLayer makes the layer with the given ID the paint target.
func (a *App) SetActiveLayer(id string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, err := a.layerByID(id)
	if err != nil {
		return errorResult(err.Error())
	}
	a.state.ActiveLayer = l.ID
	return a.render()
}

// SetLayerVisible shows or hides a layer and re-renders.
func (a *App) SetLayerVisible(id string, visible bool) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	l, err := a.layerByID(id)
	if err != nil {
		return errorResult(err.Error())
	}
	if err := a.doc.SetVisible(l.ID, visible); err != nil {
		return errorResult(err.Error())
	}
	return a.render()
}

func (a *App) layerByID(id string) (*document.Layer, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	if a.doc == nil {
		return nil, document.ErrLayerNotFound
	}
	l := a.doc.Get(uid)
	if l == nil {
		return nil, document.ErrLayerNotFound
	}
	return l, nil
}

// render tessellates the current document. The caller holds a.mu.
func (a *App) render() EvalResult {
	result := newResult()
	result.Layers = a.layers()
	for _, w := range engine.Warnings(a.doc) {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}

	res, err := tessellate.Tessellate(a.doc)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}

	m := res.Mesh
	result.Stats = StatsData{
		Voxels:      res.Voxels,
		Vertices:    m.VertexCount(),
		Triangles:   m.TriangleCount(),
		VertexBytes: m.VertexBytes(),
		IndexBytes:  m.IndexBytes(),
	}

	// An oversized mesh is not drawn; the renderer skips the frame.
	if err := upload.Check(m, a.cfg.Render.UploadCapacity); err != nil {
		log.Printf("Skipping frame: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if !m.IsEmpty() {
		positions, normals := m.Flatten(a.cfg.Render.NormalizeNormals)
		result.Mesh = &MeshData{Vertices: positions, Normals: normals, Indices: m.Indices}
	}

	if a.ctx != nil {
		runtime.EventsEmit(a.ctx, documentChangedEvent, result.Stats)
	}
	return result
}
