package engine

import (
	"errors"
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/voxie/pkg/document"
	"github.com/chazu/voxie/pkg/editor"
	"github.com/chazu/voxie/pkg/kernel"
	"github.com/chazu/voxie/pkg/voxel"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec3 struct {
	vec [3]float64
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpLayerRef is returned by `layer` and accepted wherever :layer is.
type sexpLayerRef struct {
	layer *document.Layer
}

func (l *sexpLayerRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(layer %q)", l.layer.Name)
}
func (l *sexpLayerRef) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel solid built by the CSG builtins.
type sexpSolid struct {
	solid kernel.Solid
	desc  string
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string { return "(" + s.desc + ")" }
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Evaluation scope
// ---------------------------------------------------------------------------

var errNoLayer = errors.New("no layer to paint; declare one with (layer \"name\")")

// scope is the state the builtins share during one evaluation.
type scope struct {
	doc    *document.Document
	kernel kernel.Kernel

	// current is the most recently declared or selected layer.
	current *document.Layer
}

// target resolves the layer a painting builtin writes to: the :layer
// keyword if present, otherwise the current layer.
func (sc *scope) target(pa kwArgs) (*document.Layer, error) {
	v, ok := pa.kw["layer"]
	if !ok {
		if sc.current == nil {
			return nil, errNoLayer
		}
		return sc.current, nil
	}
	if ref, ok := v.(*sexpLayerRef); ok {
		return ref.layer, nil
	}
	name, err := toString(v)
	if err != nil {
		return nil, fmt.Errorf("layer: %w", err)
	}
	l := sc.doc.Lookup(name)
	if l == nil {
		return nil, fmt.Errorf("%w: %q", document.ErrLayerNotFound, name)
	}
	return l, nil
}

func count(n int) zygo.Sexp { return &zygo.SexpInt{Val: int64(n)} }

// builtin is the signature zygomys expects for user functions.
type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the voxie DSL into env. The builtins populate
// sc.doc as the script runs.
//
// Source must be preprocessed with preprocessSource first so that :keyword
// tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sc *scope) {
	for name, fn := range map[string]builtin{
		"vec3":         sc.vec3,
		"layer":        sc.layer,
		"paint_cube":   sc.paintCube,
		"paint_sphere": sc.paintSphere,
		"erase_sphere": sc.eraseSphere,
		"clear_layer":  sc.clearLayer,
		"box":          sc.box,
		"sphere":       sc.sphere,
		"cylinder":     sc.cylinder,
		"translate":    sc.translate,
		"rotate":       sc.rotate,
		"union":        sc.boolean("union", sc.kernel.Union),
		"difference":   sc.boolean("difference", sc.kernel.Difference),
		"intersection": sc.boolean("intersection", sc.kernel.Intersection),
		"stamp":        sc.stamp,
		"carve":        sc.carve,
	} {
		env.AddFunction(name, fn)
	}
}

// (vec3 x y z)
func (sc *scope) vec3(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3: expected 3 arguments, got %d", len(args))
	}
	var v sexpVec3
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		v.vec[i] = f
	}
	return &v, nil
}

// (layer "name" :blend :difference :visible false)
//
// Declares a layer and makes it current. Naming an existing layer with no
// keywords selects it instead.
func (sc *scope) layer(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.expect("layer", 1); err != nil {
		return zygo.SexpNull, err
	}
	if err := pa.unknown("layer", "blend", "visible"); err != nil {
		return zygo.SexpNull, err
	}
	layerName, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("layer: name: %w", err)
	}

	if existing := sc.doc.Lookup(layerName); existing != nil && len(pa.kw) == 0 {
		sc.current = existing
		return &sexpLayerRef{layer: existing}, nil
	}

	blend := document.Union
	if v, ok := pa.kw["blend"]; ok {
		s, err := toKeywordString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("layer: blend: %w", err)
		}
		if blend, err = document.ParseBlendMode(s); err != nil {
			return zygo.SexpNull, fmt.Errorf("layer: %w", err)
		}
	}

	l, err := sc.doc.AddLayer(layerName, blend)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("layer: %w", err)
	}
	if v, ok := pa.kw["visible"]; ok {
		visible, err := toBool(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("layer: visible: %w", err)
		}
		l.Visible = visible
	}
	sc.current = l
	return &sexpLayerRef{layer: l}, nil
}

// (paint-cube (vec3 x0 y0 z0) (vec3 x1 y1 z1) :layer "name")
func (sc *scope) paintCube(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.expect("paint-cube", 2); err != nil {
		return zygo.SexpNull, err
	}
	if err := pa.unknown("paint-cube", "layer"); err != nil {
		return zygo.SexpNull, err
	}
	from, err := toCoord(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("paint-cube: min: %w", err)
	}
	to, err := toCoord(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("paint-cube: max: %w", err)
	}
	l, err := sc.target(pa)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("paint-cube: %w", err)
	}
	if err := l.Volume.PaintCube(from, to); err != nil {
		return zygo.SexpNull, fmt.Errorf("paint-cube: %w", err)
	}
	return count(l.Volume.Count()), nil
}

// (paint-sphere (vec3 x y z) radius :layer "name")
func (sc *scope) paintSphere(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	return sc.brush("paint-sphere", editor.Paintbrush, args)
}

// (erase-sphere (vec3 x y z) radius :layer "name")
func (sc *scope) eraseSphere(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	return sc.brush("erase-sphere", editor.Eraser, args)
}

// brush applies an editor tool, so scripted strokes match interactive ones.
func (sc *scope) brush(fn string, tool editor.Tool, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.expect(fn, 2); err != nil {
		return zygo.SexpNull, err
	}
	if err := pa.unknown(fn, "layer"); err != nil {
		return zygo.SexpNull, err
	}
	center, err := toCoord(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: center: %w", fn, err)
	}
	radius, err := toFloat64(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: radius: %w", fn, err)
	}
	l, err := sc.target(pa)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
	}
	if err := tool.Apply(l.Volume, center, float32(radius)); err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
	}
	return count(l.Volume.Count()), nil
}

// (clear-layer :layer "name")
func (sc *scope) clearLayer(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.expect("clear-layer", 0); err != nil {
		return zygo.SexpNull, err
	}
	l, err := sc.target(pa)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("clear-layer: %w", err)
	}
	l.Volume.Clear()
	return count(0), nil
}

// ---------------------------------------------------------------------------
// Solids
// ---------------------------------------------------------------------------

// (box sx sy sz)
func (sc *scope) box(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("box: expected 3 arguments, got %d", len(args))
	}
	var d [3]float64
	for i, a := range args {
		f, err := toPositive(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		d[i] = f
	}
	return &sexpSolid{
		solid: sc.kernel.Box(d[0], d[1], d[2]),
		desc:  fmt.Sprintf("box %g %g %g", d[0], d[1], d[2]),
	}, nil
}

// (sphere r)
func (sc *scope) sphere(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("sphere: expected 1 argument, got %d", len(args))
	}
	r, err := toPositive(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
	}
	return &sexpSolid{solid: sc.kernel.Sphere(r), desc: fmt.Sprintf("sphere %g", r)}, nil
}

// (cylinder height radius)
func (sc *scope) cylinder(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return zygo.SexpNull, fmt.Errorf("cylinder: expected 2 arguments, got %d", len(args))
	}
	h, err := toPositive(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
	}
	r, err := toPositive(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
	}
	return &sexpSolid{
		solid: sc.kernel.Cylinder(h, r, 0),
		desc:  fmt.Sprintf("cylinder %g %g", h, r),
	}, nil
}

// (translate solid (vec3 dx dy dz))
func (sc *scope) translate(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	return sc.transform("translate", sc.kernel.Translate, args)
}

// (rotate solid (vec3 rx ry rz)), angles in degrees
func (sc *scope) rotate(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	return sc.transform("rotate", sc.kernel.Rotate, args)
}

func (sc *scope) transform(fn string, op func(kernel.Solid, float64, float64, float64) kernel.Solid, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return zygo.SexpNull, fmt.Errorf("%s: expected 2 arguments, got %d", fn, len(args))
	}
	s, err := toSolid(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
	}
	v, err := toVec3(args[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
	}
	return &sexpSolid{
		solid: op(s, v[0], v[1], v[2]),
		desc:  fmt.Sprintf("%s %s %s", fn, args[0].SexpString(nil), args[1].SexpString(nil)),
	}, nil
}

// boolean builds (union a b ...), (difference a b ...) and (intersection a b ...).
// Extra operands fold left.
func (sc *scope) boolean(fn string, op func(a, b kernel.Solid) kernel.Solid) builtin {
	return func(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("%s: expected at least 2 solids, got %d", fn, len(args))
		}
		acc, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		for _, a := range args[1:] {
			s, err := toSolid(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			acc = op(acc, s)
		}
		return &sexpSolid{solid: acc, desc: fmt.Sprintf("%s of %d", fn, len(args))}, nil
	}
}

// (stamp solid :layer "name") sets every voxel inside solid.
func (sc *scope) stamp(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	return sc.voxelize("stamp", false, args)
}

// (carve solid :layer "name") clears every voxel inside solid.
func (sc *scope) carve(_ *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	return sc.voxelize("carve", true, args)
}

func (sc *scope) voxelize(fn string, erase bool, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.expect(fn, 1); err != nil {
		return zygo.SexpNull, err
	}
	if err := pa.unknown(fn, "layer"); err != nil {
		return zygo.SexpNull, err
	}
	s, err := toSolid(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
	}
	l, err := sc.target(pa)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
	}
	if !erase {
		n, err := kernel.Voxelize(s, l.Volume)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		return count(n), nil
	}
	mask := voxel.New()
	n, err := kernel.Voxelize(s, mask)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
	}
	l.Volume.Difference(mask)
	return count(n), nil
}
