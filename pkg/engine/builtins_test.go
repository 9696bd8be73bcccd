package engine

import (
	"strings"
	"testing"

	"github.com/chazu/voxie/pkg/document"
	"github.com/chazu/voxie/pkg/voxel"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(layer "a" :blend :difference)`,
			expect: `(layer "a" "__kw_blend" "__kw_difference")`,
		},
		{
			name:   "multiple keywords",
			input:  `(stamp s :layer "a" :visible false)`,
			expect: `(stamp s "__kw_layer" "a" "__kw_visible" false)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"say \"paint-cube\" :x"`,
			expect: `"say \"paint-cube\" :x"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw paint-cube :x`",
			expect: "`raw paint-cube :x`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(paint-sphere :layer-name ref)`,
			expect: `(paint_sphere "__kw_layer-name" ref)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "subtracting a literal preserved",
			input:  `(def r x-1)`,
			expect: `(def r x-1)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "comment ends at newline",
			input:  "; note\n(erase-sphere c 2)",
			expect: "// note\n(erase_sphere c 2)",
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:brush-radius`,
			expect: `"__kw_brush-radius"`,
		},
		{
			name:   "trailing colon",
			input:  `x :`,
			expect: `x :`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Builtin tests
// ---------------------------------------------------------------------------

// mustEval evaluates source and fails the test on any error.
func mustEval(t *testing.T, source string) *document.Document {
	t.Helper()
	doc, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
	return doc
}

// evalFails evaluates source and returns the joined eval error messages.
func evalFails(t *testing.T, source string) string {
	t.Helper()
	doc, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected eval error, got fatal: %v", err)
	}
	if doc != nil {
		t.Fatal("expected nil document on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	msgs := make([]string, len(evalErrs))
	for i, e := range evalErrs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "\n")
}

func TestLayerDeclaration(t *testing.T) {
	doc := mustEval(t, `
(layer "base")
(layer "holes" :blend :difference)
(layer "guide" :visible false)
`)
	if doc.LayerCount() != 3 {
		t.Fatalf("expected 3 layers, got %d", doc.LayerCount())
	}
	if l := doc.Lookup("base"); l == nil || l.Blend != document.Union || !l.Visible {
		t.Errorf("base layer = %+v", l)
	}
	if l := doc.Lookup("holes"); l == nil || l.Blend != document.Difference {
		t.Errorf("holes layer = %+v", l)
	}
	if l := doc.Lookup("guide"); l == nil || l.Visible {
		t.Errorf("guide layer = %+v", l)
	}
}

func TestPaintCube(t *testing.T) {
	doc := mustEval(t, `
(layer "base")
(paint-cube (vec3 0 0 0) (vec3 4 3 3))
`)
	want := voxel.New()
	if err := want.PaintCube(voxel.Coord{}, voxel.Coord{X: 4, Y: 3, Z: 3}); err != nil {
		t.Fatal(err)
	}
	got := doc.MustLookup("base").Volume
	if !got.Equal(want) {
		t.Errorf("painted %d voxels, want %d", got.Count(), want.Count())
	}
	if got.Count() != 64 {
		t.Errorf("expected 64 voxels, got %d", got.Count())
	}
}

func TestPaintAndEraseSphere(t *testing.T) {
	doc := mustEval(t, `
(def c (vec3 20 20 20))
(layer "clay")
(paint-sphere c 4)
(erase-sphere c 1)
`)
	want := voxel.New()
	if err := want.PaintSphere(voxel.Coord{X: 20, Y: 20, Z: 20}, 4); err != nil {
		t.Fatal(err)
	}
	got := doc.MustLookup("clay").Volume
	if got.Count() != want.Count()-7 {
		t.Errorf("expected %d voxels after erase, got %d", want.Count()-7, got.Count())
	}
	if got.Occupied(voxel.Coord{X: 20, Y: 20, Z: 20}) {
		t.Error("center should be erased")
	}
}

func TestPaintSphereLargeRadius(t *testing.T) {
	doc := mustEval(t, `(layer "clay") (paint-sphere (vec3 32 32 32) 2000)`)
	if got := doc.MustLookup("clay").Volume.Count(); got != voxel.Size*voxel.Size*voxel.Size {
		t.Errorf("expected a full volume, got %d voxels", got)
	}
}

func TestLayerKeywordTargets(t *testing.T) {
	doc := mustEval(t, `
(def base (layer "base"))
(layer "top")
(paint-sphere (vec3 10 10 10) 1 :layer "base")
(paint-sphere (vec3 40 40 40) 1 :layer base)
(paint-sphere (vec3 30 30 30) 0)
`)
	base := doc.MustLookup("base").Volume
	top := doc.MustLookup("top").Volume
	if base.Count() != 14 {
		t.Errorf("base: expected two 7-voxel spheres, got %d", base.Count())
	}
	if top.Count() != 1 || !top.Occupied(voxel.Coord{X: 30, Y: 30, Z: 30}) {
		t.Errorf("top: expected the single current-layer voxel, got %d", top.Count())
	}
}

func TestLayerReselect(t *testing.T) {
	doc := mustEval(t, `
(layer "a")
(layer "b")
(layer "a")
(paint-cube (vec3 1 1 1) (vec3 2 1 1))
`)
	if doc.LayerCount() != 2 {
		t.Fatalf("expected 2 layers, got %d", doc.LayerCount())
	}
	if doc.MustLookup("a").Volume.Count() != 1 {
		t.Error("reselected layer should receive the paint")
	}
	if !doc.MustLookup("b").Volume.IsEmpty() {
		t.Error("layer b should be empty")
	}
}

func TestClearLayer(t *testing.T) {
	doc := mustEval(t, `
(layer "a")
(paint-sphere (vec3 5 5 5) 2)
(clear-layer)
`)
	if !doc.MustLookup("a").Volume.IsEmpty() {
		t.Error("expected cleared layer")
	}
}

func TestStampBox(t *testing.T) {
	doc := mustEval(t, `
(layer "solid")
(stamp (translate (box 4 4 4) (vec3 10.5 10.5 10.5)))
`)
	want := voxel.New()
	if err := want.PaintCube(voxel.Coord{X: 11, Y: 11, Z: 11}, voxel.Coord{X: 15, Y: 14, Z: 14}); err != nil {
		t.Fatal(err)
	}
	got := doc.MustLookup("solid").Volume
	if !got.Equal(want) {
		t.Errorf("stamped %d voxels, want the 64-voxel block", got.Count())
	}
}

func TestStampCSG(t *testing.T) {
	doc := mustEval(t, `
(def a (translate (box 4 4 4) (vec3 0.5 0.5 0.5)))
(def b (translate (box 4 4 4) (vec3 2.5 0.5 0.5)))
(def c (translate (box 4 4 4) (vec3 4.5 0.5 0.5)))
(layer "u")
(stamp (union a b c))
(layer "d")
(stamp (difference a b))
(layer "i")
(stamp (intersection a b))
`)
	tests := []struct {
		layer string
		want  int
	}{
		{"u", 8 * 16},
		{"d", 2 * 16},
		{"i", 2 * 16},
	}
	for _, tt := range tests {
		t.Run(tt.layer, func(t *testing.T) {
			if got := doc.MustLookup(tt.layer).Volume.Count(); got != tt.want {
				t.Errorf("layer %s: got %d voxels, want %d", tt.layer, got, tt.want)
			}
		})
	}
}

func TestCarve(t *testing.T) {
	doc := mustEval(t, `
(layer "block")
(paint-cube (vec3 0 0 0) (vec3 8 7 7))
(carve (translate (sphere 2.5) (vec3 4 4 4)))
`)
	v := doc.MustLookup("block").Volume
	if v.Occupied(voxel.Coord{X: 4, Y: 4, Z: 4}) {
		t.Error("center should be carved out")
	}
	if !v.Occupied(voxel.Coord{}) {
		t.Error("corner should remain")
	}
	if v.Count() >= 8*8*8 {
		t.Errorf("expected voxels removed, got %d", v.Count())
	}
}

func TestUserFunctions(t *testing.T) {
	doc := mustEval(t, `
(defn blob [x] (paint-sphere (vec3 x 32 32) 1))
(layer "row")
(blob 10)
(blob 20)
(blob 30)
`)
	if got := doc.MustLookup("row").Volume.Count(); got != 21 {
		t.Errorf("expected 3 spheres of 7 voxels, got %d", got)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"paint without layer", `(paint-sphere (vec3 1 1 1) 1)`, "no layer to paint"},
		{"unknown layer", `(layer "a") (paint-sphere (vec3 1 1 1) 1 :layer "zzz")`, "not found"},
		{"duplicate layer", `(layer "a") (layer "a" :blend :union)`, "duplicate layer name"},
		{"bad blend", `(layer "a" :blend :xor)`, "invalid blend mode"},
		{"bad visible", `(layer "a" :visible 3)`, "expected boolean"},
		{"unknown keyword", `(layer "a" :color 3)`, "unknown keyword :color"},
		{"fractional coordinate", `(layer "a") (paint-cube (vec3 0.5 0 0) (vec3 1 1 1))`, "integer coordinates"},
		{"cube out of range", `(layer "a") (paint-cube (vec3 0 0 0) (vec3 1 1 64))`, "out of range"},
		{"inverted cube", `(layer "a") (paint-cube (vec3 5 5 5) (vec3 1 1 1))`, "invalid range"},
		{"sphere center outside", `(layer "a") (paint-sphere (vec3 64 0 0) 2)`, "out of range"},
		{"negative radius", `(layer "a") (erase-sphere (vec3 1 1 1) -1)`, "radius"},
		{"vec3 arity", `(vec3 1 2)`, "expected 3 arguments"},
		{"box arity", `(box 1 2)`, "expected 3 arguments"},
		{"zero sphere", `(sphere 0)`, "positive"},
		{"union arity", `(union (sphere 1))`, "at least 2"},
		{"stamp non-solid", `(layer "a") (stamp 3)`, "expected solid"},
		{"translate non-vec", `(translate (sphere 1) 3)`, "expected vec3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := evalFails(t, tt.source)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("error %q should contain %q", msg, tt.want)
			}
		})
	}
}

func TestArithmeticInArguments(t *testing.T) {
	doc := mustEval(t, `
(def n 3)
(layer "a")
(paint-cube (vec3 0 0 0) (vec3 (* n 2) (- n 1) (+ n 0)))
`)
	// x in [0,6), y in [0,2], z in [0,3]
	if got := doc.MustLookup("a").Volume.Count(); got != 6*3*4 {
		t.Errorf("expected %d voxels, got %d", 6*3*4, got)
	}
}
