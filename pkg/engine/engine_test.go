package engine

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chazu/voxie/pkg/document"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	doc, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
	if doc.LayerCount() != 0 {
		t.Errorf("expected empty document, got %d layers", doc.LayerCount())
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := NewEngine()

	doc, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if doc == nil || doc.LayerCount() != 0 {
		t.Fatalf("expected empty document, got %+v", doc)
	}
}

func TestEvaluatePlainArithmetic(t *testing.T) {
	eng := NewEngine()

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
	if doc.LayerCount() != 0 {
		t.Errorf("arithmetic should not create layers, got %d", doc.LayerCount())
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	doc, evalErrs, err := eng.Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if doc != nil {
		t.Fatal("expected nil document on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	doc, evalErrs, err := eng.Evaluate("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if doc != nil {
		t.Fatal("expected nil document on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", e2.Error())
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()
	source := `
(layer "clay")
(paint-sphere (vec3 32 32 32) 6)
(erase-sphere (vec3 36 32 32) 3)
`
	var first *document.Document
	for i := 0; i < 3; i++ {
		doc, evalErrs, err := eng.Evaluate(source)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("iteration %d: err=%v evalErrs=%v", i, err, evalErrs)
		}
		if first == nil {
			first = doc
			continue
		}
		if !doc.Composite().Equal(first.Composite()) {
			t.Errorf("iteration %d: composite differs from first evaluation", i)
		}
	}
}

func TestEvaluateFreshDocumentPerCall(t *testing.T) {
	eng := NewEngine()

	a, _, err := eng.Evaluate(`(layer "a")`)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := eng.Evaluate(`(layer "b")`)
	if err != nil {
		t.Fatal(err)
	}
	if a.Lookup("b") != nil || b.Lookup("a") != nil {
		t.Error("evaluations should not share a document")
	}
}

func TestWaitWithTimeout(t *testing.T) {
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult) // never sends

	start := time.Now()
	_, _, err := waitWithTimeout(ch, 1, &mu, &gen, 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out after 50ms") {
		t.Errorf("expected timeout error message, got: %v", err)
	}
	if elapsed := time.Since(start); elapsed > EvalTimeout {
		t.Errorf("timeout took %s, longer than the default", elapsed)
	}
}

func TestEngineTimeoutDefault(t *testing.T) {
	eng := NewEngine()
	if eng.timeout() != EvalTimeout {
		t.Errorf("timeout() = %s, want %s", eng.timeout(), EvalTimeout)
	}
	eng.Timeout = time.Second
	if eng.timeout() != time.Second {
		t.Errorf("timeout() = %s, want 1s", eng.timeout())
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)

	ch := make(chan evalResult, 1)
	ch <- evalResult{doc: document.New()}

	_, _, err := waitWithTimeout(ch, 1, &mu, &gen, time.Second)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestWaitPassesFatalError(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(1)

	ch := make(chan evalResult, 1)
	boom := errors.New("boom")
	ch <- evalResult{err: boom}

	doc, _, err := waitWithTimeout(ch, 1, &mu, &gen, time.Second)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if doc != nil {
		t.Error("expected nil document with fatal error")
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "short line format",
			msg:      "line 3: paint-cube: expected 2 arguments, got 1",
			wantLine: 3,
			wantMsg:  "expected 2 arguments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	doc := document.New()
	if _, err := doc.AddLayer("hole", document.Difference); err != nil {
		t.Fatal(err)
	}
	warnings := Warnings(doc)
	if len(warnings) == 0 {
		t.Fatal("expected a warning for a leading difference layer")
	}
	if warnings[0].Layer != "hole" {
		t.Errorf("warning layer = %q, want hole", warnings[0].Layer)
	}
	if len(Warnings(document.New())) != 0 {
		t.Error("empty document should have no warnings")
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
