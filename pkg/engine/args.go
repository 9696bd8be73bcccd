package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"

	"github.com/chazu/voxie/pkg/kernel"
	"github.com/chazu/voxie/pkg/voxel"
)

// kwArgs holds a mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// keywordName reports whether s is a preprocessed keyword and returns its
// name without the prefix.
func keywordName(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return strings.TrimPrefix(str.S, kwPrefix), true
}

// parseArgs splits args into keyword and positional arguments. A trailing
// keyword with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	pa := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := keywordName(args[i])
		if !ok {
			pa.positional = append(pa.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			pa.kw[name] = args[i+1]
			i++
		} else {
			pa.kw[name] = zygo.SexpNull
		}
	}
	return pa
}

// expect checks the positional argument count.
func (pa kwArgs) expect(fn string, n int) error {
	if len(pa.positional) != n {
		return fmt.Errorf("%s: expected %d arguments, got %d", fn, n, len(pa.positional))
	}
	return nil
}

// unknown rejects keywords outside allowed.
func (pa kwArgs) unknown(fn string, allowed ...string) error {
	keys := lo.Keys(pa.kw)
	sort.Strings(keys)
	for _, k := range keys {
		if !lo.Contains(allowed, k) {
			return fmt.Errorf("%s: unknown keyword :%s", fn, k)
		}
	}
	return nil
}

func describe(s zygo.Sexp) string {
	if s == nil {
		return "nil"
	}
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}

// toFloat64 extracts a number from an integer or float Sexp.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

// toPositive extracts a finite number greater than zero.
func toPositive(s zygo.Sexp) (float64, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if !(f > 0) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected positive number, got %v", f)
	}
	return f, nil
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", describe(s))
}

// toKeywordString accepts either a keyword (:difference) or a plain
// string ("difference").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %s", describe(s))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toBool accepts true/false as well as the keywords :true/:false.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	if name, err := toKeywordString(s); err == nil {
		switch name {
		case "true", "yes", "on":
			return true, nil
		case "false", "no", "off":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %s", describe(s))
}

func toVec3(s zygo.Sexp) ([3]float64, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return [3]float64{}, fmt.Errorf("expected vec3, got %s", describe(s))
}

// toCoord converts a vec3 with integral components to a voxel coordinate.
func toCoord(s zygo.Sexp) (voxel.Coord, error) {
	v, err := toVec3(s)
	if err != nil {
		return voxel.Coord{}, err
	}
	var c [3]int
	for i, f := range v {
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return voxel.Coord{}, fmt.Errorf("expected integer coordinates, got %s", s.SexpString(nil))
		}
		c[i] = int(f)
	}
	return voxel.Coord{X: c[0], Y: c[1], Z: c[2]}, nil
}

func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %s", describe(s))
}
