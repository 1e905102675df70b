package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/mesh"
)

// kwPrefix marks keyword strings produced by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites a job script into plain zygomys:
//
//   - :name becomes the string "__kw_name", so builtins can take keyword
//     arguments without registering symbols.
//   - a-b between identifier characters becomes a_b; zygomys reads a bare
//     hyphen as subtraction.
//   - ; comments become // comments.
//
// String literals pass through untouched.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	for i := 0; i < len(source); {
		c := source[i]
		switch {
		case c == '"' || c == '`':
			j := skipString(source, i)
			out.WriteString(source[i:j])
			i = j

		case c == ';':
			for i < len(source) && source[i] == ';' {
				i++
			}
			out.WriteString("//")
			for i < len(source) && source[i] != '\n' {
				out.WriteByte(source[i])
				i++
			}

		case c == ':' && i+1 < len(source) && source[i+1] == '=':
			out.WriteString(":=")
			i += 2

		case c == ':' && i+1 < len(source) && isLetter(source[i+1]):
			j := i + 1
			for j < len(source) && isKWChar(source[j]) {
				j++
			}
			out.WriteString(`"` + kwPrefix + source[i+1:j] + `"`)
			i = j

		case c == '-' && i > 0 && i+1 < len(source) && isIdentChar(source[i-1]) && isLetter(source[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// skipString returns the index just past the string literal starting at i.
// Double-quoted strings honor backslash escapes; backtick strings do not.
func skipString(s string, i int) int {
	quote := s[i]
	j := i + 1
	for j < len(s) && s[j] != quote {
		if quote == '"' && s[j] == '\\' {
			j++
		}
		j++
	}
	if j < len(s) {
		j++
	}
	if j > len(s) {
		j = len(s)
	}
	return j
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// sexpSolid carries a kernel.Solid through the interpreter.
type sexpSolid struct {
	solid kernel.Solid
	desc  string
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %s)", s.desc, mesh.FormatBox(s.solid.Bounds()))
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// args splits a builtin's arguments into positional and keyword values.
type args struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(in []zygo.Sexp) args {
	a := args{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(in); i++ {
		name, ok := keyword(in[i])
		if !ok {
			a.positional = append(a.positional, in[i])
			continue
		}
		if i+1 < len(in) {
			a.kw[name] = in[i+1]
			i++
		} else {
			a.kw[name] = zygo.SexpNull
		}
	}
	return a
}

func keyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// numbers reads len(names) numbers, by position first and then by keyword.
func (a args) numbers(fn string, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		var v zygo.Sexp
		switch {
		case i < len(a.positional):
			v = a.positional[i]
		case a.kw[name] != nil:
			v = a.kw[name]
		default:
			return nil, fmt.Errorf("%s: missing %s", fn, name)
		}
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fn, name, err)
		}
		out[i] = f
	}
	return out, nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// solids reads every positional argument as a solid; at least min are
// required.
func solids(fn string, in []zygo.Sexp, min int) ([]kernel.Solid, error) {
	if len(in) < min {
		return nil, fmt.Errorf("%s requires at least %d solids, got %d", fn, min, len(in))
	}
	out := make([]kernel.Solid, len(in))
	for i, v := range in {
		s, err := toSolid(v)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		out[i] = s
	}
	return out, nil
}

// fold builds a variadic boolean builtin that applies op left to right.
func fold(fn string, op func(a, b kernel.Solid) kernel.Solid) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
	return func(_ *zygo.Zlisp, _ string, in []zygo.Sexp) (zygo.Sexp, error) {
		ss, err := solids(fn, parseArgs(in).positional, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		acc := ss[0]
		for _, s := range ss[1:] {
			acc = op(acc, s)
		}
		return &sexpSolid{solid: acc, desc: fn}, nil
	}
}

// transform builds a builtin taking a solid and three numbers.
func transform(fn string, op func(s kernel.Solid, x, y, z float64) kernel.Solid) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
	return func(_ *zygo.Zlisp, _ string, in []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(in)
		if len(a.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires a solid as first argument", fn)
		}
		s, err := toSolid(a.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		rest := args{kw: a.kw, positional: a.positional[1:]}
		v, err := rest.numbers(fn, "x", "y", "z")
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: op(s, v[0], v[1], v[2]), desc: fn}, nil
	}
}

// registerBuiltins installs the job script builtins. Solids are built with
// k and every (model ...) call is appended to job. Sources must go through
// preprocessSource first so keywords are recognized.
func registerBuiltins(env *zygo.Zlisp, k kernel.Kernel, job *Job) {
	// (box 40 20 10) or (box :x 40 :y 20 :z 10)
	env.AddFunction("box", func(_ *zygo.Zlisp, _ string, in []zygo.Sexp) (zygo.Sexp, error) {
		v, err := parseArgs(in).numbers("box", "x", "y", "z")
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := k.Box(v[0], v[1], v[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpSolid{solid: s, desc: "box"}, nil
	})

	// (cylinder 12 4) or (cylinder :height 12 :radius 4)
	env.AddFunction("cylinder", func(_ *zygo.Zlisp, _ string, in []zygo.Sexp) (zygo.Sexp, error) {
		v, err := parseArgs(in).numbers("cylinder", "height", "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		s, err := k.Cylinder(v[0], v[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return &sexpSolid{solid: s, desc: "cylinder"}, nil
	})

	env.AddFunction("union", fold("union", k.Union))
	env.AddFunction("difference", fold("difference", k.Difference))
	env.AddFunction("intersection", fold("intersection", k.Intersection))
	env.AddFunction("translate", transform("translate", k.Translate))
	env.AddFunction("rotate", transform("rotate", k.Rotate))

	// (model "bracket" solid)
	env.AddFunction("model", func(_ *zygo.Zlisp, _ string, in []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(in)
		if len(a.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("model requires a name and a solid, got %d arguments", len(a.positional))
		}
		name, err := toString(a.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("model: name: %w", err)
		}
		if strings.TrimSpace(name) == "" {
			return zygo.SexpNull, fmt.Errorf("model: name must not be empty")
		}
		if _, dup := job.Lookup(name); dup {
			return zygo.SexpNull, fmt.Errorf("model: %q already declared", name)
		}
		s, err := toSolid(a.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("model %q: %w", name, err)
		}
		job.Models = append(job.Models, Model{Name: name, Solid: s})
		return a.positional[1], nil
	})
}
