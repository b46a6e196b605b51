package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/bimgen/pkg/config"
	"github.com/chazu/bimgen/pkg/units"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms layout script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: front-door -> front_door
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only when the hyphen sits between identifier characters; a
		// minus operator is left alone.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpLength wraps a length with an explicit unit, as produced by dim.
type sexpLength struct {
	l config.Length
}

func (l *sexpLength) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(dim %g :%s)", l.l.Value, l.l.Unit)
}
func (l *sexpLength) Type() *zygo.RegisteredType { return nil }

// sexpVec wraps a plan point or a size.
type sexpVec struct {
	v []config.Length
}

func (v *sexpVec) SexpString(ps *zygo.PrintState) string {
	parts := make([]string, len(v.v))
	for i, l := range v.v {
		parts[i] = l.String()
	}
	return fmt.Sprintf("(vec%d %s)", len(v.v), strings.Join(parts, " "))
}
func (v *sexpVec) Type() *zygo.RegisteredType { return nil }

// sexpItem is returned by the declaring builtins so scripts can print
// what they declared.
type sexpItem struct {
	kind string
	name string
}

func (it *sexpItem) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", it.kind, it.name)
}
func (it *sexpItem) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_front) and plain strings ("front").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toLength accepts a bare number, read in the configuration's unit, or a
// dim expression carrying its own unit.
func toLength(s zygo.Sexp) (config.Length, error) {
	if l, ok := s.(*sexpLength); ok {
		return l.l, nil
	}
	f, err := toFloat64(s)
	if err != nil {
		return config.Length{}, fmt.Errorf("expected length: %w", err)
	}
	return config.L(f), nil
}

func toVec(s zygo.Sexp, n int) ([]config.Length, error) {
	v, ok := s.(*sexpVec)
	if !ok {
		return nil, fmt.Errorf("expected vec%d, got %T (%s)", n, s, s.SexpString(nil))
	}
	if len(v.v) != n {
		return nil, fmt.Errorf("expected vec%d, got vec%d", n, len(v.v))
	}
	return v.v, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// field binds one keyword argument to its setter.
type field struct {
	name  string
	apply func(v zygo.Sexp) error
}

// applyFields runs the setter of every keyword present in pa and rejects
// keywords the builtin does not know.
func applyFields(builtin string, pa kwArgs, fields []field) error {
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.name] = true
		if v, ok := pa.kw[f.name]; ok {
			if err := f.apply(v); err != nil {
				return fmt.Errorf("%s: %s: %w", builtin, f.name, err)
			}
		}
	}
	var unknown []string
	for name := range pa.kw {
		if !known[name] {
			unknown = append(unknown, ":"+name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%s: unknown keyword %s", builtin, strings.Join(unknown, ", "))
	}
	if len(pa.positional) > 0 {
		return fmt.Errorf("%s: unexpected positional argument %s", builtin, pa.positional[0].SexpString(nil))
	}
	return nil
}

func lengthField(name string, dst *config.Length) field {
	return field{name, func(v zygo.Sexp) (err error) {
		*dst, err = toLength(v)
		return err
	}}
}

func stringField(name string, dst *string) field {
	return field{name, func(v zygo.Sexp) (err error) {
		*dst, err = toString(v)
		return err
	}}
}

func keywordField(name string, dst *string) field {
	return field{name, func(v zygo.Sexp) (err error) {
		*dst, err = toKeywordString(v)
		return err
	}}
}

func intField(name string, dst *int) field {
	return field{name, func(v zygo.Sexp) (err error) {
		*dst, err = toInt(v)
		return err
	}}
}

// registerBuiltins installs the layout builtins into a zygomys
// environment. Each declaring builtin appends to layout.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, layout *config.Layout) {

	// -----------------------------------------------------------------------
	// (dim 36 :in)
	// -----------------------------------------------------------------------
	env.AddFunction("dim", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("dim requires a value and a unit, got %d arguments", len(args))
		}
		v, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dim: value: %w", err)
		}
		u, err := toKeywordString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dim: unit: %w", err)
		}
		unit, err := units.ParseUnit(u)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dim: %w", err)
		}
		return &sexpLength{l: config.In(v, unit)}, nil
	})

	// -----------------------------------------------------------------------
	// (vec2 4 10) and (vec3 2 2 (dim 36 :in))
	// -----------------------------------------------------------------------
	for _, n := range []int{2, 3} {
		n := n
		fn := fmt.Sprintf("vec%d", n)
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != n {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly %d arguments, got %d", fn, n, len(args))
			}
			out := &sexpVec{v: make([]config.Length, n)}
			for i, a := range args {
				l, err := toLength(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: component %d: %w", fn, i, err)
				}
				out.v[i] = l
			}
			return out, nil
		})
	}

	// -----------------------------------------------------------------------
	// (window :level 1 :wall :front :offset 4 :width 3.5 :height 6 :sill 3
	//         :name "Parlor Window" :operable true :glazing "Double Glazed")
	// (door :level 1 :wall :front :offset 18 :width 4 :height 8)
	// -----------------------------------------------------------------------
	for _, kind := range []string{"window", "door"} {
		kind := kind
		env.AddFunction(kind, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			o := config.OpeningSpec{Kind: kind}
			err := applyFields(kind, parseArgs(args), []field{
				stringField("name", &o.Name),
				intField("level", &o.Level),
				keywordField("wall", &o.Wall),
				lengthField("offset", &o.Offset),
				lengthField("width", &o.Width),
				lengthField("height", &o.Height),
				lengthField("sill", &o.Sill),
				stringField("glazing", &o.Glazing),
				{"operable", func(v zygo.Sexp) error {
					b, err := toBool(v)
					o.Operable = &b
					return err
				}},
			})
			if err != nil {
				return zygo.SexpNull, err
			}
			if o.Wall == "" {
				return zygo.SexpNull, fmt.Errorf("%s requires :wall", kind)
			}
			layout.Openings = append(layout.Openings, o)
			return &sexpItem{kind: kind, name: o.Name}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (partition :name "Cross Wall" :levels (list 1 2 3)
	//            :from (vec2 1 40) :to (vec2 39 40))
	// -----------------------------------------------------------------------
	env.AddFunction("partition", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var p config.PartitionSpec
		point := func(dst *[2]config.Length) func(zygo.Sexp) error {
			return func(v zygo.Sexp) error {
				xy, err := toVec(v, 2)
				if err != nil {
					return err
				}
				copy(dst[:], xy)
				return nil
			}
		}
		err := applyFields("partition", parseArgs(args), []field{
			stringField("name", &p.Name),
			{"levels", func(v zygo.Sexp) error {
				items, err := sexpListToSlice(v)
				if err != nil {
					return err
				}
				for _, item := range items {
					l, err := toInt(item)
					if err != nil {
						return err
					}
					p.Levels = append(p.Levels, l)
				}
				return nil
			}},
			{"from", point(&p.From)},
			{"to", point(&p.To)},
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		if p.Name == "" {
			return zygo.SexpNull, fmt.Errorf("partition requires :name")
		}
		if len(p.Levels) == 0 {
			return zygo.SexpNull, fmt.Errorf("partition %q requires :levels", p.Name)
		}
		layout.Partitions = append(layout.Partitions, p)
		return &sexpItem{kind: "partition", name: p.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (fixture :name "Kitchen Sink" :kind :sink :level 1 :at (vec2 5 10)
	//          :size (vec3 2 2 3) :elevation 0 :host :floor)
	// -----------------------------------------------------------------------
	env.AddFunction("fixture", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var f config.FixtureSpec
		err := applyFields("fixture", parseArgs(args), []field{
			stringField("name", &f.Name),
			keywordField("kind", &f.Kind),
			intField("level", &f.Level),
			{"at", func(v zygo.Sexp) error {
				xy, err := toVec(v, 2)
				if err != nil {
					return err
				}
				copy(f.At[:], xy)
				return nil
			}},
			{"size", func(v zygo.Sexp) error {
				xyz, err := toVec(v, 3)
				if err != nil {
					return err
				}
				copy(f.Size[:], xyz)
				return nil
			}},
			lengthField("elevation", &f.Elevation),
			keywordField("host", &f.Host),
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		if f.Kind == "" {
			return zygo.SexpNull, fmt.Errorf("fixture requires :kind")
		}
		layout.Fixtures = append(layout.Fixtures, f)
		return &sexpItem{kind: "fixture", name: f.Name}, nil
	})
}
