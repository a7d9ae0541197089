package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/reactorcad/pkg/archetype"
	"github.com/chazu/reactorcad/pkg/geom"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms reactor script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: single-null -> single_null
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
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
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

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
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

// toValue converts a script value into the plain Go value archetype
// parameters decode from.
func toValue(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpStr:
		return toKeywordString(v)
	case *zygo.SexpPair, *zygo.SexpArray:
		items, err := sexpListToSlice(v)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			if out[i], err = toValue(item); err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
		}
		return out, nil
	}
	if s == zygo.SexpNull {
		return nil, fmt.Errorf("missing value")
	}
	return nil, fmt.Errorf("unsupported value %T (%s)", s, s.SexpString(nil))
}

// paramName maps a script keyword to its parameter name.
func paramName(kw string) string {
	return strings.ReplaceAll(kw, "-", "_")
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// script collects what a program defines.
type script struct {
	request *archetype.Request
}

// registerBuiltins installs the reactor builtins into a zygomys environment.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *script) {

	// -----------------------------------------------------------------------
	// (reactor "ball" :rotation-angle 90 :pf-coil-radial-position (list 500 500))
	// (reactor :archetype :single-null-ball :divertor-position :upper)
	// -----------------------------------------------------------------------
	env.AddFunction("reactor", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if s.request != nil {
			return zygo.SexpNull, fmt.Errorf("reactor: a script defines one reactor, %q is already defined", s.request.Archetype)
		}
		// A leading name, string or keyword, is the archetype.
		var kind zygo.Sexp
		// A leading keyword followed by a value is a parameter instead.
		if len(args) > 0 {
			kw, ok := isKW(args[0])
			nextKW := false
			if len(args) > 1 {
				_, nextKW = isKW(args[1])
			}
			if !ok || (kw != "archetype" && (len(args) == 1 || nextKW)) {
				kind, args = args[0], args[1:]
			}
		}
		pa := parseArgs(args)
		if v, ok := pa.kw["archetype"]; ok {
			kind = v
			delete(pa.kw, "archetype")
		}
		if kind == nil {
			return zygo.SexpNull, fmt.Errorf("reactor requires an archetype name")
		}
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("reactor: unexpected argument %s", pa.positional[0].SexpString(nil))
		}
		arch, err := toKeywordString(kind)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("reactor: archetype: %w", err)
		}
		arch = paramName(arch)
		if _, err := archetype.Default(arch); err != nil {
			return zygo.SexpNull, fmt.Errorf("reactor: %w", err)
		}

		req := &archetype.Request{Archetype: arch, Params: make(map[string]any, len(pa.kw))}
		for k, v := range pa.kw {
			val, err := toValue(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("reactor: %s: %w", k, err)
			}
			req.Params[paramName(k)] = val
		}
		s.request = req
		return &zygo.SexpStr{S: arch}, nil
	})

	// -----------------------------------------------------------------------
	// (linspace 0 360 8) ; 8 angles from 0 to 360 inclusive
	// (linspace 0 360 8 :endpoint false)
	// -----------------------------------------------------------------------
	env.AddFunction("linspace", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("linspace requires start, stop and count, got %d arguments", len(pa.positional))
		}
		start, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("linspace: start: %w", err)
		}
		stop, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("linspace: stop: %w", err)
		}
		n, err := toFloat64(pa.positional[2])
		if err != nil || n < 1 || n != float64(int(n)) {
			return zygo.SexpNull, fmt.Errorf("linspace: count must be a positive integer")
		}
		endpoint := true
		if v, ok := pa.kw["endpoint"]; ok {
			b, ok := v.(*zygo.SexpBool)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("linspace: endpoint: expected boolean, got %T", v)
			}
			endpoint = b.Val
		}
		vals := geom.Linspace(start, stop, int(n), endpoint)
		items := make([]zygo.Sexp, len(vals))
		for i, f := range vals {
			items[i] = &zygo.SexpFloat{Val: f}
		}
		return env.NewSexpArray(items), nil
	})

	// -----------------------------------------------------------------------
	// (archetypes) ; the known archetype names
	// -----------------------------------------------------------------------
	env.AddFunction("archetypes", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		names := archetype.Names()
		items := make([]zygo.Sexp, len(names))
		for i, n := range names {
			items[i] = &zygo.SexpStr{S: n}
		}
		return env.NewSexpArray(items), nil
	})
}
