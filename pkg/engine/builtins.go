package engine

import (
	"fmt"

	"github.com/chazu/partscan/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms part script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: blind-depth -> blind_depth
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
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the part DSL into a zygomys environment.
// Arguments are evaluated before a builtin runs, so stock, drill and pocket
// only return values; defpart is the one builtin that writes to g.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: graph.Vec3{X: v[0], Y: v[1], Z: v[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (stock :length 100 :width 60 :height 20 :material "6061")
	// -----------------------------------------------------------------------
	env.AddFunction("stock", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var sd graph.StockData

		dims := []struct {
			kw  string
			dst *float64
		}{
			{"length", &sd.Size.X},
			{"width", &sd.Size.Y},
			{"height", &sd.Size.Z},
		}
		for _, d := range dims {
			v, ok := pa.kw[d.kw]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("stock: missing :%s", d.kw)
			}
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stock: %s: %w", d.kw, err)
			}
			*d.dst = f
		}
		if v, ok := pa.kw["material"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("stock: material: %w", err)
			}
			sd.Material = s
		}
		return &sexpStock{data: sd}, nil
	})

	// -----------------------------------------------------------------------
	// (drill :face :top :at (vec3 25 20 0) :diameter 6 :through true)
	// (drill :face :top :at (vec3 25 20 0) :diameter 6 :depth 12 :flat true)
	// -----------------------------------------------------------------------
	env.AddFunction("drill", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var dd graph.DrillData

		face, at, err := faceAndPosition("drill", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		dd.Face, dd.Position = face, at

		v, ok := pa.kw["diameter"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("drill: missing :diameter")
		}
		if dd.Diameter, err = toFloat64(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("drill: diameter: %w", err)
		}

		through := false
		if v, ok := pa.kw["through"]; ok {
			if through, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("drill: through: %w", err)
			}
		}
		v, hasDepth := pa.kw["depth"]
		switch {
		case through && hasDepth:
			return zygo.SexpNull, fmt.Errorf("drill: :depth and :through are mutually exclusive")
		case through:
			// Depth 0 marks a through hole.
		case hasDepth:
			if dd.Depth, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("drill: depth: %w", err)
			}
			if !(dd.Depth > 0) {
				return zygo.SexpNull, fmt.Errorf("drill: depth is %g, must be positive (use :through true)", dd.Depth)
			}
		default:
			return zygo.SexpNull, fmt.Errorf("drill: requires :depth or :through true")
		}

		if v, ok := pa.kw["flat"]; ok {
			if dd.Flat, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("drill: flat: %w", err)
			}
		}
		return &sexpDrill{data: dd}, nil
	})

	// -----------------------------------------------------------------------
	// (pocket :face :top :at (vec3 40 30 0) :size (vec3 20 15 8))
	// -----------------------------------------------------------------------
	env.AddFunction("pocket", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var pd graph.PocketData

		face, at, err := faceAndPosition("pocket", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		pd.Face, pd.Position = face, at

		v, ok := pa.kw["size"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("pocket: missing :size")
		}
		if pd.Size, err = toVec3(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("pocket: size: %w", err)
		}
		return &sexpPocket{data: pd}, nil
	})

	// -----------------------------------------------------------------------
	// (defpart "name" (stock ...) (drill ...) (pocket ...) ...)
	//
	// Feature arguments may also be lists of features, so scripts can
	// generate patterns with map.
	// -----------------------------------------------------------------------
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a stock expression")
		}

		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}

		stock, ok := args[1].(*sexpStock)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defpart: expected stock expression, got %T (%s)",
				args[1], args[1].SexpString(nil))
		}

		var items []zygo.Sexp
		for _, a := range args[2:] {
			switch a.(type) {
			case *zygo.SexpPair, *zygo.SexpArray:
				list, err := sexpListToSlice(a)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("defpart %q: %w", partName, err)
				}
				items = append(items, list...)
			default:
				items = append(items, a)
			}
		}

		feats := make([]graph.NodeData, 0, len(items))
		for i, it := range items {
			switch v := it.(type) {
			case *sexpDrill:
				feats = append(feats, v.data)
			case *sexpPocket:
				feats = append(feats, v.data)
			default:
				return zygo.SexpNull, fmt.Errorf("defpart %q: feature %d: expected drill or pocket, got %T (%s)",
					partName, i, it, it.SexpString(nil))
			}
		}

		part, err := g.AddPart(partName, stock.data, feats)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: %w", err)
		}
		return &sexpPartRef{id: part.ID, name: partName}, nil
	})
}
