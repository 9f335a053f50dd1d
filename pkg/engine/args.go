package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/partscan/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpStock wraps a graph.StockData so it can be returned from `stock`
// and consumed by `defpart`.
type sexpStock struct {
	data graph.StockData
}

func (s *sexpStock) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(stock %gx%gx%g)", s.data.Size.X, s.data.Size.Y, s.data.Size.Z)
}
func (s *sexpStock) Type() *zygo.RegisteredType { return nil }

// sexpDrill wraps a graph.DrillData until defpart attaches it to a part.
type sexpDrill struct {
	data graph.DrillData
}

func (d *sexpDrill) SexpString(ps *zygo.PrintState) string {
	depth := "through"
	if !d.data.Through() {
		depth = fmt.Sprintf("%g deep", d.data.Depth)
	}
	return fmt.Sprintf("(drill %s d%g %s)", d.data.Face, d.data.Diameter, depth)
}
func (d *sexpDrill) Type() *zygo.RegisteredType { return nil }

// sexpPocket wraps a graph.PocketData until defpart attaches it to a part.
type sexpPocket struct {
	data graph.PocketData
}

func (p *sexpPocket) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pocket %s %gx%gx%g)", p.data.Face, p.data.Size.X, p.data.Size.Y, p.data.Size.Z)
}
func (p *sexpPocket) Type() *zygo.RegisteredType { return nil }

// sexpPartRef is the value of a defpart form.
type sexpPartRef struct {
	id   graph.NodeID
	name string
}

func (n *sexpPartRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(part %q)", n.name)
}
func (n *sexpPartRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

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

// parseArgs separates args into keyword and positional arguments. A keyword
// followed by another keyword takes the value of the second, so :face :top
// binds face to the string "__kw_top".
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			// Trailing keyword with no value.
			result.kw[name] = zygo.SexpNull
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

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_top) and plain strings ("top").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toFaceID converts a keyword or string to a graph.FaceID.
func toFaceID(s zygo.Sexp) (graph.FaceID, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", fmt.Errorf("expected face keyword: %w", err)
	}
	fid := graph.FaceID(name)
	if !graph.ValidFaceIDs[fid] {
		return "", fmt.Errorf("invalid face %q, expected top/bottom/left/right/front/back", name)
	}
	return fid, nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// faceAndPosition reads the :face and :at arguments shared by drill and pocket.
func faceAndPosition(op string, pa kwArgs) (graph.FaceID, graph.Vec3, error) {
	v, ok := pa.kw["face"]
	if !ok {
		return "", graph.Vec3{}, fmt.Errorf("%s: missing :face", op)
	}
	face, err := toFaceID(v)
	if err != nil {
		return "", graph.Vec3{}, fmt.Errorf("%s: face: %w", op, err)
	}
	v, ok = pa.kw["at"]
	if !ok {
		return "", graph.Vec3{}, fmt.Errorf("%s: missing :at", op)
	}
	at, err := toVec3(v)
	if err != nil {
		return "", graph.Vec3{}, fmt.Errorf("%s: at: %w", op, err)
	}
	return face, at, nil
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
