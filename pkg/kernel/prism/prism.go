// Package prism implements the kernel.Kernel interface with an analytic,
// axis-aligned boundary representation. A solid is a rectangular stock
// with an ordered list of subtracted tools (boxes, flat-ended cylinders and
// pointed drills). Faces and volume are derived exactly from the tools, so
// the kernel doubles as a ground-truth fixture builder for the detectors.
package prism

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/partscan/pkg/kernel"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*PrismKernel)(nil)
var _ kernel.Solid = (*Solid)(nil)
var _ kernel.Face = Face{}

// ErrUnsupported is returned for boolean operations outside the
// stock-minus-tool model.
var ErrUnsupported = errors.New("prism: unsupported operation")

// eps is the coincidence tolerance for face planes, in mm.
const eps = 1e-9

// PointAngle is the included angle of a drill point, in degrees.
const PointAngle = 118.0

// Face is a planar, cylindrical or other face with precomputed bounds.
type Face struct {
	Kind kernel.GeomType
	Box  kernel.BBox
}

// GeometryType returns the surface tag.
func (f Face) GeometryType() kernel.GeomType { return f.Kind }

// BoundingBox returns the face bounds. It never fails.
func (f Face) BoundingBox() (kernel.BBox, error) { return f.Box, nil }

// ToolKind distinguishes subtracted primitives.
type ToolKind int

const (
	ToolBox      ToolKind = iota // rectangular cutter (pocket, slot)
	ToolCylinder                 // flat-ended bore
	ToolDrill                    // bore with a conical point
)

func (k ToolKind) String() string {
	switch k {
	case ToolBox:
		return "box"
	case ToolCylinder:
		return "cylinder"
	case ToolDrill:
		return "drill"
	default:
		return "unknown"
	}
}

// Tool is a primitive that is either standalone or subtracted from stock.
type Tool struct {
	Kind   ToolKind
	Box    kernel.BBox      // ToolBox bounds
	Origin [3]float64       // base centre for ToolCylinder / ToolDrill
	Dir    kernel.Direction // direction of advance
	Radius float64
	Length float64 // axial length of the cylindrical section
}

// pointLength returns the axial length of the drill point.
func (t Tool) pointLength() float64 {
	if t.Kind != ToolDrill {
		return 0
	}
	half := PointAngle / 2 * math.Pi / 180
	return t.Radius / math.Tan(half)
}

// valid reports whether the tool has positive dimensions.
func (t Tool) valid() bool {
	switch t.Kind {
	case ToolBox:
		for _, s := range t.Box.Spans() {
			if !(s > 0) {
				return false
			}
		}
		return true
	default:
		return t.Radius > 0 && t.Length > 0
	}
}

// axial maps a parameter t along the tool axis to a coordinate.
func (t Tool) axial(param float64) float64 {
	return t.Origin[t.Dir.Axis()] + t.Dir.Sign()*param
}

// footprint returns the bounds of the bore circle on the transverse axes.
func (t Tool) footprint() (lo, hi [3]float64) {
	b, c := t.Dir.Axis().Transverse()
	for _, ax := range []kernel.Axis{b, c} {
		lo[ax] = t.Origin[ax] - t.Radius
		hi[ax] = t.Origin[ax] + t.Radius
	}
	return lo, hi
}

// Envelope returns the bounding box of the tool, including any drill point.
func (t Tool) Envelope() kernel.BBox {
	if t.Kind == ToolBox {
		return t.Box
	}
	a := t.Dir.Axis()
	lo, hi := t.footprint()
	e0, e1 := t.axial(0), t.axial(t.Length+t.pointLength())
	lo[a], hi[a] = math.Min(e0, e1), math.Max(e0, e1)
	return kernel.BBox{Min: lo, Max: hi}
}

// Translate returns the tool shifted by d.
func (t Tool) Translate(d [3]float64) Tool {
	t.Box = t.Box.Translate(d[0], d[1], d[2])
	for i := range d {
		t.Origin[i] += d[i]
	}
	return t
}

// Solid is a box stock minus a list of tools, or a standalone tool.
// Solids are immutable; every operation returns a new value.
type Solid struct {
	stock kernel.BBox
	tools []Tool
	prim  *Tool // set for standalone cylinder and drill primitives
}

// Stock returns the stock envelope. For standalone tools it is the tool envelope.
func (s *Solid) Stock() kernel.BBox {
	if s.prim != nil {
		return s.prim.Envelope()
	}
	return s.stock
}

// Tools returns a copy of the subtracted tools in order.
func (s *Solid) Tools() []Tool {
	return append([]Tool(nil), s.tools...)
}

// BoundingBox returns the axis-aligned bounding box. Tools only remove
// material, so a stock-based solid reports its stock envelope.
func (s *Solid) BoundingBox() kernel.BBox {
	return s.Stock()
}

// Volume returns the enclosed volume. Tools are assumed not to overlap
// one another inside the stock.
func (s *Solid) Volume() float64 {
	if s.prim != nil {
		return s.prim.volumeWithin(s.prim.Envelope())
	}
	v := s.stock.Volume()
	for _, t := range s.tools {
		v -= t.volumeWithin(s.stock)
	}
	return math.Max(v, 0)
}

// Faces returns the stock faces followed by the faces each tool leaves
// inside the stock, in subtraction order.
func (s *Solid) Faces() ([]kernel.Face, error) {
	if s.prim != nil {
		return s.prim.faces(s.prim.Envelope(), true), nil
	}
	faces := stockFaces(s.stock)
	for _, t := range s.tools {
		faces = append(faces, t.faces(s.stock, false)...)
	}
	return faces, nil
}

// tool returns the solid as a subtractable tool.
func (s *Solid) tool() (Tool, bool) {
	if s.prim != nil {
		return *s.prim, true
	}
	if len(s.tools) == 0 {
		return Tool{Kind: ToolBox, Box: s.stock}, true
	}
	return Tool{}, false
}

// PrismKernel implements kernel.Kernel with analytic axis-aligned solids.
type PrismKernel struct{}

// New returns a new PrismKernel.
func New() *PrismKernel {
	return &PrismKernel{}
}

// unwrap extracts the prism solid from a kernel.Solid.
func unwrap(s kernel.Solid) (*Solid, error) {
	ps, ok := s.(*Solid)
	if !ok {
		return nil, fmt.Errorf("%w: foreign solid %T", ErrUnsupported, s)
	}
	return ps, nil
}

// Box creates a box stock with its minimum corner at the origin.
func (k *PrismKernel) Box(x, y, z float64) kernel.Solid {
	return &Solid{stock: kernel.NewBBox(0, x, 0, y, 0, z)}
}

// Cylinder creates a flat-ended cylinder based at the origin along dir.
func (k *PrismKernel) Cylinder(height, radius float64, dir kernel.Direction) kernel.Solid {
	return &Solid{prim: &Tool{Kind: ToolCylinder, Dir: dir, Radius: radius, Length: height}}
}

// Drill creates a pointed bore based at the origin along dir.
func (k *PrismKernel) Drill(depth, diameter float64, dir kernel.Direction) kernel.Solid {
	return &Solid{prim: &Tool{Kind: ToolDrill, Dir: dir, Radius: diameter / 2, Length: depth}}
}

// Difference subtracts b from a. a must be stock based (a box, possibly
// already cut) and b must be a primitive.
func (k *PrismKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	pa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	pb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	if pa.prim != nil {
		return nil, fmt.Errorf("%w: cannot subtract from a %s primitive", ErrUnsupported, pa.prim.Kind)
	}
	if !(Tool{Kind: ToolBox, Box: pa.stock}).valid() {
		return nil, fmt.Errorf("prism: degenerate stock %v", pa.stock)
	}
	t, ok := pb.tool()
	if !ok {
		return nil, fmt.Errorf("%w: subtrahend must be a primitive, got a cut solid", ErrUnsupported)
	}
	if !t.valid() {
		return nil, fmt.Errorf("prism: degenerate %s tool", t.Kind)
	}
	tools := make([]Tool, 0, len(pa.tools)+1)
	tools = append(tools, pa.tools...)
	tools = append(tools, t)
	return &Solid{stock: pa.stock, tools: tools}, nil
}

// Translate moves a solid by (x, y, z).
func (k *PrismKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ps, err := unwrap(s)
	if err != nil {
		return s
	}
	d := [3]float64{x, y, z}
	out := &Solid{stock: ps.stock.Translate(x, y, z)}
	if ps.prim != nil {
		moved := ps.prim.Translate(d)
		out.prim = &moved
	}
	for _, t := range ps.tools {
		out.tools = append(out.tools, t.Translate(d))
	}
	return out
}
