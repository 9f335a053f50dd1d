// Package build walks a design graph and produces one kernel solid per
// part. Features are subtracted from the part stock in declaration order.
package build

import (
	"fmt"

	"github.com/chazu/partscan/pkg/graph"
	"github.com/chazu/partscan/pkg/kernel"
)

// Clearance is how far tools start outside the stock face, and how far
// through tools overshoot the opposite face.
const Clearance = 1.0

// Part is a named solid built from a part node.
type Part struct {
	Name  string
	Solid kernel.Solid
}

// Solids validates the design graph and builds one solid per part using
// the provided geometry kernel. The builder is read-only and never
// mutates the graph.
func Solids(g *graph.DesignGraph, k kernel.Kernel) ([]Part, error) {
	if g == nil {
		return nil, nil
	}
	if r := graph.Validate(g); !r.OK() {
		return nil, fmt.Errorf("build: invalid design graph: %w", r.Err())
	}

	parts := make([]Part, 0, len(g.Roots))
	for _, n := range g.Parts() {
		s, err := buildPart(g, k, n)
		if err != nil {
			return nil, fmt.Errorf("build: part %q: %w", n.Name, err)
		}
		parts = append(parts, Part{Name: n.Name, Solid: s})
	}
	return parts, nil
}

// buildPart creates the stock for a part node and cuts each feature.
func buildPart(g *graph.DesignGraph, k kernel.Kernel, n *graph.Node) (kernel.Solid, error) {
	stock, ok := n.Data.(graph.StockData)
	if !ok {
		return nil, fmt.Errorf("part node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	bounds := stock.Bounds()
	solid := k.Box(stock.Size.X, stock.Size.Y, stock.Size.Z)

	for i, child := range g.Children(n) {
		var tool kernel.Solid
		switch data := child.Data.(type) {
		case graph.DrillData:
			tool = drillTool(k, data, bounds)
		case graph.PocketData:
			tool = pocketTool(k, data, bounds)
		default:
			return nil, fmt.Errorf("feature %d (%s) has unsupported data type %T", i, child.Kind, child.Data)
		}
		if tool == nil {
			return nil, fmt.Errorf("feature %d (%s) targets unknown face", i, child.Kind)
		}
		cut, err := k.Difference(solid, tool)
		if err != nil {
			return nil, fmt.Errorf("feature %d (%s): %w", i, child.Kind, err)
		}
		solid = cut
	}
	return solid, nil
}

// entry returns the coordinate of the face a tool advancing along dir
// enters through.
func entry(bounds kernel.BBox, dir kernel.Direction) float64 {
	a := dir.Axis()
	if dir.Sign() < 0 {
		return bounds.Max[a]
	}
	return bounds.Min[a]
}

// drillTool returns the bore for d, started Clearance outside the face.
// Blind depths are measured from the face to the end of the full-diameter
// section; through bores overshoot the far face by Clearance.
func drillTool(k kernel.Kernel, d graph.DrillData, bounds kernel.BBox) kernel.Solid {
	dir, ok := d.Face.Direction()
	if !ok {
		return nil
	}
	a := dir.Axis()

	length := d.Depth + Clearance
	if d.Through() {
		length = bounds.Span(a) + 2*Clearance
	}

	var bore kernel.Solid
	if d.Flat {
		bore = k.Cylinder(length, d.Diameter/2, dir)
	} else {
		bore = k.Drill(length, d.Diameter, dir)
	}

	origin := [3]float64{d.Position.X, d.Position.Y, d.Position.Z}
	origin[a] = entry(bounds, dir) - dir.Sign()*Clearance
	return k.Translate(bore, origin[0], origin[1], origin[2])
}

// pocketTool returns the box removed by p. The box extends Clearance
// beyond the face so the pocket opens cleanly.
func pocketTool(k kernel.Kernel, p graph.PocketData, bounds kernel.BBox) kernel.Solid {
	dir, ok := p.Face.Direction()
	if !ok {
		return nil
	}
	a := dir.Axis()

	var lo, size [3]float64
	for _, ax := range kernel.Axes {
		lo[ax] = p.Position.At(ax)
		size[ax] = p.Size.At(ax)
	}
	face := entry(bounds, dir)
	size[a] = p.Depth() + Clearance
	if dir.Sign() < 0 {
		lo[a] = face - p.Depth()
	} else {
		lo[a] = face - Clearance
	}
	return k.Translate(k.Box(size[0], size[1], size[2]), lo[0], lo[1], lo[2])
}
