package kernel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Axis identifies one of the three principal axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists the principal axes in index order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Transverse returns the two axes perpendicular to a, in index order.
func (a Axis) Transverse() (Axis, Axis) {
	switch a {
	case AxisX:
		return AxisY, AxisZ
	case AxisY:
		return AxisX, AxisZ
	default:
		return AxisX, AxisY
	}
}

// Direction is a signed principal direction.
type Direction int

const (
	PosX Direction = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// Axis returns the axis the direction runs along.
func (d Direction) Axis() Axis {
	return Axis(int(d) / 2)
}

// Sign returns +1 for positive directions and -1 for negative ones.
func (d Direction) Sign() float64 {
	if int(d)%2 == 0 {
		return 1
	}
	return -1
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if int(d)%2 == 0 {
		return d + 1
	}
	return d - 1
}

func (d Direction) String() string {
	if d < PosX || d > NegZ {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	if d.Sign() > 0 {
		return "+" + d.Axis().String()
	}
	return "-" + d.Axis().String()
}

// BBox is an axis-aligned bounding box. Min and Max are indexed by Axis.
type BBox struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// NewBBox builds a box from the six scalar bounds.
func NewBBox(xmin, xmax, ymin, ymax, zmin, zmax float64) BBox {
	return BBox{
		Min: [3]float64{xmin, ymin, zmin},
		Max: [3]float64{xmax, ymax, zmax},
	}
}

// Span returns the extent of the box along a.
func (b BBox) Span(a Axis) float64 {
	return b.Max[a] - b.Min[a]
}

// Spans returns the extents along X, Y and Z.
func (b BBox) Spans() [3]float64 {
	return [3]float64{b.Span(AxisX), b.Span(AxisY), b.Span(AxisZ)}
}

// Center returns the centre point of the box.
func (b BBox) Center() r3.Vec {
	return r3.Vec{
		X: (b.Min[0] + b.Max[0]) / 2,
		Y: (b.Min[1] + b.Max[1]) / 2,
		Z: (b.Min[2] + b.Max[2]) / 2,
	}
}

// Volume returns the volume enclosed by the box.
func (b BBox) Volume() float64 {
	s := b.Spans()
	return s[0] * s[1] * s[2]
}

// Empty reports whether the box has a negative or NaN extent on any axis.
// Degenerate (zero-thickness) boxes, such as planar face bounds, are not empty.
func (b BBox) Empty() bool {
	for _, a := range Axes {
		s := b.Span(a)
		if math.IsNaN(s) || s < 0 {
			return true
		}
	}
	return false
}

// Intersect returns the overlap of b and o. The boolean is false when the
// boxes do not overlap.
func (b BBox) Intersect(o BBox) (BBox, bool) {
	var r BBox
	for _, a := range Axes {
		r.Min[a] = math.Max(b.Min[a], o.Min[a])
		r.Max[a] = math.Min(b.Max[a], o.Max[a])
		if r.Max[a] < r.Min[a] {
			return BBox{}, false
		}
	}
	return r, true
}

// Translate returns the box shifted by (dx, dy, dz).
func (b BBox) Translate(dx, dy, dz float64) BBox {
	d := [3]float64{dx, dy, dz}
	for i := range d {
		b.Min[i] += d[i]
		b.Max[i] += d[i]
	}
	return b
}

func (b BBox) String() string {
	return fmt.Sprintf("[%.3f,%.3f]x[%.3f,%.3f]x[%.3f,%.3f]",
		b.Min[0], b.Max[0], b.Min[1], b.Max[1], b.Min[2], b.Max[2])
}
