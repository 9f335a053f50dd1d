package prism

import (
	"math"

	"github.com/chazu/partscan/pkg/kernel"
)

// stockFaces returns the six boundary planes of the stock, ordered
// -x, +x, -y, +y, -z, +z.
func stockFaces(stock kernel.BBox) []kernel.Face {
	faces := make([]kernel.Face, 0, 6)
	for _, a := range kernel.Axes {
		for _, p := range [2]float64{stock.Min[a], stock.Max[a]} {
			b := stock
			b.Min[a], b.Max[a] = p, p
			faces = append(faces, Face{Kind: kernel.GeomPlane, Box: b})
		}
	}
	return faces
}

// boxToolFaces returns the faces a box cutter leaves in the stock: every
// cutter face whose plane lies strictly inside the stock, clipped to it.
func boxToolFaces(box, stock kernel.BBox) []kernel.Face {
	inter, ok := box.Intersect(stock)
	if !ok || !solidOverlap(inter) {
		return nil
	}
	var faces []kernel.Face
	for _, a := range kernel.Axes {
		for _, p := range [2]float64{inter.Min[a], inter.Max[a]} {
			if !strictlyInside(p, stock, a) {
				continue
			}
			f := inter
			f.Min[a], f.Max[a] = p, p
			faces = append(faces, Face{Kind: kernel.GeomPlane, Box: f})
		}
	}
	return faces
}

// faces returns the faces a bore leaves inside bounds. Standalone
// primitives report both end caps regardless of position.
func (t Tool) faces(bounds kernel.BBox, standalone bool) []kernel.Face {
	if t.Kind == ToolBox {
		return boxToolFaces(t.Box, bounds)
	}

	a := t.Dir.Axis()
	sign := t.Dir.Sign()
	start := t.axial(0)
	t0, t1, ok := clipParam(start, sign, t.Length, bounds.Min[a], bounds.Max[a])
	if !ok {
		return nil
	}
	fp, ok := t.clippedFootprint(bounds)
	if !ok {
		return nil
	}

	interior := func(x float64) bool {
		return standalone || strictlyInside(x, bounds, a)
	}
	disk := func(at float64) kernel.Face {
		b := fp
		b.Min[a], b.Max[a] = at, at
		return Face{Kind: kernel.GeomPlane, Box: b}
	}

	cyl := fp
	cyl.Min[a], cyl.Max[a] = ordered(t.axial(t0), t.axial(t1))
	faces := []kernel.Face{Face{Kind: kernel.GeomCylinder, Box: cyl}}

	if interior(start) {
		faces = append(faces, disk(start))
	}
	end := t.axial(t.Length)
	if !interior(end) {
		return faces
	}
	switch t.Kind {
	case ToolCylinder:
		faces = append(faces, disk(end))
	case ToolDrill:
		p0, p1, ok := clipParam(end, sign, t.pointLength(), bounds.Min[a], bounds.Max[a])
		if ok {
			cone := fp
			cone.Min[a], cone.Max[a] = ordered(end+sign*p0, end+sign*p1)
			faces = append(faces, Face{Kind: kernel.GeomOther, Box: cone})
		}
	}
	return faces
}

// volumeWithin returns the material the tool removes inside bounds.
func (t Tool) volumeWithin(bounds kernel.BBox) float64 {
	if t.Kind == ToolBox {
		inter, ok := t.Box.Intersect(bounds)
		if !ok {
			return 0
		}
		return inter.Volume()
	}

	fp, ok := t.clippedFootprint(bounds)
	if !ok {
		return 0
	}
	b, c := t.Dir.Axis().Transverse()
	full := 4 * t.Radius * t.Radius
	frac := fp.Span(b) * fp.Span(c) / full

	a := t.Dir.Axis()
	sign := t.Dir.Sign()
	area := math.Pi * t.Radius * t.Radius
	var v float64
	if t0, t1, ok := clipParam(t.axial(0), sign, t.Length, bounds.Min[a], bounds.Max[a]); ok {
		v += area * (t1 - t0)
	}
	if t.Kind == ToolDrill {
		h := t.pointLength()
		if p0, p1, ok := clipParam(t.axial(t.Length), sign, h, bounds.Min[a], bounds.Max[a]); ok {
			// Frustum of the cone between p0 and p1 from its base.
			v += area * h / 3 * (cube(1-p0/h) - cube(1-p1/h))
		}
	}
	return v * frac
}

// clippedFootprint returns the bore footprint clipped to bounds on the
// transverse axes, spanning the full bounds on the tool axis.
func (t Tool) clippedFootprint(bounds kernel.BBox) (kernel.BBox, bool) {
	a := t.Dir.Axis()
	lo, hi := t.footprint()
	lo[a], hi[a] = bounds.Min[a], bounds.Max[a]
	fp, ok := kernel.BBox{Min: lo, Max: hi}.Intersect(bounds)
	if !ok {
		return kernel.BBox{}, false
	}
	b, c := a.Transverse()
	if fp.Span(b) <= eps || fp.Span(c) <= eps {
		return kernel.BBox{}, false
	}
	return fp, true
}

// clipParam clips the segment x(t) = start + sign*t, t in [0, length], to
// the coordinate range [lo, hi]. It returns the surviving parameter range.
func clipParam(start, sign, length, lo, hi float64) (t0, t1 float64, ok bool) {
	var ta, tb float64
	if sign > 0 {
		ta, tb = lo-start, hi-start
	} else {
		ta, tb = start-hi, start-lo
	}
	t0 = math.Max(0, ta)
	t1 = math.Min(length, tb)
	if t1-t0 <= eps {
		return 0, 0, false
	}
	return t0, t1, true
}

// solidOverlap reports whether a box has positive extent on every axis.
func solidOverlap(b kernel.BBox) bool {
	for _, s := range b.Spans() {
		if s <= eps {
			return false
		}
	}
	return true
}

// strictlyInside reports whether coordinate p lies strictly between
// the bounds on axis a.
func strictlyInside(p float64, b kernel.BBox, a kernel.Axis) bool {
	return p > b.Min[a]+eps && p < b.Max[a]-eps
}

func ordered(x, y float64) (float64, float64) {
	if x > y {
		return y, x
	}
	return x, y
}

func cube(x float64) float64 { return x * x * x }
