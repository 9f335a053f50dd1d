// Package kernel defines the abstract geometry kernel interface.
// A kernel answers the B-rep queries the feature detectors need (faces,
// bounding boxes, volume) and builds solids from axis-aligned primitives.
// Implementations (prism, sdfx) sit behind this interface so detection
// never depends on a particular backend.
package kernel

import "fmt"

// GeomType tags the underlying surface of a face.
type GeomType int

const (
	GeomOther    GeomType = iota // cones, tori, splines, anything else
	GeomPlane                    // planar face
	GeomCylinder                 // cylindrical face
)

func (t GeomType) String() string {
	switch t {
	case GeomPlane:
		return "plane"
	case GeomCylinder:
		return "cylinder"
	case GeomOther:
		return "other"
	default:
		return fmt.Sprintf("GeomType(%d)", int(t))
	}
}

// Face is a single bounded surface of a solid.
type Face interface {
	// GeometryType returns the surface tag of the face.
	GeometryType() GeomType
	// BoundingBox returns the axis-aligned bounds of the face. An error
	// means the kernel could not compute bounds for this face.
	BoundingBox() (BBox, error)
}

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// Faces returns the faces of the solid in a stable order.
	Faces() ([]Face, error)
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() BBox
	// Volume returns the enclosed volume in mm³.
	Volume() float64
}

// Kernel builds solids from axis-aligned primitives.
// All dimensions are in mm.
type Kernel interface {
	// Box creates a box with its minimum corner at the origin.
	Box(x, y, z float64) Solid
	// Cylinder creates a flat-ended cylinder whose base circle is centred
	// on the origin and which extends height along dir.
	Cylinder(height, radius float64, dir Direction) Solid
	// Drill creates a drilled bore starting at the origin and advancing
	// depth along dir, finished with a 118 degree drill point.
	Drill(depth, diameter float64, dir Direction) Solid

	// Boolean operations
	Difference(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
}
