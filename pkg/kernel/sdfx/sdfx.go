// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Bounding boxes and volume
// come from the signed distance field; face topology is tracked in
// lockstep by a prism record, since an SDF carries no B-rep faces.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/partscan/pkg/kernel"
	"github.com/chazu/partscan/pkg/kernel/prism"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*SdfxKernel)(nil)
var _ kernel.Solid = (*sdfxSolid)(nil)

// DefaultVolumeCells controls volume sampling resolution along the longest axis.
const DefaultVolumeCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s     sdf.SDF3
	topo  kernel.Solid
	cells int
	err   error // construction error, reported by Difference
}

// BoundingBox returns the axis-aligned bounding box of the field.
func (s *sdfxSolid) BoundingBox() kernel.BBox {
	if s.s == nil {
		return kernel.BBox{}
	}
	bb := s.s.BoundingBox()
	return kernel.BBox{
		Min: [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z},
		Max: [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z},
	}
}

// Faces returns the faces of the tracked construction.
func (s *sdfxSolid) Faces() ([]kernel.Face, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.topo.Faces()
}

// Volume estimates the enclosed volume by sampling the field.
func (s *sdfxSolid) Volume() float64 {
	if s.s == nil {
		return 0
	}
	return sampleVolume(s.s, s.cells)
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	topo  *prism.PrismKernel
	cells int
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithVolumeCells sets the number of sampling cells along the longest axis.
func WithVolumeCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.cells = n
		}
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{topo: prism.New(), cells: DefaultVolumeCells}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// unwrap extracts the sdfx solid from a kernel.Solid.
func unwrap(s kernel.Solid) (*sdfxSolid, error) {
	ss, ok := s.(*sdfxSolid)
	if !ok {
		return nil, fmt.Errorf("sdfx: foreign solid %T", s)
	}
	return ss, nil
}

// wrap creates a kernel.Solid from an sdf.SDF3 and its topology record.
func (k *SdfxKernel) wrap(s sdf.SDF3, topo kernel.Solid, err error) kernel.Solid {
	return &sdfxSolid{s: s, topo: topo, cells: k.cells, err: err}
}

// Box creates a box with the given dimensions. The resulting solid has its
// minimum corner at the origin (0,0,0) so that placement translations work
// intuitively. sdf.Box3D centers the box at the origin, so we translate by
// half-dimensions.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	topo := k.topo.Box(x, y, z)
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return k.wrap(nil, topo, fmt.Errorf("sdfx: Box3D: %w", err))
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return k.wrap(sdf.Transform3D(s, m), topo, nil)
}

// Cylinder creates a flat-ended cylinder based at the origin along dir.
func (k *SdfxKernel) Cylinder(height, radius float64, dir kernel.Direction) kernel.Solid {
	topo := k.topo.Cylinder(height, radius, dir)
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return k.wrap(nil, topo, fmt.Errorf("sdfx: Cylinder3D: %w", err))
	}
	// Shift from centred to based at the origin, then orient.
	m := orient(dir).Mul(sdf.Translate3d(v3.Vec{Z: height / 2}))
	return k.wrap(sdf.Transform3D(s, m), topo, nil)
}

// Drill creates a bore of the given depth finished with a drill point.
func (k *SdfxKernel) Drill(depth, diameter float64, dir kernel.Direction) kernel.Solid {
	topo := k.topo.Drill(depth, diameter, dir)
	r := diameter / 2
	body, err := sdf.Cylinder3D(depth, r, 0)
	if err != nil {
		return k.wrap(nil, topo, fmt.Errorf("sdfx: Cylinder3D: %w", err))
	}
	h := r / math.Tan(prism.PointAngle/2*math.Pi/180)
	point, err := sdf.Cone3D(h, r, 0, 0)
	if err != nil {
		return k.wrap(nil, topo, fmt.Errorf("sdfx: Cone3D: %w", err))
	}
	body = sdf.Transform3D(body, sdf.Translate3d(v3.Vec{Z: depth / 2}))
	point = sdf.Transform3D(point, sdf.Translate3d(v3.Vec{Z: depth + h/2}))
	return k.wrap(sdf.Transform3D(sdf.Union3D(body, point), orient(dir)), topo, nil)
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, err
	}
	if sa.err != nil {
		return nil, sa.err
	}
	if sb.err != nil {
		return nil, sb.err
	}
	topo, err := k.topo.Difference(sa.topo, sb.topo)
	if err != nil {
		return nil, fmt.Errorf("sdfx: %w", err)
	}
	return k.wrap(sdf.Difference3D(sa.s, sb.s), topo, nil), nil
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ss, err := unwrap(s)
	if err != nil || ss.s == nil {
		return s
	}
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return k.wrap(sdf.Transform3D(ss.s, m), k.topo.Translate(ss.topo, x, y, z), nil)
}

// orient returns the rotation taking +Z onto dir.
func orient(dir kernel.Direction) sdf.M44 {
	switch dir {
	case kernel.NegZ:
		return sdf.RotateX(math.Pi)
	case kernel.PosX:
		return sdf.RotateY(math.Pi / 2)
	case kernel.NegX:
		return sdf.RotateY(-math.Pi / 2)
	case kernel.PosY:
		return sdf.RotateX(-math.Pi / 2)
	case kernel.NegY:
		return sdf.RotateX(math.Pi / 2)
	default:
		return sdf.RotateZ(0)
	}
}

// sampleVolume counts cell centres inside the field (distance < 0) on a
// uniform grid over the bounding box. Grids are sized so that cells tile
// the box exactly, which makes axis-aligned boxes exact.
func sampleVolume(s sdf.SDF3, cells int) float64 {
	bb := s.BoundingBox()
	lo := [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	ext := [3]float64{bb.Max.X - bb.Min.X, bb.Max.Y - bb.Min.Y, bb.Max.Z - bb.Min.Z}
	longest := math.Max(ext[0], math.Max(ext[1], ext[2]))
	if !(longest > 0) || cells <= 0 {
		return 0
	}
	step := longest / float64(cells)

	var n [3]int
	var d [3]float64
	for i := range ext {
		n[i] = int(math.Max(1, math.Round(ext[i]/step)))
		d[i] = ext[i] / float64(n[i])
	}

	inside := 0
	for i := 0; i < n[0]; i++ {
		x := lo[0] + (float64(i)+0.5)*d[0]
		for j := 0; j < n[1]; j++ {
			y := lo[1] + (float64(j)+0.5)*d[1]
			for l := 0; l < n[2]; l++ {
				z := lo[2] + (float64(l)+0.5)*d[2]
				if s.Evaluate(v3.Vec{X: x, Y: y, Z: z}) < 0 {
					inside++
				}
			}
		}
	}
	return float64(inside) * d[0] * d[1] * d[2]
}
