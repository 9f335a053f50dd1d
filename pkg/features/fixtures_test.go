package features

import (
	"errors"
	"testing"

	"github.com/chazu/partscan/pkg/kernel"
	"github.com/chazu/partscan/pkg/kernel/prism"
	"github.com/stretchr/testify/require"
)

// fakeFace is a hand-made face. panicType and panicBox make the
// corresponding query panic; err makes BoundingBox fail.
type fakeFace struct {
	kind      kernel.GeomType
	box       kernel.BBox
	err       error
	panicType bool
	panicBox  bool
}

func (f fakeFace) GeometryType() kernel.GeomType {
	if f.panicType {
		panic("geometry type unavailable")
	}
	return f.kind
}

func (f fakeFace) BoundingBox() (kernel.BBox, error) {
	if f.panicBox {
		panic("bounds unavailable")
	}
	return f.box, f.err
}

// fakeSolid is a hand-made solid with an explicit face list.
type fakeSolid struct {
	faces    []kernel.Face
	box      kernel.BBox
	volume   float64
	err      error
	panicBox bool
}

func (s *fakeSolid) Faces() ([]kernel.Face, error) { return s.faces, s.err }
func (s *fakeSolid) Volume() float64               { return s.volume }

func (s *fakeSolid) BoundingBox() kernel.BBox {
	if s.panicBox {
		panic("solid bounds unavailable")
	}
	return s.box
}

var errFace = errors.New("face query failed")

func cylinder(b kernel.BBox) kernel.Face { return fakeFace{kind: kernel.GeomCylinder, box: b} }
func plane(b kernel.BBox) kernel.Face    { return fakeFace{kind: kernel.GeomPlane, box: b} }

// fixture is a synthetic part with known ground truth.
type fixture struct {
	name    string
	solid   kernel.Solid
	holes   int
	pockets int
}

func cut(t *testing.T, k *prism.PrismKernel, stock kernel.Solid, tools ...kernel.Solid) kernel.Solid {
	t.Helper()
	s := stock
	for _, tool := range tools {
		var err error
		s, err = k.Difference(s, tool)
		require.NoError(t, err)
	}
	return s
}

// Named parts used across tests. Stock dimensions are in mm.

func plainBlock(t *testing.T) kernel.Solid {
	k := prism.New()
	return k.Box(50, 40, 20)
}

func throughHoleBlock(t *testing.T) kernel.Solid {
	k := prism.New()
	return cut(t, k, k.Box(50, 40, 20), k.Translate(k.Drill(21, 6, kernel.NegZ), 25, 20, 20))
}

func blindHoleBlock(t *testing.T, diameter, depth float64) kernel.Solid {
	k := prism.New()
	return cut(t, k, k.Box(50, 40, 30), k.Translate(k.Drill(depth, diameter, kernel.NegZ), 25, 20, 30))
}

func pocketBlock(t *testing.T) kernel.Solid {
	k := prism.New()
	return cut(t, k, k.Box(100, 80, 30), k.Translate(k.Box(20, 15, 11), 40, 32.5, 20))
}

// offsetPocketBlock cuts the pocketBlock cavity from the top with its
// minimum x corner at x, closer to the -x face than its own depth when x < 10.
func offsetPocketBlock(t *testing.T, x float64) kernel.Solid {
	k := prism.New()
	return cut(t, k, k.Box(100, 80, 30), k.Translate(k.Box(20, 15, 11), x, 32.5, 20))
}

// flatBoreBlock has a 6 mm flat-bottomed blind bore, 18 mm deep from the top.
// The bore floor is a planar disk.
func flatBoreBlock(t *testing.T) kernel.Solid {
	k := prism.New()
	return cut(t, k, k.Box(50, 40, 30), k.Translate(k.Cylinder(19, 3, kernel.NegZ), 25, 20, 31))
}

// sidePocketBlock has a 6 mm deep, 30x16 mm pocket machined from the -x face.
func sidePocketBlock(t *testing.T) kernel.Solid {
	k := prism.New()
	return cut(t, k, k.Box(100, 80, 30), k.Translate(k.Box(7, 30, 16), -1, 25, 7))
}

func twoPocketBlock(t *testing.T) kernel.Solid {
	k := prism.New()
	return cut(t, k, k.Box(200, 100, 30),
		k.Translate(k.Box(20, 15, 11), 20, 40, 20),
		k.Translate(k.Box(20, 15, 11), 140, 40, 20),
	)
}

func mixedBlock(t *testing.T) kernel.Solid {
	k := prism.New()
	return cut(t, k, k.Box(120, 80, 25),
		k.Translate(k.Drill(26, 5, kernel.NegZ), 10, 10, 25),
		k.Translate(k.Drill(26, 5, kernel.NegZ), 110, 10, 25),
		k.Translate(k.Drill(12, 8, kernel.NegZ), 10, 70, 25),
		k.Translate(k.Drill(30, 4, kernel.PosX), -1, 40, 12.5),
		k.Translate(k.Box(30, 20, 9), 45, 30, 16),
	)
}

func fixtures(t *testing.T) []fixture {
	return []fixture{
		{"plain block", plainBlock(t), 0, 0},
		{"through hole", throughHoleBlock(t), 1, 0},
		{"blind hole", blindHoleBlock(t, 6, 18), 1, 0},
		{"non-standard blind hole", blindHoleBlock(t, 7.3, 10), 1, 0},
		{"pocket", pocketBlock(t), 0, 1},
		{"side pocket", sidePocketBlock(t), 0, 1},
		{"two pockets", twoPocketBlock(t), 0, 2},
		{"mixed", mixedBlock(t), 4, 1},
	}
}
