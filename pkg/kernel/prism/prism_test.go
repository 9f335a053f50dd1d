package prism

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/partscan/pkg/kernel"
)

const tol = 1e-6

// countKinds tallies faces by geometry type.
func countKinds(t *testing.T, s kernel.Solid) map[kernel.GeomType]int {
	t.Helper()
	faces, err := s.Faces()
	if err != nil {
		t.Fatalf("Faces() error = %v", err)
	}
	counts := make(map[kernel.GeomType]int)
	for _, f := range faces {
		counts[f.GeometryType()]++
	}
	return counts
}

// facesOf returns the face bounds of the given kind.
func facesOf(t *testing.T, s kernel.Solid, kind kernel.GeomType) []kernel.BBox {
	t.Helper()
	faces, err := s.Faces()
	if err != nil {
		t.Fatalf("Faces() error = %v", err)
	}
	var out []kernel.BBox
	for _, f := range faces {
		if f.GeometryType() != kind {
			continue
		}
		b, err := f.BoundingBox()
		if err != nil {
			t.Fatalf("BoundingBox() error = %v", err)
		}
		out = append(out, b)
	}
	return out
}

func mustDiff(t *testing.T, k *PrismKernel, a, b kernel.Solid) kernel.Solid {
	t.Helper()
	s, err := k.Difference(a, b)
	if err != nil {
		t.Fatalf("Difference() error = %v", err)
	}
	return s
}

func TestBox(t *testing.T) {
	k := New()
	box := k.Box(50, 40, 20)

	bb := box.BoundingBox()
	if bb != kernel.NewBBox(0, 50, 0, 40, 0, 20) {
		t.Errorf("BoundingBox() = %v, want [0,50]x[0,40]x[0,20]", bb)
	}
	if v := box.Volume(); math.Abs(v-40000) > tol {
		t.Errorf("Volume() = %f, want 40000", v)
	}
	counts := countKinds(t, box)
	if counts[kernel.GeomPlane] != 6 || len(counts) != 1 {
		t.Errorf("face kinds = %v, want 6 planes only", counts)
	}
}

func TestThroughDrill(t *testing.T) {
	k := New()
	drill := k.Translate(k.Drill(21, 6, kernel.NegZ), 25, 20, 20)
	s := mustDiff(t, k, k.Box(50, 40, 20), drill)

	counts := countKinds(t, s)
	if counts[kernel.GeomPlane] != 6 {
		t.Errorf("planes = %d, want 6 (no caps on a through bore)", counts[kernel.GeomPlane])
	}
	if counts[kernel.GeomCylinder] != 1 {
		t.Errorf("cylinders = %d, want 1", counts[kernel.GeomCylinder])
	}
	if counts[kernel.GeomOther] != 0 {
		t.Errorf("other = %d, want 0 (drill point exits the stock)", counts[kernel.GeomOther])
	}

	cyl := facesOf(t, s, kernel.GeomCylinder)[0]
	want := kernel.NewBBox(22, 28, 17, 23, 0, 20)
	if cyl != want {
		t.Errorf("cylinder bounds = %v, want %v", cyl, want)
	}

	wantVol := 40000 - math.Pi*9*20
	if v := s.Volume(); math.Abs(v-wantVol) > tol {
		t.Errorf("Volume() = %f, want %f", v, wantVol)
	}
}

func TestBlindDrill(t *testing.T) {
	k := New()
	drill := k.Translate(k.Drill(18, 6, kernel.NegZ), 25, 20, 30)
	s := mustDiff(t, k, k.Box(50, 40, 30), drill)

	counts := countKinds(t, s)
	if counts[kernel.GeomCylinder] != 1 || counts[kernel.GeomOther] != 1 || counts[kernel.GeomPlane] != 6 {
		t.Fatalf("face kinds = %v, want 6 planes, 1 cylinder, 1 other", counts)
	}

	cyl := facesOf(t, s, kernel.GeomCylinder)[0]
	if math.Abs(cyl.Span(kernel.AxisZ)-18) > tol {
		t.Errorf("cylinder depth = %f, want 18", cyl.Span(kernel.AxisZ))
	}

	h := 3 / math.Tan(59*math.Pi/180)
	point := facesOf(t, s, kernel.GeomOther)[0]
	if math.Abs(point.Max[2]-12) > tol || math.Abs(point.Min[2]-(12-h)) > tol {
		t.Errorf("drill point z = [%f, %f], want [%f, 12]", point.Min[2], point.Max[2], 12-h)
	}

	wantVol := 60000 - math.Pi*9*18 - math.Pi*9*h/3
	if v := s.Volume(); math.Abs(v-wantVol) > tol {
		t.Errorf("Volume() = %f, want %f", v, wantVol)
	}
}

func TestDrillPointBreakingThrough(t *testing.T) {
	k := New()
	drill := k.Translate(k.Drill(19, 6, kernel.NegZ), 25, 20, 20)
	s := mustDiff(t, k, k.Box(50, 40, 20), drill)

	h := 3 / math.Tan(59*math.Pi/180)
	body := math.Pi * 9 * 19
	fullPoint := math.Pi * 9 * h / 3
	removed := 40000 - s.Volume()
	if removed <= body || removed >= body+fullPoint {
		t.Errorf("removed %f, want strictly between %f and %f", removed, body, body+fullPoint)
	}
}

func TestFlatBottomCylinder(t *testing.T) {
	k := New()
	bore := k.Translate(k.Cylinder(10, 3, kernel.NegZ), 25, 20, 30)
	s := mustDiff(t, k, k.Box(50, 40, 30), bore)

	planes := facesOf(t, s, kernel.GeomPlane)
	if len(planes) != 7 {
		t.Fatalf("planes = %d, want 7 (stock + floor disk)", len(planes))
	}
	floor := planes[6]
	want := kernel.NewBBox(22, 28, 17, 23, 20, 20)
	if floor != want {
		t.Errorf("floor bounds = %v, want %v", floor, want)
	}
}

func TestPocket(t *testing.T) {
	k := New()
	cutter := k.Translate(k.Box(20, 15, 11), 40, 32.5, 20)
	s := mustDiff(t, k, k.Box(100, 80, 30), cutter)

	planes := facesOf(t, s, kernel.GeomPlane)
	if len(planes) != 11 {
		t.Fatalf("planes = %d, want 11 (6 stock + bottom + 4 walls)", len(planes))
	}
	var bottoms int
	for _, f := range planes[6:] {
		if f.Span(kernel.AxisZ) == 0 {
			bottoms++
			if f != kernel.NewBBox(40, 60, 32.5, 47.5, 20, 20) {
				t.Errorf("pocket bottom = %v", f)
			}
			continue
		}
		if f.Max[2] != 30 || f.Min[2] != 20 {
			t.Errorf("wall z range = [%f, %f], want [20, 30]", f.Min[2], f.Max[2])
		}
	}
	if bottoms != 1 {
		t.Errorf("pocket bottoms = %d, want 1", bottoms)
	}
	if v := s.Volume(); math.Abs(v-(240000-3000)) > tol {
		t.Errorf("Volume() = %f, want 237000", v)
	}
}

func TestCutterOutsideStock(t *testing.T) {
	k := New()
	cutter := k.Translate(k.Box(5, 5, 5), 200, 0, 0)
	s := mustDiff(t, k, k.Box(10, 10, 10), cutter)

	if n := len(facesOf(t, s, kernel.GeomPlane)); n != 6 {
		t.Errorf("planes = %d, want 6", n)
	}
	if v := s.Volume(); math.Abs(v-1000) > tol {
		t.Errorf("Volume() = %f, want 1000", v)
	}
}

func TestStandaloneDrill(t *testing.T) {
	k := New()
	d := k.Drill(10, 4, kernel.PosX)
	counts := countKinds(t, d)
	if counts[kernel.GeomCylinder] != 1 || counts[kernel.GeomPlane] != 1 || counts[kernel.GeomOther] != 1 {
		t.Errorf("face kinds = %v, want cylinder, entry disk and point", counts)
	}
	bb := d.BoundingBox()
	if bb.Min[0] != 0 || bb.Max[0] <= 10 {
		t.Errorf("drill envelope x = [%f, %f], want [0, >10]", bb.Min[0], bb.Max[0])
	}
}

func TestTranslateCutSolid(t *testing.T) {
	k := New()
	cutter := k.Translate(k.Box(20, 15, 11), 40, 32.5, 20)
	s := k.Translate(mustDiff(t, k, k.Box(100, 80, 30), cutter), 10, 0, -30)

	if bb := s.BoundingBox(); bb != kernel.NewBBox(10, 110, 0, 80, -30, 0) {
		t.Errorf("BoundingBox() = %v", bb)
	}
	planes := facesOf(t, s, kernel.GeomPlane)
	// Cutter faces follow the stock faces as -x, +x, -y, +y, -z.
	bottom := planes[len(planes)-1]
	if bottom != kernel.NewBBox(50, 70, 32.5, 47.5, -10, -10) {
		t.Errorf("translated pocket bottom = %v", bottom)
	}
}

func TestDifferenceErrors(t *testing.T) {
	k := New()
	box := k.Box(10, 10, 10)
	cut := mustDiff(t, k, box, k.Translate(k.Box(2, 2, 20), 4, 4, -5))

	tests := []struct {
		name        string
		a, b        kernel.Solid
		unsupported bool
	}{
		{"subtract from primitive", k.Cylinder(5, 1, kernel.PosZ), box, true},
		{"subtract cut solid", box, cut, true},
		{"degenerate cutter", box, k.Box(0, 1, 1), false},
		{"degenerate drill", box, k.Drill(5, 0, kernel.NegZ), false},
		{"degenerate stock", k.Box(-1, 1, 1), k.Box(1, 1, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := k.Difference(tt.a, tt.b)
			if err == nil {
				t.Fatal("Difference() error = nil, want error")
			}
			if got := errors.Is(err, ErrUnsupported); got != tt.unsupported {
				t.Errorf("errors.Is(err, ErrUnsupported) = %v, want %v (%v)", got, tt.unsupported, err)
			}
		})
	}
}

func TestDifferenceDoesNotMutateOperand(t *testing.T) {
	k := New()
	base := mustDiff(t, k, k.Box(50, 50, 50), k.Translate(k.Drill(10, 5, kernel.NegZ), 10, 10, 50))
	_ = mustDiff(t, k, base, k.Translate(k.Drill(10, 5, kernel.NegZ), 30, 30, 50))

	if n := len(base.(*Solid).Tools()); n != 1 {
		t.Errorf("base tools = %d after second cut, want 1", n)
	}
}
