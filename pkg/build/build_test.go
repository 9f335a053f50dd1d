package build_test

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/partscan/pkg/build"
	"github.com/chazu/partscan/pkg/features"
	"github.com/chazu/partscan/pkg/graph"
	"github.com/chazu/partscan/pkg/kernel"
	"github.com/chazu/partscan/pkg/kernel/prism"
	"github.com/chazu/partscan/pkg/kernel/sdfx"
)

// makePart adds a part with the given stock size and features as a root.
func makePart(g *graph.DesignGraph, name string, size graph.Vec3, feats ...graph.NodeData) *graph.Node {
	part := &graph.Node{
		ID:   graph.NewNodeID("defpart/" + name),
		Kind: graph.NodePart,
		Name: name,
		Data: graph.StockData{Size: size},
	}
	for i, f := range feats {
		kind := graph.NodeDrill
		if _, ok := f.(graph.PocketData); ok {
			kind = graph.NodePocket
		}
		n := &graph.Node{ID: graph.NewNodeID(name + "/" + string(rune('a'+i))), Kind: kind, Data: f}
		g.AddNode(n)
		part.Children = append(part.Children, n.ID)
	}
	g.AddNode(part)
	g.AddRoot(part.ID)
	return part
}

func buildOne(t *testing.T, k kernel.Kernel, g *graph.DesignGraph) kernel.Solid {
	t.Helper()
	parts, err := build.Solids(g, k)
	if err != nil {
		t.Fatalf("Solids failed: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	return parts[0].Solid
}

func TestSingleStock(t *testing.T) {
	g := graph.New()
	makePart(g, "plate", graph.Vec3{X: 100, Y: 60, Z: 20})

	s := buildOne(t, prism.New(), g)
	if got := s.Volume(); got != 120000 {
		t.Errorf("volume = %f, want 120000", got)
	}
	want := kernel.NewBBox(0, 100, 0, 60, 0, 20)
	if s.BoundingBox() != want {
		t.Errorf("bbox = %v, want %v", s.BoundingBox(), want)
	}
}

func TestTwoPartsKeepOrder(t *testing.T) {
	g := graph.New()
	makePart(g, "side", graph.Vec3{X: 40, Y: 30, Z: 18})
	makePart(g, "top", graph.Vec3{X: 60, Y: 30, Z: 18})

	parts, err := build.Solids(g, prism.New())
	if err != nil {
		t.Fatalf("Solids failed: %v", err)
	}
	if len(parts) != 2 || parts[0].Name != "side" || parts[1].Name != "top" {
		t.Fatalf("parts = %+v, want side then top", parts)
	}
}

func TestNilAndEmptyGraph(t *testing.T) {
	parts, err := build.Solids(nil, prism.New())
	if err != nil || parts != nil {
		t.Errorf("nil graph: got %v, %v", parts, err)
	}
	parts, err = build.Solids(graph.New(), prism.New())
	if err != nil || len(parts) != 0 {
		t.Errorf("empty graph: got %v, %v", parts, err)
	}
}

func TestInvalidGraphRejected(t *testing.T) {
	g := graph.New()
	makePart(g, "bad", graph.Vec3{X: 10, Y: 0, Z: 10})

	_, err := build.Solids(g, prism.New())
	if err == nil {
		t.Fatal("expected validation error")
	}
	var ve graph.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("error should wrap a ValidationError, got %T: %v", err, err)
	}
}

// TestFeaturesAreDetected builds parts with known features and checks the
// detector recovers them.
func TestFeaturesAreDetected(t *testing.T) {
	size := graph.Vec3{X: 100, Y: 60, Z: 20}
	tests := []struct {
		name        string
		feats       []graph.NodeData
		wantThrough int
		wantBlind   int
		wantPockets int
		wantRatio   float64
	}{
		{
			name:        "through drill from top",
			feats:       []graph.NodeData{graph.DrillData{Face: graph.FaceTop, Position: graph.Vec3{X: 10, Y: 10}, Diameter: 6}},
			wantThrough: 1,
		},
		{
			name:        "through drill from right",
			feats:       []graph.NodeData{graph.DrillData{Face: graph.FaceRight, Position: graph.Vec3{Y: 30, Z: 10}, Diameter: 8}},
			wantThrough: 1,
		},
		{
			name:      "blind drill from top",
			feats:     []graph.NodeData{graph.DrillData{Face: graph.FaceTop, Position: graph.Vec3{X: 90, Y: 10}, Diameter: 5, Depth: 12}},
			wantBlind: 1,
			wantRatio: 12.0 / 5.0,
		},
		{
			name:      "blind drill from left",
			feats:     []graph.NodeData{graph.DrillData{Face: graph.FaceLeft, Position: graph.Vec3{Y: 30, Z: 10}, Diameter: 5, Depth: 12}},
			wantBlind: 1,
			wantRatio: 12.0 / 5.0,
		},
		{
			name:      "blind drill from bottom",
			feats:     []graph.NodeData{graph.DrillData{Face: graph.FaceBottom, Position: graph.Vec3{X: 50, Y: 30}, Diameter: 4, Depth: 8}},
			wantBlind: 1,
			wantRatio: 2,
		},
		{
			name:        "pocket from top",
			feats:       []graph.NodeData{graph.PocketData{Face: graph.FaceTop, Position: graph.Vec3{X: 30, Y: 20}, Size: graph.Vec3{X: 40, Y: 20, Z: 8}}},
			wantPockets: 1,
		},
		{
			name: "mixed",
			feats: []graph.NodeData{
				graph.DrillData{Face: graph.FaceTop, Position: graph.Vec3{X: 10, Y: 10}, Diameter: 6},
				graph.DrillData{Face: graph.FaceTop, Position: graph.Vec3{X: 90, Y: 10}, Diameter: 5, Depth: 12},
				graph.PocketData{Face: graph.FaceTop, Position: graph.Vec3{X: 30, Y: 20}, Size: graph.Vec3{X: 40, Y: 20, Z: 8}},
			},
			wantThrough: 1,
			wantBlind:   1,
			wantPockets: 1,
			wantRatio:   12.0 / 5.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			makePart(g, "p", size, tt.feats...)
			s := buildOne(t, prism.New(), g)

			f, _ := features.New().Detect(s)
			if f.ThroughHoleCount != tt.wantThrough {
				t.Errorf("through = %d, want %d", f.ThroughHoleCount, tt.wantThrough)
			}
			if f.BlindHoleCount != tt.wantBlind {
				t.Errorf("blind = %d, want %d", f.BlindHoleCount, tt.wantBlind)
			}
			if f.PocketCount != tt.wantPockets {
				t.Errorf("pockets = %d, want %d", f.PocketCount, tt.wantPockets)
			}
			if math.Abs(f.BlindHoleMaxDepthToDiameter-tt.wantRatio) > 1e-9 {
				t.Errorf("max ratio = %f, want %f", f.BlindHoleMaxDepthToDiameter, tt.wantRatio)
			}
			if f.Volume >= 120000 {
				t.Errorf("volume = %f, features should remove material", f.Volume)
			}
		})
	}
}

func TestPocketVolume(t *testing.T) {
	g := graph.New()
	makePart(g, "p", graph.Vec3{X: 100, Y: 60, Z: 20},
		graph.PocketData{Face: graph.FaceTop, Position: graph.Vec3{X: 30, Y: 20}, Size: graph.Vec3{X: 40, Y: 20, Z: 8}})
	s := buildOne(t, prism.New(), g)

	f, _ := features.New().Detect(s)
	if f.PocketTotalVolume != 6400 {
		t.Errorf("pocket volume = %f, want 6400", f.PocketTotalVolume)
	}
	if f.PocketMaxDepth != 8 {
		t.Errorf("pocket depth = %f, want 8", f.PocketMaxDepth)
	}
	if got := s.Volume(); got != 120000-6400 {
		t.Errorf("solid volume = %f, want %f", got, 120000.0-6400)
	}
}

func TestSdfxKernelMatchesPrism(t *testing.T) {
	g := graph.New()
	makePart(g, "p", graph.Vec3{X: 100, Y: 60, Z: 20},
		graph.PocketData{Face: graph.FaceTop, Position: graph.Vec3{X: 30, Y: 20}, Size: graph.Vec3{X: 40, Y: 20, Z: 8}},
		graph.DrillData{Face: graph.FaceTop, Position: graph.Vec3{X: 10, Y: 10}, Diameter: 6})

	ps := buildOne(t, prism.New(), g)
	ss := buildOne(t, sdfx.New(), g)

	if math.Abs(ss.Volume()-ps.Volume())/ps.Volume() > 0.01 {
		t.Errorf("sdfx volume = %f, prism volume = %f", ss.Volume(), ps.Volume())
	}
	pf, _ := features.New().Detect(ps)
	sf, _ := features.New().Detect(ss)
	if pf.ThroughHoleCount != sf.ThroughHoleCount || pf.PocketCount != sf.PocketCount {
		t.Errorf("sdfx features %+v differ from prism %+v", sf, pf)
	}
}

func TestDrillTools(t *testing.T) {
	tests := []struct {
		name       string
		drill      graph.DrillData
		wantKind   prism.ToolKind
		wantOrigin [3]float64
		wantLength float64
	}{
		{
			name:       "pointed blind from top",
			drill:      graph.DrillData{Face: graph.FaceTop, Position: graph.Vec3{X: 10, Y: 10, Z: 99}, Diameter: 5, Depth: 12},
			wantKind:   prism.ToolDrill,
			wantOrigin: [3]float64{10, 10, 20 + build.Clearance},
			wantLength: 12 + build.Clearance,
		},
		{
			name:       "flat blind from left",
			drill:      graph.DrillData{Face: graph.FaceLeft, Position: graph.Vec3{Y: 30, Z: 10}, Diameter: 5, Depth: 12, Flat: true},
			wantKind:   prism.ToolCylinder,
			wantOrigin: [3]float64{-build.Clearance, 30, 10},
			wantLength: 12 + build.Clearance,
		},
		{
			name:       "through from back",
			drill:      graph.DrillData{Face: graph.FaceBack, Position: graph.Vec3{X: 50, Z: 10}, Diameter: 6},
			wantKind:   prism.ToolDrill,
			wantOrigin: [3]float64{50, 60 + build.Clearance, 10},
			wantLength: 60 + 2*build.Clearance,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			makePart(g, "p", graph.Vec3{X: 100, Y: 60, Z: 20}, tt.drill)
			s := buildOne(t, prism.New(), g)

			tools := s.(*prism.Solid).Tools()
			if len(tools) != 1 {
				t.Fatalf("tools = %d, want 1", len(tools))
			}
			tool := tools[0]
			if tool.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", tool.Kind, tt.wantKind)
			}
			if tool.Origin != tt.wantOrigin {
				t.Errorf("origin = %v, want %v", tool.Origin, tt.wantOrigin)
			}
			if tool.Length != tt.wantLength {
				t.Errorf("length = %f, want %f", tool.Length, tt.wantLength)
			}
			if tool.Radius != tt.drill.Diameter/2 {
				t.Errorf("radius = %f, want %f", tool.Radius, tt.drill.Diameter/2)
			}
		})
	}
}

func TestPocketToolFromBottom(t *testing.T) {
	g := graph.New()
	makePart(g, "p", graph.Vec3{X: 100, Y: 60, Z: 20},
		graph.PocketData{Face: graph.FaceBottom, Position: graph.Vec3{X: 10, Y: 10}, Size: graph.Vec3{X: 20, Y: 20, Z: 5}})
	s := buildOne(t, prism.New(), g)

	tools := s.(*prism.Solid).Tools()
	if len(tools) != 1 {
		t.Fatalf("tools = %d, want 1", len(tools))
	}
	want := kernel.NewBBox(10, 30, 10, 30, -build.Clearance, 5)
	if tools[0].Box != want {
		t.Errorf("pocket box = %v, want %v", tools[0].Box, want)
	}
}
