package graph

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/chazu/partscan/pkg/kernel"
)

func TestNewDesignGraph(t *testing.T) {
	g := New()
	if g.Nodes == nil {
		t.Fatal("Nodes map should be initialized")
	}
	if g.NameIndex == nil {
		t.Fatal("NameIndex map should be initialized")
	}
	if g.Units != "mm" {
		t.Errorf("units = %q, want %q", g.Units, "mm")
	}
	if g.NodeCount() != 0 {
		t.Errorf("empty graph should have 0 nodes, got %d", g.NodeCount())
	}
}

func TestAddNodeAndLookup(t *testing.T) {
	g := New()

	id := NewNodeID("defpart/bracket")
	g.AddNode(&Node{
		ID:   id,
		Kind: NodePart,
		Name: "bracket",
		Data: StockData{Size: Vec3{100, 50, 20}},
	})
	g.AddRoot(id)

	if g.NodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.NodeCount())
	}
	found := g.Lookup("bracket")
	if found == nil || found.ID != id {
		t.Fatal("Lookup('bracket') returned wrong node")
	}
	if g.MustLookup("bracket").ID != id {
		t.Error("MustLookup returned wrong node")
	}
	if g.Lookup("nonexistent") != nil {
		t.Error("Lookup should return nil for missing name")
	}
	if got := g.Get(id); got == nil || got.Name != "bracket" {
		t.Error("Get by ID failed")
	}
	if len(g.Roots) != 1 || g.Roots[0] != id {
		t.Errorf("roots = %v, want [%s]", g.Roots, id.Short())
	}
}

func TestAddPart(t *testing.T) {
	g := New()
	stock := StockData{Size: Vec3{100, 60, 20}}
	feats := []NodeData{
		DrillData{Face: FaceTop, Position: Vec3{10, 10, 0}, Diameter: 6},
		PocketData{Face: FaceTop, Position: Vec3{30, 20, 0}, Size: Vec3{40, 20, 8}},
	}

	part, err := g.AddPart("bracket", stock, feats)
	if err != nil {
		t.Fatalf("AddPart() error = %v", err)
	}
	if part.ID != NewNodeID("defpart/bracket") || part.Kind != NodePart {
		t.Errorf("part = %s %s, want the defpart/bracket part", part.Kind, part.ID.Short())
	}
	if g.NodeCount() != 3 || len(g.Roots) != 1 || g.Roots[0] != part.ID {
		t.Fatalf("nodes = %d, roots = %d, want 3 and 1", g.NodeCount(), len(g.Roots))
	}

	kids := g.Children(part)
	if len(kids) != 2 {
		t.Fatalf("children = %d, want 2", len(kids))
	}
	if kids[0].ID != NewNodeID("drill/bracket/0") || kids[0].Kind != NodeDrill {
		t.Errorf("child 0 = %s %s, want drill/bracket/0", kids[0].Kind, kids[0].ID.Short())
	}
	if kids[1].ID != NewNodeID("pocket/bracket/1") || kids[1].Kind != NodePocket {
		t.Errorf("child 1 = %s %s, want pocket/bracket/1", kids[1].Kind, kids[1].ID.Short())
	}
	if r := Validate(g); !r.OK() || len(r.Warnings) != 0 {
		t.Errorf("AddPart graph should validate: %v %v", r.Errors, r.Warnings)
	}
}

func TestAddPartErrors(t *testing.T) {
	g := New()
	stock := StockData{Size: Vec3{10, 10, 10}}
	if _, err := g.AddPart("p", stock, nil); err != nil {
		t.Fatalf("AddPart() error = %v", err)
	}

	if _, err := g.AddPart("p", stock, nil); !errors.Is(err, ErrDuplicatePart) {
		t.Errorf("duplicate: err = %v, want ErrDuplicatePart", err)
	}
	if _, err := g.AddPart("", stock, nil); err == nil {
		t.Error("empty name should be rejected")
	}
	if _, err := g.AddPart("q", stock, []NodeData{stock}); err == nil {
		t.Error("stock as a feature should be rejected")
	}
	if g.NodeCount() != 1 || len(g.Roots) != 1 {
		t.Errorf("failed AddPart calls changed the graph: %d nodes, %d roots", g.NodeCount(), len(g.Roots))
	}
}

func TestMustLookupPanics(t *testing.T) {
	g := New()
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLookup should panic for a missing name")
		}
	}()
	g.MustLookup("missing")
}

func TestPartsInRootOrder(t *testing.T) {
	g := New()
	for _, name := range []string{"c", "a", "b"} {
		id := NewNodeID("defpart/" + name)
		g.AddNode(&Node{ID: id, Kind: NodePart, Name: name, Data: StockData{Size: Vec3{1, 1, 1}}})
		g.AddRoot(id)
	}
	parts := g.Parts()
	if len(parts) != 3 {
		t.Fatalf("parts = %d, want 3", len(parts))
	}
	for i, want := range []string{"c", "a", "b"} {
		if parts[i].Name != want {
			t.Errorf("parts[%d] = %q, want %q", i, parts[i].Name, want)
		}
	}
}

func TestChildrenSkipsMissing(t *testing.T) {
	g := New()
	drill := NewNodeID("drill/p/0")
	g.AddNode(&Node{ID: drill, Kind: NodeDrill, Data: DrillData{Face: FaceTop, Diameter: 5}})
	part := &Node{ID: NewNodeID("defpart/p"), Kind: NodePart, Children: []NodeID{drill, NewNodeID("gone")}}
	g.AddNode(part)

	if got := g.Children(part); len(got) != 1 || got[0].ID != drill {
		t.Errorf("Children() = %v, want only the drill", got)
	}
}

func TestNodeID(t *testing.T) {
	a := NewNodeID("defpart/a")
	if a != NewNodeID("defpart/a") {
		t.Error("NewNodeID should be deterministic")
	}
	if a == NewNodeID("defpart/b") {
		t.Error("distinct paths should give distinct IDs")
	}
	if a.IsZero() || !ZeroID.IsZero() {
		t.Error("IsZero mismatch")
	}
	if len(a.Short()) != 8 || a.Short() != a.String()[:8] {
		t.Errorf("Short() = %q, want 8 character prefix of %q", a.Short(), a.String())
	}

	b, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	var back NodeID
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if back != a {
		t.Errorf("round trip = %s, want %s", back.Short(), a.Short())
	}
	if err := back.UnmarshalText([]byte("abcd")); err == nil {
		t.Error("short hex should be rejected")
	}
}

func TestFaceDirection(t *testing.T) {
	tests := []struct {
		face FaceID
		want kernel.Direction
	}{
		{FaceTop, kernel.NegZ},
		{FaceBottom, kernel.PosZ},
		{FaceLeft, kernel.PosX},
		{FaceRight, kernel.NegX},
		{FaceFront, kernel.PosY},
		{FaceBack, kernel.NegY},
	}
	for _, tt := range tests {
		t.Run(string(tt.face), func(t *testing.T) {
			got, ok := tt.face.Direction()
			if !ok || got != tt.want {
				t.Errorf("Direction() = %v, %v, want %v, true", got, ok, tt.want)
			}
			if !ValidFaceIDs[tt.face] {
				t.Errorf("%q missing from ValidFaceIDs", tt.face)
			}
		})
	}
	if _, ok := FaceID("side").Direction(); ok {
		t.Error("unknown face should have no direction")
	}
}

func TestPocketDepth(t *testing.T) {
	tests := []struct {
		face FaceID
		want float64
	}{
		{FaceTop, 10},
		{FaceBottom, 10},
		{FaceLeft, 20},
		{FaceFront, 15},
		{FaceID("nope"), 0},
	}
	for _, tt := range tests {
		p := PocketData{Face: tt.face, Size: Vec3{20, 15, 10}}
		if got := p.Depth(); got != tt.want {
			t.Errorf("Depth(%s) = %f, want %f", tt.face, got, tt.want)
		}
	}
}

func TestNodeKindString(t *testing.T) {
	for kind, want := range map[NodeKind]string{
		NodePart: "part", NodeDrill: "drill", NodePocket: "pocket", NodeKind(9): "unknown",
	} {
		if got := kind.String(); got != want {
			t.Errorf("NodeKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
