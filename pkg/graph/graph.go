package graph

import (
	"errors"
	"fmt"
)

// ErrDuplicatePart is returned by AddPart when the name is taken.
var ErrDuplicatePart = errors.New("graph: part already defined")

// DesignGraph holds the parts a script defines. Roots are the part nodes
// in declaration order; features hang one level below. A graph is built
// once per evaluation and read-only afterwards.
type DesignGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Units     string            `json:"units"`
}

// New creates an empty DesignGraph in millimetres.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Units:     "mm",
	}
}

// AddNode stores n, replacing any node with the same ID.
func (g *DesignGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot appends id to the roots.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// AddPart adds a part with its features and registers it as a root.
// Feature IDs derive from the part name and the feature's position, so
// the same script always yields the same IDs. feats may only contain
// DrillData and PocketData.
func (g *DesignGraph) AddPart(name string, stock StockData, feats []NodeData) (*Node, error) {
	if name == "" {
		return nil, errors.New("graph: part name must not be empty")
	}
	if g.Lookup(name) != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicatePart, name)
	}

	part := &Node{
		ID:       NewNodeID("defpart/" + name),
		Kind:     NodePart,
		Name:     name,
		Children: make([]NodeID, 0, len(feats)),
		Data:     stock,
	}
	nodes := make([]*Node, 0, len(feats))
	for i, d := range feats {
		var kind NodeKind
		switch d.(type) {
		case DrillData:
			kind = NodeDrill
		case PocketData:
			kind = NodePocket
		default:
			return nil, fmt.Errorf("graph: part %q feature %d: %T is not a feature", name, i, d)
		}
		n := &Node{ID: NewNodeID(fmt.Sprintf("%s/%s/%d", kind, name, i)), Kind: kind, Data: d}
		nodes = append(nodes, n)
		part.Children = append(part.Children, n.ID)
	}

	for _, n := range nodes {
		g.AddNode(n)
	}
	g.AddNode(part)
	g.AddRoot(part.ID)
	return part, nil
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup is Lookup for tests and fixtures; it panics on a missing name.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Parts returns the root part nodes in declaration order.
func (g *DesignGraph) Parts() []*Node {
	var parts []*Node
	for _, id := range g.Roots {
		if n := g.Nodes[id]; n != nil && n.Kind == NodePart {
			parts = append(parts, n)
		}
	}
	return parts
}

// Children returns the existing children of n in order; dangling IDs are
// skipped and left for validation to report.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}
