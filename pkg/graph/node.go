package graph

// NodeKind enumerates the types of nodes in the design graph.
type NodeKind int

const (
	NodePart   NodeKind = iota // rectangular stock with features as children
	NodeDrill                  // hole operation
	NodePocket                 // rectangular pocket operation
)

func (k NodeKind) String() string {
	switch k {
	case NodePart:
		return "part"
	case NodeDrill:
		return "drill"
	case NodePocket:
		return "pocket"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the design graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
