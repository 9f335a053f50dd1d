package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks building
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks building
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // offending node, zero for graph-level findings
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

func (w ValidationWarning) String() string {
	if w.NodeID.IsZero() {
		return w.Message
	}
	return fmt.Sprintf("node %s: %s", w.NodeID.Short(), w.Message)
}

// ValidationResult holds blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the graph has no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Err returns the first blocking error, or nil.
func (r ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// findings accumulates structural results for one pass.
type findings []ValidationError

func (f *findings) errorf(id NodeID, format string, args ...any) {
	*f = append(*f, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
}

func (f *findings) warnf(id NodeID, format string, args ...any) {
	*f = append(*f, ValidationError{NodeID: id, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
}

// ValidateStructure runs the structural checks without touching geometry.
// Orphans come back with SeverityWarning; everything else is an error.
func ValidateStructure(g *DesignGraph) []ValidationError {
	var f findings
	checkCycles(g, &f)
	checkReferences(g, &f)
	checkNames(g, &f)
	checkReachable(g, &f)
	checkFaces(g, &f)
	checkNesting(g, &f)
	return f
}

// Validate runs the structural and geometric checks.
func Validate(g *DesignGraph) ValidationResult {
	var r ValidationResult
	for _, e := range ValidateStructure(g) {
		if e.Severity == SeverityWarning {
			r.Warnings = append(r.Warnings, ValidationWarning{NodeID: e.NodeID, Message: e.Message})
			continue
		}
		r.Errors = append(r.Errors, e)
	}
	errs, warnings := validateGeometry(g)
	r.Errors = append(r.Errors, errs...)
	r.Warnings = append(r.Warnings, warnings...)
	return r
}

// checkCycles reports the first cycle found by a depth-first walk. A node
// on the current path is "open"; reaching an open node closes a cycle.
func checkCycles(g *DesignGraph, f *findings) {
	open := make(map[NodeID]bool)
	done := make(map[NodeID]bool)

	var walk func(id NodeID) bool
	walk = func(id NodeID) bool {
		if done[id] {
			return false
		}
		if open[id] {
			f.errorf(id, "cycle detected: node %s is part of a cycle", id.Short())
			return true
		}
		n := g.Nodes[id]
		if n == nil {
			return false
		}
		open[id] = true
		for _, child := range n.Children {
			if walk(child) {
				return true
			}
		}
		delete(open, id)
		done[id] = true
		return false
	}

	for id := range g.Nodes {
		if walk(id) {
			return
		}
	}
}

func checkReferences(g *DesignGraph, f *findings) {
	for _, n := range g.Nodes {
		for _, child := range n.Children {
			if g.Nodes[child] == nil {
				f.errorf(n.ID, "child reference %s does not exist", child.Short())
			}
		}
	}
	for _, rid := range g.Roots {
		if g.Nodes[rid] == nil {
			f.errorf(ZeroID, "root reference %s does not exist", rid.Short())
		}
	}
}

// checkNames verifies the name index and catches parts declared twice.
// Part IDs derive from the name, so a redefinition shows up as a
// repeated root.
func checkNames(g *DesignGraph, f *findings) {
	for name, id := range g.NameIndex {
		if g.Nodes[id] == nil {
			f.errorf(ZeroID, "name index entry %q references non-existent node %s", name, id.Short())
		}
	}

	counts := make(map[string]int)
	for _, n := range g.Nodes {
		if n.Name != "" {
			counts[n.Name]++
		}
	}
	for name, c := range counts {
		if c > 1 {
			f.errorf(ZeroID, "duplicate name %q assigned to %d nodes", name, c)
		}
	}

	seen := make(map[NodeID]bool, len(g.Roots))
	for _, rid := range g.Roots {
		if seen[rid] {
			f.errorf(rid, "part %q is defined more than once", g.label(rid))
		}
		seen[rid] = true
	}
}

// checkReachable warns about nodes no root leads to.
func checkReachable(g *DesignGraph, f *findings) {
	reached := make(map[NodeID]bool, len(g.Nodes))
	stack := append([]NodeID(nil), g.Roots...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := g.Nodes[id]
		if n == nil || reached[id] {
			continue
		}
		reached[id] = true
		stack = append(stack, n.Children...)
	}

	for id := range g.Nodes {
		if !reached[id] {
			f.warnf(id, "node %q is not reachable from any root (orphan)", g.label(id))
		}
	}
}

func checkFaces(g *DesignGraph, f *findings) {
	for _, n := range g.Nodes {
		var face FaceID
		switch d := n.Data.(type) {
		case DrillData:
			face = d.Face
		case PocketData:
			face = d.Face
		default:
			continue
		}
		if !ValidFaceIDs[face] {
			f.errorf(n.ID, "invalid face %q", face)
		}
	}
}

// checkNesting enforces the two-level shape: parts at the roots carrying
// stock, features below them and nothing below a feature.
func checkNesting(g *DesignGraph, f *findings) {
	for _, rid := range g.Roots {
		if n := g.Nodes[rid]; n != nil && n.Kind != NodePart {
			f.errorf(rid, "root is a %s, not a part", n.Kind)
		}
	}

	for _, n := range g.Nodes {
		if n.Kind != NodePart {
			if len(n.Children) > 0 {
				f.errorf(n.ID, "%s node has children", n.Kind)
			}
			continue
		}
		if _, ok := n.Data.(StockData); !ok {
			f.errorf(n.ID, "part has %T data, want stock", n.Data)
		}
		for _, c := range g.Children(n) {
			if c.Kind == NodePart {
				f.errorf(n.ID, "part contains part %q", c.Name)
			}
		}
	}
}

// label names a node for messages: its user name, else its short ID.
func (g *DesignGraph) label(id NodeID) string {
	if n := g.Nodes[id]; n != nil && n.Name != "" {
		return n.Name
	}
	return id.Short()
}
