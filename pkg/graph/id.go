package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/chazu/partscan/pkg/kernel"
)

// NodeID is a content-addressed identifier: the SHA-256 of a node path
// such as "defpart/bracket" or "drill/bracket/0".
type NodeID [32]byte

// ZeroID is the zero NodeID, used for "no node".
var ZeroID NodeID

// NewNodeID derives a NodeID from a node path.
func NewNodeID(path string) NodeID {
	return NodeID(sha256.Sum256([]byte(path)))
}

// IsZero reports whether id is the zero NodeID.
func (id NodeID) IsZero() bool { return id == ZeroID }

// String returns the full hex form.
func (id NodeID) String() string { return hex.EncodeToString(id[:]) }

// Short returns an 8 character prefix for messages.
func (id NodeID) Short() string { return id.String()[:8] }

// MarshalText encodes the ID as hex.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText decodes a hex ID.
func (id *NodeID) UnmarshalText(b []byte) error {
	if hex.DecodedLen(len(b)) != len(id) {
		return fmt.Errorf("graph: node id has %d hex digits, want %d", len(b), 2*len(id))
	}
	_, err := hex.Decode(id[:], b)
	return err
}

// Vec3 is a point or size in part coordinates, in mm.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// At returns the component along a.
func (v Vec3) At(a kernel.Axis) float64 {
	switch a {
	case kernel.AxisX:
		return v.X
	case kernel.AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// FaceID names one of the six faces of a part's stock.
type FaceID string

const (
	FaceTop    FaceID = "top"    // +z
	FaceBottom FaceID = "bottom" // -z
	FaceLeft   FaceID = "left"   // -x
	FaceRight  FaceID = "right"  // +x
	FaceFront  FaceID = "front"  // -y
	FaceBack   FaceID = "back"   // +y
)

// ValidFaceIDs is the set of recognised faces.
var ValidFaceIDs = map[FaceID]bool{
	FaceTop:    true,
	FaceBottom: true,
	FaceLeft:   true,
	FaceRight:  true,
	FaceFront:  true,
	FaceBack:   true,
}

// Direction returns the direction a tool advances when cutting into the
// face, which is the reverse of the face's outward normal.
func (f FaceID) Direction() (kernel.Direction, bool) {
	switch f {
	case FaceTop:
		return kernel.NegZ, true
	case FaceBottom:
		return kernel.PosZ, true
	case FaceLeft:
		return kernel.PosX, true
	case FaceRight:
		return kernel.NegX, true
	case FaceFront:
		return kernel.PosY, true
	case FaceBack:
		return kernel.NegY, true
	default:
		return 0, false
	}
}
