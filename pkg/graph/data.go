package graph

import "github.com/chazu/partscan/pkg/kernel"

// ---------------------------------------------------------------------------
// Stock
// ---------------------------------------------------------------------------

// StockData is the rectangular blank a part is machined from. Its minimum
// corner sits at the part origin.
type StockData struct {
	Size     Vec3   `json:"size"` // length (x) x width (y) x height (z) in mm
	Material string `json:"material,omitempty"`
}

func (StockData) nodeData() {}

// Bounds returns the stock envelope in part coordinates.
func (s StockData) Bounds() kernel.BBox {
	return kernel.NewBBox(0, s.Size.X, 0, s.Size.Y, 0, s.Size.Z)
}

// ---------------------------------------------------------------------------
// Drill
// ---------------------------------------------------------------------------

// DrillData specifies a hole bored into one face of a part.
type DrillData struct {
	Face     FaceID  `json:"face"`
	Position Vec3    `json:"position"` // hole centre in part coords; normal component ignored
	Diameter float64 `json:"diameter"` // mm
	Depth    float64 `json:"depth"`    // mm, 0 = through
	Flat     bool    `json:"flat,omitempty"`
}

func (DrillData) nodeData() {}

// Through reports whether the hole passes through the part.
func (d DrillData) Through() bool { return d.Depth == 0 }

// ---------------------------------------------------------------------------
// Pocket
// ---------------------------------------------------------------------------

// PocketData specifies a rectangular pocket milled into one face. The
// pocket spans [Position, Position+Size] on the face's transverse axes; its
// depth is the Size component along the face normal.
type PocketData struct {
	Face     FaceID `json:"face"`
	Position Vec3   `json:"position"` // min corner in part coords; normal component ignored
	Size     Vec3   `json:"size"`
}

func (PocketData) nodeData() {}

// Depth returns the pocket depth for its face.
func (p PocketData) Depth() float64 {
	dir, ok := p.Face.Direction()
	if !ok {
		return 0
	}
	return p.Size.At(dir.Axis())
}
