package features

import (
	"math"

	"github.com/chazu/partscan/pkg/kernel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// PocketCandidate is a planar face inset from the stock boundary.
type PocketCandidate struct {
	Face  kernel.Face `json:"-"`
	Box   kernel.BBox `json:"box"`
	Axis  kernel.Axis `json:"axis"`  // axis the depth is measured along
	Depth float64     `json:"depth"` // distance to the nearest qualifying boundary
	Area  float64     `json:"area"`  // product of the two largest spans
}

// Pocket is one detected cavity: a cluster of candidates represented by
// its bottom face.
type Pocket struct {
	Bottom  PocketCandidate `json:"bottom"`
	Depth   float64         `json:"depth"`
	Area    float64         `json:"area"`
	Volume  float64         `json:"volume"`
	Members int             `json:"members"`
}

// PocketResult is the output of the pocket detector.
type PocketResult struct {
	Count       int     `json:"count"`
	AvgDepth    float64 `json:"avg_depth"`
	MaxDepth    float64 `json:"max_depth"`
	TotalVolume float64 `json:"total_volume"`
	Confidence  float64 `json:"confidence"`

	Pockets []Pocket `json:"pockets,omitempty"`
}

// inset reports whether face lies inside solid on axis a by more than the
// tolerance and at least the minimum inset, on both sides.
func (c Calibration) inset(face, solid kernel.BBox, a kernel.Axis) bool {
	lo := face.Min[a] - solid.Min[a]
	hi := solid.Max[a] - face.Max[a]
	ok := func(g float64) bool { return g > c.InsetTolerance && g >= c.MinInset }
	return ok(lo) && ok(hi)
}

// depthAlong returns the smaller distance from face to the two solid
// boundaries on axis a, considering only distances above the depth floor.
func (c Calibration) depthAlong(face, solid kernel.BBox, a kernel.Axis) (float64, bool) {
	depth := math.Inf(1)
	for _, g := range [2]float64{solid.Max[a] - face.Max[a], face.Min[a] - solid.Min[a]} {
		if g > c.MinPocketDepth && g < depth {
			depth = g
		}
	}
	return depth, !math.IsInf(depth, 1)
}

// normal returns the axis of the face's smallest span. For a planar face
// that is the plane normal.
func normal(face kernel.BBox) kernel.Axis {
	spans := face.Spans()
	n := kernel.AxisX
	for _, a := range kernel.Axes {
		if spans[a] < spans[n] {
			n = a
		}
	}
	return n
}

// pocketCandidate tests a planar face against the stock. The face must be
// inset on both axes of its plane; depth is measured along its normal to
// the nearer of the two boundaries, so faces of any of the six
// orientations qualify.
func (c Calibration) pocketCandidate(face, solid kernel.BBox) (PocketCandidate, bool) {
	a := normal(face)
	b, cc := a.Transverse()
	if !c.inset(face, solid, b) || !c.inset(face, solid, cc) {
		return PocketCandidate{}, false
	}
	depth, ok := c.depthAlong(face, solid, a)
	if !ok {
		return PocketCandidate{}, false
	}

	spans := face.Spans()
	sortSpans(&spans)
	return PocketCandidate{
		Box:   face,
		Axis:  a,
		Depth: depth,
		Area:  spans[1] * spans[2],
	}, true
}

// Pockets runs the pocket detector. It never panics; a systemic failure
// yields the zero result.
func (d *Detector) Pockets(s kernel.Solid) (res PocketResult) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("pocket detection failed", "panic", r)
			res = PocketResult{}
		}
	}()

	faces, err := facesOf(s, kernel.GeomPlane, d.log)
	if err != nil {
		d.log.Warn("pocket detection failed", "error", err)
		return PocketResult{}
	}
	solid := s.BoundingBox()

	var cands []PocketCandidate
	for _, f := range faces {
		pc, ok := d.cal.pocketCandidate(f.box, solid)
		if !ok {
			continue
		}
		pc.Face = f.face
		cands = append(cands, pc)
	}
	if len(cands) == 0 {
		return PocketResult{}
	}

	centres := make([]r3.Vec, len(cands))
	for i, pc := range cands {
		centres[i] = pc.Box.Center()
	}

	var depths []float64
	for _, members := range clusterByDistance(centres, d.cal.ClusterRadius) {
		// The largest face is taken as the bottom; the first wins ties.
		bottom := cands[members[0]]
		for _, m := range members[1:] {
			if cands[m].Area > bottom.Area {
				bottom = cands[m]
			}
		}
		p := Pocket{
			Bottom:  bottom,
			Depth:   bottom.Depth,
			Area:    bottom.Area,
			Volume:  bottom.Area * bottom.Depth,
			Members: len(members),
		}
		res.Pockets = append(res.Pockets, p)
		res.TotalVolume += p.Volume
		depths = append(depths, p.Depth)
	}

	res.Count = len(res.Pockets)
	res.AvgDepth = math.Min(stat.Mean(depths, nil), floats.Max(depths))
	res.MaxDepth = floats.Max(depths)
	switch {
	case res.TotalVolume > 0:
		res.Confidence = PocketConfidence
	default:
		res.Confidence = PocketNoVolumeConfidence
	}
	d.log.Debug("pockets detected", "candidates", len(cands), "pockets", res.Count)
	return res
}
