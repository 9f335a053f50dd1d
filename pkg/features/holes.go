package features

import (
	"math"

	"github.com/chazu/partscan/pkg/kernel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HoleKind classifies a hole by penetration.
type HoleKind int

const (
	HoleBlind HoleKind = iota
	HoleThrough
)

func (k HoleKind) String() string {
	if k == HoleThrough {
		return "through"
	}
	return "blind"
}

// HoleCandidate is a cylindrical face accepted as a hole.
type HoleCandidate struct {
	Diameter float64     `json:"diameter"`
	Depth    float64     `json:"depth"`
	Kind     HoleKind    `json:"kind"`
	Standard bool        `json:"standard"`
	Box      kernel.BBox `json:"box"`
}

// Ratio returns the depth to diameter ratio.
func (h HoleCandidate) Ratio() float64 {
	return h.Depth / h.Diameter
}

// HoleResult is the output of the hole detector.
type HoleResult struct {
	ThroughCount     int     `json:"through_count"`
	BlindCount       int     `json:"blind_count"`
	AvgRatio         float64 `json:"avg_ratio"`
	MaxRatio         float64 `json:"max_ratio"`
	NonStandardCount int     `json:"non_standard_count"`
	Confidence       float64 `json:"confidence"`

	Holes []HoleCandidate `json:"holes,omitempty"`
}

// holeCandidate measures a cylindrical face against the solid spans. The
// diameter is the mean of the two smallest spans and the depth the largest.
func (c Calibration) holeCandidate(box kernel.BBox, solid [3]float64) (HoleCandidate, bool) {
	spans := box.Spans()
	sorted := spans
	sortSpans(&sorted)

	dia := (sorted[0] + sorted[1]) / 2
	if !(dia > c.MinHoleDiameter && dia < c.MaxHoleDiameter) {
		return HoleCandidate{}, false
	}

	h := HoleCandidate{
		Diameter: dia,
		Depth:    sorted[2],
		Kind:     HoleBlind,
		Standard: c.IsStandard(dia),
		Box:      box,
	}
	for i, s := range spans {
		if s > c.ThroughSpanRatio*solid[i] {
			h.Kind = HoleThrough
			break
		}
	}
	return h, true
}

// Holes runs the hole detector. It never panics; a systemic failure
// yields the zero result.
func (d *Detector) Holes(s kernel.Solid) (res HoleResult) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("hole detection failed", "panic", r)
			res = HoleResult{}
		}
	}()

	faces, err := facesOf(s, kernel.GeomCylinder, d.log)
	if err != nil {
		d.log.Warn("hole detection failed", "error", err)
		return HoleResult{}
	}
	solid := s.BoundingBox().Spans()

	var ratios []float64
	for _, f := range faces {
		h, ok := d.cal.holeCandidate(f.box, solid)
		if !ok {
			d.log.Debug("cylinder outside hole window", "index", f.index, "box", f.box)
			continue
		}
		res.Holes = append(res.Holes, h)
		if !h.Standard {
			res.NonStandardCount++
		}
		if h.Kind == HoleThrough {
			res.ThroughCount++
			continue
		}
		res.BlindCount++
		ratios = append(ratios, h.Ratio())
	}

	if len(ratios) > 0 {
		res.MaxRatio = floats.Max(ratios)
		res.AvgRatio = math.Min(stat.Mean(ratios, nil), res.MaxRatio)
	}
	if res.ThroughCount+res.BlindCount > 0 {
		res.Confidence = HoleConfidence
	}
	return res
}

// sortSpans orders three spans ascending.
func sortSpans(s *[3]float64) {
	if s[0] > s[1] {
		s[0], s[1] = s[1], s[0]
	}
	if s[1] > s[2] {
		s[1], s[2] = s[2], s[1]
	}
	if s[0] > s[1] {
		s[0], s[1] = s[1], s[0]
	}
}
