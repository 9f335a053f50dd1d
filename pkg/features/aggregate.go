package features

import "github.com/chazu/partscan/pkg/kernel"

// Aggregate merges detector outputs with the measured bounding box and
// volume into a feature summary and its confidence scores.
func Aggregate(bbox kernel.BBox, volume float64, holes HoleResult, pockets PocketResult) (PartFeatures, FeatureConfidence) {
	spans := bbox.Spans()
	f := PartFeatures{
		BoundingBoxX: spans[kernel.AxisX],
		BoundingBoxY: spans[kernel.AxisY],
		BoundingBoxZ: spans[kernel.AxisZ],
		Volume:       volume,

		ThroughHoleCount:            holes.ThroughCount,
		BlindHoleCount:              holes.BlindCount,
		BlindHoleAvgDepthToDiameter: holes.AvgRatio,
		BlindHoleMaxDepthToDiameter: holes.MaxRatio,
		NonStandardHoleCount:        holes.NonStandardCount,

		PocketCount:       pockets.Count,
		PocketTotalVolume: pockets.TotalVolume,
		PocketAvgDepth:    pockets.AvgDepth,
		PocketMaxDepth:    pockets.MaxDepth,
	}

	c := FeatureConfidence{
		BoundingBox: MeasuredConfidence,
		Volume:      MeasuredConfidence,
	}
	if holes.ThroughCount > 0 {
		c.ThroughHoles = holes.Confidence
	}
	if holes.BlindCount > 0 {
		c.BlindHoles = holes.Confidence
	}
	if pockets.Count > 0 {
		c.Pockets = pockets.Confidence
	}
	return f, c
}
