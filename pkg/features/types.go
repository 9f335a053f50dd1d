package features

// Confidence tiers. Scores are fixed heuristic certainties, not probabilities.
const (
	MeasuredConfidence       = 1.0  // bounding box and volume come straight from the kernel
	HoleConfidence           = 0.85 // any hole detected
	PocketConfidence         = 0.9  // pockets detected with a computed volume
	PocketNoVolumeConfidence = 0.7  // pockets detected but no volume could be computed
)

// PartFeatures is the feature summary of one solid. Lengths are in mm and
// volumes in mm³.
type PartFeatures struct {
	BoundingBoxX float64 `json:"bounding_box_x"`
	BoundingBoxY float64 `json:"bounding_box_y"`
	BoundingBoxZ float64 `json:"bounding_box_z"`
	Volume       float64 `json:"volume"`

	ThroughHoleCount            int     `json:"through_hole_count"`
	BlindHoleCount              int     `json:"blind_hole_count"`
	BlindHoleAvgDepthToDiameter float64 `json:"blind_hole_avg_depth_to_diameter"`
	BlindHoleMaxDepthToDiameter float64 `json:"blind_hole_max_depth_to_diameter"`

	PocketCount       int     `json:"pocket_count"`
	PocketTotalVolume float64 `json:"pocket_total_volume"`
	PocketAvgDepth    float64 `json:"pocket_avg_depth"`
	PocketMaxDepth    float64 `json:"pocket_max_depth"`

	NonStandardHoleCount int `json:"non_standard_hole_count"`
}

// HoleCount returns the total number of detected holes.
func (p PartFeatures) HoleCount() int {
	return p.ThroughHoleCount + p.BlindHoleCount
}

// FeatureConfidence holds one score in [0,1] per feature category.
type FeatureConfidence struct {
	BoundingBox  float64 `json:"bounding_box"`
	Volume       float64 `json:"volume"`
	ThroughHoles float64 `json:"through_holes"`
	BlindHoles   float64 `json:"blind_holes"`
	Pockets      float64 `json:"pockets"`
}
