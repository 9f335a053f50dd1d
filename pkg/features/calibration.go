package features

// Default calibration constants. Lengths are in mm.
const (
	// Hole diameter window, exclusive on both ends. Larger cylinders are
	// fillets or shaft bodies rather than holes.
	DefaultMinHoleDiameter = 0.5
	DefaultMaxHoleDiameter = 50.0

	// A hole is through when any of its spans exceeds this fraction of the
	// corresponding solid span.
	DefaultThroughSpanRatio = 0.9

	// Tolerance for matching a standard drill size.
	DefaultStandardTolerance = 0.1

	// Insetness thresholds for pocket candidates.
	DefaultInsetTolerance = 0.5
	DefaultMinInset       = 1.0

	// Distances to a boundary at or below this are not pocket depths.
	DefaultMinPocketDepth = 0.5

	// Candidates whose centres are closer than this belong to one pocket.
	DefaultClusterRadius = 25.0
)

// DefaultStandardDiameters lists common metric drill sizes.
var DefaultStandardDiameters = []float64{3, 4, 5, 6, 8, 10, 12}

// Calibration holds the tunable detector thresholds.
type Calibration struct {
	MinHoleDiameter   float64   `yaml:"min_hole_diameter" json:"min_hole_diameter" validate:"gte=0"`
	MaxHoleDiameter   float64   `yaml:"max_hole_diameter" json:"max_hole_diameter" validate:"gtfield=MinHoleDiameter"`
	ThroughSpanRatio  float64   `yaml:"through_span_ratio" json:"through_span_ratio" validate:"gt=0,lte=1"`
	StandardDiameters []float64 `yaml:"standard_diameters" json:"standard_diameters" validate:"dive,gt=0"`
	StandardTolerance float64   `yaml:"standard_tolerance" json:"standard_tolerance" validate:"gte=0"`
	InsetTolerance    float64   `yaml:"inset_tolerance" json:"inset_tolerance" validate:"gte=0"`
	MinInset          float64   `yaml:"min_inset" json:"min_inset" validate:"gte=0"`
	MinPocketDepth    float64   `yaml:"min_pocket_depth" json:"min_pocket_depth" validate:"gte=0"`
	ClusterRadius     float64   `yaml:"cluster_radius" json:"cluster_radius" validate:"gt=0"`
}

// DefaultCalibration returns the default thresholds.
func DefaultCalibration() Calibration {
	return Calibration{
		MinHoleDiameter:   DefaultMinHoleDiameter,
		MaxHoleDiameter:   DefaultMaxHoleDiameter,
		ThroughSpanRatio:  DefaultThroughSpanRatio,
		StandardDiameters: append([]float64(nil), DefaultStandardDiameters...),
		StandardTolerance: DefaultStandardTolerance,
		InsetTolerance:    DefaultInsetTolerance,
		MinInset:          DefaultMinInset,
		MinPocketDepth:    DefaultMinPocketDepth,
		ClusterRadius:     DefaultClusterRadius,
	}
}

// IsStandard reports whether d is within tolerance of a standard size.
func (c Calibration) IsStandard(d float64) bool {
	for _, s := range c.StandardDiameters {
		if d >= s-c.StandardTolerance && d <= s+c.StandardTolerance {
			return true
		}
	}
	return false
}
