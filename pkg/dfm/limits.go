package dfm

import (
	"fmt"

	"github.com/chazu/partscan/pkg/features"
)

// Default machine envelope in mm.
const (
	DefaultMaxX = 600.0
	DefaultMaxY = 400.0
	DefaultMaxZ = 500.0
)

// Limits is the largest bounding box the shop accepts.
type Limits struct {
	MaxX float64 `yaml:"max_x" json:"max_x" validate:"gt=0"`
	MaxY float64 `yaml:"max_y" json:"max_y" validate:"gt=0"`
	MaxZ float64 `yaml:"max_z" json:"max_z" validate:"gt=0"`
}

// DefaultLimits returns the 600 x 400 x 500 mm envelope.
func DefaultLimits() Limits {
	return Limits{MaxX: DefaultMaxX, MaxY: DefaultMaxY, MaxZ: DefaultMaxZ}
}

// LimitError reports a part that does not fit the envelope.
type LimitError struct {
	Size   [3]float64
	Limits Limits
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("Part dimensions (%.1f × %.1f × %.1f mm) exceed maximum allowed size (%.0f × %.0f × %.0f mm).",
		e.Size[0], e.Size[1], e.Size[2], e.Limits.MaxX, e.Limits.MaxY, e.Limits.MaxZ)
}

// CheckLimits returns a *LimitError when any bounding box dimension of f
// exceeds l. A dimension exactly at the limit passes.
func CheckLimits(f features.PartFeatures, l Limits) error {
	size := [3]float64{f.BoundingBoxX, f.BoundingBoxY, f.BoundingBoxZ}
	if size[0] > l.MaxX || size[1] > l.MaxY || size[2] > l.MaxZ {
		return &LimitError{Size: size, Limits: l}
	}
	return nil
}
