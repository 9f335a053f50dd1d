package features

import (
	"log/slog"

	"github.com/chazu/partscan/pkg/kernel"
)

// Detector runs the hole and pocket detectors with a fixed calibration.
type Detector struct {
	cal Calibration
	log *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithCalibration replaces the default thresholds.
func WithCalibration(c Calibration) Option {
	return func(d *Detector) {
		c.StandardDiameters = append([]float64(nil), c.StandardDiameters...)
		d.cal = c
	}
}

// WithLogger sets the logger for absorbed faults. A nil logger discards.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.log = l
		}
	}
}

// New returns a Detector with the default calibration.
func New(opts ...Option) *Detector {
	d := &Detector{
		cal: DefaultCalibration(),
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Calibration returns a copy of the detector thresholds.
func (d *Detector) Calibration() Calibration {
	c := d.cal
	c.StandardDiameters = append([]float64(nil), c.StandardDiameters...)
	return c
}

// Detect extracts the full feature summary of s. Each detector degrades
// independently, so a failure in one category leaves the others intact.
// Detect never panics.
func (d *Detector) Detect(s kernel.Solid) (PartFeatures, FeatureConfidence) {
	holes := d.Holes(s)
	pockets := d.Pockets(s)
	box, volume, ok := d.measure(s)
	f, c := Aggregate(box, volume, holes, pockets)
	if !ok {
		c.BoundingBox, c.Volume = 0, 0
	}
	return f, c
}

// measure reads the bounding box and volume of s. A panicking kernel
// yields zero measurements and ok false.
func (d *Detector) measure(s kernel.Solid) (box kernel.BBox, volume float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("measurement failed", "panic", r)
			box, volume, ok = kernel.BBox{}, 0, false
		}
	}()
	return s.BoundingBox(), s.Volume(), true
}
