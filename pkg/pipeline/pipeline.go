// Package pipeline runs the per-part processing steps: feature detection
// under a deadline, machine envelope check and DFM analysis. Failures are
// collected into the Result instead of being returned.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chazu/partscan/pkg/dfm"
	"github.com/chazu/partscan/pkg/features"
	"github.com/chazu/partscan/pkg/kernel"
	"github.com/chazu/partscan/pkg/logging"
	"github.com/google/uuid"
)

// DefaultTimeout bounds feature detection for one part.
const DefaultTimeout = 30 * time.Second

var (
	// ErrTimeout is recorded when detection does not finish in time.
	ErrTimeout = errors.New("pipeline: feature detection timed out")
	// ErrNoSolid is recorded when Process is given a nil solid.
	ErrNoSolid = errors.New("pipeline: no solid to process")
)

// Result is the outcome of processing one part.
type Result struct {
	PartID     uuid.UUID                  `json:"part_id"`
	Name       string                     `json:"name"`
	Features   features.PartFeatures      `json:"features"`
	Confidence features.FeatureConfidence `json:"confidence"`
	Issues     []dfm.Issue                `json:"dfm_issues"`
	Errors     []string                   `json:"errors"`
}

// OK reports whether processing completed without errors.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Processor runs the pipeline. It is safe for concurrent use.
type Processor struct {
	detector *features.Detector
	limits   dfm.Limits
	timeout  time.Duration
	log      *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithDetector sets the feature detector.
func WithDetector(d *features.Detector) Option {
	return func(p *Processor) {
		if d != nil {
			p.detector = d
		}
	}
}

// WithLimits sets the machine envelope.
func WithLimits(l dfm.Limits) Option {
	return func(p *Processor) { p.limits = l }
}

// WithTimeout sets the detection deadline. Zero or negative disables it;
// the caller's context still applies.
func WithTimeout(d time.Duration) Option {
	return func(p *Processor) { p.timeout = d }
}

// WithLogger sets the logger. Nil means discard.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.log = logging.OrDiscard(l) }
}

// New returns a Processor with default detector, limits and timeout.
func New(opts ...Option) *Processor {
	p := &Processor{
		detector: features.New(),
		limits:   dfm.DefaultLimits(),
		timeout:  DefaultTimeout,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs every step for one solid. DFM analysis only runs when the
// earlier steps recorded no error.
func (p *Processor) Process(ctx context.Context, name string, s kernel.Solid) Result {
	res := Result{PartID: uuid.New(), Name: name}
	log := p.log.With("part", name, "part_id", res.PartID.String())
	start := time.Now()

	f, c, err := p.detect(ctx, s)
	if err != nil {
		log.Error("feature detection failed", "error", err)
		res.Errors = append(res.Errors, fmt.Sprintf("Failed to detect features: %v", err))
	} else {
		res.Features, res.Confidence = f, c
		log.Info("features detected",
			"bbox", fmt.Sprintf("%.1f × %.1f × %.1f", f.BoundingBoxX, f.BoundingBoxY, f.BoundingBoxZ),
			"volume", f.Volume,
			"through_holes", f.ThroughHoleCount,
			"blind_holes", f.BlindHoleCount,
			"pockets", f.PocketCount)
	}

	if res.OK() {
		if err := dfm.CheckLimits(res.Features, p.limits); err != nil {
			log.Error("bounding box validation failed", "error", err)
			res.Errors = append(res.Errors, err.Error())
		}
	}

	if res.OK() {
		res.Issues = dfm.Analyze(res.Features)
		log.Info("dfm analysis complete", "issues", len(res.Issues), "worst", string(dfm.Worst(res.Issues)))
	}

	log.Info("part processed", "ok", res.OK(), "elapsed", time.Since(start))
	return res
}

type detection struct {
	features   features.PartFeatures
	confidence features.FeatureConfidence
	err        error
}

// detect runs the detector in its own goroutine so a stuck kernel cannot
// hold the caller past the deadline. A panic is converted to an error.
func (p *Processor) detect(ctx context.Context, s kernel.Solid) (features.PartFeatures, features.FeatureConfidence, error) {
	if s == nil {
		return features.PartFeatures{}, features.FeatureConfidence{}, ErrNoSolid
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ch := make(chan detection, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- detection{err: fmt.Errorf("pipeline: panic during detection: %v", r)}
			}
		}()
		f, c := p.detector.Detect(s)
		ch <- detection{features: f, confidence: c}
	}()

	select {
	case d := <-ch:
		return d.features, d.confidence, d.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return features.PartFeatures{}, features.FeatureConfidence{}, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
		return features.PartFeatures{}, features.FeatureConfidence{}, fmt.Errorf("pipeline: %w", ctx.Err())
	}
}
