// Package dfm runs design-for-manufacturing checks over detected part
// features and enforces the machine envelope.
package dfm

import (
	"fmt"

	"github.com/chazu/partscan/pkg/features"
)

// Severity grades a manufacturability issue.
type Severity string

const (
	SeverityCritical Severity = "critical" // requires manual review
	SeverityWarning  Severity = "warning"  // raises cost or risk
	SeverityInfo     Severity = "info"     // informational
)

// Blind hole depth:diameter thresholds.
const (
	DeepHoleWarningRatio  = 6.0
	DeepHoleCriticalRatio = 10.0
)

// Issue is a single manufacturability finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
}

// Analyze returns the manufacturability issues for f, most severe check
// first. A part without findings yields nil.
func Analyze(f features.PartFeatures) []Issue {
	var issues []Issue
	issues = append(issues, deepHoles(f)...)
	issues = append(issues, smallFeatures(f)...)
	issues = append(issues, nonStandardHoles(f)...)
	return issues
}

func deepHoles(f features.PartFeatures) []Issue {
	if f.BlindHoleCount == 0 {
		return nil
	}
	r := f.BlindHoleMaxDepthToDiameter
	switch {
	case r > DeepHoleCriticalRatio:
		return []Issue{{
			Severity: SeverityCritical,
			Message: fmt.Sprintf("Very deep blind hole detected (depth/diameter ratio: %.1f). "+
				"Ratios >10 require special tooling and may be difficult to manufacture.", r),
		}}
	case r > DeepHoleWarningRatio:
		return []Issue{{
			Severity: SeverityWarning,
			Message: fmt.Sprintf("Deep blind hole detected (depth/diameter ratio: %.1f). "+
				"Ratios >6 are challenging to drill and may increase cost.", r),
		}}
	}
	return nil
}

// smallFeatures uses non-standard holes as a proxy for small features,
// since individual hole diameters are not part of PartFeatures.
func smallFeatures(f features.PartFeatures) []Issue {
	if f.HoleCount() == 0 || f.NonStandardHoleCount == 0 {
		return nil
	}
	return []Issue{{
		Severity: SeverityWarning,
		Message: fmt.Sprintf("Part contains %d non-standard hole(s). "+
			"Small features (<0.9mm) may require precision tooling.", f.NonStandardHoleCount),
	}}
}

func nonStandardHoles(f features.PartFeatures) []Issue {
	if f.NonStandardHoleCount == 0 {
		return nil
	}
	return []Issue{{
		Severity: SeverityInfo,
		Message: fmt.Sprintf("Part contains %d non-standard hole(s). "+
			"Non-standard sizes may require custom tooling.", f.NonStandardHoleCount),
	}}
}

// Worst returns the most severe severity among issues, or "" for none.
func Worst(issues []Issue) Severity {
	var worst Severity
	for _, i := range issues {
		if rank(i.Severity) > rank(worst) {
			worst = i.Severity
		}
	}
	return worst
}

func rank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}
