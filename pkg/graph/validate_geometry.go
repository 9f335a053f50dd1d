package graph

import (
	"fmt"

	"github.com/chazu/partscan/pkg/features"
	"github.com/chazu/partscan/pkg/kernel"
)

// ---------------------------------------------------------------------------
// Geometric validation
// ---------------------------------------------------------------------------

// validateGeometry checks every stock and feature against its part.
// Errors block building; warnings are advisory.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateStockDimensions(g)...)

	for _, part := range g.Parts() {
		stock, ok := part.Data.(StockData)
		if !ok {
			continue
		}
		for _, c := range g.Children(part) {
			e, w := validateFeature(c, stock)
			errs = append(errs, e...)
			warnings = append(warnings, w...)
		}
	}
	return errs, warnings
}

// validateStockDimensions checks that every StockData has positive X, Y, Z.
func validateStockDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		sd, ok := node.Data.(StockData)
		if !ok {
			continue
		}
		for _, a := range kernel.Axes {
			if v := sd.Size.At(a); !(v > 0) {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("stock dimension %s is %.4f, must be positive", a, v),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateFeature checks one drill or pocket against its part's stock.
func validateFeature(n *Node, stock StockData) ([]ValidationError, []ValidationWarning) {
	errorf := func(format string, args ...any) ValidationError {
		return ValidationError{NodeID: n.ID, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
	}
	warnf := func(format string, args ...any) ValidationWarning {
		return ValidationWarning{NodeID: n.ID, Message: fmt.Sprintf(format, args...)}
	}

	var errs []ValidationError
	var warnings []ValidationWarning
	bounds := stock.Bounds()

	switch d := n.Data.(type) {
	case DrillData:
		dir, ok := d.Face.Direction()
		if !ok {
			return nil, nil // reported by checkFaces
		}
		if !(d.Diameter > 0) {
			errs = append(errs, errorf("drill diameter is %.4f, must be positive", d.Diameter))
		}
		if d.Depth < 0 {
			errs = append(errs, errorf("drill depth is %.4f, must not be negative", d.Depth))
		}
		b, c := dir.Axis().Transverse()
		for _, ax := range []kernel.Axis{b, c} {
			if p := d.Position.At(ax); p <= bounds.Min[ax] || p >= bounds.Max[ax] {
				errs = append(errs, errorf("drill centre %s=%.4f lies outside the %s face", ax, p, d.Face))
			}
		}
		thickness := bounds.Span(dir.Axis())
		if d.Depth >= thickness && thickness > 0 {
			warnings = append(warnings, warnf("blind depth %.4f reaches the stock thickness %.4f; use :through", d.Depth, thickness))
		}
		if d.Diameter > 0 && (d.Diameter <= features.DefaultMinHoleDiameter || d.Diameter >= features.DefaultMaxHoleDiameter) {
			warnings = append(warnings, warnf("drill diameter %.4f is outside the detectable hole range (%.1f, %.1f)",
				d.Diameter, features.DefaultMinHoleDiameter, features.DefaultMaxHoleDiameter))
		}

	case PocketData:
		dir, ok := d.Face.Direction()
		if !ok {
			return nil, nil
		}
		for _, a := range kernel.Axes {
			if v := d.Size.At(a); !(v > 0) {
				errs = append(errs, errorf("pocket size %s is %.4f, must be positive", a, v))
			}
		}
		b, c := dir.Axis().Transverse()
		for _, ax := range []kernel.Axis{b, c} {
			lo := d.Position.At(ax)
			hi := lo + d.Size.At(ax)
			if lo < bounds.Min[ax] || hi > bounds.Max[ax] {
				errs = append(errs, errorf("pocket spans %s=[%.4f, %.4f] outside the %s face", ax, lo, hi, d.Face))
			}
		}
		thickness := bounds.Span(dir.Axis())
		if d.Depth() >= thickness && thickness > 0 {
			warnings = append(warnings, warnf("pocket depth %.4f cuts through the stock thickness %.4f", d.Depth(), thickness))
		}
	}
	return errs, warnings
}
