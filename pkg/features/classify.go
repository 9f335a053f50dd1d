package features

import (
	"fmt"
	"log/slog"

	"github.com/chazu/partscan/pkg/kernel"
)

// measuredFace is a face whose bounds have been computed successfully.
type measuredFace struct {
	index int
	face  kernel.Face
	box   kernel.BBox
}

// facesOf returns the faces of s with the given geometry type, with bounds.
// Faces whose type or bounds cannot be computed are skipped. An error is
// returned only when the face list itself cannot be obtained.
func facesOf(s kernel.Solid, kind kernel.GeomType, log *slog.Logger) ([]measuredFace, error) {
	faces, err := s.Faces()
	if err != nil {
		return nil, fmt.Errorf("features: listing faces: %w", err)
	}
	var out []measuredFace
	for i, f := range faces {
		if f == nil {
			log.Debug("skipping nil face", "index", i)
			continue
		}
		mf, ok, err := measure(i, f, kind)
		if err != nil {
			log.Debug("skipping face", "index", i, "error", err)
			continue
		}
		if ok {
			out = append(out, mf)
		}
	}
	return out, nil
}

// measure classifies f and, if it has the wanted type, computes its bounds.
// A panicking kernel query is reported as an error.
func measure(i int, f kernel.Face, kind kernel.GeomType) (mf measuredFace, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			mf, ok, err = measuredFace{}, false, fmt.Errorf("panic: %v", r)
		}
	}()
	if f.GeometryType() != kind {
		return measuredFace{}, false, nil
	}
	b, err := f.BoundingBox()
	if err != nil {
		return measuredFace{}, false, err
	}
	if b.Empty() {
		return measuredFace{}, false, fmt.Errorf("invalid bounds %v", b)
	}
	return measuredFace{index: i, face: f, box: b}, true, nil
}

// Classification counts faces per geometry type.
type Classification struct {
	Planes    int `json:"planes"`
	Cylinders int `json:"cylinders"`
	Other     int `json:"other"`
	Skipped   int `json:"skipped"`
}

// Classify tallies the faces of s by geometry type. Faces whose type
// cannot be read are counted as skipped.
func Classify(s kernel.Solid) (Classification, error) {
	faces, err := s.Faces()
	if err != nil {
		return Classification{}, fmt.Errorf("features: listing faces: %w", err)
	}
	var c Classification
	for _, f := range faces {
		kind, ok := geometryType(f)
		switch {
		case !ok:
			c.Skipped++
		case kind == kernel.GeomPlane:
			c.Planes++
		case kind == kernel.GeomCylinder:
			c.Cylinders++
		default:
			c.Other++
		}
	}
	return c, nil
}

func geometryType(f kernel.Face) (kind kernel.GeomType, ok bool) {
	if f == nil {
		return kernel.GeomOther, false
	}
	defer func() {
		if recover() != nil {
			kind, ok = kernel.GeomOther, false
		}
	}()
	return f.GeometryType(), true
}
