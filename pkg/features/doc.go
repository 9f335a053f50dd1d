// Package features extracts a manufacturability feature summary from a
// B-rep solid: bounding box, volume, holes and pockets.
//
// Detection is heuristic and deliberately conservative. The hole detector
// measures cylindrical faces; the pocket detector tests planar faces for
// insetness against all six stock boundaries and clusters related faces
// (bottom plus walls) into pockets. Both detectors undercount rather than
// overcount, absorb per-face faults, and degrade to a zero result on
// systemic failure. A zero count with zero confidence therefore means
// either "nothing found" or "detection failed".
//
// A Detector holds only immutable calibration and is safe for concurrent
// use on independent solids.
package features
