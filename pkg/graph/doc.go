// Package graph defines the part design graph for partscan.
// The design graph is an immutable DAG of parts (rectangular stock) and
// the machining features cut into them (drills and pockets). It is the
// output of DSL evaluation and the input of the solid builder.
package graph
