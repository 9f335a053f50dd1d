package features

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// disjointSet is a union-find over candidate indices.
type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n)}
	for i := range ds.parent {
		ds.parent[i] = i
	}
	return ds
}

func (ds *disjointSet) find(i int) int {
	for ds.parent[i] != i {
		ds.parent[i] = ds.parent[ds.parent[i]]
		i = ds.parent[i]
	}
	return i
}

// union merges the sets of i and j, keeping the smaller index as root so
// that roots identify clusters by their first member.
func (ds *disjointSet) union(i, j int) {
	ri, rj := ds.find(i), ds.find(j)
	switch {
	case ri == rj:
	case ri < rj:
		ds.parent[rj] = ri
	default:
		ds.parent[ri] = rj
	}
}

// clusterByDistance groups points whose pairwise distance is under
// radius, transitively. Clusters are ordered by their first member and
// members keep input order.
func clusterByDistance(points []r3.Vec, radius float64) [][]int {
	ds := newDisjointSet(len(points))
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if r3.Norm(r3.Sub(points[i], points[j])) < radius {
				ds.union(i, j)
			}
		}
	}

	index := make(map[int]int)
	var clusters [][]int
	for i := range points {
		root := ds.find(i)
		k, ok := index[root]
		if !ok {
			k = len(clusters)
			index[root] = k
			clusters = append(clusters, nil)
		}
		clusters[k] = append(clusters[k], i)
	}
	return clusters
}
