package mesh

import "github.com/deadsy/sdfx/sdf"

// RegionSet is what a slicer needs from a spatial decomposition: a number of
// regions, each with a box and the triangles it owns. Region ids run from 0
// to RegionCount()-1.
type RegionSet interface {
	RegionCount() int
	RegionBounds(id int) sdf.Box3
	RegionTriangles(id int) []int
}

// Unassigned marks a triangle that belongs to no region.
const Unassigned = -1

// CollectRegions flattens rs into a triangle -> region id table for a mesh
// of numTriangles triangles. Triangles no region claims are Unassigned.
func CollectRegions(rs RegionSet, numTriangles int) []int {
	ids := make([]int, numTriangles)
	for i := range ids {
		ids[i] = Unassigned
	}
	for r := 0; r < rs.RegionCount(); r++ {
		for _, t := range rs.RegionTriangles(r) {
			ids[t] = r
		}
	}
	return ids
}
