package decompose

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/kerf/pkg/mesh"
)

const (
	// VolumePerTriangle is the volume each triangle contributes to a part's
	// volume estimate.
	VolumePerTriangle = 0.1

	// MinSplitTriangles is the smallest part either splitting strategy
	// will try to split.
	MinSplitTriangles = 10
)

// Part is one piece of a decomposition. Hull is the bounding box of the
// part's triangles and Volume is a proxy proportional to the triangle
// count; neither is a true polyhedral measure.
type Part struct {
	Triangles []int    `json:"triangles"`
	Hull      sdf.Box3 `json:"hull"`
	Centroid  v3.Vec   `json:"centroid"`
	Volume    float64  `json:"volume"`
}

func newPart(m *mesh.Mesh, triangles []int) *Part {
	return &Part{
		Triangles: triangles,
		Hull:      m.BoundsOf(triangles),
		Centroid:  m.CentroidOf(triangles),
		Volume:    VolumePerTriangle * float64(len(triangles)),
	}
}

// Concavity is the share of the hull box not accounted for by the volume
// estimate, clamped to [0, 1]. A part with a flat or empty hull has
// concavity 0.
func Concavity(p *Part) float64 {
	hull := mesh.Volume(p.Hull)
	if hull <= 0 {
		return 0
	}
	c := (hull - p.Volume) / hull
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

// split divides triangles at the midpoint of the longest axis of hull.
// Centroids strictly below the midpoint go left, the rest go right. Either
// side may come back empty.
func split(m *mesh.Mesh, triangles []int, hull sdf.Box3) (left, right []int) {
	axis := mesh.LongestAxis(hull)
	mid := (mesh.Component(hull.Min, axis) + mesh.Component(hull.Max, axis)) / 2
	for _, tri := range triangles {
		if mesh.Component(m.Triangle(tri).Centroid(), axis) < mid {
			left = append(left, tri)
		} else {
			right = append(right, tri)
		}
	}
	return left, right
}
