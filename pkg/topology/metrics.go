package topology

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/kerf/pkg/mesh"
)

func (a *Analysis) connect(normals []v3.Vec) {
	c := &a.Connectivity
	c.Vertices = len(a.Vertices)
	c.Edges = len(a.Edges)
	c.Triangles = len(normals)
	c.Euler = c.Vertices - c.Edges + c.Triangles

	nonManifold := make(map[int]bool)
	for i := range a.Edges {
		e := &a.Edges[i]
		for _, v := range e.Vertices {
			a.Vertices[v].Valence++
		}
		switch {
		case e.Boundary():
			c.BoundaryEdges++
			a.Vertices[e.Vertices[0]].Boundary = true
			a.Vertices[e.Vertices[1]].Boundary = true
		case e.NonManifold():
			c.NonManifoldEdges++
			nonManifold[e.Vertices[0]] = true
			nonManifold[e.Vertices[1]] = true
		default:
			e.Dihedral = angle(normals[e.Triangles[0]], normals[e.Triangles[1]])
		}
	}
	c.NonManifoldVertices = len(nonManifold)

	valence := 0
	for _, v := range a.Vertices {
		if v.Valence == 0 {
			c.IsolatedVertices++
		}
		valence += v.Valence
	}
	if c.Vertices > 0 {
		c.Score = float64(valence) / float64(6*c.Vertices)
	}
}

// curvature sets the angle defect of every vertex that has an edge.
func (a *Analysis) curvature(m *mesh.Mesh, corners [][3]int) {
	sums := make([]float64, len(a.Vertices))
	for ti, cs := range corners {
		if cs[0] == cs[1] || cs[1] == cs[2] || cs[0] == cs[2] {
			continue
		}
		angles := interiorAngles(m.Triangle(ti).Vertices)
		for k, v := range cs {
			sums[v] += angles[k]
		}
	}

	values := make([]float64, 0, len(a.Vertices))
	for i := range a.Vertices {
		v := &a.Vertices[i]
		if v.Valence == 0 {
			continue
		}
		full := 2 * math.Pi
		if v.Boundary {
			full = math.Pi
		}
		v.Curvature = math.Abs(full - sums[i])
		values = append(values, v.Curvature)
	}
	a.Curvature = summarize(values)
}

func (a *Analysis) features(triangles int, sharp, corner, flat float64) {
	f := &a.Features
	f.SharpEdges, f.Corners, f.FlatTriangles = []int{}, []int{}, []int{}

	steepest := make([]float64, triangles)
	for i, e := range a.Edges {
		if e.Dihedral > sharp {
			f.SharpEdges = append(f.SharpEdges, i)
		}
		for _, t := range e.Triangles {
			steepest[t] = math.Max(steepest[t], e.Dihedral)
		}
	}
	for i, v := range a.Vertices {
		if v.Curvature > corner {
			f.Corners = append(f.Corners, i)
		}
	}
	for t, d := range steepest {
		if d < flat {
			f.FlatTriangles = append(f.FlatTriangles, t)
		}
	}
	if n := len(a.Edges) + len(a.Vertices); n > 0 {
		f.Richness = float64(len(f.SharpEdges)+len(f.Corners)) / float64(n)
	}
}

func (a *Analysis) density(m *mesh.Mesh) {
	valence := make([]float64, len(a.Vertices))
	for i, v := range a.Vertices {
		valence[i] = float64(v.Valence)
	}
	a.Valence = summarize(valence)

	inverse := make([]float64, 0, m.TriangleCount())
	for ti := 0; ti < m.TriangleCount(); ti++ {
		if ar := area(m.Triangle(ti).Vertices); ar > 0 {
			inverse = append(inverse, 1/ar)
		}
	}
	a.TriangleDensity = summarize(inverse)
}

func (a *Analysis) quality(m *mesh.Mesh) {
	q := make([]float64, m.TriangleCount())
	for ti := range q {
		q[ti] = TriangleQuality(m.Triangle(ti).Vertices)
		if q[ti] < PoorQuality {
			a.PoorTriangles++
		}
	}
	a.Quality = summarize(q)
}
