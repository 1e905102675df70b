// Package mesh defines the immutable triangle mesh consumed by the spatial
// decomposition packages. A Mesh is built once and never mutated; every
// index structure built over it refers to triangles by position.
package mesh

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle is a single mesh facet. The normal is carried through from the
// source but no decomposition reads it.
type Triangle struct {
	Normal   v3.Vec    `json:"normal"`
	Vertices [3]v3.Vec `json:"vertices"`
}

// Centroid returns the mean of the three vertices.
func (t Triangle) Centroid() v3.Vec {
	return v3.Vec{
		X: (t.Vertices[0].X + t.Vertices[1].X + t.Vertices[2].X) / 3,
		Y: (t.Vertices[0].Y + t.Vertices[1].Y + t.Vertices[2].Y) / 3,
		Z: (t.Vertices[0].Z + t.Vertices[1].Z + t.Vertices[2].Z) / 3,
	}
}

// Bounds returns the tight box around the three vertices.
func (t Triangle) Bounds() sdf.Box3 {
	b := sdf.Box3{Min: t.Vertices[0], Max: t.Vertices[0]}
	return b.Include(t.Vertices[1]).Include(t.Vertices[2])
}

// Mesh is a read-only triangle list with a precomputed bounding box.
// It is safe to share between goroutines.
type Mesh struct {
	name      string
	triangles []Triangle
	bounds    sdf.Box3
}

// New builds a mesh from a triangle list. The slice is copied so later
// changes by the caller are not observed.
func New(name string, triangles []Triangle) *Mesh {
	m := &Mesh{
		name:      name,
		triangles: make([]Triangle, len(triangles)),
		bounds:    EmptyBox(),
	}
	copy(m.triangles, triangles)
	for _, t := range m.triangles {
		m.bounds = m.bounds.Extend(t.Bounds())
	}
	return m
}

// FromBuffers builds a mesh from flat render buffers: 3 floats per vertex,
// 3 indices per triangle. Normals are optional and per vertex; when absent
// the face normal is computed from the winding order.
func FromBuffers(name string, vertices, normals []float32, indices []uint32) (*Mesh, error) {
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("mesh: vertex buffer length %d is not a multiple of 3", len(vertices))
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("mesh: index buffer length %d is not a multiple of 3", len(indices))
	}
	if len(normals) != 0 && len(normals) != len(vertices) {
		return nil, fmt.Errorf("mesh: normal buffer length %d does not match vertex buffer length %d", len(normals), len(vertices))
	}

	numVerts := uint32(len(vertices) / 3)
	vertex := func(buf []float32, i uint32) v3.Vec {
		return v3.Vec{X: float64(buf[i*3]), Y: float64(buf[i*3+1]), Z: float64(buf[i*3+2])}
	}

	triangles := make([]Triangle, 0, len(indices)/3)
	for i := 0; i < len(indices); i += 3 {
		var t Triangle
		for j := 0; j < 3; j++ {
			idx := indices[i+j]
			if idx >= numVerts {
				return nil, fmt.Errorf("mesh: triangle %d references vertex %d of %d", i/3, idx, numVerts)
			}
			t.Vertices[j] = vertex(vertices, idx)
		}
		if len(normals) != 0 {
			t.Normal = vertex(normals, indices[i])
		} else {
			t.Normal = faceNormal(t.Vertices)
		}
		triangles = append(triangles, t)
	}
	return New(name, triangles), nil
}

// faceNormal returns the unit normal of a counter-clockwise triangle, or the
// zero vector for a degenerate one.
func faceNormal(v [3]v3.Vec) v3.Vec {
	ax, ay, az := v[1].X-v[0].X, v[1].Y-v[0].Y, v[1].Z-v[0].Z
	bx, by, bz := v[2].X-v[0].X, v[2].Y-v[0].Y, v[2].Z-v[0].Z
	n := v3.Vec{X: ay*bz - az*by, Y: az*bx - ax*bz, Z: ax*by - ay*bx}
	l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
	if l == 0 {
		return v3.Vec{}
	}
	return v3.Vec{X: n.X / l, Y: n.Y / l, Z: n.Z / l}
}

// Name returns the name the mesh was built with.
func (m *Mesh) Name() string {
	return m.name
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.triangles)
}

// VertexCount returns the number of (unshared) vertices.
func (m *Mesh) VertexCount() int {
	return m.TriangleCount() * 3
}

// IsEmpty returns true if the mesh has no triangles. A nil mesh is empty.
func (m *Mesh) IsEmpty() bool {
	return m.TriangleCount() == 0
}

// Triangle returns triangle i.
func (m *Mesh) Triangle(i int) Triangle {
	return m.triangles[i]
}

// Bounds returns the bounding box of the whole mesh. An empty mesh reports
// the empty sentinel box.
func (m *Mesh) Bounds() sdf.Box3 {
	return m.bounds
}

// Indices returns a fresh slice holding 0..TriangleCount()-1.
func (m *Mesh) Indices() []int {
	idx := make([]int, m.TriangleCount())
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// BoundsOf returns the union of the vertex bounds of the given triangles.
func (m *Mesh) BoundsOf(indices []int) sdf.Box3 {
	b := EmptyBox()
	for _, i := range indices {
		b = b.Extend(m.triangles[i].Bounds())
	}
	return b
}

// CentroidOf returns the unweighted mean of every vertex of the given
// triangles. It returns the zero vector for an empty selection.
func (m *Mesh) CentroidOf(indices []int) v3.Vec {
	var sum v3.Vec
	if len(indices) == 0 {
		return sum
	}
	for _, i := range indices {
		for _, v := range m.triangles[i].Vertices {
			sum = sum.Add(v)
		}
	}
	return sum.DivScalar(float64(len(indices) * 3))
}
