// Package meshtest builds small synthetic meshes for tests.
package meshtest

import (
	"math/rand"

	"github.com/chazu/kerf/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tri returns the triangle a, b, c.
func Tri(a, b, c v3.Vec) mesh.Triangle {
	return mesh.Triangle{Vertices: [3]v3.Vec{a, b, c}}
}

// At returns a small triangle of radius r whose centroid is c. With integral
// coordinates the centroid is exact in floating point.
func At(c v3.Vec, r float64) mesh.Triangle {
	return Tri(
		v3.Vec{X: c.X + r, Y: c.Y, Z: c.Z},
		v3.Vec{X: c.X - r, Y: c.Y + r, Z: c.Z},
		v3.Vec{X: c.X, Y: c.Y - r, Z: c.Z},
	)
}

// quad splits the quad a, b, c, d into two triangles.
func quad(a, b, c, d v3.Vec) []mesh.Triangle {
	return []mesh.Triangle{Tri(a, b, c), Tri(a, c, d)}
}

// Walls returns the 8 triangles of the four vertical faces of the cube
// [0,size]^3. The bounding box is still the full cube.
func Walls(size float64) *mesh.Mesh {
	s := size
	p := func(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }
	var tris []mesh.Triangle
	tris = append(tris, quad(p(0, 0, 0), p(0, s, 0), p(0, s, s), p(0, 0, s))...)
	tris = append(tris, quad(p(s, 0, 0), p(s, 0, s), p(s, s, s), p(s, s, 0))...)
	tris = append(tris, quad(p(0, 0, 0), p(0, 0, s), p(s, 0, s), p(s, 0, 0))...)
	tris = append(tris, quad(p(0, s, 0), p(s, s, 0), p(s, s, s), p(0, s, s))...)
	return mesh.New("walls", tris)
}

// Box returns the closed 12-triangle surface of the box [min, max].
func Box(min, max v3.Vec) *mesh.Mesh {
	return mesh.New("box", BoxTriangles(min, max))
}

// BoxTriangles returns the 12 triangles of the box [min, max].
func BoxTriangles(min, max v3.Vec) []mesh.Triangle {
	p := func(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }
	x0, y0, z0 := min.X, min.Y, min.Z
	x1, y1, z1 := max.X, max.Y, max.Z
	var tris []mesh.Triangle
	tris = append(tris, quad(p(x0, y0, z0), p(x0, y1, z0), p(x1, y1, z0), p(x1, y0, z0))...)
	tris = append(tris, quad(p(x0, y0, z1), p(x1, y0, z1), p(x1, y1, z1), p(x0, y1, z1))...)
	tris = append(tris, quad(p(x0, y0, z0), p(x0, y0, z1), p(x0, y1, z1), p(x0, y1, z0))...)
	tris = append(tris, quad(p(x1, y0, z0), p(x1, y1, z0), p(x1, y1, z1), p(x1, y0, z1))...)
	tris = append(tris, quad(p(x0, y0, z0), p(x1, y0, z0), p(x1, y0, z1), p(x0, y0, z1))...)
	tris = append(tris, quad(p(x0, y1, z0), p(x0, y1, z1), p(x1, y1, z1), p(x1, y1, z0))...)
	return tris
}

// Cluster returns count small triangles centred on c, spaced along X by
// step.
func Cluster(c v3.Vec, count int, step float64) []mesh.Triangle {
	tris := make([]mesh.Triangle, 0, count)
	for i := 0; i < count; i++ {
		tris = append(tris, At(v3.Vec{X: c.X + float64(i)*step, Y: c.Y, Z: c.Z}, step/4))
	}
	return tris
}

// Scatter returns n random triangles inside [0,extent]^3 from a seeded
// source, so runs are reproducible.
func Scatter(seed int64, n int, extent float64) *mesh.Mesh {
	rng := rand.New(rand.NewSource(seed))
	point := func() v3.Vec {
		return v3.Vec{X: rng.Float64() * extent, Y: rng.Float64() * extent, Z: rng.Float64() * extent}
	}
	tris := make([]mesh.Triangle, n)
	for i := range tris {
		tris[i] = Tri(point(), point(), point())
	}
	return mesh.New("scatter", tris)
}
