package topology

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/kerf/pkg/mesh"
)

type cell [3]int64

// welder merges positions closer than tol into one vertex. Positions are
// bucketed on a grid of pitch tol, so a match is always in one of the 27
// cells around the query.
type welder struct {
	tol   float64
	cells map[cell][]int
	verts []v3.Vec
}

func newWelder(tol float64) *welder {
	return &welder{tol: tol, cells: make(map[cell][]int)}
}

func (w *welder) cellOf(p v3.Vec) cell {
	return cell{
		int64(math.Floor(p.X / w.tol)),
		int64(math.Floor(p.Y / w.tol)),
		int64(math.Floor(p.Z / w.tol)),
	}
}

// add returns the index of the vertex at p, creating it if needed.
func (w *welder) add(p v3.Vec) int {
	c := w.cellOf(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range w.cells[cell{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if w.verts[i].Sub(p).Length() < w.tol {
						return i
					}
				}
			}
		}
	}
	i := len(w.verts)
	w.verts = append(w.verts, p)
	w.cells[c] = append(w.cells[c], i)
	return i
}

type edgeKey [2]int

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// weld maps every triangle corner of m to a shared vertex and collects the
// edges between them in first-seen order. Edges whose ends weld together
// are dropped.
func weld(m *mesh.Mesh, tol float64) (verts []v3.Vec, corners [][3]int, edges []Edge) {
	w := newWelder(tol)
	corners = make([][3]int, m.TriangleCount())
	index := make(map[edgeKey]int)
	for ti := range corners {
		tri := m.Triangle(ti)
		for k, p := range tri.Vertices {
			corners[ti][k] = w.add(p)
		}
		for k := 0; k < 3; k++ {
			a, b := corners[ti][k], corners[ti][(k+1)%3]
			if a == b {
				continue
			}
			key := keyOf(a, b)
			ei, ok := index[key]
			if !ok {
				ei = len(edges)
				index[key] = ei
				edges = append(edges, Edge{
					Vertices: key,
					Length:   w.verts[a].Sub(w.verts[b]).Length(),
				})
			}
			e := &edges[ei]
			// A triangle with two corners welded together can list the
			// same edge twice.
			if n := len(e.Triangles); n == 0 || e.Triangles[n-1] != ti {
				e.Triangles = append(e.Triangles, ti)
			}
		}
	}
	return w.verts, corners, edges
}
