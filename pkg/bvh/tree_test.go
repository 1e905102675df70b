package bvh

import (
	"sort"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/mesh/meshtest"
)

func queryBox(x0, y0, z0, x1, y1, z1 float64) sdf.Box3 {
	return sdf.Box3{Min: v3.Vec{X: x0, Y: y0, Z: z0}, Max: v3.Vec{X: x1, Y: y1, Z: z1}}
}

// bruteForce returns every triangle of m whose box overlaps q, ascending.
func bruteForce(m *mesh.Mesh, q sdf.Box3) []int {
	var out []int
	for i := 0; i < m.TriangleCount(); i++ {
		if mesh.Overlaps(m.Triangle(i).Bounds(), q) {
			out = append(out, i)
		}
	}
	return out
}

func TestOverlappingClusters(t *testing.T) {
	var tris []mesh.Triangle
	tris = append(tris, meshtest.Cluster(v3.Vec{X: 0, Y: 0, Z: 0}, 10, 1)...)
	tris = append(tris, meshtest.Cluster(v3.Vec{X: 100, Y: 0, Z: 0}, 10, 1)...)
	m := mesh.New("clusters", tris)

	tr, err := Build(m, 2)
	require.NoError(t, err)

	tests := []struct {
		name string
		q    sdf.Box3
		want []int
	}{
		{"everything", m.Bounds(), m.Indices()},
		{"left cluster", queryBox(-5, -5, -5, 20, 5, 5), []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"right cluster", queryBox(90, -5, -5, 120, 5, 5), []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}},
		{"gap", queryBox(30, -5, -5, 60, 5, 5), nil},
		{"above", queryBox(-5, 50, -5, 120, 60, 5), nil},
		{"empty query", mesh.EmptyBox(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Overlapping(tt.q)
			sort.Ints(got)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOverlappingMatchesBruteForce(t *testing.T) {
	m := meshtest.Scatter(42, 600, 100)
	tr, err := Build(m, 5)
	require.NoError(t, err)

	queries := []sdf.Box3{
		queryBox(0, 0, 0, 10, 10, 10),
		queryBox(25, 25, 25, 75, 75, 75),
		queryBox(90, 0, 0, 100, 100, 100),
		queryBox(50, 50, 50, 50, 50, 50),
		queryBox(-10, -10, -10, -1, -1, -1),
	}
	for _, q := range queries {
		got := tr.Overlapping(q)
		sort.Ints(got)
		assert.Equal(t, bruteForce(m, q), got, "query %s", mesh.FormatBox(q))
	}
}

func TestOverlappingTouchingFaceCounts(t *testing.T) {
	m := meshtest.Box(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	tr, err := Build(m, 3)
	require.NoError(t, err)

	// A query that only touches the x=1 face still hits that face's triangles
	// and the four side faces that reach x=1.
	got := tr.Overlapping(queryBox(1, 0, 0, 2, 1, 1))
	assert.Equal(t, bruteForce(m, queryBox(1, 0, 0, 2, 1, 1)), sorted(got))
	assert.NotEmpty(t, got)
}

func sorted(s []int) []int {
	out := append([]int(nil), s...)
	sort.Ints(out)
	return out
}

func TestWalkSkipsChildren(t *testing.T) {
	tr, err := Build(meshtest.Scatter(1, 64, 10), 1)
	require.NoError(t, err)

	visited := 0
	tr.Walk(func(n Node, depth int) bool {
		visited++
		return depth < 1
	})
	assert.Equal(t, 3, visited)
}

func TestMeshAccessor(t *testing.T) {
	m := meshtest.Walls(1)
	tr, err := Build(m, 1)
	require.NoError(t, err)
	assert.Same(t, m, tr.Mesh())
}
