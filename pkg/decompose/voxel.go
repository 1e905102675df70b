package decompose

import (
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/chazu/kerf/pkg/mesh"
)

// maxVoxelsPerAxis keeps cell coordinates well inside int range.
const maxVoxelsPerAxis = 1 << 30

type cell [3]int

func (c cell) less(o cell) bool {
	if c[0] != o[0] {
		return c[0] < o[0]
	}
	if c[1] != o[1] {
		return c[1] < o[1]
	}
	return c[2] < o[2]
}

// Voxel buckets triangles by centroid into cubes of side voxelSize whose
// grid starts at the mesh's min corner. Each cell holding at least
// minTrianglesPerVoxel triangles becomes a part; parts come out in x, then
// y, then z cell order. Triangles in sparser cells are left out of the
// result.
func Voxel(m *mesh.Mesh, voxelSize float64, minTrianglesPerVoxel int) (*Decomposition, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("decompose: %w", mesh.ErrEmptyMesh)
	}
	if !(voxelSize > 0) || math.IsInf(voxelSize, 1) {
		return nil, fmt.Errorf("decompose: %w, got %v", ErrInvalidVoxelSize, voxelSize)
	}
	if minTrianglesPerVoxel < 0 {
		return nil, fmt.Errorf("decompose: %w: min triangles per voxel must not be negative, got %d",
			mesh.ErrInvalidInput, minTrianglesPerVoxel)
	}

	b := m.Bounds()
	size := b.Size()
	if math.Max(size.X, math.Max(size.Y, size.Z))/voxelSize > maxVoxelsPerAxis {
		return nil, fmt.Errorf("decompose: %w: voxel size %v is too small for a mesh of size %v",
			ErrInvalidVoxelSize, voxelSize, size)
	}

	cells := make(map[cell][]int)
	for i := 0; i < m.TriangleCount(); i++ {
		c := m.Triangle(i).Centroid()
		k := cell{
			int((c.X - b.Min.X) / voxelSize),
			int((c.Y - b.Min.Y) / voxelSize),
			int((c.Z - b.Min.Z) / voxelSize),
		}
		cells[k] = append(cells[k], i)
	}

	keys := make([]cell, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	d := newDecomposition(StrategyVoxel)
	for _, k := range keys {
		if tris := cells[k]; len(tris) >= minTrianglesPerVoxel {
			d.add(newPart(m, tris))
		}
	}
	d.finish()

	log.WithFields(log.Fields{
		"mesh":      m.Name(),
		"voxelSize": voxelSize,
		"cells":     len(cells),
		"parts":     d.Len(),
		"dropped":   m.TriangleCount() - d.AssignedTriangles(),
	}).Debug("voxel decomposition done")
	return d, nil
}
