// Package partition assigns every triangle of a mesh to one of N equal-width
// slabs along the X axis. The index also owns a bounding volume tree over
// the same mesh for region queries.
package partition

import (
	"fmt"
	"io"

	"github.com/chazu/kerf/pkg/accel"
	"github.com/chazu/kerf/pkg/bvh"
	"github.com/chazu/kerf/pkg/mesh"
	"github.com/deadsy/sdfx/sdf"
	log "github.com/sirupsen/logrus"
)

// TreeLeafSize is the leaf size of the tree every index builds.
const TreeLeafSize = 10

// ErrNoPartitions is returned when fewer than one partition is requested.
var ErrNoPartitions = fmt.Errorf("%w: partition count must be at least 1", mesh.ErrInvalidInput)

// Compile-time interface check.
var _ mesh.RegionSet = (*Index)(nil)

// Index maps each triangle to a partition id in [0, Count()).
type Index struct {
	tree    *bvh.Tree
	ids     []int
	bounds  []sdf.Box3
	members [][]int
	axis    mesh.SortAxis
}

// Option configures a build.
type Option func(*options)

type options struct {
	axis       mesh.SortAxis
	centroider accel.Centroider
}

// WithSortAxis is passed through to the owned tree. It does not change the
// partition geometry, which is always along X.
func WithSortAxis(a mesh.SortAxis) Option {
	return func(o *options) { o.axis = a }
}

// WithCentroids is passed through to the owned tree build.
func WithCentroids(c accel.Centroider) Option {
	return func(o *options) { o.centroider = c }
}

// Build partitions m into numPartitions X slabs. Slab i covers
// [minX + i*w, minX + (i+1)*w) with w = (maxX - minX) / numPartitions and
// spans the full Y and Z extent of the mesh; the last slab also includes
// maxX. A triangle goes to the first slab containing its centroid X.
func Build(m *mesh.Mesh, numPartitions int, opts ...Option) (*Index, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("partition: %w", mesh.ErrEmptyMesh)
	}
	if numPartitions < 1 {
		return nil, fmt.Errorf("partition: %w, got %d", ErrNoPartitions, numPartitions)
	}

	o := options{axis: mesh.SortXYZ}
	for _, opt := range opts {
		opt(&o)
	}

	treeOpts := []bvh.Option{bvh.WithSortAxis(o.axis)}
	if o.centroider != nil {
		treeOpts = append(treeOpts, bvh.WithCentroids(o.centroider))
	}
	tree, err := bvh.Build(m, TreeLeafSize, treeOpts...)
	if err != nil {
		return nil, fmt.Errorf("partition: building tree: %w", err)
	}

	idx := &Index{
		tree:    tree,
		ids:     make([]int, m.TriangleCount()),
		bounds:  slabs(m.Bounds(), numPartitions),
		members: make([][]int, numPartitions),
		axis:    o.axis,
	}
	for i := range idx.ids {
		id := idx.assign(m.Triangle(i).Centroid().X)
		idx.ids[i] = id
		idx.members[id] = append(idx.members[id], i)
	}

	log.WithFields(log.Fields{
		"mesh":       m.Name(),
		"partitions": numPartitions,
		"triangles":  m.TriangleCount(),
		"axis":       o.axis,
	}).Debug("partition index built")
	return idx, nil
}

// slabs cuts the mesh box into n equal X slabs. The last slab's upper X is
// the mesh max exactly so rounding cannot leave a gap at the end.
func slabs(b sdf.Box3, n int) []sdf.Box3 {
	w := (b.Max.X - b.Min.X) / float64(n)
	out := make([]sdf.Box3, n)
	for i := range out {
		s := b
		s.Min.X = b.Min.X + float64(i)*w
		s.Max.X = b.Min.X + float64(i+1)*w
		out[i] = s
	}
	out[n-1].Max.X = b.Max.X
	return out
}

// assign returns the first slab whose X range holds x. Upper bounds are
// exclusive except on the last slab. Values no slab holds are clamped to
// the nearest end.
func (idx *Index) assign(x float64) int {
	last := len(idx.bounds) - 1
	for i, s := range idx.bounds {
		if x < s.Min.X {
			continue
		}
		if x < s.Max.X || (i == last && x <= s.Max.X) {
			return i
		}
	}
	if x < idx.bounds[0].Min.X {
		return 0
	}
	return last
}

// Count returns the number of partitions.
func (idx *Index) Count() int {
	return len(idx.bounds)
}

// PartitionOf returns the partition id of triangle tri.
func (idx *Index) PartitionOf(tri int) int {
	return idx.ids[tri]
}

// Assignments returns a copy of the triangle -> partition table.
func (idx *Index) Assignments() []int {
	return append([]int(nil), idx.ids...)
}

// Bounds returns the slab box of partition id.
func (idx *Index) Bounds(id int) sdf.Box3 {
	return idx.bounds[id]
}

// Triangles returns the triangles assigned to partition id in ascending
// order. The returned slice must not be modified.
func (idx *Index) Triangles(id int) []int {
	return idx.members[id]
}

// Tree returns the owned bounding volume tree.
func (idx *Index) Tree() *bvh.Tree {
	return idx.tree
}

// SortAxis returns the sort axis the index was built with.
func (idx *Index) SortAxis() mesh.SortAxis {
	return idx.axis
}

// TrianglesInRegion returns the triangles whose box intersects region,
// using the owned tree.
func (idx *Index) TrianglesInRegion(region sdf.Box3) []int {
	return idx.tree.Overlapping(region)
}

// RegionCount implements mesh.RegionSet.
func (idx *Index) RegionCount() int { return idx.Count() }

// RegionBounds implements mesh.RegionSet.
func (idx *Index) RegionBounds(id int) sdf.Box3 { return idx.Bounds(id) }

// RegionTriangles implements mesh.RegionSet.
func (idx *Index) RegionTriangles(id int) []int { return idx.Triangles(id) }

// Dump writes one line per partition to w.
func (idx *Index) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Spatial Partition Information:\nNumber of partitions: %d\n", idx.Count()); err != nil {
		return err
	}
	for i, b := range idx.bounds {
		if _, err := fmt.Fprintf(w, "Partition %d: %s (%d triangles)\n", i, mesh.FormatBox(b), len(idx.members[i])); err != nil {
			return err
		}
	}
	return nil
}
