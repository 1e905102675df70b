// Package bvh builds a bounding volume tree over the triangles of a mesh.
// The tree is a binary median split that cycles through the X, Y and Z axes
// by depth; leaves hold small groups of triangle indices and every node
// carries the exact box of what lies below it.
package bvh

import (
	"fmt"
	"sort"

	"github.com/chazu/kerf/pkg/accel"
	"github.com/chazu/kerf/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
	log "github.com/sirupsen/logrus"
)

// MaxDepth is the hard depth cap. A node at this depth is always a leaf.
const MaxDepth = 20

// ErrInvalidLeafSize is returned when the leaf size is below 1.
var ErrInvalidLeafSize = fmt.Errorf("%w: max triangles per leaf must be at least 1", mesh.ErrInvalidInput)

// ErrInvalidDepth is returned when WithMaxDepth is outside [0, MaxDepth].
var ErrInvalidDepth = fmt.Errorf("%w: depth cap must be between 0 and %d", mesh.ErrInvalidInput, MaxDepth)

// Option configures a build.
type Option func(*builder)

// WithSortAxis sets the ordering used for the root split. Single-axis values
// are honored; composite values resolve to X. Deeper levels always cycle by
// depth.
func WithSortAxis(a mesh.SortAxis) Option {
	return func(b *builder) { b.axis = a }
}

// WithMaxDepth lowers the depth cap below MaxDepth.
func WithMaxDepth(d int) Option {
	return func(b *builder) { b.maxDepth = d }
}

// WithCentroids computes triangle centroids up front with c. If c is not
// available or fails, the build silently uses the sequential path.
func WithCentroids(c accel.Centroider) Option {
	return func(b *builder) { b.centroider = c }
}

type builder struct {
	mesh       *mesh.Mesh
	leafSize   int
	maxDepth   int
	axis       mesh.SortAxis
	centroider accel.Centroider
	centroids  []v3.Vec
}

// Build constructs a tree over every triangle of m with at most
// maxTrianglesPerLeaf triangles per leaf, except for leaves forced by the
// depth cap.
func Build(m *mesh.Mesh, maxTrianglesPerLeaf int, opts ...Option) (*Tree, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("bvh: %w", mesh.ErrEmptyMesh)
	}
	if maxTrianglesPerLeaf < 1 {
		return nil, fmt.Errorf("bvh: %w, got %d", ErrInvalidLeafSize, maxTrianglesPerLeaf)
	}

	b := &builder{
		mesh:     m,
		leafSize: maxTrianglesPerLeaf,
		maxDepth: MaxDepth,
		axis:     mesh.SortX,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.maxDepth < 0 || b.maxDepth > MaxDepth {
		return nil, fmt.Errorf("bvh: %w, got %d", ErrInvalidDepth, b.maxDepth)
	}
	b.centroids = b.computeCentroids()

	t := &Tree{
		Root:     b.build(m.Indices(), 0),
		LeafSize: b.leafSize,
		MaxDepth: b.maxDepth,
		Axis:     b.axis,
		mesh:     m,
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		s := t.Stats()
		log.WithFields(log.Fields{
			"mesh":      m.Name(),
			"triangles": s.Triangles,
			"nodes":     s.Nodes,
			"leaves":    s.Leaves,
			"depth":     s.Depth,
		}).Debug("bvh built")
	}
	return t, nil
}

func (b *builder) computeCentroids() []v3.Vec {
	if b.centroider != nil && b.centroider.Available() {
		cs, err := b.centroider.Centroids(b.mesh)
		if err == nil && len(cs) == b.mesh.TriangleCount() {
			return cs
		}
		log.WithError(err).WithField("accelerator", b.centroider.Name()).
			Warn("accelerated centroids failed, using sequential path")
	}
	cs, _ := accel.Sequential{}.Centroids(b.mesh)
	return cs
}

// splitAxis returns the axis for a split at depth. Only the root call sees
// the requested sort axis.
func (b *builder) splitAxis(depth int) mesh.Axis {
	if depth == 0 {
		return b.axis.Primary()
	}
	return mesh.Axis(depth % 3)
}

// build consumes indices; it reorders the slice in place.
func (b *builder) build(indices []int, depth int) Node {
	if len(indices) <= b.leafSize || depth >= b.maxDepth {
		tris := make([]int, len(indices))
		copy(tris, indices)
		return &Leaf{
			Box:       b.mesh.BoundsOf(tris),
			Triangles: tris,
		}
	}

	axis := b.splitAxis(depth)
	sort.SliceStable(indices, func(i, j int) bool {
		return mesh.Component(b.centroids[indices[i]], axis) < mesh.Component(b.centroids[indices[j]], axis)
	})

	// Both halves are non-empty: len(indices) > leafSize >= 1.
	mid := len(indices) / 2
	left := b.build(indices[:mid], depth+1)
	right := b.build(indices[mid:], depth+1)
	return &Internal{
		Box:   left.Bounds().Extend(right.Bounds()),
		Left:  left,
		Right: right,
	}
}
