package decompose

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	log "github.com/sirupsen/logrus"

	"github.com/chazu/kerf/pkg/mesh"
)

// MaxHierarchicalDepth bounds the depth Hierarchical accepts. A full tree
// at this depth already has 2^20 leaves.
const MaxHierarchicalDepth = 20

// Hierarchical splits at the longest-axis midpoint down to maxDepth,
// stopping early on parts with fewer than MinSplitTriangles triangles.
// There is no concavity test. An empty side of a split is dropped and the
// other side carries on one level deeper. splitThreshold is recorded on
// the result and otherwise ignored.
func Hierarchical(m *mesh.Mesh, maxDepth int, splitThreshold float64) (*Decomposition, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("decompose: %w", mesh.ErrEmptyMesh)
	}
	if maxDepth < 0 || maxDepth > MaxHierarchicalDepth {
		return nil, fmt.Errorf("decompose: %w, got %d", ErrInvalidDepth, maxDepth)
	}

	d := newDecomposition(StrategyHierarchical)
	d.SplitThreshold = splitThreshold

	var visit func(tris []int, hull sdf.Box3, depth int)
	visit = func(tris []int, hull sdf.Box3, depth int) {
		if depth >= maxDepth || len(tris) < MinSplitTriangles {
			d.add(newPart(m, tris))
			return
		}
		left, right := split(m, tris, hull)
		if len(left) > 0 {
			visit(left, m.BoundsOf(left), depth+1)
		}
		if len(right) > 0 {
			visit(right, m.BoundsOf(right), depth+1)
		}
	}
	visit(m.Indices(), m.Bounds(), 0)
	d.finish()

	log.WithFields(log.Fields{
		"mesh":     m.Name(),
		"maxDepth": maxDepth,
		"parts":    d.Len(),
		"quality":  d.Quality,
	}).Debug("hierarchical decomposition done")
	return d, nil
}
